// Package ecs provides validated builders for Amazon ECS Terraform
// resources: clusters, task definitions, and services.
package ecs

import (
	"fmt"

	tfwire "github.com/tfwire/tfwire-aws-go"
	"github.com/tfwire/tfwire-aws-go/internal/serialize"
	"github.com/tfwire/tfwire-aws-go/schema"
)

// Cluster describes an aws_ecs_cluster resource.
type Cluster struct {
	Name string `json:"name"`

	// ContainerInsights sets the containerInsights cluster setting to
	// enabled, disabled, or enhanced. Empty leaves the setting out.
	ContainerInsights string `json:"-"`

	// CapacityProviders become an aws_ecs_cluster_capacity_providers
	// resource attached to the cluster.
	CapacityProviders []string `json:"-"`

	Tags map[string]string `json:"tags,omitempty"`
}

// ResourceType returns the Terraform type.
func (Cluster) ResourceType() string { return "aws_ecs_cluster" }

// Validate checks the cluster attributes.
func (c Cluster) Validate() error {
	var errs schema.Errors

	schema.Required(&errs, "name", c.Name != "")
	schema.StringLength(&errs, "name", c.Name, 1, 255)
	schema.OneOf(&errs, "container_insights", c.ContainerInsights, "enabled", "disabled", "enhanced")
	schema.SubsetOf(&errs, "capacity_providers", c.CapacityProviders, "FARGATE", "FARGATE_SPOT")

	return errs.OrNil()
}

// AddCluster validates the attributes and attaches the cluster to the
// document. Capacity providers, when listed, are attached through a
// separate aws_ecs_cluster_capacity_providers resource.
func AddCluster(doc *tfwire.Document, name string, c Cluster) (ClusterReference, error) {
	if err := c.Validate(); err != nil {
		return ClusterReference{}, fmt.Errorf("aws_ecs_cluster.%s: %w", name, err)
	}

	attrs, err := serialize.Attrs(c)
	if err != nil {
		return ClusterReference{}, fmt.Errorf("aws_ecs_cluster.%s: %w", name, err)
	}
	if c.ContainerInsights != "" {
		attrs["setting"] = map[string]any{
			"name":  "containerInsights",
			"value": c.ContainerInsights,
		}
	}
	if err := doc.AddResource(c.ResourceType(), name, attrs); err != nil {
		return ClusterReference{}, err
	}

	ref := ClusterReference{Name: name, cluster: c}

	if len(c.CapacityProviders) > 0 {
		err := doc.AddResource("aws_ecs_cluster_capacity_providers", name, map[string]any{
			"cluster_name":       ref.ClusterName().String(),
			"capacity_providers": c.CapacityProviders,
		})
		if err != nil {
			return ClusterReference{}, err
		}
	}

	return ref, nil
}

// ClusterReference is a handle to a declared aws_ecs_cluster.
type ClusterReference struct {
	// Name is the symbolic resource name
	Name string

	cluster Cluster
}

func (r ClusterReference) ref(attr string) tfwire.Reference {
	return tfwire.Ref("aws_ecs_cluster", r.Name, attr)
}

// ID is the cluster ARN (the provider uses the ARN as the ID).
func (r ClusterReference) ID() tfwire.Reference { return r.ref("id") }

// Arn is the cluster ARN.
func (r ClusterReference) Arn() tfwire.Reference { return r.ref("arn") }

// ClusterName is the cluster name attribute.
func (r ClusterReference) ClusterName() tfwire.Reference { return r.ref("name") }

// HasFargateCapacity reports whether a Fargate capacity provider is
// attached.
func (r ClusterReference) HasFargateCapacity() bool {
	for _, p := range r.cluster.CapacityProviders {
		if p == "FARGATE" || p == "FARGATE_SPOT" {
			return true
		}
	}
	return false
}
