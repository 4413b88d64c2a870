// Package batch provides validated builders for AWS Batch Terraform
// resources.
package batch

import (
	"fmt"

	tfwire "github.com/tfwire/tfwire-aws-go"
	"github.com/tfwire/tfwire-aws-go/internal/serialize"
	"github.com/tfwire/tfwire-aws-go/schema"
)

// ComputeEnvironment describes an aws_batch_compute_environment resource.
type ComputeEnvironment struct {
	ComputeEnvironmentName string `json:"compute_environment_name"`
	Type                   string `json:"type"`            // MANAGED or UNMANAGED
	State                  string `json:"state,omitempty"` // ENABLED or DISABLED

	// ServiceRole is the Batch service-linked role; optional since the
	// service creates one on demand.
	ServiceRole string `json:"service_role,omitempty"`

	ComputeResources *ComputeResources `json:"compute_resources,omitempty"`

	Tags map[string]string `json:"tags,omitempty"`
}

// ComputeResources configures the capacity of a MANAGED environment.
type ComputeResources struct {
	Type string `json:"type"` // EC2, SPOT, FARGATE, FARGATE_SPOT

	MinVcpus     int `json:"min_vcpus,omitempty"`
	MaxVcpus     int `json:"max_vcpus"`
	DesiredVcpus int `json:"desired_vcpus,omitempty"`

	Subnets          []string `json:"subnets"`
	SecurityGroupIDs []string `json:"security_group_ids,omitempty"`

	// EC2 and SPOT only.
	InstanceRole  string   `json:"instance_role,omitempty"`
	InstanceTypes []string `json:"instance_type,omitempty"`
	Ec2KeyPair    string   `json:"ec2_key_pair,omitempty"`
	ImageID       string   `json:"image_id,omitempty"`

	// SPOT only.
	BidPercentage    int    `json:"bid_percentage,omitempty"`
	SpotIamFleetRole string `json:"spot_iam_fleet_role,omitempty"`

	AllocationStrategy string `json:"allocation_strategy,omitempty"`

	Tags map[string]string `json:"tags,omitempty"`
}

// ResourceType returns the Terraform type.
func (ComputeEnvironment) ResourceType() string { return "aws_batch_compute_environment" }

func (e ComputeEnvironment) isFargate() bool {
	if e.ComputeResources == nil {
		return false
	}
	return e.ComputeResources.Type == "FARGATE" || e.ComputeResources.Type == "FARGATE_SPOT"
}

func (e *ComputeEnvironment) applyDefaults() {
	if e.State == "" {
		e.State = "ENABLED"
	}
}

// Validate checks the compute environment attributes. MANAGED
// environments require compute_resources; UNMANAGED environments forbid
// them.
func (e ComputeEnvironment) Validate() error {
	var errs schema.Errors

	schema.Required(&errs, "compute_environment_name", e.ComputeEnvironmentName != "")
	schema.StringLength(&errs, "compute_environment_name", e.ComputeEnvironmentName, 1, 128)
	schema.Required(&errs, "type", e.Type != "")
	schema.OneOf(&errs, "type", e.Type, "MANAGED", "UNMANAGED")
	schema.OneOf(&errs, "state", e.State, "ENABLED", "DISABLED")
	schema.ValidARN(&errs, "service_role", e.ServiceRole)

	switch e.Type {
	case "MANAGED":
		schema.RequiredWhen(&errs, "compute_resources", "type is MANAGED", true, e.ComputeResources != nil)
	case "UNMANAGED":
		schema.ForbiddenWhen(&errs, "compute_resources", "type is UNMANAGED", true, e.ComputeResources != nil)
	}

	if cr := e.ComputeResources; cr != nil {
		checkComputeResources(&errs, *cr)
	}

	return errs.OrNil()
}

func checkComputeResources(errs *schema.Errors, cr ComputeResources) {
	schema.Required(errs, "compute_resources.type", cr.Type != "")
	schema.OneOf(errs, "compute_resources.type", cr.Type, "EC2", "SPOT", "FARGATE", "FARGATE_SPOT")
	schema.Required(errs, "compute_resources.subnets", len(cr.Subnets) > 0)

	if cr.MaxVcpus <= 0 {
		errs.Add("compute_resources.max_vcpus", "must be greater than 0")
	}
	if cr.MinVcpus < 0 {
		errs.Add("compute_resources.min_vcpus", "must not be negative")
	}
	if cr.MinVcpus > cr.MaxVcpus {
		errs.Add("compute_resources.min_vcpus", "%d is greater than max_vcpus %d", cr.MinVcpus, cr.MaxVcpus)
	}
	if cr.DesiredVcpus != 0 {
		if cr.DesiredVcpus < cr.MinVcpus || cr.DesiredVcpus > cr.MaxVcpus {
			errs.Add("compute_resources.desired_vcpus", "%d is not between min_vcpus %d and max_vcpus %d",
				cr.DesiredVcpus, cr.MinVcpus, cr.MaxVcpus)
		}
	}

	fargate := cr.Type == "FARGATE" || cr.Type == "FARGATE_SPOT"
	if fargate {
		schema.ForbiddenWhen(errs, "compute_resources.instance_role", "type is FARGATE", true, cr.InstanceRole != "")
		schema.ForbiddenWhen(errs, "compute_resources.instance_type", "type is FARGATE", true, len(cr.InstanceTypes) > 0)
		schema.ForbiddenWhen(errs, "compute_resources.ec2_key_pair", "type is FARGATE", true, cr.Ec2KeyPair != "")
		schema.ForbiddenWhen(errs, "compute_resources.image_id", "type is FARGATE", true, cr.ImageID != "")
		schema.ForbiddenWhen(errs, "compute_resources.bid_percentage", "type is FARGATE", true, cr.BidPercentage != 0)
		schema.ForbiddenWhen(errs, "compute_resources.spot_iam_fleet_role", "type is FARGATE", true, cr.SpotIamFleetRole != "")
		schema.ForbiddenWhen(errs, "compute_resources.desired_vcpus", "type is FARGATE", true, cr.DesiredVcpus != 0)
		schema.ForbiddenWhen(errs, "compute_resources.min_vcpus", "type is FARGATE", true, cr.MinVcpus != 0)
		schema.OneOf(errs, "compute_resources.allocation_strategy", cr.AllocationStrategy, "SPOT_PRICE_CAPACITY_OPTIMIZED")
	} else {
		schema.RequiredWhen(errs, "compute_resources.instance_role", "type is EC2 or SPOT", true, cr.InstanceRole != "")
		schema.RequiredWhen(errs, "compute_resources.instance_type", "type is EC2 or SPOT", true, len(cr.InstanceTypes) > 0)
		schema.OneOf(errs, "compute_resources.allocation_strategy", cr.AllocationStrategy,
			"BEST_FIT", "BEST_FIT_PROGRESSIVE", "SPOT_CAPACITY_OPTIMIZED", "SPOT_PRICE_CAPACITY_OPTIMIZED")
	}

	if cr.Type == "SPOT" {
		schema.IntBetween(errs, "compute_resources.bid_percentage", cr.BidPercentage, 0, 100)
		// SPOT_CAPACITY_OPTIMIZED allocation does not go through the
		// spot fleet, so the fleet role is only needed without it
		schema.RequiredWhen(errs, "compute_resources.spot_iam_fleet_role",
			"type is SPOT and allocation_strategy is not SPOT_CAPACITY_OPTIMIZED",
			cr.AllocationStrategy != "SPOT_CAPACITY_OPTIMIZED", cr.SpotIamFleetRole != "")
		schema.ValidARN(errs, "compute_resources.spot_iam_fleet_role", cr.SpotIamFleetRole)
	} else if cr.Type == "EC2" {
		schema.ForbiddenWhen(errs, "compute_resources.bid_percentage", "type is EC2", true, cr.BidPercentage != 0)
		schema.ForbiddenWhen(errs, "compute_resources.spot_iam_fleet_role", "type is EC2", true, cr.SpotIamFleetRole != "")
	}
}

// AddComputeEnvironment validates the attributes and attaches the compute
// environment to the document.
func AddComputeEnvironment(doc *tfwire.Document, name string, e ComputeEnvironment) (ComputeEnvironmentReference, error) {
	e.applyDefaults()
	if err := e.Validate(); err != nil {
		return ComputeEnvironmentReference{}, fmt.Errorf("aws_batch_compute_environment.%s: %w", name, err)
	}

	attrs, err := serialize.Attrs(e)
	if err != nil {
		return ComputeEnvironmentReference{}, fmt.Errorf("aws_batch_compute_environment.%s: %w", name, err)
	}
	if err := doc.AddResource(e.ResourceType(), name, attrs); err != nil {
		return ComputeEnvironmentReference{}, err
	}

	return ComputeEnvironmentReference{Name: name, env: e}, nil
}

// ComputeEnvironmentReference is a handle to a declared
// aws_batch_compute_environment.
type ComputeEnvironmentReference struct {
	// Name is the symbolic resource name
	Name string

	env ComputeEnvironment
}

func (r ComputeEnvironmentReference) ref(attr string) tfwire.Reference {
	return tfwire.Ref("aws_batch_compute_environment", r.Name, attr)
}

// Arn is the compute environment ARN.
func (r ComputeEnvironmentReference) Arn() tfwire.Reference { return r.ref("arn") }

// EcsClusterArn is the ARN of the ECS cluster backing the environment.
func (r ComputeEnvironmentReference) EcsClusterArn() tfwire.Reference {
	return r.ref("ecs_cluster_arn")
}

// Status references the environment status (VALID, INVALID, ...).
func (r ComputeEnvironmentReference) Status() tfwire.Reference { return r.ref("status") }

// IsFargate reports whether the environment runs on Fargate capacity.
func (r ComputeEnvironmentReference) IsFargate() bool { return r.env.isFargate() }

// MaxVcpus returns the configured capacity ceiling, or 0 for UNMANAGED
// environments.
func (r ComputeEnvironmentReference) MaxVcpus() int {
	if r.env.ComputeResources == nil {
		return 0
	}
	return r.env.ComputeResources.MaxVcpus
}
