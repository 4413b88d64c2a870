package ecs

import (
	"fmt"

	tfwire "github.com/tfwire/tfwire-aws-go"
	"github.com/tfwire/tfwire-aws-go/internal/serialize"
	"github.com/tfwire/tfwire-aws-go/schema"
)

// Service describes an aws_ecs_service resource.
type Service struct {
	Name           string `json:"name"`
	Cluster        string `json:"cluster,omitempty"`
	TaskDefinition string `json:"task_definition"`

	DesiredCount       int    `json:"desired_count,omitempty"`
	LaunchType         string `json:"launch_type,omitempty"`         // EC2, FARGATE, EXTERNAL
	SchedulingStrategy string `json:"scheduling_strategy,omitempty"` // REPLICA, DAEMON

	CapacityProviderStrategy []CapacityProviderStrategy `json:"capacity_provider_strategy,omitempty"`

	// DeploymentMaximumPercent / DeploymentMinimumHealthyPercent bound
	// rolling deployments. Nil keeps the provider defaults (200/100).
	DeploymentMaximumPercent        *int `json:"deployment_maximum_percent,omitempty"`
	DeploymentMinimumHealthyPercent *int `json:"deployment_minimum_healthy_percent,omitempty"`

	NetworkConfiguration *NetworkConfiguration `json:"network_configuration,omitempty"`
	LoadBalancers        []LoadBalancer        `json:"load_balancer,omitempty"`

	HealthCheckGracePeriodSeconds int `json:"health_check_grace_period_seconds,omitempty"`

	EnableExecuteCommand bool `json:"enable_execute_command,omitempty"`

	Tags map[string]string `json:"tags,omitempty"`
}

// CapacityProviderStrategy weights a capacity provider for the service.
type CapacityProviderStrategy struct {
	CapacityProvider string `json:"capacity_provider"`
	Weight           int    `json:"weight,omitempty"`
	Base             int    `json:"base,omitempty"`
}

// NetworkConfiguration is required for awsvpc tasks.
type NetworkConfiguration struct {
	Subnets        []string `json:"subnets"`
	SecurityGroups []string `json:"security_groups,omitempty"`
	AssignPublicIP bool     `json:"assign_public_ip,omitempty"`
}

// LoadBalancer attaches the service to a target group.
type LoadBalancer struct {
	TargetGroupArn string `json:"target_group_arn"`
	ContainerName  string `json:"container_name"`
	ContainerPort  int    `json:"container_port"`
}

// ResourceType returns the Terraform type.
func (Service) ResourceType() string { return "aws_ecs_service" }

func (s *Service) applyDefaults() {
	if s.SchedulingStrategy == "" {
		s.SchedulingStrategy = "REPLICA"
	}
}

// Validate checks the service attributes.
func (s Service) Validate() error {
	var errs schema.Errors

	schema.Required(&errs, "name", s.Name != "")
	schema.StringLength(&errs, "name", s.Name, 1, 255)
	schema.Required(&errs, "task_definition", s.TaskDefinition != "")
	schema.OneOf(&errs, "launch_type", s.LaunchType, "EC2", "FARGATE", "EXTERNAL")
	schema.OneOf(&errs, "scheduling_strategy", s.SchedulingStrategy, "REPLICA", "DAEMON")

	schema.ConflictsWith(&errs, "launch_type", "capacity_provider_strategy",
		s.LaunchType != "" && len(s.CapacityProviderStrategy) > 0)

	if s.SchedulingStrategy == "DAEMON" {
		schema.ForbiddenWhen(&errs, "desired_count", "scheduling_strategy is DAEMON",
			true, s.DesiredCount != 0)
		schema.ForbiddenWhen(&errs, "capacity_provider_strategy", "scheduling_strategy is DAEMON",
			true, len(s.CapacityProviderStrategy) > 0)
		schema.ForbiddenWhen(&errs, "deployment_maximum_percent", "scheduling_strategy is DAEMON",
			true, s.DeploymentMaximumPercent != nil)
		schema.ForbiddenWhen(&errs, "deployment_minimum_healthy_percent", "scheduling_strategy is DAEMON",
			true, s.DeploymentMinimumHealthyPercent != nil)
		if s.LaunchType == "FARGATE" {
			errs.Add("scheduling_strategy", "DAEMON is not supported on FARGATE")
		}
	}

	if s.DeploymentMaximumPercent != nil {
		schema.IntBetween(&errs, "deployment_maximum_percent", *s.DeploymentMaximumPercent, 100, 200)
	}
	if s.DeploymentMinimumHealthyPercent != nil {
		schema.IntBetween(&errs, "deployment_minimum_healthy_percent", *s.DeploymentMinimumHealthyPercent, 0, 100)
	}

	if s.LaunchType == "FARGATE" || s.fargateStrategy() {
		schema.RequiredWhen(&errs, "network_configuration", "the service runs on Fargate",
			true, s.NetworkConfiguration != nil)
	}
	if s.NetworkConfiguration != nil {
		schema.Required(&errs, "network_configuration.subnets", len(s.NetworkConfiguration.Subnets) > 0)
	}

	for i, cps := range s.CapacityProviderStrategy {
		field := fmt.Sprintf("capacity_provider_strategy[%d]", i)
		schema.Required(&errs, field+".capacity_provider", cps.CapacityProvider != "")
		schema.IntBetween(&errs, field+".weight", cps.Weight, 0, 1000)
		schema.IntBetween(&errs, field+".base", cps.Base, 0, 100000)
	}

	for i, lb := range s.LoadBalancers {
		field := fmt.Sprintf("load_balancer[%d]", i)
		schema.Required(&errs, field+".container_name", lb.ContainerName != "")
		schema.IntBetween(&errs, field+".container_port", lb.ContainerPort, 1, 65535)
		schema.ValidARN(&errs, field+".target_group_arn", lb.TargetGroupArn)
	}
	schema.ForbiddenWhen(&errs, "health_check_grace_period_seconds", "no load_balancer is attached",
		len(s.LoadBalancers) == 0, s.HealthCheckGracePeriodSeconds != 0)
	schema.IntBetween(&errs, "health_check_grace_period_seconds", s.HealthCheckGracePeriodSeconds, 0, 2147483647)

	return errs.OrNil()
}

func (s Service) fargateStrategy() bool {
	for _, cps := range s.CapacityProviderStrategy {
		if cps.CapacityProvider == "FARGATE" || cps.CapacityProvider == "FARGATE_SPOT" {
			return true
		}
	}
	return false
}

// AddService validates the attributes and attaches the service to the
// document.
func AddService(doc *tfwire.Document, name string, s Service) (ServiceReference, error) {
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return ServiceReference{}, fmt.Errorf("aws_ecs_service.%s: %w", name, err)
	}

	attrs, err := serialize.Attrs(s)
	if err != nil {
		return ServiceReference{}, fmt.Errorf("aws_ecs_service.%s: %w", name, err)
	}
	if err := doc.AddResource(s.ResourceType(), name, attrs); err != nil {
		return ServiceReference{}, err
	}

	return ServiceReference{Name: name, service: s}, nil
}

// ServiceReference is a handle to a declared aws_ecs_service.
type ServiceReference struct {
	// Name is the symbolic resource name
	Name string

	service Service
}

func (r ServiceReference) ref(attr string) tfwire.Reference {
	return tfwire.Ref("aws_ecs_service", r.Name, attr)
}

// ID is the service ARN.
func (r ServiceReference) ID() tfwire.Reference { return r.ref("id") }

// ServiceName is the service name attribute.
func (r ServiceReference) ServiceName() tfwire.Reference { return r.ref("name") }

// IsFargate reports whether the service launches on Fargate, either by
// launch type or through its capacity provider strategy.
func (r ServiceReference) IsFargate() bool {
	return r.service.LaunchType == "FARGATE" || r.service.fargateStrategy()
}
