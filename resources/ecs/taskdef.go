package ecs

import (
	"encoding/json"
	"fmt"
	"strconv"

	tfwire "github.com/tfwire/tfwire-aws-go"
	"github.com/tfwire/tfwire-aws-go/internal/serialize"
	"github.com/tfwire/tfwire-aws-go/schema"
)

// TaskDefinition describes an aws_ecs_task_definition resource.
type TaskDefinition struct {
	Family string `json:"family"`

	// ContainerDefinitions is rendered to the container_definitions JSON
	// string.
	ContainerDefinitions []ContainerDefinition `json:"-"`

	RequiresCompatibilities []string `json:"requires_compatibilities,omitempty"` // EC2, FARGATE, EXTERNAL
	NetworkMode             string   `json:"network_mode,omitempty"`             // bridge, host, awsvpc, none

	// Cpu and Memory are task-level sizes in CPU units and MiB. Fargate
	// tasks only accept specific combinations.
	Cpu    int `json:"-"`
	Memory int `json:"-"`

	ExecutionRoleArn string `json:"execution_role_arn,omitempty"`
	TaskRoleArn      string `json:"task_role_arn,omitempty"`

	RuntimePlatform *RuntimePlatform `json:"runtime_platform,omitempty"`

	Tags map[string]string `json:"tags,omitempty"`
}

// ContainerDefinition is one entry of the container_definitions document.
// Field names follow the ECS task definition JSON schema, not Terraform
// attribute naming.
type ContainerDefinition struct {
	Name             string            `json:"name"`
	Image            string            `json:"image"`
	Essential        bool              `json:"essential"`
	Cpu              int               `json:"cpu,omitempty"`
	Memory           int               `json:"memory,omitempty"`
	Command          []string          `json:"command,omitempty"`
	EntryPoint       []string          `json:"entryPoint,omitempty"`
	Environment      []KeyValuePair    `json:"environment,omitempty"`
	Secrets          []ContainerSecret `json:"secrets,omitempty"`
	PortMappings     []PortMapping     `json:"portMappings,omitempty"`
	LogConfiguration *LogConfiguration `json:"logConfiguration,omitempty"`
}

// KeyValuePair is a plain-text container environment variable.
type KeyValuePair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ContainerSecret references a Secrets Manager or SSM parameter value.
type ContainerSecret struct {
	Name      string `json:"name"`
	ValueFrom string `json:"valueFrom"`
}

// PortMapping exposes a container port.
type PortMapping struct {
	ContainerPort int    `json:"containerPort"`
	HostPort      int    `json:"hostPort,omitempty"`
	Protocol      string `json:"protocol,omitempty"`
}

// LogConfiguration configures the container log driver.
type LogConfiguration struct {
	LogDriver string            `json:"logDriver"`
	Options   map[string]string `json:"options,omitempty"`
}

// RuntimePlatform selects the OS and architecture for Fargate tasks.
type RuntimePlatform struct {
	OperatingSystemFamily string `json:"operating_system_family,omitempty"`
	CpuArchitecture       string `json:"cpu_architecture,omitempty"`
}

// ResourceType returns the Terraform type.
func (TaskDefinition) ResourceType() string { return "aws_ecs_task_definition" }

// fargateMemory maps each valid Fargate CPU size to its allowed memory
// range in MiB and the step between valid values.
var fargateMemory = map[int]struct{ min, max, step int }{
	256:  {512, 2048, 512},
	512:  {1024, 4096, 1024},
	1024: {2048, 8192, 1024},
	2048: {4096, 16384, 1024},
	4096: {8192, 30720, 1024},
}

// 256 additionally accepts exactly 512 MiB; every other size in its range
// steps by 1024 from 1024.
func validFargateMemory(cpu, memory int) bool {
	r, ok := fargateMemory[cpu]
	if !ok {
		return false
	}
	if cpu == 256 {
		return memory == 512 || memory == 1024 || memory == 2048
	}
	if memory < r.min || memory > r.max {
		return false
	}
	return (memory-r.min)%r.step == 0
}

func (t TaskDefinition) requiresFargate() bool {
	for _, c := range t.RequiresCompatibilities {
		if c == "FARGATE" {
			return true
		}
	}
	return false
}

func (t *TaskDefinition) applyDefaults() {
	if t.NetworkMode == "" && t.requiresFargate() {
		t.NetworkMode = "awsvpc"
	}
}

// Validate checks the task definition attributes, including the Fargate
// CPU and memory combination table.
func (t TaskDefinition) Validate() error {
	var errs schema.Errors

	schema.Required(&errs, "family", t.Family != "")
	schema.StringLength(&errs, "family", t.Family, 1, 255)
	schema.Required(&errs, "container_definitions", len(t.ContainerDefinitions) > 0)
	schema.SubsetOf(&errs, "requires_compatibilities", t.RequiresCompatibilities, "EC2", "FARGATE", "EXTERNAL")
	schema.OneOf(&errs, "network_mode", t.NetworkMode, "bridge", "host", "awsvpc", "none")
	schema.ValidARN(&errs, "execution_role_arn", t.ExecutionRoleArn)
	schema.ValidARN(&errs, "task_role_arn", t.TaskRoleArn)

	essential := false
	for i, c := range t.ContainerDefinitions {
		field := "container_definitions[" + strconv.Itoa(i) + "]"
		schema.Required(&errs, field+".name", c.Name != "")
		schema.Required(&errs, field+".image", c.Image != "")
		for _, pm := range c.PortMappings {
			schema.IntBetween(&errs, field+".portMappings.containerPort", pm.ContainerPort, 1, 65535)
			schema.OneOf(&errs, field+".portMappings.protocol", pm.Protocol, "tcp", "udp")
		}
		if c.Essential {
			essential = true
		}
	}
	if len(t.ContainerDefinitions) > 0 && !essential {
		errs.Add("container_definitions", "at least one container must be marked essential")
	}

	if t.requiresFargate() {
		schema.RequiredWhen(&errs, "cpu", "requires_compatibilities includes FARGATE", true, t.Cpu != 0)
		schema.RequiredWhen(&errs, "memory", "requires_compatibilities includes FARGATE", true, t.Memory != 0)
		schema.RequiredWhen(&errs, "execution_role_arn", "requires_compatibilities includes FARGATE", true, t.ExecutionRoleArn != "")
		if t.NetworkMode != "" && t.NetworkMode != "awsvpc" {
			errs.Add("network_mode", "must be awsvpc when requires_compatibilities includes FARGATE, got %q", t.NetworkMode)
		}
		if t.Cpu != 0 && t.Memory != 0 && !validFargateMemory(t.Cpu, t.Memory) {
			if _, ok := fargateMemory[t.Cpu]; !ok {
				errs.Add("cpu", "%d is not a valid Fargate CPU size (256, 512, 1024, 2048, 4096)", t.Cpu)
			} else {
				errs.Add("memory", "%d MiB is not a valid Fargate memory size for %d CPU units", t.Memory, t.Cpu)
			}
		}
	}

	if t.RuntimePlatform != nil {
		schema.OneOf(&errs, "runtime_platform.operating_system_family", t.RuntimePlatform.OperatingSystemFamily,
			"LINUX", "WINDOWS_SERVER_2019_CORE", "WINDOWS_SERVER_2019_FULL", "WINDOWS_SERVER_2022_CORE", "WINDOWS_SERVER_2022_FULL")
		schema.OneOf(&errs, "runtime_platform.cpu_architecture", t.RuntimePlatform.CpuArchitecture, "X86_64", "ARM64")
	}

	return errs.OrNil()
}

// AddTaskDefinition validates the attributes and attaches the task
// definition to the document. Container definitions are rendered to the
// JSON string Terraform expects.
func AddTaskDefinition(doc *tfwire.Document, name string, t TaskDefinition) (TaskDefinitionReference, error) {
	t.applyDefaults()
	if err := t.Validate(); err != nil {
		return TaskDefinitionReference{}, fmt.Errorf("aws_ecs_task_definition.%s: %w", name, err)
	}

	attrs, err := serialize.Attrs(t)
	if err != nil {
		return TaskDefinitionReference{}, fmt.Errorf("aws_ecs_task_definition.%s: %w", name, err)
	}

	defs, err := json.Marshal(t.ContainerDefinitions)
	if err != nil {
		return TaskDefinitionReference{}, fmt.Errorf("aws_ecs_task_definition.%s: container_definitions: %w", name, err)
	}
	attrs["container_definitions"] = string(defs)
	if t.Cpu != 0 {
		attrs["cpu"] = strconv.Itoa(t.Cpu)
	}
	if t.Memory != 0 {
		attrs["memory"] = strconv.Itoa(t.Memory)
	}

	if err := doc.AddResource(t.ResourceType(), name, attrs); err != nil {
		return TaskDefinitionReference{}, err
	}

	return TaskDefinitionReference{Name: name, task: t}, nil
}

// TaskDefinitionReference is a handle to a declared aws_ecs_task_definition.
type TaskDefinitionReference struct {
	// Name is the symbolic resource name
	Name string

	task TaskDefinition
}

func (r TaskDefinitionReference) ref(attr string) tfwire.Reference {
	return tfwire.Ref("aws_ecs_task_definition", r.Name, attr)
}

// Arn is the full ARN including revision.
func (r TaskDefinitionReference) Arn() tfwire.Reference { return r.ref("arn") }

// Family is the task definition family.
func (r TaskDefinitionReference) Family() tfwire.Reference { return r.ref("family") }

// Revision is the task definition revision number.
func (r TaskDefinitionReference) Revision() tfwire.Reference { return r.ref("revision") }

// IsFargate reports whether the task requires Fargate compatibility.
func (r TaskDefinitionReference) IsFargate() bool { return r.task.requiresFargate() }

// Fargate on-demand pricing, us-east-1.
const (
	fargateVCPUHourly = 0.04048
	fargateGiBHourly  = 0.004445
	hoursPerMonth     = 730
)

// MonthlyCostEstimate returns the approximate monthly cost in USD of one
// always-on copy of this task on Fargate. Returns 0 for EC2-only tasks,
// where compute is billed through the instances.
func (r TaskDefinitionReference) MonthlyCostEstimate() float64 {
	if !r.IsFargate() || r.task.Cpu == 0 || r.task.Memory == 0 {
		return 0
	}
	vcpu := float64(r.task.Cpu) / 1024
	gib := float64(r.task.Memory) / 1024
	return (vcpu*fargateVCPUHourly + gib*fargateGiBHourly) * hoursPerMonth
}
