package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tfwire "github.com/tfwire/tfwire-aws-go"
)

const (
	testInstanceRole = "arn:aws:iam::123456789012:instance-profile/batch-ecs"
	testFleetRole    = "arn:aws:iam::123456789012:role/aws-ec2-spot-fleet-tagging-role"
)

func fargateEnv() ComputeEnvironment {
	return ComputeEnvironment{
		ComputeEnvironmentName: "jobs",
		Type:                   "MANAGED",
		ComputeResources: &ComputeResources{
			Type:     "FARGATE",
			MaxVcpus: 64,
			Subnets:  []string{"${var.private_subnet_a}"},
		},
	}
}

func TestComputeEnvironmentValidate(t *testing.T) {
	t.Run("valid fargate", func(t *testing.T) {
		assert.NoError(t, fargateEnv().Validate())
	})

	t.Run("valid unmanaged", func(t *testing.T) {
		err := ComputeEnvironment{ComputeEnvironmentName: "external", Type: "UNMANAGED"}.Validate()
		assert.NoError(t, err)
	})

	t.Run("managed requires compute resources", func(t *testing.T) {
		err := ComputeEnvironment{ComputeEnvironmentName: "jobs", Type: "MANAGED"}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "compute_resources: required when type is MANAGED")
	})

	t.Run("unmanaged forbids compute resources", func(t *testing.T) {
		env := fargateEnv()
		env.Type = "UNMANAGED"
		err := env.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be set when type is UNMANAGED")
	})

	t.Run("bad type", func(t *testing.T) {
		err := ComputeEnvironment{ComputeEnvironmentName: "jobs", Type: "HYBRID"}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"HYBRID" is not one of`)
	})

	t.Run("vcpu ordering", func(t *testing.T) {
		env := ComputeEnvironment{
			ComputeEnvironmentName: "jobs",
			Type:                   "MANAGED",
			ComputeResources: &ComputeResources{
				Type:          "EC2",
				MinVcpus:      16,
				MaxVcpus:      8,
				InstanceRole:  testInstanceRole,
				InstanceTypes: []string{"optimal"},
				Subnets:       []string{"${var.private_subnet_a}"},
			},
		}
		err := env.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "greater than max_vcpus")
	})

	t.Run("desired outside min and max", func(t *testing.T) {
		env := ComputeEnvironment{
			ComputeEnvironmentName: "jobs",
			Type:                   "MANAGED",
			ComputeResources: &ComputeResources{
				Type:          "EC2",
				MinVcpus:      4,
				MaxVcpus:      16,
				DesiredVcpus:  32,
				InstanceRole:  testInstanceRole,
				InstanceTypes: []string{"optimal"},
				Subnets:       []string{"${var.private_subnet_a}"},
			},
		}
		err := env.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not between min_vcpus")
	})

	t.Run("fargate forbids instance fields", func(t *testing.T) {
		env := fargateEnv()
		env.ComputeResources.InstanceRole = testInstanceRole
		env.ComputeResources.InstanceTypes = []string{"optimal"}
		err := env.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "instance_role: cannot be set when type is FARGATE")
	})

	t.Run("ec2 requires instance role and types", func(t *testing.T) {
		env := fargateEnv()
		env.ComputeResources.Type = "EC2"
		err := env.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "instance_role: required when type is EC2 or SPOT")
		assert.Contains(t, err.Error(), "instance_type: required when type is EC2 or SPOT")
	})

	t.Run("spot requires fleet role", func(t *testing.T) {
		env := fargateEnv()
		env.ComputeResources.Type = "SPOT"
		env.ComputeResources.InstanceRole = testInstanceRole
		env.ComputeResources.InstanceTypes = []string{"optimal"}
		env.ComputeResources.BidPercentage = 60
		err := env.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "spot_iam_fleet_role: required when type is SPOT and allocation_strategy is not SPOT_CAPACITY_OPTIMIZED")
	})

	t.Run("spot capacity optimized needs no fleet role", func(t *testing.T) {
		env := fargateEnv()
		env.ComputeResources.Type = "SPOT"
		env.ComputeResources.InstanceRole = testInstanceRole
		env.ComputeResources.InstanceTypes = []string{"optimal"}
		env.ComputeResources.AllocationStrategy = "SPOT_CAPACITY_OPTIMIZED"
		assert.NoError(t, env.Validate())
	})

	t.Run("bid percentage range", func(t *testing.T) {
		env := fargateEnv()
		env.ComputeResources.Type = "SPOT"
		env.ComputeResources.InstanceRole = testInstanceRole
		env.ComputeResources.InstanceTypes = []string{"optimal"}
		env.ComputeResources.SpotIamFleetRole = testFleetRole
		env.ComputeResources.BidPercentage = 120
		err := env.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not in the range 0..100")
	})
}

func TestAddComputeEnvironment(t *testing.T) {
	doc := tfwire.NewDocument()

	ref, err := AddComputeEnvironment(doc, "jobs", fargateEnv())
	require.NoError(t, err)
	assert.True(t, ref.IsFargate())
	assert.Equal(t, 64, ref.MaxVcpus())
	assert.Equal(t, "${aws_batch_compute_environment.jobs.ecs_cluster_arn}", ref.EcsClusterArn().String())

	attrs, ok := doc.Resource("aws_batch_compute_environment", "jobs")
	require.True(t, ok)
	assert.Equal(t, "ENABLED", attrs["state"])
	cr := attrs["compute_resources"].(map[string]any)
	assert.Equal(t, "FARGATE", cr["type"])
	assert.EqualValues(t, 64, cr["max_vcpus"])
}
