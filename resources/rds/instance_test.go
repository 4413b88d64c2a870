package rds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tfwire "github.com/tfwire/tfwire-aws-go"
)

func TestAddInstanceDefaults(t *testing.T) {
	doc := tfwire.NewDocument()

	ref, err := AddInstance(doc, "primary", Instance{
		SkipFinalSnapshot: true,
	})
	require.NoError(t, err)

	attrs, ok := doc.Resource("aws_db_instance", "primary")
	require.True(t, ok)

	assert.Equal(t, "postgres", attrs["engine"])
	assert.Equal(t, "db.t3.micro", attrs["instance_class"])
	assert.Equal(t, "gp2", attrs["storage_type"])
	assert.EqualValues(t, 20, attrs["allocated_storage"])
	assert.Equal(t, "${aws_db_instance.primary.endpoint}", ref.Endpoint().String())
}

func TestAddInstanceReplica(t *testing.T) {
	doc := tfwire.NewDocument()

	_, err := AddInstance(doc, "read_replica", Instance{
		ReplicateSourceDB: "${aws_db_instance.primary.identifier}",
		SkipFinalSnapshot: true,
	})
	require.NoError(t, err)

	attrs, ok := doc.Resource("aws_db_instance", "read_replica")
	require.True(t, ok)

	// replicas inherit the engine from the source, so none is declared
	assert.NotContains(t, attrs, "engine")
	assert.NotContains(t, attrs, "allocated_storage")
	assert.Equal(t, "db.t3.micro", attrs["instance_class"])
}

func TestInstanceAuroraForbidsStorage(t *testing.T) {
	_, err := AddInstance(tfwire.NewDocument(), "cluster_member", Instance{
		Engine:            "aurora-postgresql",
		AllocatedStorage:  100,
		StorageType:       "gp2",
		MultiAz:           true,
		SkipFinalSnapshot: true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "allocated_storage")
	assert.Contains(t, err.Error(), "storage_type")
	assert.Contains(t, err.Error(), "multi_az")
}

func TestInstanceIopsRules(t *testing.T) {
	tests := []struct {
		name    string
		in      Instance
		wantErr string
	}{
		{
			name:    "io1 requires iops",
			in:      Instance{StorageType: "io1", SkipFinalSnapshot: true},
			wantErr: "iops: required when storage_type is io1 or io2",
		},
		{
			name:    "gp2 forbids iops",
			in:      Instance{StorageType: "gp2", Iops: 3000, SkipFinalSnapshot: true},
			wantErr: "iops: cannot be set when storage_type is gp2",
		},
		{
			name:    "iops below minimum",
			in:      Instance{StorageType: "io1", Iops: 500, SkipFinalSnapshot: true},
			wantErr: "iops: 500 is not in the range 1000..256000",
		},
		{
			name:    "gp3 iops below minimum",
			in:      Instance{StorageType: "gp3", Iops: 500, SkipFinalSnapshot: true},
			wantErr: "iops: 500 is not in the range 1000..256000",
		},
		{
			name: "gp3 with valid iops",
			in:   Instance{StorageType: "gp3", Iops: 12000, SkipFinalSnapshot: true},
		},
		{
			name:    "throughput only for gp3",
			in:      Instance{StorageType: "gp2", StorageThroughput: 125, SkipFinalSnapshot: true},
			wantErr: "storage_throughput",
		},
		{
			name: "gp3 with throughput is valid",
			in:   Instance{StorageType: "gp3", StorageThroughput: 125, SkipFinalSnapshot: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AddInstance(tfwire.NewDocument(), "db", tt.in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInstanceCrossFieldRules(t *testing.T) {
	tests := []struct {
		name    string
		in      Instance
		wantErr string
	}{
		{
			name:    "multi_az conflicts with availability_zone",
			in:      Instance{MultiAz: true, AvailabilityZone: "us-east-1a", SkipFinalSnapshot: true},
			wantErr: "multi_az: conflicts with availability_zone",
		},
		{
			name:    "replica forbids username",
			in:      Instance{ReplicateSourceDB: "aws_db_instance.primary", Username: "admin", SkipFinalSnapshot: true},
			wantErr: "username: cannot be set when replicate_source_db is set",
		},
		{
			name:    "replica forbids engine",
			in:      Instance{ReplicateSourceDB: "aws_db_instance.primary", Engine: "mysql", SkipFinalSnapshot: true},
			wantErr: "engine: cannot be set when replicate_source_db is set",
		},
		{
			name:    "monitoring interval needs role",
			in:      Instance{MonitoringInterval: 30, SkipFinalSnapshot: true},
			wantErr: "monitoring_role_arn: required when monitoring_interval is greater than 0",
		},
		{
			name:    "invalid monitoring interval",
			in:      Instance{MonitoringInterval: 7, MonitoringRoleArn: "arn:aws:iam::123456789012:role/rds-monitoring", SkipFinalSnapshot: true},
			wantErr: "monitoring_interval",
		},
		{
			name:    "backup retention out of range",
			in:      Instance{BackupRetentionPeriod: 40, SkipFinalSnapshot: true},
			wantErr: "backup_retention_period: 40 is not in the range 0..35",
		},
		{
			name:    "insights retention needs insights enabled",
			in:      Instance{PerformanceInsightsRetentionPeriod: 93, SkipFinalSnapshot: true},
			wantErr: "performance_insights_enabled",
		},
		{
			name:    "bad insights retention",
			in:      Instance{PerformanceInsightsEnabled: true, PerformanceInsightsRetentionPeriod: 100, SkipFinalSnapshot: true},
			wantErr: "performance_insights_retention_period",
		},
		{
			name:    "final snapshot identifier required",
			in:      Instance{},
			wantErr: "final_snapshot_identifier: required when skip_final_snapshot is false",
		},
		{
			name: "valid insights retention",
			in:   Instance{PerformanceInsightsEnabled: true, PerformanceInsightsRetentionPeriod: 93, SkipFinalSnapshot: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AddInstance(tfwire.NewDocument(), "db", tt.in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInstanceReferenceProperties(t *testing.T) {
	doc := tfwire.NewDocument()

	aurora, err := AddInstance(doc, "aurora_member", Instance{
		Engine:            "aurora-mysql",
		InstanceClass:     "db.r6g.large",
		SkipFinalSnapshot: true,
	})
	require.NoError(t, err)
	assert.True(t, aurora.IsAurora())
	assert.True(t, aurora.SupportsIAMAuthentication())
	assert.False(t, aurora.SupportsStorageAutoscaling())

	oracle, err := AddInstance(doc, "legacy", Instance{
		Engine:              "oracle-se2",
		AllocatedStorage:    100,
		MaxAllocatedStorage: 500,
		SkipFinalSnapshot:   true,
	})
	require.NoError(t, err)
	assert.False(t, oracle.SupportsIAMAuthentication())
	assert.True(t, oracle.SupportsStorageAutoscaling())
}

func TestInstanceMonthlyCostEstimate(t *testing.T) {
	doc := tfwire.NewDocument()

	ref, err := AddInstance(doc, "primary", Instance{
		Engine:            "postgres",
		InstanceClass:     "db.m5.large",
		AllocatedStorage:  100,
		SkipFinalSnapshot: true,
	})
	require.NoError(t, err)

	// 0.171 * 730 hours + 100 GB gp2 at 0.115
	assert.InDelta(t, 136.33, ref.MonthlyCostEstimate(), 0.01)

	multiAz, err := AddInstance(doc, "standby_pair", Instance{
		Engine:            "postgres",
		InstanceClass:     "db.m5.large",
		AllocatedStorage:  100,
		MultiAz:           true,
		SkipFinalSnapshot: true,
	})
	require.NoError(t, err)
	assert.Greater(t, multiAz.MonthlyCostEstimate(), ref.MonthlyCostEstimate())
}

func TestInstanceDuplicateName(t *testing.T) {
	doc := tfwire.NewDocument()
	_, err := AddInstance(doc, "db", Instance{SkipFinalSnapshot: true})
	require.NoError(t, err)
	_, err = AddInstance(doc, "db", Instance{SkipFinalSnapshot: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate resource aws_db_instance.db")
}
