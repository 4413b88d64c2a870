// Package rds provides validated builders for Amazon RDS Terraform resources.
package rds

import (
	"fmt"
	"regexp"
	"strings"

	tfwire "github.com/tfwire/tfwire-aws-go"
	"github.com/tfwire/tfwire-aws-go/internal/serialize"
	"github.com/tfwire/tfwire-aws-go/schema"
)

// Instance describes an aws_db_instance resource.
type Instance struct {
	Engine                             string   `json:"engine,omitempty"`
	EngineVersion                      string   `json:"engine_version,omitempty"`
	InstanceClass                      string   `json:"instance_class,omitempty"`
	AllocatedStorage                   int      `json:"allocated_storage,omitempty"`
	MaxAllocatedStorage                int      `json:"max_allocated_storage,omitempty"`
	StorageType                        string   `json:"storage_type,omitempty"`
	StorageThroughput                  int      `json:"storage_throughput,omitempty"`
	Iops                               int      `json:"iops,omitempty"`
	StorageEncrypted                   bool     `json:"storage_encrypted,omitempty"`
	KmsKeyID                           string   `json:"kms_key_id,omitempty"`
	Username                           string   `json:"username,omitempty"`
	Password                           string   `json:"password,omitempty"`
	ManageMasterUserPassword           bool     `json:"manage_master_user_password,omitempty"`
	DBName                             string   `json:"db_name,omitempty"`
	ParameterGroupName                 string   `json:"parameter_group_name,omitempty"`
	DBSubnetGroupName                  string   `json:"db_subnet_group_name,omitempty"`
	VpcSecurityGroupIDs                []string `json:"vpc_security_group_ids,omitempty"`
	MultiAz                            bool     `json:"multi_az,omitempty"`
	AvailabilityZone                   string   `json:"availability_zone,omitempty"`
	PubliclyAccessible                 bool     `json:"publicly_accessible,omitempty"`
	Port                               int      `json:"port,omitempty"`
	ReplicateSourceDB                  string   `json:"replicate_source_db,omitempty"`
	BackupRetentionPeriod              int      `json:"backup_retention_period,omitempty"`
	BackupWindow                       string   `json:"backup_window,omitempty"`
	MaintenanceWindow                  string   `json:"maintenance_window,omitempty"`
	MonitoringInterval                 int      `json:"monitoring_interval,omitempty"`
	MonitoringRoleArn                  string   `json:"monitoring_role_arn,omitempty"`
	PerformanceInsightsEnabled         bool     `json:"performance_insights_enabled,omitempty"`
	PerformanceInsightsRetentionPeriod int      `json:"performance_insights_retention_period,omitempty"`
	IamDatabaseAuthenticationEnabled   bool     `json:"iam_database_authentication_enabled,omitempty"`
	DeletionProtection                 bool     `json:"deletion_protection,omitempty"`
	SkipFinalSnapshot                  bool     `json:"skip_final_snapshot,omitempty"`
	FinalSnapshotIdentifier            string   `json:"final_snapshot_identifier,omitempty"`
	ApplyImmediately                   bool     `json:"apply_immediately,omitempty"`
	AutoMinorVersionUpgrade            bool     `json:"auto_minor_version_upgrade,omitempty"`

	Tags map[string]string `json:"tags,omitempty"`
}

// ResourceType returns the Terraform type.
func (Instance) ResourceType() string { return "aws_db_instance" }

var engines = []string{
	"mysql", "postgres", "mariadb",
	"aurora-mysql", "aurora-postgresql",
	"oracle-ee", "oracle-se2",
	"sqlserver-ex", "sqlserver-web", "sqlserver-se", "sqlserver-ee",
}

var storageTypes = []string{"standard", "gp2", "gp3", "io1", "io2"}

var instanceClassRE = regexp.MustCompile(`^db\.[a-z0-9]+\.[a-z0-9]+$`)

// IsAurora reports whether the configured engine is an Aurora engine.
// Aurora manages storage at the cluster level, which drives several of the
// validation rules below.
func (i Instance) IsAurora() bool {
	return strings.HasPrefix(i.Engine, "aurora")
}

func (i *Instance) applyDefaults() {
	if i.InstanceClass == "" {
		i.InstanceClass = "db.t3.micro"
	}
	if i.ReplicateSourceDB != "" {
		// replicas inherit the engine and storage layout from the source
		return
	}
	if i.Engine == "" {
		i.Engine = "postgres"
	}
	if i.IsAurora() {
		return
	}
	if i.StorageType == "" {
		i.StorageType = "gp2"
	}
	if i.AllocatedStorage == 0 {
		i.AllocatedStorage = minStorageFor(i.Engine)
	}
}

func minStorageFor(engine string) int {
	if engine == "sqlserver-se" || engine == "sqlserver-ee" {
		return 100
	}
	return 20
}

// Validate checks the instance attributes. It expects defaults to have been
// applied (AddInstance does both).
func (i Instance) Validate() error {
	var errs schema.Errors

	schema.OneOf(&errs, "engine", i.Engine, engines...)
	schema.OneOf(&errs, "storage_type", i.StorageType, storageTypes...)
	schema.Required(&errs, "instance_class", i.InstanceClass != "")
	schema.MatchesRE(&errs, "instance_class", i.InstanceClass, instanceClassRE, "expected db.<family>.<size>")

	if i.IsAurora() {
		// Aurora storage is cluster-managed
		schema.ForbiddenWhen(&errs, "allocated_storage", "engine is an Aurora engine", true, i.AllocatedStorage != 0)
		schema.ForbiddenWhen(&errs, "storage_type", "engine is an Aurora engine", true, i.StorageType != "")
		schema.ForbiddenWhen(&errs, "iops", "engine is an Aurora engine", true, i.Iops != 0)
		schema.ForbiddenWhen(&errs, "multi_az", "engine is an Aurora engine", true, i.MultiAz)
	} else if i.ReplicateSourceDB == "" {
		schema.IntBetween(&errs, "allocated_storage", i.AllocatedStorage, minStorageFor(i.Engine), 65536)
	}

	if i.MaxAllocatedStorage != 0 && i.MaxAllocatedStorage <= i.AllocatedStorage {
		errs.Add("max_allocated_storage", "must be greater than allocated_storage (%d) to enable storage autoscaling", i.AllocatedStorage)
	}

	provisionedIops := i.StorageType == "io1" || i.StorageType == "io2"
	schema.RequiredWhen(&errs, "iops", "storage_type is io1 or io2", provisionedIops, i.Iops != 0)
	schema.ForbiddenWhen(&errs, "iops", "storage_type is "+i.StorageType,
		i.StorageType == "standard" || i.StorageType == "gp2", i.Iops != 0)
	if i.Iops != 0 && (provisionedIops || i.StorageType == "gp3") {
		schema.IntBetween(&errs, "iops", i.Iops, 1000, 256000)
	}
	schema.ForbiddenWhen(&errs, "storage_throughput", "storage_type is not gp3", i.StorageType != "gp3", i.StorageThroughput != 0)

	schema.ConflictsWith(&errs, "multi_az", "availability_zone", i.MultiAz && i.AvailabilityZone != "")

	if i.ReplicateSourceDB != "" {
		// replicas inherit these from the source
		schema.ForbiddenWhen(&errs, "engine", "replicate_source_db is set", true, i.Engine != "")
		schema.ForbiddenWhen(&errs, "username", "replicate_source_db is set", true, i.Username != "")
		schema.ForbiddenWhen(&errs, "db_name", "replicate_source_db is set", true, i.DBName != "")
	}
	schema.ConflictsWith(&errs, "password", "manage_master_user_password", i.Password != "" && i.ManageMasterUserPassword)

	schema.IntBetween(&errs, "backup_retention_period", i.BackupRetentionPeriod, 0, 35)

	switch i.MonitoringInterval {
	case 0, 1, 5, 10, 15, 30, 60:
	default:
		errs.Add("monitoring_interval", "%d is not one of [0, 1, 5, 10, 15, 30, 60]", i.MonitoringInterval)
	}
	schema.RequiredWhen(&errs, "monitoring_role_arn", "monitoring_interval is greater than 0",
		i.MonitoringInterval > 0, i.MonitoringRoleArn != "")
	schema.ValidARN(&errs, "monitoring_role_arn", i.MonitoringRoleArn)
	schema.ValidARN(&errs, "kms_key_id", i.KmsKeyID)

	schema.RequiredWhen(&errs, "performance_insights_enabled", "performance_insights_retention_period is set",
		i.PerformanceInsightsRetentionPeriod != 0, i.PerformanceInsightsEnabled)
	if p := i.PerformanceInsightsRetentionPeriod; p != 0 {
		if p != 7 && p != 731 && (p%31 != 0 || p > 731) {
			errs.Add("performance_insights_retention_period", "%d must be 7, 731, or a multiple of 31 up to 731", p)
		}
	}

	schema.RequiredWhen(&errs, "final_snapshot_identifier", "skip_final_snapshot is false",
		!i.SkipFinalSnapshot, i.FinalSnapshotIdentifier != "")

	return errs.OrNil()
}

// AddInstance validates the attributes and attaches an aws_db_instance block
// to the document.
func AddInstance(doc *tfwire.Document, name string, in Instance) (InstanceReference, error) {
	in.applyDefaults()
	if err := in.Validate(); err != nil {
		return InstanceReference{}, fmt.Errorf("aws_db_instance.%s: %w", name, err)
	}

	attrs, err := serialize.Attrs(in)
	if err != nil {
		return InstanceReference{}, fmt.Errorf("aws_db_instance.%s: %w", name, err)
	}
	if err := doc.AddResource(in.ResourceType(), name, attrs); err != nil {
		return InstanceReference{}, err
	}

	return InstanceReference{Name: name, instance: in}, nil
}

// InstanceReference is a handle to a declared aws_db_instance.
type InstanceReference struct {
	// Name is the symbolic resource name
	Name string

	instance Instance
}

func (r InstanceReference) ref(attr string) tfwire.Reference {
	return tfwire.Ref("aws_db_instance", r.Name, attr)
}

// ID is the RDS instance identifier.
func (r InstanceReference) ID() tfwire.Reference { return r.ref("id") }

// Arn is the instance ARN.
func (r InstanceReference) Arn() tfwire.Reference { return r.ref("arn") }

// Address is the instance hostname.
func (r InstanceReference) Address() tfwire.Reference { return r.ref("address") }

// Endpoint is the connection endpoint in "address:port" form.
func (r InstanceReference) Endpoint() tfwire.Reference { return r.ref("endpoint") }

// Port is the listening port.
func (r InstanceReference) Port() tfwire.Reference { return r.ref("port") }

// IsAurora reports whether the declared engine is an Aurora engine.
func (r InstanceReference) IsAurora() bool { return r.instance.IsAurora() }

// SupportsIAMAuthentication reports whether the declared engine supports IAM
// database authentication.
func (r InstanceReference) SupportsIAMAuthentication() bool {
	switch r.instance.Engine {
	case "mysql", "postgres", "mariadb", "aurora-mysql", "aurora-postgresql":
		return true
	}
	return false
}

// SupportsStorageAutoscaling reports whether the declared configuration can
// use storage autoscaling (non-Aurora with max_allocated_storage headroom).
func (r InstanceReference) SupportsStorageAutoscaling() bool {
	return !r.instance.IsAurora() && r.instance.MaxAllocatedStorage > r.instance.AllocatedStorage
}

const hoursPerMonth = 730

// on-demand single-AZ us-east-1 pricing, USD per hour
var instanceHourly = map[string]float64{
	"db.t3.micro":   0.018,
	"db.t3.small":   0.036,
	"db.t3.medium":  0.072,
	"db.t4g.micro":  0.016,
	"db.t4g.medium": 0.065,
	"db.m5.large":   0.171,
	"db.m5.xlarge":  0.342,
	"db.m6g.large":  0.152,
	"db.r5.large":   0.24,
	"db.r5.xlarge":  0.48,
	"db.r6g.large":  0.258,
}

// USD per GB-month
var storageMonthly = map[string]float64{
	"standard": 0.10,
	"gp2":      0.115,
	"gp3":      0.115,
	"io1":      0.125,
	"io2":      0.125,
}

// MonthlyCostEstimate returns a rough on-demand monthly cost in USD for the
// declared instance class and storage. Unknown instance classes estimate at
// zero; Aurora storage is excluded (billed per cluster).
func (r InstanceReference) MonthlyCostEstimate() float64 {
	cost := instanceHourly[r.instance.InstanceClass] * hoursPerMonth
	if r.instance.MultiAz {
		cost *= 2
	}
	if !r.instance.IsAurora() {
		cost += storageMonthly[r.instance.StorageType] * float64(r.instance.AllocatedStorage)
	}
	return cost
}
