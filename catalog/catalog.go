// Package catalog registers every supported resource kind with its
// Terraform type, cost behavior, and a build function that decodes raw
// attribute maps into the typed resource structs.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	tfwire "github.com/tfwire/tfwire-aws-go"
	"github.com/tfwire/tfwire-aws-go/resources/acm"
	"github.com/tfwire/tfwire-aws-go/resources/batch"
	"github.com/tfwire/tfwire-aws-go/resources/cognito"
	"github.com/tfwire/tfwire-aws-go/resources/ec2"
	"github.com/tfwire/tfwire-aws-go/resources/ecs"
	"github.com/tfwire/tfwire-aws-go/resources/iam"
	"github.com/tfwire/tfwire-aws-go/resources/kms"
	"github.com/tfwire/tfwire-aws-go/resources/lambda_"
	"github.com/tfwire/tfwire-aws-go/resources/rds"
	"github.com/tfwire/tfwire-aws-go/resources/s3"
	"github.com/tfwire/tfwire-aws-go/resources/sqs"
)

// CostBehavior classifies how a kind accrues cost.
const (
	CostDirect = "direct" // billed for existing (instances, keys)
	CostUsage  = "usage"  // billed per request or per second of use
	CostNone   = "none"   // free declarations (IAM, security groups)
)

// BuildFunc decodes raw attributes and attaches the resource to the
// document.
type BuildFunc func(doc *tfwire.Document, name string, attrs map[string]any) error

// Entry describes one supported resource kind.
type Entry struct {
	// Kind is the manifest-facing kind name (e.g. "rds_instance").
	Kind string
	// TerraformType is the primary resource type the kind emits.
	TerraformType string
	// Category groups kinds for the list command.
	Category string
	// CostBehavior is one of CostDirect, CostUsage, CostNone.
	CostBehavior string
	// ReferenceAttrs are the attributes the kind's reference exposes.
	ReferenceAttrs []string
	// Build decodes attributes and attaches the resource.
	Build BuildFunc
}

// Catalog maps kind names to entries.
type Catalog map[string]Entry

// decode round-trips a raw attribute map through JSON into the typed
// resource struct, rejecting unknown attributes.
func decode(attrs map[string]any, target any) error {
	data, err := json.Marshal(attrs)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}

// typedBuild adapts a typed builder into a BuildFunc.
func typedBuild[T any](add func(*tfwire.Document, string, T) error) BuildFunc {
	return func(doc *tfwire.Document, name string, attrs map[string]any) error {
		var resource T
		if err := decode(attrs, &resource); err != nil {
			return fmt.Errorf("decoding attributes: %w", err)
		}
		return add(doc, name, resource)
	}
}

// Default returns the catalog of every supported kind.
func Default() Catalog {
	return Catalog{
		"rds_instance": {
			Kind:           "rds_instance",
			TerraformType:  "aws_db_instance",
			Category:       "database",
			CostBehavior:   CostDirect,
			ReferenceAttrs: []string{"id", "arn", "address", "endpoint", "port"},
			Build: typedBuild(func(doc *tfwire.Document, name string, r rds.Instance) error {
				_, err := rds.AddInstance(doc, name, r)
				return err
			}),
		},
		"sqs_queue": {
			Kind:           "sqs_queue",
			TerraformType:  "aws_sqs_queue",
			Category:       "messaging",
			CostBehavior:   CostUsage,
			ReferenceAttrs: []string{"id", "arn", "url", "name"},
			Build: typedBuild(func(doc *tfwire.Document, name string, q sqs.Queue) error {
				_, err := sqs.AddQueue(doc, name, q)
				return err
			}),
		},
		"kms_key": {
			Kind:           "kms_key",
			TerraformType:  "aws_kms_key",
			Category:       "security",
			CostBehavior:   CostDirect,
			ReferenceAttrs: []string{"key_id", "arn"},
			Build: typedBuild(func(doc *tfwire.Document, name string, k kms.Key) error {
				_, err := kms.AddKey(doc, name, k)
				return err
			}),
		},
		"lambda_function": {
			Kind:           "lambda_function",
			TerraformType:  "aws_lambda_function",
			Category:       "compute",
			CostBehavior:   CostUsage,
			ReferenceAttrs: []string{"arn", "qualified_arn", "invoke_arn", "function_name"},
			Build: typedBuild(func(doc *tfwire.Document, name string, f lambda_.Function) error {
				_, err := lambda_.AddFunction(doc, name, f)
				return err
			}),
		},
		"ecs_cluster": {
			Kind:           "ecs_cluster",
			TerraformType:  "aws_ecs_cluster",
			Category:       "compute",
			CostBehavior:   CostNone,
			ReferenceAttrs: []string{"id", "arn", "name"},
			Build: typedBuild(func(doc *tfwire.Document, name string, c ecs.Cluster) error {
				_, err := ecs.AddCluster(doc, name, c)
				return err
			}),
		},
		"ecs_task_definition": {
			Kind:           "ecs_task_definition",
			TerraformType:  "aws_ecs_task_definition",
			Category:       "compute",
			CostBehavior:   CostUsage,
			ReferenceAttrs: []string{"arn", "family", "revision"},
			Build: typedBuild(func(doc *tfwire.Document, name string, t ecs.TaskDefinition) error {
				_, err := ecs.AddTaskDefinition(doc, name, t)
				return err
			}),
		},
		"ecs_service": {
			Kind:           "ecs_service",
			TerraformType:  "aws_ecs_service",
			Category:       "compute",
			CostBehavior:   CostUsage,
			ReferenceAttrs: []string{"id", "name"},
			Build: typedBuild(func(doc *tfwire.Document, name string, s ecs.Service) error {
				_, err := ecs.AddService(doc, name, s)
				return err
			}),
		},
		"iam_user": {
			Kind:           "iam_user",
			TerraformType:  "aws_iam_user",
			Category:       "identity",
			CostBehavior:   CostNone,
			ReferenceAttrs: []string{"arn", "name", "unique_id"},
			Build: typedBuild(func(doc *tfwire.Document, name string, u iam.User) error {
				_, err := iam.AddUser(doc, name, u)
				return err
			}),
		},
		"s3_bucket": {
			Kind:           "s3_bucket",
			TerraformType:  "aws_s3_bucket",
			Category:       "storage",
			CostBehavior:   CostUsage,
			ReferenceAttrs: []string{"id", "arn", "bucket_domain_name", "bucket_regional_domain_name"},
			Build: typedBuild(func(doc *tfwire.Document, name string, b s3.Bucket) error {
				_, err := s3.AddBucket(doc, name, b)
				return err
			}),
		},
		"security_group": {
			Kind:           "security_group",
			TerraformType:  "aws_security_group",
			Category:       "networking",
			CostBehavior:   CostNone,
			ReferenceAttrs: []string{"id", "arn", "name"},
			Build: typedBuild(func(doc *tfwire.Document, name string, g ec2.SecurityGroup) error {
				_, err := ec2.AddSecurityGroup(doc, name, g)
				return err
			}),
		},
		"cognito_user_pool_client": {
			Kind:           "cognito_user_pool_client",
			TerraformType:  "aws_cognito_user_pool_client",
			Category:       "identity",
			CostBehavior:   CostNone,
			ReferenceAttrs: []string{"id", "client_secret"},
			Build: typedBuild(func(doc *tfwire.Document, name string, c cognito.UserPoolClient) error {
				_, err := cognito.AddUserPoolClient(doc, name, c)
				return err
			}),
		},
		"acm_certificate": {
			Kind:           "acm_certificate",
			TerraformType:  "aws_acm_certificate",
			Category:       "security",
			CostBehavior:   CostNone,
			ReferenceAttrs: []string{"arn", "domain_validation_options"},
			Build: typedBuild(func(doc *tfwire.Document, name string, c acm.Certificate) error {
				_, err := acm.AddCertificate(doc, name, c)
				return err
			}),
		},
		"batch_compute_environment": {
			Kind:           "batch_compute_environment",
			TerraformType:  "aws_batch_compute_environment",
			Category:       "compute",
			CostBehavior:   CostDirect,
			ReferenceAttrs: []string{"arn", "ecs_cluster_arn"},
			Build: typedBuild(func(doc *tfwire.Document, name string, e batch.ComputeEnvironment) error {
				_, err := batch.AddComputeEnvironment(doc, name, e)
				return err
			}),
		},
	}
}

// Kinds returns the registered kind names, sorted.
func (c Catalog) Kinds() []string {
	kinds := make([]string, 0, len(c))
	for kind := range c {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Lookup finds an entry by kind name.
func (c Catalog) Lookup(kind string) (Entry, bool) {
	entry, ok := c[kind]
	return entry, ok
}

// List renders the catalog for the list command.
func (c Catalog) List() tfwire.ListResult {
	var result tfwire.ListResult
	for _, kind := range c.Kinds() {
		entry := c[kind]
		result.Kinds = append(result.Kinds, tfwire.ListKind{
			Kind:          entry.Kind,
			TerraformType: entry.TerraformType,
			Category:      entry.Category,
			CostBehavior:  entry.CostBehavior,
		})
	}
	return result
}
