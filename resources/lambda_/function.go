// Package lambda_ provides validated builders for AWS Lambda Terraform
// resources. The trailing underscore keeps the import name clear of local
// identifiers named lambda.
package lambda_

import (
	"fmt"
	"strings"

	tfwire "github.com/tfwire/tfwire-aws-go"
	"github.com/tfwire/tfwire-aws-go/internal/serialize"
	"github.com/tfwire/tfwire-aws-go/schema"
)

// Function describes an aws_lambda_function resource.
type Function struct {
	FunctionName                 string   `json:"function_name,omitempty"`
	Role                         string   `json:"role,omitempty"`
	Runtime                      string   `json:"runtime,omitempty"`
	Handler                      string   `json:"handler,omitempty"`
	MemorySize                   int      `json:"memory_size,omitempty"`
	Timeout                      int      `json:"timeout,omitempty"`
	PackageType                  string   `json:"package_type,omitempty"`
	Filename                     string   `json:"filename,omitempty"`
	SourceCodeHash               string   `json:"source_code_hash,omitempty"`
	S3Bucket                     string   `json:"s3_bucket,omitempty"`
	S3Key                        string   `json:"s3_key,omitempty"`
	S3ObjectVersion              string   `json:"s3_object_version,omitempty"`
	ImageURI                     string   `json:"image_uri,omitempty"`
	Architectures                []string `json:"architectures,omitempty"`
	Layers                       []string `json:"layers,omitempty"`
	ReservedConcurrentExecutions *int     `json:"reserved_concurrent_executions,omitempty"`
	Publish                      bool     `json:"publish,omitempty"`
	KmsKeyArn                    string   `json:"kms_key_arn,omitempty"`

	Environment      *Environment      `json:"environment,omitempty"`
	EphemeralStorage *EphemeralStorage `json:"ephemeral_storage,omitempty"`
	VpcConfig        *VpcConfig        `json:"vpc_config,omitempty"`
	TracingConfig    *TracingConfig    `json:"tracing_config,omitempty"`

	Tags map[string]string `json:"tags,omitempty"`
}

// Environment is the environment block.
type Environment struct {
	Variables map[string]string `json:"variables,omitempty"`
}

// EphemeralStorage is the ephemeral_storage block (/tmp size).
type EphemeralStorage struct {
	Size int `json:"size,omitempty"`
}

// VpcConfig is the vpc_config block.
type VpcConfig struct {
	SubnetIDs        []string `json:"subnet_ids,omitempty"`
	SecurityGroupIDs []string `json:"security_group_ids,omitempty"`
}

// TracingConfig is the tracing_config block.
type TracingConfig struct {
	Mode string `json:"mode,omitempty"` // Active or PassThrough
}

// ResourceType returns the Terraform type.
func (Function) ResourceType() string { return "aws_lambda_function" }

var runtimes = []string{
	"provided.al2023", "provided.al2",
	"python3.11", "python3.12", "python3.13",
	"nodejs18.x", "nodejs20.x", "nodejs22.x",
	"java11", "java17", "java21",
	"dotnet8",
	"ruby3.2", "ruby3.3",
}

// retiredRuntimes get a pointed message instead of the generic enum error.
var retiredRuntimes = map[string]string{
	"go1.x":      "use provided.al2023 with a compiled bootstrap",
	"python2.7":  "use python3.13",
	"nodejs16.x": "use nodejs22.x",
	"dotnetcore": "use dotnet8",
}

func (f *Function) applyDefaults() {
	if f.PackageType == "" {
		f.PackageType = "Zip"
	}
	if f.MemorySize == 0 {
		f.MemorySize = 128
	}
	if f.Timeout == 0 {
		f.Timeout = 3
	}
}

// Validate checks the function attributes.
func (f Function) Validate() error {
	var errs schema.Errors

	schema.Required(&errs, "function_name", f.FunctionName != "")
	schema.StringLength(&errs, "function_name", f.FunctionName, 1, 64)
	schema.Required(&errs, "role", f.Role != "")
	schema.ValidARN(&errs, "role", f.Role)
	schema.ValidARN(&errs, "kms_key_arn", f.KmsKeyArn)

	schema.IntBetween(&errs, "memory_size", f.MemorySize, 128, 10240)
	schema.IntBetween(&errs, "timeout", f.Timeout, 1, 900)
	if f.EphemeralStorage != nil {
		schema.IntBetween(&errs, "ephemeral_storage.size", f.EphemeralStorage.Size, 512, 10240)
	}
	if f.ReservedConcurrentExecutions != nil && *f.ReservedConcurrentExecutions < -1 {
		errs.Add("reserved_concurrent_executions", "%d must be -1 (unreserved) or greater", *f.ReservedConcurrentExecutions)
	}

	schema.OneOf(&errs, "package_type", f.PackageType, "Zip", "Image")
	schema.SubsetOf(&errs, "architectures", f.Architectures, "x86_64", "arm64")
	if f.TracingConfig != nil {
		schema.OneOf(&errs, "tracing_config.mode", f.TracingConfig.Mode, "Active", "PassThrough")
	}

	if hint, retired := retiredRuntimes[f.Runtime]; retired {
		errs.Add("runtime", "%q has been retired: %s", f.Runtime, hint)
	} else {
		schema.OneOf(&errs, "runtime", f.Runtime, runtimes...)
	}

	// exactly one code source
	schema.ExactlyOneOf(&errs,
		[]string{"filename", "s3_bucket", "image_uri"},
		[]bool{f.Filename != "", f.S3Bucket != "", f.ImageURI != ""})
	schema.RequiredWhen(&errs, "s3_key", "s3_bucket is set", f.S3Bucket != "", f.S3Key != "")
	schema.ForbiddenWhen(&errs, "s3_object_version", "s3_bucket is not set", f.S3Bucket == "", f.S3ObjectVersion != "")

	isImage := f.PackageType == "Image"
	schema.RequiredWhen(&errs, "image_uri", "package_type is Image", isImage, f.ImageURI != "")
	schema.ForbiddenWhen(&errs, "image_uri", "package_type is Zip", !isImage, f.ImageURI != "")
	schema.ForbiddenWhen(&errs, "runtime", "package_type is Image", isImage, f.Runtime != "")
	schema.ForbiddenWhen(&errs, "handler", "package_type is Image", isImage, f.Handler != "")
	schema.RequiredWhen(&errs, "runtime", "package_type is Zip", !isImage, f.Runtime != "")
	schema.RequiredWhen(&errs, "handler", "package_type is Zip", !isImage, f.Handler != "")

	if f.VpcConfig != nil {
		schema.Required(&errs, "vpc_config.subnet_ids", len(f.VpcConfig.SubnetIDs) > 0)
		schema.Required(&errs, "vpc_config.security_group_ids", len(f.VpcConfig.SecurityGroupIDs) > 0)
	}

	return errs.OrNil()
}

// AddFunction validates the attributes and attaches an aws_lambda_function
// block to the document.
func AddFunction(doc *tfwire.Document, name string, f Function) (FunctionReference, error) {
	f.applyDefaults()
	if err := f.Validate(); err != nil {
		return FunctionReference{}, fmt.Errorf("aws_lambda_function.%s: %w", name, err)
	}

	attrs, err := serialize.Attrs(f)
	if err != nil {
		return FunctionReference{}, fmt.Errorf("aws_lambda_function.%s: %w", name, err)
	}
	if err := doc.AddResource(f.ResourceType(), name, attrs); err != nil {
		return FunctionReference{}, err
	}

	return FunctionReference{Name: name, function: f}, nil
}

// FunctionReference is a handle to a declared aws_lambda_function.
type FunctionReference struct {
	// Name is the symbolic resource name
	Name string

	function Function
}

func (r FunctionReference) ref(attr string) tfwire.Reference {
	return tfwire.Ref("aws_lambda_function", r.Name, attr)
}

// Arn is the function ARN.
func (r FunctionReference) Arn() tfwire.Reference { return r.ref("arn") }

// QualifiedArn is the ARN including the published version.
func (r FunctionReference) QualifiedArn() tfwire.Reference { return r.ref("qualified_arn") }

// InvokeArn is the ARN used by API Gateway integrations.
func (r FunctionReference) InvokeArn() tfwire.Reference { return r.ref("invoke_arn") }

// FunctionName is the declared function name.
func (r FunctionReference) FunctionName() string { return r.function.FunctionName }

// SupportsSnapStart reports whether the declared runtime supports SnapStart.
func (r FunctionReference) SupportsSnapStart() bool {
	return strings.HasPrefix(r.function.Runtime, "java")
}

// request pricing per GB-second and per million invocations (x86, us-east-1)
const (
	perGBSecond        = 0.0000166667
	perMillionInvokes  = 0.20
	freeTierGBSeconds  = 400_000
	freeTierInvokes    = 1_000_000
)

// MonthlyCostEstimate returns a rough monthly cost in USD, given an expected
// invocation volume and average duration.
func (r FunctionReference) MonthlyCostEstimate(monthlyInvocations int64, avgDurationMillis int) float64 {
	gbSeconds := float64(monthlyInvocations) * float64(avgDurationMillis) / 1000 * float64(r.function.MemorySize) / 1024
	cost := 0.0
	if billable := gbSeconds - freeTierGBSeconds; billable > 0 {
		cost += billable * perGBSecond
	}
	if billable := monthlyInvocations - freeTierInvokes; billable > 0 {
		cost += float64(billable) / 1_000_000 * perMillionInvokes
	}
	return cost
}
