// Package tfwire_aws provides typed, validated builders for Terraform JSON
// configuration of AWS resources.
//
// Resource attributes are declared with native Go structs, validated against
// per-resource business rules, and attached to a Document:
//
//	doc := tfwire.NewDocument()
//	db, err := rds.AddInstance(doc, "primary", rds.Instance{
//	    Engine:        "postgres",
//	    InstanceClass: "db.r6g.large",
//	})
//
// Each builder returns a reference object exposing Terraform interpolation
// strings (db.Arn() renders "${aws_db_instance.primary.arn}") together with
// computed properties such as cost estimates and capability predicates.
package tfwire_aws

import (
	"encoding/json"
	"fmt"
)

// Resource is implemented by every resource attribute struct.
type Resource interface {
	// ResourceType returns the Terraform type (e.g., "aws_db_instance").
	ResourceType() string
}

// Validator is implemented by resource structs that carry validation rules.
// Add* builders call Validate after applying defaults and refuse to attach
// an invalid resource to a Document.
type Validator interface {
	Validate() error
}

// Reference is a handle to an attribute of a declared resource.
//
// When serialized into a Terraform JSON document it becomes an interpolation
// string:
//
//	Reference{Type: "aws_kms_key", Name: "data", Attribute: "arn"}
//	// → "${aws_kms_key.data.arn}"
type Reference struct {
	// Type is the Terraform resource type
	Type string
	// Name is the symbolic resource name within the document
	Name string
	// Attribute is the exported attribute (e.g., "arn", "endpoint")
	Attribute string
}

// Ref constructs a Reference.
func Ref(typ, name, attr string) Reference {
	return Reference{Type: typ, Name: name, Attribute: attr}
}

// String renders the Terraform interpolation syntax.
func (r Reference) String() string {
	return fmt.Sprintf("${%s.%s.%s}", r.Type, r.Name, r.Attribute)
}

// Address returns the resource address without an attribute ("type.name").
func (r Reference) Address() string {
	return r.Type + "." + r.Name
}

// MarshalJSON serializes the reference as an interpolation string.
func (r Reference) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// IsZero returns true if the Reference has not been populated.
func (r Reference) IsZero() bool {
	return r.Type == "" && r.Name == "" && r.Attribute == ""
}

// BuildResult is the JSON output from `tfwire-aws build`.
type BuildResult struct {
	Success   bool            `json:"success"`
	Config    json.RawMessage `json:"config,omitempty"`
	Resources []string        `json:"resources,omitempty"`
	Errors    []string        `json:"errors,omitempty"`
}

// ValidateResult is the JSON output from `tfwire-aws validate`.
type ValidateResult struct {
	Success   bool     `json:"success"`
	Resources int      `json:"resources"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// LintResult is the JSON output from `tfwire-aws lint`.
type LintResult struct {
	Success bool        `json:"success"`
	Issues  []LintIssue `json:"issues,omitempty"`
}

// LintIssue is a single linting issue.
type LintIssue struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"` // "error", "warning", "info"
	Address  string `json:"address"`  // resource address, e.g. "aws_s3_bucket.logs"
	Message  string `json:"message"`
}

// ListResult is the JSON output from `tfwire-aws list`.
type ListResult struct {
	Kinds []ListKind `json:"kinds"`
}

// ListKind describes one supported resource kind.
type ListKind struct {
	Kind          string `json:"kind"`
	TerraformType string `json:"terraform_type"`
	Category      string `json:"category"`
	CostBehavior  string `json:"cost_behavior"`
}
