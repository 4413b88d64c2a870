// Package interp provides Terraform interpolation helpers.
// This file contains IAM policy document types and helpers.
package interp

import (
	"encoding/json"

	"github.com/tfwire/tfwire-aws-go/schema"
)

// PolicyDocument represents an IAM policy document.
//
// Example:
//
//	var readOnly = interp.PolicyDocument{
//	    Version:   "2012-10-17",
//	    Statement: interp.Any(readStatement),
//	}
type PolicyDocument struct {
	Version   string `json:"Version,omitempty"`
	Statement []any  `json:"Statement"`
}

// NewPolicyDocument creates a PolicyDocument with the default version.
func NewPolicyDocument(statements ...any) PolicyDocument {
	return PolicyDocument{Version: "2012-10-17", Statement: statements}
}

// Render serializes the document to the JSON string Terraform expects in
// policy attributes (the jsonencode() equivalent).
func (d PolicyDocument) Render() (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Validate checks the document structure: version, statement effects, and
// that every statement carries an action and a target.
func (d PolicyDocument) Validate() error {
	var errs schema.Errors

	schema.OneOf(&errs, "Version", d.Version, "2012-10-17", "2008-10-17")
	if len(d.Statement) == 0 {
		errs.Add("Statement", "policy document has no statements")
	}

	for i, raw := range d.Statement {
		stmt, ok := raw.(PolicyStatement)
		if !ok {
			continue // opaque statements (maps, raw JSON) pass through
		}
		field := func(name string) string {
			return Format("Statement[%d].%s", i, name)
		}
		schema.OneOf(&errs, field("Effect"), stmt.Effect, "Allow", "Deny")
		schema.Required(&errs, field("Effect"), stmt.Effect != "")
		schema.AtLeastOneOf(&errs,
			[]string{field("Action"), field("NotAction")},
			[]bool{stmt.Action != nil, stmt.NotAction != nil})
		schema.AtLeastOneOf(&errs,
			[]string{field("Resource"), field("NotResource"), field("Principal")},
			[]bool{stmt.Resource != nil, stmt.NotResource != nil, stmt.Principal != nil})
	}

	return errs.OrNil()
}

// PolicyStatement represents an IAM policy statement.
//
// Example:
//
//	var readStatement = interp.PolicyStatement{
//	    Effect:   "Allow",
//	    Action:   interp.Any("s3:GetObject"),
//	    Resource: interp.Format("%s/*", bucket.Arn()),
//	}
type PolicyStatement struct {
	Sid         string `json:"Sid,omitempty"`
	Effect      string `json:"Effect"`
	Principal   any    `json:"Principal,omitempty"`
	Action      any    `json:"Action,omitempty"`
	NotAction   any    `json:"NotAction,omitempty"`
	Resource    any    `json:"Resource,omitempty"`
	NotResource any    `json:"NotResource,omitempty"`
	Condition   Json   `json:"Condition,omitempty"`
}

// MarshalJSON keeps statements stable when embedded as any.
func (s PolicyStatement) MarshalJSON() ([]byte, error) {
	type plain PolicyStatement
	return json.Marshal(plain(s))
}

// --- Principal Helpers ---

// ServicePrincipal represents a service principal (e.g., lambda.amazonaws.com).
// Serializes to {"Service": ...} format.
type ServicePrincipal []any

// MarshalJSON serializes to {"Service": ...} format.
func (p ServicePrincipal) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(map[string]any{"Service": p[0]})
	}
	return json.Marshal(map[string]any{"Service": []any(p)})
}

// AWSPrincipal represents an AWS account/role/user principal.
// Serializes to {"AWS": ...} format.
type AWSPrincipal []any

// MarshalJSON serializes to {"AWS": ...} format.
func (p AWSPrincipal) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(map[string]any{"AWS": p[0]})
	}
	return json.Marshal(map[string]any{"AWS": []any(p)})
}

// FederatedPrincipal represents a federated identity principal.
// Serializes to {"Federated": ...} format.
type FederatedPrincipal []any

// MarshalJSON serializes to {"Federated": ...} format.
func (p FederatedPrincipal) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(map[string]any{"Federated": p[0]})
	}
	return json.Marshal(map[string]any{"Federated": []any(p)})
}

// AllPrincipal represents the wildcard principal "*".
const AllPrincipal = "*"

// --- IAM Condition Operator Constants ---
// Use these as keys in Condition maps for typo prevention.

const (
	// String conditions
	StringEquals    = "StringEquals"
	StringNotEquals = "StringNotEquals"
	StringLike      = "StringLike"
	StringNotLike   = "StringNotLike"

	// Numeric conditions
	NumericEquals         = "NumericEquals"
	NumericLessThan       = "NumericLessThan"
	NumericLessThanEquals = "NumericLessThanEquals"
	NumericGreaterThan    = "NumericGreaterThan"

	// Boolean condition
	Bool = "Bool"

	// IP address conditions
	IpAddress    = "IpAddress"
	NotIpAddress = "NotIpAddress"

	// ARN conditions
	ArnEquals = "ArnEquals"
	ArnLike   = "ArnLike"

	// Null condition
	Null = "Null"
)
