// Package interp provides Terraform interpolation helpers.
//
// Expression helpers build interpolation strings:
//
//	Var("environment")      → "${var.environment}"
//	Data("aws_region", "current", "name") → "${data.aws_region.current.name}"
//
// Well-known account context values (CurrentRegion, CurrentAccountID) refer
// to the standard data sources declared by DeclareStandardData.
package interp

import (
	"fmt"

	tfwire "github.com/tfwire/tfwire-aws-go"
)

// Json is a shorthand for map[string]any.
// Used for inline JSON objects like policy Condition blocks.
//
// Example:
//
//	Condition: Json{
//	    Bool: Json{"aws:SecureTransport": "false"},
//	}
type Json = map[string]any

// List creates a typed slice from the given items.
// Avoids verbose slice type annotations in struct literals.
func List[T any](items ...T) []T {
	return items
}

// Any creates a []any slice from the given items.
func Any(items ...any) []any {
	return items
}

// Var returns an interpolation of a Terraform input variable.
func Var(name string) string {
	return fmt.Sprintf("${var.%s}", name)
}

// Local returns an interpolation of a Terraform local value.
func Local(name string) string {
	return fmt.Sprintf("${local.%s}", name)
}

// Data returns an interpolation of a data source attribute.
func Data(typ, name, attr string) string {
	return fmt.Sprintf("${data.%s.%s.%s}", typ, name, attr)
}

// Format builds an interpolated string with fmt.Sprintf semantics. Use it to
// combine references with literal text:
//
//	Format("%s/*", bucket.Arn())
func Format(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

// Account context interpolations. These resolve against the data sources
// declared by DeclareStandardData.
const (
	CurrentRegion    = "${data.aws_region.current.name}"
	CurrentAccountID = "${data.aws_caller_identity.current.account_id}"
	CurrentPartition = "${data.aws_partition.current.partition}"
	DNSSuffix        = "${data.aws_partition.current.dns_suffix}"
)

// DeclareStandardData declares the aws_region, aws_caller_identity and
// aws_partition data sources the account context interpolations depend on.
// Declaring twice is an error, so callers do it once per document.
func DeclareStandardData(doc *tfwire.Document) error {
	if err := doc.AddData("aws_region", "current", nil); err != nil {
		return err
	}
	if err := doc.AddData("aws_caller_identity", "current", nil); err != nil {
		return err
	}
	return doc.AddData("aws_partition", "current", nil)
}
