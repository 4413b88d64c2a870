// Package lint checks a built Terraform document for risky configuration.
package lint

import (
	tfwire "github.com/tfwire/tfwire-aws-go"
)

// Issue and Severity values match the CLI output types.
type Issue = tfwire.LintIssue

// Severity levels for issues.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Rule inspects a document and reports issues.
type Rule interface {
	// ID returns the stable rule identifier (e.g. "TFW001").
	ID() string
	// Description returns a one-line summary for `lint --list`.
	Description() string
	// Check inspects the document.
	Check(doc *tfwire.Document) []Issue
}

// Result contains the outcome of linting.
type Result struct {
	Success bool
	Issues  []Issue
}

// Options configures the linter.
type Options struct {
	// Rules to enable. If empty, all rules are enabled.
	EnabledRules []string
}

// Run applies the configured rules to the document.
func Run(doc *tfwire.Document, opts Options) Result {
	var issues []Issue
	for _, rule := range getRules(opts) {
		issues = append(issues, rule.Check(doc)...)
	}
	return Result{
		Success: len(issues) == 0,
		Issues:  issues,
	}
}

// getRules returns the rules to use based on options.
func getRules(opts Options) []Rule {
	all := AllRules()

	if len(opts.EnabledRules) == 0 {
		return all
	}

	enabled := make(map[string]bool)
	for _, id := range opts.EnabledRules {
		enabled[id] = true
	}

	var filtered []Rule
	for _, r := range all {
		if enabled[r.ID()] {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
