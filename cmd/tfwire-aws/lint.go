package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	tfwire "github.com/tfwire/tfwire-aws-go"
	"github.com/tfwire/tfwire-aws-go/internal/lint"
	"github.com/tfwire/tfwire-aws-go/internal/manifest"
)

func newLintCmd() *cobra.Command {
	var (
		outputFormat string
		rules        []string
	)

	cmd := &cobra.Command{
		Use:   "lint <manifest>",
		Short: "Check a stack manifest for risky configuration",
		Long: `Lint builds the manifest and checks the resulting configuration for
security and reliability problems.

Rules:
    TFW001: Security group admits the whole internet on a sensitive port
    TFW002: RDS instance without storage encryption
    TFW003: S3 bucket without a locked-down public access block
    TFW004: IAM policy statement uses a wildcard action
    TFW005: SQS queue without server-side encryption
    TFW006: RDS instance is publicly accessible
    TFW007: Lambda environment variable looks like an inline secret

Examples:
    tfwire-aws lint stack.yaml
    tfwire-aws lint stack.yaml --format json
    tfwire-aws lint stack.yaml --rules TFW001,TFW006`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(args[0], outputFormat, rules)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringSliceVar(&rules, "rules", nil, "Rules to enable (default: all)")

	return cmd
}

func runLint(manifestPath, format string, rules []string) error {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return fmt.Errorf("lint failed: %w", err)
	}
	doc, err := m.Build(nil)
	if err != nil {
		return fmt.Errorf("lint failed: %w", err)
	}

	lintResult := lint.Run(doc, lint.Options{EnabledRules: rules})
	result := tfwire.LintResult{
		Success: lintResult.Success,
		Issues:  lintResult.Issues,
	}
	return outputLintResult(result, format)
}

func outputLintResult(result tfwire.LintResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		if result.Success {
			fmt.Println("No issues found.")
			return nil
		}
		for _, issue := range result.Issues {
			fmt.Printf("%s: %s: %s [%s]\n", issue.Address, issue.Severity, issue.Message, issue.Rule)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if !result.Success {
		os.Exit(1)
	}
	return nil
}
