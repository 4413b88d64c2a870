package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	tfwire "github.com/tfwire/tfwire-aws-go"
	"github.com/tfwire/tfwire-aws-go/internal/manifest"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Validate a stack manifest",
		Long: `Validate loads a YAML stack manifest, runs every resource's validation
rules, and checks cross-resource references. The result is printed as JSON.

Examples:
    tfwire-aws validate stack.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}
	return cmd
}

func runValidate(manifestPath string) error {
	result := tfwire.ValidateResult{Success: true}

	m, err := manifest.Load(manifestPath)
	if err != nil {
		result.Success = false
		result.Errors = append(result.Errors, err.Error())
		return outputValidateResult(result)
	}

	doc, err := m.Build(nil)
	if err != nil {
		result.Success = false
		result.Errors = append(result.Errors, err.Error())
		return outputValidateResult(result)
	}

	result.Resources = doc.ResourceCount()
	if err := doc.Validate(); err != nil {
		result.Success = false
		result.Errors = append(result.Errors, err.Error())
	}
	return outputValidateResult(result)
}

func outputValidateResult(result tfwire.ValidateResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))

	if !result.Success {
		os.Exit(1)
	}
	return nil
}
