package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	tfwire "github.com/tfwire/tfwire-aws-go"
	"github.com/tfwire/tfwire-aws-go/internal/manifest"
)

func newBuildCmd() *cobra.Command {
	var (
		outputFormat string
		outputFile   string
	)

	cmd := &cobra.Command{
		Use:   "build <manifest>",
		Short: "Generate Terraform configuration from a stack manifest",
		Long: `Build loads a YAML stack manifest, validates every resource, and renders
the Terraform configuration.

Examples:
    tfwire-aws build stack.yaml
    tfwire-aws build stack.yaml -o main.tf.json
    tfwire-aws build stack.yaml --format hcl -o main.tf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(args[0], outputFormat, outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format: json or hcl")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func buildDocument(manifestPath string) (*tfwire.Document, error) {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	doc, err := m.Build(nil)
	if err != nil {
		return nil, err
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func runBuild(manifestPath, format, outputFile string) error {
	doc, err := buildDocument(manifestPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return fmt.Errorf("build failed")
	}

	var data []byte
	switch format {
	case "json":
		data, err = tfwire.ToJSON(doc)
	case "hcl":
		data, err = tfwire.ToHCL(doc)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	if err != nil {
		return err
	}

	if outputFile == "" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(outputFile, data, 0644)
}
