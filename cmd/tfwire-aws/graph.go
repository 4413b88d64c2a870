package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tfwire/tfwire-aws-go/internal/graph"
	"github.com/tfwire/tfwire-aws-go/internal/manifest"
)

func newGraphCmd() *cobra.Command {
	var (
		outputFormat string
		outputFile   string
	)

	cmd := &cobra.Command{
		Use:   "graph <manifest>",
		Short: "Render the resource dependency graph",
		Long: `Graph builds the manifest and renders its resource dependency graph.

Examples:
    tfwire-aws graph stack.yaml
    tfwire-aws graph stack.yaml --format mermaid
    tfwire-aws graph stack.yaml -o stack.dot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(args[0], outputFormat, outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "dot", "Output format: dot or mermaid")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGraph(manifestPath, format, outputFile string) error {
	var gf graph.Format
	switch format {
	case "dot":
		gf = graph.FormatDOT
	case "mermaid":
		gf = graph.FormatMermaid
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}
	doc, err := m.Build(nil)
	if err != nil {
		return err
	}

	rendered := doc.Graph().Render(gf, m.Name)
	if outputFile == "" {
		fmt.Println(rendered)
		return nil
	}
	return os.WriteFile(outputFile, []byte(rendered), 0644)
}
