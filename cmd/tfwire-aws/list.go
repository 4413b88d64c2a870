package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tfwire/tfwire-aws-go/catalog"
)

func newListCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List supported resource kinds",
		Long: `List displays every resource kind a manifest can declare, with its
Terraform type, category, and cost behavior.

Examples:
    tfwire-aws list
    tfwire-aws list --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func runList(format string) error {
	result := catalog.Default().List()

	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		fmt.Printf("Supported kinds (%d):\n\n", len(result.Kinds))
		for _, kind := range result.Kinds {
			fmt.Printf("  %-26s %-34s %-12s cost: %s\n",
				kind.Kind, kind.TerraformType, kind.Category, kind.CostBehavior)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}
