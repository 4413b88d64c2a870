// Command tfwire-aws generates Terraform configuration from YAML stack
// manifests.
//
// Usage:
//
//	tfwire-aws build stack.yaml       Generate Terraform JSON
//	tfwire-aws validate stack.yaml    Validate the manifest
//	tfwire-aws lint stack.yaml        Check for risky configuration
//	tfwire-aws version                Show version
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "tfwire-aws",
		Short: "Generate Terraform configuration for AWS resources",
		Long: `tfwire-aws builds validated Terraform configuration from YAML stack manifests.

Declare your infrastructure as resource kinds with attributes:

    resources:
      - kind: sqs_queue
        name: jobs
        attributes:
          name: app-jobs

Then generate Terraform JSON:

    tfwire-aws build stack.yaml`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newBuildCmd(),
		newValidateCmd(),
		newLintCmd(),
		newGraphCmd(),
		newListCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tfwire-aws %s\n", getVersion())
		},
	}
}
