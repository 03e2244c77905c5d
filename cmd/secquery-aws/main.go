// secquery-aws is an MCP server exposing EC2 instance and security group
// queries to an LLM orchestrator over stdio.
package main

import (
	"fmt"
	"os"

	"github.com/secbridge/secquery/awsec2"
	"github.com/secbridge/secquery/config"
	"github.com/secbridge/secquery/mcpserve"
	"github.com/secbridge/secquery/tools"
	"github.com/spf13/cobra"
)

const version = "0.2.0"

func main() {
	var configPath string

	root := &cobra.Command{
		Use:          "secquery-aws",
		Short:        "MCP server for EC2 instance and security group queries",
		Long:         "Exposes EC2 metadata and security group lookups as MCP tools over stdio. Uses the aws CLI and its ambient credential chain.",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			mcpserve.ConfigureLogging(cfg.LogLevel)

			reg := tools.NewRegistry()
			reg.MustRegister(
				awsec2.NewDescribeInstanceTool(cfg.AWS),
				awsec2.NewGetSecurityGroupsTool(cfg.AWS),
			)
			return mcpserve.Serve("secquery-aws", version, reg)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config YAML (defaults apply when unset)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
