// secquery-forticnapp is an MCP server exposing Lacework FortiCNAPP CVE
// queries to an LLM orchestrator over stdio.
package main

import (
	"fmt"
	"os"

	"github.com/secbridge/secquery/config"
	"github.com/secbridge/secquery/lacework"
	"github.com/secbridge/secquery/mcpserve"
	"github.com/secbridge/secquery/tools"
	"github.com/spf13/cobra"
)

const version = "0.2.0"

func main() {
	var configPath string

	root := &cobra.Command{
		Use:          "secquery-forticnapp",
		Short:        "MCP server for Lacework FortiCNAPP vulnerability queries",
		Long:         "Exposes FortiCNAPP CVE and host lookups as MCP tools over stdio. Requires a configured lacework CLI on the PATH.",
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
				lacework.NewListCVEsTool(cfg.Lacework),
				lacework.NewListHostsByCVETool(cfg.Lacework),
				lacework.NewGetCriticalCVEsTool(cfg.Lacework),
			)
			return mcpserve.Serve("secquery-forticnapp", version, reg)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config YAML (defaults apply when unset)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
