// Package cli implements the dashboardctl command line.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	output     string
	noColor    bool
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "dashboardctl",
		Short: "Serve and manage saved dashboards and widgets",
		Long: `dashboardctl runs the dashboard service and inspects its storage.

Dashboards and widgets are stored as whole collections in the backend named
by the configuration file (file, memory or postgres). Environment variables
such as PORT, DB_HOST and DASHBOARD_STORAGE override the file.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "dashboard.yaml", "Path to the configuration file")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", string(FormatText), "Output format: text, json or yaml")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable styled output")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newDashboardsCmd(opts))
	cmd.AddCommand(newWidgetsCmd(opts))
	cmd.AddCommand(newPrefsCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
