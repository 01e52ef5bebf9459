package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oddshellnick/osn-system-utils/internal/config"
	"github.com/oddshellnick/osn-system-utils/internal/logging"
)

var (
	version = "0.1.0"
	cfgFile string
	cfg     *config.Config

	outputFlag    string
	logLevelFlag  string
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "osn-sysutil",
	Short: "Host-local process and port utilities",
	Long: `osn-sysutil inspects and controls local system state: the process
table with composable attribute filters, process termination (optionally as
a tree), and localhost port discovery and allocation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if outputFlag != "" {
			cfg.Output = outputFlag
		}
		if logLevelFlag != "" {
			cfg.LogLevel = logLevelFlag
		}
		if logFormatFlag != "" {
			cfg.LogFormat = logFormatFlag
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}

		logging.Init(cfg.LogFormat, cfg.LogLevel, os.Stderr)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("osn-sysutil v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/osn-sysutil/osn-sysutil.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "output format: table, json or yaml")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "log format: text or json")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(psCmd)
	rootCmd.AddCommand(killCmd)
	rootCmd.AddCommand(portsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
