// Package commands implements the attach-nas command line.
package commands

import (
	"flag"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"git.srvlab.io/whiskey/attach-nas/pkg/config"
)

// AppName is shown in logs and the version string
const AppName = "AttachMyNAS"

// DefaultLogFile is used by --log-to-file when --log-file is empty
const DefaultLogFile = "app.log"

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// settings source shared by all commands
	v = config.NewViper()

	// klog flags, registered on the root command
	klogFlags = flag.NewFlagSet("klog", flag.ContinueOnError)

	// current holds the application built by PersistentPreRunE
	current *app
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "attach-nas",
	Short: "Map NAS shares to drive letters",
	Long: `attach-nas maps SMB shares listed in an INI config file to Windows drive
letters with net use, and removes those mappings again.

Each config section names a host, credentials and a list of shares:

  [NAS]
  ip = 192.168.1.6
  username = bob
  password = secret
  shares = docs, media
  letters = J, K

Use "attach-nas [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		defer klog.Flush()
		if current == nil {
			return nil
		}
		return current.writeMetrics()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	// assigned here rather than in the literal: skipsApp refers to rootCmd
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if skipsApp(cmd) {
			return nil
		}
		settings, err := config.LoadSettings(v)
		if err != nil {
			return err
		}
		if err := initLogging(settings); err != nil {
			return err
		}
		current = newApp(klog.Background(), settings)
		return nil
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", config.DefaultConfigPath(), "Share configuration file")
	flags.String("editor", config.DefaultEditor(), "Command used to edit the config file")
	flags.String("log-file", "", "Write logs to this file instead of stderr")
	flags.Bool("log-to-file", false, "Write logs to "+DefaultLogFile+" when --log-file is not set")
	flags.String("metrics-file", "", "Write Prometheus metrics to this file after each command")
	flags.String("metrics-address", "", "Serve /metrics on this address while menu --watch runs")
	flags.Duration("probe-timeout", config.DefaultProbeTimeout, "Timeout for the SMB connection made by probe")

	for key, name := range map[string]string{
		"config":          "config",
		"editor":          "editor",
		"log_file":        "log-file",
		"log_to_file":     "log-to-file",
		"metrics_file":    "metrics-file",
		"metrics_address": "metrics-address",
		"probe_timeout":   "probe-timeout",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", name, err))
		}
	}

	klog.InitFlags(klogFlags)
	flags.AddGoFlag(klogFlags.Lookup("v"))
	flags.AddGoFlag(klogFlags.Lookup("vmodule"))

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(sectionsCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(freeCmd)
	rootCmd.AddCommand(mountCmd)
	rootCmd.AddCommand(mountAllCmd)
	rootCmd.AddCommand(unmountCmd)
	rootCmd.AddCommand(unmountHostCmd)
	rootCmd.AddCommand(unmountConfigCmd)
	rootCmd.AddCommand(unmountEverythingCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(probeCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// skipsApp reports whether cmd runs without config or logging setup
func skipsApp(cmd *cobra.Command) bool {
	return cmd == versionCmd || cmd == rootCmd
}

// initLogging points klog at the configured log file
func initLogging(settings *config.Settings) error {
	logFile := settings.LogFile
	if logFile == "" && v.GetBool("log_to_file") {
		logFile = DefaultLogFile
	}
	if logFile == "" {
		return nil
	}
	for name, value := range map[string]string{
		"logtostderr":     "false",
		"alsologtostderr": "false",
		"log_file":        logFile,
	} {
		if err := klogFlags.Set(name, value); err != nil {
			return fmt.Errorf("failed to configure logging: %w", err)
		}
	}
	return nil
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// logStart writes the startup banner
func logStart(logger klog.Logger, settings *config.Settings) {
	logger.V(2).Info("Starting", "app", AppName, "version", Version,
		"config", settings.ConfigFile, "editor", settings.Editor,
		"time", time.Now().Format(time.RFC3339))
}
