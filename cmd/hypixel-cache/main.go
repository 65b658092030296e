package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Sternrassler/hypixel-cache/pkg/config"
)

// Version information (set by ldflags during build)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := newRootCommand(config.New()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newRootCommand builds the CLI. Running it without a subcommand serves.
func newRootCommand(v *viper.Viper) *cobra.Command {
	var cfgFile string

	serveCmd := newServeCommand(v)

	rootCmd := &cobra.Command{
		Use:   "hypixel-cache",
		Short: "Caching proxy for the Hypixel player API",
		Long: `hypixel-cache answers GET /uuid/{uuid} and GET /name/{name} with Hypixel
player data. Names are resolved through the Mojang API. Name mappings are
cached for an hour and player snapshots for five minutes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.ReadFile(v, cfgFile)
		},
		RunE: serveCmd.RunE,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "YAML config file")
	flags.Int("port", 5000, "listen port")
	flags.String("redis-url", "redis://localhost:6379", "Redis URL or host:port")
	flags.String("cache-backend", config.BackendRedis, "cache backend (redis|memory)")
	flags.String("log-level", "info", "log level (debug|info|warn|error)")
	flags.Bool("log-pretty", false, "human-readable console logs")

	for key, flag := range map[string]string{
		config.KeyPort:         "port",
		config.KeyRedisURL:     "redis-url",
		config.KeyCacheBackend: "cache-backend",
		config.KeyLogLevel:     "log-level",
		config.KeyLogPretty:    "log-pretty",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(serveCmd, newVersionCommand())
	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hypixel-cache version %s (commit: %s, built: %s)\n", Version, Commit, BuildTime)
		},
	}
}
