package main

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"llmserver/internal/catalog"
	"llmserver/internal/config"
)

// options holds command-line flags. Flags override file and environment values
// only when explicitly set.
type options struct {
	configPath  string
	envFile     string
	addr        string
	modelsDir   string
	logLevel    string
	logFormat   string
	corsOrigins string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "llmserver",
		Short:         "OpenAI-compatible gateway for local GGUF chat and embedding models",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Path to a config file (.yaml, .yml, .json, .toml)")
	pf.StringVar(&opts.envFile, "env-file", ".env", "Dotenv file loaded before reading the environment")
	pf.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&opts.logFormat, "log-format", "auto", "Log format: auto, console or json (auto picks console on a terminal)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	bindServeFlags(root.Flags(), opts)
	bindServeFlags(serve.Flags(), opts)

	root.AddCommand(serve, &cobra.Command{
		Use:   "catalog",
		Short: "Print the models that can be downloaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printCatalog(cmd)
		},
	})
	return root
}

func bindServeFlags(f *pflag.FlagSet, opts *options) {
	f.StringVar(&opts.addr, "addr", "", "HTTP listen address, e.g. :8000")
	f.StringVar(&opts.modelsDir, "models-dir", "", "Directory holding chat/ and embed/ model subdirectories")
	f.StringVar(&opts.corsOrigins, "cors-origins", "", "Comma-separated list of allowed CORS origins")
}

// resolveConfig layers defaults, config file, environment and explicit flags.
func resolveConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Resolve(opts.configPath)
	if err != nil {
		return cfg, err
	}
	f := cmd.Flags()
	if f.Changed("addr") {
		cfg.Addr = opts.addr
	}
	if f.Changed("models-dir") {
		cfg.ModelsDir = opts.modelsDir
	}
	if f.Changed("cors-origins") {
		cfg.CORSOrigins = config.SplitCSV(opts.corsOrigins)
		cfg.CORSEnabled = len(cfg.CORSOrigins) > 0
	}
	return cfg, cfg.Validate()
}

func printCatalog(cmd *cobra.Command) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("CLASS", "REPOSITORY", "FILE")
	for _, c := range catalog.Classes {
		for _, e := range catalog.Downloadable(c) {
			if err := table.Append([]string{string(c), e.Repository, e.Filename}); err != nil {
				return err
			}
		}
	}
	return table.Render()
}
