package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"RWAPulse/internal/di"
	"RWAPulse/pkg/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		envFile    string
	)
	root := &cobra.Command{
		Use:          "rwapulse",
		Short:        "On-chain vs off-chain divergence monitor for tokenized collectibles",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "config file path")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before config; missing file is ignored")

	load := func() (*config.Config, error) {
		// existing variables win over the file
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			log.Printf("dotenv %s: %v", envFile, err)
		}
		cfg, err := config.LoadWithEnv(configPath)
		if err != nil {
			return nil, fmt.Errorf("config load failed: %w", err)
		}
		return cfg, nil
	}

	root.AddCommand(scanCmd(load), serveCmd(load))
	return root
}

func scanCmd(load func() (*config.Config, error)) *cobra.Command {
	var (
		sample int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one cycle, print the signals and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if asJSON {
				// keep stdout clean for the report
				cfg.Render.Enabled = false
				cfg.Logging.Output = "stderr"
			}

			app, cleanup, err := di.InitializeApp(cfg)
			if err != nil {
				return fmt.Errorf("app initialization failed: %w", err)
			}
			defer cleanup()

			rep, err := app.Scan(cmd.Context(), sample)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			if rep.Failed > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d records rejected\n", rep.Failed, len(rep.Results))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&sample, "sample", 0, "scan n random records instead of the full batch")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the scan report as JSON instead of posts")
	return cmd
}

func serveCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the monitor loop and the HTTP API until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			log.Printf("env=%s provider=%s port=%d", cfg.Environment, cfg.Provider.Type, cfg.Server.Port)

			app, cleanup, err := di.InitializeApp(cfg)
			if err != nil {
				return fmt.Errorf("app initialization failed: %w", err)
			}
			defer cleanup()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return app.Run(ctx)
		},
	}
}
