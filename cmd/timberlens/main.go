package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/timberlens-org/timberlens/analyst"
	"github.com/timberlens-org/timberlens/comext"
	"github.com/timberlens-org/timberlens/config"
	"github.com/timberlens-org/timberlens/server"
	"github.com/timberlens-org/timberlens/translator"
)

const version = "0.1.0"

var (
	cfgPath string
	verbose bool
)

func main() {
	root := &cobra.Command{
		Use:   "timberlens",
		Short: "EU softwood timber export analyst",
		Long: `timberlens answers natural-language questions about EU softwood timber
exports by translating them into restricted queries over a normalized
Eurostat Comext dataset and narrating the computed result.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "timberlens.yaml", "path to config file (optional)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newAskCmd(), newServeCmd(), newFetchCmd(), newExportCmd(), newVersionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *zap.SugaredLogger {
	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

// buildService assembles the full stack from configuration.
func buildService(ctx context.Context, log *zap.SugaredLogger) (*analyst.Service, *config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	fetcher := comext.NewFetcher(log,
		comext.WithEndpoint(cfg.Data.Endpoint),
		comext.WithTimeout(cfg.FetchTimeout()),
	)
	normalizer := comext.NewNormalizer(log)

	if cfg.LLM.APIKey == "" {
		return nil, nil, fmt.Errorf("%s is required", config.EnvAPIKey)
	}
	llm, err := translator.NewGeminiClient(ctx, translator.Config{
		APIKey: cfg.LLM.APIKey,
		Model:  cfg.LLM.Model,
	})
	if err != nil {
		return nil, nil, err
	}

	return analyst.NewService(fetcher, normalizer, llm, cfg.TTL(), log), cfg, nil
}

func newAskCmd() *cobra.Command {
	showQuery := false
	cmd := &cobra.Command{
		Use:   "ask \"question\"",
		Short: "Answer one question and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			defer log.Sync()

			svc, _, err := buildService(cmd.Context(), log)
			if err != nil {
				return err
			}

			ans, err := svc.Ask(cmd.Context(), args[0])
			if err != nil && ans == nil {
				return err
			}

			if showQuery && ans.QueryText != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "query:\n%s\n\n", ans.QueryText)
			}
			if ans.ResultText != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "result: %s\n\n", ans.ResultText)
			}
			if ans.Narrative != "" {
				fmt.Fprintln(cmd.OutOrStdout(), ans.Narrative)
			}
			if err != nil {
				// Narration failed; the literal result above is the answer.
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showQuery, "show-query", false, "print the synthesized query")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			defer log.Sync()

			svc, cfg, err := buildService(cmd.Context(), log)
			if err != nil {
				return err
			}

			// Warm the table so the first question does not pay the fetch.
			if err := svc.Refresh(cmd.Context()); err != nil {
				log.Warnw("initial refresh failed, continuing degraded", "error", err)
			}

			srv := server.New(svc, cfg.Server.DevMode, log)
			return srv.Run(fmt.Sprintf(":%d", cfg.Server.Port))
		},
	}
}

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Refresh the canonical table and print diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			defer log.Sync()

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			fetcher := comext.NewFetcher(log,
				comext.WithEndpoint(cfg.Data.Endpoint),
				comext.WithTimeout(cfg.FetchTimeout()),
			)
			payload, err := fetcher.Fetch(cmd.Context())
			if err != nil {
				return err
			}
			table, err := comext.NewNormalizer(log).Normalize(payload)
			if err != nil {
				return err
			}

			for _, line := range table.ProcessingLog {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			q := table.Quality()
			fmt.Fprintf(cmd.OutOrStdout(), "rows=%d zero=%d negative=%d zero-filled-unit-values=%d\n",
				q.Rows, q.ZeroValues, q.NegativeValues, q.ZeroFilledUnitValues)
			for _, k := range table.ZeroFilled {
				fmt.Fprintf(cmd.OutOrStdout(), "zero-filled: %s %s %s %s\n",
					k.Reporter, k.Partner, k.Product, k.TimePeriod)
			}
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	out := "timberlens-table.xlsx"
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch, normalize and write the canonical table as xlsx",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			defer log.Sync()

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			fetcher := comext.NewFetcher(log,
				comext.WithEndpoint(cfg.Data.Endpoint),
				comext.WithTimeout(cfg.FetchTimeout()),
			)
			payload, err := fetcher.Fetch(cmd.Context())
			if err != nil {
				return err
			}
			table, err := comext.NewNormalizer(log).Normalize(payload)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := comext.ExportXLSX(table, f); err != nil {
				return err
			}
			log.Infow("table exported", "path", out, "rows", table.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", out, "output path")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "timberlens %s\n", version)
		},
	}
}
