package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/godilite/reviewsent/internal/app"
	"github.com/godilite/reviewsent/internal/config"
	"github.com/spf13/cobra"
)

const defaultScoreOutput = "data_with_sentiment.csv"

type globalFlags struct {
	configPath  string
	debug       bool
	appEnv      string
	scorer      string
	lexicon     string
	scorerAddr  string
	redisAddr   string
	sqliteTable string
}

func newRootCommand() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "reviewsent",
		Short:         "Rank the most negative customer reviews and count their sentiment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "YAML config file")
	pf.BoolVar(&g.debug, "debug", false, "enable debug logging")
	pf.StringVar(&g.appEnv, "app-env", "", "application environment (production switches to JSON logs)")
	pf.StringVar(&g.scorer, "scorer", "", "polarity scorer: lexicon, remote or none")
	pf.StringVar(&g.lexicon, "lexicon", "", "TSV file of word scores extending the built-in lexicon")
	pf.StringVar(&g.scorerAddr, "scorer-addr", "", "address of a remote polarity server")
	pf.StringVar(&g.redisAddr, "redis-addr", "", "Redis address for the score cache")
	pf.StringVar(&g.sqliteTable, "sqlite-table", "", "table read from SQLite inputs")

	root.AddCommand(
		newAnalyzeCommand(g),
		newScoreCommand(g),
		newValidateCommand(g),
		newServeCommand(g),
	)
	return root
}

// loadConfig layers the changed flags of cmd over the file and environment.
func (g *globalFlags) loadConfig(cmd *cobra.Command, apply func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	set := func(name string, fn func()) {
		if flags.Changed(name) {
			fn()
		}
	}
	set("debug", func() { cfg.Debug = g.debug })
	set("app-env", func() { cfg.AppEnv = g.appEnv })
	set("scorer", func() { cfg.Scorer.Kind = g.scorer })
	set("lexicon", func() { cfg.Scorer.LexiconPath = g.lexicon })
	set("scorer-addr", func() { cfg.Scorer.RemoteAddr = g.scorerAddr })
	set("redis-addr", func() { cfg.RedisAddr = g.redisAddr })
	set("sqlite-table", func() { cfg.SQLiteTable = g.sqliteTable })
	if apply != nil {
		apply(cfg)
	}
	return cfg, nil
}

// withApp builds the App for cmd and closes it after run returns.
func (g *globalFlags) withApp(cmd *cobra.Command, apply func(*config.Config), run func(context.Context, *app.App) error) error {
	cfg, err := g.loadConfig(cmd, apply)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, cfg, logger.Named(cmd.Name()))
	if err != nil {
		_ = logger.Sync()
		return err
	}
	defer application.Close()

	return run(ctx, application)
}

func newAnalyzeCommand(g *globalFlags) *cobra.Command {
	var (
		inputs      []string
		output      string
		chartOutput string
		top         int
		textColumn  string
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Write the worst reviews and the sentiment counts as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			apply := func(cfg *config.Config) {
				flags := cmd.Flags()
				if flags.Changed("input") {
					cfg.InputPaths = inputs
				}
				if flags.Changed("output") {
					cfg.OutputPath = output
				}
				if flags.Changed("chart-output") {
					cfg.ChartOutputPath = chartOutput
				}
				if flags.Changed("top") {
					cfg.TopN = top
				}
				if flags.Changed("text-column") {
					cfg.TextColumn = textColumn
				}
			}
			return g.withApp(cmd, apply, func(ctx context.Context, a *app.App) error {
				res, err := a.Analyze(ctx)
				if err != nil {
					return err
				}
				for _, w := range res.Warnings {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ranked %d of %d reviews by %s\nwrote %s\nwrote %s\n",
					len(res.Ranked), res.Records, res.Strategy, res.OutputPath, res.ChartPath)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&inputs, "input", "i", nil, "input file (csv, tsv, xlsx, html or sqlite); repeatable")
	f.StringVarP(&output, "output", "o", "", "ranked reviews JSON path")
	f.StringVar(&chartOutput, "chart-output", "", "sentiment counts JSON path (default next to --output)")
	f.IntVarP(&top, "top", "n", 0, "number of reviews to keep")
	f.StringVar(&textColumn, "text-column", "", "column holding the review text")
	return cmd
}

func newScoreCommand(g *globalFlags) *cobra.Command {
	var (
		inputs     []string
		output     string
		textColumn string
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score every review and write the enriched table as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			apply := func(cfg *config.Config) {
				if cmd.Flags().Changed("input") {
					cfg.InputPaths = inputs
				}
				if cmd.Flags().Changed("text-column") {
					cfg.TextColumn = textColumn
				}
			}
			return g.withApp(cmd, apply, func(ctx context.Context, a *app.App) error {
				res, err := a.Score(ctx, output)
				if err != nil {
					return err
				}
				for _, w := range res.Warnings {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "scored %d reviews\nwrote %s\n", res.Dataset.Len(), output)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&inputs, "input", "i", nil, "input file; repeatable")
	f.StringVarP(&output, "output", "o", defaultScoreOutput, "scored CSV path")
	f.StringVar(&textColumn, "text-column", "", "column holding the review text")
	return cmd
}

func newValidateCommand(g *globalFlags) *cobra.Command {
	var (
		inputs     []string
		textColumn string
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Report whether the inputs can be analysed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			apply := func(cfg *config.Config) {
				if cmd.Flags().Changed("input") {
					cfg.InputPaths = inputs
				}
				if cmd.Flags().Changed("text-column") {
					cfg.TextColumn = textColumn
				}
				// Validation never scores.
				cfg.Scorer.Kind = config.ScorerNone
				cfg.RedisAddr = ""
			}
			return g.withApp(cmd, apply, func(ctx context.Context, a *app.App) error {
				report, err := a.Validate(ctx)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			})
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&inputs, "input", "i", nil, "input file; repeatable")
	f.StringVar(&textColumn, "text-column", "", "column holding the review text")
	return cmd
}

func newServeCommand(g *globalFlags) *cobra.Command {
	var (
		port       int
		reflection bool
	)
	cmd := &cobra.Command{
		Use:   "serve-polarity",
		Short: "Serve the lexicon scorer over gRPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			apply := func(cfg *config.Config) {
				if cmd.Flags().Changed("port") {
					cfg.GRPCPort = port
				}
				if cmd.Flags().Changed("reflection") {
					cfg.GRPCReflectionEnabled = reflection
				}
				cfg.Scorer.Kind = config.ScorerLexicon
				cfg.RedisAddr = ""
			}
			return g.withApp(cmd, apply, func(ctx context.Context, a *app.App) error {
				return a.ServePolarity(ctx)
			})
		},
	}

	f := cmd.Flags()
	f.IntVarP(&port, "port", "p", 0, "gRPC listen port")
	f.BoolVar(&reflection, "reflection", false, "enable gRPC server reflection")
	return cmd
}
