package app

import (
	"context"
	"errors"
	"fmt"

	pb "github.com/godilite/reviewsent/api/v1"
	"github.com/godilite/reviewsent/internal/config"
	"github.com/godilite/reviewsent/internal/dataset"
	"github.com/godilite/reviewsent/internal/export"
	handler "github.com/godilite/reviewsent/internal/grpc"
	"github.com/godilite/reviewsent/internal/polarity"
	"github.com/godilite/reviewsent/internal/repository"
	"github.com/godilite/reviewsent/internal/service"
	"github.com/godilite/reviewsent/pkg/cache"
	grpcsrv "github.com/godilite/reviewsent/pkg/grpc/server"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Exit statuses of the command line.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitInputNotFound = 2
	ExitSchema        = 3
	ExitOutput        = 4
	ExitConfig        = 5
)

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, repository.ErrInputNotFound):
		return ExitInputNotFound
	case errors.Is(err, dataset.ErrSchema):
		return ExitSchema
	case errors.Is(err, export.ErrOutput):
		return ExitOutput
	case errors.Is(err, config.ErrInvalid):
		return ExitConfig
	default:
		return ExitFailure
	}
}

type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	loader   *repository.Loader
	pipeline *service.PipelineService
	warnings []string
	closers  []func() error
}

// AnalyzeResult is the outcome of Analyze with the paths it wrote.
type AnalyzeResult struct {
	*service.Result
	OutputPath string
	ChartPath  string
}

// NewApp validates cfg and builds the configured scorer. A remote scorer or
// cache that cannot be reached degrades to a warning.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("run_id", uuid.NewString()))

	a := &App{
		cfg:    cfg,
		logger: logger,
		loader: repository.NewLoader(
			repository.WithSQLiteTable(cfg.SQLiteTable),
			repository.WithLogger(logger),
		),
	}

	scorer, err := a.buildScorer(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.pipeline = service.NewPipelineService(scorer, logger.Named("pipeline"))
	return a, nil
}

func (a *App) warn(msg string, fields ...zap.Field) {
	a.logger.Warn(msg, fields...)
	a.warnings = append(a.warnings, msg)
}

func (a *App) buildScorer(ctx context.Context) (service.PolarityScorer, error) {
	var scorer service.PolarityScorer
	switch a.cfg.Scorer.Kind {
	case config.ScorerNone:
		a.logger.Info("polarity scorer disabled")
		return nil, nil
	case config.ScorerLexicon:
		lex, err := a.lexicon()
		if err != nil {
			return nil, err
		}
		scorer = lex
	case config.ScorerRemote:
		remote, err := polarity.DialRemote(ctx, a.cfg.Scorer.RemoteAddr,
			polarity.WithTimeout(a.cfg.Scorer.Timeout),
			polarity.WithLogger(a.logger),
		)
		if err != nil {
			a.warn(fmt.Sprintf("remote scorer at %s: %v", a.cfg.Scorer.RemoteAddr, err), zap.Error(err))
			return nil, nil
		}
		a.closers = append(a.closers, remote.Close)
		scorer = remote
	}

	if a.cfg.RedisAddr == "" {
		return scorer, nil
	}
	cacheClient, err := cache.New(ctx,
		cache.WithAddress(a.cfg.RedisAddr),
		cache.WithDialTimeout(a.cfg.Scorer.Timeout),
		cache.WithKeyPrefix("reviewsent:"),
	)
	if err != nil {
		a.warn(fmt.Sprintf("score cache disabled: %v", err), zap.Error(err))
		return scorer, nil
	}
	a.closers = append(a.closers, cacheClient.Close)
	a.logger.Info("score cache enabled", zap.String("addr", a.cfg.RedisAddr))
	return polarity.NewCached(scorer, cacheClient, a.cfg.CacheTTL, a.logger), nil
}

func (a *App) lexicon() (*polarity.Lexicon, error) {
	if a.cfg.Scorer.LexiconPath == "" {
		return polarity.NewLexicon(), nil
	}
	lex, err := polarity.LoadLexicon(a.cfg.Scorer.LexiconPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	a.logger.Info("loaded lexicon", zap.String("path", a.cfg.Scorer.LexiconPath), zap.Int("words", lex.Len()))
	return lex, nil
}

func (a *App) load(ctx context.Context) (*dataset.Table, []string, error) {
	if len(a.cfg.InputPaths) == 0 {
		return nil, nil, fmt.Errorf("%w: no input paths", config.ErrInvalid)
	}
	t, warnings, err := a.loader.LoadAll(ctx, a.cfg.InputPaths)
	if err != nil {
		return nil, nil, err
	}
	return t, append(append([]string(nil), a.warnings...), warnings...), nil
}

// Analyze ranks the worst reviews and writes the ranked export and the
// chart counts.
func (a *App) Analyze(ctx context.Context) (*AnalyzeResult, error) {
	t, warnings, err := a.load(ctx)
	if err != nil {
		return nil, err
	}

	result, err := a.pipeline.Analyze(ctx, t, service.AnalyzeOptions{
		TopN:       a.cfg.TopN,
		TextColumn: a.cfg.TextColumn,
	})
	if err != nil {
		return nil, err
	}
	result.Warnings = append(warnings, result.Warnings...)

	out := &AnalyzeResult{
		Result:     result,
		OutputPath: a.cfg.OutputPath,
		ChartPath:  a.cfg.ChartPath(),
	}
	if err := export.WriteRanked(out.OutputPath, result.Ranked); err != nil {
		return nil, err
	}
	if err := export.WriteAggregates(out.ChartPath, result.Report); err != nil {
		return nil, err
	}

	a.logger.Info("analysis written",
		zap.String("output", out.OutputPath),
		zap.String("chart", out.ChartPath),
		zap.Int("records", result.Records),
		zap.Int("ranked", len(result.Ranked)),
		zap.Int("warnings", len(result.Warnings)))
	return out, nil
}

// Score scores every record and writes the enriched table as CSV to path.
func (a *App) Score(ctx context.Context, path string) (*service.ScoreResult, error) {
	t, warnings, err := a.load(ctx)
	if err != nil {
		return nil, err
	}

	result, err := a.pipeline.Score(ctx, t, a.cfg.TextColumn)
	if err != nil {
		return nil, err
	}
	result.Warnings = append(warnings, result.Warnings...)

	if err := export.WriteDatasetCSV(path, result.Dataset); err != nil {
		return nil, err
	}
	a.logger.Info("scored table written", zap.String("output", path), zap.Int("records", result.Dataset.Len()))
	return result, nil
}

// Validate inspects the inputs without running the pipeline. Inputs that
// cannot be parsed are reported, not returned as errors.
func (a *App) Validate(ctx context.Context) (service.Inspection, error) {
	if len(a.cfg.InputPaths) == 0 {
		return service.Inspection{}, fmt.Errorf("%w: no input paths", config.ErrInvalid)
	}

	var size int64
	for _, p := range a.cfg.InputPaths {
		n, err := repository.Stat(p)
		if err != nil {
			return service.Inspection{}, err
		}
		size += n
	}

	t, _, err := a.loader.LoadAll(ctx, a.cfg.InputPaths)
	if err != nil {
		if errors.Is(err, repository.ErrInputNotFound) {
			return service.Inspection{}, err
		}
		return service.Inspection{
			Name:       fmt.Sprint(a.cfg.InputPaths),
			Size:       size,
			Columns:    []string{},
			SampleRows: []map[string]*string{},
			Problems:   []string{err.Error()},
		}, nil
	}
	return service.Inspect(t, size, a.cfg.TextColumn), nil
}

// ServePolarity serves the lexicon scorer over gRPC until ctx is done.
func (a *App) ServePolarity(ctx context.Context, opts ...grpcsrv.Option) error {
	lex, err := a.lexicon()
	if err != nil {
		return err
	}

	srvOpts := append([]grpcsrv.Option{
		grpcsrv.WithPort(a.cfg.GRPCPort),
		grpcsrv.WithLogger(a.logger),
		grpcsrv.WithReflection(a.cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(true),
	}, opts...)
	server, err := grpcsrv.New(srvOpts...)
	if err != nil {
		return fmt.Errorf("failed to create gRPC server: %w", err)
	}

	handlers := handler.NewPolarityHandlers(lex, a.logger, a.cfg.Scorer.Timeout)
	server.RegisterServiceWithHealth(pb.ServiceName, func(s *grpc.Server) {
		pb.RegisterPolarityServer(s, handlers)
	})

	return server.Serve(ctx)
}

// Close releases the scorer connection and the cache client.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	_ = a.logger.Sync()
	return errors.Join(errs...)
}
