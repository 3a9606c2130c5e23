package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"toolforge/internal/app/generator"
	"toolforge/internal/infra/cache"
	"toolforge/internal/infra/config"
	"toolforge/internal/infra/extract"
	"toolforge/internal/infra/githubclient"
	"toolforge/internal/infra/specconv"
	"toolforge/internal/infra/telemetry"
)

type cliOptions struct {
	configPath string
	verbose    bool
	jsonOutput bool
	token      string

	cfg    config.Config
	logger *zap.Logger

	client *githubclient.Client
	gen    *generator.Generator
	closer func() error
}

func newRootCommand() *cobra.Command {
	opts := cliOptions{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "toolforge",
		Short: "Extract tool descriptors from GitHub repositories",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg

			logger, err := telemetry.NewLogger(opts.verbose)
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if opts.closer != nil {
				_ = opts.closer()
			}
			_ = opts.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ./toolforge.yaml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "output JSON")
	root.PersistentFlags().StringVar(&opts.token, "token", "", "GitHub token (overrides config and GITHUB_TOKEN)")

	root.AddCommand(
		newGenerateCmd(&opts),
		newBatchCmd(&opts),
		newCacheCmd(&opts),
		newIntrospectCmd(&opts),
		newMonorepoCmd(&opts),
		newVersionCmd(),
	)

	return root
}

// ensurePipeline builds the shared client, cache, and generator once.
func (opts *cliOptions) ensurePipeline() error {
	if opts.gen != nil {
		return nil
	}

	opts.client = githubclient.New(githubclient.Options{
		Token:  opts.githubToken(),
		Logger: opts.logger,
	})

	storage, closer, err := opts.newStorage()
	if err != nil {
		return err
	}
	opts.closer = closer

	cfg := opts.cfg
	opts.gen = generator.New(generator.Options{
		Client: opts.client,
		Cache: cache.New(cache.Options{
			Storage: storage,
			Logger:  opts.logger,
			Metrics: telemetry.NewPrometheusMetrics(nil),
		}),
		Logger:      opts.logger,
		Extractors:  opts.enabledExtractors(),
		SearchDepth: cfg.SearchDepth,
		MetadataTTL: time.Duration(cfg.Cache.MetadataTTLSeconds) * time.Second,
		ReadmeTTL:   time.Duration(cfg.Cache.ReadmeTTLSeconds) * time.Second,
		FileTTL:     time.Duration(cfg.Cache.FileTTLSeconds) * time.Second,
	})

	if addr := cfg.Metrics.ListenAddress; addr != "" {
		logger := opts.logger
		go func() {
			logger.Info("metrics endpoint listening", zap.String("address", addr))
			if err := http.ListenAndServe(addr, promhttp.Handler()); err != nil {
				logger.Warn("metrics endpoint stopped", zap.Error(err))
			}
		}()
	}
	return nil
}

func (opts *cliOptions) githubToken() string {
	if opts.token != "" {
		return opts.token
	}
	if opts.cfg.GitHub.Token != "" {
		return opts.cfg.GitHub.Token
	}
	return os.Getenv("GITHUB_TOKEN")
}

func (opts *cliOptions) newStorage() (cache.Storage, func() error, error) {
	switch opts.cfg.Cache.Backend {
	case config.BackendLRU:
		storage, err := cache.NewLRUStorage(opts.cfg.Cache.LRUSize)
		if err != nil {
			return nil, nil, fmt.Errorf("lru cache: %w", err)
		}
		return storage, nil, nil
	case config.BackendBolt:
		storage, err := cache.OpenBoltStorage(opts.cfg.Cache.Path)
		if err != nil {
			return nil, nil, err
		}
		return storage, storage.Close, nil
	default:
		return cache.NewMemoryStorage(), nil, nil
	}
}

// enabledExtractors keeps the fixed run order and drops disabled entries.
func (opts *cliOptions) enabledExtractors() []extract.Extractor {
	toggles := opts.cfg.Extractors
	logger := opts.logger

	// Non-nil even when everything is toggled off, so the generator does
	// not fall back to its default set.
	extractors := make([]extract.Extractor, 0, 5)
	if toggles.OpenAPI {
		extractors = append(extractors, extract.NewOpenAPIExtractor(specconv.New(logger), logger))
	}
	if toggles.GraphQL {
		extractors = append(extractors, extract.NewGraphQLExtractor(logger))
	}
	if toggles.Introspect {
		extractors = append(extractors, extract.NewIntrospectExtractor(logger))
	}
	if toggles.Code {
		extractors = append(extractors, extract.NewCodeExtractor(extract.CodeOptions{Logger: logger}))
	}
	if toggles.Readme {
		extractors = append(extractors, extract.NewReadmeExtractor(logger))
	}
	return extractors
}
