// Package cmd defines and implements the CLI commands for the docwatch executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	archivegcs "github.com/mintoswatch/docwatch/internal/archive/gcs"
	"github.com/mintoswatch/docwatch/internal/clock/system"
	"github.com/mintoswatch/docwatch/internal/config"
	"github.com/mintoswatch/docwatch/internal/detector"
	"github.com/mintoswatch/docwatch/internal/docwatch"
	"github.com/mintoswatch/docwatch/internal/extractor"
	"github.com/mintoswatch/docwatch/internal/fetcher"
	collyfetcher "github.com/mintoswatch/docwatch/internal/fetcher/colly"
	headlessfetcher "github.com/mintoswatch/docwatch/internal/fetcher/headless"
	hashsha "github.com/mintoswatch/docwatch/internal/hash/sha256"
	iduuid "github.com/mintoswatch/docwatch/internal/id/uuid"
	"github.com/mintoswatch/docwatch/internal/logging"
	notifypubsub "github.com/mintoswatch/docwatch/internal/notify/pubsub"
	"github.com/mintoswatch/docwatch/internal/resolver"
	"github.com/mintoswatch/docwatch/internal/scanner"
	storefile "github.com/mintoswatch/docwatch/internal/store/file"
	storemem "github.com/mintoswatch/docwatch/internal/store/memory"
	storepg "github.com/mintoswatch/docwatch/internal/store/postgres"
	"github.com/mintoswatch/docwatch/internal/updates"
)

// app holds every wired service for the lifetime of a command.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	seen     docwatch.SeenStore
	scanner  *scanner.Scanner
	renderer *headlessfetcher.Renderer
	pgStore  *storepg.Store
	archive  *archivegcs.Archive
	notifier *notifypubsub.Notifier
}

// newApp loads config and wires the full pipeline. It is a variable so tests
// can substitute a stub factory.
var newApp = buildApp

func buildApp(ctx context.Context, cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	zap.ReplaceGlobals(logger)

	a := &app{cfg: cfg, logger: logger}

	seen, cache, err := a.buildStores(ctx)
	if err != nil {
		return nil, err
	}
	a.seen = seen

	aliases, err := resolver.LoadAliasTable(cfg.Site.AliasFile)
	if err != nil {
		return nil, fmt.Errorf("load alias table: %w", err)
	}

	clock := system.New()
	res, err := resolver.New(resolver.Options{
		BaseURL:         cfg.Site.BaseURL,
		PathRoots:       cfg.Site.PathRoots,
		DocumentSubpage: cfg.Site.DocumentSubpage,
		Aliases:         aliases,
		Cache:           cache,
		CacheTTL:        cfg.CacheTTL(),
		Clock:           clock,
		Logger:          logger.Named("resolver"),
	})
	if err != nil {
		return nil, fmt.Errorf("init resolver: %w", err)
	}

	probe := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	})

	renderer, err := a.buildRenderer()
	if err != nil {
		return nil, err
	}

	contentSelectors := cfg.Detector.ContentSelectors
	if len(contentSelectors) == 0 {
		contentSelectors = extractor.SectionSelectors()
	}

	engine, err := fetcher.NewEngine(fetcher.Options{
		Fetcher:  probe,
		Renderer: renderer,
		Detector: detector.NewHeuristic(cfg.Detector.MinBodyBytes, contentSelectors),
		Retry: docwatch.NewRetryPolicy(
			cfg.HTTP.MaxRetries,
			time.Duration(cfg.HTTP.BackoffInitialMs)*time.Millisecond,
			time.Duration(cfg.HTTP.BackoffMaxMs)*time.Millisecond,
		),
		Cache:  cache,
		Clock:  clock,
		Logger: logger.Named("fetcher"),
	})
	if err != nil {
		return nil, fmt.Errorf("init fetch engine: %w", err)
	}

	hasher := hashsha.New()
	extract, err := extractor.New(hasher, logger.Named("extractor"))
	if err != nil {
		return nil, fmt.Errorf("init extractor: %w", err)
	}

	var archiveSink docwatch.Archive
	if cfg.Archive.Enabled {
		gcsArchive, err := archivegcs.New(ctx, cfg.Archive.GCSBucket, cfg.Archive.ContentType, logger.Named("archive"))
		if err != nil {
			return nil, fmt.Errorf("init archive: %w", err)
		}
		a.archive = gcsArchive
		archiveSink = gcsArchive
	}

	var updateSource scanner.UpdateSource
	if cfg.Updates.Enabled {
		updatesClient, err := updates.New(probe, hasher, cfg.Updates.APIBase, aliases.LenderIDs(), logger.Named("updates"))
		if err != nil {
			return nil, fmt.Errorf("init updates client: %w", err)
		}
		updateSource = updatesClient
	}

	var notifier docwatch.Notifier
	if cfg.Notify.Enabled {
		pubsubNotifier, err := notifypubsub.New(ctx, cfg.Notify.ProjectID, cfg.Notify.TopicName)
		if err != nil {
			return nil, fmt.Errorf("init notifier: %w", err)
		}
		a.notifier = pubsubNotifier
		notifier = pubsubNotifier
	}

	scan, err := scanner.New(scanner.Options{
		Resolver:      res,
		Pages:         engine,
		Extractor:     extract,
		Updates:       updateSource,
		Seen:          seen,
		Notifier:      notifier,
		Archive:       archiveSink,
		Hasher:        hasher,
		Clock:         clock,
		IDs:           iduuid.New(),
		Logger:        logger.Named("scanner"),
		ArchivePrefix: cfg.Archive.Prefix,
		Concurrency:   cfg.Scan.Concurrency,
		CompanyBudget: cfg.CompanyBudget(),
	})
	if err != nil {
		return nil, fmt.Errorf("init scanner: %w", err)
	}
	a.scanner = scan

	return a, nil
}

func (a *app) buildStores(ctx context.Context) (docwatch.SeenStore, docwatch.URLCache, error) {
	switch a.cfg.Store.Backend {
	case "memory":
		return storemem.NewSeenStore(), storemem.NewURLCache(), nil
	case "file":
		seen, err := storefile.NewSeenStore(a.cfg.Store.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("init file seen store: %w", err)
		}
		cache, err := storefile.NewURLCache(a.cfg.Store.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("init file url cache: %w", err)
		}
		return seen, cache, nil
	case "postgres":
		store, err := storepg.New(ctx, a.cfg.Store.DSN, system.New())
		if err != nil {
			return nil, nil, fmt.Errorf("init postgres store: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		a.pgStore = store
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", a.cfg.Store.Backend)
	}
}

func (a *app) buildRenderer() (*headlessfetcher.Renderer, error) {
	if !a.cfg.Headless.Enabled {
		return nil, nil
	}
	renderer, err := headlessfetcher.New(headlessfetcher.Config{
		UserAgent:   a.cfg.HTTP.UserAgent,
		MaxParallel: a.cfg.Headless.MaxParallel,
		NavTimeout:  time.Duration(a.cfg.Headless.NavTimeoutSec) * time.Second,
		DomainQPS:   a.cfg.Headless.DomainQPS,
	}, a.logger.Named("renderer"))
	switch {
	case err == nil:
		a.renderer = renderer
		return renderer, nil
	case errors.Is(err, headlessfetcher.ErrRendererDisabled):
		a.logger.Warn("renderer disabled despite headless.enabled, falling back to plain fetches")
		return nil, nil
	default:
		return nil, fmt.Errorf("init renderer: %w", err)
	}
}

// Close releases external resources in reverse wiring order.
func (a *app) Close() {
	if a.notifier != nil {
		if err := a.notifier.Close(); err != nil {
			a.logger.Warn("notifier close failed", zap.Error(err))
		}
	}
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			a.logger.Warn("archive close failed", zap.Error(err))
		}
	}
	if a.renderer != nil {
		if err := a.renderer.Close(); err != nil {
			a.logger.Warn("renderer close failed", zap.Error(err))
		}
	}
	if a.pgStore != nil {
		a.pgStore.Close()
	}
	_ = a.logger.Sync()
}
