package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/samvad-hq/samvad-news-digest/internal/config"
	"github.com/samvad-hq/samvad-news-digest/internal/crawler"
	"github.com/samvad-hq/samvad-news-digest/internal/digest"
	"github.com/samvad-hq/samvad-news-digest/internal/logger"
	"github.com/samvad-hq/samvad-news-digest/internal/storage"
	"github.com/samvad-hq/samvad-news-digest/internal/summarizer"
	"github.com/samvad-hq/samvad-news-digest/internal/web"
	"github.com/samvad-hq/samvad-news-digest/pkg/httpclient"
	"github.com/samvad-hq/samvad-news-digest/pkg/providers"
	"github.com/samvad-hq/samvad-news-digest/pkg/publishers"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// App is the digest web runtime. It owns the storage handle and publisher connections.
type App struct {
	cfg     *config.Config
	server  *web.Server
	service *digest.Service
	store   storage.Store
	fanout  *publishers.Fanout
	log     logger.Logger
}

// New wires every component from config. Startup misconfiguration is returned as an error.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	provider, err := providerFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("configure provider: %w", err)
	}
	if provider.RequiresAPIKey() && provider.APIKey == "" {
		log.WarnObj("news api key is not configured; searches will report it", "provider_id", provider.ID)
	}

	client := httpclient.NewRestyClientWithAgent(cfg.HTTPTimeout, cfg.UserAgent)
	fetcher, err := providers.DefaultFetcherRegistry(client).FetcherFor(provider)
	if err != nil {
		return nil, fmt.Errorf("resolve fetcher: %w", err)
	}

	sum, err := summarizer.New(cfg, client, log)
	if err != nil {
		return nil, fmt.Errorf("configure summarizer: %w", err)
	}

	var (
		store  storage.Store
		fanout *publishers.Fanout
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
			TTL:             cfg.StorageTTL,
			CleanupInterval: cfg.StorageCleanupInterval,
		})
		if err != nil {
			return fmt.Errorf("init storage: %w", err)
		}
		store = s
		return nil
	})
	g.Go(func() error {
		f, err := publishers.Load(gctx, cfg.PublishersFile, log)
		if err != nil {
			return fmt.Errorf("load publishers: %w", err)
		}
		fanout = f
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Join(err, closeIfSet(store, fanout))
	}

	pageClient := httpclient.NewRestyClientWithAgent(cfg.HTTPTimeout, cfg.UserAgent).
		SetResponseBodyLimit(crawler.MaxPageBytes)
	scraper := crawler.NewScraper(pageClient, log, crawler.Options{
		Timeout:  cfg.ScrapeTimeout,
		MaxChars: cfg.ContentCharLimit,
	})

	opts := digest.Options{
		DefaultQuery: cfg.DefaultQuery,
		Placeholder:  cfg.PlaceholderImage,
		ScrapeDelay:  time.Duration(cfg.ScrapeDelayMs) * time.Millisecond,
		Store:        store,

		PublishTimeout: cfg.PublishTimeout,
	}
	if fanout.Size() > 0 {
		opts.Publisher = fanout
	}
	service := digest.NewService(provider, fetcher, scraper, sum, opts, log)

	log.InfoObj("digest app initialized", "app_meta", map[string]any{
		"provider":   provider.ID,
		"summarizer": sum.Name(),
		"max":        provider.Limit,
		"storage":    cfg.StorageType,
		"publishers": fanout.Size(),
	})

	return &App{
		cfg:     cfg,
		server:  web.NewServer(service, web.NewFormTokens(cfg.SecretKey, cfg.FormTokenTTL), log),
		service: service,
		store:   store,
		fanout:  fanout,
		log:     log,
	}, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

// Run serves HTTP until ctx is cancelled, then shuts down and releases resources.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.server == nil {
		return fmt.Errorf("app is not initialized")
	}
	defer a.close()

	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           a.server.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.InfoObj("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		a.log.InfoObj("http server stopped", "reason", context.Cause(gctx).Error())
		return nil
	})
	return g.Wait()
}

func (a *App) close() {
	// in-flight publishes still use the store and the sinks
	a.service.Wait()
	if err := closeIfSet(a.store, a.fanout); err != nil {
		a.log.ErrorObj("resource close failed", "error", err.Error())
	}
}

func closeIfSet(store storage.Store, fanout *publishers.Fanout) error {
	var errs []error
	if store != nil {
		if err := store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	if err := fanout.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publishers: %w", err))
	}
	return errors.Join(errs...)
}

func providerFromConfig(cfg *config.Config) (providers.Provider, error) {
	p := providers.Provider{
		Type:     cfg.NewsProvider,
		APIKey:   cfg.NewsAPIKey,
		Language: cfg.NewsLanguage,
		Limit:    cfg.MaxArticles,
		Config: map[string]any{
			providers.ConfigUserAgentKey:      cfg.UserAgent,
			providers.ConfigAcceptLanguageKey: cfg.NewsLanguage,
			providers.ConfigCountryKey:        cfg.NewsCountry,
		},
	}
	switch cfg.NewsProvider {
	case providers.TypeNewsAPI:
		p.SourceURL = cfg.NewsAPIURL
	case providers.TypeGoogleNewsRSS:
		p.SourceURL = cfg.GoogleNewsURL
	default:
		return providers.Provider{}, fmt.Errorf("unsupported news provider %q", cfg.NewsProvider)
	}
	return providers.New(p)
}
