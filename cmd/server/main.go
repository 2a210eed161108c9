// Package main is the entry point for the hub web front-end binary. It
// dispatches two subcommands, serve and version, via a simple switch on
// os.Args so the binary's full CLI surface is readable in one place.
//
// Prometheus metrics and pprof are served on dedicated side-channel ports,
// separate from the page listener, so the scrape path stays off the public
// ingress and out of the rate limiter.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	_ "net/http/pprof" // #nosec G108 -- only served on the dedicated profiling port
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/packagehub/hub-web/internal/config"
	"github.com/packagehub/hub-web/internal/hubapi"
	"github.com/packagehub/hub-web/internal/safego"
	"github.com/packagehub/hub-web/internal/session"
	"github.com/packagehub/hub-web/internal/telemetry"
	"github.com/packagehub/hub-web/internal/web"
	"github.com/packagehub/hub-web/pkg/urlutil"
)

// sessionCleanupInterval is how often expired sessions are purged from the
// in-memory store.
const sessionCleanupInterval = 10 * time.Minute

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v\n", err)
	}
}

func run() error {
	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "serve":
		return serve(os.Getenv("CONFIG_PATH"))
	case "version":
		fmt.Printf("hub-web v%s\n", web.Version)
		return nil
	default:
		return fmt.Errorf("unknown command: %s\nAvailable commands: serve, version", command)
	}
}

func serve(configPath string) error {
	cfg, err := config.Watch(configPath, func(reloaded *config.Config) {
		telemetry.SetLevel(reloaded.Logging.Level)
		slog.Info("configuration reloaded", "log_level", reloaded.Logging.Level)
	}, func(err error) {
		slog.Error("ignoring invalid configuration change", "error", err)
	})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialise structured logger as early as possible so all subsequent log
	// output uses the configured format and level.
	telemetry.SetupLogger(cfg.Logging.Format, cfg.Logging.Level)

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis backs the session store and the shared rate limiter; it is only
	// opened when one of them asks for it.
	var rdb *redis.Client
	if cfg.Session.Store == "redis" || (cfg.Security.RateLimiting.Enabled && cfg.Security.RateLimiting.Backend == "redis") {
		rdb, err = session.OpenRedis(ctx, cfg.Session.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		slog.Info("connected to redis", "addr", cfg.Session.Redis.Addr)
	}

	store, err := session.NewStore(cfg.Session, redisClient(rdb))
	if err != nil {
		return fmt.Errorf("failed to create session store: %w", err)
	}
	sessions := session.NewManager(store, session.NewPrefsCodec(cfg.Session.PrefsSecret), session.ManagerConfig{
		CookieName:         cfg.Session.CookieName,
		PrefsCookie:        cfg.Session.PrefsCookie,
		TTL:                cfg.Session.TTL,
		Secure:             cfg.Session.Secure || cfg.Security.TLS.Enabled,
		DefaultSearchLimit: cfg.UI.SearchLimit,
	})
	sessions.StartCleanup(ctx, sessionCleanupInterval)

	samples, err := urlutil.LoadSampleQueries(cfg.UI.SampleQueriesFile)
	if err != nil {
		return fmt.Errorf("failed to load sample queries: %w", err)
	}

	api := hubapi.NewClient(cfg.API.Endpoint(), hubapi.WithUserAgent("hub-web/"+web.Version))
	if cfg.API.DNSRefresh > 0 {
		api.Fetcher().StartDNSRefresh(ctx, cfg.API.DNSRefresh)
	}

	if cfg.Telemetry.Metrics.Enabled {
		startSideServer("metrics", fmt.Sprintf(":%d", cfg.Telemetry.Metrics.PrometheusPort), promHandler(), 10*time.Second)
	}
	if cfg.Telemetry.Profiling.Enabled {
		// net/http/pprof registers its handlers on http.DefaultServeMux at init time.
		startSideServer("pprof", fmt.Sprintf(":%d", cfg.Telemetry.Profiling.Port), http.DefaultServeMux, 30*time.Second)
	}

	router, bgServices, err := web.NewRouter(cfg, web.Dependencies{
		API:           api,
		Sessions:      sessions,
		Redis:         redisClient(rdb),
		SampleQueries: samples,
	})
	if err != nil {
		return fmt.Errorf("failed to create router: %w", err)
	}

	server := &http.Server{
		Addr:         cfg.Server.GetAddress(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	safego.Go(func() {
		slog.Info("starting server",
			"addr", cfg.Server.GetAddress(),
			"base_url", cfg.Server.BaseURL,
			"api", cfg.API.Endpoint(),
			"session_store", cfg.Session.Store,
			"tls", cfg.Security.TLS.Enabled)

		var err error
		if cfg.Security.TLS.Enabled {
			err = server.ListenAndServeTLS(cfg.Security.TLS.CertFile, cfg.Security.TLS.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	})

	select {
	case err := <-serveErr:
		bgServices.Shutdown()
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// Stop rate limiter goroutines
	bgServices.Shutdown()

	slog.Info("server stopped gracefully")
	return nil
}

// redisClient avoids handing a typed nil *redis.Client to interface fields.
func redisClient(rdb *redis.Client) redis.UniversalClient {
	if rdb == nil {
		return nil
	}
	return rdb
}

func promHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// startSideServer serves handler on an internal port for the life of the
// process.
func startSideServer(name, addr string, handler http.Handler, timeout time.Duration) {
	safego.Go(func() {
		slog.Info("starting "+name+" server", "addr", addr)
		srv := &http.Server{ //nolint:gosec // internal-only port
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error(name+" server error", "error", err)
		}
	})
}
