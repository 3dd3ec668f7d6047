package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/google/subcommands"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/smartsplit/internal/auth"
	"github.com/mmynk/smartsplit/internal/config"
	"github.com/mmynk/smartsplit/internal/metrics"
	"github.com/mmynk/smartsplit/internal/middleware"
	"github.com/mmynk/smartsplit/internal/service"
	"github.com/mmynk/smartsplit/internal/session"
	"github.com/mmynk/smartsplit/pkg/api"
)

const shutdownTimeout = 30 * time.Second

type serveCmd struct {
	cfg  *config.Config
	port int
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the ledger over the Connect API" }
func (*serveCmd) Usage() string {
	return `smartsplit serve [-port <port>]

  Serves smartsplit.v1.LedgerService over HTTP/1.1 and h2c, plus /metrics and /healthz.
  Changes are persisted only when a client calls Save.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.port, "port", 0, "Port to listen on. Overrides PORT.")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	port := c.cfg.Port
	if c.port != 0 {
		port = c.port
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := c.run(ctx, fmt.Sprintf(":%d", port)); err != nil {
		slog.Error("Server failed", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *serveCmd) run(ctx context.Context, addr string) error {
	store, err := OpenStore(c.cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "backend", c.cfg.Backend, "location", storeLocation(c.cfg))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sess := session.Open(ctx, store, session.WithMetrics(metrics.New(reg)))

	srv := &http.Server{
		Addr:              addr,
		Handler:           NewHandler(c.cfg, sess, reg),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Connect server starting", "address", addr, "auth", c.cfg.AuthEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("Server stopped gracefully")
	return nil
}

// NewHandler assembles the HTTP surface: the LedgerService, /metrics and
// /healthz behind CORS, request logging and h2c.
func NewHandler(cfg *config.Config, sess *session.Session, reg *prometheus.Registry) http.Handler {
	var interceptors []connect.Interceptor
	if cfg.AuthEnabled() {
		interceptors = append(interceptors, middleware.RequireAuth(auth.NewTokenManager(cfg.APISecret, cfg.TokenTTL), slog.Default()))
	}
	interceptors = append(interceptors, middleware.LoggingInterceptor(slog.Default()))

	mux := http.NewServeMux()
	mux.Handle(api.NewLedgerServiceHandler(
		service.NewLedgerService(sess),
		connect.WithInterceptors(interceptors...),
	))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "ok")
	})

	handler := middleware.RequestLogging(slog.Default(), middleware.CORS(mux))

	// h2c serves HTTP/2 without TLS, which gRPC clients need.
	return h2c.NewHandler(handler, &http2.Server{})
}
