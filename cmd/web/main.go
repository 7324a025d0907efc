package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finitefield.org/hanko-blog/internal/config"
	"finitefield.org/hanko-blog/internal/export"
	"finitefield.org/hanko-blog/internal/observability"
	"finitefield.org/hanko-blog/internal/watch"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:          "hanko-blog",
		Short:        "Blog catalog server and static site builder",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
	root.AddCommand(newServeCmd(&cfgFile), newBuildCmd(&cfgFile))
	return root
}

func newServeCmd(cfgFile *string) *cobra.Command {
	var (
		addr      string
		watchMode bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the blog over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides := map[string]any{}
			// Port resolution: --addr, then HANKO_BLOG_SERVER_ADDR via config, then Cloud Run's PORT.
			if cmd.Flags().Changed("addr") {
				overrides["server.addr"] = addr
			} else if port := os.Getenv("PORT"); port != "" && os.Getenv(config.EnvPrefix+"_SERVER_ADDR") == "" {
				overrides["server.addr"] = ":" + port
			}
			cfg, err := config.Load(config.WithConfigFile(*cfgFile), config.WithOverrides(overrides))
			if err != nil {
				return err
			}
			logger, err := observability.NewLogger(cfg.Log.Level, observability.WithFormat(cfg.Log.Format))
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger, watchMode)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address")
	cmd.Flags().BoolVar(&watchMode, "watch", false, "reload catalog and templates when files change")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger, watchMode bool) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if watchMode {
		w, err := watch.New(a.watchRoots(), a.reload, watch.WithLogger(logger.Named("watch")))
		if err != nil {
			return err
		}
		go func() { _ = w.Run(ctx) }()
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("web listening",
			zap.String("addr", cfg.Server.Addr),
			zap.Bool("dev", cfg.Server.Dev),
			zap.Bool("catalog_loaded", a.binder.Bound()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func newBuildCmd(cfgFile *string) *cobra.Command {
	var (
		out    string
		prefix string
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Export the blog as static files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides := map[string]any{}
			if cmd.Flags().Changed("out") {
				overrides["export.output"] = out
			}
			cfg, err := config.Load(config.WithConfigFile(*cfgFile), config.WithOverrides(overrides))
			if err != nil {
				return err
			}
			logger, err := observability.NewLogger(cfg.Log.Level, observability.WithFormat(cfg.Log.Format))
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()
			res, err := export.Build(ctx, a.site, export.Options{
				Out:    cfg.Export.Output,
				Public: cfg.Server.Public,
				Prefix: prefix,
				Lang:   a.bundle.Fallback(),
				Logger: logger,
			})
			if err != nil {
				return err
			}
			cmd.Printf("wrote %d pages and %d assets to %s\n", len(res.Files), res.Assets, cfg.Export.Output)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "public_html", "output directory")
	cmd.Flags().StringVar(&prefix, "prefix", "", "path prefix for generated links")
	return cmd
}
