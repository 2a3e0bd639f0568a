// Command linechat runs the chat server or an interactive client.
//
//	linechat [-config path] server [listen-addr]
//	linechat [-config path] client [server-addr]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/linechat/linechat/internal/client"
	"github.com/linechat/linechat/internal/config"
	"github.com/linechat/linechat/internal/server"
	"github.com/linechat/linechat/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 2 {
		usage()
		os.Exit(2)
	}
	mode := flag.Arg(0)
	addrOverride := flag.Arg(1)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "linechat: %v\n", err)
		os.Exit(1)
	}

	level, _ := cfg.Log.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Handle shutdown signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	switch mode {
	case "server":
		listen := cfg.Server.Listen
		if addrOverride != "" {
			listen = addrOverride
		}
		if err := runServer(ctx, cfg, listen, logger); err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case "client":
		addr := cfg.Client.Server
		if addrOverride != "" {
			addr = addrOverride
		}
		if err := client.Run(ctx, addr, os.Stdin, os.Stdout, logger); err != nil {
			logger.Error("client failed", "error", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: linechat [-config path] server [listen-addr]
       linechat [-config path] client [server-addr]
`)
}

// loadConfig reads the given file, or falls back to defaults when no
// path was supplied.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func runServer(ctx context.Context, cfg *config.Config, listen string, logger *slog.Logger) error {
	logger.Info("starting server",
		"version", version.Version,
		"commit", version.Commit,
		"listen", listen,
	)

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", listen, err)
	}

	srv := server.New(server.Config{
		IdleTimeout:  cfg.Server.IdleTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Serve(ctx, ln)
	})

	if cfg.Server.HTTPListen != "" {
		httpSrv := &http.Server{
			Addr:    cfg.Server.HTTPListen,
			Handler: srv.Handler(ctx),
		}
		g.Go(func() error {
			logger.Info("starting http listener", "listen", cfg.Server.HTTPListen)
			if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http listener: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			return httpSrv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	logger.Info("server stopped")
	return err
}
