package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chaos-io/maskedit/config"
	"github.com/chaos-io/maskedit/editsvc"
	"github.com/chaos-io/maskedit/server"
	"github.com/chaos-io/maskedit/session"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	addr := flag.String("addr", "", "listen address, overrides the config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	slog.SetDefault(cfg.Log.NewLogger())

	if err := run(cfg); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	editor := newEditor(cfg.Editor)
	store := session.NewStore(func() *session.State {
		return session.NewState(editor, session.Options{
			MaxImageSide: cfg.Canvas.MaxImageSide,
			Product:      cfg.Canvas.Product,
		})
	}, cfg.Session.TTL)
	if err := store.Start(cfg.Session.SweepSpec); err != nil {
		return err
	}
	defer store.Stop()

	srv := server.New(store, server.Options{MaxUploadSize: cfg.Canvas.MaxUploadSize})
	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return err
	}

	if cfg.Server.MDNS {
		port := ln.Addr().(*net.TCPAddr).Port
		adv, err := server.Advertise(port, cfg.Canvas.Product)
		if err != nil {
			slog.Warn("mDNS advertisement disabled", "error", err)
		} else {
			defer func() { _ = adv.Shutdown() }()
			slog.Info("advertising over mDNS", "service", server.ServiceType, "port", port)
		}
	}

	httpServer := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", ln.Addr().String(), "editor", cfg.Editor.Provider)
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Editor.Timeout+5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func newEditor(cfg config.Editor) editsvc.Editor {
	if cfg.Provider == config.ProviderPassthrough {
		slog.Warn("using passthrough editor, edits return the submitted image")
		return editsvc.NewPassthrough()
	}
	return editsvc.NewGemini(editsvc.GeminiConfig{
		Endpoint: cfg.Endpoint,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
		Timeout:  cfg.Timeout,
	})
}
