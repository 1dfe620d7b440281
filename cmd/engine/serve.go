package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/0xwonj/dungeon-sub001/internal/action"
	"github.com/0xwonj/dungeon-sub001/internal/config"
	"github.com/0xwonj/dungeon-sub001/internal/content"
	"github.com/0xwonj/dungeon-sub001/internal/engine"
	"github.com/0xwonj/dungeon-sub001/internal/hooks"
	"github.com/0xwonj/dungeon-sub001/internal/journal"
	"github.com/0xwonj/dungeon-sub001/internal/netobs"
	"github.com/0xwonj/dungeon-sub001/internal/worker"
	"github.com/0xwonj/dungeon-sub001/logging"
	"github.com/0xwonj/dungeon-sub001/logging/sinks"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Host a simulation session with an observer event stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "engine",
	})
	cfg := config.FromEnv(logger)
	logger.SetLevel(cfg.LogLevel)

	pack := content.Default()
	if cfg.ContentDir != "" {
		loaded, err := content.Load(cfg.ContentDir)
		if err != nil {
			return fmt.Errorf("load content: %w", err)
		}
		pack = loaded
		logger.Info("content pack loaded", "dir", cfg.ContentDir)
	}

	initial, err := content.NewState(pack)
	if err != nil {
		return err
	}

	registry, err := hooks.BuildRegistry(hooks.Builtins())
	if err != nil {
		return err
	}

	session := uuid.New()
	jnl := journal.New(session, journal.Config{
		MaxEntries:       cfg.JournalEntries,
		MaxKeyframes:     cfg.JournalKeyframes,
		KeyframeInterval: cfg.KeyframeInterval,
	})

	router := logging.NewRouter(logging.Config{QueueSize: cfg.BusQueue}, logger)
	if err := router.Attach(sinks.NewConsole(os.Stdout)); err != nil {
		return err
	}
	if cfg.EventLogPath != "" {
		jsonl, err := sinks.NewJSONL(cfg.EventLogPath)
		if err != nil {
			return err
		}
		if err := router.Attach(jsonl); err != nil {
			return err
		}
	}
	observer := netobs.NewObserver(logger)
	if err := router.Attach(observer); err != nil {
		return err
	}

	w := worker.New(initial, pack.Env, registry, jnl, router, logging.SystemClock{}, logger, worker.Config{
		QueueSize:       cfg.WorkerQueue,
		MaxCascadeDepth: cfg.CascadeDepth,
	})
	w.Start()
	defer w.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/events", observer.Handler)
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
		rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/state", func(rw http.ResponseWriter, r *http.Request) {
		snapshot, err := w.Snapshot(r.Context())
		if err != nil {
			http.Error(rw, err.Error(), http.StatusServiceUnavailable)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		json.NewEncoder(rw).Encode(snapshot)
	})
	mux.HandleFunc("/journal", func(rw http.ResponseWriter, r *http.Request) {
		stats, err := w.JournalStats(r.Context())
		if err != nil {
			http.Error(rw, err.Error(), http.StatusServiceUnavailable)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		json.NewEncoder(rw).Encode(stats)
	})
	mux.HandleFunc("/actions", func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(rw, "POST only", http.StatusMethodNotAllowed)
			return
		}
		var act action.Action
		if err := json.NewDecoder(r.Body).Decode(&act); err != nil {
			http.Error(rw, err.Error(), http.StatusBadRequest)
			return
		}
		result, err := w.SubmitAction(r.Context(), act)
		if err != nil {
			status := http.StatusInternalServerError
			if engine.IsValidation(err) {
				status = http.StatusUnprocessableEntity
			}
			http.Error(rw, err.Error(), status)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		json.NewEncoder(rw).Encode(result.Deltas)
	})
	mux.HandleFunc("/turn/next", func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(rw, "POST only", http.StatusMethodNotAllowed)
			return
		}
		result, err := w.PrepareNext(r.Context())
		if err != nil {
			http.Error(rw, err.Error(), http.StatusConflict)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		json.NewEncoder(rw).Encode(result.Deltas)
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr, "session", session.String())
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	if err := router.Close(ctx); err != nil {
		logger.Warn("router shutdown", "error", err)
	}
	return nil
}
