package cli

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-or-human-service/internal/app"
	"ai-or-human-service/internal/bot"
	"ai-or-human-service/internal/chat"
	"ai-or-human-service/internal/config"
	"ai-or-human-service/internal/infra/gemini"
	"ai-or-human-service/internal/logging"
	"ai-or-human-service/internal/metrics"
	transport "ai-or-human-service/internal/transport/http"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := logging.NewLogger(cfg.Log)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	var generator app.AnswerGenerator
	if cfg.Gemini.APIKey != "" {
		g, err := gemini.NewGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return err
		}
		defer g.Close()
		generator = g
	}

	recorder := metrics.NewRecorder()
	hub := chat.NewHub()
	directory := chat.NewDirectory()
	dispatcher := chat.NewDispatcher()

	router := bot.NewRouter(bot.Config{
		Prefix:     cfg.Game.Prefix,
		DailyLimit: cfg.Game.DailyLimit,
		Rounds: app.NewRoundService(st.players, st.items, app.RoundConfig{
			DailyLimit:      cfg.Game.DailyLimit,
			ResponseTimeout: config.TTLDuration(cfg.Game.RoundTimeout, app.DefaultRoundTimeout),
		}),
		Boards: app.NewLeaderboardService(st.players),
		Submissions: app.NewSubmissionService(st.items, app.NewStaticAdmins(cfg.Game.Owners...), generator, app.SubmissionConfig{
			AnswerTimeout: config.TTLDuration(cfg.Game.SubmissionTimeout, app.DefaultSubmissionTimeout),
		}),
		Dispatcher: dispatcher,
		Sender:     hub,
		Members:    directory,
		Metrics:    recorder,
		Logger:     logger,
	})
	wsHandler := transport.NewWSHandler(router, hub, directory, transport.Options{
		MessagesPerSecond: cfg.Server.MessagesPerSecond,
		Burst:             cfg.Server.MessageBurst,
		Logger:            logger,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", recorder.Handler())
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
		// Websocket handlers inherit ctx so pending rounds end on shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting game service", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		router.Wait()
		return err
	})
	return g.Wait()
}
