package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"ai-or-human-service/internal/app"
	"ai-or-human-service/internal/chat"
	"ai-or-human-service/internal/domain"
	"ai-or-human-service/internal/metrics"
)

const DefaultPrefix = "!"

// MemberLister returns the member IDs of a guild when the transport knows them.
type MemberLister interface {
	Members(guildID string) ([]string, bool)
}

// Config holds the router's collaborators.
type Config struct {
	Prefix      string
	DailyLimit  int
	Rounds      *app.RoundService
	Boards      *app.LeaderboardService
	Submissions *app.SubmissionService
	Dispatcher  *chat.Dispatcher
	Sender      chat.Sender
	Members     MemberLister
	Metrics     *metrics.Recorder
	Logger      *slog.Logger
}

// Router turns inbound chat messages into game commands.
type Router struct {
	cfg      Config
	logger   *slog.Logger
	handlers map[string]handlerFunc
	wg       sync.WaitGroup
}

type handlerFunc func(ctx context.Context, msg domain.Message, args string) (string, error)

func NewRouter(cfg Config) *Router {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.DailyLimit <= 0 {
		cfg.DailyLimit = app.DailyAttemptLimit
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{cfg: cfg, logger: logger}
	r.handlers = map[string]handlerFunc{
		"ping":        r.ping,
		"play":        r.play,
		"points":      r.points,
		"submit":      r.submit,
		"add":         r.add,
		"generate":    r.generate,
		"leaderboard": r.leaderboard,
		"rank":        r.rank,
	}
	return r
}

// HandleMessage routes msg without blocking: replies awaited by a running
// command are consumed first, commands then run on their own goroutine.
func (r *Router) HandleMessage(ctx context.Context, msg domain.Message) {
	if r.cfg.Dispatcher.Deliver(msg) {
		return
	}
	name, args, ok := r.parse(msg.Content)
	if !ok {
		return
	}
	handler, ok := r.handlers[name]
	if !ok {
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.execute(ctx, name, handler, msg, args)
	}()
}

// Wait blocks until every running command has finished.
func (r *Router) Wait() {
	r.wg.Wait()
}

func (r *Router) execute(ctx context.Context, name string, handler handlerFunc, msg domain.Message, args string) {
	logger := r.logger.With(
		slog.String("command", name),
		slog.String("user_id", msg.AuthorID),
		slog.String("channel_id", msg.ChannelID),
	)

	reply, err := handler(ctx, msg, args)
	result := "ok"
	if err != nil {
		var userFacing bool
		reply, userFacing = r.describeError(err)
		if userFacing {
			result = "rejected"
			logger.Info("command rejected", slog.String("reason", err.Error()))
		} else if errors.Is(err, context.Canceled) {
			logger.Info("command canceled")
			r.cfg.Metrics.RecordCommand(name, "canceled")
			return
		} else {
			result = "error"
			logger.Error("command failed", slog.String("error", err.Error()))
		}
	}
	r.cfg.Metrics.RecordCommand(name, result)

	if reply == "" {
		return
	}
	if err := r.cfg.Sender.Send(ctx, msg.ChannelID, reply); err != nil {
		logger.Warn("send reply failed", slog.String("error", err.Error()))
	}
}

// describeError maps domain errors to a message; other errors get a generic reply.
func (r *Router) describeError(err error) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrResponseTimeout):
		return "Sorry, you didn't reply in time!", true
	case errors.Is(err, domain.ErrMalformedSubmission):
		return fmt.Sprintf("Invalid format. Use: %sadd prompt | answer | true/false", r.cfg.Prefix), true
	case errors.Is(err, domain.ErrPermissionDenied):
		return "You don't have permission to use this command.", true
	case errors.Is(err, domain.ErrEmptyPrompt):
		return "Please include a prompt after the command.", true
	case errors.Is(err, domain.ErrQuotaExceeded):
		return r.quotaMessage(), true
	case errors.Is(err, domain.ErrNoContentAvailable):
		return r.noContentMessage(), true
	case errors.Is(err, app.ErrGeneratorUnavailable):
		return "AI generation is not configured.", true
	default:
		return "Something went wrong. Please try again later.", false
	}
}

func (r *Router) parse(content string) (string, string, bool) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, r.cfg.Prefix) {
		return "", "", false
	}
	body := strings.TrimPrefix(content, r.cfg.Prefix)
	name, args, _ := strings.Cut(body, " ")
	if name == "" {
		return "", "", false
	}
	return strings.ToLower(name), strings.TrimSpace(args), true
}

func (r *Router) quotaMessage() string {
	return fmt.Sprintf("You've reached your daily limit of %d guesses. Try again tomorrow!", r.cfg.DailyLimit)
}

func (r *Router) noContentMessage() string {
	return fmt.Sprintf("There are no prompts to play yet. Add one with %ssubmit <prompt>.", r.cfg.Prefix)
}

func invoker(msg domain.Message) app.Invoker {
	return app.Invoker{UserID: msg.AuthorID, DisplayName: msg.AuthorName}
}
