package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-or-human-service/internal/domain"
	"github.com/google/uuid"
)

// DefaultSubmissionTimeout bounds how long a submission waits for the answer text.
const DefaultSubmissionTimeout = 300 * time.Second

// ErrGeneratorUnavailable is returned by Generate when no text generator is configured.
var ErrGeneratorUnavailable = errors.New("answer generator not configured")

// AnswerGenerator writes an AI answer for a prompt.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, prompt string) (string, error)
}

// Authorizer decides who may call admin-only operations.
type Authorizer interface {
	IsAdmin(userID string) bool
}

// StaticAdmins is an Authorizer backed by a fixed set of user IDs.
type StaticAdmins map[string]struct{}

func NewStaticAdmins(ids ...string) StaticAdmins {
	admins := make(StaticAdmins, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			admins[id] = struct{}{}
		}
	}
	return admins
}

func (a StaticAdmins) IsAdmin(userID string) bool {
	_, ok := a[userID]
	return ok
}

// SubmissionConfig tunes a SubmissionService. Zero values fall back to defaults.
type SubmissionConfig struct {
	AnswerTimeout time.Duration
	Now           func() time.Time
}

// SubmissionService stores new round items from players and admins.
type SubmissionService struct {
	items     ItemRepository
	admins    Authorizer
	generator AnswerGenerator
	timeout   time.Duration
	now       func() time.Time
}

// NewSubmissionService builds the service; generator may be nil.
func NewSubmissionService(items ItemRepository, admins Authorizer, generator AnswerGenerator, cfg SubmissionConfig) *SubmissionService {
	if cfg.AnswerTimeout <= 0 {
		cfg.AnswerTimeout = DefaultSubmissionTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &SubmissionService{
		items:     items,
		admins:    admins,
		generator: generator,
		timeout:   cfg.AnswerTimeout,
		now:       cfg.Now,
	}
}

// Submit captures the answer to prompt as a follow-up message and stores a human item.
func (s *SubmissionService) Submit(ctx context.Context, who Invoker, prompt string, conv Conversation) (domain.RoundItem, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return domain.RoundItem{}, domain.ErrEmptyPrompt
	}

	msg, err := conv.Ask(ctx, "Please provide a 3-4 sentence answer to your prompt.", acceptAny, s.timeout)
	if err != nil {
		if errors.Is(err, domain.ErrResponseTimeout) {
			return domain.RoundItem{}, err
		}
		return domain.RoundItem{}, fmt.Errorf("await answer: %w", err)
	}

	author := who.UserID
	return s.insert(ctx, domain.RoundItem{
		Prompt:   prompt,
		Answer:   msg.Content,
		IsAI:     false,
		AuthorID: &author,
	})
}

// AdminAdd stores an item encoded as "prompt | answer | true/false".
func (s *SubmissionService) AdminAdd(ctx context.Context, who Invoker, raw string) (domain.RoundItem, error) {
	if !s.admins.IsAdmin(who.UserID) {
		return domain.RoundItem{}, domain.ErrPermissionDenied
	}
	item, err := ParseAdminItem(raw)
	if err != nil {
		return domain.RoundItem{}, err
	}
	return s.insert(ctx, item)
}

// Generate asks the configured generator for an answer and stores it as an AI item.
func (s *SubmissionService) Generate(ctx context.Context, who Invoker, prompt string) (domain.RoundItem, error) {
	if !s.admins.IsAdmin(who.UserID) {
		return domain.RoundItem{}, domain.ErrPermissionDenied
	}
	if s.generator == nil {
		return domain.RoundItem{}, ErrGeneratorUnavailable
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return domain.RoundItem{}, domain.ErrEmptyPrompt
	}
	answer, err := s.generator.GenerateAnswer(ctx, prompt)
	if err != nil {
		return domain.RoundItem{}, fmt.Errorf("generate answer: %w", err)
	}
	return s.insert(ctx, domain.RoundItem{Prompt: prompt, Answer: answer, IsAI: true})
}

// Import stores pre-built items, as used by the seed command.
func (s *SubmissionService) Import(ctx context.Context, items []domain.RoundItem) (int, error) {
	for i, item := range items {
		if strings.TrimSpace(item.Prompt) == "" || strings.TrimSpace(item.Answer) == "" {
			return i, fmt.Errorf("item %d: %w", i, domain.ErrMalformedSubmission)
		}
		if _, err := s.insert(ctx, item); err != nil {
			return i, err
		}
	}
	return len(items), nil
}

func (s *SubmissionService) insert(ctx context.Context, item domain.RoundItem) (domain.RoundItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.now()
	}
	if err := s.items.Insert(ctx, item); err != nil {
		return domain.RoundItem{}, fmt.Errorf("insert item: %w", err)
	}
	return item, nil
}

// ParseAdminItem decodes "prompt | answer | true/false".
func ParseAdminItem(raw string) (domain.RoundItem, error) {
	fields := strings.Split(raw, "|")
	if len(fields) != 3 {
		return domain.RoundItem{}, fmt.Errorf("%w: expected 3 fields separated by '|', got %d", domain.ErrMalformedSubmission, len(fields))
	}
	prompt := strings.TrimSpace(fields[0])
	answer := strings.TrimSpace(fields[1])
	if prompt == "" || answer == "" {
		return domain.RoundItem{}, fmt.Errorf("%w: prompt and answer must not be empty", domain.ErrMalformedSubmission)
	}

	var isAI bool
	switch strings.ToLower(strings.TrimSpace(fields[2])) {
	case "true":
		isAI = true
	case "false":
		isAI = false
	default:
		return domain.RoundItem{}, fmt.Errorf("%w: third field must be true or false", domain.ErrMalformedSubmission)
	}

	return domain.RoundItem{Prompt: prompt, Answer: answer, IsAI: isAI}, nil
}

func acceptAny(domain.Message) bool { return true }
