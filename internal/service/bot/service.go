// Package bot answers visitor questions about the institute.
package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/brainovision/campus-assistant/backend/internal/analysis/intent"
	"github.com/brainovision/campus-assistant/backend/internal/analysis/spelling"
	"github.com/brainovision/campus-assistant/backend/internal/analysis/tfidf"
	"github.com/brainovision/campus-assistant/backend/internal/knowledge"
	"github.com/brainovision/campus-assistant/backend/internal/model/chat"
	"github.com/brainovision/campus-assistant/backend/internal/service/site"
)

const (
	// MatchThreshold is the minimum cosine similarity for a trained answer.
	MatchThreshold = 0.15

	courseHeadingScan = 8
	courseHeadingShow = 6
)

// ErrNoIntents is returned when training produced nothing to learn from.
var ErrNoIntents = errors.New("training produced no intents")

// Scraper reads the institute website.
type Scraper interface {
	URL(path string) string
	ScrapeSite(ctx context.Context) map[string][]string
	Headings(ctx context.Context, url string, limit int) ([]string, error)
	PageText(ctx context.Context, url string) (string, error)
}

// IntentStore persists trained intents.
type IntentStore interface {
	ReplaceIntents(ctx context.Context, intents []knowledge.Intent) error
	LoadIntents(ctx context.Context) ([]knowledge.Intent, error)
}

// Answerer is a free-form model consulted before the generic fallbacks.
type Answerer interface {
	Answer(ctx context.Context, history []chat.Message, query, topic string) (string, error)
}

type trainedModel struct {
	index     *tfidf.Model
	responses map[string][]string
}

// Option customises a Service.
type Option func(*Service)

// WithAnswerer enables the language model step.
func WithAnswerer(a Answerer) Option {
	return func(s *Service) { s.answerer = a }
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRand replaces the source used to pick among equivalent answers.
// intn must return a value in [0, n).
func WithRand(intn func(n int) int) Option {
	return func(s *Service) {
		if intn != nil {
			s.intn = intn
		}
	}
}

// Service produces replies and owns the trained model.
type Service struct {
	base      *knowledge.Base
	corrector *spelling.Corrector
	detector  *intent.Detector
	site      Scraper
	store     IntentStore
	answerer  Answerer
	logger    *zap.Logger
	intn      func(n int) int

	trainMu sync.Mutex
	mu      sync.RWMutex
	model   *trainedModel
}

// NewService wires the bot to its knowledge, website and store.
func NewService(base *knowledge.Base, scraper Scraper, store IntentStore, opts ...Option) *Service {
	s := &Service{
		base:      base,
		corrector: spelling.New(nil),
		detector:  intent.NewDetector(nil),
		site:      scraper,
		store:     store,
		logger:    zap.NewNop(),
		intn:      rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Welcome is the reply to an empty message.
func (s *Service) Welcome() string {
	return s.base.Welcome
}

// ErrorReply is the reply sent when answering failed.
func (s *Service) ErrorReply() string {
	return s.base.ErrorReply
}

// Trained reports whether a trained model is loaded.
func (s *Service) Trained() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model != nil
}

// Chat turns one widget message into the reply envelope. An empty message
// gets the welcome text; a failed answer is reported with the error reply.
func (s *Service) Chat(ctx context.Context, message string) (chat.Response, error) {
	return s.ChatWithHistory(ctx, nil, message)
}

// ChatWithHistory is Chat for a message that continues a conversation.
// history holds the earlier turns, oldest first.
func (s *Service) ChatWithHistory(ctx context.Context, history []chat.Message, message string) (chat.Response, error) {
	if strings.TrimSpace(message) == "" {
		return chat.Response{Status: chat.StatusSuccess, Response: s.Welcome()}, nil
	}

	reply, err := s.RespondWithHistory(ctx, history, message)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return chat.Response{}, ctxErr
		}
		s.logger.Error("answer failed", zap.Error(err))
		return chat.Response{Status: chat.StatusError, Response: s.ErrorReply()}, nil
	}
	return chat.Response{Status: chat.StatusSuccess, Response: reply}, nil
}

// Respond answers text. Topic questions get the topic answer, then the
// trained model is consulted, then the language model, and finally a
// generic pointer to the website.
func (s *Service) Respond(ctx context.Context, text string) (string, error) {
	return s.RespondWithHistory(ctx, nil, text)
}

// RespondWithHistory is Respond with the earlier turns of the conversation.
// Only the language model step reads history.
func (s *Service) RespondWithHistory(ctx context.Context, history []chat.Message, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	normalized := strings.ToLower(strings.TrimSpace(text))
	corrected := s.corrector.Correct(normalized)
	decision := s.detector.Detect(corrected)
	s.logger.Debug("question analysed",
		zap.String("corrected", corrected),
		zap.String("intent", string(decision.Label)),
		zap.Int("score", decision.Score))

	if decision.Label != intent.None {
		return s.topicAnswer(ctx, decision.Label), nil
	}

	if reply, ok := s.trainedAnswer(corrected); ok {
		return reply, nil
	}

	if s.answerer != nil {
		reply, err := s.answerer.Answer(ctx, history, normalized, "")
		if err == nil {
			return reply, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		s.logger.Warn("language model failed", zap.Error(err))
	}

	return s.pick(s.base.Fallbacks), nil
}

func (s *Service) trainedAnswer(corrected string) (string, bool) {
	s.mu.RLock()
	model := s.model
	s.mu.RUnlock()
	if model == nil {
		return "", false
	}

	match, ok := model.index.Best(corrected, MatchThreshold)
	s.logger.Debug("trained model score", zap.Float64("score", match.Score), zap.String("tag", match.Tag))
	if !ok {
		return "", false
	}
	responses := model.responses[match.Tag]
	if len(responses) == 0 {
		return "", false
	}
	return s.pick(responses), true
}

func (s *Service) topicAnswer(ctx context.Context, label intent.Label) string {
	t := s.base.Topics
	switch label {
	case intent.Internship:
		return s.internshipAnswer(ctx)
	case intent.Courses:
		return s.coursesAnswer(ctx)
	case intent.Python:
		return t.Python
	case intent.Java:
		return t.Java
	case intent.AIML:
		return t.AIML
	case intent.DataScience:
		return t.DataScience
	case intent.Contact:
		return t.Contact
	case intent.About:
		return t.About
	default:
		return s.base.CourseTopic(string(label))
	}
}

func (s *Service) internshipAnswer(ctx context.Context) string {
	text, err := s.site.PageText(ctx, s.site.URL(site.PageInternship))
	switch {
	case err == nil && strings.Contains(text, "internship"):
		return s.base.Topics.InternshipSite
	case err == nil || site.IsStatusError(err):
		return s.base.Topics.Internship
	default:
		s.logger.Warn("internship page unavailable", zap.Error(err))
		return s.base.Topics.InternshipUnavailable
	}
}

func (s *Service) coursesAnswer(ctx context.Context) string {
	headings, err := s.site.Headings(ctx, s.site.URL(site.PageCourses), courseHeadingScan)
	if err != nil {
		s.logger.Warn("courses page unavailable", zap.Error(err))
		return s.base.Topics.CoursesUnavailable
	}
	if len(headings) == 0 {
		return s.base.Topics.Courses
	}
	if len(headings) > courseHeadingShow {
		headings = headings[:courseHeadingShow]
	}
	return s.base.CoursesList(headings)
}

// Train scrapes the website, stores the generated intents and swaps in the
// new model. It returns the number of intents learned.
func (s *Service) Train(ctx context.Context) (int, error) {
	s.trainMu.Lock()
	defer s.trainMu.Unlock()

	pages := s.site.ScrapeSite(ctx)
	intents := s.base.Build(pages)
	if len(intents) == 0 {
		return 0, ErrNoIntents
	}

	model, err := buildModel(intents)
	if err != nil {
		return 0, err
	}
	if err := s.store.ReplaceIntents(ctx, intents); err != nil {
		return 0, fmt.Errorf("save intents: %w", err)
	}

	s.swap(model)
	s.logger.Info("assistant trained", zap.Int("intents", len(intents)), zap.Int("patterns", model.index.Len()))
	return len(intents), nil
}

// Reload rebuilds the model from the stored intents.
func (s *Service) Reload(ctx context.Context) error {
	intents, err := s.store.LoadIntents(ctx)
	if err != nil {
		return fmt.Errorf("load intents: %w", err)
	}

	model, err := buildModel(intents)
	if err != nil {
		return err
	}
	s.swap(model)
	s.logger.Info("trained model loaded", zap.Int("intents", len(intents)))
	return nil
}

func (s *Service) swap(model *trainedModel) {
	s.mu.Lock()
	s.model = model
	s.mu.Unlock()
}

func (s *Service) pick(options []string) string {
	if len(options) == 0 {
		return s.base.ErrorReply
	}
	return options[s.intn(len(options))]
}

func buildModel(intents []knowledge.Intent) (*trainedModel, error) {
	var docs []tfidf.Document
	responses := make(map[string][]string, len(intents))
	for _, in := range intents {
		responses[in.Tag] = in.Responses
		for _, p := range in.Patterns {
			docs = append(docs, tfidf.Document{Tag: in.Tag, Text: strings.ToLower(p)})
		}
	}

	index, err := tfidf.Fit(docs, tfidf.DefaultMaxFeatures)
	if err != nil {
		return nil, fmt.Errorf("fit model: %w", err)
	}
	return &trainedModel{index: index, responses: responses}, nil
}
