/*
 * MIT License
 * Copyright (c) 2025 Zuplu
 */

package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Zuplu/sc-overlay/internal/utils/log"
	"google.golang.org/genai"
)

const (
	DEFAULT_MODEL  = "gemini-2.5-flash"
	HEALTH_TIMEOUT = 5 * time.Second
	HEALTH_PROMPT  = "ping"

	REASON_NO_KEY    = "no_key"
	REASON_EMPTY     = "empty_question"
	REASON_HTTP      = "http"
	REASON_TRANSPORT = "error"
	REASON_TIMEOUT   = "timeout"

	NO_KEY_MESSAGE = "GEMINI_API_KEY not set. Set the env var or put it in the config file."
)

var (
	ErrNoKey         = errors.New(NO_KEY_MESSAGE)
	ErrEmptyQuestion = errors.New("Enter a question.")
)

type Config struct {
	APIKey        string
	Model         string
	EnableSearch  bool
	BaseURL       string
	HTTPClient    *http.Client
	HealthTimeout time.Duration
}

// Answer is the normalized reply to a question.
type Answer struct {
	Error   bool   `json:"error"`
	Text    string `json:"text"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Status  int    `json:"status,omitempty"`
}

type Health struct {
	OK      bool   `json:"ok"`
	Reason  string `json:"reason,omitempty"`
	Status  int    `json:"status,omitempty"`
	Details string `json:"details,omitempty"`
}

type Service struct {
	cfg       Config
	client    *genai.Client
	clientErr error
}

// New prepares the Gemini client. Without an API key no client is created and
// every call short-circuits.
func New(ctx context.Context, cfg Config) *Service {
	if cfg.Model == "" {
		cfg.Model = DEFAULT_MODEL
	}
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = HEALTH_TIMEOUT
	}
	s := &Service{cfg: cfg}
	if cfg.APIKey == "" {
		return s
	}
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	s.client, s.clientErr = genai.NewClient(ctx, cc)
	if s.clientErr != nil {
		log.Errorf("Could not initialize Gemini client: %v", s.clientErr)
	}
	return s
}

func (s *Service) SearchEnabled() bool {
	return s.cfg.EnableSearch
}

// Health sends a minimal prompt and cancels it after the health timeout.
func (s *Service) Health(ctx context.Context) Health {
	if s.cfg.APIKey == "" {
		return Health{Reason: REASON_NO_KEY}
	}
	if s.clientErr != nil {
		return Health{Reason: REASON_TRANSPORT, Details: s.clientErr.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.HealthTimeout)
	defer cancel()
	_, err := s.client.Models.GenerateContent(ctx, s.cfg.Model, genai.Text(HEALTH_PROMPT), nil)
	if err == nil {
		return Health{OK: true}
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		log.Warnf("Gemini health check timed out after %v", s.cfg.HealthTimeout)
		return Health{Reason: REASON_TIMEOUT, Details: err.Error()}
	}
	if code, ok := statusCode(err); ok {
		log.Warnf("Gemini health check answered HTTP %d", code)
		return Health{Reason: fmt.Sprintf("%s_%d", REASON_HTTP, code), Status: code}
	}
	log.Warnf("Gemini health check failed: %v", err)
	return Health{Reason: REASON_TRANSPORT, Details: err.Error()}
}

// Query asks the model one question. Preconditions are checked before any
// request is made.
func (s *Service) Query(ctx context.Context, question string) Answer {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{Error: true, Message: ErrEmptyQuestion.Error(), Reason: REASON_EMPTY}
	}
	if s.cfg.APIKey == "" {
		return Answer{Error: true, Message: ErrNoKey.Error(), Reason: REASON_NO_KEY}
	}
	if s.clientErr != nil {
		return Answer{Error: true, Message: "LLM request failed", Details: s.clientErr.Error(), Reason: REASON_TRANSPORT}
	}

	var config *genai.GenerateContentConfig
	if s.cfg.EnableSearch {
		config = &genai.GenerateContentConfig{
			Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		}
	}
	content := genai.NewContentFromText(Prompt(question, s.cfg.EnableSearch), genai.RoleUser)
	resp, err := s.client.Models.GenerateContent(ctx, s.cfg.Model, []*genai.Content{content}, config)
	if err != nil {
		if code, ok := statusCode(err); ok {
			log.Warnf("Gemini answered HTTP %d", code)
			return Answer{Error: true, Message: fmt.Sprintf("LLM HTTP %d", code), Reason: REASON_HTTP, Status: code}
		}
		log.Warnf("Gemini request failed: %v", err)
		return Answer{Error: true, Message: "LLM request failed", Details: err.Error(), Reason: REASON_TRANSPORT}
	}
	return Answer{Text: AnswerText(resp)}
}

// AnswerText joins every text part of the first candidate, or returns "".
func AnswerText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return ""
	}
	var result strings.Builder
	for _, part := range c.Content.Parts {
		if part != nil {
			result.WriteString(part.Text)
		}
	}
	return result.String()
}

func statusCode(err error) (int, bool) {
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch v := any(e).(type) {
		case genai.APIError:
			return v.Code, v.Code != 0
		case *genai.APIError:
			if v != nil {
				return v.Code, v.Code != 0
			}
		}
	}
	return 0, false
}
