// Package logparse sends daily log entries to a text-classification model and
// extracts structured field-report data. Parsing is best-effort annotation:
// the raw entry is saved before any call here, and failures never block it.
package logparse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mjholt/crewdeck/internal/model"
	"github.com/sethvargo/go-retry"
)

// MinEntryLength is the minimum raw entry length submitted for parsing.
// Shorter entries are rejected before any upstream call.
const MinEntryLength = 50

var (
	// ErrEntryTooShort is returned for entries under MinEntryLength.
	ErrEntryTooShort = errors.New("log entry too short to parse")
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("parse service not configured")
)

// Config holds the upstream classification service settings.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Service calls the classification model.
type Service struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

func NewService(cfg Config, logger *slog.Logger) *Service {
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-haiku-latest"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}
	return &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
		logger: logger,
	}
}

// Configured reports whether an API key is present.
func (s *Service) Configured() bool {
	return s.cfg.APIKey != ""
}

const systemPrompt = `You extract structured data from construction daily log entries.
Respond with a single JSON object and nothing else, using this shape:
{"weather": string, "crew": [{"trade": string, "count": number}], "deliveries": [string], "inspections": [string], "delays": [string], "workCompleted": [{"scheduleItemId": number|null, "title": string, "description": string}]}
Omit fields with no information. When a workCompleted entry clearly matches one
of the provided schedule items, set its scheduleItemId; otherwise use null.`

type messagesRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system"`
	Messages  []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Parse classifies a raw daily log entry, using the project's schedule items
// as matching context. Entries under MinEntryLength return ErrEntryTooShort
// without reaching the upstream call.
func (s *Service) Parse(ctx context.Context, rawEntry string, items []model.ScheduleItem) (*model.ParsedLogData, error) {
	if len(strings.TrimSpace(rawEntry)) < MinEntryLength {
		return nil, ErrEntryTooShort
	}
	if !s.Configured() {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(messagesRequest{
		Model:     s.cfg.Model,
		MaxTokens: 1024,
		System:    systemPrompt,
		Messages:  []chatMessage{{Role: "user", Content: buildPrompt(rawEntry, items)}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal parse request: %w", err)
	}

	start := time.Now()
	var raw []byte
	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.BaseURL+"/v1/messages", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", s.cfg.APIKey)
		req.Header.Set("anthropic-version", "2023-06-01")

		resp, err := s.client.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("parse request: %w", err))
		}
		defer resp.Body.Close()

		raw, err = io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("read response: %w", err))
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("upstream status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("upstream status %d: %s", resp.StatusCode, truncate(string(raw), 200))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var mr messagesResponse
	if err := json.Unmarshal(raw, &mr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if mr.Error != nil {
		return nil, fmt.Errorf("upstream error: %s", mr.Error.Message)
	}
	if len(mr.Content) == 0 {
		return nil, errors.New("empty model response")
	}

	parsed, err := extractParsedData(mr.Content[0].Text)
	if err != nil {
		return nil, err
	}

	s.logger.Info("parsed daily log",
		"model", s.cfg.Model,
		"entry_len", len(rawEntry),
		"duration", time.Since(start),
	)
	return parsed, nil
}

func buildPrompt(rawEntry string, items []model.ScheduleItem) string {
	var b strings.Builder
	b.WriteString("Schedule items for matching context:\n")
	if len(items) == 0 {
		b.WriteString("(none)\n")
	}
	for _, item := range items {
		fmt.Fprintf(&b, "- id=%d title=%q", item.ID, item.Title)
		if item.Description != "" {
			fmt.Fprintf(&b, " description=%q", item.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nDaily log entry:\n")
	b.WriteString(rawEntry)
	return b.String()
}

// extractParsedData pulls the JSON object out of the model's text, tolerating
// markdown code fences around it.
func extractParsedData(text string) (*model.ParsedLogData, error) {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, "{"); i >= 0 {
		if j := strings.LastIndex(text, "}"); j > i {
			text = text[i : j+1]
		}
	}

	var parsed model.ParsedLogData
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("malformed model output: %w", err)
	}
	return &parsed, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
