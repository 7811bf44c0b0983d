package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tmaxmax/go-sse"
)

const (
	analyzePath = "/api/v1/workbench/analyze/smart"
	streamPath  = "/api/v1/workbench/analyze/smart/stream"

	// The backend keeps only the most recent turns; trimming client-side
	// keeps the request body small.
	maxChatHistory = 10

	defaultStreamTimeout = 5 * time.Minute
)

// ErrStreamTruncated is returned when the stream ends before the backend
// sends its completion record. Content delivered up to that point stands,
// but callers should treat the result as incomplete and retry via Analyze.
var ErrStreamTruncated = errors.New("stream ended without completion")

// StatusError is a non-success HTTP response from the analysis endpoints.
// Body carries the response text verbatim so the UI can surface it.
type StatusError struct {
	Status     string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("smart analysis API error: %s (%s)", e.Status, e.Body)
}

// ChatTurn is one message in a running conversation.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Request describes one smart-analysis invocation.
type Request struct {
	Text        string     `json:"text"`
	PaperID     string     `json:"paper_id"`
	PaperTitle  string     `json:"paper_title"`
	ActionType  ActionID   `json:"action_type"`
	Context     string     `json:"context,omitempty"`
	ChatHistory []ChatTurn `json:"chat_history,omitempty"`
	UserMessage string     `json:"user_message,omitempty"`
}

// Delta is one streamed update. Content carries a text fragment to append;
// Done marks successful completion and is the final delta of a stream.
type Delta struct {
	Content string
	Done    bool
}

// StreamHandler receives deltas in stream order. Returning an error stops
// the stream.
type StreamHandler func(delta Delta) error

// Config describes how to build an analysis client.
type Config struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client talks to the backend's smart-analysis endpoints. A zero token is
// allowed; the bearer header is attached only when one is present.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	log     zerolog.Logger
}

// New builds an analysis client from cfg.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// Streams run long; rely on the caller's context for cancellation.
		httpClient = &http.Client{Timeout: defaultStreamTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client:  httpClient,
		log:     cfg.Logger,
	}
}

type streamRecord struct {
	Content string `json:"content"`
	Done    bool   `json:"done"`
	Error   string `json:"error"`
}

// Stream issues the analysis request and decodes the incremental response,
// invoking handler for each content fragment in arrival order and once more
// with Done set when the backend signals completion. A response record
// carrying an error aborts the stream. If the transport ends before a
// completion record, Stream returns ErrStreamTruncated.
func (c *Client) Stream(ctx context.Context, request Request, handler StreamHandler) error {
	resp, err := c.post(ctx, streamPath, request, "text/event-stream")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.statusError(resp)
	}

	requestID := resp.Request.Header.Get("X-Request-ID")
	completed := false
	for ev, err := range sse.Read(resp.Body, nil) {
		if err != nil {
			return fmt.Errorf("read stream: %w", err)
		}
		var record streamRecord
		if err := json.Unmarshal([]byte(ev.Data), &record); err != nil {
			// Only delimiter-terminated records reach this point, so a
			// parse failure is a malformed record; drop it and move on.
			c.log.Debug().Str("requestId", requestID).Msg("dropping malformed stream record")
			continue
		}
		if record.Error != "" {
			return fmt.Errorf("smart analysis failed: %s", record.Error)
		}
		if record.Content != "" {
			if err := handler(Delta{Content: record.Content}); err != nil {
				return err
			}
		}
		if record.Done {
			completed = true
			if err := handler(Delta{Done: true}); err != nil {
				return err
			}
			break
		}
	}
	if !completed {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrStreamTruncated
	}
	return nil
}

type analyzeResponse struct {
	Success       bool   `json:"success"`
	Result        string `json:"result"`
	Error         string `json:"error"`
	ActionType    string `json:"action_type"`
	PromptVersion string `json:"prompt_version"`
}

// Analyze issues the single-shot request and returns the full result. It is
// the fallback when Stream fails before completion.
func (c *Client) Analyze(ctx context.Context, request Request) (string, error) {
	resp, err := c.post(ctx, analyzePath, request, "application/json")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", c.statusError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var parsed analyzeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode analysis response: %w", err)
	}
	if !parsed.Success {
		message := parsed.Error
		if message == "" {
			message = "backend reported failure without detail"
		}
		return "", fmt.Errorf("smart analysis failed: %s", message)
	}
	return parsed.Result, nil
}

func (c *Client) post(ctx context.Context, path string, request Request, accept string) (*http.Response, error) {
	if len(request.ChatHistory) > maxChatHistory {
		request.ChatHistory = request.ChatHistory[len(request.ChatHistory)-maxChatHistory:]
	}

	buf, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.log.Debug().
		Str("path", path).
		Str("action", string(request.ActionType)).
		Str("paperId", request.PaperID).
		Msg("smart analysis request")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("smart analysis request: %w", err)
	}
	return resp, nil
}

func (c *Client) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{
		Status:     resp.Status,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}
