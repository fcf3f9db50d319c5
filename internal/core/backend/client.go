// Package backend talks to the RAG service: one multipart POST per question.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/neilberkman/ragchat/internal/core/session"
	"go.uber.org/zap"
)

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Body)
}

// Client implements session.Asker against {BaseURL}/chat/{sessionID}
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client. A zero timeout keeps the transport default.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

var _ session.Asker = (*Client)(nil)

// Endpoint returns the chat URL for a session
func (c *Client) Endpoint(sessionID string) string {
	return c.baseURL + "/chat/" + url.PathEscape(sessionID)
}

// Ask posts the exchange and returns the answer field of the JSON reply.
// Any valid JSON reply that is not an object with a string answer yields an
// empty string.
func (c *Client) Ask(ctx context.Context, ex *session.Exchange) (string, error) {
	body, contentType, err := encodeExchange(ex)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(ex.SessionID), body)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("backend responded",
		zap.String("session_id", ex.SessionID),
		zap.Int("status", resp.StatusCode),
		zap.Int("files", len(ex.Files)),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return answerOf(raw), nil
}

func answerOf(raw json.RawMessage) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	var answer string
	if err := json.Unmarshal(obj["answer"], &answer); err != nil {
		return ""
	}
	return answer
}

// encodeExchange builds the multipart body: one "files" part per attachment,
// then "question" and "chatId".
func encodeExchange(ex *session.Exchange) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range ex.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, f.Name))
		h.Set("Content-Type", f.MediaType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create part for %s: %w", f.Name, err)
		}
		if err := copyFile(part, f.Path); err != nil {
			return nil, "", err
		}
	}

	if err := w.WriteField("question", ex.Question); err != nil {
		return nil, "", fmt.Errorf("failed to write question: %w", err)
	}
	if err := w.WriteField("chatId", ex.SessionID); err != nil {
		return nil, "", fmt.Errorf("failed to write chatId: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish body: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

func copyFile(dst io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(dst, f); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}
