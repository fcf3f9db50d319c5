package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/neilberkman/ragchat/internal/core/models"
	"github.com/neilberkman/ragchat/internal/core/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writePDF(t *testing.T, name, content string) models.Attachment {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return models.Attachment{Name: name, Path: path, MediaType: models.MediaTypePDF, Size: int64(len(content))}
}

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(func() {
		server.CloseClientConnections()
		server.Close()
	})
	return server
}

func newTestClient(url string) *Client {
	c := NewClient(url+"/", 0, nil)
	c.httpClient.Transport = &http.Transport{DisableKeepAlives: true}
	return c
}

func TestAskSendsMultipart(t *testing.T) {
	a := writePDF(t, "a.pdf", "%PDF-1.4 first")
	b := writePDF(t, "b.pdf", "%PDF-1.4 second")

	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/482913", r.URL.Path)

		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "What is X?", r.FormValue("question"))
		assert.Equal(t, "482913", r.FormValue("chatId"))

		parts := r.MultipartForm.File["files"]
		if !assert.Len(t, parts, 2) {
			return
		}
		assert.Equal(t, "a.pdf", parts[0].Filename)
		assert.Equal(t, "application/pdf", parts[0].Header.Get("Content-Type"))

		f, err := parts[1].Open()
		if !assert.NoError(t, err) {
			return
		}
		data, _ := io.ReadAll(f)
		_ = f.Close()
		assert.Equal(t, "%PDF-1.4 second", string(data))

		_ = json.NewEncoder(w).Encode(map[string]string{"answer": "X"})
	})

	client := newTestClient(server.URL)
	answer, err := client.Ask(context.Background(), &session.Exchange{
		SessionID: "482913",
		Question:  "What is X?",
		Files:     []models.Attachment{a, b},
	})
	require.NoError(t, err)
	assert.Equal(t, "X", answer)
}

func TestAskWithoutFiles(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			assert.Empty(t, r.MultipartForm.File["files"])
		}
		_, _ = w.Write([]byte(`{"answer":"hinted"}`))
	})

	answer, err := newTestClient(server.URL).Ask(context.Background(), &session.Exchange{SessionID: "1", Question: "q"})
	require.NoError(t, err)
	assert.Equal(t, "hinted", answer)
}

func TestAskTolerantOfReplyShape(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string answer", `{"answer":"X"}`, "X"},
		{"missing answer", `{"result":"something else"}`, ""},
		{"null answer", `{"answer":null}`, ""},
		{"numeric answer", `{"answer":42}`, ""},
		{"object answer", `{"answer":{"text":"x"}}`, ""},
		{"array body", `["a"]`, ""},
		{"string body", `"plain"`, ""},
		{"null body", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			answer, err := newTestClient(server.URL).Ask(context.Background(), &session.Exchange{SessionID: "1"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, answer)
		})
	}
}

func TestAskNon2xx(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index not ready", http.StatusServiceUnavailable)
	})

	_, err := newTestClient(server.URL).Ask(context.Background(), &session.Exchange{SessionID: "1"})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, "index not ready", statusErr.Body)
}

func TestAskUndecodableBody(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})

	_, err := newTestClient(server.URL).Ask(context.Background(), &session.Exchange{SessionID: "1"})
	assert.Error(t, err)
}

func TestAskMissingFile(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1")
	_, err := client.Ask(context.Background(), &session.Exchange{
		SessionID: "1",
		Files:     []models.Attachment{{Name: "gone.pdf", Path: "/nonexistent/gone.pdf", MediaType: models.MediaTypePDF}},
	})
	assert.Error(t, err)
}

func TestChatOverClient(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.FormValue("question") {
		case "fail":
			w.WriteHeader(http.StatusInternalServerError)
		case "html":
			_, _ = w.Write([]byte(`<html>oops</html>`))
		case "number":
			_, _ = w.Write([]byte(`{"answer":42}`))
		case "object":
			_, _ = w.Write([]byte(`{"answer":{"text":"x"}}`))
		case "array":
			_, _ = w.Write([]byte(`["a"]`))
		case "plain":
			_, _ = w.Write([]byte(`"plain"`))
		default:
			_, _ = w.Write([]byte(`{"answer":"X"}`))
		}
	})
	client := newTestClient(server.URL)

	chat, err := session.NewChat(models.Session{ID: "777777"}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, chat.AddFiles([]models.Attachment{writePDF(t, "report.pdf", "%PDF-1.4")}))

	chat.SetInput("ok")
	require.NoError(t, chat.Send(context.Background(), client))
	chat.SetInput("fail")
	require.NoError(t, chat.Send(context.Background(), client))
	chat.SetInput("html")
	require.NoError(t, chat.Send(context.Background(), client))
	for _, q := range []string{"number", "object", "array", "plain"} {
		chat.SetInput(q)
		require.NoError(t, chat.Send(context.Background(), client))
	}

	msgs := chat.Messages()
	require.Len(t, msgs, 14)
	assert.Equal(t, "X", msgs[1].Content)
	assert.Equal(t, session.ErrorReply, msgs[3].Content)
	assert.Equal(t, session.ErrorReply, msgs[5].Content)
	for i := 7; i < len(msgs); i += 2 {
		assert.Equal(t, session.NoAnswerReply, msgs[i].Content, "reply to %q", msgs[i-1].Content)
	}
	assert.False(t, chat.Loading())
}

func TestEndpoint(t *testing.T) {
	c := NewClient("https://rag.example.com/api/", 0, nil)
	assert.Equal(t, "https://rag.example.com/api/chat/123456", c.Endpoint("123456"))
}
