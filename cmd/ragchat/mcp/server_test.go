package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/neilberkman/ragchat/internal/core/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAsker struct {
	answer string
	got    *session.Exchange
}

func (s *stubAsker) Ask(ctx context.Context, ex *session.Exchange) (string, error) {
	s.got = ex
	return s.answer, nil
}

func call(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func newSession(t *testing.T, srv *Server, hint string) string {
	t.Helper()
	args := map[string]interface{}{}
	if hint != "" {
		args["file_hint"] = hint
	}
	res, err := srv.handleNewSession(context.Background(), call(args))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var state SessionState
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &state))
	return state.SessionID
}

func TestAskRequiresUpload(t *testing.T) {
	srv := NewServer(&stubAsker{answer: "X"}, nil, nil)
	id := newSession(t, srv, "")

	res, err := srv.handleAsk(context.Background(), call(map[string]interface{}{
		"session_id": id,
		"question":   "What is X?",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "upload at least one PDF")
}

func TestAttachAndAsk(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.4\n%%EOF\n"), 0o644))
	txtPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("plain\n"), 0o644))

	asker := &stubAsker{answer: "X"}
	srv := NewServer(asker, nil, nil)
	id := newSession(t, srv, "")

	res, err := srv.handleAttachFiles(context.Background(), call(map[string]interface{}{
		"session_id": id,
		"paths":      []interface{}{txtPath},
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, session.NoPDFWarning, resultText(t, res))

	res, err = srv.handleAttachFiles(context.Background(), call(map[string]interface{}{
		"session_id": id,
		"paths":      []interface{}{pdfPath, txtPath},
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var state SessionState
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &state))
	assert.Equal(t, "ready", state.Gate)
	require.Len(t, state.Files, 1)
	assert.Equal(t, "report.pdf", state.Files[0].Name)

	res, err = srv.handleAsk(context.Background(), call(map[string]interface{}{
		"session_id": id,
		"question":   "What is X?",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, "X", resultText(t, res))
	require.NotNil(t, asker.got)
	assert.Equal(t, id, asker.got.SessionID)
	assert.Len(t, asker.got.Files, 1)

	res, err = srv.handleGetConversation(context.Background(), call(map[string]interface{}{"session_id": id}))
	require.NoError(t, err)
	var convo struct {
		Messages []MessageDetail `json:"messages"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &convo))
	require.Len(t, convo.Messages, 2)
	assert.Equal(t, "user", convo.Messages[0].Role)
	assert.Equal(t, "bot", convo.Messages[1].Role)

	res, err = srv.handleRemoveFile(context.Background(), call(map[string]interface{}{"session_id": id, "index": 0}))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &state))
	assert.Equal(t, "blocked", state.Gate)
	assert.Empty(t, state.Files)
}

func TestFileHintSession(t *testing.T) {
	srv := NewServer(&stubAsker{}, nil, nil)
	id := newSession(t, srv, "report.pdf")

	res, err := srv.handleAsk(context.Background(), call(map[string]interface{}{
		"session_id": id,
		"question":   "anything?",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, session.NoAnswerReply, resultText(t, res))
}

func TestUnknownSession(t *testing.T) {
	srv := NewServer(&stubAsker{}, nil, nil)
	res, err := srv.handleAsk(context.Background(), call(map[string]interface{}{"session_id": "000000"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestMCPServerRegistersTools(t *testing.T) {
	srv := NewServer(&stubAsker{}, nil, nil)
	assert.NotNil(t, srv.MCPServer())
}

func TestConcurrentNewSessionsGetDistinctIDs(t *testing.T) {
	srv := NewServer(&stubAsker{answer: "X"}, nil, nil)

	const n = 32
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := srv.handleNewSession(context.Background(), call(map[string]interface{}{}))
			if !assert.NoError(t, err) || !assert.False(t, res.IsError) {
				return
			}
			var state SessionState
			if assert.NoError(t, json.Unmarshal([]byte(res.Content[0].(mcp.TextContent).Text), &state)) {
				ids <- state.SessionID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		assert.False(t, seen[id], "session id %s handed out twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.Len(t, srv.chats, n)
}
