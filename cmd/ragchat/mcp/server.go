package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/neilberkman/ragchat/internal/core/attach"
	"github.com/neilberkman/ragchat/internal/core/models"
	"github.com/neilberkman/ragchat/internal/core/session"
	"go.uber.org/zap"
)

// NewSessionArgs defines arguments for the new_session tool
type NewSessionArgs struct {
	FileHint string `json:"file_hint,omitempty" jsonschema:"description=File name the backend already holds; allows asking without attaching"`
}

// AttachFilesArgs defines arguments for the attach_files tool
type AttachFilesArgs struct {
	SessionID string   `json:"session_id" jsonschema:"description=Session to attach to,required"`
	Paths     []string `json:"paths" jsonschema:"description=PDF paths or globs on this machine,required"`
}

// RemoveFileArgs defines arguments for the remove_file tool
type RemoveFileArgs struct {
	SessionID string `json:"session_id" jsonschema:"description=Session to modify,required"`
	Index     *int   `json:"index,omitempty" jsonschema:"description=Position of the file to remove; omit to remove all"`
}

// AskArgs defines arguments for the ask tool
type AskArgs struct {
	SessionID string `json:"session_id" jsonschema:"description=Session to ask in,required"`
	Question  string `json:"question" jsonschema:"description=Question about the attached documents"`
}

// ConversationArgs defines arguments for the get_conversation tool
type ConversationArgs struct {
	SessionID string `json:"session_id" jsonschema:"description=Session to read,required"`
}

// SessionState is returned by the file tools
type SessionState struct {
	SessionID string     `json:"session_id"`
	Gate      string     `json:"gate"`
	Files     []FileInfo `json:"files"`
	Skipped   []string   `json:"skipped,omitempty"`
}

// FileInfo describes one attached file
type FileInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// MessageDetail represents a single message in a conversation
type MessageDetail struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Server maps session ids to chats and exposes them as MCP tools
type Server struct {
	asker  session.Asker
	store  session.FileStore
	logger *zap.Logger

	mu    sync.Mutex
	chats map[string]*session.Chat
}

func NewServer(asker session.Asker, store session.FileStore, logger *zap.Logger) *Server {
	if store == nil {
		store = session.NewMemoryStore()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		asker:  asker,
		store:  store,
		logger: logger,
		chats:  make(map[string]*session.Chat),
	}
}

// StartServer serves the tools over stdio until stdin closes
func StartServer(asker session.Asker, logger *zap.Logger) error {
	srv := NewServer(asker, nil, logger)
	return server.ServeStdio(srv.MCPServer())
}

// MCPServer registers the tools on a new mcp-go server
func (s *Server) MCPServer() *server.MCPServer {
	ms := server.NewMCPServer(
		"ragchat",
		"1.0.0",
	)

	newTool := mcp.NewTool("new_session",
		mcp.WithDescription("Create a chat session for asking questions about PDF documents. Returns the session id."),
		mcp.WithString("file_hint",
			mcp.Description("File name the backend already holds for this session; lets you ask without attaching files")),
	)
	ms.AddTool(newTool, s.handleNewSession)

	attachTool := mcp.NewTool("attach_files",
		mcp.WithDescription("Attach PDF files to a session. Non-PDF files are ignored; a selection with no PDF is rejected."),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session id from new_session")),
		mcp.WithArray("paths",
			mcp.Required(),
			mcp.Description("File paths or globs on this machine"),
			mcp.Items(map[string]interface{}{"type": "string"})),
	)
	ms.AddTool(attachTool, s.handleAttachFiles)

	removeTool := mcp.NewTool("remove_file",
		mcp.WithDescription("Remove one attached file by index, or all files when index is omitted"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session id")),
		mcp.WithNumber("index",
			mcp.Description("Zero-based position in the attached file list")),
	)
	ms.AddTool(removeTool, s.handleRemoveFile)

	askTool := mcp.NewTool("ask",
		mcp.WithDescription("Send a question with all attached PDFs to the RAG backend and return the answer. Requires at least one attached PDF or a file hint."),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session id")),
		mcp.WithString("question",
			mcp.Description("Question about the documents; empty sends the file list")),
	)
	ms.AddTool(askTool, s.handleAsk)

	conversationTool := mcp.NewTool("get_conversation",
		mcp.WithDescription("Return every message of a session in order"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session id")),
	)
	ms.AddTool(conversationTool, s.handleGetConversation)

	return ms
}

// create draws an id no served chat holds and registers a chat for it
// under one lock.
func (s *Server) create(hint string) (*session.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := session.NewSessionID(s.store)
	for i := 0; s.chats[id] != nil; i++ {
		if i == 8 {
			return nil, fmt.Errorf("could not draw an unused session id")
		}
		id = session.NewSessionID(s.store)
	}
	return s.openLocked(id, hint)
}

func (s *Server) openLocked(id, hint string) (*session.Chat, error) {
	if chat, ok := s.chats[id]; ok {
		return chat, nil
	}
	chat, err := session.NewChat(models.Session{ID: id, FileHint: hint}, s.store, s.logger)
	if err != nil {
		return nil, err
	}
	s.chats[id] = chat
	return chat, nil
}

func (s *Server) lookup(id string) (*session.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat, ok := s.chats[id]
	if !ok {
		return nil, fmt.Errorf("unknown session %q; call new_session first", id)
	}
	return chat, nil
}

func decodeArgs(request mcp.CallToolRequest, v interface{}) error {
	argsBytes, _ := json.Marshal(request.Params.Arguments)
	if err := json.Unmarshal(argsBytes, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func stateOf(chat *session.Chat) SessionState {
	state := SessionState{
		SessionID: chat.Session().ID,
		Gate:      chat.Gate().String(),
		Files:     []FileInfo{},
	}
	for _, f := range chat.Files() {
		state.Files = append(state.Files, FileInfo{Name: f.Name, Path: f.Path, Size: f.Size})
	}
	return state
}

func (s *Server) handleNewSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args NewSessionArgs
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	chat, err := s.create(args.FileHint)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(stateOf(chat))
}

func (s *Server) handleAttachFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args AttachFilesArgs
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	chat, err := s.lookup(args.SessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	files, errs := attach.Resolve(args.Paths)
	if err := chat.AddFiles(files); err != nil {
		if errors.Is(err, session.ErrNoPDF) {
			return mcp.NewToolResultError(session.NoPDFWarning), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	state := stateOf(chat)
	for _, err := range errs {
		state.Skipped = append(state.Skipped, err.Error())
	}
	return jsonResult(state)
}

func (s *Server) handleRemoveFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args RemoveFileArgs
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	chat, err := s.lookup(args.SessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if args.Index == nil {
		chat.RemoveAllFiles()
	} else if err := chat.RemoveFile(*args.Index); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(stateOf(chat))
}

func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args AskArgs
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	chat, err := s.lookup(args.SessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := chat.SendText(ctx, s.asker, args.Question); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	answer, _ := chat.LastAnswer()
	return mcp.NewToolResultText(answer), nil
}

func (s *Server) handleGetConversation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args ConversationArgs
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	chat, err := s.lookup(args.SessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	messages := []MessageDetail{}
	for _, m := range chat.Messages() {
		messages = append(messages, MessageDetail{
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return jsonResult(map[string]interface{}{
		"session_id": args.SessionID,
		"messages":   messages,
	})
}
