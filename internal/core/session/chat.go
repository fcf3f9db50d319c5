package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/neilberkman/ragchat/internal/core/models"
	"go.uber.org/zap"
)

const (
	// NoAnswerReply replaces a response without an answer field
	NoAnswerReply = "No response."
	// ErrorReply is appended when the exchange fails for any reason
	ErrorReply = "Error fetching response. Please try again."
	// NoPDFWarning is shown when a selection holds no PDF
	NoPDFWarning = "Please upload at least one PDF file."
)

var (
	ErrNoPDF            = errors.New("selection contains no PDF files")
	ErrUploadRequired   = errors.New("upload at least one PDF file before chatting")
	ErrNothingToSend    = errors.New("nothing to send")
	ErrExchangeInFlight = errors.New("an exchange is already in flight")
	ErrFileIndex        = errors.New("file index out of range")
)

// Exchange is the snapshot of one question sent to the backend
type Exchange struct {
	SessionID string
	Question  string // Trimmed input text, possibly empty
	Files     []models.Attachment
}

// Asker sends an exchange to the backend and returns the answer text
type Asker interface {
	Ask(ctx context.Context, ex *Exchange) (string, error)
}

// Chat holds the state of one chat session: attached files, the message
// sequence, the pending input and the loading flag.
type Chat struct {
	mu sync.Mutex

	session  models.Session
	store    FileStore
	logger   *zap.Logger
	now      func() time.Time
	files    []models.Attachment
	messages []models.Message
	input    string
	loading  bool
}

// NewChat opens a chat for the session and restores any files stored for it
func NewChat(s models.Session, store FileStore, logger *zap.Logger) (*Chat, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}
	if store == nil {
		store = NewMemoryStore()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Chat{
		session: s,
		store:   store,
		logger:  logger.With(zap.String("session_id", s.ID)),
		now:     time.Now,
	}
	if stored, ok := store.Get(s.ID); ok {
		c.files = stored
	}
	return c, nil
}

func (c *Chat) Session() models.Session {
	return c.session
}

// Gate derives the upload gate from the current state
func (c *Chat) Gate() Gate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gateLocked()
}

func (c *Chat) gateLocked() Gate {
	stored, _ := c.store.Get(c.session.ID)
	return DeriveGate(c.files, stored, c.session.FileHint)
}

// Files returns a copy of the active attachment list
func (c *Chat) Files() []models.Attachment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Attachment(nil), c.files...)
}

// Messages returns a copy of the message sequence
func (c *Chat) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Message(nil), c.messages...)
}

func (c *Chat) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Chat) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

func (c *Chat) SetInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = text
}

// InputEnabled reports whether the text input accepts typing
func (c *Chat) InputEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.loading && c.gateLocked() == Ready
}

// CanSend reports whether BeginSend would accept the current state
func (c *Chat) CanSend() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checkSendLocked() == nil
}

// AddFiles attaches the PDF entries of selection. A selection without any
// PDF returns ErrNoPDF and leaves the state untouched. Duplicates are kept.
func (c *Chat) AddFiles(selection []models.Attachment) error {
	var pdfs []models.Attachment
	for _, f := range selection {
		if f.IsPDF() {
			pdfs = append(pdfs, f)
		}
	}
	if len(pdfs) == 0 {
		c.logger.Warn("rejected selection without PDF files", zap.Int("selected", len(selection)))
		return ErrNoPDF
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.files = append(c.files, pdfs...)
	stored, _ := c.store.Get(c.session.ID)
	c.store.Set(c.session.ID, append(stored, pdfs...))

	c.logger.Debug("files attached", zap.Int("added", len(pdfs)), zap.Int("total", len(c.files)))
	return nil
}

// RemoveFile detaches the file at index. Removing the last file deletes the
// session's store entry.
func (c *Chat) RemoveFile(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.files) {
		return fmt.Errorf("remove file %d of %d: %w", index, len(c.files), ErrFileIndex)
	}

	updated := make([]models.Attachment, 0, len(c.files)-1)
	updated = append(updated, c.files[:index]...)
	updated = append(updated, c.files[index+1:]...)
	c.files = updated

	if len(updated) == 0 {
		c.store.Delete(c.session.ID)
	} else {
		c.store.Set(c.session.ID, updated)
	}
	return nil
}

// RemoveAllFiles detaches every file and deletes the session's store entry
func (c *Chat) RemoveAllFiles() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.files = nil
	c.store.Delete(c.session.ID)
}

func (c *Chat) checkSendLocked() error {
	if strings.TrimSpace(c.input) == "" && len(c.files) == 0 {
		return ErrNothingToSend
	}
	if c.gateLocked() == Blocked {
		return ErrUploadRequired
	}
	if c.loading {
		return ErrExchangeInFlight
	}
	return nil
}

// BeginSend validates the pending input, appends the user message and enters
// the loading state. The returned exchange must be completed with Finish.
func (c *Chat) BeginSend() (*Exchange, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.beginLocked()
}

// BeginSendText replaces the input with text and begins the exchange in one
// step, so concurrent callers cannot overwrite each other's question.
func (c *Chat) BeginSendText(text string) (*Exchange, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loading {
		return nil, ErrExchangeInFlight
	}
	c.input = text
	return c.beginLocked()
}

func (c *Chat) beginLocked() (*Exchange, error) {
	if err := c.checkSendLocked(); err != nil {
		return nil, err
	}

	question := strings.TrimSpace(c.input)
	content := c.input
	if question == "" {
		content = "Uploaded: " + models.AttachmentNames(c.files)
	}

	c.appendLocked(models.RoleUser, content)
	c.loading = true

	return &Exchange{
		SessionID: c.session.ID,
		Question:  question,
		Files:     append([]models.Attachment(nil), c.files...),
	}, nil
}

// Finish completes the in-flight exchange. A nil err appends answer as the bot
// reply, an empty answer becomes NoAnswerReply. Any error is logged and
// replaced by ErrorReply. Loading and the input are always cleared; attached
// files are kept for the next question.
func (c *Chat) Finish(answer string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case err != nil:
		c.logger.Error("exchange failed", zap.Error(err))
		c.appendLocked(models.RoleBot, ErrorReply)
	case answer == "":
		c.appendLocked(models.RoleBot, NoAnswerReply)
	default:
		c.appendLocked(models.RoleBot, answer)
	}

	c.loading = false
	c.input = ""
}

// Send runs a whole exchange synchronously. Backend failures end up as a bot
// message; only rejections by BeginSend are returned.
func (c *Chat) Send(ctx context.Context, asker Asker) error {
	ex, err := c.BeginSend()
	if err != nil {
		return err
	}
	c.complete(ctx, asker, ex)
	return nil
}

// SendText is Send with the question given directly, see BeginSendText
func (c *Chat) SendText(ctx context.Context, asker Asker, text string) error {
	ex, err := c.BeginSendText(text)
	if err != nil {
		return err
	}
	c.complete(ctx, asker, ex)
	return nil
}

func (c *Chat) complete(ctx context.Context, asker Asker, ex *Exchange) {
	answer, err := asker.Ask(ctx, ex)
	c.Finish(answer, err)
}

// LastAnswer returns the content of the most recent bot message
func (c *Chat) LastAnswer() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == models.RoleBot {
			return c.messages[i].Content, true
		}
	}
	return "", false
}

func (c *Chat) appendLocked(role models.Role, content string) {
	c.messages = append(c.messages, models.Message{
		ID:        NewMessageID(),
		Role:      role,
		Content:   content,
		Timestamp: c.now(),
	})
}
