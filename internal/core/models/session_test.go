package models

import (
	"testing"
	"time"
	"unicode/utf8"
)

func TestSessionValidation(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		wantErr bool
	}{
		{
			name:    "numeric id",
			session: Session{ID: "482913"},
			wantErr: false,
		},
		{
			name:    "id with file hint",
			session: Session{ID: "482913", FileHint: "report.pdf"},
			wantErr: false,
		},
		{
			name:    "missing id",
			session: Session{FileHint: "report.pdf"},
			wantErr: true,
		},
		{
			name:    "id with slash",
			session: Session{ID: "48/2913"},
			wantErr: true,
		},
		{
			name:    "id with query",
			session: Session{ID: "482913?file=a.pdf"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.session.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestShortID(t *testing.T) {
	s := Session{ID: "0ccfddc4-00e7-443a"}
	if got := s.ShortID(); got != "0ccfddc4" {
		t.Errorf("ShortID() = %q, want %q", got, "0ccfddc4")
	}

	s = Session{ID: "482913"}
	if got := s.ShortID(); got != "482913" {
		t.Errorf("ShortID() = %q, want %q", got, "482913")
	}

	s = Session{ID: "séance-numéro-1"}
	if got := s.ShortID(); got != "séance-n" {
		t.Errorf("ShortID() = %q, want %q", got, "séance-n")
	}
	if !utf8.ValidString(s.ShortID()) {
		t.Errorf("ShortID() split a rune: %q", s.ShortID())
	}
}

func TestAttachmentIsPDF(t *testing.T) {
	tests := []struct {
		mediaType string
		want      bool
	}{
		{"application/pdf", true},
		{"text/plain", false},
		{"application/pdf; charset=binary", false},
		{"", false},
	}

	for _, tt := range tests {
		a := Attachment{Name: "x", MediaType: tt.mediaType}
		if got := a.IsPDF(); got != tt.want {
			t.Errorf("IsPDF(%q) = %v, want %v", tt.mediaType, got, tt.want)
		}
	}
}

func TestAttachmentNames(t *testing.T) {
	files := []Attachment{{Name: "a.pdf"}, {Name: "b.pdf"}}
	if got := AttachmentNames(files); got != "a.pdf, b.pdf" {
		t.Errorf("AttachmentNames() = %q", got)
	}
	if got := AttachmentNames(nil); got != "" {
		t.Errorf("AttachmentNames(nil) = %q, want empty", got)
	}
}

func TestMessageClock(t *testing.T) {
	m := Message{Timestamp: time.Date(2025, 3, 1, 9, 5, 0, 0, time.UTC)}
	if got := m.Clock(); got != "09:05" {
		t.Errorf("Clock() = %q, want 09:05", got)
	}
}
