package models

import "strings"

// MediaTypePDF is the only media type the backend accepts
const MediaTypePDF = "application/pdf"

// Attachment is a file selected for upload in a chat session
type Attachment struct {
	Name      string // Base name shown to the user and sent as the part filename
	Path      string // Location on disk the bytes are read from at send time
	MediaType string // Declared media type, without parameters
	Size      int64
}

// IsPDF reports whether the declared media type is exactly application/pdf
func (a Attachment) IsPDF() bool {
	return a.MediaType == MediaTypePDF
}

// AttachmentNames joins the names of the given attachments with ", "
func AttachmentNames(files []Attachment) string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}
