package attach

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/neilberkman/ragchat/internal/core/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalPDF = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSplitPaths(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"a.pdf", []string{"a.pdf"}},
		{"  a.pdf   b.pdf ", []string{"a.pdf", "b.pdf"}},
		{`"my report.pdf" b.pdf`, []string{"my report.pdf", "b.pdf"}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitPaths(tt.line), tt.line)
	}
}

func TestInspectDetectsPDF(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "report.pdf", minimalPDF)

	f, err := Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", f.Name)
	assert.Equal(t, models.MediaTypePDF, f.MediaType)
	assert.Equal(t, int64(len(minimalPDF)), f.Size)
	assert.True(t, f.IsPDF())
}

func TestInspectDetectsByContentNotExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "fake.pdf", "just some notes\n")

	f, err := Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", f.MediaType)
	assert.False(t, f.IsPDF())
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.pdf", minimalPDF)
	writeFile(t, dir, "b.pdf", minimalPDF)
	txt := writeFile(t, dir, "notes.txt", "hello\n")

	files, errs := Resolve([]string{
		filepath.Join(dir, "*.pdf"),
		txt,
		filepath.Join(dir, "missing.pdf"),
		dir,
		filepath.Join(dir, "*.doc"),
	})

	require.Len(t, files, 3)
	assert.Equal(t, "a.pdf", files[0].Name)
	assert.Equal(t, "b.pdf", files[1].Name)
	assert.Equal(t, "notes.txt", files[2].Name)
	assert.Len(t, errs, 3, "missing file, directory and empty glob")
}
