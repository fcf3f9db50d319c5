// Package attach turns user-typed paths into attachments
package attach

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/neilberkman/ragchat/internal/core/models"
)

// SplitPaths splits an input line into paths. Whitespace separates entries;
// double quotes keep a path with spaces together.
func SplitPaths(line string) []string {
	var (
		paths   []string
		current strings.Builder
		quoted  bool
	)
	flush := func() {
		if current.Len() > 0 {
			paths = append(paths, current.String())
			current.Reset()
		}
	}
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
		case (r == ' ' || r == '\t') && !quoted:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return paths
}

// Resolve expands globs and ~ in paths and detects each file's media type
// from its content. Entries that cannot be read are returned as errors and
// skipped; the media type of the rest is not filtered here.
func Resolve(paths []string) ([]models.Attachment, []error) {
	var (
		files []models.Attachment
		errs  []error
	)

	for _, p := range paths {
		expanded, err := expand(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, path := range expanded {
			f, err := Inspect(path)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			files = append(files, f)
		}
	}

	return files, errs
}

// Inspect builds the attachment for a single file
func Inspect(path string) (models.Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.Attachment{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if info.IsDir() {
		return models.Attachment{}, fmt.Errorf("%s is a directory", path)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return models.Attachment{}, fmt.Errorf("cannot detect type of %s: %w", path, err)
	}

	mediaType, _, _ := strings.Cut(mtype.String(), ";")
	return models.Attachment{
		Name:      filepath.Base(path),
		Path:      path,
		MediaType: strings.TrimSpace(mediaType),
		Size:      info.Size(),
	}, nil
}

func expand(p string) ([]string, error) {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}

	if !strings.ContainsAny(p, "*?[") {
		return []string{p}, nil
	}

	matches, err := filepath.Glob(p)
	if err != nil {
		return nil, fmt.Errorf("bad pattern %s: %w", p, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match %s", p)
	}
	return matches, nil
}
