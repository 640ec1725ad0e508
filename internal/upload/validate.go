// Package upload validates and uploads file attachments to the remote
// file-storage endpoint.
package upload

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
)

// MaxFileSize is the upload size ceiling.
const MaxFileSize = 10 << 20 // 10 MiB

// allowedTypes is the fixed set of accepted MIME types.
var allowedTypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// File is one attachment candidate. Content is consumed by Upload.
type File struct {
	Name     string
	MIMEType string
	Size     int64
	Content  io.Reader
}

// FromPath builds a File from a filesystem path, inferring the MIME type
// from the extension. The returned File's Content is an open *os.File.
func FromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return File{}, err
	}
	return File{
		Name:     filepath.Base(path),
		MIMEType: mime.TypeByExtension(filepath.Ext(path)),
		Size:     info.Size(),
		Content:  f,
	}, nil
}

// Validate checks a file against the size ceiling and allowed MIME types.
// Pure and synchronous; returns nil when the file is acceptable.
func Validate(f File) error {
	if f.Size > MaxFileSize {
		return fmt.Errorf("file too large: maximum size is 10MB")
	}
	if !allowedTypes[f.MIMEType] {
		return fmt.Errorf("unsupported file type %q: accepted types are JPG, PNG, WEBP, PDF", f.MIMEType)
	}
	return nil
}

// ValidateAll checks every file and returns one indexed error string per
// rejected file. An empty result means all files are acceptable.
func ValidateAll(files []File) []string {
	var errs []string
	for i, f := range files {
		if err := Validate(f); err != nil {
			errs = append(errs, fmt.Sprintf("file %d (%s): %s", i+1, f.Name, err))
		}
	}
	return errs
}
