package client

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"mime/multipart"
	"os"
	"path/filepath"
	"slices"
)

// multipartBody encodes the attached files as multipart form data using
// the request's boundary. Fields are written in name order.
func (r *Request) multipartBody() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary(r.boundary); err != nil {
		return nil, "", fmt.Errorf("setting boundary: %w", err)
	}

	for _, field := range slices.Sorted(maps.Keys(r.cfg.files)) {
		if err := writeFormFile(w, field, r.cfg.files[field]); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

func writeFormFile(w *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening form file[%s]: %w", path, err)
	}
	defer f.Close()

	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("creating form part[%s]: %w", field, err)
	}

	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("writing %s to the request: %w", path, err)
	}

	return nil
}
