package gateway

import (
	"bytes"
	"fmt"
	"mime/multipart"
)

// File is one file part of a multipart body.
type File struct {
	Field   string
	Name    string
	Content []byte
}

// Multipart is a multipart/form-data body.
type Multipart struct {
	Fields map[string]string
	Files  []File
}

func (m *Multipart) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range m.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("field %s: %w", k, err)
		}
	}
	for _, f := range m.Files {
		part, err := w.CreateFormFile(f.Field, f.Name)
		if err != nil {
			return nil, "", fmt.Errorf("file %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, "", fmt.Errorf("file %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
