package client

import (
	"bytes"
	"io"
	"mime/multipart"

	"github.com/pkg/errors"
)

// Multipart is a form body. It is sent as multipart/form-data instead of JSON.
type Multipart struct {
	files  []multipartFile
	fields [][2]string
}

type multipartFile struct {
	field    string
	filename string
	content  io.Reader
}

func NewMultipart() *Multipart {
	return &Multipart{}
}

func (m *Multipart) AddFile(field, filename string, content io.Reader) *Multipart {
	m.files = append(m.files, multipartFile{field: field, filename: filename, content: content})
	return m
}

func (m *Multipart) AddField(name, value string) *Multipart {
	m.fields = append(m.fields, [2]string{name, value})
	return m
}

// encode renders the form and returns it with its content type.
func (m *Multipart) encode() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range m.fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", errors.Wrap(err, "write field")
		}
	}
	for _, f := range m.files {
		part, err := w.CreateFormFile(f.field, f.filename)
		if err != nil {
			return nil, "", errors.Wrap(err, "create form file")
		}
		if _, err := io.Copy(part, f.content); err != nil {
			return nil, "", errors.Wrap(err, "copy form file")
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "close multipart writer")
	}
	return &buf, w.FormDataContentType(), nil
}
