package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
)

// Form builds a multipart/form-data request body. The backend's product
// endpoints expect JSON parts (the structured payload and one detail block)
// alongside optional binary file parts.
type Form struct {
	parts []formPart
}

type formPart struct {
	name     string
	filename string
	json     any
	data     []byte
}

// AddJSON appends a part whose content is v serialized as JSON with an
// application/json part header, matching what the Spring backend's
// @RequestPart binding requires.
func (f *Form) AddJSON(name string, v any) *Form {
	f.parts = append(f.parts, formPart{name: name, json: v})
	return f
}

// AddFile appends a binary file part.
func (f *Form) AddFile(name, filename string, data []byte) *Form {
	f.parts = append(f.parts, formPart{name: name, filename: filename, data: data})
	return f
}

func (f *Form) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, p := range f.parts {
		if p.json != nil {
			payload, err := json.Marshal(p.json)
			if err != nil {
				return nil, "", fmt.Errorf("marshal part %q: %w", p.name, err)
			}
			h := textproto.MIMEHeader{}
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q`, p.name))
			h.Set("Content-Type", "application/json")
			part, err := w.CreatePart(h)
			if err != nil {
				return nil, "", err
			}
			if _, err := part.Write(payload); err != nil {
				return nil, "", err
			}
			continue
		}

		part, err := w.CreateFormFile(p.name, p.filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(p.data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
