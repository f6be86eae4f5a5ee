// Package dto holds request bodies shared by several handler groups.
package dto

import "eventky/internal/domain/file"

// Upload is a file sent inline as base64.
type Upload struct {
	Name        string `json:"name" doc:"File name shown to users" minLength:"1"`
	ContentType string `json:"content_type,omitempty" doc:"MIME type, sniffed from the data when empty"`
	Data        []byte `json:"data" doc:"Base64 encoded file contents"`
}

// File converts u, nil stays nil.
func (u *Upload) File() *file.Upload {
	if u == nil {
		return nil
	}
	return &file.Upload{Name: u.Name, ContentType: u.ContentType, Data: u.Data}
}

type Created struct {
	URI string `json:"uri" doc:"Full address of the written resource"`
	ID  string `json:"id"`
}
