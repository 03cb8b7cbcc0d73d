package model

import (
	"path"
	"strings"
)

// DefaultImageFolder is used when an upload does not name a folder.
const DefaultImageFolder = "donations"

// File is a named blob handed to the storage operations.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Ext returns the file's extension without the dot, or "bin" when it has none.
func (f File) Ext() string {
	ext := strings.TrimPrefix(path.Ext(f.Name), ".")
	if ext == "" {
		return "bin"
	}
	return strings.ToLower(ext)
}

// MimeType returns the declared content type, defaulting to octet-stream.
func (f File) MimeType() string {
	if f.ContentType == "" {
		return "application/octet-stream"
	}
	return f.ContentType
}

// FolderOrDefault returns folder, or DefaultImageFolder when folder is blank.
func FolderOrDefault(folder string) string {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		return DefaultImageFolder
	}
	return folder
}
