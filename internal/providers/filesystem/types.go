package filesystem

import "errors"

// ErrFilesystem marks directory creation, probing and write failures.
var ErrFilesystem = errors.New("filesystem error")

// Resource is a fully materialized host resource
type Resource struct {
	Name     string
	MIMEType string
	Content  []byte
}
