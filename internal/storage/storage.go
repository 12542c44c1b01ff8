// Package storage abstracts where order photos live: local disk by
// default, S3 when configured.
package storage

import "context"

// Storage persists uploaded photo files and resolves their public URLs
type Storage interface {
	// Save writes the file content and returns the stored filename
	Save(ctx context.Context, originalName, contentType string, data []byte) (string, error)
	// PublicURL maps a stored filename to the URL clients fetch it from
	PublicURL(filename string) string
}
