package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ObjectStorage captures the S3-compatible operations the importer needs.
type ObjectStorage interface {
	UploadObject(ctx context.Context, key string, data []byte, contentType string) error
	Enabled() bool
}

type noopStorage struct{}

// NewNoopStorage returns a storage that drops every upload.
func NewNoopStorage() ObjectStorage {
	return noopStorage{}
}

func (noopStorage) Enabled() bool { return false }

func (noopStorage) UploadObject(ctx context.Context, key string, data []byte, contentType string) error {
	return nil
}

// UploadKey builds the archive key for an uploaded file:
// imports/YYYY/MM/DD/<uuid>-<sanitized name>.
func UploadKey(now time.Time, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." || name == "/" {
		name = "upload.csv"
	}
	return fmt.Sprintf("imports/%s/%s-%s", now.UTC().Format("2006/01/02"), uuid.NewString(), name)
}
