package services

import (
	"context"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/zatekoja/phr/backend/internal/domain/entities"
	"github.com/zatekoja/phr/backend/internal/domain/providers"
	apperrors "github.com/zatekoja/phr/backend/pkg/errors"
)

// storeUpload writes an upload under dir and returns its storage key
func storeUpload(ctx context.Context, store providers.DocumentStore, dir string, upload entities.Upload) (string, error) {
	key := path.Join(dir, fmt.Sprintf("%s_%s", uuid.New().String(), safeFilename(upload.Filename)))
	if err := store.Put(ctx, key, contentType(upload), upload.Data); err != nil {
		return "", apperrors.NewInternalError("failed to store file", err)
	}
	return key, nil
}

func contentType(upload entities.Upload) string {
	if upload.ContentType != "" {
		return upload.ContentType
	}
	if ct := mime.TypeByExtension(path.Ext(upload.Filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func attachmentOf(upload entities.Upload) providers.Attachment {
	return providers.Attachment{
		Name:     upload.Filename,
		MimeType: contentType(upload),
		Data:     upload.Data,
	}
}

// safeFilename keeps letters, digits, dot, dash and underscore
func safeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	cleaned = strings.TrimLeft(cleaned, ".")
	if cleaned == "" {
		return "upload"
	}
	return cleaned
}
