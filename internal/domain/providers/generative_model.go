package providers

import (
	"context"
	"errors"
)

// Generative model failures. Adapters wrap these so callers can use errors.Is.
var (
	ErrModelNotConfigured = errors.New("generative model not configured")
	ErrModelUnauthorized  = errors.New("generative model rejected credentials")
	ErrModelRateLimited   = errors.New("generative model rate limited")
	ErrModelBlocked       = errors.New("generative model blocked the prompt")
	ErrAttachmentTooLarge = errors.New("attachment exceeds upload limit")
)

// Attachment is a binary payload sent along with a prompt
type Attachment struct {
	Name     string
	MimeType string
	Data     []byte
}

// GenerativeModel is a text generation backend
type GenerativeModel interface {
	// GenerateText sends a text-only prompt and returns the raw answer
	GenerateText(ctx context.Context, prompt string) (string, error)

	// GenerateWithAttachment uploads the attachment and sends it with the prompt
	GenerateWithAttachment(ctx context.Context, prompt string, attachment Attachment) (string, error)
}
