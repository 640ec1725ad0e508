// Package convo drives the multi-turn data-collection conversation: session
// identity, turn composition with attachment uploads, server state tracking,
// completion validation, and history resume. It talks to its collaborators
// only through the interfaces below so every piece can be faked in tests.
package convo

import (
	"context"

	"github.com/nianverse/storechat/internal/chatapi"
	"github.com/nianverse/storechat/internal/domain"
	"github.com/nianverse/storechat/internal/upload"
)

// Storage persists small client-local values (device id, session id, expiry)
// under fixed keys. Read returns "" for an absent key.
type Storage interface {
	Read(key string) (string, error)
	Write(key, value string) error
	Delete(key string) error
}

// MessageLog persists the per-session conversation log in insertion order.
type MessageLog interface {
	Append(sessionID string, msg domain.Message) error
	BySession(sessionID string) ([]domain.Message, error)
	Replace(sessionID string, msgs []domain.Message) error
	Clear(sessionID string) error
}

// ChatService is the remote store-registration chat service.
type ChatService interface {
	CreateSession(ctx context.Context, userIdentifier, businessTypeHint string) (domain.Session, error)
	SendMessage(ctx context.Context, sessionID, content string, metadata map[string]any) (*chatapi.SendResult, error)
	ValidateSession(ctx context.Context, sessionID string, includeDetails bool) (*domain.ValidationResult, error)
	History(ctx context.Context, sessionID string) ([]domain.Message, error)
}

// Uploader delivers one attachment to the file-storage endpoint. Failures are
// reported inside the result, never as an error.
type Uploader interface {
	Upload(ctx context.Context, f upload.File, folderName string) domain.UploadResult
}
