package exports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"resume-builder-backend/internal/resumes"
	"resume-builder-backend/internal/shared/storage/object"
	"resume-builder-backend/internal/shared/telemetry"
	"resume-builder-backend/internal/shared/util"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("artifact belongs to another user")
)

// Artifact describes one stored export.
type Artifact struct {
	Key       string    `json:"key"`
	FileName  string    `json:"fileName"`
	SizeBytes int64     `json:"sizeBytes"`
	MimeType  string    `json:"mimeType"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service stores rendered resume artifacts so outreach emails can link them.
type Service struct {
	Resumes *resumes.Service
	Store   object.ObjectStore
}

// NewService constructs a Service.
func NewService(resumesSvc *resumes.Service, store object.ObjectStore) *Service {
	return &Service{Resumes: resumesSvc, Store: store}
}

// Upload stores one rendered artifact for the given resume. The resume must
// exist and belong to the caller.
func (s *Service) Upload(ctx context.Context, userID string, resumeID int, fileName string, r io.Reader) (Artifact, error) {
	if strings.TrimSpace(fileName) == "" {
		return Artifact{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}

	if _, err := s.Resumes.Get(ctx, userID, resumeID); err != nil {
		return Artifact{}, err
	}

	key, size, mimeType, err := s.Store.Save(ctx, userID, fileName, r)
	if err != nil {
		return Artifact{}, fmt.Errorf("store artifact: %w", err)
	}

	telemetry.Info("exports.artifact_stored", map[string]any{
		"userId":   userID,
		"resumeId": resumeID,
		"key":      key,
		"bytes":    size,
	})

	return Artifact{
		Key:       key,
		FileName:  fileName,
		SizeBytes: size,
		MimeType:  mimeType,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Open streams a stored artifact back. Keys are namespaced by the hashed
// owner id, so a caller can only open keys under their own prefix.
func (s *Service) Open(ctx context.Context, userID, key string) (io.ReadCloser, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: key is required", ErrInvalidInput)
	}
	if !strings.HasPrefix(key, util.HashUserKey(userID)+"/") {
		return nil, ErrForbidden
	}
	return s.Store.Open(ctx, key)
}
