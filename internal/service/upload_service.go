package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"research-assistant-cli/internal/entity"
	"research-assistant-cli/internal/pkg/logger"
	"research-assistant-cli/internal/repository"

	"github.com/google/uuid"
)

// ErrUploadInFlight rejects a second upload while one is pending. The
// coordinator handles one transfer at a time.
var ErrUploadInFlight = errors.New("an upload is already in progress")

// allowedExtensions is a filter hint only; the remote service remains the
// authority on format validation.
var allowedExtensions = []string{
	".pdf", ".docx", ".doc", ".txt", ".md", ".pptx", ".xlsx", ".json", ".jsonl",
}

type IUploadService interface {
	Upload(ctx context.Context, referenceSetId uuid.UUID, path string) (*entity.IngestionStats, error)
	InFlight() bool
	AllowedFormats() []string
}

type uploadAPI interface {
	UploadDocument(ctx context.Context, refSetId uuid.UUID, domain, filename string, file io.Reader) (*entity.IngestionStats, error)
}

type uploadService struct {
	api    uploadAPI
	repo   repository.ICollectionRepository
	logger logger.ILogger

	mu   sync.Mutex
	busy bool
}

func NewUploadService(api uploadAPI, repo repository.ICollectionRepository, sysLogger logger.ILogger) IUploadService {
	return &uploadService{
		api:    api,
		repo:   repo,
		logger: sysLogger,
	}
}

func (s *uploadService) AllowedFormats() []string {
	return allowedExtensions
}

func (s *uploadService) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Upload transfers one local file into a reference set and reloads the
// collections so the set's file count reflects server truth. Stats may be
// returned together with a reload error: the ingestion succeeded but is not
// visible yet.
func (s *uploadService) Upload(ctx context.Context, referenceSetId uuid.UUID, path string) (*entity.IngestionStats, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrUploadInFlight
	}
	s.busy = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	snap, loaded := s.repo.Current()
	if !loaded {
		return nil, fmt.Errorf("collections not loaded")
	}
	refSet, ok := snap.ReferenceSet(referenceSetId)
	if !ok {
		return nil, fmt.Errorf("unknown reference set %s", referenceSetId)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !extensionAllowed(ext) {
		return nil, fmt.Errorf("unsupported file type %q (accepted: %s)", ext, strings.Join(allowedExtensions, " "))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	stats, err := s.api.UploadDocument(ctx, referenceSetId, refSet.Domain, filepath.Base(path), file)
	if err != nil {
		s.logger.Warn("upload", "upload failed", map[string]interface{}{
			"reference_set": referenceSetId.String(),
			"file":          filepath.Base(path),
			"error":         err.Error(),
		})
		return nil, err
	}

	s.logger.Info("upload", "document ingested", map[string]interface{}{
		"reference_set": referenceSetId.String(),
		"file":          stats.Filename,
		"chunks":        stats.Chunks,
		"pages":         stats.Pages,
	})

	if _, err := s.repo.Reload(ctx); err != nil {
		return stats, fmt.Errorf("uploaded but file count not yet visible: %w", err)
	}
	return stats, nil
}

func extensionAllowed(ext string) bool {
	for _, allowed := range allowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
