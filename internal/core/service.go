package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ResultRetention is how long a finished import stays available for reports.
var ResultRetention = 15 * time.Minute

var (
	// ErrImportNotFound is returned for unknown or expired import ids.
	ErrImportNotFound = errors.New("import not found")

	// ErrHistoryDisabled is returned by Recent when no history store is configured.
	ErrHistoryDisabled = errors.New("history disabled")

	// ErrFileTooLarge is returned when a payload exceeds the configured size.
	ErrFileTooLarge = errors.New("file too large")

	// ErrNoFile is returned when an import request carries no payload.
	ErrNoFile = errors.New("no file provided")
)

// ImportSummary is the persisted record of one import attempt.
type ImportSummary struct {
	ID            string        `json:"id"`
	Reference     string        `json:"reference"`
	Format        string        `json:"format,omitempty"`
	Generation    string        `json:"generation"`
	State         SessionState  `json:"state"`
	RowsAttempted int           `json:"rowsAttempted"`
	Imported      int           `json:"imported"`
	Failed        int           `json:"failed"`
	Folders       int           `json:"folders"`
	FolderErrors  int           `json:"folderErrors"`
	Warnings      int           `json:"warnings"`
	Error         string        `json:"error,omitempty"`
	Duration      time.Duration `json:"duration"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// HistoryStore persists import summaries. Implemented by the history package.
type HistoryStore interface {
	Record(ctx context.Context, s ImportSummary) error
	Recent(ctx context.Context, limit int) ([]ImportSummary, error)
}

// ServiceConfig configures a Service. Zero values select defaults.
type ServiceConfig struct {
	Registry       *Registry
	Catalog        ResourceTypes
	Generation     SchemaGeneration
	FlattenFolders bool
	MaxPayloadSize int64 // Decoded bytes; 0 means unlimited
	Limiter        *ImportLimiter
	History        HistoryStore // Optional
	Logger         *slog.Logger
}

// ImportRequest is one import as submitted by a client.
type ImportRequest struct {
	Reference      string
	Format         string // Empty means detect
	Payload        []byte // Raw file bytes
	FlattenFolders *bool  // Nil means the service default
}

// Service runs imports and exports for the transport layers and keeps
// finished results around for a while so reports can be fetched.
type Service struct {
	cfg    ServiceConfig
	logger *slog.Logger

	mu      sync.RWMutex
	results map[string]*ImportResult
}

// NewService creates a new Service instance.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Registry == nil {
		cfg.Registry = DefaultRegistry()
	}
	if cfg.Generation == "" {
		cfg.Generation = GenerationLegacy
	}
	if cfg.Limiter == nil {
		cfg.Limiter = NewImportLimiter(0, 0)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		cfg:     cfg,
		logger:  cfg.Logger,
		results: make(map[string]*ImportResult),
	}
}

// Formats returns every registered format in registry order.
func (s *Service) Formats() []FormatDefinition {
	return s.cfg.Registry.All()
}

// Limiter exposes the import limiter for status reporting.
func (s *Service) Limiter() *ImportLimiter {
	return s.cfg.Limiter
}

// Import runs one import session under the limiter.
//
// The summary is written to the history store whether the import completed
// or was rejected. History failures are logged and never fail the import.
func (s *Service) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	if len(req.Payload) == 0 {
		return nil, ErrNoFile
	}
	if s.cfg.MaxPayloadSize > 0 && int64(len(req.Payload)) > s.cfg.MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, len(req.Payload), s.cfg.MaxPayloadSize)
	}

	if err := s.cfg.Limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.cfg.Limiter.Release()

	flatten := s.cfg.FlattenFolders
	if req.FlattenFolders != nil {
		flatten = *req.FlattenFolders
	}

	session := NewImportSession(ImportOptions{
		Reference:      req.Reference,
		Format:         req.Format,
		Catalog:        s.cfg.Catalog,
		Generation:     s.cfg.Generation,
		FlattenFolders: flatten,
		Registry:       s.cfg.Registry,
		Logger:         s.logger,
	})

	start := time.Now()
	result, err := session.Run(ctx, req.Payload)

	summary := ImportSummary{
		ID:         session.ID(),
		Reference:  req.Reference,
		Format:     req.Format,
		Generation: string(s.cfg.Generation),
		State:      session.State(),
		Duration:   time.Since(start),
		CreatedAt:  start.UTC(),
	}
	if err != nil {
		summary.Error = err.Error()
	} else {
		summary.Format = result.Format
		summary.RowsAttempted = result.RowsAttempted
		summary.Imported = result.Imported()
		summary.Failed = result.Failed()
		summary.Folders = len(result.Folders)
		summary.FolderErrors = len(result.FolderErrors)
		summary.Warnings = len(result.Warnings)
		s.store(result)
	}
	s.record(ctx, summary)

	return result, err
}

// Result returns a finished import by session id.
func (s *Service) Result(id string) (*ImportResult, error) {
	s.mu.RLock()
	result, ok := s.results[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrImportNotFound, id)
	}
	return result, nil
}

// Export composes records with the format registered under key.
func (s *Service) Export(ctx context.Context, key string, records []ExternalResource) ([]byte, error) {
	return NewExportSession(s.cfg.Registry, s.logger).Export(ctx, key, records)
}

// Recent returns the latest import summaries, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]ImportSummary, error) {
	if s.cfg.History == nil {
		return nil, ErrHistoryDisabled
	}
	return s.cfg.History.Recent(ctx, limit)
}

func (s *Service) store(result *ImportResult) {
	s.mu.Lock()
	s.results[result.SessionID] = result
	s.mu.Unlock()

	s.cleanup(result.SessionID, ResultRetention)
}

func (s *Service) record(ctx context.Context, summary ImportSummary) {
	if s.cfg.History == nil {
		return
	}
	if err := s.cfg.History.Record(ctx, summary); err != nil {
		s.logger.WarnContext(ctx, "failed to record import history", "import_id", summary.ID, "error", err)
	}
}

// cleanup removes the result from tracking after a delay.
func (s *Service) cleanup(id string, delay time.Duration) {
	time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.results, id)
		s.mu.Unlock()
	})
}
