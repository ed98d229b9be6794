package core

// import.go orchestrates one import: decode, detect, parse every row, build
// folders and collect outcomes.
//
// Flow:
//
//	Run(data)
//	  -> DecodeText          (UTF-8, UTF-16 or Windows-1252)
//	  -> ReadRows            (header + raw rows with line numbers)
//	  -> Detect / Get        (file-level: ErrUnsupportedFormat)
//	  -> ResolveDefault      (file-level: ErrDefaultResourceTypeMissing)
//	  -> for each row:
//	       Parse -> Place folders -> Validate -> accept | ResourceError
//
// Row failures never stop the loop. Every attempted row ends up either in
// Resources or in ResourceErrors.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ErrSessionUsed is returned when Run is called twice on one session.
var ErrSessionUsed = errors.New("import session already run")

// DefaultReference names the root folder when the caller gives none.
func DefaultReference(t time.Time) string {
	return "import-" + t.UTC().Format("2006-01-02-150405")
}

// ImportOptions configures one import session.
type ImportOptions struct {
	// Reference names the root folder every imported folder is placed under.
	Reference string

	// Format forces a registered format key. Empty means detect from header.
	Format string

	// Catalog is the deployment's resource type catalog. It is read only.
	Catalog ResourceTypes

	// Generation selects the default resource type and the candidates
	// considered by classification. Defaults to GenerationLegacy.
	Generation SchemaGeneration

	// FlattenFolders places every resource directly under the root folder.
	FlattenFolders bool

	// Registry defaults to DefaultRegistry().
	Registry *Registry

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// ImportSession runs one import. It owns its accumulators and is not safe
// for concurrent use; run separate sessions for concurrent imports.
type ImportSession struct {
	id     string
	opts   ImportOptions
	logger *slog.Logger
	state  SessionState
}

// NewImportSession creates a session in the Detecting state.
func NewImportSession(opts ImportOptions) *ImportSession {
	if opts.Registry == nil {
		opts.Registry = DefaultRegistry()
	}
	if opts.Generation == "" {
		opts.Generation = GenerationLegacy
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	id := uuid.New().String()
	return &ImportSession{
		id:     id,
		opts:   opts,
		logger: opts.Logger.With("import_id", id, "reference", opts.Reference),
		state:  StateDetecting,
	}
}

// ID returns the session id.
func (s *ImportSession) ID() string {
	return s.id
}

// State returns the current lifecycle state.
func (s *ImportSession) State() SessionState {
	return s.state
}

// RunBase64 decodes a base64 payload and runs the import.
func (s *ImportSession) RunBase64(ctx context.Context, payload string) (*ImportResult, error) {
	if s.state != StateDetecting {
		return nil, ErrSessionUsed
	}
	data, err := DecodeBase64Payload(payload)
	if err != nil {
		return nil, s.reject(ctx, err)
	}
	return s.Run(ctx, data)
}

// Run imports raw file bytes.
//
// A non-nil error is a file-level failure and the session ends Rejected
// without any row having been parsed. Row-level failures are reported in
// the result. Once parsing starts every row runs to completion; ctx only
// carries request-scoped logging.
func (s *ImportSession) Run(ctx context.Context, data []byte) (*ImportResult, error) {
	if s.state != StateDetecting {
		return nil, ErrSessionUsed
	}
	start := time.Now()

	text, err := DecodeText(data)
	if err != nil {
		return nil, s.reject(ctx, err)
	}

	header, rows, err := ReadRows(text)
	if err != nil {
		return nil, s.reject(ctx, err)
	}

	def, err := s.selectFormat(header)
	if err != nil {
		return nil, s.reject(ctx, err)
	}

	candidates := s.opts.Catalog.ForGeneration(s.opts.Generation)
	defaultType, err := candidates.ResolveDefault(s.opts.Generation)
	if err != nil {
		return nil, s.reject(ctx, err)
	}

	s.state = StateParsing
	logger := s.logger.With("format", def.Info.Key)
	logger.InfoContext(ctx, "import started", "rows", len(rows), "generation", s.opts.Generation)

	result := &ImportResult{
		SessionID: s.id,
		Reference: s.opts.Reference,
		Format:    def.Info.Key,
		Resources: make([]ExternalResource, 0, len(rows)),
	}

	pc := ParseContext{
		Catalog:     candidates,
		Generation:  s.opts.Generation,
		DefaultType: defaultType,
	}
	idx := MakeHeaderIndex(header)
	folders := NewFolderBuilder(s.opts.Reference, s.opts.FlattenFolders)

	for _, raw := range rows {
		result.RowsAttempted++
		s.importRow(ctx, logger, def, pc, idx, folders, raw, result)
	}

	result.Folders = folders.Folders()
	result.FolderErrors = folders.Errors()
	for _, fe := range result.FolderErrors {
		logger.DebugContext(ctx, "folder rejected", "path", fe.Path, "error", fe.Err)
	}

	s.state = StateCompleted
	result.State = s.state
	result.Duration = time.Since(start)

	logger.InfoContext(ctx, "import completed",
		"imported", result.Imported(),
		"failed", result.Failed(),
		"folders", len(result.Folders),
		"folder_errors", len(result.FolderErrors),
		"warnings", len(result.Warnings),
		"duration", result.Duration,
	)
	return result, nil
}

// importRow records exactly one outcome for raw: a resource or an error.
func (s *ImportSession) importRow(
	ctx context.Context,
	logger *slog.Logger,
	def FormatDefinition,
	pc ParseContext,
	idx HeaderIndex,
	folders *FolderBuilder,
	raw RawRow,
	result *ImportResult,
) {
	fail := func(err error) {
		result.ResourceErrors = append(result.ResourceErrors, ResourceError{
			Line: raw.Line,
			Row:  append([]string(nil), raw.Fields...),
			Err:  err,
		})
		logger.DebugContext(ctx, "row rejected", "line", raw.Line, "error", err)
	}

	parsed, err := def.Parse(idx.BuildRow(raw.Fields), pc)
	if errors.Is(err, ErrResourceTypeFallback) {
		parsed.Match = Classification{Kind: MatchFallback, Type: pc.DefaultType}
		parsed.Resource.ResourceTypeID = stringPtr(pc.DefaultType.ID)
		err = nil
	}
	if err != nil {
		fail(err)
		return
	}

	res := parsed.Resource
	placement := folders.Resolve(res.FolderParentPath)
	res.FolderParentPath = placement.Path

	if err := res.Validate(); err != nil {
		fail(err)
		return
	}
	folders.Commit(placement)

	switch parsed.Match.Kind {
	case MatchPartial:
		result.Warnings = append(result.Warnings, RowWarning{
			Line: raw.Line,
			Kind: WarningPartialMatch,
			Message: fmt.Sprintf("resource type %q is a partial match, %d required field(s) missing",
				parsed.Match.Type.Slug, parsed.Match.Missing),
		})
	case MatchFallback:
		logger.WarnContext(ctx, "no resource type associated to this row", "line", raw.Line, "default", pc.DefaultType.Slug)
		result.Warnings = append(result.Warnings, RowWarning{
			Line:    raw.Line,
			Kind:    WarningFallback,
			Message: "no resource type associated to this row, using " + pc.DefaultType.Slug,
		})
	}

	result.Resources = append(result.Resources, res)
}

func (s *ImportSession) selectFormat(header []string) (FormatDefinition, error) {
	if s.opts.Format != "" {
		def, ok := s.opts.Registry.Get(s.opts.Format)
		if !ok {
			return FormatDefinition{}, fmt.Errorf("%w: %s", ErrUnknownFormat, s.opts.Format)
		}
		return def, nil
	}
	return s.opts.Registry.Detect(header)
}

func (s *ImportSession) reject(ctx context.Context, err error) error {
	s.state = StateRejected
	s.logger.WarnContext(ctx, "import rejected", "error", err)
	return err
}
