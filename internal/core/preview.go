package core

import (
	"context"
	"time"
)

// PreviewSummary contains the summary counts for an import preview.
type PreviewSummary struct {
	TotalRows  int `json:"totalRows"`
	Importable int `json:"importable"`
	ErrorRows  int `json:"errorRows"`
	Warnings   int `json:"warnings"`
	Folders    int `json:"folders"`
}

// RowPreview shows how an accepted row will be stored. Secrets are left out.
type RowPreview struct {
	Name           string `json:"name"`
	Username       string `json:"username,omitempty"`
	Folder         string `json:"folder"`
	ResourceTypeID string `json:"resourceTypeId,omitempty"`
	HasTOTP        bool   `json:"hasTotp"`
}

// ErrorPreview represents a row with validation errors.
type ErrorPreview struct {
	LineNumber int    `json:"lineNumber"`
	Error      string `json:"error"`
	Code       string `json:"code"`
}

// PreviewResponse is the complete response from import preview analysis.
type PreviewResponse struct {
	Format           string           `json:"format"`
	Header           []string         `json:"header"`
	Candidates       []DetectionScore `json:"candidates"`
	Summary          PreviewSummary   `json:"summary"`
	RowSamples       []RowPreview     `json:"rowSamples"`
	ErrorSamples     []ErrorPreview   `json:"errorSamples"`
	WarningSamples   []RowWarning     `json:"warningSamples"`
	ProcessingTimeMs int64            `json:"processingTimeMs"`
}

// Sample limits
const (
	maxRowSamples     = 10
	maxErrorSamples   = 20
	maxWarningSamples = 20
)

// Preview performs a dry run of an import. It reports the detection scores
// and what would be imported, without storing a result or writing history.
func (s *Service) Preview(ctx context.Context, req ImportRequest) (*PreviewResponse, error) {
	startTime := time.Now()

	if len(req.Payload) == 0 {
		return nil, ErrNoFile
	}
	if s.cfg.MaxPayloadSize > 0 && int64(len(req.Payload)) > s.cfg.MaxPayloadSize {
		return nil, ErrFileTooLarge
	}

	text, err := DecodeText(req.Payload)
	if err != nil {
		return nil, err
	}
	header, _, err := ReadRows(text)
	if err != nil {
		return nil, err
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
	result, err := session.Run(ctx, req.Payload)
	if err != nil {
		return nil, err
	}

	resp := &PreviewResponse{
		Format:     result.Format,
		Header:     header,
		Candidates: s.cfg.Registry.Scores(header),
		Summary: PreviewSummary{
			TotalRows:  result.RowsAttempted,
			Importable: result.Imported(),
			ErrorRows:  result.Failed(),
			Warnings:   len(result.Warnings),
			Folders:    len(result.Folders),
		},
		RowSamples:     make([]RowPreview, 0, min(len(result.Resources), maxRowSamples)),
		ErrorSamples:   make([]ErrorPreview, 0, min(len(result.ResourceErrors), maxErrorSamples)),
		WarningSamples: result.Warnings[:min(len(result.Warnings), maxWarningSamples)],
	}

	for _, res := range result.Resources[:min(len(result.Resources), maxRowSamples)] {
		resp.RowSamples = append(resp.RowSamples, RowPreview{
			Name:           res.Name,
			Username:       deref(res.Username),
			Folder:         res.FolderParentPath,
			ResourceTypeID: deref(res.ResourceTypeID),
			HasTOTP:        res.TOTP != nil,
		})
	}
	for _, re := range result.ResourceErrors[:min(len(result.ResourceErrors), maxErrorSamples)] {
		resp.ErrorSamples = append(resp.ErrorSamples, ErrorPreview{
			LineNumber: re.Line,
			Error:      re.Err.Error(),
			Code:       MapError(re.Err).Code,
		})
	}
	if resp.WarningSamples == nil {
		resp.WarningSamples = []RowWarning{}
	}

	resp.ProcessingTimeMs = time.Since(startTime).Milliseconds()
	return resp, nil
}
