package web

import (
	"github.com/JonMunkholm/credport/internal/core"
)

// importRequest is the JSON body of POST /api/imports.
type importRequest struct {
	Reference      string `json:"reference"`
	Format         string `json:"format,omitempty"`
	File           string `json:"file"` // base64, optionally as a data URL
	FlattenFolders *bool  `json:"flattenFolders,omitempty"`
}

// exportRequest is the JSON body of POST /api/exports/{format}.
type exportRequest struct {
	Resources []core.ExternalResource `json:"resources"`
}

type formatResponse struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Columns []string `json:"columns"`
}

type resourceErrorResponse struct {
	Line  int      `json:"line"`
	Row   []string `json:"row"`
	Error string   `json:"error"`
	Code  string   `json:"code"`
}

type folderErrorResponse struct {
	Path  string `json:"path"`
	Error string `json:"error"`
	Code  string `json:"code"`
}

type warningResponse struct {
	Line    int    `json:"line"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// importResponse carries the canonical resources back to the client,
// which encrypts and stores them.
type importResponse struct {
	ID             string                  `json:"id"`
	Reference      string                  `json:"reference"`
	Format         string                  `json:"format"`
	State          string                  `json:"state"`
	RowsAttempted  int                     `json:"rowsAttempted"`
	Imported       int                     `json:"imported"`
	Failed         int                     `json:"failed"`
	Resources      []core.ExternalResource `json:"resources"`
	Folders        []core.ExternalFolder   `json:"folders"`
	ResourceErrors []resourceErrorResponse `json:"resourceErrors"`
	FolderErrors   []folderErrorResponse   `json:"folderErrors"`
	Warnings       []warningResponse       `json:"warnings"`
	DurationMs     int64                   `json:"durationMs"`
}

func newImportResponse(res *core.ImportResult) importResponse {
	out := importResponse{
		ID:             res.SessionID,
		Reference:      res.Reference,
		Format:         res.Format,
		State:          string(res.State),
		RowsAttempted:  res.RowsAttempted,
		Imported:       res.Imported(),
		Failed:         res.Failed(),
		Resources:      res.Resources,
		Folders:        res.Folders,
		ResourceErrors: make([]resourceErrorResponse, 0, len(res.ResourceErrors)),
		FolderErrors:   make([]folderErrorResponse, 0, len(res.FolderErrors)),
		Warnings:       make([]warningResponse, 0, len(res.Warnings)),
		DurationMs:     res.Duration.Milliseconds(),
	}
	if out.Resources == nil {
		out.Resources = []core.ExternalResource{}
	}
	if out.Folders == nil {
		out.Folders = []core.ExternalFolder{}
	}

	for _, e := range res.ResourceErrors {
		out.ResourceErrors = append(out.ResourceErrors, resourceErrorResponse{
			Line:  e.Line,
			Row:   e.Row,
			Error: e.Err.Error(),
			Code:  core.MapError(e.Err).Code,
		})
	}
	for _, e := range res.FolderErrors {
		out.FolderErrors = append(out.FolderErrors, folderErrorResponse{
			Path:  e.Path,
			Error: e.Err.Error(),
			Code:  core.MapError(e.Err).Code,
		})
	}
	for _, wn := range res.Warnings {
		out.Warnings = append(out.Warnings, warningResponse{
			Line:    wn.Line,
			Kind:    string(wn.Kind),
			Message: wn.Message,
		})
	}
	return out
}
