// Package core provides the business logic for credential import and export.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
	"time"
)

// CanonicalField names a field of the canonical resource record.
type CanonicalField string

const (
	FieldName             CanonicalField = "name"
	FieldUsername         CanonicalField = "username"
	FieldURIs             CanonicalField = "uris"
	FieldDescription      CanonicalField = "description"
	FieldSecretClear      CanonicalField = "secret_clear"
	FieldTOTP             CanonicalField = "totp"
	FieldFolderParentPath CanonicalField = "folder_parent_path"
	FieldCustomFields     CanonicalField = "custom_fields"
	FieldIcon             CanonicalField = "icon"
)

// ColumnSpec maps one canonical field to the vendor column holding it.
type ColumnSpec struct {
	Field  CanonicalField // Canonical field
	Column string         // Vendor header name (must match the CSV exactly)
}

// FormatInfo contains display information about a vendor format.
type FormatInfo struct {
	Key     string   // Unique identifier: "kdbx"
	Label   string   // Display name: "KeePassXC (csv)"
	Columns []string // Header column names, derived from the mapping on registration
}

// SlugPair names the resource type a rigid format always produces,
// one slug per schema generation.
type SlugPair struct {
	Legacy  string
	Current string
}

// ParseHook adjusts a resource after the column mapping has been applied.
type ParseHook func(row Row, res *ExternalResource)

// ComposeHook adjusts a composed row before it is written.
type ComposeHook func(res ExternalResource, out Row)

// FormatDefinition contains everything needed to read and write one vendor format.
type FormatDefinition struct {
	Info    FormatInfo
	Columns []ColumnSpec

	// TOTP decodes and encodes the column mapped to FieldTOTP.
	// Formats without one-time passwords leave it nil.
	TOTP TOTPAdapter

	// FixedType pins the resource type for formats with a rigid shape.
	// When nil, rows are classified against the catalog.
	FixedType *SlugPair

	// ComposeDefaults are written into cells that would otherwise be empty.
	ComposeDefaults map[string]string

	AfterParse    ParseHook
	BeforeCompose ComposeHook
}

// Column returns the vendor column mapped to a canonical field.
func (d FormatDefinition) Column(field CanonicalField) (string, bool) {
	for _, spec := range d.Columns {
		if spec.Field == field {
			return spec.Column, true
		}
	}
	return "", false
}

// HeaderColumns returns the export header: mapped columns in mapping order,
// then any extra columns the TOTP adapter owns, then ComposeDefaults columns
// in sorted order. Duplicates are dropped.
func (d FormatDefinition) HeaderColumns() []string {
	seen := make(map[string]struct{}, len(d.Columns))
	cols := make([]string, 0, len(d.Columns))
	add := func(c string) {
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		cols = append(cols, c)
	}
	for _, spec := range d.Columns {
		add(spec.Column)
	}
	if d.TOTP != nil {
		for _, c := range d.TOTP.ExtraColumns() {
			add(c)
		}
	}
	for _, c := range slices.Sorted(maps.Keys(d.ComposeDefaults)) {
		add(c)
	}
	return cols
}

// Row is one CSV data row keyed by column name.
type Row map[string]string

// Get returns the cell for a column. Blank cells are reported as absent.
func (r Row) Get(column string) (string, bool) {
	v, ok := r[column]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// RawRow is a data row as read from the file, with its line number.
type RawRow struct {
	Line   int
	Fields []string
}

// SessionState is the lifecycle position of an import session.
type SessionState string

const (
	StateDetecting SessionState = "detecting"
	StateParsing   SessionState = "parsing"
	StateCompleted SessionState = "completed"
	StateRejected  SessionState = "rejected"
)

// ResourceError records a row that could not be imported.
type ResourceError struct {
	Line int      // 1-indexed line of the row in the file
	Row  []string // Raw cells as read
	Err  error
}

func (e ResourceError) Error() string {
	return e.Err.Error()
}

func (e ResourceError) Unwrap() error {
	return e.Err
}

// MarshalJSON writes the error text and its support code.
func (e ResourceError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Line  int      `json:"line"`
		Row   []string `json:"row"`
		Error string   `json:"error"`
		Code  string   `json:"code"`
	}{e.Line, e.Row, e.Err.Error(), MapError(e.Err).Code})
}

// FolderError records a folder that could not be created.
type FolderError struct {
	Path string // Full path of the rejected folder
	Err  error
}

func (e FolderError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e FolderError) Unwrap() error {
	return e.Err
}

// MarshalJSON writes the path, the error text and its support code.
func (e FolderError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Path  string `json:"path"`
		Error string `json:"error"`
		Code  string `json:"code"`
	}{e.Path, e.Err.Error(), MapError(e.Err).Code})
}

// WarningKind classifies a non-fatal row notice.
type WarningKind string

const (
	WarningPartialMatch WarningKind = "partial_match"
	WarningFallback     WarningKind = "fallback"
)

// RowWarning is a non-fatal notice attached to an accepted row.
type RowWarning struct {
	Line    int         `json:"line"`
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

// ImportResult contains the final result of an import operation.
type ImportResult struct {
	SessionID      string             `json:"id"`
	Reference      string             `json:"reference"`
	Format         string             `json:"format"`
	State          SessionState       `json:"state"`
	RowsAttempted  int                `json:"rowsAttempted"`
	Resources      []ExternalResource `json:"resources"`
	Folders        []ExternalFolder   `json:"folders"`
	ResourceErrors []ResourceError    `json:"resourceErrors"`
	FolderErrors   []FolderError      `json:"folderErrors"`
	Warnings       []RowWarning       `json:"warnings"`
	Duration       time.Duration      `json:"duration"`
}

// Imported returns the number of accepted resources.
func (r *ImportResult) Imported() int {
	return len(r.Resources)
}

// Failed returns the number of rejected rows.
func (r *ImportResult) Failed() int {
	return len(r.ResourceErrors)
}
