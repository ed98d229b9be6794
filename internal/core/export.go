package core

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// ComposeRow maps a resource to a vendor row. When several fields share a
// column the first non-empty value wins. Absent fields give empty cells.
func (d FormatDefinition) ComposeRow(res ExternalResource) Row {
	out := make(Row, len(d.Columns))
	set := func(col, value string) {
		if value == "" || out[col] != "" {
			return
		}
		out[col] = value
	}

	for _, spec := range d.Columns {
		switch spec.Field {
		case FieldName:
			set(spec.Column, res.Name)
		case FieldUsername:
			set(spec.Column, deref(res.Username))
		case FieldURIs:
			if len(res.URIs) > 0 {
				set(spec.Column, res.URIs[0])
			}
		case FieldDescription:
			set(spec.Column, deref(res.Description))
		case FieldSecretClear:
			set(spec.Column, res.SecretClear)
		case FieldFolderParentPath:
			set(spec.Column, res.FolderParentPath)
		case FieldTOTP:
			if res.TOTP != nil && d.TOTP != nil {
				d.TOTP.Encode(res, *res.TOTP, spec.Column, out)
			}
		case FieldCustomFields:
			set(spec.Column, FormatCustomFields(res.CustomFields))
		case FieldIcon:
			if res.Icon != nil && res.Icon.Type == IconTypeKeepass {
				set(spec.Column, strconv.Itoa(res.Icon.Value))
			}
		}
	}

	for col, value := range d.ComposeDefaults {
		set(col, value)
	}
	if d.BeforeCompose != nil {
		d.BeforeCompose(res, out)
	}
	return out
}

// Compose writes records as CSV text in the format's column layout.
//
// The header row is always written, so an empty record set still yields a
// file the vendor can read back. Every cell is quoted and lines end in "\n".
func (d FormatDefinition) Compose(records []ExternalResource) []byte {
	header := d.HeaderColumns()

	var buf bytes.Buffer
	writeQuotedLine(&buf, header)

	cells := make([]string, len(header))
	for _, res := range records {
		row := d.ComposeRow(res)
		for i, col := range header {
			cells[i] = row[col]
		}
		writeQuotedLine(&buf, cells)
	}
	return buf.Bytes()
}

// writeQuotedLine writes one CSV line with every cell quoted. encoding/csv
// only quotes cells that need it, which vendors such as Bitwarden reject for
// header rows.
func writeQuotedLine(buf *bytes.Buffer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(c, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteByte('\n')
}

// ExportSession composes records into a registered format.
type ExportSession struct {
	registry *Registry
	logger   *slog.Logger
}

// NewExportSession creates an export session. A nil registry means the
// default registry.
func NewExportSession(registry *Registry, logger *slog.Logger) *ExportSession {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportSession{registry: registry, logger: logger}
}

// Export composes records with the format registered under key.
func (s *ExportSession) Export(ctx context.Context, key string, records []ExternalResource) ([]byte, error) {
	def, ok := s.registry.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, key)
	}

	out := def.Compose(records)
	s.logger.InfoContext(ctx, "export composed", "format", key, "records", len(records), "bytes", len(out))
	return out, nil
}
