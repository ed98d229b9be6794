package core

// parse.go implements detection and row parsing shared by every format.
//
// A format is data: its column mapping drives both directions. Parsing
// walks the mapping, treats blank cells as absent, decodes one-time
// passwords through the format's adapter and then resolves a resource type,
// either pinned by the format or chosen by Classify.

import (
	"fmt"
	"strconv"
	"strings"
)

// mandatoryDetectionScore is what a format scores for having both the name
// and the secret column present.
const mandatoryDetectionScore = 2

// CanDetect scores how well a header matches the format.
//
// The score is 0 unless the columns mapped to name and secret_clear are both
// in the header. Otherwise it is 2 plus one per other mapped field whose
// column is present. Presence is set membership: column order and
// duplicates do not change the score.
func (d FormatDefinition) CanDetect(header []string) int {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[CleanCell(h)] = struct{}{}
	}

	nameCol, ok := d.Column(FieldName)
	if !ok {
		return 0
	}
	secretCol, ok := d.Column(FieldSecretClear)
	if !ok {
		return 0
	}
	if _, ok := present[nameCol]; !ok {
		return 0
	}
	if _, ok := present[secretCol]; !ok {
		return 0
	}

	score := mandatoryDetectionScore
	counted := make(map[CanonicalField]struct{}, len(d.Columns))
	for _, spec := range d.Columns {
		if spec.Field == FieldName || spec.Field == FieldSecretClear {
			continue
		}
		if _, done := counted[spec.Field]; done {
			continue
		}
		if _, ok := present[spec.Column]; ok {
			counted[spec.Field] = struct{}{}
			score++
		}
	}
	return score
}

// ParseContext carries the read-only inputs every row is parsed against.
type ParseContext struct {
	Catalog     ResourceTypes    // Candidates, already narrowed to one generation
	Generation  SchemaGeneration // Selects fixed slugs
	DefaultType ResourceType     // Assigned when classification finds nothing
}

// ParsedRow is the outcome of parsing one row.
type ParsedRow struct {
	Resource ExternalResource
	Match    Classification
}

// Parse maps a row to a canonical resource and resolves its resource type.
//
// A format whose pinned resource type is missing from the catalog returns
// the mapped resource together with an error wrapping ErrResourceTypeFallback.
func (d FormatDefinition) Parse(row Row, pc ParseContext) (ParsedRow, error) {
	res, err := d.MapRow(row)
	if err != nil {
		return ParsedRow{}, err
	}

	if d.FixedType != nil {
		slug := pc.Generation.Pick(*d.FixedType)
		t, ok := pc.Catalog.BySlug(slug)
		if !ok {
			return ParsedRow{Resource: res}, fmt.Errorf("%w: %q", ErrResourceTypeFallback, slug)
		}
		res.ResourceTypeID = stringPtr(t.ID)
		return ParsedRow{Resource: res, Match: Classification{Kind: MatchFixed, Type: t}}, nil
	}

	match := Classify(res.SecretFields(), pc.Catalog)
	if match.Kind == MatchNone {
		match = Classification{Kind: MatchFallback, Type: pc.DefaultType}
	}
	res.ResourceTypeID = stringPtr(match.Type.ID)
	return ParsedRow{Resource: res, Match: match}, nil
}

// MapRow applies the column mapping without resolving a resource type.
func (d FormatDefinition) MapRow(row Row) (ExternalResource, error) {
	res := ExternalResource{Name: DefaultResourceName}

	for _, spec := range d.Columns {
		// Secrets are taken verbatim; a password of spaces is still a password.
		if spec.Field == FieldSecretClear {
			if v := row[spec.Column]; v != "" {
				res.SecretClear = v
			}
			continue
		}

		value, ok := row.Get(spec.Column)
		if !ok {
			continue
		}

		switch spec.Field {
		case FieldName:
			if res.Name == DefaultResourceName {
				res.Name = value
			}
		case FieldUsername:
			if res.Username == nil {
				res.Username = stringPtr(value)
			}
		case FieldURIs:
			if len(res.URIs) == 0 {
				res.URIs = []string{value}
			}
		case FieldDescription:
			if res.Description == nil {
				res.Description = stringPtr(value)
			}
		case FieldFolderParentPath:
			res.FolderParentPath = strings.Join(SplitPath(value), PathSeparator)
		case FieldTOTP:
			t, err := d.TOTP.Decode(value, row)
			if err != nil {
				return ExternalResource{}, fmt.Errorf("column %q: %w", spec.Column, err)
			}
			res.TOTP = t
		case FieldCustomFields:
			res.CustomFields = ParseCustomFields(value)
		case FieldIcon:
			if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n >= 0 && n <= maxKeepassIcon {
				res.Icon = &Icon{Type: IconTypeKeepass, Value: n}
			}
		}
	}

	if d.AfterParse != nil {
		d.AfterParse(row, &res)
	}
	return res, nil
}

// ParseCustomFields reads "key: value" lines. Lines without a separator
// become fields with an empty key.
func ParseCustomFields(s string) []CustomField {
	var fields []CustomField
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			fields = append(fields, CustomField{Type: "text", Value: strings.TrimSpace(line)})
			continue
		}
		fields = append(fields, CustomField{
			Type:  "text",
			Key:   strings.TrimSpace(key),
			Value: strings.TrimSpace(value),
		})
	}
	return fields
}

// FormatCustomFields is the inverse of ParseCustomFields.
func FormatCustomFields(fields []CustomField) string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Key == "" {
			lines = append(lines, f.Value)
			continue
		}
		lines = append(lines, f.Key+": "+f.Value)
	}
	return strings.Join(lines, "\n")
}
