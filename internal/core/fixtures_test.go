package core

import (
	"bytes"
	"log/slog"
)

// Resource type ids used by the test catalogs.
const (
	idPasswordString   = "00000000-0000-4000-8000-000000000001"
	idPasswordDesc     = "00000000-0000-4000-8000-000000000002"
	idTOTP             = "00000000-0000-4000-8000-000000000003"
	idPasswordDescTOTP = "00000000-0000-4000-8000-000000000004"
	idV5Default        = "00000000-0000-4000-8000-000000000005"
	idV5DefaultTOTP    = "00000000-0000-4000-8000-000000000006"
)

func secret(props []string, required ...string) ResourceTypeDefinition {
	return ResourceTypeDefinition{Secret: SecretSchema{Properties: props, Required: required}}
}

// testCatalog holds both generations in catalog order.
func testCatalog() ResourceTypes {
	return ResourceTypes{
		{ID: idPasswordString, Slug: SlugPasswordString, Definition: secret([]string{"password"}, "password")},
		{ID: idPasswordDesc, Slug: SlugPasswordAndDescription, Definition: secret([]string{"password", "description"}, "password")},
		{ID: idTOTP, Slug: SlugTOTP, Definition: secret([]string{"totp"}, "totp")},
		{ID: idPasswordDescTOTP, Slug: SlugPasswordDescriptionTOTP, Definition: secret([]string{"password", "description", "totp"}, "password", "totp")},
		{ID: idV5Default, Slug: SlugV5Default, Definition: secret([]string{"password", "description"}, "password")},
		{ID: idV5DefaultTOTP, Slug: SlugV5DefaultWithTOTP, Definition: secret([]string{"password", "description", "totp"}, "password", "totp")},
	}
}

// groupFormat is shaped like a KeePassXC export.
func groupFormat() FormatDefinition {
	return FormatDefinition{
		Info: FormatInfo{Key: "group", Label: "Group test format"},
		Columns: []ColumnSpec{
			{Field: FieldFolderParentPath, Column: "Group"},
			{Field: FieldName, Column: "Title"},
			{Field: FieldUsername, Column: "Username"},
			{Field: FieldSecretClear, Column: "Password"},
			{Field: FieldURIs, Column: "URL"},
			{Field: FieldDescription, Column: "Notes"},
			{Field: FieldTOTP, Column: "TOTP"},
		},
		TOTP: URIAdapter{},
	}
}

// pinnedFormat always produces password-and-description resources.
func pinnedFormat() FormatDefinition {
	return FormatDefinition{
		Info: FormatInfo{Key: "pinned", Label: "Pinned test format"},
		Columns: []ColumnSpec{
			{Field: FieldName, Column: "name"},
			{Field: FieldSecretClear, Column: "password"},
			{Field: FieldDescription, Column: "note"},
		},
		FixedType: &SlugPair{Legacy: SlugPasswordAndDescription, Current: SlugV5Default},
	}
}

func testRegistry(defs ...FormatDefinition) *Registry {
	r := NewRegistry()
	for _, d := range defs {
		r.Register(d)
	}
	return r
}

// captureLogger returns a logger writing text records into the buffer.
func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}
