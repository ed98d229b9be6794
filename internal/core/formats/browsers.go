package formats

import "github.com/JonMunkholm/credport/internal/core"

// Browser password exports carry no folders or one-time passwords, so their
// resource type is pinned.

func chromium() core.FormatDefinition {
	return core.FormatDefinition{
		Info: core.FormatInfo{
			Key:   "chromium",
			Label: "Chromium based browsers (csv)",
		},
		Columns: []core.ColumnSpec{
			{Field: core.FieldName, Column: "name"},
			{Field: core.FieldURIs, Column: "url"},
			{Field: core.FieldUsername, Column: "username"},
			{Field: core.FieldSecretClear, Column: "password"},
			{Field: core.FieldDescription, Column: "note"},
		},
		FixedType: passwordAndDescription(),
	}
}

// safari also exports one-time passwords, so it is classified.
func safari() core.FormatDefinition {
	return core.FormatDefinition{
		Info: core.FormatInfo{
			Key:   "safari",
			Label: "Safari (csv)",
		},
		Columns: []core.ColumnSpec{
			{Field: core.FieldName, Column: "Title"},
			{Field: core.FieldURIs, Column: "URL"},
			{Field: core.FieldUsername, Column: "Username"},
			{Field: core.FieldSecretClear, Column: "Password"},
			{Field: core.FieldDescription, Column: "Notes"},
			{Field: core.FieldTOTP, Column: "OTPAuth"},
		},
		TOTP: core.URIAdapter{},
	}
}

// mozilla has no name column; the url doubles as the resource name.
// uris is mapped first so exports write the url, not the name.
func mozilla() core.FormatDefinition {
	return core.FormatDefinition{
		Info: core.FormatInfo{
			Key:   "mozilla",
			Label: "Mozilla based browsers (csv)",
		},
		Columns: []core.ColumnSpec{
			{Field: core.FieldURIs, Column: "url"},
			{Field: core.FieldName, Column: "url"},
			{Field: core.FieldUsername, Column: "username"},
			{Field: core.FieldSecretClear, Column: "password"},
		},
		FixedType: passwordAndDescription(),
	}
}
