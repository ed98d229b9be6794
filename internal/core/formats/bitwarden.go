package formats

import "github.com/JonMunkholm/credport/internal/core"

// bitwarden reads the Bitwarden CSV export. Custom fields are exported as
// "key: value" lines in the fields column.
func bitwarden() core.FormatDefinition {
	return core.FormatDefinition{
		Info: core.FormatInfo{
			Key:   "bitwarden",
			Label: "Bitwarden (csv)",
		},
		Columns: []core.ColumnSpec{
			{Field: core.FieldFolderParentPath, Column: "folder"},
			{Field: core.FieldName, Column: "name"},
			{Field: core.FieldDescription, Column: "notes"},
			{Field: core.FieldCustomFields, Column: "fields"},
			{Field: core.FieldURIs, Column: "login_uri"},
			{Field: core.FieldUsername, Column: "login_username"},
			{Field: core.FieldSecretClear, Column: "login_password"},
			{Field: core.FieldTOTP, Column: "login_totp"},
		},
		TOTP: core.URIAdapter{},
		ComposeDefaults: map[string]string{
			"type": "login",
		},
	}
}
