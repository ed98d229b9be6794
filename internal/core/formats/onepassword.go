package formats

import "github.com/JonMunkholm/credport/internal/core"

// onePassword reads 1Password CSV exports. The item category lands in Type
// and is used as the folder.
func onePassword() core.FormatDefinition {
	return core.FormatDefinition{
		Info: core.FormatInfo{
			Key:   "1password",
			Label: "1Password (csv)",
		},
		Columns: []core.ColumnSpec{
			{Field: core.FieldName, Column: "Title"},
			{Field: core.FieldURIs, Column: "Url"},
			{Field: core.FieldUsername, Column: "Username"},
			{Field: core.FieldSecretClear, Column: "Password"},
			{Field: core.FieldTOTP, Column: "OTPAuth"},
			{Field: core.FieldDescription, Column: "Notes"},
			{Field: core.FieldFolderParentPath, Column: "Type"},
		},
		TOTP: core.URIAdapter{},
	}
}
