package formats

import "github.com/JonMunkholm/credport/internal/core"

// keePassXC reads the CSV export of KeePassXC. Group carries the folder path
// and TOTP a full otpauth URI.
func keePassXC() core.FormatDefinition {
	return core.FormatDefinition{
		Info: core.FormatInfo{
			Key:   "kdbx",
			Label: "KeePassXC (csv)",
		},
		Columns: []core.ColumnSpec{
			{Field: core.FieldFolderParentPath, Column: "Group"},
			{Field: core.FieldName, Column: "Title"},
			{Field: core.FieldUsername, Column: "Username"},
			{Field: core.FieldSecretClear, Column: "Password"},
			{Field: core.FieldURIs, Column: "URL"},
			{Field: core.FieldDescription, Column: "Notes"},
			{Field: core.FieldTOTP, Column: "TOTP"},
			{Field: core.FieldIcon, Column: "Icon"},
		},
		TOTP: core.URIAdapter{},
	}
}
