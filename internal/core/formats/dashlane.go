package formats

import "github.com/JonMunkholm/credport/internal/core"

// dashlane reads Dashlane credential exports. otpSecret holds either a raw
// secret or an otpauth URI depending on the app version.
func dashlane() core.FormatDefinition {
	return core.FormatDefinition{
		Info: core.FormatInfo{
			Key:   "dashlane",
			Label: "Dashlane (csv)",
		},
		Columns: []core.ColumnSpec{
			{Field: core.FieldUsername, Column: "username"},
			{Field: core.FieldName, Column: "title"},
			{Field: core.FieldSecretClear, Column: "password"},
			{Field: core.FieldDescription, Column: "note"},
			{Field: core.FieldURIs, Column: "url"},
			{Field: core.FieldFolderParentPath, Column: "category"},
			{Field: core.FieldTOTP, Column: "otpSecret"},
		},
		TOTP: core.AutoAdapter{},
	}
}
