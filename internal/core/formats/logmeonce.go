package formats

import "github.com/JonMunkholm/credport/internal/core"

func logMeOnce() core.FormatDefinition {
	return core.FormatDefinition{
		Info: core.FormatInfo{
			Key:   "logmeonce",
			Label: "LogMeOnce (csv)",
		},
		Columns: []core.ColumnSpec{
			{Field: core.FieldName, Column: "name"},
			{Field: core.FieldURIs, Column: "url"},
			{Field: core.FieldDescription, Column: "note"},
			{Field: core.FieldFolderParentPath, Column: "group"},
			{Field: core.FieldUsername, Column: "username"},
			{Field: core.FieldSecretClear, Column: "password"},
		},
		FixedType: passwordAndDescription(),
	}
}
