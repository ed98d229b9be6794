package formats

import "github.com/JonMunkholm/credport/internal/core"

func nordPass() core.FormatDefinition {
	return core.FormatDefinition{
		Info: core.FormatInfo{
			Key:   "nordpass",
			Label: "NordPass (csv)",
		},
		Columns: []core.ColumnSpec{
			{Field: core.FieldName, Column: "name"},
			{Field: core.FieldURIs, Column: "url"},
			{Field: core.FieldUsername, Column: "username"},
			{Field: core.FieldSecretClear, Column: "password"},
			{Field: core.FieldDescription, Column: "note"},
			{Field: core.FieldFolderParentPath, Column: "folder"},
		},
		FixedType: passwordAndDescription(),
	}
}
