package formats

import "github.com/JonMunkholm/credport/internal/core"

// lastPassSecureNoteURL is the url LastPass writes for secure notes.
const lastPassSecureNoteURL = "http://sn"

func lastPass() core.FormatDefinition {
	return core.FormatDefinition{
		Info: core.FormatInfo{
			Key:   "lastpass",
			Label: "LastPass (csv)",
		},
		Columns: []core.ColumnSpec{
			{Field: core.FieldURIs, Column: "url"},
			{Field: core.FieldUsername, Column: "username"},
			{Field: core.FieldSecretClear, Column: "password"},
			{Field: core.FieldTOTP, Column: "totp"},
			{Field: core.FieldDescription, Column: "extra"},
			{Field: core.FieldName, Column: "name"},
			{Field: core.FieldFolderParentPath, Column: "grouping"},
		},
		TOTP: core.Base32Adapter{},
		AfterParse: func(_ core.Row, res *core.ExternalResource) {
			if len(res.URIs) == 1 && res.URIs[0] == lastPassSecureNoteURL {
				res.URIs = nil
			}
		},
	}
}
