package formats

import "github.com/JonMunkholm/credport/internal/core"

// keePass reads KeePass 2 CSV exports with the TimeOtp plugin columns.
func keePass() core.FormatDefinition {
	return core.FormatDefinition{
		Info: core.FormatInfo{
			Key:   "keepass",
			Label: "KeePass (csv)",
		},
		Columns: []core.ColumnSpec{
			{Field: core.FieldName, Column: "Account"},
			{Field: core.FieldUsername, Column: "Login Name"},
			{Field: core.FieldSecretClear, Column: "Password"},
			{Field: core.FieldURIs, Column: "Web Site"},
			{Field: core.FieldDescription, Column: "Comments"},
			{Field: core.FieldTOTP, Column: "TimeOtp-Secret-Base32"},
		},
		TOTP: core.SplitAdapter{
			AlgorithmColumn: "TimeOtp-Algorithm",
			DigitsColumn:    "TimeOtp-Length",
			PeriodColumn:    "TimeOtp-Period",
		},
	}
}
