package core

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose_HeaderOnly(t *testing.T) {
	out := groupFormat().Compose(nil)
	assert.Equal(t, `"Group","Title","Username","Password","URL","Notes","TOTP"`+"\n", string(out))
}

func TestCompose_Quoting(t *testing.T) {
	res := ExternalResource{
		Name:        `say "hi"`,
		SecretClear: "a,b",
		Description: stringPtr("line1\nline2"),
	}
	out := string(pinnedFormat().Compose([]ExternalResource{res}))

	assert.Equal(t, `"name","password","note"`+"\n"+`"say ""hi""","a,b","line1`+"\n"+`line2"`+"\n", out)
	assert.False(t, strings.Contains(out, "\r\n"))
}

func TestCompose_EmptyFieldsGiveEmptyCells(t *testing.T) {
	out := string(groupFormat().Compose([]ExternalResource{{Name: "x"}}))
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"","x","","","","",""`, lines[1])
}

func TestComposeRow_SharedColumn(t *testing.T) {
	def := FormatDefinition{
		Info: FormatInfo{Key: "shared"},
		Columns: []ColumnSpec{
			{Field: FieldURIs, Column: "url"},
			{Field: FieldName, Column: "url"},
			{Field: FieldSecretClear, Column: "password"},
		},
	}

	row := def.ComposeRow(ExternalResource{Name: "Site", URIs: []string{"https://a.test", "https://b.test"}})
	assert.Equal(t, "https://a.test", row["url"], "first mapped field wins")

	row = def.ComposeRow(ExternalResource{Name: "Site"})
	assert.Equal(t, "Site", row["url"], "later field fills an empty column")

	assert.Equal(t, []string{"url", "password"}, def.HeaderColumns())
}

func TestComposeRow_Defaults(t *testing.T) {
	def := pinnedFormat()
	def.ComposeDefaults = map[string]string{"type": "login", "note": "imported"}

	assert.Equal(t, []string{"name", "password", "note", "type"}, def.HeaderColumns())

	row := def.ComposeRow(ExternalResource{Name: "x"})
	assert.Equal(t, "login", row["type"])
	assert.Equal(t, "imported", row["note"])

	row = def.ComposeRow(ExternalResource{Name: "x", Description: stringPtr("mine")})
	assert.Equal(t, "mine", row["note"], "defaults never overwrite a value")
}

func TestComposeRow_SplitTOTP(t *testing.T) {
	def := FormatDefinition{
		Info: FormatInfo{Key: "split"},
		Columns: []ColumnSpec{
			{Field: FieldName, Column: "title"},
			{Field: FieldTOTP, Column: "otp"},
		},
		TOTP: SplitAdapter{AlgorithmColumn: "otp-alg", DigitsColumn: "otp-len", PeriodColumn: "otp-period"},
	}
	res := ExternalResource{Name: "x", TOTP: &TOTP{SecretKey: testSecret, Period: 60, Digits: 8, Algorithm: "SHA256"}}

	out := string(def.Compose([]ExternalResource{res}))
	assert.Equal(t,
		`"title","otp","otp-alg","otp-len","otp-period"`+"\n"+
			`"x","`+testSecret+`","SHA256","8","60"`+"\n",
		out)
}

func TestComposeRow_BeforeComposeHook(t *testing.T) {
	def := pinnedFormat()
	def.BeforeCompose = func(res ExternalResource, out Row) {
		out["name"] = strings.ToUpper(res.Name)
	}
	assert.Equal(t, "SITE", def.ComposeRow(ExternalResource{Name: "site"})["name"])
}

func TestCompose_RoundTrip(t *testing.T) {
	def := groupFormat()
	records := []ExternalResource{
		{
			Name:             "Site",
			Username:         stringPtr("alice"),
			URIs:             []string{"https://a.test"},
			Description:      stringPtr("multi\nline, \"quoted\""),
			SecretClear:      "p,w\"d",
			TOTP:             &TOTP{SecretKey: testSecret, Period: 30, Digits: 6, Algorithm: "SHA1"},
			FolderParentPath: "Work/Servers",
		},
		{Name: "Bare", SecretClear: "x"},
	}

	header, rows, err := ReadRows(def.Compose(records))
	require.NoError(t, err)
	assert.Equal(t, def.HeaderColumns(), header)
	require.Len(t, rows, len(records))

	idx := MakeHeaderIndex(header)
	for i, raw := range rows {
		got, err := def.MapRow(idx.BuildRow(raw.Fields))
		require.NoError(t, err)
		assert.Equal(t, records[i], got)
	}
}

func TestExportSession(t *testing.T) {
	logger, logs := captureLogger()
	s := NewExportSession(testRegistry(groupFormat(), pinnedFormat()), logger)

	out, err := s.Export(context.Background(), "pinned", []ExternalResource{{Name: "x", SecretClear: "p"}})
	require.NoError(t, err)
	assert.Equal(t, `"name","password","note"`+"\n"+`"x","p",""`+"\n", string(out))
	assert.Contains(t, logs.String(), "export composed")

	_, err = s.Export(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
