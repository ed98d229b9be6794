package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func legacyContext() ParseContext {
	catalog := testCatalog().ForGeneration(GenerationLegacy)
	def, _ := catalog.ResolveDefault(GenerationLegacy)
	return ParseContext{Catalog: catalog, Generation: GenerationLegacy, DefaultType: def}
}

func TestMapRow(t *testing.T) {
	def := groupFormat()

	t.Run("full row", func(t *testing.T) {
		row := Row{
			"Group":    "Work/Servers",
			"Title":    "Site",
			"Username": "alice",
			"Password": "s3cret",
			"URL":      "https://a.test",
			"Notes":    "note",
			"TOTP":     "otpauth://totp/x?secret=" + testSecret,
		}
		res, err := def.MapRow(row)
		require.NoError(t, err)

		assert.Equal(t, "Site", res.Name)
		assert.Equal(t, "alice", *res.Username)
		assert.Equal(t, "s3cret", res.SecretClear)
		assert.Equal(t, []string{"https://a.test"}, res.URIs)
		assert.Equal(t, "note", *res.Description)
		assert.Equal(t, "Work/Servers", res.FolderParentPath)
		require.NotNil(t, res.TOTP)
		assert.Equal(t, testSecret, res.TOTP.SecretKey)
	})

	t.Run("blank cells are absent", func(t *testing.T) {
		row := Row{"Title": "  ", "Password": "", "Username": " ", "Notes": "", "URL": ""}
		res, err := def.MapRow(row)
		require.NoError(t, err)

		assert.Equal(t, DefaultResourceName, res.Name)
		assert.Nil(t, res.Username)
		assert.Nil(t, res.Description)
		assert.Nil(t, res.URIs)
		assert.Nil(t, res.TOTP)
		assert.Equal(t, "", res.SecretClear)
		assert.Empty(t, res.SecretFields())
	})

	t.Run("secret is kept verbatim", func(t *testing.T) {
		res, err := def.MapRow(Row{"Title": "x", "Password": "   "})
		require.NoError(t, err)
		assert.Equal(t, "   ", res.SecretClear)
		assert.Equal(t, []string{"secret_clear"}, res.SecretFields())

		res, err = def.MapRow(Row{"Title": "x", "Password": " p w "})
		require.NoError(t, err)
		assert.Equal(t, " p w ", res.SecretClear)
	})

	t.Run("folder path is normalised", func(t *testing.T) {
		res, err := def.MapRow(Row{"Title": "x", "Group": " /a// b /"})
		require.NoError(t, err)
		assert.Equal(t, "a/b", res.FolderParentPath)
	})

	t.Run("malformed totp fails the row", func(t *testing.T) {
		_, err := def.MapRow(Row{"Title": "x", "TOTP": "otpauth://totp/x?secret=1890"})
		assert.ErrorIs(t, err, ErrInvalidTOTP)
	})

	t.Run("hook runs after mapping", func(t *testing.T) {
		hooked := def
		hooked.AfterParse = func(row Row, res *ExternalResource) {
			res.Name = res.Name + " (" + row["Group"] + ")"
		}
		res, err := hooked.MapRow(Row{"Title": "x", "Group": "g"})
		require.NoError(t, err)
		assert.Equal(t, "x (g)", res.Name)
	})
}

func TestMapRow_CustomFieldsAndIcon(t *testing.T) {
	def := FormatDefinition{
		Info: FormatInfo{Key: "extras"},
		Columns: []ColumnSpec{
			{Field: FieldName, Column: "name"},
			{Field: FieldSecretClear, Column: "password"},
			{Field: FieldCustomFields, Column: "fields"},
			{Field: FieldIcon, Column: "icon"},
		},
	}

	res, err := def.MapRow(Row{"name": "x", "fields": "pin: 1234\nrecovery:a:b\n\nloose", "icon": "12"})
	require.NoError(t, err)
	assert.Equal(t, []CustomField{
		{Type: "text", Key: "pin", Value: "1234"},
		{Type: "text", Key: "recovery", Value: "a:b"},
		{Type: "text", Value: "loose"},
	}, res.CustomFields)
	assert.Equal(t, &Icon{Type: IconTypeKeepass, Value: 12}, res.Icon)
	assert.Contains(t, res.SecretFields(), string(FieldCustomFields))

	res, err = def.MapRow(Row{"name": "x", "icon": "99"})
	require.NoError(t, err)
	assert.Nil(t, res.Icon, "out of range icons are dropped")
}

func TestParse_Classified(t *testing.T) {
	pc := legacyContext()

	tests := []struct {
		name     string
		row      Row
		wantKind MatchKind
		wantID   string
	}{
		{
			name:     "password with totp",
			row:      Row{"Title": "x", "Password": "p", "TOTP": "otpauth://totp/x?secret=" + testSecret},
			wantKind: MatchExact,
			wantID:   idPasswordDescTOTP,
		},
		{
			name:     "password only",
			row:      Row{"Title": "x", "Password": "p"},
			wantKind: MatchExact,
			wantID:   idPasswordDesc,
		},
		{
			name:     "notes only",
			row:      Row{"Title": "x", "Notes": "n"},
			wantKind: MatchPartial,
			wantID:   idPasswordDesc,
		},
		{
			name:     "nothing secret",
			row:      Row{"Title": "x", "Username": "u"},
			wantKind: MatchFallback,
			wantID:   idPasswordDesc,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := groupFormat().Parse(tt.row, pc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, got.Match.Kind)
			require.NotNil(t, got.Resource.ResourceTypeID)
			assert.Equal(t, tt.wantID, *got.Resource.ResourceTypeID)
		})
	}
}

func TestParse_FixedType(t *testing.T) {
	def := pinnedFormat()

	t.Run("legacy slug", func(t *testing.T) {
		got, err := def.Parse(Row{"name": "x", "password": "p"}, legacyContext())
		require.NoError(t, err)
		assert.Equal(t, MatchFixed, got.Match.Kind)
		assert.Equal(t, idPasswordDesc, *got.Resource.ResourceTypeID)
	})

	t.Run("current slug", func(t *testing.T) {
		catalog := testCatalog().ForGeneration(GenerationCurrent)
		pc := ParseContext{Catalog: catalog, Generation: GenerationCurrent}
		got, err := def.Parse(Row{"name": "x"}, pc)
		require.NoError(t, err)
		assert.Equal(t, idV5Default, *got.Resource.ResourceTypeID)
	})

	t.Run("missing slug asks for fallback", func(t *testing.T) {
		pc := ParseContext{Catalog: ResourceTypes{}, Generation: GenerationLegacy}
		got, err := def.Parse(Row{"name": "x", "password": "p"}, pc)
		assert.True(t, errors.Is(err, ErrResourceTypeFallback))
		assert.Equal(t, "x", got.Resource.Name, "mapped resource is kept for the fallback")
		assert.Nil(t, got.Resource.ResourceTypeID)
	})
}

func TestCustomFieldsRoundTrip(t *testing.T) {
	fields := []CustomField{
		{Type: "text", Key: "pin", Value: "1234"},
		{Type: "text", Key: "url", Value: "https://x.test:8443"},
	}
	assert.Equal(t, fields, ParseCustomFields(FormatCustomFields(fields)))
	assert.Nil(t, ParseCustomFields(""))
}
