package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	legacy := testCatalog().ForGeneration(GenerationLegacy)

	tests := []struct {
		name        string
		fields      []string
		catalog     ResourceTypes
		wantKind    MatchKind
		wantSlug    string
		wantScore   int
		wantMissing int
	}{
		{
			name:      "password and description is exact",
			fields:    []string{"secret_clear", "description"},
			catalog:   legacy,
			wantKind:  MatchExact,
			wantSlug:  SlugPasswordAndDescription,
			wantScore: 2,
		},
		{
			name:      "password only prefers first exact type",
			fields:    []string{"secret_clear"},
			catalog:   legacy,
			wantKind:  MatchExact,
			wantSlug:  SlugPasswordAndDescription,
			wantScore: 1,
		},
		{
			name:      "highest exact score wins",
			fields:    []string{"secret_clear", "description", "totp"},
			catalog:   legacy,
			wantKind:  MatchExact,
			wantSlug:  SlugPasswordDescriptionTOTP,
			wantScore: 3,
		},
		{
			name:      "totp only",
			fields:    []string{"totp"},
			catalog:   legacy,
			wantKind:  MatchExact,
			wantSlug:  SlugTOTP,
			wantScore: 1,
		},
		{
			name:        "description only is a partial match",
			fields:      []string{"description"},
			catalog:     legacy,
			wantKind:    MatchPartial,
			wantSlug:    SlugPasswordAndDescription,
			wantScore:   1,
			wantMissing: 1,
		},
		{
			name:     "no fields matches nothing",
			fields:   nil,
			catalog:  legacy,
			wantKind: MatchNone,
		},
		{
			name:   "secret string type is never a candidate",
			fields: []string{"secret_clear"},
			catalog: ResourceTypes{
				{ID: idPasswordString, Slug: SlugPasswordString, Definition: secret([]string{"password"}, "password")},
				{ID: idV5Default, Slug: SlugV5PasswordString, Definition: secret([]string{"password"}, "password")},
			},
			wantKind: MatchNone,
		},
		{
			name:   "notes only against a password type",
			fields: []string{"description"},
			catalog: ResourceTypes{
				{ID: idPasswordDesc, Slug: "password-only", Definition: secret([]string{"password"}, "password")},
			},
			wantKind: MatchNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.fields, tt.catalog)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantSlug, got.Type.Slug)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantMissing, got.Missing)
		})
	}
}

func TestClassify_ImputesPasswordForTOTPAndDescription(t *testing.T) {
	combined := ResourceType{
		ID:         idPasswordDescTOTP,
		Slug:       "combined",
		Definition: secret([]string{"password", "description", "totp"}, "password", "description", "totp"),
	}

	got := Classify([]string{"description", "totp"}, ResourceTypes{combined})
	assert.Equal(t, MatchExact, got.Kind)
	assert.Equal(t, "combined", got.Type.Slug)
	assert.Equal(t, 3, got.Score)

	// Without description in required, nothing is imputed.
	plain := combined
	plain.Definition = secret([]string{"password", "description", "totp"}, "password", "totp")
	got = Classify([]string{"description", "totp"}, ResourceTypes{plain})
	assert.Equal(t, MatchPartial, got.Kind)
	assert.Equal(t, 1, got.Missing)
}

// Equal scores resolve to the earliest type in catalog order. This pins the
// current tie-break; change it deliberately or not at all.
func TestClassify_TieBreakFollowsCatalogOrder(t *testing.T) {
	first := ResourceType{ID: idPasswordDesc, Slug: "first", Definition: secret([]string{"password", "description"}, "password")}
	second := ResourceType{ID: idV5Default, Slug: "second", Definition: secret([]string{"password", "description"}, "password")}

	t.Run("exact", func(t *testing.T) {
		fields := []string{"secret_clear", "description"}
		assert.Equal(t, "first", Classify(fields, ResourceTypes{first, second}).Type.Slug)
		assert.Equal(t, "second", Classify(fields, ResourceTypes{second, first}).Type.Slug)
	})

	t.Run("partial", func(t *testing.T) {
		fields := []string{"description"}
		got := Classify(fields, ResourceTypes{first, second})
		assert.Equal(t, MatchPartial, got.Kind)
		assert.Equal(t, "first", got.Type.Slug)
		assert.Equal(t, "second", Classify(fields, ResourceTypes{second, first}).Type.Slug)
	})
}

func TestResourceTypes_ResolveDefault(t *testing.T) {
	catalog := testCatalog()

	got, err := catalog.ResolveDefault(GenerationLegacy)
	assert.NoError(t, err)
	assert.Equal(t, SlugPasswordAndDescription, got.Slug)

	got, err = catalog.ResolveDefault(GenerationCurrent)
	assert.NoError(t, err)
	assert.Equal(t, SlugV5Default, got.Slug)

	_, err = catalog.ForGeneration(GenerationLegacy).ResolveDefault(GenerationCurrent)
	assert.ErrorIs(t, err, ErrDefaultResourceTypeMissing)
}

func TestResourceTypes_ForGeneration(t *testing.T) {
	current := testCatalog().ForGeneration(GenerationCurrent)
	assert.Len(t, current, 2)
	for _, rt := range current {
		assert.Equal(t, GenerationCurrent, rt.Generation())
	}
}

func TestParseSchemaGeneration(t *testing.T) {
	tests := []struct {
		in      string
		want    SchemaGeneration
		wantErr bool
	}{
		{in: "legacy", want: GenerationLegacy},
		{in: "V4", want: GenerationLegacy},
		{in: " current ", want: GenerationCurrent},
		{in: "v5", want: GenerationCurrent},
		{in: "v6", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSchemaGeneration(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
