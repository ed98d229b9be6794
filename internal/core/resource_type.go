package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Resource type slugs the import pipeline knows by name.
const (
	SlugPasswordString          = "password-string"
	SlugPasswordAndDescription  = "password-and-description"
	SlugTOTP                    = "totp"
	SlugPasswordDescriptionTOTP = "password-description-totp"
	SlugV5Default               = "v5-default"
	SlugV5PasswordString        = "v5-password-string"
	SlugV5DefaultWithTOTP       = "v5-default-with-totp"
	SlugV5TOTPStandalone        = "v5-totp-standalone"
	SlugV5CustomFields          = "v5-custom-fields"
	SlugV5Note                  = "v5-note"
)

const (
	currentGenerationSlugPrefix = "v5-"

	secretPropertyPassword    = "password"
	secretPropertyDescription = "description"
	secretPropertyTOTP        = "totp"
)

// ErrDefaultResourceTypeMissing is returned when the organization's default
// resource type is not in the catalog. It aborts the whole import.
var ErrDefaultResourceTypeMissing = errors.New("default resource type missing from catalog")

// ErrResourceTypeFallback is returned by a parser that could not resolve its
// fixed resource type. The import session answers it with the default type.
var ErrResourceTypeFallback = errors.New("resource type not found, falling back to default")

// SchemaGeneration selects which family of resource types a deployment uses.
type SchemaGeneration string

const (
	GenerationLegacy  SchemaGeneration = "legacy"
	GenerationCurrent SchemaGeneration = "current"
)

// ParseSchemaGeneration accepts "legacy"/"v4" and "current"/"v5".
func ParseSchemaGeneration(s string) (SchemaGeneration, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "legacy", "v4":
		return GenerationLegacy, nil
	case "current", "v5":
		return GenerationCurrent, nil
	}
	return "", fmt.Errorf("unknown schema generation %q (use legacy or current)", s)
}

// DefaultSlug returns the slug of the fallback resource type.
func (g SchemaGeneration) DefaultSlug() string {
	if g == GenerationCurrent {
		return SlugV5Default
	}
	return SlugPasswordAndDescription
}

// Pick returns the slug of a pair that belongs to the generation.
func (g SchemaGeneration) Pick(p SlugPair) string {
	if g == GenerationCurrent {
		return p.Current
	}
	return p.Legacy
}

// SecretSchema is the part of a resource type definition that describes the
// secret payload. Properties keep their document order.
type SecretSchema struct {
	Properties []string
	Required   []string
}

// ResourceTypeDefinition wraps the secret schema of a resource type.
type ResourceTypeDefinition struct {
	Secret SecretSchema
}

// ResourceType is a named secret schema supplied by the deployment.
type ResourceType struct {
	ID         string
	Slug       string
	Name       string
	Definition ResourceTypeDefinition
}

// Generation reports which schema generation the type belongs to.
func (t ResourceType) Generation() SchemaGeneration {
	if strings.HasPrefix(t.Slug, currentGenerationSlugPrefix) {
		return GenerationCurrent
	}
	return GenerationLegacy
}

// IsSecretStringOnly reports whether the type is a legacy password-only
// type that never takes part in scoring.
func (t ResourceType) IsSecretStringOnly() bool {
	return t.Slug == SlugPasswordString || t.Slug == SlugV5PasswordString
}

// ResourceTypes is an ordered catalog. Order breaks classification ties.
type ResourceTypes []ResourceType

// BySlug returns the first type with the slug.
func (c ResourceTypes) BySlug(slug string) (ResourceType, bool) {
	for _, t := range c {
		if t.Slug == slug {
			return t, true
		}
	}
	return ResourceType{}, false
}

// ByID returns the type with the id.
func (c ResourceTypes) ByID(id string) (ResourceType, bool) {
	for _, t := range c {
		if t.ID == id {
			return t, true
		}
	}
	return ResourceType{}, false
}

// ForGeneration returns the types of one generation, order preserved.
func (c ResourceTypes) ForGeneration(g SchemaGeneration) ResourceTypes {
	out := make(ResourceTypes, 0, len(c))
	for _, t := range c {
		if t.Generation() == g {
			out = append(out, t)
		}
	}
	return out
}

// ResolveDefault returns the fallback resource type for the generation.
func (c ResourceTypes) ResolveDefault(g SchemaGeneration) (ResourceType, error) {
	slug := g.DefaultSlug()
	t, ok := c.BySlug(slug)
	if !ok {
		return ResourceType{}, fmt.Errorf("%w: %q", ErrDefaultResourceTypeMissing, slug)
	}
	return t, nil
}

// Validate checks that ids are UUIDs and slugs are unique and non-empty.
func (c ResourceTypes) Validate() error {
	var errs []error
	seen := make(map[string]struct{}, len(c))
	for i, t := range c {
		if _, err := uuid.Parse(t.ID); err != nil {
			errs = append(errs, fmt.Errorf("resource type %d (%s): invalid id %q", i, t.Slug, t.ID))
		}
		if t.Slug == "" {
			errs = append(errs, fmt.Errorf("resource type %d: empty slug", i))
			continue
		}
		if _, dup := seen[t.Slug]; dup {
			errs = append(errs, fmt.Errorf("resource type %d: duplicate slug %q", i, t.Slug))
		}
		seen[t.Slug] = struct{}{}
	}
	return errors.Join(errs...)
}
