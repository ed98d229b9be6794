package core

import (
	"strconv"
	"strings"
)

// DefaultResourceName is used when a row carries no name.
const DefaultResourceName = "(no name)"

// Field limits enforced by ExternalResource.Validate.
const (
	MaxNameLength        = 255
	MaxUsernameLength    = 255
	MaxURILength         = 1024
	MaxURIs              = 32
	MaxDescriptionLength = 10000
	MaxSecretLength      = 4096
	MaxFolderPathLength  = 1024
	MaxCustomFields      = 128
	MaxCustomKeyLength   = 255
	MaxCustomValueLength = 20000
)

// IconTypeKeepass identifies icons taken from the KeePass built-in icon set.
const IconTypeKeepass = "keepass-icon-set"

// maxKeepassIcon is the highest index of the KeePass built-in icon set.
const maxKeepassIcon = 68

// CustomField is a free-form key/value pair stored with a secret.
type CustomField struct {
	Type  string `json:"type"`
	Key   string `json:"metadata_key"`
	Value string `json:"secret_value"`
}

// Icon references the icon a vendor displayed for an entry.
type Icon struct {
	Type  string `json:"type"`
	Value int    `json:"value"`
}

// ExternalResource is the canonical import/export unit.
//
// Optional fields are pointers or slices; nil means the source had no value.
// SecretClear is always defined, possibly empty.
type ExternalResource struct {
	Name             string        `json:"name"`
	Username         *string       `json:"username,omitempty"`
	URIs             []string      `json:"uris,omitempty"`
	Description      *string       `json:"description,omitempty"`
	SecretClear      string        `json:"secret_clear"`
	TOTP             *TOTP         `json:"totp,omitempty"`
	FolderParentPath string        `json:"folder_parent_path"`
	ResourceTypeID   *string       `json:"resource_type_id,omitempty"`
	CustomFields     []CustomField `json:"custom_fields,omitempty"`
	Icon             *Icon         `json:"icon,omitempty"`
}

// SecretFields returns the secret-side canonical fields the resource carries,
// in a fixed order. This is the field set scored by Classify.
func (r ExternalResource) SecretFields() []string {
	var fields []string
	if r.SecretClear != "" {
		fields = append(fields, string(FieldSecretClear))
	}
	if r.Description != nil {
		fields = append(fields, string(FieldDescription))
	}
	if r.TOTP != nil {
		fields = append(fields, string(FieldTOTP))
	}
	if len(r.CustomFields) > 0 {
		fields = append(fields, string(FieldCustomFields))
	}
	return fields
}

// Validate checks the resource against the field limits and returns the
// first violation as a ValidationError.
func (r ExternalResource) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ValidationError{Field: string(FieldName), Message: "required field is empty"}
	}
	if err := checkLength(FieldName, r.Name, MaxNameLength); err != nil {
		return err
	}
	if r.Username != nil {
		if err := checkLength(FieldUsername, *r.Username, MaxUsernameLength); err != nil {
			return err
		}
	}
	if len(r.URIs) > MaxURIs {
		return ValidationError{
			Field:   string(FieldURIs),
			Message: "too many uris (max " + strconv.Itoa(MaxURIs) + ")",
		}
	}
	for _, uri := range r.URIs {
		if err := checkLength(FieldURIs, uri, MaxURILength); err != nil {
			return err
		}
	}
	if r.Description != nil {
		if err := checkLength(FieldDescription, *r.Description, MaxDescriptionLength); err != nil {
			return err
		}
	}
	if err := checkLength(FieldSecretClear, r.SecretClear, MaxSecretLength); err != nil {
		return err
	}
	if err := checkLength(FieldFolderParentPath, r.FolderParentPath, MaxFolderPathLength); err != nil {
		return err
	}
	if r.TOTP != nil {
		if err := r.TOTP.Validate(); err != nil {
			return ValidationError{Field: string(FieldTOTP), Message: err.Error()}
		}
	}
	if len(r.CustomFields) > MaxCustomFields {
		return ValidationError{
			Field:   string(FieldCustomFields),
			Message: "too many custom fields (max " + strconv.Itoa(MaxCustomFields) + ")",
		}
	}
	for _, cf := range r.CustomFields {
		if err := checkLength(FieldCustomFields, cf.Key, MaxCustomKeyLength); err != nil {
			return err
		}
		if err := checkLength(FieldCustomFields, cf.Value, MaxCustomValueLength); err != nil {
			return err
		}
	}
	if r.Icon != nil && r.Icon.Type == IconTypeKeepass && (r.Icon.Value < 0 || r.Icon.Value > maxKeepassIcon) {
		return ValidationError{
			Field:   string(FieldIcon),
			Value:   strconv.Itoa(r.Icon.Value),
			Message: "icon out of range",
		}
	}
	return nil
}

// stringPtr returns a pointer to a copy of s.
func stringPtr(s string) *string {
	return &s
}

// deref returns the pointed-to string or "".
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
