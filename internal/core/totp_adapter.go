package core

import (
	"fmt"
	"strconv"
	"strings"
)

// TOTPAdapter translates a vendor's one-time password columns to and from
// the canonical TOTP record.
type TOTPAdapter interface {
	// Decode reads the value of the mapped TOTP column. The whole row is
	// passed for vendors that split parameters over several columns.
	Decode(value string, row Row) (*TOTP, error)

	// Encode writes t into out. column is the mapped TOTP column.
	Encode(res ExternalResource, t TOTP, column string, out Row)

	// ExtraColumns lists columns besides the mapped one the adapter owns.
	ExtraColumns() []string
}

// Base32Adapter handles a column holding only the raw Base32 secret.
type Base32Adapter struct{}

func (Base32Adapter) Decode(value string, _ Row) (*TOTP, error) {
	return NewTOTP(value)
}

func (Base32Adapter) Encode(_ ExternalResource, t TOTP, column string, out Row) {
	out[column] = t.SecretKey
}

func (Base32Adapter) ExtraColumns() []string { return nil }

// URIAdapter handles a column holding a full otpauth:// URI.
type URIAdapter struct{}

func (URIAdapter) Decode(value string, _ Row) (*TOTP, error) {
	return ParseOTPAuthURI(value)
}

func (URIAdapter) Encode(res ExternalResource, t TOTP, column string, out Row) {
	out[column] = t.URI(totpIssuer(res), totpAccount(res))
}

func (URIAdapter) ExtraColumns() []string { return nil }

// AutoAdapter accepts either an otpauth:// URI or a raw Base32 secret and
// writes URIs.
type AutoAdapter struct{}

func (AutoAdapter) Decode(value string, row Row) (*TOTP, error) {
	v := strings.TrimSpace(value)
	if strings.HasPrefix(strings.ToLower(v), "otpauth") {
		return ParseOTPAuthURI(v)
	}
	return NewTOTP(v)
}

func (AutoAdapter) Encode(res ExternalResource, t TOTP, column string, out Row) {
	URIAdapter{}.Encode(res, t, column, out)
}

func (AutoAdapter) ExtraColumns() []string { return nil }

// SplitAdapter handles vendors that store the secret and each parameter in
// separate columns. The secret lives in the mapped column.
type SplitAdapter struct {
	AlgorithmColumn string
	DigitsColumn    string
	PeriodColumn    string
}

func (a SplitAdapter) Decode(value string, row Row) (*TOTP, error) {
	t := &TOTP{
		SecretKey: SanitizeSecretKey(value),
		Period:    DefaultTOTPPeriod,
		Digits:    DefaultTOTPDigits,
		Algorithm: DefaultTOTPAlgorithm,
	}
	if v, ok := row.Get(a.AlgorithmColumn); ok {
		alg, err := NormalizeAlgorithm(v)
		if err != nil {
			return nil, err
		}
		t.Algorithm = alg
	}
	if v, ok := row.Get(a.DigitsColumn); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid digits %q", ErrInvalidTOTP, v)
		}
		t.Digits = n
	}
	if v, ok := row.Get(a.PeriodColumn); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid period %q", ErrInvalidTOTP, v)
		}
		t.Period = n
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (a SplitAdapter) Encode(_ ExternalResource, t TOTP, column string, out Row) {
	out[column] = t.SecretKey
	out[a.AlgorithmColumn] = t.Algorithm
	out[a.DigitsColumn] = strconv.Itoa(t.Digits)
	out[a.PeriodColumn] = strconv.Itoa(t.Period)
}

func (a SplitAdapter) ExtraColumns() []string {
	return []string{a.AlgorithmColumn, a.DigitsColumn, a.PeriodColumn}
}

// totpIssuer uses the resource name as issuer.
func totpIssuer(res ExternalResource) string {
	return strings.ReplaceAll(res.Name, ":", " ")
}

// totpAccount uses the username as account, falling back to the name.
func totpAccount(res ExternalResource) string {
	if res.Username != nil && *res.Username != "" {
		return *res.Username
	}
	return res.Name
}
