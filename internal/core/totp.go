package core

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/pquerna/otp"
)

// TOTP defaults applied when a vendor omits a parameter.
const (
	DefaultTOTPPeriod    = 30
	DefaultTOTPDigits    = 6
	DefaultTOTPAlgorithm = "SHA1"
)

// ErrInvalidTOTP is wrapped by every one-time password decoding failure.
var ErrInvalidTOTP = errors.New("invalid totp")

var base32SecretRegex = regexp.MustCompile(`^[A-Z2-7]+=*$`)

// TOTP is the canonical time-based one-time password definition.
type TOTP struct {
	SecretKey string `json:"secret_key"`
	Period    int    `json:"period"`
	Digits    int    `json:"digits"`
	Algorithm string `json:"algorithm"`
}

// SanitizeSecretKey strips whitespace and punctuation from a Base32 secret
// and upper-cases it. Padding characters are kept.
func SanitizeSecretKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '=':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeAlgorithm maps vendor spellings ("sha-256", "HMAC-SHA-256",
// "sha256") to SHA1, SHA256 or SHA512. Blank input yields the default.
func NormalizeAlgorithm(s string) (string, error) {
	a := strings.ToUpper(strings.TrimSpace(s))
	if a == "" {
		return DefaultTOTPAlgorithm, nil
	}
	a = strings.TrimPrefix(a, "HMAC")
	a = strings.NewReplacer("-", "", "_", "", " ", "").Replace(a)
	switch a {
	case "SHA1", "SHA256", "SHA512":
		return a, nil
	}
	return "", fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidTOTP, s)
}

// NewTOTP builds a TOTP from a raw Base32 secret with default parameters.
func NewTOTP(secret string) (*TOTP, error) {
	t := &TOTP{
		SecretKey: SanitizeSecretKey(secret),
		Period:    DefaultTOTPPeriod,
		Digits:    DefaultTOTPDigits,
		Algorithm: DefaultTOTPAlgorithm,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// ParseOTPAuthURI decodes an otpauth://totp/ URI. The URI is percent-decoded
// once before parsing since several vendors export it escaped.
func ParseOTPAuthURI(raw string) (*TOTP, error) {
	raw = strings.TrimSpace(raw)
	if decoded, err := url.QueryUnescape(raw); err == nil && !strings.Contains(raw, "?") {
		raw = decoded
	}
	if !strings.HasPrefix(strings.ToLower(raw), "otpauth://") {
		return nil, fmt.Errorf("%w: not an otpauth uri", ErrInvalidTOTP)
	}

	key, err := otp.NewKeyFromURL(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTOTP, err)
	}
	if !strings.EqualFold(key.Type(), "totp") {
		return nil, fmt.Errorf("%w: unsupported otp type %q", ErrInvalidTOTP, key.Type())
	}

	// The library falls back to defaults on malformed parameters; read the
	// raw query so a garbage period or digit count is rejected instead.
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTOTP, err)
	}
	q := u.Query()

	period, err := intParam(q.Get("period"), int(key.Period()))
	if err != nil {
		return nil, err
	}
	digits, err := intParam(q.Get("digits"), key.Digits().Length())
	if err != nil {
		return nil, err
	}
	algorithm, err := NormalizeAlgorithm(q.Get("algorithm"))
	if err != nil {
		return nil, err
	}

	t := &TOTP{
		SecretKey: SanitizeSecretKey(key.Secret()),
		Period:    period,
		Digits:    digits,
		Algorithm: algorithm,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// intParam parses a numeric query parameter, using def when blank.
func intParam(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid number %q", ErrInvalidTOTP, s)
	}
	return n, nil
}

// Validate checks the secret key alphabet and parameter ranges.
func (t TOTP) Validate() error {
	if t.SecretKey == "" {
		return fmt.Errorf("%w: empty secret key", ErrInvalidTOTP)
	}
	if !base32SecretRegex.MatchString(t.SecretKey) {
		return fmt.Errorf("%w: secret key is not base32", ErrInvalidTOTP)
	}
	if t.Period < 1 {
		return fmt.Errorf("%w: period must be at least 1", ErrInvalidTOTP)
	}
	if t.Digits < 6 || t.Digits > 8 {
		return fmt.Errorf("%w: digits must be between 6 and 8", ErrInvalidTOTP)
	}
	switch t.Algorithm {
	case "SHA1", "SHA256", "SHA512":
	default:
		return fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidTOTP, t.Algorithm)
	}
	return nil
}

// URI renders the TOTP as an otpauth:// URI. The label is the account name,
// prefixed with the issuer when one is given.
func (t TOTP) URI(issuer, account string) string {
	label := account
	if issuer != "" {
		label = issuer + ":" + account
	}
	q := url.Values{}
	q.Set("secret", t.SecretKey)
	if issuer != "" {
		q.Set("issuer", issuer)
	}
	q.Set("algorithm", t.Algorithm)
	q.Set("digits", strconv.Itoa(t.Digits))
	q.Set("period", strconv.Itoa(t.Period))

	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + label,
		RawQuery: q.Encode(),
	}
	return u.String()
}
