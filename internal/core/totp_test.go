package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "JBSWY3DPEHPK3PXP"

func TestSanitizeSecretKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: testSecret, want: testSecret},
		{in: "jbsw y3dp ehpk 3pxp", want: testSecret},
		{in: "JBSW-Y3DP.EHPK_3PXP", want: testSecret},
		{in: "GEZDGNBV==", want: "GEZDGNBV=="},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeSecretKey(tt.in))
		})
	}
}

func TestNormalizeAlgorithm(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: "SHA1"},
		{in: "sha1", want: "SHA1"},
		{in: "SHA-256", want: "SHA256"},
		{in: "HMAC-SHA-512", want: "SHA512"},
		{in: "sha_256", want: "SHA256"},
		{in: "MD5", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeAlgorithm(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTOTP)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewTOTP(t *testing.T) {
	got, err := NewTOTP(" jbsw y3dp ehpk 3pxp ")
	require.NoError(t, err)
	assert.Equal(t, &TOTP{SecretKey: testSecret, Period: 30, Digits: 6, Algorithm: "SHA1"}, got)

	_, err = NewTOTP("not base32 1890")
	assert.ErrorIs(t, err, ErrInvalidTOTP)

	_, err = NewTOTP("   ")
	assert.ErrorIs(t, err, ErrInvalidTOTP)
}

func TestParseOTPAuthURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		want    *TOTP
		wantErr bool
	}{
		{
			name: "defaults",
			uri:  "otpauth://totp/Example:alice@example.com?secret=" + testSecret + "&issuer=Example",
			want: &TOTP{SecretKey: testSecret, Period: 30, Digits: 6, Algorithm: "SHA1"},
		},
		{
			name: "explicit parameters",
			uri:  "otpauth://totp/site?secret=jbswy3dpehpk3pxp&algorithm=SHA256&digits=8&period=60",
			want: &TOTP{SecretKey: testSecret, Period: 60, Digits: 8, Algorithm: "SHA256"},
		},
		{
			name: "percent encoded uri",
			uri:  "otpauth%3A%2F%2Ftotp%2Fsite%3Fsecret%3D" + testSecret + "%26digits%3D7",
			want: &TOTP{SecretKey: testSecret, Period: 30, Digits: 7, Algorithm: "SHA1"},
		},
		{name: "hotp rejected", uri: "otpauth://hotp/site?secret=" + testSecret + "&counter=1", wantErr: true},
		{name: "not a uri", uri: testSecret, wantErr: true},
		{name: "garbage digits", uri: "otpauth://totp/site?secret=" + testSecret + "&digits=six", wantErr: true},
		{name: "digits out of range", uri: "otpauth://totp/site?secret=" + testSecret + "&digits=10", wantErr: true},
		{name: "zero period", uri: "otpauth://totp/site?secret=" + testSecret + "&period=0", wantErr: true},
		{name: "missing secret", uri: "otpauth://totp/site?issuer=x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOTPAuthURI(tt.uri)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTOTP)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTOTP_URIRoundTrip(t *testing.T) {
	orig := TOTP{SecretKey: testSecret, Period: 45, Digits: 8, Algorithm: "SHA512"}

	uri := orig.URI("My Site", "alice@example.com")
	assert.Contains(t, uri, "otpauth://totp/")

	got, err := ParseOTPAuthURI(uri)
	require.NoError(t, err)
	assert.Equal(t, orig, *got)
}

func TestTOTPAdapters(t *testing.T) {
	res := ExternalResource{Name: "Site:Prod", Username: stringPtr("alice")}
	totp := TOTP{SecretKey: testSecret, Period: 30, Digits: 6, Algorithm: "SHA1"}

	t.Run("base32", func(t *testing.T) {
		out := Row{}
		Base32Adapter{}.Encode(res, totp, "totp", out)
		assert.Equal(t, Row{"totp": testSecret}, out)

		got, err := Base32Adapter{}.Decode(out["totp"], out)
		require.NoError(t, err)
		assert.Equal(t, totp, *got)
	})

	t.Run("uri", func(t *testing.T) {
		out := Row{}
		URIAdapter{}.Encode(res, totp, "otp", out)
		assert.Contains(t, out["otp"], "issuer=Site+Prod")

		got, err := URIAdapter{}.Decode(out["otp"], out)
		require.NoError(t, err)
		assert.Equal(t, totp, *got)
	})

	t.Run("auto accepts both", func(t *testing.T) {
		fromSecret, err := AutoAdapter{}.Decode(testSecret, nil)
		require.NoError(t, err)
		fromURI, err := AutoAdapter{}.Decode("otpauth://totp/x?secret="+testSecret, nil)
		require.NoError(t, err)
		assert.Equal(t, fromSecret, fromURI)
	})

	t.Run("split", func(t *testing.T) {
		a := SplitAdapter{AlgorithmColumn: "alg", DigitsColumn: "len", PeriodColumn: "per"}
		row := Row{"secret": "jbsw y3dp ehpk 3pxp", "alg": "HMAC-SHA-256", "len": "8", "per": " "}

		got, err := a.Decode(row["secret"], row)
		require.NoError(t, err)
		assert.Equal(t, TOTP{SecretKey: testSecret, Period: 30, Digits: 8, Algorithm: "SHA256"}, *got)

		out := Row{}
		a.Encode(res, *got, "secret", out)
		assert.Equal(t, Row{"secret": testSecret, "alg": "SHA256", "len": "8", "per": "30"}, out)
		assert.Equal(t, []string{"alg", "len", "per"}, a.ExtraColumns())

		row["len"] = "eight"
		_, err = a.Decode(row["secret"], row)
		assert.ErrorIs(t, err, ErrInvalidTOTP)
	})
}
