package scan

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		payload     string
		wantSecret  string
		wantIgnored []string
		wantErr     error
	}{
		{
			name:       "secret and issuer",
			payload:    "otpauth://totp/Live?secret=JBSWY3DPEHPK3PXP&issuer=Test",
			wantSecret: "JBSWY3DPEHPK3PXP",
		},
		{
			name:       "labelled with matching parameters",
			payload:    "otpauth://totp/Example:alice@example.com?secret=JBSWY3DPEHPK3PXP&issuer=Example&algorithm=SHA1&digits=6&period=30",
			wantSecret: "JBSWY3DPEHPK3PXP",
		},
		{
			name:        "overrides are reported, not honored",
			payload:     "otpauth://totp/Live?secret=JBSWY3DPEHPK3PXP&algorithm=SHA256&digits=8&period=60",
			wantSecret:  "JBSWY3DPEHPK3PXP",
			wantIgnored: []string{"algorithm=SHA256", "digits=8", "period=60"},
		},
		{
			name:        "hotp type is reported",
			payload:     "otpauth://hotp/Live?secret=JBSWY3DPEHPK3PXP&counter=1",
			wantSecret:  "JBSWY3DPEHPK3PXP",
			wantIgnored: []string{"type=hotp"},
		},
		{
			name:       "uppercase scheme",
			payload:    "OTPAUTH://totp/Live?secret=JBSWY3DPEHPK3PXP",
			wantSecret: "JBSWY3DPEHPK3PXP",
		},
		{
			name:    "https URL",
			payload: "https://example.com",
			wantErr: ErrInvalidQRFormat,
		},
		{
			name:    "plain text",
			payload: "hello world",
			wantErr: ErrUnparsablePayload,
		},
		{
			name:    "malformed",
			payload: "otpauth://totp/%zz?secret=ABC",
			wantErr: ErrUnparsablePayload,
		},
		{
			name:    "bad escape in query",
			payload: "otpauth://totp/Live?secret=JBSWY3DPEHPK3PXP%&issuer=Test",
			wantErr: ErrUnparsablePayload,
		},
		{
			name:    "semicolon separator in query",
			payload: "otpauth://totp/Live?secret=JBSWY3DPEHPK3PXP;x=1",
			wantErr: ErrUnparsablePayload,
		},
		{
			name:    "missing secret",
			payload: "otpauth://totp/Live?issuer=Test",
			wantErr: ErrMissingSecret,
		},
		{
			name:    "empty secret",
			payload: "otpauth://totp/Live?secret=&issuer=Test",
			wantErr: ErrMissingSecret,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseURI(tt.payload)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseURI() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseURI() error = %v", err)
			}
			if got.Secret != tt.wantSecret {
				t.Errorf("secret = %q, want %q", got.Secret, tt.wantSecret)
			}
			if !reflect.DeepEqual(got.Ignored, tt.wantIgnored) {
				t.Errorf("ignored = %v, want %v", got.Ignored, tt.wantIgnored)
			}
		})
	}
}

func TestParseURI_UnparsableIsInvalidFormat(t *testing.T) {
	t.Parallel()
	_, err := ParseURI("not a uri")
	if !errors.Is(err, ErrInvalidQRFormat) {
		t.Errorf("error = %v, want ErrInvalidQRFormat in chain", err)
	}
}

func TestParseURI_MalformedQueryIsInvalidFormat(t *testing.T) {
	t.Parallel()
	_, err := ParseURI("otpauth://totp/Live?secret=JBSWY3DPEHPK3PXP%&issuer=Test")
	if !errors.Is(err, ErrInvalidQRFormat) {
		t.Errorf("error = %v, want ErrInvalidQRFormat in chain", err)
	}
	if errors.Is(err, ErrMissingSecret) {
		t.Errorf("error = %v, a malformed query is not a missing secret", err)
	}
}
