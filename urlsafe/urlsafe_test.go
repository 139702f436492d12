package urlsafe

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		url     string
		wantErr error
	}{
		{"https://93.184.216.34/page", nil},
		{"http://8.8.8.8/", nil},
		{"ftp://example.com/file", ErrScheme},
		{"file:///etc/passwd", ErrScheme},
		{"http://127.0.0.1:8080/admin", ErrPrivateAddress},
		{"http://10.0.0.5/", ErrPrivateAddress},
		{"http://192.168.1.1/", ErrPrivateAddress},
		{"http://169.254.169.254/latest/meta-data", ErrPrivateAddress},
		{"http://[::1]/", ErrPrivateAddress},
	}
	for _, tc := range cases {
		err := Validate(tc.url)
		if tc.wantErr == nil {
			if err != nil {
				t.Errorf("Validate(%q) = %v, want nil", tc.url, err)
			}
			continue
		}
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("Validate(%q) = %v, want %v", tc.url, err, tc.wantErr)
		}
	}
}

func TestValidateNoHost(t *testing.T) {
	if err := Validate("http:///nohost"); err == nil {
		t.Fatal("expected error for host-less URL")
	}
}
