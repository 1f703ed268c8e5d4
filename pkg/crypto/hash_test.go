package crypto

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid password", "correct horse battery staple", nil},
		{"empty password", "", ErrEmptyPassword},
		{"max length password", strings.Repeat("a", 72), nil},
		{"too long password", strings.Repeat("a", 73), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			if err != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil {
				if hash == "" {
					t.Error("hash should not be empty")
				}
				if hash == tt.password {
					t.Error("hash must not equal plaintext password")
				}
			}
		})
	}
}

func TestHashPassword_DifferentSalts(t *testing.T) {
	first, _ := HashPassword("password123")
	second, _ := HashPassword("password123")

	if first == second {
		t.Error("two hashes of the same password must differ (random salt)")
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		wantErr  error
	}{
		{"correct password", "password123", hash, nil},
		{"wrong password", "wrong-password", hash, ErrPasswordMismatch},
		{"empty password", "", hash, ErrEmptyPassword},
		{"empty hash", "password123", "", ErrInvalidHash},
		{"garbage hash", "password123", "not-a-bcrypt-hash", ErrInvalidHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := VerifyPassword(tt.password, tt.hash); err != tt.wantErr {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCheckPasswordMatch(t *testing.T) {
	hash, _ := HashPassword("password123")

	if !CheckPasswordMatch("password123", hash) {
		t.Error("correct password should match")
	}
	if CheckPasswordMatch("wrong", hash) {
		t.Error("wrong password should not match")
	}
}

func TestSecureCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"equal tokens", "secret-token-value", "secret-token-value", true},
		{"different tokens", "secret-token-value", "secret-token-wrong", false},
		{"length mismatch", "short", "much-longer-token", false},
		{"both empty", "", "", true},
		{"one empty", "token", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SecureCompare(tt.a, tt.b); got != tt.want {
				t.Errorf("SecureCompare(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
