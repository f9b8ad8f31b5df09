package auth

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		cost     int
		wantErr  error
	}{
		{
			name:     "valid password",
			password: "validpassword123",
			cost:     10,
			wantErr:  nil,
		},
		{
			name:     "password too short",
			password: "short",
			cost:     10,
			wantErr:  ErrPasswordTooShort,
		},
		{
			name:     "password at minimum length",
			password: "123456789012", // 12 characters (new minimum)
			cost:     10,
			wantErr:  nil,
		},
		{
			name:     "password too long",
			password: strings.Repeat("a", 73),
			cost:     10,
			wantErr:  ErrPasswordTooLong,
		},
		{
			name:     "password at maximum length",
			password: strings.Repeat("a", 72),
			cost:     10,
			wantErr:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password, tt.cost)
			if err != tt.wantErr {
				t.Errorf("HashPassword() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr == nil && hash == "" {
				t.Error("HashPassword() returned empty hash for valid password")
			}
		})
	}
}

func TestCheckPassword(t *testing.T) {
	password := "testpassword123"
	hash, err := HashPassword(password, 10)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{
			name:     "correct password",
			password: password,
			wantErr:  nil,
		},
		{
			name:     "incorrect password",
			password: "wrongpassword",
			wantErr:  ErrInvalidPassword,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  ErrInvalidPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPassword(tt.password, hash)
			if err != tt.wantErr {
				t.Errorf("CheckPassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHashPin(t *testing.T) {
	tests := []struct {
		name    string
		pin     string
		wantErr error
	}{
		{name: "four digits", pin: "1234", wantErr: nil},
		{name: "eight digits", pin: "12345678", wantErr: nil},
		{name: "too short", pin: "123", wantErr: ErrPinInvalid},
		{name: "too long", pin: "123456789", wantErr: ErrPinInvalid},
		{name: "not numeric", pin: "12ab", wantErr: ErrPinInvalid},
		{name: "empty", pin: "", wantErr: ErrPinInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPin(tt.pin, 10)
			if err != tt.wantErr {
				t.Errorf("HashPin() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr == nil && !CheckPin(tt.pin, hash) {
				t.Error("CheckPin() rejected the hashed pin")
			}
		})
	}
}

func TestCheckPin(t *testing.T) {
	hash, err := HashPin("4321", 10)
	if err != nil {
		t.Fatalf("Failed to hash pin: %v", err)
	}

	if CheckPin("1234", hash) {
		t.Error("CheckPin() accepted a wrong pin")
	}
	if CheckPin("4321", "") {
		t.Error("CheckPin() accepted a pin without a stored hash")
	}
}

func TestGenerateSessionSecret(t *testing.T) {
	secret, err := GenerateSessionSecret()
	if err != nil {
		t.Fatalf("GenerateSessionSecret() error = %v", err)
	}

	// Secret should be 64 hex characters (32 bytes)
	if len(secret) != 64 {
		t.Errorf("Secret length = %d, want 64", len(secret))
	}

	// Generate another, should be different
	secret2, err := GenerateSessionSecret()
	if err != nil {
		t.Fatalf("Second GenerateSessionSecret() error = %v", err)
	}
	if secret == secret2 {
		t.Error("Generated secrets should be unique")
	}
}
