package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{
			name:     "valid username",
			username: "xiao_ming",
			wantErr:  false,
		},
		{
			name:     "valid with digits and dash",
			username: "learner-42",
			wantErr:  false,
		},
		{
			name:     "empty",
			username: "",
			wantErr:  true,
		},
		{
			name:     "too short",
			username: "ab",
			wantErr:  true,
		},
		{
			name:     "too long",
			username: strings.Repeat("a", 33),
			wantErr:  true,
		},
		{
			name:     "spaces",
			username: "xiao ming",
			wantErr:  true,
		},
		{
			name:     "non-ascii",
			username: "小明小明",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{
			name:    "valid email",
			email:   "test@example.com",
			wantErr: false,
		},
		{
			name:    "valid email with plus",
			email:   "user+tag@example.com",
			wantErr: false,
		},
		{
			name:    "empty is allowed",
			email:   "",
			wantErr: false,
		},
		{
			name:    "missing @",
			email:   "testexample.com",
			wantErr: true,
		},
		{
			name:    "missing domain",
			email:   "test@",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "password123", false},
		{"exactly minimum", "12345678", false},
		{"empty", "", true},
		{"too short", "1234567", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateHanzi(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"single character", "书", false},
		{"word", "你好", false},
		{"traditional", "書", false},
		{"empty", "", true},
		{"latin", "ni hao", true},
		{"mixed", "你a", true},
		{"too long", strings.Repeat("字", 17), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHanzi("simp", tt.text)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHanzi(%q) error = %v, wantErr %v", tt.text, err, tt.wantErr)
			}
			var ve ValidationError
			if err != nil && (!errors.As(err, &ve) || ve.Field != "simp") {
				t.Errorf("ValidateHanzi() error = %#v, want ValidationError on simp", err)
			}
		})
	}
}

func TestValidateMeaning(t *testing.T) {
	if err := ValidateMeaning("hello/hi"); err != nil {
		t.Errorf("ValidateMeaning() error = %v", err)
	}
	if err := ValidateMeaning(strings.Repeat("x", MaxMeaningLength+1)); err == nil {
		t.Error("ValidateMeaning() should reject overlong meanings")
	}
}
