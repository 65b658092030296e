package lookup

import (
	"testing"

	"github.com/google/uuid"
)

func TestValidUUID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"069a79f444e94726a5befca90e38aaf5", true},
		{"069a79f4-44e9-4726-a5be-fca90e38aaf5", true},
		{"069A79F4-44E9-4726-A5BE-FCA90E38AAF5", true},
		{"069a79f444e9-4726a5befca90e38aaf5", true},
		{"not-a-uuid", false},
		{"", false},
		{"069a79f444e94726a5befca90e38aaf", false},
		{"069a79f444e94726a5befca90e38aaf5a", false},
		{"g69a79f444e94726a5befca90e38aaf5", false},
		{" 069a79f444e94726a5befca90e38aaf5", false},
	}

	for _, tt := range tests {
		if got := ValidUUID(tt.in); got != tt.want {
			t.Errorf("ValidUUID(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for i := 0; i < 50; i++ {
		id := uuid.New().String()
		if !ValidUUID(id) {
			t.Errorf("ValidUUID(%q) = false", id)
		}
	}
}

func TestValidUsername(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Notch", true},
		{"jeb_", true},
		{"abc", true},
		{"sixteen_chars_ok", true},
		{"ab", false},
		{"seventeen_chars_x", false},
		{"bad name", false},
		{"dash-name", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidUsername(tt.in); got != tt.want {
			t.Errorf("ValidUsername(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
