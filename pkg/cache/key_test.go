package cache

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{
			name: "dashed lower-case",
			id:   "069a79f4-44e9-4726-a5be-fca90e38aaf5",
			want: "069a79f444e94726a5befca90e38aaf5",
		},
		{
			name: "dashed upper-case",
			id:   "069A79F4-44E9-4726-A5BE-FCA90E38AAF5",
			want: "069a79f444e94726a5befca90e38aaf5",
		},
		{
			name: "undashed mixed case",
			id:   "069a79F444e94726A5befca90e38aaf5",
			want: "069a79f444e94726a5befca90e38aaf5",
		},
		{
			name: "already normalized",
			id:   "069a79f444e94726a5befca90e38aaf5",
			want: "069a79f444e94726a5befca90e38aaf5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeID(tt.id); got != tt.want {
				t.Errorf("NormalizeID(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

// TestNormalizeID_AllFormsCollide checks that every textual form of a UUID
// produces the same snapshot key.
func TestNormalizeID_AllFormsCollide(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := uuid.New()
		dashed := id.String()
		forms := []string{
			dashed,
			strings.ToUpper(dashed),
			strings.ReplaceAll(dashed, "-", ""),
			strings.ToUpper(strings.ReplaceAll(dashed, "-", "")),
		}

		want := SnapshotKey(forms[0])
		if len(want) != 32 {
			t.Fatalf("SnapshotKey(%q) = %q, want 32 characters", forms[0], want)
		}
		for _, form := range forms[1:] {
			if got := SnapshotKey(form); got != want {
				t.Errorf("SnapshotKey(%q) = %q, want %q", form, got, want)
			}
		}
	}
}

func TestIdentityKey(t *testing.T) {
	for _, name := range []string{"Notch", "NOTCH", "notch", "nOtCh"} {
		if got := IdentityKey(name); got != "notch" {
			t.Errorf("IdentityKey(%q) = %q, want %q", name, got, "notch")
		}
	}
}
