package phone

import "testing"

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"international", "+2348022112211", "08022112211", false},
		{"already local", "08022112211", "08022112211", false},
		{"padded", "  +234 802 211 2211 ", "08022112211", false},
		{"garbage", "not-a-number", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.raw, "NG")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Canonicalize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Canonicalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsMobile(t *testing.T) {
	tests := []struct {
		name  string
		local string
		want  bool
	}{
		{"mtn mobile", "08031234567", true},
		{"empty", "", false},
		{"too short", "123", false},
		{"letters", "0803abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMobile(tt.local, "NG"); got != tt.want {
				t.Errorf("IsMobile(%q) = %v, want %v", tt.local, got, tt.want)
			}
		})
	}
}
