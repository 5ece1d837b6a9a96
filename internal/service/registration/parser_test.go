package registration

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"1 08122233301 4001 5", []string{"1", "08122233301", "4001", "5"}},
		{"  1\n\n08122233301**4001 * 5  ", []string{"1", "08122233301", "4001", "5"}},
		{"1\t2\r\n3", []string{"1", "2", "3"}},
		{"", nil},
		{"***", nil},
	}
	for _, tt := range tests {
		got := Tokenize(tt.in)
		if !slices.Equal(got, tt.want) {
			t.Errorf("Tokenize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParse_NoiseEquivalence(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	canonical, err := Parse(ctx, store, "1 08122233301 4001 5")
	if err != nil {
		t.Fatalf("Parse(canonical) error = %v", err)
	}

	noisy := []string{
		"i 08122233301 4001 5",
		"I O8122233301 4OO1 5",
		"1\n08122233301\n4001\n5",
		"1***08122233301 ** 4001*5",
		"  1   o8i2223330i   400i   5  ",
		"1 08122233301 4001 5 thanks nurse",
	}
	for _, text := range noisy {
		got, err := Parse(ctx, store, text)
		if err != nil {
			t.Errorf("Parse(%q) error = %v", text, err)
			continue
		}
		if got.Clinic.ID != canonical.Clinic.ID || got.Mobile != canonical.Mobile ||
			got.Serial != canonical.Serial || got.Service.ID != canonical.Service.ID {
			t.Errorf("Parse(%q) = %+v, want %+v", text, got, canonical)
		}
	}
}

func TestParse_Fields(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantFields []Field
	}{
		{"unknown clinic", "2 08122233301 4001 5", []Field{FieldClinic}},
		{"alpha clinic", "abc 08122233301 4001 5", []Field{FieldClinic}},
		{"short mobile", "1 0812223330 4001 5", []Field{FieldMobile}},
		{"alpha mobile", "1 0812223330x 4001 5", []Field{FieldMobile}},
		{"bad serial", "1 08122233301 40x1 5", []Field{FieldSerial}},
		{"unknown service", "1 08122233301 4001 9", []Field{FieldService}},
		{"mobile before clinic", "2 0812 4001 5", []Field{FieldMobile, FieldClinic}},
		{"all fields", "x y z w", []Field{FieldMobile, FieldClinic, FieldSerial, FieldService}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), newFakeStore(), tt.text)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Parse() error = %v, want *ParseError", err)
			}
			if perr.Incomplete {
				t.Fatal("Parse() reported incomplete")
			}
			if !slices.Equal(perr.Fields, tt.wantFields) {
				t.Errorf("Fields = %v, want %v", perr.Fields, tt.wantFields)
			}
			if perr.Category() != tt.wantFields[0] {
				t.Errorf("Category() = %v, want %v", perr.Category(), tt.wantFields[0])
			}
		})
	}
}

func TestParse_Incomplete(t *testing.T) {
	for _, text := range []string{"", "1", "1 08122233301 4001", "1*08122233301\n4001"} {
		_, err := Parse(context.Background(), newFakeStore(), text)
		var perr *ParseError
		if !errors.As(err, &perr) || !perr.Incomplete {
			t.Errorf("Parse(%q) error = %v, want incomplete", text, err)
			continue
		}
		if perr.Reply() != IncompleteReply {
			t.Errorf("Reply() = %q, want incomplete reply", perr.Reply())
		}
	}
}

func TestParseError_Reply(t *testing.T) {
	perr := &ParseError{SerialToken: "4001", Fields: []Field{FieldMobile, FieldClinic}}
	want := "Error for serial 4001. There was a mistake in entering MOBILE, CLINIC. " +
		"Please check and enter the whole registration code again."
	if got := perr.Reply(); got != want {
		t.Errorf("Reply() = %q, want %q", got, want)
	}
}

func TestParse_SerialEcho(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"confusable letters", "2 08122233301 4oI 5", "401"},
		{"leading zeros", "2 08122233301 0042 5", "42"},
		{"plain", "2 08122233301 4001 5", "4001"},
		{"unparseable kept as typed", "1 08122233301 40x1 5", "40x1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), newFakeStore(), tt.text)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Parse() error = %v, want *ParseError", err)
			}
			if perr.SerialToken != tt.want {
				t.Errorf("SerialToken = %q, want %q", perr.SerialToken, tt.want)
			}
			if !strings.HasPrefix(perr.Reply(), "Error for serial "+tt.want+".") {
				t.Errorf("Reply() = %q, want serial %s", perr.Reply(), tt.want)
			}
		})
	}
}

func TestParse_LeadingZeroSerial(t *testing.T) {
	entry, err := Parse(context.Background(), newFakeStore(), "1 08122233301 0042 5")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if entry.Serial != 42 {
		t.Errorf("Serial = %d, want 42", entry.Serial)
	}
}
