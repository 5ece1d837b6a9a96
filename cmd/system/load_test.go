package system

import (
	"os"
	"path/filepath"
	"testing"
)

func writeReference(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reference.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write reference file: %v", err)
	}
	return path
}

func TestReadReferenceData(t *testing.T) {
	path := writeReference(t, `
regions:
  - name: Wamba
    type: lga
    external_id: 593
clinics:
  - name: Arum Chug
    code: 1
    lga: Wamba
  - name: Wamba Central
    slug: wamba
    code: 2
    lga: Wamba
services:
  - name: Antenatal Care
    code: 5
`)

	data, err := readReferenceData(path)
	if err != nil {
		t.Fatalf("readReferenceData() error = %v", err)
	}
	if len(data.Regions) != 1 || data.Regions[0].ExternalID != 593 {
		t.Errorf("regions = %+v", data.Regions)
	}
	if len(data.Clinics) != 2 || data.Clinics[1].Slug != "wamba" {
		t.Errorf("clinics = %+v", data.Clinics)
	}
	if len(data.Services) != 1 || data.Services[0].Code != 5 {
		t.Errorf("services = %+v", data.Services)
	}
}

func TestReferenceData_Validate(t *testing.T) {
	tests := []struct {
		name    string
		data    referenceData
		wantErr bool
	}{
		{"empty", referenceData{}, false},
		{"valid", referenceData{
			Clinics:  []clinicEntry{{Name: "A", Code: 1}, {Name: "B", Code: 2}},
			Services: []serviceEntry{{Name: "S", Code: 5}},
		}, false},
		{"clinic without name", referenceData{Clinics: []clinicEntry{{Code: 1}}}, true},
		{"clinic without code", referenceData{Clinics: []clinicEntry{{Name: "A"}}}, true},
		{"duplicate clinic code", referenceData{Clinics: []clinicEntry{{Name: "A", Code: 1}, {Name: "B", Code: 1}}}, true},
		{"duplicate service code", referenceData{Services: []serviceEntry{{Name: "S", Code: 5}, {Name: "T", Code: 5}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSlugOf(t *testing.T) {
	if got := slugOf("", "Arum  Chug Clinic"); got != "arum-chug-clinic" {
		t.Errorf("slugOf() = %q", got)
	}
	if got := slugOf("custom", "Arum Chug"); got != "custom" {
		t.Errorf("slugOf() = %q, want custom", got)
	}
}
