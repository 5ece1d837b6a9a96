package email

import (
	"strings"
	"testing"
	"time"
)

func TestBuildRegionDigestEmail(t *testing.T) {
	data := DigestEmailData{
		Recipients: []string{"lga@example.org"},
		Region:     "Bwari",
		Start:      time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2026, 10, 18, 23, 59, 59, 0, time.UTC),
		Rows: []DigestRow{
			{Clinic: "Kubwa <General>", Visits: 12, Satisfaction: "75%", Started: 6, Completed: 4},
		},
		DownloadURL: "https://files.example.org/export.csv",
	}

	msg := BuildRegionDigestEmail(data)

	if !strings.Contains(msg.Subject, "Bwari") || !strings.Contains(msg.Subject, "12 Oct 2026") {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if len(msg.To) != 1 || msg.To[0] != "lga@example.org" {
		t.Errorf("To = %v", msg.To)
	}
	if !strings.Contains(msg.TextBody, "Kubwa <General>") || !strings.Contains(msg.TextBody, "75%") {
		t.Errorf("TextBody missing clinic row:\n%s", msg.TextBody)
	}
	if !strings.Contains(msg.HTMLBody, "Kubwa &lt;General&gt;") {
		t.Errorf("HTMLBody should escape clinic name")
	}
	if !strings.Contains(msg.HTMLBody, data.DownloadURL) {
		t.Errorf("HTMLBody missing download link")
	}
	if msg.Kind != KindRegionDigest {
		t.Errorf("Kind = %q, want %q", msg.Kind, KindRegionDigest)
	}
	if len(msg.Attachments) != 0 {
		t.Errorf("Attachments = %d, want none when a download link is present", len(msg.Attachments))
	}
}

func TestBuildRegionDigestEmail_AttachedExport(t *testing.T) {
	export := &Attachment{Name: "bwari-2026-10-12.csv", ContentType: "text/csv", Data: []byte("clinic\nKubwa\n")}
	msg := BuildRegionDigestEmail(DigestEmailData{
		Recipients: []string{"lga@example.org"},
		Region:     "Bwari",
		Rows:       []DigestRow{{Clinic: "Kubwa", Visits: 1}},
		Export:     export,
	})

	if len(msg.Attachments) != 1 || msg.Attachments[0].Name != export.Name {
		t.Fatalf("Attachments = %+v, want the export", msg.Attachments)
	}
	if !strings.Contains(msg.TextBody, "attached as bwari-2026-10-12.csv") {
		t.Errorf("TextBody should mention the attachment:\n%s", msg.TextBody)
	}

	withLink := BuildRegionDigestEmail(DigestEmailData{Region: "Bwari", Export: export, DownloadURL: "https://files.example.org/x.csv"})
	if len(withLink.Attachments) != 0 {
		t.Errorf("Attachments = %d, want none when a download link is present", len(withLink.Attachments))
	}
}

func TestBuildRegionDigestEmail_NoClinics(t *testing.T) {
	msg := BuildRegionDigestEmail(DigestEmailData{Region: "Empty"})
	if !strings.Contains(msg.TextBody, "No clinics") {
		t.Errorf("TextBody = %q", msg.TextBody)
	}
	msg.To = []string{"a@b.c"}
	if _, err := buildMessage("reports@example.org", msg); err != nil {
		t.Errorf("buildMessage() error = %v", err)
	}
}
