package email

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// DigestRow is one clinic line of a region digest.
type DigestRow struct {
	Clinic       string
	Visits       int
	Satisfaction string
	Started      int
	Completed    int
}

// DigestEmailData contains what the weekly region digest shows.
type DigestEmailData struct {
	Recipients  []string
	Region      string
	Start       time.Time
	End         time.Time
	Rows        []DigestRow
	DownloadURL string

	// Export is attached when there is no download link.
	Export  *Attachment
	AppName string
}

// BuildRegionDigestEmail renders the weekly digest for one region.
func BuildRegionDigestEmail(data DigestEmailData) Message {
	appName := data.AppName
	if appName == "" {
		appName = "MyVoice"
	}

	period := fmt.Sprintf("%s to %s", data.Start.Format("2 Jan 2006"), data.End.Format("2 Jan 2006"))
	subject := fmt.Sprintf("%s weekly digest: %s (%s)", appName, data.Region, period)

	var text strings.Builder
	fmt.Fprintf(&text, "Patient feedback for %s, %s.\n\n", data.Region, period)
	fmt.Fprintf(&text, "%-32s %8s %14s %8s %10s\n", "Clinic", "Visits", "Satisfaction", "Started", "Completed")
	for _, r := range data.Rows {
		fmt.Fprintf(&text, "%-32s %8d %14s %8d %10d\n", r.Clinic, r.Visits, r.Satisfaction, r.Started, r.Completed)
	}
	if len(data.Rows) == 0 {
		text.WriteString("No clinics are registered in this region.\n")
	}
	switch {
	case data.DownloadURL != "":
		fmt.Fprintf(&text, "\nFull export: %s\n", data.DownloadURL)
	case data.Export != nil:
		fmt.Fprintf(&text, "\nThe full export is attached as %s.\n", data.Export.Name)
	}
	fmt.Fprintf(&text, "\nThe %s Team", appName)

	var rows strings.Builder
	for _, r := range data.Rows {
		fmt.Fprintf(&rows, `<tr><td style="padding: 4px 8px;">%s</td><td style="padding: 4px 8px; text-align: right;">%d</td><td style="padding: 4px 8px; text-align: right;">%s</td><td style="padding: 4px 8px; text-align: right;">%d</td><td style="padding: 4px 8px; text-align: right;">%d</td></tr>`,
			html.EscapeString(r.Clinic), r.Visits, html.EscapeString(r.Satisfaction), r.Started, r.Completed)
		rows.WriteByte('\n')
	}
	link := ""
	switch {
	case data.DownloadURL != "":
		link = fmt.Sprintf(`<p><a href="%s">Download the full export</a></p>`, html.EscapeString(data.DownloadURL))
	case data.Export != nil:
		link = fmt.Sprintf(`<p>The full export is attached as %s.</p>`, html.EscapeString(data.Export.Name))
	}

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 720px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #0f766e;">%s</h2>
    <p>Patient feedback for the week %s.</p>
    <table style="border-collapse: collapse; width: 100%%;">
        <thead><tr><th align="left">Clinic</th><th align="right">Visits</th><th align="right">Satisfaction</th><th align="right">Started</th><th align="right">Completed</th></tr></thead>
        <tbody>
%s        </tbody>
    </table>
    %s
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">The %s Team</p>
</body>
</html>`,
		html.EscapeString(data.Region), html.EscapeString(period), rows.String(), link, html.EscapeString(appName))

	msg := Message{
		Kind:     KindRegionDigest,
		To:       data.Recipients,
		Subject:  subject,
		TextBody: text.String(),
		HTMLBody: htmlBody,
	}
	if data.DownloadURL == "" && data.Export != nil {
		msg.Attachments = []Attachment{*data.Export}
	}
	return msg
}
