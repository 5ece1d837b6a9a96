package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/Alijeyrad/myvoice_backend/pkg/email"
	"github.com/Alijeyrad/myvoice_backend/pkg/reqctx"
	"github.com/Alijeyrad/myvoice_backend/pkg/util/stats"
)

// SendRegionDigest emails the region report for the week containing day,
// or the current week when day is nil. The CSV of the report is linked
// when object storage takes the upload and attached otherwise.
func (s *reportService) SendRegionDigest(ctx context.Context, name string, day *time.Time) error {
	if s.Mailer == nil || !s.Mailer.Enabled() {
		return ErrDigestDisabled
	}
	if len(s.cfg.DigestRecipients) == 0 {
		return fmt.Errorf("%w: no recipients", ErrDigestDisabled)
	}
	if day == nil {
		now := s.now()
		day = &now
	}

	qs, in, err := s.regionInput(ctx, name, day)
	if err != nil {
		return err
	}
	rep := qs.ComposeRegion(*in)
	completion := lo.SliceToMap(ComposeCompletion(in.Clinics, in.Visits), func(r CompletionRow) (string, CompletionRow) {
		return r.Clinic, r
	})

	data := email.DigestEmailData{
		Recipients: s.cfg.DigestRecipients,
		Region:     rep.Region.Name,
		Start:      stats.WeekStart(*day),
		End:        stats.WeekEnd(*day),
		AppName:    s.cfg.AppName,
		Rows: lo.Map(rep.Clinics, func(row ClinicRow, _ int) email.DigestRow {
			c := completion[row.Clinic]
			return email.DigestRow{
				Clinic:       row.Clinic,
				Visits:       row.Participation.Count,
				Satisfaction: row.Satisfaction.String(),
				Started:      c.Started,
				Completed:    c.Completed,
			}
		}),
	}

	log := reqctx.Logger(ctx, s.Log).With("region", rep.Region.Name)
	body, err := regionCSV(rep)
	if err != nil {
		return fmt.Errorf("encoding digest export: %w", err)
	}
	if s.Objects != nil {
		exp, err := s.upload(ctx, "regions/"+slugify(rep.Region.Name), "region", body, len(rep.Clinics))
		if err != nil {
			log.Warn("report: digest export upload failed, attaching instead", "error", err)
		} else {
			data.DownloadURL = exp.URL
		}
	}
	if data.DownloadURL == "" {
		data.Export = &email.Attachment{
			Name:        fmt.Sprintf("%s-%s.csv", slugify(rep.Region.Name), data.Start.Format("2006-01-02")),
			ContentType: csvContentType,
			Data:        body,
		}
	}

	if err := s.Mailer.Send(ctx, email.BuildRegionDigestEmail(data)); err != nil {
		return fmt.Errorf("sending digest: %w", err)
	}
	log.Info("report: digest sent", "recipients", len(data.Recipients), "clinics", len(data.Rows))
	return nil
}

func slugify(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}
