package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/myvoice_backend/internal/repo"
	"github.com/Alijeyrad/myvoice_backend/pkg/reqctx"
	"github.com/Alijeyrad/myvoice_backend/pkg/s3"
)

const csvContentType = "text/csv"

// Export is an uploaded report file.
type Export struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Rows int    `json:"rows"`
}

var responseHeader = []string{"visit", "question", "response", "datetime", "service"}

// responseCSV writes one line per response.
func responseCSV(responses []*repo.Response, services map[uuid.UUID]*repo.Service) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(responseHeader); err != nil {
		return nil, err
	}
	for _, r := range responses {
		var visit, service string
		if r.VisitID != nil {
			visit = r.VisitID.String()
		}
		if r.ServiceID != nil {
			if sv, ok := services[*r.ServiceID]; ok {
				service = sv.Name
			}
		}
		if err := w.Write([]string{visit, r.QuestionLabel, r.Response, r.Datetime.UTC().Format(time.RFC3339), service}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

var regionHeader = []string{"clinic", "participation", "visits", "satisfaction", "surveyed",
	LabelOpenFacility, LabelRespectfulStaff, LabelCleanMaterials, LabelChargedFairly, LabelWaitTime}

// regionCSV writes one line per clinic row.
func regionCSV(rep *RegionReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(regionHeader); err != nil {
		return nil, err
	}
	for _, row := range rep.Clinics {
		line := []string{
			row.Clinic,
			row.Participation.String(), strconv.Itoa(row.Participation.Count),
			row.Satisfaction.String(), strconv.Itoa(row.Satisfaction.Count),
		}
		for _, v := range row.Values {
			line = append(line, v.String())
		}
		if err := w.Write(line); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func (s *reportService) upload(ctx context.Context, scope, kind string, body []byte, rows int) (*Export, error) {
	if s.Objects == nil {
		return nil, ErrExportDisabled
	}
	key := s3.ExportKey(s.cfg.ExportPrefix, scope, s.now(), "csv")
	if err := s.Objects.Upload(ctx, key, csvContentType, bytes.NewReader(body), int64(len(body))); err != nil {
		return nil, err
	}
	url, err := s.Objects.PresignDownload(ctx, key)
	if err != nil {
		return nil, err
	}
	s.Metrics.Export(ctx, kind)
	reqctx.Logger(ctx, s.Log).Info("report: exported", "kind", kind, "key", key, "rows", rows)
	return &Export{Key: key, URL: url, Rows: rows}, nil
}

// ExportClinic uploads every displayed response of a clinic as CSV.
func (s *reportService) ExportClinic(ctx context.Context, slug string) (*Export, error) {
	c, err := s.clinic(ctx, slug)
	if err != nil {
		return nil, err
	}
	services, err := s.services(ctx)
	if err != nil {
		return nil, err
	}
	responses, err := s.Store.Responses(ctx, repo.ResponseFilter{ClinicIDs: []uuid.UUID{c.ID}, DisplayedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("loading responses: %w", err)
	}
	body, err := responseCSV(responses, services)
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}
	return s.upload(ctx, "clinics/"+c.Slug, "clinic", body, len(responses))
}
