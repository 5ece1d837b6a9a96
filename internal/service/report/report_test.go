package report

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/myvoice_backend/internal/repo"
	"github.com/Alijeyrad/myvoice_backend/pkg/email"
)

type fakeStore struct {
	clinics   []*repo.Clinic
	region    *repo.Region
	services  []*repo.Service
	survey    *repo.Survey
	questions []*repo.Question
	visits    []*repo.Visit
	responses []*repo.Response
	feedback  []*repo.GenericFeedback

	lastResponseFilter repo.ResponseFilter
}

func (f *fakeStore) ClinicBySlug(_ context.Context, slug string) (*repo.Clinic, error) {
	for _, c := range f.clinics {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeStore) Clinics(context.Context) ([]*repo.Clinic, error) { return f.clinics, nil }

func (f *fakeStore) ClinicsByLGA(_ context.Context, lga string) ([]*repo.Clinic, error) {
	var out []*repo.Clinic
	for _, c := range f.clinics {
		if strings.EqualFold(c.LGA, lga) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) RegionByName(_ context.Context, name string) (*repo.Region, error) {
	if f.region == nil || !strings.EqualFold(f.region.Name, name) {
		return nil, repo.ErrNotFound
	}
	return f.region, nil
}

func (f *fakeStore) Services(context.Context) ([]*repo.Service, error) { return f.services, nil }

func (f *fakeStore) ActiveSurvey(context.Context) (*repo.Survey, error) {
	if f.survey == nil {
		return nil, repo.ErrNotFound
	}
	return f.survey, nil
}

func (f *fakeStore) Questions(context.Context, uuid.UUID) ([]*repo.Question, error) {
	return f.questions, nil
}

func inClinics(ids []uuid.UUID, id *uuid.UUID) bool {
	if len(ids) == 0 {
		return true
	}
	if id == nil {
		return false
	}
	for _, x := range ids {
		if x == *id {
			return true
		}
	}
	return false
}

func (f *fakeStore) Visits(_ context.Context, fl repo.VisitFilter) ([]*repo.Visit, error) {
	var out []*repo.Visit
	for _, v := range f.visits {
		if inClinics(fl.ClinicIDs, &v.ClinicID) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeStore) Responses(_ context.Context, fl repo.ResponseFilter) ([]*repo.Response, error) {
	f.lastResponseFilter = fl
	var out []*repo.Response
	for _, r := range f.responses {
		if inClinics(fl.ClinicIDs, r.ClinicID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) Feedback(context.Context, repo.FeedbackFilter) ([]*repo.GenericFeedback, error) {
	return f.feedback, nil
}

type fakeObjects struct {
	keys   []string
	bodies []string
	err    error
}

func (o *fakeObjects) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	if o.err != nil {
		return o.err
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	o.keys = append(o.keys, key)
	o.bodies = append(o.bodies, string(b))
	return nil
}

func (o *fakeObjects) PresignDownload(_ context.Context, key string) (string, error) {
	return "https://files.example.org/" + key, nil
}

type fakeMailer struct {
	enabled bool
	sent    []email.Message
}

func (m *fakeMailer) Enabled() bool { return m.enabled }

func (m *fakeMailer) Send(_ context.Context, msg email.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

type fixture struct {
	store   *fakeStore
	objects *fakeObjects
	mailer  *fakeMailer
	svc     *reportService
	arum    *repo.Clinic
	zango   *repo.Clinic
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	questions := testQuestions()
	arum := &repo.Clinic{ID: uuid.New(), Name: "Arum", Slug: "arum", LGA: "Wamba"}
	zango := &repo.Clinic{ID: uuid.New(), Name: "Zango", Slug: "zango", LGA: "wamba"}
	service := &repo.Service{ID: uuid.New(), Name: "Antenatal", Slug: "antenatal", Code: 5}
	now := time.Date(2014, 3, 20, 12, 0, 0, 0, time.UTC)
	day := time.Date(2014, 3, 18, 9, 0, 0, 0, time.UTC)

	v := &repo.Visit{ID: uuid.New(), ClinicID: arum.ID, ServiceID: &service.ID, VisitTime: day,
		WelcomeSent: &day, SurveySent: &day, SurveyStarted: &day}
	b := responseBuilder{questions: questions, clinicID: arum.ID, at: day}
	r1 := b.answer(v.ID, LabelOpenFacility, "Yes")
	r1.ServiceID = &service.ID

	store := &fakeStore{
		clinics:   []*repo.Clinic{arum, zango},
		region:    &repo.Region{ID: uuid.New(), Name: "Wamba", Type: repo.RegionLGA},
		services:  []*repo.Service{service},
		survey:    &repo.Survey{ID: uuid.New(), Active: true},
		questions: questions,
		visits:    []*repo.Visit{v},
		responses: []*repo.Response{r1, b.answer(v.ID, LabelRespectfulStaff, "Yes")},
	}
	f := &fixture{store: store, objects: &fakeObjects{}, mailer: &fakeMailer{enabled: true}, arum: arum, zango: zango}
	f.svc = New(Deps{
		Store:   store,
		Objects: f.objects,
		Mailer:  f.mailer,
		Log:     slog.New(slog.DiscardHandler),
	}, Config{ExportPrefix: "exports", DigestRecipients: []string{"analyst@example.org"}}).(*reportService)
	f.svc.now = func() time.Time { return now }
	return f
}

func TestService_Clinic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rep, err := f.svc.Clinic(ctx, "arum", Query{Service: "antenatal"})
	if err != nil {
		t.Fatalf("Clinic() error = %v", err)
	}
	if rep.Registered != 1 || rep.Questions[0].String() != "100%" {
		t.Errorf("report = registered %d, open facility %s", rep.Registered, rep.Questions[0])
	}
	if !f.store.lastResponseFilter.DisplayedOnly || f.store.lastResponseFilter.ServiceID == nil {
		t.Errorf("response filter = %+v, want displayed only with service", f.store.lastResponseFilter)
	}

	if _, err := f.svc.Clinic(ctx, "nowhere", Query{}); !errors.Is(err, ErrClinicNotFound) {
		t.Errorf("Clinic(unknown) error = %v, want ErrClinicNotFound", err)
	}
	if _, err := f.svc.Clinic(ctx, "arum", Query{Service: "dental"}); !errors.Is(err, ErrServiceNotFound) {
		t.Errorf("Clinic(unknown service) error = %v, want ErrServiceNotFound", err)
	}
}

func TestService_MissingQuestionFailsFast(t *testing.T) {
	f := newFixture(t)
	f.store.questions = f.store.questions[1:]

	if _, err := f.svc.Clinic(context.Background(), "arum", Query{}); !errors.Is(err, ErrMissingQuestion) {
		t.Errorf("Clinic() error = %v, want ErrMissingQuestion", err)
	}
	if _, err := f.svc.Region(context.Background(), "Wamba", nil); !errors.Is(err, ErrMissingQuestion) {
		t.Errorf("Region() error = %v, want ErrMissingQuestion", err)
	}
}

func TestService_Region(t *testing.T) {
	f := newFixture(t)

	rep, err := f.svc.Region(context.Background(), "wamba", nil)
	if err != nil {
		t.Fatalf("Region() error = %v", err)
	}
	if len(rep.Clinics) != 2 {
		t.Fatalf("clinics = %d, want 2", len(rep.Clinics))
	}
	for _, v := range rep.Clinics[1].Values {
		if !v.IsNone() || v.Count != 0 {
			t.Errorf("zango cell %s = %+v, want placeholder", v.Label, v)
		}
	}

	if _, err := f.svc.Region(context.Background(), "Kano", nil); !errors.Is(err, ErrRegionNotFound) {
		t.Errorf("Region(unknown) error = %v, want ErrRegionNotFound", err)
	}
}

func TestService_Completion(t *testing.T) {
	rows, err := newFixture(t).svc.Completion(context.Background(), Query{})
	if err != nil {
		t.Fatalf("Completion() error = %v", err)
	}
	if len(rows) != 3 || rows[2].Clinic != TotalRow || rows[2].Started != 1 {
		t.Errorf("Completion() = %+v", rows)
	}
}

func TestService_ExportClinic(t *testing.T) {
	f := newFixture(t)

	exp, err := f.svc.ExportClinic(context.Background(), "arum")
	if err != nil {
		t.Fatalf("ExportClinic() error = %v", err)
	}
	if exp.Key != "exports/clinics/arum/20140320T120000.csv" {
		t.Errorf("Key = %q", exp.Key)
	}
	if exp.Rows != 2 || !strings.HasPrefix(exp.URL, "https://files.example.org/") {
		t.Errorf("export = %+v", exp)
	}
	lines := strings.Split(strings.TrimSpace(f.objects.bodies[0]), "\n")
	if len(lines) != 3 || lines[0] != "visit,question,response,datetime,service" {
		t.Errorf("csv = %q", f.objects.bodies[0])
	}
	if !strings.HasSuffix(lines[1], ",Open Facility,Yes,2014-03-18T09:00:00Z,Antenatal") {
		t.Errorf("csv line = %q", lines[1])
	}
}

func TestService_SendRegionDigest(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2014, 3, 19, 0, 0, 0, 0, time.UTC)

	if err := f.svc.SendRegionDigest(context.Background(), "Wamba", &day); err != nil {
		t.Fatalf("SendRegionDigest() error = %v", err)
	}
	if len(f.mailer.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(f.mailer.sent))
	}
	msg := f.mailer.sent[0]
	if !strings.Contains(msg.TextBody, "Arum") || !strings.Contains(msg.TextBody, "Zango") {
		t.Errorf("digest body missing clinics: %q", msg.TextBody)
	}
	if !strings.Contains(msg.TextBody, "https://files.example.org/exports/regions/wamba/") {
		t.Errorf("digest body missing download link: %q", msg.TextBody)
	}

	if msg.Kind != email.KindRegionDigest || len(msg.Attachments) != 0 {
		t.Errorf("digest kind = %q, attachments = %d", msg.Kind, len(msg.Attachments))
	}

	f.mailer.enabled = false
	if err := f.svc.SendRegionDigest(context.Background(), "Wamba", &day); !errors.Is(err, ErrDigestDisabled) {
		t.Errorf("SendRegionDigest(disabled) error = %v, want ErrDigestDisabled", err)
	}
}

func TestService_SendRegionDigest_AttachesExport(t *testing.T) {
	day := time.Date(2014, 3, 19, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		setup func(f *fixture)
	}{
		{"upload fails", func(f *fixture) { f.objects.err = errors.New("bucket unavailable") }},
		{"no object storage", func(f *fixture) { f.svc.Objects = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			if err := f.svc.SendRegionDigest(context.Background(), "Wamba", &day); err != nil {
				t.Fatalf("SendRegionDigest() error = %v", err)
			}
			if len(f.mailer.sent) != 1 {
				t.Fatalf("sent = %d, want 1", len(f.mailer.sent))
			}
			msg := f.mailer.sent[0]
			if len(msg.Attachments) != 1 {
				t.Fatalf("attachments = %d, want the region export", len(msg.Attachments))
			}
			a := msg.Attachments[0]
			if a.Name != "wamba-2014-03-17.csv" || a.ContentType != "text/csv" {
				t.Errorf("attachment = %s (%s)", a.Name, a.ContentType)
			}
			if !strings.Contains(string(a.Data), "Arum") {
				t.Errorf("attachment data = %q", a.Data)
			}
			if strings.Contains(msg.TextBody, "https://") {
				t.Errorf("digest should not link an export: %q", msg.TextBody)
			}
		})
	}
}
