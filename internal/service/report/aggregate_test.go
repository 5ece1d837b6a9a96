package report

import (
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/myvoice_backend/internal/repo"
)

func TestGroupBy(t *testing.T) {
	in := []string{"b1", "a1", "b2", "c1", "a2"}
	groups := GroupBy(in, func(s string) byte { return s[0] })

	keys := make([]byte, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}
	if string(keys) != "bac" {
		t.Errorf("keys = %q, want first-seen order %q", keys, "bac")
	}
	if !slices.Equal(groups[0].Items, []string{"b1", "b2"}) {
		t.Errorf("group b = %v, want [b1 b2]", groups[0].Items)
	}
	if got := GroupBy([]string{}, func(s string) byte { return s[0] }); len(got) != 0 {
		t.Errorf("GroupBy(empty) = %v, want none", got)
	}
}

func TestModalCategory(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		wantMode string
		wantOK   bool
	}{
		{"clear winner", []string{"1-2 hours", "<1 hour", "1-2 hours"}, "1-2 hours", true},
		{"tie goes to first category", []string{">4 hours", "<1 hour"}, "<1 hour", true},
		{"tie order independent", []string{"<1 hour", ">4 hours"}, "<1 hour", true},
		{"unknown values ignored", []string{"soon", "soon", "2-4 hours"}, "2-4 hours", true},
		{"no match", []string{"soon"}, "", false},
		{"empty", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, ok := ModalCategory(tt.values, waitCategories)
			if mode != tt.wantMode || ok != tt.wantOK {
				t.Errorf("ModalCategory() = (%q, %v), want (%q, %v)", mode, ok, tt.wantMode, tt.wantOK)
			}
		})
	}
}

func TestModalCategory_ReorderInvariant(t *testing.T) {
	values := []string{"2-4 hours", "<1 hour", "2-4 hours", ">4 hours", "<1 hour", "1-2 hours"}
	want, _ := ModalCategory(values, waitCategories)
	for i := range values {
		rotated := append(slices.Clone(values[i:]), values[:i]...)
		if got, _ := ModalCategory(rotated, waitCategories); got != want {
			t.Errorf("rotation %d: ModalCategory() = %q, want %q", i, got, want)
		}
	}
}

func TestQuestionIndices(t *testing.T) {
	questions := testQuestions()
	b := responseBuilder{questions: questions, clinicID: uuid.New()}
	v1, v2, v3 := uuid.New(), uuid.New(), uuid.New()
	responses := []*repo.Response{
		b.answer(v1, LabelOpenFacility, "Yes"),
		b.answer(v2, LabelOpenFacility, "Yes"),
		b.answer(v3, LabelOpenFacility, "No"),
		b.answer(v1, LabelRespectfulStaff, "No"),
		b.answer(v1, LabelWaitTime, ">4 hours"),
	}

	got := QuestionIndices(questions, responses)
	if len(got) != 5 {
		t.Fatalf("QuestionIndices() returned %d indices, want 5 (wait time excluded)", len(got))
	}
	for _, ix := range got {
		if ix.Label == LabelWaitTime {
			t.Error("wait time question was not excluded")
		}
	}

	open := got[0]
	if open.Label != LabelOpenFacility || !open.OK || open.Percent != 67 || open.Total != 3 || open.Positive != 2 {
		t.Errorf("open facility = %+v, want 67%% of 3", open)
	}
	staff := got[1]
	if !staff.OK || staff.Percent != 0 || staff.Total != 1 {
		t.Errorf("respectful staff = %+v, want 0%% of 1", staff)
	}
	clean := got[2]
	if clean.OK || clean.Total != 0 {
		t.Errorf("clean materials = %+v, want no data", clean)
	}
	if v := clean.Value(); !v.IsNone() || v.Count != 0 {
		t.Errorf("clean materials value = %+v, want placeholder", v)
	}
}

func TestSatisfactionScore(t *testing.T) {
	questions := testQuestions()
	byID := map[uuid.UUID]*repo.Question{}
	for _, q := range questions {
		byID[q.ID] = q
	}
	b := responseBuilder{questions: questions, clinicID: uuid.New()}
	happy, rude, slow, openOnly := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	responses := []*repo.Response{
		b.answer(happy, LabelRespectfulStaff, "Yes"),
		b.answer(happy, LabelChargedFairly, "Yes"),
		b.answer(happy, LabelWaitTime, "<1 hour"),
		// Two dissatisfied answers still count the visit once.
		b.answer(rude, LabelRespectfulStaff, "No"),
		b.answer(rude, LabelChargedFairly, "No"),
		b.answer(slow, LabelWaitTime, ">4 hours"),
		// Not satisfaction relevant.
		b.answer(openOnly, LabelOpenFacility, "No"),
	}

	score, ok, total := SatisfactionScore(responses, byID)
	if !ok || total != 3 {
		t.Fatalf("SatisfactionScore() ok = %v total = %d, want true 3", ok, total)
	}
	if score != 33 {
		t.Errorf("SatisfactionScore() = %v, want 33", score)
	}

	if _, ok, total := SatisfactionScore(responses[6:], byID); ok || total != 0 {
		t.Errorf("SatisfactionScore(irrelevant) = ok %v total %d, want no data", ok, total)
	}
}

func TestParticipationRate(t *testing.T) {
	now := time.Now()
	sent := &now
	visits := []*repo.Visit{
		{WelcomeSent: sent, SurveySent: sent, SurveyStarted: sent},
		{WelcomeSent: sent, SurveySent: sent},
		{WelcomeSent: sent},
		{},
	}
	rate, ok, total := ParticipationRate(visits)
	if !ok || rate != 25 || total != 4 {
		t.Errorf("ParticipationRate() = (%v, %v, %d), want (25, true, 4)", rate, ok, total)
	}
	if _, ok, total := ParticipationRate(nil); ok || total != 0 {
		t.Errorf("ParticipationRate(nil) = ok %v total %d, want no data", ok, total)
	}
}

func TestWeeklyBuckets(t *testing.T) {
	start := time.Date(2014, 3, 5, 9, 0, 0, 0, time.UTC)
	end := time.Date(2014, 3, 18, 9, 0, 0, 0, time.UTC)
	now := time.Date(2014, 3, 20, 12, 0, 0, 0, time.UTC)

	buckets := slices.Collect(WeeklyBuckets(start, end, now))
	if len(buckets) != 3 {
		t.Fatalf("WeeklyBuckets() = %d buckets, want 3", len(buckets))
	}
	for i, b := range buckets {
		if span := b.End.Sub(b.Start) + time.Nanosecond; span != 7*24*time.Hour {
			t.Errorf("bucket %d spans %v, want 7 days", i, span)
		}
	}
	for i, b := range buckets[:2] {
		if b.Start.Weekday() != time.Monday || b.Start.Hour() != 0 {
			t.Errorf("bucket %d starts %v, want Monday midnight", i, b.Start)
		}
		if i > 0 && !b.Start.Equal(buckets[i-1].End.Add(time.Nanosecond)) {
			t.Errorf("bucket %d not contiguous with previous", i)
		}
	}

	last := buckets[2]
	if last.End.After(now) {
		t.Errorf("last bucket ends %v, after now %v", last.End, now)
	}
	wantStart := time.Date(2014, 3, 13, 0, 0, 0, 0, time.UTC)
	if !last.Start.Equal(wantStart) {
		t.Errorf("last bucket starts %v, want %v", last.Start, wantStart)
	}

	// The sequence restarts from the beginning on every range.
	again := slices.Collect(WeeklyBuckets(start, end, now))
	if !slices.Equal(again, buckets) {
		t.Error("WeeklyBuckets() not restartable")
	}
}

func TestWeeklyBuckets_PastRange(t *testing.T) {
	start := time.Date(2014, 3, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2014, 3, 16, 0, 0, 0, 0, time.UTC)
	now := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)

	buckets := slices.Collect(WeeklyBuckets(start, end, now))
	if len(buckets) != 2 {
		t.Fatalf("WeeklyBuckets() = %d buckets, want 2", len(buckets))
	}
	if got := buckets[1].End; !got.Equal(time.Date(2014, 3, 16, 23, 59, 59, 999999999, time.UTC)) {
		t.Errorf("last bucket ends %v, want Sunday 16 March", got)
	}
	if n := len(slices.Collect(WeeklyBuckets(end, start, now))); n != 0 {
		t.Errorf("inverted range yielded %d buckets, want 0", n)
	}
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Percent("x", 67, true, 3), "67%"},
		{Percent("x", 33.3, true, 3), "33.3%"},
		{Percent("x", 0, false, 0), "--"},
		{Mode("w", "<1 hour", true, 2), "<1 hour"},
		{NoData("x"), "--"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.v, got, tt.want)
		}
	}
}
