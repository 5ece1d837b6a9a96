package registration

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/Alijeyrad/myvoice_backend/internal/repo"
	"github.com/Alijeyrad/myvoice_backend/pkg/events"
)

const testSender = "+2348022112211"

func newTestService(store *fakeStore, pub *fakePublisher) *registrationService {
	var p Publisher
	if pub != nil {
		p = pub
	}
	svc := New(store, &fakeLocker{}, p, nil, slog.New(slog.DiscardHandler), Config{Region: "NG"}).(*registrationService)
	svc.now = func() time.Time { return time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestRegister_EndToEnd(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := newTestService(store, pub)
	ctx := context.Background()

	res, err := svc.Register(ctx, "1 08122233301 4001 5", testSender)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if want := "Entry received for patient with serial number 4001. Thank you."; res.Reply != want {
		t.Errorf("Reply = %q, want %q", res.Reply, want)
	}
	if len(store.visits) != 1 {
		t.Fatalf("visits = %d, want 1", len(store.visits))
	}
	v := store.visits[0]
	if v.Sender != "08022112211" || v.Mobile != "08122233301" || v.Serial != 4001 {
		t.Errorf("visit = %+v", v)
	}
	if len(pub.events) != 1 || pub.events[0].event != events.VisitRegistered {
		t.Errorf("published = %+v, want one %s", pub.events, events.VisitRegistered)
	}

	res, err = svc.Register(ctx, "2 08122233301 4001 5", testSender)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	want := "Error for serial 4001. There was a mistake in entering CLINIC. " +
		"Please check and enter the whole registration code again."
	if res.Reply != want {
		t.Errorf("Reply = %q, want %q", res.Reply, want)
	}
	if len(store.visits) != 1 {
		t.Errorf("visits = %d, want still 1", len(store.visits))
	}
}

func TestRegister_ErrorCorrection(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	ctx := context.Background()
	sender := "08022112211"
	bad := "2 08122233301 4001 5"

	steps := []struct {
		name      string
		text      string
		wantState *repo.ErrorType
	}{
		{"first failure records", bad, ptr(repo.ErrorTypeClinic)},
		{"identical failure clears", bad, nil},
		{"third failure is fresh", bad, ptr(repo.ErrorTypeClinic)},
		{"different category replaces", "1 0812 4001 5", ptr(repo.ErrorTypeMobile)},
		{"success clears", "1 08122233301 4001 5", nil},
	}

	for _, step := range steps {
		if _, err := svc.Register(ctx, step.text, testSender); err != nil {
			t.Fatalf("%s: Register() error = %v", step.name, err)
		}
		got, _ := store.ErrorState(ctx, sender)
		switch {
		case step.wantState == nil && got != nil:
			t.Errorf("%s: state = %v, want clean", step.name, *got)
		case step.wantState != nil && (got == nil || *got != *step.wantState):
			t.Errorf("%s: state = %v, want %v", step.name, got, *step.wantState)
		}
	}

	if len(store.visits) != 1 {
		t.Errorf("visits = %d, want 1", len(store.visits))
	}
	if len(store.logs) != 4 {
		t.Errorf("logged failures = %d, want 4", len(store.logs))
	}
}

func TestRegister_IncompleteLeavesState(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "2 08122233301 4001 5", testSender); err != nil {
		t.Fatal(err)
	}
	res, err := svc.Register(ctx, "1 0812", testSender)
	if err != nil {
		t.Fatal(err)
	}
	if res.Reply != IncompleteReply || res.Outcome != OutcomeIncomplete {
		t.Errorf("result = %+v, want incomplete", res)
	}
	got, _ := store.ErrorState(ctx, "08022112211")
	if got == nil || *got != repo.ErrorTypeClinic {
		t.Errorf("state = %v, want clinic", got)
	}
}

func TestRegister_EmptySender(t *testing.T) {
	svc := newTestService(newFakeStore(), nil)
	if _, err := svc.Register(context.Background(), "1 08122233301 4001 5", "  "); !errors.Is(err, ErrEmptySender) {
		t.Errorf("Register() error = %v, want ErrEmptySender", err)
	}
}

func TestRegister_PublishFailureIsNotFatal(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakePublisher{err: errors.New("nats down")})

	res, err := svc.Register(context.Background(), "1 08122233301 4001 5", testSender)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if res.Visit == nil {
		t.Error("Visit = nil, want recorded visit")
	}
}

func TestRegister_ClearFailureStoresNoVisit(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "2 08122233301 4001 5", testSender); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	store.clearErr = errors.New("db blip")
	if _, err := svc.Register(ctx, "1 08122233301 4001 5", testSender); err == nil {
		t.Fatal("Register() expected error when the error state cannot be cleared")
	}
	if len(store.visits) != 0 {
		t.Fatalf("visits = %d after failed registration, want 0", len(store.visits))
	}
	got, _ := store.ErrorState(ctx, "08022112211")
	if got == nil || *got != repo.ErrorTypeClinic {
		t.Errorf("state = %v, want clinic kept", got)
	}

	// The gateway resends the same SMS.
	store.clearErr = nil
	res, err := svc.Register(ctx, "1 08122233301 4001 5", testSender)
	if err != nil {
		t.Fatalf("resend: Register() error = %v", err)
	}
	if res.Visit == nil || len(store.visits) != 1 {
		t.Errorf("visits = %d after resend, want 1", len(store.visits))
	}
	if got, _ := store.ErrorState(ctx, "08022112211"); got != nil {
		t.Errorf("state = %v, want clean", *got)
	}
}

func TestRegister_HoldsSenderLock(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	locker := svc.locker.(*fakeLocker)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "1 08122233301 4001 5", testSender); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := svc.Register(ctx, "2 08122233301 4001 5", "08022112211"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	want := "registration:08022112211"
	for _, keys := range [][]string{locker.acquired, locker.released} {
		if len(keys) != 2 || keys[0] != want || keys[1] != want {
			t.Errorf("lock keys = %v, want [%s %s]", keys, want, want)
		}
	}
	if len(locker.held) != 0 {
		t.Errorf("locks still held: %v", locker.held)
	}

	// Incomplete entries do not touch the error state and skip the lock.
	if _, err := svc.Register(ctx, "1 0812", testSender); err != nil {
		t.Fatal(err)
	}
	if len(locker.acquired) != 2 {
		t.Errorf("acquired = %v, want no lock for incomplete entry", locker.acquired)
	}
}

func TestRegister_Busy(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	locker := svc.locker.(*fakeLocker)
	locker.held = map[string]bool{"registration:08022112211": true}

	_, err := svc.Register(context.Background(), "1 08122233301 4001 5", testSender)
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("Register() error = %v, want ErrBusy", err)
	}
	if len(store.visits) != 0 {
		t.Errorf("visits = %d, want 0 while another request holds the sender", len(store.visits))
	}
}

func TestNextErrorStep(t *testing.T) {
	clinic, mobile := FieldClinic, FieldMobile
	tests := []struct {
		name      string
		prev      *repo.ErrorType
		failed    *Field
		wantSave  *repo.ErrorType
		wantClear bool
	}{
		{"clean success", nil, nil, nil, false},
		{"errored success", ptr(repo.ErrorTypeClinic), nil, nil, true},
		{"clean failure", nil, &clinic, ptr(repo.ErrorTypeClinic), false},
		{"repeat failure", ptr(repo.ErrorTypeClinic), &clinic, nil, true},
		{"new category", ptr(repo.ErrorTypeClinic), &mobile, ptr(repo.ErrorTypeMobile), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextErrorStep(tt.prev, tt.failed)
			if got.clear != tt.wantClear {
				t.Errorf("clear = %v, want %v", got.clear, tt.wantClear)
			}
			if (got.save == nil) != (tt.wantSave == nil) || (got.save != nil && *got.save != *tt.wantSave) {
				t.Errorf("save = %v, want %v", got.save, tt.wantSave)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }
