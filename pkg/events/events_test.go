package events

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestBusSubjects(t *testing.T) {
	b := NewBus(nil, "myvoice")
	id := uuid.MustParse("0199f0c2-7c1e-7b7a-9a55-1b0d5b8f6e01")

	if got, want := b.Subject(SurveyStart, id), "myvoice.survey.start.0199f0c2-7c1e-7b7a-9a55-1b0d5b8f6e01"; got != want {
		t.Errorf("Subject() = %q, want %q", got, want)
	}
	if got, want := b.Wildcard(VisitRegistered), "myvoice.visit.registered.*"; got != want {
		t.Errorf("Wildcard() = %q, want %q", got, want)
	}
}

func TestMsgDecode(t *testing.T) {
	in := SurveyStartEvent{
		VisitID: uuid.New(),
		Mobile:  "+2348022112211",
		FlowID:  42,
		Clinic:  "Wuse General",
	}

	msg, err := newMsg(context.Background(), "myvoice.survey.start.x", in)
	if err != nil {
		t.Fatalf("newMsg() error = %v", err)
	}

	_, out, err := decode[SurveyStartEvent](msg)
	if err != nil {
		t.Fatalf("decode() error = %v", err)
	}
	if out != in {
		t.Errorf("decode() = %+v, want %+v", out, in)
	}
}

func TestMsgDecode_Malformed(t *testing.T) {
	msg, _ := newMsg(context.Background(), "s", "not an object")
	if _, _, err := decode[SurveyStartEvent](msg); err == nil {
		t.Fatal("decode() expected error for non-object payload")
	}
}
