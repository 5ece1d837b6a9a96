package survey

import (
	"testing"
	"time"

	"github.com/Alijeyrad/myvoice_backend/config"
)

func TestStartTime(t *testing.T) {
	w := Window{Delay: 5 * time.Minute, StartHour: 7, EndHour: 20, Location: time.UTC}
	at := func(day, hour, min int) time.Time {
		return time.Date(2014, 7, day, hour, min, 0, 0, time.UTC)
	}

	tests := []struct {
		name    string
		trigger time.Time
		want    time.Time
	}{
		{"inside window", at(21, 10, 0), at(21, 10, 5)},
		{"before window", at(21, 4, 0), at(21, 7, 0)},
		{"after window", at(21, 23, 0), at(22, 7, 0)},
		{"delay crosses end", at(21, 19, 58), at(22, 7, 0)},
		{"at window start", at(21, 6, 55), at(21, 7, 0)},
		{"end of month", time.Date(2014, 7, 31, 21, 0, 0, 0, time.UTC), time.Date(2014, 8, 1, 7, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StartTime(tt.trigger, w); !got.Equal(tt.want) {
				t.Errorf("StartTime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStartTime_Location(t *testing.T) {
	lagos := time.FixedZone("WAT", 60*60)
	w := Window{StartHour: 7, EndHour: 20, Location: lagos}

	// 05:30 UTC is 06:30 in Lagos, before the window.
	got := StartTime(time.Date(2014, 7, 21, 5, 30, 0, 0, time.UTC), w)
	want := time.Date(2014, 7, 21, 7, 0, 0, 0, lagos)
	if !got.Equal(want) {
		t.Errorf("StartTime() = %v, want %v", got, want)
	}
}

func TestWindowFromConfig(t *testing.T) {
	w, err := WindowFromConfig(config.SurveyConfig{DelayMinutes: 30, WindowStartHour: 8, WindowEndHour: 18, Timezone: "UTC"})
	if err != nil {
		t.Fatalf("WindowFromConfig() error = %v", err)
	}
	if w.Delay != 30*time.Minute || w.StartHour != 8 || w.EndHour != 18 || w.Location != time.UTC {
		t.Errorf("WindowFromConfig() = %+v", w)
	}

	if _, err := WindowFromConfig(config.SurveyConfig{Timezone: "Mars/Olympus"}); err == nil {
		t.Error("WindowFromConfig() expected error for unknown timezone")
	}
}
