package survey

import (
	"fmt"
	"time"

	"github.com/Alijeyrad/myvoice_backend/config"
)

// Window is when surveys may reach patients: Delay after the trigger, and
// only between StartHour and EndHour local time.
type Window struct {
	Delay     time.Duration
	StartHour int
	EndHour   int
	Location  *time.Location
}

func WindowFromConfig(cfg config.SurveyConfig) (Window, error) {
	loc := time.UTC
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return Window{}, fmt.Errorf("survey timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}
	return Window{
		Delay:     time.Duration(cfg.DelayMinutes) * time.Minute,
		StartHour: cfg.WindowStartHour,
		EndHour:   cfg.WindowEndHour,
		Location:  loc,
	}, nil
}

// StartTime returns when a survey triggered at trigger should be sent.
// An eta before the window moves to StartHour the same day; an eta at or
// after EndHour moves to StartHour the next day.
func StartTime(trigger time.Time, w Window) time.Time {
	loc := w.Location
	if loc == nil {
		loc = trigger.Location()
	}
	eta := trigger.Add(w.Delay).In(loc)
	y, m, d := eta.Date()
	switch h := eta.Hour(); {
	case h < w.StartHour:
		return time.Date(y, m, d, w.StartHour, 0, 0, 0, loc)
	case h >= w.EndHour:
		return time.Date(y, m, d+1, w.StartHour, 0, 0, 0, loc)
	}
	return eta
}
