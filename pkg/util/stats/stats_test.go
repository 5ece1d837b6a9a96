package stats

import (
	"testing"
	"time"
)

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"monday midnight", time.Date(2014, 3, 3, 0, 0, 0, 0, time.UTC), time.Date(2014, 3, 3, 0, 0, 0, 0, time.UTC)},
		{"wednesday afternoon", time.Date(2014, 3, 5, 15, 30, 0, 0, time.UTC), time.Date(2014, 3, 3, 0, 0, 0, 0, time.UTC)},
		{"sunday night", time.Date(2014, 3, 9, 23, 59, 59, 0, time.UTC), time.Date(2014, 3, 3, 0, 0, 0, 0, time.UTC)},
		{"across month", time.Date(2014, 4, 2, 8, 0, 0, 0, time.UTC), time.Date(2014, 3, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekStart(tt.in); !got.Equal(tt.want) {
				t.Errorf("WeekStart() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeekEnd(t *testing.T) {
	got := WeekEnd(time.Date(2014, 3, 5, 15, 30, 0, 0, time.UTC))
	want := time.Date(2014, 3, 9, 23, 59, 59, 999999999, time.UTC)
	if !got.Equal(want) {
		t.Errorf("WeekEnd() = %v, want %v", got, want)
	}
	if got.Weekday() != time.Sunday {
		t.Errorf("WeekEnd() weekday = %v, want Sunday", got.Weekday())
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		name   string
		num    int
		den    int
		places int
		want   float64
		wantOK bool
	}{
		{"zero denominator", 5, 0, 0, 0, false},
		{"zero numerator and denominator", 0, 0, 0, 0, false},
		{"whole", 1, 2, 0, 50, true},
		{"rounds half up", 1, 8, 0, 13, true},
		{"one third", 1, 3, 0, 33, true},
		{"two thirds", 2, 3, 0, 67, true},
		{"one decimal place", 1, 3, 1, 33.3, true},
		{"full", 4, 4, 0, 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Percentage(tt.num, tt.den, tt.places)
			if ok != tt.wantOK {
				t.Fatalf("Percentage() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Percentage() = %v, want %v", got, tt.want)
			}
		})
	}
}
