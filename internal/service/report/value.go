package report

import (
	"strconv"
)

// Kind tells which member of a Value is meaningful.
type Kind string

const (
	KindNone       Kind = "none"
	KindPercentage Kind = "percentage"
	KindMode       Kind = "mode"
)

// Value is one report cell: a percentage or a modal answer over Count
// records, or no data at all.
type Value struct {
	Label      string   `json:"label"`
	Count      int      `json:"count"`
	Kind       Kind     `json:"kind"`
	Percentage *float64 `json:"percentage,omitempty"`
	Mode       *string  `json:"mode,omitempty"`
}

// NoData is the placeholder for a group without records.
func NoData(label string) Value {
	return Value{Label: label, Kind: KindNone}
}

// Percent wraps a stats.Percentage result; ok=false yields NoData with the
// count kept.
func Percent(label string, pct float64, ok bool, count int) Value {
	if !ok {
		v := NoData(label)
		v.Count = count
		return v
	}
	return Value{Label: label, Count: count, Kind: KindPercentage, Percentage: &pct}
}

func Mode(label, mode string, ok bool, count int) Value {
	if !ok {
		v := NoData(label)
		v.Count = count
		return v
	}
	return Value{Label: label, Count: count, Kind: KindMode, Mode: &mode}
}

func (v Value) IsNone() bool { return v.Kind == KindNone }

// String renders the cell, "--" when there is no data.
func (v Value) String() string {
	switch v.Kind {
	case KindPercentage:
		return strconv.FormatFloat(*v.Percentage, 'f', -1, 64) + "%"
	case KindMode:
		return *v.Mode
	default:
		return "--"
	}
}
