package report

import (
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Alijeyrad/myvoice_backend/internal/repo"
	"github.com/Alijeyrad/myvoice_backend/pkg/util/stats"
)

// Group is the records sharing one key.
type Group[K comparable, T any] struct {
	Key   K
	Items []T
}

// GroupBy partitions records by key, keeping keys in first-seen order and
// records in input order within each group.
func GroupBy[K comparable, T any](records []T, key func(T) K) []Group[K, T] {
	parts := lo.PartitionBy(records, key)
	return lo.Map(parts, func(items []T, _ int) Group[K, T] {
		return Group[K, T]{Key: key(items[0]), Items: items}
	})
}

// byKey indexes groups for lookup.
func byKey[K comparable, T any](groups []Group[K, T]) map[K][]T {
	return lo.SliceToMap(groups, func(g Group[K, T]) (K, []T) { return g.Key, g.Items })
}

func answers(responses []*repo.Response) []string {
	return lo.Map(responses, func(r *repo.Response, _ int) string { return r.Response })
}

// Index is the share of answers to one question that were the primary
// answer.
type Index struct {
	Label    string
	Percent  float64
	OK       bool
	Total    int
	Positive int
}

func (i Index) Value() Value {
	return Percent(i.Label, i.Percent, i.OK, i.Total)
}

// QuestionIndices computes an Index per question, in question order.
// Negative-designation questions are summarised by their mode instead and
// are skipped.
func QuestionIndices(questions []*repo.Question, responses []*repo.Response) []Index {
	byQuestion := byKey(GroupBy(responses, func(r *repo.Response) uuid.UUID { return r.QuestionID }))
	var out []Index
	for _, q := range questions {
		if q.Designation != nil && *q.Designation == repo.DesignationNegative {
			continue
		}
		rs := byQuestion[q.ID]
		positive := lo.CountBy(rs, func(r *repo.Response) bool { return r.Response == q.PrimaryAnswer() })
		pct, ok := stats.Percentage(positive, len(rs), 0)
		out = append(out, Index{Label: q.Label, Percent: pct, OK: ok, Total: len(rs), Positive: positive})
	}
	return out
}

// ModalCategory returns the most common of values that is one of
// categories. Ties go to the category listed first. ok is false when no
// value matches a category.
func ModalCategory(values []string, categories []string) (mode string, ok bool) {
	counts := lo.CountValues(values)
	best := 0
	for _, c := range categories {
		if n := counts[c]; n > best {
			mode, best = c, n
		}
	}
	return mode, best > 0
}

// SatisfactionScore is 100 minus the share of visits with at least one
// dissatisfied answer, over the visits that answered a satisfaction
// question. Responses to other questions and without a visit are ignored.
func SatisfactionScore(responses []*repo.Response, questions map[uuid.UUID]*repo.Question) (score float64, ok bool, total int) {
	relevant := lo.Filter(responses, func(r *repo.Response, _ int) bool {
		q := questions[r.QuestionID]
		return r.VisitID != nil && q != nil && q.IsSatisfactionRelevant()
	})
	visits := GroupBy(relevant, func(r *repo.Response) uuid.UUID { return *r.VisitID })
	unsatisfied := lo.CountBy(visits, func(g Group[uuid.UUID, *repo.Response]) bool {
		return lo.SomeBy(g.Items, func(r *repo.Response) bool {
			return !questions[r.QuestionID].IsSatisfied(r.Response)
		})
	})
	pct, ok := stats.Percentage(unsatisfied, len(visits), 0)
	if !ok {
		return 0, false, 0
	}
	return 100 - pct, true, len(visits)
}

// ParticipationRate is the share of visits whose survey was started.
func ParticipationRate(visits []*repo.Visit) (rate float64, ok bool, total int) {
	started := lo.CountBy(visits, func(v *repo.Visit) bool { return v.Reached(repo.StageSurveyStarted) })
	rate, ok = stats.Percentage(started, len(visits), 0)
	return rate, ok, len(visits)
}

// Bucket is one reporting week.
type Bucket struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (b Bucket) Contains(t time.Time) bool {
	return !t.Before(b.Start) && !t.After(b.End)
}

// WeeklyBuckets yields the Monday-to-Sunday weeks covering [start, end].
// A week that would end after now is moved back by whole days so that it
// ends at or before now; such a week is the last one yielded.
func WeeklyBuckets(start, end, now time.Time) iter.Seq[Bucket] {
	return func(yield func(Bucket) bool) {
		if end.Before(start) {
			return
		}
		for ws := stats.WeekStart(start); !ws.After(end); ws = ws.AddDate(0, 0, 7) {
			b := Bucket{Start: ws, End: ws.Add(stats.Week - time.Nanosecond)}
			if b.End.After(now) {
				days := int((b.End.Sub(now) + 24*time.Hour - 1) / (24 * time.Hour))
				b.Start = b.Start.AddDate(0, 0, -days)
				b.End = b.End.AddDate(0, 0, -days)
				yield(b)
				return
			}
			if !yield(b) {
				return
			}
		}
	}
}
