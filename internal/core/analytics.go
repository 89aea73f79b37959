package core

import (
	"math"
	"sort"
	"strings"
	"time"
)

// eventView is the extraction contract that lets one aggregation engine
// serve both entity families. Accessors that can be absent report ok=false.
type eventView[E any] struct {
	occurredAt func(E) time.Time
	originator func(E) (id int64, number string, ok bool)
	blocked    func(E) bool
	spam       func(E) bool
	confidence func(E) (float64, bool)
	category   func(E) (string, bool)
	preview    func(E) string
	// distinctText keys cross-record duplicate detection (templated spam
	// campaigns). Calls have no text and report ok=false.
	distinctText func(E) (string, bool)
}

var messageView = eventView[Message]{
	occurredAt: func(m Message) time.Time { return m.ReceivedAt },
	originator: func(m Message) (int64, string, bool) {
		if m.SenderID == nil {
			return 0, "", false
		}
		number := ""
		if m.SenderNumber != nil {
			number = *m.SenderNumber
		}
		return *m.SenderID, number, true
	},
	blocked: func(m Message) bool { return m.Blocked },
	spam:    func(m Message) bool { return m.IsSpam },
	confidence: func(m Message) (float64, bool) {
		if m.Confidence == nil {
			return 0, false
		}
		return *m.Confidence, true
	},
	category: func(m Message) (string, bool) {
		if m.Category == nil || *m.Category == "" {
			return "", false
		}
		return *m.Category, true
	},
	preview:      func(m Message) string { return truncateRunes(m.Body, previewMaxRunes) },
	distinctText: func(m Message) (string, bool) { return m.Body, true },
}

var callView = eventView[Call]{
	occurredAt: func(c Call) time.Time { return c.StartedAt },
	originator: func(c Call) (int64, string, bool) {
		if c.CallerID == nil {
			return 0, "", false
		}
		number := ""
		if c.CallerNumber != nil {
			number = *c.CallerNumber
		}
		return *c.CallerID, number, true
	},
	blocked: func(c Call) bool { return c.Blocked },
	spam:    func(c Call) bool { return c.IsSpam },
	confidence: func(c Call) (float64, bool) {
		if c.Confidence == nil {
			return 0, false
		}
		return *c.Confidence, true
	},
	category: func(c Call) (string, bool) {
		if c.Category == nil || *c.Category == "" {
			return "", false
		}
		return *c.Category, true
	},
	preview: func(c Call) string {
		caller := "Unknown"
		if c.CallerNumber != nil {
			caller = *c.CallerNumber
		}
		return "Caller " + caller + " → " + c.CalleeNumber
	},
	distinctText: func(c Call) (string, bool) { return "", false },
}

// previewMaxRunes caps category sample previews, counted in characters.
const previewMaxRunes = 120

// uncategorised is the rollup bucket for records without a category label.
const uncategorised = "uncategorised"

// eventStats is the entity-agnostic summary produced by the stats aggregator.
type eventStats struct {
	Total             int
	Blocked           int
	UniqueOriginators int
	BlockRate         float64
	TopOriginator     *string
}

// categoryGroup is one entity-agnostic category rollup bucket.
type categoryGroup struct {
	Category          string
	Total             int
	UniqueOriginators int
	Blocked           int
	SamplePreview     string
	DistinctTexts     int
}

// filterByRange returns the subset of events whose timestamp satisfies
// start <= ts <= end. A nil bound leaves that side unbounded.
func (v eventView[E]) filterByRange(events []E, start, end *time.Time) []E {
	if start == nil && end == nil {
		return events
	}
	filtered := make([]E, 0, len(events))
	for _, event := range events {
		ts := v.occurredAt(event)
		if start != nil && ts.Before(*start) {
			continue
		}
		if end != nil && ts.After(*end) {
			continue
		}
		filtered = append(filtered, event)
	}
	return filtered
}

// aggregate computes the scalar summary for one filtered event set.
// All counts default to zero on empty input; the block rate is 0.0 when
// there are no events and is rounded to three decimals otherwise.
func (v eventView[E]) aggregate(events []E) eventStats {
	stats := eventStats{Total: len(events)}

	counts := make(map[int64]int)
	numbers := make(map[int64]string)
	order := make([]int64, 0)
	for _, event := range events {
		if v.blocked(event) {
			stats.Blocked++
		}
		id, number, ok := v.originator(event)
		if !ok {
			continue
		}
		if _, seen := counts[id]; !seen {
			order = append(order, id)
			numbers[id] = number
		}
		counts[id]++
	}
	stats.UniqueOriginators = len(counts)

	if stats.Total > 0 {
		stats.BlockRate = round3(float64(stats.Blocked) / float64(stats.Total))
	}

	// Ties resolve to the originator first encountered in storage order.
	best := -1
	for _, id := range order {
		if counts[id] > best {
			best = counts[id]
			number := numbers[id]
			stats.TopOriginator = &number
		}
	}

	return stats
}

// rollupByCategory groups events by category label, substituting the
// uncategorised bucket for absent labels, and returns per-category
// summaries sorted by volume descending.
func (v eventView[E]) rollupByCategory(events []E) []categoryGroup {
	grouped := make(map[string][]E)
	order := make([]string, 0)
	for _, event := range events {
		label, ok := v.category(event)
		if !ok {
			label = uncategorised
		}
		if _, seen := grouped[label]; !seen {
			order = append(order, label)
		}
		grouped[label] = append(grouped[label], event)
	}

	groups := make([]categoryGroup, 0, len(order))
	for _, label := range order {
		entries := grouped[label]
		group := categoryGroup{
			Category:      label,
			Total:         len(entries),
			SamplePreview: v.preview(entries[0]),
		}
		originators := make(map[int64]struct{})
		texts := make(map[string]struct{})
		for _, entry := range entries {
			if v.blocked(entry) {
				group.Blocked++
			}
			if id, _, ok := v.originator(entry); ok {
				originators[id] = struct{}{}
			}
			if text, ok := v.distinctText(entry); ok {
				texts[strings.TrimSpace(text)] = struct{}{}
			}
		}
		group.UniqueOriginators = len(originators)
		group.DistinctTexts = len(texts)
		groups = append(groups, group)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Total > groups[j].Total
	})
	return groups
}

// dailySeries buckets events by the calendar date of their stored timestamp
// and returns detected/blocked counts ordered by date ascending. Days with
// no events do not appear.
func (v eventView[E]) dailySeries(events []E) []DailyStat {
	byDay := make(map[string]*DailyStat)
	for _, event := range events {
		day := v.occurredAt(event).Format("2006-01-02")
		stat, ok := byDay[day]
		if !ok {
			stat = &DailyStat{Date: day}
			byDay[day] = stat
		}
		stat.Detected++
		if v.blocked(event) {
			stat.Blocked++
		}
	}

	series := make([]DailyStat, 0, len(byDay))
	for _, stat := range byDay {
		series = append(series, *stat)
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date < series[j].Date
	})
	return series
}

// meanConfidence averages the confidence scores of events that carry one.
// The second return reports whether any event had a score.
func (v eventView[E]) meanConfidence(events []E) (float64, bool) {
	sum := 0.0
	n := 0
	for _, event := range events {
		if score, ok := v.confidence(event); ok {
			sum += score
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// distinctTexts counts distinct raw text bodies among events matching pred.
func (v eventView[E]) distinctTexts(events []E, pred func(E) bool) int {
	texts := make(map[string]struct{})
	for _, event := range events {
		if !pred(event) {
			continue
		}
		if text, ok := v.distinctText(event); ok {
			texts[text] = struct{}{}
		}
	}
	return len(texts)
}

// distinctOriginators counts distinct resolved originators among events
// matching pred.
func (v eventView[E]) distinctOriginators(events []E, pred func(E) bool) int {
	ids := make(map[int64]struct{})
	for _, event := range events {
		if !pred(event) {
			continue
		}
		if id, _, ok := v.originator(event); ok {
			ids[id] = struct{}{}
		}
	}
	return len(ids)
}

func round3(value float64) float64 {
	return math.Round(value*1000) / 1000
}

// truncateRunes cuts text after maxRunes characters.
func truncateRunes(text string, maxRunes int) string {
	if maxRunes <= 0 {
		return text
	}
	count := 0
	for i := range text {
		if count == maxRunes {
			return text[:i]
		}
		count++
	}
	return text
}
