package deeplook

import (
	"math"
	"strings"
)

// Status is a result state literal as it appears in result sources.
type Status string

const (
	// StatusAdequate marks a passed item (양호).
	StatusAdequate Status = "양호"
	// StatusDeficient marks a failed item (미흡).
	StatusDeficient Status = "미흡"
	// StatusManual marks an item that needs manual review (수동점검).
	StatusManual Status = "수동점검"
	// StatusUnspecified is the sentinel for an empty or missing status.
	StatusUnspecified Status = "-"
)

// Vocabulary lists the closed status set in display order.
var Vocabulary = []Status{StatusAdequate, StatusDeficient, StatusManual, StatusUnspecified}

// ParseStatus trims a raw cell; blank input becomes StatusUnspecified. Unknown
// literals are returned unchanged.
func ParseStatus(raw string) Status {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return StatusUnspecified
	}
	return Status(raw)
}

// Known reports whether s belongs to the closed vocabulary.
func (s Status) Known() bool {
	for _, v := range Vocabulary {
		if s == v {
			return true
		}
	}
	return false
}

// Badge maps a status to a neutral style class; unrecognized literals map to "neutral".
func (s Status) Badge() string {
	switch s {
	case StatusAdequate:
		return "good"
	case StatusDeficient:
		return "bad"
	case StatusManual:
		return "warn"
	default:
		return "neutral"
	}
}

// StatusCount is one entry of a Distribution.
type StatusCount struct {
	Status Status `json:"status"`
	Count  int    `json:"count"`
}

// Distribution counts items per status. Every vocabulary status is present, even
// at zero; pass-through statuses follow in first-seen order.
type Distribution struct {
	Counts []StatusCount `json:"counts"`
	Total  int           `json:"total"`
}

func newDistribution() Distribution {
	d := Distribution{Counts: make([]StatusCount, len(Vocabulary))}
	for i, s := range Vocabulary {
		d.Counts[i] = StatusCount{Status: s}
	}
	return d
}

func (d *Distribution) add(s Status) {
	d.Total++
	for i := range d.Counts {
		if d.Counts[i].Status == s {
			d.Counts[i].Count++
			return
		}
	}
	d.Counts = append(d.Counts, StatusCount{Status: s, Count: 1})
}

// Count returns the number of items with status s.
func (d Distribution) Count(s Status) int {
	for _, c := range d.Counts {
		if c.Status == s {
			return c.Count
		}
	}
	return 0
}

// GoodRate is the rounded adequate percentage, 0 for an empty distribution.
func (d Distribution) GoodRate() int {
	if d.Total == 0 {
		return 0
	}
	return int(math.Round(float64(d.Count(StatusAdequate)) / float64(d.Total) * 100))
}
