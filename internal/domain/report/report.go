// Package report aggregates attendance days into statistics.
//
// Все функции чистые и детерминированные: одинаковый вход даёт одинаковый
// выход, порядок результатов не зависит от порядка обхода map.
package report

import (
	"sort"
	"time"

	"github.com/satyalok/attendance-hub/internal/domain/attendance"
	"github.com/satyalok/attendance-hub/internal/domain/shared"
	"github.com/satyalok/attendance-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// TYPES
// ══════════════════════════════════════════════════════════════════════════════

// Entry is one deduplicated (area, date, student) mark.
type Entry struct {
	Area        shared.Area
	Date        time.Time
	StudentID   string
	StudentName string
	Status      attendance.Status
}

// AreaStats holds present/absent totals of one area.
type AreaStats struct {
	Area    shared.Area `json:"area"`
	Present int         `json:"present"`
	Absent  int         `json:"absent"`
}

// StudentStats holds one student's attendance over the report range.
type StudentStats struct {
	Area        shared.Area `json:"area"`
	StudentID   string      `json:"studentId"`
	StudentName string      `json:"name"`
	TotalDays   int         `json:"totalDays"`
	PresentDays int         `json:"presentDays"`
	// Percentage is nil when TotalDays is zero.
	Percentage *float64 `json:"percentage"`
}

// MonthlyStats holds totals for one calendar month.
type MonthlyStats struct {
	Month   string `json:"month"` // YYYY-MM
	Label   string `json:"label"` // Jan 2024
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
}

// Overall holds totals across the whole report.
type Overall struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
}

// Report bundles every aggregate.
type Report struct {
	AreaStats    []AreaStats    `json:"areaStats"`
	StudentStats []StudentStats `json:"studentStats"`
	MonthlyTrend []MonthlyStats `json:"monthlyTrend"`
	Overall      Overall        `json:"overall"`
}

// ══════════════════════════════════════════════════════════════════════════════
// DEDUPLICATION
// ══════════════════════════════════════════════════════════════════════════════

type entryKey struct {
	area    shared.Area
	date    string
	student string
}

// studentKey is the id, or the name for legacy records without one.
func studentKey(r attendance.Record) string {
	if r.StudentID != "" {
		return "id:" + r.StudentID
	}
	return "name:" + r.StudentName
}

// Deduplicate flattens days into entries. The first record seen for a given
// (area, date, student) wins; later ones are dropped.
func Deduplicate(days []*attendance.Day) []Entry {
	seen := make(map[entryKey]struct{})
	out := make([]Entry, 0)
	for _, d := range days {
		if d == nil {
			continue
		}
		dateKey := d.DateKey()
		for _, r := range d.Records {
			k := entryKey{area: d.Area, date: dateKey, student: studentKey(r)}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, Entry{
				Area:        d.Area,
				Date:        timeutil.NormalizeDate(d.Date),
				StudentID:   r.StudentID,
				StudentName: r.StudentName,
				Status:      r.Status,
			})
		}
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATES
// ══════════════════════════════════════════════════════════════════════════════

// ComputeAreaStats counts marks per area in canonical area order.
// Areas outside the enumerated set follow, in order of first appearance.
func ComputeAreaStats(days []*attendance.Day) []AreaStats {
	return areaStats(Deduplicate(days))
}

func areaStats(entries []Entry) []AreaStats {
	idx := make(map[shared.Area]int)
	var out []AreaStats
	for _, e := range entries {
		i, ok := idx[e.Area]
		if !ok {
			i = len(out)
			idx[e.Area] = i
			out = append(out, AreaStats{Area: e.Area})
		}
		if e.Status == attendance.StatusPresent {
			out[i].Present++
		} else {
			out[i].Absent++
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return areaRank(out[i].Area) < areaRank(out[j].Area)
	})
	if out == nil {
		out = []AreaStats{}
	}
	return out
}

// areaRank puts unknown areas after every center; SliceStable keeps their
// first-appearance order.
func areaRank(a shared.Area) int {
	if i := a.Index(); i >= 0 {
		return i
	}
	return len(shared.Areas())
}

// ComputeStudentStats counts days and presents per (area, student).
func ComputeStudentStats(days []*attendance.Day) []StudentStats {
	return studentStats(Deduplicate(days))
}

type studentStatsKey struct {
	area    shared.Area
	student string
}

func studentStats(entries []Entry) []StudentStats {
	idx := make(map[studentStatsKey]int)
	out := make([]StudentStats, 0)
	for _, e := range entries {
		k := studentStatsKey{area: e.Area, student: studentKey(attendance.Record{StudentID: e.StudentID, StudentName: e.StudentName})}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, StudentStats{Area: e.Area, StudentID: e.StudentID, StudentName: e.StudentName})
		}
		out[i].TotalDays++
		if e.Status == attendance.StatusPresent {
			out[i].PresentDays++
		}
	}

	for i := range out {
		out[i].Percentage = Percentage(out[i].PresentDays, out[i].TotalDays)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Percentage == nil && b.Percentage != nil:
			return false
		case a.Percentage != nil && b.Percentage == nil:
			return true
		case a.Percentage != nil && *a.Percentage != *b.Percentage:
			return *a.Percentage > *b.Percentage
		}
		if ra, rb := areaRank(a.Area), areaRank(b.Area); ra != rb {
			return ra < rb
		}
		if a.StudentName != b.StudentName {
			return a.StudentName < b.StudentName
		}
		return a.StudentID < b.StudentID
	})
	return out
}

// Percentage returns present/total*100, or nil when total is zero.
func Percentage(present, total int) *float64 {
	if total <= 0 {
		return nil
	}
	p := float64(present) / float64(total) * 100
	return &p
}

// ComputeMonthlyTrend sums marks per calendar month, ascending.
func ComputeMonthlyTrend(days []*attendance.Day) []MonthlyStats {
	return monthlyTrend(Deduplicate(days))
}

func monthlyTrend(entries []Entry) []MonthlyStats {
	byMonth := make(map[string]*MonthlyStats)
	for _, e := range entries {
		key := timeutil.MonthKey(e.Date)
		m, ok := byMonth[key]
		if !ok {
			m = &MonthlyStats{Month: key, Label: timeutil.MonthLabel(e.Date)}
			byMonth[key] = m
		}
		if e.Status == attendance.StatusPresent {
			m.Present++
		} else {
			m.Absent++
		}
	}

	out := make([]MonthlyStats, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// ComputeOverall sums every mark.
func ComputeOverall(days []*attendance.Day) Overall {
	return overall(Deduplicate(days))
}

func overall(entries []Entry) Overall {
	var o Overall
	for _, e := range entries {
		if e.Status == attendance.StatusPresent {
			o.Present++
		} else {
			o.Absent++
		}
	}
	return o
}

// Build computes every aggregate from a single deduplication pass.
func Build(days []*attendance.Day) Report {
	entries := Deduplicate(days)
	return Report{
		AreaStats:    areaStats(entries),
		StudentStats: studentStats(entries),
		MonthlyTrend: monthlyTrend(entries),
		Overall:      overall(entries),
	}
}
