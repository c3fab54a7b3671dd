// Package attendance contains the attendance day aggregate.
//
// Один день посещаемости на (область, дата). День записывается один раз
// и больше никогда не изменяется и не удаляется.
package attendance

import (
	"strings"
	"time"

	"github.com/satyalok/attendance-hub/internal/domain/shared"
	"github.com/satyalok/attendance-hub/internal/domain/student"
	"github.com/satyalok/attendance-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATUS
// ══════════════════════════════════════════════════════════════════════════════

// Status is the mark for one student on one day.
type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
)

// IsValid reports whether s is Present or Absent.
func (s Status) IsValid() bool {
	return s == StatusPresent || s == StatusAbsent
}

// ParseStatus accepts the two statuses case-insensitively.
func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "present":
		return StatusPresent, nil
	case "absent":
		return StatusAbsent, nil
	}
	return "", shared.Validation("attendance", "ParseStatus", shared.ErrInvalidStatus,
		"status must be Present or Absent, got "+raw)
}

// ══════════════════════════════════════════════════════════════════════════════
// RECORD / DAY
// ══════════════════════════════════════════════════════════════════════════════

// Record is one student's mark within a day.
type Record struct {
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	Status      Status `json:"status"`
}

// Day is the immutable attendance snapshot for one area and calendar day.
type Day struct {
	Area      shared.Area
	Date      time.Time
	Records   []Record
	CreatedAt time.Time
}

// DateKey returns the YYYY-MM-DD storage key of the day.
func (d *Day) DateKey() string {
	return timeutil.FormatDate(d.Date)
}

// PresentCount returns the number of Present records.
func (d *Day) PresentCount() int {
	n := 0
	for _, r := range d.Records {
		if r.Status == StatusPresent {
			n++
		}
	}
	return n
}

// Submission is the raw input of a teacher: student id and status per row.
type Submission struct {
	StudentID string
	Status    Status
}

// NewDay checks submission against roster and builds the snapshot.
//
// Records must cover every roster student exactly once. The snapshot keeps
// the submission order and takes names from the roster.
func NewDay(area shared.Area, date time.Time, roster []*student.Student, rows []Submission, now time.Time) (*Day, error) {
	if !area.IsCenter() {
		return nil, shared.Validation("attendance", "Submit", shared.ErrInvalidArea,
			"attendance is recorded for a single center")
	}
	for _, row := range rows {
		if !row.Status.IsValid() {
			return nil, shared.Validation("attendance", "Submit", shared.ErrInvalidStatus,
				"status must be Present or Absent, got "+string(row.Status))
		}
	}
	if len(roster) == 0 {
		return nil, &shared.IncompleteRosterError{Area: string(area), Reason: "roster is empty"}
	}

	names, mismatch := CheckCoverage(roster, rows)
	if !mismatch.Empty() {
		return nil, &shared.IncompleteRosterError{Area: string(area), Mismatch: mismatch}
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, Record{
			StudentID:   row.StudentID,
			StudentName: names[row.StudentID],
			Status:      row.Status,
		})
	}

	return &Day{
		Area:      area,
		Date:      timeutil.NormalizeDate(date),
		Records:   records,
		CreatedAt: now.UTC(),
	}, nil
}

// CheckCoverage compares submitted rows with the roster. It returns the
// roster name per id and the differences, if any.
func CheckCoverage(roster []*student.Student, rows []Submission) (map[string]string, shared.RosterMismatch) {
	names := make(map[string]string, len(roster))
	for _, s := range roster {
		names[s.ID] = s.Name
	}

	var mismatch shared.RosterMismatch
	seen := make(map[string]int, len(rows))
	for _, row := range rows {
		seen[row.StudentID]++
		switch seen[row.StudentID] {
		case 1:
			if _, ok := names[row.StudentID]; !ok {
				mismatch.Unknown = append(mismatch.Unknown, row.StudentID)
			}
		case 2:
			mismatch.Duplicate = append(mismatch.Duplicate, row.StudentID)
		}
	}
	for _, s := range roster {
		if seen[s.ID] == 0 {
			mismatch.Missing = append(mismatch.Missing, s.ID)
		}
	}
	return names, mismatch
}

// ══════════════════════════════════════════════════════════════════════════════
// DATE RANGE
// ══════════════════════════════════════════════════════════════════════════════

// DateRange is an inclusive calendar-day range. A nil bound is open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// NewDateRange validates the bounds; from must not be after to.
func NewDateRange(from, to *time.Time) (DateRange, error) {
	if from != nil {
		f := timeutil.NormalizeDate(*from)
		from = &f
	}
	if to != nil {
		t := timeutil.NormalizeDate(*to)
		to = &t
	}
	if from != nil && to != nil && from.After(*to) {
		return DateRange{}, shared.Validation("attendance", "DateRange", shared.ErrInvalidDate,
			"from must not be after to")
	}
	return DateRange{From: from, To: to}, nil
}

// Contains reports whether day falls within the range.
func (r DateRange) Contains(day time.Time) bool {
	day = timeutil.NormalizeDate(day)
	if r.From != nil && day.Before(*r.From) {
		return false
	}
	if r.To != nil && day.After(*r.To) {
		return false
	}
	return true
}
