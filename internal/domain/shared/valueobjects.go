package shared

import "strings"

// ══════════════════════════════════════════════════════════════════════════════
// AREA
// ══════════════════════════════════════════════════════════════════════════════

// Area is one of the fixed organizational centers. It partitions students,
// teachers and attendance.
type Area string

const (
	AreaSwang    Area = "Swang"
	AreaKathara  Area = "Kathara"
	AreaNawadih  Area = "Nawadih"
	AreaPipradih Area = "Pipradih"
	AreaPhusro   Area = "Phusro"

	// AreaAll is the cross-area read scope. Never a storage key.
	AreaAll Area = "All"
)

// areas is the canonical center order used for every deterministic listing.
var areas = []Area{AreaSwang, AreaKathara, AreaNawadih, AreaPipradih, AreaPhusro}

// Areas returns the enumerated centers in canonical order.
func Areas() []Area {
	out := make([]Area, len(areas))
	copy(out, areas)
	return out
}

// IsCenter reports whether a is one of the enumerated centers.
func (a Area) IsCenter() bool {
	for _, c := range areas {
		if c == a {
			return true
		}
	}
	return false
}

// IsAll reports whether a is the cross-area scope.
func (a Area) IsAll() bool {
	return a == AreaAll
}

// Index returns the canonical position of a, or -1 for unknown areas.
func (a Area) Index() int {
	for i, c := range areas {
		if c == a {
			return i
		}
	}
	return -1
}

// String returns the area name.
func (a Area) String() string {
	return string(a)
}

// ParseArea resolves a user-supplied area name case-insensitively.
// "all" maps to AreaAll. Unknown names return ErrInvalidArea.
func ParseArea(s string) (Area, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, string(AreaAll)) {
		return AreaAll, nil
	}
	for _, c := range areas {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", Validation("area", "Parse", ErrInvalidArea, "unknown area "+quote(s))
}

// NormalizeArea returns the canonical spelling of s when it names a known
// area, otherwise the trimmed input unchanged so the access gate can judge it.
func NormalizeArea(s string) Area {
	if a, err := ParseArea(s); err == nil {
		return a
	}
	return Area(strings.TrimSpace(s))
}

// Centers expands a scope into the list of concrete centers it covers.
func (a Area) Centers() []Area {
	if a.IsAll() {
		return Areas()
	}
	return []Area{a}
}

func quote(s string) string {
	return "\"" + s + "\""
}
