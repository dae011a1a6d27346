package gate

import (
	"fmt"
	"strconv"
	"strings"
)

// SemVer is a parsed MAJOR.MINOR.PATCH version. The pre-release suffix is
// carried for display and release flagging but does not participate in
// ordering.
type SemVer struct {
	Marker     string
	Major      int
	Minor      int
	Patch      int
	PreRelease string
}

// ParseError describes a version string that does not fit the
// MAJOR.MINOR.PATCH shape.
type ParseError struct {
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid version %q: %s", e.Raw, e.Reason)
}

// Parse parses a version string such as "1.2.3" or "v1.2.3-rc.1".
// A single leading non-digit marker character is stripped and kept.
func Parse(raw string) (*SemVer, error) {
	if raw == "" {
		return nil, &ParseError{Raw: raw, Reason: "empty string"}
	}

	s := raw
	var marker string
	if s[0] < '0' || s[0] > '9' {
		marker = s[:1]
		s = s[1:]
	}

	core, pre, _ := strings.Cut(s, "-")

	segments := strings.Split(core, ".")
	if len(segments) != 3 {
		return nil, &ParseError{Raw: raw, Reason: fmt.Sprintf("expected 3 segments, got %d", len(segments))}
	}

	nums := make([]int, 3)
	for i, seg := range segments {
		// ParseUint rejects empty segments and +/- signs.
		n, err := strconv.ParseUint(seg, 10, 32)
		if err != nil {
			return nil, &ParseError{Raw: raw, Reason: fmt.Sprintf("segment %q is not a non-negative integer", seg)}
		}
		nums[i] = int(n)
	}

	return &SemVer{
		Marker:     marker,
		Major:      nums[0],
		Minor:      nums[1],
		Patch:      nums[2],
		PreRelease: pre,
	}, nil
}

// Compare orders by (major, minor, patch). Pre-release suffixes are ignored.
func (v *SemVer) Compare(other *SemVer) int {
	if v.Major != other.Major {
		return v.Major - other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor - other.Minor
	}
	return v.Patch - other.Patch
}

func (v *SemVer) String() string {
	var pre string
	if v.PreRelease != "" {
		pre = fmt.Sprintf("-%s", v.PreRelease)
	}
	return fmt.Sprintf("%s%d.%d.%d%s", v.Marker, v.Major, v.Minor, v.Patch, pre)
}
