package gate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw       string
		expected  *SemVer
		expectErr bool
	}{
		{"1.2.3", &SemVer{Major: 1, Minor: 2, Patch: 3}, false},
		{"v1.2.3", &SemVer{Marker: "v", Major: 1, Minor: 2, Patch: 3}, false},
		{"v1.2.300", &SemVer{Marker: "v", Major: 1, Minor: 2, Patch: 300}, false},
		{"v1.2.3-rc.1", &SemVer{Marker: "v", Major: 1, Minor: 2, Patch: 3, PreRelease: "rc.1"}, false},
		{"0.0.0", &SemVer{}, false},
		{"1.2", nil, true},
		{"1.2.x", nil, true},
		{"1.2.3.4", nil, true},
		{"1.2.+3", nil, true},
		{"1.2.-3", nil, true},
		{"1..3", nil, true},
		{"v8", nil, true},
		{"", nil, true},
		{"abcdefg-10", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a        string
		b        string
		expected int
	}{
		{"1.0.0", "1.0.0", 0},
		{"2.0.0", "1.9.9", 1},
		{"1.9.9", "2.0.0", -1},
		{"1.2.0", "1.1.9", 1},
		{"1.1.0", "1.1.1", -1},
		{"1.10.0", "1.9.0", 1},
		{"1.0.0-rc.1", "1.0.0", 0}, // pre-release ignored for ordering
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			a, err := Parse(tt.a)
			if err != nil {
				t.Fatal(err)
			}
			b, err := Parse(tt.b)
			if err != nil {
				t.Fatal(err)
			}
			got := a.Compare(b)
			switch {
			case tt.expected == 0 && got != 0:
				t.Errorf("expected equal, got %d", got)
			case tt.expected > 0 && got <= 0:
				t.Errorf("expected greater, got %d", got)
			case tt.expected < 0 && got >= 0:
				t.Errorf("expected less, got %d", got)
			}
		})
	}
}

func TestCompareTransitivity(t *testing.T) {
	a, _ := Parse("1.0.0")
	b, _ := Parse("1.1.0")
	c, _ := Parse("2.0.0")

	if !(a.Compare(b) < 0 && b.Compare(c) < 0 && a.Compare(c) < 0) {
		t.Error("expected a < b < c to imply a < c")
	}
	if b.Compare(a) <= 0 {
		t.Error("a < b must imply b > a")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		raw string
	}{
		{"1.2.3"},
		{"v1.2.3"},
		{"v1.2.3-beta.1"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v, err := Parse(tt.raw)
			if err != nil {
				t.Fatal(err)
			}
			if v.String() != tt.raw {
				t.Errorf("expected %s, got %s", tt.raw, v.String())
			}
		})
	}
}
