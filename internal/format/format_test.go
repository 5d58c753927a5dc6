package format_test

import (
	"testing"

	"github.com/sinclairtarget/git-owner/internal/format"
)

func TestRank(t *testing.T) {
	tests := []struct {
		position int
		expected string
	}{
		{1, "# 1"},
		{9, "# 9"},
		{10, "#10"},
		{123, "#123"},
	}

	for _, test := range tests {
		got := format.Rank(test.position)
		if got != test.expected {
			t.Errorf("expected \"%s\", but got: \"%s\"", test.expected, got)
		}
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		fraction float64
		expected string
	}{
		{1, "100.0%"},
		{2.0 / 3.0, "66.7%"},
		{1.0 / 3.0, "33.3%"},
		{0.375, "37.5%"},
		{0.0004, "0.0%"},
	}

	for _, test := range tests {
		got := format.Percent(test.fraction)
		if got != test.expected {
			t.Errorf("expected \"%s\", but got: \"%s\"", test.expected, got)
		}
	}
}

func TestPathHeader(t *testing.T) {
	got := format.PathHeader("internal/foo.go")
	if got != "-- internal/foo.go --" {
		t.Fatalf("expected \"%s\", but got: \"%s\"", "-- internal/foo.go --", got)
	}
}
