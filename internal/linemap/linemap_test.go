package linemap

import "testing"

func TestByteRangeToLines(t *testing.T) {
	content := "line0\nline1\nline2\nline3\n"

	cases := []struct {
		name             string
		start, end       int
		wantStart, wantEnd int
	}{
		{"whole file", 0, len(content), 0, 4},
		{"first line only", 0, 6, 0, 1},
		{"middle span exact newline boundary", 6, 18, 1, 3},
		{"middle span mid-line", 6, 15, 1, 3},
		{"empty range", 6, 6, 1, 2},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			start, end := ByteRangeToLines(content, c.start, c.end)
			if start != c.wantStart || end != c.wantEnd {
				t.Fatalf("ByteRangeToLines(%d,%d) = (%d,%d), want (%d,%d)", c.start, c.end, start, end, c.wantStart, c.wantEnd)
			}
		})
	}
}

func TestByteRangeToLinesClampsOutOfBounds(t *testing.T) {
	content := "abc\ndef\n"
	start, end := ByteRangeToLines(content, -5, 1000)
	if start != 0 {
		t.Fatalf("expected clamped start 0, got %d", start)
	}
	if end != 2 {
		t.Fatalf("expected end 2, got %d", end)
	}
}
