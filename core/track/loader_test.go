package track

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	content := formatTrack([][2]float64{{1e6, 0.15}, {2e6, 0.14}, {3e6, 0.13}})

	raw, err := Parse(strings.NewReader(content), "mem")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", raw.Len())
	}
	if got := raw.Ages(); got[0] != 1e6 || got[2] != 3e6 {
		t.Fatalf("unexpected ages %v", got)
	}
	if got := raw.K2(); got[1] != 0.14 {
		t.Fatalf("k2 should come from file column 12, got %v", got)
	}
	if len(raw.Rows[0]) != len(Columns) {
		t.Fatalf("expected %d fields per row, got %d", len(Columns), len(raw.Rows[0]))
	}
}

func TestParse_SkipsHeaderRow(t *testing.T) {
	content := "# comment\nAge logL logT logg logR a b c d e f g k2\n" +
		"1e6 0 0 0 0 0 0 0 0 0 0 0 0.2\n"

	raw, err := Parse(strings.NewReader(content), "mem")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw.Len() != 1 || raw.K2()[0] != 0.2 {
		t.Fatalf("unexpected track %+v", raw.Rows)
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty", content: "# only comments\n"},
		{name: "short row", content: "1e6 0 0 0 0 0.2\n"},
		{name: "non-numeric after data", content: "1e6 0 0 0 0 0 0 0 0 0 0 0 0.2\n2e6 0 0 0 0 0 0 0 0 0 0 0 abc\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.content), "bad.iso")
			if !errors.Is(err, ErrTrackNotFound) {
				t.Fatalf("expected ErrTrackNotFound, got %v", err)
			}
			if !strings.Contains(err.Error(), "bad.iso") {
				t.Fatalf("error should name the locator: %v", err)
			}
		})
	}
}

func TestLoader_MissingFile(t *testing.T) {
	l := NewLoader(NewDirSource(t.TempDir()), nil)

	_, err := l.Load(context.Background(), "fehp0/m0550_GS98_p0_T60.iso")
	var nf *TrackNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected TrackNotFoundError, got %v", err)
	}
	if nf.Locator != "fehp0/m0550_GS98_p0_T60.iso" {
		t.Fatalf("unexpected locator %q", nf.Locator)
	}
}

func TestLoader_ReadsFromDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "fehp0/x.iso", formatTrack([][2]float64{{1e6, 0.1}, {2e6, 0.2}}))

	raw, err := NewLoader(NewDirSource(root), nil).Load(context.Background(), "fehp0/x.iso")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw.Locator != "fehp0/x.iso" || raw.Len() != 2 {
		t.Fatalf("unexpected track %+v", raw)
	}
}
