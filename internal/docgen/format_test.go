package docgen

import "testing"

func TestFormatPoem(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"CollapsesSpaces", "roses  are \t red", "roses are red"},
		{"KeepsSingleNewlines", "line1\nline2", "line1\nline2"},
		{"KeepsStanzaBreaks", "stanza1\n\nstanza2", "stanza1\n\nstanza2"},
		{"CollapsesNewlineRuns", "stanza1\n\n\n\nstanza2", "stanza1\n\nstanza2"},
		{"TrimsEdges", "  \npoem text\n\n", "poem text"},
		{"Empty", "", ""},
		{"OnlyWhitespace", " \n\t ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPoem(tt.in); got != tt.want {
				t.Errorf("FormatPoem(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
