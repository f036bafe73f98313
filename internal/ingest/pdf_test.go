package ingest

import (
	"path/filepath"
	"testing"
)

func TestReferencesSection(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "plain heading",
			text: "Intro text\nBody paragraph\nReferences\n[1] Smith 2020.",
			want: "[1] Smith 2020.",
		},
		{
			name: "numbered heading",
			text: "Body\n7. References\n[1] Smith 2020.",
			want: "[1] Smith 2020.",
		},
		{
			name: "roman numeral heading",
			text: "Body\nVII.References\n[1] Smith 2020.",
			want: "[1] Smith 2020.",
		},
		{
			name: "uppercase with colon",
			text: "Body\nBIBLIOGRAPHY:\n[1] Smith 2020.",
			want: "[1] Smith 2020.",
		},
		{
			name: "last heading wins",
			text: "Contents\nReferences\nChapter one\nReferences\n[1] Smith 2020.",
			want: "[1] Smith 2020.",
		},
		{
			name: "no heading keeps full text",
			text: "Just body text\nwith two lines",
			want: "Just body text\nwith two lines",
		},
		{
			name: "sentence mentioning references ignored",
			text: "We list many references in the following sections\n[1] Smith 2020.",
			want: "We list many references in the following sections\n[1] Smith 2020.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := referencesSection(tt.text); got != tt.want {
				t.Errorf("referencesSection() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPDF_MissingFile(t *testing.T) {
	if _, err := PDF(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("PDF(missing) error = nil, want error")
	}
}
