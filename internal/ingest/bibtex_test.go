package ingest

import (
	"strings"
	"testing"
)

func TestBibTeX_MapsFields(t *testing.T) {
	input := `@article{smith2021graph,
  title = {Graph Sampling at Scale},
  author = {Smith, Alice and Jones, Bob},
  journal = {Journal of Complex Networks},
  year = {2021},
  publisher = {Oxford University Press},
  doi = {10.1093/comnet/cnab032},
  url = {https://doi.org/10.1093/comnet/cnab032},
  issn = {2051-1329},
  note = {A. Smith and B. Jones, Graph sampling at scale, 2021},
}

@inproceedings{wu2019parsing,
  title = "Reference Parsing Heuristics",
  booktitle = "Proc. 12th Text Mining Workshop",
  year = 2019,
}
`
	refs, err := BibTeX(strings.NewReader(input), "library.bib")
	if err != nil {
		t.Fatalf("BibTeX() error = %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("BibTeX() = %d refs, want 2", len(refs))
	}

	article := refs[0]
	if article.Raw != "A. Smith and B. Jones, Graph sampling at scale, 2021" {
		t.Errorf("Raw = %q, want the note field", article.Raw)
	}
	if article.Title != "Graph Sampling at Scale" {
		t.Errorf("Title = %q", article.Title)
	}
	if article.Venue != "Journal of Complex Networks" {
		t.Errorf("Venue = %q, want the journal", article.Venue)
	}
	if article.Publisher != "Oxford University Press" {
		t.Errorf("Publisher = %q", article.Publisher)
	}
	if article.Type != "article" {
		t.Errorf("Type = %q, want lowercased entry type", article.Type)
	}
	if article.Year != 2021 {
		t.Errorf("Year = %d", article.Year)
	}
	if article.SourceFile != "library.bib" {
		t.Errorf("SourceFile = %q", article.SourceFile)
	}
	if len(article.Identifiers) != 2 ||
		article.Identifiers[0].Type != "DOI" || article.Identifiers[0].Value != "10.1093/comnet/cnab032" ||
		article.Identifiers[1].Type != "URL" {
		t.Errorf("Identifiers = %v, want DOI then URL", article.Identifiers)
	}
	if article.URL != "https://doi.org/10.1093/comnet/cnab032" {
		t.Errorf("URL = %q", article.URL)
	}
	if len(article.ISSNISBN) != 1 || article.ISSNISBN[0] != "2051-1329" {
		t.Errorf("ISSNISBN = %v", article.ISSNISBN)
	}

	proc := refs[1]
	if proc.Raw != "Reference Parsing Heuristics" {
		t.Errorf("Raw = %q, want fallback to title", proc.Raw)
	}
	if proc.Venue != "Proc. 12th Text Mining Workshop" {
		t.Errorf("Venue = %q, want the booktitle", proc.Venue)
	}
	if proc.Type != "inproceedings" {
		t.Errorf("Type = %q", proc.Type)
	}
	if proc.Year != 2019 {
		t.Errorf("Year = %d, want bare numeric field parsed", proc.Year)
	}
}

func TestBibTeX_RawFallsBackToKey(t *testing.T) {
	input := "@misc{anon2020,\n  year = {2020},\n}\n"
	refs, err := BibTeX(strings.NewReader(input), "x.bib")
	if err != nil {
		t.Fatalf("BibTeX() error = %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("BibTeX() = %d refs, want 1", len(refs))
	}
	if refs[0].Raw != "anon2020" {
		t.Errorf("Raw = %q, want the citation key", refs[0].Raw)
	}
	if refs[0].Type != "misc" {
		t.Errorf("Type = %q", refs[0].Type)
	}
}

func TestBibTeX_SkipsNonEntryBlocks(t *testing.T) {
	input := `@comment{
  internal notes, never parsed
}
@string{jcn = {J. Complex Netw.}}
@preamble{"Some preamble"}
@book{knuth1984,
  title = {The TeXbook},
  year = {1984},
}
`
	refs, err := BibTeX(strings.NewReader(input), "x.bib")
	if err != nil {
		t.Fatalf("BibTeX() error = %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("BibTeX() = %d refs, want only the book", len(refs))
	}
	if refs[0].Title != "The TeXbook" {
		t.Errorf("Title = %q", refs[0].Title)
	}
}

func TestBibTeX_UnparseableYear(t *testing.T) {
	input := "@article{pending,\n  title = {Forthcoming},\n  year = {in press},\n}\n"
	refs, err := BibTeX(strings.NewReader(input), "x.bib")
	if err != nil {
		t.Fatalf("BibTeX() error = %v", err)
	}
	if refs[0].Year != 0 {
		t.Errorf("Year = %d, want 0 for unparseable", refs[0].Year)
	}
}

func TestBibTeX_DoubledBraces(t *testing.T) {
	input := "@article{caps,\n  title = {{Upper Case Kept}},\n}\n"
	refs, err := BibTeX(strings.NewReader(input), "x.bib")
	if err != nil {
		t.Fatalf("BibTeX() error = %v", err)
	}
	if refs[0].Title != "Upper Case Kept" {
		t.Errorf("Title = %q, want both brace levels stripped", refs[0].Title)
	}
}
