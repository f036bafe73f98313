package cluster

import (
	"reflect"
	"testing"

	"github.com/luiscosio/CiteIQ/internal/reference"
)

func refWithAuthors(names ...string) reference.Reference {
	var ref reference.Reference
	for _, name := range names {
		ref.Authors = append(ref.Authors, reference.Author{Name: name})
	}
	return ref
}

func TestAuthors_ConnectedComponents(t *testing.T) {
	refs := []reference.Reference{
		refWithAuthors("Alice Ng", "Bob Om"),
		refWithAuthors("Bob Om", "Carol Pu"),
		refWithAuthors("Dan Qi", "Eve Ro"),
		refWithAuthors("Frank Su"),
	}

	clusters := Authors(refs)
	if len(clusters) != 2 {
		t.Fatalf("Authors() = %d clusters, want 2 (singleton dropped)", len(clusters))
	}

	first := clusters[0]
	if first.Label != "Author Cluster 1" {
		t.Errorf("Label = %q", first.Label)
	}
	wantMembers := []string{"Alice Ng", "Bob Om", "Carol Pu"}
	if !reflect.DeepEqual(first.Members, wantMembers) {
		t.Errorf("Members = %v, want %v sorted", first.Members, wantMembers)
	}
	if first.Size != 3 {
		t.Errorf("Size = %d, want 3", first.Size)
	}

	second := clusters[1]
	if second.Label != "Author Cluster 2" {
		t.Errorf("Label = %q", second.Label)
	}
	if !reflect.DeepEqual(second.Members, []string{"Dan Qi", "Eve Ro"}) {
		t.Errorf("Members = %v", second.Members)
	}
}

func TestAuthors_SizeOrdering(t *testing.T) {
	// The later pair outnumbers the earlier one, so it must come first.
	refs := []reference.Reference{
		refWithAuthors("Zed Yu", "Wim Xa"),
		refWithAuthors("Ann Bo", "Cal Du"),
		refWithAuthors("Cal Du", "Eli Fo"),
	}

	clusters := Authors(refs)
	if len(clusters) != 2 {
		t.Fatalf("Authors() = %d clusters, want 2", len(clusters))
	}
	if clusters[0].Size != 3 || clusters[0].Members[0] != "Ann Bo" {
		t.Errorf("clusters[0] = %+v, want the three-member component first", clusters[0])
	}
	if clusters[1].Size != 2 {
		t.Errorf("clusters[1] = %+v, want the pair second", clusters[1])
	}
}

func TestAuthors_Empty(t *testing.T) {
	if clusters := Authors(nil); clusters != nil {
		t.Errorf("Authors(nil) = %v, want nil", clusters)
	}
	refs := []reference.Reference{{Raw: "no authors here"}}
	if clusters := Authors(refs); clusters != nil {
		t.Errorf("Authors(no names) = %v, want nil", clusters)
	}
}

func TestOrganisations_TypeHistogram(t *testing.T) {
	refs := []reference.Reference{
		{Affiliations: []reference.Affiliation{
			{Name: "MIT", Type: "education"},
			{Name: "Broad Institute", Type: "nonprofit"},
		}},
		{Affiliations: []reference.Affiliation{
			{Name: "MIT", Type: "education"},
			{Name: "Genentech", Type: "company"},
		}},
		{Affiliations: []reference.Affiliation{
			{Name: "Lone Lab", Type: "facility"},
		}},
	}

	clusters := Organisations(refs)
	if len(clusters) != 1 {
		t.Fatalf("Organisations() = %d clusters, want 1", len(clusters))
	}

	got := clusters[0]
	if got.Label != "Organisation Cluster 1" {
		t.Errorf("Label = %q", got.Label)
	}
	wantMembers := []string{"Broad Institute", "Genentech", "MIT"}
	if !reflect.DeepEqual(got.Members, wantMembers) {
		t.Errorf("Members = %v, want %v", got.Members, wantMembers)
	}
	wantTypes := map[string]int{"education": 1, "nonprofit": 1, "company": 1}
	if !reflect.DeepEqual(got.Metadata.Types, wantTypes) {
		t.Errorf("Types = %v, want %v", got.Metadata.Types, wantTypes)
	}
}

func TestOrganisations_LastTypeWins(t *testing.T) {
	refs := []reference.Reference{
		{Affiliations: []reference.Affiliation{
			{Name: "Orbit Corp", Type: "company"},
			{Name: "Relay Group", Type: "company"},
		}},
		{Affiliations: []reference.Affiliation{
			{Name: "Orbit Corp"},
		}},
	}

	clusters := Organisations(refs)
	if len(clusters) != 1 {
		t.Fatalf("Organisations() = %d clusters, want 1", len(clusters))
	}
	wantTypes := map[string]int{"company": 1}
	if !reflect.DeepEqual(clusters[0].Metadata.Types, wantTypes) {
		t.Errorf("Types = %v, want the retyped member excluded", clusters[0].Metadata.Types)
	}
}

func TestTopEntities(t *testing.T) {
	values := []string{"venue a", "venue b", "venue a", "", "venue c", "venue b", "venue a"}

	got := TopEntities(values, 2)
	want := []Entity{{Value: "venue a", Count: 3}, {Value: "venue b", Count: 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopEntities(n=2) = %v, want %v", got, want)
	}

	all := TopEntities(values, 10)
	if len(all) != 3 {
		t.Errorf("TopEntities(n=10) = %v, want empty values skipped", all)
	}
	if all[2].Value != "venue c" || all[2].Count != 1 {
		t.Errorf("last entity = %+v", all[2])
	}
}
