package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/luiscosio/CiteIQ/internal/citation"
	"github.com/luiscosio/CiteIQ/internal/cluster"
)

// topEntityCount caps the top-author and top-organisation tables.
const topEntityCount = 10

// topicKeywordLimit caps the keywords shown per topic cluster line.
const topicKeywordLimit = 5

// Data bundles everything the Markdown report draws from. DuplicatePairs
// holds each flagged pair's title-or-raw text, resolved before any sorting
// reordered the records.
type Data struct {
	RunID          string
	Records        []*citation.Record
	AuthorClusters []cluster.Summary
	OrgClusters    []cluster.Summary
	TopicClusters  []cluster.Summary
	DuplicatePairs [][2]string
}

// Markdown renders the reference quality report: summary counts, top
// entities, duplicate pairs, cluster sections, and the flagged references
// ordered by descending score.
func Markdown(data Data) string {
	var lines []string
	add := func(s string) { lines = append(lines, s) }

	add("# CiteIQ Reference Quality Report")
	add("")
	if data.RunID != "" {
		add(fmt.Sprintf("_Run %s_", data.RunID))
		add("")
	}

	flagged, preprints, retracted := 0, 0, 0
	for _, record := range data.Records {
		if len(record.Flags) > 0 {
			flagged++
		}
		if record.Reference.IsPreprint != nil && *record.Reference.IsPreprint {
			preprints++
		}
		if record.HasFlag(citation.FlagRetracted) {
			retracted++
		}
	}
	add(fmt.Sprintf("- Total references: **%d**", len(data.Records)))
	add(fmt.Sprintf("- References with flags: **%d**", flagged))
	add(fmt.Sprintf("- Preprints: **%d**", preprints))
	add(fmt.Sprintf("- Retracted: **%d**", retracted))
	add(fmt.Sprintf("- Possible duplicate pairs: **%d**", len(data.DuplicatePairs)))
	add("")

	add("## Top Authors")
	var authorNames []string
	for _, record := range data.Records {
		for _, author := range record.Reference.Authors {
			authorNames = append(authorNames, author.Name)
		}
	}
	if counts := cluster.TopEntities(authorNames, topEntityCount); len(counts) > 0 {
		add(entityTable("Author", counts))
	} else {
		add("_No authors available._")
	}
	add("")

	add("## Top Organisations")
	var orgNames []string
	for _, record := range data.Records {
		for _, aff := range record.Reference.Affiliations {
			orgNames = append(orgNames, aff.Name)
		}
	}
	if counts := cluster.TopEntities(orgNames, topEntityCount); len(counts) > 0 {
		add(entityTable("Organisation", counts))
	} else {
		add("_No organisation data available._")
	}
	add("")

	if len(data.DuplicatePairs) > 0 {
		add("## Duplicate Pairs")
		rows := make([][]string, 0, len(data.DuplicatePairs))
		for _, pair := range data.DuplicatePairs {
			rows = append(rows, []string{pair[0], pair[1]})
		}
		add(markdownTable([]string{"Reference", "Possible Duplicate"}, rows))
		add("")
	}

	if len(data.AuthorClusters) > 0 {
		add("## Author Clusters")
		for _, c := range data.AuthorClusters {
			add(fmt.Sprintf("- **%s** (%d members): %s", c.Label, c.Size, strings.Join(c.Members, ", ")))
		}
		add("")
	}

	if len(data.OrgClusters) > 0 {
		add("## Organisation Clusters")
		for _, c := range data.OrgClusters {
			suffix := ""
			if len(c.Metadata.Types) > 0 {
				suffix = " (" + typeHistogram(c.Metadata.Types) + ")"
			}
			add(fmt.Sprintf("- **%s** (%d organisations%s): %s", c.Label, c.Size, suffix, strings.Join(c.Members, ", ")))
		}
		add("")
	}

	if len(data.TopicClusters) > 0 {
		add("## Topic Clusters")
		for _, c := range data.TopicClusters {
			keywords := c.Metadata.Keywords
			if len(keywords) > topicKeywordLimit {
				keywords = keywords[:topicKeywordLimit]
			}
			add(fmt.Sprintf("- **%s** (%d items; keywords: %s)", c.Label, c.Size, strings.Join(keywords, ", ")))
		}
		add("")
	}

	add("## High-Risk References")
	var rows [][]string
	for _, record := range byScore(data.Records) {
		if len(record.Flags) == 0 {
			continue
		}
		title := record.Reference.Title
		if title == "" {
			title = record.Reference.Raw
		}
		year := "n.d."
		if record.Reference.Year != 0 {
			year = strconv.Itoa(record.Reference.Year)
		}
		flagNames := make([]string, 0, len(record.Flags))
		for _, flag := range record.Flags {
			flagNames = append(flagNames, string(flag))
		}
		rows = append(rows, []string{title, year, formatScore(record.Score.Total()), strings.Join(flagNames, "; ")})
	}
	if len(rows) == 0 {
		add("No risky references detected.")
	} else {
		add(markdownTable([]string{"Reference", "Year", "Score", "Flags"}, rows))
	}

	return strings.Join(lines, "\n") + "\n"
}

func entityTable(kind string, entities []cluster.Entity) string {
	rows := make([][]string, 0, len(entities))
	for _, entity := range entities {
		rows = append(rows, []string{entity.Value, strconv.Itoa(entity.Count)})
	}
	return markdownTable([]string{kind, "References"}, rows)
}

// typeHistogram renders an organisation type histogram with sorted keys.
func typeHistogram(types map[string]int) string {
	keys := make([]string, 0, len(types))
	for k := range types {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %d", k, types[k]))
	}
	return strings.Join(parts, ", ")
}

func markdownTable(headers []string, rows [][]string) string {
	tw := table.NewWriter()
	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)
	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		tw.AppendRow(r)
	}
	return tw.RenderMarkdown()
}
