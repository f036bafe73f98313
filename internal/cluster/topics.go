package cluster

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/luiscosio/CiteIQ/internal/reference"
	"github.com/luiscosio/CiteIQ/internal/similarity"
)

// topicKeywordCount caps how many keywords a topic cluster reports.
const topicKeywordCount = 10

// stopwords is a trimmed english function-word list; tokens under three
// runes are dropped before the lookup, so shorter entries are omitted.
var stopwords = func() map[string]struct{} {
	words := strings.Fields(`
		about above after again against all also among and any are because
		been before being below between both but can could did does down
		during each few for from further had has have having her here his
		how however into its more most nor not off once only other our out
		over own same she should some such than that the their them then
		there these they this those through too under until upon very
		was were what when where which while who whom why will with within
		without would you your`)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()

type document struct {
	ref   int
	terms map[string]bool
}

// Topics groups references by their dominant keyword over title and abstract
// text. The desiredK most widespread keywords seed the groups and each
// reference joins the highest-ranked seed its text contains, so at most
// desiredK groups come back. References without usable text, or without any
// seed keyword, stay ungrouped. Fewer than two usable references yield no
// groups.
func Topics(refs []reference.Reference, desiredK int) []Summary {
	var docs []document
	for idx, ref := range refs {
		text := strings.TrimSpace(ref.Title + " " + ref.Abstract)
		if text == "" {
			continue
		}
		docs = append(docs, document{ref: idx, terms: keywordSet(text)})
	}
	if len(docs) < 2 {
		return nil
	}

	k := desiredK
	if k > len(docs) {
		k = len(docs)
	}

	docFreq := make(map[string]int)
	for _, doc := range docs {
		for term := range doc.terms {
			docFreq[term]++
		}
	}
	seeds := make([]string, 0, len(docFreq))
	for term := range docFreq {
		seeds = append(seeds, term)
	}
	sort.Slice(seeds, func(i, j int) bool {
		if docFreq[seeds[i]] != docFreq[seeds[j]] {
			return docFreq[seeds[i]] > docFreq[seeds[j]]
		}
		return seeds[i] < seeds[j]
	})
	if len(seeds) > k {
		seeds = seeds[:k]
	}

	groups := make([][]int, len(seeds))
	for d, doc := range docs {
		for s, seed := range seeds {
			if doc.terms[seed] {
				groups[s] = append(groups[s], d)
				break
			}
		}
	}

	var clusters []Summary
	for s := range seeds {
		if len(groups[s]) == 0 {
			continue
		}
		members := make([]string, 0, len(groups[s]))
		for _, d := range groups[s] {
			ref := refs[docs[d].ref]
			member := ref.Title
			if member == "" {
				member = ref.Raw
			}
			members = append(members, member)
		}
		clusters = append(clusters, Summary{
			Label:    fmt.Sprintf("Topic Cluster %d", s+1),
			Members:  members,
			Size:     len(members),
			Metadata: Metadata{Keywords: groupKeywords(docs, groups[s])},
		})
	}
	return clusters
}

// keywordSet tokenizes text the way similarity scoring does and keeps terms
// of at least three runes that are not stopwords.
func keywordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range similarity.Tokens(text) {
		if utf8.RuneCountInString(token) < 3 {
			continue
		}
		if _, ok := stopwords[token]; ok {
			continue
		}
		set[token] = true
	}
	return set
}

// groupKeywords ranks a group's terms by how many of its documents carry
// them, keeping the most frequent few.
func groupKeywords(docs []document, group []int) []string {
	counts := make(map[string]int)
	for _, d := range group {
		for term := range docs[d].terms {
			counts[term]++
		}
	}
	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > topicKeywordCount {
		terms = terms[:topicKeywordCount]
	}
	return terms
}
