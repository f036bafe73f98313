// Package cluster groups references by shared authors, organisations, and
// topic keywords.
package cluster

import (
	"fmt"
	"sort"

	"github.com/luiscosio/CiteIQ/internal/reference"
)

// minCommunitySize drops singleton communities from author and organisation
// clusters.
const minCommunitySize = 2

// Metadata carries the per-kind extras of a cluster summary.
type Metadata struct {
	Types    map[string]int `json:"types,omitempty"`
	Keywords []string       `json:"keywords,omitempty"`
}

// Summary describes one cluster: a label, its sorted members, and per-kind
// metadata.
type Summary struct {
	Label    string   `json:"label"`
	Members  []string `json:"members"`
	Size     int      `json:"size"`
	Metadata Metadata `json:"metadata"`
}

// Entity is a value with its occurrence count.
type Entity struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Authors groups authors that publish together. Each reference's author list
// forms a clique in a co-occurrence graph; clusters are the connected
// components with at least two members.
func Authors(refs []reference.Reference) []Summary {
	g := newGraph()
	for _, ref := range refs {
		var names []string
		for _, author := range ref.Authors {
			if author.Name != "" {
				names = append(names, author.Name)
			}
		}
		addClique(g, names)
	}

	var clusters []Summary
	for idx, members := range g.components() {
		if len(members) < minCommunitySize {
			continue
		}
		clusters = append(clusters, Summary{
			Label:   fmt.Sprintf("Author Cluster %d", idx+1),
			Members: members,
			Size:    len(members),
		})
	}
	return clusters
}

// Organisations groups affiliations that appear on the same references. The
// metadata carries a histogram of organisation types across each cluster's
// members. When an organisation shows up with different types, the last
// occurrence wins.
func Organisations(refs []reference.Reference) []Summary {
	g := newGraph()
	types := make(map[string]string)
	for _, ref := range refs {
		var names []string
		for _, aff := range ref.Affiliations {
			if aff.Name == "" {
				continue
			}
			names = append(names, aff.Name)
			types[aff.Name] = aff.Type
		}
		addClique(g, names)
	}

	var clusters []Summary
	for idx, members := range g.components() {
		if len(members) < minCommunitySize {
			continue
		}
		histogram := make(map[string]int)
		for _, member := range members {
			if t := types[member]; t != "" {
				histogram[t]++
			}
		}
		if len(histogram) == 0 {
			histogram = nil
		}
		clusters = append(clusters, Summary{
			Label:    fmt.Sprintf("Organisation Cluster %d", idx+1),
			Members:  members,
			Size:     len(members),
			Metadata: Metadata{Types: histogram},
		})
	}
	return clusters
}

// TopEntities tallies non-empty values and returns the n most frequent,
// with ties broken alphabetically.
func TopEntities(values []string, n int) []Entity {
	counts := make(map[string]int)
	for _, v := range values {
		if v != "" {
			counts[v]++
		}
	}
	entities := make([]Entity, 0, len(counts))
	for v, c := range counts {
		entities = append(entities, Entity{Value: v, Count: c})
	}
	sort.Slice(entities, func(i, j int) bool {
		if entities[i].Count != entities[j].Count {
			return entities[i].Count > entities[j].Count
		}
		return entities[i].Value < entities[j].Value
	})
	if len(entities) > n {
		entities = entities[:n]
	}
	return entities
}

// graph is an undirected co-occurrence graph with edge weights counting how
// often two nodes appear together.
type graph struct {
	adj map[string]map[string]int
}

func newGraph() *graph {
	return &graph{adj: make(map[string]map[string]int)}
}

func (g *graph) addNode(name string) {
	if _, ok := g.adj[name]; !ok {
		g.adj[name] = make(map[string]int)
	}
}

func (g *graph) addEdge(a, b string) {
	g.addNode(a)
	g.addNode(b)
	g.adj[a][b]++
	g.adj[b][a]++
}

// addClique adds every node and pairwise edge of one reference's name list.
func addClique(g *graph, names []string) {
	for _, name := range names {
		g.addNode(name)
	}
	for i, a := range names {
		for _, b := range names[i+1:] {
			g.addEdge(a, b)
		}
	}
}

// components returns the connected components, each with sorted members,
// ordered by size descending then by first member.
func (g *graph) components() [][]string {
	names := make([]string, 0, len(g.adj))
	for name := range g.adj {
		names = append(names, name)
	}
	sort.Strings(names)

	visited := make(map[string]bool, len(names))
	var comps [][]string

	for _, start := range names {
		if visited[start] {
			continue
		}
		visited[start] = true
		var members []string
		queue := []string{start}
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			members = append(members, node)
			for neighbor := range g.adj[node] {
				if !visited[neighbor] {
					visited[neighbor] = true
					queue = append(queue, neighbor)
				}
			}
		}
		sort.Strings(members)
		comps = append(comps, members)
	}

	sort.SliceStable(comps, func(i, j int) bool {
		if len(comps[i]) != len(comps[j]) {
			return len(comps[i]) > len(comps[j])
		}
		return comps[i][0] < comps[j][0]
	})
	return comps
}
