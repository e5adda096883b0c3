// Package dupes reports exact and fuzzy duplicate groups across the whole
// catalog. The exact pass groups by content hash; the fuzzy pass links
// entries whose normalized filenames are within an edit-distance threshold
// and merges links transitively.
package dupes

import (
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/chaiji/libman/internal/store"
)

// Kind distinguishes how a group was linked
type Kind string

const (
	KindExact Kind = "exact"
	KindFuzzy Kind = "fuzzy"
)

// DefaultRatio is the default edit-distance budget as a fraction of the
// longer normalized name. 0.3 mirrors a normalized-similarity cutoff of 0.7.
const DefaultRatio = 0.3

// Group is one set of entries believed to be duplicates. Exact members may
// also appear in fuzzy groups; the two kinds are not mutually exclusive.
type Group struct {
	Kind    Kind
	Hash    string // set for exact groups
	Members []store.Key
}

// Options configures the fuzzy pass
type Options struct {
	// MaxDistance is an absolute Levenshtein cutoff. When zero, the cutoff
	// for a pair is floor(Ratio * longer-name-length).
	MaxDistance int
	Ratio       float64
}

// Detector finds duplicate groups over the entry store
type Detector struct {
	store *store.Store
	opts  Options
}

// New creates a Detector
func New(s *store.Store, opts Options) *Detector {
	if opts.Ratio <= 0 {
		opts.Ratio = DefaultRatio
	}
	return &Detector{store: s, opts: opts}
}

// Find reports all duplicate groups, ordered by descending member count and
// then by the group's lexicographically smallest key, so output is diffable
// across runs.
func (d *Detector) Find() ([]Group, error) {
	entries, err := d.store.All()
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	return findGroups(entries, d.opts), nil
}

func findGroups(entries []*store.Entry, opts Options) []Group {
	if opts.Ratio <= 0 {
		opts.Ratio = DefaultRatio
	}

	// Entries flagged missing no longer exist on disk; reporting them as
	// duplicates of live files would only produce dead links.
	var live []*store.Entry
	for _, e := range entries {
		if !e.Missing {
			live = append(live, e)
		}
	}

	groups := exactGroups(live)
	groups = append(groups, fuzzyGroups(live, opts)...)

	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].Members) != len(groups[j].Members) {
			return len(groups[i].Members) > len(groups[j].Members)
		}
		ki, kj := groups[i].Members[0].String(), groups[j].Members[0].String()
		if ki != kj {
			return ki < kj
		}
		return groups[i].Kind < groups[j].Kind
	})

	return groups
}

// exactGroups is a single linear pass with a hash-keyed grouping map.
// Entries with no hash yet are ineligible, not errors.
func exactGroups(entries []*store.Entry) []Group {
	byHash := make(map[string][]store.Key)
	for _, e := range entries {
		if e.ContentHash == "" {
			continue
		}
		byHash[e.ContentHash] = append(byHash[e.ContentHash], e.Key)
	}

	var groups []Group
	for hash, members := range byHash {
		if len(members) < 2 {
			continue
		}
		sortKeys(members)
		groups = append(groups, Group{Kind: KindExact, Hash: hash, Members: members})
	}
	return groups
}

type fuzzyCandidate struct {
	key   store.Key
	norm  string
	runes int // rune count of norm; edit distance is measured in runes
}

func fuzzyGroups(entries []*store.Entry, opts Options) []Group {
	var cands []fuzzyCandidate
	for _, e := range entries {
		norm := normalizeName(e.Filename)
		if norm == "" {
			continue
		}
		cands = append(cands, fuzzyCandidate{key: e.Key, norm: norm, runes: utf8.RuneCountInString(norm)})
	}

	// Length-sorted sliding window: two names whose lengths differ by more
	// than the pair's distance budget cannot match, and since later names
	// only get longer the inner loop can stop at the first such pair.
	// Lengths are rune counts, matching the units of the edit distance.
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].runes != cands[j].runes {
			return cands[i].runes < cands[j].runes
		}
		return cands[i].key.String() < cands[j].key.String()
	})

	uf := newUnionFind(len(cands))
	for i := 0; i < len(cands); i++ {
		for j := i + 1; j < len(cands); j++ {
			budget := pairBudget(opts, cands[j].runes)
			if cands[j].runes-cands[i].runes > budget {
				break
			}
			if levenshtein.ComputeDistance(cands[i].norm, cands[j].norm) <= budget {
				uf.union(i, j)
			}
		}
	}

	components := make(map[int][]store.Key)
	for i, c := range cands {
		root := uf.find(i)
		components[root] = append(components[root], c.key)
	}

	var groups []Group
	for _, members := range components {
		if len(members) < 2 {
			continue
		}
		sortKeys(members)
		groups = append(groups, Group{Kind: KindFuzzy, Members: members})
	}
	return groups
}

// pairBudget is the allowed edit distance for a pair whose longer normalized
// name has the given rune count
func pairBudget(opts Options, longer int) int {
	if opts.MaxDistance > 0 {
		return opts.MaxDistance
	}
	return int(math.Floor(opts.Ratio * float64(longer)))
}

func sortKeys(keys []store.Key) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
}

// unionFind merges pairwise links into transitive groups
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

func (uf *unionFind) union(i, j int) {
	ri, rj := uf.find(i), uf.find(j)
	if ri == rj {
		return
	}
	if uf.rank[ri] < uf.rank[rj] {
		ri, rj = rj, ri
	}
	uf.parent[rj] = ri
	if uf.rank[ri] == uf.rank[rj] {
		uf.rank[ri]++
	}
}
