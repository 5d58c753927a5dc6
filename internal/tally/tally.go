// Handles turning lists of contributions into shares of ownership.
package tally

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"strings"
)

// The fraction of a signal's contributions attributed to one author.
type Share struct {
	Author   string
	Fraction float64
}

func (s Share) String() string {
	return fmt.Sprintf("%s: %.3f", s.Author, s.Fraction)
}

// Mapping of author to fraction that remembers the order authors were added
// in. Ranking breaks ties using this order.
//
// The zero value is an empty mapping.
type Shares struct {
	order     []string
	fractions map[string]float64
}

// Builds a mapping from the given shares, in order. Later duplicates replace
// the fraction of earlier ones but keep their position.
func NewShares(shares ...Share) Shares {
	var s Shares
	for _, share := range shares {
		s.set(share.Author, share.Fraction)
	}

	return s
}

func (s *Shares) set(author string, fraction float64) {
	if s.fractions == nil {
		s.fractions = map[string]float64{}
	}

	if _, ok := s.fractions[author]; !ok {
		s.order = append(s.order, author)
	}

	s.fractions[author] = fraction
}

func (s Shares) Len() int {
	return len(s.order)
}

// Returns the fraction for author, or zero if the author has none.
func (s Shares) Get(author string) float64 {
	return s.fractions[author]
}

func (s Shares) Lookup(author string) (float64, bool) {
	fraction, ok := s.fractions[author]
	return fraction, ok
}

// Iterates over authors and their fractions in insertion order.
func (s Shares) All() iter.Seq2[string, float64] {
	return func(yield func(string, float64) bool) {
		for _, author := range s.order {
			if !yield(author, s.fractions[author]) {
				return
			}
		}
	}
}

// Sum of all fractions. Should be 1 give or take rounding, unless empty.
func (s Shares) Total() float64 {
	var total float64
	for _, fraction := range s.All() {
		total += fraction
	}

	return total
}

func (s Shares) String() string {
	var b strings.Builder
	b.WriteString("{")
	i := 0
	for author, fraction := range s.All() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(Share{Author: author, Fraction: fraction}.String())
		i += 1
	}
	b.WriteString("}")
	return b.String()
}

// Turns a list of author identifiers, one per contribution, into shares.
//
// Authors are ordered by number of contributions, most first, with ties in the
// order each author first appears. An empty list gives an empty mapping.
func Count(authors []string) Shares {
	counts := map[string]int{}
	firstSeen := []string{}
	for _, author := range authors {
		if _, ok := counts[author]; !ok {
			firstSeen = append(firstSeen, author)
		}

		counts[author] += 1
	}

	slices.SortStableFunc(firstSeen, func(a, b string) int {
		return cmp.Compare(counts[b], counts[a])
	})

	var shares Shares
	total := float64(len(authors))
	for _, author := range firstSeen {
		shares.set(author, float64(counts[author])/total)
	}

	return shares
}

// Averages two share mappings with equal weight.
//
// An author missing from one mapping counts as having zero share there. The
// result lists the authors of a first, then any authors only found in b.
func Blend(a, b Shares) Shares {
	var blended Shares
	for author, fraction := range a.All() {
		blended.set(author, fraction/2)
	}

	for author, fraction := range b.All() {
		blended.set(author, blended.Get(author)+fraction/2)
	}

	return blended
}

// Shares sorted by fraction, largest first.
type Ranking []Share

// Returns the highest ranked share, if there is one.
func (r Ranking) Top() (Share, bool) {
	if len(r) == 0 {
		return Share{}, false
	}

	return r[0], true
}

// Sorts shares by fraction descending. Ties keep insertion order.
func Rank(shares Shares) Ranking {
	ranking := make(Ranking, 0, shares.Len())
	for author, fraction := range shares.All() {
		ranking = append(ranking, Share{Author: author, Fraction: fraction})
	}

	slices.SortStableFunc(ranking, func(a, b Share) int {
		return cmp.Compare(b.Fraction, a.Fraction)
	})
	return ranking
}
