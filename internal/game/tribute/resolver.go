// Package tribute selects resource cards from a hand to pay a summon or
// special cost. The selection is a deliberate greedy approximation, not
// optimal change-making: bot behavior and UI payment suggestions depend on
// its exact ordering, so the ordering is part of the contract.
package tribute

import (
	"fmt"
	"sort"
)

// Candidate describes one hand card eligible for payment. Index refers back
// to the caller's hand ordering and is the identity of the card in the plan.
type Candidate struct {
	Index    int
	Value    int
	Subtypes []string
}

// HasSubtype reports whether the candidate carries the given element tag.
func (c Candidate) HasSubtype(subtype string) bool {
	for _, s := range c.Subtypes {
		if s == subtype {
			return true
		}
	}
	return false
}

// Plan is a satisfying payment: hand indices in selection order.
type Plan struct {
	Indices      []int
	Total        int
	SubtypeCount int
}

// Result reports a payment attempt. On failure Plan is nil and Reason names
// what could not be met; no partial payment is ever reported.
type Result struct {
	Success bool
	Plan    *Plan
	Reason  string
}

// Find computes a payment covering requiredTotal, with at least subtypeMin
// selected cards carrying the given subtype when subtype is non-empty.
//
// Selection order: subtype-matching cards highest value first until the
// subtype minimum is met, then remaining cards highest value first until the
// total is covered. Cards of equal value keep their hand order.
func Find(cands []Candidate, requiredTotal int, subtype string, subtypeMin int) *Result {
	ordered := make([]Candidate, len(cands))
	copy(ordered, cands)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Value > ordered[j].Value
	})

	selected := make([]int, 0, len(ordered))
	taken := make(map[int]bool, len(ordered))
	total := 0
	subtypeCount := 0

	if subtype != "" {
		for _, c := range ordered {
			if subtypeCount >= subtypeMin {
				break
			}
			if !c.HasSubtype(subtype) {
				continue
			}
			selected = append(selected, c.Index)
			taken[c.Index] = true
			total += c.Value
			subtypeCount++
		}
		if subtypeCount < subtypeMin {
			return &Result{
				Success: false,
				Reason:  fmt.Sprintf("insufficient %s cards (need %d, found %d)", subtype, subtypeMin, subtypeCount),
			}
		}
	}

	for _, c := range ordered {
		if total >= requiredTotal {
			break
		}
		if taken[c.Index] {
			continue
		}
		selected = append(selected, c.Index)
		taken[c.Index] = true
		total += c.Value
	}

	if total < requiredTotal {
		return &Result{
			Success: false,
			Reason:  fmt.Sprintf("insufficient value (need %d, have %d)", requiredTotal, total),
		}
	}

	return &Result{
		Success: true,
		Plan: &Plan{
			Indices:      selected,
			Total:        total,
			SubtypeCount: subtypeCount,
		},
	}
}
