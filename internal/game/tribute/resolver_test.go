package tribute

import (
	"testing"
)

func TestFindCoversTotal(t *testing.T) {
	hand := []Candidate{
		{Index: 0, Value: 3, Subtypes: []string{"fuoco"}},
		{Index: 1, Value: 2, Subtypes: []string{"acqua"}},
	}

	result := Find(hand, 4, "", 0)

	if !result.Success {
		t.Fatalf("expected successful payment, got: %s", result.Reason)
	}
	if result.Plan == nil {
		t.Fatal("expected payment plan")
	}
	if result.Plan.Total != 5 {
		t.Fatalf("expected total 5, got %d", result.Plan.Total)
	}
	if len(result.Plan.Indices) != 2 {
		t.Fatalf("expected both cards selected, got %v", result.Plan.Indices)
	}
}

func TestFindInsufficientValue(t *testing.T) {
	hand := []Candidate{
		{Index: 0, Value: 1, Subtypes: []string{"fuoco"}},
	}

	result := Find(hand, 4, "", 0)

	if result.Success {
		t.Fatal("expected payment to fail")
	}
	if result.Plan != nil {
		t.Fatal("expected no partial plan on failure")
	}
	if result.Reason == "" {
		t.Fatal("expected failure reason")
	}
}

func TestFindHighestValueFirst(t *testing.T) {
	hand := []Candidate{
		{Index: 0, Value: 1},
		{Index: 1, Value: 3},
		{Index: 2, Value: 2},
	}

	result := Find(hand, 3, "", 0)

	if !result.Success {
		t.Fatalf("expected successful payment, got: %s", result.Reason)
	}
	if len(result.Plan.Indices) != 1 || result.Plan.Indices[0] != 1 {
		t.Fatalf("expected the single value-3 card, got %v", result.Plan.Indices)
	}
}

func TestFindSubtypeMinimumFirst(t *testing.T) {
	hand := []Candidate{
		{Index: 0, Value: 3, Subtypes: []string{"acqua"}},
		{Index: 1, Value: 1, Subtypes: []string{"fuoco"}},
		{Index: 2, Value: 2, Subtypes: []string{"fuoco"}},
	}

	result := Find(hand, 4, "fuoco", 1)

	if !result.Success {
		t.Fatalf("expected successful payment, got: %s", result.Reason)
	}
	if result.Plan.SubtypeCount != 1 {
		t.Fatalf("expected 1 subtype card, got %d", result.Plan.SubtypeCount)
	}
	// The highest-value fuoco card is taken first, then the acqua 3 covers
	// the remaining total.
	if result.Plan.Indices[0] != 2 {
		t.Fatalf("expected fuoco value-2 card selected first, got %v", result.Plan.Indices)
	}
	if result.Plan.Indices[1] != 0 {
		t.Fatalf("expected acqua value-3 card selected second, got %v", result.Plan.Indices)
	}
}

func TestFindSubtypeShortage(t *testing.T) {
	hand := []Candidate{
		{Index: 0, Value: 3, Subtypes: []string{"acqua"}},
		{Index: 1, Value: 3, Subtypes: []string{"acqua"}},
	}

	result := Find(hand, 2, "fuoco", 1)

	if result.Success {
		t.Fatal("expected payment to fail on subtype shortage")
	}
	if result.Plan != nil {
		t.Fatal("expected no plan when the subtype minimum cannot be met")
	}
}

func TestFindSubtypeCardsCountTowardTotal(t *testing.T) {
	hand := []Candidate{
		{Index: 0, Value: 3, Subtypes: []string{"terra"}},
	}

	result := Find(hand, 3, "terra", 1)

	if !result.Success {
		t.Fatalf("expected successful payment, got: %s", result.Reason)
	}
	if len(result.Plan.Indices) != 1 {
		t.Fatalf("expected a single card to satisfy both constraints, got %v", result.Plan.Indices)
	}
}

func TestFindEqualValuesKeepHandOrder(t *testing.T) {
	hand := []Candidate{
		{Index: 0, Value: 2},
		{Index: 1, Value: 2},
		{Index: 2, Value: 2},
	}

	result := Find(hand, 6, "", 0)

	if !result.Success {
		t.Fatalf("expected successful payment, got: %s", result.Reason)
	}
	for i, idx := range result.Plan.Indices {
		if idx != i {
			t.Fatalf("expected stable hand order, got %v", result.Plan.Indices)
		}
	}
}

func TestFindZeroTotalWithSubtypeMin(t *testing.T) {
	hand := []Candidate{
		{Index: 0, Value: 1, Subtypes: []string{"luce"}},
	}

	result := Find(hand, 0, "luce", 1)

	if !result.Success {
		t.Fatalf("expected successful payment, got: %s", result.Reason)
	}
	if result.Plan.SubtypeCount != 1 {
		t.Fatalf("expected subtype card still selected, got %d", result.Plan.SubtypeCount)
	}
}

func TestFindEmptyHand(t *testing.T) {
	result := Find(nil, 1, "", 0)
	if result.Success {
		t.Fatal("expected failure on empty hand")
	}
}
