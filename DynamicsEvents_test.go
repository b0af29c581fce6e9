package impel_test

import (
	"testing"

	"github.com/impel-physics/impel"
)

func pairSet(pairs ...impel.Pair) impel.PairSet {
	s := make(impel.PairSet, len(pairs))
	for _, p := range pairs {
		s[p] = struct{}{}
	}
	return s
}

func TestDiffPairs(t *testing.T) {
	p12 := impel.MakePair(1, 2)
	p13 := impel.MakePair(1, 3)
	p23 := impel.MakePair(2, 3)

	prev := pairSet(p12, p13)
	cur := pairSet(p13, p23)

	events := impel.DiffPairs(prev, cur)
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3: %v", len(events), events)
	}

	want := []impel.ContactEvent{
		{Pair: p12, State: impel.ContactEnded},
		{Pair: p13, State: impel.ContactPersisted},
		{Pair: p23, State: impel.ContactBegan},
	}
	for i, e := range events {
		if e != want[i] {
			t.Errorf("event %d = %v, want %v", i, e, want[i])
		}
	}
}

func TestDiffPairsEmpty(t *testing.T) {
	if events := impel.DiffPairs(nil, nil); len(events) != 0 {
		t.Errorf("empty diff produced %v", events)
	}

	p := impel.MakePair(1, 2)
	events := impel.DiffPairs(nil, pairSet(p))
	if len(events) != 1 || events[0].State != impel.ContactBegan {
		t.Errorf("got %v, want a single begin", events)
	}
	events = impel.DiffPairs(pairSet(p), nil)
	if len(events) != 1 || events[0].State != impel.ContactEnded {
		t.Errorf("got %v, want a single end", events)
	}
}

func TestContactStateString(t *testing.T) {
	if impel.ContactBegan.String() != "began" ||
		impel.ContactPersisted.String() != "persisted" ||
		impel.ContactEnded.String() != "ended" {
		t.Error("unexpected contact state names")
	}
}
