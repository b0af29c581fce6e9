package impel

import "sort"

// ContactState is the lifecycle phase of a touching pair.
type ContactState uint8

const (
	// ContactBegan fires on the first tick a pair touches.
	ContactBegan ContactState = iota
	// ContactPersisted fires on every subsequent tick the pair stays
	// touching.
	ContactPersisted
	// ContactEnded fires on the first tick a previously touching pair no
	// longer touches.
	ContactEnded
)

func (s ContactState) String() string {
	switch s {
	case ContactBegan:
		return "began"
	case ContactPersisted:
		return "persisted"
	case ContactEnded:
		return "ended"
	}
	return "unknown"
}

// ContactEvent reports a lifecycle transition for one entity pair.
type ContactEvent struct {
	Pair  Pair
	State ContactState
}

// DiffPairs compares the previous tick's touching set against the current
// one and emits the lifecycle events, sorted by pair. A pair touching for n
// consecutive ticks yields exactly one Began, n-1 Persisted and one Ended.
func DiffPairs(prev, cur PairSet) []ContactEvent {
	events := make([]ContactEvent, 0, len(cur)+len(prev))

	for p := range cur {
		if _, ok := prev[p]; ok {
			events = append(events, ContactEvent{Pair: p, State: ContactPersisted})
		} else {
			events = append(events, ContactEvent{Pair: p, State: ContactBegan})
		}
	}
	for p := range prev {
		if _, ok := cur[p]; !ok {
			events = append(events, ContactEvent{Pair: p, State: ContactEnded})
		}
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].Pair != events[j].Pair {
			return events[i].Pair.Less(events[j].Pair)
		}
		return events[i].State < events[j].State
	})
	return events
}
