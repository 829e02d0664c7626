package entities

// DateResult is the filtered outcome of one date query
type DateResult struct {
	Date  DateQuery
	Slots []Slot
}

// DateSlots is one entry of an AggregatedResult
type DateSlots struct {
	Label string
	Slots []Slot
}

// AggregatedResult maps date labels to their matching slots in query order.
// It never holds an entry with an empty slot list.
type AggregatedResult struct {
	entries []DateSlots
}

// Add appends an entry; empty slot lists are ignored
func (r *AggregatedResult) Add(label string, slots []Slot) {
	if len(slots) == 0 {
		return
	}
	r.entries = append(r.entries, DateSlots{Label: label, Slots: slots})
}

// Entries returns the entries in insertion order
func (r AggregatedResult) Entries() []DateSlots {
	return r.entries
}

// Get returns the slots for a label
func (r AggregatedResult) Get(label string) ([]Slot, bool) {
	for _, e := range r.entries {
		if e.Label == label {
			return e.Slots, true
		}
	}
	return nil, false
}

// IsEmpty reports whether no date had matching slots
func (r AggregatedResult) IsEmpty() bool {
	return len(r.entries) == 0
}

// SlotCount returns the total number of slots across dates
func (r AggregatedResult) SlotCount() int {
	n := 0
	for _, e := range r.entries {
		n += len(e.Slots)
	}
	return n
}
