package domain

import "time"

// Slot is a meeting time window proposed by the server. Slots are never
// mutated client-side.
type Slot struct {
	ID    string    `json:"id"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SlotOffer is the ordered list of slots currently offered for
// selection, or nil when no offer is active. A new offer always
// replaces the previous one wholesale.
type SlotOffer []Slot
