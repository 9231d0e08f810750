package api

import (
	"time"

	"github.com/rmarques/leadchat/internal/domain"
)

// Action types the backend is known to emit. Anything else is treated
// as ActionUnrecognized and handled like a plain reply.
const (
	ActionOfferSlots      = "OFFER_SLOTS"
	ActionConfirmSchedule = "CONFIRM_SCHEDULE"
	ActionSessionExpired  = "SESSION_EXPIRED"
	ActionAsk             = "ASK"
)

// ActionKind is the closed classification of a chat response.
type ActionKind int

const (
	ActionUnrecognized ActionKind = iota
	ActionKindOfferSlots
	ActionKindSessionExpired
)

// WireSlot is a slot as it appears on the wire, with ISO-8601 instants.
type WireSlot struct {
	ID    string `json:"id"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// WireAction is the loosely-typed action envelope on a chat response.
type WireAction struct {
	Type  string     `json:"type,omitempty"`
	Reply string     `json:"reply,omitempty"`
	Slots []WireSlot `json:"slots,omitempty"`
}

// ChatResponse is the backend's reply to a send call.
type ChatResponse struct {
	Reply     string      `json:"reply,omitempty"`
	Action    *WireAction `json:"action,omitempty"`
	SessionID string      `json:"sessionId,omitempty"`
}

// Classify folds the loosely-typed action into the closed kind set.
// ASK, CONFIRM_SCHEDULE, an unknown type, and no action at all are all
// plain replies.
func (r *ChatResponse) Classify() ActionKind {
	if r.Action == nil {
		return ActionUnrecognized
	}
	switch r.Action.Type {
	case ActionOfferSlots:
		return ActionKindOfferSlots
	case ActionSessionExpired:
		return ActionKindSessionExpired
	default:
		return ActionUnrecognized
	}
}

// ReplyText returns the most specific reply text on the response: the
// action's reply wins over the top-level one.
func (r *ChatResponse) ReplyText() string {
	if r.Action != nil && r.Action.Reply != "" {
		return r.Action.Reply
	}
	return r.Reply
}

// OfferedSlots converts the wire slots to domain slots. Slots whose
// instants do not parse are dropped rather than offered with zero times.
func (r *ChatResponse) OfferedSlots() domain.SlotOffer {
	if r.Action == nil || len(r.Action.Slots) == 0 {
		return nil
	}
	offer := make(domain.SlotOffer, 0, len(r.Action.Slots))
	for _, ws := range r.Action.Slots {
		start, err := time.Parse(time.RFC3339, ws.Start)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, ws.End)
		if err != nil {
			continue
		}
		offer = append(offer, domain.Slot{ID: ws.ID, Start: start, End: end})
	}
	if len(offer) == 0 {
		return nil
	}
	return offer
}

// ReserveResponse is the backend's reply to a reserve call.
type ReserveResponse struct {
	MeetingLink     string `json:"meetingLink"`
	MeetingDatetime string `json:"meetingDatetime,omitempty"`
	BookingID       string `json:"bookingId,omitempty"`
}

// TimeWindow optionally pins the reserved slot's exact instants.
type TimeWindow struct {
	StartISO string `json:"startIso,omitempty"`
	EndISO   string `json:"endIso,omitempty"`
}
