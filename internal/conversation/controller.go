// Package conversation implements the turn-by-turn dialogue state
// machine: it submits user turns to the chat backend, classifies
// responses, maintains the message log and the active slot offer, and
// coordinates session rotation and expiry with the cache.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rmarques/leadchat/internal/api"
	"github.com/rmarques/leadchat/internal/cache"
	"github.com/rmarques/leadchat/internal/domain"
	"github.com/rmarques/leadchat/internal/logging"
	"github.com/rmarques/leadchat/internal/session"
)

// State of the conversation controller.
type State string

const (
	StateIdle              State = "idle"
	StateAwaitingResponse  State = "awaiting_response"
	StateAwaitingSelection State = "awaiting_slot_selection"
	StateExpired           State = "session_expired"
)

var (
	// ErrBusy rejects calls while a network turn is in flight.
	ErrBusy = errors.New("a turn is already in flight")

	// ErrSessionExpired rejects calls after the server expired the
	// session; only an external restart recovers.
	ErrSessionExpired = errors.New("session expired")

	// ErrAwaitingSelection rejects Submit while a slot offer is
	// pending selection.
	ErrAwaitingSelection = errors.New("a slot offer is awaiting selection")

	// ErrNoOffer rejects PickSlot when no slot offer is active.
	ErrNoOffer = errors.New("no slot offer to pick from")
)

// User-visible fallback texts, mirroring the backend's tone.
const (
	expiredNotice  = "Sua sessão expirou por inatividade. Por favor, recarregue a página para iniciar uma nova conversa."
	offerFallback  = "Perfeito! Esses horários funcionam pra você?"
	replyFallback  = "Certo."
	sendFailure    = "Desculpe, tive um problema de conexão. Pode tentar de novo?"
	reserveFailure = "Não consegui reservar esse horário. Pode escolher outro, por favor?"
)

// Controller owns one conversation: its state, message log, slot offer,
// and active session id. One outstanding network call at a time is
// enforced by the AwaitingResponse state.
type Controller struct {
	client   api.Client
	cache    *cache.Cache
	identity *session.IdentityManager
	log      *logging.Logger

	mu        sync.Mutex
	state     State
	sessionID string
	messages  []domain.Message
	offer     domain.SlotOffer

	// turn counts outbound calls; a response whose number no longer
	// matches is stale and discarded.
	turn uint64

	onOfferChange func(domain.SlotOffer)
}

// New creates a controller, restoring the session id and any cached
// history for it.
func New(client api.Client, msgCache *cache.Cache, identity *session.IdentityManager, log *logging.Logger) *Controller {
	c := &Controller{
		client:   client,
		cache:    msgCache,
		identity: identity,
		log:      log.Sub("conversation"),
		state:    StateIdle,
	}
	c.sessionID = identity.GetOrCreate()
	c.messages = msgCache.Load(c.sessionID)
	return c
}

// SetOfferChangeHook registers a callback invoked with the new offer
// (nil when cleared) after every offer mutation. The callback runs
// outside the controller's lock and may call back into the controller.
func (c *Controller) SetOfferChangeHook(hook func(domain.SlotOffer)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onOfferChange = hook
}

// Submit sends one user turn. Blank text is silently ignored. Allowed
// only from Idle; transport failures are absorbed into a bot message
// and a return to Idle, never surfaced as an error.
func (c *Controller) Submit(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	c.mu.Lock()
	switch c.state {
	case StateExpired:
		c.mu.Unlock()
		return ErrSessionExpired
	case StateAwaitingResponse:
		c.mu.Unlock()
		return ErrBusy
	case StateAwaitingSelection:
		c.mu.Unlock()
		return ErrAwaitingSelection
	}

	c.messages = append(c.messages, domain.UserMessage(text))
	c.state = StateAwaitingResponse
	seq := c.nextTurn()
	sid := c.sessionID
	c.mu.Unlock()

	resp, err := c.client.Send(ctx, text, sid)

	c.mu.Lock()
	if c.turn != seq {
		c.mu.Unlock()
		c.log.Warn().Uint64("turn", seq).Msg("discarding stale send response")
		return nil
	}

	if err != nil {
		c.log.Warn().Err(err).Msg("send failed")
		c.messages = append(c.messages, domain.BotMessage(sendFailure))
		c.state = StateIdle
		c.cache.Save(c.sessionID, c.messages)
		c.mu.Unlock()
		return nil
	}

	notify := c.applyResponse(resp)
	c.mu.Unlock()

	if notify != nil {
		notify()
	}
	return nil
}

// applyResponse classifies resp, updates log/offer/state, handles
// session rotation, and persists. Called with the lock held; returns
// the offer-change notification to run after unlock, if any.
func (c *Controller) applyResponse(resp *api.ChatResponse) func() {
	oldID := c.sessionID

	switch resp.Classify() {
	case api.ActionKindSessionExpired:
		c.cache.Clear(oldID)
		text := resp.ReplyText()
		if text == "" {
			text = expiredNotice
		}
		c.messages = []domain.Message{domain.BotMessage(text)}
		c.offer = nil
		c.state = StateExpired
		c.log.Info().Str("session", oldID).Msg("session expired")
		return c.offerNotification()

	case api.ActionKindOfferSlots:
		text := resp.ReplyText()
		if text == "" {
			text = offerFallback
		}
		c.messages = append(c.messages, domain.BotMessage(text))
		c.offer = resp.OfferedSlots()
		if len(c.offer) == 0 {
			// An offer with no usable slots is a plain reply.
			c.state = StateIdle
		} else {
			c.state = StateAwaitingSelection
		}

	default:
		text := resp.ReplyText()
		if text == "" {
			text = replyFallback
		}
		c.messages = append(c.messages, domain.BotMessage(text))
		c.offer = nil
		c.state = StateIdle
	}

	// Rotation: move the just-updated log under the server's id before
	// anything observes the old one.
	if resp.SessionID != "" && resp.SessionID != oldID {
		c.cache.Save(resp.SessionID, c.messages)
		c.cache.Clear(oldID)
		c.identity.Adopt(resp.SessionID)
		c.sessionID = resp.SessionID
	}

	c.cache.Save(c.sessionID, c.messages)
	return c.offerNotification()
}

// PickSlot reserves the given offered slot. Allowed only while a slot
// offer is awaiting selection. On failure the offer is preserved so the
// user may retry with another slot.
func (c *Controller) PickSlot(ctx context.Context, slotID string, start, end time.Time) error {
	c.mu.Lock()
	switch c.state {
	case StateExpired:
		c.mu.Unlock()
		return ErrSessionExpired
	case StateAwaitingResponse:
		c.mu.Unlock()
		return ErrBusy
	case StateIdle:
		c.mu.Unlock()
		return ErrNoOffer
	}

	c.state = StateAwaitingResponse
	seq := c.nextTurn()
	sid := c.sessionID
	c.mu.Unlock()

	window := api.TimeWindow{}
	if !start.IsZero() {
		window.StartISO = start.Format(time.RFC3339)
	}
	if !end.IsZero() {
		window.EndISO = end.Format(time.RFC3339)
	}

	resp, err := c.client.Reserve(ctx, slotID, sid, window)

	c.mu.Lock()
	if c.turn != seq {
		c.mu.Unlock()
		c.log.Warn().Uint64("turn", seq).Msg("discarding stale reserve response")
		return nil
	}

	if err != nil {
		c.log.Warn().Err(err).Str("slot", slotID).Msg("reserve failed")
		c.messages = append(c.messages, domain.BotMessage(reserveFailure))
		c.state = StateAwaitingSelection
		c.cache.Save(c.sessionID, c.messages)
		c.mu.Unlock()
		return nil
	}

	text := fmt.Sprintf("Prontinho! Sua reunião está confirmada. Aqui está o link: %s", resp.MeetingLink)
	c.messages = append(c.messages, domain.BotMessage(text))
	c.offer = nil
	c.state = StateIdle
	c.cache.Save(c.sessionID, c.messages)
	notify := c.offerNotification()
	c.mu.Unlock()

	if notify != nil {
		notify()
	}
	return nil
}

// CancelOffer discards the pending slot offer and returns to Idle.
// No-op outside slot selection.
func (c *Controller) CancelOffer() {
	c.mu.Lock()
	if c.state != StateAwaitingSelection {
		c.mu.Unlock()
		return
	}
	c.offer = nil
	c.state = StateIdle
	notify := c.offerNotification()
	c.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// nextTurn advances the turn counter. Lock must be held.
func (c *Controller) nextTurn() uint64 {
	c.turn++
	return c.turn
}

// offerNotification captures the hook call for the current offer.
// Lock must be held; the returned func runs after unlock.
func (c *Controller) offerNotification() func() {
	if c.onOfferChange == nil {
		return nil
	}
	hook := c.onOfferChange
	offer := append(domain.SlotOffer(nil), c.offer...)
	if len(offer) == 0 {
		offer = nil
	}
	return func() { hook(offer) }
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a network turn is in flight.
func (c *Controller) Busy() bool {
	return c.State() == StateAwaitingResponse
}

// SessionID returns the active session id.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Messages returns a copy of the conversation log in chat order.
func (c *Controller) Messages() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Message(nil), c.messages...)
}

// Offer returns a copy of the active slot offer, or nil.
func (c *Controller) Offer() domain.SlotOffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.offer) == 0 {
		return nil
	}
	return append(domain.SlotOffer(nil), c.offer...)
}
