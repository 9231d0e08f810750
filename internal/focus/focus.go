// Package focus tracks keyboard focus over the offered slot list so a
// UI can expose accessible navigation: circular next/previous, jump to
// the ends, and handing focus back to the text input.
package focus

import (
	"sync"

	"github.com/rmarques/leadchat/internal/logging"
)

// None is the sentinel for "no slot focused".
const None = -1

// Sinks receive focus-movement effects. Implementations move the real
// UI focus; FocusSlot may defer until the target element is rendered.
type Sinks struct {
	// FocusSlot moves focus to the slot at the given index.
	FocusSlot func(index int)

	// FocusInput hands focus back to the primary text input.
	FocusInput func()

	// CancelOffer asks the conversation controller to discard the
	// current offer.
	CancelOffer func()
}

// Controller maintains the focused index over the current offer.
// Invariant after every mutation: focused == None, or
// 0 <= focused < length.
type Controller struct {
	sinks Sinks
	log   *logging.Logger

	mu      sync.Mutex
	length  int
	focused int
}

// New creates a focus controller with no active offer. Nil sink
// functions are allowed and skipped.
func New(sinks Sinks, log *logging.Logger) *Controller {
	return &Controller{sinks: sinks, log: log.Sub("focus"), focused: None}
}

// OfferChanged installs the new offer length. A fresh offer while
// nothing is focused auto-focuses the first slot; a cleared offer
// resets focus and hands it back to the input; a replaced offer keeps
// the index when still valid and otherwise snaps to the first slot.
func (c *Controller) OfferChanged(length int) {
	c.mu.Lock()
	c.length = length

	var effect func()
	switch {
	case length == 0 && c.focused != None:
		c.focused = None
		effect = c.sinks.FocusInput
	case length > 0 && c.focused == None:
		c.focused = 0
		effect = c.focusSlotEffect(0)
	case length > 0 && c.focused >= length:
		c.focused = 0
		effect = c.focusSlotEffect(0)
	}
	c.mu.Unlock()

	if effect != nil {
		effect()
	}
}

// Next moves focus to the following slot, wrapping at the end.
func (c *Controller) Next() {
	c.step(func(i, n int) int { return (i + 1) % n })
}

// Prev moves focus to the preceding slot, wrapping at the start.
func (c *Controller) Prev() {
	c.step(func(i, n int) int { return (i - 1 + n) % n })
}

// First jumps to the first slot.
func (c *Controller) First() {
	c.step(func(int, int) int { return 0 })
}

// Last jumps to the last slot.
func (c *Controller) Last() {
	c.step(func(_, n int) int { return n - 1 })
}

// Backtab moves focus backward; at the first slot it yields focus to
// the input instead of wrapping.
func (c *Controller) Backtab() {
	c.mu.Lock()
	if c.length == 0 || c.focused == None {
		c.mu.Unlock()
		return
	}

	var effect func()
	if c.focused == 0 {
		c.focused = None
		effect = c.sinks.FocusInput
	} else {
		c.focused--
		effect = c.focusSlotEffect(c.focused)
	}
	c.mu.Unlock()

	if effect != nil {
		effect()
	}
}

// Cancel discards the current offer via the conversation controller.
// The resulting OfferChanged(0) resets focus and restores the input.
func (c *Controller) Cancel() {
	c.mu.Lock()
	cancel := c.sinks.CancelOffer
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Focused returns the focused index, or None.
func (c *Controller) Focused() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focused
}

func (c *Controller) step(move func(i, n int) int) {
	c.mu.Lock()
	if c.length == 0 || c.focused == None {
		c.mu.Unlock()
		return
	}
	c.focused = move(c.focused, c.length)
	effect := c.focusSlotEffect(c.focused)
	c.mu.Unlock()

	if effect != nil {
		effect()
	}
}

func (c *Controller) focusSlotEffect(index int) func() {
	if c.sinks.FocusSlot == nil {
		return nil
	}
	sink := c.sinks.FocusSlot
	return func() { sink(index) }
}
