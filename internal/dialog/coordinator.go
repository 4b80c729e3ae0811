// Package dialog tracks which of the storefront's dialogs is visible. At
// most one dialog is ever open; opening one closes the others first.
package dialog

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// ID names one of the fixed dialog set.
type ID string

// The storefront's dialogs.
const (
	None          ID = ""
	Cart          ID = "cart"
	Help          ID = "help"
	AddressDetail ID = "address_detail"
)

// ErrUnknownDialog indicates an identifier outside the fixed set.
var ErrUnknownDialog = errors.New("dialog: unknown dialog")

const defaultFocusDelay = 100 * time.Millisecond

// Parse maps a raw identifier onto the fixed dialog set.
func Parse(raw string) (ID, error) {
	switch ID(strings.TrimSpace(raw)) {
	case Cart:
		return Cart, nil
	case Help:
		return Help, nil
	case AddressDetail:
		return AddressDetail, nil
	}
	return None, ErrUnknownDialog
}

// CoordinatorDeps wires the focus scheduling and observer hooks.
type CoordinatorDeps struct {
	// FocusDelay defers the focus request after the address-detail dialog
	// opens, so focus is not lost to the visibility transition.
	FocusDelay time.Duration
	// Schedule runs fn after delay. Defaults to time.AfterFunc; tests inject
	// a synchronous variant.
	Schedule func(delay time.Duration, fn func())
	// OnVisibilityChange observes every transition of the active dialog.
	OnVisibilityChange func(active ID)
	// OnFocusRequest observes deferred focus requests.
	OnFocusRequest func(dialog ID)
}

// Coordinator enforces the single-active-dialog invariant.
type Coordinator struct {
	mu     sync.Mutex
	active ID

	focusDelay time.Duration
	schedule   func(delay time.Duration, fn func())
	onChange   func(active ID)
	onFocus    func(dialog ID)
}

// NewCoordinator constructs a Coordinator with no dialog visible.
func NewCoordinator(deps CoordinatorDeps) *Coordinator {
	delay := deps.FocusDelay
	if delay <= 0 {
		delay = defaultFocusDelay
	}
	schedule := deps.Schedule
	if schedule == nil {
		schedule = func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		}
	}
	onChange := deps.OnVisibilityChange
	if onChange == nil {
		onChange = func(ID) {}
	}
	onFocus := deps.OnFocusRequest
	if onFocus == nil {
		onFocus = func(ID) {}
	}
	return &Coordinator{
		focusDelay: delay,
		schedule:   schedule,
		onChange:   onChange,
		onFocus:    onFocus,
	}
}

// Open makes the dialog visible, closing any other dialog first. Opening the
// address-detail dialog also schedules a focus request for its primary field.
func (c *Coordinator) Open(id ID) error {
	if _, err := Parse(string(id)); err != nil {
		return err
	}

	c.mu.Lock()
	changed := c.active != id
	c.active = id
	c.mu.Unlock()

	if changed {
		c.onChange(id)
	}
	if id == AddressDetail {
		c.schedule(c.focusDelay, func() {
			c.onFocus(AddressDetail)
		})
	}
	return nil
}

// Close hides the dialog if it is the one currently visible.
func (c *Coordinator) Close(id ID) error {
	if _, err := Parse(string(id)); err != nil {
		return err
	}

	c.mu.Lock()
	changed := c.active == id
	if changed {
		c.active = None
	}
	c.mu.Unlock()

	if changed {
		c.onChange(None)
	}
	return nil
}

// CloseAll hides whichever dialog is visible.
func (c *Coordinator) CloseAll() {
	c.mu.Lock()
	changed := c.active != None
	c.active = None
	c.mu.Unlock()

	if changed {
		c.onChange(None)
	}
}

// CloseFromOverlay applies the outside-click rule: a pointer event whose
// target is the dialog's own container (not a descendant) closes it.
func (c *Coordinator) CloseFromOverlay(id ID, target, container string) error {
	if target != container {
		return nil
	}
	return c.Close(id)
}

// Active returns the currently visible dialog, or None.
func (c *Coordinator) Active() ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}
