package dialog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func immediate(_ time.Duration, fn func()) { fn() }

func TestOpenIsMutuallyExclusive(t *testing.T) {
	c := NewCoordinator(CoordinatorDeps{Schedule: immediate})

	require.NoError(t, c.Open(Cart))
	assert.Equal(t, Cart, c.Active())

	require.NoError(t, c.Open(Help))
	assert.Equal(t, Help, c.Active(), "opening help must close the cart dialog")
}

func TestOpenUnknownDialog(t *testing.T) {
	c := NewCoordinator(CoordinatorDeps{Schedule: immediate})
	assert.ErrorIs(t, c.Open(ID("settings")), ErrUnknownDialog)
}

func TestCloseOnlyAffectsActiveDialog(t *testing.T) {
	c := NewCoordinator(CoordinatorDeps{Schedule: immediate})

	require.NoError(t, c.Open(Cart))
	require.NoError(t, c.Close(Help))
	assert.Equal(t, Cart, c.Active(), "closing a hidden dialog is a no-op")

	require.NoError(t, c.Close(Cart))
	assert.Equal(t, None, c.Active())
}

func TestCloseAll(t *testing.T) {
	c := NewCoordinator(CoordinatorDeps{Schedule: immediate})
	require.NoError(t, c.Open(Help))

	c.CloseAll()
	assert.Equal(t, None, c.Active())
}

func TestAddressDetailSchedulesFocus(t *testing.T) {
	var focused []ID
	var delays []time.Duration
	c := NewCoordinator(CoordinatorDeps{
		FocusDelay: 100 * time.Millisecond,
		Schedule: func(d time.Duration, fn func()) {
			delays = append(delays, d)
			fn()
		},
		OnFocusRequest: func(id ID) {
			focused = append(focused, id)
		},
	})

	require.NoError(t, c.Open(AddressDetail))
	require.Len(t, focused, 1)
	assert.Equal(t, AddressDetail, focused[0])
	assert.Equal(t, []time.Duration{100 * time.Millisecond}, delays)

	require.NoError(t, c.Open(Cart))
	assert.Len(t, focused, 1, "only the address-detail dialog requests focus")
}

func TestVisibilityObserver(t *testing.T) {
	var seen []ID
	c := NewCoordinator(CoordinatorDeps{
		Schedule:           immediate,
		OnVisibilityChange: func(id ID) { seen = append(seen, id) },
	})

	require.NoError(t, c.Open(Cart))
	require.NoError(t, c.Open(Cart)) // no transition, no signal
	require.NoError(t, c.Close(Cart))

	assert.Equal(t, []ID{Cart, None}, seen)
}

func TestCloseFromOverlay(t *testing.T) {
	c := NewCoordinator(CoordinatorDeps{Schedule: immediate})
	require.NoError(t, c.Open(Cart))

	require.NoError(t, c.CloseFromOverlay(Cart, "cart-items", "cart-modal"))
	assert.Equal(t, Cart, c.Active(), "clicks on descendants must not close")

	require.NoError(t, c.CloseFromOverlay(Cart, "cart-modal", "cart-modal"))
	assert.Equal(t, None, c.Active())
}
