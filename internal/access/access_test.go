package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleWaiter, ParseRole(" waiter "))
	assert.Equal(t, RoleAdmin, ParseRole("Admin"))
	assert.Equal(t, Role("GUEST"), ParseRole("guest"))
}

func TestCanOpen(t *testing.T) {
	assert.True(t, CanOpen(RoleAdmin, "/settings"))
	assert.True(t, CanOpen(RoleWaiter, "/orders"))
	assert.False(t, CanOpen(RoleWaiter, "/rooms"))
	assert.True(t, CanOpen(RoleStaff, "/reservation"))
	assert.False(t, CanOpen(RoleAdmin, "/nope"), "unmapped paths are denied")
	assert.False(t, CanOpen(Role("GUEST"), "/profile"))
}

func TestPolicy_Allows(t *testing.T) {
	p := DefaultPolicy()

	assert.True(t, p.Allows(OpOrderSubmit, RoleWaiter))
	assert.False(t, p.Allows(OpOrderSubmit, RoleKitchen))
	assert.True(t, p.Allows(OpOrderGet, RoleKitchen))
	assert.False(t, p.Allows(OpOrderDelete, RoleWaiter))
	assert.True(t, p.Allows(OpOrderDelete, RoleManager))
	assert.True(t, p.Allows(OpReservationWrite, RoleStaff))
	assert.True(t, p.Allows(OpExpenseWrite, RoleManager))
	assert.False(t, p.Allows(OpExpenseRead, RoleWaiter))

	assert.True(t, p.Allows(OpPermissionRead, RoleKitchen), "nil entry admits any role")
	assert.False(t, p.Allows(OpPermissionRead, ""), "but not an empty one")
	assert.False(t, p.Allows(Operation("orders.unknown"), RoleAdmin))
}

func TestPolicy_EveryOperationHasAnEntry(t *testing.T) {
	p := DefaultPolicy()
	ops := []Operation{
		OpOrderSubmit, OpOrderList, OpOrderGet, OpOrderStatus, OpOrderPayment, OpOrderReceipt, OpOrderDelete,
		OpTableRead, OpTableWrite, OpTableStatus, OpRoomRead, OpRoomWrite,
		OpPaymentRead, OpPaymentWrite, OpReservationRead, OpReservationWrite,
		OpMenuWrite, OpExpenseRead, OpExpenseWrite, OpDashboardView, OpPermissionRead,
	}
	for _, op := range ops {
		_, ok := p[op]
		assert.True(t, ok, op)
	}
}

func TestFilterNav_Waiter(t *testing.T) {
	got := FilterNav(DefaultNav, RoleWaiter)
	require.Len(t, got, 1)
	assert.Equal(t, "Restaurant", got[0].Title)
	assert.Len(t, got[0].Items, 3)
}

func TestFilterNav_StaffKeepsOnlyHotel(t *testing.T) {
	got := FilterNav(DefaultNav, RoleStaff)
	require.Len(t, got, 1)
	assert.Equal(t, "Hotel", got[0].Title)
	assert.Equal(t, "/rooms", got[0].Items[0].URL)
	// the package-level nav must not be mutated
	assert.Len(t, DefaultNav[1].Items, 2)
}

func TestFilterNav_UnknownRoleGetsNothing(t *testing.T) {
	got := FilterNav(DefaultNav, Role("GUEST"))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterNav_AdminGetsEverything(t *testing.T) {
	got := FilterNav(DefaultNav, RoleAdmin)
	assert.Len(t, got, len(DefaultNav))
}
