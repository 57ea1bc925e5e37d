package access

// Operation names one guarded API entry point.
type Operation string

const (
	OpOrderSubmit  Operation = "orders.submit"
	OpOrderList    Operation = "orders.list"
	OpOrderGet     Operation = "orders.get"
	OpOrderStatus  Operation = "orders.status"
	OpOrderPayment Operation = "orders.payment"
	OpOrderReceipt Operation = "orders.receipt"
	OpOrderDelete  Operation = "orders.delete"

	OpTableRead   Operation = "tables.read"
	OpTableWrite  Operation = "tables.write"
	OpTableStatus Operation = "tables.status"

	OpRoomRead  Operation = "rooms.read"
	OpRoomWrite Operation = "rooms.write"

	OpPaymentRead  Operation = "payments.read"
	OpPaymentWrite Operation = "payments.write"

	OpReservationRead  Operation = "reservations.read"
	OpReservationWrite Operation = "reservations.write"

	OpMenuWrite Operation = "menu.write"

	OpExpenseRead  Operation = "expenses.read"
	OpExpenseWrite Operation = "expenses.write"

	OpDashboardView  Operation = "dashboard.view"
	OpPermissionRead Operation = "permissions.read"
)

var (
	managers   = []Role{RoleAdmin, RoleManager}
	floorStaff = []Role{RoleAdmin, RoleManager, RoleWaiter}
)

// Policy maps operations to the roles allowed to invoke them. A nil entry
// means any authenticated role.
type Policy map[Operation][]Role

// DefaultPolicy is the production route table.
func DefaultPolicy() Policy {
	return Policy{
		OpOrderSubmit:  floorStaff,
		OpOrderList:    managers,
		OpOrderGet:     {RoleAdmin, RoleManager, RoleWaiter, RoleKitchen},
		OpOrderStatus:  floorStaff,
		OpOrderPayment: floorStaff,
		OpOrderReceipt: floorStaff,
		OpOrderDelete:  managers,

		OpTableRead:   {RoleAdmin, RoleManager, RoleWaiter, RoleKitchen},
		OpTableWrite:  managers,
		OpTableStatus: floorStaff,

		OpRoomRead:  {RoleAdmin, RoleManager, RoleStaff},
		OpRoomWrite: managers,

		OpPaymentRead:  floorStaff,
		OpPaymentWrite: floorStaff,

		OpReservationRead:  {RoleAdmin, RoleManager, RoleStaff},
		OpReservationWrite: {RoleAdmin, RoleManager, RoleStaff},

		OpMenuWrite: managers,

		OpExpenseRead:  managers,
		OpExpenseWrite: managers,

		OpDashboardView:  managers,
		OpPermissionRead: nil,
	}
}

// Allows reports whether role may invoke op. Operations missing from the
// table are denied.
func (p Policy) Allows(op Operation, role Role) bool {
	roles, ok := p[op]
	if !ok {
		return false
	}
	if roles == nil {
		return role != ""
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
