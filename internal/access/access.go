// Package access holds the role model: which pages each staff role may open
// and which roles may invoke each API operation.
package access

import "strings"

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleWaiter  Role = "WAITER"
	RoleKitchen Role = "KITCHEN"
	RoleStaff   Role = "STAFF"
)

// ParseRole normalizes a role claim ("admin", " Waiter ") to its constant.
// Unknown roles are returned upper-cased but hold no permissions.
func ParseRole(s string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(s)))
}

// Page permissions.
const (
	PageDashboard   = "dashboard"
	PageRooms       = "rooms"
	PageReservation = "reservation"
	PageMenu        = "menu"
	PageTables      = "tables"
	PageOrders      = "orders"
	PageExpenses    = "expenses"
	PageUsers       = "users"
	PageEmployees   = "employees"
	PageSettings    = "settings"
	PageProfile     = "profile"
)

var pagePaths = map[string]string{
	"/":            PageDashboard,
	"/rooms":       PageRooms,
	"/reservation": PageReservation,
	"/menu":        PageMenu,
	"/tables":      PageTables,
	"/orders":      PageOrders,
	"/expenses":    PageExpenses,
	"/users":       PageUsers,
	"/employees":   PageEmployees,
	"/settings":    PageSettings,
	"/profile":     PageProfile,
}

var rolePages = map[Role][]string{
	RoleAdmin: {
		PageDashboard, PageRooms, PageReservation, PageMenu, PageTables,
		PageOrders, PageExpenses, PageUsers, PageEmployees, PageSettings, PageProfile,
	},
	RoleManager: {
		PageDashboard, PageRooms, PageReservation, PageMenu, PageTables,
		PageOrders, PageExpenses, PageEmployees, PageProfile,
	},
	RoleWaiter:  {PageOrders, PageProfile, PageMenu, PageTables},
	RoleKitchen: {PageOrders, PageProfile, PageMenu, PageTables},
	RoleStaff:   {PageRooms, PageReservation, PageProfile},
}

// PageFor maps a UI path to its page permission.
func PageFor(path string) (string, bool) {
	p, ok := pagePaths[path]
	return p, ok
}

// Pages lists the page permissions held by role.
func Pages(role Role) []string {
	return append([]string(nil), rolePages[role]...)
}

func HasPage(role Role, page string) bool {
	for _, p := range rolePages[role] {
		if p == page {
			return true
		}
	}
	return false
}

// CanOpen reports whether role may open the UI path. Unmapped paths are denied.
func CanOpen(role Role, path string) bool {
	page, ok := PageFor(path)
	return ok && HasPage(role, page)
}
