package access

// NavItem is one sidebar entry. Entries with HasDropdown carry children in Items.
type NavItem struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Icon        string    `json:"icon,omitempty"`
	HasDropdown bool      `json:"hasDropdown,omitempty"`
	Items       []NavItem `json:"items,omitempty"`
}

// DefaultNav is the sidebar served to the dashboard.
var DefaultNav = []NavItem{
	{Title: "Dashboard", URL: "/", Icon: "layout-dashboard"},
	{Title: "Hotel", URL: "#", Icon: "hotel", HasDropdown: true, Items: []NavItem{
		{Title: "Rooms", URL: "/rooms"},
		{Title: "Reservations", URL: "/reservation"},
	}},
	{Title: "Restaurant", URL: "#", Icon: "utensils", HasDropdown: true, Items: []NavItem{
		{Title: "Menu", URL: "/menu"},
		{Title: "Tables", URL: "/tables"},
		{Title: "Orders", URL: "/orders"},
	}},
	{Title: "Expenses", URL: "/expenses", Icon: "wallet"},
	{Title: "Users", URL: "/users", Icon: "users"},
	{Title: "Employees", URL: "/employees", Icon: "id-card"},
	{Title: "Settings", URL: "/settings", Icon: "settings"},
}

// FilterNav keeps the entries role may open. A dropdown survives only when at
// least one of its children does, and then carries only those children.
func FilterNav(items []NavItem, role Role) []NavItem {
	out := []NavItem{}
	for _, it := range items {
		if it.HasDropdown {
			var kids []NavItem
			for _, sub := range it.Items {
				if CanOpen(role, sub.URL) {
					kids = append(kids, sub)
				}
			}
			if len(kids) > 0 {
				cp := it
				cp.Items = kids
				out = append(out, cp)
			}
			continue
		}
		if CanOpen(role, it.URL) {
			out = append(out, it)
		}
	}
	return out
}
