package modinfo

// Category is a mod list category.
type Category struct {
	ID    string
	Title string
}

// Categories lists the known categories in display order. The last entry
// holds mods without a category.
var Categories = []Category{
	{"core", "CORE GAME DATA"},
	{"content", "CONTENT PACKS"},
	{"items", "ITEM ADDITION MODS"},
	{"creatures", "CREATURE MODS"},
	{"misc_additions", "MISC ADDITIONS"},
	{"buildings", "BUILDINGS MODS"},
	{"vehicles", "VEHICLE MODS"},
	{"rebalance", "REBALANCING MODS"},
	{"magical", "MAGICAL MODS"},
	{"item_exclude", "ITEM EXCLUSION MODS"},
	{"monster_exclude", "MONSTER EXCLUSION MODS"},
	{"graphical", "GRAPHICAL MODS"},
	{"", "NO CATEGORY"},
}

// Tabs of the mod selection screen, and the categories listed on each
// non-default tab.
var (
	Tabs = []Category{
		{"tab_default", "Default"},
		{"tab_blacklist", "Blacklist"},
		{"tab_balance", "Balance"},
	}
	categoryTabs = map[string]string{
		"item_exclude":    "tab_blacklist",
		"monster_exclude": "tab_blacklist",
		"rebalance":       "tab_balance",
	}
)

// CategoryIndex returns the position of id in [Categories].
func CategoryIndex(id string) (int, bool) {
	for i, c := range Categories {
		if c.ID == id {
			return i, true
		}
	}
	return len(Categories) - 1, false
}

// CategoryTitle returns the display title for id.
func CategoryTitle(id string) string {
	i, _ := CategoryIndex(id)
	return Categories[i].Title
}

// TabFor returns the tab a category is listed on.
func TabFor(category string) string {
	if tab, ok := categoryTabs[category]; ok {
		return tab
	}
	return "tab_default"
}
