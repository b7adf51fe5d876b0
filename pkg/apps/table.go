package apps

import (
	"sort"
	"strings"
)

// Platform describes one quick-launch target
type Platform struct {
	ID      string // short name used by the overlay and the CLI
	Name    string // display name
	Package string // stable application identifier
	WMClass string // desktop window class reported by the window manager
	Command string // command used to start a new instance
	Icon    string // freedesktop icon name
	Color   uint32 // 0xRRGGBB fill for the overlay cell
}

// Order is the left-to-right order of cells in the bar
var Order = []string{"twitter", "facebook", "instagram", "linkedin", "tiktok", "whatsapp", "telegram"}

var table = map[string]Platform{
	"twitter": {
		ID: "twitter", Name: "X (Twitter)", Package: "com.twitter.android",
		WMClass: "twitter", Command: "xdg-open https://x.com", Icon: "twitter", Color: 0x1DA1F2,
	},
	"facebook": {
		ID: "facebook", Name: "Facebook", Package: "com.facebook.katana",
		WMClass: "facebook", Command: "xdg-open https://facebook.com", Icon: "facebook", Color: 0x1877F2,
	},
	"instagram": {
		ID: "instagram", Name: "Instagram", Package: "com.instagram.android",
		WMClass: "instagram", Command: "xdg-open https://instagram.com", Icon: "instagram", Color: 0xE1306C,
	},
	"linkedin": {
		ID: "linkedin", Name: "LinkedIn", Package: "com.linkedin.android",
		WMClass: "linkedin", Command: "xdg-open https://linkedin.com", Icon: "linkedin", Color: 0x0A66C2,
	},
	"tiktok": {
		ID: "tiktok", Name: "TikTok", Package: "com.zhiliaoapp.musically",
		WMClass: "tiktok", Command: "xdg-open https://tiktok.com", Icon: "tiktok", Color: 0x010101,
	},
	"whatsapp": {
		ID: "whatsapp", Name: "WhatsApp", Package: "com.whatsapp",
		WMClass: "whatsapp", Command: "whatsapp-for-linux", Icon: "whatsapp", Color: 0x25D366,
	},
	"telegram": {
		ID: "telegram", Name: "Telegram", Package: "org.telegram.messenger",
		WMClass: "telegramdesktop", Command: "telegram-desktop", Icon: "telegram", Color: 0x26A5E4,
	},
}

// Table is an immutable lookup over a set of platforms
type Table struct {
	byID      map[string]Platform
	byPackage map[string]Platform
	byClass   map[string]Platform
	order     []string
}

// Default returns the built-in platform table
func Default() *Table {
	platforms := make([]Platform, 0, len(Order))
	for _, id := range Order {
		platforms = append(platforms, table[id])
	}
	return NewTable(platforms)
}

// NewTable builds a table, keeping the given order. Later duplicates win.
func NewTable(platforms []Platform) *Table {
	t := &Table{
		byID:      make(map[string]Platform, len(platforms)),
		byPackage: make(map[string]Platform, len(platforms)),
		byClass:   make(map[string]Platform, len(platforms)),
	}
	for _, p := range platforms {
		if _, seen := t.byID[p.ID]; !seen {
			t.order = append(t.order, p.ID)
		}
		t.byID[p.ID] = p
		t.byPackage[p.Package] = p
		if p.WMClass != "" {
			t.byClass[strings.ToLower(p.WMClass)] = p
		}
	}
	return t
}

// Builtin returns the built-in entry for id
func Builtin(id string) (Platform, bool) {
	p, ok := table[id]
	return p, ok
}

func (t *Table) ByID(id string) (Platform, bool) {
	p, ok := t.byID[id]
	return p, ok
}

func (t *Table) ByPackage(pkg string) (Platform, bool) {
	p, ok := t.byPackage[pkg]
	return p, ok
}

// ByClass matches a window class case-insensitively
func (t *Table) ByClass(class string) (Platform, bool) {
	p, ok := t.byClass[strings.ToLower(class)]
	return p, ok
}

// Resolve accepts either a platform ID or a package identifier
func (t *Table) Resolve(target string) (Platform, bool) {
	if p, ok := t.byPackage[target]; ok {
		return p, true
	}
	return t.ByID(target)
}

// Platforms returns the entries in bar order
func (t *Table) Platforms() []Platform {
	out := make([]Platform, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.byID[id])
	}
	return out
}

// Monitored returns the set of package identifiers in the table
func (t *Table) Monitored() MonitoredSet {
	pkgs := make([]string, 0, len(t.byPackage))
	for pkg := range t.byPackage {
		pkgs = append(pkgs, pkg)
	}
	return NewMonitoredSet(pkgs...)
}

// MonitoredSet is a fixed set of application identifiers. The zero value is empty.
type MonitoredSet struct {
	members map[string]struct{}
}

func NewMonitoredSet(ids ...string) MonitoredSet {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			m[id] = struct{}{}
		}
	}
	return MonitoredSet{members: m}
}

func (s MonitoredSet) Contains(id string) bool {
	_, ok := s.members[id]
	return ok
}

func (s MonitoredSet) Len() int {
	return len(s.members)
}

// List returns the members sorted
func (s MonitoredSet) List() []string {
	out := make([]string, 0, len(s.members))
	for id := range s.members {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
