// menu.go - modal pause menu overlay
//
// Grounded on menu.rs: edge-triggered button handling (the menu button
// opens on press and closes on the next release while open; the select
// button activates only on release, never on press, so a long-press
// can't double-fire) and a render-gating flag that collapses any number
// of state changes between frames into a single re-render.

package main

const (
	menuCustomSlots  = 4
	menuPadThreshold = 50 // magnitude of vertical deflection that advances selection
)

// MenuAction is a built-in menu item's effect, reported to the runtime
// driver so it can act (most of these need capabilities - Net, FS,
// Device - the Menu struct itself doesn't hold).
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionConnect
	MenuActionDisconnect
	MenuActionScreenshot
	MenuActionRestart
	MenuActionQuit
	MenuActionCustom // Update's second result reports which custom index (0-3) fired
)

// MenuItem is one selectable row: a built-in action or a guest-added
// custom item (Action == MenuActionCustom, Label from add_menu_item).
type MenuItem struct {
	Action MenuAction
	Label  string
}

// Menu is the pause overlay's full state machine: which items exist,
// which is selected, whether it's open, and the edge-detection latches
// needed to turn raw button state into single-fire actions.
type Menu struct {
	items    [menuCustomSlots]*MenuItem // guest-added custom items, nil = empty slot
	builtins []MenuItem

	open     bool
	selected int
	rendered bool // false means "needs a redraw before next Flush"

	menuButtonWasDown bool
	openedThisPress   bool
	selectButtonDown  bool
	padLatched        bool
}

// NewMenu returns a closed menu with just its built-in items.
func NewMenu() *Menu {
	return &Menu{
		builtins: []MenuItem{
			{Action: MenuActionConnect, Label: "Connect"},
			{Action: MenuActionDisconnect, Label: "Disconnect"},
			{Action: MenuActionScreenshot, Label: "Screenshot"},
			{Action: MenuActionRestart, Label: "Restart"},
			{Action: MenuActionQuit, Label: "Quit"},
		},
	}
}

// markDirty flags that the menu's visible state changed and the next
// Flush needs to redraw it.
func (m *Menu) markDirty() { m.rendered = false }

// NeedsRender reports whether the menu's appearance changed since the
// last call to MarkRendered.
func (m *Menu) NeedsRender() bool { return !m.rendered }

// MarkRendered clears the needs-render flag after the caller has drawn
// the current state.
func (m *Menu) MarkRendered() { m.rendered = true }

// Open reports whether the menu overlay is currently shown.
func (m *Menu) Open() bool { return m.open }

// AddItem installs a custom item at idx (0-3), overwriting whatever was
// there before. Returns false if idx is out of range.
func (m *Menu) AddItem(idx uint32, label string) bool {
	if idx >= menuCustomSlots {
		return false
	}
	m.items[idx] = &MenuItem{Action: MenuActionCustom, Label: label}
	m.markDirty()
	return true
}

// RemoveItem clears the custom item at idx, if any. Returns false if idx
// is out of range.
func (m *Menu) RemoveItem(idx uint32) bool {
	if idx >= menuCustomSlots {
		return false
	}
	m.items[idx] = nil
	m.markDirty()
	return true
}

// RequestOpen is the open_menu host ABI call: opens the overlay
// regardless of current button state, same as a fresh menu-button press.
func (m *Menu) RequestOpen() {
	if !m.open {
		m.open = true
		m.selected = 0
		m.markDirty()
	}
}

// rows returns the full selectable list: custom items (in slot order,
// skipping empty slots) followed by the built-ins, matching menu.rs's
// layout ordering.
func (m *Menu) rows() []MenuItem {
	rows := make([]MenuItem, 0, menuCustomSlots+len(m.builtins))
	for _, it := range m.items {
		if it != nil {
			rows = append(rows, *it)
		}
	}
	rows = append(rows, m.builtins...)
	return rows
}

// Update feeds one frame of raw input into the menu's edge-triggered
// state machine. menuButtonDown and selectButtonDown are the current
// (level, not edge) state of the two relevant buttons; padY is the
// current vertical pad deflection. It returns the action to perform, if
// the select button was just released over a row, or MenuActionNone.
func (m *Menu) Update(menuButtonDown, selectButtonDown bool, padY int16) (MenuAction, int) {
	// Menu button: open on press, close on the next release while open.
	justPressed := menuButtonDown && !m.menuButtonWasDown
	justReleased := !menuButtonDown && m.menuButtonWasDown
	m.menuButtonWasDown = menuButtonDown

	if justPressed {
		if !m.open {
			m.open = true
			m.selected = 0
			m.openedThisPress = true
			m.markDirty()
		}
	}
	if justReleased && m.open && !m.openedThisPress {
		m.open = false
		m.markDirty()
	}
	if justReleased {
		m.openedThisPress = false
	}

	if !m.open {
		m.selectButtonDown = selectButtonDown
		m.padLatched = false
		return MenuActionNone, 0
	}

	rows := m.rows()
	if len(rows) == 0 {
		m.selectButtonDown = selectButtonDown
		return MenuActionNone, 0
	}

	// Pad navigation: a vertical deflection past the threshold moves
	// selection by one row, then latches until the pad returns to
	// neutral so holding the stick doesn't repeat every frame.
	if padY > menuPadThreshold || padY < -menuPadThreshold {
		if !m.padLatched {
			if padY > 0 {
				m.selected = (m.selected + 1) % len(rows)
			} else {
				m.selected = (m.selected - 1 + len(rows)) % len(rows)
			}
			m.padLatched = true
			m.markDirty()
		}
	} else {
		m.padLatched = false
	}

	// Select button: fires only on release, so a long-press can't
	// double-activate an item.
	selectJustReleased := !selectButtonDown && m.selectButtonDown
	m.selectButtonDown = selectButtonDown
	if selectJustReleased {
		row := rows[m.selected]
		if row.Action == MenuActionQuit {
			m.open = false
		}
		m.markDirty()
		if row.Action == MenuActionCustom {
			return MenuActionCustom, customSlotOf(m, row.Label)
		}
		return row.Action, 0
	}
	return MenuActionNone, 0
}

// customSlotOf finds which slot index currently holds label, for
// reporting back to the guest which custom item fired. Ties (duplicate
// labels) resolve to the lowest slot index.
func customSlotOf(m *Menu, label string) int {
	for i, it := range m.items {
		if it != nil && it.Label == label {
			return i
		}
	}
	return -1
}
