// hostabi_misc.go - input, menu, and misc sub-ABIs
//
// Grounded on host/input.rs, host/menu.rs, host/misc.rs, host/wasip1.rs.

package main

// InputABI implements the input sub-ABI: pad deflection and button
// state for the one local player this runtime drives. Only player 0 is
// answered, from the local device; the multiplayer syncer's peer inputs
// are not read here.
type InputABI struct {
	s *State
}

func NewInputABI(s *State) *InputABI { return &InputABI{s: s} }

// padMissing is the per-half sentinel ReadPad returns for a player it
// has no pad for.
const padMissing = 0xFFFF

// ReadPad returns player's stick deflection packed into one u32 as
// uint16(padX)<<16 | uint16(padY). For any player other than 0, or when
// no device is attached, it returns 0xFFFF in both halves. Player 0
// always gets the device's current deflection: a pad that reports no
// input is not told apart from a centered one.
func (in *InputABI) ReadPad(player uint32) uint32 {
	in.s.LastCalled = "input.read_pad"
	if player != 0 || in.s.Device == nil {
		return uint32(padMissing)<<16 | padMissing
	}
	st := in.s.Device.Input().Poll()
	return uint32(uint16(st.PadX))<<16 | uint32(uint16(st.PadY))
}

// ReadButtons returns player's button bitmask, or 0 if there is no such
// player.
func (in *InputABI) ReadButtons(player uint32) uint32 {
	in.s.LastCalled = "input.read_buttons"
	if player != 0 || in.s.Device == nil {
		return 0
	}
	return uint32(in.s.Device.Input().Poll().Buttons)
}

// MenuABI implements the menu sub-ABI.
type MenuABI struct {
	s *State
}

func NewMenuABI(s *State) *MenuABI { return &MenuABI{s: s} }

func (m *MenuABI) logErr(name, msg string) {
	if m.s.Device != nil {
		m.s.Device.Log().Warn("menu." + name + ": " + msg)
	}
}

// AddMenuItem installs a custom item at idx with a guest-supplied label.
func (m *MenuABI) AddMenuItem(idx, namePtr, nameLen uint32) {
	m.s.LastCalled = "menu.add_menu_item"
	if !ValidMenuIndex(idx) {
		m.logErr("add_menu_item", "invalid menu index")
		return
	}
	label, err := m.s.Mem.String(namePtr, nameLen)
	if err != nil {
		m.logErr("add_menu_item", err.Error())
		return
	}
	m.s.Menu.AddItem(idx, label)
}

// RemoveMenuItem clears the custom item at idx.
func (m *MenuABI) RemoveMenuItem(idx uint32) {
	m.s.LastCalled = "menu.remove_menu_item"
	if !ValidMenuIndex(idx) {
		m.logErr("remove_menu_item", "invalid menu index")
		return
	}
	m.s.Menu.RemoveItem(idx)
}

// OpenMenu opens the pause overlay.
func (m *MenuABI) OpenMenu() {
	m.s.LastCalled = "menu.open_menu"
	m.s.Menu.RequestOpen()
}

// MiscABI implements the misc sub-ABI: logging, the deterministic RNG,
// and app exit.
type MiscABI struct {
	s *State
}

func NewMiscABI(s *State) *MiscABI { return &MiscABI{s: s} }

func (m *MiscABI) LogDebug(ptr, length uint32) {
	m.s.LastCalled = "misc.log_debug"
	msg, err := m.s.Mem.String(ptr, length)
	if err != nil {
		if m.s.Device != nil {
			m.s.Device.Log().Warn("misc.log_debug: " + err.Error())
		}
		return
	}
	if m.s.Device != nil {
		m.s.Device.Log().Debug(msg)
	}
}

func (m *MiscABI) LogError(ptr, length uint32) {
	m.s.LastCalled = "misc.log_error"
	msg, err := m.s.Mem.String(ptr, length)
	if err != nil {
		if m.s.Device != nil {
			m.s.Device.Log().Warn("misc.log_error: " + err.Error())
		}
		return
	}
	if m.s.Device != nil {
		m.s.Device.Log().Error(msg)
	}
}

// SetSeed reseeds the app's deterministic RNG.
func (m *MiscABI) SetSeed(seed uint32) {
	m.s.LastCalled = "misc.set_seed"
	m.s.RNG.Reseed(seed)
}

// GetRandom advances and returns the deterministic RNG.
func (m *MiscABI) GetRandom() uint32 {
	m.s.LastCalled = "misc.get_random"
	return m.s.RNG.Next()
}

// Quit flags the app for exit; the main loop driver observes State.Exit
// after the current update/render cycle completes.
func (m *MiscABI) Quit() {
	m.s.LastCalled = "misc.quit"
	m.s.Exit = true
}

// Wasip1ABI stubs every listed WASI preview1 import with the sentinel
// return the guest's compiled-in libc shim expects when the function is
// never actually used - apps link against wasip1 symbols but this
// runtime's guest engine boundary treats the whole surface as a no-op
// per spec.md's ABI list.
type Wasip1ABI struct{}

func NewWasip1ABI() *Wasip1ABI { return &Wasip1ABI{} }

func (Wasip1ABI) ArgsGet(argv, argvBuf uint32) uint32                { return 0 }
func (Wasip1ABI) ArgsSizesGet(argc, argvBufSize uint32) uint32       { return 0 }
func (Wasip1ABI) EnvironGet(environ, environBuf uint32) uint32       { return 0 }
func (Wasip1ABI) EnvironSizesGet(count, bufSize uint32) uint32       { return 0 }
func (Wasip1ABI) ClockResGet(id, resultPtr uint32) uint32            { return 0 }
func (Wasip1ABI) ClockTimeGet(id, precision, resultPtr uint32) uint32 { return 0 }
func (Wasip1ABI) FdClose(fd uint32) uint32                            { return 0 }
func (Wasip1ABI) FdWrite(fd, iovs, iovsLen, resultPtr uint32) uint32  { return 0 }
func (Wasip1ABI) FdRead(fd, iovs, iovsLen, resultPtr uint32) uint32   { return 0 }
func (Wasip1ABI) FdSeek(fd uint32, offset uint64, whence, resultPtr uint32) uint32 {
	return 0
}
func (Wasip1ABI) ProcExit(code uint32) {}
func (Wasip1ABI) RandomGet(buf, length uint32) uint32 { return 0 }
func (Wasip1ABI) SchedYield() uint32                  { return 0 }
