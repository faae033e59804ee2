// hostabi_fs.go - filesystem sub-ABI: rom/data layered file access
//
// Grounded on host/fs.rs: reads try roms/<author>/<app>/<name> first,
// falling back to data/<author>/<app>/etc/<name> on a miss; writes and
// removes refuse any name that shadows a ROM entry; reads from data/ are
// rejected while a net session is active (lobby or syncing) so every
// device's save-file view stays identical.

package main

// FSABI implements the filesystem sub-ABI against one running app's
// State.
type FSABI struct {
	s  *State
	fs FS
}

// NewFSABI wires an FSABI to s, reading and writing through fs.
func NewFSABI(s *State, fs FS) *FSABI {
	return &FSABI{s: s, fs: fs}
}

func (f *FSABI) enter(name string) {
	f.s.LastCalled = name
}

func (f *FSABI) logErr(name, msg string) {
	if f.s.Device != nil {
		f.s.Device.Log().Warn("fs." + name + ": " + msg)
	}
}

func (f *FSABI) romPath(name string) string {
	return "roms/" + f.s.App.Author + "/" + f.s.App.App + "/" + name
}

func (f *FSABI) dataPath(name string) string {
	return "data/" + f.s.App.Author + "/" + f.s.App.App + "/etc/" + name
}

// inMultiplayer reports whether a net session is active - lobby/handshake
// or syncing - the window during which data/ reads must be rejected so
// every peer observes the same save-file contents.
func (f *FSABI) inMultiplayer() bool {
	if f.s.Net == nil {
		return false
	}
	return f.s.Net.Active()
}

// readName decodes and validates a guest-supplied file name.
func (f *FSABI) readName(ptr, length uint32) (string, bool) {
	name, err := f.s.Mem.String(ptr, length)
	if err != nil {
		f.logErr("name", err.Error())
		return "", false
	}
	if !ValidFileName(name) {
		f.logErr("name", "invalid file name")
		return "", false
	}
	return name, true
}

// load reads name ROM-first then data/etc, returning ErrNotExist-style
// nil,false on a clean miss in both locations.
func (f *FSABI) load(name string) ([]byte, bool) {
	if data, err := f.fs.Load(f.romPath(name)); err == nil {
		return data, true
	}
	if f.inMultiplayer() {
		f.logErr("load", "data file read rejected during multiplayer sync")
		return nil, false
	}
	data, err := f.fs.Load(f.dataPath(name))
	if err != nil {
		return nil, false
	}
	return data, true
}

// isROMShadowed reports whether name already exists as a ROM asset,
// which bars any write/remove of the same name under data/.
func (f *FSABI) isROMShadowed(name string) bool {
	_, err := f.fs.Size(f.romPath(name))
	return err == nil
}

// GetFileSize returns name's byte length via the rom-then-data lookup,
// or 0 if it does not exist in either location.
func (f *FSABI) GetFileSize(namePtr, nameLen uint32) uint32 {
	f.enter("get_file_size")
	name, ok := f.readName(namePtr, nameLen)
	if !ok {
		return 0
	}
	data, ok := f.load(name)
	if !ok {
		f.logErr("get_file_size", "no such file")
		return 0
	}
	return uint32(len(data))
}

// LoadFile copies name's contents into the guest buffer at
// [bufPtr, bufPtr+bufLen), returning the number of bytes copied (0 on
// any error, including a buffer too small to hold the whole file).
func (f *FSABI) LoadFile(namePtr, nameLen, bufPtr, bufLen uint32) uint32 {
	f.enter("load_file")
	name, ok := f.readName(namePtr, nameLen)
	if !ok {
		return 0
	}
	data, ok := f.load(name)
	if !ok {
		f.logErr("load_file", "no such file")
		return 0
	}
	if uint32(len(data)) > bufLen {
		f.logErr("load_file", "buffer too small")
		return 0
	}
	dst, err := f.s.Mem.Slice(bufPtr, uint32(len(data)))
	if err != nil {
		f.logErr("load_file", err.Error())
		return 0
	}
	copy(dst, data)
	return uint32(len(data))
}

// DumpFile writes the guest buffer to data/<author>/<app>/etc/<name>,
// refusing any name that shadows a ROM asset. Returns the number of
// bytes written, 0 on failure.
func (f *FSABI) DumpFile(namePtr, nameLen, bufPtr, bufLen uint32) uint32 {
	f.enter("dump_file")
	name, ok := f.readName(namePtr, nameLen)
	if !ok {
		return 0
	}
	if f.isROMShadowed(name) {
		f.logErr("dump_file", "file is read-only (shadows a ROM asset)")
		return 0
	}
	data, err := f.s.Mem.Slice(bufPtr, bufLen)
	if err != nil {
		f.logErr("dump_file", err.Error())
		return 0
	}
	if err := f.fs.Dump(f.dataPath(name), data); err != nil {
		f.logErr("dump_file", err.Error())
		return 0
	}
	return bufLen
}

// RemoveFile deletes data/<author>/<app>/etc/<name>, refusing any name
// that shadows a ROM asset.
func (f *FSABI) RemoveFile(namePtr, nameLen uint32) {
	f.enter("remove_file")
	name, ok := f.readName(namePtr, nameLen)
	if !ok {
		return
	}
	if f.isROMShadowed(name) {
		f.logErr("remove_file", "file is read-only (shadows a ROM asset)")
		return
	}
	if err := f.fs.Remove(f.dataPath(name)); err != nil {
		f.logErr("remove_file", err.Error())
	}
}

// GetFileName is a deprecated stub: this ABI call has no tracked state of
// its own in the original, so it writes nothing to the guest buffer and
// always returns 0. It is kept, like get_rom_file_size/load_rom_file
// below, because older apps link against it.
func (f *FSABI) GetFileName(bufPtr, bufLen uint32) uint32 {
	f.enter("get_file_name")
	return 0
}

// GetROMFileSize is a deprecated alias for GetFileSize, kept because
// older apps link against it directly.
func (f *FSABI) GetROMFileSize(namePtr, nameLen uint32) uint32 {
	f.enter("get_rom_file_size")
	return f.GetFileSize(namePtr, nameLen)
}

// LoadROMFile is a deprecated alias for LoadFile.
func (f *FSABI) LoadROMFile(namePtr, nameLen, bufPtr, bufLen uint32) uint32 {
	f.enter("load_rom_file")
	return f.LoadFile(namePtr, nameLen, bufPtr, bufLen)
}
