// hostabi_sudo.go - launcher-only sub-ABI: cross-app directory listing
// and app switching
//
// Grounded on host/sudo.rs: unlike fs.rs's rom/data layering, sudo's
// file calls take a raw slash-separated path (at most 4 parts: the
// flat {data,roms,sys}/author/app/file layout SPEC_FULL.md's Persistent
// state layout defines) validated component-by-component, since the
// launcher is trusted to address any app's files, not just its own.

package main

import "strings"

const sudoMaxPathParts = 4

// SudoFS is the filesystem capability the sudo sub-ABI needs beyond
// plain FS: enumerating subdirectories, for list_dirs/list_dirs_buf_size.
// OSFileSystem satisfies this via its ListDirs method.
type SudoFS interface {
	FS
	ListDirs(path string) ([]string, error)
}

// SudoABI implements the sudo sub-ABI. It must only be wired into the
// launcher app's host-function table; regular apps never see it.
type SudoABI struct {
	s  *State
	fs SudoFS
}

// NewSudoABI wires a SudoABI to s, reading through fs.
func NewSudoABI(s *State, fs SudoFS) *SudoABI {
	return &SudoABI{s: s, fs: fs}
}

func (su *SudoABI) enter(name string) { su.s.LastCalled = name }

func (su *SudoABI) logErr(name, msg string) {
	if su.s.Device != nil {
		su.s.Device.Log().Warn("sudo." + name + ": " + msg)
	}
}

// readPath decodes and validates a slash-separated path of at most
// sudoMaxPathParts components, each passing ValidFileName.
func (su *SudoABI) readPath(ptr, length uint32) (string, bool) {
	path, err := su.s.Mem.String(ptr, length)
	if err != nil {
		su.logErr("path", err.Error())
		return "", false
	}
	parts := strings.Split(path, "/")
	if len(parts) > sudoMaxPathParts {
		su.logErr("path", "path has too many components")
		return "", false
	}
	for _, part := range parts {
		if !ValidFileName(part) {
			su.logErr("path", "invalid path component")
			return "", false
		}
	}
	return path, true
}

// ListDirsBufSize returns the byte size list_dirs would need to encode
// every entry name under path as [len:u8][name:bytes].
func (su *SudoABI) ListDirsBufSize(pathPtr, pathLen uint32) uint32 {
	su.enter("list_dirs_buf_size")
	path, ok := su.readPath(pathPtr, pathLen)
	if !ok {
		return 0
	}
	entries, err := su.fs.ListDirs(path)
	if err != nil {
		su.logErr("list_dirs_buf_size", err.Error())
		return 0
	}
	var size uint32
	for _, e := range entries {
		size += uint32(len(e)) + 1
	}
	return size
}

// ListDirs encodes every subdirectory name under path into buf as
// [len:u8][name:bytes]*, returning the number of bytes written.
func (su *SudoABI) ListDirs(pathPtr, pathLen, bufPtr, bufLen uint32) uint32 {
	su.enter("list_dirs")
	path, ok := su.readPath(pathPtr, pathLen)
	if !ok {
		return 0
	}
	entries, err := su.fs.ListDirs(path)
	if err != nil {
		su.logErr("list_dirs", err.Error())
		return 0
	}
	buf, err := su.s.Mem.Slice(bufPtr, bufLen)
	if err != nil {
		su.logErr("list_dirs", err.Error())
		return 0
	}
	pos := 0
	for _, e := range entries {
		if pos+1+len(e) > len(buf) {
			su.logErr("list_dirs", "buffer is not big enough to fit all entries")
			break
		}
		buf[pos] = byte(len(e))
		copy(buf[pos+1:], e)
		pos += 1 + len(e)
	}
	return uint32(pos)
}

// RunApp stops the current app and asks the driver to switch to the
// given one at the next opportunity.
func (su *SudoABI) RunApp(authorPtr, authorLen, appPtr, appLen uint32) {
	su.enter("run_app")
	author, err := su.s.Mem.String(authorPtr, authorLen)
	if err != nil {
		su.logErr("run_app", err.Error())
		return
	}
	app, err := su.s.Mem.String(appPtr, appLen)
	if err != nil {
		su.logErr("run_app", err.Error())
		return
	}
	id := FullID{Author: author, App: app}
	if !ValidFullID(id.String()) {
		su.logErr("run_app", "invalid app id")
		return
	}
	su.s.NextApp = &id
}

// GetFileSize returns path's byte length (a raw path, not rom/data
// layered - see the file header).
func (su *SudoABI) GetFileSize(pathPtr, pathLen uint32) uint32 {
	su.enter("get_file_size")
	path, ok := su.readPath(pathPtr, pathLen)
	if !ok {
		return 0
	}
	size, err := su.fs.Size(path)
	if err != nil {
		su.logErr("get_file_size", err.Error())
		return 0
	}
	return uint32(size)
}

// LoadFile copies path's contents into buf, returning the number of
// bytes copied.
func (su *SudoABI) LoadFile(pathPtr, pathLen, bufPtr, bufLen uint32) uint32 {
	su.enter("load_file")
	path, ok := su.readPath(pathPtr, pathLen)
	if !ok {
		return 0
	}
	data, err := su.fs.Load(path)
	if err != nil {
		su.logErr("load_file", err.Error())
		return 0
	}
	if uint32(len(data)) != bufLen {
		su.logErr("load_file", "buffer size does not match file size")
		return 0
	}
	dst, err := su.s.Mem.Slice(bufPtr, bufLen)
	if err != nil {
		su.logErr("load_file", err.Error())
		return 0
	}
	copy(dst, data)
	return uint32(len(data))
}
