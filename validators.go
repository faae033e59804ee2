// validators.go - domain-rule checks the host ABI runs after bounds/UTF-8
// validation, before a guest-supplied value reaches a side effect
//
// Grounded on validators.rs's id-validation rules (fullid.go already
// covers FullID as a whole) plus the per-call domain rules scattered
// across host/*.rs: file-name characters, menu index range, BPP, and
// palette color index.

package main

// ValidFileName reports whether name is safe to use as a path component
// under rom/data/sys: non-empty, no path separators, no leading dot (so
// it can never resolve to "." or ".." or a hidden dotfile), and composed
// only of lowercase alphanumerics, '-', '_', and '.' (for extensions).
func ValidFileName(name string) bool {
	if name == "" || len(name) > 64 {
		return false
	}
	if name[0] == '.' {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == '.':
		default:
			return false
		}
	}
	return true
}

// ValidMenuIndex reports whether idx passes the ABI's menu-index domain
// check, which accepts 0-4. The menu itself has 4 custom slots (indices
// 0-3), so Menu.AddItem/RemoveItem reject index 4 on their own.
func ValidMenuIndex(idx uint32) bool {
	return idx <= 4
}

// ValidBPP reports whether bpp is one of the three packed pixel depths an
// image header may declare.
func ValidBPP(bpp uint32) bool {
	return bpp == 1 || bpp == 2 || bpp == 4
}

// ValidColorIndex reports whether idx is a legal 1-based palette index,
// as used by set_color's guest-facing numbering (0 is reserved to mean
// "no color"/transparent at call sites that accept it separately).
func ValidColorIndex(idx uint32) bool {
	return idx >= 1 && idx <= 16
}

// ValidAudioParam reports whether param is a legal modulation parameter
// index for the audio sub-ABI's mod_* calls.
func ValidAudioParam(param uint32) bool {
	return param <= 8
}
