// errorscene.go - fatal-error popup shown in place of the app on a trap
//
// Grounded on error_scene.rs: the confirm button is disabled for the
// first 500ms so a button held over from whatever caused the trap can't
// immediately dismiss the popup, and firing requires a genuine
// press-then-release transition rather than a level check.

package main

import "time"

const (
	errorSceneConfirmDelay = 500 * time.Millisecond
	errorSceneWrapColumn   = 20
)

// errorSceneActionMask is the width of the button bitmask the confirm
// button is read from; only bit 0 (the "confirm"/A button) matters here,
// but the mask is read in full so a caller can log which other buttons
// were held at dismissal time.
const errorSceneActionMask = 0b11111

// ErrorScene displays a fatal RuntimeError in place of the app until the
// player confirms it, after which the runtime driver returns to the
// launcher.
type ErrorScene struct {
	message   string
	shownAt   time.Time
	wasDown   bool
	confirmed bool
}

// NewErrorScene builds an ErrorScene for message, word-wrapped to
// errorSceneWrapColumn, stamped with now as its display start time so the
// confirm-delay can be measured from it.
func NewErrorScene(message string, now time.Time) *ErrorScene {
	return &ErrorScene{message: wrapMessage(message, errorSceneWrapColumn), shownAt: now}
}

// wrapMessage rewrites the first space at or after column col on each
// line to a newline - exactly the original's simple single-pass wrap,
// not a greedy word-wrap: only one break is inserted per line, at the
// first opportunity past col.
func wrapMessage(msg string, col int) string {
	b := make([]byte, 0, len(msg))
	lineLen := 0
	for i := 0; i < len(msg); i++ {
		c := msg[i]
		if c == '\n' {
			lineLen = 0
			b = append(b, c)
			continue
		}
		if lineLen >= col && c == ' ' {
			b = append(b, '\n')
			lineLen = 0
			continue
		}
		b = append(b, c)
		lineLen++
	}
	return string(b)
}

// Message returns the wrapped message text to render.
func (e *ErrorScene) Message() string { return e.message }

// Confirmed reports whether the player has dismissed the popup.
func (e *ErrorScene) Confirmed() bool { return e.confirmed }

// Update feeds one frame of the confirm button's raw (non-edge) state
// plus the current time. actionMask is the full button bitmask the
// confirm bit is drawn from (bit 0). The button only confirms on a
// press-then-release transition, and only once at least
// errorSceneConfirmDelay has passed since the scene was shown.
func (e *ErrorScene) Update(actionMask uint8, now time.Time) {
	if e.confirmed {
		return
	}
	down := actionMask&1 != 0
	justReleased := !down && e.wasDown
	e.wasDown = down
	if !justReleased {
		return
	}
	if now.Sub(e.shownAt) < errorSceneConfirmDelay {
		return
	}
	e.confirmed = true
}
