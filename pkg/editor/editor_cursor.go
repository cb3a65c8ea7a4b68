package editor

import "unicode/utf8"

func (e *Editor) lineLen(y int) int {
	return utf8.RuneCountInString(e.lines[y])
}

// moveCursor moves by the given offsets and clamps to the buffer. Horizontal
// moves stay on the current line.
func (e *Editor) moveCursor(deltaX, deltaY int) {
	e.cursorY += deltaY
	e.cursorX += deltaX
	e.clampCursor()
}

func (e *Editor) clampCursor() {
	if len(e.lines) == 0 {
		e.lines = []string{""}
	}
	if e.cursorY < 0 {
		e.cursorY = 0
	}
	if e.cursorY >= len(e.lines) {
		e.cursorY = len(e.lines) - 1
	}
	if e.cursorX < 0 {
		e.cursorX = 0
	}
	if n := e.lineLen(e.cursorY); e.cursorX > n {
		e.cursorX = n
	}
}

// adjustScroll keeps the cursor inside a window of rows lines.
func (e *Editor) adjustScroll(rows int) {
	if rows <= 0 {
		return
	}
	if e.cursorY < e.scrollY {
		e.scrollY = e.cursorY
	}
	if e.cursorY >= e.scrollY+rows {
		e.scrollY = e.cursorY - rows + 1
	}
	if e.scrollY < 0 {
		e.scrollY = 0
	}
}
