package editor

// handleInsertText inserts s at the cursor. s must not contain newlines.
func (e *Editor) handleInsertText(s string) {
	runes := []rune(e.lines[e.cursorY])
	ins := []rune(s)
	out := make([]rune, 0, len(runes)+len(ins))
	out = append(out, runes[:e.cursorX]...)
	out = append(out, ins...)
	out = append(out, runes[e.cursorX:]...)
	e.lines[e.cursorY] = string(out)
	e.cursorX += len(ins)
	e.modified = true
}

// handleEnter splits the current line at the cursor.
func (e *Editor) handleEnter() {
	if len(e.lines) >= e.maxLines {
		e.message = "buffer full"
		return
	}
	runes := []rune(e.lines[e.cursorY])
	head, tail := string(runes[:e.cursorX]), string(runes[e.cursorX:])

	e.lines = append(e.lines, "")
	copy(e.lines[e.cursorY+2:], e.lines[e.cursorY+1:])
	e.lines[e.cursorY] = head
	e.lines[e.cursorY+1] = tail

	e.cursorY++
	e.cursorX = 0
	e.modified = true
}

// handleBackspace deletes the rune before the cursor, or joins the line with
// the previous one at column 0.
func (e *Editor) handleBackspace() {
	if e.cursorX > 0 {
		runes := []rune(e.lines[e.cursorY])
		e.lines[e.cursorY] = string(runes[:e.cursorX-1]) + string(runes[e.cursorX:])
		e.cursorX--
		e.modified = true
		return
	}
	if e.cursorY == 0 {
		return
	}
	prev := e.cursorY - 1
	e.cursorX = e.lineLen(prev)
	e.lines[prev] += e.lines[e.cursorY]
	e.lines = append(e.lines[:e.cursorY], e.lines[e.cursorY+1:]...)
	e.cursorY = prev
	e.modified = true
}

// handleDelete removes the rune under the cursor.
func (e *Editor) handleDelete() {
	runes := []rune(e.lines[e.cursorY])
	if e.cursorX >= len(runes) {
		return
	}
	e.lines[e.cursorY] = string(runes[:e.cursorX]) + string(runes[e.cursorX+1:])
	e.modified = true
}

// openLineBelow inserts an empty line after the cursor line and moves there.
func (e *Editor) openLineBelow() {
	if len(e.lines) >= e.maxLines {
		e.message = "buffer full"
		return
	}
	e.lines = append(e.lines, "")
	copy(e.lines[e.cursorY+2:], e.lines[e.cursorY+1:])
	e.lines[e.cursorY+1] = ""
	e.cursorY++
	e.cursorX = 0
	e.modified = true
}
