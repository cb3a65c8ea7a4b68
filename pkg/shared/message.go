package shared

// MessageType tags a server-to-client frame.
type MessageType int

const (
	MessageTypeText         MessageType = 0  // transcript lines appended
	MessageTypeClear        MessageType = 1  // transcript cleared
	MessageTypeMode         MessageType = 2  // active modal changed ("shell", "password", "editor", "game")
	MessageTypeSession      MessageType = 3  // session ID and token handed to the client
	MessageTypeInputControl MessageType = 4  // input enabled/disabled (busy flag)
	MessageTypePrompt       MessageType = 5  // prompt spans for the input line
	MessageTypeInput        MessageType = 6  // replace the client's input line (history recall, ^C)
	MessageTypeEditor       MessageType = 7  // editor frame
	MessageTypeGame         MessageType = 8  // game frame
	MessageTypeTheme        MessageType = 9  // theme changed
	MessageTypePrivilege    MessageType = 10 // privilege level flipped
	MessageTypeClose        MessageType = 11 // host should hide the terminal panel
	MessageTypeError        MessageType = 12 // transport level error
)

// Message is one frame sent over the WebSocket. Only the fields relevant to
// Type are set.
type Message struct {
	Type    MessageType `json:"type"`
	Content string      `json:"content,omitempty"`

	// MessageTypeText
	Lines []Line `json:"lines,omitempty"`

	// MessageTypeSession
	SessionID string `json:"sessionId,omitempty"`
	Token     string `json:"token,omitempty"`

	// MessageTypeInputControl, MessageTypePrompt
	InputEnabled *bool `json:"inputEnabled,omitempty"`
	Prompt       *Line `json:"prompt,omitempty"`
	Masked       bool  `json:"masked,omitempty"` // password entry

	// MessageTypeInput
	InputStr string `json:"input,omitempty"`

	// MessageTypeMode
	Mode string `json:"mode,omitempty"`

	// MessageTypeEditor
	EditorData   string `json:"editorData,omitempty"`
	EditorFile   string `json:"editorFile,omitempty"`
	EditorMode   string `json:"editorMode,omitempty"` // "navigation" or "insertion"
	EditorStatus string `json:"editorStatus,omitempty"`
	EditorCmd    string `json:"editorCommand,omitempty"`
	CursorLine   int    `json:"cursorLine"`
	CursorCol    int    `json:"cursorCol"`
	EditorMod    bool   `json:"editorMod,omitempty"`

	// MessageTypeGame
	Grid     []string `json:"grid,omitempty"`
	Score    int      `json:"score"`
	GameOver bool     `json:"gameOver,omitempty"`

	// MessageTypeTheme
	Theme       string            `json:"theme,omitempty"`
	ThemeColors map[string]string `json:"themeColors,omitempty"`

	// MessageTypePrivilege
	Admin bool `json:"admin,omitempty"`
}

// BoolPtr is a helper for the optional boolean fields.
func BoolPtr(b bool) *bool { return &b }
