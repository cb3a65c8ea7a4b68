package terminal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/flivyn/flivynterm/pkg/session"
)

// Frame types a client may send.
const (
	FrameSubmit     = "submit"
	FrameKey        = "key"
	FrameEditorText = "editorText"
	FrameResize     = "resize"
	FrameKeepalive  = "keepalive"
)

const (
	maxLineLen = 4096
	maxKeyLen  = 32
	maxDim     = 1000
)

var (
	ErrFrameMalformed   = errors.New("malformed frame")
	ErrFrameUnknownType = errors.New("unknown frame type")
	ErrFrameTooLarge    = errors.New("frame content too large")
)

// ClientFrame is one message from the browser.
type ClientFrame struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Key     string `json:"key,omitempty"`
	Ctrl    bool   `json:"ctrl,omitempty"`
	Alt     bool   `json:"alt,omitempty"`
	Shift   bool   `json:"shift,omitempty"`
	Cols    int    `json:"cols,omitempty"`
	Rows    int    `json:"rows,omitempty"`
}

// DecodeFrame parses and checks a client frame and turns it into a session
// event. Keepalives decode to a nil event. maxContent bounds editor text.
func DecodeFrame(data []byte, maxContent int) (session.Event, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var f ClientFrame
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFrameMalformed, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data", ErrFrameMalformed)
	}

	switch f.Type {
	case FrameSubmit:
		if len(f.Content) > maxLineLen {
			return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(f.Content))
		}
		if strings.ContainsAny(f.Content, "\r\n") {
			return nil, fmt.Errorf("%w: line break in submitted line", ErrFrameMalformed)
		}
		return session.Submit{Line: f.Content}, nil

	case FrameKey:
		if f.Key == "" || len(f.Key) > maxKeyLen {
			return nil, fmt.Errorf("%w: key %q", ErrFrameMalformed, f.Key)
		}
		return session.Key{Key: f.Key, Ctrl: f.Ctrl, Alt: f.Alt, Shift: f.Shift}, nil

	case FrameEditorText:
		if maxContent > 0 && len(f.Content) > maxContent {
			return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(f.Content))
		}
		return session.EditorText{Content: f.Content}, nil

	case FrameResize:
		if f.Cols <= 0 || f.Rows <= 0 || f.Cols > maxDim || f.Rows > maxDim {
			return nil, fmt.Errorf("%w: size %dx%d", ErrFrameMalformed, f.Cols, f.Rows)
		}
		return session.Resize{Cols: f.Cols, Rows: f.Rows}, nil

	case FrameKeepalive:
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrFrameUnknownType, f.Type)
}
