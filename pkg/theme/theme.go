// Package theme holds the named colour palettes of the terminal panel.
package theme

import "strings"

// Palette carries both the CSS classes used by the web panel and hex colours
// used by the local terminal UI.
type Palette struct {
	Name           string
	Background     string // CSS class
	Titlebar       string // CSS class
	Text           string // CSS class
	Prompt         string // CSS class
	ScrollbarThumb string // hex
	ScrollbarTrack string // hex

	TextColor   string // hex
	PromptColor string // hex
	PathColor   string // hex
	AccentColor string // hex
	BackColor   string // hex
}

// Default is the palette a new session starts with.
const Default = "dark"

// order is the order used in usage lines.
var order = []string{"dark", "light", "retro", "ocean"}

var palettes = map[string]Palette{
	"dark": {
		Name: "dark", Background: "bg-slate-900/70", Titlebar: "bg-slate-800/80",
		Text: "text-slate-200", Prompt: "text-teal-400",
		ScrollbarThumb: "#4a5568", ScrollbarTrack: "#1e293b",
		TextColor: "#e2e8f0", PromptColor: "#2dd4bf", PathColor: "#60a5fa", AccentColor: "#2dd4bf", BackColor: "#0f172a",
	},
	"light": {
		Name: "light", Background: "bg-slate-100/70", Titlebar: "bg-slate-200/80",
		Text: "text-slate-800", Prompt: "text-teal-600",
		ScrollbarThumb: "#94a3b8", ScrollbarTrack: "#e2e8f0",
		TextColor: "#1e293b", PromptColor: "#0d9488", PathColor: "#2563eb", AccentColor: "#0d9488", BackColor: "#f1f5f9",
	},
	"retro": {
		Name: "retro", Background: "bg-black/90", Titlebar: "bg-gray-900/90",
		Text: "text-green-400", Prompt: "text-green-400",
		ScrollbarThumb: "#3f3f46", ScrollbarTrack: "#18181b",
		TextColor: "#4ade80", PromptColor: "#4ade80", PathColor: "#60a5fa", AccentColor: "#4ade80", BackColor: "#000000",
	},
	"ocean": {
		Name: "ocean", Background: "bg-blue-900/70", Titlebar: "bg-blue-800/80",
		Text: "text-cyan-200", Prompt: "text-yellow-300",
		ScrollbarThumb: "#2563eb", ScrollbarTrack: "#1e3a8a",
		TextColor: "#a5f3fc", PromptColor: "#fde047", PathColor: "#60a5fa", AccentColor: "#2dd4bf", BackColor: "#1e3a8a",
	},
}

// Lookup returns the palette registered under name.
func Lookup(name string) (Palette, bool) {
	p, ok := palettes[name]
	return p, ok
}

// MustLookup returns the named palette or the default one.
func MustLookup(name string) Palette {
	if p, ok := palettes[name]; ok {
		return p
	}
	return palettes[Default]
}

// Names lists the palette names in display order.
func Names() []string {
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// Usage is the hint printed for an unknown theme name.
func Usage() string {
	return "Usage: theme [" + strings.Join(order, "|") + "]"
}

// Colors flattens the palette for the wire.
func (p Palette) Colors() map[string]string {
	return map[string]string{
		"bg":             p.Background,
		"titlebar":       p.Titlebar,
		"text":           p.Text,
		"prompt":         p.Prompt,
		"scrollbarThumb": p.ScrollbarThumb,
		"scrollbarTrack": p.ScrollbarTrack,
	}
}
