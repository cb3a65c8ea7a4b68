package virtualfs

import "strings"

// Path is a sequence of segments from the root. The root is the empty Path.
type Path []string

// ParsePath resolves raw against cwd. A leading "/" or "~" starts from the
// root, "." is dropped and ".." pops a segment (staying at the root).
func ParsePath(cwd Path, raw string) Path {
	raw = strings.TrimSpace(raw)

	var out Path
	switch {
	case raw == "~" || strings.HasPrefix(raw, "~/"):
		raw = strings.TrimPrefix(raw, "~")
	case strings.HasPrefix(raw, "/"):
	default:
		out = append(out, cwd...)
	}

	for _, seg := range strings.Split(raw, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, seg)
		}
	}
	return out
}

// String renders the absolute form, e.g. "/projects/README.md".
func (p Path) String() string {
	return "/" + strings.Join(p, "/")
}

// Dir returns the parent path. The root's parent is the root.
func (p Path) Dir() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// Base returns the last segment, or "" for the root.
func (p Path) Base() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Join appends segments without normalising them.
func (p Path) Join(segs ...string) Path {
	out := make(Path, 0, len(p)+len(segs))
	out = append(out, p...)
	return append(out, segs...)
}

// Equal reports whether both paths have the same segments.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}
