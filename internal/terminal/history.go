package terminal

// History recalls previously submitted lines with up/down navigation. The
// cursor is unset (-1) after every Push, which is the empty new-input state.
type History struct {
	entries []string
	cursor  int
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{cursor: -1}
}

// Push records a submitted line and resets the cursor.
func (h *History) Push(line string) {
	h.entries = append(h.entries, line)
	h.cursor = -1
}

// Up moves toward older entries, stopping at the oldest. It reports false
// when there is nothing to recall.
func (h *History) Up() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	switch {
	case h.cursor == -1:
		h.cursor = len(h.entries) - 1
	case h.cursor > 0:
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Down moves toward newer entries. Moving past the newest entry returns to
// the empty new-input state. It reports false when the cursor is unset.
func (h *History) Down() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	h.cursor++
	if h.cursor >= len(h.entries) {
		h.cursor = -1
		return "", true
	}
	return h.entries[h.cursor], true
}

// Len returns the number of recorded lines.
func (h *History) Len() int { return len(h.entries) }
