package kalimba

import "strings"

const HistorySize = 5

// Placeholder is what the display shows before anything has been played.
const Placeholder = "1 3 5 7 2 4 6"

// History keeps the labels of the last few notes, oldest first.
type History struct {
	labels []string
}

func (h *History) Append(label string) {
	h.labels = append(h.labels, label)
	if over := len(h.labels) - HistorySize; over > 0 {
		h.labels = append(h.labels[:0], h.labels[over:]...)
	}
}

func (h *History) Snapshot() []string {
	out := make([]string, len(h.labels))
	copy(out, h.labels)
	return out
}

func (h *History) Len() int {
	return len(h.labels)
}

func (h *History) Display() string {
	if len(h.labels) == 0 {
		return Placeholder
	}
	return strings.Join(h.labels, " ")
}
