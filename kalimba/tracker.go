package kalimba

import "time"

// RetriggerWindow is the minimum time between two accepted hits of the same
// tine while it is still the last one triggered.
const RetriggerWindow = 100 * time.Millisecond

type Point struct {
	X, Y int32
}

// HitTester maps a screen coordinate to the tine drawn there.
type HitTester interface {
	Resolve(p Point) (id int, ok bool)
}

type HitFunc func(Point) (int, bool)

func (f HitFunc) Resolve(p Point) (int, bool) {
	return f(p)
}

// Activation is one accepted request to sound a tine.
type Activation struct {
	TineID int
	Pitch  float64
	Label  string
	At     time.Time
}

type GestureState struct {
	Dragging bool

	// LastTriggered is only meaningful when HasLast is set.
	LastTriggered int
	HasLast       bool

	LastTrigger map[int]time.Time
}

// Tracker turns pointer and touch input into activations.
type Tracker struct {
	hit   HitTester
	clock func() time.Time

	state GestureState
}

func NewTracker(hit HitTester, clock func() time.Time) *Tracker {
	if clock == nil {
		clock = time.Now
	}
	return &Tracker{
		hit:   hit,
		clock: clock,
		state: GestureState{
			LastTrigger: make(map[int]time.Time),
		},
	}
}

func (tr *Tracker) Start(p Point) (Activation, bool) {
	tr.state.Dragging = true

	t, ok := ResolvePoint(tr.hit, p)
	if !ok {
		return Activation{}, false
	}
	return tr.attempt(t)
}

func (tr *Tracker) Move(p Point) (Activation, bool) {
	if !tr.state.Dragging {
		return Activation{}, false
	}

	t, ok := ResolvePoint(tr.hit, p)
	if !ok {
		return Activation{}, false
	}

	// still over the tine we just played
	if tr.state.HasLast && tr.state.LastTriggered == t.ID {
		return Activation{}, false
	}
	return tr.attempt(t)
}

func (tr *Tracker) End() {
	tr.state.Dragging = false
	tr.state.HasLast = false
	tr.state.LastTriggered = 0
}

// Direct is the click/tap/keyboard path; it does not look at drag state.
func (tr *Tracker) Direct(id int) (Activation, bool) {
	t, ok := Lookup(id)
	if !ok {
		return Activation{}, false
	}
	return tr.attempt(t)
}

func (tr *Tracker) attempt(t Tine) (Activation, bool) {
	now := tr.clock()

	if tr.state.HasLast && tr.state.LastTriggered == t.ID {
		if last, ok := tr.state.LastTrigger[t.ID]; ok && now.Sub(last) < RetriggerWindow {
			return Activation{}, false
		}
	}

	tr.state.HasLast = true
	tr.state.LastTriggered = t.ID
	tr.state.LastTrigger[t.ID] = now

	return Activation{
		TineID: t.ID,
		Pitch:  t.Pitch,
		Label:  t.Label,
		At:     now,
	}, true
}

func (tr *Tracker) State() GestureState {
	st := tr.state
	st.LastTrigger = make(map[int]time.Time, len(tr.state.LastTrigger))
	for k, v := range tr.state.LastTrigger {
		st.LastTrigger[k] = v
	}
	return st
}
