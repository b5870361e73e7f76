// Package kalimba implements a 15 tine thumb piano: gesture tracking,
// retrigger suppression, tone synthesis and the small amount of state the
// display needs.
package kalimba

import (
	"log/slog"
	"sync"
	"time"
)

const (
	// ActiveWindow is how long a tine stays lit after a hit. It has nothing
	// to do with how long the note sounds.
	ActiveWindow = 200 * time.Millisecond

	GradientStep = 100 * time.Millisecond
)

// Synth is where accepted notes go. *ToneEngine is the real one.
type Synth interface {
	Play(pitch float64)
}

type readier interface {
	Ready() bool
}

// View is everything the display needs for one frame.
type View struct {
	Display string
	Labels  []string

	ActiveTine int
	HasActive  bool

	Mood  Mood
	Frame int
	Face  Face

	// Phase drives the background gradient, 0..359.
	Phase int
}

type Kalimba struct {
	lk sync.Mutex

	clock func() time.Time
	log   *slog.Logger

	tracker *Tracker
	synth   Synth
	history History
	expr    Expression

	activeID    int
	activeUntil time.Time

	epoch time.Time

	listeners   []func(Activation)
	warnedAudio bool
}

type Option func(*Kalimba)

func WithClock(clock func() time.Time) Option {
	return func(k *Kalimba) {
		k.clock = clock
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(k *Kalimba) {
		k.log = l
	}
}

func WithSynth(s Synth) Option {
	return func(k *Kalimba) {
		k.synth = s
	}
}

func New(hit HitTester, opts ...Option) *Kalimba {
	k := &Kalimba{
		clock: time.Now,
		log:   slog.Default(),
	}
	for _, o := range opts {
		o(k)
	}

	k.tracker = NewTracker(hit, k.clock)
	k.epoch = k.clock()
	return k
}

// OnActivate registers fn to be called after every accepted activation.
func (k *Kalimba) OnActivate(fn func(Activation)) {
	k.lk.Lock()
	defer k.lk.Unlock()
	k.listeners = append(k.listeners, fn)
}

func (k *Kalimba) Press(p Point) bool {
	k.lk.Lock()
	a, ok := k.tracker.Start(p)
	return k.dispatch(a, ok)
}

func (k *Kalimba) Drag(p Point) bool {
	k.lk.Lock()
	a, ok := k.tracker.Move(p)
	return k.dispatch(a, ok)
}

func (k *Kalimba) Release() {
	k.lk.Lock()
	defer k.lk.Unlock()
	k.tracker.End()
}

func (k *Kalimba) Activate(id int) bool {
	k.lk.Lock()
	a, ok := k.tracker.Direct(id)
	return k.dispatch(a, ok)
}

// dispatch is entered with k.lk held and releases it.
func (k *Kalimba) dispatch(a Activation, ok bool) bool {
	if !ok {
		k.lk.Unlock()
		return false
	}

	if k.synth != nil {
		if r, isR := k.synth.(readier); isR && !r.Ready() && !k.warnedAudio {
			k.log.Warn("audio output unavailable, notes will be silent")
			k.warnedAudio = true
		}
		k.synth.Play(a.Pitch)
	}

	k.history.Append(a.Label)
	k.expr.Notify(a.At)
	k.activeID = a.TineID
	k.activeUntil = a.At.Add(ActiveWindow)

	k.log.Debug("tine activated", "id", a.TineID, "label", a.Label, "pitch", a.Pitch)

	listeners := k.listeners
	k.lk.Unlock()

	for _, fn := range listeners {
		fn(a)
	}
	return true
}

// ToggleFace is the play button.
func (k *Kalimba) ToggleFace() {
	k.lk.Lock()
	defer k.lk.Unlock()
	k.expr.Toggle(k.clock())
}

// Tick advances the timers. Call it once per frame.
func (k *Kalimba) Tick() {
	k.lk.Lock()
	defer k.lk.Unlock()
	k.expr.Update(k.clock())
}

func (k *Kalimba) History() []string {
	k.lk.Lock()
	defer k.lk.Unlock()
	return k.history.Snapshot()
}

// Dragging reports whether a pointer or touch gesture is in progress.
func (k *Kalimba) Dragging() bool {
	k.lk.Lock()
	defer k.lk.Unlock()
	return k.tracker.State().Dragging
}

func (k *Kalimba) View() View {
	k.lk.Lock()
	defer k.lk.Unlock()

	now := k.clock()
	k.expr.Update(now)

	v := View{
		Display: k.history.Display(),
		Labels:  k.history.Snapshot(),
		Mood:    k.expr.Mood(),
		Frame:   k.expr.Frame(),
		Face:    k.expr.Face(),
		Phase:   int(now.Sub(k.epoch)/GradientStep) % 360,
	}
	if now.Before(k.activeUntil) {
		v.ActiveTine = k.activeID
		v.HasActive = true
	}
	return v
}
