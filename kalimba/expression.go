package kalimba

import "time"

type Mood int

const (
	Idle Mood = iota
	Playing
)

func (m Mood) String() string {
	if m == Playing {
		return "playing"
	}
	return "idle"
}

type Face struct {
	Eyes  string
	Mouth string
}

var Faces = [4]Face{
	{Eyes: "• •", Mouth: "‿"},
	{Eyes: "◕ ◕", Mouth: "o"},
	{Eyes: "^ ^", Mouth: "‿"},
	{Eyes: "● ●", Mouth: "◡"},
}

const (
	FrameInterval = 300 * time.Millisecond
	IdleAfter     = time.Second
)

// Expression animates the face on the play button. It only listens to
// activations and the clock; it never touches audio.
type Expression struct {
	mood  Mood
	frame int

	nextFrame time.Time
	idleAt    time.Time

	// set by Toggle, holds Playing until the next activation or toggle
	latched bool
}

func (x *Expression) Notify(now time.Time) {
	if x.mood != Playing {
		x.enter(now)
	}
	x.latched = false
	x.idleAt = now.Add(IdleAfter)
}

func (x *Expression) Toggle(now time.Time) {
	if x.mood == Playing {
		x.leave()
		return
	}
	x.enter(now)
	x.latched = true
}

func (x *Expression) Update(now time.Time) {
	if x.mood != Playing {
		return
	}

	if !x.latched && !now.Before(x.idleAt) {
		x.leave()
		return
	}

	for !now.Before(x.nextFrame) {
		x.frame = (x.frame + 1) % len(Faces)
		x.nextFrame = x.nextFrame.Add(FrameInterval)
	}
}

func (x *Expression) enter(now time.Time) {
	x.mood = Playing
	x.frame = 0
	x.nextFrame = now.Add(FrameInterval)
}

func (x *Expression) leave() {
	x.mood = Idle
	x.frame = 0
	x.latched = false
}

func (x *Expression) Mood() Mood {
	return x.mood
}

func (x *Expression) Frame() int {
	return x.frame
}

func (x *Expression) Face() Face {
	return Faces[x.frame]
}
