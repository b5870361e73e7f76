package kalimba

import "fmt"

// Tine is one key of the instrument.
type Tine struct {
	ID    int
	Label string
	Pitch float64

	// Position is the left-to-right rank, dense from 0.
	Position int

	// Length only affects drawing.
	Length int
}

// NumTines is the size of the fixed layout.
const NumTines = 15

// left side outer to inner, centre, right side inner to outer
var tines = []Tine{
	{ID: 1, Label: "6", Pitch: 392, Position: 0, Length: 120},
	{ID: 2, Label: "4", Pitch: 349, Position: 1, Length: 110},
	{ID: 3, Label: "2", Pitch: 294, Position: 2, Length: 100},
	{ID: 4, Label: "7", Pitch: 440, Position: 3, Length: 90},
	{ID: 5, Label: "5", Pitch: 370, Position: 4, Length: 80},
	{ID: 6, Label: "3", Pitch: 330, Position: 5, Length: 70},
	{ID: 7, Label: "1", Pitch: 262, Position: 6, Length: 60},

	{ID: 8, Label: "1", Pitch: 523, Position: 7, Length: 50},

	{ID: 9, Label: "3", Pitch: 659, Position: 8, Length: 60},
	{ID: 10, Label: "5", Pitch: 784, Position: 9, Length: 70},
	{ID: 11, Label: "7", Pitch: 880, Position: 10, Length: 80},
	{ID: 12, Label: "2", Pitch: 587, Position: 11, Length: 90},
	{ID: 13, Label: "4", Pitch: 698, Position: 12, Length: 100},
	{ID: 14, Label: "6", Pitch: 1047, Position: 13, Length: 110},
	{ID: 15, Label: "1", Pitch: 1319, Position: 14, Length: 120},
}

// Tines returns a copy of the layout in position order.
func Tines() []Tine {
	out := make([]Tine, len(tines))
	copy(out, tines)
	return out
}

func Lookup(id int) (Tine, bool) {
	for _, t := range tines {
		if t.ID == id {
			return t, true
		}
	}
	return Tine{}, false
}

func LookupPosition(pos int) (Tine, bool) {
	if pos < 0 || pos >= len(tines) {
		return Tine{}, false
	}
	return tines[pos], true
}

// ResolvePoint asks the hit tester which tine is drawn under p.
func ResolvePoint(ht HitTester, p Point) (Tine, bool) {
	if ht == nil {
		return Tine{}, false
	}
	id, ok := ht.Resolve(p)
	if !ok {
		return Tine{}, false
	}
	return Lookup(id)
}

// Validate checks that a layout has the expected shape.
func Validate(ts []Tine) error {
	if len(ts) != NumTines {
		return fmt.Errorf("expected %d tines, got %d", NumTines, len(ts))
	}

	ids := make(map[int]bool)
	positions := make([]bool, len(ts))
	for _, t := range ts {
		if ids[t.ID] {
			return fmt.Errorf("duplicate tine id %d", t.ID)
		}
		ids[t.ID] = true

		if t.Position < 0 || t.Position >= len(ts) {
			return fmt.Errorf("tine %d: position %d out of range", t.ID, t.Position)
		}
		if positions[t.Position] {
			return fmt.Errorf("tine %d: duplicate position %d", t.ID, t.Position)
		}
		positions[t.Position] = true

		if t.Pitch <= 0 {
			return fmt.Errorf("tine %d: pitch must be positive", t.ID)
		}
	}
	return nil
}
