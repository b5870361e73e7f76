package kalimba

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

type fakeSynth struct {
	played []float64
}

func (s *fakeSynth) Play(pitch float64) {
	s.played = append(s.played, pitch)
}

func newTestKalimba() (*Kalimba, *fakeClock, *fakeSynth) {
	clk := newFakeClock()
	syn := &fakeSynth{}
	k := New(columns, WithClock(clk.Now), WithSynth(syn))
	return k, clk, syn
}

func TestHistoryScenario(t *testing.T) {
	k, _, syn := newTestKalimba()

	k.Activate(7)
	if got := k.History(); !reflect.DeepEqual(got, []string{"1"}) {
		t.Fatalf("got %v", got)
	}

	for id := 8; id <= 13; id++ {
		if !k.Activate(id) {
			t.Fatalf("tine %d should be accepted", id)
		}
	}

	want := []string{"3", "5", "7", "2", "4"}
	if got := k.History(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if len(syn.played) != 7 {
		t.Fatalf("expected 7 notes, got %d", len(syn.played))
	}
	if syn.played[0] != 262 {
		t.Fatalf("first note at %v Hz", syn.played[0])
	}
}

func TestDoubleHitWithin50ms(t *testing.T) {
	k, clk, syn := newTestKalimba()

	k.Activate(1)
	clk.Advance(50 * time.Millisecond)
	k.Activate(1)

	if len(k.History()) != 1 || len(syn.played) != 1 {
		t.Fatalf("second hit should be ignored: history %v, notes %v", k.History(), syn.played)
	}
}

func TestDoubleHitAfter150ms(t *testing.T) {
	k, clk, syn := newTestKalimba()

	k.Activate(1)
	clk.Advance(150 * time.Millisecond)
	k.Activate(1)

	if got := k.History(); !reflect.DeepEqual(got, []string{"6", "6"}) {
		t.Fatalf("got %v", got)
	}
	if len(syn.played) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(syn.played))
	}
}

func TestEmptySpaceDoesNothing(t *testing.T) {
	k, clk, syn := newTestKalimba()

	k.Press(nowhere)
	for i := 0; i < 50; i++ {
		clk.Advance(5 * time.Millisecond)
		k.Drag(Point{X: 500, Y: int32(i)})
	}
	k.Release()

	if len(k.History()) != 0 || len(syn.played) != 0 {
		t.Fatal("empty space should never play")
	}
	if v := k.View(); v.Display != Placeholder || v.HasActive {
		t.Fatalf("unexpected view %+v", v)
	}
}

func TestDragGesture(t *testing.T) {
	k, clk, syn := newTestKalimba()

	k.Press(at(0))
	if !k.Dragging() {
		t.Fatal("press should start a gesture")
	}
	for pos := 0; pos < NumTines; pos++ {
		// several motion samples per tine
		for j := 0; j < 3; j++ {
			k.Drag(at(pos))
			clk.Advance(4 * time.Millisecond)
		}
	}
	k.Release()
	if k.Dragging() {
		t.Fatal("release should end the gesture")
	}

	if len(syn.played) != NumTines {
		t.Fatalf("expected one note per tine, got %d", len(syn.played))
	}
	for i, p := range syn.played {
		tn, _ := LookupPosition(i)
		if p != tn.Pitch {
			t.Fatalf("note %d at %v Hz, want %v", i, p, tn.Pitch)
		}
	}

	k.Drag(at(3))
	if len(syn.played) != NumTines {
		t.Fatal("drag after release should not play")
	}
}

func TestActiveWindow(t *testing.T) {
	k, clk, _ := newTestKalimba()

	k.Activate(4)
	v := k.View()
	if !v.HasActive || v.ActiveTine != 4 {
		t.Fatalf("tine 4 should be lit: %+v", v)
	}

	clk.Advance(150 * time.Millisecond)
	k.Activate(5)
	clk.Advance(150 * time.Millisecond)
	if v := k.View(); !v.HasActive || v.ActiveTine != 5 {
		t.Fatalf("new hit should restart the window: %+v", v)
	}

	clk.Advance(50 * time.Millisecond)
	if v := k.View(); v.HasActive {
		t.Fatalf("window should have closed: %+v", v)
	}
}

func TestToneOutlivesActiveWindow(t *testing.T) {
	clk := newFakeClock()
	sr := beep.SampleRate(1000)
	eng := NewToneEngine(sr)
	eng.Start()
	k := New(columns, WithClock(clk.Now), WithSynth(eng))

	k.Activate(8)
	clk.Advance(ActiveWindow)
	pull(eng, sr.N(ActiveWindow), 50)

	if k.View().HasActive {
		t.Fatal("visual window should be over")
	}
	if eng.Voices() != 1 {
		t.Fatal("tone should still be sounding")
	}

	pull(eng, sr.N(ToneLifetime-ActiveWindow), 50)
	if eng.Voices() != 0 {
		t.Fatal("tone should have been released")
	}
}

func TestSilentWithoutAudio(t *testing.T) {
	clk := newFakeClock()
	eng := NewToneEngine(beep.SampleRate(1000))
	k := New(columns, WithClock(clk.Now), WithSynth(eng))

	if !k.Activate(2) {
		t.Fatal("activation should still be accepted")
	}
	if eng.Voices() != 0 {
		t.Fatal("no voice without output")
	}
	if got := k.History(); !reflect.DeepEqual(got, []string{"4"}) {
		t.Fatalf("history should still update, got %v", got)
	}
	if !k.View().HasActive {
		t.Fatal("tine should still light up")
	}

	var nilEngine *ToneEngine
	k2 := New(columns, WithClock(clk.Now), WithSynth(nilEngine))
	if !k2.Activate(2) {
		t.Fatal("nil engine should not break activation")
	}

	k3 := New(columns, WithClock(clk.Now))
	if !k3.Activate(2) {
		t.Fatal("no synth at all should not break activation")
	}
}

func TestListenersAndExpression(t *testing.T) {
	k, clk, _ := newTestKalimba()

	var got []Activation
	k.OnActivate(func(a Activation) {
		got = append(got, a)
		// listeners run without the lock held
		_ = k.History()
	})

	k.Activate(10)
	if len(got) != 1 || got[0].TineID != 10 || got[0].Label != "5" {
		t.Fatalf("listener saw %+v", got)
	}

	if v := k.View(); v.Mood != Playing {
		t.Fatal("activation should start the face animation")
	}
	clk.Advance(300 * time.Millisecond)
	k.Tick()
	if v := k.View(); v.Frame != 1 || v.Face != Faces[1] {
		t.Fatalf("expected frame 1, got %+v", v)
	}

	clk.Advance(700 * time.Millisecond)
	k.Tick()
	if v := k.View(); v.Mood != Idle || v.Frame != 0 {
		t.Fatalf("expected idle, got %+v", v)
	}

	k.ToggleFace()
	if k.View().Mood != Playing {
		t.Fatal("toggle should start playing")
	}
}

func TestGradientPhase(t *testing.T) {
	k, clk, _ := newTestKalimba()

	if k.View().Phase != 0 {
		t.Fatal("phase starts at 0")
	}
	clk.Advance(250 * time.Millisecond)
	if p := k.View().Phase; p != 2 {
		t.Fatalf("phase %d, want 2", p)
	}
	clk.Advance(36 * time.Second)
	if p := k.View().Phase; p != 2 {
		t.Fatalf("phase should wrap at 360, got %d", p)
	}
}

func TestArp(t *testing.T) {
	k := New(columns, WithSynth(&fakeSynth{}))
	a := &Arp{
		Tines:    []int{1, 0, 2, 3},
		Duration: time.Millisecond,
		Target:   k,
	}

	if err := a.Run(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if got := k.History(); !reflect.DeepEqual(got, []string{"6", "4", "2"}) {
		t.Fatalf("got %v", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.Run(ctx, true); err != context.Canceled {
		t.Fatalf("expected cancellation, got %v", err)
	}
}
