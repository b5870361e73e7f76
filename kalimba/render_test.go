package kalimba

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

func TestRenderSequence(t *testing.T) {
	sr := beep.SampleRate(8000)
	path := filepath.Join(t.TempDir(), "out.wav")

	fi, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	// the repeated 1 falls inside the retrigger window and is dropped, the
	// one after the rest is far enough apart to sound
	ids := []int{7, 8, 8, 0, 8}
	hist, err := RenderSequence(fi, sr, ids, 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if err := fi.Close(); err != nil {
		t.Fatal(err)
	}

	if want := []string{"1", "1", "1"}; !reflect.DeepEqual(hist, want) {
		t.Fatalf("history %v, want %v", hist, want)
	}

	fi, err = os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fi.Close()

	s, format, err := wav.Decode(fi)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if format.SampleRate != sr || format.NumChannels != 2 {
		t.Fatalf("unexpected format %+v", format)
	}
	want := sr.N(50*time.Millisecond)*len(ids) + sr.N(ToneLifetime)
	if s.Len() != want {
		t.Fatalf("rendered %d frames, want %d", s.Len(), want)
	}
}
