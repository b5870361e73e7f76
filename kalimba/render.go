package kalimba

import (
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// RenderSequence plays ids through a fresh instrument, one every step, and
// writes the result to w as 16-bit stereo wav. The instrument clock follows
// the sample position, so retrigger suppression behaves as it would live.
// An id of 0 is a rest. It returns the history at the end.
func RenderSequence(w io.WriteSeeker, sr beep.SampleRate, ids []int, step time.Duration, opts ...Option) ([]string, error) {
	eng := NewToneEngine(sr)
	eng.Start()

	epoch := time.Unix(0, 0)
	var pos int
	clock := func() time.Time {
		return epoch.Add(sr.D(pos))
	}

	k := New(nil, append(opts, WithClock(clock), WithSynth(eng))...)

	stepN := sr.N(step)
	total := stepN*len(ids) + sr.N(ToneLifetime)
	next := 0

	src := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}

		for next < len(ids) && pos >= next*stepN {
			if ids[next] > 0 {
				k.Activate(ids[next])
			}
			next++
		}

		// stop short of the next onset
		n := len(samples)
		if next < len(ids) && next*stepN-pos < n {
			n = next*stepN - pos
		}
		if total-pos < n {
			n = total - pos
		}

		eng.Stream(samples[:n])
		pos += n
		return n, true
	})

	format := beep.Format{
		SampleRate:  sr,
		NumChannels: 2,
		Precision:   2,
	}
	if err := wav.Encode(w, src, format); err != nil {
		return nil, fmt.Errorf("cannot encode wav: %w", err)
	}

	return k.History(), nil
}
