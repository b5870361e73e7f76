package kalimba

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
)

const (
	DefaultSampleRate = 44100

	// ToneLifetime is how long every note sounds, start to release.
	ToneLifetime = 1500 * time.Millisecond

	toneGain  = 0.3
	toneFloor = 0.01
)

// EnvelopeGain is the gain of a note t after its onset.
func EnvelopeGain(t time.Duration) float64 {
	if t < 0 || t > ToneLifetime {
		return 0
	}
	return toneGain * math.Pow(toneFloor/toneGain, t.Seconds()/ToneLifetime.Seconds())
}

type SineWave struct {
	sampleRate float64
	frequency  float64
	position   int
	amplitude  float64
}

func sineOsc(phase float64) float64 {
	return math.Sin(2 * math.Pi * phase)
}

func calcPhase(pos int, samplerate, freq float64) float64 {
	return float64(pos) / samplerate * freq
}

func (sw *SineWave) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		value := sineOsc(calcPhase(sw.position, sw.sampleRate, sw.frequency))
		samples[i][0] = value * sw.amplitude
		samples[i][1] = value * sw.amplitude
		sw.position++
	}
	return len(samples), true
}

func (sw *SineWave) Err() error {
	return nil
}

// Envelope starts at full tone gain and decays exponentially to the floor
// over duration samples.
type Envelope struct {
	position int
	duration int

	gain  float64
	ratio float64

	sub beep.Streamer
}

func NewDecayEnvelope(sub beep.Streamer, duration int) *Envelope {
	return &Envelope{
		duration: duration,
		gain:     toneGain,
		ratio:    math.Pow(toneFloor/toneGain, 1/float64(duration)),
		sub:      sub,
	}
}

func (e *Envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.sub.Stream(samples)
	for i := range samples[:n] {
		samples[i][0] *= e.gain
		samples[i][1] *= e.gain
		e.gain *= e.ratio
		e.position++
	}
	return n, ok
}

func (e *Envelope) Err() error {
	return e.sub.Err()
}

type Recorder struct {
	lk       sync.Mutex
	buf      [][2]float64
	position int
}

func NewRecorder(size int) *Recorder {
	return &Recorder{
		buf: make([][2]float64, size),
	}
}

func (r *Recorder) record(samples [][2]float64) {
	r.lk.Lock()
	defer r.lk.Unlock()

	for i := range samples {
		ix := r.position % len(r.buf)
		r.buf[ix] = samples[i]
		r.position++
	}
}

// Snapshot copies the most recent output, oldest first, into buf.
func (r *Recorder) Snapshot(buf [][2]float64) int {
	r.lk.Lock()
	defer r.lk.Unlock()

	lim := len(buf)
	if len(r.buf) < lim {
		lim = len(r.buf)
	}

	for i := 0; i < lim; i++ {
		ix := (r.position + i) % len(r.buf)
		buf[i] = r.buf[ix]
	}

	return lim
}

type voice struct {
	sub  beep.Streamer
	left int
}

// ToneEngine sums any number of independent decaying sine notes. It is a
// beep.Streamer and is meant to be handed to the speaker once.
type ToneEngine struct {
	lk sync.Mutex

	sr       beep.SampleRate
	lifetime int
	started  bool

	voices []*voice
	buf    [][2]float64

	recorder *Recorder
}

func NewToneEngine(sr beep.SampleRate) *ToneEngine {
	return &ToneEngine{
		sr:       sr,
		lifetime: sr.N(ToneLifetime),
		recorder: NewRecorder(10000),
	}
}

func (e *ToneEngine) SampleRate() beep.SampleRate {
	return e.sr
}

func (e *ToneEngine) Recorder() *Recorder {
	return e.recorder
}

// Start marks the output as live. Until then Play does nothing.
func (e *ToneEngine) Start() {
	e.lk.Lock()
	defer e.lk.Unlock()
	e.started = true
}

// Stop drops every sounding note and makes Play a no-op again.
func (e *ToneEngine) Stop() {
	e.lk.Lock()
	defer e.lk.Unlock()
	e.started = false
	e.voices = nil
}

func (e *ToneEngine) Ready() bool {
	if e == nil {
		return false
	}
	e.lk.Lock()
	defer e.lk.Unlock()
	return e.started
}

// Play schedules one note at pitch Hz. It never fails; without a live
// output the call is dropped.
func (e *ToneEngine) Play(pitch float64) {
	if e == nil || pitch <= 0 {
		return
	}

	e.lk.Lock()
	defer e.lk.Unlock()
	if !e.started {
		return
	}

	sine := &SineWave{
		sampleRate: float64(e.sr),
		frequency:  pitch,
		amplitude:  1,
	}

	e.voices = append(e.voices, &voice{
		sub:  beep.Take(e.lifetime, NewDecayEnvelope(sine, e.lifetime)),
		left: e.lifetime,
	})
}

// Voices is the number of notes still sounding.
func (e *ToneEngine) Voices() int {
	e.lk.Lock()
	defer e.lk.Unlock()
	return len(e.voices)
}

func (e *ToneEngine) Stream(samples [][2]float64) (int, bool) {
	e.lk.Lock()
	defer e.lk.Unlock()

	for i := range samples {
		samples[i] = [2]float64{}
	}

	if len(e.buf) < len(samples) {
		e.buf = make([][2]float64, len(samples))
	}

	live := e.voices[:0]
	for _, v := range e.voices {
		buf := e.buf[:len(samples)]
		n, ok := v.sub.Stream(buf)
		for i := range buf[:n] {
			samples[i][0] += buf[i][0]
			samples[i][1] += buf[i][1]
		}

		v.left -= n
		if ok && v.left > 0 {
			live = append(live, v)
		}
	}
	for i := len(live); i < len(e.voices); i++ {
		e.voices[i] = nil
	}
	e.voices = live

	e.recorder.record(samples)

	return len(samples), true
}

func (e *ToneEngine) Err() error {
	return nil
}
