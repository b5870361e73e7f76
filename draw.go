package main

import (
	"fmt"
	"math/cmplx"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/maddyblue/go-dsp/fft"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/veandco/go-sdl2/ttf"

	"github.com/whyrusleeping/kalimba/config"
	"github.com/whyrusleeping/kalimba/kalimba"
)

const (
	tineWidth = 12
	hitWidth  = 24
	tineLift  = 8

	buttonSize = 80

	// SDL_TOUCH_MOUSEID, set on mouse events synthesized from touches
	touchMouseID = ^uint32(0)
)

var background = []string{
	"#8B7355", // brown
	"#4A9B8E", // teal
	"#5B7AA0", // blue
	"#8B6F9B", // purple
	"#A0647A", // mauve
	"#7A8B9B", // blue-gray
	"#B8860B", // gold
	"#6B8E23", // olive
	"#4682B4", // steel blue
	"#DA70D6", // orchid
}

// number row then qwert, left to right
var keyPositions = map[sdl.Keycode]int{
	sdl.K_1: 0,
	sdl.K_2: 1,
	sdl.K_3: 2,
	sdl.K_4: 3,
	sdl.K_5: 4,
	sdl.K_6: 5,
	sdl.K_7: 6,
	sdl.K_8: 7,
	sdl.K_9: 8,
	sdl.K_0: 9,
	sdl.K_q: 10,
	sdl.K_w: 11,
	sdl.K_e: 12,
	sdl.K_r: 13,
	sdl.K_t: 14,
}

// layout is where everything is drawn, and doubles as the hit tester for
// the instrument.
type layout struct {
	w, h int32

	tines   []kalimba.Tine
	rects   []sdl.Rect
	display sdl.Rect
	button  sdl.Rect
	scope   sdl.Rect
}

func newLayout(w, h int32) *layout {
	l := &layout{tines: kalimba.Tines()}
	l.resize(w, h)
	return l
}

func (l *layout) resize(w, h int32) {
	l.w, l.h = w, h

	margin := w / 10
	span := w - 2*margin
	base := h * 3 / 5
	last := int32(len(l.tines) - 1)

	l.rects = l.rects[:0]
	for _, t := range l.tines {
		height := int32(t.Length + 40)
		x := margin + int32(t.Position)*span/last
		l.rects = append(l.rects, sdl.Rect{
			X: x - tineWidth/2,
			Y: base - height,
			W: tineWidth,
			H: height,
		})
	}

	l.display = sdl.Rect{X: w/2 - 120, Y: h / 16, W: 240, H: 48}
	l.button = sdl.Rect{X: w/2 - buttonSize/2, Y: base + (h-base)/4, W: buttonSize, H: buttonSize}
	l.scope = sdl.Rect{X: margin, Y: l.button.Y + buttonSize + 16, W: span, H: h - (l.button.Y + buttonSize + 32)}
}

func (l *layout) Resolve(p kalimba.Point) (int, bool) {
	sp := sdl.Point{X: p.X, Y: p.Y}
	for i := range l.rects {
		hit := l.rects[i]
		hit.X -= (hitWidth - tineWidth) / 2
		hit.W = hitWidth
		if sp.InRect(&hit) {
			return l.tines[i].ID, true
		}
	}
	return 0, false
}

func (l *layout) onButton(p kalimba.Point) bool {
	sp := sdl.Point{X: p.X, Y: p.Y}
	return sp.InRect(&l.button)
}

func tineColor(pos int) colorful.Color {
	ratio := float64(pos) / float64(kalimba.NumTines-1)
	return colorful.Hsl(240+ratio*60, (20+ratio*40)/100, (70-ratio*10)/100)
}

func backgroundColors(phase int) (colorful.Color, colorful.Color) {
	i1 := (phase / 36) % len(background)
	i2 := (i1 + 1) % len(background)
	c1, _ := colorful.Hex(background[i1])
	c2, _ := colorful.Hex(background[i2])
	return c1, c2
}

func setColor(r *sdl.Renderer, c colorful.Color) {
	cr, cg, cb := c.Clamped().RGB255()
	r.SetDrawColor(cr, cg, cb, 255)
}

type text struct {
	font *ttf.Font
	r    *sdl.Renderer
}

func openText(r *sdl.Renderer, cfg config.WindowConfig) *text {
	t := &text{r: r}
	if cfg.FontPath == "" {
		return t
	}
	if err := ttf.Init(); err != nil {
		logger.Warn("cannot init ttf, drawing without text", "err", err)
		return t
	}
	f, err := ttf.OpenFont(cfg.FontPath, cfg.FontSize)
	if err != nil {
		logger.Warn("cannot open font, drawing without text", "path", cfg.FontPath, "err", err)
		return t
	}
	t.font = f
	return t
}

func (t *text) Close() {
	if t.font != nil {
		t.font.Close()
		ttf.Quit()
	}
}

// draw centres s on (x, y).
func (t *text) draw(s string, x, y int32, c sdl.Color) {
	if t.font == nil || s == "" {
		return
	}
	surf, err := t.font.RenderUTF8Blended(s, c)
	if err != nil {
		return
	}
	defer surf.Free()

	tex, err := t.r.CreateTextureFromSurface(surf)
	if err != nil {
		return
	}
	defer tex.Destroy()

	dst := sdl.Rect{X: x - surf.W/2, Y: y - surf.H/2, W: surf.W, H: surf.H}
	t.r.Copy(tex, nil, &dst)
}

type scope struct {
	rec *kalimba.Recorder

	buf        [][2]float64
	dataPoints []float64
}

func newScope(rec *kalimba.Recorder) *scope {
	return &scope{
		rec:        rec,
		buf:        make([][2]float64, 2048),
		dataPoints: make([]float64, 2048),
	}
}

func (s *scope) draw(renderer *sdl.Renderer, area sdl.Rect) {
	if area.H < 40 {
		return
	}

	s.rec.Snapshot(s.buf)
	for i, v := range s.buf {
		s.dataPoints[i] = v[0]
	}

	fftResult := fft.FFTReal(s.dataPoints)

	magnitudeSpectrum := make([]float64, len(fftResult)/2+1)
	for i, c := range fftResult[:len(magnitudeSpectrum)] {
		magnitudeSpectrum[i] = cmplx.Abs(c) / float64(len(s.dataPoints))
	}

	half := area.H / 2
	graphData(renderer, s.dataPoints[:500], area.X, area.Y, area.W, half-4, -1, 1)
	// 2048 points at 44.1kHz puts the top tine near bin 60
	graphData(renderer, magnitudeSpectrum[:100], area.X, area.Y+half, area.W, half-4, 0, 0.2)
}

func draw(cfg *config.Config) error {
	if err := sdl.Init(sdl.INIT_EVERYTHING); err != nil {
		return fmt.Errorf("cannot initialize SDL: %w", err)
	}
	defer sdl.Quit()

	window, err := sdl.CreateWindow("kalimba", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		cfg.Window.Width, cfg.Window.Height, sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return fmt.Errorf("cannot create window: %w", err)
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return fmt.Errorf("cannot create renderer: %w", err)
	}
	defer renderer.Destroy()

	eng, closeAudio := openAudio(cfg)
	defer closeAudio()

	txt := openText(renderer, cfg.Window)
	defer txt.Close()

	lay := newLayout(window.GetSize())
	k := kalimba.New(lay, kalimba.WithSynth(eng), kalimba.WithLogger(logger))

	var sc *scope
	if cfg.Scope {
		sc = newScope(eng.Recorder())
	}

	// only the first finger plays, like a single pointer
	var finger sdl.FingerID
	var fingerDown bool

	press := func(p kalimba.Point) {
		if lay.onButton(p) {
			k.ToggleFace()
			return
		}
		k.Press(p)
	}

	var title string
	running := true
	for running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch event := event.(type) {
			case *sdl.QuitEvent:
				running = false
			case *sdl.WindowEvent:
				if event.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
					lay.resize(event.Data1, event.Data2)
				}
			case *sdl.MouseButtonEvent:
				if event.Which == touchMouseID || event.Button != sdl.BUTTON_LEFT {
					continue
				}
				p := kalimba.Point{X: event.X, Y: event.Y}
				if event.Type == sdl.MOUSEBUTTONDOWN {
					press(p)
				} else {
					k.Release()
				}
			case *sdl.MouseMotionEvent:
				if event.Which == touchMouseID {
					continue
				}
				k.Drag(kalimba.Point{X: event.X, Y: event.Y})
			case *sdl.TouchFingerEvent:
				p := kalimba.Point{
					X: int32(event.X * float32(lay.w)),
					Y: int32(event.Y * float32(lay.h)),
				}
				switch event.Type {
				case sdl.FINGERDOWN:
					if fingerDown {
						continue
					}
					finger, fingerDown = event.FingerID, true
					press(p)
				case sdl.FINGERMOTION:
					if fingerDown && event.FingerID == finger {
						k.Drag(p)
					}
				case sdl.FINGERUP:
					if fingerDown && event.FingerID == finger {
						fingerDown = false
						k.Release()
					}
				}
			case *sdl.KeyboardEvent:
				if event.Type != sdl.KEYDOWN || event.Repeat != 0 {
					continue
				}
				switch event.Keysym.Sym {
				case sdl.K_ESCAPE:
					running = false
				case sdl.K_SPACE:
					k.ToggleFace()
				default:
					if pos, ok := keyPositions[event.Keysym.Sym]; ok {
						t, _ := kalimba.LookupPosition(pos)
						k.Activate(t.ID)
					}
				}
			}
		}

		k.Tick()
		v := k.View()

		if v.Display != title {
			title = v.Display
			window.SetTitle("kalimba  " + title)
		}

		render(renderer, lay, txt, v)
		if sc != nil {
			sc.draw(renderer, lay.scope)
		}
		renderer.Present()

		sdl.Delay(16)
	}

	return nil
}

func render(renderer *sdl.Renderer, lay *layout, txt *text, v kalimba.View) {
	c1, c2 := backgroundColors(v.Phase)
	for y := int32(0); y < lay.h; y++ {
		setColor(renderer, c1.BlendLab(c2, float64(y)/float64(lay.h)))
		renderer.DrawLine(0, y, lay.w, y)
	}

	renderer.SetDrawColor(0, 0, 0, 255)
	renderer.FillRect(&lay.display)
	txt.draw(v.Display, lay.display.X+lay.display.W/2, lay.display.Y+lay.display.H/2, sdl.Color{R: 255, G: 255, B: 255, A: 255})

	for i, t := range lay.tines {
		r := lay.rects[i]
		labelColor := sdl.Color{R: 74, G: 85, B: 104, A: 255}
		if v.HasActive && v.ActiveTine == t.ID {
			r.Y -= tineLift
			renderer.SetDrawColor(255, 255, 255, 255)
			labelColor = sdl.Color{R: 255, G: 255, B: 255, A: 255}
		} else {
			setColor(renderer, tineColor(t.Position))
		}
		renderer.FillRect(&r)

		renderer.SetDrawColor(255, 255, 255, 80)
		renderer.DrawRect(&r)

		txt.draw(t.Label, r.X+r.W/2, r.Y-14, labelColor)
	}

	button := lay.button
	if v.Mood == kalimba.Playing && v.Frame%2 == 1 {
		button.X -= 3
		button.Y -= 3
		button.W += 6
		button.H += 6
	}
	renderer.SetDrawColor(0, 0, 0, 255)
	renderer.FillRect(&button)

	cx := button.X + button.W/2
	cy := button.Y + button.H/2
	white := sdl.Color{R: 255, G: 255, B: 255, A: 255}
	if txt.font != nil {
		txt.draw(v.Face.Eyes, cx, cy-12, white)
		txt.draw(v.Face.Mouth, cx, cy+12, white)
	} else {
		drawFace(renderer, v.Frame, cx, cy)
	}
}

// drawFace is the fallback when no font is configured.
func drawFace(renderer *sdl.Renderer, frame int, cx, cy int32) {
	eye := int32(6 + frame%2*2)
	renderer.SetDrawColor(255, 255, 255, 255)
	renderer.FillRect(&sdl.Rect{X: cx - 14 - eye/2, Y: cy - 12, W: eye, H: eye})
	renderer.FillRect(&sdl.Rect{X: cx + 14 - eye/2, Y: cy - 12, W: eye, H: eye})

	mouth := int32(16)
	if frame == 1 {
		mouth = 8
	}
	renderer.FillRect(&sdl.Rect{X: cx - mouth/2, Y: cy + 10, W: mouth, H: 4})
}

func graphData(renderer *sdl.Renderer, dataPoints []float64, x, y, width, height int32, minval, maxval float64) {
	renderer.SetDrawColor(0, 0, 0, 255)
	renderer.DrawLine(x, y+height/2, x+width, y+height/2)
	renderer.DrawLine(x, y, x, y+height)

	spread := maxval - minval
	renderer.SetDrawColor(255, 255, 255, 255)
	for i := 0; i < len(dataPoints)-1; i++ {
		x1 := x + int32(float64(i)*float64(width)/float64(len(dataPoints)-1))
		y1 := y + height - int32((dataPoints[i]-minval)*float64(height)/spread)
		x2 := x + int32(float64(i+1)*float64(width)/float64(len(dataPoints)-1))
		y2 := y + height - int32((dataPoints[i+1]-minval)*float64(height)/spread)
		renderer.DrawLine(x1, y1, x2, y2)
	}
}
