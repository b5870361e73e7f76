package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/whyrusleeping/kalimba/config"
	"github.com/whyrusleeping/kalimba/kalimba"
)

var logger = slog.Default()

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

// tine ids, one per 250ms
var demoSequence = []int{7, 6, 9, 5, 10, 4, 11, 8, 0, 8, 11, 4, 10, 5, 9, 6, 7}

const demoStep = 250 * time.Millisecond

func usage() {
	fmt.Fprintf(os.Stderr, `usage: kalimba [flags] [command]

commands:
  play                    open the instrument window (default)
  console                 play from a text prompt
  demo                    play a short tune and exit
  render <out.wav> [ids]  render tine ids to a wav file
  tines                   list the tines

flags:
`)
	flag.PrintDefaults()
}

func main() {
	cfgPath := flag.String("config", "", "config file (default ~/.config/kalimba/config.yaml)")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Usage = usage
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	initLogger(*debug || cfg.Debug)

	args := flag.Args()
	cmd := "play"
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "play":
		err = draw(cfg)
	case "console":
		err = runConsole(cfg)
	case "demo":
		err = runDemo(cfg)
	case "render":
		err = runRender(cfg, args)
	case "tines":
		printTines(os.Stdout)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("kalimba failed", "cmd", cmd, "err", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}

// openAudio starts the speaker and hands it a tone engine. If the device
// cannot be opened the engine is returned anyway and stays silent.
func openAudio(cfg *config.Config) (*kalimba.ToneEngine, func()) {
	sr := beep.SampleRate(cfg.Audio.SampleRate)
	eng := kalimba.NewToneEngine(sr)

	if err := speaker.Init(sr, sr.N(cfg.Audio.Buffer())); err != nil {
		logger.Warn("cannot open audio output, continuing without sound", "err", err)
		return eng, func() {}
	}

	speaker.Play(eng)
	eng.Start()
	logger.Debug("audio started", "rate", sr, "buffer", cfg.Audio.Buffer())

	return eng, func() {
		eng.Stop()
		speaker.Close()
	}
}

func runDemo(cfg *config.Config) error {
	eng, closeAudio := openAudio(cfg)
	defer closeAudio()

	k := kalimba.New(nil, kalimba.WithSynth(eng), kalimba.WithLogger(logger))
	k.OnActivate(func(a kalimba.Activation) {
		fmt.Println(k.View().Display)
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	arp := &kalimba.Arp{
		Tines:    demoSequence,
		Duration: demoStep,
		Target:   k,
	}
	if err := arp.Run(ctx, false); err != nil {
		// interrupted
		return nil
	}

	// let the last note ring out
	select {
	case <-ctx.Done():
	case <-time.After(kalimba.ToneLifetime):
	}
	return nil
}

func runRender(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("render needs an output file")
	}

	ids := demoSequence
	if len(args) > 1 {
		var err error
		ids, err = parseTineIDs(args[1:])
		if err != nil {
			return err
		}
	}

	fi, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("cannot create output: %w", err)
	}
	defer fi.Close()

	sr := beep.SampleRate(cfg.Audio.SampleRate)
	hist, err := kalimba.RenderSequence(fi, sr, ids, demoStep, kalimba.WithLogger(logger))
	if err != nil {
		return err
	}

	logger.Info("rendered", "file", args[0], "tines", len(ids), "last", hist)
	return fi.Close()
}

func parseTineIDs(args []string) ([]int, error) {
	var out []int
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("bad tine id %q: %w", a, err)
		}
		if id != 0 {
			if _, ok := kalimba.Lookup(id); !ok {
				return nil, fmt.Errorf("no tine with id %d", id)
			}
		}
		out = append(out, id)
	}
	return out, nil
}

func printTines(w io.Writer) {
	fmt.Fprintf(w, "%-4s %-5s %-8s %s\n", "id", "label", "pitch", "position")
	for _, t := range kalimba.Tines() {
		fmt.Fprintf(w, "%-4d %-5s %-8.0f %d\n", t.ID, t.Label, t.Pitch, t.Position)
	}
}
