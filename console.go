package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/c-bata/go-prompt"

	"github.com/whyrusleeping/kalimba/config"
	"github.com/whyrusleeping/kalimba/kalimba"
)

type command struct {
	help string
	run  func(args []string) error
}

// Console drives an instrument from typed commands. Tines are played
// through the direct activation path, the same one a click uses.
type Console struct {
	k   *kalimba.Kalimba
	out io.Writer

	cmds map[string]*command

	stopArp context.CancelFunc
	quit    bool
}

func NewConsole(k *kalimba.Kalimba, out io.Writer) *Console {
	c := &Console{
		k:    k,
		out:  out,
		cmds: make(map[string]*command),
	}

	c.Set("play", "play <id...>  hit tines by id", c.play)
	c.Set("tines", "tines  list the tines", func([]string) error {
		printTines(c.out)
		return nil
	})
	c.Set("log", "log  show the last notes", func([]string) error {
		fmt.Fprintln(c.out, c.k.View().Display)
		return nil
	})
	c.Set("face", "face  show the face", func([]string) error {
		v := c.k.View()
		fmt.Fprintf(c.out, "%s\n %s\n(%s)\n", v.Face.Eyes, v.Face.Mouth, v.Mood)
		return nil
	})
	c.Set("arp", "arp <ms> <id...>  loop tines until 'stop'", c.arp)
	c.Set("stop", "stop  stop the arp", func([]string) error {
		c.halt()
		return nil
	})
	c.Set("help", "help  this text", func([]string) error {
		for _, name := range c.names() {
			fmt.Fprintln(c.out, "  "+c.cmds[name].help)
		}
		return nil
	})
	c.Set("exit", "exit  leave", func([]string) error {
		c.halt()
		c.quit = true
		return nil
	})

	return c
}

func (c *Console) Set(name, help string, run func([]string) error) {
	c.cmds[name] = &command{help: help, run: run}
}

func (c *Console) names() []string {
	var out []string
	for n := range c.cmds {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ProcessCmd runs one line of input.
func (c *Console) ProcessCmd(line string) error {
	tokens := tokenize(line)
	if len(tokens) == 0 {
		return nil
	}

	cmd, ok := c.cmds[tokens[0]]
	if !ok {
		return fmt.Errorf("unknown command %q", tokens[0])
	}
	return cmd.run(tokens[1:])
}

func (c *Console) Done() bool {
	return c.quit
}

func (c *Console) play(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("play needs at least one tine id")
	}
	ids, err := parseTineIDs(args)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if id == 0 {
			continue
		}
		if !c.k.Activate(id) {
			fmt.Fprintf(c.out, "tine %d suppressed\n", id)
		}
	}
	fmt.Fprintln(c.out, c.k.View().Display)
	return nil
}

func (c *Console) arp(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: arp <ms> <id...>")
	}
	ms, err := strconv.Atoi(args[0])
	if err != nil || ms <= 0 {
		return fmt.Errorf("bad interval %q", args[0])
	}
	ids, err := parseTineIDs(args[1:])
	if err != nil {
		return err
	}

	c.halt()
	ctx, cancel := context.WithCancel(context.Background())
	c.stopArp = cancel

	a := &kalimba.Arp{
		Tines:    ids,
		Duration: time.Duration(ms) * time.Millisecond,
		Target:   c.k,
	}
	go a.Run(ctx, true)
	return nil
}

func (c *Console) halt() {
	if c.stopArp != nil {
		c.stopArp()
		c.stopArp = nil
	}
}

func (c *Console) complete(d prompt.Document) []prompt.Suggest {
	if strings.Contains(d.TextBeforeCursor(), " ") {
		return nil
	}

	var s []prompt.Suggest
	for _, name := range c.names() {
		s = append(s, prompt.Suggest{Text: name, Description: c.cmds[name].help})
	}
	return prompt.FilterHasPrefix(s, d.GetWordBeforeCursor(), true)
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ',' || r == '\n'
	})
}

func runConsole(cfg *config.Config) error {
	eng, closeAudio := openAudio(cfg)
	defer closeAudio()

	k := kalimba.New(nil, kalimba.WithSynth(eng), kalimba.WithLogger(logger))
	c := NewConsole(k, os.Stdout)

	fmt.Println("kalimba console, 'help' for commands")
	for !c.Done() {
		t := prompt.Input("> ", c.complete)
		if err := c.ProcessCmd(t); err != nil {
			fmt.Println("ERROR: ", err)
		}
	}
	return nil
}
