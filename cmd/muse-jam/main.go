package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/alexflint/go-arg"

	"github.com/lamusique/muse"
)

type arguments struct {
	BPM   float64 `arg:"--bpm" default:"110" help:"initial tempo in beats per minute"`
	Key   string  `arg:"--key" default:"C min" help:"initial key, e.g. 'A min' or 'E maj'"`
	Style string  `arg:"--style" default:"rock" help:"initial style: rock, pop, edm, classical"`
	Seed  int64   `arg:"--seed" help:"random seed for reproducible renders (0 = random)"`
	Out   string  `arg:"--out" help:"write raw float32 PCM to this file instead of playing"`
}

func (arguments) Description() string {
	return "muse-jam: a live procedural jam session.\nType 'help' at the prompt for the control commands."
}

func main() {
	var args arguments
	arg.MustParse(&args)

	conductor := muse.NewConductor(nil)
	if err := conductor.SetParam("bpm", args.BPM); err != nil {
		log.Fatalf("bad bpm %v: %v", args.BPM, err)
	}
	if err := conductor.SetKey(args.Key); err != nil {
		log.Fatalf("bad key %q: %v", args.Key, err)
	}
	style, err := muse.ParseStyle(args.Style)
	if err != nil {
		log.Fatalf("bad style %q: %v", args.Style, err)
	}
	conductor.ApplyStyle(style)

	renderer := muse.NewBeatRenderer(conductor, muse.RendererConfig{Seed: args.Seed})

	var sink muse.Sink
	if args.Out != "" {
		f, err := os.Create(args.Out)
		if err != nil {
			log.Fatalf("create output: %v", err)
		}
		sink = muse.NewWriterSink(f)
	} else {
		s, err := muse.NewOtoSink(muse.DefaultSampleRate)
		if err != nil {
			log.Fatalf("open audio device: %v", err)
		}
		sink = s
	}

	sched := muse.NewScheduler(renderer, sink)
	sched.Run()

	fmt.Println("muse-jam ready. 'start' to play, 'outro' to end, 'help' for commands.")
	repl(conductor, sched)

	sched.Stop()
	if err := sched.Wait(); err != nil {
		log.Printf("playback: %v", err)
	}
	if err := sink.Close(); err != nil {
		log.Printf("close sink: %v", err)
	}
}

func repl(c *muse.Conductor, sched *muse.Scheduler) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(strings.ToLower(line))
		cmd, rest := fields[0], fields[1:]

		switch cmd {
		case "quit", "exit":
			return

		case "help":
			printHelp()

		case "start":
			c.Start()
			fmt.Println("playing")

		case "outro", "end":
			c.TriggerOutro()
			fmt.Println("ending...")

		case "status":
			printStatus(c.Status())

		case "style":
			if len(rest) != 1 {
				fmt.Println("usage: style <rock|pop|edm|classical>")
				continue
			}
			style, err := muse.ParseStyle(rest[0])
			if err != nil {
				fmt.Println(err)
				continue
			}
			c.ApplyStyle(style)

		case "key":
			if len(rest) == 0 {
				fmt.Println("usage: key <root> [maj|min|...]")
				continue
			}
			if err := c.SetKey(strings.Join(rest, " ")); err != nil {
				fmt.Println(err)
			}

		case "layer":
			if len(rest) != 2 || (rest[1] != "on" && rest[1] != "off") {
				fmt.Println("usage: layer <name> <on|off>")
				continue
			}
			if err := c.SetLayer(rest[0], rest[1] == "on"); err != nil {
				fmt.Println(err)
			}

		case "section":
			if len(rest) != 1 {
				fmt.Println("usage: section <intro|verse|chorus|build|break>")
				continue
			}
			if err := c.ApplySection(rest[0]); err != nil {
				fmt.Println(err)
			}

		case "bpm", "intensity", "distortion", "dist", "delay", "reverb", "chorus", "sustain":
			if len(rest) != 1 {
				fmt.Printf("usage: %s <value>\n", cmd)
				continue
			}
			value, err := strconv.ParseFloat(rest[0], 64)
			if err != nil {
				fmt.Printf("bad value %q\n", rest[0])
				continue
			}
			name := cmd
			if name == "dist" {
				name = "distortion"
			}
			if err := c.SetParam(name, value); err != nil {
				fmt.Println(err)
			}

		default:
			fmt.Printf("unknown command %q, try 'help'\n", cmd)
		}
	}
}

func printHelp() {
	fmt.Print(`commands:
  start                    begin playing
  outro                    trigger the ending sequence
  status                   show the current musical state
  style <name>             rock, pop, edm, classical
  key <root> [scale]       e.g. 'key A min', 'key E maj'
  bpm <n>                  set tempo
  intensity <0-100>        overall energy
  layer <name> <on|off>    kick, snare, hihat, bass, rhythm, pad, arp,
                           lead, harmony, riser
  section <name>           intro, verse, chorus, build, break
  dist <0-100>             distortion amount
  sustain <0-100>          note sustain
  delay <0-100>            delay mix
  reverb <0-100>           reverb mix
  chorus <0-100>           chorus mix
  quit                     stop and exit
`)
}

func printStatus(s muse.Status) {
	fmt.Printf("state: %s", s.State)
	if s.State == muse.StateOutro {
		fmt.Printf(" (%s)", s.OutroPhase)
	}
	fmt.Printf("\nkey: %s %s  bpm: %.0f  style: %s  intensity: %.0f%%\n",
		s.Key, s.Scale, s.BPM, s.Style, s.Intensity*100)
	fmt.Printf("dist: %d%%  sustain: %d%%  delay: %.0f%%  reverb: %.0f%%  chorus: %.0f%%\n",
		s.DistortionPct, s.SustainPct, s.DelayMix*100, s.ReverbMix*100, s.ChorusMix*100)

	var on, off []string
	for _, l := range s.Layers {
		if l.Active {
			on = append(on, l.Name)
		} else {
			off = append(off, l.Name)
		}
	}
	fmt.Printf("layers on:  %s\n", strings.Join(on, " "))
	fmt.Printf("layers off: %s\n", strings.Join(off, " "))
}
