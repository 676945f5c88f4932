// Command c8 runs CHIP-8 programs.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"

	"github.com/nf/c8/chip8"
	"github.com/nf/c8/vip"
)

var (
	version = "0.1.0"
	commit  = ""
	date    = ""
)

func main() {
	var (
		cliFlag      = flag.Bool("cli", false, "draw to the terminal instead of a window")
		headlessFlag = flag.Bool("headless", false, "run without display or input")
		framesFlag   = flag.Int("frames", 0, "stop a headless run after `n` frames (0 runs forever)")
		devFlag      = flag.Bool("dev", false, "enable developer mode (reload the program when it changes)")
		cyclesFlag   = flag.Int("cycles", vip.DefaultCyclesPerFrame, "instructions executed per `frame`")
		scaleFlag    = flag.Int("scale", vip.DefaultScale, "window pixels per CHIP-8 pixel")
		wavFlag      = flag.String("wav", "", "record the sound to WAV `file`")
		statsFlag    = flag.String("statsview", "", "serve runtime statistics at `addr` (for example localhost:12600)")
		quietFlag    = flag.Bool("quiet", false, "only log errors")
		versionFlag  = flag.Bool("version", false, "print version and exit")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")

		timers timersFlag
	)
	flag.Var(&timers, "timers", "timer `mode`: frame (60 Hz) or cycle (once per instruction)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <program.ch8>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -dev [flags] <program.ch8>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if *versionFlag {
		fmt.Printf("c8 version: %s\n", buildinfo.Version(version, commit, date))
		return
	}
	if flag.NArg() != 1 {
		flag.Usage()
	}

	logger := newLogger(os.Stderr, *quietFlag)

	cfg := vip.Config{
		Frontend:       vip.GUI,
		CyclesPerFrame: *cyclesFlag,
		Frames:         *framesFlag,
		Timers:         chip8.TimerMode(timers),
		Scale:          *scaleFlag,
		Logger:         logger,
	}
	switch {
	case *cliFlag && *headlessFlag:
		logger.Fatal("-cli and -headless are mutually exclusive")
	case *cliFlag:
		cfg.Frontend = vip.Terminal
	case *headlessFlag:
		cfg.Frontend = vip.Headless
	}

	if addr := *statsFlag; addr != "" {
		stats := serveStats(addr, logger)
		defer stats.Stop()
	}

	var wav *vip.WAVRecorder
	if name := *wavFlag; name != "" {
		var err error
		wav, err = vip.NewWAVRecorder(name, vip.DefaultFrameRate)
		if err != nil {
			logger.Fatal("Creating WAV recorder failed", log.Err(err))
		}
		cfg.Beepers = append(cfg.Beepers, wav)
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			logger.Fatal("Creating CPU profile file failed", log.Err(err))
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	var err error
	if *devFlag {
		err = devMode(cfg, flag.Arg(0))
	} else {
		err = run(cfg, flag.Arg(0))
	}

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}
	if wav != nil {
		if werr := wav.Close(); werr != nil {
			logger.Error("Writing WAV file failed", werr)
		}
	}

	if err != nil {
		logger.Error("Running program failed", err)
		os.Exit(1)
	}
}

func newLogger(w io.Writer, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Output = w
	if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

func run(cfg vip.Config, romFile string) error {
	rom, err := os.ReadFile(romFile)
	if err != nil {
		return err
	}
	v, err := vip.New(rom, cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", romFile, err)
	}
	return vip.NewRunner(cfg, false, nil).Run(v)
}

// timersFlag is a flag.Value holding a chip8.TimerMode.
type timersFlag chip8.TimerMode

func (t *timersFlag) String() string { return chip8.TimerMode(*t).String() }

func (t *timersFlag) Set(s string) error {
	for _, m := range []chip8.TimerMode{chip8.TimersExternal, chip8.TimersPerCycle} {
		if s == m.String() {
			*t = timersFlag(m)
			return nil
		}
	}
	return fmt.Errorf("unknown timer mode %q", s)
}
