package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"
	"github.com/retroenv/retrogolib/log"

	"github.com/nf/c8/vip"
)

// devMode runs romFile under the monitor, reloading it whenever it
// changes on disk. The machine keeps its window open after a fault so
// the program can be fixed and reloaded.
func devMode(cfg vip.Config, romFile string) error {
	if cfg.Frontend == vip.Terminal {
		return errors.New("dev: the monitor needs the terminal; use the GUI or -headless")
	}
	romFile = filepath.Clean(romFile)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Watch(filepath.Dir(romFile)); err != nil {
		return err
	}

	reload := make(chan bool, 1)
	mon := newMonitor(nil, func() {
		select {
		case reload <- true:
		default:
		}
	})
	cfg.Logger = mon.logger
	logger := mon.logger

	v, err := devLoad(cfg, romFile)
	if err != nil {
		return err
	}
	runner := vip.NewRunner(cfg, true, mon.StateFunc)
	mon.ctl = runner

	monErr := make(chan error, 1)
	go func() {
		monErr <- mon.Run()
		runner.Stop()
	}()

	go func() {
		var run <-chan time.Time
		name := log.String("file", filepath.Base(romFile))
		for {
			select {
			case <-run:
				v, err := devLoad(cfg, romFile)
				if err != nil {
					logger.Error("Reloading program failed", err, name)
					break
				}
				logger.Info("Reloaded program", name)
				runner.Reset(v)
			case <-reload:
				run = time.After(time.Millisecond)
			case ev := <-watcher.Event:
				if filepath.Clean(ev.Name) == romFile && !ev.IsAttrib() {
					run = time.After(100 * time.Millisecond)
				}
			case err := <-watcher.Error:
				logger.Error("Watching program failed", err)
			}
		}
	}()

	logger.Info("Starting program", log.String("file", filepath.Base(romFile)))
	err = runner.Run(v)
	mon.app.Stop()
	select {
	case merr := <-monErr:
		if merr != nil && err == nil {
			err = fmt.Errorf("monitor: %w", merr)
		}
	default:
	}
	return err
}

func devLoad(cfg vip.Config, romFile string) (*vip.VIP, error) {
	rom, err := os.ReadFile(romFile)
	if err != nil {
		return nil, err
	}
	v, err := vip.New(rom, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", romFile, err)
	}
	return v, nil
}
