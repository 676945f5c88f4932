package main

import (
	"errors"
	"net/http"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/retroenv/retrogolib/log"
)

// serveStats serves runtime charts of the emulator process at addr until
// the returned manager is stopped.
func serveStats(addr string, logger *log.Logger) *statsview.ViewManager {
	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()
	go func() {
		if err := mgr.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Statsview server failed", err)
		}
	}()
	logger.Info("Serving runtime statistics", log.String("url", "http://"+addr+"/debug/statsview"))
	return mgr
}
