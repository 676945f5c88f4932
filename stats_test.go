package main

import (
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
)

func TestServeStats(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	assert.NoError(t, err)
	addr := ln.Addr().String()
	assert.NoError(t, ln.Close())

	var out strings.Builder
	mgr := serveStats(addr, newLogger(&out, false))
	defer mgr.Stop()
	assert.Equal(t, true, strings.Contains(out.String(), "http://"+addr+"/debug/statsview"))

	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get("http://" + addr + "/debug/statsview")
		if err == nil {
			resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("stats server not reachable: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
