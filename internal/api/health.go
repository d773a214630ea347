package api

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

type healthResponse struct {
	Status      string       `json:"status"`
	Connections int          `json:"connections"`
	Poems       int          `json:"poems"`
	Diagnostics *diagnostics `json:"diagnostics,omitempty"`
}

type diagnostics struct {
	UptimeSeconds float64 `json:"uptimeSeconds"`
	Goroutines    int     `json:"goroutines"`
	RSSBytes      uint64  `json:"rssBytes,omitempty"`
	CPUPercent    float64 `json:"cpuPercent,omitempty"`
}

// handleHealth reports live subscription and known session counts, plus
// best-effort process diagnostics. Counts are eventually consistent under
// concurrent mutation.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := healthResponse{
		Status:      "ok",
		Connections: s.relay.SubscriberCount(),
		Poems:       s.relay.SessionCount(),
		Diagnostics: &diagnostics{
			UptimeSeconds: time.Since(s.started).Seconds(),
			Goroutines:    runtime.NumGoroutine(),
		},
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mem, err := proc.MemoryInfo(); err == nil {
			resp.Diagnostics.RSSBytes = mem.RSS
		}
		if cpu, err := proc.CPUPercent(); err == nil {
			resp.Diagnostics.CPUPercent = cpu
		}
	}

	s.respondJSON(w, http.StatusOK, resp)
}
