package system

import (
	"os"
	"runtime"
	"time"
)

// Info describes the host process
type Info struct {
	OS        string  `json:"os"`
	Arch      string  `json:"arch"`
	Hostname  string  `json:"hostname,omitempty"`
	GoVersion string  `json:"go_version"`
	Uptime    float64 `json:"uptime_seconds"`
}

// Host reports process information relative to startTime
type Host struct {
	startTime time.Time
}

// NewHost creates a host reporter starting now
func NewHost() *Host {
	return &Host{startTime: time.Now()}
}

// Info returns the current host information
func (h *Host) Info() Info {
	hostname, _ := os.Hostname()
	return Info{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Hostname:  hostname,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Seconds(),
	}
}
