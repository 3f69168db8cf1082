package server

import (
	"net/http"
	"runtime"
	"time"
)

// HealthReport is the body of /health.
type HealthReport struct {
	Status        string      `json:"status"`
	Version       string      `json:"version,omitempty"`
	UptimeSeconds float64     `json:"uptimeSeconds"`
	Cache         CacheReport `json:"cache"`
	Memory        MemoryStats `json:"memory"`
	Goroutines    int         `json:"goroutines"`

	DefaultCredentialConfigured bool `json:"defaultCredentialConfigured"`
	// EnforcedMode is present only when the server pins the operating mode.
	EnforcedMode *EnforcedMode `json:"enforcedMode,omitempty"`
}

type CacheReport struct {
	Entries int    `json:"entries"`
	MaxSize int    `json:"maxSize"`
	TTL     string `json:"ttl"`
}

type MemoryStats struct {
	AllocBytes     uint64 `json:"allocBytes"`
	SysBytes       uint64 `json:"sysBytes"`
	HeapInuseBytes uint64 `json:"heapInuseBytes"`
	NumGC          uint32 `json:"numGC"`
}

type EnforcedMode struct {
	ToolSets             string `json:"toolSets,omitempty"`
	DynamicToolDiscovery *bool  `json:"dynamicToolDiscovery,omitempty"`
}

// Health builds the current report.
func (s *Server) Health() HealthReport {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	report := HealthReport{
		Status:        "ok",
		Version:       s.opts.Version,
		UptimeSeconds: time.Since(s.started).Seconds(),
		Cache: CacheReport{
			Entries: s.opts.Cache.EntryCount(),
			MaxSize: s.opts.Cache.MaxSize(),
			TTL:     s.opts.Cache.TTL().String(),
		},
		Memory: MemoryStats{
			AllocBytes:     ms.Alloc,
			SysBytes:       ms.Sys,
			HeapInuseBytes: ms.HeapInuse,
			NumGC:          ms.NumGC,
		},
		Goroutines:                  runtime.NumGoroutine(),
		DefaultCredentialConfigured: s.opts.DefaultCredential.Configured(),
	}

	if mode := s.opts.EnforcedMode; mode.Enforced() {
		em := &EnforcedMode{ToolSets: mode.ToolSets}
		if mode.DynamicToolDiscovery.Set {
			v := mode.DynamicToolDiscovery.Enabled()
			em.DynamicToolDiscovery = &v
		}
		report.EnforcedMode = em
	}
	return report
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.Health())
}
