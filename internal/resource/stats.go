package resource

import (
	"encoding/json"
	"fmt"
)

// SystemStats is one complete snapshot of host metrics. Every frame on the
// stats stream carries a whole SystemStats; snapshots replace each other and
// are never merged.
type SystemStats struct {
	CPU     CPUStats     `json:"cpu"`
	Memory  MemoryStats  `json:"memory"`
	Disk    DiskStats    `json:"disk"`
	Network NetworkStats `json:"network"`
	System  SystemInfo   `json:"system"`
}

// CPUStats is aggregate CPU usage. Temperature is zero when the host does
// not report one.
type CPUStats struct {
	UsagePercent float64 `json:"usagePercent" validate:"gte=0,lte=100"`
	Temperature  float64 `json:"temperature,omitempty"`
}

// MemoryStats is physical memory usage in bytes.
type MemoryStats struct {
	Total        uint64  `json:"total"`
	Used         uint64  `json:"used"`
	Free         uint64  `json:"free"`
	UsagePercent float64 `json:"usagePercent" validate:"gte=0,lte=100"`
}

// DiskStats is root filesystem usage in bytes.
type DiskStats struct {
	Total        uint64  `json:"total"`
	Used         uint64  `json:"used"`
	Free         uint64  `json:"free"`
	UsagePercent float64 `json:"usagePercent" validate:"gte=0,lte=100"`
}

// NetworkStats holds cumulative interface counters. Both only grow.
type NetworkStats struct {
	BytesSent     uint64 `json:"bytesSent"`
	BytesReceived uint64 `json:"bytesReceived"`
}

// SystemInfo identifies the host. LoadAverage is the 1, 5 and 15 minute
// load, in that order.
type SystemInfo struct {
	Hostname    string    `json:"hostname"`
	Uptime      uint64    `json:"uptime"`
	LoadAverage []float64 `json:"loadAverage" validate:"len=3,dive,gte=0"`
}

// Validate checks value ranges the JSON decoder cannot enforce.
func (s SystemStats) Validate() error {
	return validateStruct(s)
}

// DecodeSystemStats parses one stream frame. A frame that is not JSON, does
// not match the SystemStats shape, or carries out-of-range values is
// rejected as a whole.
func DecodeSystemStats(data []byte) (SystemStats, error) {
	var s SystemStats
	if err := json.Unmarshal(data, &s); err != nil {
		return SystemStats{}, fmt.Errorf("decode stats frame: %w", err)
	}
	if err := s.Validate(); err != nil {
		return SystemStats{}, fmt.Errorf("invalid stats frame: %w", err)
	}
	return s, nil
}

// Clone returns a deep copy so callers can hold a snapshot without sharing
// the LoadAverage backing array.
func (s SystemStats) Clone() SystemStats {
	out := s
	if s.System.LoadAverage != nil {
		out.System.LoadAverage = append([]float64(nil), s.System.LoadAverage...)
	}
	return out
}
