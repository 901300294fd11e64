package session

import (
	"sync/atomic"
	"time"
)

// Metrics counts what a session has processed. It is safe for concurrent
// reads while the loop writes.
type Metrics struct {
	keys     atomic.Uint64
	actions  atomic.Uint64
	invalid  atomic.Uint64
	remaps   atomic.Uint64
	commands atomic.Uint64
	expiries atomic.Uint64
	macros   atomic.Uint64
	errors   atomic.Uint64

	keyTotalNs atomic.Int64
	keyMaxNs   atomic.Int64

	startTime time.Time
}

// NewMetrics creates a zeroed tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordKey records the handling time of one raw key.
func (m *Metrics) RecordKey(d time.Duration) {
	ns := d.Nanoseconds()
	m.keys.Add(1)
	m.keyTotalNs.Add(ns)
	for {
		old := m.keyMaxNs.Load()
		if ns <= old || m.keyMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

func (m *Metrics) recordAction()  { m.actions.Add(1) }
func (m *Metrics) recordInvalid() { m.invalid.Add(1) }
func (m *Metrics) recordRemap()   { m.remaps.Add(1) }
func (m *Metrics) recordCommand() { m.commands.Add(1) }
func (m *Metrics) recordExpiry()  { m.expiries.Add(1) }
func (m *Metrics) recordMacro()   { m.macros.Add(1) }
func (m *Metrics) recordError()   { m.errors.Add(1) }

// Stats is a point-in-time copy of the metrics.
type Stats struct {
	Keys     uint64
	Actions  uint64
	Invalid  uint64
	Remaps   uint64
	Commands uint64
	Expiries uint64
	Macros   uint64
	Errors   uint64

	KeyAvg time.Duration
	KeyMax time.Duration
	Uptime time.Duration
}

// Snapshot returns the current stats.
func (m *Metrics) Snapshot() Stats {
	s := Stats{
		Keys:     m.keys.Load(),
		Actions:  m.actions.Load(),
		Invalid:  m.invalid.Load(),
		Remaps:   m.remaps.Load(),
		Commands: m.commands.Load(),
		Expiries: m.expiries.Load(),
		Macros:   m.macros.Load(),
		Errors:   m.errors.Load(),
		KeyMax:   time.Duration(m.keyMaxNs.Load()),
		Uptime:   time.Since(m.startTime),
	}
	if s.Keys > 0 {
		s.KeyAvg = time.Duration(m.keyTotalNs.Load() / int64(s.Keys))
	}
	return s
}
