package netclient

import (
	"sync/atomic"
	"time"
)

// Stats is a point-in-time copy of the session counters.
type Stats struct {
	Started      time.Time
	DatagramsIn  uint64
	DatagramsOut uint64
	BytesIn      uint64
	BytesOut     uint64
	Malformed    uint64
	ReadErrors   uint64
	SendErrors   uint64
	KeepAlives   uint64
	// Merged, Dropped and Early count status updates: applied to the
	// store, discarded because a render tick held the store, and discarded
	// because they arrived before the connect acknowledgement.
	Merged  uint64
	Dropped uint64
	Early   uint64
}

type counters struct {
	started      atomic.Int64
	datagramsIn  atomic.Uint64
	datagramsOut atomic.Uint64
	bytesIn      atomic.Uint64
	bytesOut     atomic.Uint64
	malformed    atomic.Uint64
	readErrors   atomic.Uint64
	sendErrors   atomic.Uint64
	keepAlives   atomic.Uint64
	merged       atomic.Uint64
	dropped      atomic.Uint64
	early        atomic.Uint64
}

// Stats returns the session counters.
func (c *Client) Stats() Stats {
	s := Stats{
		DatagramsIn:  c.stats.datagramsIn.Load(),
		DatagramsOut: c.stats.datagramsOut.Load(),
		BytesIn:      c.stats.bytesIn.Load(),
		BytesOut:     c.stats.bytesOut.Load(),
		Malformed:    c.stats.malformed.Load(),
		ReadErrors:   c.stats.readErrors.Load(),
		SendErrors:   c.stats.sendErrors.Load(),
		KeepAlives:   c.stats.keepAlives.Load(),
		Merged:       c.stats.merged.Load(),
		Dropped:      c.stats.dropped.Load(),
		Early:        c.stats.early.Load(),
	}
	if ns := c.stats.started.Load(); ns != 0 {
		s.Started = time.Unix(0, ns)
	}
	return s
}
