package main

import (
	"fmt"
	"time"

	"agarclient/netclient"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

// sessionSummary is the line logged when the client exits.
func sessionSummary(s netclient.Stats, now time.Time) string {
	up := "never connected"
	if !s.Started.IsZero() {
		up = durafmt.Parse(now.Sub(s.Started).Truncate(time.Second)).LimitFirstN(2).Format(shortUnits)
	}
	return fmt.Sprintf("session %s: in %d datagrams (%s), out %d datagrams (%s), %d merged, %d dropped, %d early, %d malformed",
		up,
		s.DatagramsIn, humanize.Bytes(s.BytesIn),
		s.DatagramsOut, humanize.Bytes(s.BytesOut),
		s.Merged, s.Dropped, s.Early, s.Malformed)
}

// hudLine is the short status drawn in the corner of the window.
func hudLine(state netclient.State, s netclient.Stats, tps float64) string {
	return fmt.Sprintf("%s  %.0f tps  in %s  out %s  dropped %d",
		state, tps, humanize.Bytes(s.BytesIn), humanize.Bytes(s.BytesOut), s.Dropped)
}
