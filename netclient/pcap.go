package netclient

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// ReplayOptions controls ReplayPCAP.
type ReplayOptions struct {
	// ServerPort selects UDP packets sent from this port. Zero accepts all.
	ServerPort uint16
	// Pace sleeps between packets to reproduce the capture's timing.
	Pace bool
}

// ReplayPCAP feeds the UDP payloads of a pcap or pcapng capture into
// Receive, as if they had arrived on the socket. It returns the number of
// datagrams delivered.
func (c *Client) ReplayPCAP(ctx context.Context, path string, opts ReplayOptions) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var source *gopacket.PacketSource
	if ng, err := pcapgo.NewNgReader(f, pcapgo.NgReaderOptions{}); err == nil {
		source = gopacket.NewPacketSource(ng, ng.LinkType())
	} else {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return 0, err
		}
		r, err := pcapgo.NewReader(f)
		if err != nil {
			return 0, err
		}
		source = gopacket.NewPacketSource(r, r.LinkType())
	}

	c.stats.started.CompareAndSwap(0, time.Now().UnixNano())

	var prevTS time.Time
	delivered := 0
	for {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}
		pkt, err := source.NextPacket()
		if err == io.EOF {
			return delivered, nil
		}
		if err != nil {
			return delivered, err
		}

		udp, ok := pkt.Layer(layers.LayerTypeUDP).(*layers.UDP)
		if !ok {
			continue
		}
		if opts.ServerPort != 0 && uint16(udp.SrcPort) != opts.ServerPort {
			continue
		}

		ts := pkt.Metadata().CaptureInfo.Timestamp
		if opts.Pace && !prevTS.IsZero() {
			if d := ts.Sub(prevTS); d > 0 {
				select {
				case <-ctx.Done():
					return delivered, ctx.Err()
				case <-time.After(d):
				}
			}
		}
		prevTS = ts

		c.Receive(append([]byte(nil), udp.Payload...))
		delivered++
	}
}
