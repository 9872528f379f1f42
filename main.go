package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agarclient/input"
	"agarclient/internal/clog"
	"agarclient/netclient"
	"agarclient/store"

	"github.com/hajimehoshi/ebiten/v2"
)

var (
	settingsPath string
	pcapPath     string
	doDebug      bool
	headless     bool

	host string
	port int
	name string
)

func main() {
	flag.StringVar(&settingsPath, "settings", settingsFile, "path of the JSON settings file")
	flag.StringVar(&host, "host", "", "server host (overrides settings)")
	flag.IntVar(&port, "port", 0, "server UDP port (overrides settings)")
	flag.StringVar(&name, "name", "", "player name (overrides settings)")
	flag.StringVar(&pcapPath, "pcap", "", "replay server datagrams from a .pcap/.pcapng file instead of connecting")
	flag.BoolVar(&doDebug, "debug", false, "verbose/debug logging")
	flag.BoolVar(&headless, "headless", false, "run the tick loop without opening a window")
	flag.Parse()

	clog.Setup("logs", doDebug)

	if !loadSettings(settingsPath) {
		clog.Debugf("using default settings; writing %v", settingsPath)
		saveSettings(settingsPath)
	}
	if host != "" {
		gs.Host = host
	}
	if port != 0 {
		gs.Port = port
	}
	if name != "" {
		gs.Name = name
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
	err := run(ctx)
	cancel()
	if err != nil {
		clog.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	st := store.New()
	client := netclient.New(st, netclient.Config{KeepAlive: gs.keepAlive()})
	ctrl := input.New(client, input.Config{Rate: gs.CommandRate, Burst: gs.CommandBurst})
	defer func() {
		ctrl.Close()
		if err := client.Close(); err != nil {
			clog.Debugf("close: %v", err)
		}
		log.Print(sessionSummary(client.Stats(), time.Now()))
	}()

	if pcapPath != "" {
		go func() {
			n, err := client.ReplayPCAP(ctx, pcapPath, netclient.ReplayOptions{ServerPort: uint16(gs.Port), Pace: true})
			if err != nil {
				clog.Errorf("replay %v: %v", pcapPath, err)
				return
			}
			clog.Debugf("replayed %d datagrams from %v", n, pcapPath)
		}()
	} else if err := client.Connect(ctx, gs.Host, gs.Port, gs.Name); err != nil {
		return fmt.Errorf("connect %s:%d: %w", gs.Host, gs.Port, err)
	}

	g := newGame(ctx, st, client, ctrl)
	if headless {
		runHeadless(ctx, g)
		return nil
	}

	ebiten.SetWindowSize(gs.WindowWidth, gs.WindowHeight)
	ebiten.SetWindowTitle("agar")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(gs.TickRate)
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("run game: %w", err)
	}
	return nil
}

// runHeadless ticks at the configured rate until ctx is done. Frames are
// computed and reconciled but never drawn.
func runHeadless(ctx context.Context, g *Game) {
	t := time.NewTicker(time.Second / time.Duration(gs.TickRate))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			g.tick()
		}
	}
}
