// arenabot connects to the arena gateway as one actor and fights the nearest
// hostile actor, pre-checking every request against its local projection.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/arena/internal/data"
	"github.com/udisondev/arena/internal/game/skill"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7780", "gateway address")
	actor := flag.Uint("actor", 3, "actor id to play")
	catalogPath := flag.String("catalog", "", "YAML skill catalog (empty = built-in)")
	think := flag.Duration("think", 250*time.Millisecond, "decision interval")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *addr, uint32(*actor), *catalogPath, *think); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, addr string, actorID uint32, catalogPath string, think time.Duration) error {
	catalog := data.DefaultCatalog()
	if catalogPath != "" {
		var err error
		if catalog, err = data.LoadCatalog(catalogPath); err != nil {
			return fmt.Errorf("loading skill catalog: %w", err)
		}
	}
	registry, err := skill.NewRegistry(catalog)
	if err != nil {
		return fmt.Errorf("building skill registry: %w", err)
	}

	u := url.URL{
		Scheme:   "ws",
		Host:     addr,
		Path:     "/ws",
		RawQuery: url.Values{"actor": {strconv.FormatUint(uint64(actorID), 10)}}.Encode(),
	}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", u.String(), err)
	}
	defer ws.Close()
	slog.Info("connected", "url", u.String())

	b := newBot(actorID, registry, ws)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.readLoop()
	})
	g.Go(func() error {
		return b.thinkLoop(gctx, think)
	})
	g.Go(func() error {
		<-gctx.Done()
		// unblocks readLoop
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		return ws.Close()
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	slog.Info("bot stopped")
	return nil
}
