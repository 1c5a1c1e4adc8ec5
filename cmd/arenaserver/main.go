package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/arena/internal/ai"
	"github.com/udisondev/arena/internal/config"
	"github.com/udisondev/arena/internal/data"
	"github.com/udisondev/arena/internal/db"
	"github.com/udisondev/arena/internal/game/event"
	"github.com/udisondev/arena/internal/game/session"
	"github.com/udisondev/arena/internal/game/skill"
	"github.com/udisondev/arena/internal/gateway"
	"github.com/udisondev/arena/internal/model"
	"github.com/udisondev/arena/internal/spawn"
)

const ArenaConfigPath = "config/arena.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := config.Path(ArenaConfigPath)
	cfg, err := config.LoadArena(cfgPath)
	if err != nil {
		return fmt.Errorf("loading arena config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	// Enable AI debug logging if log level is debug
	ai.EnableDebugLogging(logLevel == slog.LevelDebug)
	slog.Info("arena server starting", "config", cfgPath, "log_level", cfg.LogLevel)

	catalog := data.DefaultCatalog()
	if cfg.CatalogPath != "" {
		catalog, err = data.LoadCatalog(cfg.CatalogPath)
		if err != nil {
			return fmt.Errorf("loading skill catalog: %w", err)
		}
	}
	registry, err := skill.NewRegistry(catalog)
	if err != nil {
		return fmt.Errorf("building skill registry: %w", err)
	}
	slog.Info("skill catalog loaded", "skills", len(catalog.Skills()), "classes", catalog.ClassNames())

	bus := event.NewBus(cfg.SubscriberBuffer)
	defer bus.Close()

	points := spawn.NewPoints(cfg.SpawnPointMap(), model.Location{})
	sess := session.New(session.Config{
		TickInterval:   cfg.TickInterval,
		SweepInterval:  cfg.EffectSweepInterval,
		GlobalCooldown: cfg.GlobalCooldown,
		Cast: skill.CastConfig{
			RangeTolerance:     cfg.RangeTolerance,
			RangeWarnThreshold: cfg.RangeWarnThreshold,
		},
		StoppingDistance: cfg.StoppingDistance,
		RespawnDelay:     cfg.RespawnDelay,
		CritMultiplier:   cfg.CritMultiplier,
	}, registry, points, bus)

	var (
		writer    *db.Writer
		cooldowns *db.CooldownRepository
	)
	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		cooldowns = db.NewCooldownRepository(database.Pool())
		writer = db.NewWriter(cooldowns, db.NewDeathRepository(database.Pool()), 1024)
		sess.SetRecorder(writer)
	} else {
		slog.Info("database disabled, cooldowns and deaths are not persisted")
	}

	if err := spawnRoster(ctx, sess, cooldowns, cfg.Roster); err != nil {
		return err
	}

	aiMgr := ai.NewTickManager(cfg.AITickInterval)
	for _, r := range cfg.Roster {
		if !r.Team.IsMonster() {
			continue
		}
		aiMgr.Register(r.ID, ai.NewMonsterAI(r.ID, ai.MonsterConfig{
			AggroRange: cfg.AggroRange,
			ChaseRange: cfg.ChaseRange,
		}, sess, sess, registry))
	}
	damage := bus.Subscribe(func(ev event.Event) bool { return ev.Kind == event.KindHealthChanged })

	gw := gateway.NewServer(gateway.Config{
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		SendQueue:    cfg.SubscriberBuffer,
	}, sess, sess, registry, bus)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := sess.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("arena session: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := aiMgr.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("AI tick manager: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		defer bus.Unsubscribe(damage)
		if err := aiMgr.Observe(gctx, damage); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("AI damage observer: %w", err)
		}
		return nil
	})

	addr := net.JoinHostPort(cfg.BindAddress, strconv.Itoa(cfg.Port))
	g.Go(func() error {
		return gw.Run(gctx, addr)
	})

	if writer != nil {
		g.Go(func() error {
			if err := writer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("persistence writer: %w", err)
			}
			return nil
		})
	}

	err = g.Wait()

	// session.Run queued the final cooldown state on its way out
	if writer != nil {
		drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		writer.Drain(drainCtx)
		cancel()
		if n := writer.Dropped(); n > 0 {
			slog.Warn("persistence records dropped during run", "count", n)
		}
	}

	if err != nil {
		return err
	}
	slog.Info("arena server stopped")
	return nil
}

// spawnRoster puts the configured actors into the arena, restoring their
// persisted cooldowns when a repository is available.
func spawnRoster(ctx context.Context, sess *session.Session, cooldowns *db.CooldownRepository, roster []config.RosterEntry) error {
	now := time.Now()
	for _, r := range roster {
		p := session.SpawnParams{ID: r.ID, Name: r.Name, Class: r.Class, Team: r.Team}

		if cooldowns != nil {
			state, found, err := cooldowns.Load(ctx, r.ID)
			if err != nil {
				return fmt.Errorf("loading cooldowns of actor %d: %w", r.ID, err)
			}
			if found {
				p.Cooldowns = &state
			}
		}

		a, err := sess.Spawn(now, p)
		if err != nil {
			return fmt.Errorf("spawning actor %d (%s): %w", r.ID, r.Name, err)
		}
		slog.Info("actor spawned",
			"id", a.ID(),
			"name", r.Name,
			"class", r.Class,
			"team", r.Team,
			"position", a.Location())
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
