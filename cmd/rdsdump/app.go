package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/bartgrantham/gofm/internal/config"
	"github.com/bartgrantham/gofm/internal/publish"
	"github.com/bartgrantham/gofm/internal/source"
	"github.com/bartgrantham/gofm/internal/stationlog"
	"github.com/bartgrantham/gofm/rds"
)

type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	station   *rds.Station
	store     *stationlog.SqliteStore
	sessionID int64
	pub       *publish.Publisher
}

// run decodes blocks from the configured source until it runs dry or ctx is
// done.  The station is returned even on error so its statistics can be
// reported.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*rds.Station, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	src, err := source.Open(ctx, cfg.Source, logger)
	if err != nil {
		return nil, err
	}
	// reads block, closing is the only way to interrupt them
	go func() {
		<-ctx.Done()
		_ = src.Close()
	}()

	a := &app{
		cfg:     cfg,
		logger:  logger,
		station: rds.New(cfg.Settings.RBDS()),
	}

	if cfg.Storage.Enabled {
		a.store = stationlog.NewSqliteStore(cfg.Storage.Path)
		defer func() {
			if err := a.store.Close(); err != nil {
				logger.Warn("closing station log", slog.String("err", err.Error()))
			}
		}()
		if a.sessionID, err = a.store.CreateSession(ctx, sourceName(cfg.Source), cfg.Settings.Standard); err != nil {
			return a.station, fmt.Errorf("creating session: %w", err)
		}
		logger.Info("recording", slog.String("path", cfg.Storage.Path), slog.Int64("session", a.sessionID))
	}

	if cfg.MQTT.Enabled {
		if a.pub, err = publish.Connect(cfg.MQTT, publish.WithLogger(logger)); err != nil {
			return a.station, err
		}
		defer a.pub.Close()
	}

	for {
		b, err := src.ReadBlock(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				logger.Info("source done", slog.String("blocks", humanize.Comma(int64(a.station.Stats.Blocks))))
				return a.station, nil
			}
			return a.station, fmt.Errorf("reading block: %w", err)
		}
		u, err := a.station.AddBlock(b)
		if err != nil {
			return a.station, err
		}
		a.handle(ctx, u)
	}
}

func sourceName(src config.SourceConfig) string {
	switch src.Type {
	case config.SourceSI4703:
		return src.Type + "@" + src.Frequency
	}
	return src.Type + ":" + src.Path
}

func (a *app) handle(ctx context.Context, u rds.Update) {
	if u.Events.Has(rds.EventGroup) {
		if g, ok := a.station.LastGroup(); ok {
			a.logger.Debug("group", slog.String("type", g.Type()), slog.String("group", g.String()))
		}
	}
	if u.Events.Has(rds.EventODA) {
		for _, oda := range a.station.ODA.Entries() {
			a.logger.Info("open data application",
				slog.String("group", fmt.Sprintf("%d%c", oda.GroupID, oda.Version)),
				slog.String("aid", fmt.Sprintf("%.4X", oda.AID)))
		}
	}
	if u.Fields == 0 {
		return
	}

	a.logger.Debug("update", slog.String("fields", u.Fields.String()))
	if !publish.Wants(u) {
		return
	}

	snap := a.station.Snapshot()
	a.logger.Info("station",
		slog.String("pi", snap.PIHex()),
		slog.String("ps", snap.PS),
		slog.String("pty", snap.PTYName),
		slog.String("rt", snap.RT),
		slog.String("af", formatAF(snap.AF)),
		slog.String("changed", (u.Fields&publish.Interesting).String()))

	if a.store != nil {
		if _, err := a.store.RecordSnapshot(ctx, a.sessionID, time.Now(), snap); err != nil {
			a.logger.Warn("recording snapshot", slog.String("err", err.Error()))
		}
	}
	if a.pub != nil {
		if err := a.pub.Publish(snap); err != nil {
			a.logger.Warn("publishing snapshot", slog.String("err", err.Error()))
		}
	}
}

// formatAF lists frequencies the way a receiver shows them, e.g.
// "90.6 MHz, 101.1 MHz".
func formatAF(freqs []uint32) string {
	out := make([]string, len(freqs))
	for i, f := range freqs {
		out[i] = humanize.SIWithDigits(float64(f), 1, "Hz")
	}
	return strings.Join(out, ", ")
}
