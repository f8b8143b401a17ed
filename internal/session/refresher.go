package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// StartAutoRefresh re-escanea cada interval con los holdings del último
// Refresh. Sin holdings del usuario el tick no hace nada: el set por defecto
// solo se escanea una vez. Devuelve la función para detenerlo.
func (s *Session) StartAutoRefresh(ctx context.Context, interval time.Duration) (stop func(), err error) {
	if interval < time.Second {
		return nil, fmt.Errorf("session.StartAutoRefresh: interval %s below 1s", interval)
	}

	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() { s.refreshTick(ctx) }); err != nil {
		return nil, fmt.Errorf("session.StartAutoRefresh: schedule: %w", err)
	}
	c.Start()
	slog.Info("auto refresh started", "interval", interval)

	return func() {
		<-c.Stop().Done()
		slog.Info("auto refresh stopped")
	}, nil
}

func (s *Session) refreshTick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	holdings := s.Holdings()
	if len(holdings) == 0 {
		slog.Debug("auto refresh skipped: no user holdings")
		return
	}
	res := s.Refresh(ctx, holdings)
	slog.Debug("auto refresh done", "outcome", res.Outcome, "found", len(res.Opportunities))
}
