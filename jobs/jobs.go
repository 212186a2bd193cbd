package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/marcus-crane/curator/config"
)

// SetupInBackground schedules the daily batch at cfg.ScheduleAt (UTC). Runs
// never overlap: if one is still going when the next is due, the next is
// skipped. The scheduler is returned stopped.
func SetupInBackground(ctx context.Context, p Pipeline, cfg config.Config) (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	_, err := s.Every(1).Day().At(cfg.ScheduleAt).Do(dailyTask(ctx, p, cfg.DownloadDir))
	if err != nil {
		return nil, err
	}

	slog.Info("Jobs scheduled. Scheduler not running yet.", slog.String("at", cfg.ScheduleAt))

	return s, nil
}

func dailyTask(ctx context.Context, p Pipeline, dir string) func() {
	return func() {
		summary, err := Run(ctx, p, dir)
		if err != nil {
			slog.Error("Daily batch failed", slog.String("stack", err.Error()))
			return
		}
		slog.Info("Daily batch finished", slog.String("summary", summary.Message()))
	}
}
