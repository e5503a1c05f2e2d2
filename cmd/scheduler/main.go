package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/segyhp/reminder-engine/internal/app"
	"github.com/segyhp/reminder-engine/internal/config"
	"github.com/segyhp/reminder-engine/internal/service"
	"github.com/segyhp/reminder-engine/pkg/logger"
	"github.com/segyhp/reminder-engine/pkg/utils"
)

func main() {
	once := flag.Bool("once", false, "run a single dispatch and exit")
	date := flag.String("date", "", "with -once, dispatch for this date (YYYY-MM-DD) instead of today")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("failed to load configuration", zap.Error(err))
	}

	log := logger.Must(cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize application", zap.Error(err))
	}
	defer a.Close()

	if *once {
		if err := runOnce(ctx, a.Service, *date); err != nil {
			log.Error("reminder run failed", zap.Error(err))
			a.Close()
			os.Exit(1)
		}
		return
	}

	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(cfg.Location()),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	_, err = c.AddFunc(cfg.Scheduler.Cron, func() {
		if _, err := a.Service.RunToday(context.WithoutCancel(ctx)); err != nil {
			log.Error("scheduled reminder run failed", zap.Error(err))
		}
	})
	if err != nil {
		log.Fatal("failed to schedule reminder job", zap.String("cron", cfg.Scheduler.Cron), zap.Error(err))
	}

	c.Start()
	log.Info("scheduler started", zap.String("cron", cfg.Scheduler.Cron), zap.String("timezone", cfg.Scheduler.Timezone))

	<-ctx.Done()

	log.Info("shutting down scheduler")
	// Wait for an in-flight run to finish.
	<-c.Stop().Done()
	log.Info("scheduler stopped")
}

func runOnce(ctx context.Context, svc *service.ReminderService, date string) error {
	today := svc.Today()
	if date != "" {
		parsed, err := utils.ParseDate(date)
		if err != nil {
			return err
		}
		if parsed.After(today) {
			return fmt.Errorf("-date %s is later than today (%s)", date, utils.FormatDate(today))
		}
		today = parsed
	}

	_, err := svc.RunOnce(ctx, today)
	return err
}
