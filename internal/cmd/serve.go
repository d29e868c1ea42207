package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mealwise/mealwise/internal/config"
	"github.com/mealwise/mealwise/internal/event"
	"github.com/mealwise/mealwise/internal/generator"
	"github.com/mealwise/mealwise/internal/logging"
	"github.com/mealwise/mealwise/internal/service"
	"github.com/mealwise/mealwise/internal/store"
	"github.com/mealwise/mealwise/internal/taskqueue"
	"github.com/mealwise/mealwise/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the generation daemon",
	Long: `Run the worker pool daemon that processes queued plan requests.

The daemon restores the task queue from its saved state, re-enqueues any
records stranded without a task, and processes work until interrupted.
Queue state is saved on shutdown so in-flight work resumes on restart.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dataDir := cfg.Paths.ResolveDataDir()
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	logDir := dataDir
	if !cfg.Logging.Enabled {
		logDir = "" // Logs fall back to stderr
	}
	log, err := logging.NewLogger(logDir, logging.ParseLevel(cfg.Logging.Level), logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Close()

	st, err := store.NewSQLiteStore(cfg.Paths.StorePath())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	bus := event.NewBus()
	subscribeEventLog(bus, log)

	queue := restoreQueue(dataDir, cfg, bus, log)
	svc := service.New(st, queue, log)

	gen := generator.New()
	pool := worker.New(queue, st, gen, bus, log, worker.Config{
		Workers:           cfg.Worker.Count,
		PollInterval:      cfg.Worker.PollInterval(),
		GenerationTimeout: cfg.Worker.GenerationTimeout(),
		VisibilityTimeout: cfg.Queue.VisibilityTimeout(),
		ReapInterval:      cfg.Queue.ReapInterval(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool.Start(ctx)
	log.Info("daemon started", "data_dir", dataDir, "workers", cfg.Worker.Count)
	fmt.Printf("mealwise daemon running (workers: %d, data: %s)\n", cfg.Worker.Count, dataDir)

	// The recovery scan picks up records submitted by other processes while
	// this daemon holds the queue, and records stranded by a lost queue
	// state. It runs at startup and then periodically.
	runRecovery(ctx, svc, log)
	go recoveryLoop(ctx, svc, log, cfg.Queue.ReapInterval())

	<-ctx.Done()
	fmt.Println("shutting down...")

	pool.Stop()
	queue.Close()
	if cfg.Queue.PersistState {
		if err := queue.SaveState(dataDir); err != nil {
			log.Error("failed to save queue state", "error", err.Error())
		}
	}
	log.Info("daemon stopped")
	return nil
}

// restoreQueue loads persisted queue state when enabled, falling back to an
// empty queue.
func restoreQueue(dataDir string, cfg *config.Config, bus *event.Bus, log *logging.Logger) *taskqueue.EventQueue {
	if cfg.Queue.PersistState {
		if q, err := taskqueue.LoadState(dataDir); err == nil {
			status := q.Status()
			log.Info("queue state restored", "ready", status.Ready, "delivered", status.Delivered)
			return taskqueue.NewEventQueue(q, bus)
		}
	}
	return taskqueue.NewEventQueue(taskqueue.New(), bus)
}

func runRecovery(ctx context.Context, svc *service.Service, log *logging.Logger) {
	n, err := svc.RecoverOrphans(ctx)
	if err != nil {
		log.Error("recovery scan failed", "error", err.Error())
		return
	}
	if n > 0 {
		log.Info("recovery scan enqueued records", "count", n)
	}
}

func recoveryLoop(ctx context.Context, svc *service.Service, log *logging.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runRecovery(ctx, svc, log)
		}
	}
}

// subscribeEventLog mirrors pipeline lifecycle events into the structured
// log so the queue and workers stay decoupled from the logger.
func subscribeEventLog(bus *event.Bus, log *logging.Logger) {
	elog := log.WithComponent("events")
	bus.SubscribeAll(func(e event.Event) {
		switch ev := e.(type) {
		case event.TaskEnqueuedEvent:
			elog.Info("task enqueued", "record_id", ev.RecordID, "owner_id", ev.OwnerID)
		case event.TaskClaimedEvent:
			elog.Debug("task claimed", "record_id", ev.RecordID, "worker_id", ev.WorkerID)
		case event.TaskAckedEvent:
			elog.Debug("task acked", "record_id", ev.RecordID, "worker_id", ev.WorkerID)
		case event.TaskRequeuedEvent:
			elog.Warn("task requeued", "record_id", ev.RecordID, "reason", ev.Reason)
		case event.TaskRemovedEvent:
			elog.Info("task removed", "record_id", ev.RecordID)
		case event.RecordStateChangedEvent:
			elog.Info("record state changed",
				"record_id", ev.RecordID, "from", ev.From, "to", ev.To, "worker_id", ev.WorkerID)
		case event.GenerationRetriedEvent:
			elog.Warn("generation retried",
				"record_id", ev.RecordID, "worker_id", ev.WorkerID, "attempt", ev.Attempt, "cause", ev.Cause)
		case event.QueueDepthChangedEvent:
			elog.Debug("queue depth changed", "ready", ev.Ready, "delivered", ev.Delivered)
		}
	})
}
