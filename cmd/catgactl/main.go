package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/catga/catga"
	catgalog "github.com/catga/catga/log"
	"github.com/catga/catga/stores/mem"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "catgactl",
	Short:   "catgactl operates catga's worker loops and staged-message queues",
	Long:    `catgactl drives the scheduler worker and outbox publisher loops described in catga's design, and inspects the dead-letter queue.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"catgactl version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (ignored: console output logs at debug level, --log-json output at info level)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(dlqCmd)
	rootCmd.AddCommand(outboxCmd)
}

func loggerFromFlags(cmd *cobra.Command) catgalog.Logger {
	asJSON, _ := cmd.Flags().GetBool("log-json")
	if asJSON {
		return catgalog.Production(os.Stdout)
	}
	return catgalog.Development()
}

// Worker commands: run the scheduler worker and outbox publisher loops
// against an in-process store, seeding demo traffic so the loops have
// something to drain (catgactl has no durable backing store of its own
// to attach to; nothing here wires stores/pgx).
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run catga's background worker loops",
}

var workerRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduler and outbox worker loops until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := loggerFromFlags(cmd)
		schedInterval, _ := cmd.Flags().GetDuration("scheduler-interval")
		outboxInterval, _ := cmd.Flags().GetDuration("outbox-interval")
		seed, _ := cmd.Flags().GetInt("seed")

		scheduler := mem.NewScheduler()
		outbox := mem.NewOutbox()
		ctx := context.Background()

		for i := 0; i < seed; i++ {
			payload := fmt.Sprintf("scheduled-message-%d", i)
			if _, err := scheduler.Schedule(ctx, payload, time.Now()); err != nil {
				return fmt.Errorf("seed scheduler: %w", err)
			}
			entry := catga.OutboxEntry{
				ID:           fmt.Sprintf("outbox-entry-%d", i),
				Type:         "demo.Event",
				PayloadBytes: []byte(fmt.Sprintf(`{"seq":%d}`, i)),
				CreatedAt:    time.Now(),
				State:        catga.OutboxPending,
			}
			if err := outbox.Add(ctx, entry); err != nil {
				return fmt.Errorf("seed outbox: %w", err)
			}
		}
		logger.Info("worker: seeded demo traffic", "scheduled", seed, "outbox_entries", seed)

		schedWorker := catga.NewSchedulerWorker(scheduler, func(ctx context.Context, payload any) error {
			logger.Info("worker: scheduled message due", "payload", payload)
			return nil
		}, schedInterval, logger)

		outboxPublisher := catga.NewOutboxPublisher(outbox, func(ctx context.Context, entry catga.OutboxEntry) error {
			logger.Info("worker: publishing outbox entry", "id", entry.ID, "type", entry.Type)
			return nil
		}, outboxInterval, 100, logger)

		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		errCh := make(chan error, 2)
		go func() { errCh <- schedWorker.Run(runCtx) }()
		go func() { errCh <- outboxPublisher.Run(runCtx) }()

		fmt.Println("catgactl worker loops running. Press Ctrl+C to stop.")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			fmt.Println("\nShutting down...")
		case err := <-errCh:
			if err != nil && err != context.Canceled {
				return err
			}
		}

		cancel()
		fmt.Println("✓ Shutdown complete")
		return nil
	},
}

func init() {
	workerCmd.AddCommand(workerRunCmd)
	workerRunCmd.Flags().Duration("scheduler-interval", time.Second, "Poll interval for the scheduler worker")
	workerRunCmd.Flags().Duration("outbox-interval", time.Second, "Poll interval for the outbox publisher")
	workerRunCmd.Flags().Int("seed", 3, "Number of demo scheduled messages and outbox entries to seed before running")
}

// Outbox commands: inspect a freshly seeded, in-process outbox. Useful
// for confirming the publisher drains entries without wiring a real
// event store.
var outboxCmd = &cobra.Command{
	Use:   "outbox",
	Short: "Inspect outbox state",
}

var outboxDemoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Add a demo entry to a throwaway in-process outbox and show GetPending",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		outbox := mem.NewOutbox()
		entry := catga.OutboxEntry{
			ID:           "demo-1",
			Type:         "demo.Event",
			PayloadBytes: []byte(`{"hello":"world"}`),
			CreatedAt:    time.Now(),
			State:        catga.OutboxPending,
		}
		if err := outbox.Add(ctx, entry); err != nil {
			return err
		}
		pending, err := outbox.GetPending(ctx, 10)
		if err != nil {
			return err
		}
		fmt.Printf("pending entries: %d\n", len(pending))
		for _, e := range pending {
			fmt.Printf("  %s (%s) state=%s\n", e.ID, e.Type, e.State)
		}
		return nil
	},
}

func init() {
	outboxCmd.AddCommand(outboxDemoCmd)
}

// DLQ commands.
var dlqCmd = &cobra.Command{
	Use:   "dlq",
	Short: "Inspect a dead-letter queue",
}

var dlqDemoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Enqueue a demo failure into a throwaway in-process DLQ and peek it",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		queue := mem.NewDeadLetterQueue()
		errInfo := catga.DeadLetterError{Code: catga.CodeUnhandled, Message: "demo handler panic", Attempts: 3}
		if err := queue.Enqueue(ctx, "demo-message", errInfo); err != nil {
			return err
		}
		entries, err := queue.Peek(ctx, 10)
		if err != nil {
			return err
		}
		fmt.Printf("dead letters: %d\n", len(entries))
		for _, e := range entries {
			fmt.Printf("  %v: %s (code=%s attempts=%d)\n", e.Message, e.Error.Message, e.Error.Code, e.Error.Attempts)
		}
		return nil
	},
}

func init() {
	dlqCmd.AddCommand(dlqDemoCmd)
}
