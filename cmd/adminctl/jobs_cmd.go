package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-admin/jobs"
)

// jobsCLI wraps manual management helpers for Asynq jobs.
type jobsCLI struct {
	client    *jobs.Client
	inspector *asynq.Inspector
}

func newJobsCLI(redisAddr string) *jobsCLI {
	opts := asynq.RedisClientOpt{Addr: redisAddr}
	return &jobsCLI{client: jobs.NewClient(opts, nil), inspector: asynq.NewInspector(opts)}
}

// Close releases underlying resources.
func (c *jobsCLI) Close() error {
	var errs []error
	if c.inspector != nil {
		errs = append(errs, c.inspector.Close())
	}
	if c.client != nil {
		errs = append(errs, c.client.Close())
	}
	return errors.Join(errs...)
}

// Trigger enqueues a supported job by name.
func (c *jobsCLI) Trigger(ctx context.Context, name string, invalidate bool) (*asynq.TaskInfo, error) {
	switch name {
	case jobs.TaskLookupWarmup:
		return c.client.EnqueueLookupWarmup(ctx, invalidate)
	default:
		return nil, fmt.Errorf("unsupported job %q", name)
	}
}

// ListScheduled returns scheduled tasks of the default queue.
func (c *jobsCLI) ListScheduled(size int) ([]*asynq.TaskInfo, error) {
	if size <= 0 {
		size = 10
	}
	return c.inspector.ListScheduledTasks(jobs.QueueDefault, asynq.PageSize(size), asynq.Page(1))
}

type scheduledTask struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	NextRunAt string `json:"next_run_at"`
	Retried   int    `json:"retried"`
}

func newJobsCmd() *cobra.Command {
	var redisAddr string

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and trigger background jobs",
	}
	cmd.PersistentFlags().StringVar(&redisAddr, "redis", envOr("REDIS_ADDR", "127.0.0.1:6379"), "Redis address of the job queue")

	var invalidate bool
	trigger := &cobra.Command{
		Use:   "trigger <job>",
		Short: "Enqueue a job now (supported: " + jobs.TaskLookupWarmup + ")",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := newJobsCLI(redisAddr)
			defer cli.Close()
			info, err := cli.Trigger(cmd.Context(), args[0], invalidate)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]string{"id": info.ID, "queue": info.Queue, "type": info.Type})
		},
	}
	trigger.Flags().BoolVar(&invalidate, "invalidate", false, "Drop the lookup cache before warming it")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show queue sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := newJobsCLI(redisAddr)
			defer cli.Close()
			out, err := jobs.Stats(cli.inspector)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	var size int
	scheduled := &cobra.Command{
		Use:   "scheduled",
		Short: "List scheduled tasks of the default queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := newJobsCLI(redisAddr)
			defer cli.Close()
			tasks, err := cli.ListScheduled(size)
			if err != nil {
				return err
			}
			out := make([]scheduledTask, 0, len(tasks))
			for _, t := range tasks {
				out = append(out, scheduledTask{ID: t.ID, Type: t.Type, NextRunAt: t.NextProcessAt.UTC().Format("2006-01-02T15:04:05Z"), Retried: t.Retried})
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	scheduled.Flags().IntVar(&size, "size", 10, "Number of tasks to list")

	cmd.AddCommand(trigger, stats, scheduled)
	return cmd
}
