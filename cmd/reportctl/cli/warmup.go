package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/soit-dashboard/internal/dashboard"
	"github.com/odyssey-erp/soit-dashboard/internal/report"
	"github.com/odyssey-erp/soit-dashboard/jobs"
)

// JobsCLI wraps manual management helpers for the warmup queue.
type JobsCLI struct {
	client    *jobs.Client
	inspector *asynq.Inspector
}

// NewJobsCLI initialises the queue helpers for the Redis address.
func NewJobsCLI(redisAddr string) (*JobsCLI, error) {
	opts := asynq.RedisClientOpt{Addr: redisAddr}
	client, err := jobs.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return &JobsCLI{client: client, inspector: asynq.NewInspector(opts)}, nil
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var err error
	if c.inspector != nil {
		if closeErr := c.inspector.Close(); closeErr != nil {
			err = closeErr
		}
	}
	if c.client != nil {
		if closeErr := c.client.Close(); closeErr != nil {
			err = closeErr
		}
	}
	return err
}

// Trigger enqueues a dashboard warmup.
func (c *JobsCLI) Trigger(ctx context.Context, reason string) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	return c.client.EnqueueDashboardWarmup(ctx, reason)
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
}

// InspectQueue reports the metrics of the default queue.
func (c *JobsCLI) InspectQueue(ctx context.Context) (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	if info != nil {
		stats.Pending = info.Pending
		stats.Active = info.Active
		stats.Scheduled = info.Scheduled
		stats.Retry = info.Retry
	}
	return stats, nil
}

// WarmupOptions configures an inline warmup.
type WarmupOptions struct {
	Path   string
	Client *redis.Client
	TTL    time.Duration
	Logger *slog.Logger
}

// RunWarmup fills the selection cache in-process, the same way the worker
// task does, and returns the number of entries written.
func RunWarmup(ctx context.Context, opts WarmupOptions) (int, error) {
	cache := dashboard.NewCache(opts.Client, opts.TTL, nil)
	job := jobs.NewDashboardWarmupJob(report.FileSource{Path: opts.Path}, cache, opts.Logger, nil)
	return job.Run(ctx, "cli")
}

func newWarmupCommand() *cobra.Command {
	var (
		path    string
		addr    string
		ttl     time.Duration
		enqueue bool
		stats   bool
	)
	cmd := &cobra.Command{
		Use:   "warmup",
		Short: "Fill the dashboard selection cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if enqueue || stats {
				jc, err := NewJobsCLI(addr)
				if err != nil {
					return err
				}
				defer jc.Close()
				if enqueue {
					info, err := jc.Trigger(ctx, "manual")
					if err != nil {
						return fmt.Errorf("enqueue warmup: %w", err)
					}
					fmt.Fprintf(out, "enqueued %s on %s\n", info.ID, info.Queue)
				}
				if stats {
					qs, err := jc.InspectQueue(ctx)
					if err != nil {
						return fmt.Errorf("inspect queue: %w", err)
					}
					fmt.Fprintf(out, "queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
						qs.Queue, qs.Pending, qs.Active, qs.Scheduled, qs.Retry)
				}
				return nil
			}

			client := redis.NewClient(&redis.Options{Addr: addr})
			defer client.Close()
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
			written, err := RunWarmup(ctx, WarmupOptions{Path: path, Client: client, TTL: ttl, Logger: logger})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "warmed %d entries\n", written)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "data/report.json", "Report payload (JSON or YAML)")
	cmd.Flags().StringVar(&addr, "redis", "127.0.0.1:6379", "Redis address")
	cmd.Flags().DurationVar(&ttl, "ttl", 10*time.Minute, "Cache entry TTL")
	cmd.Flags().BoolVar(&enqueue, "enqueue", false, "Enqueue the warmup task for the worker instead of running inline")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print queue statistics")
	return cmd
}
