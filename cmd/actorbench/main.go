package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v2"

	actor "github.com/coopergo/go-actor"
	"github.com/coopergo/go-actor/core"
)

func main() {
	app := &cli.App{
		Name:  "actorbench",
		Usage: "throughput benchmark for executors and worker pools",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Value:   runtime.NumCPU(),
				Usage:   "number of pool workers",
			},
			&cli.IntFlag{
				Name:    "tasks",
				Aliases: []string{"n"},
				Value:   100_000,
				Usage:   "total tasks to run",
			},
			&cli.IntFlag{
				Name:  "queue",
				Value: 0,
				Usage: "executor queue capacity (0 = unbounded)",
			},
			&cli.DurationFlag{
				Name:  "task-time",
				Value: 0,
				Usage: "simulated work per task",
			},
			&cli.BoolFlag{
				Name:  "single",
				Usage: "benchmark a single executor instead of a pool",
			},
		},
		Action: runBench,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runBench(c *cli.Context) error {
	workers := c.Int("workers")
	tasks := c.Int("tasks")
	queueCap := c.Int("queue")
	taskTime := c.Duration("task-time")
	single := c.Bool("single")

	if workers < 1 {
		return cli.Exit("workers must be at least 1", 1)
	}
	if tasks < 1 {
		return cli.Exit("tasks must be at least 1", 1)
	}

	var done atomic.Int64
	work := func(ctx context.Context) {
		if taskTime > 0 {
			time.Sleep(taskTime)
		}
		done.Add(1)
	}

	// Progress report on a timer while the benchmark runs.
	progress := core.NewIntervalTimer(func() {
		fmt.Printf("  %d/%d tasks done\n", done.Load(), tasks)
	})
	progress.StartPeriodic(time.Second)
	defer progress.Stop()

	start := time.Now()

	if single {
		exec := actor.NewExecutorWithConfig(core.ExecutorConfig{
			Name:          "bench",
			QueueCapacity: queueCap,
		})
		fmt.Printf("single executor, %d tasks, queue capacity %d\n", tasks, exec.QueueCapacity())
		for i := 0; i < tasks; i++ {
			exec.Cast(work)
		}
		exec.Stop()
	} else {
		pool := actor.NewWorkerPool("bench", workers)
		fmt.Printf("pool of %d workers, %d tasks\n", workers, tasks)
		for i := 0; i < tasks; i++ {
			pool.Cast(work)
		}
		pool.Stop()
	}

	elapsed := time.Since(start)
	rate := float64(done.Load()) / elapsed.Seconds()
	fmt.Printf("completed %d tasks in %v (%.0f tasks/sec)\n", done.Load(), elapsed, rate)
	return nil
}
