package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"

	"github.com/samirrijal/fifteenmap/internal/pkg/config"
	"github.com/samirrijal/fifteenmap/internal/pkg/logging"
	"github.com/samirrijal/fifteenmap/internal/workflows"
)

func main() {
	wait := flag.Bool("wait", false, "wait for the workflow and print the result")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: prefetch [-wait] <addresses-file>")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.Load("fifteenmap-prefetch")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("open addresses: %v", err)
	}
	addresses, err := workflows.ReadAddresses(f)
	f.Close()
	if err != nil {
		log.Fatal(err)
	}
	if len(addresses) == 0 {
		log.Fatalf("no addresses in %s", flag.Arg(0))
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(slog.Default()),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        "prefetch-" + uuid.NewString(),
		TaskQueue: cfg.Temporal.TaskQueue,
	}, workflows.PrefetchWorkflowName, workflows.PrefetchInput{Addresses: addresses})
	if err != nil {
		log.Fatalf("start workflow: %v", err)
	}
	slog.Info("prefetch workflow started",
		"workflow_id", run.GetID(),
		"run_id", run.GetRunID(),
		"addresses", len(addresses),
	)

	if !*wait {
		return
	}

	var result workflows.PrefetchResult
	if err := run.Get(ctx, &result); err != nil {
		log.Fatalf("workflow: %v", err)
	}
	for _, a := range result.Succeeded {
		fmt.Printf("OK    %s\n", a)
	}
	for _, a := range result.Failed {
		fmt.Printf("FAIL  %s\n", a)
	}
	if len(result.Failed) > 0 {
		os.Exit(1)
	}
}
