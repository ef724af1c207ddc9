// Command batch-upload registers every PDF in a folder as a paper.
//
//	batch-upload -dir ./papers -concurrency 8
//
// Files already present in the bucket are skipped. The exit status is 1 when
// any file failed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"paperlib/internal/app"
	"paperlib/internal/config"
	"paperlib/internal/ingest"
	"paperlib/internal/logging"
)

func main() {
	dir := flag.String("dir", "", "folder containing the PDFs to upload")
	concurrency := flag.Int("concurrency", ingest.DefaultConcurrency, "number of files uploaded at once")
	flag.Parse()

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "usage: batch-upload -dir <folder> [-concurrency n]")
		os.Exit(2)
	}

	cfg := config.Load()
	log := logging.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build application")
	}
	defer a.Close()

	res, err := a.Ingester(ingest.WithConcurrency(*concurrency)).IngestDir(ctx, *dir)
	if err != nil {
		log.Error().Err(err).Str("dir", *dir).Msg("batch upload aborted")
		a.Close()
		os.Exit(1)
	}

	fmt.Printf("total %d, uploaded %d, skipped %d, failed %d\n", res.Total(), res.Succeeded, res.Skipped, res.Failed)
	for _, f := range res.Failures {
		fmt.Printf("  failed: %s\n", f)
	}
	if res.Failed > 0 {
		a.Close()
		os.Exit(1)
	}
}
