// Command tubemeta-batch analyzes a list of video links once and writes the
// results as CSV.
//
// Usage:
//
//	tubemeta-batch -in urls.txt -out youtube-analysis.csv
//	tubemeta-batch https://youtu.be/abc https://www.youtube.com/watch?v=xyz
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/use-agent/tubemeta/batch"
	"github.com/use-agent/tubemeta/config"
	"github.com/use-agent/tubemeta/export"
	"github.com/use-agent/tubemeta/models"
	"github.com/use-agent/tubemeta/scraper"
	"github.com/use-agent/tubemeta/store"
)

func main() {
	in := flag.String("in", "", "file with URLs (.csv with a url column, or one URL per line)")
	out := flag.String("out", export.Filename, "CSV output path, - for stdout")
	filter := flag.Bool("filter", false, "skip lines that are not video links")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	config.InitLogger(cfg.Log, os.Stderr)

	if err := run(cfg, *in, *out, *filter, flag.Args()); err != nil {
		slog.Error("batch failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, in, out string, filter bool, args []string) error {
	urls := args
	if in != "" {
		fromFile, err := export.ReadURLs(in)
		if err != nil {
			return fmt.Errorf("read %s: %w", in, err)
		}
		urls = append(fromFile, urls...)
	}
	if filter {
		urls = export.KeepVideoURLs(urls)
	}
	if len(urls) == 0 {
		return errors.New("no URLs given: use -in or pass URLs as arguments")
	}

	// The first interrupt stops after the current video; partial results are kept.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analyzer := batch.New(scraper.LaunchFunc(cfg.Browser, cfg.Scraper))
	defer analyzer.Close()

	onResult := func(rec models.VideoRecord, current, total int, _ []models.VideoRecord) {
		if rec.Failed() {
			slog.Warn("video failed", "progress", fmt.Sprintf("%d/%d", current, total), "url", rec.URL, "error", rec.Error)
			return
		}
		slog.Info("video analyzed", "progress", fmt.Sprintf("%d/%d", current, total), "title", rec.Title, "views", rec.ViewCount)
	}

	results, err := analyzer.AnalyzeVideos(ctx, urls, nil, onResult, nil)
	if err != nil {
		return err
	}
	slog.Info("batch complete",
		"succeeded", models.CountSucceeded(results),
		"processed", len(results),
		"total", len(urls),
	)

	if cfg.Store.SQLitePath != "" {
		if err := persist(cfg.Store.SQLitePath, results); err != nil {
			slog.Error("results not persisted", "path", cfg.Store.SQLitePath, "error", err)
		}
	}

	return writeCSV(out, results)
}

func persist(path string, results []models.VideoRecord) error {
	st, err := store.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.Append(context.Background(), results...)
}

func writeCSV(path string, results []models.VideoRecord) error {
	if path == "-" {
		return export.WriteCSV(os.Stdout, results)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteCSV(f, results); err != nil {
		f.Close()
		return err
	}
	slog.Info("csv written", "path", path, "rows", len(results))
	return f.Close()
}
