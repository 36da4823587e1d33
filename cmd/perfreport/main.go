// Command perfreport compares page performance between two periods and writes
// the results workbook.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"pageperf/api/calculator"
	"pageperf/api/config"
	"pageperf/api/database"
	"pageperf/api/render"
	"pageperf/api/service"
	"pageperf/api/store"
)

const defaultOutput = "./page_performance_calculator_results.xlsx"

type options struct {
	previous, current string
	timeFrame         int
	inputFile         string
	activeURLsFile    string
	outputFile        string
	rawDatasets       string
	upload            bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("perfreport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Calculate page performance metrics")
		fmt.Fprintln(stderr, "usage: perfreport -p yyyymmdd -c yyyymmdd [flags]")
		fs.PrintDefaults()
	}

	str := func(p *string, short, long, value, usage string) {
		fs.StringVar(p, short, value, usage)
		fs.StringVar(p, long, value, usage)
	}
	str(&o.previous, "p", "previous_start_date", "", "start date of the previous timeframe (yyyymmdd)")
	str(&o.current, "c", "current_start_date", "", "start date of the current timeframe (yyyymmdd)")
	fs.IntVar(&o.timeFrame, "tf", calculator.DefaultWindowDays, "days after each start date to include")
	fs.IntVar(&o.timeFrame, "time_frame", calculator.DefaultWindowDays, "days after each start date to include")
	str(&o.inputFile, "i", "input_file", "", "local events CSV instead of the bucket copy")
	str(&o.activeURLsFile, "a", "active_urls_file", "", "local active URLs CSV instead of the bucket copy")
	str(&o.outputFile, "o", "output_file", defaultOutput, "results workbook path")
	str(&o.rawDatasets, "rd", "raw_datasets", "", "also write both raw timeframe datasets to this workbook")
	fs.BoolVar(&o.upload, "upload", false, "upload the results workbook to the bucket")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.previous == "" || o.current == "" {
		fs.Usage()
		return o, errors.New("-p and -c are required")
	}
	return o, nil
}

func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{TimeFormat: time.TimeOnly})))

	o, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error("invalid arguments", "error", err)
		os.Exit(2)
	}

	var objects bucket
	if o.needsBucket() {
		client, err := database.NewObjectStore()
		if err != nil {
			slog.Error("object storage is needed without -i and -a or with -upload", "error", err)
			os.Exit(1)
		}
		objects = store.NewObjectStore(client)
	}

	start := time.Now()
	if err := run(context.Background(), o, config.Load(), objects, os.Stdout); err != nil {
		slog.Error("report failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("--- %.2f seconds ---\n", time.Since(start).Seconds())
}

// bucket is satisfied by store.ObjectStore.
type bucket interface {
	service.Opener
	PutWorkbook(ctx context.Context, key string, r io.Reader, size int64) error
}

func (o options) needsBucket() bool {
	return o.inputFile == "" || o.activeURLsFile == "" || o.upload
}

func run(ctx context.Context, o options, cfg config.Config, objects bucket, stdout io.Writer) error {
	if o.needsBucket() && objects == nil {
		return errors.New("object storage is needed without -i and -a or with -upload")
	}

	events := service.NewFileEvents(o.inputFile)
	if o.inputFile == "" {
		slog.Info("reading events from bucket", "key", service.EventsObjectKey)
		events = service.NewBucketEvents(objects, service.EventsObjectKey)
	}
	active := service.NewFileActiveURLs(o.activeURLsFile)
	if o.activeURLsFile == "" {
		slog.Info("reading active urls from bucket", "key", service.ActiveURLsObjectKey)
		active = service.NewBucketActiveURLs(objects, service.ActiveURLsObjectKey)
	}

	svc := service.NewReportService(events, active, cfg.Report)
	params := calculator.Params{PreviousStart: o.previous, CurrentStart: o.current, WindowDays: o.timeFrame}

	x, err := svc.Extract(ctx, params)
	if err != nil {
		return err
	}

	if o.rawDatasets != "" {
		if err := writeFile(o.rawDatasets, func(w io.Writer) error {
			return render.WriteRawDatasets(w, x.Previous, x.Current)
		}); err != nil {
			return err
		}
		slog.Info("raw datasets written", "path", o.rawDatasets)
	}

	topChanges := cfg.Report.TopChangeCount
	if topChanges <= 0 {
		topChanges = calculator.DefaultTopChangeCount
	}
	report := calculator.Build(x, topChanges)
	for _, w := range report.Warnings {
		slog.Warn("report warning", "warning", w)
	}

	var buf bytes.Buffer
	if err := render.WriteReport(&buf, report); err != nil {
		return err
	}
	if err := os.WriteFile(o.outputFile, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", o.outputFile, err)
	}
	slog.Info("results written", "path", o.outputFile,
		"previous_events", report.Previous.Events, "current_events", report.Current.Events)

	if o.upload {
		key := service.UploadKey(o.previous, o.current, time.Now())
		if err := objects.PutWorkbook(ctx, key, &buf, int64(buf.Len())); err != nil {
			return err
		}
		slog.Info("results uploaded", "key", key)
		fmt.Fprintf(stdout, "Results uploaded to %s\n", key)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
