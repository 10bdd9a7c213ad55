package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dotswift/Pulse/internal/config"
	"github.com/dotswift/Pulse/internal/console"
	"github.com/dotswift/Pulse/internal/export"
	"github.com/dotswift/Pulse/internal/ingest"
	"github.com/dotswift/Pulse/internal/model"
	"github.com/dotswift/Pulse/internal/store"
	"github.com/dotswift/Pulse/internal/ui"
	"github.com/dotswift/Pulse/internal/util/logx"
	"github.com/dotswift/Pulse/internal/version"
)

func main() {
	logx.SetupFromEnv()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	if cfg.ShowVersion {
		fmt.Println("pulse", version.String())
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logx.Infof("starting pulse %s: %s", version.String(), cfg.String())

	mem := store.NewMemory(cfg.MaxBuffer)
	entities, errs := ingest.Read(ctx, ingestOptions(cfg))
	drained := make(chan struct{})
	go pump(mem, entities, drained)
	go func() {
		for err := range errs {
			logx.Errorf("ingest: %v", err)
		}
	}()

	if cfg.ExportFormat != "" {
		if err := headlessExport(cfg, mem, drained); err != nil {
			fmt.Fprintln(os.Stderr, "export error:", err)
			os.Exit(1)
		}
		return
	}

	mode := model.ModeAll
	if cfg.Mode == "network" {
		mode = model.ModeNetwork
	}
	caps := console.Capabilities{
		HTMLExport: true,
		Clipboard:  true,
		Explain:    !cfg.Offline && cfg.OpenAIKey() != "",
	}
	coord := console.NewCoordinator(mem, mode, caps, cfg.Compress)
	coord.Start(ctx)

	if err := ui.Run(ctx, cfg, coord); err != nil {
		logx.Errorf("pulse exited with error: %v", err)
		os.Exit(1)
	}
}

func ingestOptions(cfg *config.Config) ingest.Options {
	src := ingest.SourceDemo
	if cfg.UseStdin {
		src = ingest.SourceStdin
	}
	if !cfg.UseStdin && cfg.FilePath != "" {
		src = ingest.SourceFile
	}
	return ingest.Options{Source: src, Path: cfg.FilePath, Follow: cfg.Follow, ScanBufSize: 1024 * 1024}
}

func pump(mem *store.Memory, entities <-chan model.Entity, drained chan<- struct{}) {
	defer close(drained)
	for e := range entities {
		mem.Insert(e)
	}
}

// headlessExport drains the input, serializes the mode-filtered view through
// the export coordinator and writes it to the configured path.
func headlessExport(cfg *config.Config, mem *store.Memory, drained <-chan struct{}) error {
	<-drained
	pred := model.Predicate{Mode: model.ModeAll}
	if cfg.Mode == "network" {
		pred.Mode = model.ModeNetwork
	}
	format := export.FormatText
	if cfg.ExportFormat == "html" {
		format = export.FormatHTML
	}
	coord := export.NewCoordinator(cfg.Compress)
	job := coord.Request(format, mem.Snapshot(pred))
	res := <-job.Done()
	if res.Err != nil {
		return res.Err
	}
	if res.Cancelled {
		return fmt.Errorf("export cancelled")
	}
	if err := os.WriteFile(cfg.ExportOut, res.Data, 0o644); err != nil {
		return err
	}
	fmt.Printf("exported %d bytes to %s\n", len(res.Data), cfg.ExportOut)
	return nil
}
