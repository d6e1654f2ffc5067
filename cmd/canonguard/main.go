package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aleister1102/canonguard/internal/common/errorwrapper"
	"github.com/aleister1102/canonguard/internal/config"
	"github.com/aleister1102/canonguard/internal/datastore"
	"github.com/aleister1102/canonguard/internal/logger"
	"github.com/aleister1102/canonguard/internal/models"
	"github.com/aleister1102/canonguard/internal/pipeline"
	"github.com/rs/zerolog"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags, err := ParseFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "[FATAL] %v\n", err)
		return 2
	}

	bootLogger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	gCfg, err := config.LoadGlobalConfig(flags.GlobalConfigFile, bootLogger)
	if err != nil {
		bootLogger.Error().Err(err).Str("path", flags.GlobalConfigFile).Msg("Could not load global config")
		return 1
	}
	flags.Apply(gCfg)

	runID := datastore.NewRunID()
	zLogger, err := logger.NewWithRunID(gCfg.LogConfig, runID)
	if err != nil {
		bootLogger.Error().Err(err).Msg("Could not initialize logger")
		return 1
	}

	if err := config.ValidateConfig(gCfg); err != nil {
		zLogger.Error().Err(err).Msg("Configuration validation failed")
		return 1
	}

	var history *datastore.HistoryDB
	if gCfg.StorageConfig.Enabled {
		history, err = datastore.NewHistoryDB(gCfg.StorageConfig.SQLitePath, zLogger)
		if err != nil {
			zLogger.Error().Err(err).Msg("Failed to open history database, continuing without history")
		} else {
			defer history.Close()
		}
	}

	builder := pipeline.NewPipelineBuilder(zLogger).WithConfig(gCfg)
	if history != nil {
		builder = builder.WithHistory(history)
	}
	p, err := builder.Build()
	if err != nil {
		zLogger.Error().Err(err).Msg("Failed to initialize pipeline")
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			zLogger.Info().Str("signal", sig.String()).Msg("Received interrupt signal, finishing in-flight pages")
			cancel()
		case <-ctx.Done():
		}
	}()

	if len(flags.InfoURLs) > 0 {
		printURLInfos(p.Inspect(ctx, flags.InfoURLs))
		return 0
	}

	state, err := p.Run(ctx, runID, pipeline.Options{
		Domain:         flags.Domain,
		Sitemaps:       flags.Sitemaps,
		URLFile:        flags.URLFile,
		ManualURLs:     strings.Join(flags.Pages, "\n"),
		DiscoverOnly:   flags.DiscoverOnly,
		ExportStatuses: flags.Statuses,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorwrapper.ErrNoSitemaps), errors.Is(err, errorwrapper.ErrNoURLs):
			zLogger.Warn().Err(err).Msg("Nothing to audit")
		default:
			zLogger.Error().Err(err).Msg("Run failed")
		}
		return 1
	}

	if flags.DiscoverOnly {
		printCandidates(state)
		return 0
	}

	for _, path := range state.ReportPaths {
		fmt.Println(path)
	}
	if state.Cancelled {
		return 130
	}
	return 0
}

func printCandidates(state *pipeline.State) {
	for _, c := range state.Candidates {
		count := "?"
		if c.URLCount != nil {
			count = fmt.Sprintf("%d", *c.URLCount)
		}
		fmt.Printf("%-18s %-11s %8s  %s\n", c.Format.Label(), c.Status(), count, c.URL)
		for _, u := range state.SitemapPreviews[c.URL] {
			fmt.Printf("%40s- %s\n", "", u)
		}
	}
}

func printURLInfos(infos []models.URLInfo) {
	for _, info := range infos {
		if info.Error != "" {
			fmt.Printf("%-4s %s  error: %s\n", "ERR", info.URL, info.Error)
			continue
		}
		line := fmt.Sprintf("%-4d %s  %s  %.3fs  length=%s  modified=%s",
			info.StatusCode, info.URL, info.ContentType, info.ResponseTime, info.ContentLength, info.LastModified)
		if info.Redirected {
			line += "  -> " + info.FinalURL
		}
		fmt.Println(line)
	}
}
