package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"multiscan/internal/history"
	"multiscan/internal/logging"
	"multiscan/internal/pipeline"
)

func runProcess(cmd *cobra.Command, ctx *commandContext, flags *processFlags) error {
	base, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	cfg, sel, err := flags.resolve(base)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	// An invalid capture is reported before any log file, directory or
	// history database is created.
	if invalid, ok := pipeline.CheckScanDir(flags.input); !ok {
		fmt.Fprintln(out, renderResultLine(invalid, shouldColorize(out)))
		return nil
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logging.NewComponentLogger(logger, "scanproc")

	opts := []pipeline.Option{}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.HistoryPath())
		if err != nil {
			logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
				logging.String("path", cfg.HistoryPath()),
				logging.String(logging.FieldImpact, "this run will not appear in scanproc history"),
				logging.Error(err),
			)
		} else {
			defer store.Close()
			opts = append(opts, pipeline.WithRecorder(store))
		}
	}

	processor := pipeline.New(cfg, sel, logger, opts...)
	result, err := processor.ProcessScanDir(cmd.Context(), flags.input)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, renderResultLine(result, shouldColorize(out)))
	return nil
}
