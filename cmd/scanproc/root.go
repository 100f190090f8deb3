package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var logFormatFlag string

	ctx := newCommandContext(&configFlag, &logLevelFlag, &logFormatFlag)
	flags := &processFlags{}

	rootCmd := &cobra.Command{
		Use:   "scanproc",
		Short: "Process 3-D scan captures into reconstructions",
		Long: "scanproc decodes a capture's color and depth streams, runs Meshroom " +
			"photogrammetry, and optionally aligns the reconstruction with the device " +
			"poses and sensor depth.",
		Example: "  scanproc -i /scans/kitchen\n" +
			"  scanproc -i /scans/kitchen --from photogrammetry --cpus 4\n" +
			"  scanproc -i /scans/kitchen --action convert --overwrite",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.input == "" && !cmd.Flags().Changed("input") {
				return cmd.Help()
			}
			return runProcess(cmd, ctx, flags)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format override (console, json)")
	flags.bind(rootCmd)

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newPlanCommand(ctx))

	return rootCmd
}
