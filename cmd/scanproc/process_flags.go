package main

import (
	"strings"

	"github.com/spf13/cobra"

	"multiscan/internal/config"
	"multiscan/internal/stage"
)

// processFlags are shared by the root command and plan.
type processFlags struct {
	input       string
	from        string
	actions     []string
	all         bool
	step        int
	meshroomDir string
	cpus        int
	gpus        int
	overwrite   bool
	novh        bool
}

func (f *processFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.input, "input", "i", "", "Capture directory to process")
	fs.StringVar(&f.from, "from", "", "Start the pipeline at this stage ("+strings.Join(stage.Strings(), ", ")+"; default convert)")
	fs.StringArrayVar(&f.actions, "action", nil, "Run only this stage (repeatable)")
	fs.BoolVar(&f.all, "all", false, "Run every stage")
	fs.IntVarP(&f.step, "step", "s", 0, "Keep every Nth frame when decoding")
	fs.StringVar(&f.meshroomDir, "meshroom_dir", "", "Reconstruction result subdirectory name")
	fs.IntVar(&f.cpus, "cpus", 0, "Maximum CPU threads for Meshroom feature extraction")
	fs.IntVar(&f.gpus, "gpus", 0, "Maximum GPUs for Meshroom depth maps")
	fs.BoolVar(&f.overwrite, "overwrite", false, "Decode the streams again even when frames exist")
	fs.BoolVar(&f.novh, "novh", false, "Accepted for compatibility; has no effect")
}

func (f *processFlags) overrides() config.Overrides {
	return config.Overrides{
		SkipStep:          f.step,
		MaxCPUs:           f.cpus,
		MaxGPUs:           f.gpus,
		PhotogrammetryDir: f.meshroomDir,
	}
}

func (f *processFlags) request() stage.Request {
	return stage.Request{
		All:       f.all,
		From:      f.from,
		Actions:   f.actions,
		Overwrite: f.overwrite,
		NoVH:      f.novh,
	}
}

// resolve applies the processing overrides to base and resolves the stage
// selection.
func (f *processFlags) resolve(base config.Config) (config.Config, stage.Selection, error) {
	cfg, err := base.WithOverrides(f.overrides())
	if err != nil {
		return config.Config{}, stage.Selection{}, err
	}
	sel, err := stage.Resolve(f.request())
	if err != nil {
		return config.Config{}, stage.Selection{}, err
	}
	return cfg, sel, nil
}
