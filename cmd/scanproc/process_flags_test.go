package main

import (
	"testing"

	"multiscan/internal/config"
	"multiscan/internal/stage"
)

func TestProcessFlagsActionWinsOverAllAndFrom(t *testing.T) {
	tests := []struct {
		name  string
		flags processFlags
		want  string
	}{
		{"all with action", processFlags{all: true, actions: []string{"convert"}}, "convert"},
		{"from with action", processFlags{from: "photogrammetry", actions: []string{"convert"}}, "convert"},
		{"all without action", processFlags{all: true, from: "knownposes"}, "convert,photogrammetry,knownposes,sensordepth"},
		{"from only", processFlags{from: "photogrammetry"}, "photogrammetry,knownposes,sensordepth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, sel, err := tt.flags.resolve(config.Default())
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got := sel.String(); got != tt.want {
				t.Fatalf("selection = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProcessFlagsOverridesLeaveBaseUntouched(t *testing.T) {
	base := config.Default()
	flags := processFlags{step: 4, cpus: 2, actions: []string{string(stage.Convert)}}
	cfg, _, err := flags.resolve(base)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Processing.SkipStep != 4 || cfg.Processing.MaxCPUs != 2 {
		t.Fatalf("overrides not applied: %+v", cfg.Processing)
	}
	if base.Processing.SkipStep != config.Default().Processing.SkipStep {
		t.Fatalf("base config mutated: %+v", base.Processing)
	}
}
