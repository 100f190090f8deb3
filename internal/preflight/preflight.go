package preflight

import (
	"fmt"
	"strings"

	"multiscan/internal/config"
	"multiscan/internal/deps"
	"multiscan/internal/stage"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the directory checks for the given config.
func RunAll(cfg config.Config) []Result {
	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	for _, dir := range []struct {
		name string
		path string
	}{
		{"Scripts directory", cfg.Paths.ScriptsDir},
		{"Converter directory", cfg.Paths.ConverterDir},
		{"Photogrammetry directory", cfg.Paths.PhotogrammetryDir},
	} {
		results = append(results, CheckDirectoryReadable(dir.name, dir.path))
	}
	return results
}

// stageTools maps each stage to the requirement names it needs.
var stageTools = map[stage.Name][]string{
	stage.Convert:        {"FFmpeg", "Python", "Depth decoder"},
	stage.Photogrammetry: {"Conda", "Meshroom batch"},
	stage.KnownPoses:     {"Conda", "Meshroom known poses", "Converter"},
	stage.SensorDepth:    {"Converter"},
}

// StageHealth reports, per stage in pipeline order, whether its tools are available.
func StageHealth(statuses []deps.Status) []stage.Health {
	byName := make(map[string]deps.Status, len(statuses))
	for _, status := range statuses {
		byName[status.Name] = status
	}
	health := make([]stage.Health, 0, len(stage.Order))
	for _, name := range stage.Order {
		var problems []string
		for _, tool := range stageTools[name] {
			status, ok := byName[tool]
			if !ok {
				continue
			}
			if !status.Available {
				problems = append(problems, fmt.Sprintf("%s: %s", tool, status.Detail))
			}
		}
		if len(problems) == 0 {
			health = append(health, stage.Healthy(name))
			continue
		}
		health = append(health, stage.Unhealthy(name, strings.Join(problems, "; ")))
	}
	return health
}
