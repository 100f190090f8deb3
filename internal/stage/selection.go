package stage

import (
	"fmt"
	"strings"
)

// Request is the raw stage-selection input collected from the command line.
type Request struct {
	All       bool
	From      string
	Actions   []string
	Overwrite bool
	NoVH      bool
}

// Selection is the resolved set of stages for one run. It is not modified
// after Resolve returns.
type Selection struct {
	Convert        bool
	Photogrammetry bool
	KnownPoses     bool
	SensorDepth    bool
	Overwrite      bool
	// NoVH is accepted for compatibility and not consulted by any stage.
	NoVH bool
}

// Resolve computes the selection. Explicit Actions win over All and From,
// All wins over From. With none of them set the pipeline runs from convert.
func Resolve(req Request) (Selection, error) {
	sel := Selection{Overwrite: req.Overwrite, NoVH: req.NoVH}

	switch {
	case len(req.Actions) > 0:
		for _, action := range req.Actions {
			name, err := Parse(action)
			if err != nil {
				return Selection{}, err
			}
			sel.set(name)
		}
	case req.All:
		for _, name := range Order {
			sel.set(name)
		}
	default:
		from := strings.TrimSpace(req.From)
		if from == "" {
			from = string(Convert)
		}
		start, err := Parse(from)
		if err != nil {
			return Selection{}, err
		}
		for _, name := range Order[index(start):] {
			sel.set(name)
		}
	}
	return sel, nil
}

func (s *Selection) set(name Name) {
	switch name {
	case Convert:
		s.Convert = true
	case Photogrammetry:
		s.Photogrammetry = true
	case KnownPoses:
		s.KnownPoses = true
	case SensorDepth:
		s.SensorDepth = true
	}
}

// Has reports whether name is selected.
func (s Selection) Has(name Name) bool {
	switch name {
	case Convert:
		return s.Convert
	case Photogrammetry:
		return s.Photogrammetry
	case KnownPoses:
		return s.KnownPoses
	case SensorDepth:
		return s.SensorDepth
	default:
		return false
	}
}

// Names lists the selected stages in pipeline order.
func (s Selection) Names() []Name {
	out := make([]Name, 0, len(Order))
	for _, name := range Order {
		if s.Has(name) {
			out = append(out, name)
		}
	}
	return out
}

// Empty reports whether no stage is selected.
func (s Selection) Empty() bool {
	return len(s.Names()) == 0
}

// Warnings describes selections that will silently do nothing: the known-poses
// and sensor-depth steps only run inside photogrammetry, and sensor depth
// additionally needs known poses.
func (s Selection) Warnings() []string {
	var warnings []string
	if !s.Photogrammetry {
		for _, name := range []Name{KnownPoses, SensorDepth} {
			if s.Has(name) {
				warnings = append(warnings, fmt.Sprintf("%s selected without photogrammetry; it will not run", name))
			}
		}
		return warnings
	}
	if s.SensorDepth && !s.KnownPoses {
		warnings = append(warnings, "sensordepth selected without knownposes; it will not run")
	}
	return warnings
}

// String renders the selection as a comma separated list.
func (s Selection) String() string {
	names := s.Names()
	if len(names) == 0 {
		return "(none)"
	}
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = string(name)
	}
	return strings.Join(parts, ",")
}
