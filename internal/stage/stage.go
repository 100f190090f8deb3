package stage

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"multiscan/internal/services"
)

// Name identifies one pipeline stage.
type Name string

const (
	Convert        Name = "convert"
	Photogrammetry Name = "photogrammetry"
	KnownPoses     Name = "knownposes"
	SensorDepth    Name = "sensordepth"
)

// Order is the fixed pipeline sequence.
var Order = []Name{Convert, Photogrammetry, KnownPoses, SensorDepth}

var displayWords = map[Name]string{
	Convert:        "convert",
	Photogrammetry: "photogrammetry",
	KnownPoses:     "known poses",
	SensorDepth:    "sensor depth",
}

// Parse converts user input into a stage name.
func Parse(value string) (Name, error) {
	name := Name(strings.ToLower(strings.TrimSpace(value)))
	for _, candidate := range Order {
		if candidate == name {
			return name, nil
		}
	}
	return "", services.Wrap(services.ErrValidation, "stage", "parse",
		fmt.Sprintf("unknown stage %q (expected one of %s)", value, strings.Join(Strings(), ", ")), nil)
}

// Strings lists every stage name in pipeline order.
func Strings() []string {
	out := make([]string, len(Order))
	for i, name := range Order {
		out[i] = string(name)
	}
	return out
}

// Label renders a stage for tables, e.g. "Known Poses".
func Label(name Name) string {
	words, ok := displayWords[name]
	if !ok {
		words = string(name)
	}
	return cases.Title(language.English).String(words)
}

func index(name Name) int {
	for i, candidate := range Order {
		if candidate == name {
			return i
		}
	}
	return -1
}
