package stage

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"multiscan/internal/services"
)

func TestResolveAllSelectsEverything(t *testing.T) {
	requests := []Request{
		{All: true},
		{All: true, From: "sensordepth"},
		{All: true, From: "knownposes", Overwrite: true, NoVH: true},
	}
	for _, req := range requests {
		sel, err := Resolve(req)
		if err != nil {
			t.Fatalf("Resolve(%+v) error: %v", req, err)
		}
		if diff := cmp.Diff(Order, sel.Names()); diff != "" {
			t.Fatalf("Resolve(%+v) mismatch (-want +got):\n%s", req, diff)
		}
	}
}

func TestResolveFromPhotogrammetry(t *testing.T) {
	sel, err := Resolve(Request{From: "photogrammetry"})
	if err != nil {
		t.Fatal(err)
	}
	want := []Name{Photogrammetry, KnownPoses, SensorDepth}
	if diff := cmp.Diff(want, sel.Names()); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if sel.Convert {
		t.Fatal("convert must not be selected")
	}
}

func TestResolveDefaultsToConvert(t *testing.T) {
	sel, err := Resolve(Request{Overwrite: true})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Order, sel.Names()); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if !sel.Overwrite {
		t.Fatal("expected overwrite to carry through")
	}
}

func TestResolveActionsExactly(t *testing.T) {
	sel, err := Resolve(Request{Actions: []string{"sensordepth", "Convert"}})
	if err != nil {
		t.Fatal(err)
	}
	want := []Name{Convert, SensorDepth}
	if diff := cmp.Diff(want, sel.Names()); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if got := sel.Warnings(); len(got) != 1 {
		t.Fatalf("expected one warning for sensordepth without photogrammetry, got %v", got)
	}
}

func TestResolveActionsOverrideAllAndFrom(t *testing.T) {
	requests := []Request{
		{All: true, Actions: []string{"convert"}},
		{From: "photogrammetry", Actions: []string{"convert"}},
		{All: true, From: "knownposes", Actions: []string{"convert"}},
	}
	for _, req := range requests {
		sel, err := Resolve(req)
		if err != nil {
			t.Fatalf("Resolve(%+v) error: %v", req, err)
		}
		if diff := cmp.Diff([]Name{Convert}, sel.Names()); diff != "" {
			t.Fatalf("Resolve(%+v) mismatch (-want +got):\n%s", req, diff)
		}
	}
}

func TestResolveRejectsUnknownStage(t *testing.T) {
	for _, req := range []Request{{From: "mesh"}, {Actions: []string{"convert", "bogus"}}} {
		_, err := Resolve(req)
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("Resolve(%+v) expected validation error, got %v", req, err)
		}
	}
}

func TestWarnings(t *testing.T) {
	cases := []struct {
		sel  Selection
		want int
	}{
		{Selection{Convert: true, Photogrammetry: true, KnownPoses: true, SensorDepth: true}, 0},
		{Selection{KnownPoses: true}, 1},
		{Selection{KnownPoses: true, SensorDepth: true}, 2},
		{Selection{Photogrammetry: true, SensorDepth: true}, 1},
	}
	for _, tc := range cases {
		if got := tc.sel.Warnings(); len(got) != tc.want {
			t.Fatalf("Warnings(%+v) = %v, want %d entries", tc.sel, got, tc.want)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := Label(KnownPoses); got != "Known Poses" {
		t.Fatalf("Label(knownposes) = %q", got)
	}
	if got := Label(Convert); got != "Convert" {
		t.Fatalf("Label(convert) = %q", got)
	}
}

func TestSelectionString(t *testing.T) {
	if got := (Selection{}).String(); got != "(none)" {
		t.Fatalf("empty selection string = %q", got)
	}
	if got := (Selection{Convert: true, KnownPoses: true}).String(); got != "convert,knownposes" {
		t.Fatalf("selection string = %q", got)
	}
}
