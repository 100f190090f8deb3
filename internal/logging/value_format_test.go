package logging

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		value slog.Value
		want  string
	}{
		{"plain string", slog.StringValue("convert"), "convert"},
		{"string with space", slog.StringValue("photogrammetry failed"), `"photogrammetry failed"`},
		{"empty string", slog.StringValue(""), `""`},
		{"int", slog.IntValue(42), "42"},
		{"bool", slog.BoolValue(true), "true"},
		{"duration rounds to ms", slog.DurationValue(1500*time.Millisecond + 300*time.Microsecond), "1.5s"},
		{"string list", slog.AnyValue([]string{"device", "sceneType"}), "device,sceneType"},
		{"error", slog.AnyValue(errors.New("exit code 3")), `"exit code 3"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatValue(tt.value); got != tt.want {
				t.Fatalf("formatValue = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAttrStringDoesNotQuote(t *testing.T) {
	if got := attrString(slog.StringValue("scan pipeline")); got != "scan pipeline" {
		t.Fatalf("attrString = %q", got)
	}
}

func TestWithDefaultsKeepsCallerValues(t *testing.T) {
	attrs := withDefaults([]Attr{String(FieldImpact, "stage will abort")},
		String(FieldEventType, "tool_failed"),
		String(FieldImpact, "processing continues"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attrs, got %v", attrs)
	}
	if attrs[0].Value.String() != "stage will abort" || attrs[1].Key != FieldEventType {
		t.Fatalf("unexpected attrs %v", attrs)
	}
}
