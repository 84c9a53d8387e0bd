package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestInitEnablesGlobalLogging(t *testing.T) {
	var buf bytes.Buffer
	Init(DEBUG, &buf, false)

	Info("Test", "hello %s", "world")
	if !strings.Contains(buf.String(), "hello world") {
		t.Fatalf("expected global logger output, got %q", buf.String())
	}

	buf.Reset()
	SetLevel(ERROR)
	Info("Test", "suppressed")
	if buf.Len() != 0 {
		t.Errorf("expected info suppressed at error level, got %q", buf.String())
	}
	Error("Test", "kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("expected error logged at error level, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", DEBUG, false},
		{"INFO", INFO, false},
		{"", INFO, false},
		{"warning", WARN, false},
		{"silent", SILENT, false},
		{"verbose", INFO, true},
	}
	for _, tc := range cases {
		got, err := ParseLevel(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
