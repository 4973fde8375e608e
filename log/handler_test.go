package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"golang.org/x/exp/slog"
)

func TestTerminalHandlerFormat(t *testing.T) {
	out := new(bytes.Buffer)
	l := NewLogger(NewTerminalHandlerWithLevel(out, slog.LevelInfo, false))
	l.Info("Execution halted", "pc", uint64(5), "op", "STOP", "err", errors.New("bad jump"), "word", uint256.NewInt(3))
	l.Debug("filtered out")

	have := out.String()
	for _, want := range []string{"INFO ", "Execution halted", "pc=5", "op=STOP", `err="bad jump"`, "word=3"} {
		if !strings.Contains(have, want) {
			t.Errorf("output %q missing %q", have, want)
		}
	}
	if strings.Contains(have, "filtered out") {
		t.Errorf("debug record passed info filter: %q", have)
	}
}

func TestTerminalHandlerWithAttrs(t *testing.T) {
	out := new(bytes.Buffer)
	l := NewLogger(NewTerminalHandler(out, false)).With("run", 7)
	l.Trace("step")
	if !strings.Contains(out.String(), "run=7") {
		t.Fatalf("missing bound attribute: %q", out.String())
	}
}

func TestTerminalHandlerColor(t *testing.T) {
	out := new(bytes.Buffer)
	NewLogger(NewTerminalHandler(out, true)).Error("boom")
	if !strings.Contains(out.String(), "\x1b[31mERROR\x1b[0m") {
		t.Fatalf("expected coloured level, got %q", out.String())
	}
}

func TestJSONHandler(t *testing.T) {
	out := new(bytes.Buffer)
	NewLogger(JSONHandler(out)).Warn("fault", "pc", 3, "value", uint256.NewInt(42))

	var rec map[string]interface{}
	if err := json.Unmarshal(out.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json %q: %v", out.String(), err)
	}
	if rec["lvl"] != "warn" || rec["msg"] != "fault" || rec["value"] != "42" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestFromLegacyLevel(t *testing.T) {
	cases := map[int]slog.Level{
		0: LevelCrit, 1: slog.LevelError, 2: slog.LevelWarn,
		3: slog.LevelInfo, 4: slog.LevelDebug, 5: LevelTrace, 9: LevelTrace, -1: LevelCrit,
	}
	for in, want := range cases {
		if have := FromLegacyLevel(in); have != want {
			t.Errorf("FromLegacyLevel(%d) = %v, want %v", in, have, want)
		}
	}
}
