package log

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestRecentHandler(t *testing.T) {
	var buf bytes.Buffer
	h := NewRecentHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	logger := slog.New(h)

	logger.Debug("running netsh", "args", "wlan show interfaces")
	logger.Warn("falling back")

	logs := h.Logs()
	if len(logs) != 2 {
		t.Fatalf("expected 2 retained records, got %d", len(logs))
	}
	if logs[0].Message != "running netsh" {
		t.Errorf("unexpected first record %q", logs[0].Message)
	}

	out := buf.String()
	if strings.Contains(out, "running netsh") {
		t.Errorf("debug record should not reach the wrapped handler: %q", out)
	}
	if !strings.Contains(out, "falling back") {
		t.Errorf("warn record missing from output: %q", out)
	}
}

func TestRecentHandlerLimit(t *testing.T) {
	h := NewRecentHandler(slog.NewTextHandler(&bytes.Buffer{}, nil))
	logger := slog.New(h)
	for i := 0; i < maxRecords+5; i++ {
		logger.Info(fmt.Sprintf("record %d", i))
	}

	logs := h.Logs()
	if len(logs) != maxRecords {
		t.Fatalf("expected %d records, got %d", maxRecords, len(logs))
	}
	if logs[0].Message != "record 5" {
		t.Errorf("expected oldest records to be dropped, first is %q", logs[0].Message)
	}
}

func TestRecentHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := NewRecentHandler(slog.NewTextHandler(&buf, nil))
	logger := slog.New(h)

	logger.With("ssid", "Home").Warn("not associated")
	logger.WithGroup("netsh").Info("ran", "args", "wlan disconnect")
	logger.Warn("done")

	logs := h.Logs()
	if len(logs) != 3 {
		t.Fatalf("expected 3 retained records, got %d", len(logs))
	}
	if logs[0].Message != "not associated" || logs[1].Message != "ran" {
		t.Errorf("unexpected records %q, %q", logs[0].Message, logs[1].Message)
	}

	out := buf.String()
	if !strings.Contains(out, "ssid=Home") || !strings.Contains(out, "netsh.args=") {
		t.Errorf("derived attrs missing from output: %q", out)
	}
}

func TestInit(t *testing.T) {
	old := slog.Default()
	defer slog.SetDefault(old)

	logger := Init(slog.NewTextHandler(&bytes.Buffer{}, nil))
	logger.Info("hello")
	slog.Info("world")

	logs := Logs()
	if len(logs) != 2 || logs[1].Message != "world" {
		t.Fatalf("unexpected records %v", logs)
	}
}
