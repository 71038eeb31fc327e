package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func readOptionsForTest(t *testing.T, flagArgs ...string) error {
	t.Helper()
	cmd := newRootCmd()
	if err := cmd.ParseFlags(flagArgs); err != nil {
		return err
	}
	_, err := readCLIOptions(cmd, []string{"./input/book.epub"})
	return err
}

func TestReadCLIOptions_Defaults(t *testing.T) {
	cmd := newRootCmd()
	opts, err := readCLIOptions(cmd, []string{"./input/book.epub"})
	if err != nil {
		t.Fatalf("readCLIOptions() error = %v", err)
	}

	if opts.InputPath != "./input/book.epub" {
		t.Fatalf("InputPath = %q", opts.InputPath)
	}
	if opts.OutputPath != "" {
		t.Fatalf("OutputPath = %q, want empty (resolved lazily)", opts.OutputPath)
	}
	if opts.Logger == nil {
		t.Fatal("Logger is nil, want non-nil")
	}
	if !opts.Logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("Logger should be enabled at INFO level by default")
	}
	if opts.Logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("Logger should not be enabled at DEBUG level by default")
	}
}

func TestReadCLIOptions_CustomOutput(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--output", "./out/custom.epub"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	opts, err := readCLIOptions(cmd, []string{"./input/book.epub"})
	if err != nil {
		t.Fatalf("readCLIOptions() error = %v", err)
	}
	if opts.OutputPath != "./out/custom.epub" {
		t.Fatalf("OutputPath = %q", opts.OutputPath)
	}
}

func TestReadCLIOptions_Verbose(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--verbose"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	opts, err := readCLIOptions(cmd, []string{"./input/book.epub"})
	if err != nil {
		t.Fatalf("readCLIOptions() error = %v", err)
	}
	if !opts.Logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("Logger should be enabled at DEBUG level when --verbose is set")
	}
}

func TestReadCLIOptions_InvalidLogLevel(t *testing.T) {
	err := readOptionsForTest(t, "--log-level", "trace")
	if err == nil || !strings.Contains(err.Error(), "--log-level") {
		t.Fatalf("expected log-level validation error, got %v", err)
	}
}

func TestReadCLIOptions_InvalidLogFormat(t *testing.T) {
	err := readOptionsForTest(t, "--log-format", "yaml")
	if err == nil || !strings.Contains(err.Error(), "--log-format") {
		t.Fatalf("expected log-format validation error, got %v", err)
	}
}

func TestBuildLogger_FormatNormalization(t *testing.T) {
	var buf bytes.Buffer
	logger := buildLogger(&buf, "info", "JSON")
	logger.Info("test message")
	// JSON format should produce JSON output (starts with '{')
	output := buf.String()
	if len(output) == 0 || output[0] != '{' {
		t.Fatalf("expected JSON output for format 'JSON', got: %s", output)
	}
}

func TestDefaultOutputPath(t *testing.T) {
	got := defaultOutputPath("./books/sample.epub")
	if got != "./books/sample_epub2.epub" {
		t.Fatalf("defaultOutputPath() = %q", got)
	}
}
