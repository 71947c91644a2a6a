package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ByLCY/labelgen/layout"
	canvasrenderer "github.com/ByLCY/labelgen/renderer/canvas"
)

func TestParseArgsInterleavedFlags(t *testing.T) {
	opts, err := parseArgs([]string{"ptouch", "Shelf A1", "--size", "L", "Bin 3", "--output", "out/x.pdf"}, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs error: %v", err)
	}
	if opts.medium != "ptouch" || opts.size != "L" || opts.output != "out/x.pdf" {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if strings.Join(opts.texts, "|") != "Shelf A1|Bin 3" {
		t.Fatalf("unexpected texts: %q", opts.texts)
	}
}

func TestParseArgsErrors(t *testing.T) {
	cases := []struct {
		name string
		args []string
	}{
		{"缺少介质", nil},
		{"缺少文本", []string{"dymo"}},
		{"未知参数", []string{"-bogus", "dymo", "x"}},
		{"-in 与位置参数冲突", []string{"-in", "a.labels", "dymo", "x"}},
	}
	for _, tc := range cases {
		_, err := parseArgs(tc.args, io.Discard)
		if err == nil || !isInputError(err) {
			t.Fatalf("%s: 期望输入错误，实际 %v", tc.name, err)
		}
	}
}

func TestRunWritesOnePagePerLabel(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "labels.pdf")
	debug := filepath.Join(dir, "layout.json")
	opts, err := parseArgs([]string{"-out", out, "-debug", debug, "dymo", "A", "B", "C"}, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs error: %v", err)
	}
	pages, err := run(opts, canvasrenderer.NewRenderer("."))
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if pages != 3 {
		t.Fatalf("expected 3 pages, got %d", pages)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if _, err := os.Stat(debug); err != nil {
		t.Fatalf("debug JSON missing: %v", err)
	}
}

func TestRunKeepsPagesBeforeFailure(t *testing.T) {
	out := filepath.Join(t.TempDir(), "labels.pdf")
	tooLong := "https://ex.am/" + strings.Repeat("x", 4000)
	opts, err := parseArgs([]string{"-out", out, "-qr-level", "H", "ptouch", "ok", "bad " + tooLong, "never"}, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs error: %v", err)
	}
	pages, err := run(opts, canvasrenderer.NewRenderer("."))
	if !errors.Is(err, layout.ErrQREncode) {
		t.Fatalf("expected QR encoding error, got %v", err)
	}
	if isInputError(err) {
		t.Fatalf("encoding failure must not be reported as input error")
	}
	if pages != 1 {
		t.Fatalf("expected the first label to be written, got %d pages", pages)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("partial output missing: %v", err)
	}
}

func TestRunInputErrorWritesNothing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "labels.pdf")
	for _, args := range [][]string{
		{"-out", out, "zebra", "x"},
		{"-out", out, "-size", "XL", "dymo", "x"},
		{"-out", out, "dymo", "ok", "  "},
	} {
		opts, err := parseArgs(args, io.Discard)
		if err != nil {
			t.Fatalf("parseArgs(%q) error: %v", args, err)
		}
		pages, err := run(opts, canvasrenderer.NewRenderer("."))
		if !isInputError(err) || pages != 0 {
			t.Fatalf("%q: expected input error, got pages=%d err=%v", args, pages, err)
		}
		if _, err := os.Stat(out); !os.IsNotExist(err) {
			t.Fatalf("%q: no file should be written", args)
		}
	}
}

func TestRunUnwritableOutput(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	opts, err := parseArgs([]string{"-out", filepath.Join(blocker, "labels.pdf"), "dymo", "x"}, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs error: %v", err)
	}
	pages, err := run(opts, canvasrenderer.NewRenderer("."))
	if err == nil || pages != 0 {
		t.Fatalf("expected write failure, got pages=%d err=%v", pages, err)
	}
}

func TestRunBatchFileWithData(t *testing.T) {
	dir := t.TempDir()
	batch := filepath.Join(dir, "pantry.labels")
	src := `labels Pantry v1 {
  meta { title: "Pantry" }
  media ptouch size S {
    "Shelf ${shelf} https://ex.am/q"
  }
  media dymo { "Bin ${bin}" }
}
`
	if err := os.WriteFile(batch, []byte(src), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	out := filepath.Join(dir, "pantry.pdf")
	opts, err := parseArgs([]string{"-in", batch, "-out", out, "-data", `{"shelf":"A1","bin":3}`, "-qr-encoder", "boombuler"}, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs error: %v", err)
	}
	pages, err := run(opts, canvasrenderer.NewRenderer(dir))
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if pages != 2 {
		t.Fatalf("expected 2 pages, got %d", pages)
	}
}
