package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReportFinalize(t *testing.T) {
	dir := t.TempDir()

	stored := filepath.Join(dir, "final.log")
	if err := os.WriteFile(stored, []byte("log line"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	workDir := filepath.Join(dir, "work")
	if err := os.MkdirAll(workDir, 0755); err != nil {
		t.Fatalf("failed to create test dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(workDir, "debug.txt"), []byte("nested"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	conf := ReporterConfig{Destination: filepath.Join(dir, "report.zip")}
	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	if r == nil {
		t.Fatal("Prepare() returned nil report for non-empty destination")
	}

	r.Store("final.log", stored)
	r.Store("workdir", workDir)
	r.Store("missing", filepath.Join(dir, "absent.bin"))
	r.StoreData("result-1.json", []byte(`{"ok":true}`))

	if err := r.Close(); err != nil {
		t.Fatalf("Report.Close() error: %v", err)
	}

	zr, err := zip.OpenReader(conf.Destination)
	if err != nil {
		t.Fatalf("unable to open report archive: %v", err)
	}
	defer zr.Close()

	contents := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open report entry %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("unable to read report entry %s: %v", f.Name, err)
		}
		contents[f.Name] = string(data)
	}

	for _, name := range []string{"MANIFEST", "final.log", "workdir/debug.txt", "result-1.json"} {
		if _, ok := contents[name]; !ok {
			t.Errorf("report is missing entry %s", name)
		}
	}
	if _, ok := contents["missing"]; ok {
		t.Error("absent files must be skipped, not archived")
	}
	if contents["final.log"] != "log line" {
		t.Errorf("final.log = %q", contents["final.log"])
	}
	if contents["result-1.json"] != `{"ok":true}` {
		t.Errorf("result-1.json = %q", contents["result-1.json"])
	}
	// manifest lists every stored entry, including absent ones
	for _, name := range []string{"final.log", "workdir", "missing", "result-1.json"} {
		if !strings.Contains(contents["MANIFEST"], name) {
			t.Errorf("MANIFEST is missing %s", name)
		}
	}
}

func TestReportPrepareEmptyDestination(t *testing.T) {
	conf := ReporterConfig{}
	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	if r != nil {
		t.Error("Prepare() must return nil report when no destination is set")
	}
}

func TestReportNilSafety(t *testing.T) {
	var r *Report
	r.Store("name", "path")
	r.StoreData("name", []byte("data"))
	if r.Name() != "" {
		t.Errorf("Name() = %q, want empty", r.Name())
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
}

func TestReportCloseNilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}

func TestReportStoreConflict(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.Store("name", "path")
	r.Store("name", "path") // same path is fine

	defer func() {
		if recover() == nil {
			t.Error("expected panic on conflicting store")
		}
	}()
	r.Store("name", "other")
}
