package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path   string
		format string
		ok     bool
	}{
		{"report.json", "json", true},
		{"report.yaml", "yaml", true},
		{"report.yml", "yaml", true},
		{"report.md", "markdown", true},
		{"report.HTML", "html", true},
		{"report.txt", "text", true},
		{"report.pdf", "", false},
		{"report", "", false},
	}
	for _, tt := range tests {
		format, ok := formatForPath(tt.path)
		if format != tt.format || ok != tt.ok {
			t.Errorf("formatForPath(%q) = (%q, %v), want (%q, %v)", tt.path, format, ok, tt.format, tt.ok)
		}
	}
}

func TestInitCreatesConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "rrscan.yaml")

	cmd := initCmd()
	cmd.SetArgs([]string{"--config", configPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init: %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	content := string(data)
	for _, want := range []string{"rules:", "analysis:", "output:", "ai:"} {
		if !strings.Contains(content, want) {
			t.Errorf("generated config missing %q section", want)
		}
	}
}

func TestInitRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "rrscan.yaml")
	if err := os.WriteFile(configPath, []byte("existing: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := initCmd()
	cmd.SetArgs([]string{"--config", configPath})
	if err := cmd.Execute(); err == nil {
		t.Fatal("init should refuse to overwrite without --force")
	}

	cmd = initCmd()
	cmd.SetArgs([]string{"--config", configPath, "--force"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init --force: %v", err)
	}
}

func TestInitMinimal(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "minimal.yaml")

	cmd := initCmd()
	cmd.SetArgs([]string{"--config", configPath, "--minimal"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init --minimal: %v", err)
	}
	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("minimal config not written: %v", err)
	}
}

func TestAnalyzeCommandJSON(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "app.py")
	if err := os.WriteFile(src, []byte("password = \"hunter22\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(dir, "report.json")

	cmd := analyzeCmd()
	cmd.SetArgs([]string{"--format", "json", "--output", outPath, "--no-progress", dir})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	var report map[string]interface{}
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if _, ok := report["summary"]; !ok {
		t.Error("report missing summary")
	}
}

func TestExportInfersFormat(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "app.py")
	if err := os.WriteFile(src, []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(dir, "report.md")

	cmd := exportCmd()
	cmd.SetArgs([]string{"--output", outPath, "--no-progress", dir})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("export: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(data), "# rrscan report") {
		t.Error("markdown report missing heading")
	}
}

func TestAnalyzeRejectsBadFormat(t *testing.T) {
	dir := t.TempDir()
	cmd := analyzeCmd()
	cmd.SetArgs([]string{"--format", "pdf", dir})
	if err := cmd.Execute(); err == nil {
		t.Fatal("bad format should fail validation")
	}
}
