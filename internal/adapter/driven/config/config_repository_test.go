package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigFile(t *testing.T) {
	repo := NewConfigRepository()

	t.Run("toml", func(t *testing.T) {
		path := writeFile(t, "config.toml", `
profiles = ["dev", "prod"]
report_name = "monthly"
time_range = 30
hierarchy_tag = "org-unit"
`)
		cfg, err := repo.LoadConfigFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if len(cfg.Profiles) != 2 || cfg.Profiles[0] != "dev" {
			t.Errorf("profiles = %v", cfg.Profiles)
		}
		if cfg.TimeRange != 30 || cfg.HierarchyTag != "org-unit" {
			t.Errorf("unexpected config: %+v", cfg)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		path := writeFile(t, "config.yaml", "report_name: weekly\nlocale: pt-BR\n")
		cfg, err := repo.LoadConfigFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.ReportName != "weekly" || cfg.Locale != "pt-BR" {
			t.Errorf("unexpected config: %+v", cfg)
		}
	})

	t.Run("json", func(t *testing.T) {
		path := writeFile(t, "config.json", `{"report_name": "daily", "fiscal_month": 4}`)
		cfg, err := repo.LoadConfigFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.ReportName != "daily" || cfg.FiscalMonth != 4 {
			t.Errorf("unexpected config: %+v", cfg)
		}
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeFile(t, "config.ini", "a=b")
		if _, err := repo.LoadConfigFile(path); err == nil {
			t.Error("want error for unsupported format")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := repo.LoadConfigFile("/nonexistent/config.toml"); err == nil {
			t.Error("want error for missing file")
		}
	})
}

func TestEnvOverrides(t *testing.T) {
	repo := NewConfigRepository()
	path := writeFile(t, "config.toml", `report_name = "from-file"`)

	t.Setenv("COSTLENS_REPORT_NAME", "from-env")
	t.Setenv("COSTLENS_PROFILES", "a, b,")

	cfg, err := repo.LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ReportName != "from-env" {
		t.Errorf("report name = %q, want env override", cfg.ReportName)
	}
	if len(cfg.Profiles) != 2 || cfg.Profiles[1] != "b" {
		t.Errorf("profiles = %v, want [a b]", cfg.Profiles)
	}
}
