package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaults(t *testing.T) {
	c := Defaults()
	if c.Seconds != 1 || c.Title != DefaultTitle || c.Interval != time.Second || c.ADBPath != "adb" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}

func TestApplyEnv(t *testing.T) {
	c := Defaults()
	c.ApplyEnv(envMap(map[string]string{
		"ANDROID_SERIAL":      "emulator-5554",
		"ADB":                 "/opt/sdk/platform-tools/adb",
		"FRAMETIME_LOG_LEVEL": "debug",
		"FRAMETIME_SECONDS":   "5",
		"FRAMETIME_FOOTNOTE":  "false",
	}))
	want := Defaults()
	want.Device = "emulator-5554"
	want.ADBPath = "/opt/sdk/platform-tools/adb"
	want.LogLevel = "debug"
	want.Seconds = 5
	want.Footnote = false
	if diff := cmp.Diff(want, c); diff != "" {
		t.Fatalf("config (-want +got):\n%s", diff)
	}
}

func TestApplyEnv_IgnoresBadInt(t *testing.T) {
	c := Defaults()
	c.ApplyEnv(envMap(map[string]string{"FRAMETIME_SECONDS": "many"}))
	if c.Seconds != 1 {
		t.Fatalf("bad int should keep default, got %d", c.Seconds)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frametime.yaml")
	doc := "package: com.example.app\nseconds: 3\ninterval: 500ms\nsummary_json: out/summary.json\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c := Defaults()
	if err := c.LoadFile(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Package != "com.example.app" || c.Seconds != 3 || c.Interval != 500*time.Millisecond || c.SummaryJSON != "out/summary.json" {
		t.Fatalf("unexpected config: %+v", c)
	}
	if c.Title != DefaultTitle {
		t.Fatalf("absent key should keep default title, got %q", c.Title)
	}
}

func TestLoadFile_UnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("pakage: typo\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c := Defaults()
	if err := c.LoadFile(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestValidate(t *testing.T) {
	ok := Defaults()
	ok.Package = "com.example.app"
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	bad := []func(c *Config){
		func(c *Config) { c.Package = " " },
		func(c *Config) { c.Seconds = 0 },
		func(c *Config) { c.Title = "" },
		func(c *Config) { c.Interval = 0 },
	}
	for i, mutate := range bad {
		c := ok
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}
