package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"

	"github.com/npratt/flick/internal/testutil"
)

func TestWriteTemplateRoundTrip(t *testing.T) {
	testutil.IsolateXDG(t)
	testutil.Chdir(t, t.TempDir())

	want := Default()
	want.Training.Mode = "time"
	want.Sim.Seed = 42
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := WriteTemplate(path, want, false); err != nil {
		t.Fatalf("WriteTemplate: %v", err)
	}

	text := testutil.ReadFile(t, path)
	if !strings.HasPrefix(text, "# flick configuration") {
		t.Error("template header missing")
	}
	for _, section := range []string{"[training]", "[placement]", "[timing]", "[terminal]", "[sim]", "[paths]", "[log_rotation]"} {
		if !strings.Contains(text, section) {
			t.Errorf("template missing %s", section)
		}
	}

	v := viper.New()
	v.Set("config", path)
	got, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteTemplateRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "config.toml", "keep = true\n")

	err := WriteTemplate(path, Default(), false)
	if !errors.Is(err, ErrConfigExists) {
		t.Fatalf("err = %v, want ErrConfigExists", err)
	}
	if got := testutil.ReadFile(t, path); got != "keep = true\n" {
		t.Errorf("file modified: %q", got)
	}

	if err := WriteTemplate(path, Default(), true); err != nil {
		t.Fatalf("forced WriteTemplate: %v", err)
	}
	if strings.Contains(testutil.ReadFile(t, path), "keep") {
		t.Error("forced write kept old content")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	configHome, _ := testutil.IsolateXDG(t)
	want := filepath.Join(configHome, "flick", "config.toml")
	if got := DefaultConfigPath(); got != want {
		t.Errorf("DefaultConfigPath = %q, want %q", got, want)
	}
}
