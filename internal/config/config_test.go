package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAndResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"model_path": "cube.obj", "width": 640, "workers": 2}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Resolve(Flags{})

	if cfg.ModelPath != "cube.obj" {
		t.Errorf("ModelPath: got %q", cfg.ModelPath)
	}
	if cfg.Width != 640 {
		t.Errorf("Width: got %d", cfg.Width)
	}
	if cfg.Height != 720 {
		t.Errorf("Height default: got %d", cfg.Height)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers: got %d", cfg.Workers)
	}
	if cfg.Fov != 90 {
		t.Errorf("Fov default: got %g", cfg.Fov)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	cfg := Config{Width: 640, Workers: 2}
	cfg.Resolve(Flags{Width: 1920, Workers: 8, ModelPath: "other.glb"})

	if cfg.Width != 1920 {
		t.Errorf("Width: got %d, want flag override", cfg.Width)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers: got %d, want flag override", cfg.Workers)
	}
	if cfg.ModelPath != "other.glb" {
		t.Errorf("ModelPath: got %q", cfg.ModelPath)
	}
}

func TestResolveDefaults(t *testing.T) {
	var cfg Config
	cfg.Resolve(Flags{})

	if cfg.Width != 1280 || cfg.Height != 720 {
		t.Errorf("size defaults: got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Workers < 1 {
		t.Errorf("Workers default: got %d", cfg.Workers)
	}
	if cfg.Supersample != 1 {
		t.Errorf("Supersample default: got %d", cfg.Supersample)
	}
	if cfg.FarPlane <= cfg.NearPlane {
		t.Errorf("planes: near %g far %g", cfg.NearPlane, cfg.FarPlane)
	}
	if cfg.CameraZ != 3 {
		t.Errorf("CameraZ default: got %g", cfg.CameraZ)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("no/such/config.json"); err == nil {
		t.Fatal("expected error")
	}
}
