package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	ModelPath  string `json:"model_path"`
	OutputPath string `json:"output_path"`

	// Render settings
	Width       int `json:"width"`
	Height      int `json:"height"`
	Supersample int `json:"supersample"`
	Workers     int `json:"workers"`

	// Camera
	CameraX   float64 `json:"camera_x"`
	CameraY   float64 `json:"camera_y"`
	CameraZ   float64 `json:"camera_z"`
	CameraYaw float64 `json:"camera_yaw"`
	Pitch     float64 `json:"camera_pitch"`
	Fov       float64 `json:"fov"`
	NearPlane float64 `json:"near_plane"`
	FarPlane  float64 `json:"far_plane"`
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	ModelPath  string
	OutputPath string
	Width      int
	Height     int
	Workers    int
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.ModelPath != "" {
		c.ModelPath = flags.ModelPath
	}
	if flags.OutputPath != "" {
		c.OutputPath = flags.OutputPath
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.Width <= 0 {
		c.Width = 1280
	}
	if c.Height <= 0 {
		c.Height = 720
	}
	if c.Supersample <= 0 {
		c.Supersample = 1
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.OutputPath == "" {
		c.OutputPath = "render.webp"
	}

	if c.CameraX == 0 && c.CameraY == 0 && c.CameraZ == 0 {
		c.CameraY = 1.5
		c.CameraZ = 3.0
	}
	if c.CameraYaw == 0 {
		c.CameraYaw = -90
	}
	if c.Fov <= 0 {
		c.Fov = 90
	}
	if c.NearPlane <= 0 {
		c.NearPlane = 0.1
	}
	if c.FarPlane <= c.NearPlane {
		c.FarPlane = 100
	}
}
