package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HugoSmits86/nativewebp"

	"softraster/internal/config"
	"softraster/internal/mathutil"
	"softraster/internal/postprocess"
	"softraster/internal/raster"
	"softraster/internal/scene"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	modelPath := flag.String("model", "", "Path to OBJ or glTF/GLB model")
	outputPath := flag.String("output", "", "Output WebP path (default: render.webp)")
	width := flag.Int("width", 0, "Framebuffer width (default: 1280)")
	height := flag.Int("height", 0, "Framebuffer height (default: 720)")
	workers := flag.Int("workers", 0, "Number of tile worker goroutines (default: NumCPU)")
	rotY := flag.Float64("rotation", 0, "Model Y rotation in degrees")

	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	cfg.Resolve(config.Flags{
		ModelPath:  *modelPath,
		OutputPath: *outputPath,
		Width:      *width,
		Height:     *height,
		Workers:    *workers,
	})

	if cfg.ModelPath == "" {
		fmt.Fprintln(os.Stderr, "Error: no model given. Use -model or config.json.")
		os.Exit(1)
	}

	model, err := loadModel(cfg.ModelPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading model: %v\n", err)
		os.Exit(1)
	}
	model.SetRotation(mathutil.Vec3{0, float32(*rotY), 0})

	renderW := cfg.Width * cfg.Supersample
	renderH := cfg.Height * cfg.Supersample

	fb, err := raster.NewFramebuffer(renderW, renderH)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	camera, err := raster.NewCamera(
		mathutil.Vec3{float32(cfg.CameraX), float32(cfg.CameraY), float32(cfg.CameraZ)},
		mathutil.Vec3{0, 1, 0},
		float32(cfg.CameraYaw), float32(cfg.Pitch),
		float32(cfg.Fov), float32(renderW)/float32(renderH),
		float32(cfg.NearPlane), float32(cfg.FarPlane),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	renderer := raster.NewRenderer()
	renderer.SetWorkers(cfg.Workers)

	fmt.Printf("Rendering %s at %dx%d (workers: %d)\n", cfg.ModelPath, renderW, renderH, cfg.Workers)

	start := time.Now()
	fb.Clear()
	fb.ClearDepth()
	renderer.RenderModel(fb, camera, model)
	fmt.Printf("Frame time: %.2f ms\n", float64(time.Since(start).Microseconds())/1000)

	img := postprocess.FrameImage(fb.ColorBuffer(), renderW, renderH)
	if cfg.Supersample > 1 {
		img = postprocess.Downsample(img, cfg.Width, cfg.Height)
	}

	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error: WebP encode: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s\n", cfg.OutputPath)
}

func loadModel(path string) (*raster.Model, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return scene.LoadOBJ(path)
	case ".gltf", ".glb":
		return scene.LoadGLTF(path)
	default:
		return nil, fmt.Errorf("unsupported model format: %s", path)
	}
}
