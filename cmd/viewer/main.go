package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"softraster/internal/mathutil"
	"softraster/internal/raster"
	"softraster/internal/scene"
)

const title = "Software Renderer"

// game drives the render loop: clear, rotate, rasterize, blit. The RGB
// framebuffer is expanded to RGBA once per frame for WritePixels.
type game struct {
	fb       *raster.Framebuffer
	renderer *raster.Renderer
	camera   *raster.Camera
	model    *raster.Model

	rgba     []uint8
	lastTime time.Time

	fpsTimer   time.Time
	frameCount int
}

func (g *game) Update() error {
	now := time.Now()
	dt := float32(now.Sub(g.lastTime).Seconds())
	g.lastTime = now

	g.handleInput(dt)

	// rotate model at 30 deg/s
	rotation := g.model.Rotation()
	rotation[1] += 30 * dt
	g.model.SetRotation(rotation)

	g.frameCount++
	if elapsed := now.Sub(g.fpsTimer).Seconds(); elapsed >= 1 {
		fps := float64(g.frameCount) / elapsed
		g.frameCount = 0
		g.fpsTimer = now
		ebiten.SetWindowTitle(fmt.Sprintf("%s - FPS: %.1f - Frame Time: %.2f ms", title, fps, 1000/fps))
	}

	return nil
}

func (g *game) handleInput(dt float32) {
	const moveSpeed = 3.0
	const turnSpeed = 90.0

	pos := g.camera.Position()
	if ebiten.IsKeyPressed(ebiten.KeyW) {
		pos = pos.Add(g.camera.Front().Scale(moveSpeed * dt))
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) {
		pos = pos.Sub(g.camera.Front().Scale(moveSpeed * dt))
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		pos = pos.Sub(g.camera.Right().Scale(moveSpeed * dt))
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		pos = pos.Add(g.camera.Right().Scale(moveSpeed * dt))
	}
	g.camera.SetPosition(pos)

	yaw, pitch := g.camera.Yaw(), g.camera.Pitch()
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		yaw -= turnSpeed * dt
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		yaw += turnSpeed * dt
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		pitch += turnSpeed * dt
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		pitch -= turnSpeed * dt
	}
	g.camera.SetDirection(yaw, pitch)
}

func (g *game) Draw(screen *ebiten.Image) {
	g.fb.Clear()
	g.fb.ClearDepth()
	g.renderer.RenderModel(g.fb, g.camera, g.model)

	rgb := g.fb.ColorBuffer()
	for i, j := 0, 0; i < len(rgb); i, j = i+3, j+4 {
		g.rgba[j] = rgb[i]
		g.rgba[j+1] = rgb[i+1]
		g.rgba[j+2] = rgb[i+2]
		g.rgba[j+3] = 0xFF
	}
	screen.WritePixels(g.rgba)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.fb.Width(), g.fb.Height()
}

func main() {
	modelPath := flag.String("model", "", "Path to OBJ or glTF/GLB model")
	width := flag.Int("width", 1280, "Framebuffer width")
	height := flag.Int("height", 720, "Framebuffer height")
	flag.Parse()

	if *modelPath == "" {
		fmt.Fprintln(os.Stderr, "Error: no model given. Use -model.")
		os.Exit(1)
	}

	model, err := loadModel(*modelPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading model: %v\n", err)
		os.Exit(1)
	}
	model.SetPosition(mathutil.Vec3{0, 0, 0})
	if err := model.SetScale(mathutil.Vec3{2, 2, 2}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fb, err := raster.NewFramebuffer(*width, *height)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	camera, err := raster.NewCamera(
		mathutil.Vec3{0, 1.5, 3},
		mathutil.Vec3{0, 1, 0},
		-90, 0, 90,
		float32(*width)/float32(*height),
		0.1, 100,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	g := &game{
		fb:       fb,
		renderer: raster.NewRenderer(),
		camera:   camera,
		model:    model,
		rgba:     make([]uint8, (*width)*(*height)*4),
		lastTime: time.Now(),
		fpsTimer: time.Now(),
	}

	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowTitle(title)
	ebiten.SetVsyncEnabled(true)

	if err := ebiten.RunGame(g); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
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
