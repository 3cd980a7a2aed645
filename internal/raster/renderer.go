package raster

import (
	"runtime"

	"softraster/internal/mathutil"
	"softraster/internal/simd"
)

// triangleData is per-triangle scratch, rebuilt on every draw. Attribute
// fields are vertex values broadcast into all 4 lanes; per-pixel
// interpolation happens by multiplying with per-pixel barycentric weights.
type triangleData struct {
	// screen-space bounds, clamped to the framebuffer
	minX, maxX, minY, maxY int

	// barycentric calculation data
	invArea    simd.Float4
	edgeA      [3]simd.Float4
	edgeB      [3]simd.Float4
	edgeC      [3]simd.Float4
	edgeDeltaX [3]simd.Float4 // edge step across one 4-pixel quad

	// attributes
	depth   [3]simd.Float4
	invW    [3]simd.Float4
	u, v    [3]simd.Float4
	normalX [3]simd.Float4
	normalY [3]simd.Float4
	normalZ [3]simd.Float4
}

// Renderer orchestrates the pipeline: vertex transform, triangle assembly
// and culling, tile binning, and parallel per-tile rasterization. Scratch
// buffers are retained across draws; a Renderer must not be shared between
// concurrent render calls.
type Renderer struct {
	workers int

	tileCountX int
	tileCountY int

	triangles      []triangleData
	validTriangles []int

	binCounts   []int32
	binOffsets  []int32
	binWritePos []int32
	binned      []int32
	tileRanges  [][4]int32

	// lighting parameters
	lightDirX simd.Float4
	lightDirY simd.Float4
	lightDirZ simd.Float4
	ambient   simd.Float4
}

// NewRenderer builds a renderer with one rasterization worker per CPU.
func NewRenderer() *Renderer {
	return &Renderer{
		workers:   runtime.NumCPU(),
		lightDirX: simd.SplatFloat4(0.5),
		lightDirY: simd.SplatFloat4(0.5),
		lightDirZ: simd.SplatFloat4(0.5),
		ambient:   simd.SplatFloat4(0.2),
	}
}

// SetWorkers overrides the tile worker count. Values below 1 fall back to 1.
func (r *Renderer) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	r.workers = n
}

// RenderModel draws every mesh of the model in order.
func (r *Renderer) RenderModel(fb *Framebuffer, camera *Camera, model *Model) {
	modelMatrix := model.ModelMatrix()
	meshes := model.Meshes()
	for i := range meshes {
		r.RenderMesh(fb, camera, &meshes[i], modelMatrix)
	}
}

// RenderMesh transforms, assembles, bins, and rasterizes one mesh.
func (r *Renderer) RenderMesh(fb *Framebuffer, camera *Camera, mesh *Mesh, modelMatrix mathutil.Mat4) {
	vertices := mesh.VertexArray()
	material := mesh.Material()

	world := mathutil.Mat4Mul(modelMatrix, mesh.LocalMatrix())
	mvp := mathutil.Mat4Mul(camera.ViewProjectionMatrix(), world)
	normalMatrix := world.Mat3Part().InverseTranspose()

	r.triangles = r.triangles[:0]
	r.validTriangles = r.validTriangles[:0]

	r.processVerticesAndAssembleTriangles(vertices, mvp, normalMatrix, fb.Width(), fb.Height())

	// skip if no triangles are visible
	if len(r.validTriangles) == 0 {
		return
	}

	r.rasterizeTiles(fb, material)
}

func (r *Renderer) processVerticesAndAssembleTriangles(vertices *VertexArray, mvp mathutil.Mat4,
	normalMatrix mathutil.Mat3, fbWidth, fbHeight int) {

	vertexCount := vertices.Len()
	for baseVertex := 0; baseVertex+2 < vertexCount; baseVertex += 3 {
		var invW, ndcZ [3]float32
		var screenX, screenY [3]int
		culled := false

		for i := 0; i < 3; i++ {
			vi := baseVertex + i

			clip := mvp.MulVec4(mathutil.Vec3{
				vertices.PositionsX[vi],
				vertices.PositionsY[vi],
				vertices.PositionsZ[vi],
			})

			// cull behind camera
			if clip[3] <= 0 {
				culled = true
				break
			}

			// perspective division
			invW[i] = 1.0 / clip[3]

			ndcX := clip[0] * invW[i]
			ndcY := clip[1] * invW[i]
			ndcZ[i] = clip[2] * invW[i]

			// from NDC [-1,1] to screen coordinates (y gets flipped)
			screenX[i] = int((ndcX + 1.0) * 0.5 * float32(fbWidth))
			screenY[i] = int((1.0 - ndcY) * 0.5 * float32(fbHeight))
		}

		if culled {
			continue
		}

		// backface culling using signed area
		signedArea := float32(screenX[1]-screenX[0])*float32(screenY[2]-screenY[0]) -
			float32(screenX[2]-screenX[0])*float32(screenY[1]-screenY[0])
		if signedArea >= 0 {
			continue
		}

		r.triangles = append(r.triangles, triangleData{})
		triangleIndex := len(r.triangles) - 1
		tri := &r.triangles[triangleIndex]

		// inverse area for barycentric coordinates, guarding the division
		absArea := -signedArea
		var invArea float32
		if absArea > 1e-6 {
			invArea = 1.0 / absArea
		}
		tri.invArea = simd.SplatFloat4(invArea)

		r.setupTriangle(tri, &screenX, &screenY, &ndcZ, &invW, vertices, baseVertex, normalMatrix)

		tri.minX = max(0, tri.minX)
		tri.maxX = min(fbWidth-1, tri.maxX)
		tri.minY = max(0, tri.minY)
		tri.maxY = min(fbHeight-1, tri.maxY)

		r.validTriangles = append(r.validTriangles, triangleIndex)
	}
}

func (r *Renderer) setupTriangle(tri *triangleData, screenX, screenY *[3]int,
	ndcZ, invW *[3]float32, vertices *VertexArray, baseVertex int, normalMatrix mathutil.Mat3) {

	// bounds for binning
	tri.minX = min(screenX[0], screenX[1], screenX[2])
	tri.maxX = max(screenX[0], screenX[1], screenX[2])
	tri.minY = min(screenY[0], screenY[1], screenY[2])
	tri.maxY = max(screenY[0], screenY[1], screenY[2])

	// edge equations Ax + By + C = 0 for edges (1→2), (2→0), (0→1)
	for e := 0; e < 3; e++ {
		i := (e + 1) % 3
		j := (e + 2) % 3
		a := float32(screenY[i] - screenY[j])
		b := float32(screenX[j] - screenX[i])
		c := float32(screenX[i]*screenY[j] - screenX[j]*screenY[i])

		tri.edgeA[e] = simd.SplatFloat4(a)
		tri.edgeB[e] = simd.SplatFloat4(b)
		tri.edgeC[e] = simd.SplatFloat4(c)
		tri.edgeDeltaX[e] = simd.SplatFloat4(a * 4.0)
	}

	// vertex attribute broadcasts
	for i := 0; i < 3; i++ {
		vi := baseVertex + i

		tri.depth[i] = simd.SplatFloat4(ndcZ[i])
		tri.invW[i] = simd.SplatFloat4(invW[i])

		tri.u[i] = simd.SplatFloat4(vertices.UVsU[vi])
		tri.v[i] = simd.SplatFloat4(vertices.UVsV[vi])

		// to world space for lighting
		worldNormal := normalMatrix.MulVec3(mathutil.Vec3{
			vertices.NormalsX[vi],
			vertices.NormalsY[vi],
			vertices.NormalsZ[vi],
		}).Normalize()

		tri.normalX[i] = simd.SplatFloat4(worldNormal[0])
		tri.normalY[i] = simd.SplatFloat4(worldNormal[1])
		tri.normalZ[i] = simd.SplatFloat4(worldNormal[2])
	}
}
