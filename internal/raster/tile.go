package raster

import (
	"sync"

	"softraster/internal/simd"
)

// Tiles are the unit of parallel rasterization. The tile size and the
// 4-lane quad step are hard-coupled: edgeDeltaX = 4·A.
const (
	tileWidth  = 16
	tileHeight = 16
	tileShift  = 4
)

// binTriangles buckets valid triangles into tiles with a two-pass build:
// count per bin, exclusive prefix sum, then scatter. Bins keep triangles in
// assembly order, which keeps rendering deterministic.
func (r *Renderer) binTriangles() {
	triCount := len(r.validTriangles)
	tileCount := r.tileCountX * r.tileCountY

	if cap(r.tileRanges) < triCount {
		r.tileRanges = make([][4]int32, triCount)
	}
	r.tileRanges = r.tileRanges[:triCount]

	r.binCounts = resizeI32(r.binCounts, tileCount)
	clear(r.binCounts)
	r.binOffsets = resizeI32(r.binOffsets, tileCount+1)
	clear(r.binOffsets)

	for i := 0; i < triCount; i++ {
		tri := &r.triangles[r.validTriangles[i]]

		// tile range from the clamped pixel bounds
		minTX := clampI(tri.minX>>tileShift, 0, r.tileCountX-1)
		maxTX := clampI(tri.maxX>>tileShift, 0, r.tileCountX-1)
		minTY := clampI(tri.minY>>tileShift, 0, r.tileCountY-1)
		maxTY := clampI(tri.maxY>>tileShift, 0, r.tileCountY-1)
		r.tileRanges[i] = [4]int32{int32(minTX), int32(maxTX), int32(minTY), int32(maxTY)}

		for ty := minTY; ty <= maxTY; ty++ {
			rowStart := ty * r.tileCountX
			for tx := minTX; tx <= maxTX; tx++ {
				r.binCounts[rowStart+tx]++
			}
		}
	}

	// prefix sums for offsets
	for t := 0; t < tileCount; t++ {
		r.binOffsets[t+1] = r.binOffsets[t] + r.binCounts[t]
	}

	totalRefs := int(r.binOffsets[tileCount])
	r.binned = resizeI32(r.binned, totalRefs)

	r.binWritePos = resizeI32(r.binWritePos, tileCount)
	copy(r.binWritePos, r.binOffsets[:tileCount])

	for i := 0; i < triCount; i++ {
		triangleIndex := int32(r.validTriangles[i])
		rng := r.tileRanges[i]

		for ty := rng[2]; ty <= rng[3]; ty++ {
			rowStart := int(ty) * r.tileCountX
			for tx := rng[0]; tx <= rng[1]; tx++ {
				bin := rowStart + int(tx)
				r.binned[r.binWritePos[bin]] = triangleIndex
				r.binWritePos[bin]++
			}
		}
	}
}

// rasterizeTiles bins the assembled triangles and fans the tiles out over a
// worker pool. Distinct tiles write disjoint pixel ranges, so the workers
// share the framebuffer without synchronization.
func (r *Renderer) rasterizeTiles(fb *Framebuffer, material *Material) {
	fbWidth := fb.Width()
	fbHeight := fb.Height()

	r.tileCountX = (fbWidth + tileWidth - 1) >> tileShift
	r.tileCountY = (fbHeight + tileHeight - 1) >> tileShift
	totalTiles := r.tileCountX * r.tileCountY

	r.binTriangles()

	workers := min(r.workers, totalTiles)
	tileChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tileIndex := range tileChan {
				r.rasterizeTileIndex(fb, material, tileIndex, fbWidth, fbHeight)
			}
		}()
	}

	for t := 0; t < totalTiles; t++ {
		tileChan <- t
	}
	close(tileChan)

	wg.Wait()
}

func (r *Renderer) rasterizeTileIndex(fb *Framebuffer, material *Material, tileIndex, fbWidth, fbHeight int) {
	triangleCount := int(r.binCounts[tileIndex])
	if triangleCount == 0 {
		return
	}

	tileX := tileIndex % r.tileCountX
	tileY := tileIndex / r.tileCountX

	tileMinX := tileX << tileShift
	tileMinY := tileY << tileShift
	tileMaxX := min(tileMinX+tileWidth, fbWidth)
	tileMaxY := min(tileMinY+tileHeight, fbHeight)

	offset := int(r.binOffsets[tileIndex])
	triangleIndices := r.binned[offset : offset+triangleCount]

	r.rasterizeTile(fb, material, tileMinX, tileMinY, tileMaxX, tileMaxY, triangleIndices)
}

func (r *Renderer) rasterizeTile(fb *Framebuffer, material *Material,
	tileMinX, tileMinY, tileMaxX, tileMaxY int, triangleIndices []int32) {

	for _, triangleIndex := range triangleIndices {
		tri := &r.triangles[triangleIndex]

		minX := max(tileMinX, tri.minX)
		maxX := min(tileMaxX-1, tri.maxX)
		minY := max(tileMinY, tri.minY)
		maxY := min(tileMaxY-1, tri.maxY)

		if minX > maxX || minY > maxY {
			continue
		}

		// align the quad origin down to the lane grid; tiles are 16 wide,
		// so aligned quads never touch a neighboring tile's pixels
		startX := minX &^ 3

		for y := minY; y <= maxY; y++ {
			r.rasterizeScanline(fb, material, tri, y, startX, maxX+1)
		}
	}
}

var laneOffsetsF = simd.Float4{0, 1, 2, 3}
var laneOffsetsI = simd.Int4{0, 1, 2, 3}
var incX4 = simd.SplatInt4(4)

// rasterizeScanline walks [startX, endX) in 4-pixel quads: coverage from the
// three edge signs, interpolated depth test, perspective-correct attribute
// interpolation, shading, then masked writes. A pixel is inside when all
// three edge values are <= 0; no top-left rule is applied.
func (r *Renderer) rasterizeScanline(fb *Framebuffer, material *Material,
	tri *triangleData, y, startX, endX int) {

	zero := simd.Float4{}
	one := simd.SplatFloat4(1)

	yFloat := simd.SplatFloat4(float32(y))
	yInt := simd.SplatInt4(int32(y))

	quadCount := (endX - startX + 3) >> 2

	xBase := simd.SplatFloat4(float32(startX)).Add(laneOffsetsF)
	xInt := simd.SplatInt4(int32(startX)).Add(laneOffsetsI)

	// evaluate edge equations at the quad start
	bc0 := simd.FMA(tri.edgeB[0], yFloat, tri.edgeC[0])
	bc1 := simd.FMA(tri.edgeB[1], yFloat, tri.edgeC[1])
	bc2 := simd.FMA(tri.edgeB[2], yFloat, tri.edgeC[2])

	edge0 := simd.FMA(tri.edgeA[0], xBase, bc0)
	edge1 := simd.FMA(tri.edgeA[1], xBase, bc1)
	edge2 := simd.FMA(tri.edgeA[2], xBase, bc2)

	for q := 0; q < quadCount; q++ {
		// confine the final quad to [startX, endX) so writes stay inside
		// the tile's pixel range
		laneMask := 0xF
		if remain := endX - startX - q*4; remain < 4 {
			laneMask = 1<<remain - 1
		}

		// pixels are inside while every edge value is <= 0
		insideMask := edge0.MaskLE(zero) & edge1.MaskLE(zero) & edge2.MaskLE(zero) & laneMask

		if insideMask == 0 {
			edge0 = edge0.Add(tri.edgeDeltaX[0])
			edge1 = edge1.Add(tri.edgeDeltaX[1])
			edge2 = edge2.Add(tri.edgeDeltaX[2])
			xInt = xInt.Add(incX4)
			continue
		}

		// barycentric coords
		negInvArea := tri.invArea.Scale(-1)
		w0 := edge0.Mul(negInvArea)
		w1 := edge1.Mul(negInvArea)
		w2 := one.Sub(w0).Sub(w1)

		// interpolate depth
		depth := simd.FMA(w2, tri.depth[2], simd.FMA(w1, tri.depth[1], w0.Mul(tri.depth[0])))

		insideMask &= fb.DepthTest(xInt, yInt, depth)
		if insideMask == 0 {
			edge0 = edge0.Add(tri.edgeDeltaX[0])
			edge1 = edge1.Add(tri.edgeDeltaX[1])
			edge2 = edge2.Add(tri.edgeDeltaX[2])
			xInt = xInt.Add(incX4)
			continue
		}

		// perspective correction
		p0 := w0.Mul(tri.invW[0])
		p1 := w1.Mul(tri.invW[1])
		p2 := w2.Mul(tri.invW[2])
		rcp := one.Div(p0.Add(p1).Add(p2))
		p0 = p0.Mul(rcp)
		p1 = p1.Mul(rcp)
		p2 = p2.Mul(rcp)

		// interpolate attributes
		texU := simd.FMA(p2, tri.u[2], simd.FMA(p1, tri.u[1], p0.Mul(tri.u[0])))
		texV := simd.FMA(p2, tri.v[2], simd.FMA(p1, tri.v[1], p0.Mul(tri.v[0])))
		normalX := simd.FMA(p2, tri.normalX[2], simd.FMA(p1, tri.normalX[1], p0.Mul(tri.normalX[0])))
		normalY := simd.FMA(p2, tri.normalY[2], simd.FMA(p1, tri.normalY[1], p0.Mul(tri.normalY[0])))
		normalZ := simd.FMA(p2, tri.normalZ[2], simd.FMA(p1, tri.normalZ[1], p0.Mul(tri.normalZ[0])))

		colors := r.fragmentShader(texU, texV, normalX, normalY, normalZ, material)

		fb.SetDepth(xInt, yInt, depth, insideMask)
		fb.SetPixel(xInt, yInt, colors, insideMask)

		edge0 = edge0.Add(tri.edgeDeltaX[0])
		edge1 = edge1.Add(tri.edgeDeltaX[1])
		edge2 = edge2.Add(tri.edgeDeltaX[2])
		xInt = xInt.Add(incX4)
	}
}

func resizeI32(s []int32, n int) []int32 {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]int32, n)
}

func clampI(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
