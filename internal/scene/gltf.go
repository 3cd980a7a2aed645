package scene

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/qmuntal/gltf"

	"softraster/internal/raster"
)

// LoadGLTF reads a glTF or GLB file and de-indexes its triangle primitives
// into flat vertex streams, one mesh per primitive. glTF stores V with a
// top-left origin, which is the origin the sampler indexes from, so V is
// kept as stored. Winding is kept too: glTF front faces are CCW, which is
// CW in screen space after the y flip, the rasterizer's front-facing order.
func LoadGLTF(path string) (*raster.Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scene: open gltf %s: %w", path, err)
	}

	var meshes []raster.Mesh
	for _, m := range doc.Meshes {
		for _, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}

			va, err := primitiveStreams(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("scene: gltf %s mesh %q: %w", path, m.Name, err)
			}
			if va == nil || va.Len() == 0 {
				continue
			}

			mesh, err := raster.NewMesh(*va, raster.NewMaterial())
			if err != nil {
				continue
			}
			meshes = append(meshes, mesh)
		}
	}

	model, err := raster.NewModel(meshes)
	if err != nil {
		return nil, fmt.Errorf("scene: no triangle primitives in %s: %w", path, err)
	}
	return model, nil
}

func primitiveStreams(doc *gltf.Document, prim *gltf.Primitive) (*raster.VertexArray, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}

	positions, err := readVec3Accessor(doc, posIdx)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	var normals [][3]float32
	if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err = readVec3Accessor(doc, normIdx)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
	}

	var uvs [][2]float32
	if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err = readVec2Accessor(doc, uvIdx)
		if err != nil {
			return nil, fmt.Errorf("read uvs: %w", err)
		}
	}

	var indices []int
	if prim.Indices != nil {
		indices, err = readIndices(doc, *prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	} else {
		indices = make([]int, len(positions))
		for i := range indices {
			indices[i] = i
		}
	}

	va := &raster.VertexArray{}
	appendIndexed := func(i int) error {
		if i < 0 || i >= len(positions) {
			return fmt.Errorf("index %d out of range", i)
		}
		p := positions[i]
		va.PositionsX = append(va.PositionsX, p[0])
		va.PositionsY = append(va.PositionsY, p[1])
		va.PositionsZ = append(va.PositionsZ, p[2])

		var u, v float32
		if i < len(uvs) {
			u = uvs[i][0]
			v = uvs[i][1] // top-left origin, as the sampler expects
		}
		va.UVsU = append(va.UVsU, u)
		va.UVsV = append(va.UVsV, v)

		n := [3]float32{0, 0, 1}
		if i < len(normals) {
			n = normals[i]
		}
		va.NormalsX = append(va.NormalsX, n[0])
		va.NormalsY = append(va.NormalsY, n[1])
		va.NormalsZ = append(va.NormalsZ, n[2])
		return nil
	}

	// glTF CCW front faces are already screen-space CW after the y flip
	for i := 0; i+2 < len(indices); i += 3 {
		for _, idx := range [3]int{indices[i], indices[i+1], indices[i+2]} {
			if err := appendIndexed(idx); err != nil {
				return nil, err
			}
		}
	}

	return va, nil
}

func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([][3]float32, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}

	bufData, start, stride, err := accessorBytes(doc, accessor, 12)
	if err != nil {
		return nil, err
	}

	result := make([][3]float32, accessor.Count)
	for i := 0; i < accessor.Count; i++ {
		offset := start + i*stride
		for j := 0; j < 3; j++ {
			result[i][j] = readFloat32(bufData[offset+j*4:])
		}
	}
	return result, nil
}

func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([][2]float32, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec2 {
		return nil, fmt.Errorf("expected VEC2, got %v", accessor.Type)
	}

	bufData, start, stride, err := accessorBytes(doc, accessor, 8)
	if err != nil {
		return nil, err
	}

	result := make([][2]float32, accessor.Count)
	for i := 0; i < accessor.Count; i++ {
		offset := start + i*stride
		for j := 0; j < 2; j++ {
			result[i][j] = readFloat32(bufData[offset+j*4:])
		}
	}
	return result, nil
}

func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}

	var componentSize int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		componentSize = 1
	case gltf.ComponentUshort:
		componentSize = 2
	case gltf.ComponentUint:
		componentSize = 4
	default:
		return nil, fmt.Errorf("unexpected index component type: %v", accessor.ComponentType)
	}

	bufData, start, stride, err := accessorBytes(doc, accessor, componentSize)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := 0; i < accessor.Count; i++ {
		offset := start + i*stride
		switch componentSize {
		case 1:
			result[i] = int(bufData[offset])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(bufData[offset:]))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(bufData[offset:]))
		}
	}
	return result, nil
}

// accessorBytes resolves an accessor to its backing bytes, returning the
// start offset and element stride. Only embedded (GLB) buffers are
// supported.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, defaultStride int) ([]byte, int, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}

	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]
	if buffer.Data == nil {
		return nil, 0, 0, fmt.Errorf("buffer has no embedded data")
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	stride := bufferView.ByteStride
	if stride == 0 {
		stride = defaultStride
	}

	end := start + (accessor.Count-1)*stride + defaultStride
	if end > len(buffer.Data) {
		return nil, 0, 0, fmt.Errorf("accessor range exceeds buffer")
	}

	return buffer.Data, start, stride, nil
}

func readFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
