package scene

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"softraster/internal/raster"
)

// LoadOBJ parses a Wavefront OBJ file (with optional MTL materials) into a
// Model. Faces are fan-triangulated and de-indexed into flat vertex
// streams; texture V is flipped from OBJ's bottom-left origin to the
// top-left origin the sampler expects. Each material group becomes one mesh.
func LoadOBJ(path string) (*raster.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scene: open model %s: %w", path, err)
	}
	defer f.Close()

	baseDir := filepath.Dir(path)
	cache := NewTextureCache()

	var positions [][3]float32
	var uvs [][2]float32
	var normals [][3]float32

	materials := map[string]*raster.Material{}
	var defaultMaterial *raster.Material

	groups := map[string]*raster.VertexArray{}
	var groupOrder []string
	currentGroup := ""

	group := func() *raster.VertexArray {
		va, ok := groups[currentGroup]
		if !ok {
			va = &raster.VertexArray{}
			groups[currentGroup] = va
			groupOrder = append(groupOrder, currentGroup)
		}
		return va
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			p, err := parseFloats3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("scene: %s:%d: vertex: %w", path, lineNo, err)
			}
			positions = append(positions, p)
		case "vt":
			if len(fields) < 3 {
				return nil, fmt.Errorf("scene: %s:%d: texcoord needs 2 components", path, lineNo)
			}
			u, err1 := parseFloat(fields[1])
			v, err2 := parseFloat(fields[2])
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("scene: %s:%d: bad texcoord", path, lineNo)
			}
			uvs = append(uvs, [2]float32{u, v})
		case "vn":
			n, err := parseFloats3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("scene: %s:%d: normal: %w", path, lineNo, err)
			}
			normals = append(normals, n)
		case "f":
			if len(fields) < 4 {
				continue
			}
			// fan triangulation
			for i := 2; i < len(fields)-1; i++ {
				for _, ref := range []string{fields[1], fields[i], fields[i+1]} {
					if err := appendVertex(group(), ref, positions, uvs, normals); err != nil {
						return nil, fmt.Errorf("scene: %s:%d: %w", path, lineNo, err)
					}
				}
			}
		case "mtllib":
			if len(fields) < 2 {
				continue
			}
			mtlPath := filepath.Join(baseDir, fields[1])
			loaded, err := loadMTL(mtlPath, baseDir, cache)
			if err != nil {
				fmt.Fprintf(os.Stderr, "scene: %v\n", err)
				continue
			}
			for name, mat := range loaded {
				materials[name] = mat
				if defaultMaterial == nil {
					defaultMaterial = mat
				}
			}
		case "usemtl":
			if len(fields) >= 2 {
				currentGroup = fields[1]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scene: read model %s: %w", path, err)
	}

	var meshes []raster.Mesh
	for _, name := range groupOrder {
		va := groups[name]
		if va.Len() == 0 {
			continue
		}

		material := materials[name]
		if material == nil {
			material = defaultMaterial
		}
		if material == nil {
			material = raster.NewMaterial()
		}

		mesh, err := raster.NewMesh(*va, material)
		if err != nil {
			fmt.Fprintf(os.Stderr, "scene: skipping group %q: %v\n", name, err)
			continue
		}
		meshes = append(meshes, mesh)
	}

	model, err := raster.NewModel(meshes)
	if err != nil {
		return nil, fmt.Errorf("scene: no renderable meshes in %s: %w", path, err)
	}
	return model, nil
}

// appendVertex resolves one "v/vt/vn" face reference into flat streams.
// Missing UVs default to (0,0); missing normals to (0,0,1). V is flipped.
func appendVertex(va *raster.VertexArray, ref string, positions [][3]float32, uvs [][2]float32, normals [][3]float32) error {
	parts := strings.Split(ref, "/")

	pi, err := objIndex(parts[0], len(positions))
	if err != nil {
		return fmt.Errorf("vertex reference %q: %w", ref, err)
	}
	p := positions[pi]
	va.PositionsX = append(va.PositionsX, p[0])
	va.PositionsY = append(va.PositionsY, p[1])
	va.PositionsZ = append(va.PositionsZ, p[2])

	var u, v float32
	if len(parts) > 1 && parts[1] != "" {
		ti, err := objIndex(parts[1], len(uvs))
		if err != nil {
			return fmt.Errorf("texcoord reference %q: %w", ref, err)
		}
		u = uvs[ti][0]
		v = 1.0 - uvs[ti][1] // flip to the sampler's top-left origin
	}
	va.UVsU = append(va.UVsU, u)
	va.UVsV = append(va.UVsV, v)

	n := [3]float32{0, 0, 1}
	if len(parts) > 2 && parts[2] != "" {
		ni, err := objIndex(parts[2], len(normals))
		if err != nil {
			return fmt.Errorf("normal reference %q: %w", ref, err)
		}
		n = normals[ni]
	}
	va.NormalsX = append(va.NormalsX, n[0])
	va.NormalsY = append(va.NormalsY, n[1])
	va.NormalsZ = append(va.NormalsZ, n[2])

	return nil
}

// objIndex converts a 1-based (or negative, relative) OBJ index to 0-based.
func objIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		i += n
	} else {
		i--
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("index %s out of range", s)
	}
	return i, nil
}

// loadMTL parses the materials referenced by an OBJ file, resolving diffuse
// texture maps through the shared cache.
func loadMTL(path, baseDir string, cache *TextureCache) (map[string]*raster.Material, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open material library %s: %w", path, err)
	}
	defer f.Close()

	materials := map[string]*raster.Material{}
	var current *raster.Material

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(fields) < 2 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "newmtl":
			current = raster.NewMaterial()
			materials[fields[1]] = current
		case "map_Kd":
			if current == nil {
				continue
			}
			texPath := fields[len(fields)-1]
			if !filepath.IsAbs(texPath) {
				texPath = filepath.Join(baseDir, texPath)
			}
			tex := cache.Resolve(texPath)
			if tex.IsLoaded() {
				current.SetDiffuseTexture(tex)
			} else {
				fmt.Fprintf(os.Stderr, "scene: failed to load texture %s\n", texPath)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read material library %s: %w", path, err)
	}

	return materials, nil
}

func parseFloat(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	return float32(v), err
}

func parseFloats3(fields []string) ([3]float32, error) {
	var out [3]float32
	if len(fields) < 3 {
		return out, fmt.Errorf("need 3 components, got %d", len(fields))
	}
	for i := 0; i < 3; i++ {
		v, err := parseFloat(fields[i])
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}
