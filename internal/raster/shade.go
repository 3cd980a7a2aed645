package raster

import "softraster/internal/simd"

const inv255 = float32(1.0 / 255.0)

// fragmentShader lights 4 fragments with Lambert diffuse plus a constant
// ambient term. The light direction is deliberately non-unit; the clamp on
// ambient+lambert saturates, giving a bright surface with a soft dark side.
// A missing material short-circuits to the unshaded sentinel color.
func (r *Renderer) fragmentShader(u, v, normalX, normalY, normalZ simd.Float4, material *Material) simd.Uint4 {
	if material == nil {
		return simd.SplatUint4(SentinelColor)
	}

	dot := normalX.Mul(r.lightDirX).
		Add(normalY.Mul(r.lightDirY)).
		Add(normalZ.Mul(r.lightDirZ))

	lambert := dot.Clamp01()

	one := simd.SplatFloat4(1)
	lighting := r.ambient.Add(lambert).Min(one)

	// texture color or plain white
	var texColor simd.Uint4
	if diffuse := material.DiffuseTexture(); diffuse != nil {
		texColor = diffuse.Sample(u, v)
	} else {
		texColor = simd.SplatUint4(0xFFFFFF)
	}

	// split channels, apply lighting in [0,1], repack as (B<<16)|(G<<8)|R
	var red, green, blue simd.Float4
	for i := 0; i < 4; i++ {
		red[i] = float32(texColor[i]&0xFF) * inv255
		green[i] = float32(texColor[i]>>8&0xFF) * inv255
		blue[i] = float32(texColor[i]>>16&0xFF) * inv255
	}

	rOut := red.Mul(lighting).Scale(255).RoundToInt()
	gOut := green.Mul(lighting).Scale(255).RoundToInt()
	bOut := blue.Mul(lighting).Scale(255).RoundToInt()

	var colors simd.Uint4
	for i := 0; i < 4; i++ {
		colors[i] = uint32(bOut[i]&0xFF)<<16 | uint32(gOut[i]&0xFF)<<8 | uint32(rOut[i]&0xFF)
	}
	return colors
}
