// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/gogpu/naga"
)

// Embedded WGSL shader sources, compiled at build time via go:embed.

//go:embed shaders/blit.wgsl
var blitShaderSource string

//go:embed shaders/transform.wgsl
var transformShaderSource string

//go:embed shaders/colormatrix.wgsl
var colorMatrixShaderSource string

//go:embed shaders/blur.wgsl
var blurShaderSource string

// ShaderSet holds the compiled SPIR-V code for every render pass.
type ShaderSet struct {
	// Blit copies a source texture to the output target.
	Blit []uint32

	// Transform samples through an inverse affine matrix.
	Transform []uint32

	// ColorMatrix applies a 4x5 color matrix per pixel.
	ColorMatrix []uint32

	// Blur is a single separable Gaussian pass.
	Blur []uint32
}

// IsValid reports whether every shader compiled to non-empty SPIR-V.
func (s *ShaderSet) IsValid() bool {
	return len(s.Blit) > 0 && len(s.Transform) > 0 &&
		len(s.ColorMatrix) > 0 && len(s.Blur) > 0
}

// CompileShaders compiles all WGSL sources to SPIR-V.
// Compilation is CPU-side and does not require a live GPU device,
// so failures here indicate broken shader sources, not a missing GPU.
func CompileShaders() (*ShaderSet, error) {
	set := &ShaderSet{}
	for _, sh := range []struct {
		name   string
		source string
		out    *[]uint32
	}{
		{"blit", blitShaderSource, &set.Blit},
		{"transform", transformShaderSource, &set.Transform},
		{"colormatrix", colorMatrixShaderSource, &set.ColorMatrix},
		{"blur", blurShaderSource, &set.Blur},
	} {
		code, err := compileToSPIRV(sh.source)
		if err != nil {
			return nil, fmt.Errorf("render: compile %s shader: %w", sh.name, err)
		}
		*sh.out = code
	}
	return set, nil
}

// compileToSPIRV compiles WGSL source to SPIR-V words.
func compileToSPIRV(wgslSource string) ([]uint32, error) {
	if wgslSource == "" {
		return nil, errors.New("empty shader source")
	}
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, err
	}

	// SPIR-V is little-endian 32-bit words.
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}
