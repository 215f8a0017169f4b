// Package shaders holds the GLSL sources of the triangle pipeline. The SPIR-V
// binaries loaded at runtime are built with glslc:
//
//	go generate ./shaders
package shaders

//go:generate glslc triangle.vert -o vert.spv
//go:generate glslc triangle.frag -o frag.spv
