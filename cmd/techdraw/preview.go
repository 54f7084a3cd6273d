package main

import (
	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
)

const (
	previewWidth, previewHeight = 768, 432
	// Rendered at this multiple of the output size and downsampled.
	previewSupersample = 2
)

// preview renders the STL at stlName as a shaded isometric PNG.
func preview(stlName, outputname string) error {
	mesh, err := fauxgl.LoadSTL(stlName)
	if err != nil {
		return err
	}
	const (
		fovy      = 30
		near, far = 1, 10
	)
	var (
		eye    = fauxgl.V(2.4, 2.4, 2.4)
		center = fauxgl.V(0, 0, 0)
		up     = fauxgl.V(0, 0, 1)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
		color  = fauxgl.HexColor("#468966")
	)
	mesh.BiUnitCube()
	context := fauxgl.NewContext(previewWidth*previewSupersample, previewHeight*previewSupersample)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(previewWidth) / float64(previewHeight)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, near, far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	context.Shader = shader
	context.DrawMesh(mesh)
	image := resize.Resize(previewWidth, previewHeight, context.Image(), resize.Bilinear)
	return fauxgl.SavePNG(outputname, image)
}
