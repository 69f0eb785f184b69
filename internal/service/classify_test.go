package service

import (
	"testing"

	"fabtrack/internal/domain/parts"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStage(t *testing.T) {
	cases := map[string]parts.UploadStage{
		"bracket.stl":        parts.StageDesign,
		"ASSEMBLY.STEP":      parts.StageDesign,
		"housing.SLDPRT":     parts.StageDesign,
		"frame.x_t":          parts.StageDesign,
		"drawing.dxf":        parts.Stage2DDrawing,
		"notes.pdf":          parts.Stage2DDrawing,
		"photo.jpeg":         parts.Stage2DDrawing,
		"sheet.slddrw":       parts.Stage2DDrawing,
		"op10.nc":            parts.StageCNCProgram,
		"finish.gcode":       parts.StageCNCProgram,
		"O1000.tap":          parts.StageCNCProgram,
		"readme.txt":         parts.StageDocument,
		"quote.xlsx":         parts.StageDocument,
		"Makefile":           parts.StageDocument,
		"dir.stl/inside.doc": parts.StageDocument,
	}
	for name, want := range cases {
		assert.Equal(t, want, ClassifyStage(name), name)
	}
}

func TestPartNameFromFile(t *testing.T) {
	assert.Equal(t, "bracket", PartNameFromFile("bracket.stl"))
	assert.Equal(t, "bracket", PartNameFromFile("fixtures/bracket.stl"))
	assert.Equal(t, "bracket", PartNameFromFile(`C:\cad\bracket.stl`))
	assert.Equal(t, "gear.v2", PartNameFromFile("gear.v2.step"))
	assert.Equal(t, "Makefile", PartNameFromFile("Makefile"))
	assert.Equal(t, ".stl", PartNameFromFile(".stl"))
}
