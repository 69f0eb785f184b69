package service

import (
	"bufio"
	"io"
	"path/filepath"
	"strings"

	"fabtrack/internal/domain/parts"

	"github.com/h2non/filetype"
)

var stageByExt = map[string]parts.UploadStage{
	// 3D models
	".stl": parts.StageDesign, ".step": parts.StageDesign, ".stp": parts.StageDesign,
	".iges": parts.StageDesign, ".igs": parts.StageDesign, ".obj": parts.StageDesign,
	".3mf": parts.StageDesign, ".f3d": parts.StageDesign, ".sldprt": parts.StageDesign,
	".sldasm": parts.StageDesign, ".ipt": parts.StageDesign, ".iam": parts.StageDesign,
	".x_t": parts.StageDesign, ".fcstd": parts.StageDesign, ".ply": parts.StageDesign,

	// drawings, images and documents that travel with a drawing
	".dxf": parts.Stage2DDrawing, ".dwg": parts.Stage2DDrawing, ".pdf": parts.Stage2DDrawing,
	".svg": parts.Stage2DDrawing, ".png": parts.Stage2DDrawing, ".jpg": parts.Stage2DDrawing,
	".jpeg": parts.Stage2DDrawing, ".gif": parts.Stage2DDrawing, ".bmp": parts.Stage2DDrawing,
	".tif": parts.Stage2DDrawing, ".tiff": parts.Stage2DDrawing, ".webp": parts.Stage2DDrawing,
	".slddrw": parts.Stage2DDrawing, ".idw": parts.Stage2DDrawing,

	// machine programs
	".nc": parts.StageCNCProgram, ".gcode": parts.StageCNCProgram, ".ngc": parts.StageCNCProgram,
	".tap": parts.StageCNCProgram, ".cnc": parts.StageCNCProgram, ".gc": parts.StageCNCProgram,
	".mpf": parts.StageCNCProgram, ".eia": parts.StageCNCProgram,
}

// ClassifyStage maps a file name to its upload stage by extension. Unknown
// extensions are documents.
func ClassifyStage(fileName string) parts.UploadStage {
	if stage, ok := stageByExt[fileExt(fileName)]; ok {
		return stage
	}
	return parts.StageDocument
}

// fileExt is the lower-cased extension including the dot, "" when absent.
func fileExt(fileName string) string {
	return strings.ToLower(filepath.Ext(filepath.Base(fileName)))
}

// PartNameFromFile strips directory and extension: "fixtures/bracket.stl" -> "bracket".
func PartNameFromFile(fileName string) string {
	base := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	name := strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if name == "" || name == "." {
		return strings.TrimSpace(base)
	}
	return name
}

// sniffMIME peeks at the file header. The returned reader still yields every byte.
func sniffMIME(r io.Reader) (string, io.Reader) {
	br := bufio.NewReaderSize(r, 512)
	head, _ := br.Peek(261)
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return "", br
	}
	return kind.MIME.Value, br
}
