package shaders

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bloeys/nmage-pbr/logging"
	"github.com/go-gl/gl/v4.6-core/gl"
)

const combinedShaderMarker = "//shader:"

var (
	ErrMissingStages  = errors.New("failed to read combined shader. The minimum shader types to have are '//shader:vertex' and '//shader:fragment'")
	ErrUnknownStage   = errors.New("unknown shader type. Must be '//shader:vertex' or '//shader:fragment' or '//shader:geometry'")
	ErrDuplicateStage = errors.New("shader type declared more than once")
)

type Shader struct {
	Id   uint32
	Type ShaderType
}

func (s *Shader) Delete() {
	gl.DeleteShader(s.Id)
	s.Id = 0
}

// ShaderSource is one stage cut out of a combined shader file
type ShaderSource struct {
	Type ShaderType
	Src  []byte
}

// SplitCombinedShader cuts a combined shader file into its stages. Every stage starts
// with a '//shader:<type>' line and a vertex and a fragment stage are required.
func SplitCombinedShader(combinedSrc []byte) ([]ShaderSource, error) {

	parts := bytes.Split(combinedSrc, []byte(combinedShaderMarker))
	if len(parts) < 2 {
		return nil, ErrMissingStages
	}

	out := make([]ShaderSource, 0, len(parts)-1)
	var hasVert, hasFrag bool
	for i := 0; i < len(parts); i++ {

		src := parts[i]

		// Anything before the first marker (usually nothing) is ignored
		if i == 0 {
			if len(bytes.TrimSpace(src)) != 0 {
				logging.WarnLog.Println("Ignoring text before the first '//shader:' marker")
			}
			continue
		}

		shdrType := ShaderType_Unknown
		for j := 0; j < len(shaderTypeTags); j++ {
			if bytes.HasPrefix(src, []byte(shaderTypeTags[j].Tag)) {
				shdrType = shaderTypeTags[j].Type
				src = src[len(shaderTypeTags[j].Tag):]
				break
			}
		}

		if shdrType == ShaderType_Unknown {
			return nil, ErrUnknownStage
		}

		for j := 0; j < len(out); j++ {
			if out[j].Type == shdrType {
				return nil, fmt.Errorf("%w: '%s'", ErrDuplicateStage, shdrType)
			}
		}

		hasVert = hasVert || shdrType == ShaderType_Vertex
		hasFrag = hasFrag || shdrType == ShaderType_Fragment
		out = append(out, ShaderSource{Type: shdrType, Src: src})
	}

	if !hasVert || !hasFrag {
		return nil, ErrMissingStages
	}

	return out, nil
}

func NewShaderProgram() (ShaderProgram, error) {

	id := gl.CreateProgram()
	if id == 0 {
		return ShaderProgram{}, errors.New("failed to create shader program")
	}

	return ShaderProgram{Id: id}, nil
}

func LoadAndCompileCombinedShader(shaderPath string) (ShaderProgram, error) {

	combinedSource, err := os.ReadFile(shaderPath)
	if err != nil {
		return ShaderProgram{}, fmt.Errorf("failed to read shader '%s': %w", shaderPath, err)
	}

	prog, err := LoadAndCompileCombinedShaderSrc(combinedSource)
	if err != nil {
		return ShaderProgram{}, fmt.Errorf("failed to build shader '%s': %w", shaderPath, err)
	}

	return prog, nil
}

func LoadAndCompileCombinedShaderSrc(shaderSrc []byte) (ShaderProgram, error) {

	sources, err := SplitCombinedShader(shaderSrc)
	if err != nil {
		return ShaderProgram{}, err
	}

	shdrProg, err := NewShaderProgram()
	if err != nil {
		return ShaderProgram{}, err
	}

	for i := 0; i < len(sources); i++ {

		shdr, err := CompileShaderOfType(sources[i].Src, sources[i].Type)
		if err != nil {
			shdrProg.Delete()
			return ShaderProgram{}, err
		}

		shdrProg.AttachShader(shdr)
	}

	if err := shdrProg.Link(); err != nil {
		shdrProg.Delete()
		return ShaderProgram{}, err
	}

	return shdrProg, nil
}

func CompileShaderOfType(shaderSource []byte, shaderType ShaderType) (Shader, error) {

	shaderId := gl.CreateShader(shaderType.ToGl())
	if shaderId == 0 {
		return Shader{}, fmt.Errorf("failed to create OpenGl shader. OpenGl Error=%d", gl.GetError())
	}

	//Load shader source and compile
	shaderCStr, shaderFree := gl.Strs(string(shaderSource) + "\x00")
	defer shaderFree()
	gl.ShaderSource(shaderId, 1, shaderCStr, nil)

	gl.CompileShader(shaderId)
	if err := getShaderCompileErrors(shaderId, shaderType); err != nil {
		gl.DeleteShader(shaderId)
		return Shader{}, err
	}

	return Shader{Id: shaderId, Type: shaderType}, nil
}

func getShaderCompileErrors(shaderId uint32, shaderType ShaderType) error {

	var compiledSuccessfully int32
	gl.GetShaderiv(shaderId, gl.COMPILE_STATUS, &compiledSuccessfully)
	if compiledSuccessfully == gl.TRUE {
		return nil
	}

	var logLength int32
	gl.GetShaderiv(shaderId, gl.INFO_LOG_LENGTH, &logLength)

	log := gl.Str(strings.Repeat("\x00", int(logLength+1)))
	gl.GetShaderInfoLog(shaderId, logLength, nil, log)

	errMsg := gl.GoStr(log)
	logging.ErrLog.Printf("Compilation of %s shader with id %d failed. Err: %s\n", shaderType, shaderId, errMsg)
	return errors.New(errMsg)
}
