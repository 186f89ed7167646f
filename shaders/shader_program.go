package shaders

import (
	"errors"
	"strings"

	"github.com/bloeys/nmage-pbr/logging"
	"github.com/go-gl/gl/v4.6-core/gl"
)

type ShaderProgram struct {
	Id           uint32
	VertShaderId uint32
	FragShaderId uint32
	GeomShaderId uint32
}

func (sp *ShaderProgram) AttachShader(shader Shader) {

	gl.AttachShader(sp.Id, shader.Id)
	switch shader.Type {
	case ShaderType_Vertex:
		sp.VertShaderId = shader.Id
	case ShaderType_Fragment:
		sp.FragShaderId = shader.Id
	case ShaderType_Geometry:
		sp.GeomShaderId = shader.Id
	default:
		logging.ErrLog.Printf("Unknown shader type '%d' for shader id '%d'\n", shader.Type, shader.Id)
	}
}

// Link links the program and releases the attached shader objects, which are no longer needed after linking
func (sp *ShaderProgram) Link() error {

	gl.LinkProgram(sp.Id)

	for _, shdrId := range [...]uint32{sp.VertShaderId, sp.FragShaderId, sp.GeomShaderId} {
		if shdrId != 0 {
			gl.DetachShader(sp.Id, shdrId)
			gl.DeleteShader(shdrId)
		}
	}

	var linkedSuccessfully int32
	gl.GetProgramiv(sp.Id, gl.LINK_STATUS, &linkedSuccessfully)
	if linkedSuccessfully == gl.TRUE {
		return nil
	}

	var logLength int32
	gl.GetProgramiv(sp.Id, gl.INFO_LOG_LENGTH, &logLength)

	log := gl.Str(strings.Repeat("\x00", int(logLength+1)))
	gl.GetProgramInfoLog(sp.Id, logLength, nil, log)

	errMsg := gl.GoStr(log)
	logging.ErrLog.Println("Linking of shader program with id ", sp.Id, " failed. Err: ", errMsg)
	return errors.New(errMsg)
}

func (sp *ShaderProgram) Bind() {
	gl.UseProgram(sp.Id)
}

func (sp *ShaderProgram) UnBind() {
	gl.UseProgram(0)
}

func (sp *ShaderProgram) Delete() {
	gl.DeleteProgram(sp.Id)
	sp.Id = 0
}
