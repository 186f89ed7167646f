package renderer

import (
	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nmage-pbr/buffers"
)

const (
	MaxDirLights   = 4
	MaxPointLights = 16

	// FrameDataBindPoint is the uniform buffer binding of the 'FrameData' block in every shader
	FrameDataBindPoint = 0
)

type DirLight struct {
	Dir       gglm.Vec3
	Color     gglm.Vec3
	Intensity float32
}

type PointLight struct {
	Pos       gglm.Vec3
	Color     gglm.Vec3
	Intensity float32
	Range     float32
}

// FrameData is the per frame state shared by every shader, uploaded once per frame
type FrameData struct {
	ViewMat       gglm.Mat4
	ProjMat       gglm.Mat4
	LightSpaceMat gglm.Mat4
	CamPos        gglm.Vec3

	DirLights   []DirLight
	PointLights []PointLight

	Time            float32
	ScreenSize      gglm.Vec2
	RefractionScale gglm.Vec2
}

// Field ids of the frame uniform buffer. Order and types must match the 'FrameData' block in the shaders:
//
//	layout(std140, binding = 0) uniform FrameData {
//	    mat4 view; mat4 projection; mat4 lightSpaceMat; vec3 camPos; int dirLightCount;
//	    vec3 dirLightDirs[4]; vec3 dirLightColors[4]; float dirLightIntensities[4];
//	    int pointLightCount; vec3 pointLightPositions[16]; vec3 pointLightColors[16];
//	    float pointLightIntensities[16]; float pointLightRanges[16];
//	    float time; vec2 screenSize; vec2 refractionScale;
//	};
const (
	FrameDataField_View uint16 = iota
	FrameDataField_Projection
	FrameDataField_LightSpaceMat
	FrameDataField_CamPos
	FrameDataField_DirLightCount
	FrameDataField_DirLightDirs
	FrameDataField_DirLightColors
	FrameDataField_DirLightIntensities
	FrameDataField_PointLightCount
	FrameDataField_PointLightPositions
	FrameDataField_PointLightColors
	FrameDataField_PointLightIntensities
	FrameDataField_PointLightRanges
	FrameDataField_Time
	FrameDataField_ScreenSize
	FrameDataField_RefractionScale
)

// FrameDataFields is the layout used to create the frame uniform buffer
func FrameDataFields() []buffers.UniformBufferFieldInput {
	return []buffers.UniformBufferFieldInput{
		{Id: FrameDataField_View, Type: buffers.DataTypeMat4},
		{Id: FrameDataField_Projection, Type: buffers.DataTypeMat4},
		{Id: FrameDataField_LightSpaceMat, Type: buffers.DataTypeMat4},
		{Id: FrameDataField_CamPos, Type: buffers.DataTypeVec3},
		{Id: FrameDataField_DirLightCount, Type: buffers.DataTypeInt32},
		{Id: FrameDataField_DirLightDirs, Type: buffers.DataTypeVec3, Count: MaxDirLights},
		{Id: FrameDataField_DirLightColors, Type: buffers.DataTypeVec3, Count: MaxDirLights},
		{Id: FrameDataField_DirLightIntensities, Type: buffers.DataTypeFloat32, Count: MaxDirLights},
		{Id: FrameDataField_PointLightCount, Type: buffers.DataTypeInt32},
		{Id: FrameDataField_PointLightPositions, Type: buffers.DataTypeVec3, Count: MaxPointLights},
		{Id: FrameDataField_PointLightColors, Type: buffers.DataTypeVec3, Count: MaxPointLights},
		{Id: FrameDataField_PointLightIntensities, Type: buffers.DataTypeFloat32, Count: MaxPointLights},
		{Id: FrameDataField_PointLightRanges, Type: buffers.DataTypeFloat32, Count: MaxPointLights},
		{Id: FrameDataField_Time, Type: buffers.DataTypeFloat32},
		{Id: FrameDataField_ScreenSize, Type: buffers.DataTypeVec2},
		{Id: FrameDataField_RefractionScale, Type: buffers.DataTypeVec2},
	}
}

// WriteFrameData stages the frame data into the uniform buffer. Lights beyond the max counts are dropped.
func WriteFrameData(ub *buffers.UniformBuffer, fd *FrameData) {

	ub.SetMat4(FrameDataField_View, &fd.ViewMat)
	ub.SetMat4(FrameDataField_Projection, &fd.ProjMat)
	ub.SetMat4(FrameDataField_LightSpaceMat, &fd.LightSpaceMat)
	ub.SetVec3(FrameDataField_CamPos, &fd.CamPos)

	dirLightCount := min(len(fd.DirLights), MaxDirLights)
	dirs := make([]gglm.Vec3, dirLightCount)
	colors := make([]gglm.Vec3, dirLightCount)
	intensities := make([]float32, dirLightCount)
	for i := 0; i < dirLightCount; i++ {
		dirs[i] = fd.DirLights[i].Dir
		colors[i] = fd.DirLights[i].Color
		intensities[i] = fd.DirLights[i].Intensity
	}

	ub.SetInt32(FrameDataField_DirLightCount, int32(dirLightCount))
	ub.SetVec3Array(FrameDataField_DirLightDirs, dirs)
	ub.SetVec3Array(FrameDataField_DirLightColors, colors)
	ub.SetFloat32Array(FrameDataField_DirLightIntensities, intensities)

	pointLightCount := min(len(fd.PointLights), MaxPointLights)
	positions := make([]gglm.Vec3, pointLightCount)
	colors = make([]gglm.Vec3, pointLightCount)
	intensities = make([]float32, pointLightCount)
	ranges := make([]float32, pointLightCount)
	for i := 0; i < pointLightCount; i++ {
		positions[i] = fd.PointLights[i].Pos
		colors[i] = fd.PointLights[i].Color
		intensities[i] = fd.PointLights[i].Intensity
		ranges[i] = fd.PointLights[i].Range
	}

	ub.SetInt32(FrameDataField_PointLightCount, int32(pointLightCount))
	ub.SetVec3Array(FrameDataField_PointLightPositions, positions)
	ub.SetVec3Array(FrameDataField_PointLightColors, colors)
	ub.SetFloat32Array(FrameDataField_PointLightIntensities, intensities)
	ub.SetFloat32Array(FrameDataField_PointLightRanges, ranges)

	ub.SetFloat32(FrameDataField_Time, fd.Time)
	ub.SetVec2(FrameDataField_ScreenSize, &fd.ScreenSize)
	ub.SetVec2(FrameDataField_RefractionScale, &fd.RefractionScale)
}
