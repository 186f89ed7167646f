package renderer

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nmage-pbr/buffers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldOffset(t *testing.T, ub *buffers.UniformBuffer, id uint16) int {

	t.Helper()
	for i := 0; i < len(ub.Fields); i++ {
		if ub.Fields[i].Id == id {
			return int(ub.Fields[i].AlignedOffset)
		}
	}

	require.Fail(t, "field not found", "id=%d", id)
	return 0
}

func TestFrameDataLayout(t *testing.T) {

	ub := buffers.NewStagedUniformBuffer(FrameDataFields())
	assert.Equal(t, uint32(1472), ub.Size)

	assert.Equal(t, 192, fieldOffset(t, &ub, FrameDataField_CamPos))
	assert.Equal(t, 204, fieldOffset(t, &ub, FrameDataField_DirLightCount))
	assert.Equal(t, 208, fieldOffset(t, &ub, FrameDataField_DirLightDirs))
	assert.Equal(t, 416, fieldOffset(t, &ub, FrameDataField_PointLightPositions))
	assert.Equal(t, 1440, fieldOffset(t, &ub, FrameDataField_Time))
	assert.Equal(t, 1448, fieldOffset(t, &ub, FrameDataField_ScreenSize))
	assert.Equal(t, 1456, fieldOffset(t, &ub, FrameDataField_RefractionScale))
}

func TestWriteFrameData(t *testing.T) {

	ub := buffers.NewStagedUniformBuffer(FrameDataFields())

	fd := FrameData{
		ViewMat:       gglm.NewTrMatId().Mat4,
		ProjMat:       gglm.NewTrMatId().Mat4,
		LightSpaceMat: gglm.NewTrMatId().Mat4,
		CamPos:        gglm.NewVec3(-20, 9, 1),
		DirLights: []DirLight{
			{Dir: gglm.NewVec3(1, 1, -1), Color: gglm.NewVec3(1, 1, 1), Intensity: 1},
		},
		Time:            2.5,
		ScreenSize:      gglm.NewVec2(1280, 720),
		RefractionScale: gglm.NewVec2(1, 1),
	}

	for i := 0; i < MaxPointLights+3; i++ {
		fd.PointLights = append(fd.PointLights, PointLight{Pos: gglm.NewVec3(float32(i), 0, 0), Range: 4, Intensity: 1})
	}

	WriteFrameData(&ub, &fd)

	buf := ub.Staged()
	readF32 := func(offset int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
	}
	readI32 := func(offset int) int32 {
		return int32(binary.LittleEndian.Uint32(buf[offset:]))
	}

	camPos := fieldOffset(t, &ub, FrameDataField_CamPos)
	assert.Equal(t, float32(-20), readF32(camPos))
	assert.Equal(t, float32(9), readF32(camPos+4))
	assert.Equal(t, float32(1), readF32(camPos+8))

	assert.Equal(t, int32(1), readI32(fieldOffset(t, &ub, FrameDataField_DirLightCount)))
	assert.Equal(t, float32(-1), readF32(fieldOffset(t, &ub, FrameDataField_DirLightDirs)+8))

	// Extra point lights are dropped
	assert.Equal(t, int32(MaxPointLights), readI32(fieldOffset(t, &ub, FrameDataField_PointLightCount)))

	positions := fieldOffset(t, &ub, FrameDataField_PointLightPositions)
	assert.Equal(t, float32(3), readF32(positions+3*16))
	assert.Equal(t, float32(4), readF32(fieldOffset(t, &ub, FrameDataField_PointLightRanges)+5*16))

	assert.Equal(t, float32(2.5), readF32(fieldOffset(t, &ub, FrameDataField_Time)))
	assert.Equal(t, float32(720), readF32(fieldOffset(t, &ub, FrameDataField_ScreenSize)+4))
}
