package pipeline

import (
	"github.com/bloeys/gglm/gglm"
)

type Config struct {
	ShadowMapSize uint32

	ClearColor          [4]float32
	CompositeClearColor [4]float32

	// The shadow casting light looks from LightPos along the first directional light
	LightPos         gglm.Vec3
	LightUp          gglm.Vec3
	LightOrthoExtent float32
	LightNear        float32
	LightFar         float32

	// Point light gizmos are spheres of radius range*PointLightGizmoScale
	PointLightGizmoScale float32

	RefractionScale    gglm.Vec2
	PostProcessEnabled bool
}

func DefaultConfig() Config {
	return Config{
		ShadowMapSize:        1024,
		ClearColor:           [4]float32{0.8, 0.8, 1, 1},
		CompositeClearColor:  [4]float32{1, 1, 1, 1},
		LightPos:             gglm.NewVec3(0, 0, 10),
		LightUp:              gglm.NewVec3(0, 0, 1),
		LightOrthoExtent:     20,
		LightNear:            1,
		LightFar:             50.5,
		PointLightGizmoScale: 0.1,
		RefractionScale:      gglm.NewVec2(1, 1),
		PostProcessEnabled:   true,
	}
}
