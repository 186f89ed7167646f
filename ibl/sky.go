package ibl

import (
	"fmt"

	"github.com/bloeys/nmage-pbr/assets"
	"github.com/bloeys/nmage-pbr/camera"
	"github.com/bloeys/nmage-pbr/logging"
	"github.com/bloeys/nmage-pbr/materials"
	"github.com/bloeys/nmage-pbr/meshes"
	"github.com/bloeys/nmage-pbr/renderer"
)

// Sky is a cubemap drawn behind everything plus the lighting maps baked from it
type Sky struct {
	Name string
	Base assets.Cubemap
	Maps EnvironmentMaps

	Mat  *materials.Material
	Cube *meshes.Mesh
}

// Draw draws the sky cube centered on the camera. Callers set the depth and cull state.
func (s *Sky) Draw(rend renderer.Render, cam *camera.Camera) {

	view := cam.RotationOnlyView()

	s.Mat.CubemapTex = s.Base.TexID
	s.Mat.StageUnifMat4("view", &view)
	s.Mat.StageUnifMat4("projection", &cam.ProjMat)

	rend.DrawCubemap(s.Cube, s.Mat)
}

// Delete frees the base cubemap and the three baked maps
func (s *Sky) Delete() {
	s.Base.Delete()
	s.Maps.Delete()
}

// NewSkyFromCubemap takes ownership of base and bakes its lighting maps before returning
func NewSkyFromCubemap(name string, base assets.Cubemap, mat *materials.Material, baker *Baker) *Sky {

	s := &Sky{
		Name: name,
		Base: base,
		Mat:  mat,
		Cube: baker.Cube,
	}

	s.Maps = baker.Bake(&s.Base)
	return s
}

// NewSky loads six face images in the order +X, -X, +Y, -Y, +Z, -Z and bakes the sky's lighting maps.
// The sky is fully baked when this returns.
func NewSky(name string, facePaths [6]string, mat *materials.Material, baker *Baker) (*Sky, error) {

	logging.InfoLog.Printf("Loading sky '%s' at: %s\n", name, facePaths[0])

	base, err := assets.LoadCubemapTextures(
		facePaths[0], facePaths[1],
		facePaths[2], facePaths[3],
		facePaths[4], facePaths[5],
		&assets.TextureLoadOptions{NoSrgba: true},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load sky '%s': %w", name, err)
	}

	return NewSkyFromCubemap(name, base, mat, baker), nil
}
