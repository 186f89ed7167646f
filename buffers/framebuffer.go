package buffers

import (
	"github.com/bloeys/nmage-pbr/logging"
	"github.com/go-gl/gl/v4.6-core/gl"
)

type FramebufferAttachmentType int32

const (
	FramebufferAttachmentType_Unknown FramebufferAttachmentType = iota
	FramebufferAttachmentType_Texture
	FramebufferAttachmentType_Renderbuffer
)

func (f FramebufferAttachmentType) IsValid() bool {
	return f == FramebufferAttachmentType_Texture || f == FramebufferAttachmentType_Renderbuffer
}

type FramebufferAttachmentDataFormat int32

const (
	FramebufferAttachmentDataFormat_Unknown FramebufferAttachmentDataFormat = iota
	FramebufferAttachmentDataFormat_R32Int
	FramebufferAttachmentDataFormat_RGB8
	FramebufferAttachmentDataFormat_RGBA8
	FramebufferAttachmentDataFormat_SRGBA
	FramebufferAttachmentDataFormat_RGB16F
	FramebufferAttachmentDataFormat_RG16F
	FramebufferAttachmentDataFormat_Depth24
	FramebufferAttachmentDataFormat_Depth24Stencil8
)

func (f FramebufferAttachmentDataFormat) IsColorFormat() bool {

	switch f {
	case FramebufferAttachmentDataFormat_R32Int,
		FramebufferAttachmentDataFormat_RGB8,
		FramebufferAttachmentDataFormat_RGBA8,
		FramebufferAttachmentDataFormat_SRGBA,
		FramebufferAttachmentDataFormat_RGB16F,
		FramebufferAttachmentDataFormat_RG16F:
		return true
	default:
		return false
	}
}

func (f FramebufferAttachmentDataFormat) IsDepthFormat() bool {
	return f == FramebufferAttachmentDataFormat_Depth24 || f == FramebufferAttachmentDataFormat_Depth24Stencil8
}

func (f FramebufferAttachmentDataFormat) HasStencil() bool {
	return f == FramebufferAttachmentDataFormat_Depth24Stencil8
}

func (f FramebufferAttachmentDataFormat) GlInternalFormat() int32 {

	switch f {
	case FramebufferAttachmentDataFormat_R32Int:
		return gl.R32I
	case FramebufferAttachmentDataFormat_RGB8:
		return gl.RGB8
	case FramebufferAttachmentDataFormat_RGBA8:
		return gl.RGBA8
	case FramebufferAttachmentDataFormat_SRGBA:
		return gl.SRGB_ALPHA
	case FramebufferAttachmentDataFormat_RGB16F:
		return gl.RGB16F
	case FramebufferAttachmentDataFormat_RG16F:
		return gl.RG16F
	case FramebufferAttachmentDataFormat_Depth24:
		return gl.DEPTH_COMPONENT24
	case FramebufferAttachmentDataFormat_Depth24Stencil8:
		return gl.DEPTH24_STENCIL8
	default:
		logging.ErrLog.Fatalf("unknown framebuffer attachment data format. Format=%d\n", f)
		return 0
	}
}

func (f FramebufferAttachmentDataFormat) GlFormat() uint32 {

	switch f {
	case FramebufferAttachmentDataFormat_R32Int:
		return gl.RED_INTEGER
	case FramebufferAttachmentDataFormat_RGB8, FramebufferAttachmentDataFormat_RGB16F:
		return gl.RGB
	case FramebufferAttachmentDataFormat_RGBA8, FramebufferAttachmentDataFormat_SRGBA:
		return gl.RGBA
	case FramebufferAttachmentDataFormat_RG16F:
		return gl.RG
	case FramebufferAttachmentDataFormat_Depth24:
		return gl.DEPTH_COMPONENT
	case FramebufferAttachmentDataFormat_Depth24Stencil8:
		return gl.DEPTH_STENCIL
	default:
		logging.ErrLog.Fatalf("unknown framebuffer attachment data format. Format=%d\n", f)
		return 0
	}
}

// GlPixelType is the client pixel type used when allocating storage of this format
func (f FramebufferAttachmentDataFormat) GlPixelType() uint32 {

	switch f {
	case FramebufferAttachmentDataFormat_R32Int:
		return gl.INT
	case FramebufferAttachmentDataFormat_RGB16F, FramebufferAttachmentDataFormat_RG16F, FramebufferAttachmentDataFormat_Depth24:
		return gl.FLOAT
	case FramebufferAttachmentDataFormat_Depth24Stencil8:
		return gl.UNSIGNED_INT_24_8
	default:
		return gl.UNSIGNED_BYTE
	}
}

func (f FramebufferAttachmentDataFormat) glAttachmentPoint(colorIndex uint32) uint32 {

	switch f {
	case FramebufferAttachmentDataFormat_Depth24:
		return gl.DEPTH_ATTACHMENT
	case FramebufferAttachmentDataFormat_Depth24Stencil8:
		return gl.DEPTH_STENCIL_ATTACHMENT
	default:
		return gl.COLOR_ATTACHMENT0 + colorIndex
	}
}

type FramebufferAttachment struct {
	Id     uint32
	Type   FramebufferAttachmentType
	Format FramebufferAttachmentDataFormat
}

type Framebuffer struct {
	Id                    uint32
	Attachments           []FramebufferAttachment
	ColorAttachmentsCount uint32
	Width                 uint32
	Height                uint32
}

func (fbo *Framebuffer) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo.Id)
}

func (fbo *Framebuffer) BindWithViewport() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo.Id)
	gl.Viewport(0, 0, int32(fbo.Width), int32(fbo.Height))
}

func (fbo *Framebuffer) UnBind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (fbo *Framebuffer) UnBindWithViewport(width, height uint32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(width), int32(height))
}

// IsComplete returns true if OpenGL reports that the fbo is complete/usable.
// Note that this function binds and then unbinds the fbo
func (fbo *Framebuffer) IsComplete() bool {
	fbo.Bind()
	isComplete := gl.CheckFramebufferStatus(gl.FRAMEBUFFER) == gl.FRAMEBUFFER_COMPLETE
	fbo.UnBind()
	return isComplete
}

func (fbo *Framebuffer) HasColorAttachment() bool {
	return fbo.ColorAttachmentsCount > 0
}

func (fbo *Framebuffer) HasDepthAttachment() bool {

	for i := 0; i < len(fbo.Attachments); i++ {

		a := &fbo.Attachments[i]
		if a.Format.IsDepthFormat() {
			return true
		}
	}

	return false
}

// ColorAttachmentId returns the texture/renderbuffer id of the n-th color attachment, or zero if there is none
func (fbo *Framebuffer) ColorAttachmentId(n uint32) uint32 {

	colorIndex := uint32(0)
	for i := 0; i < len(fbo.Attachments); i++ {

		a := &fbo.Attachments[i]
		if !a.Format.IsColorFormat() {
			continue
		}

		if colorIndex == n {
			return a.Id
		}
		colorIndex++
	}

	return 0
}

func (fbo *Framebuffer) DepthAttachmentId() uint32 {

	for i := 0; i < len(fbo.Attachments); i++ {

		a := &fbo.Attachments[i]
		if a.Format.IsDepthFormat() {
			return a.Id
		}
	}

	return 0
}

func (fbo *Framebuffer) NewColorAttachment(
	attachType FramebufferAttachmentType,
	attachFormat FramebufferAttachmentDataFormat,
) {

	if fbo.ColorAttachmentsCount == 8 {
		logging.ErrLog.Fatalf("failed creating color attachment for framebuffer due it already having %d attached\n", fbo.ColorAttachmentsCount)
	}

	if !attachType.IsValid() {
		logging.ErrLog.Fatalf("failed creating color attachment for framebuffer due to unknown attachment type. Type=%d\n", attachType)
	}

	if !attachFormat.IsColorFormat() {
		logging.ErrLog.Fatalf("failed creating color attachment for framebuffer due to attachment data format not being a valid color type. Data format=%d\n", attachFormat)
	}

	fbo.newAttachment(attachType, attachFormat, fbo.ColorAttachmentsCount)
	fbo.ColorAttachmentsCount++
}

// NewDepthAttachment adds a depth-only attachment. When it is a texture it can be sampled as a shadow map
func (fbo *Framebuffer) NewDepthAttachment(attachType FramebufferAttachmentType) {

	if fbo.HasDepthAttachment() {
		logging.ErrLog.Fatalf("failed creating depth attachment for framebuffer because a depth attachment already exists\n")
	}

	if !attachType.IsValid() {
		logging.ErrLog.Fatalf("failed creating depth attachment for framebuffer due to unknown attachment type. Type=%d\n", attachType)
	}

	fbo.newAttachment(attachType, FramebufferAttachmentDataFormat_Depth24, 0)
}

func (fbo *Framebuffer) NewDepthStencilAttachment(attachType FramebufferAttachmentType) {

	if fbo.HasDepthAttachment() {
		logging.ErrLog.Fatalf("failed creating depth-stencil attachment for framebuffer because a depth-stencil attachment already exists\n")
	}

	if !attachType.IsValid() {
		logging.ErrLog.Fatalf("failed creating depth-stencil attachment for framebuffer due to unknown attachment type. Type=%d\n", attachType)
	}

	fbo.newAttachment(attachType, FramebufferAttachmentDataFormat_Depth24Stencil8, 0)
}

func (fbo *Framebuffer) newAttachment(attachType FramebufferAttachmentType, attachFormat FramebufferAttachmentDataFormat, colorIndex uint32) {

	a := FramebufferAttachment{
		Type:   attachType,
		Format: attachFormat,
	}

	fbo.Bind()

	if attachType == FramebufferAttachmentType_Texture {

		gl.GenTextures(1, &a.Id)
		if a.Id == 0 {
			logging.ErrLog.Fatalf("failed to generate texture for framebuffer. GlError=%d\n", gl.GetError())
		}

		fbo.allocAttachmentStorage(&a)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachFormat.glAttachmentPoint(colorIndex), gl.TEXTURE_2D, a.Id, 0)

	} else {

		gl.GenRenderbuffers(1, &a.Id)
		if a.Id == 0 {
			logging.ErrLog.Fatalf("failed to generate render buffer for framebuffer. GlError=%d\n", gl.GetError())
		}

		fbo.allocAttachmentStorage(&a)
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, attachFormat.glAttachmentPoint(colorIndex), gl.RENDERBUFFER, a.Id)
	}

	fbo.UnBind()
	fbo.Attachments = append(fbo.Attachments, a)
}

// allocAttachmentStorage (re)allocates storage of the attachment using the current fbo size.
// Ids stay the same, so anything attached or sampling them is still valid after a resize.
func (fbo *Framebuffer) allocAttachmentStorage(a *FramebufferAttachment) {

	if a.Type == FramebufferAttachmentType_Renderbuffer {
		gl.BindRenderbuffer(gl.RENDERBUFFER, a.Id)
		gl.RenderbufferStorage(gl.RENDERBUFFER, uint32(a.Format.GlInternalFormat()), int32(fbo.Width), int32(fbo.Height))
		gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
		return
	}

	gl.BindTexture(gl.TEXTURE_2D, a.Id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, a.Format.GlInternalFormat(), int32(fbo.Width), int32(fbo.Height), 0, a.Format.GlFormat(), a.Format.GlPixelType(), nil)

	if a.Format.IsDepthFormat() {

		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

		// Anything outside the shadow map is considered lit
		borderColor := [4]float32{1, 1, 1, 1}
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
		gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &borderColor[0])

	} else {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	}

	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// Resize reallocates the storage of every attachment to the new size
func (fbo *Framebuffer) Resize(width, height uint32) {

	fbo.Width = width
	fbo.Height = height

	for i := 0; i < len(fbo.Attachments); i++ {
		fbo.allocAttachmentStorage(&fbo.Attachments[i])
	}
}

// SetNoColorBuffer tells OpenGL this fbo has no color output, which is needed for depth-only fbos to be complete
func (fbo *Framebuffer) SetNoColorBuffer() {
	fbo.Bind()
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)
	fbo.UnBind()
}

// SetDrawBuffers makes fragment shader outputs 0..n-1 write into color attachments 0..n-1
func (fbo *Framebuffer) SetDrawBuffers() {

	if fbo.ColorAttachmentsCount == 0 {
		return
	}

	drawBufs := make([]uint32, fbo.ColorAttachmentsCount)
	for i := uint32(0); i < fbo.ColorAttachmentsCount; i++ {
		drawBufs[i] = gl.COLOR_ATTACHMENT0 + i
	}

	fbo.Bind()
	gl.DrawBuffers(int32(len(drawBufs)), &drawBufs[0])
	fbo.UnBind()
}

// AttachCubemapFace attaches a mip of one cubemap face as color attachment 0. The fbo stays bound.
// Face is in [0, 6) in the order +X, -X, +Y, -Y, +Z, -Z
func (fbo *Framebuffer) AttachCubemapFace(cubemapId uint32, face uint32, mip int32) {
	fbo.Bind()
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_CUBE_MAP_POSITIVE_X+face, cubemapId, mip)
}

// AttachTexture2D attaches mip 0 of a 2D texture as color attachment 0. The fbo stays bound.
func (fbo *Framebuffer) AttachTexture2D(texId uint32) {
	fbo.Bind()
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, texId, 0)
}

// Delete frees the fbo and all its attachments
func (fbo *Framebuffer) Delete() {

	if fbo.Id == 0 {
		return
	}

	for i := len(fbo.Attachments) - 1; i >= 0; i-- {

		a := &fbo.Attachments[i]
		if a.Type == FramebufferAttachmentType_Texture {
			gl.DeleteTextures(1, &a.Id)
		} else {
			gl.DeleteRenderbuffers(1, &a.Id)
		}
	}
	fbo.Attachments = nil
	fbo.ColorAttachmentsCount = 0

	gl.DeleteFramebuffers(1, &fbo.Id)
	fbo.Id = 0
}

func NewFramebuffer(width, height uint32) Framebuffer {

	// It is allowed to have attachments of differnt sizes in one FBO,
	// but that complicates things (e.g. which size to use for gl.viewport) and I don't see much use
	// for it now, so we will have all attachments share size
	fbo := Framebuffer{
		Width:  width,
		Height: height,
	}

	gl.GenFramebuffers(1, &fbo.Id)
	if fbo.Id == 0 {
		logging.ErrLog.Fatalf("failed to generate framebuffer. GlError=%d\n", gl.GetError())
	}

	return fbo
}
