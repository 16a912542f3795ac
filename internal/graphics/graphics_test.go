package graphics_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadow-demo/internal/graphics"
	"shadow-demo/internal/graphics/graphicstest"
	"shadow-demo/internal/linalg"
	"shadow-demo/internal/logging"
)

const (
	vertSrc = "#version 410 core\nvoid main() {}\n"
	fragSrc = "#version 410 core\nout vec4 o_colour;\nvoid main() { o_colour = vec4(1.0); }\n"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	t.Cleanup(func() { logging.SetOutput(os.Stderr) })
	return &buf
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewProgram(t *testing.T) {
	rec := graphicstest.New()
	p, err := graphics.NewProgram(rec, vertSrc, fragSrc)
	require.NoError(t, err)
	assert.True(t, p.Valid())

	p.Use()
	p.SetMat4(graphics.UniformMVP, linalg.Identity4())
	p.SetVec3(graphics.UniformLightPos, linalg.Vec3{X: 1, Y: 2, Z: 3})
	p.SetFloat(graphics.UniformSpecularity, 32)
	p.SetSampler(graphics.UniformShadowMap, graphics.UnitShadowMap)

	v, ok := rec.Uniform(p.ID, graphics.UniformMVP)
	require.True(t, ok)
	assert.Equal(t, linalg.Identity4(), v)
	v, _ = rec.Uniform(p.ID, graphics.UniformShadowMap)
	assert.Equal(t, int32(2), v)

	p.Delete()
	p.Delete()
	assert.False(t, p.Valid())
	assert.Equal(t, 1, rec.Count("DeleteProgram"))
}

func TestNewProgramCompileFailure(t *testing.T) {
	logs := captureLogs(t)
	rec := graphicstest.New()
	rec.CompileErr = errors.Join(graphics.ErrLink, errors.New("error: vertex output not read"))

	p, err := graphics.NewProgram(rec, vertSrc, fragSrc)
	assert.ErrorIs(t, err, graphics.ErrLink)
	require.NotNil(t, p)
	assert.False(t, p.Valid())
	assert.Contains(t, logs.String(), "vertex output not read")

	// an inert program can still be driven
	p.Use()
	p.SetInt("u_anything", 1)
}

func TestLoadProgramUnreadableSource(t *testing.T) {
	logs := captureLogs(t)
	dir := t.TempDir()
	frag := writeFile(t, dir, "ok.frag", fragSrc)

	p, err := graphics.LoadProgram(graphicstest.New(), filepath.Join(dir, "missing.vert"), frag)
	assert.ErrorIs(t, err, graphics.ErrResourceRead)
	assert.ErrorIs(t, err, graphics.ErrCompile)
	assert.False(t, p.Valid())
	assert.Contains(t, logs.String(), "could not read shader source")
	assert.Contains(t, logs.String(), "shader program build failed")
}

func TestProgramReload(t *testing.T) {
	captureLogs(t)
	dir := t.TempDir()
	vert := writeFile(t, dir, "a.vert", vertSrc)
	frag := writeFile(t, dir, "a.frag", fragSrc)

	rec := graphicstest.New()
	p, err := graphics.LoadProgram(rec, vert, frag)
	require.NoError(t, err)
	first := p.ID

	require.NoError(t, p.Reload())
	assert.NotEqual(t, first, p.ID)
	assert.Equal(t, 1, rec.LivePrograms())

	// a broken edit keeps the last good program
	writeFile(t, dir, "a.vert", "   ")
	good := p.ID
	assert.ErrorIs(t, p.Reload(), graphics.ErrCompile)
	assert.Equal(t, good, p.ID)

	inline, err := graphics.NewProgram(rec, vertSrc, fragSrc)
	require.NoError(t, err)
	assert.NoError(t, inline.Reload())
}

func TestShaderWatcherReloadsOnWrite(t *testing.T) {
	captureLogs(t)
	dir := t.TempDir()
	vert := writeFile(t, dir, "w.vert", vertSrc)
	frag := writeFile(t, dir, "w.frag", fragSrc)

	rec := graphicstest.New()
	p, err := graphics.LoadProgram(rec, vert, frag)
	require.NoError(t, err)

	w, err := graphics.NewShaderWatcher()
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch(p))

	before := p.ID
	writeFile(t, dir, "w.frag", fragSrc+"// edited\n")

	assert.Eventually(t, func() bool {
		w.ReloadChanged()
		return p.ID != before
	}, 3*time.Second, 20*time.Millisecond)

	inline, _ := graphics.NewProgram(rec, vertSrc, fragSrc)
	assert.Error(t, w.Watch(inline))
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestDecodeImageFlipsRows(t *testing.T) {
	dir := t.TempDir()
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.RGBA{R: 255, A: 255})
	src.Set(0, 1, color.RGBA{B: 255, A: 255})

	path := filepath.Join(dir, "t.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, src))
	require.NoError(t, f.Close())

	img, err := graphics.DecodeImage(path)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{B: 255, A: 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(0, 1))

	rec := graphicstest.New()
	h, err := graphics.LoadTexture(rec, path)
	require.NoError(t, err)
	assert.NotZero(t, h)
	assert.Equal(t, 1, rec.LiveTextures())
}

func TestLoadTextureFailure(t *testing.T) {
	captureLogs(t)
	h, err := graphics.LoadTexture(graphicstest.New(), filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
	assert.Zero(t, h)
}

func TestMeshHandleValid(t *testing.T) {
	assert.False(t, graphics.MeshHandle{}.Valid())
	assert.False(t, graphics.MeshHandle{VAO: 1}.Valid())
	assert.True(t, graphics.MeshHandle{VAO: 1, IndexCount: 3}.Valid())
}
