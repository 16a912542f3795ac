package graphics

import (
	"errors"
	"fmt"
	"os"

	"shadow-demo/internal/linalg"
	"shadow-demo/internal/logging"
)

// Program is a linked shader program. A Program whose build failed keeps the
// zero handle: uniform writes and draws through it are ignored by the driver,
// so callers may keep using it without crashing.
type Program struct {
	backend Backend
	ID      ProgramHandle

	vertexPath   string
	fragmentPath string
}

// NewProgram compiles and links the given sources. On failure the error is
// logged and returned together with an inert Program.
func NewProgram(b Backend, vertexSrc, fragmentSrc string) (*Program, error) {
	p := &Program{backend: b}
	id, err := b.CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		logging.Error("shader program build failed", "err", err)
		return p, err
	}
	p.ID = id
	return p, nil
}

// LoadProgram reads both sources from disk and builds them. An unreadable file
// is logged and replaced by an empty source, which the compiler then rejects
// and reports again.
func LoadProgram(b Backend, vertexPath, fragmentPath string) (*Program, error) {
	vs, vErr := readSource(vertexPath)
	fs, fErr := readSource(fragmentPath)
	p, err := NewProgram(b, vs, fs)
	p.vertexPath = vertexPath
	p.fragmentPath = fragmentPath
	return p, errors.Join(vErr, fErr, err)
}

func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrResourceRead, err)
		logging.Error("could not read shader source", "path", path, "err", err)
		return "", err
	}
	return string(data), nil
}

// Paths returns the files the program was loaded from, empty for programs
// built from in-memory sources.
func (p *Program) Paths() (vertex, fragment string) {
	return p.vertexPath, p.fragmentPath
}

// Reload rebuilds a file backed program. The previous program stays active if
// the new sources fail to build.
func (p *Program) Reload() error {
	if p.vertexPath == "" {
		return nil
	}
	vs, vErr := readSource(p.vertexPath)
	fs, fErr := readSource(p.fragmentPath)
	if err := errors.Join(vErr, fErr); err != nil {
		return err
	}
	id, err := p.backend.CompileProgram(vs, fs)
	if err != nil {
		logging.Error("shader reload failed, keeping previous program", "vertex", p.vertexPath, "err", err)
		return err
	}
	if p.ID != 0 {
		p.backend.DeleteProgram(p.ID)
	}
	p.ID = id
	logging.Info("shader reloaded", "vertex", p.vertexPath, "fragment", p.fragmentPath)
	return nil
}

func (p *Program) Valid() bool { return p != nil && p.ID != 0 }

// Use activates the program.
func (p *Program) Use() {
	p.backend.UseProgram(p.ID)
}

func (p *Program) SetInt(name string, v int32) {
	p.backend.SetUniformInt(p.ID, name, v)
}

func (p *Program) SetFloat(name string, v float32) {
	p.backend.SetUniformFloat(p.ID, name, v)
}

func (p *Program) SetVec2(name string, v linalg.Vec2) {
	p.backend.SetUniformVec2(p.ID, name, v)
}

func (p *Program) SetVec3(name string, v linalg.Vec3) {
	p.backend.SetUniformVec3(p.ID, name, v)
}

func (p *Program) SetVec4(name string, v linalg.Vec4) {
	p.backend.SetUniformVec4(p.ID, name, v)
}

func (p *Program) SetMat3(name string, m linalg.Mat3) {
	p.backend.SetUniformMat3(p.ID, name, m)
}

func (p *Program) SetMat4(name string, m linalg.Mat4) {
	p.backend.SetUniformMat4(p.ID, name, m)
}

// SetSampler points a sampler uniform at a texture unit.
func (p *Program) SetSampler(name string, unit uint32) {
	p.backend.SetUniformInt(p.ID, name, int32(unit))
}

// Delete releases the GPU program. Safe to call more than once.
func (p *Program) Delete() {
	if p == nil || p.ID == 0 {
		return
	}
	p.backend.DeleteProgram(p.ID)
	p.ID = 0
}
