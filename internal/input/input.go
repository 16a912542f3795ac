package input

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Action is a logical demo control, not a physical key.
type Action int

const (
	ActionLightYawLeft Action = iota
	ActionLightYawRight
	ActionLightPitchUp
	ActionLightPitchDown
	ActionOrbitLeft
	ActionOrbitRight
	ActionZoomIn
	ActionZoomOut
	ActionToggleWireframe
	ActionToggleShadows
	ActionToggleMVP
	ActionToggleProfiling
	ActionReloadShaders
	ActionQuit
	ActionDrag
	ActionCount // sentinel for array sizing
)

// Manager maps keys and mouse buttons to actions and keeps per-frame edge
// state. Callbacks may arrive from GLFW while the frame reads the state.
type Manager struct {
	mu sync.RWMutex

	keyToActions         map[glfw.Key][]Action
	mouseButtonToActions map[glfw.MouseButton][]Action

	currentState [ActionCount]bool
	justPressed  [ActionCount]bool

	// cursor movement and scroll accumulated since the last PostUpdate
	cursorX, cursorY float64
	haveCursor       bool
	dragDX, dragDY   float64
	scroll           float64
}

// NewManager creates a Manager with the default bindings.
func NewManager() *Manager {
	m := &Manager{
		keyToActions:         make(map[glfw.Key][]Action),
		mouseButtonToActions: make(map[glfw.MouseButton][]Action),
	}

	m.BindKey(glfw.KeyLeft, ActionLightYawLeft)
	m.BindKey(glfw.KeyRight, ActionLightYawRight)
	m.BindKey(glfw.KeyUp, ActionLightPitchUp)
	m.BindKey(glfw.KeyDown, ActionLightPitchDown)
	m.BindKey(glfw.KeyA, ActionOrbitLeft)
	m.BindKey(glfw.KeyD, ActionOrbitRight)
	m.BindKey(glfw.KeyW, ActionZoomIn)
	m.BindKey(glfw.KeyS, ActionZoomOut)
	m.BindKey(glfw.KeyF, ActionToggleWireframe)
	m.BindKey(glfw.KeyG, ActionToggleShadows)
	m.BindKey(glfw.KeyM, ActionToggleMVP)
	m.BindKey(glfw.KeyV, ActionToggleProfiling)
	m.BindKey(glfw.KeyR, ActionReloadShaders)
	m.BindKey(glfw.KeyEscape, ActionQuit)

	m.BindMouseButton(glfw.MouseButtonLeft, ActionDrag)
	return m
}

// BindKey adds a binding. One key may drive several actions.
func (m *Manager) BindKey(key glfw.Key, action Action) {
	if action < 0 || action >= ActionCount {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keyToActions[key] = append(m.keyToActions[key], action)
}

func (m *Manager) BindMouseButton(button glfw.MouseButton, action Action) {
	if action < 0 || action >= ActionCount {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mouseButtonToActions[button] = append(m.mouseButtonToActions[button], action)
}

// setActions records a press or release for every bound action. Press edges
// are latched immediately so a tap shorter than a frame is not lost.
func (m *Manager) setActions(actions []Action, pressed bool) {
	for _, act := range actions {
		if pressed && !m.currentState[act] {
			m.justPressed[act] = true
		}
		m.currentState[act] = pressed
	}
}

func (m *Manager) HandleKeyEvent(key glfw.Key, action glfw.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setActions(m.keyToActions[key], action == glfw.Press || action == glfw.Repeat)
}

func (m *Manager) HandleMouseButtonEvent(button glfw.MouseButton, action glfw.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setActions(m.mouseButtonToActions[button], action == glfw.Press)
}

// HandleCursor accumulates movement while ActionDrag is held.
func (m *Manager) HandleCursor(x, y float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.haveCursor && m.currentState[ActionDrag] {
		m.dragDX += x - m.cursorX
		m.dragDY += y - m.cursorY
	}
	m.cursorX, m.cursorY = x, y
	m.haveCursor = true
}

func (m *Manager) HandleScroll(dy float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scroll += dy
}

// Attach installs the GLFW callbacks on window.
func (m *Manager) Attach(window *glfw.Window) {
	window.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		m.HandleKeyEvent(key, action)
	})
	window.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		m.HandleMouseButtonEvent(button, action)
	})
	window.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		m.HandleCursor(x, y)
	})
	window.SetScrollCallback(func(_ *glfw.Window, _, dy float64) {
		m.HandleScroll(dy)
	})
}

// PostUpdate clears edges and accumulated motion. Call it at the end of
// every frame after all queries.
func (m *Manager) PostUpdate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.justPressed[:])
	m.dragDX, m.dragDY, m.scroll = 0, 0, 0
}

// IsActive reports whether the action is held down.
func (m *Manager) IsActive(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentState[action]
}

// JustPressed reports a press since the last PostUpdate.
func (m *Manager) JustPressed(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.justPressed[action]
}

// Drag returns cursor movement while dragging, and Scroll the wheel delta,
// both since the last PostUpdate.
func (m *Manager) Drag() (dx, dy float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dragDX, m.dragDY
}

func (m *Manager) Scroll() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scroll
}
