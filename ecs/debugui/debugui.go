// Package debugui provides immediate-mode GUI integration for schedulers using Dear ImGui.
// Render functions are deferred through frame commands so they run after the
// systems of the tick that queued them.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/capsynth/ecs"
)

// ImguiItem holds a Dear ImGui render function.
type ImguiItem struct {
	Name   string
	Render func()
}

// ImguiInputState tracks Dear ImGui's input capture state.
// Use this to determine if ImGui is consuming mouse or keyboard input.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem defers every item's render function and publishes the current
// input capture state.
type ImguiSystem struct {
	Items      []ImguiItem
	InputState *ecs.Singleton[ImguiInputState]
}

func NewImguiSystem(items ...ImguiItem) *ImguiSystem {
	return &ImguiSystem{
		Items:      items,
		InputState: ecs.NewSingleton[ImguiInputState](),
	}
}

// Add appends an item. Items render in insertion order.
func (i *ImguiSystem) Add(item ImguiItem) {
	i.Items = append(i.Items, item)
}

// Execute updates input state and queues all ImGui render functions for execution.
func (i *ImguiSystem) Execute(frame *ecs.UpdateFrame) {
	io := imgui.CurrentIO()
	i.InputState.Set(ImguiInputState{
		WantCaptureMouse:    io.WantCaptureMouse(),
		WantCaptureKeyboard: io.WantCaptureKeyboard(),
	})

	for _, item := range i.Items {
		frame.Commands.Defer(item.Render)
	}
}
