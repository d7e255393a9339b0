package main

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/capsynth/audio"
	"github.com/plus3/capsynth/game"
)

func renderWorldWindow(sim *game.Sim, dispatcher *audio.Dispatcher) {
	imgui.SetNextWindowPosV(imgui.NewVec2(10, 340), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(420, 300), imgui.CondOnce)

	if !imgui.BeginV("World", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	w := sim.World
	imgui.Text(fmt.Sprintf("Entities: %d", w.Len()))
	imgui.Text(fmt.Sprintf("Players: %d  Capsules: %d  Walls: %d", w.Players.Len(), w.Capsules.Len(), w.Walls.Len()))
	imgui.Text(fmt.Sprintf("Contacts: %d  Docks: %d", sim.Collision.Contacts, sim.Collision.Docks))

	triggers, notes := dispatcher.Counts()
	imgui.Separator()
	imgui.Text(fmt.Sprintf("Audio sources: %d  Triggers: %d  Notes: %d", dispatcher.Sources(), triggers, notes))

	if imgui.TreeNodeStr("Capsules") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("CapsuleTable", 5, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Capsule")
			imgui.TableSetupColumn("Phase")
			imgui.TableSetupColumn("Occupant")
			imgui.TableSetupColumn("Voice")
			imgui.TableSetupColumn("Cursor")
			imgui.TableHeadersRow()

			for id, c := range w.Capsules.Iter() {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(id.String())
				imgui.TableNextColumn()
				imgui.Text(c.Phase.String())
				imgui.TableNextColumn()
				imgui.Text(c.OccupiedBy.String())

				rec, ok := w.Recorder(c.Recorder)
				imgui.TableNextColumn()
				if ok {
					imgui.Text(rec.Voice().String())
				}
				imgui.TableNextColumn()
				switch {
				case !ok:
				case len(rec.Circles()) > 0:
					imgui.Text(fmt.Sprintf("%d/%d", rec.Cursor(), len(rec.Circles())))
				default:
					imgui.Text(fmt.Sprintf("%d pts", len(rec.RawPoints())))
				}
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Players") {
		for id, p := range w.Players.Iter() {
			imgui.BulletText(fmt.Sprintf("%s %s %s in %s acc %.2f", id, p.InputID, p.State, p.InCapsule, p.Acceleration))
		}
		imgui.TreePop()
	}

	imgui.End()
}
