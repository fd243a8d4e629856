package termui

import (
	"fmt"

	"github.com/glkgo/remglk/internal/glkapi"
)

// RunDemoSession drives a tiny Glk "program" against api: open one buffer
// window, greet the player, then echo every line typed back until "quit".
// It exists so cmd/remglk has something to exercise the library with — a
// stand-in glk_main, since this repo is the runtime, not an interpreter
// (§6 "Reference terminal client... not because the spec requires a
// terminal renderer"). Intended to run on its own goroutine paired with
// Run(transport) on the main goroutine.
func RunDemoSession(api *glkapi.GlkApi) error {
	win, err := api.OpenWindow(0, 0, 0, glkapi.WintypeBuffer, 0)
	if err != nil {
		return fmt.Errorf("open root window: %w", err)
	}

	if err := api.PutStringToWindow(win.ID(), "remglk demo session. Type anything; \"quit\" to exit.\n", glkapi.StyleHeader, true); err != nil {
		return err
	}

	for {
		if err := api.PutStringToWindow(win.ID(), "\n> ", glkapi.StyleInput, true); err != nil {
			return err
		}

		buf := glkapi.NewU32Buffer(256)
		if err := api.RequestLineEvent(win.ID(), buf, ""); err != nil {
			return err
		}

		ev, err := api.Select()
		if err != nil {
			return err
		}
		if ev.Type != glkapi.EvtypeLineInput {
			continue
		}

		text := buf.String(int(ev.Val1))
		if text == "quit" {
			if err := api.PutStringToWindow(win.ID(), "\nGoodbye.\n", glkapi.StyleNormal, true); err != nil {
				return err
			}
			api.Select()
			return api.Exit()
		}
		if err := api.PutStringToWindow(win.ID(), "You said: "+text+"\n", glkapi.StyleNormal, true); err != nil {
			return err
		}
	}
}
