package display

import (
	"context"
	"fmt"
	"io"

	"github.com/hammamikhairi/ottobrew/internal/brew"
	"github.com/hammamikhairi/ottobrew/internal/countdown"
)

// RunPlain starts the brew if it is idle and prints a line whenever it
// moves to a new step. It returns when the brew completes, the
// subscription closes, or ctx is done.
func RunPlain(ctx context.Context, w io.Writer, ctl Controller, view *brew.View, events <-chan brew.Event) error {
	fmt.Fprintf(w, "%s (%s)\n", view.RecipeName, countdown.FormatClock(view.TotalTime))
	if view.State.Status == countdown.StatusIdle {
		if _, err := ctl.Control(view.ID, brew.ActionStart); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev.Type {
			case countdown.EventStarted.String(), countdown.EventStepAdvanced.String():
				printStep(w, ev.Brew)
			case countdown.EventPaused.String():
				fmt.Fprintf(w, "paused at %s\n", ev.Brew.Clock)
			case countdown.EventCompleted.String():
				fmt.Fprintf(w, "done in %s\n", countdown.FormatClock(ev.Brew.State.TotalTimeElapsed))
				return nil
			}
		}
	}
}

func printStep(w io.Writer, v *brew.View) {
	if v.CurrentStep == nil {
		return
	}
	st := v.State
	fmt.Fprintf(w, "[%d/%d] %s (%s)\n", st.CurrentStepIndex+1, st.StepCount, v.CurrentStep.Description, v.Clock)
}
