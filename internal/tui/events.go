package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"rigup/internal/session"
)

// ForwardEvents drains the session event stream into row updates until
// stop is closed. Used by the non-interactive progress display, where the
// table has one row per entry keyed by id.
func ForwardEvents(events <-chan session.ProgressEvent, send func(tea.Msg), stop <-chan struct{}) {
	for {
		select {
		case ev := <-events:
			send(RowUpdateMsg{Key: ev.EntryID, Fields: EventFields(ev)})
		case <-stop:
			// Flush whatever landed between the last send and the stop.
			for {
				select {
				case ev := <-events:
					send(RowUpdateMsg{Key: ev.EntryID, Fields: EventFields(ev)})
				default:
					return
				}
			}
		}
	}
}

// EventFields maps a progress event onto the STATUS/VERSION/DETAIL columns.
func EventFields(ev session.ProgressEvent) map[string]string {
	fields := map[string]string{
		"STATUS": ev.Status.String(),
		"DETAIL": NonEmptyOrDash(ev.Detail),
	}
	if ev.Status == session.StatusResolved && ev.Detail != "" {
		fields["VERSION"] = ev.Detail
		fields["DETAIL"] = "-"
	}
	return fields
}
