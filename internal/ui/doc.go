// Package ui implements the terminal front end: catalog search, the saved
// library, and a now-playing view with the queue, all driving the playback
// controller.
//
// The package follows the Elm architecture via bubbletea. Blocking work
// (catalog searches, store reads) runs in [tea.Cmd] functions; playback
// notices arrive on a channel bridged into messages so transient signals
// (unavailable track, queued confirmation) surface in the status line.
package ui
