// Package ui is lumen's terminal interface, built on Bubble Tea.
//
// # Layout
//
//	┌ header: origin, connection state, pending writes, last update ┐
//	│ command bar: key hints for the focused pane, theme name       │
//	├ Intensity  [ LOW ] [ MEDIUM ] [ HIGH ]                         ┤
//	├ Presets    ● rainbow / ○ solid / ○ fade                        ┤
//	├ Dimmer     Dimmer [0.50]  50%  ██████████░░░░░░░░░░            ┤
//	└ notice banner (only while a failure is being reported)        ┘
//
// Help (?) and the client log (L) replace the main screen while open.
//
// # Data Flow
//
// The Model never holds settings of its own. Every frame is derived from
// controller.Controller.Display through view.Render, and every key that
// changes a setting goes back through the controller:
//
//	mode / preset key ──> view.ModeIntent / PresetIntent ──> ctrl.Submit
//	dimmer key        ──> ctrl.SlideDimmer ──(debounce)──> DimmerSettledMsg
//	                                                       ──> ctrl.Submit
//
// Controller messages (fetch and write results, settled dimmer values,
// notices) arrive through Update like any other tea.Msg. Settled dimmer values
// come from a timer goroutine and are injected with Program.Send.
//
// # Notices
//
// A controller.NoticeMsg shows a banner that expires after the configured
// timeout or is dismissed with esc. Only the newest notice is shown.
//
// # Themes
//
// Nightfox, Kanagawa and Slate. T cycles them and saves the choice, along with
// the focused pane, through package prefs.
package ui
