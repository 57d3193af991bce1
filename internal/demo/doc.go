// Package demo is a terminal rendition of the name-store demo: three bound
// components drawn on a tcell screen, each showing how often it rendered.
//
//	App   UseSelector(len(name))  "Name Length N"
//	C1    no hooks                "C1"
//	Name  UseStore                "Name: <name>"
//
// Typing appends to the name, Backspace deletes the last character, Ctrl-R
// reverses it and Esc or Ctrl-C quits. C1 never re-renders. App re-renders
// only when the length changes, so reversing re-renders Name alone.
package demo
