// Package surface renders documents to a terminal and owns the live caret.
// Terminal implements caret.SelectionAPI over a tcell screen: the editor
// captures and restores positions through it, and it translates terminal
// input into key events for the editor.
package surface
