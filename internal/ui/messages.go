// Package ui provides the Bubbletea terminal user interface for the live
// renderer: the frame-paced model, keyboard dispatch, and the sidebar and
// spectrum chrome around the character canvas.
package ui

import "time"

// tickMsg paces the render loop; one arrives per frame budget.
type tickMsg time.Time

// sidebarWidth is the column budget reserved for the status sidebar.
const sidebarWidth = 16

// spectrumHeight is the row budget reserved for the spectrum sparkline.
const spectrumHeight = 3
