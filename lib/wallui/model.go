// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package wallui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/gridcast/gridcast/lib/calibration"
	"github.com/gridcast/gridcast/presentation"
)

// Default cell size in pixels, roughly a 16px monospace font.
const (
	DefaultCellWidth  = 8
	DefaultCellHeight = 16
)

// Source is the renderer state the console displays.
type Source interface {
	SetViewport(width, height float64) (calibration.Snapshot, error)
	Snapshot() (calibration.Snapshot, bool)
	Frames() []presentation.FrameView
}

// Options configures a Model.
type Options struct {
	// Title names the wall, e.g. the preset in use.
	Title string

	// CellWidth and CellHeight are the pixels one terminal cell stands
	// for. Zero means DefaultCellWidth and DefaultCellHeight.
	CellWidth  int
	CellHeight int

	Keys  *KeyMap
	Theme *Theme
}

type eventMsg struct {
	event presentation.Event
}

type disconnectedMsg struct{}

// Model is the bubbletea model for the console.
type Model struct {
	source Source
	events <-chan presentation.Event

	title      string
	cellWidth  int
	cellHeight int
	keys       KeyMap
	theme      Theme

	width  int
	height int
	cursor int

	snapshot     calibration.Snapshot
	frames       []presentation.FrameView
	status       string
	warning      bool
	disconnected bool
}

// NewModel returns a console over source. events may be nil.
func NewModel(source Source, events <-chan presentation.Event, options Options) Model {
	model := Model{
		source:     source,
		events:     events,
		title:      options.Title,
		cellWidth:  options.CellWidth,
		cellHeight: options.CellHeight,
		keys:       DefaultKeyMap,
		theme:      DefaultTheme,
		status:     "waiting for frames",
	}
	if model.cellWidth <= 0 {
		model.cellWidth = DefaultCellWidth
	}
	if model.cellHeight <= 0 {
		model.cellHeight = DefaultCellHeight
	}
	if options.Keys != nil {
		model.keys = *options.Keys
	}
	if options.Theme != nil {
		model.theme = *options.Theme
	}
	if snapshot, ok := source.Snapshot(); ok {
		model.snapshot = snapshot
	}
	model.frames = source.Frames()
	return model
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	if model.events == nil {
		return nil
	}
	return listenForEvent(model.events)
}

func listenForEvent(channel <-chan presentation.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-channel
		if !ok {
			return disconnectedMsg{}
		}
		return eventMsg{event: event}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(message, model.keys.Quit):
			return model, tea.Quit
		case key.Matches(message, model.keys.Up):
			if model.cursor > 0 {
				model.cursor--
			}
		case key.Matches(message, model.keys.Down):
			if model.cursor < len(model.frames)-1 {
				model.cursor++
			}
		}
		return model, nil

	case tea.WindowSizeMsg:
		model.width, model.height = message.Width, message.Height
		snapshot, err := model.source.SetViewport(
			float64(message.Width*model.cellWidth),
			float64(message.Height*model.cellHeight),
		)
		if err != nil {
			model.setStatus(fmt.Sprintf("calibration failed: %v", err), true)
			return model, nil
		}
		if snapshot.Known() {
			model.snapshot = snapshot
			model.frames = model.source.Frames()
		}
		return model, nil

	case eventMsg:
		model.frames = model.source.Frames()
		if model.cursor >= len(model.frames) {
			model.cursor = max(len(model.frames)-1, 0)
		}
		switch message.event.Kind {
		case presentation.EventFrameReceived:
			model.setStatus("received "+message.event.Frame.Name, false)
		case presentation.EventFrameResized:
			model.setStatus(fmt.Sprintf("resize %s to %s", message.event.Frame.Name,
				inches(message.event.Frame.WidthUnits, message.event.Frame.HeightUnits)), false)
		case presentation.EventRepublished:
			model.snapshot = message.event.Snapshot
			model.setStatus("calibration re-sent to the daemon", false)
		}
		return model, listenForEvent(model.events)

	case disconnectedMsg:
		model.disconnected = true
		model.setStatus("daemon disconnected", true)
		return model, nil
	}
	return model, nil
}

func (model *Model) setStatus(status string, warning bool) {
	model.status = status
	model.warning = warning
}

// View implements tea.Model.
func (model Model) View() string {
	width := model.width
	if width <= 0 {
		width = 80
	}

	var builder strings.Builder
	builder.WriteString(model.renderHeader(width))
	builder.WriteString("\n")
	builder.WriteString(lipgloss.NewStyle().
		Foreground(model.theme.BorderColor).
		Render(strings.Repeat("─", width)))
	builder.WriteString("\n")

	if len(model.frames) == 0 {
		builder.WriteString(lipgloss.NewStyle().
			Foreground(model.theme.FaintText).
			Render("no frames received"))
		builder.WriteString("\n")
	}
	for index, view := range model.frames {
		builder.WriteString(model.renderRow(view, index == model.cursor, width))
		builder.WriteString("\n")
	}

	builder.WriteString(model.renderStatus(width))
	builder.WriteString("\n")
	builder.WriteString(model.renderHelp())
	return builder.String()
}

func (model Model) renderHeader(width int) string {
	title := "gridcast wall"
	if model.title != "" {
		title += " · " + model.title
	}
	line := title + "  waiting for layout"
	if model.snapshot.Known() {
		line = fmt.Sprintf("%s  %s  %.2f × %.2f px/in",
			title,
			inches(model.snapshot.MonitorWidth, model.snapshot.MonitorHeight),
			model.snapshot.GridSpacingX, model.snapshot.GridSpacingY,
		)
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(model.theme.HeaderForeground).
		Render(ansi.Truncate(line, width, "…"))
}

func (model Model) renderRow(view presentation.FrameView, selected bool, width int) string {
	pixels := "-"
	if view.PixelWidth > 0 {
		pixels = fmt.Sprintf("%.0f × %.0f px", view.PixelWidth, view.PixelHeight)
	}
	row := fmt.Sprintf("%-20s %-18s %-16s %s",
		ansi.Truncate(view.Name, 20, "…"),
		inches(view.WidthUnits, view.HeightUnits),
		pixels,
		view.ImagePath,
	)
	row = ansi.Truncate(row, width, "…")

	style := lipgloss.NewStyle().Foreground(model.theme.NormalText)
	if selected {
		style = style.
			Background(model.theme.SelectedBackground).
			Foreground(model.theme.SelectedForeground)
	}
	return style.Render(row)
}

func (model Model) renderStatus(width int) string {
	color := model.theme.StatusOK
	if model.warning {
		color = model.theme.StatusWarn
	}
	return lipgloss.NewStyle().
		Foreground(color).
		Render(ansi.Truncate(model.status, width, "…"))
}

func (model Model) renderHelp() string {
	var parts []string
	for _, binding := range []key.Binding{model.keys.Up, model.keys.Down, model.keys.Quit} {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return lipgloss.NewStyle().
		Foreground(model.theme.HelpText).
		Render(strings.Join(parts, "  "))
}

func inches(width, height float64) string {
	return fmt.Sprintf("%.2f × %.2f in", width, height)
}
