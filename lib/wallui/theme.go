// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package wallui

import "github.com/charmbracelet/lipgloss"

// Theme is the console's color palette, in ANSI 256-color codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// StatusOK and StatusWarn color the bottom status line.
	StatusOK   lipgloss.Color
	StatusWarn lipgloss.Color
}

// DefaultTheme suits a dark terminal background.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	StatusOK:   lipgloss.Color("114"), // green
	StatusWarn: lipgloss.Color("208"), // orange
}
