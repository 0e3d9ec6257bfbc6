// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

const (
	colorTitle  = lipgloss.Color("#7C3AED")
	colorMuted  = lipgloss.Color("#6B7280")
	colorPath   = lipgloss.Color("#10B981")
	colorError  = lipgloss.Color("#EF4444")
	colorTier   = lipgloss.Color("#F59E0B")
	colorKey    = lipgloss.Color("#3B82F6")
	colorDetail = lipgloss.Color("#9CA3AF")
)

// Output styles. Keys, URIs and plugin classes use KeyStyle; anything that
// names a location on disk or on a host uses PathStyle.
var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorTitle)
	SubtitleStyle = lipgloss.NewStyle().Foreground(colorMuted)
	ErrorStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	VerboseStyle  = lipgloss.NewStyle().Foreground(colorDetail)

	KeyStyle  = lipgloss.NewStyle().Foreground(colorKey)
	PathStyle = lipgloss.NewStyle().Foreground(colorPath)
	// TierStyle labels classpath tiers and marks missing values.
	TierStyle = lipgloss.NewStyle().Foreground(colorTier)

	labelStyle = lipgloss.NewStyle().Foreground(colorKey).Width(12)
	cellStyle  = lipgloss.NewStyle().PaddingRight(2)
)
