package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wardenlabs/warden/internal/approvals"
)

// Color palette.
var (
	ColorSuccess   = lipgloss.Color("#00D26A") // green  — low risk, success
	ColorWarning   = lipgloss.Color("#FFB800") // yellow — warnings, mid scores
	ColorError     = lipgloss.Color("#FF4444") // red    — high risk, errors
	ColorAddress   = lipgloss.Color("#00B4D8") // cyan   — addresses, hashes
	ColorValue     = lipgloss.Color("#FFFFFF") // white bold — amounts, symbols
	ColorMeta      = lipgloss.Color("#555555") // dim gray  — timestamps, metadata
	ColorBorder    = lipgloss.Color("#1E3A5F") // dark blue — UI chrome
	ColorChain     = lipgloss.Color("#9B5DE5") // purple    — chain names, branding
	ColorHighlight = lipgloss.Color("#F15BB5") // pink      — selected rows
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleChain   = lipgloss.NewStyle().Foreground(ColorChain).Bold(true)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true).
			Underline(true)

	StyleSelected = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorChain).
			Bold(true).
			MarginBottom(1)

	StyleDim = lipgloss.NewStyle().Foreground(ColorMeta)
)

// Banner returns the warden ASCII banner.
func Banner() string {
	art := `
  ██╗    ██╗ █████╗ ██████╗ ██████╗ ███████╗███╗   ██╗
  ██║    ██║██╔══██╗██╔══██╗██╔══██╗██╔════╝████╗  ██║
  ██║ █╗ ██║███████║██████╔╝██║  ██║█████╗  ██╔██╗ ██║
  ██║███╗██║██╔══██║██╔══██╗██║  ██║██╔══╝  ██║╚██╗██║
  ╚███╔███╔╝██║  ██║██║  ██║██████╔╝███████╗██║ ╚████║
   ╚══╝╚══╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝ ╚══════╝╚═╝  ╚═══╝`

	tagline := StyleMeta.Render("     Approval hygiene for your wallet  ⚡  v1.0.0")
	features := StyleMeta.Render("  ✦ Base  ✦ Trust score  ✦ One-batch revoke")

	return StyleChain.Render(art) + "\n" + tagline + "\n" + features + "\n"
}

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Info formats an informational message.
func Info(msg string) string { return StyleAddress.Render("ℹ " + msg) }

// Hint formats a dimmed hint line.
func Hint(msg string) string { return StyleMeta.Render("  ↳ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Addr formats an address.
func Addr(a string) string { return StyleAddress.Render(a) }

// Val formats a value.
func Val(v string) string { return StyleValue.Render(v) }

// Meta formats metadata text.
func Meta(m string) string { return StyleMeta.Render(m) }

// ChainName formats a chain name.
func ChainName(c string) string { return StyleChain.Render(c) }

// TruncateAddr shortens an address for display: 0x1234…5678.
func TruncateAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

// RiskBadge renders a colored risk tag for an approval.
func RiskBadge(r approvals.Risk) string {
	if r == approvals.RiskHigh {
		return StyleError.Render("[HIGH]")
	}
	return StyleSuccess.Render("[low]")
}

// scoreBarWidth is the number of cells in a rendered score bar.
const scoreBarWidth = 20

// ScoreBar renders a trust score as "████████░░ 80/100" with the fill
// colored green at 80+, yellow at 50-79 and red below 50.
func ScoreBar(score int) string {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	filled := score * scoreBarWidth / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", scoreBarWidth-filled)

	style := StyleError
	switch {
	case score >= 80:
		style = StyleSuccess
	case score >= 50:
		style = StyleWarning
	}
	return style.Render(bar) + " " + StyleValue.Render(strconv.Itoa(score)+"/100")
}
