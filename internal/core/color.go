package core

// Color represents a foreground color for a screen cell.
// The renderer maps each value onto a lipgloss ANSI colour.
type Color uint8

// Predefined colors. Values map onto ANSI codes in the renderer.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
)

// Rink palette.
const (
	ColorRinkLine   = ColorBrightBlue
	ColorCentreLine = ColorRed
	ColorPuck       = ColorBrightWhite
	ColorPlayer1    = ColorBrightCyan
	ColorPlayer2    = ColorBrightMagenta
	ColorGoalFlash  = ColorBrightYellow
)

// PlayerColor returns the paddle colour of a side.
func PlayerColor(p PlayerID) Color {
	switch p {
	case Player1:
		return ColorPlayer1
	case Player2:
		return ColorPlayer2
	default:
		return ColorGray
	}
}
