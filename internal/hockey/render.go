package hockey

import (
	"fmt"

	"github.com/vovakirdan/hockey-pong/internal/core"
)

// Visual characters for rendering
const (
	StickChar      = '█'
	GoalieChar     = '▓'
	PuckChar       = '●'
	CentreLineChar = '┊'
	FaceoffChar    = '○'
)

// RinkRect returns the cells inside the rink boards for a screen of w x h.
// Row 0 holds the scoreboard.
func RinkRect(w, h int) core.Rect {
	return core.NewRect(1, 2, max(w-2, 1), max(h-3, 1))
}

// FieldScale returns the mapping from rink cells to field units.
func (r Rules) FieldScale(rink core.Rect) core.Scale {
	return core.NewScale(rink.W, rink.H, r.FieldWidth, r.FieldHeight)
}

// ScreenToField converts a screen cell to field coordinates.
func (r Rules) ScreenToField(w, h, x, y int) (float64, float64) {
	rink := RinkRect(w, h)
	return r.FieldScale(rink).ToField(x-rink.X, y-rink.Y)
}

// Render draws the rink, sticks, puck and score into dst.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	w, h := dst.Width(), dst.Height()
	rink := RinkRect(w, h)
	scale := g.rules.FieldScale(rink)
	s := g.state

	g.drawHeader(dst)
	dst.DrawBox(core.NewRect(rink.X-1, rink.Y-1, rink.W+2, rink.H+2), core.ColorRinkLine)

	mid := rink.X + rink.W/2
	for y := rink.Y; y < rink.Bottom(); y += 2 {
		dst.SetColored(mid, y, CentreLineChar, core.ColorCentreLine)
	}
	dst.SetColored(mid, rink.Y+rink.H/2, FaceoffChar, core.ColorCentreLine)

	g.drawStick(dst, rink, scale, s.Paddle1, core.Player1)
	g.drawStick(dst, rink, scale, s.Paddle2, core.Player2)

	if s.Winner == core.PlayerNone {
		px, py := scale.ToHost(s.Puck.X, s.Puck.Y)
		if px >= 0 && px < rink.W && py >= 0 && py < rink.H {
			dst.SetColored(rink.X+px, rink.Y+py, PuckChar, core.ColorPuck)
		}
	}

	switch {
	case s.Winner != core.PlayerNone:
		drawBanner(dst,
			fmt.Sprintf("%s WINS!", g.PlayerName(s.Winner)),
			fmt.Sprintf("%d - %d  |  SPACE new game  Q quit", s.Score.Player1, s.Score.Player2),
			core.ColorGoalFlash)
	case !s.Running && s.Tick == 0:
		drawBanner(dst, "FACE-OFF", g.controlsHint(), core.ColorBrightWhite)
	case !s.Running:
		drawBanner(dst, "PAUSED", "SPACE resume  R reset", core.ColorBrightWhite)
	}
}

func (g *Game) drawHeader(dst *core.Screen) {
	s := g.state
	left := fmt.Sprintf("%s %d", g.PlayerName(core.Player1), s.Score.Player1)
	right := fmt.Sprintf("%d %s", s.Score.Player2, g.PlayerName(core.Player2))
	dst.DrawTextColored(1, 0, left, core.PlayerColor(core.Player1))
	dst.DrawTextColored(dst.Width()-1-len([]rune(right)), 0, right, core.PlayerColor(core.Player2))
	dst.DrawTextCentered(0, fmt.Sprintf("first to %d", g.rules.WinScore), core.ColorGray)
}

func (g *Game) drawStick(dst *core.Screen, rink core.Rect, scale core.Scale, p Paddle, side core.PlayerID) {
	x, top := scale.ToHost(p.X, p.Y)
	_, bottom := scale.ToHost(p.X, p.Y+g.rules.PaddleHeight)
	height := max(bottom-top, 1)
	x = core.Clamp(x, 0, rink.W-1)

	r, width := StickChar, 1
	if g.stick == StickGoalie {
		r, width = GoalieChar, 2
	}
	for i := range width {
		cx := x + i
		if side == core.Player2 {
			cx = x - i
		}
		if cx < 0 || cx >= rink.W {
			continue
		}
		for y := top; y < top+height && y < rink.H; y++ {
			if y >= 0 {
				dst.SetColored(rink.X+cx, rink.Y+y, r, core.PlayerColor(side))
			}
		}
	}
}

func (g *Game) controlsHint() string {
	switch g.mode {
	case ModeTwoPlayer:
		return "SPACE start  W/S vs UP/DOWN"
	case ModeOnline:
		return "SPACE start  W/S or UP/DOWN"
	default:
		return "SPACE start  W/S move"
	}
}

// drawBanner draws a message box in the center of the screen.
func drawBanner(dst *core.Screen, title, subtitle string, c core.Color) {
	boxW := max(len([]rune(title)), len([]rune(subtitle))) + 4
	boxH := 5
	boxX := (dst.Width() - boxW) / 2
	boxY := (dst.Height() - boxH) / 2

	dst.DrawRect(core.NewRect(boxX, boxY, boxW, boxH), ' ', core.ColorDefault)
	dst.DrawBox(core.NewRect(boxX, boxY, boxW, boxH), c)
	dst.DrawTextCentered(boxY+1, title, c)
	dst.DrawTextCentered(boxY+3, subtitle, core.ColorDefault)
}
