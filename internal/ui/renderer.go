package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amalg/go-battlecity/internal/game"
)

// Color palette
var (
	groundStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#111111")).
			Foreground(lipgloss.Color("#111111"))

	brickStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#111111")).
			Foreground(lipgloss.Color("#b5531c"))

	ironStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#5a5a5a")).
			Foreground(lipgloss.Color("#d0d0d0"))

	riverStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1c3fb5")).
			Foreground(lipgloss.Color("#6f8cff"))

	grassStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1f5f1f")).
			Foreground(lipgloss.Color("#3fbf3f"))

	snowStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#c8c8d8")).
			Foreground(lipgloss.Color("#ffffff"))

	baseStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#111111")).
			Foreground(lipgloss.Color("#e0e0e0")).
			Bold(true)

	bulletStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#111111")).
			Foreground(lipgloss.Color("#ffffff")).
			Bold(true)

	explosionStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#ff6600")).
			Foreground(lipgloss.Color("#ffcc00")).
			Bold(true)

	starStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#111111")).
			Foreground(lipgloss.Color("#ffffff")).
			Blink(true)

	powerUpStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#aa0000")).
			Foreground(lipgloss.Color("#ffffff")).
			Bold(true)

	ownerColors = map[game.Owner]lipgloss.Color{
		game.OwnerP1: lipgloss.Color("#e8c547"), // Yellow
		game.OwnerP2: lipgloss.Color("#3fbf3f"), // Green
		game.OwnerAI: lipgloss.Color("#c0c0c0"), // Grey
	}

	// HUD styles
	hudBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff8844")).
			Bold(true)

	lobbyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#44aaff")).
			Bold(true)

	winnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ff88")).
			Bold(true).
			Blink(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

var facingGlyphs = [4]string{
	game.DirUp:    "▲▲",
	game.DirRight: "▶▶",
	game.DirDown:  "▼▼",
	game.DirLeft:  "◀◀",
}

var powerUpGlyphs = map[game.PowerUpType]string{
	game.PowerUpHelmet:  "He",
	game.PowerUpClock:   "Cl",
	game.PowerUpShovel:  "Sh",
	game.PowerUpStar:    "St",
	game.PowerUpGrenade: "Gr",
	game.PowerUpTank:    "1U",
	game.PowerUpGun:     "Gu",
}

// cell is one terminal cell of the board, one quarter cell of the field.
type cell struct {
	glyph string
	style lipgloss.Style
	brick float64 // Fraction covered by brick fragments
}

// grid is the board at quarter-cell resolution, row 0 at the top.
type grid struct {
	n       int
	quarter float64
	cells   [][]cell
}

func newGrid(s *game.Snapshot) *grid {
	quarter := 2 * s.MinCell
	n := int(math.Round(s.FieldSize / quarter))
	g := &grid{n: n, quarter: quarter, cells: make([][]cell, n)}
	for r := range g.cells {
		g.cells[r] = make([]cell, n)
		for c := range g.cells[r] {
			g.cells[r][c] = cell{glyph: "  ", style: groundStyle}
		}
	}
	return g
}

// span returns the half-open column and row ranges box covers.
func (g *grid) span(b game.Box) (c0, c1, r0, r1 int) {
	lo, hi := b.Min(), b.Max()
	clamp := func(v int) int { return max(0, min(g.n, v)) }
	c0 = clamp(int(math.Floor(lo.X / g.quarter)))
	c1 = clamp(int(math.Ceil(hi.X / g.quarter)))
	r0 = clamp(g.n - int(math.Ceil(hi.Y/g.quarter)))
	r1 = clamp(g.n - int(math.Floor(lo.Y/g.quarter)))
	return c0, c1, r0, r1
}

// cellBox returns the world box of the cell at (col, row).
func (g *grid) cellBox(col, row int) game.Box {
	q := g.quarter
	return game.NewBox(float64(col)*q+q/2, float64(g.n-1-row)*q+q/2, q, q)
}

func (g *grid) fill(b game.Box, glyph string, style lipgloss.Style) {
	c0, c1, r0, r1 := g.span(b)
	for r := r0; r < r1; r++ {
		for c := c0; c < c1; c++ {
			g.cells[r][c].glyph = glyph
			g.cells[r][c].style = style
		}
	}
}

// addBrick accumulates the area a fragment covers in each cell it touches.
func (g *grid) addBrick(b game.Box) {
	c0, c1, r0, r1 := g.span(b)
	area := g.quarter * g.quarter
	for r := r0; r < r1; r++ {
		for c := c0; c < c1; c++ {
			cb := g.cellBox(c, r)
			lo, hi := b.Min(), b.Max()
			clo, chi := cb.Min(), cb.Max()
			w := min(hi.X, chi.X) - max(lo.X, clo.X)
			h := min(hi.Y, chi.Y) - max(lo.Y, clo.Y)
			if w > 0 && h > 0 {
				g.cells[r][c].brick += w * h / area
			}
		}
	}
}

func (g *grid) drawTank(e game.EntityView) {
	color := ownerColors[e.Owner]
	style := lipgloss.NewStyle().Background(lipgloss.Color("#111111")).Foreground(color).Bold(true)
	if e.Flashing {
		style = style.Foreground(lipgloss.Color("#ff3030"))
	}
	if e.Shielded {
		style = style.Background(lipgloss.Color("#333366"))
	}
	g.fill(e.Box, "██", style)

	// Mark the leading half with the facing.
	front := e.Box
	switch e.Facing {
	case game.DirUp:
		front = front.Translate(0, front.Size.Y/4)
		front.Size.Y /= 2
	case game.DirDown:
		front = front.Translate(0, -front.Size.Y/4)
		front.Size.Y /= 2
	case game.DirRight:
		front = front.Translate(front.Size.X/4, 0)
		front.Size.X /= 2
	case game.DirLeft:
		front = front.Translate(-front.Size.X/4, 0)
		front.Size.X /= 2
	}
	g.fill(front, facingGlyphs[e.Facing], style)
}

// RenderBoard converts the snapshot into a styled terminal string.
func RenderBoard(state *game.Snapshot) string {
	if state == nil || state.MinCell <= 0 {
		return "Waiting for game state..."
	}

	g := newGrid(state)

	// Ground layer first, then actors, then cover and effects on top.
	var actors, cover []game.EntityView
	for _, e := range state.Entities {
		switch e.Kind {
		case game.KindBrick:
			g.addBrick(e.Box)
		case game.KindIron:
			g.fill(e.Box, "▓▓", ironStyle)
		case game.KindRiver:
			g.fill(e.Box, "≈≈", riverStyle)
		case game.KindSnow:
			g.fill(e.Box, "░░", snowStyle)
		case game.KindBase:
			glyph := "{}"
			if e.Broken {
				glyph = "xx"
			}
			g.fill(e.Box, glyph, baseStyle)
		case game.KindGrass, game.KindExplosion, game.KindStar:
			cover = append(cover, e)
		default:
			actors = append(actors, e)
		}
	}
	for r := range g.cells {
		for c := range g.cells[r] {
			switch b := g.cells[r][c].brick; {
			case b >= 0.99:
				g.cells[r][c].glyph, g.cells[r][c].style = "▓▓", brickStyle
			case b >= 0.5:
				g.cells[r][c].glyph, g.cells[r][c].style = "▒▒", brickStyle
			case b > 0:
				g.cells[r][c].glyph, g.cells[r][c].style = "░░", brickStyle
			}
		}
	}

	for _, e := range actors {
		switch e.Kind {
		case game.KindPowerUp:
			g.fill(e.Box, powerUpGlyphs[e.PowerUp], powerUpStyle)
		case game.KindTank:
			g.drawTank(e)
		case game.KindBullet:
			g.fill(e.Box, "()", bulletStyle)
		}
	}
	for _, e := range cover {
		switch e.Kind {
		case game.KindGrass:
			g.fill(e.Box, "⣿⣿", grassStyle)
		case game.KindExplosion:
			g.fill(e.Box, "**", explosionStyle)
		case game.KindStar:
			g.fill(e.Box, "✦✦", starStyle)
		}
	}

	rows := make([]string, 0, g.n)
	for _, line := range g.cells {
		var b strings.Builder
		for _, c := range line {
			b.WriteString(c.style.Render(c.glyph))
		}
		rows = append(rows, b.String())
	}
	return strings.Join(rows, "\n")
}

// RenderHUD renders the heads-up display showing player info and game status.
func RenderHUD(state *game.Snapshot, myID, notice string) string {
	if state == nil {
		return ""
	}

	var parts []string
	parts = append(parts, titleStyle.Render("BATTLE CITY"))
	parts = append(parts, dimStyle.Render("Stage: "+state.Level))
	parts = append(parts, "")

	switch state.Status {
	case game.StatusLobby:
		parts = append(parts, lobbyStyle.Render("LOBBY - Waiting for players..."))
		parts = append(parts, "   Press [Enter] to start!")
	case game.StatusRunning:
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Render("BATTLE IN PROGRESS"))
		if state.Frozen {
			parts = append(parts, lobbyStyle.Render("Enemies frozen"))
		}
	case game.StatusOver:
		if state.Winner == game.TeamPlayers {
			parts = append(parts, winnerStyle.Render("STAGE CLEAR!"))
		} else {
			parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Bold(true).Render("GAME OVER"))
		}
	}
	parts = append(parts, "")
	parts = append(parts, fmt.Sprintf("Enemies left: %d", state.EnemiesLeft))
	parts = append(parts, "")

	parts = append(parts, dimStyle.Render("Players:"))
	for _, p := range state.Players {
		nameStyle := lipgloss.NewStyle().Foreground(ownerColors[p.Owner])
		status := "  "
		switch {
		case p.Out:
			status = "xx"
			nameStyle = dimStyle.Strikethrough(true)
		case p.Alive:
			status = "▲ "
		}
		marker := "  "
		if p.ID == myID {
			marker = "> "
		}
		parts = append(parts, fmt.Sprintf("%s%s %s %s [lives %d, level %d]",
			marker, status, p.Owner, nameStyle.Render(p.Name), p.Lives, p.Level))
	}

	if notice != "" {
		parts = append(parts, "", lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaa00")).Render(notice))
	}

	parts = append(parts, "")
	parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("#555555")).Render("WASD/Arrows: Move | Space/J: Fire | K: Stop | Q: Quit"))

	return hudBorderStyle.Render(strings.Join(parts, "\n"))
}
