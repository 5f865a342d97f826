package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tomz197/typefall/internal/draw"
	"github.com/tomz197/typefall/internal/leaderboard"
	"github.com/tomz197/typefall/internal/loop"
	"github.com/tomz197/typefall/internal/object"
	"github.com/tomz197/typefall/internal/stats"
)

// boardRows is how many leaderboard entries fit on screen.
const boardRows = 10

const (
	colorPrimary   = lipgloss.Color("#6366f1")
	colorSecondary = lipgloss.Color("#ec4899")
	colorGreen     = lipgloss.Color("#10b981")
	colorRed       = lipgloss.Color("#f87171")
	colorWhite     = lipgloss.Color("#ffffff")
	colorLight     = lipgloss.Color("#f3f4f6")
	colorSlate     = lipgloss.Color("#94a3b8")
	colorIndigo    = lipgloss.Color("#a5b4fc")
	colorGray      = lipgloss.Color("#6b7280")
	colorDark      = lipgloss.Color("#374151")
	colorGold      = lipgloss.Color("#facc15")
)

// styleID indexes the styles used on the survival field.
type styleID uint8

const (
	styleNone styleID = iota
	styleWord
	styleWordTarget
	styleWordTyped
	styleCursor
	styleParticleTarget
	styleParticleComplete
	styleGround
	styleHUD
	styleLife
	styleLifeLost
	styleHint
	styleCount
)

// styles holds every style of one connection, bound to its renderer so
// colors match the remote terminal.
type styles struct {
	field [styleCount]lipgloss.Style

	title     lipgloss.Style
	subtitle  lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	selected  lipgloss.Style
	hint      lipgloss.Style
	box       lipgloss.Style
	correct   lipgloss.Style
	incorrect lipgloss.Style
	untyped   lipgloss.Style
	cursor    lipgloss.Style
	wpm       lipgloss.Style
	errors    lipgloss.Style
	player    lipgloss.Style
	warn      lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	s := styles{
		title:     r.NewStyle().Foreground(colorPrimary).Bold(true),
		subtitle:  r.NewStyle().Foreground(colorSlate),
		label:     r.NewStyle().Foreground(colorGray),
		value:     r.NewStyle().Foreground(colorLight).Bold(true),
		selected:  r.NewStyle().Foreground(colorWhite).Background(colorPrimary).Bold(true),
		hint:      r.NewStyle().Foreground(colorGray),
		box:       r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDark).Padding(1, 3),
		correct:   r.NewStyle().Foreground(colorLight),
		incorrect: r.NewStyle().Foreground(colorRed).Underline(true),
		untyped:   r.NewStyle().Foreground(colorGray),
		cursor:    r.NewStyle().Foreground(colorWhite).Background(colorPrimary),
		wpm:       r.NewStyle().Foreground(colorPrimary).Bold(true),
		errors:    r.NewStyle().Foreground(colorRed).Bold(true),
		player:    r.NewStyle().Foreground(colorGold).Bold(true),
		warn:      r.NewStyle().Foreground(colorSecondary).Bold(true),
	}
	s.field[styleNone] = r.NewStyle()
	s.field[styleWord] = r.NewStyle().Foreground(colorSlate).Bold(true)
	s.field[styleWordTarget] = r.NewStyle().Foreground(colorWhite).Bold(true)
	s.field[styleWordTyped] = r.NewStyle().Foreground(colorGreen).Bold(true)
	s.field[styleCursor] = r.NewStyle().Foreground(colorWhite).Bold(true).Underline(true)
	s.field[styleParticleTarget] = r.NewStyle().Foreground(colorPrimary)
	s.field[styleParticleComplete] = r.NewStyle().Foreground(colorGreen)
	s.field[styleGround] = r.NewStyle().Foreground(colorDark)
	s.field[styleHUD] = r.NewStyle().Foreground(colorLight).Bold(true)
	s.field[styleLife] = r.NewStyle().Foreground(colorSecondary)
	s.field[styleLifeLost] = r.NewStyle().Foreground(colorDark)
	s.field[styleHint] = r.NewStyle().Foreground(colorGray)
	return s
}

// cellGrid is a terminal-sized block of styled characters. Rows render to
// full-width lines, so a frame overwrites everything the previous one drew.
type cellGrid struct {
	w, h  int
	runes []rune
	ids   []styleID
}

func newCellGrid(w, h int) *cellGrid {
	g := &cellGrid{w: w, h: h, runes: make([]rune, w*h), ids: make([]styleID, w*h)}
	for i := range g.runes {
		g.runes[i] = ' '
	}
	return g
}

// set places r at 0-based (x, y). Out-of-range cells are ignored.
func (g *cellGrid) set(x, y int, r rune, id styleID) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return
	}
	g.runes[y*g.w+x] = r
	g.ids[y*g.w+x] = id
}

func (g *cellGrid) text(x, y int, s string, id styleID) {
	for _, r := range s {
		g.set(x, y, r, id)
		x++
	}
}

// lines renders each row, styling runs of equal style together.
func (g *cellGrid) lines(st *styles) []string {
	out := make([]string, g.h)
	var sb, run strings.Builder
	for y := 0; y < g.h; y++ {
		sb.Reset()
		row := y * g.w
		for x := 0; x < g.w; {
			id := g.ids[row+x]
			run.Reset()
			for x < g.w && g.ids[row+x] == id {
				run.WriteRune(g.runes[row+x])
				x++
			}
			if id == styleNone {
				sb.WriteString(run.String())
			} else {
				sb.WriteString(st.field[id].Render(run.String()))
			}
		}
		out[y] = sb.String()
	}
	return out
}

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	// On screen or inactivity transitions, do a full terminal clear
	// so UI elements from the previous screen don't persist.
	if c.state.Screen != c.state.prevScreen || c.state.isInactive != c.state.wasInactive {
		c.chunkWriter.Clear()
		c.state.prevScreen = c.state.Screen
		c.state.wasInactive = c.state.isInactive
	}

	for i, line := range c.render() {
		c.chunkWriter.WriteAt(1, i+1, line)
	}
	return c.chunkWriter.Flush()
}

// render returns the frame as terminal lines.
func (c *Client) render() []string {
	var view string
	switch {
	case c.state.Screen == ScreenShutdown:
		view = c.viewShutdown()
	case c.state.isInactive:
		view = c.viewInactive()
	default:
		switch c.state.Screen {
		case ScreenMenu:
			view = c.viewMenu()
		case ScreenLoading:
			view = c.viewLoading()
		case ScreenPlaying:
			snap := c.server.GetSnapshot(c.handle.ID)
			switch {
			case snap == nil:
				view = c.viewLoading()
			case snap.Classic != nil:
				view = c.viewClassic(snap.Classic)
			default:
				return renderSurvival(&c.styles, snap, c.width, c.height)
			}
		case ScreenFinished:
			view = c.viewResult()
		case ScreenLeaderboard:
			view = c.viewLeaderboard()
		}
	}
	placed := lipgloss.Place(c.width, c.height, lipgloss.Center, lipgloss.Center, view)
	return strings.Split(placed, "\n")
}

// renderSurvival draws the falling-word field scaled to the terminal, with
// a HUD on the top row and the ground on the bottom row.
func renderSurvival(st *styles, snap *loop.Snapshot, w, h int) []string {
	g := newCellGrid(w, h)
	if h < 3 {
		return g.lines(st)
	}

	g.text(1, 0, fmt.Sprintf("SCORE %d", snap.Score), styleHUD)
	hint := "esc menu"
	g.text((w-len(hint))/2, 0, hint, styleHint)
	for i := 0; i < snap.MaxLives; i++ {
		id := styleLife
		if i >= snap.Lives {
			id = styleLifeLost
		}
		g.set(w-2*(snap.MaxLives-i), 0, '♥', id)
	}

	vp := draw.Viewport{
		Col:           1,
		Row:           2,
		Cols:          w,
		Rows:          h - 2,
		LogicalWidth:  snap.Canvas.Width,
		LogicalHeight: snap.Canvas.Height,
	}

	for _, p := range snap.Particles {
		col, row, ok := vp.Cell(p.X, p.Y)
		if !ok {
			continue
		}
		id := styleParticleComplete
		if p.Color == object.ColorTarget {
			id = styleParticleTarget
		}
		g.set(col-1, row-1, draw.ShadeLevel(p.Opacity), id)
	}

	for _, wv := range snap.Words {
		col, row, ok := vp.Cell(wv.X, wv.Y)
		if !ok {
			continue
		}
		runes := []rune(wv.Text)
		start := vp.ClampCol(col, len(runes)) - 1
		for i, r := range runes {
			id := styleWord
			switch {
			case wv.Target && i < wv.Typed:
				id = styleWordTyped
			case wv.Target && i == wv.Typed:
				id = styleCursor
			case wv.Target:
				id = styleWordTarget
			}
			g.set(start+i, row-1, r, id)
		}
	}

	for x := 0; x < w; x++ {
		g.set(x, h-1, '─', styleGround)
	}
	return g.lines(st)
}

var titleArt = []string{
	` _____ _   _ ___ ___ ___ _   _    _    `,
	`|_   _| | | | _ \ __| __/_\ | |  | |   `,
	`  | | | |_| |  _/ _|| _/ _ \| |__| |__ `,
	`  |_|  \__, |_| |___|_/_/ \_\____|____|`,
	`       |___/                           `,
}

// viewMenu draws the title and the game selection.
func (c *Client) viewMenu() string {
	st := &c.styles
	sel := c.state.Selection

	rows := []struct {
		field menuField
		label string
		value string
	}{
		{fieldMode, "Mode", sel.Mode.String()},
		{fieldTopic, "Topic", sel.Topic.String()},
		{fieldDifficulty, "Difficulty", sel.Difficulty.String()},
	}
	var menu []string
	for _, r := range rows {
		value := fmt.Sprintf("‹ %-20s ›", r.value)
		if r.field == c.state.field {
			value = st.selected.Render(value)
		} else {
			value = st.value.Render(value)
		}
		menu = append(menu, st.label.Render(fmt.Sprintf("%-12s", r.label))+value)
	}

	desc := "Type the falling words before they hit the ground."
	if sel.Mode == stats.ModeClassic {
		desc = "Type the text from start to finish as fast as you can."
	}

	parts := []string{
		st.title.Render(strings.Join(titleArt, "\n")),
		st.subtitle.Render("~ typing practice over SSH ~"),
		"",
		lipgloss.JoinVertical(lipgloss.Left, menu...),
		"",
		st.subtitle.Render(desc),
	}
	if c.state.notice != "" {
		parts = append(parts, st.warn.Render(c.state.notice))
	}
	parts = append(parts, "",
		st.hint.Render("↑↓ select   ←→ change   tab mode   enter start   l scores   ctrl+c quit"),
	)
	return lipgloss.JoinVertical(lipgloss.Center, parts...)
}

func (c *Client) viewLoading() string {
	st := &c.styles
	dots := strings.Repeat(".", int(time.Now().UnixMilli()/400%4))
	sel := c.state.Selection
	return lipgloss.JoinVertical(lipgloss.Center,
		st.title.Render(fmt.Sprintf("Preparing %s%-3s", sel.Topic, dots)),
		"",
		st.hint.Render("esc cancel"),
	)
}

// viewClassic draws the text with per-character marks, the live figures
// and a progress bar.
func (c *Client) viewClassic(v *loop.ClassicView) string {
	st := &c.styles
	width := min(72, max(20, c.width-8))

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		st.label.Render("WPM "), st.wpm.Render(fmt.Sprintf("%-6d", v.WPM)),
		st.label.Render("ERRORS "), st.errors.Render(fmt.Sprintf("%-6d", v.Errors)),
	)

	filled := int(v.Progress * float64(width))
	bar := st.wpm.Render(strings.Repeat("━", filled)) +
		st.label.Render(strings.Repeat("─", width-filled))

	var lines []string
	for _, span := range wrapRunes(v.Text, width) {
		var sb strings.Builder
		for i := span[0]; i < span[1]; i++ {
			sb.WriteString(c.classicChar(v, i))
		}
		lines = append(lines, sb.String())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		bar,
		"",
		st.box.Width(width+6).Render(strings.Join(lines, "\n")),
		"",
		st.hint.Render("tab restart   esc menu"),
	)
}

func (c *Client) classicChar(v *loop.ClassicView, i int) string {
	st := &c.styles
	r := string(v.Text[i])
	switch {
	case i == v.Cursor:
		return st.cursor.Render(r)
	case v.Marks[i] == loop.MarkCorrect:
		return st.correct.Render(r)
	case v.Marks[i] == loop.MarkIncorrect:
		if r == " " {
			r = "_"
		}
		return st.incorrect.Render(r)
	default:
		return st.untyped.Render(r)
	}
}

// wrapRunes splits text into [start, end) spans no wider than width,
// breaking after spaces where possible. Spaces stay in the spans so every
// character keeps its position.
func wrapRunes(text []rune, width int) [][2]int {
	var spans [][2]int
	start := 0
	for start < len(text) {
		end := start + width
		if end >= len(text) {
			spans = append(spans, [2]int{start, len(text)})
			break
		}
		brk := end
		for i := end; i > start; i-- {
			if text[i-1] == ' ' {
				brk = i
				break
			}
		}
		spans = append(spans, [2]int{start, brk})
		start = brk
	}
	return spans
}

// viewResult draws the result card of the last game.
func (c *Client) viewResult() string {
	st := &c.styles
	out := c.state.last
	if out == nil {
		return ""
	}
	rec := out.record

	title, sub := "Session Complete!", "Great typing!"
	var figures []string
	if rec.Mode == stats.ModeSurvival {
		title, sub = "Game Over!", "You fought bravely."
		figures = []string{
			figure(st, fmt.Sprint(rec.Score), "FINAL SCORE"),
			figure(st, fmt.Sprint(rec.WPM), "AVG WPM"),
		}
	} else {
		figures = []string{
			figure(st, fmt.Sprint(rec.WPM), "WPM"),
			figure(st, fmt.Sprintf("%d%%", rec.Accuracy), "ACCURACY"),
			figure(st, fmt.Sprintf("%ds", rec.Elapsed), "TIME"),
		}
	}

	parts := []string{
		st.title.Render(title),
		st.subtitle.Render(sub),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, figures...),
		"",
		st.label.Render(fmt.Sprintf("accuracy %d%%   errors %d   keystrokes %d   time %ds",
			rec.Accuracy, rec.Errors, rec.Total, rec.Elapsed)),
	}
	if c.board != nil {
		parts = append(parts, "")
		if out.rank > 0 {
			parts = append(parts, st.value.Render(fmt.Sprintf("You are ranked #%d on the leaderboard.", out.rank)))
		}
		parts = append(parts, st.subtitle.Render(fmt.Sprintf("Better than or equal to %d%% of players.", out.percentile)))
	}

	again := "enter play again"
	if rec.Mode == stats.ModeSurvival {
		again = "enter try again"
	}
	parts = append(parts, "", st.hint.Render(again+"   l scores   esc menu"))

	return st.box.Render(lipgloss.JoinVertical(lipgloss.Center, parts...))
}

func figure(st *styles, value, label string) string {
	return lipgloss.NewStyle().Padding(0, 3).Render(lipgloss.JoinVertical(lipgloss.Center,
		st.wpm.Render(value),
		st.label.Render(label),
	))
}

// viewLeaderboard draws the top entries of the selected board.
func (c *Client) viewLeaderboard() string {
	st := &c.styles
	key := c.state.boardKey

	header := fmt.Sprintf("%s · %s · %s", key.Mode, key.Topic, key.Difficulty)
	parts := []string{st.title.Render("LEADERBOARD"), st.subtitle.Render(header), ""}

	var entries []leaderboard.Entry
	if c.board != nil {
		entries = c.board.Entries(key)
	}
	if len(entries) == 0 {
		parts = append(parts, st.label.Render("No scores yet. Be the first!"))
	} else {
		scoreCol, statCol := "SCORE", "WPM"
		if key.Mode == stats.ModeClassic {
			scoreCol, statCol = "WPM", "ACC"
		}
		parts = append(parts, st.label.Render(fmt.Sprintf("%-4s %-16s %7s %5s  %s", "#", "NAME", scoreCol, statCol, "DATE")))
		var mine int
		if out := c.state.last; out != nil && out.key == key {
			mine = out.rank
		}
		for i, e := range entries[:min(len(entries), boardRows)] {
			line := fmt.Sprintf("%-4d %-16s %7d %5d  %s", i+1, truncate(e.Name, 16), e.Score, e.Secondary,
				e.Date.Format("2006-01-02"))
			if i+1 == mine {
				line = st.player.Render(line)
			} else {
				line = st.correct.Render(line)
			}
			parts = append(parts, line)
		}
	}
	parts = append(parts, "", st.hint.Render("←→ difficulty   esc back"))
	return st.box.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// viewInactive draws the inactivity warning screen.
func (c *Client) viewInactive() string {
	st := &c.styles
	left := c.cfg.Client.InactivityDisconnect - time.Since(c.lastInput)
	return lipgloss.JoinVertical(lipgloss.Center,
		st.warn.Render("INACTIVITY WARNING"),
		"",
		st.correct.Render(fmt.Sprintf(
			"You have been inactive for too long. You will be disconnected in %d seconds.",
			int(max(0, left.Seconds())),
		)),
		"",
		st.hint.Render("Press any key to continue"),
	)
}

// viewShutdown draws the server shutdown notification screen.
func (c *Client) viewShutdown() string {
	st := &c.styles
	remaining := int(c.state.shutdownTimer.Seconds()) + 1
	return lipgloss.JoinVertical(lipgloss.Center,
		st.warn.Render("SERVER SHUTTING DOWN"),
		"",
		st.correct.Render("The server is restarting for maintenance."),
		st.correct.Render("Please reconnect in a moment."),
		"",
		st.subtitle.Render(fmt.Sprintf("Disconnecting in %d seconds...", remaining)),
		"",
		st.hint.Render("Press Q to disconnect now"),
	)
}
