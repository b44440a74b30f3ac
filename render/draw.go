package render

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/lixenwraith/brakezone/physics"
)

const (
	minWidth  = 60
	minHeight = 24

	colsPerMetre = 4.0
	rowsPerMetre = 1.0
	roadHalf     = 3.0 // metres from lane axis to curb
	viewBehind   = 3   // rows drawn below the front bumper
)

var (
	styleDefault = tcell.StyleDefault
	styleRoad    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleLane    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleCar     = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleParked  = tcell.StyleDefault.Foreground(tcell.ColorDarkCyan)
	styleChild   = tcell.StyleDefault.Foreground(tcell.ColorOrangeRed).Bold(true)
	styleHit     = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleBrake   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorRed).Bold(true)
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleWarn    = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
)

// drawText writes text at x,y advancing by display width, returns the next column
func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) int {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
	return x
}

func drawCentered(s tcell.Screen, w, y int, style tcell.Style, text string) {
	x := (w - runewidth.StringWidth(text)) / 2
	if x < 0 {
		x = 0
	}
	drawText(s, x, y, style, text)
}

// project maps world x,z to a cell; ok is false when off screen
func (t *Terminal) project(w, h int, x, z float64) (col, row int, ok bool) {
	bumperZ := t.cameraZ - physics.VehicleFrontLength
	ahead := bumperZ - z
	row = h - 1 - viewBehind - int(math.Round(ahead*rowsPerMetre))
	col = w/2 + int(math.Round(x*colsPerMetre))
	return col, row, row >= 2 && row < h && col >= 0 && col < w
}

func (t *Terminal) drawRoad(w, h int) {
	left := w/2 - int(roadHalf*colsPerMetre)
	right := w/2 + int(roadHalf*colsPerMetre)

	// Lane dashes scroll with the camera
	offset := int(math.Floor(-t.cameraZ*rowsPerMetre)) % 4
	for y := 2; y < h; y++ {
		t.screen.SetContent(left, y, '│', nil, styleRoad)
		t.screen.SetContent(right, y, '│', nil, styleRoad)
		if (y+offset)%4 < 2 {
			t.screen.SetContent(w/2, y, '╎', nil, styleLane)
		}
	}

	for _, car := range t.scenery {
		col, row, ok := t.project(w, h, car.X, car.Z)
		if !ok {
			continue
		}
		for dy := -1; dy <= 1; dy++ {
			if r := row + dy; r >= 2 && r < h {
				t.screen.SetContent(col, r, '▓', nil, styleParked)
			}
		}
	}

	// Ego vehicle, bumper row first
	frontRow := h - 1 - viewBehind
	half := int(physics.VehicleHalfWidth * colsPerMetre)
	for dy := 0; dy <= viewBehind; dy++ {
		ch := '█'
		if dy == 0 {
			ch = '▀'
		}
		for dx := -half; dx <= half; dx++ {
			t.screen.SetContent(w/2+dx, frontRow+dy, ch, nil, styleCar)
		}
	}

	if !t.pedestrian.visible {
		return
	}
	col, row, ok := t.project(w, h, t.pedestrian.x, t.pedestrian.z)
	if !ok {
		return
	}
	glyph, style := '@', styleChild
	switch {
	case t.pedestrian.hit:
		glyph, style = 'X', styleHit
	case t.pedestrian.pose.LeftLeg > 0:
		glyph = '&'
	}
	t.screen.SetContent(col, row, glyph, nil, style)
}

func (t *Terminal) drawHUD(w int) {
	x := drawText(t.screen, 1, 0, styleDefault, fmt.Sprintf("Speed %5.1f km/h", t.hud.SpeedKmh))
	x = drawText(t.screen, x+3, 0, styleDefault, fmt.Sprintf("Distance %6.1f m", t.hud.Distance))
	if t.hud.Clearance != nil {
		style := styleDefault
		if *t.hud.Clearance < 2 {
			style = styleWarn
		}
		drawText(t.screen, x+3, 0, style, fmt.Sprintf("Gap %5.1f m", *t.hud.Clearance))
	}

	if t.hud.Braking {
		style := styleBrake
		if t.now().Sub(t.brakeAt) > brakeFlash {
			style = styleWarn
		}
		drawText(t.screen, w-8, 0, style, " BRAKE ")
	}
	if t.muted {
		drawText(t.screen, w-8, 1, styleDim, "muted")
	}
}

func (t *Terminal) drawIdle(w, h int) {
	y := h/2 - 6
	drawCentered(t.screen, w, y, styleTitle, "SCHOOL ZONE 20 km/h")
	drawCentered(t.screen, w, y+2, styleDefault, "Enter start   Space brake   r restart   q quit")
	drawCentered(t.screen, w, y+3, styleDim, "Someone may run out between the parked cars")
	t.drawBoard(w, y+5)
}

func (t *Terminal) drawResult(w, h int) {
	o := t.outcome
	r := o.Result
	y := h/2 - 8

	drawCentered(t.screen, w, y, styleTitle, fmt.Sprintf("Score %d  (%s)", r.Score, r.Grade))
	drawCentered(t.screen, w, y+1, styleDefault, r.Message)

	lines := []string{fmt.Sprintf("Speed at brake  %5.1f km/h", o.SpeedKmh)}
	switch {
	case o.Disqualified:
		lines = append(lines, "Reaction time   disqualified")
	case o.ReactionTime != nil:
		lines = append(lines,
			fmt.Sprintf("Reaction time   %5.2f s", *o.ReactionTime),
			fmt.Sprintf("Reaction dist.  %5.2f m", o.ReactionDistance),
		)
	default:
		lines = append(lines, "Reaction time   no brake")
	}
	if !o.Disqualified {
		lines = append(lines,
			fmt.Sprintf("Stopping dist.  %5.2f m", o.StoppingDistance),
			fmt.Sprintf("Safety margin   %5.2f m", r.SafetyMargin),
		)
	}
	if o.FinalClearance != nil {
		lines = append(lines, fmt.Sprintf("Final gap       %5.2f m", *o.FinalClearance))
	}
	for i, l := range lines {
		drawCentered(t.screen, w, y+3+i, styleDim, l)
	}

	next := y + 4 + len(lines)
	t.drawBoard(w, next)
	drawCentered(t.screen, w, next+len(t.board)+2, styleDefault, "Enter try again   q quit")
}

func (t *Terminal) drawBoard(w, y int) {
	if len(t.board) == 0 {
		return
	}
	drawCentered(t.screen, w, y, styleWarn, "TOP DRIVERS")
	for i, rec := range t.board {
		rt := "  -  "
		if rec.ReactionTime != nil {
			rt = fmt.Sprintf("%.2fs", *rec.ReactionTime)
		}
		name := rec.Name
		if rec.ClassName != "" {
			name += " (" + rec.ClassName + ")"
		}
		line := fmt.Sprintf("%d. %-28s %3d  %s", i+1, runewidth.Truncate(name, 28, "~"), rec.Score, rt)
		drawCentered(t.screen, w, y+1+i, styleDefault, line)
	}
}
