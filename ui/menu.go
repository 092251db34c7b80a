package ui

import (
	"strconv"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// MenuData is one splash or menu screen.
type MenuData struct {
	Title     string
	Score     int
	ShowScore bool
	Buttons   []string
}

// Menu draws splash and menu screens.
type Menu struct {
	renderer *Renderer
}

// NewMenu creates a menu drawer.
func NewMenu() *Menu {
	return &Menu{renderer: NewRenderer()}
}

// Draw renders the screen and returns the index of the clicked button, or -1.
func (m *Menu) Draw(data MenuData, width, height int32) int {
	r := m.renderer
	rows := len(data.Buttons)
	contentH := r.Theme.TitleFontSize + int32(rows)*(int32(r.Theme.ButtonHeight)+r.Theme.Padding)
	if data.ShowScore {
		contentH += 25 + 50 + 2*r.Theme.Padding
	}
	y := max((height-contentH)/2, r.Theme.Padding)

	if data.Title != "" {
		y = r.DrawCentered(data.Title, y, r.Theme.TitleFontSize, width, r.Theme.TitleColor)
	}
	if data.ShowScore {
		y = r.DrawCentered("Score", y, 25, width, r.Theme.LabelColor)
		y = r.DrawCentered(strconv.Itoa(data.Score), y, 50, width, r.Theme.ValueColor)
	}

	clicked := -1
	by := float32(y + r.Theme.Padding)
	for i, label := range data.Buttons {
		if r.Button(by, width, label) && clicked < 0 {
			clicked = i
		}
		by += r.Theme.ButtonHeight + float32(r.Theme.Padding)
	}
	return clicked
}

// DrawBackground clears the screen with the theme background.
func (m *Menu) DrawBackground() {
	rl.ClearBackground(m.renderer.Theme.Background)
}
