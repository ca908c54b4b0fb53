package chart

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"phewasview/internal/render"
)

var (
	white     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	textColor = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	missingBg = color.RGBA{R: 235, G: 235, B: 235, A: 255}
	hatch     = color.RGBA{R: 170, G: 170, B: 170, A: 255}
)

const (
	panelGap    = 16
	titleHeight = 28
	labelWidth  = 180
	headerRows  = 18
	maxLabelLen = 26
)

// heatmap draws the four panels as a 2x2 grid. Missing cells are hatched
// grey so they never read as a low value.
func (r *Renderer) heatmap(w io.Writer, fig render.Figure) error {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	drawText(img, fig.Title, panelGap, 18)

	panelW := (r.Width - 3*panelGap) / 2
	panelH := (r.Height - titleHeight - 3*panelGap) / 2
	for i, panel := range fig.Panels {
		if i >= 4 {
			break
		}
		x0 := panelGap + (i%2)*(panelW+panelGap)
		y0 := titleHeight + panelGap + (i/2)*(panelH+panelGap)
		drawPanel(img, panel, image.Rect(x0, y0, x0+panelW, y0+panelH), fig.ColorMin, fig.ColorMax)
	}
	return png.Encode(w, img)
}

func drawPanel(img *image.RGBA, panel render.HeatmapPanel, area image.Rectangle, lo, hi float64) {
	drawText(img, panel.Title, area.Min.X, area.Min.Y+12)
	if panel.IsEmpty() {
		drawText(img, render.NoDataMessage, area.Min.X, area.Min.Y+40)
		return
	}

	gridX := area.Min.X + labelWidth
	gridY := area.Min.Y + headerRows + 12
	cellW := max(1, (area.Max.X-gridX)/len(panel.Columns))
	cellH := max(1, (area.Max.Y-gridY)/len(panel.Rows))

	for j, gene := range panel.Columns {
		drawText(img, truncate(gene, cellW/7), gridX+j*cellW+2, gridY-4)
	}
	for i, desc := range panel.Rows {
		y := gridY + i*cellH
		if cellH >= 10 {
			drawText(img, truncate(desc, maxLabelLen), area.Min.X, y+cellH/2+4)
		}
		for j := range panel.Columns {
			cell := image.Rect(gridX+j*cellW, y, gridX+(j+1)*cellW-1, y+cellH-1)
			v := panel.Cells[i][j]
			if v == nil {
				drawMissing(img, cell)
				continue
			}
			draw.Draw(img, cell, image.NewUniform(viridis(*v, lo, hi)), image.Point{}, draw.Src)
		}
	}
}

// drawMissing fills a cell with diagonal hatching
func drawMissing(img *image.RGBA, cell image.Rectangle) {
	draw.Draw(img, cell, image.NewUniform(missingBg), image.Point{}, draw.Src)
	for y := cell.Min.Y; y < cell.Max.Y; y++ {
		for x := cell.Min.X; x < cell.Max.X; x++ {
			if (x+y)%6 == 0 {
				img.Set(x, y, hatch)
			}
		}
	}
}

func drawText(img *image.RGBA, text string, x, y int) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

func truncate(s string, n int) string {
	if n <= 1 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}

// writeMessage renders a blank canvas carrying a title and a message
func writeMessage(w io.Writer, width, height int, title, message string) error {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	if strings.TrimSpace(title) != "" {
		drawText(img, title, panelGap, 18)
	}
	msgWidth := font.MeasureString(basicfont.Face7x13, message).Ceil()
	drawText(img, message, (width-msgWidth)/2, height/2)
	return png.Encode(w, img)
}
