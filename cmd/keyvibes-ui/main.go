package main

import (
	"fmt"
	"image"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	keyvibes "github.com/yosxke/Keyvibes"
	"github.com/yosxke/Keyvibes/internal/config"
	"github.com/yosxke/Keyvibes/internal/pack"
)

const (
	windowW = 640
	windowH = 560

	textScale = 2
	charW     = 7 * textScale
	lineH     = 14 * textScale
)

var (
	bgColor     = color.RGBA{192, 192, 192, 255}
	panelColor  = color.RGBA{192, 192, 192, 255}
	borderColor = color.RGBA{128, 128, 128, 255}

	// 3D bevel colors for old-school embossed look.
	bevelLight  = color.RGBA{255, 255, 255, 255}
	bevelDarker = color.RGBA{64, 64, 64, 255}

	sunkenBgColor  = color.RGBA{24, 24, 32, 255}
	highlightColor = color.RGBA{0, 0, 128, 255}

	sliderFillColor = color.RGBA{0, 0, 128, 255}
)

type game struct {
	engine *keyvibes.Engine
	mixer  *keyvibes.Mixer
	store  *pack.DirStore

	soundsDir  string
	driverName string

	packs      []string
	packScroll int

	enabled        bool
	draggingVolume bool

	status    string
	statusErr bool

	textCache map[string]*ebiten.Image
}

func newGame(e *keyvibes.Engine, m *keyvibes.Mixer, store *pack.DirStore, r *config.Resolved) *game {
	g := &game{
		engine:     e,
		mixer:      m,
		store:      store,
		soundsDir:  r.SoundsDir,
		driverName: r.Driver,
		enabled:    r.Enabled,
		status:     "Ready",
		textCache:  make(map[string]*ebiten.Image, 256),
	}
	if err := g.refreshPacks(); err != nil {
		g.setError(err.Error())
		return g
	}

	name := r.Pack
	if name == "" && len(g.packs) > 0 {
		name = g.packs[0]
	}
	if name != "" {
		if err := e.LoadPack(name); err != nil {
			g.setError(err.Error())
		} else {
			g.setStatus("Loaded " + name)
		}
	}
	return g
}

func (g *game) refreshPacks() error {
	names, err := g.store.Packs()
	if err != nil {
		return err
	}
	g.packs = names
	return nil
}

func (g *game) Update() error {
	g.handleTyping()
	g.handleMouse()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)

	l := g.layoutRects()

	g.drawSunkenPanel(screen, l.packs)
	g.drawText(screen, "Packs", l.packs.Min.X+8, l.packs.Min.Y+8)
	g.drawPackList(screen, l.packs)

	g.drawVolumeSlider(screen, l.volume)
	g.drawButton(screen, l.enabled, g.enabledLabel())

	cats := keyvibes.Categories()
	for i, rect := range l.cats {
		g.drawButton(screen, rect, cats[i].String())
	}

	g.drawSunkenPanel(screen, l.hint)
	g.drawText(screen, "Type to preview keys", l.hint.Min.X+8, l.hint.Min.Y+8)

	g.drawSunkenPanel(screen, l.status)
	g.drawStatus(screen, l.status)
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	return windowW, windowH
}

type uiLayout struct {
	packs   image.Rectangle
	volume  image.Rectangle
	enabled image.Rectangle
	cats    []image.Rectangle
	hint    image.Rectangle
	status  image.Rectangle
}

func (g *game) layoutRects() uiLayout {
	pad := 16
	statusH := 36
	statusTop := windowH - pad - statusH

	packsW := 230
	packsRect := image.Rect(pad, pad, pad+packsW, statusTop-8)

	rightX := packsRect.Max.X + 12
	rightW := windowW - rightX - pad
	rowH := 40
	volumeRect := image.Rect(rightX, pad, rightX+rightW, pad+rowH)
	enabledRect := image.Rect(rightX, volumeRect.Max.Y+8, rightX+170, volumeRect.Max.Y+8+rowH)

	cats := keyvibes.Categories()
	catRects := make([]image.Rectangle, len(cats))
	catTop := enabledRect.Max.Y + 12
	catH := 32
	for i := range cats {
		y := catTop + i*(catH+6)
		catRects[i] = image.Rect(rightX, y, rightX+190, y+catH)
	}

	hintTop := catTop + len(cats)*(catH+6) + 8
	hintRect := image.Rect(rightX, hintTop, rightX+rightW, statusTop-8)
	statusRect := image.Rect(pad, statusTop, windowW-pad, statusTop+statusH)

	return uiLayout{
		packs: packsRect, volume: volumeRect, enabled: enabledRect,
		cats: catRects, hint: hintRect, status: statusRect,
	}
}

func (g *game) handleTyping() {
	for _, k := range inpututil.AppendJustPressedKeys(nil) {
		name := mapKey(k)
		if name == "" {
			continue
		}
		g.engine.TriggerKey(name)
		g.setStatus(fmt.Sprintf("%s -> %s", name, keyvibes.ClassifyKey(name)))
	}
}

func (g *game) handleMouse() {
	mx, my := ebiten.CursorPosition()
	l := g.layoutRects()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		switch {
		case pointInRect(mx, my, l.volume):
			g.draggingVolume = true
			g.updateVolumeFromMouse(mx, l.volume)
			return
		case pointInRect(mx, my, l.enabled):
			g.toggleEnabled()
			return
		case pointInRect(mx, my, l.packs):
			g.clickPackList(my, l.packs)
			return
		default:
			for i, rect := range l.cats {
				if pointInRect(mx, my, rect) {
					g.engine.Trigger(keyvibes.Categories()[i])
					g.setStatus("Test " + keyvibes.Categories()[i].String())
					return
				}
			}
		}
	}
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if g.draggingVolume {
			g.draggingVolume = false
			g.saveSettings()
		}
	}
	if g.draggingVolume {
		g.updateVolumeFromMouse(mx, l.volume)
	}

	_, wy := ebiten.Wheel()
	if wy != 0 && pointInRect(mx, my, l.packs) {
		g.packScroll -= int(wy * 2)
		if g.packScroll < 0 {
			g.packScroll = 0
		}
	}
}

func (g *game) drawPackList(screen *ebiten.Image, rect image.Rectangle) {
	top := rect.Min.Y + 12 + lineH
	maxLines := (rect.Dy() - lineH - 18) / lineH
	if maxLines < 1 {
		maxLines = 1
	}
	if g.packScroll > len(g.packs)-1 {
		g.packScroll = max(0, len(g.packs)-1)
	}
	maxChars := max(8, (rect.Dx()-20)/charW)

	if len(g.packs) == 0 {
		g.drawText(screen, "no packs found", rect.Min.X+10, top)
		return
	}
	active := g.engine.Pack()
	for i := 0; i < maxLines; i++ {
		idx := g.packScroll + i
		if idx >= len(g.packs) {
			break
		}
		name := g.packs[idx]
		y := top + i*lineH
		if name == active {
			ebitenutil.DrawRect(screen, float64(rect.Min.X+6), float64(y-2), float64(rect.Dx()-12), float64(lineH+2), highlightColor)
		}
		g.drawText(screen, shortenEnd(name, maxChars-1), rect.Min.X+10, y)
	}
}

func (g *game) clickPackList(my int, rect image.Rectangle) {
	top := rect.Min.Y + 12 + lineH
	row := (my - top) / lineH
	if row < 0 {
		return
	}
	idx := g.packScroll + row
	if idx < 0 || idx >= len(g.packs) {
		return
	}
	name := g.packs[idx]
	if err := g.engine.LoadPack(name); err != nil {
		g.setError(err.Error())
		return
	}
	g.setStatus("Loaded " + name)
	g.saveSettings()
}

func (g *game) drawVolumeSlider(screen *ebiten.Image, rect image.Rectangle) {
	g.drawPanel(screen, rect)
	vol := g.mixer.Volume()
	label := fmt.Sprintf("Vol %d%%", int(vol*100+0.5))
	g.drawText(screen, label, rect.Min.X+8, rect.Min.Y+8)

	trackX := rect.Min.X + 120
	trackW := rect.Dx() - 136
	trackY := rect.Min.Y + rect.Dy()/2 - 4
	if trackW < 20 {
		return
	}
	ebitenutil.DrawRect(screen, float64(trackX), float64(trackY), float64(trackW), 8, bevelDarker)
	ebitenutil.DrawRect(screen, float64(trackX), float64(trackY), float64(trackW-1), 1, borderColor)
	ebitenutil.DrawRect(screen, float64(trackX), float64(trackY), 1, 7, borderColor)
	fillW := int(float64(trackW) * clamp(vol, 0, 1))
	if fillW > 2 {
		ebitenutil.DrawRect(screen, float64(trackX+1), float64(trackY+1), float64(fillW-1), 6, sliderFillColor)
	}
	knobX := trackX + fillW - 5
	if knobX < trackX-5 {
		knobX = trackX - 5
	}
	if knobX > trackX+trackW-5 {
		knobX = trackX + trackW - 5
	}
	knobRect := image.Rect(knobX, trackY-4, knobX+10, trackY+12)
	ebitenutil.DrawRect(screen, float64(knobRect.Min.X), float64(knobRect.Min.Y), float64(knobRect.Dx()), float64(knobRect.Dy()), panelColor)
	drawBorder(screen, knobRect)
}

func (g *game) updateVolumeFromMouse(mx int, rect image.Rectangle) {
	trackX := rect.Min.X + 120
	trackW := rect.Dx() - 136
	if trackW <= 0 {
		return
	}
	v := clamp(float64(mx-trackX)/float64(trackW), 0, 1)
	g.mixer.SetVolume(v)
	g.setStatus(fmt.Sprintf("Volume: %d%%", int(v*100+0.5)))
}

func (g *game) toggleEnabled() {
	g.enabled = !g.enabled
	g.engine.SetEnabled(g.enabled)
	if g.enabled {
		g.setStatus("Sounds on")
	} else {
		g.setStatus("Sounds off")
	}
	g.saveSettings()
}

func (g *game) enabledLabel() string {
	if g.enabled {
		return "Sounds: ON"
	}
	return "Sounds: OFF"
}

func (g *game) saveSettings() {
	vol := g.mixer.Volume()
	enabled := g.enabled
	err := config.Save(&config.Settings{
		Pack:      g.engine.Pack(),
		Volume:    &vol,
		Enabled:   &enabled,
		SoundsDir: g.soundsDir,
		Driver:    g.driverName,
	})
	if err != nil {
		g.setError(err.Error())
	}
}

func (g *game) drawStatus(screen *ebiten.Image, rect image.Rectangle) {
	msg := "Status: " + g.status
	if g.statusErr {
		msg = "Status: ERROR - " + g.status
	}
	maxChars := max(8, (rect.Dx()-16)/charW)
	g.drawText(screen, shortenEnd(msg, maxChars), rect.Min.X+8, rect.Min.Y+6)
}

func (g *game) setError(msg string) {
	g.status = msg
	g.statusErr = true
}

func (g *game) setStatus(msg string) {
	g.status = msg
	g.statusErr = false
}

// mapKey translates an ebiten key code into the engine's key name, or ""
// for keys that carry no sound.
func mapKey(k ebiten.Key) keyvibes.Key {
	switch {
	case k >= ebiten.KeyA && k <= ebiten.KeyZ:
		return keyvibes.Key(rune('a' + int(k-ebiten.KeyA)))
	case k >= ebiten.KeyDigit0 && k <= ebiten.KeyDigit9:
		return keyvibes.Key(rune('0' + int(k-ebiten.KeyDigit0)))
	case k >= ebiten.KeyF1 && k <= ebiten.KeyF12:
		return keyvibes.Key(fmt.Sprintf("f%d", int(k-ebiten.KeyF1)+1))
	}
	switch k {
	case ebiten.KeySpace:
		return keyvibes.KeySpace
	case ebiten.KeyEnter, ebiten.KeyNumpadEnter:
		return keyvibes.KeyEnter
	case ebiten.KeyBackspace:
		return keyvibes.KeyBackspace
	case ebiten.KeyTab:
		return keyvibes.KeyTab
	case ebiten.KeyEscape:
		return keyvibes.KeyEscape
	case ebiten.KeyCapsLock:
		return keyvibes.KeyCapsLock
	case ebiten.KeyShiftLeft:
		return keyvibes.KeyShift
	case ebiten.KeyShiftRight:
		return keyvibes.KeyShiftRight
	case ebiten.KeyControlLeft:
		return keyvibes.KeyCtrl
	case ebiten.KeyControlRight:
		return keyvibes.KeyCtrlRight
	case ebiten.KeyAltLeft:
		return keyvibes.KeyAlt
	case ebiten.KeyAltRight:
		return keyvibes.KeyAltRight
	case ebiten.KeyMetaLeft:
		return keyvibes.KeyCmd
	case ebiten.KeyMetaRight:
		return keyvibes.KeyCmdRight
	case ebiten.KeyArrowUp:
		return keyvibes.KeyUp
	case ebiten.KeyArrowDown:
		return keyvibes.KeyDown
	case ebiten.KeyArrowLeft:
		return keyvibes.KeyLeft
	case ebiten.KeyArrowRight:
		return keyvibes.KeyRight
	case ebiten.KeyHome:
		return keyvibes.KeyHome
	case ebiten.KeyEnd:
		return keyvibes.KeyEnd
	case ebiten.KeyPageUp:
		return keyvibes.KeyPageUp
	case ebiten.KeyPageDown:
		return keyvibes.KeyPageDown
	case ebiten.KeyInsert:
		return keyvibes.KeyInsert
	case ebiten.KeyDelete:
		return keyvibes.KeyDelete
	case ebiten.KeyComma:
		return ","
	case ebiten.KeyPeriod:
		return "."
	case ebiten.KeySlash:
		return "/"
	case ebiten.KeySemicolon:
		return ";"
	case ebiten.KeyApostrophe:
		return "'"
	case ebiten.KeyBracketLeft:
		return "["
	case ebiten.KeyBracketRight:
		return "]"
	case ebiten.KeyBackslash:
		return "\\"
	case ebiten.KeyMinus:
		return "-"
	case ebiten.KeyEqual:
		return "="
	case ebiten.KeyBackquote:
		return "`"
	}
	return ""
}

func (g *game) drawPanel(screen *ebiten.Image, rect image.Rectangle) {
	ebitenutil.DrawRect(screen, float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()), panelColor)
	drawBorder(screen, rect)
}

func (g *game) drawSunkenPanel(screen *ebiten.Image, rect image.Rectangle) {
	ebitenutil.DrawRect(screen, float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()), sunkenBgColor)
	drawSunkenBorder(screen, rect)
}

func (g *game) drawButton(screen *ebiten.Image, rect image.Rectangle, label string) {
	ebitenutil.DrawRect(screen, float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()), panelColor)
	drawBorder(screen, rect)
	labelW := len([]rune(label)) * charW
	x := rect.Min.X + (rect.Dx()-labelW)/2
	y := rect.Min.Y + (rect.Dy()-lineH)/2
	g.drawText(screen, label, x, y)
}

// drawBorder draws a raised 3D bevel (highlight top/left, shadow bottom/right).
func drawBorder(screen *ebiten.Image, rect image.Rectangle) {
	x := float64(rect.Min.X)
	y := float64(rect.Min.Y)
	w := float64(rect.Dx())
	h := float64(rect.Dy())
	ebitenutil.DrawRect(screen, x, y, w-1, 1, bevelLight)
	ebitenutil.DrawRect(screen, x, y+1, 1, h-2, bevelLight)
	ebitenutil.DrawRect(screen, x, y+h-1, w, 1, bevelDarker)
	ebitenutil.DrawRect(screen, x+w-1, y, 1, h, bevelDarker)
	ebitenutil.DrawRect(screen, x+1, y+h-2, w-3, 1, borderColor)
	ebitenutil.DrawRect(screen, x+w-2, y+1, 1, h-3, borderColor)
}

// drawSunkenBorder draws a sunken 3D bevel (shadow top/left, highlight bottom/right).
func drawSunkenBorder(screen *ebiten.Image, rect image.Rectangle) {
	x := float64(rect.Min.X)
	y := float64(rect.Min.Y)
	w := float64(rect.Dx())
	h := float64(rect.Dy())
	ebitenutil.DrawRect(screen, x, y, w-1, 1, borderColor)
	ebitenutil.DrawRect(screen, x, y+1, 1, h-2, borderColor)
	ebitenutil.DrawRect(screen, x, y+h-1, w, 1, bevelLight)
	ebitenutil.DrawRect(screen, x+w-1, y, 1, h, bevelLight)
	ebitenutil.DrawRect(screen, x+1, y+1, w-3, 1, bevelDarker)
	ebitenutil.DrawRect(screen, x+1, y+2, 1, h-4, bevelDarker)
}

func (g *game) drawText(screen *ebiten.Image, msg string, x int, y int) {
	if msg == "" {
		return
	}
	img := g.textCache[msg]
	if img == nil {
		w := max(1, len([]rune(msg))*7)
		img = ebiten.NewImage(w, 14)
		ebitenutil.DebugPrintAt(img, msg, 0, 0)
		if len(g.textCache) > 1000 {
			g.textCache = make(map[string]*ebiten.Image, 256)
		}
		g.textCache[msg] = img
	}
	opS := &ebiten.DrawImageOptions{}
	opS.GeoM.Scale(textScale, textScale)
	opS.GeoM.Translate(float64(x+2), float64(y+2))
	opS.ColorScale.Scale(0, 0, 0, 1)
	screen.DrawImage(img, opS)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(textScale, textScale)
	op.GeoM.Translate(float64(x), float64(y))
	screen.DrawImage(img, op)
}

func shortenEnd(s string, maxChars int) string {
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	if maxChars <= 3 {
		return string(r[:max(0, maxChars)])
	}
	return string(r[:maxChars-3]) + "..."
}

func clamp(v, minV, maxV float64) float64 {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}

func main() {
	r, err := config.Resolve()
	if err != nil {
		log.Fatal(err)
	}
	drv, err := keyvibes.ParseDriver(r.Driver)
	if err != nil {
		log.Fatal(err)
	}

	m := keyvibes.NewMixer(
		keyvibes.WithVolume(r.Volume),
		keyvibes.WithDriver(drv),
	)
	store := pack.NewDirStore(r.SoundsDir)
	e := keyvibes.NewEngine(store, m)
	e.SetEnabled(r.Enabled)

	g := newGame(e, m, store, r)

	if err := m.Start(); err != nil {
		log.Fatal(err)
	}
	defer m.Stop()

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowTitle("keyvibes")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
