package main

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// ControlBar holds the widgets whose labels track playback state.
type ControlBar struct {
	playBtn  *widget.Button
	loopBtn  *widget.Button
	speedTxt *widget.Text
}

func (cb *ControlBar) SetPlaying(playing bool) {
	if cb == nil || cb.playBtn == nil {
		return
	}
	label := "Play"
	if playing {
		label = "Pause"
	}
	if text := cb.playBtn.Text(); text != nil {
		text.Label = label
	}
}

func (cb *ControlBar) SetLoop(loop bool) {
	if cb == nil || cb.loopBtn == nil {
		return
	}
	label := "Loop: Off"
	if loop {
		label = "Loop: On"
	}
	if text := cb.loopBtn.Text(); text != nil {
		text.Label = label
	}
}

func (cb *ControlBar) SetSpeed(speed float64) {
	if cb == nil || cb.speedTxt == nil {
		return
	}
	cb.speedTxt.Label = fmt.Sprintf("x%g", speed)
}

// buildPlayerUI assembles the bottom control bar.
// The marker button is only added when the animation defines markers.
func buildPlayerUI(
	onPlayToggle func(),
	onStop func(),
	onLoopToggle func(),
	onSpeedStep func(step int),
	onNextMarker func(),
	hasMarkers bool,
	initialPlaying bool,
	initialLoop bool,
	initialSpeed float64,
) (*ebitenui.UI, *ControlBar, error) {
	ui := &ebitenui.UI{}

	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load font: %w", err)
	}
	var fontFace text.Face = &text.GoTextFace{Source: s, Size: 14}
	ui.PrimaryTheme = newPlayerTheme(&fontFace)

	buttonTextColor := &widget.ButtonTextColor{
		Idle:    color.RGBA{230, 230, 230, 255},
		Hover:   color.RGBA{255, 255, 255, 255},
		Pressed: color.RGBA{160, 200, 255, 255},
	}

	bar := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(solidNineSlice(color.RGBA{28, 28, 32, 235})),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
			widget.RowLayoutOpts.Spacing(8),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 8, Bottom: 8, Left: 12, Right: 12}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionCenter,
				VerticalPosition:   widget.AnchorLayoutPositionEnd,
			}),
		),
	)

	newBarButton := func(label string, minWidth int, onClick func()) *widget.Button {
		return widget.NewButton(
			widget.ButtonOpts.Image(ui.PrimaryTheme.ButtonTheme.Image),
			widget.ButtonOpts.Text(label, &fontFace, buttonTextColor),
			widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.MinSize(minWidth, 32)),
			widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
				if onClick != nil {
					onClick()
				}
			}),
		)
	}

	controls := &ControlBar{}

	controls.playBtn = newBarButton("Play", 72, onPlayToggle)
	bar.AddChild(controls.playBtn)

	bar.AddChild(newBarButton("Stop", 56, onStop))

	controls.loopBtn = newBarButton("Loop: On", 88, onLoopToggle)
	bar.AddChild(controls.loopBtn)

	bar.AddChild(newBarButton("-", 32, func() {
		if onSpeedStep != nil {
			onSpeedStep(-1)
		}
	}))
	controls.speedTxt = widget.NewText(
		widget.TextOpts.Text("x1", &fontFace, color.RGBA{230, 230, 230, 255}),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{
			Position: widget.RowLayoutPositionCenter,
		})),
	)
	bar.AddChild(controls.speedTxt)
	bar.AddChild(newBarButton("+", 32, func() {
		if onSpeedStep != nil {
			onSpeedStep(1)
		}
	}))

	if hasMarkers {
		bar.AddChild(newBarButton("Marker", 72, onNextMarker))
	}

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(bar)
	ui.Container = root

	controls.SetPlaying(initialPlaying)
	controls.SetLoop(initialLoop)
	controls.SetSpeed(initialSpeed)
	return ui, controls, nil
}
