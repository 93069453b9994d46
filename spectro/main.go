package main

import (
	"context"
	"flag"
	"image"
	"log"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gospectro/pkg/acquire"
	"github.com/itohio/gospectro/pkg/config"
	"github.com/itohio/gospectro/pkg/instrument"
	"github.com/itohio/gospectro/pkg/link"
	"github.com/itohio/gospectro/pkg/panel"
	"github.com/itohio/gospectro/pkg/render"
	"github.com/itohio/gospectro/pkg/scope"
)

func main() {
	var (
		portFlag    = flag.String("p", "", "Monitor a handheld on this serial port (e.g., COM3 or /dev/ttyACM0)")
		configFlag  = flag.String("config", "config.yaml", "Configuration file path")
		backendFlag = flag.String("backend", "", "Sensor backend override (auto, simulated, device18, device10)")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *portFlag != "" {
		cfg.Link.Port = *portFlag
	}
	if *backendFlag != "" {
		cfg.Sensor.Backend = *backendFlag
	}

	// Create Fyne application
	application := app.NewWithID("com.itohio.gospectro")

	window := application.NewWindow("Spectrometer")
	window.Resize(fyne.NewSize(900, 700))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		window:     window,
		monitor:    *portFlag != "",
	}

	// The panel is drawn into a framebuffer shown as an image.
	state.framebuffer = panel.NewFramebuffer(cfg.Panel.Width, cfg.Panel.Height)
	state.panelImage = canvas.NewImageFromImage(state.framebuffer.Snapshot())
	state.panelImage.FillMode = canvas.ImageFillContain
	state.panelImage.ScaleMode = canvas.ImageScalePixels
	state.panelImage.SetMinSize(fyne.NewSize(float32(cfg.Panel.Width)*2, float32(cfg.Panel.Height)*2))
	state.framebuffer.OnDisplay = func(img *image.RGBA) {
		UpdateWidgetOnMainThread(func() {
			state.panelImage.Image = img
			state.panelImage.Refresh()
		})
	}
	state.sink = render.Multi{panel.New(state.framebuffer), &render.Log{Prefix: "screen: "}}

	state.spectrumWidget = scope.New()

	toolbar := createToolbar(state)

	content := container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		container.NewVSplit(state.panelImage, state.spectrumWidget),
	)
	window.SetContent(content)

	if state.monitor {
		handleConnect(state)
	} else if err := startInstrument(state); err != nil {
		log.Fatalf("Failed to start instrument: %v", err)
	}

	window.SetOnClosed(func() {
		stopInstrument(state)
		disconnect(state)
	})
	window.ShowAndRun()
}

// appState holds the application state.
type appState struct {
	cfg        *config.Config
	configPath string
	window     fyne.Window
	monitor    bool

	framebuffer    *panel.Framebuffer
	panelImage     *canvas.Image
	spectrumWidget *scope.SpectrumWidget
	sink           render.Sink

	// Local instrument (emulator mode)
	controls   *frontPanel
	instrument *instrument.Instrument
	cancel     context.CancelFunc
	done       chan struct{}

	// Serial link (monitor mode)
	connectBtn *widget.Button
	serial     *link.Serial
	serialDone chan struct{}

	mu sync.Mutex
}

// createToolbar creates the toolbar with the front panel controls on the
// left and connect and settings on the right.
func createToolbar(state *appState) fyne.CanvasObject {
	state.controls = newFrontPanel(state)

	measureBtn := widget.NewButtonWithIcon("Measure", theme.MediaPlayIcon(), state.controls.Measure)
	prevBtn := widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() { state.controls.Rotate(-1) })
	nextBtn := widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() { state.controls.Rotate(+1) })
	ledBtn := widget.NewButtonWithIcon("LED", theme.VisibilityIcon(), state.controls.ShortPush)
	modeBtn := widget.NewButtonWithIcon("Mode", theme.ViewRefreshIcon(), state.controls.LongPush)

	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	controls := []*widget.Button{measureBtn, prevBtn, nextBtn, ledBtn, modeBtn}
	if state.monitor {
		// A monitored handheld is operated on the device itself.
		for _, btn := range controls {
			btn.Disable()
		}
	} else {
		connectBtn.Disable()
	}

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(measureBtn, prevBtn, nextBtn, ledBtn, modeBtn),
		container.NewHBox(connectBtn, settingsBtn),
		nil,
	)
}

// startInstrument runs a local instrument on the configured backend.
func startInstrument(state *appState) error {
	backend, err := instrument.SelectBackend(&state.cfg.Sensor, nil, nil)
	if err != nil {
		return err
	}

	in, err := instrument.New(state.cfg, backend, state.sink, state.controls.Platform())
	if err != nil {
		return err
	}

	in.Controller.OnPublish(func(r acquire.Reading) {
		title := string(r.Result.Band)
		if r.Result.Ripeness {
			title = r.Result.String()
		}
		UpdateWidgetOnMainThread(func() {
			state.spectrumWidget.UpdateData(title, r.Layout.Names, r.Values)
		})
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	state.mu.Lock()
	state.instrument = in
	state.controls.Attach(in.Input)
	state.cancel = cancel
	state.done = done
	state.mu.Unlock()

	go func() {
		defer close(done)
		if err := in.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("Instrument stopped: %v", err)
		}
	}()
	return nil
}

// stopInstrument cancels the local instrument and waits for its loop.
func stopInstrument(state *appState) {
	state.mu.Lock()
	cancel, done := state.cancel, state.done
	state.cancel, state.done, state.instrument = nil, nil, nil
	state.controls.Attach(nil)
	state.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// restartInstrument applies a changed configuration to the local instrument.
func restartInstrument(state *appState) error {
	if state.monitor {
		return nil
	}
	stopInstrument(state)
	return startInstrument(state)
}
