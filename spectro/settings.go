package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gospectro/pkg/link"
	"github.com/itohio/gospectro/pkg/mode"
	"github.com/itohio/gospectro/pkg/spectrum"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSensorTab(state),
		createAcquisitionTab(state),
		createInputTab(state),
		createSerialTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 450))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 450))
	d.Show()
}

// saveConfig writes the configuration and restarts the local instrument.
func saveConfig(state *appState) {
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
		return
	}
	if err := restartInstrument(state); err != nil {
		dialog.ShowError(fmt.Errorf("failed to restart instrument: %w", err), state.window)
	}
}

// createSensorTab creates the Sensor configuration tab.
func createSensorTab(state *appState) *container.TabItem {
	backendSelect := widget.NewSelect([]string{"auto", "simulated", "device18", "device10"}, nil)
	backendSelect.SetSelected(state.cfg.Sensor.Backend)

	delayEntry := widget.NewEntry()
	delayEntry.SetText(state.cfg.Sensor.SimulatedDelay.String())

	seedEntry := widget.NewEntry()
	seedEntry.SetText(strconv.FormatUint(state.cfg.Sensor.Seed, 10))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Backend", Widget: backendSelect},
			{Text: "Simulated Delay", Widget: delayEntry},
			{Text: "Seed (0=clock)", Widget: seedEntry},
		},
		OnSubmit: func() {
			if backendSelect.Selected != "" {
				state.cfg.Sensor.Backend = backendSelect.Selected
			}
			if d, err := time.ParseDuration(delayEntry.Text); err == nil {
				state.cfg.Sensor.SimulatedDelay = d
			}
			if seed, err := strconv.ParseUint(seedEntry.Text, 10, 64); err == nil {
				state.cfg.Sensor.Seed = seed
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Sensor", form)
}

// createAcquisitionTab creates the Acquisition configuration tab.
func createAcquisitionTab(state *appState) *container.TabItem {
	modes := []string{"single", "continuous"}
	for n := mode.MinBurst; n <= mode.MaxSelector; n++ {
		modes = append(modes, fmt.Sprintf("burst%d", n))
	}
	modeSelect := widget.NewSelect(modes, nil)
	modeSelect.SetSelected(state.cfg.Acquisition.Mode)

	ledSelect := widget.NewSelect([]string{"none", "internal", "external", "both"}, nil)
	ledSelect.SetSelected(state.cfg.Acquisition.LED)

	classifierSelect := widget.NewSelect([]string{
		spectrum.MethodAuto.String(),
		spectrum.MethodBand.String(),
		spectrum.MethodRipeness.String(),
	}, nil)
	classifierSelect.SetSelected(state.cfg.Acquisition.Classifier)

	continuousPauseEntry := widget.NewEntry()
	continuousPauseEntry.SetText(state.cfg.Acquisition.ContinuousPause.String())

	burstPauseEntry := widget.NewEntry()
	burstPauseEntry.SetText(state.cfg.Acquisition.BurstPause.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Initial Mode", Widget: modeSelect},
			{Text: "Initial LED", Widget: ledSelect},
			{Text: "Classifier", Widget: classifierSelect},
			{Text: "Continuous Pause", Widget: continuousPauseEntry},
			{Text: "Burst Pause", Widget: burstPauseEntry},
		},
		OnSubmit: func() {
			if modeSelect.Selected != "" {
				state.cfg.Acquisition.Mode = modeSelect.Selected
			}
			if ledSelect.Selected != "" {
				state.cfg.Acquisition.LED = ledSelect.Selected
			}
			if classifierSelect.Selected != "" {
				state.cfg.Acquisition.Classifier = classifierSelect.Selected
			}
			if d, err := time.ParseDuration(continuousPauseEntry.Text); err == nil {
				state.cfg.Acquisition.ContinuousPause = d
			}
			if d, err := time.ParseDuration(burstPauseEntry.Text); err == nil {
				state.cfg.Acquisition.BurstPause = d
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Acquisition", form)
}

// createInputTab creates the Input configuration tab.
func createInputTab(state *appState) *container.TabItem {
	buttonConfirmEntry := widget.NewEntry()
	buttonConfirmEntry.SetText(state.cfg.Input.ButtonConfirm.String())

	encoderConfirmEntry := widget.NewEntry()
	encoderConfirmEntry.SetText(state.cfg.Input.EncoderConfirm.String())

	debounceEntry := widget.NewEntry()
	debounceEntry.SetText(state.cfg.Input.Debounce.String())

	longPressEntry := widget.NewEntry()
	longPressEntry.SetText(state.cfg.Input.LongPress.String())

	queueSizeEntry := widget.NewEntry()
	queueSizeEntry.SetText(strconv.Itoa(state.cfg.Input.QueueSize))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Button Confirm", Widget: buttonConfirmEntry},
			{Text: "Encoder Confirm", Widget: encoderConfirmEntry},
			{Text: "Debounce", Widget: debounceEntry},
			{Text: "Long Press", Widget: longPressEntry},
			{Text: "Queue Size", Widget: queueSizeEntry},
		},
		OnSubmit: func() {
			if d, err := time.ParseDuration(buttonConfirmEntry.Text); err == nil {
				state.cfg.Input.ButtonConfirm = d
			}
			if d, err := time.ParseDuration(encoderConfirmEntry.Text); err == nil {
				state.cfg.Input.EncoderConfirm = d
			}
			if d, err := time.ParseDuration(debounceEntry.Text); err == nil {
				state.cfg.Input.Debounce = d
			}
			if d, err := time.ParseDuration(longPressEntry.Text); err == nil {
				state.cfg.Input.LongPress = d
			}
			if n, err := strconv.Atoi(queueSizeEntry.Text); err == nil && n > 0 {
				state.cfg.Input.QueueSize = n
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Input", form)
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	// Get available serial ports
	ports, err := link.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // Map display name to actual port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Link.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Link.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				state.cfg.Link.BaudRate = baud
			}
			if portSelect.Selected == "" {
				saveConfig(state)
				return
			}

			selectedPort := portMap[portSelect.Selected]
			if selectedPort == "" {
				selectedPort = portSelect.Selected // Fallback to selected text
			}
			portChanged := state.cfg.Link.Port != selectedPort
			wasConnected := state.serial != nil && state.serial.IsConnected()

			state.cfg.Link.Port = selectedPort
			saveConfig(state)

			// Reconnect a monitored handheld on the new port
			if portChanged && wasConnected {
				handleConnect(state)
				handleConnect(state)
			}
		},
	}

	return container.NewTabItem("Serial", form)
}
