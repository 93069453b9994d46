package main

import (
	"fmt"
	"log"

	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"github.com/itohio/gospectro/pkg/link"
	"github.com/itohio/gospectro/pkg/sensor"
)

// handleConnect handles the connect/disconnect button click in monitor mode.
func handleConnect(state *appState) {
	if state.serial != nil && state.serial.IsConnected() {
		disconnect(state)
		state.connectBtn.SetIcon(theme.LoginIcon())
		log.Printf("Disconnected from serial port")
		return
	}

	s := link.NewSerial(state.cfg.Link.Port, state.cfg.Link.BaudRate, state.cfg.Link.BufferSize)
	if err := s.Connect(); err != nil {
		dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Link.Port, err), state.window)
		return
	}
	log.Printf("Connected to serial port: %s", state.cfg.Link.Port)

	done := make(chan struct{})
	state.serial = s
	state.serialDone = done
	state.connectBtn.SetIcon(theme.LogoutIcon())

	go func() {
		defer close(done)
		for msg := range s.Messages() {
			showMessage(state, msg)
		}
	}()
}

// disconnect closes the serial link and waits for the message loop.
func disconnect(state *appState) {
	if state.serial == nil {
		return
	}
	if err := state.serial.Close(); err != nil {
		log.Printf("Error closing serial link: %v", err)
	}
	<-state.serialDone
	state.serial = nil
	state.serialDone = nil
}

// showMessage redraws the panel from a received report and plots its
// channels.
func showMessage(state *appState, msg link.Message) {
	link.Apply(msg, state.sink)

	if msg.Kind == link.KindText || len(msg.Values) == 0 {
		return
	}

	title := msg.Text
	if msg.Kind == link.KindRipeness {
		title = fmt.Sprintf("ripeness %d", msg.Score)
	}
	names := channelNames(len(msg.Values))
	UpdateWidgetOnMainThread(func() {
		state.spectrumWidget.UpdateData(title, names, msg.Values)
	})
}

// channelNames guesses the channel layout from the vector length.
func channelNames(n int) []string {
	switch n {
	case sensor.Layout18.Channels():
		return sensor.Layout18.Names
	case sensor.Layout10.Channels():
		return sensor.Layout10.Names
	}
	return nil
}
