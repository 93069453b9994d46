//go:build tinygo

//go:generate tinygo flash -target=pico

package main

import (
	"context"
	"log"
	"time"

	"machine"

	"tinygo.org/x/drivers/waveshare-epd/epd2in13"

	"github.com/itohio/gospectro/pkg/config"
	"github.com/itohio/gospectro/pkg/instrument"
	"github.com/itohio/gospectro/pkg/link"
	"github.com/itohio/gospectro/pkg/panel"
	"github.com/itohio/gospectro/pkg/render"
)

func main() {
	// Small delay for host to be ready
	time.Sleep(time.Second)

	// Device logs share the report stream as comment lines.
	log.SetFlags(0)
	log.SetPrefix(link.CommentPrefix)

	cfg := config.Default()
	cfg.Panel.Rotation = PANEL_TURNS

	// Sensor
	bus := machine.I2C0
	err := bus.Configure(machine.I2CConfig{
		Frequency: I2C_FREQUENCY,
		SDA:       PIN_SDA,
		SCL:       PIN_SCL,
	})
	if err != nil {
		log.Printf("I2C configure error: %v", err)
	}

	PIN_LAMP.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_LAMP.Low()

	backend, err := instrument.SelectBackend(&cfg.Sensor, bus, lamp{PIN_LAMP})
	if err != nil {
		log.Fatalf("Failed to select sensor: %v", err)
	}

	// Display
	spi := machine.SPI1
	err = spi.Configure(machine.SPIConfig{
		Frequency: SPI_FREQUENCY,
		SCK:       PIN_EPD_SCK,
		SDO:       PIN_EPD_MOSI,
	})
	if err != nil {
		log.Printf("SPI configure error: %v", err)
	}

	display := epd2in13.New(spi, PIN_EPD_CS, PIN_EPD_DC, PIN_EPD_RST, PIN_EPD_BUSY)
	display.Configure(epd2in13.Config{Width: EPD_WIDTH, Height: EPD_HEIGHT})
	display.ClearDisplay()
	display.WaitUntilIdle()

	screen := panel.Rotated{
		Displayer: epaper{&display},
		Turns:     cfg.Panel.Rotation,
		Width:     EPD_WIDTH,
		Height:    EPD_HEIGHT,
	}
	sink := render.Multi{panel.New(screen), link.NewWriter(machine.Serial)}

	// Front panel
	fp := newFrontPanel()
	in, err := instrument.New(cfg, backend, sink, fp.Platform())
	if err != nil {
		log.Fatalf("Failed to create instrument: %v", err)
	}
	fp.Start(in.Input)

	if err := in.Run(context.Background()); err != nil {
		log.Printf("Instrument stopped: %v", err)
	}
}

// lamp drives the external LED pin.
type lamp struct {
	pin machine.Pin
}

func (l lamp) Set(on bool) {
	l.pin.Set(on)
}

// epaper waits for the panel refresh to finish after every frame.
type epaper struct {
	*epd2in13.Device
}

func (e epaper) Display() error {
	err := e.Device.Display()
	e.WaitUntilIdle()
	return err
}
