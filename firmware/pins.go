//go:build tinygo

package main

import (
	"time"

	"machine"
)

const (
	// Front panel
	PIN_BUTTON   = machine.GPIO15 // Measure button, active low
	PIN_ENC_A    = machine.GPIO3
	PIN_ENC_B    = machine.GPIO5
	PIN_ENC_PUSH = machine.GPIO4 // Encoder push, active low

	// External LED driver
	PIN_LAMP = machine.GPIO16

	// Sensor bus (I2C0)
	PIN_SDA       = machine.GPIO0
	PIN_SCL       = machine.GPIO1
	I2C_FREQUENCY = 100 * machine.KHz

	// E-paper (SPI1)
	PIN_EPD_SCK   = machine.GPIO10
	PIN_EPD_MOSI  = machine.GPIO11
	PIN_EPD_CS    = machine.GPIO9
	PIN_EPD_DC    = machine.GPIO8
	PIN_EPD_RST   = machine.GPIO12
	PIN_EPD_BUSY  = machine.GPIO13
	SPI_FREQUENCY = 4 * machine.MHz

	// Panel geometry, native portrait
	EPD_WIDTH   = 122
	EPD_HEIGHT  = 250
	PANEL_TURNS = 1 // Quarter turns to landscape

	// Encoder
	ENCODER_PRECISION = 4 // Quadrature transitions per detent

	// Edge poll interval for interrupt flags and encoder position
	POLL_INTERVAL = 2 * time.Millisecond
)
