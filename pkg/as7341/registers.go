package as7341

// The I2C address of the AS7341.
const Address = 0x39

// Registers.
const (
	CONFIG      = 0x70 // bank 1
	LED         = 0x74 // bank 1
	ENABLE      = 0x80
	ATIME       = 0x81
	ID          = 0x92
	CH0_DATA_L  = 0x95
	STATUS2     = 0xA3
	CFG0        = 0xA9
	CFG1        = 0xAA
	CFG6        = 0xAF
	ASTEP_L     = 0xCA
	ASTEP_H     = 0xCB
	SMUX_CONFIG = 0x00 // 20 bytes of SMUX RAM, 0x00..0x13
)

// CHIP_ID is the value of ID bits 7:2.
const CHIP_ID = 0x09

// ENABLE register bits.
const (
	ENABLE_PON    = 0x01
	ENABLE_SP_EN  = 0x02
	ENABLE_WEN    = 0x08
	ENABLE_SMUXEN = 0x10
	ENABLE_FDEN   = 0x40
)

// Other register bits.
const (
	STATUS2_AVALID  = 0x40
	CFG0_REG_BANK   = 0x10
	CONFIG_LED_SEL  = 0x08
	LED_ACT         = 0x80
	LED_DRIVE_MASK  = 0x7F
	CFG6_SMUX_WRITE = 0x10 // SMUX_CMD=2, write configuration from RAM
	CFG6_SMUX_MASK  = 0x18
)

// Gain is the spectral engine gain stored in CFG1.
type Gain uint8

const (
	GAIN_0_5X Gain = iota
	GAIN_1X
	GAIN_2X
	GAIN_4X
	GAIN_8X
	GAIN_16X
	GAIN_32X
	GAIN_64X
	GAIN_128X
	GAIN_256X
	GAIN_512X
)

// smuxLow routes F1..F4, Clear and NIR to ADC0..ADC5.
var smuxLow = [20]byte{
	0x30, 0x01, 0x00, 0x00, 0x00, 0x42, 0x00, 0x00, 0x50, 0x00,
	0x00, 0x00, 0x20, 0x04, 0x00, 0x30, 0x01, 0x50, 0x00, 0x06,
}

// smuxHigh routes F5..F8, Clear and NIR to ADC0..ADC5.
var smuxHigh = [20]byte{
	0x00, 0x00, 0x00, 0x40, 0x02, 0x00, 0x10, 0x03, 0x50, 0x10,
	0x03, 0x00, 0x00, 0x00, 0x24, 0x00, 0x00, 0x50, 0x00, 0x06,
}
