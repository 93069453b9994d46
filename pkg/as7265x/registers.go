package as7265x

// The default I2C address of the AS72651 master.
const Address = 0x49

// Physical registers of the I2C slave interface.
const (
	STATUS_REG = 0x00
	WRITE_REG  = 0x01
	READ_REG   = 0x02

	TX_VALID = 0x02
	RX_VALID = 0x01
)

// Virtual registers.
const (
	HW_VERSION_HIGH    = 0x00
	HW_VERSION_LOW     = 0x01
	CONFIG             = 0x04
	INTEGRATION_TIME   = 0x05
	DEVICE_TEMP        = 0x06
	LED_CONFIG         = 0x07
	DEV_SELECT_CONTROL = 0x4F

	// Calibrated channel outputs, four bytes each, big endian IEEE 754.
	R_G_A_CAL = 0x14
	S_H_B_CAL = 0x18
	T_I_C_CAL = 0x1C
	U_J_D_CAL = 0x20
	V_K_E_CAL = 0x24
	W_L_F_CAL = 0x28
)

// DEVICE_TYPE is the HW_VERSION_HIGH value reported by the AS7265x family.
const DEVICE_TYPE = 0x40

// Dies selected through DEV_SELECT_CONTROL.
const (
	NIR = 0x00 // AS72651: R S T U V W
	VIS = 0x01 // AS72652: G H I J K L
	UV  = 0x02 // AS72653: A B C D E F
)

// CONFIG register fields.
const (
	CONFIG_DATA_RDY  = 0x02
	CONFIG_BANK_MASK = 0x0C
	CONFIG_GAIN_MASK = 0x30
	CONFIG_INT       = 0x40
	CONFIG_SRST      = 0x80
)

// Measurement modes stored in CONFIG bits 3:2.
const (
	MODE_4CHAN          = 0x00
	MODE_4CHAN_2        = 0x01
	MODE_6CHAN_CONT     = 0x02
	MODE_6CHAN_ONE_SHOT = 0x03
)

// Gain settings stored in CONFIG bits 5:4.
type Gain uint8

const (
	GAIN_1X Gain = iota
	GAIN_37X
	GAIN_16X
	GAIN_64X
)

// LED_CONFIG register fields.
const (
	LED_INDICATOR      = 0x01
	LED_DRV_ENABLE     = 0x08
	LED_CURRENT_MASK   = 0x30
	LED_CURRENT_12_5MA = 0x00
	LED_CURRENT_25MA   = 0x10
	LED_CURRENT_50MA   = 0x20
	LED_CURRENT_100MA  = 0x30
)
