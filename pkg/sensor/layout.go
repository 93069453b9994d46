package sensor

import "fmt"

// Kind identifies the backend variant.
type Kind uint8

const (
	KindNone Kind = iota // no sensor, simulated readings
	KindDevice18
	KindDevice10
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "simulated"
	case KindDevice18:
		return "device18"
	case KindDevice10:
		return "device10"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind parses a backend name as used in the configuration.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "simulated", "none":
		return KindNone, nil
	case "device18":
		return KindDevice18, nil
	case "device10":
		return KindDevice10, nil
	}
	return KindNone, fmt.Errorf("unknown sensor backend %q", s)
}

// Layout describes the channel vector a backend produces.
type Layout struct {
	Kind     Kind
	Names    []string
	HasClear bool // last channel is the unfiltered Clear photodiode
	Red      int  // channel used as "red" by the ripeness index
	Green    int  // channel used as "green" by the ripeness index
}

// Channels returns the vector length.
func (l Layout) Channels() int {
	return len(l.Names)
}

var names18 = []string{
	"410nm (A) Violet", "435nm (B) Indigo", "460nm (C) Blue",
	"485nm (D) Cyan", "510nm (E) Green", "535nm (F) Lime",
	"560nm (G) Yellow", "585nm (H) Orange", "610nm (R) Orange+",
	"645nm (I) Red", "680nm (S) Deep Red", "705nm (J) Red+",
	"730nm (T) NIR", "760nm (U) NIR", "810nm (V) NIR",
	"860nm (W) NIR", "900nm (K) NIR", "940nm (L) NIR",
}

var names10 = []string{
	"415nm (F1) Violet", "445nm (F2) Deep Blue", "480nm (F3) Light Blue",
	"515nm (F4) Green", "555nm (F5) Yellow-Green", "590nm (F6) Yellow",
	"630nm (F7) Deep Orange", "680nm (F8) Red",
	"910nm (NIR) NIR", "Clear",
}

// Layout18 is the 410nm..940nm layout of the AS7265x triad. Ripeness
// compares the channels nearest 650nm and 550nm, not positions 7 and 4 as
// on the AS7341 (585nm and 510nm here).
var Layout18 = Layout{
	Kind:  KindDevice18,
	Names: names18,
	Red:   9, // 645nm
	Green: 6, // 560nm
}

// Layout10 is the reordered F1..F8, NIR, Clear layout of the AS7341.
var Layout10 = Layout{
	Kind:     KindDevice10,
	Names:    names10,
	HasClear: true,
	Red:      7, // F8 680nm
	Green:    4, // F5 555nm
}

// LayoutSimulated mirrors the 18-channel layout.
var LayoutSimulated = Layout{
	Kind:  KindNone,
	Names: names18,
	Red:   Layout18.Red,
	Green: Layout18.Green,
}
