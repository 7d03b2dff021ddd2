package vtc

import (
	"strings"
)

// Standard framerates.
var (
	F23_98     = MustFramerate(FPSFloat(23.98), WithNTSC(true))
	F24        = MustFramerate(FPS(24))
	F29_97_NDF = MustFramerate(FPSFloat(29.97), WithNTSC(true))
	F29_97_DF  = MustFramerate(FPSFloat(29.97), WithDropFrame(true))
	F30        = MustFramerate(FPS(30))
	F47_95     = MustFramerate(FPSFloat(47.95), WithNTSC(true))
	F48        = MustFramerate(FPS(48))
	F59_94_NDF = MustFramerate(FPSFloat(59.94), WithNTSC(true))
	F59_94_DF  = MustFramerate(FPSFloat(59.94), WithDropFrame(true))
	F60        = MustFramerate(FPS(60))
)

// NamedRate pairs a standard rate with its registry name.
type NamedRate struct {
	Name string
	Rate Framerate
}

var standardRates = []NamedRate{
	{Name: "23.98", Rate: F23_98},
	{Name: "24", Rate: F24},
	{Name: "29.97", Rate: F29_97_NDF},
	{Name: "29.97df", Rate: F29_97_DF},
	{Name: "30", Rate: F30},
	{Name: "47.95", Rate: F47_95},
	{Name: "48", Rate: F48},
	{Name: "59.94", Rate: F59_94_NDF},
	{Name: "59.94df", Rate: F59_94_DF},
	{Name: "60", Rate: F60},
}

// StandardRates returns the registry of standard rates in ascending order.
func StandardRates() []NamedRate {
	out := make([]NamedRate, len(standardRates))
	copy(out, standardRates)
	return out
}

// ParseRate resolves a rate name. Registry names ("23.98", "29.97df") and
// their "ndf" spellings are looked up first; anything else is handed to
// NewFramerate, with a trailing "df" requesting drop-frame.
func ParseRate(name string) (Framerate, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimSuffix(key, "ndf")

	for _, nr := range standardRates {
		if nr.Name == key {
			return nr.Rate, nil
		}
	}

	if strings.HasSuffix(key, "df") {
		return NewFramerate(FPSString(strings.TrimSuffix(key, "df")), WithDropFrame(true))
	}
	return NewFramerate(FPSString(key))
}
