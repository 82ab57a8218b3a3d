package airqd

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var ErrUnknownColor = errors.New("unknown color")

// A Color is the duty of the three LED channels.
//
// The LED is wired with an inverted logic: 0 is the maximum brightness and 255 turns the channel off.
// Color{0, 0, 0} is white, not black.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

var (
	ColorOff     = Color{R: 255, G: 255, B: 255}
	ColorRed     = Color{R: 0, G: 255, B: 255}
	ColorGreen   = Color{R: 255, G: 0, B: 255}
	ColorBlue    = Color{R: 255, G: 255, B: 0}
	ColorYellow  = Color{R: 0, G: 0, B: 255}
	ColorCyan    = Color{R: 255, G: 0, B: 0}
	ColorMagenta = Color{R: 0, G: 255, B: 0}
	ColorWhite   = Color{R: 0, G: 0, B: 0}
)

var colors = map[string]Color{
	"off":     ColorOff,
	"red":     ColorRed,
	"green":   ColorGreen,
	"blue":    ColorBlue,
	"yellow":  ColorYellow,
	"cyan":    ColorCyan,
	"magenta": ColorMagenta,
	"white":   ColorWhite,
}

// ParseColor returns the color of the given name.
func ParseColor(name string) (Color, error) {
	c, ok := colors[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Color{}, fmt.Errorf("%w %q (expected one of %s)", ErrUnknownColor, name, strings.Join(slices.Sorted(maps.Keys(colors)), ", "))
	}
	return c, nil
}

func (c Color) String() string {
	for name, v := range colors {
		if v == c {
			return name
		}
	}
	return fmt.Sprintf("duty(%d,%d,%d)", c.R, c.G, c.B)
}
