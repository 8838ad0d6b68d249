package colour

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColour parses a colour string into RGB.
// Supported forms: "#rgb", "#rrggbb", "rrggbb", "rgb(r, g, b)" and CSS
// colour names such as "rebeccapurple".
func ParseColour(s string) (RGB, error) {
	text := strings.ToLower(strings.TrimSpace(s))
	if text == "" {
		return RGB{}, fmt.Errorf("colour cannot be empty")
	}

	if strings.HasPrefix(text, "rgb(") && strings.HasSuffix(text, ")") {
		return parseRGBFunc(text[4 : len(text)-1])
	}

	if c, ok := colornames.Map[text]; ok {
		return RGB{R: c.R, G: c.G, B: c.B}, nil
	}

	if rgb, ok := parseHex(strings.TrimPrefix(text, "#")); ok {
		return rgb, nil
	}

	return RGB{}, fmt.Errorf("unrecognised colour: %q (expected hex, rgb(r, g, b) or a colour name)", s)
}

// parseRGBFunc parses the inside of "rgb(...)".
func parseRGBFunc(body string) (RGB, error) {
	parts := strings.Split(body, ",")
	if len(parts) != 3 {
		return RGB{}, fmt.Errorf("rgb() needs 3 components, got %d", len(parts))
	}
	var out [3]uint8
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 || v > 255 {
			return RGB{}, fmt.Errorf("invalid rgb() component %q (expected 0-255)", strings.TrimSpace(p))
		}
		out[i] = uint8(v)
	}
	return RGB{R: out[0], G: out[1], B: out[2]}, nil
}

// parseHex parses a 3 or 6 digit hex colour without the leading '#'.
func parseHex(s string) (RGB, bool) {
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return RGB{}, false
		}
	}
	switch len(s) {
	case 6:
		return RGB{
			R: parseHexByte(s[0:2]),
			G: parseHexByte(s[2:4]),
			B: parseHexByte(s[4:6]),
		}, true
	case 3:
		return RGB{
			R: parseHexByte(s[0:1]) * 17,
			G: parseHexByte(s[1:2]) * 17,
			B: parseHexByte(s[2:3]) * 17,
		}, true
	}
	return RGB{}, false
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// parseHexByte converts a one or two character hex string to a byte.
func parseHexByte(s string) uint8 {
	var result uint8
	for i := 0; i < len(s); i++ {
		result *= 16
		c := s[i]
		if c >= '0' && c <= '9' {
			result += c - '0'
		} else if c >= 'a' && c <= 'f' {
			result += c - 'a' + 10
		} else if c >= 'A' && c <= 'F' {
			result += c - 'A' + 10
		}
	}
	return result
}
