// Package iccprofile inspects ICC colour profiles. Profiles are decoded to
// report what they describe; they are never applied to colours.
package iccprofile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strings"

	"seehuhn.de/go/icc"
)

// headerSize is the length of the fixed ICC profile header.
const headerSize = 128

// ErrNotLab is returned by RequireLab for profiles whose data colour space
// is not CIE Lab.
var ErrNotLab = errors.New("iccprofile: profile colour space is not Lab")

// Info summarises an ICC profile.
type Info struct {
	// ColorSpace is the data colour space: "Gray", "RGB", "CMYK", "Lab"
	// or the raw signature for anything else.
	ColorSpace string `json:"color_space"`
	Components int    `json:"components"`

	// Class is the device class signature, e.g. "mntr", "abst" or "spac".
	Class string `json:"class"`
	// PCS is the profile connection space signature, "XYZ" or "Lab".
	PCS     string `json:"pcs"`
	Version string `json:"version"`
	Size    int    `json:"size"`
}

// Inspect decodes an ICC profile.
func Inspect(data []byte) (Info, error) {
	if len(data) < headerSize {
		return Info{}, fmt.Errorf("profile too short: %d bytes (header is %d)", len(data), headerSize)
	}

	p, err := icc.Decode(data)
	if err != nil {
		return Info{}, fmt.Errorf("failed to decode ICC profile: %w", err)
	}

	info := readHeader(data)
	info.Components = p.ColorSpace.NumComponents()
	switch p.ColorSpace {
	case icc.GraySpace:
		info.ColorSpace = "Gray"
	case icc.RGBSpace:
		info.ColorSpace = "RGB"
	case icc.CMYKSpace:
		info.ColorSpace = "CMYK"
	case icc.CIELabSpace:
		info.ColorSpace = "Lab"
	}
	return info, nil
}

// InspectFile reads and decodes an ICC profile file.
func InspectFile(path string) (Info, error) {
	data, err := os.ReadFile(path) // #nosec G304 - User-specified profile path, intended to be read
	if err != nil {
		return Info{}, fmt.Errorf("failed to read profile: %w", err)
	}
	return Inspect(data)
}

// RequireLab returns ErrNotLab unless the profile's data space is Lab.
func RequireLab(info Info) error {
	if info.ColorSpace != "Lab" {
		return fmt.Errorf("%w (got %s)", ErrNotLab, info.ColorSpace)
	}
	return nil
}

// readHeader extracts the signatures and version from a profile header.
// data must be at least headerSize bytes.
func readHeader(data []byte) Info {
	major := data[8]
	minor := data[9] >> 4
	return Info{
		ColorSpace: signature(data[16:20]),
		Class:      signature(data[12:16]),
		PCS:        signature(data[20:24]),
		Version:    fmt.Sprintf("%d.%d", major, minor),
		Size:       int(binary.BigEndian.Uint32(data[0:4])),
	}
}

func signature(b []byte) string {
	return strings.TrimRight(string(b), " \x00")
}
