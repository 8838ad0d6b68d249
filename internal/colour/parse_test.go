package colour

import "testing"

func TestParseColour(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    RGB
		wantErr bool
	}{
		{name: "hex with hash", input: "#1a2b3c", want: RGB{R: 0x1a, G: 0x2b, B: 0x3c}},
		{name: "bare hex", input: "FF8000", want: RGB{R: 255, G: 128, B: 0}},
		{name: "short hex", input: "#f0a", want: RGB{R: 255, G: 0, B: 170}},
		{name: "rgb function", input: "rgb(10, 20, 30)", want: RGB{R: 10, G: 20, B: 30}},
		{name: "rgb function no spaces", input: "RGB(0,0,255)", want: RGB{R: 0, G: 0, B: 255}},
		{name: "colour name", input: "rebeccapurple", want: RGB{R: 102, G: 51, B: 153}},
		{name: "colour name mixed case", input: " White ", want: RGB{R: 255, G: 255, B: 255}},
		{name: "empty", input: "", wantErr: true},
		{name: "bad hex", input: "#12345g", wantErr: true},
		{name: "wrong length", input: "#1234", wantErr: true},
		{name: "rgb out of range", input: "rgb(256, 0, 0)", wantErr: true},
		{name: "rgb missing component", input: "rgb(1, 2)", wantErr: true},
		{name: "unknown name", input: "notacolour", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColour(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseColour(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseColour(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseColour(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRGBFormatting(t *testing.T) {
	c := RGB{R: 26, G: 43, B: 60}
	if got := c.Hex(); got != "#1a2b3c" {
		t.Errorf("Hex() = %q", got)
	}
	if got := c.String(); got != "rgb(26, 43, 60)" {
		t.Errorf("String() = %q", got)
	}
	if got := ToRGB(c); got != c {
		t.Errorf("ToRGB() = %v, want %v", got, c)
	}
	if got := FromUnit(1.2, 0.5, -0.1); got != (RGB{R: 255, G: 128, B: 0}) {
		t.Errorf("FromUnit() = %v", got)
	}
}
