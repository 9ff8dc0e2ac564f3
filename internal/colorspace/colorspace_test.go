package colorspace

import "testing"

func absDiff(a, b uint8) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}

func TestHSVRoundtrip(t *testing.T) {
	for r := 0; r <= 255; r += 17 {
		for g := 0; g <= 255; g += 17 {
			for b := 0; b <= 255; b += 17 {
				h, s, v := RGBToHSV(uint8(r), uint8(g), uint8(b))
				r2, g2, b2 := HSVToRGB(h, s, v)
				if absDiff(uint8(r), r2) > 1 || absDiff(uint8(g), g2) > 1 || absDiff(uint8(b), b2) > 1 {
					t.Fatalf("roundtrip drift at (%d,%d,%d): got (%d,%d,%d)", r, g, b, r2, g2, b2)
				}
			}
		}
	}
}

func TestHSVPrimaries(t *testing.T) {
	h, s, v := RGBToHSV(255, 0, 0)
	if h > 0.01 || s < 0.99 || v < 0.99 {
		t.Errorf("red HSV = (%f, %f, %f)", h, s, v)
	}
	r, g, b := HSVToRGB(0, 1, 1)
	if r != 255 || g != 0 || b != 0 {
		t.Errorf("HSV(0,1,1) = (%d,%d,%d), want pure red", r, g, b)
	}
}

func TestHSVBrightKeepsHue(t *testing.T) {
	h, _, _ := RGBToHSV(200, 50, 50)
	r, g, b := HSVBright(200, 50, 50, 1.0)
	h2, _, v2 := RGBToHSV(r, g, b)
	if d := h - h2; d > 0.01 || d < -0.01 {
		t.Errorf("hue shifted: %f vs %f", h, h2)
	}
	if v2 < 0.99 {
		t.Errorf("V not forced to 1: %f", v2)
	}
}

func TestOklabRoundtrip(t *testing.T) {
	for r := 0; r <= 255; r += 17 {
		for g := 0; g <= 255; g += 17 {
			for b := 0; b <= 255; b += 17 {
				l, a, ob := RGBToOklab(uint8(r), uint8(g), uint8(b))
				r2, g2, b2 := OklabToRGB(l, a, ob)
				if absDiff(uint8(r), r2) > 1 || absDiff(uint8(g), g2) > 1 || absDiff(uint8(b), b2) > 1 {
					t.Fatalf("oklab drift at (%d,%d,%d): got (%d,%d,%d)", r, g, b, r2, g2, b2)
				}
			}
		}
	}
}

func TestQuantizeSnapsToCube(t *testing.T) {
	cases := []struct {
		in   uint8
		want uint8
	}{
		{0, 0}, {25, 0}, {26, 51}, {51, 51}, {128, 153}, {255, 255},
	}
	for _, c := range cases {
		got, _, _ := Quantize(c.in, 0, 0)
		if got != c.want {
			t.Errorf("Quantize(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}
