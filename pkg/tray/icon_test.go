package tray

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"testing"

	"github.com/Veraticus/stretchia/pkg/types"
)

func TestCircleColors(t *testing.T) {
	tests := []struct {
		stage types.Stage
		want  [3]uint8
	}{
		{types.StageGreen, [3]uint8{74, 222, 128}},
		{types.StageYellow, [3]uint8{250, 204, 21}},
		{types.StageOrange, [3]uint8{251, 146, 60}},
		{types.StageRed, [3]uint8{239, 68, 68}},
		{types.StageCritical, [3]uint8{239, 68, 68}},
	}

	for _, tt := range tests {
		t.Run(tt.stage.String(), func(t *testing.T) {
			img := circle(stageRGB[tt.stage.Color()])
			c := img.NRGBAAt(iconSize/2, iconSize/2)
			if [3]uint8{c.R, c.G, c.B} != tt.want || c.A != 255 {
				t.Errorf("center pixel = %+v, want %v", c, tt.want)
			}
			if corner := img.NRGBAAt(0, 0); corner.A != 0 {
				t.Errorf("corner alpha = %d, want 0", corner.A)
			}
		})
	}
}

func TestIconDecodes(t *testing.T) {
	b, err := Icon(types.StageOrange)
	if err != nil {
		t.Fatalf("Icon() error = %v", err)
	}
	if bytes.HasPrefix(b, []byte{0, 0, 1, 0}) {
		b = b[22:]
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if got := img.Bounds().Dx(); got != iconSize {
		t.Errorf("width = %d, want %d", got, iconSize)
	}
}

func TestIconSharedForRedAndCritical(t *testing.T) {
	red, err := Icon(types.StageRed)
	if err != nil {
		t.Fatal(err)
	}
	critical, err := Icon(types.StageCritical)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(red, critical) {
		t.Error("red and critical icons differ")
	}
	green, _ := Icon(types.StageGreen)
	if bytes.Equal(red, green) {
		t.Error("red and green icons are identical")
	}
}

func TestIconUnknownStage(t *testing.T) {
	if _, err := Icon(types.Stage(42)); err == nil {
		t.Error("Icon() accepted an unknown stage")
	}
}

func TestWrapICO(t *testing.T) {
	data := []byte{0x89, 'P', 'N', 'G'}
	ico := wrapICO(data)

	if len(ico) != 22+len(data) {
		t.Fatalf("len = %d", len(ico))
	}
	if binary.LittleEndian.Uint16(ico[2:]) != 1 || binary.LittleEndian.Uint16(ico[4:]) != 1 {
		t.Errorf("bad header % x", ico[:6])
	}
	if ico[6] != iconSize || ico[7] != iconSize {
		t.Errorf("dimensions = %d x %d", ico[6], ico[7])
	}
	if got := binary.LittleEndian.Uint32(ico[14:]); got != uint32(len(data)) {
		t.Errorf("size = %d", got)
	}
	if got := binary.LittleEndian.Uint32(ico[18:]); got != 22 {
		t.Errorf("offset = %d", got)
	}
	if !bytes.Equal(ico[22:], data) {
		t.Error("payload not copied")
	}
}
