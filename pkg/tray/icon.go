package tray

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"

	"github.com/Veraticus/stretchia/pkg/types"
)

const iconSize = 16

var stageRGB = map[string]color.NRGBA{
	"green":  {R: 74, G: 222, B: 128, A: 255},
	"yellow": {R: 250, G: 204, B: 21, A: 255},
	"orange": {R: 251, G: 146, B: 60, A: 255},
	"red":    {R: 239, G: 68, B: 68, A: 255},
}

var (
	iconMu    sync.Mutex
	iconCache = map[string][]byte{}
)

// Icon returns the tray icon for stage in the platform's format. Red and
// Critical share an icon.
func Icon(stage types.Stage) ([]byte, error) {
	name := stage.Color()
	c, ok := stageRGB[name]
	if !ok {
		return nil, fmt.Errorf("no icon for stage %s", stage)
	}

	iconMu.Lock()
	defer iconMu.Unlock()
	if b, ok := iconCache[name]; ok {
		return b, nil
	}

	raw, err := encodeCircle(c)
	if err != nil {
		return nil, err
	}
	b := platformIcon(raw)
	iconCache[name] = b
	return b, nil
}

// circle draws a filled disc with a one pixel anti-aliased edge.
func circle(c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	center := float64(iconSize / 2)
	radius := center - 1

	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx := float64(x) - center
			dy := float64(y) - center
			dist := math.Sqrt(dx*dx + dy*dy)
			switch {
			case dist <= radius:
				img.SetNRGBA(x, y, c)
			case dist <= radius+1:
				edge := c
				edge.A = uint8((radius + 1 - dist) * 255)
				img.SetNRGBA(x, y, edge)
			}
		}
	}
	return img
}

func encodeCircle(c color.NRGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, circle(c)); err != nil {
		return nil, fmt.Errorf("encode icon: %w", err)
	}
	return buf.Bytes(), nil
}

// wrapICO wraps a PNG in a single-image ICO container.
func wrapICO(pngData []byte) []byte {
	const headerLen = 6 + 16
	out := make([]byte, headerLen, headerLen+len(pngData))

	binary.LittleEndian.PutUint16(out[2:], 1) // type: icon
	binary.LittleEndian.PutUint16(out[4:], 1) // image count
	out[6] = iconSize
	out[7] = iconSize
	binary.LittleEndian.PutUint16(out[10:], 1)  // planes
	binary.LittleEndian.PutUint16(out[12:], 32) // bits per pixel
	binary.LittleEndian.PutUint32(out[14:], uint32(len(pngData)))
	binary.LittleEndian.PutUint32(out[18:], headerLen)

	return append(out, pngData...)
}
