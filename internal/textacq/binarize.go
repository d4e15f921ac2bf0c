package textacq

import (
	"image/color"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// luminanceCutoff splits pixels into pure black and pure white before OCR.
// Matches the threshold the scanning presets were tuned against.
const luminanceCutoff = 180

// binarize writes a black-and-white copy of img next to it and returns the
// new path.
func binarize(img string) (string, error) {
	src, err := imaging.Open(img)
	if err != nil {
		return "", err
	}

	gray := imaging.Grayscale(src)
	bw := imaging.AdjustFunc(gray, func(c color.NRGBA) color.NRGBA {
		if c.R < luminanceCutoff {
			return color.NRGBA{A: 255}
		}
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	})

	out := strings.TrimSuffix(img, filepath.Ext(img)) + ".bw.png"
	if err := imaging.Save(bw, out); err != nil {
		return "", err
	}
	return out, nil
}
