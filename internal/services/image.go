package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	_ "image/gif"

	"github.com/h2non/filetype"
	"golang.org/x/image/draw"
)

// ContentImageKey is the content-state entry carrying an inline image. The
// relay re-encodes it before forwarding; all other content-state keys are
// opaque.
const ContentImageKey = "imageBase64"

const defaultImageMaxDim = 256

// NormalizeContentImage decodes a base64 image (tolerating a data-URI prefix),
// downscales it to fit maxDim and re-encodes it. PNG input stays PNG to keep
// transparency; everything else becomes JPEG. Keeps push payloads inside the
// APNs size budget.
func NormalizeContentImage(encoded string, maxDim int) (string, error) {
	if maxDim <= 0 {
		maxDim = defaultImageMaxDim
	}
	if strings.HasPrefix(encoded, "data:") {
		if idx := strings.Index(encoded, ","); idx >= 0 {
			encoded = encoded[idx+1:]
		}
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	if !filetype.IsImage(raw) {
		return "", fmt.Errorf("data is not an image")
	}

	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxDim || h > maxDim {
		nw, nh := fitWithin(w, h, maxDim)
		dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
		src = dst
	}

	var out bytes.Buffer
	if format == "png" {
		err = png.Encode(&out, src)
	} else {
		err = jpeg.Encode(&out, src, &jpeg.Options{Quality: 80})
	}
	if err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(out.Bytes()), nil
}

func fitWithin(w, h, maxDim int) (int, int) {
	if w >= h {
		nh := h * maxDim / w
		if nh < 1 {
			nh = 1
		}
		return maxDim, nh
	}
	nw := w * maxDim / h
	if nw < 1 {
		nw = 1
	}
	return nw, maxDim
}
