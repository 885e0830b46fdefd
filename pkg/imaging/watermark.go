package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"sync"
)

// Watermark placements. Offsets keep a small margin from the edges.
const (
	PlacementTopLeft     = "top-left"
	PlacementTopRight    = "top-right"
	PlacementBottomLeft  = "bottom-left"
	PlacementBottomRight = "bottom-right"
	PlacementCenter      = "center"
)

const placementMargin = 16

// WatermarkConfig describes the overlay composited onto base images before
// upload.
type WatermarkConfig struct {
	OverlayURL string  // source of the overlay image
	Placement  string  // one of the Placement* constants
	Opacity    float64 // 0..1, 1 = fully opaque
	Scale      float64 // overlay width as a fraction of base width, 0..1
}

// Enabled reports whether the configuration can produce a watermark at all.
func (c *WatermarkConfig) Enabled() bool {
	return c != nil && c.OverlayURL != "" && c.Opacity > 0
}

// Watermarker composites a configured overlay onto image bytes. The overlay
// is fetched once and cached for the process lifetime.
type Watermarker struct {
	cfg    WatermarkConfig
	client *http.Client

	mu      sync.Mutex
	overlay image.Image
}

// NewWatermarker creates a watermarker for the given config.
func NewWatermarker(cfg WatermarkConfig, client *http.Client) *Watermarker {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.Placement == "" {
		cfg.Placement = PlacementBottomRight
	}
	if cfg.Opacity <= 0 || cfg.Opacity > 1 {
		cfg.Opacity = 1
	}
	if cfg.Scale <= 0 || cfg.Scale > 1 {
		cfg.Scale = 0.25
	}
	return &Watermarker{cfg: cfg, client: client}
}

// Apply decodes data, composites the overlay and re-encodes in the original
// format. Only PNG and JPEG bases are supported; anything else is an error
// the pipeline treats as a non-fatal watermark failure.
func (w *Watermarker) Apply(ctx context.Context, data []byte) ([]byte, error) {
	base, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode base image: %w", err)
	}
	if format != "png" && format != "jpeg" {
		return nil, fmt.Errorf("unsupported base format for watermarking: %s", format)
	}

	overlay, err := w.loadOverlay(ctx)
	if err != nil {
		return nil, err
	}

	bounds := base.Bounds()
	targetW := int(float64(bounds.Dx()) * w.cfg.Scale)
	if targetW < 1 {
		targetW = 1
	}
	scaled := scaleImage(overlay, targetW)
	faded := applyOpacity(scaled, w.cfg.Opacity)
	offset := placementOffset(bounds, faded.Bounds(), w.cfg.Placement)

	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, base, bounds.Min, draw.Src)
	draw.Draw(canvas, faded.Bounds().Add(offset), faded, image.Point{}, draw.Over)

	var out bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&out, canvas)
	case "jpeg":
		err = jpeg.Encode(&out, canvas, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		return nil, fmt.Errorf("encode watermarked image: %w", err)
	}
	return out.Bytes(), nil
}

func (w *Watermarker) loadOverlay(ctx context.Context) (image.Image, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.overlay != nil {
		return w.overlay, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.cfg.OverlayURL, nil)
	if err != nil {
		return nil, err
	}
	res, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch overlay: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch overlay: status %d", res.StatusCode)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	overlay, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode overlay: %w", err)
	}
	w.overlay = overlay
	return overlay, nil
}

// scaleImage resizes img to targetW wide, keeping aspect ratio.
// Nearest-neighbor is enough for logo overlays.
func scaleImage(img image.Image, targetW int) *image.RGBA {
	src := img.Bounds()
	if src.Dx() == 0 || src.Dy() == 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	targetH := targetW * src.Dy() / src.Dx()
	if targetH < 1 {
		targetH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	for y := 0; y < targetH; y++ {
		srcY := src.Min.Y + y*src.Dy()/targetH
		for x := 0; x < targetW; x++ {
			srcX := src.Min.X + x*src.Dx()/targetW
			dst.Set(x, y, img.At(srcX, srcY))
		}
	}
	return dst
}

// applyOpacity multiplies every pixel's alpha by opacity.
func applyOpacity(img *image.RGBA, opacity float64) *image.RGBA {
	if opacity >= 1 {
		return img
	}
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			out.Set(x, y, color.RGBA64{
				R: uint16(float64(r) * opacity),
				G: uint16(float64(g) * opacity),
				B: uint16(float64(b) * opacity),
				A: uint16(float64(a) * opacity),
			})
		}
	}
	return out
}

// placementOffset returns the top-left point where the overlay is drawn.
func placementOffset(base, overlay image.Rectangle, placement string) image.Point {
	switch placement {
	case PlacementTopLeft:
		return image.Pt(base.Min.X+placementMargin, base.Min.Y+placementMargin)
	case PlacementTopRight:
		return image.Pt(base.Max.X-overlay.Dx()-placementMargin, base.Min.Y+placementMargin)
	case PlacementBottomLeft:
		return image.Pt(base.Min.X+placementMargin, base.Max.Y-overlay.Dy()-placementMargin)
	case PlacementCenter:
		return image.Pt(
			base.Min.X+(base.Dx()-overlay.Dx())/2,
			base.Min.Y+(base.Dy()-overlay.Dy())/2,
		)
	default: // bottom-right
		return image.Pt(
			base.Max.X-overlay.Dx()-placementMargin,
			base.Max.Y-overlay.Dy()-placementMargin,
		)
	}
}
