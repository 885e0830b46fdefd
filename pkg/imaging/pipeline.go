package imaging

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"ai-catalog-admin-be/internal/pkg/logger"
	"ai-catalog-admin-be/pkg/media"
	"ai-catalog-admin-be/pkg/store"

	"github.com/gabriel-vasile/mimetype"
)

// Per-item error kinds. A failed item never blocks its siblings.
var (
	ErrImageFetch        = errors.New("image fetch failed")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Failure records one reference that could not be ingested.
type Failure struct {
	Ref store.ImageRef
	Err error
}

// Result is the outcome of one ingestion batch. Uploaded preserves the
// input order of the successful items.
type Result struct {
	Uploaded []store.UploadedImage
	Failures []Failure
}

// Pipeline normalizes inbound image references into uploaded media records,
// optionally compositing a watermark first. It keeps no local state; every
// call is independent.
type Pipeline struct {
	host        media.Host
	watermarker *Watermarker
	client      *http.Client
	logger      logger.ILogger
}

// NewPipeline creates an ingestion pipeline. watermarker may be nil when no
// watermark is configured.
func NewPipeline(host media.Host, watermarker *Watermarker, log logger.ILogger) *Pipeline {
	return &Pipeline{
		host:        host,
		watermarker: watermarker,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: log,
	}
}

// Ingest processes refs and returns uploaded records plus per-item failures.
// Items are processed in parallel; the result preserves input order.
// References already carrying a MediaId bypass fetching and uploading
// entirely and pass through unchanged, keeping their existing alt text
// unless the caller supplied a new one.
func (p *Pipeline) Ingest(ctx context.Context, refs []store.ImageRef, applyWatermark bool) Result {
	type slot struct {
		uploaded *store.UploadedImage
		failure  *Failure
	}

	slots := make([]slot, len(refs))
	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref store.ImageRef) {
			defer wg.Done()
			uploaded, err := p.ingestOne(ctx, ref, applyWatermark)
			if err != nil {
				slots[i] = slot{failure: &Failure{Ref: ref, Err: err}}
				return
			}
			slots[i] = slot{uploaded: uploaded}
		}(i, ref)
	}
	wg.Wait()

	var result Result
	for _, s := range slots {
		if s.uploaded != nil {
			result.Uploaded = append(result.Uploaded, *s.uploaded)
		}
		if s.failure != nil {
			result.Failures = append(result.Failures, *s.failure)
		}
	}
	return result
}

func (p *Pipeline) ingestOne(ctx context.Context, ref store.ImageRef, applyWatermark bool) (*store.UploadedImage, error) {
	// Pass-through: the media host already knows this image.
	if ref.Uploaded() {
		return &store.UploadedImage{
			MediaId: ref.MediaId,
			URL:     ref.MediaURL,
			AltText: ref.AltText,
		}, nil
	}

	data, declaredType, err := p.resolveBytes(ctx, ref)
	if err != nil {
		return nil, err
	}

	contentType, ext, err := sniffImageType(data, declaredType)
	if err != nil {
		return nil, err
	}

	if applyWatermark && p.watermarker != nil {
		watermarked, wmErr := p.watermarker.Apply(ctx, data)
		if wmErr != nil {
			// Non-fatal: upload the original bytes instead.
			p.logger.Warn("ImagePipeline", "Watermarking failed, uploading original", map[string]interface{}{
				"error": wmErr.Error(),
			})
		} else {
			data = watermarked
		}
	}

	filename := ref.Filename
	if filename == "" {
		filename = fmt.Sprintf("upload-%d%s", time.Now().UnixNano(), ext)
	}

	uploaded, err := p.host.Upload(ctx, data, filename, contentType)
	if err != nil {
		return nil, err
	}

	return &store.UploadedImage{
		MediaId: uploaded.MediaId,
		URL:     uploaded.URL,
		AltText: ref.AltText,
	}, nil
}

// resolveBytes turns a reference into raw bytes plus the declared MIME type,
// if any.
func (p *Pipeline) resolveBytes(ctx context.Context, ref store.ImageRef) ([]byte, string, error) {
	switch {
	case len(ref.Data) > 0:
		return ref.Data, "", nil

	case ref.DataURI != "":
		return decodeDataURI(ref.DataURI)

	case ref.URL != "":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.URL, nil)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrImageFetch, err)
		}
		res, err := p.client.Do(req)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrImageFetch, err)
		}
		defer res.Body.Close()
		if res.StatusCode != http.StatusOK {
			return nil, "", fmt.Errorf("%w: status %d from %s", ErrImageFetch, res.StatusCode, ref.URL)
		}
		data, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrImageFetch, err)
		}
		return data, res.Header.Get("Content-Type"), nil

	default:
		return nil, "", fmt.Errorf("%w: empty image reference", ErrUnsupportedFormat)
	}
}

// decodeDataURI parses "data:image/png;base64,...." references.
func decodeDataURI(uri string) ([]byte, string, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, "", fmt.Errorf("%w: not a data URI", ErrUnsupportedFormat)
	}
	comma := strings.Index(uri, ",")
	if comma < 0 {
		return nil, "", fmt.Errorf("%w: malformed data URI", ErrUnsupportedFormat)
	}
	meta := uri[len("data:"):comma]
	declaredType := meta
	if semi := strings.Index(meta, ";"); semi >= 0 {
		declaredType = meta[:semi]
	}
	if !strings.Contains(meta, "base64") {
		return nil, "", fmt.Errorf("%w: only base64 data URIs are supported", ErrUnsupportedFormat)
	}
	data, err := base64.StdEncoding.DecodeString(uri[comma+1:])
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return data, declaredType, nil
}

// sniffImageType determines the content type from the bytes, preferring the
// sniffed type over whatever the source declared. Non-image types are
// rejected.
func sniffImageType(data []byte, declaredType string) (contentType, ext string, err error) {
	detected := mimetype.Detect(data)
	contentType = detected.String()
	ext = detected.Extension()

	if !strings.HasPrefix(contentType, "image/") {
		// Fall back to the declared type if sniffing found nothing useful.
		if strings.HasPrefix(declaredType, "image/") {
			return declaredType, extensionFor(declaredType), nil
		}
		return "", "", fmt.Errorf("%w: detected %s", ErrUnsupportedFormat, contentType)
	}
	return contentType, ext, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
