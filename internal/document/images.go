package document

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"planning-bee/internal/imagefetch"
)

// Fetcher downloads images referenced by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (imagefetch.Image, error)
}

var (
	errNoImageData    = errors.New("no image data")
	errFetchDisabled  = errors.New("image URLs cannot be fetched")
	errUnsupportedImg = errors.New("unsupported image format")
)

// picture is an image ready to embed, or the reason it cannot be.
type picture struct {
	data   []byte
	format string // fpdf image type
	width  int
	height int
	err    error
}

func isURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// decodeInline decodes a data URL or bare base64 payload.
func decodeInline(src string) ([]byte, error) {
	payload := strings.TrimSpace(src)
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 {
			return nil, errors.New("malformed data URL")
		}
		meta := payload[len("data:"):comma]
		if !strings.HasSuffix(meta, ";base64") {
			return nil, errors.New("data URL is not base64 encoded")
		}
		payload = payload[comma+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	}
	if err != nil {
		return nil, fmt.Errorf("decoding base64: %w", err)
	}
	return data, nil
}

// inspect checks that data is an image the PDF writer can embed.
func inspect(data []byte) picture {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return picture{err: fmt.Errorf("decoding image: %w", err)}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return picture{err: errors.New("image has no size")}
	}
	var typ string
	switch format {
	case "jpeg":
		typ = "JPG"
	case "png":
		typ = "PNG"
	case "gif":
		typ = "GIF"
	default:
		return picture{err: fmt.Errorf("%w: %s", errUnsupportedImg, format)}
	}
	return picture{data: data, format: typ, width: cfg.Width, height: cfg.Height}
}

// loadPictures resolves every image source in els. URLs are fetched
// concurrently with at most limit requests in flight; a failed image only
// affects its own entry.
func loadPictures(ctx context.Context, els []Element, fetcher Fetcher, limit int, logger *zap.Logger) map[string]picture {
	out := map[string]picture{}
	var urls []string
	for _, el := range els {
		img, ok := el.(Image)
		if !ok {
			continue
		}
		src := strings.TrimSpace(img.Source)
		if _, done := out[src]; done {
			continue
		}
		switch {
		case src == "":
			out[src] = picture{err: errNoImageData}
		case isURL(src):
			if fetcher == nil {
				out[src] = picture{err: errFetchDisabled}
				continue
			}
			out[src] = picture{}
			urls = append(urls, src)
		default:
			data, err := decodeInline(src)
			if err != nil {
				out[src] = picture{err: err}
				continue
			}
			out[src] = inspect(data)
		}
	}
	if len(urls) == 0 {
		return out
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(max(limit, 1))
	for _, url := range urls {
		g.Go(func() error {
			img, err := fetcher.Fetch(ctx, url)
			p := picture{err: err}
			if err == nil {
				p = inspect(img.Data)
			}
			if p.err != nil {
				logger.Warn("image unavailable", zap.String("url", url), zap.Error(p.err))
			}
			mu.Lock()
			out[url] = p
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}
