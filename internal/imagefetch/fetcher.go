// Package imagefetch downloads images referenced by URL from a session
// document, such as uploaded ID scans kept in object storage.
package imagefetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const defaultMaxBody = 16 << 20

var ErrUnsupportedURL = errors.New("only http and https image URLs are supported")

// Image is a downloaded image body and the content type the server sent.
type Image struct {
	Data        []byte
	ContentType string
}

// Fetcher downloads URLs with a per-request timeout and caches successful
// downloads for the life of the process. Failures are not cached.
type Fetcher struct {
	client  *fasthttp.Client
	timeout time.Duration
	logger  *zap.Logger
	cache   sync.Map
}

// New returns a Fetcher. A nil client gets a default one.
func New(client *fasthttp.Client, timeout time.Duration, logger *zap.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if client == nil {
		client = &fasthttp.Client{
			Name:                "planning-bee",
			MaxConnsPerHost:     16,
			MaxResponseBodySize: defaultMaxBody,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{client: client, timeout: timeout, logger: logger}
}

// Fetch returns the image at url. The request is bounded by the fetcher's
// timeout and by ctx's deadline, whichever comes first.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Image, error) {
	if v, ok := f.cache.Load(url); ok {
		return v.(Image), nil
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return Image{}, ErrUnsupportedURL
	}
	if err := ctx.Err(); err != nil {
		return Image{}, err
	}

	deadline := time.Now().Add(f.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := f.client.DoDeadline(req, resp, deadline); err != nil {
		f.logger.Warn("image fetch failed", zap.String("url", url), zap.Error(err))
		return Image{}, fmt.Errorf("fetching %s: %w", url, err)
	}
	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		f.logger.Warn("image fetch failed", zap.String("url", url), zap.Int("status", code))
		return Image{}, fmt.Errorf("fetching %s: unexpected status %d", url, code)
	}

	img := Image{
		Data:        append([]byte(nil), resp.Body()...),
		ContentType: string(resp.Header.ContentType()),
	}
	f.cache.Store(url, img)
	return img, nil
}
