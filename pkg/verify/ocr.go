package verify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

// TextExtractor pulls text from a document image.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// TesseractExtractor tries a sequence of page-segmentation modes against
// the image and returns the first non-trivial result. ID cards defeat the
// default mode often enough that the fallback sequence matters.
type TesseractExtractor struct {
	segModes []int
	timeout  time.Duration
	log      *zap.Logger
}

func NewTesseractExtractor(segModes []int, timeout time.Duration, log *zap.Logger) *TesseractExtractor {
	return &TesseractExtractor{segModes: segModes, timeout: timeout, log: log}
}

const minOCRChars = 10

func (e *TesseractExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	for _, mode := range e.segModes {
		text, err := e.runMode(ctx, data, mode)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			e.log.Debug("ocr mode failed", zap.Int("mode", mode), zap.Error(err))
			continue
		}
		if len(strings.TrimSpace(text)) >= minOCRChars {
			return text, nil
		}
	}
	return "", nil
}

// runMode runs a single tesseract pass in its own goroutine so a stuck
// engine cannot hold the request past the per-mode timeout. The client is
// per-call; gosseract clients are not safe to share.
func (e *TesseractExtractor) runMode(ctx context.Context, data []byte, mode int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		client := gosseract.NewClient()
		defer client.Close()
		if err := client.SetImageFromBytes(data); err != nil {
			ch <- result{err: fmt.Errorf("set image: %w", err)}
			return
		}
		if err := client.SetPageSegMode(gosseract.PageSegMode(mode)); err != nil {
			ch <- result{err: fmt.Errorf("set seg mode %d: %w", mode, err)}
			return
		}
		text, err := client.Text()
		ch <- result{text: text, err: err}
	}()

	select {
	case r := <-ch:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
