package chromedp_headers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ErrNoRequestSeen is returned when the page never issued a matching request.
var ErrNoRequestSeen = errors.New("no search request observed")

// skipped headers are recomputed per request by the HTTP client.
var skipped = map[string]bool{
	"content-length":    true,
	"content-type":      true,
	"host":              true,
	"connection":        true,
	"accept-encoding":   true,
	"transfer-encoding": true,
}

// Capturer loads a public search page in headless Chrome and records the
// headers the page's own search API call sends.
type Capturer struct {
	pageURL   string
	match     string
	userAgent string
	timeout   time.Duration
	logger    *zap.Logger
}

// NewCapturer captures from pageURL the first request whose URL contains match.
func NewCapturer(pageURL, match, userAgent string, timeout time.Duration, logger *zap.Logger) *Capturer {
	return &Capturer{
		pageURL:   pageURL,
		match:     match,
		userAgent: userAgent,
		timeout:   timeout,
		logger:    logger,
	}
}

func (c *Capturer) Capture(ctx context.Context) (map[string]string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if c.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(c.userAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx, chromedp.WithLogf(c.logger.Sugar().Debugf))
	defer cancelTask()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, c.timeout)
	defer cancelTimeout()

	var (
		once     sync.Once
		captured = make(chan map[string]string, 1)
	)
	chromedp.ListenTarget(taskCtx, func(ev any) {
		req, ok := ev.(*network.EventRequestWillBeSent)
		if !ok || !strings.Contains(req.Request.URL, c.match) {
			return
		}
		once.Do(func() {
			captured <- FilterHeaders(req.Request.Headers)
		})
	})

	start := time.Now()
	if err := chromedp.Run(taskCtx, network.Enable(), chromedp.Navigate(c.pageURL)); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", c.pageURL, err)
	}

	select {
	case headers := <-captured:
		c.logger.Info("captured search headers",
			zap.Int("count", len(headers)),
			zap.Duration("elapsed", time.Since(start)),
		)
		return headers, nil
	case <-taskCtx.Done():
		if errors.Is(taskCtx.Err(), context.DeadlineExceeded) {
			return nil, ErrNoRequestSeen
		}
		return nil, taskCtx.Err()
	}
}

// FilterHeaders flattens the DevTools header map and drops HTTP/2 pseudo
// headers and those the client sets itself.
func FilterHeaders(raw network.Headers) map[string]string {
	headers := make(map[string]string, len(raw))
	for name, value := range raw {
		lower := strings.ToLower(name)
		if strings.HasPrefix(name, ":") || skipped[lower] {
			continue
		}
		headers[name] = fmt.Sprint(value)
	}
	return headers
}
