// -----------------------------------------------------------------------
// Browser Provider - isolated ChromeDP sessions, one per scenario run
// -----------------------------------------------------------------------

package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/herrold/internal/common"
	"github.com/ternarybob/herrold/internal/interfaces"
)

// Provider launches isolated browser sessions. Every Acquire call creates a
// fresh exec allocator and browser context so no cookie, storage or login
// state leaks between scenario runs.
type Provider struct {
	config common.BrowserConfig
	logger arbor.ILogger
}

// NewProvider creates a session provider from browser configuration
func NewProvider(config common.BrowserConfig, logger arbor.ILogger) *Provider {
	return &Provider{
		config: config,
		logger: logger,
	}
}

// Acquire launches a new isolated browser session. The caller owns the
// session and must Close it on every exit path.
func (p *Provider) Acquire(ctx context.Context) (interfaces.BrowserSession, error) {
	startTime := time.Now()

	allocatorOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", p.config.Headless),
		chromedp.Flag("disable-gpu", p.config.DisableGPU),
		chromedp.Flag("no-sandbox", p.config.NoSandbox),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(p.config.UserAgent),
	)

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), allocatorOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)

	// Startup test: materializes the browser process and proves it responds
	testCtx, testCancel := context.WithTimeout(browserCtx, p.waitTimeout())
	defer testCancel()

	if err := chromedp.Run(testCtx, chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		allocatorCancel()
		return nil, fmt.Errorf("browser session failed startup test: %w", err)
	}

	p.logger.Debug().
		Dur("startup_time", time.Since(startTime)).
		Bool("headless", p.config.Headless).
		Msg("Browser session launched")

	return &Session{
		browserCtx:      browserCtx,
		browserCancel:   browserCancel,
		allocatorCancel: allocatorCancel,
		waitTimeout:     p.waitTimeout(),
		logger:          p.logger,
	}, nil
}

func (p *Provider) waitTimeout() time.Duration {
	if p.config.NavigationTimeout > 0 {
		return p.config.NavigationTimeout.Duration()
	}
	return 30 * time.Second
}
