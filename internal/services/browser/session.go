package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/herrold/internal/models"
)

// Session is one isolated browser context. All helpers bound their waits
// with the session's wait timeout so a dead page cannot hang a run past the
// engine's own scenario timeout.
type Session struct {
	browserCtx      context.Context
	browserCancel   context.CancelFunc
	allocatorCancel context.CancelFunc
	waitTimeout     time.Duration
	logger          arbor.ILogger

	closeOnce sync.Once
	closed    bool
	mu        sync.Mutex
}

// run executes chromedp actions against the session with a bounded wait,
// honouring the caller's context
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("browser session already closed")
	}
	s.mu.Unlock()

	runCtx, cancel := context.WithTimeout(s.browserCtx, s.waitTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- chromedp.Run(runCtx, actions...)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	}
}

// Navigate loads a URL and waits for the document body to become ready
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, chromedp.Navigate(url), chromedp.WaitReady("body")); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// WaitVisible blocks until the selector matches a visible node
func (s *Session) WaitVisible(ctx context.Context, selector string) error {
	if err := s.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("wait for %q failed: %w", selector, err)
	}
	return nil
}

// Click clicks the first visible node matching the selector
func (s *Session) Click(ctx context.Context, selector string) error {
	if err := s.run(ctx, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("click on %q failed: %w", selector, err)
	}
	return nil
}

// SendKeys types text into the node matching the selector
func (s *Session) SendKeys(ctx context.Context, selector, text string) error {
	if err := s.run(ctx, chromedp.SendKeys(selector, text, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("typing into %q failed: %w", selector, err)
	}
	return nil
}

// Text returns the text content of the node matching the selector
func (s *Session) Text(ctx context.Context, selector string) (string, error) {
	var text string
	if err := s.run(ctx, chromedp.Text(selector, &text, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("reading text of %q failed: %w", selector, err)
	}
	return text, nil
}

// CurrentURL returns the page's current address
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var location string
	if err := s.run(ctx, chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("reading page location failed: %w", err)
	}
	return location, nil
}

// Screenshot captures a full-page PNG
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return nil, fmt.Errorf("full-page screenshot failed: %w", err)
	}
	return buf, nil
}

// HTML returns the serialized page markup
func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("reading page markup failed: %w", err)
	}
	return html, nil
}

// PageState snapshots the current address, title, cookies and web storage
// for failure diagnostics
func (s *Session) PageState(ctx context.Context) (*models.PageState, error) {
	state := &models.PageState{
		LocalStorage:   map[string]string{},
		SessionStorage: map[string]string{},
	}

	var cookies []*network.Cookie
	err := s.run(ctx,
		chromedp.Location(&state.URL),
		chromedp.Title(&state.Title),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			cookies, err = network.GetCookies().Do(ctx)
			return err
		}),
		chromedp.Evaluate(storageScript("localStorage"), &state.LocalStorage),
		chromedp.Evaluate(storageScript("sessionStorage"), &state.SessionStorage),
	)
	if err != nil {
		return nil, fmt.Errorf("page state capture failed: %w", err)
	}

	for _, c := range cookies {
		state.Cookies = append(state.Cookies, models.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		})
	}

	return state, nil
}

// storageScript serializes a web storage area to a key/value object
func storageScript(area string) string {
	return fmt.Sprintf(`(() => {
		const items = {};
		for (let i = 0; i < %s.length; i++) {
			const key = %s.key(i);
			items[key] = %s.getItem(key);
		}
		return items;
	})()`, area, area, area)
}

// Close tears the session down. Safe to call more than once; teardown
// failure is the caller's to log, never to propagate over a scenario result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.browserCancel()
		s.allocatorCancel()
		s.logger.Debug().Msg("Browser session closed")
	})
	return nil
}
