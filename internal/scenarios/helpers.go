package scenarios

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/herrold/internal/interfaces"
)

// Browser UIs render asynchronously, so every lookup polls a set of
// candidate selectors with short fixed waits before giving up. Flaky-page
// retry lives here, inside the scenario bodies, never in the engine.

const (
	pollAttempts = 10
	pollDelay    = 500 * time.Millisecond
)

// waitAnyVisible polls until one of the candidate selectors matches a
// visible node, returning the selector that matched
func waitAnyVisible(ctx context.Context, session interfaces.BrowserSession, selectors ...string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < pollAttempts; attempt++ {
		for _, sel := range selectors {
			waitCtx, cancel := context.WithTimeout(ctx, pollDelay*2)
			err := session.WaitVisible(waitCtx, sel)
			cancel()
			if err == nil {
				return sel, nil
			}
			lastErr = err
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(pollDelay):
		}
	}
	return "", fmt.Errorf("no candidate selector became visible (%v): %w", selectors, lastErr)
}

// clickAny clicks the first candidate selector that becomes visible
func clickAny(ctx context.Context, session interfaces.BrowserSession, selectors ...string) error {
	sel, err := waitAnyVisible(ctx, session, selectors...)
	if err != nil {
		return err
	}
	return session.Click(ctx, sel)
}

// fillAny types into the first candidate selector that becomes visible
func fillAny(ctx context.Context, session interfaces.BrowserSession, text string, selectors ...string) error {
	sel, err := waitAnyVisible(ctx, session, selectors...)
	if err != nil {
		return err
	}
	return session.SendKeys(ctx, sel, text)
}
