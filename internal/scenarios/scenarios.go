// -----------------------------------------------------------------------
// Scenario Definitions - scripted UI flows against the Handraise app
// -----------------------------------------------------------------------

package scenarios

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/herrold/internal/common"
	"github.com/ternarybob/herrold/internal/interfaces"
)

// Source supplies the built-in scenario set. The registry re-scans it on
// every load; descriptors are rebuilt each call so definitions behave like
// hot-reloadable files.
type Source struct {
	target common.TargetConfig
}

// NewSource creates the scenario source bound to the target application
func NewSource(target common.TargetConfig) *Source {
	return &Source{target: target}
}

// Scenarios returns the scenario set in registry order
func (s *Source) Scenarios() []interfaces.ScenarioDescriptor {
	return []interfaces.ScenarioDescriptor{
		{
			Name:        "Handraise Load And Login",
			Description: "Tests loading Handraise and performing login",
			Run:         s.loadAndLogin,
		},
		{
			Name:        "Key Message Insights",
			Description: "Tests generating AI key message insights and copying the summary",
			Run:         s.keyMessageInsights,
		},
		{
			Name:        "Narrative Cluster Insights",
			Description: "Tests generating AI narrative cluster insights",
			Run:         s.narrativeClusterInsights,
		},
		{
			Name:        "Handraise Search Newsfeed",
			Description: "Tests login, navigation to newsfeed, and searching for specific content",
			Run:         s.searchNewsfeed,
		},
	}
}

// login performs the shared authentication flow: navigate, wait for the
// app to mount, fill credentials, submit, wait for the authenticated shell
func (s *Source) login(ctx context.Context, session interfaces.BrowserSession, step interfaces.StepSink) error {
	step(fmt.Sprintf("Navigating to %s", s.target.URL))
	if err := session.Navigate(ctx, s.target.URL); err != nil {
		return err
	}

	step("Waiting for app to mount")
	if _, err := waitAnyVisible(ctx, session, "#root", "[id*='app']", "main", ".app"); err != nil {
		// Fall back to any interactive element before giving up
		if _, err := waitAnyVisible(ctx, session, "button", "input", "a"); err != nil {
			return fmt.Errorf("app never became interactive: %w", err)
		}
	}

	step("Filling login form")
	if err := fillAny(ctx, session, s.target.Email,
		"input[type='email']", "input[name='email']", "input#email", "input[name='username']"); err != nil {
		return fmt.Errorf("email field: %w", err)
	}
	if err := fillAny(ctx, session, s.target.Password,
		"input[type='password']", "input[name='password']"); err != nil {
		return fmt.Errorf("password field: %w", err)
	}

	step("Submitting credentials")
	if err := clickAny(ctx, session,
		"button[type='submit']", "input[type='submit']", "button"); err != nil {
		return fmt.Errorf("submit button: %w", err)
	}

	step("Waiting for authenticated view")
	if _, err := waitAnyVisible(ctx, session,
		"nav", "[data-testid='dashboard']", "[class*='newsfeed']", "main"); err != nil {
		return fmt.Errorf("login did not reach authenticated view: %w", err)
	}

	url, err := session.CurrentURL(ctx)
	if err == nil && strings.Contains(url, "login") {
		return fmt.Errorf("still on login page after submit: %s", url)
	}

	step("Login complete")
	return nil
}

// loadAndLogin verifies the application loads and accepts credentials
func (s *Source) loadAndLogin(ctx context.Context, session interfaces.BrowserSession, step interfaces.StepSink) error {
	return s.login(ctx, session, step)
}

// keyMessageInsights drives the key-message AI insight generation flow and
// verifies the summary can be copied
func (s *Source) keyMessageInsights(ctx context.Context, session interfaces.BrowserSession, step interfaces.StepSink) error {
	if err := s.login(ctx, session, step); err != nil {
		return err
	}

	step("Opening key messages panel")
	if err := clickAny(ctx, session,
		"[data-testid='key-messages']", "a[href*='key-message']", "button[aria-label*='Key Message']"); err != nil {
		return fmt.Errorf("key messages panel: %w", err)
	}

	step("Triggering insight generation")
	if err := clickAny(ctx, session,
		"button[data-testid='generate-insights']", "button[aria-label*='Generate']", "[class*='generate'] button"); err != nil {
		return fmt.Errorf("generate button: %w", err)
	}

	step("Waiting for generated insights")
	if _, err := waitAnyVisible(ctx, session,
		"[data-testid='insight-summary']", "[class*='insight-content']", "[class*='summary']"); err != nil {
		return fmt.Errorf("insights never rendered: %w", err)
	}

	step("Copying summary to clipboard")
	if err := clickAny(ctx, session,
		"button[aria-label*='Copy']", "button[data-testid='copy-summary']", "[class*='copy'] button"); err != nil {
		return fmt.Errorf("copy button: %w", err)
	}

	step("Key message insights generated and copied")
	return nil
}

// narrativeClusterInsights drives the narrative-cluster AI insight flow
func (s *Source) narrativeClusterInsights(ctx context.Context, session interfaces.BrowserSession, step interfaces.StepSink) error {
	if err := s.login(ctx, session, step); err != nil {
		return err
	}

	step("Opening narrative clusters panel")
	if err := clickAny(ctx, session,
		"[data-testid='narrative-clusters']", "a[href*='narrative']", "button[aria-label*='Narrative']"); err != nil {
		return fmt.Errorf("narrative clusters panel: %w", err)
	}

	step("Triggering insight generation")
	if err := clickAny(ctx, session,
		"button[data-testid='generate-insights']", "button[aria-label*='Generate']", "[class*='generate'] button"); err != nil {
		return fmt.Errorf("generate button: %w", err)
	}

	step("Waiting for generated insights")
	if _, err := waitAnyVisible(ctx, session,
		"[data-testid='insight-summary']", "[class*='insight-content']", "[class*='summary']"); err != nil {
		return fmt.Errorf("insights never rendered: %w", err)
	}

	step("Narrative cluster insights generated")
	return nil
}

// searchNewsfeed logs in, opens the newsfeed and searches for content
func (s *Source) searchNewsfeed(ctx context.Context, session interfaces.BrowserSession, step interfaces.StepSink) error {
	if err := s.login(ctx, session, step); err != nil {
		return err
	}

	step("Opening newsfeed")
	if err := clickAny(ctx, session,
		"a[href*='newsfeed']", "[data-testid='newsfeed']", "nav a"); err != nil {
		return fmt.Errorf("newsfeed navigation: %w", err)
	}

	step("Locating search input")
	if err := fillAny(ctx, session, "climate",
		"input[type='search']", "input[placeholder*='earch']", "input[aria-label*='earch']"); err != nil {
		return fmt.Errorf("search input: %w", err)
	}

	step("Waiting for search results")
	if _, err := waitAnyVisible(ctx, session,
		"[data-testid='search-results']", "[class*='result']", "[class*='article']"); err != nil {
		return fmt.Errorf("search results never rendered: %w", err)
	}

	step("Search results rendered")
	return nil
}
