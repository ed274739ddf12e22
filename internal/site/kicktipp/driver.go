// Package kicktipp implements the site driver against kicktipp.de using a
// headless Chrome session.
package kicktipp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/mwirth/tippbot/internal/pkg/models"
	"github.com/mwirth/tippbot/internal/site"
)

const (
	defaultBaseURL = "https://www.kicktipp.de"
	defaultTimeout = 30 * time.Second

	// Kicktipp renders kickoff times in German local time.
	siteTimezone = "Europe/Berlin"
)

type Config struct {
	BaseURL     string
	BrowserPath string // chrome/chromium binary, empty = chromedp default lookup
	Headless    bool
	Timeout     time.Duration // per driver operation
}

// Driver drives one Chrome instance. It satisfies site.Driver and is not
// safe for concurrent use; one cycle owns it at a time.
type Driver struct {
	cfg Config
	loc *time.Location

	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

func New(cfg Config) (*Driver, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	loc, err := time.LoadLocation(siteTimezone)
	if err != nil {
		return nil, fmt.Errorf("load site timezone: %w", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
	)
	if cfg.BrowserPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.BrowserPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, v ...any) {
		slog.Debug("chromedp", "msg", fmt.Sprintf(format, v...))
	}))

	return &Driver{
		cfg:           cfg,
		loc:           loc,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
	}, nil
}

func (d *Driver) Close() error {
	d.browserCancel()
	d.allocCancel()
	return nil
}

// opCtx bounds one browser operation with the configured timeout while
// still honoring the caller's cancellation.
func (d *Driver) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithTimeout(d.browserCtx, d.cfg.Timeout)
	stop := context.AfterFunc(ctx, cancel)
	return merged, func() { stop(); cancel() }
}

func (d *Driver) loginURL() string {
	return d.cfg.BaseURL + "/info/profil/login"
}

func (d *Driver) tippURL(competition string) string {
	return fmt.Sprintf("%s/%s/tippabgabe", d.cfg.BaseURL, competition)
}

// Authenticate signs into kicktipp.de with the login form and verifies the
// redirect away from the login page.
func (d *Driver) Authenticate(ctx context.Context, creds site.Credentials) (*site.Session, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, &site.AuthError{Reason: "missing credentials"}
	}

	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	var currentURL string
	err := chromedp.Run(opCtx,
		chromedp.Navigate(d.loginURL()),
		chromedp.WaitVisible(`#kennung`, chromedp.ByID),
		dismissConsent(),
		chromedp.SendKeys(`#kennung`, creds.Email, chromedp.ByID),
		chromedp.SendKeys(`#passwort`, creds.Password, chromedp.ByID),
		chromedp.Click(`[name="submitbutton"]`, chromedp.ByQuery),
		chromedp.WaitReady(`body`, chromedp.ByQuery),
		chromedp.Location(&currentURL),
	)
	if err != nil {
		return nil, &site.AuthError{Reason: "login flow", Err: err}
	}
	if strings.Contains(currentURL, "/login") {
		return nil, &site.AuthError{Reason: fmt.Sprintf("still on login page (%s), check credentials", currentURL)}
	}

	slog.Info("Logged in to kicktipp", "account", creds.Email)
	return &site.Session{Account: creds.Email, StartedAt: time.Now()}, nil
}

// ListMatches scrapes the tipping table of the competition.
func (d *Driver) ListMatches(ctx context.Context, s *site.Session, competition string) ([]models.Match, error) {
	if s == nil {
		return nil, &site.FetchError{Op: "match list", Err: fmt.Errorf("no session")}
	}

	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	var raw []rawRow
	err := chromedp.Run(opCtx,
		chromedp.Navigate(d.tippURL(competition)),
		dismissConsent(),
		chromedp.WaitVisible(`#tippabgabeSpiele`, chromedp.ByID),
		chromedp.Evaluate(extractRowsJS, &raw),
	)
	if err != nil {
		return nil, &site.FetchError{Op: "match list", Err: err}
	}
	if sessionExpired(opCtx) {
		return nil, &site.AuthError{Reason: "session expired while fetching matches"}
	}

	matches := make([]models.Match, 0, len(raw))
	for _, r := range raw {
		m, err := parseRow(r, competition, d.loc)
		if err != nil {
			slog.Warn("Skipping unparseable match row", "form_id", r.FormID, "error", err)
			continue
		}
		matches = append(matches, m)
	}

	slog.Debug("Fetched match list", "competition", competition, "matches", len(matches))
	return matches, nil
}

// SubmitTip loads the tipping page fresh, fills the match's two tip inputs,
// and submits the form. The navigation puts retries on a known page even
// when the previous attempt left the tab mid-navigation.
func (d *Driver) SubmitTip(ctx context.Context, s *site.Session, competition string, tip models.Tip) error {
	if s == nil {
		return &site.SubmitError{MatchID: tip.MatchID, Err: fmt.Errorf("no session")}
	}

	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	homeSel := tipInputSelector(tip.MatchID, "heimTipp")
	awaySel := tipInputSelector(tip.MatchID, "gastTipp")

	if err := chromedp.Run(opCtx,
		chromedp.Navigate(d.tippURL(competition)),
		dismissConsent(),
		chromedp.WaitVisible(`#tippabgabeSpiele`, chromedp.ByID),
	); err != nil {
		return &site.SubmitError{MatchID: tip.MatchID, Transient: true, Err: err}
	}
	if sessionExpired(opCtx) {
		return &site.AuthError{Reason: "session expired while submitting tip"}
	}

	var present bool
	if err := chromedp.Run(opCtx, chromedp.Evaluate(fmt.Sprintf(
		`document.querySelector(%q) !== null && document.querySelector(%q) !== null`, homeSel, awaySel), &present),
	); err != nil {
		return &site.SubmitError{MatchID: tip.MatchID, Transient: true, Err: err}
	}
	if !present {
		// Inputs disappear once the match is locked; retrying will not help.
		return &site.SubmitError{MatchID: tip.MatchID, Err: fmt.Errorf("tip inputs not present, match no longer tippable")}
	}

	err := chromedp.Run(opCtx,
		chromedp.SetValue(homeSel, fmt.Sprintf("%d", tip.HomeGoals), chromedp.ByQuery),
		chromedp.SetValue(awaySel, fmt.Sprintf("%d", tip.AwayGoals), chromedp.ByQuery),
		chromedp.Click(`[name="submitbutton"]`, chromedp.ByQuery),
		chromedp.WaitReady(`body`, chromedp.ByQuery),
	)
	if err != nil {
		// Navigation and timeout failures are the stale-page class; the
		// form may load fine on the next attempt.
		return &site.SubmitError{MatchID: tip.MatchID, Transient: true, Err: err}
	}
	if sessionExpired(opCtx) {
		return &site.AuthError{Reason: "session expired while submitting tip"}
	}
	return nil
}

// VerifyTip re-reads the match row after submission and reports what the
// site now holds.
func (d *Driver) VerifyTip(ctx context.Context, s *site.Session, matchID string) (models.TippedState, *models.Tip, error) {
	if s == nil {
		return "", nil, &site.FetchError{Op: "verify tip", Err: fmt.Errorf("no session")}
	}

	opCtx, cancel := d.opCtx(ctx)
	defer cancel()

	var vals []string
	err := chromedp.Run(opCtx, chromedp.Evaluate(fmt.Sprintf(
		`(() => {
			const home = document.querySelector(%q);
			const away = document.querySelector(%q);
			if (!home || !away) { return []; }
			return [home.value, away.value];
		})()`,
		tipInputSelector(matchID, "heimTipp"), tipInputSelector(matchID, "gastTipp")), &vals),
	)
	if err != nil {
		return "", nil, &site.FetchError{Op: "verify tip", Err: err}
	}
	if len(vals) != 2 {
		return "", nil, &site.FetchError{Op: "verify tip", Err: fmt.Errorf("tip inputs for match %s not found", matchID)}
	}

	tip, ok := parseTippedScore(matchID, vals[0], vals[1])
	if !ok {
		return models.TippedStateOpen, nil, nil
	}
	return models.TippedStateTipped, tip, nil
}

func tipInputSelector(matchID, field string) string {
	return fmt.Sprintf(`input[name="spieltippForms[%s].%s"]`, matchID, field)
}

// sessionExpired checks whether the site bounced us back to the login form.
func sessionExpired(ctx context.Context) bool {
	var current string
	if err := chromedp.Run(ctx, chromedp.Location(&current)); err != nil {
		return false
	}
	return strings.Contains(current, "/login")
}

// dismissConsent clicks the consent dialog away when present. The dialog
// only shows up on fresh browser profiles, so a missing button is fine.
func dismissConsent() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var clicked bool
		err := chromedp.Evaluate(`(() => {
			const btn = document.querySelector('#qc-cmp2-ui button[mode="primary"]')
				|| document.querySelector('#qc-cmp2-ui > div:nth-child(2) > div > button:nth-child(2)');
			if (btn) { btn.click(); return true; }
			return false;
		})()`, &clicked).Do(ctx)
		if err == nil && clicked {
			slog.Debug("Dismissed consent dialog")
		}
		return nil
	})
}
