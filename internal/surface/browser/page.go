package browser

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-mapdirective/internal/logging"
	"github.com/goliatone/go-mapdirective/pkg/interfaces"
)

const (
	hasElementJS = `(id) => document.getElementById(id) !== null`
	setContentJS = `(id, html) => {
  const el = document.getElementById(id);
  if (!el) { throw new Error("element " + id + " not found"); }
  el.innerHTML = html;
}`
	execJS = `(id, src) => {
  if (!document.getElementById(id)) { throw new Error("element " + id + " not found"); }
  (0, eval)(src);
}`
)

// Config controls how the headless browser is reached.
type Config struct {
	// RemoteURL is a DevTools websocket URL. Empty launches a local Chrome.
	RemoteURL string
	Headless  bool
	// NavigateTimeout bounds page loads.
	NavigateTimeout time.Duration
	Logger          interfaces.Logger
}

// Surface drives a live browser page. Maps are mounted by evaluating the
// Leaflet scripts in the page.
type Surface struct {
	browser  *rod.Browser
	page     *rod.Page
	launcher *launcher.Launcher
	cfg      Config
	logger   interfaces.Logger
}

var _ interfaces.Surface = (*Surface)(nil)

// Open connects to (or launches) a browser and opens a blank page.
func Open(ctx context.Context, cfg Config) (*Surface, error) {
	logger := logging.Ensure(cfg.Logger)
	if cfg.NavigateTimeout <= 0 {
		cfg.NavigateTimeout = 30 * time.Second
	}

	s := &Surface{cfg: cfg, logger: logger}
	wsURL := cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().Headless(cfg.Headless)
		u, err := l.Launch()
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "launch browser")
		}
		wsURL = u
		s.launcher = l
		logger.Info("geomap.browser.launched", "url", wsURL)
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		s.cleanup()
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "connect browser")
	}
	s.browser = b

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		s.Close()
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "open page")
	}
	s.page = page
	return s, nil
}

// Wrap uses an existing page.
func Wrap(page *rod.Page, logger interfaces.Logger) *Surface {
	return &Surface{page: page, logger: logging.Ensure(logger)}
}

// Navigate loads url and waits for the load event.
func (s *Surface) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.navigateTimeout())
	defer cancel()
	page := s.page.Context(navCtx)
	if err := page.Navigate(url); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "navigate").
			WithMetadata(map[string]any{"url": url})
	}
	if err := page.WaitLoad(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "wait for load").
			WithMetadata(map[string]any{"url": url})
	}
	return nil
}

// LoadHTML replaces the page document with markup.
func (s *Surface) LoadHTML(ctx context.Context, markup string) error {
	if err := s.page.Context(ctx).SetDocumentContent(markup); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "set document content")
	}
	return nil
}

// HasElement reports whether the page holds an element with id.
func (s *Surface) HasElement(ctx context.Context, id string) (bool, error) {
	res, err := s.page.Context(ctx).Eval(hasElementJS, id)
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryExternal, "query element")
	}
	return res.Value.Bool(), nil
}

// SetContent replaces the inner HTML of the element with id.
func (s *Surface) SetContent(ctx context.Context, id string, markup string) error {
	if _, err := s.page.Context(ctx).Eval(setContentJS, id, markup); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "set element content").
			WithMetadata(map[string]any{"element_id": id})
	}
	return nil
}

// Exec evaluates script in the page once the target element is present.
func (s *Surface) Exec(ctx context.Context, id string, script string) error {
	if _, err := s.page.Context(ctx).Eval(execJS, id, script); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "execute script").
			WithMetadata(map[string]any{"element_id": id})
	}
	return nil
}

// HTML returns the current serialised document.
func (s *Surface) HTML(ctx context.Context) (string, error) {
	res, err := s.page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryExternal, "read document")
	}
	return res.Value.Str(), nil
}

// Close shuts the page and, when launched here, the browser.
func (s *Surface) Close() error {
	var firstErr error
	if s.page != nil && s.browser != nil {
		if err := s.page.Close(); err != nil {
			firstErr = err
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.cleanup()
	return firstErr
}

func (s *Surface) cleanup() {
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher = nil
	}
}

func (s *Surface) navigateTimeout() time.Duration {
	if s.cfg.NavigateTimeout > 0 {
		return s.cfg.NavigateTimeout
	}
	return 30 * time.Second
}
