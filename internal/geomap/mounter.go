package geomap

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-mapdirective/internal/logging"
	"github.com/goliatone/go-mapdirective/internal/runtimeconfig"
	"github.com/goliatone/go-mapdirective/pkg/interfaces"
)

const writeBackTimeout = 5 * time.Second

// Mounter runs one goroutine per scheduled task. Each task waits for its
// container to appear on the surface, resolves coordinates and mounts a
// Leaflet viewport with a marker. A Mounter belongs to one rendered
// document; Close tears every pending task down before a re-render.
type Mounter struct {
	surface      interfaces.Surface
	geocoder     interfaces.Geocoder
	logger       interfaces.Logger
	view         View
	pollInterval time.Duration
	timeout      time.Duration
	writeBack    bool
	clock        func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group

	mu        sync.Mutex
	closed    bool
	viewports map[string]*Viewport
	outcomes  []Outcome
	listeners []func(Outcome)
}

var _ Scheduler = (*Mounter)(nil)

// MounterOption configures a Mounter.
type MounterOption func(*Mounter)

// WithMountLogger sets the logger used for task events.
func WithMountLogger(logger interfaces.Logger) MounterOption {
	return func(m *Mounter) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithView sets zoom, tiles and marker icon.
func WithView(view View) MounterOption {
	return func(m *Mounter) {
		m.view = view
	}
}

// WithPollInterval sets how often a task checks for its container.
func WithPollInterval(interval time.Duration) MounterOption {
	return func(m *Mounter) {
		if interval > 0 {
			m.pollInterval = interval
		}
	}
}

// WithTimeout bounds the polling phase. Zero waits until Close.
func WithTimeout(timeout time.Duration) MounterOption {
	return func(m *Mounter) {
		if timeout >= 0 {
			m.timeout = timeout
		}
	}
}

// WithWriteBack toggles rendering deferred failures into the container.
func WithWriteBack(enabled bool) MounterOption {
	return func(m *Mounter) {
		m.writeBack = enabled
	}
}

// WithClock overrides the time source used for elapsed times.
func WithClock(clock func() time.Time) MounterOption {
	return func(m *Mounter) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithOutcomeListener registers a callback invoked for every terminal
// outcome, from the task goroutine.
func WithOutcomeListener(listener func(Outcome)) MounterOption {
	return func(m *Mounter) {
		if listener != nil {
			m.listeners = append(m.listeners, listener)
		}
	}
}

// NewMounter builds a mounter over surface. geocoder is only consulted for
// tasks without explicit coordinates.
func NewMounter(parent context.Context, surface interfaces.Surface, geocoder interfaces.Geocoder, opts ...MounterOption) *Mounter {
	if parent == nil {
		parent = context.Background()
	}
	defaults := runtimeconfig.DefaultConfig()
	m := &Mounter{
		surface:      surface,
		geocoder:     geocoder,
		logger:       logging.NoOp(),
		view:         ViewFromConfig(defaults.Map),
		pollInterval: defaults.Mount.PollInterval,
		timeout:      defaults.Mount.Timeout,
		writeBack:    defaults.Mount.WriteBack,
		clock:        time.Now,
		viewports:    make(map[string]*Viewport),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	m.ctx, m.cancel = context.WithCancel(parent)
	return m
}

// Schedule starts the task immediately.
func (m *Mounter) Schedule(task Task) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.finish(Outcome{
			ContainerID: task.ContainerID,
			Label:       task.Label,
			State:       StateFailed,
			FailedIn:    StatePolling,
			Err:         waitError(ErrMounterClosed, task.ContainerID, ErrMounterClosed),
		})
		return
	}
	m.group.Go(func() error {
		m.finish(m.run(m.ctx, task))
		return nil
	})
	m.mu.Unlock()
}

func (m *Mounter) run(ctx context.Context, task Task) Outcome {
	started := m.clock()
	logger := logging.WithMapContext(m.logger, task.ContainerID, task.Label, task.Document)
	outcome := Outcome{ContainerID: task.ContainerID, Label: task.Label}

	fail := func(phase State, err error) Outcome {
		outcome.State = StateFailed
		outcome.FailedIn = phase
		outcome.Err = err
		outcome.Elapsed = m.clock().Sub(started)
		if IsCancelled(err) {
			logger.Debug("geomap.mount.cancelled", "phase", phase.String())
			return outcome
		}
		logger.Warn("geomap.mount.failed", "phase", phase.String(), "error", err)
		if m.writeBack && phase != StatePolling {
			m.writeBack(task.ContainerID, err, logger)
		}
		return outcome
	}

	logger.Debug("geomap.mount.polling_started", "interval", m.pollInterval, "timeout", m.timeout)
	if err := m.awaitContainer(ctx, task.ContainerID); err != nil {
		return fail(StatePolling, err)
	}

	logger.Debug("geomap.mount.resolving")
	point, err := m.resolve(ctx, task)
	if err != nil {
		return fail(StateResolving, err)
	}
	outcome.Point = point

	zoom := m.view.Zoom
	if task.Zoom > 0 {
		zoom = task.Zoom
	}
	if err := m.MountPoint(ctx, task.ContainerID, task.Label, point, zoom); err != nil {
		return fail(StateMounting, err)
	}

	outcome.State = StateMounted
	outcome.Elapsed = m.clock().Sub(started)
	logger.Info("geomap.mount.mounted", "point", point.String(), "elapsed", outcome.Elapsed)
	return outcome
}

// awaitContainer blocks until the surface reports the container. The first
// check happens after one poll interval, or earlier when the surface
// signals the element is ready.
func (m *Mounter) awaitContainer(ctx context.Context, id string) error {
	parent := ctx
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	var ready <-chan struct{}
	if notifier, ok := m.surface.(interfaces.ElementNotifier); ok {
		ready = notifier.ElementReady(id)
	}

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return waitError(ctx.Err(), id, parent.Err())
		case <-ticker.C:
		case <-ready:
			ready = nil
		}

		found, err := m.surface.HasElement(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return waitError(ctx.Err(), id, parent.Err())
			}
			return surfaceError(err, id, "lookup")
		}
		if found {
			return nil
		}
	}
}

func (m *Mounter) resolve(ctx context.Context, task Task) (interfaces.GeoPoint, error) {
	if task.Point != nil {
		return *task.Point, nil
	}
	if m.geocoder == nil {
		return interfaces.GeoPoint{}, goerrors.New("no geocoder configured", goerrors.CategoryInternal)
	}
	point, err := m.geocoder.Resolve(ctx, task.Label)
	if err != nil && ctx.Err() != nil {
		return interfaces.GeoPoint{}, waitError(ctx.Err(), task.ContainerID, ctx.Err())
	}
	return point, err
}

// MountPoint realises one mounting pass: the container's viewport is created
// on first use, centred on point at zoom, and a marker labelled label is
// added with its popup open. Every call adds a marker.
func (m *Mounter) MountPoint(ctx context.Context, containerID, label string, point interfaces.GeoPoint, zoom int) error {
	lat, lng, err := point.Float()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid geo point").
			WithTextCode(TextCodePointInvalid)
	}
	marker := Marker{Position: LatLng{Lat: lat, Lng: lng}, Popup: label, PopupOpen: true}

	m.mu.Lock()
	viewport, existed := m.viewports[containerID]
	if !existed {
		viewport = &Viewport{ContainerID: containerID, Tiles: m.view.Tiles}
		m.viewports[containerID] = viewport
	}
	previous := viewport.clone()
	viewport.Center = marker.Position
	viewport.Zoom = zoom
	viewport.Markers = append(viewport.Markers, marker)
	script, err := MountScript(*viewport, marker, m.view.Icon)
	m.mu.Unlock()
	if err != nil {
		m.restore(containerID, previous, existed)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "render mount script")
	}

	if err := m.surface.Exec(ctx, containerID, script); err != nil {
		m.restore(containerID, previous, existed)
		return surfaceError(err, containerID, "exec")
	}
	return nil
}

func (m *Mounter) restore(containerID string, previous Viewport, existed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.viewports[containerID]
	if !ok {
		return
	}
	// passes running concurrently may have appended after this one
	current.Markers = removeMarker(current.Markers, len(previous.Markers))
	if !existed && len(current.Markers) == 0 {
		delete(m.viewports, containerID)
	}
}

func removeMarker(markers []Marker, index int) []Marker {
	if index < 0 || index >= len(markers) {
		return markers
	}
	return append(markers[:index], markers[index+1:]...)
}

func (m *Mounter) writeBack(containerID string, cause error, logger interfaces.Logger) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(m.ctx), writeBackTimeout)
	defer cancel()
	if err := m.surface.SetContent(ctx, containerID, ErrorMarkup(DisplayMessage(cause))); err != nil {
		logger.Warn("geomap.mount.write_back_failed", "error", err)
	}
}

func (m *Mounter) finish(outcome Outcome) {
	m.mu.Lock()
	m.outcomes = append(m.outcomes, outcome)
	listeners := m.listeners
	m.mu.Unlock()
	for _, listener := range listeners {
		listener(outcome)
	}
}

// Viewport returns a copy of the viewport mounted in containerID.
func (m *Mounter) Viewport(containerID string) (Viewport, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	viewport, ok := m.viewports[containerID]
	if !ok {
		return Viewport{}, false
	}
	return viewport.clone(), true
}

// Outcomes returns the terminal outcomes recorded so far.
func (m *Mounter) Outcomes() []Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Outcome, len(m.outcomes))
	copy(out, m.outcomes)
	return out
}

// Wait blocks until every scheduled task reached a terminal state or ctx is
// done, and returns the outcomes recorded so far.
func (m *Mounter) Wait(ctx context.Context) ([]Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	done := make(chan struct{})
	go func() {
		_ = m.group.Wait()
		close(done)
	}()
	select {
	case <-done:
		return m.Outcomes(), nil
	case <-ctx.Done():
		return m.Outcomes(), ctx.Err()
	}
}

// Close cancels every running task, waits for them and returns all outcomes.
// Tasks scheduled afterwards fail immediately.
func (m *Mounter) Close() []Outcome {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.cancel()
	_ = m.group.Wait()
	return m.Outcomes()
}
