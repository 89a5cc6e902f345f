package geomap

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/goliatone/go-mapdirective/internal/geocode"
	"github.com/goliatone/go-mapdirective/pkg/interfaces"
)

type fakeSurface struct {
	mu       sync.Mutex
	elements map[string]bool
	content  map[string]string
	scripts  map[string][]string
	execErr  error
	ready    map[string]chan struct{}
	notify   bool
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		elements: map[string]bool{},
		content:  map[string]string{},
		scripts:  map[string][]string{},
		ready:    map[string]chan struct{}{},
	}
}

func (s *fakeSurface) add(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements[id] = true
	if ch, ok := s.ready[id]; ok {
		close(ch)
		delete(s.ready, id)
	}
}

func (s *fakeSurface) HasElement(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elements[id], nil
}

func (s *fakeSurface) SetContent(_ context.Context, id, html string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.elements[id] {
		return errors.New("no such element")
	}
	s.content[id] = html
	return nil
}

func (s *fakeSurface) Exec(_ context.Context, id, script string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.execErr != nil {
		return s.execErr
	}
	s.scripts[id] = append(s.scripts[id], script)
	return nil
}

func (s *fakeSurface) contentOf(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content[id]
}

func (s *fakeSurface) scriptsFor(id string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.scripts[id]...)
}

// notifyingSurface adds ElementNotifier on top of fakeSurface.
type notifyingSurface struct {
	*fakeSurface
}

func (s notifyingSurface) ElementReady(id string) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{})
	if s.elements[id] {
		close(ch)
		return ch
	}
	s.ready[id] = ch
	return ch
}

type stubGeocoder struct {
	point interfaces.GeoPoint
	err   error
	calls atomic.Int32
}

func (g *stubGeocoder) Resolve(context.Context, string) (interfaces.GeoPoint, error) {
	g.calls.Add(1)
	return g.point, g.err
}

type notFoundGeocoder struct{}

func (notFoundGeocoder) Resolve(ctx context.Context, address string) (interfaces.GeoPoint, error) {
	empty := stubProvider{}
	return geocode.NewResolver(empty, nil).Resolve(ctx, address)
}

type stubProvider struct{}

func (stubProvider) Name() string { return "empty" }

func (stubProvider) Lookup(context.Context, string) ([]interfaces.GeoPoint, error) {
	return nil, nil
}

type recordingScheduler struct {
	tasks []Task
}

func (r *recordingScheduler) Schedule(task Task) {
	r.tasks = append(r.tasks, task)
}
