package geomap

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-mapdirective/internal/directive"
	"github.com/goliatone/go-mapdirective/internal/identity"
	"github.com/goliatone/go-mapdirective/internal/logging"
	"github.com/goliatone/go-mapdirective/pkg/interfaces"
)

var (
	schedulerKey = parser.NewContextKey()
	idsKey       = parser.NewContextKey()
	tasksKey     = parser.NewContextKey()
	documentKey  = parser.NewContextKey()
	zoomKey      = parser.NewContextKey()
)

// WithScheduler attaches the scheduler that receives tasks for this parse.
func WithScheduler(pc parser.Context, scheduler Scheduler) {
	pc.Set(schedulerKey, scheduler)
}

// WithContainerIDs attaches the identifier generator for this parse.
func WithContainerIDs(pc parser.Context, ids *identity.ContainerIDs) {
	pc.Set(idsKey, ids)
}

// WithDocument records the document path for logging and task metadata.
func WithDocument(pc parser.Context, path string) {
	pc.Set(documentKey, path)
}

// WithZoom overrides the map zoom for every task of this parse.
func WithZoom(pc parser.Context, zoom int) {
	pc.Set(zoomKey, zoom)
}

// TasksFrom returns the tasks registered while transforming, in document
// order.
func TasksFrom(pc parser.Context) []Task {
	tasks, _ := pc.Get(tasksKey).([]Task)
	return tasks
}

// Transformer rewrites map directives into placeholders and registers a
// mount task for each one.
type Transformer struct {
	name   string
	style  ContainerStyle
	logger interfaces.Logger
}

var _ parser.ASTTransformer = (*Transformer)(nil)

// TransformerOption configures a Transformer.
type TransformerOption func(*Transformer)

// WithDirectiveName changes the directive name handled.
func WithDirectiveName(name string) TransformerOption {
	return func(t *Transformer) {
		if name != "" {
			t.name = name
		}
	}
}

// WithContainerStyle sets the placeholder size.
func WithContainerStyle(style ContainerStyle) TransformerOption {
	return func(t *Transformer) {
		if style.Height != "" {
			t.style.Height = style.Height
		}
		if style.Width != "" {
			t.style.Width = style.Width
		}
	}
}

// WithTransformerLogger sets the logger.
func WithTransformerLogger(logger interfaces.Logger) TransformerOption {
	return func(t *Transformer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTransformer returns a transformer for the map directive.
func NewTransformer(opts ...TransformerOption) *Transformer {
	t := &Transformer{
		name:   "map",
		style:  ContainerStyle{Height: "400px", Width: "100%"},
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

func (t *Transformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	ids := pc.ComputeIfAbsent(idsKey, func() any {
		return identity.NewContainerIDs("")
	}).(*identity.ContainerIDs)
	scheduler, _ := pc.Get(schedulerKey).(Scheduler)
	document, _ := pc.Get(documentKey).(string)
	zoom, _ := pc.Get(zoomKey).(int)

	for _, node := range directive.Collect(doc) {
		if node.Name != t.name {
			continue
		}
		markup, task, err := t.rewrite(node, ids)
		if err != nil {
			t.logger.Warn("geomap.directive.rejected", "directive", node.Source, "document", document, "error", err)
			directive.Replace(node, directive.NewRawHTML(ErrorMarkup(DisplayMessage(err))))
			continue
		}
		directive.Replace(node, directive.NewRawHTML(markup))

		task.Document = document
		task.Zoom = zoom
		pc.Set(tasksKey, append(TasksFrom(pc), task))
		t.logger.Debug("geomap.directive.rewritten", "container_id", task.ContainerID, "label", task.Label, "explicit", task.Point != nil)
		if scheduler != nil {
			scheduler.Schedule(task)
		}
	}
}

func (t *Transformer) rewrite(node *directive.Node, ids *identity.ContainerIDs) (markup string, task Task, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = goerrors.New(fmt.Sprint(recovered), goerrors.CategoryInternal).
				WithTextCode(TextCodeDirectivePanic)
		}
	}()

	id, err := ids.Next()
	if err != nil {
		return "", Task{}, err
	}
	target, err := readTarget(node.Args)
	if err != nil {
		return "", Task{}, err
	}
	return Placeholder(id, t.style), Task{
		ContainerID: id,
		Label:       target.Label,
		Point:       target.Point,
	}, nil
}
