package interfaces

import "context"

// Surface is the live display a rendered document has been loaded into. The
// deferred map mounter only talks to the document through this contract.
type Surface interface {
	// HasElement reports whether an element with the given DOM id exists.
	HasElement(ctx context.Context, id string) (bool, error)
	// SetContent replaces the inner HTML of the element with the given id.
	SetContent(ctx context.Context, id string, html string) error
	// Exec runs a script in the context of the element's document. The id is
	// the container the script targets.
	Exec(ctx context.Context, id string, script string) error
}

// ElementNotifier is implemented by surfaces that can signal when an element
// becomes available, letting the mounter skip a polling round.
type ElementNotifier interface {
	// ElementReady returns a channel that is closed once the element exists.
	ElementReady(id string) <-chan struct{}
}
