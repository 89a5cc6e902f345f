package identity

import (
	"encoding/hex"
	"strconv"
	"sync"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// ContainerPrefix prefixes every container identifier.
	ContainerPrefix = "map-"
	tokenLength     = 8
	maxAttempts     = 16
)

// ContainerIDs issues container identifiers of the form map-<token>. Tokens
// are derived from a seed and a monotonically increasing counter, and every
// issued identifier is remembered so a render never hands out the same id
// twice. Safe for concurrent use.
type ContainerIDs struct {
	mu      sync.Mutex
	seed    string
	counter uint64
	issued  map[string]struct{}
}

// NewContainerIDs returns a generator for one render. Renders sharing a seed
// produce the same sequence; an empty seed picks a random one.
func NewContainerIDs(seed string) *ContainerIDs {
	if seed == "" {
		seed = DocumentSeed("")
	}
	return &ContainerIDs{
		seed:   seed,
		issued: make(map[string]struct{}),
	}
}

// Next returns a fresh identifier.
func (g *ContainerIDs) Next() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for range maxAttempts {
		g.counter++
		uid := UUID("geomap:container:" + g.seed + ":" + strconv.FormatUint(g.counter, 10))
		id := ContainerPrefix + hex.EncodeToString(uid[:tokenLength/2])
		if _, taken := g.issued[id]; taken {
			continue
		}
		g.issued[id] = struct{}{}
		return id, nil
	}

	return "", goerrors.New("container identifier space exhausted", goerrors.CategoryInternal).
		WithTextCode("CONTAINER_ID_EXHAUSTED").
		WithMetadata(map[string]any{"issued": len(g.issued)})
}

// Issued reports how many identifiers the generator has handed out.
func (g *ContainerIDs) Issued() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.issued)
}
