package derivation

import (
	"fmt"
	"sync"

	"github.com/ava12/sentgen/key"
	"github.com/ava12/sentgen/render"
)

// Context is an opaque handle for the dialogue or program state a derivation is valid under.
// Contexts are compared by identity only; nil means "no context".
type Context struct {
	id int

	// Value is only meaningful to the caller.
	Value any
}

// ID returns context index within its allocator.
func (c *Context) ID() int {
	return c.id
}

func (c *Context) Equal(other *Context) bool {
	return c == other
}

func (c *Context) String() string {
	if c == nil {
		return "CTX[nil]"
	}
	return fmt.Sprintf("CTX[%d:%v]", c.id, c.Value)
}

// Allocator mints contexts. Context ids are unique within an allocator.
// Allocator is safe for concurrent use.
type Allocator struct {
	mu       sync.Mutex
	contexts []*Context
}

func NewAllocator() *Allocator {
	return &Allocator{}
}

// New creates a context wrapping value.
func (a *Allocator) New(value any) *Context {
	a.mu.Lock()
	defer a.mu.Unlock()

	c := &Context{id: len(a.contexts), Value: value}
	a.contexts = append(a.contexts, c)
	return c
}

// Get returns context by id or nil.
func (a *Allocator) Get(id int) *Context {
	a.mu.Lock()
	defer a.mu.Unlock()

	if id < 0 || id >= len(a.contexts) {
		return nil
	}
	return a.contexts[id]
}

func (a *Allocator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.contexts)
}

// Compatible reports whether derivations with contexts c1 and c2 may be combined.
func Compatible(c1, c2 *Context) bool {
	return c1 == nil || c2 == nil || c1 == c2
}

// Meet returns the non-nil context of the two.
// Returns false if both contexts are non-nil and different, i.e. they are not compatible.
func Meet(c1, c2 *Context) (*Context, bool) {
	if c1 == nil {
		return c2, true
	}
	if c2 == nil || c1 == c2 {
		return c1, true
	}
	return nil, false
}

// ContextField is the key field of context seeds holding context id.
const ContextField = "ctx"

// NewContextSeed creates a derivation whose value is the context value.
// The derivation has an empty sentence and key {ctx: id}.
func NewContextSeed(c *Context) (*Derivation, error) {
	return NewSeed(key.Of(ContextField, c.ID()), c.Value, &render.Phrase{}, c, 0)
}

// IsContextSeed reports whether d was created by NewContextSeed.
func IsContextSeed(d *Derivation) bool {
	if d.Rule != nil || d.Context == nil {
		return false
	}
	id, has := d.Key.Get(ContextField)
	return has && d.Key.Len() == 1 && key.ValuesEqual(id, d.Context.ID())
}
