package reactive

// Kind distinguishes the two subscriber kinds a binding can have.
type Kind uint8

const (
	// KindCoarse fires on every accepted change.
	KindCoarse Kind = iota
	// KindSelector fires only when the selected projection changes.
	KindSelector
)

// String returns the kind's label.
func (k Kind) String() string {
	switch k {
	case KindCoarse:
		return "coarse"
	case KindSelector:
		return "selector"
	default:
		return "unknown"
	}
}

// Mode is a binding's dispatch timing policy.
type Mode uint8

const (
	// ModeBatched coalesces changes into one evaluation per scheduler tick.
	ModeBatched Mode = iota
	// ModeSync evaluates on every change, before the mutating call returns.
	ModeSync
)

// String returns the mode's label.
func (m Mode) String() string {
	switch m {
	case ModeBatched:
		return "batched"
	case ModeSync:
		return "sync"
	default:
		return "unknown"
	}
}

// Dispatch describes one evaluation of a binding. Delivered is filled in
// once next has run: it reports whether the binding's callback was invoked.
type Dispatch struct {
	RootID    uint64
	BindingID uint64
	Kind      Kind
	Mode      Mode
	Delivered bool
}

// Middleware wraps binding evaluations. Implementations must call next
// exactly once and must not recover panics they do not re-raise.
type Middleware interface {
	Handle(d *Dispatch, next func())
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(d *Dispatch, next func())

// Handle implements Middleware.
func (f MiddlewareFunc) Handle(d *Dispatch, next func()) {
	f(d, next)
}

// Chain composes middleware so the first argument runs outermost.
// Nil entries are skipped; Chain of nothing returns nil.
func Chain(mws ...Middleware) Middleware {
	var list []Middleware
	for _, mw := range mws {
		if mw != nil {
			list = append(list, mw)
		}
	}
	switch len(list) {
	case 0:
		return nil
	case 1:
		return list[0]
	}
	return MiddlewareFunc(func(d *Dispatch, next func()) {
		var run func(i int)
		run = func(i int) {
			if i == len(list) {
				next()
				return
			}
			list[i].Handle(d, func() { run(i + 1) })
		}
		run(0)
	})
}
