package reactive

// Binding is the handle an external view layer holds between mount and
// unmount. Its rerender trigger carries no payload: it only means the state
// may have changed and must be re-read.
type Binding struct {
	d *dispatcher
}

// BindObserver registers rerender on root. Without WithSelector the binding
// is coarse; with one it fires only when the projection changes. Bindings
// are batched unless WithSync(true) is given.
func BindObserver(root *Root, rerender func(), opts ...BindOption) *Binding {
	var cfg bindConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &dispatcher{
		id:   nextID(),
		root: root,
		mode: ModeBatched,
	}
	if cfg.sync {
		d.mode = ModeSync
	}
	if cfg.selector != nil {
		d.eval = newSelectorSubscriber(root, cfg.selector, rerender)
	} else {
		d.eval = &coarseSubscriber{fn: rerender}
	}
	d.kind = d.eval.kind()
	d.alive.Store(true)
	d.sub = root.notifier.Subscribe(d.onChange)

	root.logger.Debug("binding registered",
		"binding", d.id,
		"kind", d.kind.String(),
		"mode", d.mode.String(),
	)
	return &Binding{d: d}
}

// ID returns the binding's unique identifier.
func (b *Binding) ID() uint64 {
	return b.d.id
}

// Kind reports whether the binding is coarse or selector-based.
func (b *Binding) Kind() Kind {
	return b.d.kind
}

// Mode reports the binding's dispatch mode.
func (b *Binding) Mode() Mode {
	return b.d.mode
}

// Active reports whether the binding has not been torn down.
func (b *Binding) Active() bool {
	return b.d.alive.Load()
}

// Teardown removes the binding. An evaluation already deferred to the
// scheduler will not call rerender, and the binding releases the root and
// rerender. Calling Teardown again is a no-op.
func (b *Binding) Teardown() {
	if r := b.d.teardown(); r != nil {
		r.logger.Debug("binding torn down", "binding", b.d.id)
	}
}
