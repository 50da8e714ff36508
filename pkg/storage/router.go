package storage

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
)

// Router dispatches each call to the engine enabled for the URI's scheme.
type Router struct {
	engines map[Scheme]Engine
}

var _ Engine = (*Router)(nil)

func NewRouter() *Router {
	return &Router{engines: make(map[Scheme]Engine)}
}

// NewRemoteEngine returns a router for object stores reachable over the
// network.
func NewRemoteEngine() *Router {
	router := NewRouter()
	router.Enable(S3Scheme)
	return router
}

// NewLocalEngine returns a router for the local file system, in-process
// memory, and the remote object stores.
func NewLocalEngine() *Router {
	router := NewRemoteEngine()
	router.Enable(FileScheme)
	router.Enable(MemoryScheme)
	return router
}

func (r *Router) Enable(scheme Scheme) {
	switch scheme {
	case FileScheme:
		r.engines[scheme] = NewFileSystem()
	case MemoryScheme:
		r.engines[scheme] = NewMemory()
	case S3Scheme:
		r.engines[scheme] = NewS3()
	default:
		panic(fmt.Sprintf("unknown storage scheme %q", scheme))
	}
}

// Set installs engine for scheme, replacing any enabled engine.
func (r *Router) Set(scheme Scheme, engine Engine) {
	r.engines[scheme] = engine
}

func (r *Router) lookup(u *URI) (Engine, error) {
	scheme := Scheme(u.Scheme)
	if scheme == "" {
		scheme = FileScheme
	}
	engine, ok := r.engines[scheme]
	if !ok {
		return nil, fmt.Errorf("%s: storage scheme %q not enabled", u, scheme)
	}
	return engine, nil
}

func (r *Router) Open(ctx context.Context, props map[string]string) error {
	var err error
	for _, engine := range r.engines {
		err = multierr.Append(err, engine.Open(ctx, props))
	}
	return err
}

func (r *Router) Close() error {
	var err error
	for _, engine := range r.engines {
		err = multierr.Append(err, engine.Close())
	}
	return err
}

func (r *Router) Create(ctx context.Context, u *URI) error {
	engine, err := r.lookup(u)
	if err != nil {
		return err
	}
	return engine.Create(ctx, u)
}

func (r *Router) Remove(ctx context.Context, u *URI) error {
	engine, err := r.lookup(u)
	if err != nil {
		return err
	}
	return engine.Remove(ctx, u)
}

func (r *Router) GetSize(ctx context.Context, u *URI) (int64, error) {
	engine, err := r.lookup(u)
	if err != nil {
		return 0, err
	}
	return engine.GetSize(ctx, u)
}

func (r *Router) GetProps(ctx context.Context, u *URI) (Props, error) {
	engine, err := r.lookup(u)
	if err != nil {
		return Props{}, err
	}
	return engine.GetProps(ctx, u)
}

func (r *Router) Seal(ctx context.Context, u *URI) error {
	engine, err := r.lookup(u)
	if err != nil {
		return err
	}
	return engine.Seal(ctx, u)
}

func (r *Router) Append(ctx context.Context, u *URI, b []byte) (int, error) {
	engine, err := r.lookup(u)
	if err != nil {
		return 0, err
	}
	return engine.Append(ctx, u, b)
}

func (r *Router) ReadAll(ctx context.Context, u *URI) ([]byte, error) {
	engine, err := r.lookup(u)
	if err != nil {
		return nil, err
	}
	return engine.ReadAll(ctx, u)
}

func (r *Router) ReadRange(ctx context.Context, u *URI, offset, length int64) ([]byte, error) {
	engine, err := r.lookup(u)
	if err != nil {
		return nil, err
	}
	return engine.ReadRange(ctx, u, offset, length)
}

func (r *Router) WriteAll(ctx context.Context, u *URI, b []byte) error {
	engine, err := r.lookup(u)
	if err != nil {
		return err
	}
	return engine.WriteAll(ctx, u, b)
}
