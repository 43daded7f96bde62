package extractors

import (
	"sync"

	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/internal/plugins"
	"github.com/feichai0017/docintel/pkg/logger"
)

// mimeAliases maps known MIME spellings to their canonical form before
// registration and dispatch.
var mimeAliases = map[string]string{
	"image/jpg":                "image/jpeg",
	"application/x-pdf":        "application/pdf",
	"text/x-markdown":          "text/markdown",
	"application/vnd.ms-excel": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"text/xml":                 "application/xml",
}

// CanonicalMime normalizes a MIME type through the alias table.
func CanonicalMime(mimeType string) string {
	if canonical, ok := mimeAliases[mimeType]; ok {
		return canonical
	}
	return mimeType
}

// Registry maps canonical MIME types to document extractors. Unlike the
// generic plugin registry it is keyed by capability: two extractors claiming
// the same concrete type are rejected at register time, so dispatch never
// has to break a tie.
type Registry struct {
	mu     sync.RWMutex
	byMime map[string]plugins.DocumentExtractor
	order  []string
	byName map[string]plugins.DocumentExtractor

	log logger.Logger
}

// NewRegistry builds an empty extractor registry.
func NewRegistry(log logger.Logger) *Registry {
	if log == nil {
		log = logger.NewNop()
	}
	return &Registry{
		byMime: make(map[string]plugins.DocumentExtractor),
		byName: make(map[string]plugins.DocumentExtractor),
		log:    log,
	}
}

// Register adds an extractor for every MIME type it declares. Claiming a
// type another extractor already owns fails the whole registration.
func (r *Registry) Register(e plugins.DocumentExtractor) error {
	name := e.Name()
	if name == "" {
		return errs.NewPlugin(name, nil, "invalid extractor: empty name")
	}
	mimes := e.SupportedMimeTypes()
	if len(mimes) == 0 {
		return errs.NewPlugin(name, nil, "invalid extractor %q: no supported MIME types", name)
	}

	r.mu.Lock()
	if _, exists := r.byName[name]; exists {
		r.mu.Unlock()
		return errs.NewPlugin(name, nil, "extractor %q is already registered", name)
	}
	canonical := make([]string, 0, len(mimes))
	for _, m := range mimes {
		cm := CanonicalMime(m)
		if owner, taken := r.byMime[cm]; taken {
			r.mu.Unlock()
			return errs.NewPlugin(name, nil,
				"extractor %q claims %s already handled by %q", name, cm, owner.Name())
		}
		canonical = append(canonical, cm)
	}
	for _, cm := range canonical {
		r.byMime[cm] = e
	}
	r.byName[name] = e
	r.order = append(r.order, name)
	r.mu.Unlock()

	if err := e.Initialize(); err != nil {
		r.log.Warn("extractor initialize failed, registration kept",
			logger.String("extractor", name),
			logger.Error(err),
		)
	}
	return nil
}

// Unregister removes an extractor and all its MIME claims. Idempotent.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	e, exists := r.byName[name]
	if exists {
		delete(r.byName, name)
		for m, owner := range r.byMime {
			if owner.Name() == name {
				delete(r.byMime, m)
			}
		}
		for i, n := range r.order {
			if n == name {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()

	if exists {
		if err := e.Shutdown(); err != nil {
			r.log.Warn("extractor shutdown failed",
				logger.String("extractor", name),
				logger.Error(err),
			)
		}
	}
}

// ForMime returns the single extractor registered for the canonicalized MIME
// type, or an UnsupportedFormat error naming it.
func (r *Registry) ForMime(mimeType string) (plugins.DocumentExtractor, error) {
	canonical := CanonicalMime(mimeType)
	r.mu.RLock()
	e, ok := r.byMime[canonical]
	r.mu.RUnlock()
	if !ok {
		return nil, errs.NewUnsupportedFormat(mimeType)
	}
	return e, nil
}

// Names returns registered extractor names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// SupportedMimeTypes returns every claimed canonical MIME type.
func (r *Registry) SupportedMimeTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byMime))
	for m := range r.byMime {
		out = append(out, m)
	}
	return out
}

// Clear unregisters every extractor.
func (r *Registry) Clear() {
	r.mu.Lock()
	removed := make([]plugins.DocumentExtractor, 0, len(r.order))
	for _, name := range r.order {
		removed = append(removed, r.byName[name])
	}
	r.byMime = make(map[string]plugins.DocumentExtractor)
	r.byName = make(map[string]plugins.DocumentExtractor)
	r.order = nil
	r.mu.Unlock()

	for _, e := range removed {
		if err := e.Shutdown(); err != nil {
			r.log.Warn("extractor shutdown failed",
				logger.String("extractor", e.Name()),
				logger.Error(err),
			)
		}
	}
}
