package register

import "sync"

// registry keys handler lists by an arbitrary comparable key so that
// providers can contribute setup funcs without importing each other.
type registry struct {
	mu       sync.Mutex
	handlers map[any][]any
}

var global = &registry{
	handlers: make(map[any][]any),
}

type Handler[T any] func(T)

// RegisterFunc appends handler under key. Safe for concurrent use
// from package init funcs.
func RegisterFunc[T any](key any, handler Handler[T]) {
	global.mu.Lock()
	global.handlers[key] = append(global.handlers[key], handler)
	global.mu.Unlock()
}

// ResolveFuncHandlers returns every handler registered under key whose
// type matches T. Mismatched entries are skipped silently.
func ResolveFuncHandlers[T any](key any) []Handler[T] {
	global.mu.Lock()
	defer global.mu.Unlock()

	var matched []Handler[T]
	for _, raw := range global.handlers[key] {
		if h, ok := raw.(Handler[T]); ok {
			matched = append(matched, h)
		}
	}
	return matched
}
