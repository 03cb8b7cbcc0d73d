// Package providers registers the adapter factories with the loader. Each
// backend lives in its own file behind a no_<provider> build tag so a binary
// can leave a backend and its SDK out.
package providers

import (
	"sort"
	"sync"

	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/donation/loader"
)

var (
	mu       sync.Mutex
	compiled []model.Provider
)

func register(p model.Provider, f loader.Factory) {
	mu.Lock()
	compiled = append(compiled, p)
	mu.Unlock()
	loader.Register(p, f)
}

// Available lists the providers compiled into the binary.
func Available() []model.Provider {
	mu.Lock()
	defer mu.Unlock()
	out := append([]model.Provider(nil), compiled...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
