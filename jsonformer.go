// Package jsonformer keeps the registry of model backends. Backends register
// themselves from init, so importing a provider package is enough to make it
// available by name:
//
//	import _ "github.com/lemon-mint/jsonformer/provider/ollama"
package jsonformer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/lemon-mint/jsonformer/pconf"
	"github.com/lemon-mint/jsonformer/provider"
)

var ErrUnknownProvider = errors.New("unknown provider")

var (
	providersMu sync.RWMutex
	providers   = make(map[string]provider.Provider)
)

// Providers returns the names of the registered providers.
func Providers() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	list := make([]string, 0, len(providers))
	for name := range providers {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

// RegisterProvider registers a provider. A later registration under the same
// name replaces the earlier one.
func RegisterProvider(name string, p provider.Provider) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = p
}

// LookupProvider returns the provider registered under name.
func LookupProvider(name string) (provider.Provider, bool) {
	providersMu.RLock()
	defer providersMu.RUnlock()
	p, ok := providers[name]
	return p, ok
}

// NewClient creates a client of the named provider.
func NewClient(ctx context.Context, name string, configs ...pconf.Config) (provider.Client, error) {
	p, ok := LookupProvider(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrUnknownProvider, name, Providers())
	}
	return p.NewClient(ctx, configs...)
}
