// MIT License
//
// Copyright (c) 2026 GoSPI Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package extension

import (
	"reflect"
	"sync"

	goset "github.com/deckarep/golang-set/v2"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	otelmetric "go.opentelemetry.io/otel/metric"

	gerrors "github.com/gospi-io/gospi/errors"
	"github.com/gospi-io/gospi/internal/metric"
	"github.com/gospi-io/gospi/internal/xsync"
	"github.com/gospi-io/gospi/log"
)

// awarenessEntry records a marker interface whose setters the runtime
// delivers itself. Setter injection must leave those setters alone.
type awarenessEntry struct {
	iface   reflect.Type
	setters goset.Set[string]
}

// Director creates and caches the extension Loaders of a single scope node.
//
// Directors are chained parent-ward the same way their scope nodes are
// (module to application to framework). A loader request walks the chain
// according to the contract's scope Tag, so that an APPLICATION contract
// requested from two modules of the same application yields the exact same
// Loader and therefore the same singleton instances.
//
// A Director is safe for concurrent use.
type Director struct {
	parent *Director
	scope  Tag
	model  ScopeModel

	loaders *xsync.Map[reflect.Type, *Loader]

	mu         sync.RWMutex
	processors []PostProcessor
	awareness  []awarenessEntry
	metrics    *metric.RegistryMetric

	destroyed *atomic.Bool
}

// enforce compilation error
var _ Accessor = (*Director)(nil)

// NewDirector creates a Director for the given scope node. The parent is the
// Director of the node's parent scope, nil for the framework root. Awareness
// setters for ScopeModelAware and AccessorAware are pre-registered so that
// setter injection never races with the runtime's own delivery of those
// dependencies.
func NewDirector(parent *Director, scope Tag, model ScopeModel) *Director {
	director := &Director{
		parent:    parent,
		scope:     scope,
		model:     model,
		loaders:   xsync.NewMap[reflect.Type, *Loader](),
		destroyed: atomic.NewBool(false),
	}

	director.awareness = []awarenessEntry{
		{
			iface:   reflect.TypeOf((*ScopeModelAware)(nil)).Elem(),
			setters: goset.NewSet("SetScopeModel"),
		},
		{
			iface:   reflect.TypeOf((*AccessorAware)(nil)).Elem(),
			setters: goset.NewSet("SetExtensionAccessor"),
		},
	}

	if parent != nil {
		director.metrics = parent.registryMetric()
	}

	return director
}

// ExtensionDirector makes the Director its own Accessor.
func (d *Director) ExtensionDirector() *Director {
	return d
}

// Scope returns the scope Tag of the node this Director belongs to.
func (d *Director) Scope() Tag {
	return d.scope
}

// Model returns the scope node this Director belongs to.
func (d *Director) Model() ScopeModel {
	return d.model
}

// LoaderFor returns the Loader responsible for the given contract type.
//
// The contract's scope Tag decides which node in the chain hosts the Loader:
// SELF contracts are hosted by the requesting node itself, every other Tag is
// resolved bottom-up so the instance cache lands on the node whose scope
// matches. An error is returned when the Director is destroyed, when the type
// was never registered as a Contract, or when no node in the chain matches
// the contract's scope.
func (d *Director) LoaderFor(contractType reflect.Type) (*Loader, error) {
	if d.destroyed.Load() {
		return nil, gerrors.ErrDirectorDestroyed
	}

	catalog := d.model.Catalog()
	contract, ok := catalog.ContractOf(contractType)
	if !ok {
		return nil, gerrors.NewErrContractNotRegistered(typeName(contractType))
	}

	loader := d.loaderFor(contract)
	if loader == nil {
		return nil, gerrors.NewErrNoMatchingScope(contract.Name(), contract.Scope().String())
	}
	return loader, nil
}

// loaderFor walks the director chain for the contract. It returns nil when no
// node in the chain can host the loader. Loaders obtained from an ancestor are
// deliberately not cached locally so that an ancestor-level eviction or
// destroy is never masked by a stale child cache.
func (d *Director) loaderFor(contract *Contract) *Loader {
	if d.destroyed.Load() {
		return nil
	}

	if loader, ok := d.loaders.Get(contract.ctype); ok {
		return loader
	}

	if contract.Scope() == TagSelf {
		return d.createLoader(contract)
	}

	if d.parent != nil {
		if loader := d.parent.loaderFor(contract); loader != nil {
			return loader
		}
	}

	if contract.Scope() == d.scope {
		return d.createLoader(contract)
	}
	return nil
}

func (d *Director) createLoader(contract *Contract) *Loader {
	if loader, ok := d.loaders.Get(contract.ctype); ok {
		return loader
	}
	loader, _ := d.loaders.GetOrSet(contract.ctype, newLoader(contract, d))
	return loader
}

// RegisterProcessor appends a post-processor to the director. Loaders snapshot
// the processor list when they are first created, so processors must be
// registered before the first extension of interest is constructed. Scope
// nodes do this during initialization.
func (d *Director) RegisterProcessor(processor PostProcessor) {
	if processor == nil {
		return
	}
	d.mu.Lock()
	d.processors = append(d.processors, processor)
	d.mu.Unlock()
}

// RegisterAwareness marks an interface as runtime-delivered. Setter injection
// skips the named setters on any extension implementing the interface.
func (d *Director) RegisterAwareness(iface reflect.Type, setters ...string) error {
	if iface == nil || iface.Kind() != reflect.Interface {
		return gerrors.NewErrNotAnInterface(typeName(iface))
	}
	d.mu.Lock()
	d.awareness = append(d.awareness, awarenessEntry{
		iface:   iface,
		setters: goset.NewSet(setters...),
	})
	d.mu.Unlock()
	return nil
}

// EnableMetrics builds the runtime instruments on the given meter and starts
// recording loader activity for this director and for child directors created
// afterwards. A nil meter falls back to the meter of the globally registered
// provider.
func (d *Director) EnableMetrics(meter otelmetric.Meter) error {
	if meter == nil {
		meter = metric.NewProvider().Meter()
	}
	registryMetric, err := metric.NewRegistryMetric(meter)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.metrics = registryMetric
	d.mu.Unlock()
	return nil
}

func (d *Director) registryMetric() *metric.RegistryMetric {
	d.mu.RLock()
	metrics := d.metrics
	d.mu.RUnlock()
	return metrics
}

func (d *Director) processorsSnapshot() []PostProcessor {
	d.mu.RLock()
	processors := make([]PostProcessor, len(d.processors))
	copy(processors, d.processors)
	d.mu.RUnlock()
	return processors
}

// ignoredSettersFor returns the setter names that injection must skip on the
// given extension type because the runtime delivers them itself.
func (d *Director) ignoredSettersFor(extensionType reflect.Type) goset.Set[string] {
	ignored := goset.NewSet[string]()
	d.mu.RLock()
	for _, entry := range d.awareness {
		if extensionType.Implements(entry.iface) {
			ignored = ignored.Union(entry.setters)
		}
	}
	d.mu.RUnlock()
	return ignored
}

func (d *Director) logger() log.Logger {
	if d.model == nil || d.model.Logger() == nil {
		return log.DiscardLogger
	}
	return d.model.Logger()
}

// EvictDiscovery clears the discovery caches of every loader this director
// created so the next lookup re-scans the node's sources. Constructed
// singletons survive the eviction.
func (d *Director) EvictDiscovery() {
	d.loaders.Range(func(_ reflect.Type, loader *Loader) {
		loader.evict()
	})
}

// IsDestroyed reports whether Destroy has been called.
func (d *Director) IsDestroyed() bool {
	return d.destroyed.Load()
}

// Destroy tears down every Loader this director created and marks the
// director unusable. It is idempotent and returns the joined loader
// disposal errors, if any.
func (d *Director) Destroy() error {
	if !d.destroyed.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	d.loaders.Range(func(_ reflect.Type, loader *Loader) {
		err = multierr.Append(err, loader.Destroy())
	})
	d.loaders.Reset()
	return err
}

// typeName renders a reflect.Type for error messages, tolerating nil.
func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
