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
	"context"
	"io"
	"reflect"
	"sort"
	"strings"
	"sync"

	goset "github.com/deckarep/golang-set/v2"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"

	gerrors "github.com/gospi-io/gospi/errors"
	"github.com/gospi-io/gospi/internal/validation"
	"github.com/gospi-io/gospi/internal/xsync"
	"github.com/gospi-io/gospi/log"
)

// DefaultAlias is the reserved extension name resolving to the contract's
// default implementation.
const DefaultAlias = "true"

// rawSuffix marks the holder entry of an instance obtained without wrapping.
const rawSuffix = "_origin"

// holder caches one constructed extension instance behind its own lock so
// that independent names never serialize on each other.
type holder struct {
	mu       sync.Mutex
	instance any
}

func (h *holder) get() any {
	h.mu.Lock()
	instance := h.instance
	h.mu.Unlock()
	return instance
}

// Loader discovers, constructs and caches the named implementations of a
// single extension contract. Instances are lazy singletons: the first Get for
// a name runs the full construction pipeline (factory, before hooks, setter
// injection, after hooks, wrapper decoration, initialization) and every later
// Get returns the cached result. A Loader is obtained from a Director and is
// safe for concurrent use.
type Loader struct {
	contract   *Contract
	director   *Director
	logger     log.Logger
	injector   Injector
	processors []PostProcessor

	// discovery state, guarded by mu
	mu               sync.Mutex
	loaded           bool
	classes          map[string]*Provider
	wrappers         []*Provider
	adaptiveProvider *Provider
	activates        map[string]*Activation
	activatedRefs    goset.Set[string]
	exceptions       map[string]error
	poisoned         map[string]error
	discoveryErr     error

	// constructed singletons, kept across discovery evictions
	holders      *xsync.Map[string, *holder]
	rawGroup     singleflight.Group
	rawInstances *xsync.Map[string, any]

	// adaptive singleton, error cached until eviction
	adaptiveMu    sync.Mutex
	adaptive      any
	adaptiveErr   error
	adaptiveBuilt bool

	destroyed *atomic.Bool
}

// newLoader builds the loader for a contract. The post-processor list is
// snapshotted here and the adaptive injector is resolved eagerly, except for
// the Injector contract itself whose own loader never injects.
func newLoader(contract *Contract, director *Director) *Loader {
	loader := &Loader{
		contract:      contract,
		director:      director,
		logger:        director.logger(),
		processors:    director.processorsSnapshot(),
		classes:       make(map[string]*Provider),
		activates:     make(map[string]*Activation),
		activatedRefs: goset.NewSet[string](),
		exceptions:    make(map[string]error),
		poisoned:      make(map[string]error),
		holders:       xsync.NewMap[string, *holder](),
		rawInstances:  xsync.NewMap[string, any](),
		destroyed:     atomic.NewBool(false),
	}
	if contract.ctype != injectorType {
		loader.resolveInjector()
	}
	return loader
}

func (l *Loader) resolveInjector() {
	injectorLoader, err := l.director.LoaderFor(injectorType)
	if err == nil {
		var adaptive any
		if adaptive, err = injectorLoader.Adaptive(); err == nil {
			l.injector, _ = adaptive.(Injector)
			return
		}
	}
	l.logger.Warnf("failed to resolve the adaptive injector for contract=(%s): %v", l.contract.Name(), err)
}

// Contract returns the contract this loader serves.
func (l *Loader) Contract() *Contract {
	return l.contract
}

// Get returns the extension bound to the given name, constructing it on first
// use. The DefaultAlias resolves to the contract's default name. Construction
// failures are not cached, a later Get retries.
func (l *Loader) Get(name string) (any, error) {
	return l.get(name, true)
}

// GetRaw behaves like Get but skips wrapper decoration. The undecorated
// instance is cached independently of the wrapped one.
func (l *Loader) GetRaw(name string) (any, error) {
	return l.get(name, false)
}

func (l *Loader) get(name string, wrap bool) (any, error) {
	if l.destroyed.Load() {
		return nil, gerrors.ErrLoaderDestroyed
	}
	if name == "" {
		return nil, gerrors.ErrExtensionNameRequired
	}
	if name == DefaultAlias {
		defaultName := l.contract.DefaultName()
		if defaultName == "" {
			return nil, gerrors.NewErrNoDefault(l.contract.Name())
		}
		name = defaultName
	}

	if err := l.ensureLoaded(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	if err, ok := l.poisoned[name]; ok {
		l.mu.Unlock()
		return nil, err
	}
	provider, ok := l.classes[name]
	l.mu.Unlock()
	if !ok {
		return nil, l.notFoundError(name)
	}

	key := name
	if !wrap {
		key += rawSuffix
	}
	h, _ := l.holders.GetOrSet(key, &holder{})
	if instance := h.get(); instance != nil {
		return instance, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.instance != nil {
		return h.instance, nil
	}
	instance, err := l.createExtension(name, provider, wrap)
	if err != nil {
		return nil, err
	}
	h.instance = instance
	return instance, nil
}

// Default returns the extension bound to the contract's default name.
func (l *Loader) Default() (any, error) {
	if l.destroyed.Load() {
		return nil, gerrors.ErrLoaderDestroyed
	}
	name := l.contract.DefaultName()
	if name == "" {
		return nil, gerrors.NewErrNoDefault(l.contract.Name())
	}
	return l.Get(name)
}

// DefaultName returns the contract's default extension name, empty when the
// contract declares none.
func (l *Loader) DefaultName() string {
	return l.contract.DefaultName()
}

// GetOrDefault returns the named extension when the name is supported and
// falls back to the default extension otherwise.
func (l *Loader) GetOrDefault(name string) (any, error) {
	if name != "" && l.Has(name) {
		return l.Get(name)
	}
	return l.Default()
}

// Has reports whether the given name is bound to a provider. Poisoned names
// report true, their lookup failing only at Get time.
func (l *Loader) Has(name string) bool {
	if l.destroyed.Load() || name == "" {
		return false
	}
	if err := l.ensureLoaded(); err != nil {
		return false
	}
	l.mu.Lock()
	_, ok := l.classes[name]
	l.mu.Unlock()
	return ok
}

// Names returns the sorted names bound after discovery.
func (l *Loader) Names() []string {
	if l.destroyed.Load() {
		return nil
	}
	if err := l.ensureLoaded(); err != nil {
		return nil
	}
	l.mu.Lock()
	names := make([]string, 0, len(l.classes))
	for name := range l.classes {
		names = append(names, name)
	}
	l.mu.Unlock()
	sort.Strings(names)
	return names
}

// LoadedNames returns the sorted names whose instances were already built.
func (l *Loader) LoadedNames() []string {
	names := goset.NewSet[string]()
	l.holders.Range(func(key string, h *holder) {
		if h.get() == nil {
			return
		}
		names.Add(strings.TrimSuffix(key, rawSuffix))
	})
	sorted := names.ToSlice()
	sort.Strings(sorted)
	return sorted
}

// Loaded returns the already built instance cached under the given name, nil
// when the name was never constructed. It never triggers construction.
func (l *Loader) Loaded(name string) any {
	if h, ok := l.holders.Get(name); ok {
		return h.get()
	}
	return nil
}

// Instances constructs every supported extension and returns them ordered by
// provider order, ties broken by name.
func (l *Loader) Instances() ([]any, error) {
	names := l.Names()
	type ranked struct {
		name     string
		order    int
		instance any
	}
	built := make([]ranked, 0, len(names))
	for _, name := range names {
		instance, err := l.Get(name)
		if err != nil {
			return nil, err
		}
		order := 0
		l.mu.Lock()
		if provider, ok := l.classes[name]; ok {
			order = provider.order
		}
		l.mu.Unlock()
		built = append(built, ranked{name: name, order: order, instance: instance})
	}
	sort.SliceStable(built, func(i, j int) bool {
		if built[i].order != built[j].order {
			return built[i].order < built[j].order
		}
		return built[i].name < built[j].name
	})
	instances := make([]any, 0, len(built))
	for _, r := range built {
		instances = append(instances, r.instance)
	}
	return instances, nil
}

// NameOf returns the name a built instance is cached under, empty when the
// instance was not produced by this loader.
func (l *Loader) NameOf(instance any) string {
	if instance == nil {
		return ""
	}
	name := ""
	l.holders.Range(func(key string, h *holder) {
		if name != "" {
			return
		}
		if cached := h.get(); cached != nil && sameInstance(cached, instance) {
			name = strings.TrimSuffix(key, rawSuffix)
		}
	})
	return name
}

// Add registers a provider with the catalog and binds the given name at
// runtime. Adaptive and wrapper providers are accepted, the name being
// ignored for them. A name already bound is rejected, Replace exists for
// explicit rebinds.
func (l *Loader) Add(name string, provider *Provider) error {
	if l.destroyed.Load() {
		return gerrors.ErrLoaderDestroyed
	}
	if err := l.validateBinding(name, provider); err != nil {
		return err
	}
	if err := l.ensureLoaded(); err != nil {
		return err
	}
	if err := l.registerProvider(provider); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case provider.IsAdaptive():
		if l.adaptiveProvider != nil && l.adaptiveProvider.ref != provider.ref {
			return gerrors.NewErrTooManyAdaptives(l.contract.Name(), []string{l.adaptiveProvider.ref, provider.ref})
		}
		l.adaptiveProvider = provider
	case provider.IsWrapper():
		for _, wrapper := range l.wrappers {
			if wrapper.ref == provider.ref {
				return gerrors.NewErrDuplicateProvider(provider.ref)
			}
		}
		l.wrappers = append(l.wrappers, provider)
	default:
		if err, ok := l.poisoned[name]; ok {
			return err
		}
		if existing, ok := l.classes[name]; ok {
			return gerrors.NewErrDuplicateExtension(l.contract.Name(), name, existing.ref, provider.ref)
		}
		l.classes[name] = provider
		l.recordBinding(name, provider)
		l.cacheActivation(name, provider)
	}
	return nil
}

// Replace rebinds an existing name to the given provider, clearing the name's
// cached instance and any duplicate poisoning. The name must already be bound.
func (l *Loader) Replace(name string, provider *Provider) error {
	if l.destroyed.Load() {
		return gerrors.ErrLoaderDestroyed
	}
	if err := l.validateBinding(name, provider); err != nil {
		return err
	}
	if err := validation.New(validation.FailFast()).
		AddAssertion(!provider.IsAdaptive() && !provider.IsWrapper(), "only plain providers can replace a name binding").
		Validate(); err != nil {
		return err
	}
	if err := l.ensureLoaded(); err != nil {
		return err
	}
	if err := l.registerProvider(provider); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.classes[name]; !ok {
		return l.notFoundErrorLocked(name)
	}
	l.classes[name] = provider
	delete(l.poisoned, name)
	l.recordBinding(name, provider)
	l.cacheActivation(name, provider)
	l.holders.Delete(name)
	l.holders.Delete(name + rawSuffix)
	return nil
}

func (l *Loader) validateBinding(name string, provider *Provider) error {
	chain := validation.New(validation.FailFast()).
		AddAssertion(provider != nil, "provider is required")
	if err := chain.Validate(); err != nil {
		return err
	}
	return validation.New(validation.FailFast()).
		AddAssertion(provider.contractType == l.contract.ctype, "provider contract does not match the loader contract").
		AddValidator(validation.NewPatternValidator(namePattern, name, gerrors.NewErrInvalidExtensionName(name))).
		Validate()
}

// registerProvider makes a runtime-added provider part of the catalog so a
// later discovery eviction does not lose it.
func (l *Loader) registerProvider(provider *Provider) error {
	catalog := l.director.model.Catalog()
	if _, ok := catalog.lookup(l.contract, provider.ref); ok {
		return nil
	}
	return catalog.Register(provider)
}

// recordBinding mirrors a runtime name binding into the catalog source.
// Callers hold mu.
func (l *Loader) recordBinding(name string, provider *Provider) {
	l.director.model.Catalog().recordBinding(l.contract.Name(), name, provider.ref)
}

// cacheActivation records the provider's activation under its first bound
// name when every required reference resolves. Callers hold mu.
func (l *Loader) cacheActivation(name string, provider *Provider) {
	activation := provider.activation
	if activation == nil || l.activatedRefs.Contains(provider.ref) {
		return
	}
	catalog := l.director.model.Catalog()
	for _, ref := range activation.Requires {
		if !catalog.HasRef(ref) {
			return
		}
	}
	l.activates[name] = activation
	l.activatedRefs.Add(provider.ref)
}

// ensureLoaded runs discovery once and re-raises any pass-wide discovery
// error until the caches are evicted.
func (l *Loader) ensureLoaded() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loaded {
		return l.discoveryErr
	}
	l.discover()
	l.loaded = true
	return l.discoveryErr
}

// discover scans the scope node's ordered sources and binds their entries.
// Callers hold mu.
func (l *Loader) discover() {
	catalog := l.director.model.Catalog()
	for _, source := range l.director.model.Sources() {
		entries, err := source.Load(l.contract)
		if err != nil {
			l.exceptions[source.ID()] = err
			l.recordDiscoveryFailure()
			l.logger.Warnf("failed to load source=(%s) for contract=(%s): %v", source.ID(), l.contract.Name(), err)
			continue
		}
		for _, entry := range entries {
			l.bind(catalog, source, entry)
		}
	}
}

// bind classifies one discovery entry. Plain entries bind a name, wrapper and
// adaptive entries register decoration and dispatch providers. Callers hold mu.
func (l *Loader) bind(catalog *Catalog, source Source, entry Entry) {
	provider, ok := catalog.lookup(l.contract, entry.Ref)
	if !ok {
		l.exceptions[entry.line()] = gerrors.NewErrProviderNotFound(l.contract.Name(), entry.Ref)
		l.recordDiscoveryFailure()
		return
	}

	switch {
	case provider.IsAdaptive():
		if l.adaptiveProvider != nil && l.adaptiveProvider.ref != provider.ref && !source.Overriding() {
			l.discoveryErr = gerrors.NewErrTooManyAdaptives(l.contract.Name(), []string{l.adaptiveProvider.ref, provider.ref})
			l.recordDiscoveryFailure()
			return
		}
		l.adaptiveProvider = provider
	case provider.IsWrapper():
		for _, wrapper := range l.wrappers {
			if wrapper.ref == provider.ref {
				return
			}
		}
		l.wrappers = append(l.wrappers, provider)
	default:
		name := entry.Name
		if name == "" {
			name = deriveName(entry.Ref, l.contract.Name())
		}
		if _, ok := l.poisoned[name]; ok {
			return
		}
		existing, bound := l.classes[name]
		if bound && existing.ref != provider.ref {
			if !source.Overriding() {
				err := gerrors.NewErrDuplicateExtension(l.contract.Name(), name, existing.ref, provider.ref)
				l.poisoned[name] = err
				l.exceptions[entry.line()] = err
				l.recordDiscoveryFailure()
				return
			}
			l.classes[name] = provider
		}
		if !bound {
			l.classes[name] = provider
		}
		l.cacheActivation(name, provider)
	}
}

// evict drops the discovery caches so the next lookup re-scans the sources.
// Constructed singletons survive, only the name bindings and the adaptive
// state are rebuilt.
func (l *Loader) evict() {
	l.mu.Lock()
	l.loaded = false
	l.discoveryErr = nil
	clear(l.classes)
	l.wrappers = nil
	l.adaptiveProvider = nil
	clear(l.activates)
	l.activatedRefs = goset.NewSet[string]()
	clear(l.exceptions)
	clear(l.poisoned)
	l.mu.Unlock()

	l.adaptiveMu.Lock()
	l.adaptive = nil
	l.adaptiveErr = nil
	l.adaptiveBuilt = false
	l.adaptiveMu.Unlock()
}

// createExtension runs the construction pipeline for a bound name. The raw
// instance is shared between aliases of the same provider, wrapper decoration
// and initialization run per requested name.
func (l *Loader) createExtension(name string, provider *Provider, wrap bool) (any, error) {
	instance, err := l.rawInstance(name, provider)
	if err == nil && wrap {
		instance, err = l.wrapExtension(instance, name)
	}
	if err == nil {
		err = l.initExtension(instance)
	}
	if err != nil {
		return nil, gerrors.NewConstructionError(l.contract.Name(), name, err)
	}

	if metrics := l.director.registryMetric(); metrics != nil {
		metrics.CreatedCount().Add(context.Background(), 1, otelmetric.WithAttributes(
			attribute.String("contract", l.contract.Name()),
			attribute.String("extension", name)))
	}
	return instance, nil
}

// rawInstance returns the injected, post-processed instance of a provider,
// building it at most once per reference. Aliased names share the result.
func (l *Loader) rawInstance(name string, provider *Provider) (any, error) {
	if cached, ok := l.rawInstances.Get(provider.ref); ok {
		return cached, nil
	}
	instance, err, _ := l.rawGroup.Do(provider.ref, func() (any, error) {
		if cached, ok := l.rawInstances.Get(provider.ref); ok {
			return cached, nil
		}
		instance, err := l.buildRaw(name, provider)
		if err != nil {
			return nil, err
		}
		l.rawInstances.Set(provider.ref, instance)
		return instance, nil
	})
	return instance, err
}

func (l *Loader) buildRaw(name string, provider *Provider) (any, error) {
	instance, err := provider.construct()
	if err != nil {
		return nil, err
	}
	if instance, err = l.beforeInjection(instance, name); err != nil {
		return nil, err
	}
	instance = l.injectExtension(instance, provider)
	if instance, err = l.afterInjection(instance, name); err != nil {
		return nil, err
	}
	return instance, nil
}

// wrapExtension stacks the eligible wrappers around the instance. Wrappers
// are sorted by ascending order then applied in reverse, the lowest order
// wrapper decorating last and therefore sitting outermost. Each wrapper is
// injected and runs the after hooks before the next one stacks.
func (l *Loader) wrapExtension(instance any, name string) (any, error) {
	l.mu.Lock()
	wrappers := make([]*Provider, len(l.wrappers))
	copy(wrappers, l.wrappers)
	l.mu.Unlock()

	sort.SliceStable(wrappers, func(i, j int) bool {
		if wrappers[i].order != wrappers[j].order {
			return wrappers[i].order < wrappers[j].order
		}
		return wrappers[i].ref < wrappers[j].ref
	})

	metrics := l.director.registryMetric()
	for i := len(wrappers) - 1; i >= 0; i-- {
		wrapper := wrappers[i]
		if !wrapper.accepts(name) {
			continue
		}
		next := wrapper.wrap(instance)
		if isNilValue(next) {
			return nil, gerrors.NewErrNilExtension(wrapper.ref)
		}
		next = l.injectExtension(next, wrapper)
		var err error
		if next, err = l.afterInjection(next, name); err != nil {
			return nil, err
		}
		instance = next

		if metrics != nil {
			metrics.WrappedCount().Add(context.Background(), 1, otelmetric.WithAttributes(
				attribute.String("contract", l.contract.Name()),
				attribute.String("wrapper", wrapper.ref)))
		}
	}
	return instance, nil
}

func (l *Loader) beforeInjection(instance any, name string) (any, error) {
	for _, processor := range l.processors {
		next, err := processor.BeforeInjection(instance, name)
		if err != nil {
			return nil, err
		}
		if next != nil {
			instance = next
		}
	}
	return instance, nil
}

// afterInjection delivers the extension accessor first, then runs the
// registered post-processors in order.
func (l *Loader) afterInjection(instance any, name string) (any, error) {
	if aware, ok := instance.(AccessorAware); ok {
		aware.SetExtensionAccessor(l.director)
	}
	for _, processor := range l.processors {
		next, err := processor.AfterInjection(instance, name)
		if err != nil {
			return nil, err
		}
		if next != nil {
			instance = next
		}
	}
	return instance, nil
}

func (l *Loader) initExtension(instance any) error {
	if initializable, ok := instance.(Initializable); ok {
		return initializable.Initialize()
	}
	return nil
}

func (l *Loader) recordDiscoveryFailure() {
	if metrics := l.director.registryMetric(); metrics != nil {
		metrics.DiscoveryFailureCount().Add(context.Background(), 1, otelmetric.WithAttributes(
			attribute.String("contract", l.contract.Name())))
	}
}

// notFoundError aggregates the discovery failures related to the name, or
// every recorded failure when none matches, into the not-found error.
func (l *Loader) notFoundError(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.notFoundErrorLocked(name)
}

func (l *Loader) notFoundErrorLocked(name string) error {
	lines := make([]string, 0, len(l.exceptions))
	for line := range l.exceptions {
		lines = append(lines, line)
	}
	sort.Strings(lines)

	var causes []error
	for _, line := range lines {
		if strings.HasPrefix(strings.ToLower(line), strings.ToLower(name)) {
			causes = append(causes, l.exceptions[line])
		}
	}
	if len(causes) == 0 {
		for _, line := range lines {
			causes = append(causes, l.exceptions[line])
		}
	}
	return gerrors.NewErrExtensionNotFound(l.contract.Name(), name, causes...)
}

// IsDestroyed reports whether Destroy has been called.
func (l *Loader) IsDestroyed() bool {
	return l.destroyed.Load()
}

// Destroy closes every constructed instance implementing io.Closer exactly
// once and marks the loader unusable. It is idempotent and returns the joined
// close errors, if any.
func (l *Loader) Destroy() error {
	if !l.destroyed.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	var seen []any
	dispose := func(instance any) {
		if instance == nil {
			return
		}
		for _, other := range seen {
			if sameInstance(other, instance) {
				return
			}
		}
		seen = append(seen, instance)
		if closer, ok := instance.(io.Closer); ok {
			err = multierr.Append(err, closer.Close())
		}
	}

	l.holders.Range(func(_ string, h *holder) {
		dispose(h.get())
	})
	l.rawInstances.Range(func(_ string, instance any) {
		dispose(instance)
	})

	l.adaptiveMu.Lock()
	dispose(l.adaptive)
	l.adaptive = nil
	l.adaptiveErr = nil
	l.adaptiveBuilt = false
	l.adaptiveMu.Unlock()

	l.holders.Reset()
	l.rawInstances.Reset()

	l.mu.Lock()
	clear(l.classes)
	l.wrappers = nil
	l.adaptiveProvider = nil
	clear(l.activates)
	l.activatedRefs = goset.NewSet[string]()
	clear(l.exceptions)
	clear(l.poisoned)
	l.mu.Unlock()
	return err
}

// sameInstance reports whether two values are the same underlying instance.
// Reference kinds compare by pointer, comparable values by equality.
func sameInstance(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.Kind() != bv.Kind() {
		return false
	}
	switch av.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.Slice, reflect.UnsafePointer:
		return av.Pointer() == bv.Pointer()
	default:
		if av.Comparable() && bv.Comparable() {
			return a == b
		}
		return false
	}
}

// isNilValue reports whether the value is nil, including a typed nil inside
// the interface.
func isNilValue(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.Slice, reflect.Interface, reflect.UnsafePointer:
		return v.IsNil()
	default:
		return false
	}
}
