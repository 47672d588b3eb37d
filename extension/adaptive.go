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

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	gerrors "github.com/gospi-io/gospi/errors"
)

// Adaptive returns the contract's adaptive extension: the tagged adaptive
// implementation when one is registered, otherwise a synthesized Dispatcher
// routing calls through the contract's route table. Unlike plain Get, a
// construction failure is cached and re-raised until the discovery caches
// are evicted.
func (l *Loader) Adaptive() (any, error) {
	if l.destroyed.Load() {
		return nil, gerrors.ErrLoaderDestroyed
	}

	l.adaptiveMu.Lock()
	defer l.adaptiveMu.Unlock()
	if l.adaptiveBuilt {
		return l.adaptive, l.adaptiveErr
	}

	if err := l.ensureLoaded(); err != nil {
		l.adaptiveBuilt = true
		l.adaptiveErr = err
		return nil, err
	}

	l.mu.Lock()
	provider := l.adaptiveProvider
	l.mu.Unlock()

	if provider == nil {
		l.adaptive = &Dispatcher{loader: l}
		l.adaptiveBuilt = true
		return l.adaptive, nil
	}

	l.adaptive, l.adaptiveErr = l.buildAdaptive(provider)
	l.adaptiveBuilt = true
	return l.adaptive, l.adaptiveErr
}

// buildAdaptive constructs the tagged adaptive instance. It runs the plain
// pipeline with an empty name and without wrapper decoration.
func (l *Loader) buildAdaptive(provider *Provider) (any, error) {
	instance, err := provider.construct()
	if err == nil {
		instance, err = l.beforeInjection(instance, "")
	}
	if err == nil {
		instance = l.injectExtension(instance, provider)
		instance, err = l.afterInjection(instance, "")
	}
	if err == nil {
		err = l.initExtension(instance)
	}
	if err != nil {
		return nil, gerrors.NewConstructionError(l.contract.Name(), provider.names[0], err)
	}

	if metrics := l.director.registryMetric(); metrics != nil {
		metrics.CreatedCount().Add(context.Background(), 1, otelmetric.WithAttributes(
			attribute.String("contract", l.contract.Name()),
			attribute.String("extension", provider.names[0])))
	}
	return instance, nil
}

// Dispatcher is the synthesized adaptive extension of a contract that has no
// tagged adaptive implementation. Dispatch is table-driven: the caller hands
// in a RouteContext, the dispatcher resolves the target extension name from
// the contract's route keys and returns the fully constructed extension.
type Dispatcher struct {
	loader *Loader
}

// Loader returns the loader the dispatcher routes through.
func (d *Dispatcher) Loader() *Loader {
	return d.loader
}

// Select resolves the target extension using the contract-level route keys.
func (d *Dispatcher) Select(rctx RouteContext) (any, error) {
	return d.dispatch(d.loader.contract.RouteKeys(), rctx)
}

// SelectFor resolves the target extension for the given contract method.
// Methods missing from a non-empty route table fail with ErrMethodNotRoutable
// unless the contract delegates unrouted methods to its default extension.
func (d *Dispatcher) SelectFor(method string, rctx RouteContext) (any, error) {
	keys, ok := d.loader.contract.routeKeysFor(method)
	if !ok {
		if d.loader.contract.DelegatesUnrouted() {
			return d.loader.Default()
		}
		return nil, gerrors.NewErrMethodNotRoutable(d.loader.contract.Name(), method)
	}
	return d.dispatch(keys, rctx)
}

// dispatch probes the route keys in order, the first non-blank context value
// naming the target. Each key reads the plain parameter first and the
// method-scoped fallback second. Without a value the contract default applies,
// without a default the dispatch fails naming the exhausted keys.
func (d *Dispatcher) dispatch(keys []string, rctx RouteContext) (any, error) {
	name := ""
	if rctx != nil {
		for _, key := range keys {
			value := rctx.Parameter(key)
			if value == "" {
				value = rctx.MethodParameter(key)
			}
			if value != "" {
				name = value
				break
			}
		}
	}
	if name == "" {
		name = d.loader.contract.DefaultName()
	}
	if name == "" {
		return nil, gerrors.NewErrRouteNotResolved(d.loader.contract.Name(), keys)
	}

	if metrics := d.loader.director.registryMetric(); metrics != nil {
		metrics.DispatchCount().Add(context.Background(), 1, otelmetric.WithAttributes(
			attribute.String("contract", d.loader.contract.Name()),
			attribute.String("extension", name)))
	}
	return d.loader.Get(name)
}

// TypedDispatcher exposes a Dispatcher under the contract's Go type, sparing
// callers the type assertions on the selected extension.
type TypedDispatcher[T any] struct {
	dispatcher *Dispatcher
}

// Select resolves the target extension using the contract-level route keys.
func (d *TypedDispatcher[T]) Select(rctx RouteContext) (T, error) {
	var zero T
	instance, err := d.dispatcher.Select(rctx)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, gerrors.NewErrAdaptiveMismatch(d.dispatcher.loader.contract.Name())
	}
	return typed, nil
}

// SelectFor resolves the target extension for the given contract method.
func (d *TypedDispatcher[T]) SelectFor(method string, rctx RouteContext) (T, error) {
	var zero T
	instance, err := d.dispatcher.SelectFor(method, rctx)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, gerrors.NewErrAdaptiveMismatch(d.dispatcher.loader.contract.Name())
	}
	return typed, nil
}
