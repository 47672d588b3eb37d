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
	"slices"
	"sort"
	"strings"

	goset "github.com/deckarep/golang-set/v2"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	gerrors "github.com/gospi-io/gospi/errors"
)

const (
	// DefaultMarker splices the auto-activated extensions into an explicit
	// name list at the marker's position.
	DefaultMarker = "default"

	// RemovalPrefix excludes a name from activation when prepended to it.
	// Prepended to DefaultMarker it suppresses the auto-activated expansion
	// altogether.
	RemovalPrefix = "-"
)

// Activated returns the extensions selected for the given explicit names,
// group and route context.
//
// The result has two segments. The auto segment holds every extension whose
// activation matches the group and whose conditions hold against the context,
// ordered by the activation comparator. The explicit segment holds the listed
// names in listing order. Without a DefaultMarker entry the auto segment comes
// first, with one it is spliced in at the marker position. A "-name" entry
// excludes that name, a "-default" entry drops the auto segment entirely while
// explicitly listed names still resolve.
func (l *Loader) Activated(rctx RouteContext, names []string, group string) ([]any, error) {
	if l.destroyed.Load() {
		return nil, gerrors.ErrLoaderDestroyed
	}
	if err := l.ensureLoaded(); err != nil {
		return nil, err
	}

	requested := goset.NewSet[string]()
	for _, name := range names {
		if name != "" {
			requested.Add(name)
		}
	}

	var activated []any
	loadedNames := goset.NewSet[string]()

	if !requested.Contains(RemovalPrefix + DefaultMarker) {
		autos := l.autoActivations(rctx, requested, group)
		for _, name := range autos {
			instance, err := l.Get(name)
			if err != nil {
				return nil, err
			}
			activated = append(activated, instance)
			loadedNames.Add(name)
		}
	}

	var explicit []any
	for _, name := range names {
		if name == "" || strings.HasPrefix(name, RemovalPrefix) {
			continue
		}
		if requested.Contains(RemovalPrefix + name) {
			continue
		}
		if loadedNames.Contains(name) {
			continue
		}
		if name == DefaultMarker {
			if len(explicit) > 0 {
				activated = append(explicit, activated...)
				explicit = nil
			}
			continue
		}
		instance, err := l.Get(name)
		if err != nil {
			return nil, err
		}
		explicit = append(explicit, instance)
		loadedNames.Add(name)
	}
	activated = append(activated, explicit...)

	if metrics := l.director.registryMetric(); metrics != nil {
		metrics.ActivationCount().Add(context.Background(), 1, otelmetric.WithAttributes(
			attribute.String("contract", l.contract.Name()),
			attribute.String("group", group)))
	}
	return activated, nil
}

// ActivatedBy splits the comma-separated value of the given context key into
// explicit names and returns the activation for them.
func (l *Loader) ActivatedBy(rctx RouteContext, key, group string) ([]any, error) {
	var names []string
	if rctx != nil {
		if value := rctx.Parameter(key); value != "" {
			for _, part := range strings.Split(value, ",") {
				if part = strings.TrimSpace(part); part != "" {
					names = append(names, part)
				}
			}
		}
	}
	return l.Activated(rctx, names, group)
}

// AllActivated returns every activation-carrying extension in comparator
// order, regardless of group and conditions.
func (l *Loader) AllActivated() ([]any, error) {
	if l.destroyed.Load() {
		return nil, gerrors.ErrLoaderDestroyed
	}
	if err := l.ensureLoaded(); err != nil {
		return nil, err
	}

	names := l.sortedActivations(l.activationsSnapshot())
	instances := make([]any, 0, len(names))
	for _, name := range names {
		instance, err := l.Get(name)
		if err != nil {
			return nil, err
		}
		instances = append(instances, instance)
	}
	return instances, nil
}

// autoActivations returns the comparator-ordered names whose activation
// matches the group and context and which the request neither lists
// explicitly nor excludes.
func (l *Loader) autoActivations(rctx RouteContext, requested goset.Set[string], group string) []string {
	activates := l.activationsSnapshot()
	candidates := make(map[string]*Activation, len(activates))
	for name, activation := range activates {
		if !groupMatches(group, activation.Groups) {
			continue
		}
		if requested.Contains(name) || requested.Contains(RemovalPrefix+name) {
			continue
		}
		if !conditionsMatch(rctx, activation.Conditions) {
			continue
		}
		candidates[name] = activation
	}
	return l.sortedActivations(candidates)
}

func (l *Loader) activationsSnapshot() map[string]*Activation {
	l.mu.Lock()
	activates := make(map[string]*Activation, len(l.activates))
	for name, activation := range l.activates {
		activates[name] = activation
	}
	l.mu.Unlock()
	return activates
}

// sortedActivations orders activation names by the comparator: Before and
// After hints first, then ascending order value, then name.
func (l *Loader) sortedActivations(activates map[string]*Activation) []string {
	names := make([]string, 0, len(activates))
	for name := range activates {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		return activationLess(names[i], activates[names[i]], names[j], activates[names[j]])
	})
	return names
}

func activationLess(aName string, a *Activation, bName string, b *Activation) bool {
	if slices.Contains(a.Before, bName) {
		return true
	}
	if slices.Contains(a.After, bName) {
		return false
	}
	if slices.Contains(b.Before, aName) {
		return false
	}
	if slices.Contains(b.After, aName) {
		return true
	}
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	return aName < bName
}

// groupMatches reports whether an activation applies to the requested group.
// A blank request matches every activation, a non-blank request must be
// listed in the activation's groups.
func groupMatches(group string, groups []string) bool {
	if group == "" {
		return true
	}
	for _, candidate := range groups {
		if candidate == group {
			return true
		}
	}
	return false
}

// conditionsMatch reports whether any activation condition holds against the
// route context. An empty condition list always holds. A condition without a
// value requires the key to carry any non-blank value, otherwise the values
// must match exactly. The plain parameter is probed first, then the
// method-scoped fallback.
func conditionsMatch(rctx RouteContext, conditions []Condition) bool {
	if len(conditions) == 0 {
		return true
	}
	if rctx == nil {
		return false
	}
	for _, condition := range conditions {
		value := rctx.Parameter(condition.Key)
		if value == "" {
			value = rctx.MethodParameter(condition.Key)
		}
		if condition.Value == "" {
			if value != "" {
				return true
			}
			continue
		}
		if condition.Value == value {
			return true
		}
	}
	return false
}
