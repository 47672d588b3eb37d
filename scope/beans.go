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

package scope

import (
	"fmt"
	"io"
	"reflect"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/multierr"

	gerrors "github.com/gospi-io/gospi/errors"
)

// BeanFactory is the per-node registry of plain singleton objects the bean
// injector draws from. Lookups that miss locally walk the parent chain, so a
// bean registered on the framework node is visible to every application and
// module under it.
type BeanFactory struct {
	parent *BeanFactory

	mu     sync.RWMutex
	beans  []*beanEntry
	nextID uint64

	destroyed *atomic.Bool
}

// beanEntry binds a registered bean to its name.
type beanEntry struct {
	name string
	bean any
}

// NewBeanFactory creates a bean factory chained to the given parent, nil for
// the framework root.
func NewBeanFactory(parent *BeanFactory) *BeanFactory {
	return &BeanFactory{
		parent:    parent,
		destroyed: atomic.NewBool(false),
	}
}

// RegisterBean stores the bean under the given name. A blank name derives
// "<type>#<n>" with a per-factory counter. Registering the same instance again
// under the same or a derived name is a no-op rather than a duplicate.
func (x *BeanFactory) RegisterBean(name string, bean any) error {
	if bean == nil {
		return gerrors.ErrBeanRequired
	}
	if x.destroyed.Load() {
		return gerrors.ErrBeanFactoryDestroyed
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	for _, entry := range x.beans {
		if identical(entry.bean, bean) && (name == "" || entry.name == name) {
			return nil
		}
	}
	if name == "" {
		x.nextID++
		name = fmt.Sprintf("%s#%d", reflect.TypeOf(bean).String(), x.nextID)
	}
	x.beans = append(x.beans, &beanEntry{name: name, bean: bean})
	return nil
}

// GetBean resolves a bean assignable to beanType, preferring an exact name
// match. A lookup that misses locally is retried on the parent chain. A nil
// result with a nil error means no bean matched anywhere.
func (x *BeanFactory) GetBean(beanType reflect.Type, name string) (any, error) {
	bean, err := x.lookup(beanType, name)
	if err != nil {
		return nil, err
	}
	if bean == nil && x.parent != nil {
		return x.parent.GetBean(beanType, name)
	}
	return bean, nil
}

// lookup resolves against this factory only. A name match wins outright; a
// sole assignable bean is returned even when the name differs; several
// assignable beans without a name match are ambiguous.
func (x *BeanFactory) lookup(beanType reflect.Type, name string) (any, error) {
	if x.destroyed.Load() {
		return nil, gerrors.ErrBeanFactoryDestroyed
	}
	// every bean is assignable to the empty interface, nothing to filter by
	if beanType == nil || (beanType.Kind() == reflect.Interface && beanType.NumMethod() == 0) {
		return nil, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()
	var candidates []*beanEntry
	for _, entry := range x.beans {
		if !reflect.TypeOf(entry.bean).AssignableTo(beanType) {
			continue
		}
		if name != "" && entry.name == name {
			return entry.bean, nil
		}
		candidates = append(candidates, entry)
	}

	switch len(candidates) {
	case 0:
		return nil, nil
	case 1:
		return candidates[0].bean, nil
	default:
		return nil, gerrors.NewErrBeanAmbiguous(beanType.String(), len(candidates))
	}
}

// IsDestroyed reports whether the factory has been destroyed.
func (x *BeanFactory) IsDestroyed() bool {
	return x.destroyed.Load()
}

// Destroy closes every registered bean implementing io.Closer exactly once,
// drops the registry and marks the factory unusable. It is idempotent and
// returns the joined close errors, if any.
func (x *BeanFactory) Destroy() error {
	if !x.destroyed.CompareAndSwap(false, true) {
		return nil
	}

	x.mu.Lock()
	entries := x.beans
	x.beans = nil
	x.mu.Unlock()

	var err error
	var closed []any
	for _, entry := range entries {
		closer, ok := entry.bean.(io.Closer)
		if !ok {
			continue
		}
		already := false
		for _, previous := range closed {
			if identical(previous, entry.bean) {
				already = true
				break
			}
		}
		if already {
			continue
		}
		closed = append(closed, entry.bean)
		err = multierr.Append(err, closer.Close())
	}
	return err
}

// identical reports whether a and b are the same instance, comparing by
// reference identity for pointer shaped kinds and by value for comparable
// ones.
func identical(a, b any) bool {
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
		return av.Comparable() && bv.Comparable() && a == b
	}
}
