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

	gerrors "github.com/gospi-io/gospi/errors"
)

// Accessor grants access to the extension Director of a scope node. It is
// implemented by the Director itself and by every scope node, and it is what
// the runtime hands to AccessorAware extensions.
type Accessor interface {
	ExtensionDirector() *Director
}

func contractTypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// LoaderOf returns the loader of the contract T resolved through the accessor.
func LoaderOf[T any](accessor Accessor) (*Loader, error) {
	return accessor.ExtensionDirector().LoaderFor(contractTypeOf[T]())
}

// Get resolves the named extension of the contract T.
func Get[T any](accessor Accessor, name string) (T, error) {
	var zero T
	loader, err := LoaderOf[T](accessor)
	if err != nil {
		return zero, err
	}
	instance, err := loader.Get(name)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, gerrors.NewErrTypeMismatch(loader.Contract().Name(), name)
	}
	return typed, nil
}

// Default resolves the default extension of the contract T.
func Default[T any](accessor Accessor) (T, error) {
	var zero T
	loader, err := LoaderOf[T](accessor)
	if err != nil {
		return zero, err
	}
	instance, err := loader.Default()
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, gerrors.NewErrTypeMismatch(loader.Contract().Name(), loader.DefaultName())
	}
	return typed, nil
}

// AdaptiveOf resolves the tagged adaptive extension of the contract T. When
// the contract only synthesizes a dispatcher the call fails, DispatcherOf
// serves that case.
func AdaptiveOf[T any](accessor Accessor) (T, error) {
	var zero T
	loader, err := LoaderOf[T](accessor)
	if err != nil {
		return zero, err
	}
	instance, err := loader.Adaptive()
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, gerrors.NewErrAdaptiveMismatch(loader.Contract().Name())
	}
	return typed, nil
}

// DispatcherOf returns the typed dispatcher of the contract T. When the
// contract declares a tagged adaptive implementation the call fails,
// AdaptiveOf serves that case.
func DispatcherOf[T any](accessor Accessor) (*TypedDispatcher[T], error) {
	loader, err := LoaderOf[T](accessor)
	if err != nil {
		return nil, err
	}
	instance, err := loader.Adaptive()
	if err != nil {
		return nil, err
	}
	dispatcher, ok := instance.(*Dispatcher)
	if !ok {
		return nil, gerrors.NewErrAdaptiveMismatch(loader.Contract().Name())
	}
	return &TypedDispatcher[T]{dispatcher: dispatcher}, nil
}

// Activated returns the extensions of the contract T selected for the given
// explicit names, group and route context.
func Activated[T any](accessor Accessor, rctx RouteContext, names []string, group string) ([]T, error) {
	loader, err := LoaderOf[T](accessor)
	if err != nil {
		return nil, err
	}
	instances, err := loader.Activated(rctx, names, group)
	if err != nil {
		return nil, err
	}
	typed := make([]T, 0, len(instances))
	for _, instance := range instances {
		t, ok := instance.(T)
		if !ok {
			return nil, gerrors.NewErrTypeMismatch(loader.Contract().Name(), loader.NameOf(instance))
		}
		typed = append(typed, t)
	}
	return typed, nil
}
