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
	"errors"
	"reflect"
	"strings"

	goset "github.com/deckarep/golang-set/v2"

	gerrors "github.com/gospi-io/gospi/errors"
)

// Injector resolves dependencies requested during setter injection. The
// Injector contract is itself an extension point: the catalog pre-registers
// an adaptive injector chaining the bean and spi injectors, and users may
// register additional implementations.
type Injector interface {
	// Resolve returns the value to inject for the dependency type and the
	// property name derived from the setter. Returning (nil, nil) means the
	// injector has no value to offer and the setter is left untouched.
	Resolve(dependencyType reflect.Type, name string) (any, error)
}

// injectorType is the contract type of the built-in Injector extension point.
var injectorType = reflect.TypeOf((*Injector)(nil)).Elem()

// registerInjectorContract pre-loads the catalog with the Injector contract
// and its built-in providers. The registrations cannot fail, the inputs being
// fixed by the runtime itself.
func registerInjectorContract(catalog *Catalog) {
	contract, err := NewContract[Injector](WithScope(TagSelf))
	if err != nil {
		panic(err)
	}
	if err := catalog.RegisterContract(contract); err != nil {
		panic(err)
	}

	providers := []*Provider{
		NewProvider[Injector]("adaptiveInjector", func() Injector { return &adaptiveInjector{} }, WithAdaptive()),
		NewProvider[Injector]("beanInjector", func() Injector { return &beanInjector{} }),
		NewProvider[Injector]("spiInjector", func() Injector { return &spiInjector{} }),
	}
	for _, provider := range providers {
		if err := catalog.Register(provider); err != nil {
			panic(err)
		}
	}
}

// adaptiveInjector delegates to every plain Injector extension of its own
// scope, in sorted name order, and hands back the first value offered.
type adaptiveInjector struct {
	accessor Accessor
	chain    []Injector
}

// enforce compilation error
var (
	_ Injector      = (*adaptiveInjector)(nil)
	_ AccessorAware = (*adaptiveInjector)(nil)
	_ Initializable = (*adaptiveInjector)(nil)
)

func (i *adaptiveInjector) SetExtensionAccessor(accessor Accessor) {
	i.accessor = accessor
}

// Initialize builds the delegation chain. It runs once, after injection, as
// part of the adaptive injector's own construction.
func (i *adaptiveInjector) Initialize() error {
	if i.accessor == nil {
		return nil
	}
	loader, err := i.accessor.ExtensionDirector().LoaderFor(injectorType)
	if err != nil {
		return err
	}
	for _, name := range loader.Names() {
		instance, err := loader.Get(name)
		if err != nil {
			return err
		}
		if injector, ok := instance.(Injector); ok {
			i.chain = append(i.chain, injector)
		}
	}
	return nil
}

func (i *adaptiveInjector) Resolve(dependencyType reflect.Type, name string) (any, error) {
	for _, injector := range i.chain {
		value, err := injector.Resolve(dependencyType, name)
		if err != nil {
			return nil, err
		}
		if value != nil {
			return value, nil
		}
	}
	return nil, nil
}

// beanInjector resolves dependencies from the scope node's bean factory.
type beanInjector struct {
	model ScopeModel
}

// enforce compilation error
var (
	_ Injector        = (*beanInjector)(nil)
	_ ScopeModelAware = (*beanInjector)(nil)
)

func (i *beanInjector) SetScopeModel(model ScopeModel) {
	i.model = model
}

func (i *beanInjector) Resolve(dependencyType reflect.Type, name string) (any, error) {
	if i.model == nil {
		return nil, nil
	}
	return i.model.Bean(dependencyType, name)
}

// spiInjector resolves a dependency by handing out the adaptive extension of
// the dependency's own contract. Only a tagged adaptive implementation can
// satisfy a typed setter, a synthesized dispatcher is not assignable to the
// contract interface and is skipped.
type spiInjector struct {
	accessor Accessor
}

// enforce compilation error
var (
	_ Injector      = (*spiInjector)(nil)
	_ AccessorAware = (*spiInjector)(nil)
)

func (i *spiInjector) SetExtensionAccessor(accessor Accessor) {
	i.accessor = accessor
}

func (i *spiInjector) Resolve(dependencyType reflect.Type, _ string) (any, error) {
	if i.accessor == nil || dependencyType.Kind() != reflect.Interface {
		return nil, nil
	}

	loader, err := i.accessor.ExtensionDirector().LoaderFor(dependencyType)
	if err != nil {
		if errors.Is(err, gerrors.ErrContractNotRegistered) || errors.Is(err, gerrors.ErrNoMatchingScope) {
			return nil, nil
		}
		return nil, err
	}
	if len(loader.Names()) == 0 {
		return nil, nil
	}

	adaptive, err := loader.Adaptive()
	if err != nil {
		return nil, err
	}
	if !reflect.TypeOf(adaptive).AssignableTo(dependencyType) {
		return nil, nil
	}
	return adaptive, nil
}

// injectExtension satisfies the dependencies of a freshly constructed
// extension through its exported setters. A setter participates when its name
// starts with Set and it takes exactly one non-primitive parameter and
// returns nothing. Setters delivered by the runtime itself and setters listed
// in the provider's skip list are left alone. Per-setter failures are logged
// and skipped, injection never fails a construction.
func (l *Loader) injectExtension(instance any, provider *Provider) any {
	if l.injector == nil || instance == nil {
		return instance
	}

	extensionType := reflect.TypeOf(instance)
	extensionValue := reflect.ValueOf(instance)
	ignored := l.director.ignoredSettersFor(extensionType)
	skipped := goset.NewSet(provider.skipInject...)

	for i := 0; i < extensionType.NumMethod(); i++ {
		method := extensionType.Method(i)
		if !isSetter(method) {
			continue
		}
		if ignored.Contains(method.Name) || skipped.Contains(method.Name) {
			continue
		}

		dependencyType := method.Type.In(1)
		if isPrimitive(dependencyType) {
			continue
		}

		property := propertyName(method.Name)
		dependency, err := l.injector.Resolve(dependencyType, property)
		if err != nil {
			l.logger.Warn(gerrors.NewInjectionError(method.Name, err).Error())
			continue
		}
		if dependency == nil {
			l.logger.Debugf("no injectable value for setter=(%s) property=(%s)", method.Name, property)
			continue
		}

		dependencyValue := reflect.ValueOf(dependency)
		if !dependencyValue.Type().AssignableTo(dependencyType) {
			l.logger.Warnf("resolved value of type=(%s) is not assignable to setter=(%s)", dependencyValue.Type(), method.Name)
			continue
		}
		extensionValue.Method(i).Call([]reflect.Value{dependencyValue})
	}
	return instance
}

// isSetter reports whether the method has the Set<Property>(dep) shape.
func isSetter(method reflect.Method) bool {
	return strings.HasPrefix(method.Name, "Set") &&
		len(method.Name) > 3 &&
		method.Type.NumIn() == 2 &&
		method.Type.NumOut() == 0
}

// isPrimitive reports whether the type never participates in injection.
func isPrimitive(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	default:
		return false
	}
}

// propertyName derives the injected property name from a setter name,
// SetRegistry becomes registry.
func propertyName(setter string) string {
	property := strings.TrimPrefix(setter, "Set")
	return strings.ToLower(property[:1]) + property[1:]
}
