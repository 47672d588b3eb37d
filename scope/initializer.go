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
	"errors"

	gerrors "github.com/gospi-io/gospi/errors"
	"github.com/gospi-io/gospi/extension"
)

// Initializer is the extension contract invoked while scope nodes are built.
// Implementations registered with the catalog run once per node, at the stage
// matching the node kind, and can seed beans, attributes or further contract
// registrations before user code sees the node. The contract is framework
// scoped: one set of initializer singletons serves the whole tree.
type Initializer interface {
	// InitializeFramework runs while the framework root is constructed,
	// before its internal application exists.
	InitializeFramework(framework *Framework) error
	// InitializeApplication runs while an application node is constructed,
	// before its internal module exists.
	InitializeApplication(application *Application) error
	// InitializeModule runs while a module node is constructed.
	InitializeModule(module *Module) error
}

// BaseInitializer is a no-op Initializer to embed by implementations that only
// care about some stages.
type BaseInitializer struct{}

var _ Initializer = (*BaseInitializer)(nil)

func (BaseInitializer) InitializeFramework(*Framework) error     { return nil }
func (BaseInitializer) InitializeApplication(*Application) error { return nil }
func (BaseInitializer) InitializeModule(*Module) error           { return nil }

// RegisterInitializer registers an Initializer provider with the catalog,
// declaring the Initializer contract first when the catalog does not carry it
// yet. Register initializers before handing the catalog to NewFramework so
// the framework stage still runs for them.
func RegisterInitializer(catalog *extension.Catalog, provider *extension.Provider) error {
	if catalog == nil {
		return errors.New("catalog is required")
	}
	if err := registerInitializerContract(catalog); err != nil {
		return err
	}
	return catalog.Register(provider)
}

// registerInitializerContract declares the Initializer contract on the
// catalog. A catalog reused by a second framework already carries it, which is
// fine.
func registerInitializerContract(catalog *extension.Catalog) error {
	contract, err := extension.NewContract[Initializer](extension.WithScope(extension.TagFramework))
	if err != nil {
		return err
	}
	if err := catalog.RegisterContract(contract); err != nil && !errors.Is(err, gerrors.ErrDuplicateContract) {
		return err
	}
	return nil
}

// scopeInitializers resolves every registered Initializer in priority order
// through the node's own director chain.
func scopeInitializers(node Node) ([]Initializer, error) {
	loader, err := extension.LoaderOf[Initializer](node)
	if err != nil {
		return nil, err
	}
	instances, err := loader.Instances()
	if err != nil {
		return nil, err
	}
	initializers := make([]Initializer, 0, len(instances))
	for _, instance := range instances {
		if initializer, ok := instance.(Initializer); ok {
			initializers = append(initializers, initializer)
		}
	}
	return initializers, nil
}
