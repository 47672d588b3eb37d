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
	"slices"
	"strconv"
	"sync"

	"go.uber.org/multierr"

	gerrors "github.com/gospi-io/gospi/errors"
	"github.com/gospi-io/gospi/extension"
)

// Application is the middle tier of a scope tree. Application scoped contracts
// host their loader here, shared by every module underneath. Destroying the
// last user module of an application destroys the application, which in turn
// prunes an otherwise empty framework.
type Application struct {
	node
	framework *Framework

	moduleMu        sync.Mutex
	modules         []*Module
	internalModule  *Module
	defaultModule   *Module
	nextModuleIndex uint64
}

var (
	_ Node                 = (*Application)(nil)
	_ extension.ScopeModel = (*Application)(nil)
)

// Framework returns the framework root owning the application.
func (a *Application) Framework() *Framework {
	return a.framework
}

// Description returns the application display string,
// "Application[1.1](name)" style, with "unknown" standing in for an unnamed
// application.
func (a *Application) Description() string {
	return "Application[" + a.internalID + "](" + displayName(a) + ")"
}

// NewModule creates a user module under the application.
func (a *Application) NewModule(opts ...Option) (*Module, error) {
	a.moduleMu.Lock()
	defer a.moduleMu.Unlock()
	return a.newModuleLocked(false, newNodeConfig(a.logger, opts...))
}

// newModuleLocked builds and registers a module. Callers hold moduleMu; a
// failed construction registers nothing.
func (a *Application) newModuleLocked(internal bool, config *nodeConfig) (*Module, error) {
	if a.destroyed.Load() {
		return nil, gerrors.ErrNodeDestroyed
	}

	index := a.nextModuleIndex
	a.nextModuleIndex++

	module := &Module{application: a}
	internalID := a.internalID + "." + strconv.FormatUint(index, 10)
	if err := module.initNode(module, &a.node, a.framework, extension.TagModule, internalID, a.catalog, config.logger); err != nil {
		return nil, err
	}
	module.internal = internal
	module.onDestroy = module.teardown
	if config.name != "" {
		module.SetName(config.name)
	}

	for _, source := range config.sources {
		if err := module.AddSource(source); err != nil {
			return nil, err
		}
	}

	initializers, err := scopeInitializers(module)
	if err != nil {
		return nil, err
	}
	for _, initializer := range initializers {
		if err := initializer.InitializeModule(module); err != nil {
			return nil, fmt.Errorf("failed to initialize %s: %w", module.Description(), err)
		}
	}

	if internal {
		a.internalModule = module
	} else {
		a.modules = append(a.modules, module)
	}
	return module, nil
}

// Modules returns a snapshot of the user modules in creation order.
func (a *Application) Modules() []*Module {
	a.moduleMu.Lock()
	defer a.moduleMu.Unlock()
	return slices.Clone(a.modules)
}

// DefaultModule returns the application's default user module, creating one
// when none exists yet. After the default is destroyed the oldest surviving
// user module takes its place.
func (a *Application) DefaultModule() (*Module, error) {
	a.moduleMu.Lock()
	defer a.moduleMu.Unlock()

	if a.defaultModule != nil && !a.defaultModule.IsDestroyed() {
		return a.defaultModule, nil
	}
	a.defaultModule = nil
	if len(a.modules) > 0 {
		a.defaultModule = a.modules[0]
		return a.defaultModule, nil
	}

	module, err := a.newModuleLocked(false, newNodeConfig(a.logger))
	if err != nil {
		return nil, err
	}
	a.defaultModule = module
	return module, nil
}

// releaseModule removes a dying module from the registry and recomputes the
// default.
func (a *Application) releaseModule(module *Module) {
	a.moduleMu.Lock()
	defer a.moduleMu.Unlock()

	a.modules = slices.DeleteFunc(a.modules, func(candidate *Module) bool {
		return candidate == module
	})
	if a.internalModule == module {
		a.internalModule = nil
	}
	if a.defaultModule == module {
		a.defaultModule = nil
		if len(a.modules) > 0 {
			a.defaultModule = a.modules[0]
		}
	}
}

// tryDestroyLocked prunes the application once its last user module is gone.
// Callers hold the tree destroy lock.
func (a *Application) tryDestroyLocked(pending *[]func()) error {
	a.moduleMu.Lock()
	empty := len(a.modules) == 0
	a.moduleMu.Unlock()
	if !empty {
		return nil
	}
	return a.destroyLocked(pending)
}

// teardown deregisters the application, destroys the user modules first and
// the internal module last, queues the application's destroy listeners and
// finally prunes the framework when it held no other user application.
func (a *Application) teardown(pending *[]func()) error {
	a.framework.releaseApplication(a)

	a.moduleMu.Lock()
	users := slices.Clone(a.modules)
	internal := a.internalModule
	a.moduleMu.Unlock()

	var err error
	for _, module := range users {
		err = multierr.Append(err, module.destroyLocked(pending))
	}
	if internal != nil {
		err = multierr.Append(err, internal.destroyLocked(pending))
	}
	a.queueListeners(pending)
	return multierr.Append(err, a.framework.tryDestroyLocked(pending))
}

// Destroy tears down the application and its modules. It is idempotent and
// prunes the framework when the last user application goes.
func (a *Application) Destroy() error {
	return a.framework.destroyTree(&a.node)
}

// displayName returns the application name used in descriptions.
func displayName(application *Application) string {
	if name := application.Name(); name != "" {
		return name
	}
	return "unknown"
}
