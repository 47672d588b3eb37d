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

	"go.uber.org/atomic"
	"go.uber.org/multierr"

	gerrors "github.com/gospi-io/gospi/errors"
	"github.com/gospi-io/gospi/extension"
)

// internalName names the internal child nodes the runtime creates for its own
// extensions.
const internalName = "internal"

// frameworkCounter numbers framework roots process-wide, starting at "1".
var frameworkCounter = atomic.NewUint64(0)

// Framework is the root of a scope tree. It owns the contract catalog, the
// destroy lock serializing teardown across the whole tree and the application
// registry, including one internal application reserved for the runtime's own
// extensions.
type Framework struct {
	node
	destroyMu sync.Mutex

	appMu        sync.Mutex
	apps         []*Application
	internalApp  *Application
	defaultApp   *Application
	nextAppIndex uint64
}

var (
	_ Node                 = (*Framework)(nil)
	_ extension.ScopeModel = (*Framework)(nil)
)

// NewFramework builds the root node of a fresh scope tree: a catalog (unless
// one is handed in with WithCatalog), the framework director and bean factory,
// the Initializer contract, and the internal application with its internal
// module. Framework scope initializers run before the internal application
// exists.
func NewFramework(opts ...Option) (*Framework, error) {
	config := newNodeConfig(nil, opts...)
	catalog := config.catalog
	if catalog == nil {
		catalog = extension.NewCatalog()
	}

	framework := new(Framework)
	internalID := strconv.FormatUint(frameworkCounter.Inc(), 10)
	if err := framework.initNode(framework, nil, framework, extension.TagFramework, internalID, catalog, config.logger); err != nil {
		return nil, err
	}
	framework.onDestroy = framework.teardown
	if config.name != "" {
		framework.SetName(config.name)
	}

	if config.meter != nil {
		if err := framework.director.EnableMetrics(config.meter); err != nil {
			return nil, err
		}
	}
	if err := registerInitializerContract(catalog); err != nil {
		return nil, err
	}
	for _, source := range config.sources {
		if err := framework.AddSource(source); err != nil {
			return nil, err
		}
	}

	initializers, err := scopeInitializers(framework)
	if err != nil {
		return nil, err
	}
	for _, initializer := range initializers {
		if err := initializer.InitializeFramework(framework); err != nil {
			return nil, fmt.Errorf("failed to initialize %s: %w", framework.Description(), err)
		}
	}

	framework.appMu.Lock()
	_, err = framework.newApplicationLocked(true, newNodeConfig(framework.logger))
	framework.appMu.Unlock()
	if err != nil {
		return nil, err
	}

	framework.logger.Infof("%s started", framework.Description())
	return framework, nil
}

// Description returns the framework display string, "Framework[1]" style.
func (f *Framework) Description() string {
	return "Framework[" + f.internalID + "]"
}

// NewApplication creates a user application under the framework.
func (f *Framework) NewApplication(opts ...Option) (*Application, error) {
	f.appMu.Lock()
	defer f.appMu.Unlock()
	return f.newApplicationLocked(false, newNodeConfig(f.logger, opts...))
}

// newApplicationLocked builds and registers an application. Callers hold
// appMu; a failed construction registers nothing.
func (f *Framework) newApplicationLocked(internal bool, config *nodeConfig) (*Application, error) {
	if f.destroyed.Load() {
		return nil, gerrors.ErrNodeDestroyed
	}

	index := f.nextAppIndex
	f.nextAppIndex++

	application := &Application{framework: f}
	internalID := f.internalID + "." + strconv.FormatUint(index, 10)
	if err := application.initNode(application, &f.node, f, extension.TagApplication, internalID, f.catalog, config.logger); err != nil {
		return nil, err
	}
	application.internal = internal
	application.onDestroy = application.teardown
	switch {
	case internal:
		application.SetName(internalName)
	case config.name != "":
		application.SetName(config.name)
	}

	for _, source := range config.sources {
		if err := application.AddSource(source); err != nil {
			return nil, err
		}
	}

	initializers, err := scopeInitializers(application)
	if err != nil {
		return nil, err
	}
	for _, initializer := range initializers {
		if err := initializer.InitializeApplication(application); err != nil {
			return nil, fmt.Errorf("failed to initialize %s: %w", application.Description(), err)
		}
	}

	application.moduleMu.Lock()
	_, err = application.newModuleLocked(true, newNodeConfig(application.logger))
	application.moduleMu.Unlock()
	if err != nil {
		return nil, err
	}

	if internal {
		f.internalApp = application
	} else {
		f.apps = append(f.apps, application)
	}
	return application, nil
}

// Applications returns a snapshot of the user applications in creation order.
func (f *Framework) Applications() []*Application {
	f.appMu.Lock()
	defer f.appMu.Unlock()
	return slices.Clone(f.apps)
}

// DefaultApplication returns the framework's default user application,
// creating one when none exists yet. After the default is destroyed the
// oldest surviving user application takes its place.
func (f *Framework) DefaultApplication() (*Application, error) {
	f.appMu.Lock()
	defer f.appMu.Unlock()

	if f.defaultApp != nil && !f.defaultApp.IsDestroyed() {
		return f.defaultApp, nil
	}
	f.defaultApp = nil
	if len(f.apps) > 0 {
		f.defaultApp = f.apps[0]
		return f.defaultApp, nil
	}

	application, err := f.newApplicationLocked(false, newNodeConfig(f.logger))
	if err != nil {
		return nil, err
	}
	f.defaultApp = application
	return application, nil
}

// releaseApplication removes a dying application from the registry and
// recomputes the default.
func (f *Framework) releaseApplication(application *Application) {
	f.appMu.Lock()
	defer f.appMu.Unlock()

	f.apps = slices.DeleteFunc(f.apps, func(candidate *Application) bool {
		return candidate == application
	})
	if f.internalApp == application {
		f.internalApp = nil
	}
	if f.defaultApp == application {
		f.defaultApp = nil
		if len(f.apps) > 0 {
			f.defaultApp = f.apps[0]
		}
	}
}

// tryDestroyLocked prunes the framework once its last user application is
// gone. Callers hold the tree destroy lock.
func (f *Framework) tryDestroyLocked(pending *[]func()) error {
	f.appMu.Lock()
	empty := len(f.apps) == 0
	f.appMu.Unlock()
	if !empty {
		return nil
	}
	return f.destroyLocked(pending)
}

// teardown destroys the user applications first and the internal application
// last, then queues the framework's own destroy listeners.
func (f *Framework) teardown(pending *[]func()) error {
	f.appMu.Lock()
	users := slices.Clone(f.apps)
	internal := f.internalApp
	f.appMu.Unlock()

	var err error
	for _, application := range users {
		err = multierr.Append(err, application.destroyLocked(pending))
	}
	if internal != nil {
		err = multierr.Append(err, internal.destroyLocked(pending))
	}
	f.queueListeners(pending)
	f.logger.Infof("%s shut down", f.Description())
	return err
}

// Destroy tears down the whole scope tree. It is idempotent.
func (f *Framework) Destroy() error {
	return f.destroyTree(&f.node)
}

// destroyTree serializes destruction of any node against the rest of the tree
// and fires the collected destroy listeners once the lock is released, so
// listeners may safely call back into surviving nodes.
func (f *Framework) destroyTree(n *node) error {
	f.destroyMu.Lock()
	var pending []func()
	err := n.destroyLocked(&pending)
	f.destroyMu.Unlock()

	for _, fire := range pending {
		fire()
	}
	return err
}
