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

// Package scope implements the isolation tree hosting the extension runtime: a
// Framework root, Applications under it and Modules under those. Each node
// carries its own extension Director, a scoped bean factory, an ordered list
// of discovery sources and an attribute bag. Loaders resolve up the tree, so
// extensions can be shared by a whole framework or application while modules
// remain independently destroyable.
package scope

import (
	"reflect"
	"slices"
	"sync"

	goset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	gerrors "github.com/gospi-io/gospi/errors"
	"github.com/gospi-io/gospi/extension"
	"github.com/gospi-io/gospi/internal/xsync"
	"github.com/gospi-io/gospi/log"
)

// Node is a boundary in the scope tree. Framework, Application and Module all
// implement it, which makes every node an extension.ScopeModel and an
// extension.Accessor: loaders, injectors and post processors see the node they
// serve through this interface only.
type Node interface {
	extension.ScopeModel

	// Parent returns the enclosing node, nil on the framework root.
	Parent() Node
	// Scope returns the tag describing which contracts may host their loader
	// on this node.
	Scope() extension.Tag
	// IsInternal reports whether the node is one of the runtime's own children
	// rather than a user created one.
	IsInternal() bool
	// Name returns the user assigned node name, empty until SetName is called.
	Name() string
	// SetName assigns the node name used by Description.
	SetName(name string)
	// Director returns the node's extension director.
	Director() *extension.Director
	// Beans returns the node's scoped bean factory.
	Beans() *BeanFactory
	// Attribute returns the opaque value stored under key on this node.
	Attribute(key string) (any, bool)
	// SetAttribute stores an opaque value under key on this node.
	SetAttribute(key string, value any)
	// AddSource appends a discovery source to the node and registers it with
	// every ancestor, so that loaders hosted higher up the tree see bindings
	// contributed by this node. Loader discovery caches are evicted at each
	// affected node.
	AddSource(source extension.Source) error
	// RemoveSource removes the source with the given id from the node and its
	// ancestors and evicts the affected discovery caches. The catalog base
	// source cannot be removed.
	RemoveSource(id string)
	// AddDestroyListener registers a callback fired exactly once when the node
	// is destroyed. Registering on an already destroyed node fires the
	// callback immediately.
	AddDestroyListener(listener func(Node))
	// Destroy tears the node and its subtree down. It is idempotent.
	Destroy() error
}

// node carries the state shared by every node kind. Concrete types embed it
// and supply Description, Destroy and the onDestroy teardown hook.
type node struct {
	self       Node
	parent     *node
	root       *Framework
	scope      extension.Tag
	uid        string
	internalID string
	internal   bool

	catalog  *extension.Catalog
	director *extension.Director
	beans    *BeanFactory
	logger   log.Logger

	nameMu sync.RWMutex
	name   string

	sourceMu   sync.Mutex
	sources    []extension.Source
	ownSources goset.Set[string]

	attributes *xsync.Map[string, any]

	listenerMu sync.Mutex
	listeners  []func(Node)

	destroyed *atomic.Bool

	// onDestroy runs first during destroyLocked. It removes the node from its
	// parent registry, cascades into children, queues destroy listeners and
	// prunes empty ancestors. Destroy listeners collected into pending fire
	// after the tree destroy lock is released.
	onDestroy func(pending *[]func()) error
}

// initNode wires the node base: director chained to the parent's, the scope
// awareness post processor and its reserved setters, a parent chained bean
// factory and the catalog base source. The concrete type is passed as self so
// that listeners and awareness callbacks receive it rather than the embedded
// base.
func (n *node) initNode(self Node, parent *node, root *Framework, scope extension.Tag, internalID string, catalog *extension.Catalog, logger log.Logger) error {
	if logger == nil {
		logger = log.DefaultLogger
	}

	n.self = self
	n.parent = parent
	n.root = root
	n.scope = scope
	n.uid = uuid.NewString()
	n.internalID = internalID
	n.catalog = catalog
	n.logger = logger
	n.sources = []extension.Source{catalog.Source()}
	n.ownSources = goset.NewSet[string]()
	n.attributes = xsync.NewMap[string, any]()
	n.destroyed = atomic.NewBool(false)

	var parentDirector *extension.Director
	var parentBeans *BeanFactory
	if parent != nil {
		parentDirector = parent.director
		parentBeans = parent.beans
	}

	n.director = extension.NewDirector(parentDirector, scope, self)
	n.director.RegisterProcessor(newAwareProcessor(self))
	if err := multierr.Combine(
		n.director.RegisterAwareness(frameworkAwareType, "SetFramework"),
		n.director.RegisterAwareness(applicationAwareType, "SetApplication"),
		n.director.RegisterAwareness(moduleAwareType, "SetModule"),
	); err != nil {
		return err
	}
	n.beans = NewBeanFactory(parentBeans)
	return nil
}

// UID returns the process-unique node identifier.
func (n *node) UID() string {
	return n.uid
}

// InternalID returns the structural node path, "1.2.0" style: the framework
// index, then the application index within it, then the module index. Internal
// children hold index 0 at their level.
func (n *node) InternalID() string {
	return n.internalID
}

// Parent returns the enclosing node, nil on the framework root.
func (n *node) Parent() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent.self
}

// Scope returns the node's scope tag.
func (n *node) Scope() extension.Tag {
	return n.scope
}

// IsInternal reports whether the node is one of the runtime's own children.
func (n *node) IsInternal() bool {
	return n.internal
}

// Name returns the user assigned node name.
func (n *node) Name() string {
	n.nameMu.RLock()
	defer n.nameMu.RUnlock()
	return n.name
}

// SetName assigns the node name used by Description.
func (n *node) SetName(name string) {
	n.nameMu.Lock()
	n.name = name
	n.nameMu.Unlock()
}

// Director returns the node's extension director.
func (n *node) Director() *extension.Director {
	return n.director
}

// ExtensionDirector makes every node its own extension.Accessor.
func (n *node) ExtensionDirector() *extension.Director {
	return n.director
}

// Beans returns the node's scoped bean factory.
func (n *node) Beans() *BeanFactory {
	return n.beans
}

// Catalog returns the contract catalog shared by the whole scope tree.
func (n *node) Catalog() *extension.Catalog {
	return n.catalog
}

// Logger returns the node logger.
func (n *node) Logger() log.Logger {
	return n.logger
}

// Bean resolves a scoped bean by assignable type and optional name, walking
// the bean factory chain up the tree. A nil result with a nil error means no
// bean matched.
func (n *node) Bean(beanType reflect.Type, name string) (any, error) {
	return n.beans.GetBean(beanType, name)
}

// Attribute returns the opaque value stored under key on this node.
func (n *node) Attribute(key string) (any, bool) {
	return n.attributes.Get(key)
}

// SetAttribute stores an opaque value under key on this node.
func (n *node) SetAttribute(key string, value any) {
	n.attributes.Set(key, value)
}

// Sources returns the node's ordered discovery sources: the catalog base
// source first, then sources added to this node or adopted from descendants in
// arrival order.
func (n *node) Sources() []extension.Source {
	n.sourceMu.Lock()
	defer n.sourceMu.Unlock()
	return slices.Clone(n.sources)
}

// AddSource appends a discovery source to the node, marks it as owned and
// registers it with every ancestor so that shared loaders hosted higher up
// rediscover with it.
func (n *node) AddSource(source extension.Source) error {
	if source == nil {
		return gerrors.ErrSourceRequired
	}
	if n.destroyed.Load() {
		return gerrors.ErrNodeDestroyed
	}

	n.sourceMu.Lock()
	if !n.appendSourceLocked(source) {
		n.sourceMu.Unlock()
		return nil
	}
	n.ownSources.Add(source.ID())
	n.sourceMu.Unlock()

	for ancestor := n.parent; ancestor != nil; ancestor = ancestor.parent {
		ancestor.adoptSource(source)
	}
	n.director.EvictDiscovery()
	return nil
}

// adoptSource registers a descendant's source without marking it as owned by
// this node. Eviction still applies: loaders hosted here must rescan.
func (n *node) adoptSource(source extension.Source) {
	n.sourceMu.Lock()
	added := n.appendSourceLocked(source)
	n.sourceMu.Unlock()
	if added {
		n.director.EvictDiscovery()
	}
}

// appendSourceLocked appends the source unless one with the same id is already
// present. Callers hold sourceMu.
func (n *node) appendSourceLocked(source extension.Source) bool {
	for _, existing := range n.sources {
		if existing.ID() == source.ID() {
			return false
		}
	}
	n.sources = append(n.sources, source)
	return true
}

// RemoveSource removes the source with the given id from the node and every
// ancestor. The catalog base source sticks: removing it would cut the node off
// from its own registrations.
func (n *node) RemoveSource(id string) {
	if id == n.catalog.Source().ID() {
		return
	}
	n.dropSource(id)
	for ancestor := n.parent; ancestor != nil; ancestor = ancestor.parent {
		ancestor.dropSource(id)
	}
}

// dropSource removes the source locally and evicts the discovery caches of
// loaders hosted on this node when something actually changed.
func (n *node) dropSource(id string) {
	n.sourceMu.Lock()
	before := len(n.sources)
	n.sources = slices.DeleteFunc(n.sources, func(source extension.Source) bool {
		return source.ID() == id
	})
	n.ownSources.Remove(id)
	changed := len(n.sources) != before
	n.sourceMu.Unlock()

	if changed {
		n.director.EvictDiscovery()
	}
}

// withdrawSources removes the sources this node owns from itself and its
// ancestors. Sources adopted from descendants are left to their owners and the
// catalog base source is never withdrawn.
func (n *node) withdrawSources() {
	n.sourceMu.Lock()
	own := n.ownSources.ToSlice()
	n.sourceMu.Unlock()

	for _, id := range own {
		n.dropSource(id)
		for ancestor := n.parent; ancestor != nil; ancestor = ancestor.parent {
			ancestor.dropSource(id)
		}
	}
}

// AddDestroyListener registers a callback fired exactly once when the node is
// destroyed. On an already destroyed node the callback fires immediately.
func (n *node) AddDestroyListener(listener func(Node)) {
	if listener == nil {
		return
	}
	n.listenerMu.Lock()
	if n.destroyed.Load() {
		n.listenerMu.Unlock()
		listener(n.self)
		return
	}
	n.listeners = append(n.listeners, listener)
	n.listenerMu.Unlock()
}

// queueListeners moves the node's destroy listeners into pending. They fire in
// registration order once the tree destroy lock is released.
func (n *node) queueListeners(pending *[]func()) {
	n.listenerMu.Lock()
	listeners := n.listeners
	n.listeners = nil
	n.listenerMu.Unlock()

	self := n.self
	for _, listener := range listeners {
		callback := listener
		*pending = append(*pending, func() { callback(self) })
	}
}

// IsDestroyed reports whether the node has been destroyed.
func (n *node) IsDestroyed() bool {
	return n.destroyed.Load()
}

// destroyLocked tears the node down under the tree destroy lock: the concrete
// teardown hook first (deregistration, child cascade, listener queueing and
// ancestor pruning), then source withdrawal, the bean factory, the director
// and finally the attribute bag.
func (n *node) destroyLocked(pending *[]func()) error {
	if !n.destroyed.CompareAndSwap(false, true) {
		return nil
	}
	n.logger.Debugf("destroying %s", n.self.Description())

	var err error
	if n.onDestroy != nil {
		err = n.onDestroy(pending)
	}
	n.withdrawSources()
	err = multierr.Append(err, n.beans.Destroy())
	err = multierr.Append(err, n.director.Destroy())
	n.attributes.Reset()
	return err
}
