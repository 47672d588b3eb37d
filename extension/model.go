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

	"github.com/gospi-io/gospi/log"
)

// ScopeModel is the view a Director and its Loaders have of the scope node
// hosting them: identity, the shared Catalog, the ordered discovery sources
// and the scoped bean registry.
type ScopeModel interface {
	Accessor
	// UID returns the process-unique node identifier.
	UID() string
	// InternalID returns the structural node path, "1.2.0" style.
	InternalID() string
	// Description returns a human readable node description for logs.
	Description() string
	// IsDestroyed reports whether the node has been destroyed.
	IsDestroyed() bool
	// Catalog returns the catalog serving the node's scope tree.
	Catalog() *Catalog
	// Sources returns the node's ordered discovery sources.
	Sources() []Source
	// Bean resolves a scoped bean by assignable type and optional name. A nil
	// result with a nil error means no bean matched.
	Bean(beanType reflect.Type, name string) (any, error)
	// Logger returns the node logger.
	Logger() log.Logger
}

// ScopeModelAware is delivered by the scope post-processor to extension
// instances that want the scope node they were constructed for. The setter is
// excluded from regular dependency injection.
type ScopeModelAware interface {
	SetScopeModel(model ScopeModel)
}

// AccessorAware is delivered by the Director after injection to extension
// instances that want to load further extensions themselves. The setter is
// excluded from regular dependency injection.
type AccessorAware interface {
	SetExtensionAccessor(accessor Accessor)
}

// Initializable lets an extension instance run one-time setup after
// construction, injection and wrapping. A returned error fails the lookup as
// a construction failure.
type Initializable interface {
	Initialize() error
}

// PostProcessor hooks into extension construction. BeforeInjection runs on the
// fresh instance before dependency injection, AfterInjection runs after
// injection and again after each wrapper decoration. Either hook may replace
// the instance by returning a different one.
type PostProcessor interface {
	BeforeInjection(instance any, name string) (any, error)
	AfterInjection(instance any, name string) (any, error)
}
