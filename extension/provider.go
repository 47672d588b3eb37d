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
	"strings"

	gerrors "github.com/gospi-io/gospi/errors"
)

// Activation marks a provider for conditional multi-selection. A loader's
// Activated operation auto-selects every provider whose group and conditions
// match the request.
type Activation struct {
	// Groups the provider activates for. A request with a non-blank group
	// filter matches only providers listing that group.
	Groups []string
	// Conditions gate activation against the route context. Empty conditions
	// always match; otherwise any single matching condition suffices.
	Conditions []Condition
	// Order ranks the auto-activated set, lower first.
	Order int
	// Before lists extension names this provider sorts ahead of.
	Before []string
	// After lists extension names this provider sorts behind.
	After []string
	// Requires lists provider references that must all be registered with the
	// catalog for the activation to be considered. Evaluated once per
	// discovery pass.
	Requires []string
}

// Condition matches a route context parameter. A blank Value matches any
// non-blank parameter value; otherwise the values must be equal.
type Condition struct {
	Key   string
	Value string
}

// Provider registers one implementation of a contract: a factory for plain and
// adaptive extensions, or a decoration function for wrappers.
type Provider struct {
	ref          string
	contractType reflect.Type
	factory      func() any
	wrap         func(any) any
	names        []string
	adaptive     bool
	wrapper      bool
	activation   *Activation
	order        int
	matches      []string
	mismatches   []string
	skipInject   []string
}

// ProviderOption is the interface that applies a configuration option.
type ProviderOption interface {
	// Apply sets the Option value of a config.
	Apply(p *Provider)
}

// enforce compilation error
var _ ProviderOption = ProviderOptionFunc(nil)

// ProviderOptionFunc implements the ProviderOption interface.
type ProviderOptionFunc func(*Provider)

func (f ProviderOptionFunc) Apply(p *Provider) {
	f(p)
}

// WithNames sets the extension names the provider answers to, replacing the
// name derived from the reference.
func WithNames(names ...string) ProviderOption {
	return ProviderOptionFunc(func(p *Provider) {
		p.names = names
	})
}

// WithOrder sets the provider priority. Wrappers with lower order end up
// deeper in the decoration chain; prioritized instance listings sort ascending.
func WithOrder(order int) ProviderOption {
	return ProviderOptionFunc(func(p *Provider) {
		p.order = order
	})
}

// WithAdaptive marks the provider as the hand-written adaptive implementation
// of its contract. At most one adaptive provider may bind per loader.
func WithAdaptive() ProviderOption {
	return ProviderOptionFunc(func(p *Provider) {
		p.adaptive = true
	})
}

// WithWrapFilter restricts which extension names a wrapper decorates. An empty
// matches list decorates every name not listed in mismatches.
func WithWrapFilter(matches []string, mismatches []string) ProviderOption {
	return ProviderOptionFunc(func(p *Provider) {
		p.matches = matches
		p.mismatches = mismatches
	})
}

// WithActivation attaches activation metadata for conditional multi-selection.
func WithActivation(activation *Activation) ProviderOption {
	return ProviderOptionFunc(func(p *Provider) {
		p.activation = activation
	})
}

// WithSkipInject opts the named setter methods out of dependency injection.
func WithSkipInject(setters ...string) ProviderOption {
	return ProviderOptionFunc(func(p *Provider) {
		p.skipInject = setters
	})
}

// NewProvider registers a factory for an implementation of the contract T. The
// reference must be unique within the contract; the extension name defaults to
// the lower-cased reference with the contract's simple name suffix stripped
// ("tcpTransporter" implementing Transporter yields "tcp").
func NewProvider[T any](ref string, factory func() T, opts ...ProviderOption) *Provider {
	contractType := reflect.TypeOf((*T)(nil)).Elem()
	provider := &Provider{
		ref:          ref,
		contractType: contractType,
		factory: func() any {
			return factory()
		},
	}

	for _, opt := range opts {
		opt.Apply(provider)
	}

	if len(provider.names) == 0 {
		provider.names = []string{deriveName(ref, contractType.Name())}
	}

	return provider
}

// NewWrapper registers a decoration function for the contract T. Wrappers bind
// no extension names; every eligible wrapper is stacked around each
// constructed instance, and the lowest order wrapper is applied last so it
// sits outermost.
func NewWrapper[T any](ref string, wrap func(T) T, opts ...ProviderOption) *Provider {
	contractType := reflect.TypeOf((*T)(nil)).Elem()
	provider := &Provider{
		ref:          ref,
		contractType: contractType,
		wrapper:      true,
		wrap: func(inner any) any {
			typed, _ := inner.(T)
			return wrap(typed)
		},
	}

	for _, opt := range opts {
		opt.Apply(provider)
	}

	if len(provider.names) == 0 {
		provider.names = []string{deriveName(ref, contractType.Name())}
	}

	return provider
}

// Ref returns the provider reference
func (p *Provider) Ref() string {
	return p.ref
}

// ContractType returns the contract interface type the provider implements
func (p *Provider) ContractType() reflect.Type {
	return p.contractType
}

// Names returns the extension names the provider answers to
func (p *Provider) Names() []string {
	names := make([]string, len(p.names))
	copy(names, p.names)
	return names
}

// IsAdaptive returns true when the provider is the hand-written adaptive
// implementation of its contract
func (p *Provider) IsAdaptive() bool {
	return p.adaptive
}

// IsWrapper returns true when the provider decorates instances instead of
// constructing them
func (p *Provider) IsWrapper() bool {
	return p.wrapper
}

// Order returns the provider priority
func (p *Provider) Order() int {
	return p.order
}

// Activation returns the activation metadata, nil when the provider is not
// conditionally selectable
func (p *Provider) Activation() *Activation {
	return p.activation
}

// construct invokes the factory and rejects nil results.
func (p *Provider) construct() (any, error) {
	instance := p.factory()
	if isNilValue(instance) {
		return nil, gerrors.NewErrNilExtension(p.ref)
	}
	return instance, nil
}

// accepts reports whether the wrapper decorates the given extension name.
func (p *Provider) accepts(name string) bool {
	for _, mismatch := range p.mismatches {
		if mismatch == name {
			return false
		}
	}
	if len(p.matches) == 0 {
		return true
	}
	for _, match := range p.matches {
		if match == name {
			return true
		}
	}
	return false
}

// deriveName derives the default extension name from a provider reference by
// stripping the contract's simple name suffix and lowering the rest.
func deriveName(ref, contractSimpleName string) string {
	name := ref
	if contractSimpleName != "" && len(name) > len(contractSimpleName) && strings.HasSuffix(name, contractSimpleName) {
		name = name[:len(name)-len(contractSimpleName)]
	}
	return strings.ToLower(name)
}
