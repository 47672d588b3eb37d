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
	"unicode"

	gerrors "github.com/gospi-io/gospi/errors"
)

// Contract describes an extension point: an interface type whose named
// implementations are discovered and constructed by a Loader. Contracts are
// registered once with a Catalog and are immutable afterwards.
type Contract struct {
	ctype            reflect.Type
	name             string
	defaultName      string
	scope            Tag
	routeKeys        []string
	methods          []RouteMethod
	delegateUnrouted bool
}

// RouteMethod names a contract method that participates in adaptive dispatch
// together with the route keys probed for it. Empty keys fall back to the
// contract-level route keys.
type RouteMethod struct {
	Name string
	Keys []string
}

// ContractOption is the interface that applies a configuration option.
type ContractOption interface {
	// Apply sets the Option value of a config.
	Apply(c *Contract)
}

// enforce compilation error
var _ ContractOption = ContractOptionFunc(nil)

// ContractOptionFunc implements the ContractOption interface.
type ContractOptionFunc func(*Contract)

func (f ContractOptionFunc) Apply(c *Contract) {
	f(c)
}

// WithContractName overrides the contract name derived from the interface
// type. Anonymous interface types require it.
func WithContractName(name string) ContractOption {
	return ContractOptionFunc(func(c *Contract) {
		c.name = name
	})
}

// WithDefaultName sets the extension name resolved when a lookup passes the
// default alias or when adaptive dispatch finds no route value.
func WithDefaultName(name string) ContractOption {
	return ContractOptionFunc(func(c *Contract) {
		c.defaultName = name
	})
}

// WithScope sets the scope level the contract's Loader lives at. The default
// is TagApplication.
func WithScope(scope Tag) ContractOption {
	return ContractOptionFunc(func(c *Contract) {
		c.scope = scope
	})
}

// WithRouteKeys sets the contract-level route keys probed by adaptive
// dispatch, replacing the key derived from the contract name.
func WithRouteKeys(keys ...string) ContractOption {
	return ContractOptionFunc(func(c *Contract) {
		c.routeKeys = keys
	})
}

// WithRouteMethod declares a routable method. When at least one method is
// declared only the declared methods dispatch; every other method fails with
// ErrMethodNotRoutable unless WithDelegateUnrouted is set.
func WithRouteMethod(method string, keys ...string) ContractOption {
	return ContractOptionFunc(func(c *Contract) {
		c.methods = append(c.methods, RouteMethod{Name: method, Keys: keys})
	})
}

// WithDelegateUnrouted routes methods missing from the route table to the
// contract default extension instead of failing.
func WithDelegateUnrouted() ContractOption {
	return ContractOptionFunc(func(c *Contract) {
		c.delegateUnrouted = true
	})
}

// NewContract declares the interface type T as an extension contract. The
// contract name defaults to the interface's simple name and the route key to
// that name camel-split with dots ("SimpleExt" probes "simple.ext").
func NewContract[T any](opts ...ContractOption) (*Contract, error) {
	ctype := reflect.TypeOf((*T)(nil)).Elem()
	if ctype.Kind() != reflect.Interface {
		return nil, gerrors.NewErrNotAnInterface(ctype.String())
	}

	contract := &Contract{
		ctype: ctype,
		name:  ctype.Name(),
		scope: TagApplication,
	}

	for _, opt := range opts {
		opt.Apply(contract)
	}

	if contract.name == "" {
		return nil, gerrors.NewErrNotAnInterface(ctype.String())
	}

	if len(contract.routeKeys) == 0 {
		contract.routeKeys = []string{camelToSplitName(contract.name, '.')}
	}

	return contract, nil
}

// Type returns the contract interface type
func (c *Contract) Type() reflect.Type {
	return c.ctype
}

// Name returns the contract name
func (c *Contract) Name() string {
	return c.name
}

// DefaultName returns the default extension name, empty when the contract
// declares none
func (c *Contract) DefaultName() string {
	return c.defaultName
}

// Scope returns the scope level the contract's Loader lives at
func (c *Contract) Scope() Tag {
	return c.scope
}

// RouteKeys returns the contract-level route keys
func (c *Contract) RouteKeys() []string {
	keys := make([]string, len(c.routeKeys))
	copy(keys, c.routeKeys)
	return keys
}

// Methods returns the declared routable methods
func (c *Contract) Methods() []RouteMethod {
	methods := make([]RouteMethod, len(c.methods))
	copy(methods, c.methods)
	return methods
}

// DelegatesUnrouted returns true when methods missing from the route table
// dispatch to the contract default extension
func (c *Contract) DelegatesUnrouted() bool {
	return c.delegateUnrouted
}

// routeKeysFor returns the keys probed for the given method and whether the
// method is routable at all. With an empty route table every method is
// routable through the contract-level keys.
func (c *Contract) routeKeysFor(method string) ([]string, bool) {
	if len(c.methods) == 0 {
		return c.routeKeys, true
	}
	for _, m := range c.methods {
		if m.Name == method {
			if len(m.Keys) == 0 {
				return c.routeKeys, true
			}
			return m.Keys, true
		}
	}
	return nil, false
}

// camelToSplitName splits a camel-cased name on upper-case boundaries and
// joins the lowered parts with the separator.
func camelToSplitName(name string, separator rune) string {
	var builder strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				builder.WriteRune(separator)
			}
			builder.WriteRune(unicode.ToLower(r))
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}
