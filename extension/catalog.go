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
	"sort"
	"sync"

	goset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"

	gerrors "github.com/gospi-io/gospi/errors"
	"github.com/gospi-io/gospi/internal/validation"
)

// namePattern validates extension names and provider references.
const namePattern = "^[a-zA-Z0-9][a-zA-Z0-9-_.]*$"

// Catalog indexes the contracts and providers available to a scope tree. It
// replaces classpath scanning: every implementation is registered explicitly,
// and the catalog doubles as the first discovery source of every scope node.
type Catalog struct {
	mu        sync.RWMutex
	contracts map[reflect.Type]*Contract
	byName    map[string]*Contract
	providers map[reflect.Type]map[string]*Provider
	entries   map[string][]Entry
	refs      goset.Set[string]
	source    *catalogSource
}

// NewCatalog creates a Catalog pre-loaded with the runtime's own Injector
// contract and its adaptive, bean and spi providers.
func NewCatalog() *Catalog {
	catalog := &Catalog{
		contracts: make(map[reflect.Type]*Contract),
		byName:    make(map[string]*Contract),
		providers: make(map[reflect.Type]map[string]*Provider),
		entries:   make(map[string][]Entry),
		refs:      goset.NewSet[string](),
	}
	catalog.source = &catalogSource{
		id:      "catalog/" + uuid.NewString(),
		catalog: catalog,
	}
	registerInjectorContract(catalog)
	return catalog
}

// RegisterContract adds an extension contract to the catalog. At most one
// contract may register per interface type and per contract name.
func (x *Catalog) RegisterContract(contract *Contract) error {
	chain := validation.New(validation.FailFast()).
		AddAssertion(contract != nil, "contract is required")
	if err := chain.Validate(); err != nil {
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.contracts[contract.ctype]; ok {
		return gerrors.NewErrDuplicateContract(contract.name)
	}
	if _, ok := x.byName[contract.name]; ok {
		return gerrors.NewErrDuplicateContract(contract.name)
	}

	x.contracts[contract.ctype] = contract
	x.byName[contract.name] = contract
	return nil
}

// Register adds a provider to the catalog and records its name bindings in the
// catalog's built-in discovery source. The provider's contract must already be
// registered and its reference unique within that contract. A name already
// claimed by an earlier provider of the same contract is rebound to the later
// registration, the catalog source being an overriding source.
func (x *Catalog) Register(provider *Provider) error {
	chain := validation.New(validation.FailFast()).
		AddAssertion(provider != nil, "provider is required")
	if err := chain.Validate(); err != nil {
		return err
	}

	chain = validation.New(validation.FailFast()).
		AddValidator(validation.NewPatternValidator(namePattern, provider.ref, gerrors.NewErrInvalidExtensionName(provider.ref)))
	for _, name := range provider.names {
		chain = chain.AddValidator(validation.NewPatternValidator(namePattern, name, gerrors.NewErrInvalidExtensionName(name)))
	}
	if err := chain.Validate(); err != nil {
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	contract, ok := x.contracts[provider.contractType]
	if !ok {
		return gerrors.NewErrContractNotRegistered(provider.contractType.String())
	}

	refs, ok := x.providers[provider.contractType]
	if !ok {
		refs = make(map[string]*Provider)
		x.providers[provider.contractType] = refs
	}
	if _, ok := refs[provider.ref]; ok {
		return gerrors.NewErrDuplicateProvider(provider.ref)
	}

	refs[provider.ref] = provider
	x.refs.Add(provider.ref)
	for _, name := range provider.names {
		x.entries[contract.name] = append(x.entries[contract.name], Entry{Name: name, Ref: provider.ref})
	}
	return nil
}

// ContractOf returns the contract registered for the given interface type.
func (x *Catalog) ContractOf(contractType reflect.Type) (*Contract, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	contract, ok := x.contracts[contractType]
	return contract, ok
}

// Contracts returns every registered contract sorted by name.
func (x *Catalog) Contracts() []*Contract {
	x.mu.RLock()
	defer x.mu.RUnlock()
	contracts := make([]*Contract, 0, len(x.contracts))
	for _, contract := range x.contracts {
		contracts = append(contracts, contract)
	}
	sort.Slice(contracts, func(i, j int) bool {
		return contracts[i].name < contracts[j].name
	})
	return contracts
}

// HasRef reports whether a provider with the given reference is registered
// for any contract. Activation Requires lists are checked against it.
func (x *Catalog) HasRef(ref string) bool {
	return x.refs.Contains(ref)
}

// Source returns the catalog's built-in discovery source. Scope nodes seed
// their source list with it.
func (x *Catalog) Source() Source {
	return x.source
}

// lookup returns the provider registered under ref for the contract.
func (x *Catalog) lookup(contract *Contract, ref string) (*Provider, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	refs, ok := x.providers[contract.ctype]
	if !ok {
		return nil, false
	}
	provider, ok := refs[ref]
	return provider, ok
}

// recordBinding appends a name binding to the built-in source so that a later
// discovery eviction does not lose runtime additions.
func (x *Catalog) recordBinding(contractName, name, ref string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, entry := range x.entries[contractName] {
		if entry.Name == name && entry.Ref == ref {
			return
		}
	}
	x.entries[contractName] = append(x.entries[contractName], Entry{Name: name, Ref: ref})
}

// entriesFor returns a snapshot of the built-in source bindings of a contract.
func (x *Catalog) entriesFor(contractName string) []Entry {
	x.mu.RLock()
	defer x.mu.RUnlock()
	entries := make([]Entry, len(x.entries[contractName]))
	copy(entries, x.entries[contractName])
	return entries
}

// catalogSource exposes the catalog's registration-time bindings as the first
// discovery source of every scope node.
type catalogSource struct {
	id      string
	catalog *Catalog
}

// enforce compilation error
var _ Source = (*catalogSource)(nil)

// ID returns the stable source identity
func (s *catalogSource) ID() string {
	return s.id
}

// Load returns the bindings recorded for the given contract
func (s *catalogSource) Load(contract *Contract) ([]Entry, error) {
	return s.catalog.entriesFor(contract.Name()), nil
}

// Overriding reports that registration-time bindings replace earlier ones
func (s *catalogSource) Overriding() bool {
	return true
}
