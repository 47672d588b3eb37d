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

// Package errors defines the sentinel errors shared across the runtime.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrContractNotRegistered is returned when an extension contract has not
	// been registered with the catalog serving a scope.
	ErrContractNotRegistered = errors.New("extension contract is not registered")

	// ErrExtensionNotFound is returned when no extension with the requested
	// name exists for a contract.
	ErrExtensionNotFound = errors.New("extension is not found")

	// ErrExtensionNameRequired is returned when an operation that needs an
	// extension name receives a blank one.
	ErrExtensionNameRequired = errors.New("extension name is required")

	// ErrInvalidExtensionName is returned when an extension name contains invalid
	// characters. A valid name must consist of only alphanumeric characters
	// ([a-zA-Z0-9]), with optional non-leading hyphens, underscores or dots.
	ErrInvalidExtensionName = errors.New("invalid extension name, must contain only word characters (i.e. [a-zA-Z0-9] plus non-leading '-', '_' or '.')")

	// ErrDuplicateExtension is returned when two providers claim the same
	// extension name for a contract.
	ErrDuplicateExtension = errors.New("duplicate extension name")

	// ErrDuplicateContract is returned when a contract is registered twice for
	// the same interface type.
	ErrDuplicateContract = errors.New("extension contract is already registered")

	// ErrDuplicateProvider is returned when a provider reference is registered twice.
	ErrDuplicateProvider = errors.New("extension provider is already registered")

	// ErrProviderNotFound is returned when a discovery entry references a
	// provider that was never registered with the catalog.
	ErrProviderNotFound = errors.New("extension provider is not registered")

	// ErrNotAnInterface is returned when a contract is declared over a type
	// that is not an interface.
	ErrNotAnInterface = errors.New("extension contract type must be an interface")

	// ErrTooManyAdaptives is returned when more than one provider of a contract
	// is marked adaptive.
	ErrTooManyAdaptives = errors.New("more than one adaptive extension found")

	// ErrNoDefault is returned when a contract declares no default extension
	// name and one is required to resolve a request.
	ErrNoDefault = errors.New("contract declares no default extension")

	// ErrAdaptiveMismatch is returned when the adaptive extension of a contract
	// is not of the kind the caller asked for, a synthesized dispatcher where a
	// typed adaptive implementation was expected or the reverse.
	ErrAdaptiveMismatch = errors.New("adaptive extension kind mismatch")

	// ErrTypeMismatch is returned when a constructed extension does not
	// implement the contract interface the caller requested. A post-processor
	// replacing instances is the usual culprit.
	ErrTypeMismatch = errors.New("extension does not implement the requested contract type")

	// ErrRouteNotResolved is returned when none of the route keys of an adaptive
	// dispatch carry a value and the contract has no default to fall back to.
	ErrRouteNotResolved = errors.New("no extension name could be resolved from the route context")

	// ErrMethodNotRoutable is returned when an adaptive dispatch targets a
	// method that is not covered by the contract route table.
	ErrMethodNotRoutable = errors.New("method is not routable")

	// ErrNoMatchingScope indicates that no scope node in the hierarchy can host
	// the loader of a contract.
	ErrNoMatchingScope = errors.New("no scope in the hierarchy matches the contract scope")

	// ErrLoaderDestroyed is returned when an extension loader is used after Destroy.
	ErrLoaderDestroyed = errors.New("extension loader is destroyed")

	// ErrDirectorDestroyed is returned when an extension director is used after Destroy.
	ErrDirectorDestroyed = errors.New("extension director is destroyed")

	// ErrNodeDestroyed is returned when a scope node is used after Destroy.
	ErrNodeDestroyed = errors.New("scope node is destroyed")

	// ErrBeanFactoryDestroyed is returned when a bean factory is used after Destroy.
	ErrBeanFactoryDestroyed = errors.New("bean factory is destroyed")

	// ErrBeanAmbiguous is returned when a bean lookup by bare type matches more
	// than one registered bean.
	ErrBeanAmbiguous = errors.New("more than one bean matches the requested type")

	// ErrSourceRequired is returned when a nil extension source is added to a scope.
	ErrSourceRequired = errors.New("extension source is required")

	// ErrBeanRequired is returned when a nil bean is registered with a bean factory.
	ErrBeanRequired = errors.New("bean instance is required")

	// ErrNilExtension is returned when an extension factory produces a nil value.
	ErrNilExtension = errors.New("extension factory returned nil")
)

// NewErrContractNotRegistered formats an ErrContractNotRegistered with the given contract name.
func NewErrContractNotRegistered(contract string) error {
	return fmt.Errorf("contract=(%s) %w", contract, ErrContractNotRegistered)
}

// NewErrExtensionNotFound formats an ErrExtensionNotFound with the given contract and
// extension name. When discovery recorded failures for the name they are joined in.
func NewErrExtensionNotFound(contract, name string, causes ...error) error {
	err := fmt.Errorf("contract=(%s) name=(%s) %w", contract, name, ErrExtensionNotFound)
	joined := make([]error, 0, len(causes)+1)
	joined = append(joined, err)
	for _, cause := range causes {
		if cause != nil {
			joined = append(joined, cause)
		}
	}
	if len(joined) == 1 {
		return err
	}
	return errors.Join(joined...)
}

// NewErrInvalidExtensionName formats an ErrInvalidExtensionName with the given name.
func NewErrInvalidExtensionName(name string) error {
	return fmt.Errorf("name=(%s) %w", name, ErrInvalidExtensionName)
}

// NewErrDuplicateExtension formats an ErrDuplicateExtension with the given contract,
// extension name and the two provider references claiming it.
func NewErrDuplicateExtension(contract, name, first, second string) error {
	return fmt.Errorf("contract=(%s) name=(%s) providers=(%s, %s) %w", contract, name, first, second, ErrDuplicateExtension)
}

// NewErrDuplicateContract formats an ErrDuplicateContract with the given contract name.
func NewErrDuplicateContract(contract string) error {
	return fmt.Errorf("contract=(%s) %w", contract, ErrDuplicateContract)
}

// NewErrDuplicateProvider formats an ErrDuplicateProvider with the given provider reference.
func NewErrDuplicateProvider(ref string) error {
	return fmt.Errorf("provider=(%s) %w", ref, ErrDuplicateProvider)
}

// NewErrProviderNotFound formats an ErrProviderNotFound with the given contract
// and provider reference.
func NewErrProviderNotFound(contract, ref string) error {
	return fmt.Errorf("contract=(%s) ref=(%s) %w", contract, ref, ErrProviderNotFound)
}

// NewErrNotAnInterface formats an ErrNotAnInterface with the given type name.
func NewErrNotAnInterface(typeName string) error {
	return fmt.Errorf("type=(%s) %w", typeName, ErrNotAnInterface)
}

// NewErrTooManyAdaptives formats an ErrTooManyAdaptives with the given contract
// and the provider references marked adaptive.
func NewErrTooManyAdaptives(contract string, refs []string) error {
	return fmt.Errorf("contract=(%s) providers=(%s) %w", contract, strings.Join(refs, ", "), ErrTooManyAdaptives)
}

// NewErrNoDefault formats an ErrNoDefault with the given contract name.
func NewErrNoDefault(contract string) error {
	return fmt.Errorf("contract=(%s) %w", contract, ErrNoDefault)
}

// NewErrAdaptiveMismatch formats an ErrAdaptiveMismatch with the given contract name.
func NewErrAdaptiveMismatch(contract string) error {
	return fmt.Errorf("contract=(%s) %w", contract, ErrAdaptiveMismatch)
}

// NewErrTypeMismatch formats an ErrTypeMismatch with the given contract and extension name.
func NewErrTypeMismatch(contract, name string) error {
	return fmt.Errorf("contract=(%s) name=(%s) %w", contract, name, ErrTypeMismatch)
}

// NewErrRouteNotResolved formats an ErrRouteNotResolved with the given contract
// and the route keys that were probed.
func NewErrRouteNotResolved(contract string, keys []string) error {
	return fmt.Errorf("contract=(%s) keys=(%s) %w", contract, strings.Join(keys, ", "), ErrRouteNotResolved)
}

// NewErrMethodNotRoutable formats an ErrMethodNotRoutable with the given contract and method.
func NewErrMethodNotRoutable(contract, method string) error {
	return fmt.Errorf("contract=(%s) method=(%s) %w", contract, method, ErrMethodNotRoutable)
}

// NewErrNoMatchingScope formats an ErrNoMatchingScope with the given contract and scope.
func NewErrNoMatchingScope(contract, scope string) error {
	return fmt.Errorf("contract=(%s) scope=(%s) %w", contract, scope, ErrNoMatchingScope)
}

// NewErrBeanAmbiguous formats an ErrBeanAmbiguous with the given bean type and match count.
func NewErrBeanAmbiguous(beanType string, count int) error {
	return fmt.Errorf("type=(%s) matches=(%d) %w", beanType, count, ErrBeanAmbiguous)
}

// NewErrNilExtension formats an ErrNilExtension with the given provider reference.
func NewErrNilExtension(ref string) error {
	return fmt.Errorf("provider=(%s) %w", ref, ErrNilExtension)
}

// ConstructionError defines an error raised while constructing, injecting or
// decorating an extension instance. It carries the contract and extension name
// the failure belongs to.
type ConstructionError struct {
	contract string
	name     string
	err      error
}

// enforce compilation error
var _ error = (*ConstructionError)(nil)

// NewConstructionError returns an instance of ConstructionError
func NewConstructionError(contract, name string, err error) *ConstructionError {
	return &ConstructionError{
		contract: contract,
		name:     name,
		err:      err,
	}
}

// Error implements the standard error interface
func (e *ConstructionError) Error() string {
	return fmt.Sprintf("failed to construct extension name=(%s) contract=(%s): %v", e.name, e.contract, e.err)
}

func (e *ConstructionError) Unwrap() error {
	return e.err
}

// Contract returns the contract name the construction failure belongs to
func (e *ConstructionError) Contract() string {
	return e.contract
}

// Name returns the extension name the construction failure belongs to
func (e *ConstructionError) Name() string {
	return e.name
}

// InjectionError defines an error raised while resolving a dependency for a
// setter of an extension instance.
type InjectionError struct {
	setter string
	err    error
}

// enforce compilation error
var _ error = (*InjectionError)(nil)

// NewInjectionError returns an instance of InjectionError
func NewInjectionError(setter string, err error) *InjectionError {
	return &InjectionError{
		setter: setter,
		err:    err,
	}
}

// Error implements the standard error interface
func (e *InjectionError) Error() string {
	return fmt.Sprintf("failed to inject dependency through setter=(%s): %v", e.setter, e.err)
}

func (e *InjectionError) Unwrap() error {
	return e.err
}

// Setter returns the setter method name the injection failure belongs to
func (e *InjectionError) Setter() string {
	return e.setter
}
