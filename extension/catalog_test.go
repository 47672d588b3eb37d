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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	gerrors "github.com/gospi-io/gospi/errors"
)

func TestNewCatalog(t *testing.T) {
	t.Run("with the built-in injector registrations", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		catalog := NewCatalog()

		contract, ok := catalog.ContractOf(contractTypeOf[Injector]())
		require.True(t, ok)
		assert.Equal(t, "Injector", contract.Name())
		assert.Equal(t, TagSelf, contract.Scope())

		assert.True(t, catalog.HasRef("adaptiveInjector"))
		assert.True(t, catalog.HasRef("beanInjector"))
		assert.True(t, catalog.HasRef("spiInjector"))
		assert.False(t, catalog.HasRef("tcpTransporter"))
	})
	t.Run("with the built-in discovery source", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		catalog := NewCatalog()
		source := catalog.Source()
		assert.True(t, strings.HasPrefix(source.ID(), "catalog/"))
		assert.True(t, source.Overriding())
		assert.NotEqual(t, source.ID(), NewCatalog().Source().ID())
	})
}

func TestCatalogRegisterContract(t *testing.T) {
	t.Run("with a new contract", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		catalog := NewCatalog()
		contract, err := NewContract[Transporter]()
		require.NoError(t, err)
		require.NoError(t, catalog.RegisterContract(contract))

		registered, ok := catalog.ContractOf(contractTypeOf[Transporter]())
		require.True(t, ok)
		assert.Same(t, contract, registered)
	})
	t.Run("with a nil contract", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		catalog := NewCatalog()
		err := catalog.RegisterContract(nil)
		require.Error(t, err)
		assert.ErrorContains(t, err, "contract is required")
	})
	t.Run("with a duplicate interface type", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		catalog := NewCatalog()
		contract, err := NewContract[Transporter]()
		require.NoError(t, err)
		require.NoError(t, catalog.RegisterContract(contract))

		renamed, err := NewContract[Transporter](WithContractName("Transport"))
		require.NoError(t, err)
		err = catalog.RegisterContract(renamed)
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrDuplicateContract)
	})
	t.Run("with a duplicate contract name", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		catalog := NewCatalog()
		contract, err := NewContract[Transporter]()
		require.NoError(t, err)
		require.NoError(t, catalog.RegisterContract(contract))

		squatter, err := NewContract[Codec](WithContractName("Transporter"))
		require.NoError(t, err)
		err = catalog.RegisterContract(squatter)
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrDuplicateContract)
	})
}

func TestCatalogRegister(t *testing.T) {
	t.Run("with a registered contract", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		catalog := NewCatalog()
		contract, err := NewContract[Transporter]()
		require.NoError(t, err)
		require.NoError(t, catalog.RegisterContract(contract))

		provider := NewProvider[Transporter]("tcpTransporter", newTCPTransporter)
		require.NoError(t, catalog.Register(provider))

		assert.True(t, catalog.HasRef("tcpTransporter"))
		found, ok := catalog.lookup(contract, "tcpTransporter")
		require.True(t, ok)
		assert.Same(t, provider, found)
		assert.Equal(t, []Entry{{Name: "tcp", Ref: "tcpTransporter"}}, catalog.entriesFor("Transporter"))
	})
	t.Run("with a nil provider", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		catalog := NewCatalog()
		err := catalog.Register(nil)
		require.Error(t, err)
		assert.ErrorContains(t, err, "provider is required")
	})
	t.Run("with an unregistered contract", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		catalog := NewCatalog()
		err := catalog.Register(NewProvider[Transporter]("tcpTransporter", newTCPTransporter))
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrContractNotRegistered)
	})
	t.Run("with a duplicate reference", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		catalog := NewCatalog()
		contract, err := NewContract[Transporter]()
		require.NoError(t, err)
		require.NoError(t, catalog.RegisterContract(contract))
		require.NoError(t, catalog.Register(NewProvider[Transporter]("tcpTransporter", newTCPTransporter)))

		err = catalog.Register(NewProvider[Transporter]("tcpTransporter", newTCPTransporter, WithNames("tcp4")))
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrDuplicateProvider)
	})
	t.Run("with an invalid reference", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		catalog := NewCatalog()
		contract, err := NewContract[Transporter]()
		require.NoError(t, err)
		require.NoError(t, catalog.RegisterContract(contract))

		err = catalog.Register(NewProvider[Transporter]("tcp transporter", newTCPTransporter))
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrInvalidExtensionName)
	})
	t.Run("with an invalid extension name", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		catalog := NewCatalog()
		contract, err := NewContract[Transporter]()
		require.NoError(t, err)
		require.NoError(t, catalog.RegisterContract(contract))

		err = catalog.Register(NewProvider[Transporter]("tcpTransporter", newTCPTransporter, WithNames("-tcp")))
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrInvalidExtensionName)
	})
	t.Run("with a name rebound by a later provider", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		catalog := NewCatalog()
		contract, err := NewContract[Transporter]()
		require.NoError(t, err)
		require.NoError(t, catalog.RegisterContract(contract))
		require.NoError(t, catalog.Register(NewProvider[Transporter]("tcpTransporter", newTCPTransporter)))
		require.NoError(t, catalog.Register(NewProvider[Transporter]("altTransporter", newTCPTransporter, WithNames("tcp"))))

		// both bindings are recorded; the overriding catalog source lets the
		// later one win during discovery
		assert.Equal(t, []Entry{
			{Name: "tcp", Ref: "tcpTransporter"},
			{Name: "tcp", Ref: "altTransporter"},
		}, catalog.entriesFor("Transporter"))
	})
}

func TestCatalogContracts(t *testing.T) {
	defer goleak.VerifyNone(t)
	catalog := NewCatalog()
	transporter, err := NewContract[Transporter]()
	require.NoError(t, err)
	codec, err := NewContract[Codec]()
	require.NoError(t, err)
	require.NoError(t, catalog.RegisterContract(transporter))
	require.NoError(t, catalog.RegisterContract(codec))

	contracts := catalog.Contracts()
	names := make([]string, 0, len(contracts))
	for _, contract := range contracts {
		names = append(names, contract.Name())
	}
	assert.Equal(t, []string{"Codec", "Injector", "Transporter"}, names)
}

func TestCatalogRecordBinding(t *testing.T) {
	defer goleak.VerifyNone(t)
	catalog := NewCatalog()
	contract, err := NewContract[Transporter]()
	require.NoError(t, err)
	require.NoError(t, catalog.RegisterContract(contract))
	require.NoError(t, catalog.Register(NewProvider[Transporter]("tcpTransporter", newTCPTransporter)))

	catalog.recordBinding("Transporter", "tcp4", "tcpTransporter")
	catalog.recordBinding("Transporter", "tcp4", "tcpTransporter")
	catalog.recordBinding("Transporter", "tcp", "tcpTransporter")

	assert.Equal(t, []Entry{
		{Name: "tcp", Ref: "tcpTransporter"},
		{Name: "tcp4", Ref: "tcpTransporter"},
	}, catalog.entriesFor("Transporter"))
}
