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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	gerrors "github.com/gospi-io/gospi/errors"
)

func TestNewProvider(t *testing.T) {
	t.Run("with a derived name", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		provider := NewProvider[Transporter]("tcpTransporter", newTCPTransporter)
		assert.Equal(t, "tcpTransporter", provider.Ref())
		assert.Equal(t, []string{"tcp"}, provider.Names())
		assert.Equal(t, contractTypeOf[Transporter](), provider.ContractType())
		assert.False(t, provider.IsAdaptive())
		assert.False(t, provider.IsWrapper())
		assert.Zero(t, provider.Order())
		assert.Nil(t, provider.Activation())
	})
	t.Run("with a ref missing the contract suffix", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		provider := NewProvider[Transporter]("Gateway", newTCPTransporter)
		assert.Equal(t, []string{"gateway"}, provider.Names())
	})
	t.Run("with a ref equal to the contract name", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		provider := NewProvider[Transporter]("Transporter", newTCPTransporter)
		assert.Equal(t, []string{"transporter"}, provider.Names())
	})
	t.Run("with explicit names", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		provider := NewProvider[Transporter]("tcpTransporter", newTCPTransporter, WithNames("tcp", "tcp4"))
		assert.Equal(t, []string{"tcp", "tcp4"}, provider.Names())
	})
	t.Run("with options", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		activation := &Activation{Groups: []string{"client"}}
		provider := NewProvider[Transporter]("tcpTransporter", newTCPTransporter,
			WithAdaptive(),
			WithOrder(7),
			WithActivation(activation))
		assert.True(t, provider.IsAdaptive())
		assert.Equal(t, 7, provider.Order())
		assert.Same(t, activation, provider.Activation())
	})
}

func TestProviderConstruct(t *testing.T) {
	t.Run("with a healthy factory", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		provider := NewProvider[Transporter]("tcpTransporter", newTCPTransporter)
		instance, err := provider.construct()
		require.NoError(t, err)
		transporter, ok := instance.(Transporter)
		require.True(t, ok)
		assert.Equal(t, "tcp", transporter.Transport())
	})
	t.Run("with a nil factory result", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		provider := NewProvider[Transporter]("nilTransporter", func() Transporter { return nil })
		instance, err := provider.construct()
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrNilExtension)
		assert.Nil(t, instance)
	})
	t.Run("with a typed nil factory result", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		provider := NewProvider[Transporter]("nilTransporter", func() Transporter {
			var transporter *tcpTransporter
			return transporter
		})
		_, err := provider.construct()
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrNilExtension)
	})
}

func TestNewWrapper(t *testing.T) {
	t.Run("with defaults", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		provider := NewWrapper[Transporter]("loggingWrapper", labelWrapper("log"))
		assert.True(t, provider.IsWrapper())
		assert.False(t, provider.IsAdaptive())
		wrapped := provider.wrap(newTCPTransporter())
		transporter, ok := wrapped.(Transporter)
		require.True(t, ok)
		assert.Equal(t, "log(tcp)", transporter.Transport())
	})
	t.Run("with a wrap filter", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		provider := NewWrapper[Transporter]("loggingWrapper", labelWrapper("log"),
			WithWrapFilter([]string{"tcp"}, []string{"quic"}))
		assert.True(t, provider.accepts("tcp"))
		assert.False(t, provider.accepts("quic"))
		assert.False(t, provider.accepts("udp"))
	})
	t.Run("with an empty matches list", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		provider := NewWrapper[Transporter]("loggingWrapper", labelWrapper("log"),
			WithWrapFilter(nil, []string{"quic"}))
		assert.True(t, provider.accepts("tcp"))
		assert.True(t, provider.accepts("udp"))
		assert.False(t, provider.accepts("quic"))
	})
	t.Run("with no filter at all", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		provider := NewWrapper[Transporter]("loggingWrapper", labelWrapper("log"))
		assert.True(t, provider.accepts("tcp"))
		assert.True(t, provider.accepts("quic"))
	})
}

func TestDeriveName(t *testing.T) {
	assert.Equal(t, "tcp", deriveName("tcpTransporter", "Transporter"))
	assert.Equal(t, "gateway", deriveName("Gateway", "Transporter"))
	assert.Equal(t, "transporter", deriveName("Transporter", "Transporter"))
	assert.Equal(t, "tcptransporter", deriveName("tcpTransporter", ""))
}
