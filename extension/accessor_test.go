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

// swapProcessor replaces one named instance with a value of an unrelated
// type, which lets the typed access helpers trip over the mismatch.
type swapProcessor struct{}

func (p *swapProcessor) BeforeInjection(instance any, _ string) (any, error) {
	return instance, nil
}

func (p *swapProcessor) AfterInjection(instance any, name string) (any, error) {
	if name == "quic" {
		return &jsonCodec{}, nil
	}
	return instance, nil
}

func TestTypedGet(t *testing.T) {
	t.Run("with a bound name", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		transporterLoader(t, tree)

		transporter, err := Get[Transporter](tree.module, "tcp")
		require.NoError(t, err)
		assert.Equal(t, "tcp", transporter.Transport())
	})
	t.Run("with an unregistered contract", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()

		_, err := Get[Transporter](tree.module, "tcp")
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrContractNotRegistered)

		_, err = LoaderOf[Transporter](tree.module)
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrContractNotRegistered)
	})
	t.Run("with a swapped instance of the wrong type", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		registerTransporterContract(t, tree.catalog)
		require.NoError(t, tree.catalog.Register(NewProvider[Transporter]("tcpTransporter", newTCPTransporter)))
		require.NoError(t, tree.catalog.Register(NewProvider[Transporter]("quicTransporter", newQUICTransporter)))

		// the swapping processor must join before the loader snapshots
		tree.application.director.RegisterProcessor(&swapProcessor{})

		_, err := Get[Transporter](tree.module, "quic")
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrTypeMismatch)

		// untouched names stay typed
		transporter, err := Get[Transporter](tree.module, "tcp")
		require.NoError(t, err)
		assert.Equal(t, "tcp", transporter.Transport())
	})
}

func TestTypedDefault(t *testing.T) {
	t.Run("with a declared default", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		transporterLoader(t, tree, WithDefaultName("quic"))

		transporter, err := Default[Transporter](tree.module)
		require.NoError(t, err)
		assert.Equal(t, "quic", transporter.Transport())
	})
	t.Run("with no declared default", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		transporterLoader(t, tree)

		_, err := Default[Transporter](tree.module)
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrNoDefault)
	})
}

func TestTypedActivated(t *testing.T) {
	defer goleak.VerifyNone(t)
	tree := newTestTree()
	registerFilterContract(t, tree)
	registerFilter(t, tree.catalog, "ext1Filter", "ext1", nil)
	registerFilter(t, tree.catalog, "ext2Filter", "ext2", nil)

	filters, err := Activated[Filter](tree.module, nil, []string{"ext1", "ext2"}, "")
	require.NoError(t, err)
	require.Len(t, filters, 2)
	assert.Equal(t, "ping|ext1", filters[0].Invoke("ping"))
	assert.Equal(t, "ping|ext2", filters[1].Invoke("ping"))
}
