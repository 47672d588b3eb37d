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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	gerrors "github.com/gospi-io/gospi/errors"
)

func TestLoaderGet(t *testing.T) {
	t.Run("with a bound name", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree)

		instance, err := loader.Get("tcp")
		require.NoError(t, err)
		transporter, ok := instance.(Transporter)
		require.True(t, ok)
		assert.Equal(t, "tcp", transporter.Transport())
	})
	t.Run("with a cached singleton", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree)

		first, err := loader.Get("tcp")
		require.NoError(t, err)
		second, err := loader.Get("tcp")
		require.NoError(t, err)
		require.Same(t, first, second)
	})
	t.Run("with the default alias", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree, WithDefaultName("tcp"))

		aliased, err := loader.Get(DefaultAlias)
		require.NoError(t, err)
		named, err := loader.Get("tcp")
		require.NoError(t, err)
		require.Same(t, named, aliased)
	})
	t.Run("with the default alias and no default declared", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree)

		_, err := loader.Get(DefaultAlias)
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrNoDefault)
	})
	t.Run("with a blank name", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree)

		_, err := loader.Get("")
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrExtensionNameRequired)
	})
	t.Run("with an unknown name", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree)

		_, err := loader.Get("udp")
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrExtensionNotFound)
	})
	t.Run("with aliases sharing the raw instance", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		registerTransporterContract(t, tree.catalog)
		constructed := atomic.NewInt32(0)
		factory := func() Transporter {
			constructed.Inc()
			return &tcpTransporter{}
		}
		require.NoError(t, tree.catalog.Register(NewProvider[Transporter]("cntTransporter", factory, WithNames("cnt", "cnt4"))))
		loader, err := LoaderOf[Transporter](tree.module)
		require.NoError(t, err)

		first, err := loader.Get("cnt")
		require.NoError(t, err)
		second, err := loader.Get("cnt4")
		require.NoError(t, err)
		require.Same(t, first, second)
		assert.Equal(t, int32(1), constructed.Load())
	})
	t.Run("with a failing factory retried", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		registerTransporterContract(t, tree.catalog)
		calls := atomic.NewInt32(0)
		factory := func() Transporter {
			if calls.Inc() == 1 {
				return nil
			}
			return &tcpTransporter{}
		}
		require.NoError(t, tree.catalog.Register(NewProvider[Transporter]("flakyTransporter", factory, WithNames("flaky"))))
		loader, err := LoaderOf[Transporter](tree.module)
		require.NoError(t, err)

		_, err = loader.Get("flaky")
		require.Error(t, err)
		var constructionErr *gerrors.ConstructionError
		require.ErrorAs(t, err, &constructionErr)
		assert.Equal(t, "Transporter", constructionErr.Contract())
		assert.Equal(t, "flaky", constructionErr.Name())
		assert.ErrorIs(t, err, gerrors.ErrNilExtension)

		instance, err := loader.Get("flaky")
		require.NoError(t, err)
		require.NotNil(t, instance)
		assert.Equal(t, int32(2), calls.Load())
	})
	t.Run("with a destroyed loader", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree)
		require.NoError(t, loader.Destroy())

		_, err := loader.Get("tcp")
		assert.ErrorIs(t, err, gerrors.ErrLoaderDestroyed)
		_, err = loader.GetRaw("tcp")
		assert.ErrorIs(t, err, gerrors.ErrLoaderDestroyed)
		_, err = loader.Default()
		assert.ErrorIs(t, err, gerrors.ErrLoaderDestroyed)
		assert.False(t, loader.Has("tcp"))
		assert.Nil(t, loader.Names())
		assert.True(t, loader.IsDestroyed())
	})
}

func TestLoaderDefaults(t *testing.T) {
	t.Run("with a declared default", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree, WithDefaultName("quic"))

		assert.Equal(t, "quic", loader.DefaultName())
		instance, err := loader.Default()
		require.NoError(t, err)
		transporter, ok := instance.(Transporter)
		require.True(t, ok)
		assert.Equal(t, "quic", transporter.Transport())
	})
	t.Run("with no declared default", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree)

		assert.Empty(t, loader.DefaultName())
		_, err := loader.Default()
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrNoDefault)
	})
	t.Run("with a supported name passed to GetOrDefault", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree, WithDefaultName("tcp"))

		instance, err := loader.GetOrDefault("quic")
		require.NoError(t, err)
		assert.Equal(t, "quic", instance.(Transporter).Transport())
	})
	t.Run("with an unsupported name passed to GetOrDefault", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree, WithDefaultName("tcp"))

		instance, err := loader.GetOrDefault("udp")
		require.NoError(t, err)
		assert.Equal(t, "tcp", instance.(Transporter).Transport())

		instance, err = loader.GetOrDefault("")
		require.NoError(t, err)
		assert.Equal(t, "tcp", instance.(Transporter).Transport())
	})
}

func TestLoaderDuplicateName(t *testing.T) {
	defer goleak.VerifyNone(t)
	tree := newTestTree()
	registerTransporterContract(t, tree.catalog)
	require.NoError(t, tree.catalog.Register(NewProvider[Transporter]("tcpTransporter", newTCPTransporter)))
	require.NoError(t, tree.catalog.Register(NewProvider[Transporter]("altTransporter", labelFactory("alt"), WithNames("alt"))))

	// a non-overriding source claiming an already bound name poisons it
	tree.application.addSource(NewManifestSource(map[string]string{
		"Transporter": "tcp=altTransporter",
	}))

	loader, err := LoaderOf[Transporter](tree.module)
	require.NoError(t, err)

	assert.True(t, loader.Has("tcp"))
	_, err = loader.Get("tcp")
	require.Error(t, err)
	assert.ErrorIs(t, err, gerrors.ErrDuplicateExtension)
	assert.ErrorContains(t, err, "tcpTransporter")
	assert.ErrorContains(t, err, "altTransporter")

	// the poisoning is deterministic
	_, again := loader.Get("tcp")
	assert.ErrorIs(t, again, gerrors.ErrDuplicateExtension)

	// the other binding of the same provider still resolves
	instance, err := loader.Get("alt")
	require.NoError(t, err)
	assert.Equal(t, "alt", instance.(Transporter).Transport())
}

func TestLoaderOverridingSource(t *testing.T) {
	defer goleak.VerifyNone(t)
	tree := newTestTree()
	registerTransporterContract(t, tree.catalog)
	require.NoError(t, tree.catalog.Register(NewProvider[Transporter]("tcpTransporter", newTCPTransporter)))
	require.NoError(t, tree.catalog.Register(NewProvider[Transporter]("altTransporter", labelFactory("alt"), WithNames("alt"))))

	tree.application.addSource(NewManifestSource(map[string]string{
		"Transporter": "tcp=altTransporter",
	}, WithOverride()))

	loader, err := LoaderOf[Transporter](tree.module)
	require.NoError(t, err)

	instance, err := loader.Get("tcp")
	require.NoError(t, err)
	assert.Equal(t, "alt", instance.(Transporter).Transport())
}

func TestLoaderDiscoveryFailures(t *testing.T) {
	t.Run("with an entry referencing an unknown provider", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree)

		tree.application.addSource(NewManifestSource(map[string]string{
			"Transporter": "ghost=ghostTransporter",
		}))

		_, err := loader.Get("ghost")
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrExtensionNotFound)
		assert.ErrorIs(t, err, gerrors.ErrProviderNotFound)
		assert.ErrorContains(t, err, "ghostTransporter")

		// healthy bindings are unaffected
		_, err = loader.Get("tcp")
		require.NoError(t, err)
	})
	t.Run("with a failing source", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree)

		errBroken := errors.New("broken pipe")
		tree.application.addSource(&failingSource{id: "broken/1", err: errBroken})

		_, err := loader.Get("udp")
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrExtensionNotFound)
		assert.ErrorIs(t, err, errBroken)

		_, err = loader.Get("tcp")
		require.NoError(t, err)
	})
}

func TestLoaderEviction(t *testing.T) {
	defer goleak.VerifyNone(t)
	tree := newTestTree()
	registerTransporterContract(t, tree.catalog)
	require.NoError(t, tree.catalog.Register(NewProvider[Transporter]("tcpTransporter", newTCPTransporter)))
	require.NoError(t, tree.catalog.Register(NewProvider[Transporter]("altTransporter", labelFactory("alt"))))
	loader, err := LoaderOf[Transporter](tree.module)
	require.NoError(t, err)

	before, err := loader.Get("tcp")
	require.NoError(t, err)
	assert.Equal(t, []string{"alt", "tcp"}, loader.Names())

	// a new source triggers an eviction and the next lookup re-scans
	tree.application.addSource(NewManifestSource(map[string]string{
		"Transporter": "alt2=altTransporter",
	}))

	instance, err := loader.Get("alt2")
	require.NoError(t, err)
	assert.Equal(t, "alt", instance.(Transporter).Transport())

	// constructed singletons survive the eviction
	after, err := loader.Get("tcp")
	require.NoError(t, err)
	require.Same(t, before, after)
}

func TestLoaderNames(t *testing.T) {
	defer goleak.VerifyNone(t)
	tree := newTestTree()
	loader := transporterLoader(t, tree)

	assert.Equal(t, []string{"quic", "tcp"}, loader.Names())
	assert.True(t, loader.Has("tcp"))
	assert.True(t, loader.Has("quic"))
	assert.False(t, loader.Has("udp"))
	assert.False(t, loader.Has(""))
}

func TestLoaderLoaded(t *testing.T) {
	t.Run("with a constructed instance", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree)

		assert.Empty(t, loader.LoadedNames())
		assert.Nil(t, loader.Loaded("tcp"))

		instance, err := loader.Get("tcp")
		require.NoError(t, err)

		assert.Equal(t, []string{"tcp"}, loader.LoadedNames())
		require.Same(t, instance, loader.Loaded("tcp"))
		assert.Nil(t, loader.Loaded("quic"))
	})
	t.Run("with a raw only construction", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree)

		_, err := loader.GetRaw("tcp")
		require.NoError(t, err)

		assert.Equal(t, []string{"tcp"}, loader.LoadedNames())
		assert.Nil(t, loader.Loaded("tcp"))
	})
}

func TestLoaderNameOf(t *testing.T) {
	defer goleak.VerifyNone(t)
	tree := newTestTree()
	loader := transporterLoader(t, tree)

	instance, err := loader.Get("tcp")
	require.NoError(t, err)
	assert.Equal(t, "tcp", loader.NameOf(instance))

	// an instance the loader never built has no name
	assert.Empty(t, loader.NameOf(&tcpTransporter{}))
	assert.Empty(t, loader.NameOf(nil))
}

func TestLoaderInstances(t *testing.T) {
	defer goleak.VerifyNone(t)
	tree := newTestTree()
	registerTransporterContract(t, tree.catalog)
	require.NoError(t, tree.catalog.Register(NewProvider[Transporter]("alphaTransporter", labelFactory("alpha"), WithNames("alpha"), WithOrder(2))))
	require.NoError(t, tree.catalog.Register(NewProvider[Transporter]("betaTransporter", labelFactory("beta"), WithNames("beta"), WithOrder(1))))
	require.NoError(t, tree.catalog.Register(NewProvider[Transporter]("acmeTransporter", labelFactory("acme"), WithNames("acme"), WithOrder(1))))
	loader, err := LoaderOf[Transporter](tree.module)
	require.NoError(t, err)

	instances, err := loader.Instances()
	require.NoError(t, err)
	labels := make([]string, 0, len(instances))
	for _, instance := range instances {
		labels = append(labels, instance.(Transporter).Transport())
	}
	// ascending order, ties broken by name
	assert.Equal(t, []string{"acme", "beta", "alpha"}, labels)
}

func TestLoaderWrappers(t *testing.T) {
	t.Run("with reverse priority stacking", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		registerTransporterContract(t, tree.catalog)
		require.NoError(t, tree.catalog.Register(NewProvider[Transporter]("tcpTransporter", newTCPTransporter)))
		require.NoError(t, tree.catalog.Register(NewWrapper[Transporter]("deepWrapper", labelWrapper("deep"), WithOrder(10))))
		require.NoError(t, tree.catalog.Register(NewWrapper[Transporter]("outerWrapper", labelWrapper("outer"), WithOrder(5))))
		loader, err := LoaderOf[Transporter](tree.module)
		require.NoError(t, err)

		instance, err := loader.Get("tcp")
		require.NoError(t, err)
		// the lowest order wrapper sits outermost
		assert.Equal(t, "outer(deep(tcp))", instance.(Transporter).Transport())

		outer, ok := instance.(*wrappedTransporter)
		require.True(t, ok)
		deep, ok := outer.next.(*wrappedTransporter)
		require.True(t, ok)

		raw, err := loader.GetRaw("tcp")
		require.NoError(t, err)
		require.Same(t, raw, deep.next)
		assert.Equal(t, "tcp", raw.(Transporter).Transport())
	})
	t.Run("with a wrap filter", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		registerTransporterContract(t, tree.catalog)
		require.NoError(t, tree.catalog.Register(NewProvider[Transporter]("tcpTransporter", newTCPTransporter)))
		require.NoError(t, tree.catalog.Register(NewProvider[Transporter]("quicTransporter", newQUICTransporter)))
		require.NoError(t, tree.catalog.Register(NewWrapper[Transporter]("logWrapper", labelWrapper("log"), WithWrapFilter([]string{"tcp"}, nil))))
		loader, err := LoaderOf[Transporter](tree.module)
		require.NoError(t, err)

		wrapped, err := loader.Get("tcp")
		require.NoError(t, err)
		assert.Equal(t, "log(tcp)", wrapped.(Transporter).Transport())

		plain, err := loader.Get("quic")
		require.NoError(t, err)
		assert.Equal(t, "quic", plain.(Transporter).Transport())
	})
	t.Run("with a wrapper producing nil", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		registerTransporterContract(t, tree.catalog)
		require.NoError(t, tree.catalog.Register(NewProvider[Transporter]("tcpTransporter", newTCPTransporter)))
		require.NoError(t, tree.catalog.Register(NewWrapper[Transporter]("nilWrapper", func(Transporter) Transporter { return nil })))
		loader, err := LoaderOf[Transporter](tree.module)
		require.NoError(t, err)

		_, err = loader.Get("tcp")
		require.Error(t, err)
		var constructionErr *gerrors.ConstructionError
		require.ErrorAs(t, err, &constructionErr)
		assert.ErrorIs(t, err, gerrors.ErrNilExtension)
		assert.ErrorContains(t, err, "nilWrapper")
	})
}

func TestLoaderInitialization(t *testing.T) {
	t.Run("with an initializable extension", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		registerTransporterContract(t, tree.catalog)
		require.NoError(t, tree.catalog.Register(NewProvider[Transporter]("bootTransporter", func() Transporter { return &bootTransporter{} })))
		loader, err := LoaderOf[Transporter](tree.module)
		require.NoError(t, err)

		instance, err := loader.Get("boot")
		require.NoError(t, err)
		boot, ok := instance.(*bootTransporter)
		require.True(t, ok)
		assert.True(t, boot.booted)
	})
	t.Run("with a failing initialization", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		registerTransporterContract(t, tree.catalog)
		errBoot := errors.New("boot sequence failed")
		require.NoError(t, tree.catalog.Register(NewProvider[Transporter]("bootTransporter", func() Transporter { return &bootTransporter{fail: errBoot} })))
		loader, err := LoaderOf[Transporter](tree.module)
		require.NoError(t, err)

		_, err = loader.Get("boot")
		require.Error(t, err)
		var constructionErr *gerrors.ConstructionError
		require.ErrorAs(t, err, &constructionErr)
		assert.ErrorIs(t, err, errBoot)
	})
}

func TestLoaderDestroy(t *testing.T) {
	defer goleak.VerifyNone(t)
	tree := newTestTree()
	registerTransporterContract(t, tree.catalog)
	closed := atomic.NewInt32(0)
	require.NoError(t, tree.catalog.Register(NewProvider[Transporter]("closableTransporter", func() Transporter {
		return &closableTransporter{closed: closed}
	})))
	loader, err := LoaderOf[Transporter](tree.module)
	require.NoError(t, err)

	wrapped, err := loader.Get("closable")
	require.NoError(t, err)
	raw, err := loader.GetRaw("closable")
	require.NoError(t, err)
	require.Same(t, wrapped, raw)

	// the shared instance is closed exactly once
	require.NoError(t, loader.Destroy())
	assert.Equal(t, int32(1), closed.Load())

	// destroy is idempotent
	require.NoError(t, loader.Destroy())
	assert.Equal(t, int32(1), closed.Load())
}

func TestLoaderConcurrentGet(t *testing.T) {
	defer goleak.VerifyNone(t)
	tree := newTestTree()
	registerTransporterContract(t, tree.catalog)
	constructed := atomic.NewInt32(0)
	factory := func() Transporter {
		constructed.Inc()
		return &tcpTransporter{}
	}
	require.NoError(t, tree.catalog.Register(NewProvider[Transporter]("cntTransporter", factory, WithNames("cnt"))))
	loader, err := LoaderOf[Transporter](tree.module)
	require.NoError(t, err)

	results := make([]any, 16)
	var eg errgroup.Group
	for i := 0; i < len(results); i++ {
		i := i
		eg.Go(func() error {
			instance, err := loader.Get("cnt")
			results[i] = instance
			return err
		})
	}
	require.NoError(t, eg.Wait())

	for i := 1; i < len(results); i++ {
		require.Same(t, results[0], results[i])
	}
	assert.Equal(t, int32(1), constructed.Load())
}

func TestLoaderAdd(t *testing.T) {
	t.Run("with a new name", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree)

		require.NoError(t, loader.Add("udp", NewProvider[Transporter]("udpTransporter", labelFactory("udp"))))
		instance, err := loader.Get("udp")
		require.NoError(t, err)
		assert.Equal(t, "udp", instance.(Transporter).Transport())

		// the runtime binding survives a discovery eviction
		tree.application.director.EvictDiscovery()
		instance, err = loader.Get("udp")
		require.NoError(t, err)
		assert.Equal(t, "udp", instance.(Transporter).Transport())
	})
	t.Run("with an already bound name", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree)

		err := loader.Add("tcp", NewProvider[Transporter]("otherTransporter", labelFactory("other")))
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrDuplicateExtension)
	})
	t.Run("with an invalid name", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree)

		err := loader.Add("bad name", NewProvider[Transporter]("otherTransporter", labelFactory("other")))
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrInvalidExtensionName)
	})
	t.Run("with a nil provider", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree)

		err := loader.Add("udp", nil)
		require.Error(t, err)
		assert.ErrorContains(t, err, "provider is required")
	})
	t.Run("with a mismatched contract", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree)

		err := loader.Add("json", NewProvider[Codec]("jsonCodec", func() Codec { return &jsonCodec{} }))
		require.Error(t, err)
		assert.ErrorContains(t, err, "does not match the loader contract")
	})
	t.Run("with a wrapper provider", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree)

		wrapper := NewWrapper[Transporter]("logWrapper", labelWrapper("log"))
		require.NoError(t, loader.Add("log", wrapper))

		instance, err := loader.Get("tcp")
		require.NoError(t, err)
		assert.Equal(t, "log(tcp)", instance.(Transporter).Transport())

		err = loader.Add("log2", NewWrapper[Transporter]("logWrapper", labelWrapper("log")))
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrDuplicateProvider)
	})
	t.Run("with an adaptive provider", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree)

		adaptive := NewProvider[Transporter]("routingTransporter", func() Transporter { return &routingTransporter{} }, WithAdaptive())
		require.NoError(t, loader.Add("routing", adaptive))

		instance, err := loader.Adaptive()
		require.NoError(t, err)
		_, ok := instance.(*routingTransporter)
		require.True(t, ok)

		err = loader.Add("routing2", NewProvider[Transporter]("otherRouter", func() Transporter { return &routingTransporter{} }, WithAdaptive()))
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrTooManyAdaptives)
	})
	t.Run("with a destroyed loader", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree)
		require.NoError(t, loader.Destroy())

		err := loader.Add("udp", NewProvider[Transporter]("udpTransporter", labelFactory("udp")))
		assert.ErrorIs(t, err, gerrors.ErrLoaderDestroyed)
	})
}

func TestLoaderReplace(t *testing.T) {
	t.Run("with a bound name", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree)

		before, err := loader.Get("tcp")
		require.NoError(t, err)

		require.NoError(t, loader.Replace("tcp", NewProvider[Transporter]("altTransporter", labelFactory("alt"))))

		after, err := loader.Get("tcp")
		require.NoError(t, err)
		require.NotSame(t, before, after)
		assert.Equal(t, "alt", after.(Transporter).Transport())

		// the rebind survives a discovery eviction
		tree.application.director.EvictDiscovery()
		again, err := loader.Get("tcp")
		require.NoError(t, err)
		assert.Equal(t, "alt", again.(Transporter).Transport())
	})
	t.Run("with an unbound name", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree)

		err := loader.Replace("udp", NewProvider[Transporter]("altTransporter", labelFactory("alt")))
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrExtensionNotFound)
	})
	t.Run("with a wrapper provider", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree)

		err := loader.Replace("tcp", NewWrapper[Transporter]("logWrapper", labelWrapper("log")))
		require.Error(t, err)
		assert.ErrorContains(t, err, "only plain providers")
	})
	t.Run("with an adaptive provider", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		loader := transporterLoader(t, tree)

		err := loader.Replace("tcp", NewProvider[Transporter]("routingTransporter", func() Transporter { return &routingTransporter{} }, WithAdaptive()))
		require.Error(t, err)
		assert.ErrorContains(t, err, "only plain providers")
	})
	t.Run("with a poisoned name", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		tree := newTestTree()
		registerTransporterContract(t, tree.catalog)
		require.NoError(t, tree.catalog.Register(NewProvider[Transporter]("tcpTransporter", newTCPTransporter)))
		require.NoError(t, tree.catalog.Register(NewProvider[Transporter]("altTransporter", labelFactory("alt"))))
		tree.application.addSource(NewManifestSource(map[string]string{
			"Transporter": "tcp=altTransporter",
		}))
		loader, err := LoaderOf[Transporter](tree.module)
		require.NoError(t, err)

		_, err = loader.Get("tcp")
		require.ErrorIs(t, err, gerrors.ErrDuplicateExtension)

		// an explicit rebind clears the poisoning
		require.NoError(t, loader.Replace("tcp", NewProvider[Transporter]("udpTransporter", labelFactory("udp"))))
		instance, err := loader.Get("tcp")
		require.NoError(t, err)
		assert.Equal(t, "udp", instance.(Transporter).Transport())
	})
}
