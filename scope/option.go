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

package scope

import (
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/gospi-io/gospi/extension"
	"github.com/gospi-io/gospi/log"
)

// nodeConfig collects the configurable parts of a scope node constructor.
type nodeConfig struct {
	name    string
	logger  log.Logger
	catalog *extension.Catalog
	meter   otelmetric.Meter
	sources []extension.Source
}

// newNodeConfig applies the options over the given defaults.
func newNodeConfig(logger log.Logger, opts ...Option) *nodeConfig {
	config := &nodeConfig{logger: logger}
	for _, opt := range opts {
		opt.Apply(config)
	}
	return config
}

// Option is the interface that applies a configuration option to a scope node
// constructor.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(config *nodeConfig)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(config *nodeConfig)

func (f OptionFunc) Apply(config *nodeConfig) {
	f(config)
}

// WithName sets the node name used by Description.
func WithName(name string) Option {
	return OptionFunc(func(config *nodeConfig) {
		config.name = name
	})
}

// WithLogger sets the node logger. Applications and modules inherit their
// parent's logger unless overridden.
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(config *nodeConfig) {
		config.logger = logger
	})
}

// WithCatalog hands an existing contract catalog to NewFramework. It is
// ignored by NewApplication and NewModule, which always share the framework
// catalog.
func WithCatalog(catalog *extension.Catalog) Option {
	return OptionFunc(func(config *nodeConfig) {
		config.catalog = catalog
	})
}

// WithMeter enables extension registry metrics on the framework director
// using the given meter. Honored by NewFramework only; child directors
// inherit the instruments.
func WithMeter(meter otelmetric.Meter) Option {
	return OptionFunc(func(config *nodeConfig) {
		config.meter = meter
	})
}

// WithSources appends discovery sources to the node at construction time,
// before scope initializers run.
func WithSources(sources ...extension.Source) Option {
	return OptionFunc(func(config *nodeConfig) {
		config.sources = append(config.sources, sources...)
	})
}
