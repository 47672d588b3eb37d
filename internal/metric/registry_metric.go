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

package metric

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// RegistryMetric defines the extension registry instrumentation
type RegistryMetric struct {
	// Specifies the total number of extension instances constructed
	createdCount metric.Int64Counter
	// Specifies the total number of wrapper decorations applied
	wrappedCount metric.Int64Counter
	// Specifies the total number of discovery failures recorded
	discoveryFailureCount metric.Int64Counter
	// Specifies the total number of adaptive dispatches performed
	dispatchCount metric.Int64Counter
	// Specifies the total number of activation selections computed
	activationCount metric.Int64Counter
}

// NewRegistryMetric creates an instance of RegistryMetric
func NewRegistryMetric(meter metric.Meter) (*RegistryMetric, error) {
	// create an instance of RegistryMetric
	registryMetric := new(RegistryMetric)
	var err error
	// set the created count instrument
	if registryMetric.createdCount, err = meter.Int64Counter(
		"extension_created_count",
		metric.WithDescription("Total number of extension instances constructed"),
	); err != nil {
		return nil, fmt.Errorf("failed to create createdCount instrument, %w", err)
	}
	// set the wrapped count instrument
	if registryMetric.wrappedCount, err = meter.Int64Counter(
		"extension_wrapped_count",
		metric.WithDescription("Total number of wrapper decorations applied"),
	); err != nil {
		return nil, fmt.Errorf("failed to create wrappedCount instrument, %w", err)
	}
	// set the discovery failure count instrument
	if registryMetric.discoveryFailureCount, err = meter.Int64Counter(
		"extension_discovery_failure_count",
		metric.WithDescription("Total number of discovery failures recorded"),
	); err != nil {
		return nil, fmt.Errorf("failed to create discoveryFailureCount instrument, %w", err)
	}
	// set the dispatch count instrument
	if registryMetric.dispatchCount, err = meter.Int64Counter(
		"extension_dispatch_count",
		metric.WithDescription("Total number of adaptive dispatches performed"),
	); err != nil {
		return nil, fmt.Errorf("failed to create dispatchCount instrument, %w", err)
	}
	// set the activation count instrument
	if registryMetric.activationCount, err = meter.Int64Counter(
		"extension_activation_count",
		metric.WithDescription("Total number of activation selections computed"),
	); err != nil {
		return nil, fmt.Errorf("failed to create activationCount instrument, %w", err)
	}

	return registryMetric, nil
}

// CreatedCount returns the total number of extension instances constructed
func (x *RegistryMetric) CreatedCount() metric.Int64Counter {
	return x.createdCount
}

// WrappedCount returns the total number of wrapper decorations applied
func (x *RegistryMetric) WrappedCount() metric.Int64Counter {
	return x.wrappedCount
}

// DiscoveryFailureCount returns the total number of discovery failures recorded
func (x *RegistryMetric) DiscoveryFailureCount() metric.Int64Counter {
	return x.discoveryFailureCount
}

// DispatchCount returns the total number of adaptive dispatches performed
func (x *RegistryMetric) DispatchCount() metric.Int64Counter {
	return x.dispatchCount
}

// ActivationCount returns the total number of activation selections computed
func (x *RegistryMetric) ActivationCount() metric.Int64Counter {
	return x.activationCount
}
