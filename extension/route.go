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
	"sort"
	"strings"
)

// RouteContext supplies the values adaptive dispatch and activation matching
// read. Both probe Parameter first and fall back to MethodParameter when the
// plain parameter is blank.
type RouteContext interface {
	// Parameter returns the value bound to the key, empty when absent.
	Parameter(key string) string

	// MethodParameter returns the value bound to the key under any method
	// scope, empty when absent.
	MethodParameter(key string) string
}

// Params is a map-backed RouteContext. Method-scoped entries use the
// "<method>.<key>" form.
type Params map[string]string

// enforce compilation error
var _ RouteContext = (Params)(nil)

// Parameter returns the value bound to the key, empty when absent.
func (p Params) Parameter(key string) string {
	return p[key]
}

// MethodParameter scans the method-scoped entries for the key. Methods are
// probed in sorted order so the result is deterministic.
func (p Params) MethodParameter(key string) string {
	suffix := "." + key
	keys := make([]string, 0, len(p))
	for k := range p {
		if strings.HasSuffix(k, suffix) && p[k] != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	return p[keys[0]]
}
