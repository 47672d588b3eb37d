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
	"io/fs"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Source supplies name-to-reference bindings for contracts during discovery.
// Scope nodes hold an ordered source list; a loader scans the sources of its
// owning node in order.
type Source interface {
	// ID returns the stable source identity. Sources added to a scope are
	// deduplicated and removed by it.
	ID() string
	// Load returns the bindings the source holds for the given contract.
	Load(contract *Contract) ([]Entry, error)
	// Overriding reports whether bindings from this source may replace a name
	// already bound by an earlier source. Non-overriding duplicates poison the
	// name instead.
	Overriding() bool
}

// Entry binds an extension name to a provider reference. A blank name is
// derived from the reference the same way provider registration derives it.
type Entry struct {
	Name string
	Ref  string
}

// line returns the manifest form of the entry, used to key discovery failures.
func (e Entry) line() string {
	if e.Name == "" {
		return e.Ref
	}
	return e.Name + "=" + e.Ref
}

type sourceConfig struct {
	overriding bool
}

// SourceOption is the interface that applies a configuration option.
type SourceOption interface {
	// Apply sets the Option value of a config.
	Apply(config *sourceConfig)
}

// enforce compilation error
var _ SourceOption = SourceOptionFunc(nil)

// SourceOptionFunc implements the SourceOption interface.
type SourceOptionFunc func(*sourceConfig)

func (f SourceOptionFunc) Apply(config *sourceConfig) {
	f(config)
}

// WithOverride lets the source replace names already bound by earlier sources
// instead of poisoning them as duplicates.
func WithOverride() SourceOption {
	return SourceOptionFunc(func(config *sourceConfig) {
		config.overriding = true
	})
}

// ManifestSource serves bindings from in-memory manifest bodies keyed by
// contract name. A manifest holds one binding per line in `name=ref` form; a
// bare `ref` line binds under the name derived from the reference, `#` starts
// a comment and blank lines are ignored.
type ManifestSource struct {
	id         string
	overriding bool
	bodies     map[string]string
}

// enforce compilation error
var _ Source = (*ManifestSource)(nil)

// NewManifestSource creates a ManifestSource from contract-name keyed bodies.
func NewManifestSource(bodies map[string]string, opts ...SourceOption) *ManifestSource {
	config := new(sourceConfig)
	for _, opt := range opts {
		opt.Apply(config)
	}
	copied := make(map[string]string, len(bodies))
	for name, body := range bodies {
		copied[name] = body
	}
	return &ManifestSource{
		id:         "manifest/" + uuid.NewString(),
		overriding: config.overriding,
		bodies:     copied,
	}
}

// ID returns the stable source identity
func (s *ManifestSource) ID() string {
	return s.id
}

// Load returns the bindings the source holds for the given contract
func (s *ManifestSource) Load(contract *Contract) ([]Entry, error) {
	body, ok := s.bodies[contract.Name()]
	if !ok {
		return nil, nil
	}
	return parseManifest(body), nil
}

// Overriding reports whether bindings from this source replace earlier ones
func (s *ManifestSource) Overriding() bool {
	return s.overriding
}

// FSSource serves bindings from a file system directory holding one manifest
// file per contract name, in the same format ManifestSource parses. A missing
// file yields no bindings.
type FSSource struct {
	id         string
	overriding bool
	fsys       fs.FS
	dir        string
}

// enforce compilation error
var _ Source = (*FSSource)(nil)

// NewFSSource creates an FSSource rooted at dir inside fsys.
func NewFSSource(fsys fs.FS, dir string, opts ...SourceOption) *FSSource {
	config := new(sourceConfig)
	for _, opt := range opts {
		opt.Apply(config)
	}
	return &FSSource{
		id:         "fs/" + uuid.NewString(),
		overriding: config.overriding,
		fsys:       fsys,
		dir:        dir,
	}
}

// ID returns the stable source identity
func (s *FSSource) ID() string {
	return s.id
}

// Load returns the bindings the source holds for the given contract
func (s *FSSource) Load(contract *Contract) ([]Entry, error) {
	name := contract.Name()
	if s.dir != "" {
		name = path.Join(s.dir, name)
	}
	body, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return parseManifest(string(body)), nil
}

// Overriding reports whether bindings from this source replace earlier ones
func (s *FSSource) Overriding() bool {
	return s.overriding
}

// parseManifest parses a manifest body into binding entries. Malformed lines
// are kept as-is so that discovery can record a failure per line.
func parseManifest(body string) []Entry {
	var entries []Entry
	for _, line := range strings.Split(body, "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		entry := Entry{Ref: line}
		if i := strings.IndexByte(line, '='); i >= 0 {
			entry.Name = strings.TrimSpace(line[:i])
			entry.Ref = strings.TrimSpace(line[i+1:])
		}
		entries = append(entries, entry)
	}
	return entries
}
