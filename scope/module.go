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
	"github.com/gospi-io/gospi/extension"
)

// Module is the leaf tier of a scope tree, the usual home of caller facing
// lookups. Module scoped contracts host their loader here; everything else
// delegates up to the application or framework.
type Module struct {
	node
	application *Application
}

var (
	_ Node                 = (*Module)(nil)
	_ extension.ScopeModel = (*Module)(nil)
)

// Application returns the application owning the module.
func (m *Module) Application() *Application {
	return m.application
}

// Framework returns the framework root owning the module's application.
func (m *Module) Framework() *Framework {
	return m.application.framework
}

// Description returns the module display string, "Module[1.1.1](app/name)"
// style. An unnamed module renders without the name path.
func (m *Module) Description() string {
	name := m.Name()
	if name == "" {
		return "Module[" + m.internalID + "]"
	}
	return "Module[" + m.internalID + "](" + displayName(m.application) + "/" + name + ")"
}

// teardown deregisters the module, queues its destroy listeners and prunes
// the application when it held no other user module.
func (m *Module) teardown(pending *[]func()) error {
	m.application.releaseModule(m)
	m.queueListeners(pending)
	return m.application.tryDestroyLocked(pending)
}

// Destroy tears down the module. It is idempotent; destroying the last user
// module of an application destroys the application, and in turn an otherwise
// empty framework.
func (m *Module) Destroy() error {
	return m.application.framework.destroyTree(&m.node)
}
