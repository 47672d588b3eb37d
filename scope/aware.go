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
	"reflect"

	"github.com/gospi-io/gospi/extension"
)

// FrameworkAware extensions receive the framework node owning the scope tree
// they were constructed in. The setter is delivered by the scope post
// processor after injection and is excluded from setter injection itself.
type FrameworkAware interface {
	SetFramework(framework *Framework)
}

// ApplicationAware extensions receive the application node they were
// constructed under, if any. Extensions built for a framework hosted loader
// never see the callback.
type ApplicationAware interface {
	SetApplication(application *Application)
}

// ModuleAware extensions receive the module node they were constructed under,
// if any.
type ModuleAware interface {
	SetModule(module *Module)
}

var (
	frameworkAwareType   = reflect.TypeOf((*FrameworkAware)(nil)).Elem()
	applicationAwareType = reflect.TypeOf((*ApplicationAware)(nil)).Elem()
	moduleAwareType      = reflect.TypeOf((*ModuleAware)(nil)).Elem()
)

// awareProcessor delivers the owning scope node to extension instances after
// injection. One processor is registered per node director at construction,
// carrying the node slice of the tree the instance belongs to.
type awareProcessor struct {
	model       Node
	framework   *Framework
	application *Application
	module      *Module
}

var _ extension.PostProcessor = (*awareProcessor)(nil)

// newAwareProcessor resolves the framework, application and module views of
// the given node once, at registration time.
func newAwareProcessor(model Node) *awareProcessor {
	processor := &awareProcessor{model: model}
	switch owner := model.(type) {
	case *Framework:
		processor.framework = owner
	case *Application:
		processor.application = owner
		processor.framework = owner.framework
	case *Module:
		processor.module = owner
		processor.application = owner.application
		processor.framework = owner.application.framework
	}
	return processor
}

// BeforeInjection leaves the instance untouched.
func (p *awareProcessor) BeforeInjection(instance any, _ string) (any, error) {
	return instance, nil
}

// AfterInjection hands the instance every view of the scope tree it asks for.
func (p *awareProcessor) AfterInjection(instance any, _ string) (any, error) {
	if aware, ok := instance.(extension.ScopeModelAware); ok {
		aware.SetScopeModel(p.model)
	}
	if aware, ok := instance.(FrameworkAware); ok && p.framework != nil {
		aware.SetFramework(p.framework)
	}
	if aware, ok := instance.(ApplicationAware); ok && p.application != nil {
		aware.SetApplication(p.application)
	}
	if aware, ok := instance.(ModuleAware); ok && p.module != nil {
		aware.SetModule(p.module)
	}
	return instance, nil
}
