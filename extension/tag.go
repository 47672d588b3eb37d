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

// Tag specifies the scope level a contract's Loader lives at. A single Loader
// instance serves every scope node at or below the tagged level, so extensions
// constructed through it are shared across those nodes.
type Tag int

const (
	// TagFramework hosts the Loader on the root framework node. Extensions are
	// shared by every application and module under that framework.
	TagFramework Tag = iota
	// TagApplication hosts the Loader on the owning application node. Extensions
	// are shared by every module of that application.
	TagApplication
	// TagModule hosts the Loader on the module node itself.
	TagModule
	// TagSelf hosts a private Loader on whichever director the lookup reaches
	// first, without delegating to the parent chain.
	TagSelf
)

// String returns the string representation of the scope tag
func (t Tag) String() string {
	switch t {
	case TagFramework:
		return "framework"
	case TagApplication:
		return "application"
	case TagModule:
		return "module"
	case TagSelf:
		return "self"
	default:
		return "unknown"
	}
}
