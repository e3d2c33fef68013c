// Package pkg holds the libraries behind pdftemplater, a visual editor model
// for PDF templates that compile through Typst.
//
// # Overview
//
// A template is a page grid of components, a set of variable declarations
// and some metadata. The packages are layered bottom-up:
//
//  1. [layout] - positions, the component tree and its grid/stack operations
//  2. [drop] - turning a pointer drop into a placement intent
//  3. [variables] - declarations, placeholder scanning and value maps
//  4. [typst] - deterministic Typst markup generation
//  5. [template] - stored template content and metadata
//  6. [editor] - the editing session that ties the above together
//
// Around that core sit the supporting packages: [client] for the template
// API, [preview] for debounced latest-wins compilation, [cache] for compiled
// PDFs, [snapshot] for the locally saved draft, [store] for the template
// repository served by internal/server, [config] and [render/outline].
//
// # Data Flow
//
//	editor session (layout + variables)
//	         ↓
//	    [typst] generator
//	         ↓
//	    [preview] (debounce, cache, compile API)
//	         ↓
//	    PDF bytes
//
// # Quick Start
//
//	s := editor.NewEmpty(editor.Options{})
//	s.Drop(layout.TypeText, drop.Canvas{At: layout.Absolute{Row: 0, Column: 0, Span: 12}})
//	src := s.Markup()
//
// [layout]: https://pkg.go.dev/github.com/nathanaelcunningham/typst-pdftemplater/pkg/layout
// [drop]: https://pkg.go.dev/github.com/nathanaelcunningham/typst-pdftemplater/pkg/drop
// [variables]: https://pkg.go.dev/github.com/nathanaelcunningham/typst-pdftemplater/pkg/variables
// [typst]: https://pkg.go.dev/github.com/nathanaelcunningham/typst-pdftemplater/pkg/typst
// [template]: https://pkg.go.dev/github.com/nathanaelcunningham/typst-pdftemplater/pkg/template
// [editor]: https://pkg.go.dev/github.com/nathanaelcunningham/typst-pdftemplater/pkg/editor
// [client]: https://pkg.go.dev/github.com/nathanaelcunningham/typst-pdftemplater/pkg/client
// [preview]: https://pkg.go.dev/github.com/nathanaelcunningham/typst-pdftemplater/pkg/preview
// [cache]: https://pkg.go.dev/github.com/nathanaelcunningham/typst-pdftemplater/pkg/cache
// [snapshot]: https://pkg.go.dev/github.com/nathanaelcunningham/typst-pdftemplater/pkg/snapshot
// [store]: https://pkg.go.dev/github.com/nathanaelcunningham/typst-pdftemplater/pkg/store
// [config]: https://pkg.go.dev/github.com/nathanaelcunningham/typst-pdftemplater/pkg/config
// [render/outline]: https://pkg.go.dev/github.com/nathanaelcunningham/typst-pdftemplater/pkg/render/outline
package pkg
