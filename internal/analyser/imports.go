package analyser

import (
	"strings"

	"bennypowers.dev/chtl/internal/ast"
	"bennypowers.dev/chtl/internal/compileerr"
	"bennypowers.dev/chtl/internal/importer"
	"bennypowers.dev/chtl/internal/log"
	"bennypowers.dev/chtl/internal/parser"
	"bennypowers.dev/chtl/internal/parser/chtl"
)

// resolveImport replaces an [Import] with what it names: the resolved
// top-level content of a markup file, a raw origin, or nothing for named
// origins and token files, which only register symbols.
func (a *analyser) resolveImport(imp *ast.Import, ctx context) ([]ast.Node, error) {
	a.pending.Remove(imp)

	unit, err := a.importer.Resolve(ctx.file, imp)
	if err != nil {
		return nil, err
	}

	switch {
	case unit.Program != nil:
		if ctx.files.Has(unit.Path) {
			chain := append(append([]string{}, ctx.fileChain...), unit.Path)
			return nil, compileerr.NewCircularImportError(unit.Path, chain, imp.Pos)
		}
		return a.inlineProgram(unit, imp, ctx)

	case unit.Vars != nil:
		id, err := a.table.Insert(ctx.scope, unit.Vars)
		if err != nil {
			return nil, err
		}
		log.Debug("Registered %d tokens from %s as @Var %s", len(unit.Vars.Properties), unit.Path, unit.Vars.Name)
		return nil, a.resolveTemplate(id, imp.Pos)

	case unit.Origin != nil:
		o := unit.Origin
		a.registerRaw(o)
		if o.Name != "" {
			return nil, a.table.InsertOrigin(o)
		}
		return []ast.Node{o}, nil
	}
	return nil, nil
}

// inlineProgram analyses an imported markup unit and returns its resolved
// top-level children. Definitions land under the alias namespace, if any,
// relative to the import site's scope, and are registered once per scope.
func (a *analyser) inlineProgram(unit *importer.Unit, imp *ast.Import, ctx context) ([]ast.Node, error) {
	scope := ctx.scope.Push(imp.Alias)
	key := unit.Path + "\x00" + scope.String()

	children, loaded := a.units[key]
	if loaded {
		log.Debug("Reusing %s in %s, already collected into %s", unit.Path, ctx.file, scope)
	} else {
		log.Debug("Inlining %s into %s", unit.Path, ctx.file)
		var err error
		children, err = a.collect(unit.Program.Children, scope)
		if err != nil {
			return nil, err
		}
		if err := a.sweep(); err != nil {
			return nil, err
		}
		a.units[key] = children
	}

	inner := ctx
	inner.file = unit.Path
	inner.scope = scope
	inner.files = ctx.files.With(unit.Path)
	inner.fileChain = append(append([]string{}, ctx.fileChain...), unit.Path)

	if err := checkTemplateConstraints(unit.Path, unit.Program.Except, children); err != nil {
		return nil, err
	}
	resolved, err := a.resolveNodes(children, inner)
	if err != nil {
		return nil, err
	}
	if err := checkConstraints(unit.Path, unit.Program.Except, resolved); err != nil {
		return nil, err
	}
	return resolved, nil
}

// resolveOrigin registers named origin blocks and splices referenced ones.
// It returns nil for nothing to emit.
func (a *analyser) resolveOrigin(o *ast.Origin) (*ast.Origin, error) {
	if o.Ref {
		registered, ok := a.table.LookupOrigin(o.Raw, o.Name)
		if !ok {
			return nil, compileerr.NewUnknownOriginError(o.Raw, o.Name, o.Pos)
		}
		return &ast.Origin{Pos: o.Pos, Raw: o.Raw, Name: o.Name, Content: registered.Content}, nil
	}
	if o.Name != "" {
		if err := a.table.InsertOrigin(o); err != nil {
			return nil, err
		}
	}
	a.registerRaw(o)
	return o, nil
}

// registerRaw records the simple selectors declared by raw Style or Html
// content and reports syntax problems in raw JavaScript. Extraction failures
// are logged; raw content is emitted verbatim either way.
func (a *analyser) registerRaw(o *ast.Origin) {
	if o.Raw == ast.RawJavaScript {
		problems, err := parser.CheckScript(o.Content)
		if err != nil {
			log.Warn("Failed to check script at %s: %v", o.Pos, err)
			return
		}
		for _, p := range problems {
			log.Warn("%s: JavaScript syntax error at %d:%d near %q", o.Pos, p.Line+1, p.Column+1, p.Text)
		}
		return
	}

	selectors, err := parser.ExtractSelectors(o.Raw, o.Content)
	if err != nil {
		log.Warn("Failed to extract selectors at %s: %v", o.Pos, err)
		return
	}
	for _, s := range selectors {
		if !parser.IsSimpleSelector(s.Selector) {
			continue
		}
		pos := o.Pos
		pos.Line += int(s.Line)
		props := make([]*ast.StyleProperty, 0, len(s.Declarations))
		for _, d := range s.Declarations {
			props = append(props, &ast.StyleProperty{Pos: pos, Key: d.Property, Value: rawValue(pos, d.Value)})
		}
		a.table.InsertSelector(s.Selector, props, pos)
	}
}

// rawValue parses a declaration value from raw CSS, keeping it verbatim
// when it is not in the value grammar
func rawValue(pos ast.Pos, value string) ast.Expr {
	value = strings.TrimSpace(value)
	if expr, err := chtl.ParseValue(pos.File, value); err == nil {
		return expr
	}
	return &ast.Literal{Pos: pos, Type: ast.LitIdent, Value: value}
}
