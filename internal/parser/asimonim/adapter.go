// Package asimonim loads design token files through the asimonim parser and
// turns them into @Var templates.
package asimonim

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	asimonimParser "bennypowers.dev/asimonim/parser"
	asimonimSchema "bennypowers.dev/asimonim/schema"
	"bennypowers.dev/asimonim/validator"
	"bennypowers.dev/chtl/internal/ast"
	"bennypowers.dev/chtl/internal/log"
	"bennypowers.dev/chtl/internal/parser/chtl"
	"bennypowers.dev/chtl/internal/parser/common"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Token is a design token reduced to what a Var template needs
type Token struct {
	// Name is the hyphenated token path, e.g. "color-primary"
	Name  string
	Value string
}

// IsTokenFile reports whether the path has a token file extension
func IsTokenFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc", ".yaml", ".yml":
		return true
	}
	return false
}

// Load parses token file content. JSON may contain comments; YAML is
// converted to JSON first.
func Load(path string, data []byte) ([]Token, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	case ".yaml", ".yml":
		converted, err := yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse YAML tokens from %s: %w", path, err)
		}
		data = converted
	}

	parser := asimonimParser.NewJSONParser()
	parsed, err := parser.Parse(data, asimonimParser.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse tokens from %s: %w", path, err)
	}

	version := asimonimSchema.Draft
	for _, t := range parsed {
		if t.SchemaVersion != asimonimSchema.Unknown {
			version = t.SchemaVersion
			break
		}
	}
	for _, ve := range validator.ValidateConsistencyWithPath(data, version, path) {
		log.Warn("Schema validation: %s", ve.Error())
	}

	tokens := make([]Token, 0, len(parsed))
	for _, t := range parsed {
		tokens = append(tokens, Token{Name: t.Name, Value: t.Value})
	}
	log.Debug("Loaded %d tokens from %s", len(tokens), path)
	return tokens, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return json.Marshal(raw)
}

// ToTemplate builds a Var template whose keys are the token names. Values are
// parsed as style values; {group.token} aliases become accesses into the
// same template so they resolve through the usual variable lookup.
func ToTemplate(name string, tokens []Token, pos ast.Pos) *ast.Template {
	tmpl := &ast.Template{Pos: pos, Name: name, Type: ast.VarTemplate}
	for _, t := range tokens {
		tmpl.Properties = append(tmpl.Properties, &ast.StyleProperty{
			Pos:   pos,
			Key:   t.Name,
			Value: tokenValue(name, t.Value, pos),
		})
	}
	return tmpl
}

func tokenValue(group, value string, pos ast.Pos) ast.Expr {
	if ref, ok := common.WholeReference(value); ok {
		return &ast.VarAccess{Pos: pos, Group: group, Key: ref.TokenName()}
	}
	if len(common.ExtractReferences(value)) == 0 {
		return literalValue(value, pos)
	}

	seq := &ast.Sequence{Pos: pos}
	for _, part := range strings.Fields(value) {
		if ref, ok := common.WholeReference(part); ok {
			seq.Items = append(seq.Items, &ast.VarAccess{Pos: pos, Group: group, Key: ref.TokenName()})
			continue
		}
		seq.Items = append(seq.Items, literalValue(part, pos))
	}
	return seq
}

func literalValue(value string, pos ast.Pos) ast.Expr {
	if expr, err := chtl.ParseValue(pos.File, value); err == nil {
		return expr
	}
	return &ast.Literal{Pos: pos, Type: ast.LitIdent, Value: value}
}
