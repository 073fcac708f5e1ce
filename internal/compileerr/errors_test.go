package compileerr_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"bennypowers.dev/chtl/internal/ast"
	"bennypowers.dev/chtl/internal/compileerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var here = ast.Pos{File: "page.chtl", Line: 3, Column: 5}

func TestSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"parse", compileerr.NewParseError(here, "unexpected %s", "'}'"), compileerr.ErrParse},
		{"redefinition", compileerr.NewRedefinitionError("Box", here, ast.Pos{}), compileerr.ErrRedefinition},
		{"unknown template", compileerr.NewUnknownTemplateError(ast.StyleTemplate, "Box", "ui", here), compileerr.ErrUnknownTemplate},
		{"unknown selector", compileerr.NewUnknownSelectorError("#box", here), compileerr.ErrUnknownSelector},
		{"unknown origin", compileerr.NewUnknownOriginError(ast.RawStyle, "Theme", here), compileerr.ErrUnknownOrigin},
		{"unknown property", compileerr.NewUnknownPropertyError("#box", "width", here), compileerr.ErrUnknownProperty},
		{"missing placeholder", compileerr.NewMissingPlaceholderValueError("Text", "color", here), compileerr.ErrMissingPlaceholderValue},
		{"circular inheritance", compileerr.NewCircularInheritanceError("A", []string{"A", "B", "A"}, here), compileerr.ErrCircularInheritance},
		{"circular import", compileerr.NewCircularImportError("/a.chtl", nil, here), compileerr.ErrCircularImport},
		{"circular reference", compileerr.NewCircularReferenceError([]string{"#a.width", "#b.width", "#a.width"}, here), compileerr.ErrCircularReference},
		{"file not found", compileerr.NewFileNotFoundError("/lib.chtl", "/page.chtl", here), compileerr.ErrFileNotFound},
		{"constraint", compileerr.NewConstraintViolationError("div", "span", here), compileerr.ErrConstraintViolation},
		{"specialization target", compileerr.NewSpecializationTargetError("Box", "div[3]", here), compileerr.ErrSpecializationTarget},
		{"evaluation", compileerr.NewEvaluationError("1px + 1em", "incompatible units", here), compileerr.ErrEvaluation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.ErrorIs(t, fmt.Errorf("compiling: %w", tt.err), tt.sentinel, "survives wrapping")
			assert.Contains(t, tt.err.Error(), "page.chtl:3:5: ")
			msg := strings.TrimPrefix(tt.err.Error(), "page.chtl:3:5: ")
			assert.Equal(t, strings.ToLower(msg[:1]), msg[:1], "message starts lower-case")

			pos, ok := compileerr.Position(fmt.Errorf("wrapped: %w", tt.err))
			require.True(t, ok)
			assert.Equal(t, here, pos)

			for _, other := range tests {
				if other.sentinel != tt.sentinel {
					assert.NotErrorIs(t, tt.err, other.sentinel)
				}
			}
		})
	}
}

func TestMessages(t *testing.T) {
	t.Run("redefinition names the previous site", func(t *testing.T) {
		err := compileerr.NewRedefinitionError("Box", here, ast.Pos{File: "lib.chtl", Line: 1, Column: 1})
		assert.Contains(t, err.Error(), "previous definition at lib.chtl:1:1")
	})

	t.Run("unknown template mentions the namespace", func(t *testing.T) {
		err := compileerr.NewUnknownTemplateError(ast.ElementTemplate, "Card", "ui::forms", here)
		assert.Contains(t, err.Error(), "Card from ui::forms")
		assert.Contains(t, err.Error(), "Suggestion:")
	})

	t.Run("cycle chains", func(t *testing.T) {
		err := compileerr.NewCircularInheritanceError("A", []string{"A", "B", "A"}, ast.Pos{})
		assert.Contains(t, err.Error(), "A → B → A")
		var cycle *compileerr.CircularInheritanceError
		require.True(t, errors.As(err, &cycle))
		assert.Equal(t, "A", cycle.Name)
	})

	t.Run("errors without a position", func(t *testing.T) {
		err := compileerr.NewEvaluationError("x / 0", "division by zero", ast.Pos{})
		assert.Equal(t, "cannot evaluate 'x / 0': division by zero", err.Error())
		_, ok := compileerr.Position(err)
		assert.False(t, ok)
		_, ok = compileerr.Position(errors.New("plain"))
		assert.False(t, ok)
	})
}
