package common_test

import (
	"testing"

	"bennypowers.dev/chtl/internal/parser/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractReferences(t *testing.T) {
	t.Run("no references", func(t *testing.T) {
		assert.Empty(t, common.ExtractReferences("#ff0000"))
	})

	t.Run("multiple references", func(t *testing.T) {
		refs := common.ExtractReferences("{size.border} solid {color.primary}")
		require.Len(t, refs, 2)
		assert.Equal(t, "size.border", refs[0].Path)
		assert.Equal(t, 0, refs[0].Start)
		assert.Equal(t, 13, refs[0].End)
		assert.Equal(t, "color-primary", refs[1].TokenName())
	})
}

func TestWholeReference(t *testing.T) {
	ref, ok := common.WholeReference(" {color.base} ")
	require.True(t, ok)
	assert.Equal(t, "color-base", ref.TokenName())

	_, ok = common.WholeReference("1px {color.base}")
	assert.False(t, ok)
}

func TestTokenName(t *testing.T) {
	assert.Equal(t, "space-small-2", common.TokenName("space.small.2"))
	assert.Equal(t, "plain", common.TokenName("plain"))
}
