package idgen_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/pkg/idgen"
)

func TestUUIDGenerator(t *testing.T) {
	id := idgen.NewUUID("").Generate()
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	prefixed := idgen.NewUUID("voter").Generate()
	assert.True(t, strings.HasPrefix(prefixed, "voter_"))
	assert.NotEqual(t, prefixed, idgen.NewUUID("voter").Generate())
}

func TestSequentialGenerator(t *testing.T) {
	g := idgen.NewSequential("roll")
	assert.Equal(t, "roll_1", g.Generate())
	assert.Equal(t, "roll_2", g.Generate())
	assert.Equal(t, "1", idgen.NewSequential("").Generate())
}
