package gameid

import (
	"testing"
	"time"

	"github.com/lox/discardbot/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateValid(t *testing.T) {
	t.Parallel()
	for range 50 {
		id := Generate()
		require.NoError(t, Validate(id))
	}
}

func TestSeededGeneratorIsReproducible(t *testing.T) {
	t.Parallel()
	fixed := time.UnixMilli(1_700_000_000_000)
	a := NewGenerator(randutil.New(1))
	a.now = func() time.Time { return fixed }
	b := NewGenerator(randutil.New(1))
	b.now = func() time.Time { return fixed }

	assert.Equal(t, a.Generate(), b.Generate())
}

func TestIDsSortByTime(t *testing.T) {
	t.Parallel()
	g := NewGenerator(randutil.New(2))
	g.now = func() time.Time { return time.UnixMilli(1_000) }
	early := g.Generate()
	g.now = func() time.Time { return time.UnixMilli(2_000_000) }
	late := g.Generate()

	assert.Less(t, early, late)
}

func TestValidateRejects(t *testing.T) {
	t.Parallel()
	assert.Error(t, Validate("short"))
	assert.Error(t, Validate("0123456789abcdefghjkmnpqr!"))
	assert.Error(t, Validate("0123456789abcdefghjkmnpqri"))
}
