package specification_test

import (
	"testing"

	"github.com/narwhalmedia/episodes/internal/domain/specification"
	"github.com/stretchr/testify/assert"
)

type greaterThan int

func (g greaterThan) IsSatisfiedBy(candidate any) bool {
	n, ok := candidate.(int)
	return ok && n > int(g)
}

func (g greaterThan) ToSQL() (string, []any) {
	return "n > ?", []any{int(g)}
}

func TestAnd(t *testing.T) {
	spec := specification.And(greaterThan(1), greaterThan(5))

	assert.True(t, spec.IsSatisfiedBy(6))
	assert.False(t, spec.IsSatisfiedBy(3))

	sql, params := spec.ToSQL()
	assert.Equal(t, "(n > ? AND n > ?)", sql)
	assert.Equal(t, []any{1, 5}, params)
}

func TestOr(t *testing.T) {
	spec := specification.Or(greaterThan(10), specification.Not(greaterThan(2)))

	assert.True(t, spec.IsSatisfiedBy(1))
	assert.True(t, spec.IsSatisfiedBy(11))
	assert.False(t, spec.IsSatisfiedBy(5))

	sql, params := spec.ToSQL()
	assert.Equal(t, "(n > ? OR NOT (n > ?))", sql)
	assert.Equal(t, []any{10, 2}, params)
}

func TestEmptyJunctions(t *testing.T) {
	all := specification.All()
	assert.True(t, all.IsSatisfiedBy("anything"))
	sql, params := all.ToSQL()
	assert.Equal(t, "1 = 1", sql)
	assert.Empty(t, params)

	none := specification.Or()
	assert.False(t, none.IsSatisfiedBy(1))
	sql, _ = none.ToSQL()
	assert.Equal(t, "1 = 0", sql)
}

func TestSingleSpecIsNotParenthesized(t *testing.T) {
	sql, _ := specification.And(greaterThan(3)).ToSQL()
	assert.Equal(t, "n > ?", sql)
}
