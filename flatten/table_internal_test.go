package flatten

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableAddRejectsWrongArity(t *testing.T) {
	t.Parallel()

	table := newTable("x", []string{"a", "b"})
	assert.Panics(t, func() { table.add(Text("only-one")) })
	assert.NotPanics(t, func() { table.add(Text("1"), Null()) })
	assert.Equal(t, [][]string{{"a", "b"}, {"1", ""}}, table.Records())
}
