package mathutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xeptore/spotdata/mathutil"
)

func TestCeilDiv(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, mathutil.CeilDiv(0, 50))
	assert.Equal(t, 1, mathutil.CeilDiv(1, 50))
	assert.Equal(t, 1, mathutil.CeilDiv(50, 50))
	assert.Equal(t, 2, mathutil.CeilDiv(51, 50))
	assert.Equal(t, 3, mathutil.CeilDiv(101, 50))
	assert.Equal(t, -1, mathutil.CeilDiv(-51, 50))
	assert.Equal(t, 2, mathutil.CeilDiv(-51, -50))
	assert.Equal(t, uint(3), mathutil.CeilDiv(uint(121), uint(50)))
}
