package log_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xeptore/spotdata/log"
)

func TestRedactString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", log.RedactString(""))
	assert.Equal(t, "***", log.RedactString("abc"))
	assert.Equal(t, "BQDk******", log.RedactString("BQDk123456"))
}
