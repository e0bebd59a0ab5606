package fonts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByFamily(t *testing.T) {
	assert.NotNil(t, DefaultFont())
	assert.Same(t, DefaultFont(), ByFamily("go"))
	assert.Same(t, DefaultFont(), ByFamily("Arial"))
	assert.NotSame(t, DefaultFont(), ByFamily("Go Mono"))
}
