package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	src := "class A(BaseModel):   \n    x: str\n\n\n\n\nclass B(BaseModel):\n    y: int"
	want := "class A(BaseModel):\n    x: str\n\n\nclass B(BaseModel):\n    y: int\n"
	assert.Equal(t, want, Normalize(src))
}

func TestNormalizeIdempotent(t *testing.T) {
	src := "a\n\n\n\nb   \n"
	once := Normalize(src)
	assert.Equal(t, once, Normalize(once))
}

func TestFormatWithoutExternalTool(t *testing.T) {
	tool := &Tool{}
	assert.False(t, tool.Available())

	out, err := tool.Format("x = 1   \n")
	assert.NoError(t, err)
	assert.Equal(t, "x = 1\n", out)
}
