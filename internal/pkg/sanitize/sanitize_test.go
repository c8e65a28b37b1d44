package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Thevara  ", "Thevara"},
		{"<b>Tom</b> & Jerry", "Tom & Jerry"},
		{"<script>alert(1)</script>hello", "hello"},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Text(tt.in), tt.in)
	}
}

func TestTextPtr(t *testing.T) {
	assert.Nil(t, TextPtr(nil))

	in := " <i>Kochi</i> "
	out := TextPtr(&in)
	assert.Equal(t, "Kochi", *out)
	assert.Equal(t, " <i>Kochi</i> ", in)
}
