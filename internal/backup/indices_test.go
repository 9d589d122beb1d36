package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIndices(t *testing.T) {
	cases := []struct {
		expr string
		want []int
	}{
		{"1-3", []int{1, 2, 3}},
		{"1;2;4", []int{1, 2, 4}},
		{"2", []int{2}},
		{" 1 , 3 ", []int{1, 3}},
		{"1;x;5", []int{1, 5}},
		{"3-1", nil},
		{"a-b", nil},
		{"", nil},
		{"1-2;5", []int{1, 2, 5}},
	}

	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseIndices(tc.expr))
		})
	}
}
