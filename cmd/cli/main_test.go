package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitFlag(t *testing.T) {
	tests := []struct {
		args []string
		want int
	}{
		{nil, 0},
		{[]string{"--limit", "0"}, 1},
		{[]string{"--limit", "-4"}, 1},
		{[]string{"--limit", "3"}, 3},
	}
	for _, tt := range tests {
		cmd := newPlotCmd()
		require.NoError(t, cmd.ParseFlags(tt.args))
		limit, err := cmd.Flags().GetInt("limit")
		require.NoError(t, err)
		assert.Equal(t, tt.want, limitFlag(cmd, limit), "%v", tt.args)
	}
}
