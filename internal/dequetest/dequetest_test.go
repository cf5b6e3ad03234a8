package dequetest

import (
	"testing"

	"github.com/lucasgdosr/segdeque"
	"github.com/stretchr/testify/require"
)

func TestRunDeterministic(t *testing.T) {
	cfg := Config[int]{
		Seed:    42,
		Ops:     500,
		Options: segdeque.Options{BlockSize: 3},
		Gen:     Ints,
		MaxLen:  100,
	}
	a, err := Run(cfg)
	require.NoError(t, err)
	b, err := Run(cfg)
	require.NoError(t, err)
	require.Equal(t, a, b)

	total := 0
	for _, n := range a.Counts {
		total += n
	}
	require.Equal(t, cfg.Ops, total)
	require.LessOrEqual(t, a.Len, cfg.MaxLen+2*cfg.Options.BlockSize+4)
}

func TestRunStrings(t *testing.T) {
	res, err := Run(Config[string]{
		Seed:    7,
		Ops:     500,
		Options: segdeque.Options{BlockSize: 1, MapSize: 1},
		Gen:     Strings,
	})
	require.NoError(t, err)
	require.Equal(t, res.Cap, res.Blocks)
}

func TestDiff(t *testing.T) {
	require.Empty(t, diff([]int{1, 2}, []int{1, 2}))
	require.NotEmpty(t, diff([]int{1, 2}, []int{1, 3}))
}
