package segdeque_test

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/lucasgdosr/segdeque"
	"github.com/lucasgdosr/segdeque/internal/dequetest"
	"github.com/stretchr/testify/require"
)

func TestRandomOps(t *testing.T) {
	seed := time.Now().UnixNano()
	t.Logf("seed: %d", seed)
	rng := rand.New(rand.NewSource(seed))

	for _, bs := range []int{1, 2, 3, 5, 16, 64} {
		t.Run(fmt.Sprintf("block-size=%d", bs), func(t *testing.T) {
			opts := segdeque.Options{BlockSize: bs, MapSize: 1 + rng.Intn(8)}
			t.Run("int", func(t *testing.T) {
				res, err := dequetest.Run(dequetest.Config[int]{
					Seed:    rng.Int63(),
					Ops:     2000,
					Options: opts,
					Gen:     dequetest.Ints,
					MaxLen:  512,
				})
				require.NoError(t, err)
				require.Equal(t, 2000, res.Ops)
			})
			t.Run("string", func(t *testing.T) {
				_, err := dequetest.Run(dequetest.Config[string]{
					Seed:    rng.Int63(),
					Ops:     2000,
					Options: opts,
					Gen:     dequetest.Strings,
					MaxLen:  512,
				})
				require.NoError(t, err)
			})
		})
	}
}

func TestRandomOpsInvalidOptions(t *testing.T) {
	_, err := dequetest.Run(dequetest.Config[int]{
		Ops:     10,
		Options: segdeque.Options{BlockSize: -1},
		Gen:     dequetest.Ints,
	})
	require.ErrorIs(t, err, segdeque.ErrInvalidOptions)
}
