// Package picker selects random items from a pool without replacement.
// Every item in the pool is one equally weighted ticket, so a key that owns
// more items is proportionally more likely to be picked.
package picker

import (
	"crypto/rand"
	"errors"
	"math/big"
	mrand "math/rand/v2"
)

// ErrEmptyRange is returned when a source is asked for an index in an empty range.
var ErrEmptyRange = errors.New("picker: n must be > 0")

// Source supplies uniformly distributed indexes in [0, n).
type Source interface {
	Intn(n int) (int, error)
}

// CryptoSource draws from crypto/rand.
type CryptoSource struct{}

// Intn returns a uniform index in [0, n) from the system CSPRNG.
func (CryptoSource) Intn(n int) (int, error) {
	if n <= 0 {
		return 0, ErrEmptyRange
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

type seededSource struct {
	r *mrand.Rand
}

// NewSeededSource returns a deterministic Source. Use it in tests only.
func NewSeededSource(seed uint64) Source {
	return &seededSource{r: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededSource) Intn(n int) (int, error) {
	if n <= 0 {
		return 0, ErrEmptyRange
	}
	return s.r.IntN(n), nil
}

// Draw picks up to k items from pool uniformly at random without replacement.
//
// After each pick every remaining item sharing the picked item's key is
// dropped, so a key wins at most once per call. A nil key only removes the
// picked item itself. When the pool runs out fewer than k items are returned.
// The input slice is not modified.
func Draw[T any](src Source, pool []T, k int, key func(T) string) ([]T, error) {
	if k <= 0 || len(pool) == 0 {
		return nil, nil
	}

	remaining := make([]T, len(pool))
	copy(remaining, pool)

	picked := make([]T, 0, min(k, len(pool)))
	for len(picked) < k && len(remaining) > 0 {
		i, err := src.Intn(len(remaining))
		if err != nil {
			return nil, err
		}
		choice := remaining[i]
		picked = append(picked, choice)

		if key == nil {
			remaining = append(remaining[:i], remaining[i+1:]...)
			continue
		}
		k0 := key(choice)
		kept := remaining[:0]
		for _, item := range remaining {
			if key(item) != k0 {
				kept = append(kept, item)
			}
		}
		remaining = kept
	}
	return picked, nil
}

// DrawOne picks a single item, reporting false when the pool is empty.
func DrawOne[T any](src Source, pool []T) (T, bool, error) {
	var zero T
	got, err := Draw(src, pool, 1, nil)
	if err != nil || len(got) == 0 {
		return zero, false, err
	}
	return got[0], true, nil
}
