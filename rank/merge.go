package rank

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// MergeAll merges any number of compatible digests into the first one using
// a pairwise parallel reduction and returns it. Every digest must share
// range, compression factor and hashing configuration.
//
// MergeAll assumes exclusive access to all operands for its duration; the
// survivors of each round are merged concurrently, so no digest may be
// added to or queried while the reduction runs.
func MergeAll(ctx context.Context, digests ...*QuantileDigest) (*QuantileDigest, error) {
	if len(digests) == 0 {
		return nil, &ConfigError{Param: "digests", Reason: "at least one digest is required"}
	}

	round := digests
	for len(round) > 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next := make([]*QuantileDigest, 0, (len(round)+1)/2)
		g, _ := errgroup.WithContext(ctx)

		for i := 0; i+1 < len(round); i += 2 {
			dst, src := round[i], round[i+1]
			next = append(next, dst)
			g.Go(func() error {
				return dst.Merge(src)
			})
		}
		if len(round)%2 == 1 {
			next = append(next, round[len(round)-1])
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
		round = next
	}

	return round[0], nil
}
