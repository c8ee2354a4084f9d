package drawing

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DecodeAll decodes a set of comments concurrently. Results are returned in
// the order of texts. The first failure cancels the remaining decodes and
// is returned.
func DecodeAll(ctx context.Context, codec *Codec, texts []string) ([]LineList, error) {
	results := make([]LineList, len(texts))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, text := range texts {
		i, text := i, text
		group.Go(func() error {
			lines, err := codec.Decode(groupCtx, text)
			if err != nil {
				return err
			}
			results[i] = lines
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
