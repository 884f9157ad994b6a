// Package seed fills an empty database with sample headlines.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/headline/internal/graph"
	"github.com/emrgen/headline/internal/model"
	"github.com/emrgen/headline/internal/store"
	"github.com/sirupsen/logrus"
)

const DefaultCount = 30

var words = []string{
	"river", "signal", "paper", "vinyl", "archive", "network", "quiet", "north",
	"garden", "engine", "letter", "harbor", "winter", "copper", "echo", "atlas",
}

// links are forward refs by position in creation order, 1-based.
var links = map[int][]int{
	1: {2, 3},
	2: {4, 5},
}

// Seed creates count headlines with random categories, then links the first
// few of them. Everything runs in one transaction.
func Seed(ctx context.Context, s store.Store, count int, rnd *rand.Rand) ([]*model.Headline, error) {
	categories := model.Categories()

	headlines := make([]*model.Headline, 0, count)
	err := s.Transaction(ctx, func(tx store.Store) error {
		for i := 0; i < count; i++ {
			category := categories[rnd.IntN(len(categories))]
			description := sentence(rnd, 12)
			h := &model.Headline{
				Title:       title(rnd),
				Category:    &category,
				Description: &description,
			}
			if err := tx.CreateHeadline(ctx, h); err != nil {
				return err
			}
			headlines = append(headlines, h)
		}

		g := graph.New(tx)
		for origin, ends := range links {
			if origin > len(headlines) {
				continue
			}
			targets := mapset.NewSet[uint]()
			for _, end := range ends {
				if end <= len(headlines) {
					targets.Add(headlines[end-1].ID)
				}
			}
			if _, err := g.SyncForward(ctx, headlines[origin-1].ID, targets); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("seeded %d headlines", len(headlines))

	return headlines, nil
}

func title(rnd *rand.Rand) string {
	t := sentence(rnd, 2+rnd.IntN(4))
	if len(t) > model.MaxTitleLength {
		t = t[:model.MaxTitleLength]
	}
	return strings.TrimSuffix(t, ".")
}

func sentence(rnd *rand.Rand, n int) string {
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, words[rnd.IntN(len(words))])
	}
	s := strings.Join(parts, " ")
	return fmt.Sprintf("%s%s.", strings.ToUpper(s[:1]), s[1:])
}
