// Package citation composes the CrossRef and OpenAlex adapters into the
// single Citation Adapter contract: try the primary source first, fall
// back to the secondary when the primary is missing or reports zero.
package citation

import (
	"context"
	"time"

	"primetime/providers"
)

// Composite tries primary before secondary, for both current count and
// yearly series.
type Composite struct {
	primary   providers.Citation
	secondary providers.Citation
}

// NewComposite builds a Composite over the given primary/secondary pair.
func NewComposite(primary, secondary providers.Citation) *Composite {
	return &Composite{primary: primary, secondary: secondary}
}

// CurrentCount implements providers.Citation.
func (c *Composite) CurrentCount(ctx context.Context, doi, pmid string) (string, int, time.Time, error) {
	source, count, observedOn, err := c.primary.CurrentCount(ctx, doi, pmid)
	if err == nil && count > 0 {
		return source, count, observedOn, nil
	}

	fallbackSource, fallbackCount, fallbackObserved, fallbackErr := c.secondary.CurrentCount(ctx, doi, pmid)
	if fallbackErr != nil {
		if err != nil {
			return source, 0, time.Time{}, err
		}
		return source, count, observedOn, nil
	}
	if fallbackCount > 0 {
		return fallbackSource, fallbackCount, fallbackObserved, nil
	}
	if err != nil {
		return fallbackSource, fallbackCount, fallbackObserved, nil
	}
	return source, count, observedOn, nil
}

// YearlyCounts implements providers.Citation.
func (c *Composite) YearlyCounts(ctx context.Context, doi, pmid string) ([]providers.YearlyCount, error) {
	series, err := c.primary.YearlyCounts(ctx, doi, pmid)
	if err == nil && len(series) > 0 {
		return series, nil
	}

	fallback, fallbackErr := c.secondary.YearlyCounts(ctx, doi, pmid)
	if fallbackErr != nil {
		if err != nil {
			return nil, err
		}
		return series, nil
	}
	return fallback, nil
}
