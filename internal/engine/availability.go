package engine

import (
	"context"
	"fmt"
)

// AvailabilityResolver computes, for one date, the subset of the population
// with zero commitments. It has no day-of-week awareness; weekend skipping
// belongs to the generation driver.
type AvailabilityResolver struct {
	commitments CommitmentDirectory
}

func NewAvailabilityResolver(commitments CommitmentDirectory) *AvailabilityResolver {
	return &AvailabilityResolver{commitments: commitments}
}

func (r *AvailabilityResolver) Resolve(ctx context.Context, date string, population []UserProfile) ([]UserProfile, error) {
	committed, err := r.commitments.CommittedUserIDs(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("commitments for %s: %w", date, err)
	}
	available := make([]UserProfile, 0, len(population))
	for _, u := range population {
		if _, busy := committed[u.ID]; busy {
			continue
		}
		available = append(available, u)
	}
	return available, nil
}
