package memory

import (
	"context"
	"slices"
)

type imageReferenceRepository struct{ s *Store }

func (r *imageReferenceRepository) ImageInUse(_ context.Context, ref string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, rec := range r.s.data.tickets {
		if rec.value.Image != nil && *rec.value.Image == ref {
			return true, nil
		}
	}
	for _, rec := range r.s.data.news {
		if slices.Contains(rec.value.Images, ref) {
			return true, nil
		}
	}
	return false, nil
}
