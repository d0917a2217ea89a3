package job

import (
	"context"
	"time"

	"github.com/maauso/sora-studio/internal/cache"
)

// Compile-time check that MemoryRepository implements Repository.
var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository is an in-memory implementation of Repository backed by a
// TTL cache. Entries disappear after ttl, or with the process.
type MemoryRepository struct {
	jobs *cache.TTL[*Job]
}

// NewMemoryRepository creates a new in-memory job repository.
// A ttl of zero keeps jobs for the lifetime of the process.
func NewMemoryRepository(ttl time.Duration, opts ...cache.Option) *MemoryRepository {
	return &MemoryRepository{
		jobs: cache.New[*Job](ttl, opts...),
	}
}

// Save persists a clone of the job.
func (r *MemoryRepository) Save(_ context.Context, job *Job) error {
	r.jobs.Set(job.ID, job.Clone())
	return nil
}

// FindByID retrieves a clone of the job with the given id.
func (r *MemoryRepository) FindByID(_ context.Context, id string) (*Job, error) {
	job, ok := r.jobs.Get(id)
	if !ok {
		return nil, ErrJobNotFound
	}
	return job.Clone(), nil
}

// Delete removes a job from storage.
func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	if !r.jobs.Delete(id) {
		return ErrJobNotFound
	}
	return nil
}

// Sweep evicts expired jobs and returns how many were removed.
func (r *MemoryRepository) Sweep() int {
	return r.jobs.Sweep()
}

// Run evicts expired jobs every interval until ctx is done.
func (r *MemoryRepository) Run(ctx context.Context, interval time.Duration) {
	r.jobs.Run(ctx, interval)
}
