package job

import (
	"context"
	"testing"
	"time"

	"github.com/maauso/sora-studio/internal/cache"
)

func TestMemoryRepository_Save(t *testing.T) {
	repo := NewMemoryRepository(0)
	ctx := context.Background()
	job := New("dalle_1_a", MediaImage)

	err := repo.Save(ctx, job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	saved, err := repo.FindByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.ID != job.ID {
		t.Errorf("expected ID %s, got %s", job.ID, saved.ID)
	}
}

func TestMemoryRepository_Save_Update(t *testing.T) {
	repo := NewMemoryRepository(0)
	ctx := context.Background()
	job := New("dalle_1_a", MediaImage)
	_ = repo.Save(ctx, job)

	_ = job.Succeed("https://example.com/img.png")
	_ = repo.Save(ctx, job)

	saved, _ := repo.FindByID(ctx, job.ID)
	if saved.Status != StatusSucceeded {
		t.Errorf("expected status %s, got %s", StatusSucceeded, saved.Status)
	}
	if saved.ResultURL != "https://example.com/img.png" {
		t.Errorf("unexpected result URL %q", saved.ResultURL)
	}
}

func TestMemoryRepository_FindByID_NotFound(t *testing.T) {
	repo := NewMemoryRepository(0)

	_, err := repo.FindByID(context.Background(), "nonexistent")
	if err != ErrJobNotFound {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestMemoryRepository_FindByID_ReturnsClone(t *testing.T) {
	repo := NewMemoryRepository(0)
	ctx := context.Background()
	job := New("dalle_1_a", MediaImage)
	_ = repo.Save(ctx, job)

	found, _ := repo.FindByID(ctx, job.ID)
	_ = found.Fail("mutated")

	original, _ := repo.FindByID(ctx, job.ID)
	if original.Status != StatusQueued {
		t.Error("modifying returned job status should not affect repository")
	}
}

func TestMemoryRepository_Expiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	clock := func() time.Time { return now }
	repo := NewMemoryRepository(time.Hour, cache.WithClock(clock))
	ctx := context.Background()
	_ = repo.Save(ctx, New("dalle_1_a", MediaImage))

	now = now.Add(time.Hour)

	if _, err := repo.FindByID(ctx, "dalle_1_a"); err != ErrJobNotFound {
		t.Errorf("expected expired job to be gone, got %v", err)
	}
	if n := repo.Sweep(); n != 1 {
		t.Errorf("expected 1 swept job, got %d", n)
	}
}

func TestMemoryRepository_Delete(t *testing.T) {
	repo := NewMemoryRepository(0)
	ctx := context.Background()
	_ = repo.Save(ctx, New("dalle_1_a", MediaImage))

	if err := repo.Delete(ctx, "dalle_1_a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Delete(ctx, "dalle_1_a"); err != ErrJobNotFound {
		t.Errorf("expected ErrJobNotFound on second delete, got %v", err)
	}
}
