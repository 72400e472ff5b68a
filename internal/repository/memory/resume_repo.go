package memory

import (
	"context"
	"sort"

	"go-autofill-backend/internal/domain"
)

type resumeRepo struct {
	s *Store
}

func (r *resumeRepo) ListByUserID(ctx context.Context, userID string) ([]domain.Resume, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]*resumeRow, 0)
	for _, row := range r.s.resumes {
		if row.resume.UserID == userID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })

	resumes := make([]domain.Resume, 0, len(rows))
	for _, row := range rows {
		resumes = append(resumes, row.resume)
	}
	return resumes, nil
}

func (r *resumeRepo) GetByID(ctx context.Context, id string) (*domain.Resume, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if row, ok := r.s.resumes[id]; ok {
		resume := row.resume
		return &resume, nil
	}
	return nil, nil
}

func (r *resumeRepo) GetDefault(ctx context.Context, userID string) (*domain.Resume, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, row := range r.s.resumes {
		if row.resume.UserID == userID && row.resume.IsDefault {
			resume := row.resume
			return &resume, nil
		}
	}
	return nil, nil
}

func (r *resumeRepo) Create(ctx context.Context, resume *domain.Resume) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if resume.IsDefault {
		r.clearDefaultLocked(resume.UserID)
	}
	resume.ID = r.s.newID()
	resume.CreatedAt = r.s.now()
	r.s.resumes[resume.ID] = &resumeRow{resume: *resume, seq: r.s.nextSeq()}
	return nil
}

// Delete does not promote another resume when the default is removed.
func (r *resumeRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.resumes[id]; !ok {
		return false, nil
	}
	delete(r.s.resumes, id)
	return true, nil
}

func (r *resumeRepo) SetDefault(ctx context.Context, id, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	target, ok := r.s.resumes[id]
	if !ok || target.resume.UserID != userID {
		return false, nil
	}
	r.clearDefaultLocked(userID)
	target.resume.IsDefault = true
	return true, nil
}

func (r *resumeRepo) clearDefaultLocked(userID string) {
	for _, row := range r.s.resumes {
		if row.resume.UserID == userID {
			row.resume.IsDefault = false
		}
	}
}
