package memory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go-autofill-backend/internal/domain"
	"go-autofill-backend/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// steppingClock returns a clock that advances one second per call.
func steppingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newUser(t *testing.T, store *memory.Store, username string) *domain.User {
	t.Helper()
	user := &domain.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hash",
		Name:     username,
	}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

func TestUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("Create assigns id and timestamp", func(t *testing.T) {
		store := memory.New()
		user := newUser(t, store, "alice")

		assert.NotEmpty(t, user.ID)
		assert.False(t, user.CreatedAt.IsZero())

		got, err := store.Users().GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("Lookup miss returns nil without error", func(t *testing.T) {
		store := memory.New()

		user, err := store.Users().GetByID(ctx, "missing")
		assert.NoError(t, err)
		assert.Nil(t, user)

		user, err = store.Users().GetByEmail(ctx, "nobody@example.com")
		assert.NoError(t, err)
		assert.Nil(t, user)

		profile, err := store.Profiles().GetByUserID(ctx, "missing")
		assert.NoError(t, err)
		assert.Nil(t, profile)
	})

	t.Run("Duplicate email is rejected and store is unchanged", func(t *testing.T) {
		store := memory.New()
		newUser(t, store, "alice")

		dup := &domain.User{Username: "alice2", Email: "alice@example.com", Name: "Other"}
		err := store.Users().Create(ctx, dup)

		assert.True(t, errors.Is(err, domain.ErrDuplicateKey))
		got, err := store.Users().GetByUsername(ctx, "alice2")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Duplicate username is rejected", func(t *testing.T) {
		store := memory.New()
		newUser(t, store, "alice")

		err := store.Users().Create(ctx, &domain.User{Username: "alice", Email: "other@example.com"})
		assert.ErrorIs(t, err, domain.ErrDuplicateKey)
	})

	t.Run("Update merges fields", func(t *testing.T) {
		store := memory.New()
		user := newUser(t, store, "alice")
		location := "Oslo"

		updated, err := store.Users().Update(ctx, user.ID, domain.UserPatch{Location: &location})
		require.NoError(t, err)
		assert.Equal(t, "alice", updated.Name)
		assert.Equal(t, "Oslo", *updated.Location)

		missing, err := store.Users().Update(ctx, "missing", domain.UserPatch{Location: &location})
		assert.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("Stored user keeps its own copies of optional fields", func(t *testing.T) {
		store := memory.New()
		phone := "+351 912 345 678"
		user := &domain.User{Username: "alice", Email: "alice@example.com", Name: "Alice", Phone: &phone}
		require.NoError(t, store.Users().Create(ctx, user))

		location := "Oslo"
		_, err := store.Users().Update(ctx, user.ID, domain.UserPatch{Location: &location})
		require.NoError(t, err)

		phone = "changed"
		location = "changed"
		got, err := store.Users().GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "+351 912 345 678", *got.Phone)
		assert.Equal(t, "Oslo", *got.Location)

		*got.Location = "mutated"
		again, err := store.Users().GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Oslo", *again.Location)
	})

	t.Run("Update to a taken email is rejected", func(t *testing.T) {
		store := memory.New()
		newUser(t, store, "alice")
		bob := newUser(t, store, "bob")
		email := "alice@example.com"

		_, err := store.Users().Update(ctx, bob.ID, domain.UserPatch{Email: &email})
		assert.ErrorIs(t, err, domain.ErrDuplicateKey)
	})

	t.Run("Concurrent creates with the same email admit one", func(t *testing.T) {
		store := memory.New()
		var wg sync.WaitGroup
		var mu sync.Mutex
		created := 0
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				err := store.Users().Create(ctx, &domain.User{Username: fmt.Sprintf("u%d", i), Email: "same@example.com"})
				if err == nil {
					mu.Lock()
					created++
					mu.Unlock()
				}
			}(i)
		}
		wg.Wait()
		assert.Equal(t, 1, created)
	})
}

func TestOneRecordPerUser(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	user := newUser(t, store, "alice")

	require.NoError(t, store.Profiles().Create(ctx, domain.NewDefaultProfile(user)))
	assert.ErrorIs(t, store.Profiles().Create(ctx, domain.NewDefaultProfile(user)), domain.ErrDuplicateKey)

	require.NoError(t, store.ExtensionSettings().Create(ctx, domain.NewDefaultExtensionSettings(user.ID)))
	assert.ErrorIs(t, store.ExtensionSettings().Create(ctx, domain.NewDefaultExtensionSettings(user.ID)), domain.ErrDuplicateKey)

	require.NoError(t, store.Statistics().Create(ctx, domain.NewEmptyStatistics(user.ID)))
	assert.ErrorIs(t, store.Statistics().Create(ctx, domain.NewEmptyStatistics(user.ID)), domain.ErrDuplicateKey)
}

func TestProfileUpdate(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	user := newUser(t, store, "alice")
	require.NoError(t, store.Profiles().Create(ctx, domain.NewDefaultProfile(user)))

	skills := []string{"Go"}
	updated, err := store.Profiles().Update(ctx, user.ID, domain.ProfilePatch{Skills: &skills})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, updated.Skills)
	assert.Equal(t, "alice", updated.PersonalInfo.Name)

	// Mutating the returned value must not leak into the store.
	updated.Skills[0] = "Rust"
	got, err := store.Profiles().GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, got.Skills)
}

func countDefaults(t *testing.T, store *memory.Store, userID string) int {
	t.Helper()
	resumes, err := store.Resumes().ListByUserID(context.Background(), userID)
	require.NoError(t, err)
	n := 0
	for _, r := range resumes {
		if r.IsDefault {
			n++
		}
	}
	return n
}

func TestResumeDefaultExclusivity(t *testing.T) {
	ctx := context.Background()

	t.Run("New default replaces the previous one", func(t *testing.T) {
		store := memory.New()
		user := newUser(t, store, "alice")

		a := &domain.Resume{UserID: user.ID, Filename: "a.pdf", FileContent: "QQ==", IsDefault: true}
		b := &domain.Resume{UserID: user.ID, Filename: "b.pdf", FileContent: "Qg==", IsDefault: true}
		require.NoError(t, store.Resumes().Create(ctx, a))
		require.NoError(t, store.Resumes().Create(ctx, b))

		def, err := store.Resumes().GetDefault(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, b.ID, def.ID)

		gotA, err := store.Resumes().GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.False(t, gotA.IsDefault)
		assert.Equal(t, 1, countDefaults(t, store, user.ID))
	})

	t.Run("Non-default create keeps the current default", func(t *testing.T) {
		store := memory.New()
		user := newUser(t, store, "alice")
		a := &domain.Resume{UserID: user.ID, Filename: "a.pdf", FileContent: "QQ==", IsDefault: true}
		require.NoError(t, store.Resumes().Create(ctx, a))
		require.NoError(t, store.Resumes().Create(ctx, &domain.Resume{UserID: user.ID, Filename: "b.pdf", FileContent: "Qg=="}))

		def, err := store.Resumes().GetDefault(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, a.ID, def.ID)
	})

	t.Run("Defaults are scoped per user", func(t *testing.T) {
		store := memory.New()
		alice := newUser(t, store, "alice")
		bob := newUser(t, store, "bob")
		require.NoError(t, store.Resumes().Create(ctx, &domain.Resume{UserID: alice.ID, Filename: "a.pdf", FileContent: "QQ==", IsDefault: true}))
		require.NoError(t, store.Resumes().Create(ctx, &domain.Resume{UserID: bob.ID, Filename: "b.pdf", FileContent: "Qg==", IsDefault: true}))

		assert.Equal(t, 1, countDefaults(t, store, alice.ID))
		assert.Equal(t, 1, countDefaults(t, store, bob.ID))
	})

	t.Run("SetDefault twice leaves exactly one default", func(t *testing.T) {
		store := memory.New()
		user := newUser(t, store, "alice")
		a := &domain.Resume{UserID: user.ID, Filename: "a.pdf", FileContent: "QQ==", IsDefault: true}
		b := &domain.Resume{UserID: user.ID, Filename: "b.pdf", FileContent: "Qg=="}
		require.NoError(t, store.Resumes().Create(ctx, a))
		require.NoError(t, store.Resumes().Create(ctx, b))

		for i := 0; i < 2; i++ {
			ok, err := store.Resumes().SetDefault(ctx, b.ID, user.ID)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, 1, countDefaults(t, store, user.ID))
		}
		def, err := store.Resumes().GetDefault(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, b.ID, def.ID)
	})

	t.Run("SetDefault rejects resumes owned by someone else", func(t *testing.T) {
		store := memory.New()
		alice := newUser(t, store, "alice")
		bob := newUser(t, store, "bob")
		a := &domain.Resume{UserID: alice.ID, Filename: "a.pdf", FileContent: "QQ==", IsDefault: true}
		require.NoError(t, store.Resumes().Create(ctx, a))

		ok, err := store.Resumes().SetDefault(ctx, a.ID, bob.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = store.Resumes().SetDefault(ctx, "missing", alice.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		gotA, _ := store.Resumes().GetByID(ctx, a.ID)
		assert.True(t, gotA.IsDefault)
	})

	t.Run("Deleting the default leaves none", func(t *testing.T) {
		store := memory.New()
		user := newUser(t, store, "alice")
		a := &domain.Resume{UserID: user.ID, Filename: "a.pdf", FileContent: "QQ==", IsDefault: true}
		require.NoError(t, store.Resumes().Create(ctx, a))
		require.NoError(t, store.Resumes().Create(ctx, &domain.Resume{UserID: user.ID, Filename: "b.pdf", FileContent: "Qg=="}))

		ok, err := store.Resumes().Delete(ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		def, err := store.Resumes().GetDefault(ctx, user.ID)
		require.NoError(t, err)
		assert.Nil(t, def)

		ok, err = store.Resumes().Delete(ctx, a.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Concurrent default switches keep at most one default", func(t *testing.T) {
		store := memory.New()
		user := newUser(t, store, "alice")
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				_ = store.Resumes().Create(ctx, &domain.Resume{UserID: user.ID, Filename: fmt.Sprintf("%d.pdf", i), FileContent: "QQ==", IsDefault: true})
			}(i)
			go func() {
				defer wg.Done()
				assert.LessOrEqual(t, countDefaults(t, store, user.ID), 1)
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, countDefaults(t, store, user.ID))
	})
}

func TestFormHistories(t *testing.T) {
	ctx := context.Background()
	store := memory.New(memory.WithClock(steppingClock()))
	user := newUser(t, store, "alice")

	var ids []string
	for _, site := range []string{"linkedin.com", "indeed.com", "greenhouse.io"} {
		h := &domain.FormHistory{
			UserID:    user.ID,
			Site:      site,
			Status:    domain.FormStatusSuccess,
			Timestamp: time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		require.NoError(t, store.FormHistories().Create(ctx, h))
		ids = append(ids, h.ID)
	}

	t.Run("Sorted newest first", func(t *testing.T) {
		all, err := store.FormHistories().ListByUserID(ctx, user.ID, 0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{all[0].ID, all[1].ID, all[2].ID})
		for i := 1; i < len(all); i++ {
			assert.True(t, all[i-1].Timestamp.After(all[i].Timestamp))
		}
	})

	t.Run("Caller timestamp is ignored", func(t *testing.T) {
		all, err := store.FormHistories().ListByUserID(ctx, user.ID, 0)
		require.NoError(t, err)
		for _, h := range all {
			assert.Equal(t, 2024, h.Timestamp.Year())
		}
	})

	t.Run("Limit returns the most recent", func(t *testing.T) {
		recent, err := store.FormHistories().ListByUserID(ctx, user.ID, 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, ids[2], recent[0].ID)
		assert.Equal(t, ids[1], recent[1].ID)
	})

	t.Run("Other users see nothing", func(t *testing.T) {
		none, err := store.FormHistories().ListByUserID(ctx, "someone-else", 0)
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestStatisticsApply(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing record is skipped", func(t *testing.T) {
		store := memory.New()
		called := false
		stats, err := store.Statistics().Apply(ctx, "missing", func(*domain.Statistics) { called = true })
		assert.NoError(t, err)
		assert.Nil(t, stats)
		assert.False(t, called)
	})

	t.Run("Concurrent outcomes are not lost", func(t *testing.T) {
		store := memory.New()
		user := newUser(t, store, "alice")
		require.NoError(t, store.Statistics().Create(ctx, domain.NewEmptyStatistics(user.ID)))

		var wg sync.WaitGroup
		for i := 0; i < 40; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Statistics().Apply(ctx, user.ID, func(s *domain.Statistics) {
					domain.RecordOutcome(s, domain.FormStatusSuccess)
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		stats, err := store.Statistics().GetByUserID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, 40, stats.ApplicationsFilled)
		assert.Equal(t, 40, stats.FormsDetected)
		assert.Equal(t, 200, stats.TimeSaved)
		assert.Equal(t, 100, stats.SuccessRate)
	})

	t.Run("Update merges patch", func(t *testing.T) {
		store := memory.New()
		user := newUser(t, store, "alice")
		require.NoError(t, store.Statistics().Create(ctx, domain.NewEmptyStatistics(user.ID)))

		timeSaved := 30
		stats, err := store.Statistics().Update(ctx, user.ID, domain.StatisticsPatch{TimeSaved: &timeSaved})
		require.NoError(t, err)
		assert.Equal(t, 30, stats.TimeSaved)
		assert.Len(t, stats.WeeklyStats.ApplicationsFilled, domain.WeeklyStatsBuckets)
	})
}
