package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tour-service/internal/apperrors"
	"tour-service/internal/domain/entities"
	"tour-service/internal/domain/providers"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*entities.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*entities.User{}}
}

func cloneUser(u *entities.User) *entities.User {
	c := *u
	return &c
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, apperrors.NewDuplicateKeyError("This user/email already exists!", errors.New("E11000"))
		}
	}
	r.users[user.Id] = cloneUser(user)
	return user, nil
}

func (r *fakeUserRepo) FindById(ctx context.Context, id primitive.ObjectID) (*entities.User, error) {
	u, _ := r.FindByIdWithPassword(ctx, id)
	if u != nil {
		u.Password = ""
		u.PasswordResetToken = ""
		u.PasswordResetExpires = nil
	}
	return u, nil
}

func (r *fakeUserRepo) FindByIdWithPassword(ctx context.Context, id primitive.ObjectID) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == entities.NormalizeEmail(email) {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByResetToken(ctx context.Context, hashedToken string, now time.Time) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.PasswordResetToken == hashedToken && u.PasswordResetExpires != nil && u.PasswordResetExpires.After(now) {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindActive(ctx context.Context) ([]*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.User
	for _, u := range r.users {
		if u.Active {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, email string) (*entities.User, error) {
	r.mu.Lock()
	u, ok := r.users[id]
	if ok {
		u.Name, u.Email = name, email
	}
	r.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return r.FindById(ctx, id)
}

func (r *fakeUserRepo) SaveCredentials(ctx context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[user.Id]
	if !ok {
		return errors.New("no such user")
	}
	u.Password = user.Password
	u.PasswordChangedAt = user.PasswordChangedAt
	u.PasswordResetToken = user.PasswordResetToken
	u.PasswordResetExpires = user.PasswordResetExpires
	return nil
}

func (r *fakeUserRepo) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.Active = active
	}
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[id]
	delete(r.users, id)
	return ok, nil
}

type fakeTourRepo struct {
	mu         sync.Mutex
	tours      map[primitive.ObjectID]*entities.Tour
	users      *fakeUserRepo
	statsCalls int
}

func newFakeTourRepo(users *fakeUserRepo) *fakeTourRepo {
	return &fakeTourRepo{tours: map[primitive.ObjectID]*entities.Tour{}, users: users}
}

func (r *fakeTourRepo) Create(ctx context.Context, tour *entities.Tour) (*entities.Tour, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tours {
		if t.Name == tour.Name {
			return nil, apperrors.NewDuplicateKeyError("A tour with this name already exists!", errors.New("E11000"))
		}
	}
	c := *tour
	r.tours[tour.Id] = &c
	return tour, nil
}

func (r *fakeTourRepo) FindById(ctx context.Context, id primitive.ObjectID) (*entities.Tour, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tours[id]; ok {
		c := *t
		return &c, nil
	}
	return nil, nil
}

func (r *fakeTourRepo) List(ctx context.Context, params url.Values) ([]*entities.Tour, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Tour
	for _, t := range r.tours {
		if !t.SecretTour {
			c := *t
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeTourRepo) Update(ctx context.Context, tour *entities.Tour) (*entities.Tour, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.tours[tour.Id]
	if !ok {
		return nil, nil
	}
	c := *tour
	c.RatingsAverage, c.RatingsQuantity = existing.RatingsAverage, existing.RatingsQuantity
	c.Version = existing.Version + 1
	r.tours[tour.Id] = &c
	out := c
	return &out, nil
}

func (r *fakeTourRepo) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tours[id]
	delete(r.tours, id)
	return ok, nil
}

func (r *fakeTourRepo) FindGuides(ctx context.Context, ids []primitive.ObjectID) ([]entities.UserSummary, error) {
	var out []entities.UserSummary
	for _, id := range ids {
		if u, _ := r.users.FindById(ctx, id); u != nil {
			out = append(out, u.Summary())
		}
	}
	return out, nil
}

func (r *fakeTourRepo) Top5(ctx context.Context) ([]*entities.Tour, error) {
	return r.List(ctx, nil)
}

func (r *fakeTourRepo) Stats(ctx context.Context) ([]entities.DifficultyStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statsCalls++
	return []entities.DifficultyStats{{Difficulty: entities.DifficultyEasy, NumTours: len(r.tours)}}, nil
}

func (r *fakeTourRepo) MonthlyPlan(ctx context.Context, year int) ([]entities.MonthPlan, error) {
	return []entities.MonthPlan{{MonthNumber: 7, Month: "Jul", CountTours: 1}}, nil
}

func (r *fakeTourRepo) Within(ctx context.Context, distance, lat, lng float64, unit entities.DistanceUnit) ([]*entities.Tour, error) {
	return r.List(ctx, nil)
}

func (r *fakeTourRepo) Distances(ctx context.Context, lat, lng float64, unit entities.DistanceUnit) ([]entities.TourDistance, error) {
	return []entities.TourDistance{}, nil
}

// setRatings is how the fake ledger writes; services never call it.
func (r *fakeTourRepo) setRatings(s entities.RatingSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tours[s.TourId]; ok {
		t.RatingsAverage, t.RatingsQuantity = s.Average, s.Quantity
	}
}

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews []*entities.Review
}

func (r *fakeReviewRepo) Create(ctx context.Context, review *entities.Review) (*entities.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rv := range r.reviews {
		if rv.Tour == review.Tour && rv.User == review.User {
			return nil, apperrors.NewDuplicateKeyError("You have already reviewed this tour!", errors.New("E11000"))
		}
	}
	c := *review
	r.reviews = append(r.reviews, &c)
	return review, nil
}

func (r *fakeReviewRepo) FindById(ctx context.Context, id primitive.ObjectID) (*entities.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rv := range r.reviews {
		if rv.Id == id {
			c := *rv
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeReviewRepo) filter(keep func(*entities.Review) bool) []*entities.ReviewWithRefs {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*entities.ReviewWithRefs{}
	for _, rv := range r.reviews {
		if keep(rv) {
			c := *rv
			out = append(out, &entities.ReviewWithRefs{Review: &c})
		}
	}
	return out
}

func (r *fakeReviewRepo) FindAll(ctx context.Context) ([]*entities.ReviewWithRefs, error) {
	return r.filter(func(*entities.Review) bool { return true }), nil
}

func (r *fakeReviewRepo) FindByTour(ctx context.Context, tourID primitive.ObjectID) ([]*entities.ReviewWithRefs, error) {
	return r.filter(func(rv *entities.Review) bool { return rv.Tour == tourID }), nil
}

func (r *fakeReviewRepo) Update(ctx context.Context, review *entities.Review) (*entities.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rv := range r.reviews {
		if rv.Id == review.Id {
			rv.Description, rv.Rating = review.Description, review.Rating
			c := *rv
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeReviewRepo) remove(keep func(*entities.Review) bool) []*entities.Review {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept, removed []*entities.Review
	for _, rv := range r.reviews {
		if keep(rv) {
			kept = append(kept, rv)
		} else {
			removed = append(removed, rv)
		}
	}
	r.reviews = kept
	return removed
}

func (r *fakeReviewRepo) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	removed := r.remove(func(rv *entities.Review) bool { return rv.Id != id })
	return len(removed) > 0, nil
}

func (r *fakeReviewRepo) DeleteByTour(ctx context.Context, tourID primitive.ObjectID) (int64, error) {
	removed := r.remove(func(rv *entities.Review) bool { return rv.Tour != tourID })
	return int64(len(removed)), nil
}

func (r *fakeReviewRepo) DeleteByUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	removed := r.remove(func(rv *entities.Review) bool { return rv.User != userID })
	seen := map[primitive.ObjectID]bool{}
	var tours []primitive.ObjectID
	for _, rv := range removed {
		if !seen[rv.Tour] {
			seen[rv.Tour] = true
			tours = append(tours, rv.Tour)
		}
	}
	return tours, nil
}

// fakeLedger recomputes from the fake review store like the Mongo ledger.
type fakeLedger struct {
	reviews *fakeReviewRepo
	tours   *fakeTourRepo
	err     error
	calls   []primitive.ObjectID
}

func (l *fakeLedger) Recompute(ctx context.Context, tourID primitive.ObjectID) (entities.RatingSummary, error) {
	l.calls = append(l.calls, tourID)
	if l.err != nil {
		return entities.RatingSummary{}, l.err
	}
	rows, _ := l.reviews.FindByTour(ctx, tourID)
	sum := 0
	for _, r := range rows {
		sum += r.Review.Rating
	}
	avg := 0.0
	if len(rows) > 0 {
		avg = float64(sum) / float64(len(rows))
	}
	summary := entities.NewRatingSummary(tourID, len(rows), avg)
	l.tours.setRatings(summary)
	return summary, nil
}

type fakeCache struct {
	mu          sync.Mutex
	data        map[string]any
	invalidated int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]any{}}
}

func (c *fakeCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *[]entities.DifficultyStats:
		*d = v.([]entities.DifficultyStats)
	case *[]entities.MonthPlan:
		*d = v.([]entities.MonthPlan)
	case *[]*entities.Tour:
		*d = v.([]*entities.Tour)
	default:
		return false, nil
	}
	return true, nil
}

func (c *fakeCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case *[]entities.DifficultyStats:
		c.data[key] = *v
	case *[]entities.MonthPlan:
		c.data[key] = *v
	case *[]*entities.Tour:
		c.data[key] = *v
	}
	return nil
}

func (c *fakeCache) DeletePrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

type publishedEvent struct {
	subject string
	payload any
}

type fakeEvents struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (e *fakeEvents) Publish(ctx context.Context, subject string, payload any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, publishedEvent{subject, payload})
	return nil
}

func (e *fakeEvents) subjects() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []string
	for _, ev := range e.events {
		out = append(out, ev.subject)
	}
	return out
}

type fakeMailer struct {
	sent []providers.Email
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, msg providers.Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
