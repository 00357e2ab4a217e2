package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/edupress/edupress/internal/domain"
)

// mockUserRepo is an in-memory implementation of domain.UserRepository.
type mockUserRepo struct {
	users      map[string]*domain.User
	emailIndex map[string]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:      make(map[string]*domain.User),
		emailIndex: make(map[string]*domain.User),
	}
}

func (r *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := r.emailIndex[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (r *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (r *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if _, exists := r.emailIndex[user.Email]; exists {
		return domain.ErrConflict
	}
	copy := *user
	r.users[user.ID] = &copy
	r.emailIndex[user.Email] = &copy
	return nil
}

func (r *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	old, ok := r.users[user.ID]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.emailIndex, old.Email)
	copy := *user
	r.users[user.ID] = &copy
	r.emailIndex[user.Email] = &copy
	return nil
}

// mockSessionRepo round-trips snapshots through JSON exactly like the Redis
// store does, so tests observe the same field redaction.
type mockSessionRepo struct {
	entries map[string][]byte
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{entries: make(map[string][]byte)}
}

func (r *mockSessionRepo) Put(ctx context.Context, userID string, user *domain.User, ttl time.Duration) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	r.entries[userID] = data
	return nil
}

func (r *mockSessionRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	data, ok := r.entries[userID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *mockSessionRepo) Remove(ctx context.Context, userID string) error {
	delete(r.entries, userID)
	return nil
}

// auditEvent is one recorded security event.
type auditEvent struct {
	userID string
	event  string
}

// mockAuditLog records security events in order.
type mockAuditLog struct {
	events []auditEvent
}

func (m *mockAuditLog) LogSecurityEvent(ctx context.Context, userID, eventType, ip string, metadata map[string]interface{}) error {
	m.events = append(m.events, auditEvent{userID: userID, event: eventType})
	return nil
}

func (m *mockAuditLog) has(userID, event string) bool {
	for _, e := range m.events {
		if e.userID == userID && e.event == event {
			return true
		}
	}
	return false
}

// mockMailer captures the last activation code instead of sending it.
type mockMailer struct {
	lastEmail string
	lastCode  string
}

func (m *mockMailer) SendActivationMail(ctx context.Context, email, name, code string) error {
	m.lastEmail = email
	m.lastCode = code
	return nil
}

// mockCourseRepo counts store reads so cache-aside behavior is observable.
type mockCourseRepo struct {
	courses   map[string]*domain.Course
	getCalls  int
	listCalls int
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*domain.Course)}
}

func (r *mockCourseRepo) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	r.getCalls++
	course, ok := r.courses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copy := *course
	return &copy, nil
}

func (r *mockCourseRepo) List(ctx context.Context) ([]domain.Course, error) {
	r.listCalls++
	var out []domain.Course
	for _, c := range r.courses {
		out = append(out, *c)
	}
	return out, nil
}

func (r *mockCourseRepo) Create(ctx context.Context, course *domain.Course) error {
	copy := *course
	r.courses[course.ID] = &copy
	return nil
}

func (r *mockCourseRepo) Save(ctx context.Context, course *domain.Course) error {
	if _, ok := r.courses[course.ID]; !ok {
		return domain.ErrNotFound
	}
	copy := *course
	r.courses[course.ID] = &copy
	return nil
}

// mockCache is an in-memory domain.CacheRepository recording TTLs.
type mockCache struct {
	entries map[string][]byte
	ttls    map[string]time.Duration
}

func newMockCache() *mockCache {
	return &mockCache{
		entries: make(map[string][]byte),
		ttls:    make(map[string]time.Duration),
	}
}

func (c *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, ok := c.entries[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return data, nil
}

func (c *mockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.entries[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *mockCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.entries, key)
		delete(c.ttls, key)
	}
	return nil
}

func (c *mockCache) has(key string) bool {
	_, ok := c.entries[key]
	return ok
}
