// Package testutil provides in-memory implementations of the repository ports
// for use-case, service and handler tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/droptracker/domain"
	"github.com/fastygo/droptracker/repository"
)

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

type TaskRepo struct {
	mu    sync.Mutex
	tasks map[string]domain.Task
	// Err, when set, is returned by every write.
	Err error
	// OnGet, when set, runs at the start of every GetByID.
	OnGet func()
}

func NewTaskRepo(tasks ...domain.Task) *TaskRepo {
	r := &TaskRepo{tasks: make(map[string]domain.Task)}
	for _, t := range tasks {
		r.tasks[t.ID] = t
	}
	return r
}

var _ repository.TaskRepository = (*TaskRepo)(nil)

func (r *TaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	if r.OnGet != nil {
		r.OnGet()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &t, nil
}

func (r *TaskRepo) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Task, 0)
	for _, t := range r.tasks {
		if filter.UserID != "" && t.UserID != filter.UserID {
			continue
		}
		out = append(out, t)
	}
	// Same order and paging as the Postgres adapter.
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.All {
		return out, nil
	}
	offset := repository.PageOffset(filter.Offset)
	if offset >= len(out) {
		return []domain.Task{}, nil
	}
	out = out[offset:]
	if limit := repository.PageLimit(filter.Limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *TaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	created := *task
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = domain.StoredTime(time.Now())
		created.UpdatedAt = created.CreatedAt
	}
	if _, exists := r.tasks[created.ID]; exists {
		return nil, domain.ErrTaskExists
	}
	r.tasks[created.ID] = created
	return &created, nil
}

func (r *TaskRepo) Update(_ context.Context, task *domain.Task) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.tasks[task.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	updated := *task
	updated.LastCompletedAt = existing.LastCompletedAt
	updated.CreatedAt = existing.CreatedAt
	r.tasks[task.ID] = updated
	task.LastCompletedAt = existing.LastCompletedAt
	return nil
}

func (r *TaskRepo) Delete(_ context.Context, id string) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *TaskRepo) SetCompletion(_ context.Context, id string, expected, completedAt *time.Time) (time.Time, error) {
	if r.Err != nil {
		return time.Time{}, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return time.Time{}, domain.ErrTaskNotFound
	}
	if !sameMarker(t.LastCompletedAt, expected) {
		return time.Time{}, domain.ErrTaskChanged
	}
	if completedAt != nil {
		at := domain.StoredTime(*completedAt)
		t.LastCompletedAt = &at
	} else {
		t.LastCompletedAt = nil
	}
	t.UpdatedAt = domain.StoredTime(time.Now())
	r.tasks[id] = t
	return t.UpdatedAt, nil
}

func sameMarker(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func (r *TaskRepo) ClearExpired(_ context.Context, now time.Time) ([]string, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	var owners []string
	for id, t := range r.tasks {
		if t.LastCompletedAt == nil || t.Active(now) {
			continue
		}
		t.LastCompletedAt = nil
		r.tasks[id] = t
		if !seen[t.UserID] {
			seen[t.UserID] = true
			owners = append(owners, t.UserID)
		}
	}
	sort.Strings(owners)
	return owners, nil
}

// Publisher records published signals and fans them out to subscribers.
type Publisher struct {
	mu        sync.Mutex
	published []string
	subs      map[string][]chan struct{}
}

func NewPublisher() *Publisher {
	return &Publisher{subs: make(map[string][]chan struct{})}
}

var _ repository.TaskPublisher = (*Publisher)(nil)

func (p *Publisher) Publish(_ context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, userID)
	for _, ch := range p.subs[userID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

func (p *Publisher) Subscribe(ctx context.Context, userID string) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	p.mu.Lock()
	p.subs[userID] = append(p.subs[userID], ch)
	p.mu.Unlock()

	go func() {
		<-ctx.Done()
		p.mu.Lock()
		defer p.mu.Unlock()
		subs := p.subs[userID]
		for i, c := range subs {
			if c == ch {
				p.subs[userID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}

// Published returns the user ids signalled so far.
func (p *Publisher) Published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.published...)
}

type UserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
	Err   error
}

func NewUserRepo(users ...domain.User) *UserRepo {
	r := &UserRepo{users: make(map[string]domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

var _ repository.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepo) Upsert(_ context.Context, user *domain.User) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepo) ListActiveIDs(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, u := range r.users {
		if u.IsActive() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

type SessionRepo struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{sessions: make(map[string]domain.Session)}
}

var _ repository.SessionRepository = (*SessionRepo)(nil)

func (r *SessionRepo) Get(_ context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (r *SessionRepo) Save(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = *session
	return nil
}

func (r *SessionRepo) Delete(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, session.ID)
	return nil
}

func (r *SessionRepo) Extend(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.ID]; !ok {
		return domain.ErrSessionNotFound
	}
	r.sessions[session.ID] = *session
	return nil
}

func (r *SessionRepo) DeleteByUser(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}

type ProgressRepo struct {
	mu      sync.Mutex
	records map[string]domain.Progress
}

func NewProgressRepo() *ProgressRepo {
	return &ProgressRepo{records: make(map[string]domain.Progress)}
}

var _ repository.ProgressRepository = (*ProgressRepo)(nil)

func (r *ProgressRepo) Get(_ context.Context, userID string) (*domain.Progress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.records[userID]
	p.UserID = userID
	p.Streak.Milestones = append([]int(nil), p.Streak.Milestones...)
	return &p, nil
}

func (r *ProgressRepo) AdjustCompleted(_ context.Context, userID string, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.records[userID]
	p.CompletedCount += delta
	if p.CompletedCount < 0 {
		p.CompletedCount = 0
	}
	r.records[userID] = p
	return p.CompletedCount, nil
}

func (r *ProgressRepo) ClaimTier(_ context.Context, userID string, tier int) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.records[userID]
	prev := p.NotifiedTier
	if prev == tier {
		return prev, false, nil
	}
	p.NotifiedTier = tier
	r.records[userID] = p
	return prev, true, nil
}

func (r *ProgressRepo) SaveStreak(_ context.Context, userID string, streak domain.Streak) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.records[userID]
	p.Streak = streak
	r.records[userID] = p
	return nil
}

// Set replaces a user's stored progress.
func (r *ProgressRepo) Set(p domain.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[p.UserID] = p
}

type NotificationStore struct {
	mu    sync.Mutex
	items map[string][]domain.Notification
	Err   error
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{items: make(map[string][]domain.Notification)}
}

var _ repository.NotificationStore = (*NotificationStore)(nil)

func (s *NotificationStore) Load(_ context.Context, userID string) ([]domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Notification(nil), s.items[userID]...), nil
}

func (s *NotificationStore) Save(_ context.Context, userID string, items []domain.Notification) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[userID] = append([]domain.Notification(nil), items...)
	return nil
}

// Notifier records notifications instead of storing them.
type Notifier struct {
	mu   sync.Mutex
	sent map[string][]domain.Notification
}

func NewNotifier() *Notifier {
	return &Notifier{sent: make(map[string][]domain.Notification)}
}

func (n *Notifier) Notify(_ context.Context, userID string, note domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent[userID] = append(n.sent[userID], note)
	return nil
}

func (n *Notifier) Sent(userID string) []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Notification(nil), n.sent[userID]...)
}

type ProjectRepo struct {
	mu       sync.Mutex
	projects map[string]domain.Project
}

func NewProjectRepo(projects ...domain.Project) *ProjectRepo {
	r := &ProjectRepo{projects: make(map[string]domain.Project)}
	for _, p := range projects {
		r.projects[p.ID] = p
	}
	return r
}

var _ repository.ProjectRepository = (*ProjectRepo)(nil)

func (r *ProjectRepo) GetByID(_ context.Context, id string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return &p, nil
}

func (r *ProjectRepo) List(_ context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Project, 0)
	for _, p := range r.projects {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Status != "" && string(p.Status) != filter.Status {
			continue
		}
		if filter.Featured && !p.Featured {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Featured != b.Featured {
			return a.Featured
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	offset := repository.PageOffset(filter.Offset)
	if offset >= len(out) {
		return []domain.Project{}, nil
	}
	out = out[offset:]
	if limit := repository.PageLimit(filter.Limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ProjectRepo) Create(_ context.Context, project *domain.Project) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.projects {
		if strings.EqualFold(p.Name, project.Name) {
			return nil, domain.ErrProjectExists
		}
	}
	created := *project
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	r.projects[created.ID] = created
	return &created, nil
}

func (r *ProjectRepo) Update(_ context.Context, project *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[project.ID]; !ok {
		return domain.ErrProjectNotFound
	}
	r.projects[project.ID] = *project
	return nil
}

func (r *ProjectRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[id]; !ok {
		return domain.ErrProjectNotFound
	}
	delete(r.projects, id)
	return nil
}

type ContactRepo struct {
	mu       sync.Mutex
	Messages []domain.ContactMessage
}

var _ repository.ContactRepository = (*ContactRepo)(nil)

func (r *ContactRepo) Create(_ context.Context, msg *domain.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	r.Messages = append(r.Messages, *msg)
	return nil
}

type StatsRepo struct {
	Stats domain.Stats
}

func (r *StatsRepo) Counts(_ context.Context) (*domain.Stats, error) {
	s := r.Stats
	return &s, nil
}

// Buffer records operations handed to the offline buffer.
type Buffer struct {
	mu       sync.Mutex
	Tasks    []string
	Profiles []string
	Err      error
}

func (b *Buffer) BufferProfile(_ context.Context, operation string, user *domain.User) error {
	if b.Err != nil {
		return b.Err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Profiles = append(b.Profiles, operation+":"+user.ID)
	return nil
}

func (b *Buffer) BufferTask(_ context.Context, operation string, task *domain.Task) error {
	if b.Err != nil {
		return b.Err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Tasks = append(b.Tasks, operation+":"+task.ID)
	return nil
}
