package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/skillswap/internal/app/auth"
	"github.com/yigit/skillswap/internal/app/models"
	"github.com/yigit/skillswap/internal/app/repositories"
	"github.com/yigit/skillswap/internal/domain"
	"github.com/yigit/skillswap/internal/pkg/apperrors"
	"github.com/yigit/skillswap/internal/pkg/helpers"
)

// In-memory stores mirroring the semantics of the PostgreSQL repositories.

type memUsers struct {
	mu    sync.Mutex
	byID  map[string]models.User
	order []string
}

func newMemUsers() *memUsers {
	return &memUsers{byID: make(map[string]models.User)}
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(u.Email)
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	m.byID[u.ID] = *u
	m.order = append(m.order, u.ID)
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &u, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == strings.ToLower(email) {
			u := u
			return &u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *memUsers) UpdateProfile(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return apperrors.ErrUserNotFound
	}
	m.byID[u.ID] = *u
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (m *memUsers) List(_ context.Context, f repositories.UserFilter) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.User, 0)
	for _, id := range m.order {
		u := m.byID[id]
		if id == f.ExcludeID {
			continue
		}
		if f.Teach != "" && !contains(u.SkillsToTeach, f.Teach) {
			continue
		}
		if f.Learn != "" && !contains(u.SkillsToLearn, f.Learn) {
			continue
		}
		if f.Location != "" && !helpers.ContainsFold(u.Location, f.Location) {
			continue
		}
		out = append(out, &u)
	}
	return out, nil
}

type memTokens struct {
	mu     sync.Mutex
	tokens map[string]*repositories.RefreshToken
	now    func() time.Time
}

func newMemTokens() *memTokens {
	return &memTokens{tokens: make(map[string]*repositories.RefreshToken), now: time.Now}
}

func (m *memTokens) CreateToken(_ context.Context, token, userID string, expiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = &repositories.RefreshToken{Token: token, UserID: userID, ExpiryDate: expiry}
	return nil
}

func (m *memTokens) GetToken(_ context.Context, token string) (*repositories.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	if t.IsRevoked {
		return nil, apperrors.ErrTokenRevoked
	}
	if t.ExpiryDate.Before(m.now()) {
		return nil, apperrors.ErrTokenExpired
	}
	c := *t
	return &c, nil
}

func (m *memTokens) RevokeToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.IsRevoked = true
	return nil
}

func (m *memTokens) RevokeAllUserTokens(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.UserID == userID {
			t.IsRevoked = true
		}
	}
	return nil
}

func (m *memTokens) CleanupExpiredTokens(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, t := range m.tokens {
		if t.IsRevoked || t.ExpiryDate.Before(m.now()) {
			delete(m.tokens, k)
			n++
		}
	}
	return n, nil
}

type memExchanges struct {
	mu    sync.Mutex
	byID  map[string]models.Exchange
	order []string
	now   func() time.Time
}

func newMemExchanges(now func() time.Time) *memExchanges {
	return &memExchanges{byID: make(map[string]models.Exchange), now: now}
}

func (m *memExchanges) Create(_ context.Context, ex *models.Exchange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ex.ID == "" {
		ex.ID = uuid.NewString()
	}
	ex.CreatedAt, ex.UpdatedAt = m.now(), m.now()
	m.byID[ex.ID] = *ex
	m.order = append(m.order, ex.ID)
	return nil
}

func (m *memExchanges) GetByID(_ context.Context, id string) (*models.Exchange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ex, ok := m.byID[id]
	if !ok {
		return nil, apperrors.ErrExchangeNotFound
	}
	return &ex, nil
}

func (m *memExchanges) ListByParticipant(_ context.Context, userID string) ([]*models.Exchange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Exchange, 0)
	for i := len(m.order) - 1; i >= 0; i-- {
		ex := m.byID[m.order[i]]
		if ex.RequesterID == userID || ex.RecipientID == userID {
			out = append(out, &ex)
		}
	}
	return out, nil
}

func (m *memExchanges) save(ex *models.Exchange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[ex.ID]; !ok {
		return apperrors.ErrExchangeNotFound
	}
	ex.UpdatedAt = m.now()
	m.byID[ex.ID] = *ex
	return nil
}

func (m *memExchanges) UpdateStatus(_ context.Context, ex *models.Exchange) error {
	return m.save(ex)
}

func (m *memExchanges) UpdateSchedule(_ context.Context, ex *models.Exchange) error {
	return m.save(ex)
}

type memMessages struct {
	mu      sync.Mutex
	threads map[string][]models.Message
	failOn  int // fail the n-th Append (1-based); 0 never fails
	appends int
}

func newMemMessages() *memMessages {
	return &memMessages{threads: make(map[string][]models.Message)}
}

var errStoreDown = apperrors.NewCustomError(apperrors.ErrConflict, "store unavailable")

func (m *memMessages) Append(_ context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appends++
	if m.failOn > 0 && m.appends == m.failOn {
		return errStoreDown
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	m.threads[msg.ExchangeID] = append(m.threads[msg.ExchangeID], *msg)
	return nil
}

func (m *memMessages) ListByExchange(_ context.Context, exchangeID string) ([]*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Message, 0)
	for _, msg := range m.threads[exchangeID] {
		msg := msg
		out = append(out, &msg)
	}
	return out, nil
}

func (m *memMessages) Last(_ context.Context, exchangeID string) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	thread := m.threads[exchangeID]
	if len(thread) == 0 {
		return nil, nil
	}
	last := thread[len(thread)-1]
	return &last, nil
}

func (m *memMessages) DeleteByExchange(_ context.Context, exchangeID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.threads[exchangeID]))
	delete(m.threads, exchangeID)
	return n, nil
}

type memPosts struct {
	mu    sync.Mutex
	byID  map[string]*models.Post
	order []string
}

func newMemPosts() *memPosts {
	return &memPosts{byID: make(map[string]*models.Post)}
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.Likes = append([]string{}, p.Likes...)
	c.Comments = append([]models.Comment{}, p.Comments...)
	return &c
}

func (m *memPosts) Create(_ context.Context, p *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()
	p.Likes = []string{}
	p.Comments = []models.Comment{}
	m.byID[p.ID] = clonePost(p)
	m.order = append(m.order, p.ID)
	return nil
}

func (m *memPosts) GetByID(_ context.Context, id string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, apperrors.ErrPostNotFound
	}
	return clonePost(p), nil
}

func (m *memPosts) List(_ context.Context, f repositories.PostFilter) ([]*models.Post, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*models.Post, 0)
	for i := len(m.order) - 1; i >= 0; i-- {
		p, ok := m.byID[m.order[i]]
		if !ok {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if !helpers.ContainsFold(p.Content, f.Search) {
			continue
		}
		all = append(all, clonePost(p))
	}
	switch f.Sort {
	case repositories.PostSortOldest:
		for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
			all[i], all[j] = all[j], all[i]
		}
	case repositories.PostSortMostLiked:
		sort.SliceStable(all, func(i, j int) bool { return len(all[i].Likes) > len(all[j].Likes) })
	case repositories.PostSortMostCommented:
		sort.SliceStable(all, func(i, j int) bool { return len(all[i].Comments) > len(all[j].Comments) })
	}
	total := int64(len(all))
	start := int(f.Offset)
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if f.Limit > 0 && start+f.Limit < end {
		end = start + f.Limit
	}
	return all[start:end], total, nil
}

func toggle(list []string, id string) ([]string, bool) {
	for i, v := range list {
		if v == id {
			return append(list[:i:i], list[i+1:]...), false
		}
	}
	return append(list, id), true
}

func (m *memPosts) ToggleLike(_ context.Context, postID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[postID]
	if !ok {
		return false, apperrors.ErrPostNotFound
	}
	var liked bool
	p.Likes, liked = toggle(p.Likes, userID)
	return liked, nil
}

func (m *memPosts) AddComment(_ context.Context, postID string, c models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[postID]
	if !ok {
		return apperrors.ErrPostNotFound
	}
	p.Comments = append(p.Comments, c)
	return nil
}

func (m *memPosts) RemoveComment(_ context.Context, postID, commentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[postID]
	if !ok {
		return apperrors.ErrPostNotFound
	}
	for i, c := range p.Comments {
		if c.ID == commentID {
			p.Comments = append(p.Comments[:i:i], p.Comments[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrCommentNotFound
}

func (m *memPosts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return apperrors.ErrPostNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memPosts) Categories(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	out := make([]string, 0)
	for _, p := range m.byID {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

type memResources struct {
	mu    sync.Mutex
	byID  map[string]*models.Resource
	order []string
}

func newMemResources() *memResources {
	return &memResources{byID: make(map[string]*models.Resource)}
}

func (m *memResources) Create(_ context.Context, r *models.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = time.Now().UTC()
	r.Likes = []string{}
	c := *r
	m.byID[r.ID] = &c
	m.order = append(m.order, r.ID)
	return nil
}

func (m *memResources) GetByID(_ context.Context, id string) (*models.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, apperrors.ErrLearningResNotFound
	}
	c := *r
	c.Likes = append([]string{}, r.Likes...)
	return &c, nil
}

func (m *memResources) List(_ context.Context, skill string) ([]*models.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Resource, 0)
	for i := len(m.order) - 1; i >= 0; i-- {
		r, ok := m.byID[m.order[i]]
		if !ok {
			continue
		}
		if skill != "" && !strings.EqualFold(skill, repositories.AllSkills) && r.Skill != skill {
			continue
		}
		c := *r
		out = append(out, &c)
	}
	return out, nil
}

func (m *memResources) ToggleLike(_ context.Context, id, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return false, apperrors.ErrLearningResNotFound
	}
	var liked bool
	r.Likes, liked = toggle(r.Likes, userID)
	return liked, nil
}

func (m *memResources) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return apperrors.ErrLearningResNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memResources) Skills(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	out := make([]string, 0)
	for _, r := range m.byID {
		if !seen[r.Skill] {
			seen[r.Skill] = true
			out = append(out, r.Skill)
		}
	}
	sort.Strings(out)
	return out, nil
}

type memNotifications struct {
	mu    sync.Mutex
	items []*models.Notification
	fail  bool
}

func (m *memNotifications) Create(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errStoreDown
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = time.Now().UTC()
	n.Read = false
	c := *n
	m.items = append(m.items, &c)
	return nil
}

func (m *memNotifications) GetByID(_ context.Context, id string) (*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		if n.ID == id {
			c := *n
			return &c, nil
		}
	}
	return nil, apperrors.ErrNotificationNotFound
}

func (m *memNotifications) ListByUser(_ context.Context, userID string, unreadOnly bool, limit int) ([]*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Notification, 0)
	for i := len(m.items) - 1; i >= 0; i-- {
		n := m.items[i]
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		c := *n
		out = append(out, &c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memNotifications) CountUnread(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, item := range m.items {
		if item.UserID == userID && !item.Read {
			n++
		}
	}
	return n, nil
}

func (m *memNotifications) MarkRead(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		if n.ID == id {
			n.Read = true
			return nil
		}
	}
	return apperrors.ErrNotificationNotFound
}

func (m *memNotifications) MarkAllRead(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var updated int64
	for _, n := range m.items {
		if n.UserID == userID && !n.Read {
			n.Read = true
			updated++
		}
	}
	return updated, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) Publish(topics ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topics...)
}

func (p *recordingPublisher) published(topic string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return contains(p.topics, topic)
}

// fixture wires every service over in-memory stores.
type fixture struct {
	now           time.Time
	users         *memUsers
	tokens        *memTokens
	exchanges     *memExchanges
	messages      *memMessages
	posts         *memPosts
	resources     *memResources
	notifications *memNotifications
	publisher     *recordingPublisher

	exchangeSvc     ExchangeService
	threadSvc       ThreadService
	communitySvc    CommunityService
	resourceSvc     ResourceService
	notificationSvc NotificationService
	profileSvc      ProfileService
	discoverySvc    DiscoveryService
}

func newFixture() *fixture {
	f := &fixture{
		now:           time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC),
		users:         newMemUsers(),
		tokens:        newMemTokens(),
		messages:      newMemMessages(),
		posts:         newMemPosts(),
		resources:     newMemResources(),
		notifications: &memNotifications{},
		publisher:     &recordingPublisher{},
	}
	clock := func() time.Time { return f.now }
	f.exchanges = newMemExchanges(clock)

	log := zerolog.Nop()
	authz := auth.NewAuthorizationService(f.exchanges, f.posts, f.resources, f.notifications)
	links := domain.NewMeetingLinkGenerator("https://meet.example.com/%s")

	f.notificationSvc = NewNotificationService(f.notifications, authz, f.publisher, log)
	f.exchangeSvc = NewExchangeService(f.exchanges, f.messages, f.users, authz, f.notificationSvc, f.publisher,
		ExchangeOptions{Links: links, Clock: clock}, log)
	f.threadSvc = NewThreadService(f.messages, authz, f.publisher, domain.DefaultJoinWindow, clock, log)
	f.communitySvc = NewCommunityService(f.posts, f.users, authz, f.publisher, clock, log)
	f.resourceSvc = NewResourceService(f.resources, f.users, authz, f.publisher, log)
	f.profileSvc = NewProfileService(f.users, log)
	f.discoverySvc = NewDiscoveryService(f.users, log)
	return f
}

func (f *fixture) addUser(name, location string, teach, learn []string) *models.User {
	u := &models.User{
		Email:         strings.ToLower(name) + "@example.com",
		Password:      "x",
		DisplayName:   name,
		Location:      location,
		SkillsToTeach: teach,
		SkillsToLearn: learn,
	}
	if err := f.users.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}
