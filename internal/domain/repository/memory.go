package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"snippetbox/internal/common"
	"snippetbox/internal/domain/model"
	"snippetbox/internal/platform/database"
)

// MemoryStore keeps users, roles and snippets in process memory with the
// same uniqueness and visibility rules as the Postgres schema.
type MemoryStore struct {
	mu sync.RWMutex

	roles      map[model.Role]int64
	nextRoleID int64

	users      map[int64]model.User
	userEmails map[string]int64
	userNames  map[string]int64
	userSalts  map[string]int64
	nextUserID int64

	snippets      map[int64]model.Snippet
	sharedURLs    map[string]int64
	nextSnippetID int64

	tx  *memoryTransactor
	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{
		roles:      make(map[model.Role]int64),
		users:      make(map[int64]model.User),
		userEmails: make(map[string]int64),
		userNames:  make(map[string]int64),
		userSalts:  make(map[string]int64),
		snippets:   make(map[int64]model.Snippet),
		sharedURLs: make(map[string]int64),
		now:        time.Now,
	}
	m.tx = &memoryTransactor{store: m}
	return m
}

func (m *MemoryStore) Users() UserRepository       { return memoryUsers{m} }
func (m *MemoryStore) Roles() RoleRepository       { return memoryRoles{m} }
func (m *MemoryStore) Snippets() SnippetRepository { return memorySnippets{m} }

// Transactor serializes units of work. Writes made through the Querier it
// hands out are undone when the unit fails or panics. IDs are not reused,
// like Postgres sequences.
func (m *MemoryStore) Transactor() database.Transactor { return m.tx }

type memoryTransactor struct {
	mu    sync.Mutex
	store *MemoryStore
}

// memoryTx marks a unit of work and collects undo steps. The embedded
// Querier is nil; memory repositories never issue SQL.
type memoryTx struct {
	database.Querier
	undo []func()
}

func (t *memoryTransactor) WithinTx(ctx context.Context, fn func(q database.Querier) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memoryTx{}
	defer func() {
		if p := recover(); p != nil {
			t.store.rollback(tx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		t.store.rollback(tx)
		return err
	}
	if err := ctx.Err(); err != nil {
		t.store.rollback(tx)
		return err
	}
	return nil
}

func (m *MemoryStore) rollback(tx *memoryTx) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

// onRollback records undo when q belongs to a unit of work. Caller holds mu.
func onRollback(q database.Querier, undo func()) {
	if tx, ok := q.(*memoryTx); ok {
		tx.undo = append(tx.undo, undo)
	}
}

// Roles

type memoryRoles struct{ m *MemoryStore }

func (r memoryRoles) Ensure(ctx context.Context, q database.Querier, role model.Role) (int64, error) {
	if !role.Valid() {
		return 0, fmt.Errorf("memoryRoles.Ensure: unknown role %q", role)
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if id, ok := r.m.roles[role]; ok {
		return id, nil
	}
	r.m.nextRoleID++
	r.m.roles[role] = r.m.nextRoleID
	onRollback(q, func() { delete(r.m.roles, role) })
	return r.m.nextRoleID, nil
}

// Users

type memoryUsers struct{ m *MemoryStore }

func (r memoryUsers) Create(ctx context.Context, q database.Querier, user *model.User) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	_, emailTaken := r.m.userEmails[user.Email]
	_, nameTaken := r.m.userNames[user.Name]
	_, saltTaken := r.m.userSalts[user.Salt]
	if emailTaken || nameTaken || saltTaken {
		return 0, fmt.Errorf("memoryUsers.Create: %w", common.ErrDuplicate)
	}
	role, ok := r.m.roleByID(user.RoleID)
	if !ok {
		return 0, fmt.Errorf("memoryUsers.Create: role id %d does not exist", user.RoleID)
	}
	r.m.nextUserID++
	stored := *user
	stored.ID = r.m.nextUserID
	stored.Role = role
	r.m.users[stored.ID] = stored
	r.m.userEmails[stored.Email] = stored.ID
	r.m.userNames[stored.Name] = stored.ID
	r.m.userSalts[stored.Salt] = stored.ID
	onRollback(q, func() {
		delete(r.m.users, stored.ID)
		delete(r.m.userEmails, stored.Email)
		delete(r.m.userNames, stored.Name)
		delete(r.m.userSalts, stored.Salt)
	})
	user.ID = stored.ID
	return stored.ID, nil
}

func (r memoryUsers) FindByEmail(ctx context.Context, _ database.Querier, email string) (*model.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	id, ok := r.m.userEmails[email]
	if !ok {
		return nil, fmt.Errorf("memoryUsers.FindByEmail: %w", common.ErrNotFound)
	}
	u := r.m.users[id]
	return &u, nil
}

func (r memoryUsers) FindByID(ctx context.Context, _ database.Querier, id int64) (*model.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, fmt.Errorf("memoryUsers.FindByID: %w", common.ErrNotFound)
	}
	return &u, nil
}

func (m *MemoryStore) roleByID(id int64) (model.Role, bool) {
	for role, rid := range m.roles {
		if rid == id {
			return role, true
		}
	}
	return "", false
}

// Snippets

type memorySnippets struct{ m *MemoryStore }

func (r memorySnippets) Create(ctx context.Context, q database.Querier, s *model.Snippet) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.claimLink(0, s); err != nil {
		return fmt.Errorf("memorySnippets.Create: %w", err)
	}
	r.m.nextSnippetID++
	s.ID = r.m.nextSnippetID
	s.CreatedAt = r.m.now().UTC()
	if s.SharedURL != nil {
		r.m.sharedURLs[*s.SharedURL] = s.ID
	}
	stored := cloneSnippet(*s)
	r.m.snippets[s.ID] = stored
	onRollback(q, func() { r.m.removeSnippet(stored) })
	return nil
}

func (r memorySnippets) FindByID(ctx context.Context, _ database.Querier, id int64) (*model.Snippet, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	s, ok := r.m.snippets[id]
	if !ok {
		return nil, fmt.Errorf("memorySnippets.FindByID: %w", common.ErrNotFound)
	}
	out := cloneSnippet(s)
	return &out, nil
}

// FindByIDForUpdate relies on the transactor for exclusion.
func (r memorySnippets) FindByIDForUpdate(ctx context.Context, q database.Querier, id int64) (*model.Snippet, error) {
	return r.FindByID(ctx, q, id)
}

func (r memorySnippets) List(ctx context.Context, _ database.Querier, skip, limit int) ([]model.Snippet, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	ids := make([]int64, 0, len(r.m.snippets))
	for id := range r.m.snippets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]model.Snippet, 0, limit)
	for i := skip; i < len(ids) && len(out) < limit; i++ {
		out = append(out, cloneSnippet(r.m.snippets[ids[i]]))
	}
	return out, nil
}

func (r memorySnippets) Update(ctx context.Context, q database.Querier, s *model.Snippet) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	old, ok := r.m.snippets[s.ID]
	if !ok {
		return fmt.Errorf("memorySnippets.Update: %w", common.ErrNotFound)
	}
	if err := r.m.claimLink(s.ID, s); err != nil {
		return fmt.Errorf("memorySnippets.Update: %w", err)
	}
	if old.SharedURL != nil && (s.SharedURL == nil || *s.SharedURL != *old.SharedURL) {
		delete(r.m.sharedURLs, *old.SharedURL)
	}
	if s.SharedURL != nil {
		r.m.sharedURLs[*s.SharedURL] = s.ID
	}
	updated := cloneSnippet(*s)
	updated.CreatedAt = old.CreatedAt
	r.m.snippets[s.ID] = updated
	onRollback(q, func() {
		r.m.removeSnippet(updated)
		r.m.putSnippet(old)
	})
	return nil
}

func (r memorySnippets) Delete(ctx context.Context, q database.Querier, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.snippets[id]
	if !ok {
		return fmt.Errorf("memorySnippets.Delete: %w", common.ErrNotFound)
	}
	r.m.removeSnippet(s)
	onRollback(q, func() { r.m.putSnippet(s) })
	return nil
}

func (r memorySnippets) FindBySharedURL(ctx context.Context, _ database.Querier, sharedURL string) (*model.Snippet, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	id, ok := r.m.sharedURLs[sharedURL]
	if !ok {
		return nil, fmt.Errorf("memorySnippets.FindBySharedURL: %w", common.ErrNotFound)
	}
	s := r.m.snippets[id]
	if s.IsPrivate {
		return nil, fmt.Errorf("memorySnippets.FindBySharedURL: %w", common.ErrNotFound)
	}
	out := cloneSnippet(s)
	return &out, nil
}

// claimLink checks that s's shared link is consistent and free for id (0 for
// a new row). Caller holds mu.
func (m *MemoryStore) claimLink(id int64, s *model.Snippet) error {
	if s.IsPrivate != (s.SharedURL == nil) {
		return fmt.Errorf("shared_url must be set exactly when the snippet is public")
	}
	if s.SharedURL == nil {
		return nil
	}
	if owner, taken := m.sharedURLs[*s.SharedURL]; taken && owner != id {
		return common.ErrDuplicate
	}
	return nil
}

// Caller holds mu.
func (m *MemoryStore) putSnippet(s model.Snippet) {
	m.snippets[s.ID] = s
	if s.SharedURL != nil {
		m.sharedURLs[*s.SharedURL] = s.ID
	}
}

// Caller holds mu.
func (m *MemoryStore) removeSnippet(s model.Snippet) {
	if s.SharedURL != nil && m.sharedURLs[*s.SharedURL] == s.ID {
		delete(m.sharedURLs, *s.SharedURL)
	}
	delete(m.snippets, s.ID)
}

func cloneSnippet(s model.Snippet) model.Snippet {
	if s.SharedURL != nil {
		link := *s.SharedURL
		s.SharedURL = &link
	}
	return s
}
