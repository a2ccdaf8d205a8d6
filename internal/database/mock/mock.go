package mock

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jon4hz/bookshelf/internal/database"
)

var _ database.DB = (*MockDB)(nil)

// MockDB is a mock implementation of database.DB for testing.
type MockDB struct {
	mu sync.RWMutex

	// User storage
	users      map[uint]*database.User
	nextUserID uint

	// Role storage
	roles      map[uint]*database.Role
	nextRoleID uint
	userRoles  map[uint][]uint

	// Book storage
	books      map[uint]*database.Book
	nextBookID uint

	// Error simulation
	MigrateError            error
	CreateUserError         error
	GetUserByIDError        error
	GetUserByEmailError     error
	GetAllUsersError        error
	UpdateUserProfileError  error
	UpdateUserPasswordError error
	GetOrCreateRoleError    error
	AssignRolesError        error
	GetAllRolesError        error
	GetBooksError           error
	GetBookByIDError        error
	CreateBookError         error
	UpdateBookError         error
	CountBooksError         error
	DeleteAllBooksError     error
	ReplaceBooksError       error
}

// NewMockDB creates a new MockDB instance.
func NewMockDB() *MockDB {
	m := &MockDB{}
	m.reset()
	return m
}

// Reset clears all data and errors from the mock database.
func (m *MockDB) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reset()

	m.MigrateError = nil
	m.CreateUserError = nil
	m.GetUserByIDError = nil
	m.GetUserByEmailError = nil
	m.GetAllUsersError = nil
	m.UpdateUserProfileError = nil
	m.UpdateUserPasswordError = nil
	m.GetOrCreateRoleError = nil
	m.AssignRolesError = nil
	m.GetAllRolesError = nil
	m.GetBooksError = nil
	m.GetBookByIDError = nil
	m.CreateBookError = nil
	m.UpdateBookError = nil
	m.CountBooksError = nil
	m.DeleteAllBooksError = nil
	m.ReplaceBooksError = nil
}

func (m *MockDB) reset() {
	m.users = make(map[uint]*database.User)
	m.nextUserID = 1
	m.roles = make(map[uint]*database.Role)
	m.nextRoleID = 1
	m.userRoles = make(map[uint][]uint)
	m.books = make(map[uint]*database.Book)
	m.nextBookID = 1
}

func (m *MockDB) Migrate() error {
	return m.MigrateError
}

func (m *MockDB) Close() error {
	return nil
}

// User operations

func (m *MockDB) CreateUser(ctx context.Context, user *database.User, roles ...string) error {
	if m.CreateUserError != nil {
		return m.CreateUserError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user.Email = database.NormalizeEmail(user.Email)
	if user.Email == "" {
		return fmt.Errorf("email is required")
	}
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return database.ErrDuplicate
		}
	}

	now := time.Now()
	user.ID = m.nextUserID
	m.nextUserID++
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	stored.Roles = nil
	m.users[user.ID] = &stored

	m.assignRoles(user.ID, roles)
	user.Roles = m.rolesOf(user.ID)
	return nil
}

func (m *MockDB) GetUserByID(ctx context.Context, id uint) (*database.User, error) {
	if m.GetUserByIDError != nil {
		return nil, m.GetUserByIDError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return m.withRoles(user), nil
}

func (m *MockDB) GetUserByEmail(ctx context.Context, email string) (*database.User, error) {
	if m.GetUserByEmailError != nil {
		return nil, m.GetUserByEmailError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	email = database.NormalizeEmail(email)
	for _, user := range m.users {
		if user.Email == email {
			return m.withRoles(user), nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *MockDB) GetAllUsers(ctx context.Context) ([]database.User, error) {
	if m.GetAllUsersError != nil {
		return nil, m.GetAllUsersError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]database.User, 0, len(m.users))
	for _, id := range sortedKeys(m.users) {
		users = append(users, *m.withRoles(m.users[id]))
	}
	return users, nil
}

func (m *MockDB) UpdateUserProfile(ctx context.Context, id uint, firstName, lastName string) error {
	if m.UpdateUserProfileError != nil {
		return m.UpdateUserProfileError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return database.ErrNotFound
	}
	user.FirstName = strings.TrimSpace(firstName)
	user.LastName = strings.TrimSpace(lastName)
	user.UpdatedAt = time.Now()
	return nil
}

func (m *MockDB) UpdateUserPassword(ctx context.Context, id uint, digest string) error {
	if m.UpdateUserPasswordError != nil {
		return m.UpdateUserPasswordError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return database.ErrNotFound
	}
	user.Password = digest
	user.UpdatedAt = time.Now()
	return nil
}

// SetUserActive toggles the active flag of a stored user.
func (m *MockDB) SetUserActive(id uint, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user, ok := m.users[id]; ok {
		user.Active = active
	}
}

// Role operations

func (m *MockDB) GetOrCreateRole(ctx context.Context, name string) (*database.Role, error) {
	if m.GetOrCreateRoleError != nil {
		return nil, m.GetOrCreateRoleError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	role := *m.getOrCreateRole(name)
	return &role, nil
}

func (m *MockDB) AssignRoles(ctx context.Context, userID uint, roles ...string) error {
	if m.AssignRolesError != nil {
		return m.AssignRolesError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[userID]; !ok {
		return database.ErrNotFound
	}
	m.assignRoles(userID, roles)
	return nil
}

func (m *MockDB) GetAllRoles(ctx context.Context) ([]database.Role, error) {
	if m.GetAllRolesError != nil {
		return nil, m.GetAllRolesError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	roles := make([]database.Role, 0, len(m.roles))
	for _, role := range m.roles {
		roles = append(roles, *role)
	}
	slices.SortFunc(roles, func(a, b database.Role) int { return strings.Compare(a.Name, b.Name) })
	return roles, nil
}

func (m *MockDB) getOrCreateRole(name string) *database.Role {
	for _, role := range m.roles {
		if role.Name == name {
			return role
		}
	}
	role := &database.Role{ID: m.nextRoleID, Name: name}
	m.nextRoleID++
	m.roles[role.ID] = role
	return role
}

func (m *MockDB) assignRoles(userID uint, names []string) {
	for _, name := range names {
		role := m.getOrCreateRole(name)
		if !slices.Contains(m.userRoles[userID], role.ID) {
			m.userRoles[userID] = append(m.userRoles[userID], role.ID)
		}
	}
}

func (m *MockDB) rolesOf(userID uint) []database.Role {
	var roles []database.Role
	for _, id := range m.userRoles[userID] {
		roles = append(roles, *m.roles[id])
	}
	return roles
}

func (m *MockDB) withRoles(user *database.User) *database.User {
	u := *user
	u.Roles = m.rolesOf(user.ID)
	return &u
}

// Book operations

func (m *MockDB) GetBooks(ctx context.Context) ([]database.Book, error) {
	if m.GetBooksError != nil {
		return nil, m.GetBooksError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	books := make([]database.Book, 0, len(m.books))
	for _, id := range sortedKeys(m.books) {
		books = append(books, *m.books[id])
	}
	return books, nil
}

func (m *MockDB) GetBookByID(ctx context.Context, id uint) (*database.Book, error) {
	if m.GetBookByIDError != nil {
		return nil, m.GetBookByIDError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	book, ok := m.books[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	b := *book
	return &b, nil
}

func (m *MockDB) CreateBook(ctx context.Context, book *database.Book) error {
	if m.CreateBookError != nil {
		return m.CreateBookError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	book.ID = 0
	if m.conflicts(book) {
		return database.ErrDuplicate
	}
	m.insertBook(book)
	return nil
}

func (m *MockDB) UpdateBook(ctx context.Context, book *database.Book) error {
	if m.UpdateBookError != nil {
		return m.UpdateBookError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.books[book.ID]
	if !ok {
		return database.ErrNotFound
	}
	if m.conflicts(book) {
		return database.ErrDuplicate
	}
	existing.Author = book.Author
	existing.Title = book.Title
	existing.Description = book.Description
	existing.UpdatedAt = time.Now()
	book.CreatedAt = existing.CreatedAt
	book.UpdatedAt = existing.UpdatedAt
	return nil
}

func (m *MockDB) CountBooks(ctx context.Context) (int64, error) {
	if m.CountBooksError != nil {
		return 0, m.CountBooksError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.books)), nil
}

func (m *MockDB) DeleteAllBooks(ctx context.Context) (int64, error) {
	if m.DeleteAllBooksError != nil {
		return 0, m.DeleteAllBooksError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	n := int64(len(m.books))
	m.books = make(map[uint]*database.Book)
	return n, nil
}

func (m *MockDB) ReplaceBooks(ctx context.Context, books []database.Book) error {
	if m.ReplaceBooksError != nil {
		return m.ReplaceBooksError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	previous := m.books
	m.books = make(map[uint]*database.Book)
	for i := range books {
		books[i].ID = 0
		if m.conflicts(&books[i]) {
			m.books = previous
			return database.ErrDuplicate
		}
		m.insertBook(&books[i])
	}
	return nil
}

func (m *MockDB) insertBook(book *database.Book) {
	now := time.Now()
	book.ID = m.nextBookID
	m.nextBookID++
	book.CreatedAt = now
	book.UpdatedAt = now
	b := *book
	m.books[b.ID] = &b
}

func (m *MockDB) conflicts(book *database.Book) bool {
	for id, other := range m.books {
		if id == book.ID {
			continue
		}
		if other.Author == book.Author || other.Title == book.Title || other.Description == book.Description {
			return true
		}
	}
	return false
}

func sortedKeys[V any](items map[uint]V) []uint {
	keys := make([]uint, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
