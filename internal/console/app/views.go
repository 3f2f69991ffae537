package app

import (
	"context"
	"sync"

	"payroll/internal/console/domain"
	"payroll/internal/console/search"
	"payroll/internal/console/view"

	"github.com/sirupsen/logrus"
)

// View is a mountable table. Refresh refetches its data and rebuilds the
// table; it is safe to call repeatedly.
type View interface {
	Name() string
	Mount()
	Unmount()
	Mounted() bool
	Refresh(ctx context.Context) error
	Table() view.Table
}

type mountState struct {
	mu      sync.RWMutex
	mounted bool
	table   view.Table
}

func (m *mountState) Mount() {
	m.mu.Lock()
	m.mounted = true
	m.mu.Unlock()
}

func (m *mountState) Unmount() {
	m.mu.Lock()
	m.mounted = false
	m.mu.Unlock()
}

func (m *mountState) Mounted() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mounted
}

func (m *mountState) Table() view.Table {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.table
}

func (m *mountState) setTable(t view.Table) {
	m.mu.Lock()
	m.table = t
	m.mu.Unlock()
}

// UsersView renders the user list through one of the view functions.
type UsersView struct {
	mountState
	name   string
	store  *Store
	render func([]domain.User) view.Table
	log    logrus.FieldLogger

	queryMu sync.RWMutex
	query   string
}

func newUsersView(name string, store *Store, render func([]domain.User) view.Table, log logrus.FieldLogger) *UsersView {
	return &UsersView{name: name, store: store, render: render, log: log}
}

func (v *UsersView) Name() string { return v.name }

func (v *UsersView) setQuery(query string) {
	v.queryMu.Lock()
	v.query = query
	v.queryMu.Unlock()
}

// SetQuery filters the rendered rows. The cached list is reused; after an
// invalidation the list is loaded again and a failed load is returned.
func (v *UsersView) SetQuery(ctx context.Context, query string) error {
	v.setQuery(query)
	users, err := v.store.Users(ctx)
	if err != nil {
		return err
	}
	v.build(users)
	return nil
}

func (v *UsersView) Refresh(ctx context.Context) error {
	users, err := v.store.Fetch(ctx)
	if err != nil {
		return err
	}
	v.build(users)
	return nil
}

func (v *UsersView) build(users []domain.User) {
	v.queryMu.RLock()
	query := v.query
	v.queryMu.RUnlock()

	table := v.render(search.FilterUsers(users, query))
	for _, row := range table.Rows {
		if row.Status != nil && !row.Status.Recognized {
			v.log.WithFields(logrus.Fields{
				"view":    v.name,
				"user_id": row.UserID,
				"month":   row.Status.LatestMonth,
				"raw":     row.Status.Raw,
			}).Warn("unknown payroll status, showing pending")
		}
	}
	v.setTable(table)
}

// ModalView is the history panel of the payroll modal of one user.
type ModalView struct {
	mountState
	backend Backend

	userMu sync.RWMutex
	userID uint
}

func newModalView(backend Backend) *ModalView {
	return &ModalView{backend: backend}
}

func (v *ModalView) Name() string { return "payroll-modal" }

// Open mounts the modal for userID.
func (v *ModalView) Open(userID uint) {
	v.userMu.Lock()
	v.userID = userID
	v.userMu.Unlock()
	v.setTable(view.Table{})
	v.Mount()
}

// UserID is the user whose history is shown, or 0.
func (v *ModalView) UserID() uint {
	if !v.Mounted() {
		return 0
	}
	v.userMu.RLock()
	defer v.userMu.RUnlock()
	return v.userID
}

func (v *ModalView) Refresh(ctx context.Context) error {
	userID := v.UserID()
	if userID == 0 {
		return nil
	}
	history, err := v.backend.History(ctx, userID)
	if err != nil {
		return err
	}
	v.setTable(view.ModalHistory(userID, history))
	return nil
}
