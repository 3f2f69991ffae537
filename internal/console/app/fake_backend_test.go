package app

import (
	"context"
	"io"
	"sync"
	"time"

	"payroll/internal/console/domain"
)

// fakeBackend is an in-memory stand-in for the REST API. Net salary is
// computed here the way the server does it.
type fakeBackend struct {
	mu      sync.Mutex
	nextID  uint
	order   []uint
	users   map[uint]domain.User
	history map[uint][]domain.PayrollRecord
	now     time.Time

	listCalls    int
	historyCalls map[uint]int
	upserts      []domain.PayrollUpsert

	listErr   error
	upsertErr error
	deleteErr error
	// onList runs before every ListUsers response is returned.
	onList func(call int)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		users:        make(map[uint]domain.User),
		history:      make(map[uint][]domain.PayrollRecord),
		historyCalls: make(map[uint]int),
		now:          time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC),
	}
}

func (f *fakeBackend) tick() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

func (f *fakeBackend) addUser(u domain.User) domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u.ID = f.nextID
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	f.users[u.ID] = u
	f.order = append(f.order, u.ID)
	return u
}

func (f *fakeBackend) addRecord(userID uint, r domain.PayrollRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = f.tick()
	}
	f.history[userID] = append(f.history[userID], r)
}

func (f *fakeBackend) ListUsers(ctx context.Context) ([]domain.User, error) {
	f.mu.Lock()
	f.listCalls++
	call := f.listCalls
	hook := f.onList
	if f.listErr != nil {
		err := f.listErr
		f.mu.Unlock()
		return nil, err
	}
	out := make([]domain.User, 0, len(f.order))
	for _, id := range f.order {
		u := f.users[id]
		u.PayrollHistory = domain.NormalizeHistory(f.history[id])
		out = append(out, u)
	}
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	return out, nil
}

func (f *fakeBackend) History(ctx context.Context, userID uint) ([]domain.PayrollRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyCalls[userID]++
	if _, ok := f.users[userID]; !ok {
		return nil, &domain.NotFoundError{Resource: "user"}
	}
	return domain.NormalizeHistory(f.history[userID]), nil
}

func (f *fakeBackend) Upsert(ctx context.Context, userID uint, in domain.PayrollUpsert) (domain.PayrollRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, in)
	if f.upsertErr != nil {
		return domain.PayrollRecord{}, f.upsertErr
	}
	if _, ok := f.users[userID]; !ok {
		return domain.PayrollRecord{}, &domain.BackendError{StatusCode: 404, Message: "User not found"}
	}

	status := in.Status
	records := f.history[userID]
	for i, r := range records {
		if r.Month != in.Month {
			continue
		}
		if status == "" {
			status = r.Status
		}
		records[i] = f.record(in, status, r.CreatedAt)
		return records[i], nil
	}
	if status == "" {
		status = domain.StatusPending
	}
	record := f.record(in, status, time.Time{})
	f.history[userID] = append(records, record)
	return record, nil
}

func (f *fakeBackend) record(in domain.PayrollUpsert, status string, createdAt time.Time) domain.PayrollRecord {
	now := f.tick()
	if createdAt.IsZero() {
		createdAt = now
	}
	return domain.PayrollRecord{
		Month:      in.Month,
		BaseSalary: in.BaseSalary,
		Allowances: in.Allowances,
		Deductions: in.Deductions,
		NetSalary:  in.BaseSalary.Add(in.Allowances).Sub(in.Deductions),
		Status:     status,
		Notes:      in.Notes,
		CreatedAt:  createdAt,
		UpdatedAt:  now,
	}
}

func (f *fakeBackend) CreateUser(ctx context.Context, in domain.UserInput) (domain.User, error) {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return f.addUser(domain.User{
		Username:             in.Username,
		Email:                in.Email,
		FullName:             in.FullName,
		Role:                 in.Role,
		IsActive:             active,
		Department:           in.Department,
		Position:             in.Position,
		Phone:                in.Phone,
		EmergencyContactName: in.EmergencyContactName,
	}), nil
}

func (f *fakeBackend) UpdateUser(ctx context.Context, userID uint, in domain.UserInput) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return domain.User{}, &domain.BackendError{StatusCode: 404, Message: "User not found"}
	}
	if in.FullName != "" {
		u.FullName = in.FullName
	}
	if in.Department != "" {
		u.Department = in.Department
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	f.users[userID] = u
	return u, nil
}

func (f *fakeBackend) DeleteUser(ctx context.Context, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.users[userID]; !ok {
		return &domain.BackendError{StatusCode: 404, Message: "User not found"}
	}
	delete(f.users, userID)
	delete(f.history, userID)
	for i, id := range f.order {
		if id == userID {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeBackend) UploadPicture(ctx context.Context, userID uint, filename string, data io.Reader) (string, error) {
	if _, err := io.ReadAll(data); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return "", &domain.BackendError{StatusCode: 404, Message: "User not found"}
	}
	u.ProfilePicture = "/media/profile_pics/" + filename
	f.users[userID] = u
	return u.ProfilePicture, nil
}

func (f *fakeBackend) calls() (list int, upserts []domain.PayrollUpsert) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, append([]domain.PayrollUpsert(nil), f.upserts...)
}

func (f *fakeBackend) historyCallsFor(userID uint) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.historyCalls[userID]
}
