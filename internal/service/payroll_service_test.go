package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"payroll/internal/entity"
	"payroll/internal/model/memory"
	"payroll/internal/storage"

	"github.com/shopspring/decimal"
)

func newTestUser(t *testing.T, repo *memory.Repository, username string) *entity.DbUser {
	t.Helper()
	user := &entity.DbUser{Username: username, Email: username + "@example.com", Role: entity.UserRoleUser, IsActive: true}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func money(v int64) entity.Money {
	return entity.NewMoney(decimal.NewFromInt(v))
}

func TestPayrollUpsertComputesNetAndDefaultsStatus(t *testing.T) {
	repo := memory.NewRepository()
	svc := NewPayrollService(repo)
	user := newTestUser(t, repo, "andi")

	record, err := svc.Upsert(context.Background(), user.ID, entity.PayrollUpsertRequest{
		Month:      "2024-01",
		BaseSalary: money(5000000),
		Allowances: money(200000),
		Deductions: money(100000),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !record.NetSalary.Equal(decimal.NewFromInt(5100000)) {
		t.Errorf("expected net 5100000, got %s", record.NetSalary)
	}
	if record.Status != entity.PayrollStatusPending {
		t.Errorf("expected pending, got %s", record.Status)
	}
}

func TestPayrollUpsertPreservesStatusAndCreatedAt(t *testing.T) {
	repo := memory.NewRepository()
	current := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	repo.SetClock(func() time.Time {
		current = current.Add(time.Minute)
		return current
	})
	svc := NewPayrollService(repo)
	user := newTestUser(t, repo, "sari")
	ctx := context.Background()

	first, err := svc.Upsert(ctx, user.ID, entity.PayrollUpsertRequest{Month: "2024-02", BaseSalary: money(1000), Status: "Transferred"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Status != entity.PayrollStatusTransferred {
		t.Fatalf("expected status to be normalised, got %s", first.Status)
	}

	second, err := svc.Upsert(ctx, user.ID, entity.PayrollUpsertRequest{Month: "2024-02", BaseSalary: money(2000), Notes: "raise"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Status != entity.PayrollStatusTransferred {
		t.Errorf("expected preserved status, got %s", second.Status)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("expected created_at %v, got %v", first.CreatedAt, second.CreatedAt)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("expected updated_at to advance")
	}

	history, err := svc.History(ctx, user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one record per month, got %d", len(history))
	}
}

func TestPayrollUpsertValidation(t *testing.T) {
	repo := memory.NewRepository()
	svc := NewPayrollService(repo)
	user := newTestUser(t, repo, "budi")

	tests := []struct {
		name   string
		userID uint
		req    entity.PayrollUpsertRequest
		want   error
	}{
		{name: "missing month", userID: user.ID, req: entity.PayrollUpsertRequest{}, want: ErrMonthRequired},
		{name: "bad month", userID: user.ID, req: entity.PayrollUpsertRequest{Month: "Jan 2024"}, want: ErrMonthRequired},
		{name: "bad status", userID: user.ID, req: entity.PayrollUpsertRequest{Month: "2024-01", Status: "paid"}, want: ErrInvalidStatus},
		{name: "unknown user", userID: 999, req: entity.PayrollUpsertRequest{Month: "2024-01"}, want: ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upsert(context.Background(), tt.userID, tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestPayrollRecordLookup(t *testing.T) {
	repo := memory.NewRepository()
	svc := NewPayrollService(repo)
	user := newTestUser(t, repo, "dewi")
	ctx := context.Background()

	if _, _, err := svc.Record(ctx, user.ID, "2024-04"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if _, err := svc.Upsert(ctx, user.ID, entity.PayrollUpsertRequest{Month: "2024-04"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gotUser, record, err := svc.Record(ctx, user.ID, " 2024-04 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUser.ID != user.ID || record.Month != "2024-04" {
		t.Fatalf("unexpected lookup result: %d %s", gotUser.ID, record.Month)
	}
}

func TestFormatSlipAmount(t *testing.T) {
	tests := []struct {
		in   decimal.Decimal
		want string
	}{
		{in: decimal.NewFromInt(5100000), want: "Rp 5,100,000.00"},
		{in: decimal.RequireFromString("1250.5"), want: "Rp 1,250.50"},
		{in: decimal.Zero, want: "Rp 0.00"},
		{in: decimal.RequireFromString("9007199254740993.07"), want: "Rp 9,007,199,254,740,993.07"},
		{in: decimal.RequireFromString("-75000.125"), want: "Rp -75,000.13"},
	}
	for _, tt := range tests {
		if got := FormatSlipAmount(tt.in); got != tt.want {
			t.Errorf("FormatSlipAmount(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlipRender(t *testing.T) {
	svc := NewSlipService()
	svc.now = func() time.Time { return time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC) }

	pdf, err := svc.Render(
		&entity.DbUser{ID: 4, Username: "andi", FullName: "Andi Wijaya", Department: "Finance"},
		&entity.DbPayrollRecord{Month: "2024-01", NetSalary: decimal.NewFromInt(5100000), Notes: "Bonus Q4"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF document")
	}
	if SlipFilename("andi", "2024-01") != "slip-gaji-andi-2024-01.pdf" {
		t.Fatalf("unexpected filename %s", SlipFilename("andi", "2024-01"))
	}
}

type recordingStorage struct {
	saved   map[string][]byte
	deleted []string
}

func (s *recordingStorage) Save(_ context.Context, data []byte, opts storage.SaveOptions) (string, error) {
	if s.saved == nil {
		s.saved = make(map[string][]byte)
	}
	key := opts.Category + "/" + opts.BaseName + "." + opts.Extension
	s.saved[key] = data
	return key, nil
}

func (s *recordingStorage) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	delete(s.saved, key)
	return nil
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestPictureUploadReplacesPrevious(t *testing.T) {
	repo := memory.NewRepository()
	store := &recordingStorage{}
	svc := NewPictureService(repo, store, 0)
	user := newTestUser(t, repo, "rina")
	ctx := context.Background()

	first, err := svc.Upload(ctx, user.ID, pngHeader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Upload(ctx, user.ID, pngHeader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Fatal("expected a fresh key per upload")
	}
	if len(store.deleted) != 1 || store.deleted[0] != first {
		t.Fatalf("expected previous picture %s to be deleted, got %v", first, store.deleted)
	}
	stored, _ := repo.GetUserByID(ctx, user.ID)
	if stored.ProfilePicture != second {
		t.Fatalf("expected user to reference %s, got %s", second, stored.ProfilePicture)
	}
}

func TestPictureUploadValidation(t *testing.T) {
	repo := memory.NewRepository()
	svc := NewPictureService(repo, &recordingStorage{}, 32)
	user := newTestUser(t, repo, "eko")

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{name: "empty", data: nil, want: ErrNoFile},
		{name: "too large", data: bytes.Repeat([]byte{0x89}, 33), want: ErrFileTooLarge},
		{name: "plain text", data: []byte("hello world"), want: ErrInvalidFileType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), user.ID, tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
