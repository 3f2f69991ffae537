package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"payroll/internal/console/domain"
	"payroll/internal/console/view"

	"github.com/sirupsen/logrus"
)

type Mode string

const (
	ModeUsers     Mode = "users"
	ModeDirectory Mode = "directory"
	ModePayroll   Mode = "payroll"
)

const (
	ViewUsers          = "users"
	ViewDirectory      = "directory"
	ViewPayrollInput   = "payroll-input"
	ViewPayrollHistory = "payroll-history"
	ViewPDFList        = "pdf-list"
)

// Controller owns the console state: which views are mounted, the shared
// user cache, the payroll modal and the notifications.
type Controller struct {
	store    *Store
	notifier *Notifier
	log      logrus.FieldLogger

	users          *UsersView
	directory      *UsersView
	payrollInput   *UsersView
	payrollHistory *UsersView
	pdfList        *UsersView
	modal          *ModalView

	orchestrator *Orchestrator

	mu   sync.Mutex
	mode Mode
}

func NewController(backend Backend, notifier *Notifier, log logrus.FieldLogger) *Controller {
	store := NewStore(backend, log)
	c := &Controller{
		store:          store,
		notifier:       notifier,
		log:            log,
		users:          newUsersView(ViewUsers, store, view.UserTable, log),
		directory:      newUsersView(ViewDirectory, store, view.Directory, log),
		payrollInput:   newUsersView(ViewPayrollInput, store, view.PayrollInput, log),
		payrollHistory: newUsersView(ViewPayrollHistory, store, view.PayrollHistory, log),
		pdfList:        newUsersView(ViewPDFList, store, view.PDFList, log),
		modal:          newModalView(backend),
		mode:           ModeUsers,
	}
	c.orchestrator = NewOrchestrator(backend, store, c.Views, c.modal, log)
	c.users.Mount()
	c.payrollInput.Mount()
	return c
}

// Views lists every user list view in display order.
func (c *Controller) Views() []View {
	return []View{c.users, c.directory, c.payrollInput, c.payrollHistory, c.pdfList}
}

func (c *Controller) Orchestrator() *Orchestrator { return c.orchestrator }

func (c *Controller) Notifier() *Notifier { return c.notifier }

func (c *Controller) Store() *Store { return c.store }

func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Start loads the initially mounted views.
func (c *Controller) Start(ctx context.Context) error {
	return c.orchestrator.Cascade(ctx, 0)
}

// SetMode switches the visible panel and loads the views it mounts.
func (c *Controller) SetMode(ctx context.Context, mode Mode) error {
	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()

	var mounted []View
	switch mode {
	case ModeDirectory:
		c.directory.setQuery("")
		c.directory.Mount()
		c.payrollHistory.Unmount()
		c.pdfList.Unmount()
		mounted = append(mounted, c.directory)
	case ModePayroll:
		c.directory.Unmount()
		c.payrollHistory.Mount()
		c.pdfList.Mount()
		mounted = append(mounted, c.payrollHistory, c.pdfList)
	default:
		c.directory.Unmount()
		c.payrollHistory.Unmount()
		c.pdfList.Unmount()
	}

	for _, v := range mounted {
		if err := v.Refresh(ctx); err != nil {
			return fmt.Errorf("load %s: %w", v.Name(), err)
		}
	}
	return nil
}

// Search filters the directory from the cached list, reloading it when the
// cache was invalidated.
func (c *Controller) Search(ctx context.Context, query string) (view.Table, error) {
	if err := c.directory.SetQuery(ctx, query); err != nil {
		return view.Table{}, fmt.Errorf("search users: %w", err)
	}
	return c.directory.Table(), nil
}

// OpenModal shows the payroll modal of userID and loads its history.
func (c *Controller) OpenModal(ctx context.Context, userID uint) error {
	if userID == 0 {
		return &domain.ValidationError{Field: "employee", Message: "Please select an employee for payroll."}
	}
	c.modal.Open(userID)
	return c.modal.Refresh(ctx)
}

func (c *Controller) CloseModal() {
	c.modal.Unmount()
}

func (c *Controller) Modal() *ModalView { return c.modal }

// EmployeeOptions lists the role user accounts for the payroll employee
// picker. A failed load degrades to an empty list.
func (c *Controller) EmployeeOptions(ctx context.Context) []domain.User {
	users, err := c.store.Users(ctx)
	if err != nil {
		c.log.WithError(err).Warn("failed to load employees for payroll select")
		return []domain.User{}
	}
	return domain.PayrollUsers(users)
}

// Table returns the last rendering of a view by name.
func (c *Controller) Table(name string) (view.Table, bool) {
	if name == c.modal.Name() {
		return c.modal.Table(), c.modal.Mounted()
	}
	for _, v := range c.Views() {
		if v.Name() == name {
			return v.Table(), v.Mounted()
		}
	}
	return view.Table{}, false
}

// Tables returns the renderings of the mounted views in display order.
func (c *Controller) Tables() []view.Table {
	var out []view.Table
	for _, v := range c.Views() {
		if v.Mounted() {
			out = append(out, v.Table())
		}
	}
	if c.modal.Mounted() {
		out = append(out, c.modal.Table())
	}
	return out
}

// Run executes one operator action. Any error is turned into a single
// failure notification and reported as false; a non empty success message
// becomes a success notification.
func (c *Controller) Run(ctx context.Context, action func(ctx context.Context) (string, error)) bool {
	message, err := action(ctx)
	if err != nil {
		c.log.WithError(err).Debug("action failed")
		c.notifier.Failure(FailureMessage(err))
		return false
	}
	if message != "" {
		c.notifier.Success(message)
	}
	return true
}

// FailureMessage is the operator facing text of an action error.
func FailureMessage(err error) string {
	var (
		validation *domain.ValidationError
		notFound   *domain.NotFoundError
		backend    *domain.BackendError
		network    *domain.NetworkError
	)
	switch {
	case errors.As(err, &validation):
		return validation.Error()
	case errors.As(err, &notFound):
		return notFound.Error()
	case errors.As(err, &backend):
		return backend.Error()
	case errors.As(err, &network):
		return "Network error: " + network.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Request cancelled"
	default:
		return err.Error()
	}
}
