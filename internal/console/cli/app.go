// Package cli is the interactive payroll console. It logs an administrator in
// against the REST API, keeps the console views of internal/console/app in
// sync and prints them as text tables.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"payroll/internal/config"
	"payroll/internal/console/app"
	"payroll/internal/console/client"
	"payroll/internal/console/domain"

	"github.com/sirupsen/logrus"
)

// Session is the part of the API client that is not a data operation.
type Session interface {
	Login(ctx context.Context, username, password string) (domain.User, error)
	Logout(ctx context.Context) error
	DownloadSlip(ctx context.Context, userID uint, month string, w io.Writer) error
	PDFURL(userID uint, month string) string
}

// API is what the console needs from the backend client.
type API interface {
	app.Backend
	Session
}

var errActionFailed = errors.New("action failed")

type App struct {
	api      API
	ctrl     *app.Controller
	reader   *bufio.Reader
	out      io.Writer
	log      logrus.FieldLogger
	username string

	mu   sync.Mutex
	user *domain.User
}

// NewApp builds the console for cfg against the real REST client.
func NewApp(cfg config.ConsoleConfig, log logrus.FieldLogger) (*App, error) {
	api, err := client.New(cfg.BaseURL, nil)
	if err != nil {
		return nil, err
	}
	ttl := time.Duration(cfg.NotifySeconds) * time.Second
	return newApp(api, bufio.NewReader(os.Stdin), os.Stdout, log, ttl, cfg.Username), nil
}

func newApp(api API, reader *bufio.Reader, out io.Writer, log logrus.FieldLogger, ttl time.Duration, username string) *App {
	a := &App{api: api, reader: reader, out: out, log: log, username: username}
	notifier := app.NewNotifier(ttl, a.printNotification)
	a.ctrl = app.NewController(api, notifier, log)
	return a
}

// Run starts the REPL and blocks until the operator exits.
func (a *App) Run(ctx context.Context) {
	defer a.ctrl.Notifier().Stop()
	printlnFn("Payroll console. Type help for commands.")
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user != nil
}

func (a *App) status() string {
	a.mu.Lock()
	user := a.user
	a.mu.Unlock()
	if user == nil {
		return "(logged out)"
	}
	status := fmt.Sprintf("%s [%s]", user.Username, a.ctrl.Mode())
	if id := a.ctrl.Modal().UserID(); id != 0 {
		status += fmt.Sprintf(" modal #%d", id)
	}
	return status
}

func (a *App) printNotification(n app.Notification) {
	prefix := "[ok]"
	if n.Kind == app.KindFailure {
		prefix = "[error]"
	}
	fmt.Fprintln(a.out, prefix, n.Message)
}

// run executes action through the controller so every error becomes one
// failure notification.
func (a *App) run(ctx context.Context, action func(ctx context.Context) (string, error)) error {
	if !a.ctrl.Run(ctx, action) {
		return errActionFailed
	}
	return nil
}

func (a *App) printTable(name string) error {
	table, ok := a.ctrl.Table(name)
	if !ok {
		return nil
	}
	if err := table.Render(a.out); err != nil {
		return err
	}
	_, err := fmt.Fprintln(a.out)
	return err
}

func (a *App) printMounted() error {
	for _, table := range a.ctrl.Tables() {
		if err := table.Render(a.out); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(a.out); err != nil {
			return err
		}
	}
	return nil
}

func parseID(args []string, index int) (uint, error) {
	if len(args) <= index {
		return 0, &domain.ValidationError{Field: "id"}
	}
	id, err := strconv.ParseUint(args[index], 10, 64)
	if err != nil || id == 0 {
		return 0, &domain.ValidationError{Field: "id", Message: fmt.Sprintf("invalid id %q", args[index])}
	}
	return uint(id), nil
}
