package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	args     [][]string
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Login(ctx context.Context, args []string) error {
	f.loggedIn = true
	return f.record("login", args)
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout", nil)
}
func (f *fakeExec) ShowUsers(ctx context.Context) error     { return f.record("users", nil) }
func (f *fakeExec) ShowDirectory(ctx context.Context) error { return f.record("directory", nil) }
func (f *fakeExec) Search(ctx context.Context, query string) error {
	return f.record("search", []string{query})
}
func (f *fakeExec) ShowPayroll(ctx context.Context) error { return f.record("payroll", nil) }
func (f *fakeExec) ShowTables(ctx context.Context) error  { return f.record("tables", nil) }
func (f *fakeExec) Refresh(ctx context.Context) error     { return f.record("refresh", nil) }
func (f *fakeExec) Employees(ctx context.Context) error   { return f.record("employees", nil) }
func (f *fakeExec) OpenModal(ctx context.Context, args []string) error {
	return f.record("modal", args)
}
func (f *fakeExec) CloseModal(ctx context.Context) error { return f.record("close", nil) }
func (f *fakeExec) CreateUser(ctx context.Context) error { return f.record("create", nil) }
func (f *fakeExec) EditUser(ctx context.Context, args []string) error {
	return f.record("edit", args)
}
func (f *fakeExec) DeleteUser(ctx context.Context, args []string) error {
	return f.record("delete", args)
}
func (f *fakeExec) UploadPicture(ctx context.Context, args []string) error {
	return f.record("upload", args)
}
func (f *fakeExec) UpsertPayroll(ctx context.Context, args []string) error {
	return f.record("upsert", args)
}
func (f *fakeExec) SetStatus(ctx context.Context, args []string) error {
	return f.record("status", args)
}
func (f *fakeExec) DownloadSlip(ctx context.Context, args []string) error {
	return f.record("slip", args)
}
func (f *fakeExec) Notifications(ctx context.Context) error { return f.record("alerts", nil) }

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, 0, len(a))
		for _, v := range a {
			if s, ok := v.(string); ok {
				parts = append(parts, s)
			}
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPLRequiresLogin(t *testing.T) {
	out := captureOutput(t)
	exec := &fakeExec{}

	runREPL(context.Background(), exec, func() string { return "" }, rdr("users\nhelp\nexit\n"))

	assert.Empty(t, exec.calls)
	assert.Contains(t, *out, "Please login first")
	assert.Contains(t, *out, helpLoggedOut)
	assert.Contains(t, *out, "Bye!")
}

func TestRunREPLDispatchesCommands(t *testing.T) {
	out := captureOutput(t)
	exec := &fakeExec{}

	input := strings.Join([]string{
		"login admin",
		"",
		"users",
		"DIRECTORY",
		"search ani accounting",
		"payroll",
		"modal 3",
		"upsert",
		"status 3 2024-01 transferred",
		"slip 3 2024-01 out.pdf",
		"close",
		"delete 4",
		"reports",
		"logout",
		"users",
	}, "\n")

	runREPL(context.Background(), exec, func() string { return "admin" }, rdr(input))

	assert.Equal(t, []string{
		"login", "users", "directory", "search", "payroll", "modal",
		"upsert", "status", "slip", "close", "delete", "logout",
	}, exec.calls)
	assert.Equal(t, []string{"admin"}, exec.args[0])
	assert.Equal(t, []string{"ani accounting"}, exec.args[3])
	assert.Equal(t, []string{"3", "2024-01", "transferred"}, exec.args[7])
	assert.Contains(t, *out, "Unknown command: reports")
	assert.Contains(t, *out, "Please login first")
}

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}
