package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. *App satisfies it.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	ShowUsers(ctx context.Context) error
	ShowDirectory(ctx context.Context) error
	Search(ctx context.Context, query string) error
	ShowPayroll(ctx context.Context) error
	ShowTables(ctx context.Context) error
	Refresh(ctx context.Context) error
	Employees(ctx context.Context) error
	OpenModal(ctx context.Context, args []string) error
	CloseModal(ctx context.Context) error
	CreateUser(ctx context.Context) error
	EditUser(ctx context.Context, args []string) error
	DeleteUser(ctx context.Context, args []string) error
	UploadPicture(ctx context.Context, args []string) error
	UpsertPayroll(ctx context.Context, args []string) error
	SetStatus(ctx context.Context, args []string) error
	DownloadSlip(ctx context.Context, args []string) error
	Notifications(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: login [username], help, exit"
	helpLoggedIn  = `Available commands:
  users | directory | payroll          switch the visible panel
  search <text>                        filter the directory
  tables | refresh                     show or reload the mounted tables
  employees                            list payroll employees
  modal <id> | close                   open or close a payroll modal
  create | edit <id> | delete <id>     manage users
  upload <id> <file>                   set a profile picture
  upsert [id]                          create or replace a payroll month
  status <id> <month> <status>         change the status of a payroll month
  slip <id> <month> [file]             download a payroll slip
  alerts                               show active notifications
  logout | exit`
)

// runREPL reads one command per line and dispatches it to a until EOF or
// exit. Handlers share reader for their prompts. Handler errors are already
// reported to the operator, so they are ignored here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("payroll %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		case "login":
			_ = a.Login(ctx, args)
			continue
		}

		if !a.isLoggedIn() {
			printlnFn("Please login first")
			continue
		}

		switch cmd {
		case "logout":
			_ = a.Logout(ctx)
		case "users":
			_ = a.ShowUsers(ctx)
		case "directory", "dir":
			_ = a.ShowDirectory(ctx)
		case "search":
			_ = a.Search(ctx, strings.Join(args, " "))
		case "payroll":
			_ = a.ShowPayroll(ctx)
		case "tables", "ls":
			_ = a.ShowTables(ctx)
		case "refresh":
			_ = a.Refresh(ctx)
		case "employees":
			_ = a.Employees(ctx)
		case "modal":
			_ = a.OpenModal(ctx, args)
		case "close":
			_ = a.CloseModal(ctx)
		case "create":
			_ = a.CreateUser(ctx)
		case "edit":
			_ = a.EditUser(ctx, args)
		case "delete":
			_ = a.DeleteUser(ctx, args)
		case "upload":
			_ = a.UploadPicture(ctx, args)
		case "upsert":
			_ = a.UpsertPayroll(ctx, args)
		case "status":
			_ = a.SetStatus(ctx, args)
		case "slip":
			_ = a.DownloadSlip(ctx, args)
		case "alerts":
			_ = a.Notifications(ctx)
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
