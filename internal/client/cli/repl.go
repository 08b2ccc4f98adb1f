package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isSignedIn() bool

	Anon(ctx context.Context) error
	Link(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error

	Mood(ctx context.Context, args []string) error
	Sleep(ctx context.Context, args []string) error
	Med(ctx context.Context, args []string) error
	Symptom(ctx context.Context, args []string) error
	Note(ctx context.Context, args []string) error
	Event(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	List(ctx context.Context) error

	Save(ctx context.Context, args []string) error
	Backup(ctx context.Context, args []string) error
	Restore(ctx context.Context, args []string) error

	Theme(ctx context.Context, args []string) error
	Nickname(ctx context.Context, args []string) error
}

const (
	helpSignedOut = "Available commands: anon, login, mood, sleep, med, symptom, note, event, show, (l)ist, theme, nickname, exit"
	helpSignedIn  = "Available commands: mood, sleep, med, symptom, note, event, show, (l)ist, save, backup, restore, link, whoami, logout, theme, nickname, exit"
)

// runREPL starts a simple read–eval–print loop for the daybook CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a' with the remaining tokens as arguments.
// Interactive prompts issued by a command read from the same reader. The
// loop exits on EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn). Journal commands take
// an optional leading date (YYYY-MM-DD, default today):
//
//	mood [date] [text]            set or clear the mood
//	sleep [date] <hours> [q]      record sleep, "clear" removes it
//	med | symptom | note | event  append a record (interactive)
//	show [date]                   print one day
//	list | l                      summarize local days
//	save [date] [--anon]          mirror one day
//	backup [--anon]               mirror every day
//	restore [mode] [--anon]       pull the mirror (preferLocal|overwrite)
//	anon | link | login | logout  manage the session
//	whoami                        print the current principal
//	theme [name] | nickname [n]   show or change preferences
//	exit | quit                   leave the program
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("daybook%s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isSignedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}

		case "anon":
			cmdErr = a.Anon(ctx)
		case "link":
			cmdErr = a.Link(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "whoami":
			cmdErr = a.Whoami(ctx)

		case "mood":
			cmdErr = a.Mood(ctx, args)
		case "sleep":
			cmdErr = a.Sleep(ctx, args)
		case "med":
			cmdErr = a.Med(ctx, args)
		case "symptom":
			cmdErr = a.Symptom(ctx, args)
		case "note":
			cmdErr = a.Note(ctx, args)
		case "event":
			cmdErr = a.Event(ctx, args)
		case "show":
			cmdErr = a.Show(ctx, args)
		case "l", "list":
			cmdErr = a.List(ctx)

		case "save":
			cmdErr = a.Save(ctx, args)
		case "backup":
			cmdErr = a.Backup(ctx, args)
		case "restore":
			cmdErr = a.Restore(ctx, args)

		case "theme":
			cmdErr = a.Theme(ctx, args)
		case "nickname":
			cmdErr = a.Nickname(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}
