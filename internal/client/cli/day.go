package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/daybook/internal/client/models"
	"github.com/dmitrijs2005/daybook/internal/common"
)

var errUsage = errors.New("invalid arguments")

var dateShape = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`)

// dayArgs splits an optional leading YYYY-MM-DD from args. Today is used
// when no date is given. A first argument shaped like a date that is not a
// real one is an error rather than text.
func (a *App) dayArgs(args []string) (string, []string, error) {
	if len(args) > 0 {
		if models.ValidateDateKey(args[0]) == nil {
			return args[0], args[1:], nil
		}
		if dateShape.MatchString(args[0]) {
			return "", nil, fmt.Errorf("%w: %q is not a valid date (YYYY-MM-DD)", errUsage, args[0])
		}
	}
	return a.now().Format(common.DateKeyLayout), args, nil
}

// dateArg reads the optional date of a command that takes nothing else.
func (a *App) dateArg(args []string) (string, error) {
	switch len(args) {
	case 0:
		return a.now().Format(common.DateKeyLayout), nil
	case 1:
		if err := models.ValidateDateKey(args[0]); err != nil {
			return "", fmt.Errorf("%w: %q is not a valid date (YYYY-MM-DD)", errUsage, args[0])
		}
		return args[0], nil
	default:
		return "", fmt.Errorf("%w: expected at most one date", errUsage)
	}
}

func (a *App) clock() string {
	return a.now().Format(models.ClockLayout)
}

// prompt reads a single line, falling back to def when the answer is empty.
func (a *App) prompt(text, def string) (string, error) {
	if def != "" {
		text = fmt.Sprintf("%s [%s]", text, def)
	}
	v, err := getSimpleText(a.reader, text, a.out)
	if err != nil {
		return "", err
	}
	if v == "" {
		return def, nil
	}
	return v, nil
}

// Mood sets the mood of a day: mood [date] [text]. An empty answer clears it.
func (a *App) Mood(ctx context.Context, args []string) error {
	date, rest, err := a.dayArgs(args)
	if err != nil {
		return err
	}
	mood := strings.Join(rest, " ")
	if mood == "" {
		if mood, err = a.prompt("Enter mood (empty to clear)", ""); err != nil {
			return err
		}
	}

	if _, err := a.journal.SetMood(ctx, date, mood); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Mood updated for %s\n", date)
	return nil
}

// Sleep records sleep: sleep [date] <hours> [quality...] | sleep [date] clear.
func (a *App) Sleep(ctx context.Context, args []string) error {
	date, rest, err := a.dayArgs(args)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return fmt.Errorf("%w: sleep [date] <hours> [quality] | clear", errUsage)
	}

	var sleep *models.Sleep
	if rest[0] != "clear" {
		hours, err := strconv.ParseFloat(rest[0], 64)
		if err != nil {
			return fmt.Errorf("%w: hours must be a number", errUsage)
		}
		sleep = &models.Sleep{Hours: hours, Quality: strings.Join(rest[1:], " ")}
	}

	if _, err := a.journal.SetSleep(ctx, date, sleep); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Sleep updated for %s\n", date)
	return nil
}

func (a *App) Med(ctx context.Context, args []string) error {
	date, err := a.dateArg(args)
	if err != nil {
		return err
	}

	name, err := a.prompt("Medication name", "")
	if err != nil {
		return err
	}
	dose, err := a.prompt("Dose", "")
	if err != nil {
		return err
	}
	at, err := a.prompt("Taken at (HH:MM)", a.clock())
	if err != nil {
		return err
	}

	if _, err := a.journal.AddMedication(ctx, date, models.Medication{Name: name, Dose: dose, TakenAt: at}); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Medication added to %s\n", date)
	return nil
}

func (a *App) Symptom(ctx context.Context, args []string) error {
	date, err := a.dateArg(args)
	if err != nil {
		return err
	}

	name, err := a.prompt("Symptom", "")
	if err != nil {
		return err
	}
	sev, err := a.prompt("Severity (0-10)", "0")
	if err != nil {
		return err
	}
	severity, err := strconv.Atoi(sev)
	if err != nil {
		return fmt.Errorf("%w: severity must be a whole number", errUsage)
	}

	if _, err := a.journal.AddSymptom(ctx, date, models.Symptom{Name: name, Severity: severity}); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Symptom added to %s\n", date)
	return nil
}

func (a *App) Note(ctx context.Context, args []string) error {
	date, err := a.dateArg(args)
	if err != nil {
		return err
	}

	text, err := getMultiline(a.reader, "Enter note", a.out)
	if err != nil {
		return err
	}

	if _, err := a.journal.AddNote(ctx, date, models.Note{Text: text, At: a.clock()}); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Note added to %s\n", date)
	return nil
}

func (a *App) Event(ctx context.Context, args []string) error {
	date, err := a.dateArg(args)
	if err != nil {
		return err
	}

	at, err := a.prompt("At (HH:MM)", a.clock())
	if err != nil {
		return err
	}
	kind, err := a.prompt("Kind", "")
	if err != nil {
		return err
	}
	desc, err := a.prompt("Description", "")
	if err != nil {
		return err
	}

	ev := models.TimelineEvent{At: at, Kind: kind, Description: desc}
	if _, err := a.journal.AddTimelineEvent(ctx, date, ev); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Event added to %s\n", date)
	return nil
}

// Show prints one day as indented JSON.
func (a *App) Show(ctx context.Context, args []string) error {
	date, err := a.dateArg(args)
	if err != nil {
		return err
	}

	e, ok, err := a.journal.Get(ctx, date)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(a.out, "No entry for %s\n", date)
		return nil
	}

	b, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, string(b))
	return nil
}

// List prints one summary line per local day, oldest first.
func (a *App) List(ctx context.Context) error {
	entries, err := a.journal.List(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No entries")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tMOOD\tSLEEP\tMEDS\tSYMPTOMS\tNOTES\tEVENTS")
	for _, e := range entries {
		mood, sleep := "-", "-"
		if e.Mood != nil {
			mood = *e.Mood
		}
		if e.Sleep != nil {
			sleep = strconv.FormatFloat(e.Sleep.Hours, 'f', -1, 64) + "h"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			e.Date, mood, sleep, len(e.Medications), len(e.Symptoms), len(e.Notes), len(e.TimelineEvents))
	}
	return w.Flush()
}
