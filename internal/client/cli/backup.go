package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/daybook/internal/client/services"
)

const anonFlag = "--anon"

// syncArgs strips the --anon flag from args and turns it into a sync option.
func syncArgs(args []string) ([]string, []services.SyncOption) {
	var (
		rest []string
		opts []services.SyncOption
	)
	for _, arg := range args {
		if arg == anonFlag {
			opts = append(opts, services.AllowAnonymous())
			continue
		}
		rest = append(rest, arg)
	}
	return rest, opts
}

// Save mirrors a single day: save [date] [--anon].
func (a *App) Save(ctx context.Context, args []string) error {
	rest, opts := syncArgs(args)
	date, err := a.dateArg(rest)
	if err != nil {
		return err
	}

	res, err := a.syncer.SaveDay(ctx, date, opts...)
	if err != nil {
		return err
	}
	if res.Skipped {
		fmt.Fprintf(a.out, "Skipped %s: %s\n", date, res.Reason)
		return nil
	}
	fmt.Fprintf(a.out, "Saved %s\n", date)
	return nil
}

// Backup mirrors every local day: backup [--anon].
func (a *App) Backup(ctx context.Context, args []string) error {
	_, opts := syncArgs(args)

	n, err := a.syncer.BackupAll(ctx, opts...)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Backed up %d day(s)\n", n)
	return nil
}

// Restore pulls the mirror into the local store:
// restore [preferLocal|overwrite] [--anon].
func (a *App) Restore(ctx context.Context, args []string) error {
	rest, opts := syncArgs(args)

	mode := services.PreferLocal
	if len(rest) > 0 {
		var err error
		if mode, err = services.ParseRestoreMode(rest[0]); err != nil {
			return err
		}
	}

	res, err := a.syncer.RestoreAll(ctx, mode, opts...)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Restored %d of %d day(s) from the cloud\n", res.RestoredCount, res.CloudCount)
	return nil
}
