package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/yungbote/accountsync/internal/app"
	"github.com/yungbote/accountsync/internal/platform/ctxutil"
)

const usage = `usage: accountsync <command> [flags]

commands:
  pull     apply every registry account of a building to the store
  push     send one stored account to the registry
  migrate  apply the store schema
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = ctxutil.WithRunData(ctx, ctxutil.RunData{Command: os.Args[1]})

	var err error
	switch os.Args[1] {
	case "pull":
		err = runPull(ctx, os.Args[2:])
	case "push":
		err = runPush(ctx, os.Args[2:])
	case "migrate":
		err = runMigrate(ctx)
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func runPull(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pull", flag.ExitOnError)
	houseID := fs.Int64("house-id", 0, "store id of the building")
	fias := fs.String("fias", "", "FIAS GUID of the building in the registry")
	_ = fs.Parse(args)
	if strings.TrimSpace(*fias) == "" {
		return fmt.Errorf("-fias is required")
	}

	application, err := app.New(ctx, true)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer application.Close()

	report, err := application.Sync.PullHouse(ctx, *houseID, *fias)
	if err != nil {
		return err
	}
	fmt.Printf("accounts=%d created=%d updated=%d unresolved=%d failed=%d\n",
		report.Accounts, report.Created, report.Updated, report.Unresolved, len(report.Failures))
	for _, f := range report.Failures {
		fmt.Printf("  %s: %v\n", f.AccountNumber, f.Err)
	}
	if len(report.Failures) > 0 {
		return fmt.Errorf("%d accounts failed", len(report.Failures))
	}
	return nil
}

func runPush(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("push", flag.ExitOnError)
	number := fs.String("account", "", "account number to push")
	mode := fs.String("mode", "create", "create or update")
	fias := fs.String("fias", "", "FIAS GUID of the building, used to resolve missing premise GUIDs")
	_ = fs.Parse(args)
	if strings.TrimSpace(*number) == "" {
		return fmt.Errorf("-account is required")
	}

	application, err := app.New(ctx, true)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer application.Close()

	report, err := application.Sync.PushAccount(ctx, *number, *mode, *fias)
	if err != nil {
		return err
	}
	fmt.Printf("account=%s requests=%d guid=%s rejected=%d\n",
		report.AccountNumber, report.Requests, report.GUID, len(report.Failures))
	for _, f := range report.Failures {
		fmt.Printf("  %s: %s %s\n", f.TransportGUID, f.Error.Code, f.Error.Description)
	}
	return nil
}

func runMigrate(ctx context.Context) error {
	application, err := app.New(ctx, false)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer application.Close()
	return application.Migrate()
}
