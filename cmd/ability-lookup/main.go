// Command ability-lookup resolves one ability against the character spreadsheet
// without going through Discord.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/KirkDiggler/sheet-bot/internal/clients/sheets"
	"github.com/KirkDiggler/sheet-bot/internal/services/ability"
)

func main() {
	_ = godotenv.Load()

	credentials := flag.StringP("credentials", "c", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"), "Service account key file")
	spreadsheet := flag.StringP("spreadsheet", "s", os.Getenv("CHARACTER_SPREADSHEET_ID"), "Spreadsheet ID")
	limit := flag.Int("limit", ability.DefaultRowLimit, "Candidate rows to fetch")
	timeout := flag.Duration("timeout", 30*time.Second, "Give up after this long")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <character> <ability>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}
	if *spreadsheet == "" {
		fmt.Fprintln(os.Stderr, "error: --spreadsheet or CHARACTER_SPREADSHEET_ID is required")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	tokens, err := sheets.NewServiceAccountTokenSource(ctx, *credentials)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	client, err := sheets.New(&sheets.Config{
		TokenSource: tokens,
		NewDelegate: sheets.BackoffDelegateFactory(sheets.DefaultBackoffConfig()),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	svc := ability.NewService(&ability.ServiceConfig{
		Client:        client,
		SpreadsheetID: *spreadsheet,
		RowLimit:      *limit,
	})

	match, err := svc.Resolve(ctx, flag.Arg(0), flag.Arg(1))
	if err != nil {
		var uerr *ability.UniquenessError
		if errors.As(err, &uerr) {
			fmt.Fprintf(os.Stderr, "ambiguous: %v\n", uerr.Candidates)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	fmt.Printf("%s\t%d\n", match.Name, match.Value)
}
