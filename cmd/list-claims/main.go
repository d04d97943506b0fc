// Command list-claims prints the character claims held in a SQLite claims store.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	"github.com/KirkDiggler/sheet-bot/internal/repositories/claims"
)

func main() {
	os.Exit(run())
}

func run() int {
	dbPath := flag.StringP("db", "d", "db.sqlite", "Path to the claims database")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [--db path] <guild-id>\n", os.Args[0])
		return 2
	}

	guildID, err := strconv.ParseUint(flag.Arg(0), 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid guild id %q\n", flag.Arg(0))
		return 2
	}

	repo, err := claims.NewSQLite(*dbPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	defer repo.Close()

	list, err := repo.ListByCommunity(context.Background(), guildID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	if len(list) == 0 {
		fmt.Println("No claims found")
		return 0
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SHEET\tMEMBER")
	for _, c := range list {
		fmt.Fprintf(w, "%s\t%d\n", c.SheetName, c.MemberID)
	}
	_ = w.Flush()

	return 0
}
