package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/aleister1102/scamsiren/internal/datastore"
	"github.com/spf13/cobra"
)

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var (
		limit    int
		elevated bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored verdicts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := root.setup()
			if err != nil {
				return err
			}

			history, err := datastore.NewHistory(cfg.HistoryConfig.SQLiteDBPath, log)
			if err != nil {
				return err
			}
			defer history.Close()

			var records []datastore.HistoryRecord
			if elevated {
				records, err = history.ListElevated(cmd.Context(), limit)
			} else {
				records, err = history.List(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			return writeHistory(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of records to show (0 for all)")
	cmd.Flags().BoolVar(&elevated, "elevated", false, "Only show medium, high and unreachable verdicts")

	return cmd
}

func writeHistory(out io.Writer, records []datastore.HistoryRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(out, "No verdicts recorded.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RECORDED\tCLASS\tSCORE\tURL\tCATEGORIES")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			rec.RecordedAt.Local().Format(time.DateTime),
			strings.ToUpper(string(rec.Classification)),
			rec.Score,
			rec.OriginalURL,
			strings.Join(rec.Verdict.Categories, ", "),
		)
	}
	return tw.Flush()
}
