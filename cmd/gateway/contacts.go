package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newContactsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Inspect contact submissions",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List the most recent submissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			d := newDeps(a.cfg, a.log)
			defer func() { _ = d.Close() }()

			repo, err := d.contactRepo(ctx)
			if err != nil {
				return err
			}
			rows, err := repo.List(ctx, limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tSTATUS\tLANG\tIDENTITY\tEMAIL\tSUBJECT")
			for _, s := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					s.ID, s.CreatedAt.Format(time.DateTime), s.Status, s.Language, s.Identity, s.Email, truncate(s.Subject, 40))
			}
			return tw.Flush()
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "max submissions to show (0 = all)")

	cmd.AddCommand(list)
	return cmd
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
