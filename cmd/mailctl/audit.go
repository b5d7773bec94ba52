package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	auditAction string
	auditLimit  int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent deliveries and admin actions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		if a.DB == nil {
			return fmt.Errorf("database.enabled is false; the audit trail is only kept in the server's memory")
		}

		entries, err := a.Audit.Recent(cmd.Context(), auditAction, auditLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tACTION\tRESOURCE\tPROVIDER\tOK\tRECIPIENTS")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%d\n",
				e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Action, e.Resource, e.Provider, e.Success, e.Recipients)
		}
		return w.Flush()
	},
}

func init() {
	auditCmd.Flags().StringVar(&auditAction, "action", "", "only show this action (e.g. form.submitted)")
	auditCmd.Flags().IntVarP(&auditLimit, "limit", "n", 50, "number of entries")
	rootCmd.AddCommand(auditCmd)
}
