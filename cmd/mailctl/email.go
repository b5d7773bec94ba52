package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var testTo string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which email providers are configured",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		status := a.Dispatch.ProviderStatus()
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PROVIDER\tCONFIGURED\tROLE\tFEATURES")
		for _, p := range status.Providers {
			role := ""
			switch p.Name {
			case status.Active:
				role = "primary"
			case status.Fallback:
				role = "fallback"
			}
			fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", p.Name, p.Configured, role, strings.Join(p.Features, ", "))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Printf("\nauto-reply: %t\n", status.AutoReply)
		return nil
	},
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Verify every configured provider and send each a test message",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		to := testTo
		if to == "" {
			to = a.Config.Site.AdminEmail
		}
		if to == "" {
			return fmt.Errorf("no recipient: pass --to or set site.admin_email")
		}

		results := a.Dispatch.TestProviders(cmd.Context(), to)
		names := make([]string, 0, len(results))
		for name := range results {
			names = append(names, name)
		}
		sort.Strings(names)

		failed := 0
		for _, name := range names {
			r := results[name]
			mark := "ok"
			if !r.Success {
				mark = "FAIL"
				failed++
			}
			fmt.Printf("%-8s %-4s %s\n", name, mark, r.Message)
		}
		if failed == len(names) {
			return fmt.Errorf("no provider could send a test email")
		}
		return nil
	},
}

var sendTestCmd = &cobra.Command{
	Use:   "send-test",
	Short: "Send one test email through the normal primary/fallback path",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		result := a.Dispatch.SendTestEmail(cmd.Context(), testTo)
		if err := printJSON(result); err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("%s", result.Message)
		}
		return nil
	},
}

func init() {
	testCmd.Flags().StringVar(&testTo, "to", "", "recipient (default: site.admin_email)")
	sendTestCmd.Flags().StringVar(&testTo, "to", "", "recipient (default: site.admin_email)")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(sendTestCmd)
}
