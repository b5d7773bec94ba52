package main

import (
	"fmt"
	"strings"

	outreach "github.com/aaplamahesh/outreach/sdk/go"
	"github.com/spf13/cobra"
)

var (
	submitServer string
	submitLang   string
	submitFields []string
	submitIssue  string
)

var submitCmd = &cobra.Command{
	Use:   "submit <contact|issue|join|volunteer>",
	Short: "Submit a site form to a running server",
	Long: `Submit a site form to a running server, as the website would.

Fields are given as --field key=value. "interests" may be comma-separated.
With --issue the form is filed as a report under that key issue.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := parseVars(submitFields)
		if err != nil {
			return err
		}
		payload := make(map[string]any, len(fields))
		for k, v := range fields {
			payload[k] = v
		}
		if v, ok := fields["interests"]; ok {
			payload["interests"] = strings.Split(v, ",")
		}

		client := outreach.NewClient(outreach.Config{BaseURL: submitServer})

		var result *outreach.EmailResult
		if submitIssue != "" {
			result, err = client.SubmitIssueReport(cmd.Context(), submitIssue, outreach.IssueReport{
				Name:          fields["name"],
				Email:         fields["email"],
				InstituteName: fields["instituteName"],
				Message:       fields["message"],
				Location:      fields["location"],
			}, submitLang)
		} else {
			result, err = client.SubmitForm(cmd.Context(), outreach.FormType(args[0]), payload, submitLang)
		}

		if apiErr, ok := outreach.IsAPIError(err); ok {
			for field, msg := range apiErr.Details {
				fmt.Printf("  %s: %s\n", field, msg)
			}
			return apiErr
		}
		if result != nil {
			if perr := printJSON(result); perr != nil {
				return perr
			}
		}
		return err
	},
}

func init() {
	submitCmd.Flags().StringVar(&submitServer, "server", "http://localhost:8080", "server base URL")
	submitCmd.Flags().StringVar(&submitLang, "lang", "", "auto-reply language (en, hi, mr)")
	submitCmd.Flags().StringArrayVarP(&submitFields, "field", "f", nil, "form field key=value (repeatable)")
	submitCmd.Flags().StringVar(&submitIssue, "issue", "", "key issue id for an issue report")
	rootCmd.AddCommand(submitCmd)
}
