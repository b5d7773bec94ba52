package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aaplamahesh/outreach/internal/model"
	"github.com/spf13/cobra"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Manage the campaign audience",
}

var contactsImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Upsert contacts from a JSON array",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var contacts []model.Contact
		if err := json.Unmarshal(data, &contacts); err != nil {
			return fmt.Errorf("failed to parse %s: %w", args[0], err)
		}

		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		if a.DB == nil {
			return fmt.Errorf("database.enabled is false; imported contacts would not persist")
		}

		result, err := a.Contacts.Import(cmd.Context(), contacts)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored contacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		contacts, err := a.Contacts.List(cmd.Context(), model.ContactFilter{
			Interests:  campaignInterests,
			University: campaignUniv,
		})
		if err != nil {
			return err
		}
		return printJSON(contacts)
	},
}

func init() {
	contactsListCmd.Flags().StringSliceVar(&campaignInterests, "interest", nil, "filter by interest")
	contactsListCmd.Flags().StringVar(&campaignUniv, "university", "", "filter by university")

	contactsCmd.AddCommand(contactsImportCmd, contactsListCmd)
	rootCmd.AddCommand(contactsCmd)
}
