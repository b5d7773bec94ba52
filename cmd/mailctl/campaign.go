package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/aaplamahesh/outreach/internal/campaign"
	"github.com/aaplamahesh/outreach/internal/model"
	"github.com/aaplamahesh/outreach/internal/service"
	"github.com/spf13/cobra"
)

var (
	campaignVars      []string
	campaignTo        []string
	campaignTemplate  string
	campaignSubject   string
	campaignInterests []string
	campaignUniv      string

	announceMessage    string
	announceUrgent     bool
	announceActionURL  string
	announceActionText string
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect campaign templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadTemplates()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCATEGORY\tNAME\tVARIABLES")
		for _, t := range reg.List() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%v\n", t.ID, t.Category, t.Name, t.Variables)
		}
		return tw.Flush()
	},
}

var templatesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadTemplates()
		if err != nil {
			return err
		}
		t, err := reg.Get(args[0])
		if err != nil {
			return err
		}
		return printJSON(t)
	},
}

var templatesPreviewCmd = &cobra.Command{
	Use:   "preview <id>",
	Short: "Render a template with --var values",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadTemplates()
		if err != nil {
			return err
		}
		t, err := reg.Get(args[0])
		if err != nil {
			return err
		}
		vars, err := parseVars(campaignVars)
		if err != nil {
			return err
		}

		r := campaign.Apply(t, vars)
		fmt.Printf("Subject: %s\n\n%s\n", r.Subject, r.Text)
		if len(r.Unresolved) > 0 {
			fmt.Fprintf(os.Stderr, "\nunresolved placeholders: %v\n", r.Unresolved)
		}
		return nil
	},
}

// loadTemplates reads the built-in templates plus campaign.templates_dir
// without connecting to anything.
func loadTemplates() (*campaign.Registry, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	reg, err := campaign.DefaultRegistry()
	if err != nil {
		return nil, err
	}
	if dir := cfg.Campaign.TemplatesDir; dir != "" {
		if err := reg.LoadDir(dir); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func audienceFromFlags() (service.Audience, error) {
	var a service.Audience
	for _, to := range campaignTo {
		a.Recipients = append(a.Recipients, model.Recipient{Email: to})
	}
	if len(campaignInterests) > 0 || campaignUniv != "" {
		a.Filter = &model.ContactFilter{Interests: campaignInterests, University: campaignUniv}
	}
	if len(a.Recipients) == 0 && a.Filter == nil {
		return a, fmt.Errorf("no audience: pass --to or a contact filter")
	}
	return a, nil
}

func reportCampaign(result model.CampaignResult, err error) error {
	if err != nil {
		return fmt.Errorf("campaign not sent: %w", err)
	}
	if err := printJSON(result); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("%s", result.Message)
	}
	return nil
}

var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Send a template campaign",
	RunE: func(cmd *cobra.Command, args []string) error {
		if campaignTemplate == "" {
			return fmt.Errorf("--template is required")
		}
		vars, err := parseVars(campaignVars)
		if err != nil {
			return err
		}
		audience, err := audienceFromFlags()
		if err != nil {
			return err
		}

		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		return reportCampaign(a.Campaigns.CreateFromTemplate(cmd.Context(), service.TemplateCampaign{
			TemplateID: campaignTemplate,
			Variables:  vars,
			Subject:    campaignSubject,
			Audience:   audience,
		}))
	},
}

var announceCmd = &cobra.Command{
	Use:   "announce",
	Short: "Send a quick announcement",
	RunE: func(cmd *cobra.Command, args []string) error {
		if campaignSubject == "" || announceMessage == "" {
			return fmt.Errorf("--subject and --message are required")
		}
		audience, err := audienceFromFlags()
		if err != nil {
			return err
		}

		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		return reportCampaign(a.Campaigns.SendQuickAnnouncement(cmd.Context(), service.QuickAnnouncement{
			Subject:    campaignSubject,
			Message:    announceMessage,
			Urgent:     announceUrgent,
			ActionURL:  announceActionURL,
			ActionText: announceActionText,
			Audience:   audience,
		}))
	},
}

func addAudienceFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&campaignTo, "to", nil, "recipient address (repeatable)")
	cmd.Flags().StringSliceVar(&campaignInterests, "interest", nil, "send to stored contacts with any of these interests")
	cmd.Flags().StringVar(&campaignUniv, "university", "", "send to stored contacts at this university")
}

func init() {
	templatesPreviewCmd.Flags().StringArrayVar(&campaignVars, "var", nil, "template variable key=value (repeatable)")
	templatesCmd.AddCommand(templatesListCmd, templatesShowCmd, templatesPreviewCmd)

	campaignCmd.Flags().StringVarP(&campaignTemplate, "template", "t", "", "template id")
	campaignCmd.Flags().StringArrayVar(&campaignVars, "var", nil, "template variable key=value (repeatable)")
	campaignCmd.Flags().StringVar(&campaignSubject, "subject", "", "override the template subject")
	addAudienceFlags(campaignCmd)

	announceCmd.Flags().StringVar(&campaignSubject, "subject", "", "subject line")
	announceCmd.Flags().StringVarP(&announceMessage, "message", "m", "", "announcement text")
	announceCmd.Flags().BoolVar(&announceUrgent, "urgent", false, "mark as urgent")
	announceCmd.Flags().StringVar(&announceActionURL, "action-url", "", "call-to-action link")
	announceCmd.Flags().StringVar(&announceActionText, "action-text", "", "call-to-action label")
	addAudienceFlags(announceCmd)

	rootCmd.AddCommand(templatesCmd, campaignCmd, announceCmd)
}
