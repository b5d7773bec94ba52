// Package app wires configuration into the delivery providers, storage and
// services shared by the server and the CLI.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/aaplamahesh/outreach/internal/auth"
	"github.com/aaplamahesh/outreach/internal/campaign"
	"github.com/aaplamahesh/outreach/internal/config"
	"github.com/aaplamahesh/outreach/internal/database"
	"github.com/aaplamahesh/outreach/internal/email"
	"github.com/aaplamahesh/outreach/internal/i18n"
	"github.com/aaplamahesh/outreach/internal/logger"
	"github.com/aaplamahesh/outreach/internal/metrics"
	"github.com/aaplamahesh/outreach/internal/repository"
	"github.com/aaplamahesh/outreach/internal/service"
	"github.com/aaplamahesh/outreach/internal/validator"
)

// App is the assembled application.
type App struct {
	Config  *config.Config
	Log     *logger.Logger
	Metrics *metrics.Metrics
	Bundle  *i18n.Bundle

	// DB and Redis are nil unless enabled in config.
	DB    *database.Postgres
	Redis *database.Redis

	Senders   []email.Sender
	Tokens    *auth.TokenService
	Dispatch  *service.DispatchService
	Forms     *service.FormService
	Campaigns *service.CampaignService
	Contacts  *service.ContactService
	Admin     *service.AdminService
	Audit     *service.AuditLog
}

// New builds the application from cfg. Callers must Close the result.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	var err error
	if a.Metrics, err = metrics.New(nil); err != nil {
		return nil, err
	}
	if a.Bundle, err = i18n.Load(); err != nil {
		return nil, err
	}

	if a.Senders, err = NewSenders(ctx, cfg); err != nil {
		return nil, err
	}

	if err := a.openStores(); err != nil {
		a.Close()
		return nil, err
	}

	if secret := cfg.Security.Admin.TokenSecret; secret != "" {
		a.Tokens, err = auth.NewTokenService(secret, cfg.Security.Admin.TokenTTL, cfg.Security.Admin.Issuer)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create token service: %w", err)
		}
	}

	templates, err := campaign.DefaultRegistry()
	if err != nil {
		a.Close()
		return nil, err
	}
	if dir := cfg.Campaign.TemplatesDir; dir != "" {
		if err := templates.LoadDir(dir); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to load campaign templates: %w", err)
		}
	}

	branding := Branding(cfg.Site)
	v := validator.New()

	var (
		store      service.ContactStore
		auditStore service.AuditStore
	)
	if a.DB != nil {
		store = repository.NewContactRepository(a.DB)
		auditStore = repository.NewAuditRepository(a.DB)
	} else {
		store = repository.NewMemoryContactRepository()
		auditStore = repository.NewMemoryAuditRepository(500)
	}
	a.Audit = service.NewAuditLog(auditStore, log)

	a.Dispatch = service.NewDispatchService(a.Senders, service.DispatchConfig{
		Primary:    cfg.Email.Provider,
		Fallback:   cfg.Email.Fallback,
		AutoReply:  cfg.Email.AutoReply,
		AdminEmail: cfg.Site.AdminEmail,
		Branding:   branding,
	}, a.Bundle, a.Metrics, log)
	a.Forms = service.NewFormService(a.Dispatch, v, a.Metrics, log).WithAudit(a.Audit)
	a.Contacts = service.NewContactService(store, v, log).WithAudit(a.Audit)
	a.Campaigns = service.NewCampaignService(a.Dispatch, templates, a.Contacts, branding, a.Metrics, log).WithAudit(a.Audit)
	a.Admin = service.NewAdminService(cfg.Security.Admin.PasswordHash, a.Tokens, log).WithAudit(a.Audit)

	return a, nil
}

func (a *App) openStores() error {
	cfg := a.Config

	if cfg.Database.Enabled {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return err
		}
		a.DB = db
		a.Log.Info().Msg("connected to PostgreSQL")

		if cfg.Database.AutoMigrate {
			if err := database.MigrateUp(db); err != nil {
				return err
			}
			a.Log.Info().Msg("database schema is current")
		}
	}

	if cfg.Redis.Enabled {
		rdb, err := database.NewRedis(cfg.Redis)
		if err != nil {
			return err
		}
		a.Redis = rdb
		a.Log.Info().Msg("connected to Redis")
	}
	return nil
}

// Close releases the database and Redis connections.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
}

// Branding derives the email branding from the site settings.
func Branding(site config.SiteConfig) email.Branding {
	return email.Branding{
		Name:       site.Name,
		Tagline:    site.Tagline,
		WebsiteURL: site.WebsiteURL,
	}
}

// NewSenders builds one sender per entry of cfg.Email.Order, in that order.
// Providers without credentials are still returned and report themselves
// as unconfigured.
func NewSenders(ctx context.Context, cfg *config.Config) ([]email.Sender, error) {
	ec := cfg.Email
	from := email.Address{Name: ec.SenderName, Email: ec.SenderAddress}

	order := ec.Order
	if len(order) == 0 {
		order = []string{"brevo", "smtp", "mailgun", "gmail"}
	}

	senders := make([]email.Sender, 0, len(order))
	seen := make(map[string]bool, len(order))
	for _, name := range order {
		name = strings.ToLower(strings.TrimSpace(name))
		if seen[name] {
			continue
		}
		seen[name] = true

		switch name {
		case "brevo":
			senders = append(senders, email.NewBrevoSender(email.BrevoConfig{
				APIKey:  ec.Brevo.APIKey,
				BaseURL: ec.Brevo.BaseURL,
				From:    from,
			}))
		case "smtp":
			senders = append(senders, email.NewSMTPSender(email.SMTPConfig{
				Service:            ec.SMTP.Service,
				Host:               ec.SMTP.Host,
				Port:               ec.SMTP.Port,
				User:               ec.SMTP.User,
				Password:           ec.SMTP.Password,
				TLSMode:            ec.SMTP.TLSMode,
				InsecureSkipVerify: ec.SMTP.InsecureSkipVerify,
				From:               from,
				Timeout:            ec.Timeout,
			}))
		case "mailgun":
			senders = append(senders, email.NewMailgunSender(email.MailgunConfig{
				APIKey:  ec.Mailgun.APIKey,
				Domain:  ec.Mailgun.Domain,
				BaseURL: ec.Mailgun.BaseURL,
				From:    from,
			}))
		case "gmail":
			g, err := email.NewGmailSender(ctx, email.GmailConfig{
				CredentialsJSON: ec.Gmail.CredentialsJSON,
				ClientID:        ec.Gmail.ClientID,
				ClientSecret:    ec.Gmail.ClientSecret,
				RefreshToken:    ec.Gmail.RefreshToken,
				From:            from,
			})
			if err != nil {
				return nil, err
			}
			senders = append(senders, g)
		default:
			return nil, fmt.Errorf("unknown email provider %q in email.order", name)
		}
	}
	return senders, nil
}
