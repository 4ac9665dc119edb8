package ratelimit

import "photoselect/internal/config"

// FromConfig builds the named rule table from application config.
func FromConfig(cfg config.RateLimitConfig) map[string]Rule {
	return map[string]Rule{
		RuleGeneral:    {Window: cfg.General.Window, Max: cfg.General.Max},
		RuleAuth:       {Window: cfg.Auth.Window, Max: cfg.Auth.Max},
		RuleUpload:     {Window: cfg.Upload.Window, Max: cfg.Upload.Max},
		RulePayment:    {Window: cfg.Payment.Window, Max: cfg.Payment.Max},
		RuleInvitation: {Window: cfg.Invitation.Window, Max: cfg.Invitation.Max},
		RuleSensitive:  {Window: cfg.Sensitive.Window, Max: cfg.Sensitive.Max},
		RuleCSRF:       {Window: cfg.CSRF.Window, Max: cfg.CSRF.Max},
	}
}
