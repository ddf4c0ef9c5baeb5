package lms

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"net/url"
)

const sisUserPrefix = "sis_user_id:"

func (c *defaultClient) GetUser(ctx context.Context, sisLoginID string) (*User, error) {
	var u User
	target := c.endpoint("/users/"+url.PathEscape(sisUserPrefix+sisLoginID)+"/profile", nil)
	if err := c.doJSON(ctx, http.MethodGet, target, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *defaultClient) CreateUser(ctx context.Context, p UserProfile) (*User, error) {
	slog.Info("Creating LMS account", "institution", c.institution, "login_id", p.LoginID)

	form := url.Values{
		"user[name]":                               {p.Name()},
		"user[short_name]":                         {p.Name()},
		"user[sortable_name]":                      {p.SortableName()},
		"user[skip_registration]":                  {"true"},
		"user[terms_of_use]":                       {"true"},
		"pseudonym[unique_id]":                     {p.LoginID},
		"pseudonym[sis_user_id]":                   {p.LoginID},
		"pseudonym[skip_confirmation]":             {"true"},
		"enable_sis_reactivation":                  {"true"},
		"communication_channel[address]":           {p.Email},
		"communication_channel[type]":              {"email"},
		"communication_channel[skip_confirmation]": {"true"},
	}

	var u User
	target := c.endpoint("/accounts/"+c.accountID+"/users", nil)
	if err := c.doJSON(ctx, http.MethodPost, target, form, &u); err != nil {
		return nil, fmt.Errorf("failed to create LMS account %s: %w", p.LoginID, err)
	}
	return &u, nil
}

func (c *defaultClient) UpdateUser(ctx context.Context, p UserProfile) (*User, error) {
	slog.Info("Updating LMS account", "institution", c.institution, "login_id", p.LoginID)

	form := url.Values{
		"user[name]":          {p.Name()},
		"user[short_name]":    {p.Name()},
		"user[sortable_name]": {p.SortableName()},
		"user[email]":         {p.Email},
	}

	var u User
	target := c.endpoint("/users/"+url.PathEscape(sisUserPrefix+p.LoginID), nil)
	if err := c.doJSON(ctx, http.MethodPut, target, form, &u); err != nil {
		return nil, fmt.Errorf("failed to update LMS account %s: %w", p.LoginID, err)
	}
	return &u, nil
}

func (c *defaultClient) SyncUser(ctx context.Context, p UserProfile) (*User, error) {
	if err := ValidateEmail(p.Email); err != nil {
		return nil, fmt.Errorf("cannot sync %s: %w", p.LoginID, err)
	}

	existing, err := c.GetUser(ctx, p.LoginID)
	switch {
	case IsNotFound(err):
		return c.CreateUser(ctx, p)
	case err != nil:
		return nil, fmt.Errorf("failed to get LMS account %s: %w", p.LoginID, err)
	case p.Drifted(existing):
		return c.UpdateUser(ctx, p)
	default:
		return existing, nil
	}
}

// ValidateEmail rejects empty addresses and anything that is not a bare address
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: address is missing", ErrInvalidEmail)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return nil
}
