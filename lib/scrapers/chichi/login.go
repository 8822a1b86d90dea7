package chichi

import (
	"context"
	"fmt"
	"log/slog"
)

// Login performs the single credential transaction that establishes the
// server-side session. It is not retried here: a failed login is fatal
// to the run and retry policy belongs to the caller.
func (c *Client) Login(ctx context.Context, username, password string) error {
	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"username": username,
			"password": password,
		}).
		Post("/account/auth")
	if err != nil {
		return fmt.Errorf("%w: %s", ErrLoginFailed, err)
	}
	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrLoginFailed, (&StatusError{
			Code: res.StatusCode(),
			Url:  res.Request.URL,
		}).Error())
	}

	slog.InfoContext(ctx, "logged in", "username", username)
	return nil
}
