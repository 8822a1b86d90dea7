package chichi

import (
	"context"
	"fmt"
	"net/http"
)

// FetchProfile retrieves the raw profile page for a player. It only
// distinguishes "got a document" from "could not get a document";
// interpreting the contents is ParseProfile's job. Transient failures
// surface as-is for the caller's retry policy to judge via IsTransient.
func (c *Client) FetchProfile(ctx context.Context, nickname string) (string, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get("/player/" + nickname)
	if err != nil {
		return "", err
	}
	if res.StatusCode() == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", ErrPlayerNotFound, nickname)
	}
	if res.IsError() {
		return "", &StatusError{
			Code: res.StatusCode(),
			Url:  res.Request.URL,
		}
	}
	return res.String(), nil
}
