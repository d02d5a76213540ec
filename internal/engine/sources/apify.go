package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/anatolykoptev/go_brief/internal/engine"
)

const apifyBase = "https://api.apify.com"

// ErrNotConfigured means a source has no credentials to work with.
var ErrNotConfigured = errors.New("source not configured")

// Apify runs Apify actors synchronously and returns their dataset items.
type Apify struct {
	http  *http.Client
	token string
	base  string
}

// NewApify returns nil when token is empty.
func NewApify(token string) *Apify {
	if token == "" {
		return nil
	}
	// run-sync waits for the actor to finish, up to five minutes server side.
	return &Apify{http: &http.Client{Timeout: 6 * time.Minute}, token: token, base: apifyBase}
}

// RunActor starts actorID with input and decodes the dataset items into out.
func (a *Apify) RunActor(ctx context.Context, actorID string, input any, out any) error {
	if a == nil {
		return ErrNotConfigured
	}
	body, err := json.Marshal(input)
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/v2/acts/%s/run-sync-get-dataset-items?token=%s",
		a.base, url.PathEscape(actorID), url.QueryEscape(a.token))
	if err := engine.FetchJSON(ctx, a.http, http.MethodPost, endpoint, nil, body, out); err != nil {
		return fmt.Errorf("apify actor %s: %w", actorID, err)
	}
	return nil
}
