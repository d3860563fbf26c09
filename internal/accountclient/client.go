// Package accountclient provides the network client the settlement engine
// uses to read accounts and apply balance deltas on the account service.
//
// Every method performs a single network attempt. There are no retries and no
// backoff so that each leg of a settlement has exactly one deterministic fate.
package accountclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-petr/micro-bank/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Client calls the account service over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
}

// New returns a Client for the account service at baseURL. The timeout bounds
// every call so a settlement request cannot hang indefinitely.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type accountData struct {
	Account domain.Account `json:"account"`
}

type accountResponse struct {
	Data accountData `json:"data"`
}

// Get reads the account with the given id.
//
// Local failures (timeout, unexpected status, malformed body) are mapped to
// domain.ErrAccountServiceUnavailable rather than propagated.
func (c *Client) Get(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	var account domain.Account

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/accounts/"+id.String(), nil)
	if err != nil {
		l.Error().Err(err).Send()
		return account, domain.ErrAccountServiceUnavailable
	}

	resp, err := c.client.Do(req)
	if err != nil {
		l.Error().Err(err).Str("account_id", id.String()).Msg("account read failed")
		return account, domain.ErrAccountServiceUnavailable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return account, domain.ErrAccountNotFound
	case resp.StatusCode != http.StatusOK:
		l.Error().Int("status_code", resp.StatusCode).Str("account_id", id.String()).Msg("unexpected account read status")
		return account, domain.ErrAccountServiceUnavailable
	}

	var body accountResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		l.Error().Err(err).Str("account_id", id.String()).Msg("malformed account response")
		return account, domain.ErrAccountServiceUnavailable
	}

	return body.Data.Account, nil
}

type deltaRequest struct {
	Amount string `json:"amount"`
}

// ApplyDelta applies a signed balance delta to the account with the given id.
//
// A positive delta is a credit and maps to the deposit endpoint, a negative
// delta is a debit and maps to the withdraw endpoint. The wire amount is
// always the non-negative magnitude; the sign is implied by the endpoint.
// The account service applies the whole delta atomically or not at all.
func (c *Client) ApplyDelta(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	l := zerolog.Ctx(ctx)

	endpoint := c.baseURL + "/api/accounts/" + id.String() + "/deposit"
	if delta.IsNegative() {
		endpoint = c.baseURL + "/api/accounts/" + id.String() + "/withdraw"
	}

	payload, err := json.Marshal(deltaRequest{Amount: delta.Abs().String()})
	if err != nil {
		l.Error().Err(err).Send()
		return domain.ErrAccountServiceUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		l.Error().Err(err).Send()
		return domain.ErrAccountServiceUnavailable
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		l.Error().Err(err).Str("account_id", id.String()).Msg("balance mutation failed")
		return domain.ErrAccountServiceUnavailable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		l.Info().Int("status_code", resp.StatusCode).Str("account_id", id.String()).Msg("balance mutation rejected")
		return domain.ErrBalanceUpdateRejected
	}

	l.Error().Int("status_code", resp.StatusCode).Str("account_id", id.String()).Msg("unexpected balance mutation status")

	return domain.ErrAccountServiceUnavailable
}
