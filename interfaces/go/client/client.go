// Package client talks to the admin API of a running recording.
package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client { return &Client{BaseURL: baseURL, HTTP: http.DefaultClient} }

// Transaction is the redacted view the admin API returns.
type Transaction struct {
	No       uint64 `json:"transactionNo"`
	Method   string `json:"method"`
	Href     string `json:"href"`
	State    string `json:"state"`
	Status   int    `json:"status"`
	BodySize int    `json:"bodySize"`
}

// ListTransactions pages through recorded transactions. An empty state lists all of them.
func (c *Client) ListTransactions(limit, offset int, state string) ([]Transaction, int, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	if state != "" {
		q.Set("state", state)
	}
	resp, err := c.HTTP.Get(c.BaseURL + "/api/transactions?" + q.Encode())
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("list transactions: unexpected status %d", resp.StatusCode)
	}
	var out struct {
		Items []Transaction `json:"items"`
		Total int           `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, 0, err
	}
	return out.Items, out.Total, nil
}
