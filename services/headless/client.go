package headless

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"iap-backoffice/models"
)

const (
	tokenIssuer   = "planetariumhq.com"
	tokenLifetime = time.Minute
)

const txResultQuery = `query TxResult($txId: TxId!) {
  transaction {
    transactionResult(txId: $txId) {
      txStatus
      blockIndex
      exceptionNames
    }
  }
}`

var (
	// ErrUnknownPlanet is returned when no GraphQL endpoint is configured for a planet.
	ErrUnknownPlanet = errors.New("unknown planet")
	// ErrUnknownTxStatus is returned when the node reports a status name the tables do not define.
	ErrUnknownTxStatus = errors.New("unknown tx status")
)

// TxResult is what the node knows about a transaction.
type TxResult struct {
	Status         models.TxStatus
	BlockIndex     *int64
	ExceptionNames []string
}

// Message is the note appended to a receipt for this result.
func (r TxResult) Message() string {
	var names []string
	for _, n := range r.ExceptionNames {
		if n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return ""
	}
	return strings.Join(names, ", ")
}

type Client struct {
	urls       map[string]string
	jwtSecret  []byte
	httpClient *http.Client
	now        func() time.Time
}

func NewClient(urls map[string]string, jwtSecret string) *Client {
	return &Client{
		urls:      urls,
		jwtSecret: []byte(jwtSecret),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		now: time.Now,
	}
}

// CreateToken signs the short-lived bearer token the headless node expects.
func (c *Client) CreateToken() (string, error) {
	iat := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(iat),
		ExpiresAt: jwt.NewNumericDate(iat.Add(tokenLifetime)),
	})
	return token.SignedString(c.jwtSecret)
}

type gqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type txResultResponse struct {
	Data *struct {
		Transaction struct {
			TransactionResult struct {
				TxStatus       string   `json:"txStatus"`
				BlockIndex     *int64   `json:"blockIndex"`
				ExceptionNames []string `json:"exceptionNames"`
			} `json:"transactionResult"`
		} `json:"transaction"`
	} `json:"data"`
	Errors []gqlError `json:"errors"`
}

// TxResult asks the planet's node for the status of txID. When the node answers
// with a status name outside the TxStatus table, the returned result still carries
// the exception names and the error wraps ErrUnknownTxStatus.
func (c *Client) TxResult(ctx context.Context, planetID, txID string) (*TxResult, error) {
	url, ok := c.urls[planetID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlanet, planetID)
	}

	token, err := c.CreateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to sign headless token: %w", err)
	}

	body, err := json.Marshal(gqlRequest{
		Query:     txResultQuery,
		Variables: map[string]interface{}{"txId": txID},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("headless request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read headless response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("headless returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed txResultResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode headless response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		msgs := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("headless query failed: %s", strings.Join(msgs, "; "))
	}
	if parsed.Data == nil {
		return nil, fmt.Errorf("headless response has no data")
	}

	tr := parsed.Data.Transaction.TransactionResult
	result := &TxResult{
		BlockIndex:     tr.BlockIndex,
		ExceptionNames: tr.ExceptionNames,
	}
	status, ok := models.ParseTxStatus(tr.TxStatus)
	if !ok {
		return result, fmt.Errorf("%w: %q", ErrUnknownTxStatus, tr.TxStatus)
	}
	result.Status = status
	return result, nil
}
