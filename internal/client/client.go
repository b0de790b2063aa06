// Package client submits payload batches to the ERP API. Submission is the
// only network-bound stage of a migration run; it supports cooperative
// cancellation between records and reports per-record failures back.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"erp-migrator/internal/resolve"
)

// maxErrorBodySize bounds how much of an error response is kept.
const maxErrorBodySize = 4096

// RecordFailure identifies one record of a batch the API rejected.
type RecordFailure struct {
	Index   int    `json:"index"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Result summarizes one batch submission.
type Result struct {
	Endpoint string
	Created  int
	Failures []RecordFailure
}

// Summary aggregates results across all submitted batches.
type Summary struct {
	Created int
	Failed  int
	Results []Result
}

// Logger is the minimal logging interface used by the client.
type Logger interface {
	Printf(format string, v ...any)
}

// Client talks to one ERP installation. Records are posted one at a time
// so a rejected record never takes its batch down with it.
type Client struct {
	BaseURL  string
	Username string
	Password string
	HTTP     *http.Client
	Logger   Logger

	// DryRun counts records as created without calling the API.
	DryRun bool
}

func New(baseURL, username, password string, logger Logger) *Client {
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Username: username,
		Password: password,
		HTTP:     &http.Client{Timeout: 60 * time.Second},
		Logger:   logger,
	}
}

func (c *Client) logf(format string, v ...any) {
	if c.Logger != nil {
		c.Logger.Printf(format, v...)
	}
}

// SubmitAll sends every batch in order. Cancellation between batches stops
// the run and returns what was accomplished so far alongside the context
// error.
func (c *Client) SubmitAll(ctx context.Context, batches []resolve.Batch) (Summary, error) {
	var sum Summary

	for i := range batches {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		res, err := c.Submit(ctx, &batches[i])
		sum.Results = append(sum.Results, res)
		sum.Created += res.Created
		sum.Failed += len(res.Failures)
		if err != nil {
			return sum, err
		}
	}

	c.logf("stage=submit batches=%d created=%d failed=%d", len(batches), sum.Created, sum.Failed)

	return sum, nil
}

// Submit posts one batch's records to its endpoint. API rejections land in
// the result's failure list with the record index; transport-level errors
// and cancellation abort the batch.
func (c *Client) Submit(ctx context.Context, batch *resolve.Batch) (Result, error) {
	res := Result{Endpoint: batch.Endpoint}

	method := batch.Method
	if method == "" {
		method = http.MethodPost
	}

	for i, record := range batch.Records {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if c.DryRun {
			res.Created++
			continue
		}

		status, message, err := c.post(ctx, method, batch.Endpoint, record)
		if err != nil {
			return res, fmt.Errorf("submit record %d to %s: %w", i, batch.Endpoint, err)
		}

		if status >= 200 && status < 300 {
			res.Created++
			continue
		}

		res.Failures = append(res.Failures, RecordFailure{
			Index:   i,
			Status:  status,
			Message: message,
		})
	}

	c.logf("stage=submit endpoint=%s records=%d created=%d failed=%d",
		batch.Endpoint, len(batch.Records), res.Created, len(res.Failures))

	return res, nil
}

func (c *Client) post(ctx context.Context, method, endpoint string, record resolve.Record) (int, string, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return 0, "", fmt.Errorf("encode record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Username != "" {
		req.SetBasicAuth(c.Username, c.Password)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))

	return resp.StatusCode, apiErrorMessage(msg), nil
}

// apiErrorMessage extracts a readable message from an error response body.
// The ERP answers {"message": "..."} or {"error": "..."}; anything else is
// returned raw.
func apiErrorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}

	return strings.TrimSpace(string(body))
}
