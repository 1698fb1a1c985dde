package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/feedupload/internal/common"
	"github.com/dmitrijs2005/feedupload/internal/logging"
	"github.com/dmitrijs2005/feedupload/internal/netx"
)

// Default per-operation timeouts.
const (
	DefaultTimeout      = 20 * time.Second
	DefaultFetchTimeout = 30 * time.Second
)

// Observer is told about every finished call; err is nil on success.
type Observer func(op string, err error)

// Client talks to one feed service. It holds no per-call state and is safe
// for concurrent use.
type Client struct {
	baseURL      string
	apiKey       string
	http         *http.Client
	logger       logging.Logger
	timeout      time.Duration
	fetchTimeout time.Duration
	observe      Observer
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTimeouts sets the timeout for create/credential/finalize and the
// (longer) one for fetch.
func WithTimeouts(timeout, fetchTimeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
		c.fetchTimeout = fetchTimeout
	}
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observe = o }
}

// New creates a client for baseURL (without trailing slash) authenticated by apiKey.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		http:         netx.NewHTTPClient(0),
		logger:       logging.Discard(),
		timeout:      DefaultTimeout,
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateRecord creates a record and returns its ID.
func (c *Client) CreateRecord(ctx context.Context, title, status string) (string, error) {
	var out createRecordResponse
	err := c.call(ctx, OpCreateRecord, http.MethodPost, "/api/items/", c.timeout,
		createRecordRequest{Title: title, Status: status}, &out, http.StatusCreated)
	if err == nil && out.ID == "" {
		err = &Error{Op: OpCreateRecord, StatusCode: http.StatusCreated, Err: fmt.Errorf("%w: id", ErrMissingField)}
	}
	c.done(OpCreateRecord, err)
	if err != nil {
		return "", err
	}

	c.logger.Info(ctx, "record created", "title", title, "record_id", string(out.ID))
	return string(out.ID), nil
}

// RequestUploadCredential asks for a presigned upload URL and the public
// media URL the uploaded object will have.
func (c *Client) RequestUploadCredential(ctx context.Context, recordID, category, localRef string) (Credential, error) {
	var out Credential
	err := c.call(ctx, OpUploadCredential, http.MethodPost, "/api/media_files/presigned_urls/", c.timeout,
		credentialRequest{ItemID: recordID, Category: category, FullLocalFilePath: localRef}, &out, http.StatusCreated)
	if err == nil {
		switch {
		case out.UploadURL == "":
			err = &Error{Op: OpUploadCredential, StatusCode: http.StatusCreated, Err: fmt.Errorf("%w: presigned_url", ErrMissingField)}
		case out.MediaURL == "":
			err = &Error{Op: OpUploadCredential, StatusCode: http.StatusCreated, Err: fmt.Errorf("%w: media_url", ErrMissingField)}
		}
	}
	c.done(OpUploadCredential, err)
	if err != nil {
		return Credential{}, err
	}

	c.logger.Info(ctx, "upload credential received", "record_id", recordID)
	return out, nil
}

// FetchRecord reads a record back. The pipeline uses it as a readiness
// check before finalizing.
func (c *Client) FetchRecord(ctx context.Context, recordID string) (*Record, error) {
	var out Record
	err := c.call(ctx, OpFetchRecord, http.MethodGet, recordPath(recordID), c.fetchTimeout, nil, &out, http.StatusOK)
	c.done(OpFetchRecord, err)
	if err != nil {
		return nil, err
	}
	if out.ID == "" {
		out.ID = ID(recordID)
	}
	return &out, nil
}

// FinalizeRecord attaches the uploaded media to the record.
func (c *Client) FinalizeRecord(ctx context.Context, recordID string, attachment Attachment, title, status string) error {
	if attachment.Category == "" {
		attachment.Category = common.MediaCategoryVideo
	}
	err := c.call(ctx, OpFinalizeRecord, http.MethodPut, recordPath(recordID), c.timeout,
		finalizeRequest{Title: title, Status: status, Attachment: attachment}, nil, http.StatusOK)
	c.done(OpFinalizeRecord, err)
	if err != nil {
		return err
	}

	c.logger.Info(ctx, "record finalized", "record_id", recordID, "media_url", attachment.URL)
	return nil
}

func recordPath(id string) string {
	return "/api/items/" + url.PathEscape(id) + "/"
}

func (c *Client) done(op string, err error) {
	if c.observe != nil {
		c.observe(op, err)
	}
}

// call performs one exchange. in is JSON-encoded when non-nil, out is
// decoded from a response with the expected status when non-nil.
func (c *Client) call(ctx context.Context, op, method, path string, timeout time.Duration, in, out any, expected int) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &Error{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.APIKeyHeaderName, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer netx.DrainAndClose(resp)

	if resp.StatusCode != expected {
		snippet := netx.Snippet(resp.Body)
		c.logger.Debug(ctx, "feed call failed", "op", op, "status", resp.StatusCode, "body", snippet)

		kind := ErrUnexpectedStatus
		if resp.StatusCode == http.StatusNotFound {
			kind = ErrNotFound
		}
		return &Error{Op: op, StatusCode: resp.StatusCode, Body: snippet, Err: kind}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
