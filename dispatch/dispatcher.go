package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout = 30 * time.Second

	// maxBodyBytes caps how much of a platform response is read into memory.
	maxBodyBytes = 1 << 20
)

// Config assembles a [Dispatcher]. Only BaseURL is required.
type Config struct {
	// BaseURL is the platform API root, e.g. "https://api.example.com/api".
	BaseURL string

	// Credential returns the bearer token to attach, or "" for none. The
	// session scope lives in ctx; the dispatcher never inspects it.
	Credential func(ctx context.Context) (string, error)

	// AuthFailed runs when a request that carried a credential came back
	// 401, under both unauthorized policies. Callers use it to drop the
	// now-rejected credential.
	AuthFailed func(ctx context.Context)

	// Decorate runs on every built request, after standard headers. Callers
	// use it to stamp request IDs and similar ambient headers.
	Decorate func(ctx context.Context, req *http.Request)

	// HTTPClient performs the requests. Supply one with a cookie jar when
	// platform cookies should ride along. Nil gets a client with a 30s
	// timeout and no jar.
	HTTPClient *http.Client
}

// Dispatcher performs [Operation] calls against one platform base URL.
type Dispatcher struct {
	baseURL    string
	credential func(ctx context.Context) (string, error)
	authFailed func(ctx context.Context)
	decorate   func(ctx context.Context, req *http.Request)
	client     *http.Client
}

// NewDispatcher creates a [Dispatcher] from cfg.
func NewDispatcher(cfg Config) (*Dispatcher, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: empty base URL", ErrInvalidOperation)
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Dispatcher{
		baseURL:    cfg.BaseURL,
		credential: cfg.Credential,
		authFailed: cfg.AuthFailed,
		decorate:   cfg.Decorate,
		client:     client,
	}, nil
}

// Result carries the raw outcome of one dispatched operation.
type Result struct {
	StatusCode int
	Body       []byte

	// Unauthorized reports that the platform answered 401 and the
	// operation's policy asked for absence instead of an error.
	Unauthorized bool
}

// NewRequest builds the *http.Request for op without sending it. The bearer
// credential is the only live input; given the same op and credential the
// built request is identical every time.
func (d *Dispatcher) NewRequest(ctx context.Context, op Operation) (*http.Request, error) {
	target, err := op.URL(d.baseURL)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if op.Body != nil {
		encoded, err := json.Marshal(op.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: encode body: %v", ErrInvalidOperation, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, op.method(), target, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOperation, err)
	}

	req.Header.Set("Accept", "application/json")
	if op.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if d.credential != nil {
		token, err := d.credential(ctx)
		if err != nil {
			return nil, err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	if d.decorate != nil {
		d.decorate(ctx, req)
	}

	return req, nil
}

// Do performs op and classifies the answer. 2xx returns the body; a 401 is
// resolved through the operation's [UnauthorizedPolicy]; every other status
// becomes a [StatusError]. Do never retries.
func (d *Dispatcher) Do(ctx context.Context, op Operation) (*Result, error) {
	req, err := d.NewRequest(ctx, op)
	if err != nil {
		return nil, err
	}
	carried := req.Header.Get("Authorization") != ""

	res, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlatformUnreachable, err)
	}
	defer func() {
		io.Copy(io.Discard, res.Body)
		res.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrPlatformUnreachable, err)
	}

	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
		return &Result{StatusCode: res.StatusCode, Body: body}, nil

	case res.StatusCode == http.StatusUnauthorized:
		if carried && d.authFailed != nil {
			d.authFailed(ctx)
		}
		if op.Unauthorized == UnauthorizedAsNil {
			return &Result{StatusCode: res.StatusCode, Unauthorized: true}, nil
		}
		return nil, &StatusError{
			StatusCode: res.StatusCode,
			Message:    messageFromBody(body, res.StatusCode),
		}

	default:
		return nil, &StatusError{
			StatusCode: res.StatusCode,
			Message:    messageFromBody(body, res.StatusCode),
		}
	}
}

// DoJSON performs op and decodes the 2xx body into dst. The bool reports
// presence: false means the 401-as-absence path was taken and dst is
// untouched. A nil dst or an empty body skips decoding.
func (d *Dispatcher) DoJSON(ctx context.Context, op Operation, dst any) (bool, error) {
	res, err := d.Do(ctx, op)
	if err != nil {
		return false, err
	}
	if res.Unauthorized {
		return false, nil
	}
	if dst == nil || len(res.Body) == 0 {
		return true, nil
	}
	if err := json.Unmarshal(res.Body, dst); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return true, nil
}
