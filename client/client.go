package client

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/realhttp-go/rhttp/interceptor"
	"github.com/realhttp-go/rhttp/loader"
	"github.com/realhttp-go/rhttp/retry"
	"github.com/realhttp-go/rhttp/rherr"
	"github.com/realhttp-go/rhttp/validator"
)

// Client holds base URL, default headers/validators/transport
// configuration, a lifecycle delegate, and the interceptor/loader pair the
// Executor drives requests through (spec.md §4.7).
type Client struct {
	cfg         Config
	chain       *validator.Chain
	transport   *interceptor.Transport
	httpTransport http.RoundTripper
}

// New builds a Client from cfg. The validator chain is cfg.Validators in
// their given order followed by the default validator, which New always
// appends; it does not check whether cfg.Validators already holds one.
func New(cfg Config) *Client {
	if cfg.RetriableHTTPStatusCodes == nil {
		cfg.RetriableHTTPStatusCodes = validator.DefaultRetriableStatusCodes()
	}
	// cfg.Validators run before the default validator, not after: an
	// alt-request validator (spec.md §4.5, e.g. OAuthSilentLogin) needs the
	// chance to intercept a 401/403 and ask for a retry before the default
	// validator's blanket "unretriable error status" Fail would otherwise
	// terminate the chain first.
	validators := make([]validator.Validator, 0, len(cfg.Validators)+1)
	validators = append(validators, cfg.Validators...)
	validators = append(validators, validator.Default(validator.DefaultConfig{
		AllowsEmptyResponses: cfg.AllowsEmptyResponses,
		RetriableStatusCodes: cfg.RetriableHTTPStatusCodes,
		RetryBase:            cfg.RetryBase,
		RetryCap:              cfg.RetryCap,
	}))

	httpTransport := cfg.Transport
	if httpTransport == nil {
		httpTransport = http.DefaultTransport
	}

	l := loader.New(httpTransport, cfg.MeterProvider, cfg.TracerProvider)
	tr := interceptor.New(cfg.StubRegistry, l, cfg.CookieJar)

	return &Client{
		cfg:           cfg,
		chain:         validator.NewChain(validators...),
		transport:     tr,
		httpTransport: httpTransport,
	}
}

// Fetch is the request executor's public operation (spec.md §4.6): build
// the wire request, drive it through the interceptor shim, validate the
// response, retry per strategy up to req.MaxRetries, and return the final
// response or a categorized error.
func (c *Client) Fetch(ctx context.Context, req *Request) (*Response, error) {
	delegate := c.cfg.Delegate
	if delegate == nil {
		delegate = NopDelegate{}
	}

	wire, originalWire, encodedBody, err := c.compose(req)
	if err != nil {
		return nil, err
	}
	delegate.DidEnqueue(req)

	current := wire
	var retriesUsed uint
	var resp *Response
	var terminal bool
	var terminalErr error

	// step is one build-dispatch-validate pass, driven by retry.Loop's
	// underlying avast/retry-go attempt loop: Loop owns the attempt count,
	// the inter-attempt delay sleep, and aborting early on ctx cancellation,
	// while step (via outcome.Strategy.DelayForAttempt) still supplies this
	// package's own tagged-strategy delay math.
	step := func(ctx context.Context) (bool, retry.Strategy, error) {
		if c.cfg.DebugLogging {
			logRequest(ctx, current)
		}

		_, result, dispatchErr := c.dispatch(ctx, current, req, encodedBody)
		if dispatchErr != nil {
			terminal, terminalErr = true, dispatchErr
			return false, retry.Strategy{}, dispatchErr
		}

		resp = fromLoaderResult(result, originalWire, current, retriesUsed, req.ID)

		vreq := &validator.Request{Method: current.Method, URL: current.URL.String(), RetriesUsed: retriesUsed, MaxRetries: req.MaxRetries, Header: current.Header}
		vresp := &validator.Response{StatusCode: resp.StatusCode, Header: map[string][]string(resp.Header), Body: resp.Data, TransportErr: resp.TransportErr}

		replaced, outcome := c.chain.Run(vresp, vreq)
		if replaced != vresp {
			resp.StatusCode = replaced.StatusCode
			resp.Data = replaced.Body
		}

		switch outcome.Kind {
		case validator.OutcomeNext, validator.OutcomeNextWithReplacement:
			terminal = true
			return false, retry.Strategy{}, nil

		case validator.OutcomeFail:
			terminal, terminalErr = true, outcome.Err
			return false, retry.Strategy{}, outcome.Err

		case validator.OutcomeRetry:
			delegate.WillRetryWithStrategy(req, outcome.Strategy, resp)

			if outcome.Strategy.Kind == retry.KindAfter && outcome.Strategy.RunAlt != nil {
				err := outcome.Strategy.RunAlt(ctx)
				if outcome.Strategy.OnAltResult != nil {
					outcome.Strategy.OnAltResult(err)
				}
				if err != nil {
					terminalErr = rherr.Wrap(rherr.CategorySessionError, err)
					terminal = true
					return false, retry.Strategy{}, terminalErr
				}
			}
			retriesUsed++
			return true, outcome.Strategy, nil
		}
		return false, retry.Strategy{}, nil
	}

	_ = retry.Loop(ctx, req.MaxRetries, step, nil)

	switch {
	case !terminal && ctx.Err() != nil:
		terminalErr = rherr.Wrap(rherr.CategoryCancelled, ctx.Err())
	case !terminal:
		terminalErr = rherr.New(rherr.CategoryRetryAttemptsReached, "retry budget exhausted")
	}

	if resp != nil {
		delegate.DidCollectedMetrics(req, resp.Metrics)
	}
	delegate.DidFinish(req, resp, terminalErr)
	return resp, terminalErr
}

// compose merges client headers with request headers (request wins),
// resolves the URL, encodes the body, and applies the user mutator last
// (spec.md §4.6 step 2).
func (c *Client) compose(req *Request) (current, original *WireRequest, encodedBody []byte, err error) {
	mergedHeader := c.cfg.DefaultHeaders.Clone()
	mergedHeader.Merge(req.Header)

	u, err := req.ResolveURL(c.cfg.BaseURL)
	if err != nil {
		return nil, nil, nil, rherr.Wrap(rherr.CategoryInvalidURL, err)
	}

	var contentType string
	if req.Body != nil {
		reader, ct, _, err := req.Body.Encode()
		if err != nil {
			return nil, nil, nil, err
		}
		if reader != nil {
			encodedBody, err = io.ReadAll(reader)
			if closer, ok := reader.(io.Closer); ok {
				closer.Close()
			}
			if err != nil {
				return nil, nil, nil, rherr.Wrap(rherr.CategoryFailedBuildingURLRequest, err)
			}
		}
		contentType = ct
		if contentType != "" {
			mergedHeader.Set("Content-Type", contentType)
		}
	}

	wire := &WireRequest{Method: req.Method, URL: u, Header: mergedHeader, Body: encodedBody, ContentType: contentType}
	if req.Mutator != nil {
		wire = req.Mutator(wire)
	}
	return wire, wire, encodedBody, nil
}

// dispatch converts a WireRequest into an *http.Request and drives it
// through the interceptor shim.
func (c *Client) dispatch(ctx context.Context, wire *WireRequest, req *Request, encodedBody []byte) (*http.Request, *loader.Result, error) {
	var bodyReader io.Reader
	if len(encodedBody) > 0 {
		bodyReader = bytes.NewReader(encodedBody)
	}
	httpReq, err := http.NewRequestWithContext(ctx, wire.Method, wire.URL.String(), bodyReader)
	if err != nil {
		return nil, nil, rherr.Wrap(rherr.CategoryFailedBuildingURLRequest, err)
	}
	wire.Header.Range(func(name, value string) bool {
		httpReq.Header.Add(name, value)
		return true
	})
	httpReq.ContentLength = int64(len(encodedBody))

	timeout := req.Timeout
	if timeout == 0 {
		timeout = c.cfg.Timeout
	}
	reqCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// Request.Redirect's zero value (RedirectFollow) doubles as "defer to
	// the client default", the same convention Timeout uses above.
	redirectPolicy := req.Redirect
	if redirectPolicy == RedirectFollow {
		redirectPolicy = c.cfg.Redirect
	}

	delegate := c.cfg.Delegate
	if delegate == nil {
		delegate = NopDelegate{}
	}

	result, err := c.transport.Fetch(reqCtx, httpReq, encodedBody, loader.FetchOptions{
		TransferMode:   req.TransferMode,
		ResumableBytes: req.ResumableBytes,
		RedirectPolicy: redirectPolicy,
		OnRedirect: func(fromURL, toURL string) {
			delegate.WillPerformRedirect(req, toURL)
		},
	})
	return httpReq, result, err
}
