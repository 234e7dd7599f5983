package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	nextgen "github.com/totegamma/nextgen-portal"
	"github.com/totegamma/nextgen-portal/jsonld"
)

var tracer = otel.Tracer("client")

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "nextgen-portal"
)

const (
	MessageUnauthorized = "Unauthorized access. Please login again."
	MessageConflict     = "A conflict occurred, already exists."
	MessageGeneric      = "An error occurred"
	MessageTimeout      = "Request timeout"
	MessageFetchFailed  = "An error occurred while fetching data"
)

// Service names one of the backends the gateway talks to.
type Service string

const (
	ServiceSearch  Service = "search"
	ServiceCatalog Service = "catalog"
)

var ErrUnknownService = errors.New("unknown service")

// FailurePolicy decides whether transport failures of non-DELETE requests
// are reported to the caller as errors or only as a null reply.
type FailurePolicy string

const (
	PolicySwallow   FailurePolicy = "swallow"
	PolicyPropagate FailurePolicy = "propagate"
)

// Outcome is how a call ended.
type Outcome int

const (
	OutcomeOK       Outcome = iota
	OutcomeRejected         // non-2xx status
	OutcomeTimeout
	OutcomeFailed
	OutcomeDropped // failed DELETE, reported as neither value nor null
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeRejected:
		return "rejected"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeFailed:
		return "failed"
	case OutcomeDropped:
		return "dropped"
	}
	return "unknown"
}

// Notifier shows user facing messages. Implementations find the recipient
// in ctx.
type Notifier interface {
	Notify(ctx context.Context, severity nextgen.Severity, message string)
}

type Config struct {
	SearchURL     string
	CatalogURL    string
	Timeout       time.Duration
	AttachBearer  bool
	FailurePolicy FailurePolicy
	UserAgent     string
}

type Client struct {
	client        *http.Client
	transport     http.RoundTripper
	cache         *cache.Cache
	services      map[Service]string
	timeout       time.Duration
	attachBearer  bool
	failurePolicy FailurePolicy
	userAgent     string
	notifier      Notifier
	tokens        TokenStore
	metrics       *Metrics
	compactor     *jsonld.Compactor
}

type Option func(*Client)

func WithNotifier(n Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

func WithTokenStore(s TokenStore) Option {
	return func(c *Client) { c.tokens = s }
}

func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func New(conf Config, opts ...Option) *Client {
	c := &Client{
		cache: cache.New(10*time.Minute, 15*time.Minute),
		services: map[Service]string{
			ServiceSearch:  strings.TrimRight(conf.SearchURL, "/"),
			ServiceCatalog: strings.TrimRight(conf.CatalogURL, "/"),
		},
		timeout:       conf.Timeout,
		attachBearer:  conf.AttachBearer,
		failurePolicy: conf.FailurePolicy,
		userAgent:     conf.UserAgent,
		transport:     http.DefaultTransport,
		tokens:        NewMemoryTokenStore(""),
		compactor:     jsonld.NewCompactor(),
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	if c.failurePolicy == "" {
		c.failurePolicy = PolicySwallow
	}
	for _, opt := range opts {
		opt(c)
	}
	c.client = &http.Client{Transport: c}

	slog.Info(
		"gateway initialized",
		slog.String("search", c.services[ServiceSearch]),
		slog.String("catalog", c.services[ServiceCatalog]),
		slog.String("module", "client"),
	)
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}
	return c.transport.RoundTrip(req)
}

// Call describes one request to a backend service.
type Call struct {
	Service Service
	Path    string
	Method  string
	Body    any

	// Raw keeps a successful body as is instead of requiring JSON.
	Raw     bool
	NoToast bool
	Timeout time.Duration
}

type RequestOption func(*Call)

func WithoutToast() RequestOption {
	return func(call *Call) { call.NoToast = true }
}

func WithTimeout(d time.Duration) RequestOption {
	return func(call *Call) { call.Timeout = d }
}

// Reply is the normalised result of a call. Body is only set for OutcomeOK.
type Reply struct {
	Outcome Outcome
	Status  int
	Header  http.Header
	Body    []byte
}

// Null reports whether the call ended without a value.
func (r *Reply) Null() bool {
	return r == nil || r.Outcome == OutcomeRejected || r.Outcome == OutcomeTimeout || r.Outcome == OutcomeFailed
}

// Do performs the call. Failures never surface as errors unless the client
// propagates them by policy; they are reported through the reply's outcome and
// the notifier.
func (c *Client) Do(ctx context.Context, call Call) (*Reply, error) {
	if call.Method == "" {
		call.Method = http.MethodGet
	}

	ctx, span := tracer.Start(ctx, "Client.Do")
	defer span.End()
	span.SetAttributes(
		attribute.String("service", string(call.Service)),
		attribute.String("method", call.Method),
		attribute.String("path", call.Path),
	)

	start := time.Now()
	reply, err := c.do(ctx, call)
	if reply != nil {
		c.metrics.observe(call.Service, call.Method, reply.Outcome, time.Since(start))
		span.SetAttributes(
			attribute.String("outcome", reply.Outcome.String()),
			attribute.Int("status", reply.Status),
		)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return reply, err
}

func (c *Client) do(ctx context.Context, call Call) (*Reply, error) {
	base, ok := c.services[call.Service]
	if !ok || base == "" {
		return nil, errors.Wrapf(ErrUnknownService, "%q", call.Service)
	}

	timeout := call.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, contentType, err := encodeBody(call.Method, call.Body)
	if err != nil {
		return c.fail(ctx, reqCtx, call, err)
	}

	req, err := http.NewRequestWithContext(reqCtx, call.Method, base+call.Path, body)
	if err != nil {
		return c.fail(ctx, reqCtx, call, err)
	}
	req.Header.Set("Accept", nextgen.MediaTypeJSONLD)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.attachBearer {
		if token := c.tokenStore(ctx).AccessToken(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return c.fail(ctx, reqCtx, call, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(ctx, reqCtx, call, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	} else if !call.Raw && !json.Valid(data) {
		return c.fail(ctx, reqCtx, call, errors.New("response body is not valid JSON"))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.reject(ctx, call, resp.StatusCode, data)
		return &Reply{Outcome: OutcomeRejected, Status: resp.StatusCode, Header: resp.Header}, nil
	}

	return &Reply{
		Outcome: OutcomeOK,
		Status:  resp.StatusCode,
		Header:  resp.Header,
		Body:    data,
	}, nil
}

func encodeBody(method string, body any) (io.Reader, string, error) {
	if method == http.MethodGet || method == http.MethodDelete || body == nil {
		return nil, nextgen.MediaTypeJSON, nil
	}
	if form, ok := body.(*Multipart); ok {
		buf, contentType, err := form.encode()
		if err != nil {
			return nil, "", err
		}
		return buf, contentType, nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, "", errors.Wrap(err, "marshal request body")
	}
	return bytes.NewReader(b), nextgen.MediaTypeJSON, nil
}

func (c *Client) reject(ctx context.Context, call Call, status int, data []byte) {
	var apiErr nextgen.ApiError
	_ = json.Unmarshal(data, &apiErr)

	message := apiErr.Message()
	switch status {
	case http.StatusUnauthorized:
		c.tokenStore(ctx).ClearAccessToken(ctx)
		message = MessageUnauthorized
	case http.StatusConflict:
		message = MessageConflict
	default:
		if message == "" {
			message = MessageGeneric
		}
	}

	slog.WarnContext(
		ctx, "request rejected",
		slog.String("service", string(call.Service)),
		slog.String("method", call.Method),
		slog.String("path", call.Path),
		slog.Int("status", status),
		slog.String("message", message),
		slog.String("module", "client"),
	)
	c.notify(ctx, call, message)
}

func (c *Client) fail(ctx, reqCtx context.Context, call Call, err error) (*Reply, error) {
	if call.Method == http.MethodDelete {
		slog.DebugContext(
			ctx, "delete failed",
			slog.String("path", call.Path),
			slog.String("error", err.Error()),
			slog.String("module", "client"),
		)
		return &Reply{Outcome: OutcomeDropped}, nil
	}

	if ctx.Err() == nil && errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		c.notify(ctx, call, MessageTimeout)
		return &Reply{Outcome: OutcomeTimeout}, nil
	}

	slog.ErrorContext(
		ctx, "request failed",
		slog.String("service", string(call.Service)),
		slog.String("method", call.Method),
		slog.String("path", call.Path),
		slog.String("error", err.Error()),
		slog.String("module", "client"),
	)
	reply := &Reply{Outcome: OutcomeFailed}
	if ctx.Err() != nil {
		// the caller went away, nobody is left to notify
		return reply, nil
	}
	c.notify(ctx, call, MessageFetchFailed)
	if c.failurePolicy == PolicyPropagate {
		return reply, errors.Wrapf(err, "%s %s%s", call.Method, call.Service, call.Path)
	}
	return reply, nil
}

func (c *Client) notify(ctx context.Context, call Call, message string) {
	if call.NoToast || c.notifier == nil {
		return
	}
	c.notifier.Notify(ctx, nextgen.SeverityError, message)
}

// Request performs a call and decodes a successful body into T. A nil result
// with a nil error is the null sentinel.
func Request[T any](ctx context.Context, c *Client, service Service, path, method string, body any, opts ...RequestOption) (*T, error) {
	call := Call{Service: service, Path: path, Method: method, Body: body}
	for _, opt := range opts {
		opt(&call)
	}
	reply, err := c.Do(ctx, call)
	if err != nil {
		return nil, err
	}
	if reply.Outcome != OutcomeOK {
		return nil, nil
	}
	var result T
	if err := json.Unmarshal(reply.Body, &result); err != nil {
		return nil, c.undecodable(ctx, call, err)
	}
	return &result, nil
}

// undecodable treats a 2xx body that does not fit the expected shape like any
// other failed call: logged, notified once and null unless the policy
// propagates.
func (c *Client) undecodable(ctx context.Context, call Call, err error) error {
	slog.ErrorContext(
		ctx, "response not decodable",
		slog.String("service", string(call.Service)),
		slog.String("method", call.Method),
		slog.String("path", call.Path),
		slog.String("error", err.Error()),
		slog.String("module", "client"),
	)
	c.notify(ctx, call, MessageFetchFailed)
	if c.failurePolicy == PolicyPropagate {
		return errors.Wrapf(err, "decode %s %s%s", call.Method, call.Service, call.Path)
	}
	return nil
}
