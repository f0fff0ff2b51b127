// Package rpc fetches and decodes the node RPC endpoints the dashboard polls.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/worker"
)

// DefaultTimeout bounds one HTTP round trip.
const DefaultTimeout = 10 * time.Second

// maxBodySize caps how much of a response body is read.
const maxBodySize = 64 << 20

// Request asks the fetcher for one target. ID correlates the answer.
type Request struct {
	ID     uuid.UUID `json:"id"`
	Target Target    `json:"target"`
	Params Params    `json:"params"`
}

// NewRequest stamps a fresh correlation id.
func NewRequest(t Target, p Params) Request {
	return Request{ID: uuid.New(), Target: t, Params: p}
}

// Response answers exactly one Request. Either Payload or Err is set.
// Payload holds the decoded schema value for Target, for example
// BlockHeader for CurrentHeadHeader.
type Response struct {
	ID      uuid.UUID
	Target  Target
	Params  Params
	Payload any
	Err     error
	Latency time.Duration
}

// Fetcher performs RPC GETs against one node.
type Fetcher struct {
	base    *url.URL
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithTimeout sets the per-request deadline.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFetcher validates baseURL and returns a Fetcher for it.
func NewFetcher(baseURL string, opts ...Option) (*Fetcher, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Target: -1, Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &Error{Kind: KindTransport, Target: -1, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
	f := &Fetcher{
		base:    u,
		client:  http.DefaultClient,
		timeout: DefaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// URL returns the absolute URL for req.
func (f *Fetcher) URL(req Request) string {
	return f.base.String() + req.Target.Path(req.Params)
}

// Fetch performs req and always returns a Response for it.
func (f *Fetcher) Fetch(ctx context.Context, req Request) Response {
	start := f.now()
	payload, err := f.fetch(ctx, req)
	resp := Response{
		ID:      req.ID,
		Target:  req.Target,
		Params:  req.Params,
		Payload: payload,
		Err:     err,
		Latency: f.now().Sub(start),
	}
	if err != nil {
		f.logger.Warn("rpc request failed",
			"target", req.Target.String(),
			"correlation_id", req.ID.String(),
			"error", err,
		)
	} else {
		f.logger.Debug("rpc request done",
			"target", req.Target.String(),
			"correlation_id", req.ID.String(),
			"latency", resp.Latency,
		)
	}
	return resp
}

func (f *Fetcher) fetch(ctx context.Context, req Request) (any, error) {
	if req.Target < 0 || req.Target >= targetCount {
		return nil, &Error{Kind: KindProtocol, Target: req.Target, Err: errUnknownTarget(req.Target.String())}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(req), nil)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Target: req.Target, Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Target: req.Target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &Error{
			Kind:   KindProtocol,
			Target: req.Target,
			Status: resp.StatusCode,
			Err:    errors.New(strings.TrimSpace(string(msg))),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Target: req.Target, Err: err}
	}
	payload, err := Decode(req.Target, body)
	if err != nil {
		return nil, &Error{Kind: KindDecode, Target: req.Target, Err: err}
	}
	return payload, nil
}

// Decode parses body into the schema for t.
func Decode(t Target, body []byte) (any, error) {
	switch t {
	case CurrentHeadHeader:
		return decodeAs[BlockHeader](body)
	case EndorsementRights:
		return decodeAs[EndorsingRights](body)
	case EndorsementStatuses:
		return decodeAs[EndorsementStatusMap](body)
	case OperationsStats:
		return decodeAs[OperationStatsMap](body)
	case BakingRights:
		return decodeAs[BakingRightsList](body)
	case ApplicationStats:
		return decodeAs[ApplicationStatsList](body)
	case PeerStats:
		return decodeAs[PeerStatsMap](body)
	case NetworkConstants:
		return decodeAs[Constants](body)
	case CurrentHeadMetadata:
		return decodeAs[HeadMetadata](body)
	case BestRemoteLevel:
		var lvl *int32
		if err := json.Unmarshal(body, &lvl); err != nil {
			return nil, err
		}
		return RemoteLevel{Level: lvl}, nil
	}
	return nil, errUnknownTarget(t.String())
}

func decodeAs[T any](body []byte) (any, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Serve answers requests from r until ctx is done or the requester goes
// away, both of which end the loop cleanly. Every request gets exactly one
// response.
func (f *Fetcher) Serve(ctx context.Context, r *worker.Responder[Request, Response]) error {
	defer r.Close()
	for {
		req, err := r.Recv(ctx)
		if err != nil {
			if errors.Is(err, worker.ErrDisconnected) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		resp := f.Fetch(ctx, req)
		if err := r.Send(ctx, resp); err != nil {
			if errors.Is(err, worker.ErrDisconnected) || ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}
