// Package client implements the HTTP transport to the multi-agent backend.
//
// One Send call issues a team run request and consumes the streamed
// response end-to-end: body chunks feed the sse.Splitter, decoded events
// feed a fresh run.Aggregator, and the aggregator's resolution for the
// requested target role becomes the result.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/pithecene-io/atelier/iox"
	"github.com/pithecene-io/atelier/log"
	"github.com/pithecene-io/atelier/metrics"
	"github.com/pithecene-io/atelier/run"
	"github.com/pithecene-io/atelier/sse"
	"github.com/pithecene-io/atelier/types"
)

// readBufferSize is the transport read granularity. The splitter makes no
// assumption about chunk boundaries, so the value only affects syscall count.
const readBufferSize = 4096

// Config configures the backend connection.
type Config struct {
	// BaseURL is the backend root, e.g. http://localhost:7777.
	BaseURL string
	// Team is the team identifier in the run endpoint path.
	Team string
}

// Attachment is an optional file part sent with a request.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Request is one outbound team run request.
type Request struct {
	// Message is the free-text prompt.
	Message string
	// SessionID is the continuation token from a prior run, if any.
	SessionID string
	// Target is the role identifier whose output should be surfaced.
	Target string
	// Attachments are optional file parts.
	Attachments []Attachment
}

// StatusError is returned for non-2xx responses. The body text is retained
// so the failure can be surfaced verbatim.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Body)
	}
	return fmt.Sprintf("backend returned status %d", e.Code)
}

// Client issues streaming run requests against one backend.
type Client struct {
	config    Config
	http      *http.Client
	logger    *log.Logger
	collector *metrics.Collector
}

// New creates a client. logger and collector may be nil.
// No client-level timeout is set: streams are bounded by the caller's
// context, not a fixed response deadline.
func New(cfg Config, logger *log.Logger, collector *metrics.Collector) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("client requires a backend base URL")
	}
	if cfg.Team == "" {
		return nil, errors.New("client requires a team identifier")
	}
	return &Client{
		config:    cfg,
		http:      &http.Client{},
		logger:    logger,
		collector: collector,
	}, nil
}

// Send issues the request and consumes the event stream to completion.
//
// Failure taxonomy:
//   - *StatusError: non-2xx response (transport failure)
//   - *run.Error: backend-reported run error event
//   - context errors: the caller canceled; the stream is released cleanly
func (c *Client) Send(ctx context.Context, req *Request) (*types.RunResult, error) {
	c.collector.IncRequestStarted()

	resp, err := c.open(ctx, req)
	if err != nil {
		c.collector.IncRequestFailed()
		return nil, err
	}
	defer iox.DiscardClose(resp.Body)

	result, err := c.consume(ctx, resp.Body, types.NormalizeID(req.Target))
	if err != nil {
		c.collector.IncRequestFailed()
		return nil, err
	}

	c.collector.IncRequestCompleted()
	c.collector.AddMembersResolved(int64(len(result.Members)))
	return result, nil
}

// open issues the HTTP request and validates the response status.
func (c *Client) open(ctx context.Context, req *Request) (*http.Response, error) {
	body, contentType, err := encodeForm(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/teams/%s/runs",
		strings.TrimRight(c.config.BaseURL, "/"), url.PathEscape(c.config.Team))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		iox.DiscardClose(resp.Body)
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	return resp, nil
}

// consume reads the stream to EOF, feeding frames through decode and
// aggregation, then resolves the result for target.
func (c *Client) consume(ctx context.Context, body io.Reader, target string) (*types.RunResult, error) {
	var sugar *log.SugaredLogger
	if c.logger != nil {
		sugar = c.logger.Sugar()
	}
	splitter := sse.NewSplitter()
	aggregator := run.NewAggregator(sugar)

	buf := make([]byte, readBufferSize)
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			for _, frame := range splitter.Push(string(buf[:n])) {
				if err := c.handleFrame(aggregator, frame); err != nil {
					return nil, err
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			// Cancellation releases the stream without a transport error.
			if ctx.Err() != nil {
				return nil, fmt.Errorf("stream canceled: %w", ctx.Err())
			}
			return nil, fmt.Errorf("stream read failed: %w", readErr)
		}
	}

	// Best-effort decode of the buffered tail; an incomplete or malformed
	// tail is discarded as a non-frame.
	if tail := splitter.Flush(); tail != "" {
		if err := c.handleFrame(aggregator, tail); err != nil {
			return nil, err
		}
	}

	return aggregator.Finish(target)
}

// handleFrame decodes one frame and applies it to the aggregator.
// Decode diagnostics are logged and counted but never fail the run;
// only run error events propagate.
func (c *Client) handleFrame(aggregator *run.Aggregator, frame string) error {
	event, err := sse.DecodeFrame(frame)
	if err != nil {
		c.collector.IncDecodeError()
		if c.logger != nil {
			c.logger.Warn("frame decode diagnostic", map[string]any{
				"error": err.Error(),
			})
		}
	}
	if event == nil {
		return nil
	}

	c.collector.IncFramesDecoded(1)
	c.collector.IncEventsConsumed()
	return aggregator.Consume(event)
}

// encodeForm builds the multipart request body.
func encodeForm(req *Request) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	if err := form.WriteField("message", req.Message); err != nil {
		return nil, "", err
	}
	if err := form.WriteField("stream", "true"); err != nil {
		return nil, "", err
	}
	if req.SessionID != "" {
		if err := form.WriteField("session_id", req.SessionID); err != nil {
			return nil, "", err
		}
	}
	for _, att := range req.Attachments {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, att.Name))
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)
		part, err := form.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(att.Data); err != nil {
			return nil, "", err
		}
	}

	if err := form.Close(); err != nil {
		return nil, "", err
	}
	return &body, form.FormDataContentType(), nil
}
