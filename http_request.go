package rdapclient

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"time"
)

// getRaw performs a conditional GET against a non-RDAP resource (the
// bootstrap registries), returning a nil body on 304 Not Modified.
// metaSrc may be nil to force an unconditional request.
func (c *Client) getRaw(ctx context.Context, u string, metaSrc func(string) (cachedMeta, bool)) ([]byte, http.Header, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.baseTimeout)
	defer cancel()

	req, _ := http.NewRequestWithContext(reqCtx, http.MethodGet, u, nil)
	req.Header.Set("User-Agent", c.ua)
	copyHeaders(req.Header, c.headerExtra)

	if metaSrc != nil {
		if meta, ok := metaSrc(u); ok {
			if meta.ETag != "" {
				req.Header.Set("If-None-Match", meta.ETag)
			}
			if !meta.LastModified.IsZero() {
				req.Header.Set("If-Modified-Since", meta.LastModified.Format(http.TimeFormat))
			}
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		if isContextErr(ctx) {
			return nil, nil, &Error{Kind: KindCancelled, Err: err}
		}
		return nil, nil, &Error{Kind: KindTimeout, Message: "bootstrap request failed", Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		io.Copy(io.Discard, resp.Body)
		return nil, resp.Header, nil
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
		if err != nil {
			return nil, nil, &Error{Kind: KindDecodeError, Message: "read bootstrap body", Err: err}
		}
		return body, resp.Header, nil
	default:
		return nil, nil, newHTTPStatusError(resp.StatusCode)
	}
}

// getJSON performs an RDAP GET with validators, caching, retries and
// rate-limit handling, returning the decoded body as a generic map
// ready for ParseObject.
func (c *Client) getJSON(ctx context.Context, u string) (map[string]any, http.Header, error) {
	if body, ok := c.respCache.Get(u); ok {
		var m map[string]any
		if err := json.Unmarshal(body, &m); err == nil {
			return m, nil, nil
		}
	}

	useValidators := true
	didUnconditional := false

	for attempt := 1; ; attempt++ {
		reqCtx, cancel := context.WithTimeout(ctx, c.baseTimeout)

		req, _ := http.NewRequestWithContext(reqCtx, http.MethodGet, u, nil)
		req.Header.Set("Accept", "application/rdap+json, application/json;q=0.8, */*;q=0.1")
		req.Header.Set("User-Agent", c.ua)
		copyHeaders(req.Header, c.headerExtra)

		if useValidators {
			if meta, ok := c.respCache.Meta(u); ok {
				if meta.ETag != "" {
					req.Header.Set("If-None-Match", meta.ETag)
				}
				if !meta.LastModified.IsZero() {
					req.Header.Set("If-Modified-Since", meta.LastModified.Format(http.TimeFormat))
				}
			}
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			cancel()
			if ctx.Err() != nil {
				return nil, nil, &Error{Kind: KindCancelled, Err: ctx.Err()}
			}
			if attempt <= c.maxRetries && isRetryableNetErr(err) {
				select {
				case <-time.After(c.backoff(attempt)):
					continue
				case <-ctx.Done():
					return nil, nil, &Error{Kind: KindCancelled, Err: ctx.Err()}
				}
			}
			return nil, nil, &Error{Kind: KindTimeout, Message: "rdap request failed", Err: err}
		}

		switch resp.StatusCode {
		case http.StatusNotModified:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			cancel()

			if body := c.respCache.FreshBody(u); body != nil {
				var m map[string]any
				if json.Unmarshal(body, &m) == nil {
					c.respCache.UpdateFreshness(u, resp.Header)
					return m, resp.Header, nil
				}
			}
			if !didUnconditional {
				didUnconditional = true
				useValidators = false
				continue
			}
			return nil, nil, &Error{Kind: KindDecodeError, Message: "304 but no cached body"}

		case http.StatusOK:
			ct := resp.Header.Get("Content-Type")
			b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			resp.Body.Close()
			cancel()
			if err != nil {
				return nil, nil, &Error{Kind: KindDecodeError, Message: "read response body", Err: err}
			}
			if !looksLikeJSON(ct, b) {
				return nil, nil, &Error{Kind: KindBadResponseType, Message: ct}
			}
			var m map[string]any
			if err := json.Unmarshal(b, &m); err != nil {
				return nil, nil, &Error{Kind: KindDecodeError, Message: "unmarshal response", Err: err}
			}
			c.respCache.Store(u, b, resp.Header)
			return m, resp.Header, nil

		case http.StatusNotFound:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 512<<10))
			resp.Body.Close()
			cancel()
			c.respCache.StoreNegative(u, 5*time.Minute)
			return nil, nil, remoteOrStatusError(http.StatusNotFound, b, KindNotFound)

		case http.StatusTooManyRequests:
			wait := retryAfter(resp.Header, c.backoff(attempt))
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			cancel()
			if attempt <= c.maxRetries {
				select {
				case <-time.After(wait):
					continue
				case <-ctx.Done():
					return nil, nil, &Error{Kind: KindCancelled, Err: ctx.Err()}
				}
			}
			return nil, nil, newRateLimited(wait)

		case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout, http.StatusInternalServerError:
			wait := retryAfter(resp.Header, c.backoff(attempt))
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			cancel()
			if attempt <= c.maxRetries {
				select {
				case <-time.After(wait):
					continue
				case <-ctx.Done():
					return nil, nil, &Error{Kind: KindCancelled, Err: ctx.Err()}
				}
			}
			return nil, nil, newHTTPStatusError(resp.StatusCode)

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 512<<10))
			resp.Body.Close()
			cancel()
			return nil, nil, remoteOrStatusError(resp.StatusCode, b, KindHTTPStatus)
		}
	}
}

// remoteOrStatusError tries to decode b as an RDAP error object; if it
// doesn't look like one, falls back to a plain HTTP status error of
// the given kind.
func remoteOrStatusError(code int, b []byte, fallback Kind) *Error {
	var er ErrorResponse
	if len(b) > 0 && json.Unmarshal(b, &er) == nil && er.ErrorCode != 0 {
		return newRemoteError(er.ErrorCode, er.Title, er.Description)
	}
	return &Error{Kind: fallback, Code: code}
}

func looksLikeJSON(contentType string, body []byte) bool {
	if contentType != "" {
		if containsAny(lower(contentType), "json") {
			return true
		}
	}
	trimmed := trimLeadingSpace(body)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

func trimLeadingSpace(b []byte) []byte {
	i := 0
	for i < len(b) && (b[i] == ' ' || b[i] == '\t' || b[i] == '\n' || b[i] == '\r') {
		i++
	}
	return b[i:]
}

func isContextErr(ctx context.Context) bool { return ctx.Err() != nil }

func isRetryableNetErr(err error) bool {
	var ne net.Error
	if errorsAs(err, &ne) && (ne.Timeout() || temporary(ne)) {
		return true
	}
	msg := lower(err.Error())
	return containsAny(msg, "connection reset", "broken pipe", "unexpected eof", "no such host")
}
