package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
)

// HTTPTriggerRequest is the envelope the Functions host posts for an HTTP trigger.
type HTTPTriggerRequest struct {
	Data struct {
		Req struct {
			URL             string              `json:"Url"`
			Method          string              `json:"Method"`
			Query           map[string]string   `json:"Query"`
			Headers         map[string][]string `json:"Headers"`
			Params          map[string]string   `json:"Params"`
			Body            string              `json:"Body"`
			IsBase64Encoded bool                `json:"isBase64Encoded"`
		} `json:"req"`
	} `json:"Data"`
	Metadata map[string]any `json:"Metadata"`
}

// HTTPTriggerResponse is the envelope returned to the Functions host.
type HTTPTriggerResponse struct {
	Outputs struct {
		Res struct {
			StatusCode int               `json:"statusCode"`
			Headers    map[string]string `json:"headers"`
			Body       string            `json:"body"`
		} `json:"res"`
	} `json:"Outputs"`
	Logs        []string `json:"Logs,omitempty"`
	ReturnValue any      `json:"ReturnValue,omitempty"`
}

// HandleHttpTrigger unwraps a host envelope into a plain request, serves it with next
// and wraps the recorded response back into an envelope.
func (d *Dependencies) HandleHttpTrigger(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var envelope HTTPTriggerRequest
		if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
			slog.Error("failed to unmarshal HTTP trigger request", "error", err)
			http.Error(w, "Failed to unmarshal request", http.StatusBadRequest)
			return
		}

		inner, err := unwrapRequest(envelope)
		if err != nil {
			slog.Error("failed to create internal request", "error", err)
			http.Error(w, "Failed to create internal request", http.StatusInternalServerError)
			return
		}
		inner = inner.WithContext(r.Context())
		slog.Info("serving wrapped HTTP request", "method", inner.Method, "path", inner.URL.Path)

		recorder := httptest.NewRecorder()
		next.ServeHTTP(recorder, inner)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(wrapResponse(recorder.Result())); err != nil {
			slog.Error("failed to encode HTTP trigger response", "error", err)
		}
	}
}

func unwrapRequest(envelope HTTPTriggerRequest) (*http.Request, error) {
	req := envelope.Data.Req

	req2, err := http.NewRequest(req.Method, req.URL, decodeBody(req.Body, req.IsBase64Encoded))
	if err != nil {
		return nil, err
	}
	for k, values := range req.Headers {
		for _, v := range values {
			req2.Header.Add(k, v)
		}
	}

	// The host also lists query parameters separately; fill in any the URL lacks.
	if len(req.Query) > 0 {
		q := req2.URL.Query()
		for k, v := range req.Query {
			if !q.Has(k) {
				q.Set(k, v)
			}
		}
		req2.URL.RawQuery = q.Encode()
	}
	return req2, nil
}

// decodeBody returns the request body. Some hosts send base64 without setting the flag,
// so decoding is attempted either way.
func decodeBody(body string, flagged bool) io.Reader {
	if body == "" {
		return http.NoBody
	}
	if decoded, err := base64.StdEncoding.DecodeString(body); err == nil {
		return bytes.NewReader(decoded)
	} else if flagged {
		slog.Warn("body flagged as base64 but failed to decode, using raw", "error", err)
	}
	return strings.NewReader(body)
}

func wrapResponse(res *http.Response) HTTPTriggerResponse {
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()

	headers := make(map[string]string, len(res.Header))
	for k, v := range res.Header {
		headers[k] = strings.Join(v, ", ")
	}

	var out HTTPTriggerResponse
	out.Outputs.Res.StatusCode = res.StatusCode
	out.Outputs.Res.Headers = headers
	out.Outputs.Res.Body = string(body)
	return out
}
