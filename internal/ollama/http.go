package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jeefy/lorademo/internal/models"
)

// httpClient talks to a running Ollama server instead of the CLI.
type httpClient struct {
	baseURL       string
	client        *http.Client
	statusTimeout time.Duration
	promptTimeout time.Duration
}

// NewHTTP constructs a Client for an Ollama HTTP endpoint. baseURL should be
// like "http://localhost:11434".
func NewHTTP(baseURL string, statusTimeout, promptTimeout time.Duration) Client {
	return &httpClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		client:        &http.Client{},
		statusTimeout: statusTimeout,
		promptTimeout: promptTimeout,
	}
}

type versionResponse struct {
	Version string `json:"version"`
}

type tagsResponse struct {
	Models []struct {
		Name  string `json:"name"`
		Model string `json:"model"`
	} `json:"models"`
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

func (h *httpClient) Version(ctx context.Context) models.Outcome {
	out, body := h.do(ctx, h.statusTimeout, http.MethodGet, "/api/version", nil)
	if !out.OK() {
		return out
	}
	var vr versionResponse
	if err := json.Unmarshal(body, &vr); err != nil || vr.Version == "" {
		return decodeFailure(out, err)
	}
	out.Stdout = "ollama version is " + vr.Version + "\n"
	return out
}

func (h *httpClient) List(ctx context.Context) models.Outcome {
	out, body := h.do(ctx, h.statusTimeout, http.MethodGet, "/api/tags", nil)
	if !out.OK() {
		return out
	}
	var tr tagsResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return decodeFailure(out, err)
	}
	// mirror the CLI's table so HasModel works on either backend
	var b strings.Builder
	b.WriteString("NAME\n")
	for _, m := range tr.Models {
		name := m.Name
		if name == "" {
			name = m.Model
		}
		b.WriteString(name + "\n")
	}
	out.Stdout = b.String()
	return out
}

func (h *httpClient) Generate(ctx context.Context, model, prompt string) models.Outcome {
	reqBody, _ := json.Marshal(generateRequest{Model: model, Prompt: prompt})
	out, body := h.do(ctx, h.promptTimeout, http.MethodPost, "/api/generate", reqBody)
	if !out.OK() {
		return out
	}
	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return decodeFailure(out, err)
	}
	if gr.Error != "" {
		out.Kind = models.OutcomeExitError
		out.Stderr = gr.Error
		return out
	}
	out.Stdout = gr.Response
	return out
}

func (h *httpClient) Backend() string { return "http" }

// do performs one request and maps transport failures onto the outcome
// taxonomy: unreachable server is NotFound, deadline is Timeout, non-2xx is
// ExitError carrying the status code.
func (h *httpClient) do(ctx context.Context, timeout time.Duration, method, path string, body []byte) (models.Outcome, []byte) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, rd)
	if err != nil {
		return models.Outcome{Kind: models.OutcomeError, Err: err, ExitCode: -1}, nil
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := h.client.Do(req)
	if err != nil {
		out := models.Outcome{Kind: classifyTransport(ctx, err), Err: err, ExitCode: -1, Elapsed: time.Since(start)}
		slog.Debug("ollama: request failed", "path", path, "kind", out.Kind, "err", err)
		return out, nil
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		return models.Outcome{Kind: classifyTransport(ctx, err), Err: err, ExitCode: -1, Elapsed: elapsed}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.Outcome{
			Kind:     models.OutcomeExitError,
			Stderr:   strings.TrimSpace(string(data)),
			ExitCode: resp.StatusCode,
			Elapsed:  elapsed,
			Err:      fmt.Errorf("status %d", resp.StatusCode),
		}, data
	}
	return models.Outcome{Kind: models.OutcomeOK, Elapsed: elapsed}, data
}

func classifyTransport(ctx context.Context, err error) models.OutcomeKind {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return models.OutcomeTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return models.OutcomeTimeout
	}
	var op *net.OpError
	if errors.As(err, &op) && op.Op == "dial" {
		return models.OutcomeNotFound
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return models.OutcomeNotFound
	}
	return models.OutcomeError
}

func decodeFailure(out models.Outcome, err error) models.Outcome {
	if err == nil {
		err = errors.New("unrecognized response shape")
	}
	out.Kind = models.OutcomeError
	out.Err = fmt.Errorf("ollama: decode response: %w", err)
	return out
}
