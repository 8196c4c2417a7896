package cricketdata

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/crickbase/fantasy-cricket/internal/platform/logging"
	"github.com/crickbase/fantasy-cricket/internal/platform/resilience"
	"github.com/crickbase/fantasy-cricket/internal/usecase"
)

const (
	defaultBaseURL     = "https://api.crickdata.io/v2"
	maxResponseBody    = 6 << 20
	defaultHTTPTimeout = 20 * time.Second
)

var apiTokenParamRegex = regexp.MustCompile(`api_token=[^&\s"']+`)
var errCricketDataTransient = crerr.New("cricketdata transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the cricket data provider. It implements usecase.MatchFeed:
// fixture schedules and per-match stat lines.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultHTTPTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type fixtureEnvelope struct {
	Data []fixturePayload `json:"data"`
}

type fixturePayload struct {
	MatchID   string `json:"match_id"`
	Seq       int    `json:"seq"`
	StartsAt  string `json:"starts_at"`
	Completed bool   `json:"completed"`
}

type performanceEnvelope struct {
	Data []performancePayload `json:"data"`
}

type performancePayload struct {
	PlayerID   string  `json:"player_id"`
	Runs       int     `json:"runs"`
	Balls      int     `json:"balls"`
	Fours      int     `json:"fours"`
	Sixes      int     `json:"sixes"`
	StrikeRate float64 `json:"strike_rate"`
	Out        bool    `json:"out"`
	Wickets    int     `json:"wickets"`
	Overs      float64 `json:"overs"`
	Maidens    int     `json:"maidens"`
	Economy    float64 `json:"economy"`
	Catches    int     `json:"catches"`
	Stumpings  int     `json:"stumpings"`
	RunOuts    int     `json:"run_outs"`
}

func (c *Client) Fixtures(ctx context.Context, leagueID string) ([]usecase.ExternalFixture, error) {
	if strings.TrimSpace(leagueID) == "" {
		return nil, fmt.Errorf("league id is required")
	}

	var envelope fixtureEnvelope
	path := fmt.Sprintf("/leagues/%s/fixtures", url.PathEscape(leagueID))
	if err := c.doJSON(ctx, path, nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetch fixtures league_id=%s: %w", leagueID, err)
	}

	out := make([]usecase.ExternalFixture, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		startsAt, err := time.Parse(time.RFC3339, item.StartsAt)
		if err != nil {
			c.logger.WarnContext(ctx, "cricketdata fixture has unparsable start time",
				"match_id", item.MatchID, "starts_at", item.StartsAt)
			continue
		}
		out = append(out, usecase.ExternalFixture{
			MatchID:   item.MatchID,
			Seq:       item.Seq,
			StartsAt:  startsAt,
			Completed: item.Completed,
		})
	}
	return out, nil
}

func (c *Client) MatchPerformances(ctx context.Context, matchID string) ([]usecase.ExternalPerformance, error) {
	if strings.TrimSpace(matchID) == "" {
		return nil, fmt.Errorf("match id is required")
	}

	var envelope performanceEnvelope
	path := fmt.Sprintf("/matches/%s/performances", url.PathEscape(matchID))
	if err := c.doJSON(ctx, path, nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetch performances match_id=%s: %w", matchID, err)
	}

	out := make([]usecase.ExternalPerformance, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		out = append(out, usecase.ExternalPerformance{
			PlayerID:   item.PlayerID,
			Runs:       item.Runs,
			Balls:      item.Balls,
			Fours:      item.Fours,
			Sixes:      item.Sixes,
			StrikeRate: item.StrikeRate,
			Out:        item.Out,
			Wickets:    item.Wickets,
			Overs:      item.Overs,
			Maidens:    item.Maidens,
			Economy:    item.Economy,
			Catches:    item.Catches,
			Stumpings:  item.Stumpings,
			RunOuts:    item.RunOuts,
		})
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "cricketdata circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: cricket data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	values.Set("api_token", c.token)

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isTransient(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errCricketDataTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := readBody(resp.Body)
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errCricketDataTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errCricketDataTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "cricketdata request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

func readBody(body io.Reader) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := buf.ReadFrom(io.LimitReader(body, maxResponseBody)); err != nil {
		return nil, err
	}
	return append([]byte(nil), buf.B...), nil
}

func isTransient(err error) bool {
	return stderrors.Is(err, errCricketDataTransient)
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return apiTokenParamRegex.ReplaceAllString(value, "api_token=REDACTED")
}

func redactAPIURL(fullURL string) string {
	return apiTokenParamRegex.ReplaceAllString(fullURL, "api_token=REDACTED")
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
