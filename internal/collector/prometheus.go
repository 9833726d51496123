package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/riskradar/backend-go/internal/domain"
	"github.com/riskradar/backend-go/internal/evidence"
)

// PromMetricSource queries a Prometheus range API and turns the result
// into per-resource metric series for correlation. Each configured query
// must aggregate by the resource label so that one call returns the series
// for every resource at once.
type PromMetricSource struct {
	endpoint      string
	queries       map[string]string
	resourceLabel string
	step          time.Duration
	client        *http.Client
}

// PromConfig holds construction parameters for PromMetricSource.
type PromConfig struct {
	Endpoint      string
	Queries       map[string]string
	ResourceLabel string
	Step          time.Duration
	Timeout       time.Duration
}

// NewPromMetricSource creates a metric source against a Prometheus endpoint.
func NewPromMetricSource(cfg PromConfig) *PromMetricSource {
	if cfg.ResourceLabel == "" {
		cfg.ResourceLabel = "resource"
	}
	if cfg.Step == 0 {
		cfg.Step = time.Minute
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if len(cfg.Queries) == 0 {
		cfg.Queries = map[string]string{
			"traffic": `sum by (resource) (rate(http_requests_total[5m]))`,
			"health":  `sum by (resource) (rate(http_requests_errors_total[5m]))`,
		}
	}
	return &PromMetricSource{
		endpoint:      strings.TrimRight(cfg.Endpoint, "/"),
		queries:       cfg.Queries,
		resourceLabel: cfg.ResourceLabel,
		step:          cfg.Step,
		client:        &http.Client{Timeout: cfg.Timeout},
	}
}

// Query runs every configured range query and returns the series for all
// resources; the correlation extractor separates the queried resource from
// its peers.
func (p *PromMetricSource) Query(ctx context.Context, resourceID string, tr evidence.TimeRange) ([]evidence.MetricSeries, error) {
	var out []evidence.MetricSeries
	for name, query := range p.queries {
		series, err := p.rangeQuery(ctx, name, query, tr)
		if err != nil {
			return nil, fmt.Errorf("%w: query %s: %v", domain.ErrCollectorUnavailable, name, err)
		}
		out = append(out, series...)
	}
	return out, nil
}

func (p *PromMetricSource) rangeQuery(ctx context.Context, name, query string, tr evidence.TimeRange) ([]evidence.MetricSeries, error) {
	queryURL := fmt.Sprintf("%s/api/v1/query_range?query=%s&start=%d&end=%d&step=%d",
		p.endpoint, url.QueryEscape(query), tr.Start.Unix(), tr.End.Unix(), int(p.step.Seconds()))

	req, err := http.NewRequestWithContext(ctx, "GET", queryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prometheus request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("prometheus returned %d", resp.StatusCode)
	}

	var body struct {
		Data struct {
			Result []struct {
				Metric map[string]string    `json:"metric"`
				Values [][2]json.RawMessage `json:"values"`
			} `json:"result"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	series := make([]evidence.MetricSeries, 0, len(body.Data.Result))
	for _, result := range body.Data.Result {
		resource := result.Metric[p.resourceLabel]
		if resource == "" {
			continue
		}
		s := evidence.MetricSeries{ResourceID: resource, Name: name}
		for _, pair := range result.Values {
			var unix float64
			if err := json.Unmarshal(pair[0], &unix); err != nil {
				continue
			}
			var valStr string
			if err := json.Unmarshal(pair[1], &valStr); err != nil {
				continue
			}
			value, err := strconv.ParseFloat(valStr, 64)
			if err != nil {
				continue
			}
			s.Points = append(s.Points, evidence.MetricPoint{
				Timestamp: time.Unix(int64(unix), 0).UTC(),
				Value:     value,
			})
		}
		if len(s.Points) > 0 {
			series = append(series, s)
		}
	}
	return series, nil
}
