package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/rental-pricing/internal/quotes"
	pkgerrors "github.com/angelmondragon/rental-pricing/pkg/errors"
	"github.com/angelmondragon/rental-pricing/pkg/geo"
	"github.com/angelmondragon/rental-pricing/pkg/types"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	envelopeSuccessCode       = 200
	tenantHeader              = "X-Tenant-Id"
	defaultTimeout            = 5 * time.Second
	errorBodyReadLimit  int64 = 1024
)

// HTTPClient reads the directory from the base-data and product services.
type HTTPClient struct {
	httpClient  *http.Client
	baseDataURL string
	productURL  string
}

var (
	_ quotes.Directory     = (*HTTPClient)(nil)
	_ quotes.PolicyCatalog = (*HTTPClient)(nil)
)

// Option configures optional client behavior.
type Option func(*HTTPClient)

// WithHTTPClient overrides the default traced HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *HTTPClient) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewHTTPClient builds a client for the two upstream services.
func NewHTTPClient(baseDataURL, productURL string, opts ...Option) (*HTTPClient, error) {
	baseDataURL = strings.TrimRight(strings.TrimSpace(baseDataURL), "/")
	productURL = strings.TrimRight(strings.TrimSpace(productURL), "/")
	if baseDataURL == "" || productURL == "" {
		return nil, errors.New("base data and product service urls are required")
	}

	client := &HTTPClient{
		baseDataURL: baseDataURL,
		productURL:  productURL,
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e envelope) ok() bool {
	return e.Code == envelopeSuccessCode
}

func (c *HTTPClient) FindStoresNear(ctx context.Context, center geo.Point, radiusKm float64) ([]quotes.StoreCandidate, error) {
	query := url.Values{}
	query.Set("longitude", strconv.FormatFloat(center.Lng, 'f', -1, 64))
	query.Set("latitude", strconv.FormatFloat(center.Lat, 'f', -1, 64))
	query.Set("distance", strconv.FormatFloat(radiusKm, 'f', -1, 64))

	var rows []storeDTO
	if err := c.fetch(ctx, c.baseDataURL+"/api/feign/stores/nearby?"+query.Encode(), nil, &rows, "nearby stores"); err != nil {
		return nil, err
	}

	out := make([]quotes.StoreCandidate, 0, len(rows))
	for _, row := range rows {
		candidate := row.toCandidate()
		if !row.listed() || !candidate.Location.Valid() {
			continue
		}
		candidate.DistanceKm = geo.DistanceKm(center, candidate.Location)
		out = append(out, candidate)
	}
	return out, nil
}

func (c *HTTPClient) FindServiceAreasByStore(ctx context.Context, storeID int64) ([]quotes.ServiceAreaRule, error) {
	var rows []serviceAreaDTO
	endpoint := fmt.Sprintf("%s/api/feign/service-areas/store/%d", c.baseDataURL, storeID)
	if err := c.fetch(ctx, endpoint, nil, &rows, "service areas"); err != nil {
		return nil, err
	}
	out := make([]quotes.ServiceAreaRule, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toRule())
	}
	return out, nil
}

func (c *HTTPClient) FindProductsByStore(ctx context.Context, storeID int64) ([]quotes.ProductOffering, error) {
	var rows []productDTO
	endpoint := fmt.Sprintf("%s/api/feign/car-model-products/store/%d", c.productURL, storeID)
	if err := c.fetch(ctx, endpoint, nil, &rows, "store products"); err != nil {
		return nil, err
	}
	out := make([]quotes.ProductOffering, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toOffering())
	}
	return out, nil
}

// FindSpecialPricing treats a non-success envelope as "no override"; the
// product service answers that way when the date has no special price.
func (c *HTTPClient) FindSpecialPricing(ctx context.Context, tenantID, productID int64, date types.Date) (*quotes.SpecialPricingOverride, error) {
	endpoint := fmt.Sprintf("%s/api/special-pricings/product/%d/date/%s", c.productURL, productID, date.String())
	headers := http.Header{}
	headers.Set(tenantHeader, strconv.FormatInt(tenantID, 10))

	env, err := c.do(ctx, endpoint, headers, "special pricing")
	if err != nil {
		return nil, err
	}
	if !env.ok() || isNull(env.Data) {
		return nil, nil
	}
	var row specialPricingDTO
	if err := json.Unmarshal(env.Data, &row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode special pricing")
	}
	if row.Price == nil {
		return nil, nil
	}
	// the lookup is keyed by date, so the requested date is authoritative
	return &quotes.SpecialPricingOverride{ProductID: productID, Date: date, PriceCents: *row.Price}, nil
}

func (c *HTTPClient) FindProductByStoreAndModel(ctx context.Context, storeID, carModelID int64) (*quotes.ProductOffering, error) {
	var row *productDTO
	endpoint := fmt.Sprintf("%s/api/feign/car-model-products/store/%d/model/%d", c.productURL, storeID, carModelID)
	if err := c.fetch(ctx, endpoint, nil, &row, "product by model"); err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	offering := row.toOffering()
	return &offering, nil
}

func (c *HTTPClient) ListValueAddedServiceTemplates(ctx context.Context) ([]quotes.ValueAddedServiceTemplate, error) {
	var rows []valueAddedServiceDTO
	if err := c.fetch(ctx, c.productURL+"/api/feign/value-added-service-templates/all", nil, &rows, "value added services"); err != nil {
		return nil, err
	}
	out := make([]quotes.ValueAddedServiceTemplate, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toTemplate())
	}
	return out, nil
}

func (c *HTTPClient) FindCancellationPolicy(ctx context.Context, templateID int64) (*quotes.CancellationPolicy, error) {
	var row *cancellationPolicyDTO
	endpoint := fmt.Sprintf("%s/api/feign/cancellation-rule-templates/%d", c.productURL, templateID)
	if err := c.fetch(ctx, endpoint, nil, &row, "cancellation policy"); err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	policy := quotes.CancellationPolicy(*row)
	return &policy, nil
}

func (c *HTTPClient) FindServicePolicy(ctx context.Context, templateID int64) (*quotes.ServicePolicy, error) {
	var row *servicePolicyDTO
	endpoint := fmt.Sprintf("%s/api/feign/service-policy-templates/%d", c.productURL, templateID)
	if err := c.fetch(ctx, endpoint, nil, &row, "service policy"); err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	policy := quotes.ServicePolicy(*row)
	return &policy, nil
}

// fetch requires a success envelope and decodes its data into out.
func (c *HTTPClient) fetch(ctx context.Context, endpoint string, headers http.Header, out any, what string) error {
	env, err := c.do(ctx, endpoint, headers, what)
	if err != nil {
		return err
	}
	if !env.ok() {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("%s lookup failed: code %d: %s", what, env.Code, env.Message))
	}
	if isNull(env.Data) {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+what)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, endpoint string, headers http.Header, what string) (envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return envelope{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build "+what+" request")
	}
	req.Header.Set("Accept", "application/json")
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return envelope{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute "+what+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return envelope{}, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), what+" request failed")
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return envelope{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+what+" envelope")
	}
	return env, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null"
}
