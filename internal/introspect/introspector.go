package introspect

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"erp-migrator/internal/schema"
)

// swaggerPaths are the spec locations probed in order. ERP installations
// differ in where they publish the document.
var swaggerPaths = []string{
	"/swagger.json",
	"/openapi.json",
	"/v1/swagger.json",
	"/api/swagger.json",
	"/docs/openapi.json",
	"/rest-api-docs",
	"/api-docs",
}

// maxSpecSize bounds how much of a spec response is read.
const maxSpecSize = 16 << 20

// Logger is the minimal logging interface used by the introspector.
type Logger interface {
	Printf(format string, v ...any)
}

// Introspector fetches the ERP API's OpenAPI document and turns it into a
// target schema, consulting the cache first.
type Introspector struct {
	BaseURL  string
	Username string
	Password string
	Client   *http.Client
	Cache    *Cache
	Logger   Logger
}

func NewIntrospector(baseURL, username, password string, cache *Cache, logger Logger) *Introspector {
	return &Introspector{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Username: username,
		Password: password,
		Client:   &http.Client{Timeout: 30 * time.Second},
		Cache:    cache,
		Logger:   logger,
	}
}

func (in *Introspector) logf(format string, v ...any) {
	if in.Logger != nil {
		in.Logger.Printf(format, v...)
	}
}

// connectionKey identifies the ERP connection for cache lookups. Two
// operators pointing at the same installation with different accounts get
// separate entries.
func (in *Introspector) connectionKey() string {
	return in.Username + "@" + in.BaseURL
}

// Target returns the cached target schema for this connection. A miss or
// expired entry surfaces as schema.ErrNotLoaded: the operator must sync.
func (in *Introspector) Target(ctx context.Context) (*schema.Target, error) {
	return in.Cache.Get(ctx, in.connectionKey())
}

// Sync fetches the OpenAPI document, analyzes it, and refreshes the cache.
// Probes every known spec location before giving up.
func (in *Introspector) Sync(ctx context.Context) (*schema.Target, error) {
	var lastErr error

	for _, path := range swaggerPaths {
		raw, err := in.fetch(ctx, in.BaseURL+path)
		if err != nil {
			lastErr = err
			continue
		}

		target, err := AnalyzeSpec(raw)
		if err != nil {
			in.logf("stage=sync path=%s analyze failed: %v", path, err)
			lastErr = err
			continue
		}

		if err := in.Cache.Put(ctx, in.connectionKey(), target); err != nil {
			return nil, err
		}

		in.logf("stage=sync path=%s endpoints=%d", path, len(target.Endpoints))
		return target, nil
	}

	return nil, fmt.Errorf("no OpenAPI spec found at %s (tried %d locations): %w",
		in.BaseURL, len(swaggerPaths), lastErr)
}

func (in *Introspector) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if in.Username != "" {
		req.SetBasicAuth(in.Username, in.Password)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := in.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxSpecSize))
}
