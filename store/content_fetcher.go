// Copyright 2025 AgentCore
// SPDX-License-Identifier: BUSL-1.1

package store

import (
	"context"
	"io"
	"net/http"
	"time"

	"agentcore/platform/connectors/base"
	"agentcore/platform/corexerr"
	"agentcore/platform/domain"
)

// HTTPContentFetcher retrieves a Document's source bytes from the URL
// named in its SourceMetadata["url"], validated through
// connectors/base.ValidateURL the same way connectorproxy validates any
// connector statement that is itself a URL. Object-storage-backed
// documents (s3, gcs, azureblob) are fetched through those connectors
// directly in a future iteration; SourceMetadata carrying a presigned
// URL covers that case today without needing a dedicated code path.
type HTTPContentFetcher struct {
	httpClient *http.Client
	urlOptions base.URLValidationOptions
}

// NewHTTPContentFetcher constructs an HTTPContentFetcher.
func NewHTTPContentFetcher() *HTTPContentFetcher {
	return &HTTPContentFetcher{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		urlOptions: base.DefaultURLValidationOptions(),
	}
}

// Fetch implements worker.ContentFetcher.
func (f *HTTPContentFetcher) Fetch(ctx context.Context, doc domain.Document) ([]byte, error) {
	url, ok := doc.SourceMetadata["url"]
	if !ok || url == "" {
		return nil, corexerr.Validationf("source_metadata.url", "document %s has no fetchable source URL", doc.ID)
	}
	if err := base.ValidateURL(url, f.urlOptions); err != nil {
		return nil, corexerr.Wrap(corexerr.Validation, "source_url_rejected", "document source URL failed SSRF validation", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, corexerr.Wrap(corexerr.Internal, "fetch_request_build_failed", "failed to build fetch request", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, corexerr.Wrap(corexerr.Upstream, "fetch_call_failed", "document fetch request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, corexerr.New(corexerr.Upstream, "fetch_http_error", "document source returned a non-200 status")
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 50*1024*1024))
	if err != nil {
		return nil, corexerr.Wrap(corexerr.Upstream, "fetch_response_read_failed", "failed to read document source body", err)
	}
	return body, nil
}
