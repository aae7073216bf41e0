package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the blob service HTTP API. Reads come from the source
// container, writes go to the destination container.
type Client struct {
	baseURL    string
	apiKey     string
	sourceCont string
	destCont   string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, sourceContainer, destContainer string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		sourceCont: sourceContainer,
		destCont:   destContainer,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch downloads a named document from the source container.
func (c *Client) Fetch(ctx context.Context, name string) ([]byte, error) {
	u := c.blobURL(c.sourceCont, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch blob: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("fetch %s: %w", name, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("fetch %s: status %d: %s", name, resp.StatusCode, string(respBody))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read blob body: %w", err)
	}
	return data, nil
}

// EnsureNamespace creates the destination container if absent. Namespaces
// within it are key prefixes and need no materialization of their own.
func (c *Client) EnsureNamespace(ctx context.Context, namespace string) error {
	u := c.baseURL + "/containers/" + url.PathEscape(c.destCont)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ensure container: %w", err)
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusConflict:
		// Conflict means it already exists.
		return nil
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("ensure container %s: status %d: %s", c.destCont, resp.StatusCode, string(respBody))
}

// Put stores one artifact under namespace/key in the destination container.
func (c *Client) Put(ctx context.Context, namespace, key string, data []byte) error {
	u := c.blobURL(c.destCont, namespace+"/"+key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("put blob: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("put blob %s/%s: status %d: %s", namespace, key, resp.StatusCode, string(respBody))
	}
	return nil
}

func (c *Client) blobURL(container, name string) string {
	// Blob names may contain slashes; escape each segment.
	return c.baseURL + "/containers/" + url.PathEscape(container) + "/blobs/" + escapePath(name)
}

func escapePath(name string) string {
	escaped := url.PathEscape(name)
	// Keep path separators readable in blob names.
	return string(bytes.ReplaceAll([]byte(escaped), []byte("%2F"), []byte("/")))
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
