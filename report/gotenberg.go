// Package report renders HTML documents to PDF through a Gotenberg service.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrNotConfigured is returned when no Gotenberg URL is set.
var ErrNotConfigured = errors.New("report: gotenberg url not configured")

// PageOptions are the Chromium page properties sent with a conversion.
// Sizes are in inches.
type PageOptions struct {
	PaperWidth      float64
	PaperHeight     float64
	MarginTop       float64
	MarginBottom    float64
	MarginLeft      float64
	MarginRight     float64
	Landscape       bool
	PrintBackground bool
}

// A4 is portrait A4 with half-inch margins.
var A4 = PageOptions{
	PaperWidth:      8.27,
	PaperHeight:     11.7,
	MarginTop:       0.5,
	MarginBottom:    0.5,
	MarginLeft:      0.5,
	MarginRight:     0.5,
	PrintBackground: true,
}

func (o PageOptions) fields() map[string]string {
	out := make(map[string]string)
	set := func(name string, v float64) {
		if v > 0 {
			out[name] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	set("paperWidth", o.PaperWidth)
	set("paperHeight", o.PaperHeight)
	set("marginTop", o.MarginTop)
	set("marginBottom", o.MarginBottom)
	set("marginLeft", o.MarginLeft)
	set("marginRight", o.MarginRight)
	if o.Landscape {
		out["landscape"] = "true"
	}
	if o.PrintBackground {
		out["printBackground"] = "true"
	}
	return out
}

// Client wraps interactions with the Gotenberg API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether a Gotenberg URL is set.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

// Ping checks if the remote Gotenberg service is available.
func (c *Client) Ping(ctx context.Context) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}

// RenderHTML converts an HTML document into a PDF using the page options.
func (c *Client) RenderHTML(ctx context.Context, html string, opts PageOptions) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, strings.NewReader(html)); err != nil {
		return nil, err
	}
	for name, value := range opts.fields() {
		if err := writer.WriteField(name, value); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("render failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return io.ReadAll(resp.Body)
}
