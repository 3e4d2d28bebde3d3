// Package fetch downloads documents from data vendors, with a disk cache that
// expires every day.
package fetch

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/folio/date"
)

// DailyCache is a RoundTripper storing successful GET responses on disk. The
// cache key includes the day, so entries expire at midnight.
type DailyCache struct {
	Dir  string // defaults to os.TempDir()
	Base http.RoundTripper

	today func() date.Date
}

func (c *DailyCache) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return c.base().RoundTrip(req)
	}
	day := date.Today()
	if c.today != nil {
		day = c.today()
	}
	key := fmt.Sprintf("%x", sha1.Sum([]byte(day.String()+" "+req.URL.String())))

	if resp, err := c.get(key, req); err == nil {
		return resp, nil
	}
	resp, err := c.base().RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v%v %v", req.Method, req.URL.Host, req.URL.Path, resp.Status)
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		log.Printf("cache write err (ignored): %v", err)
	}
	return resp, nil
}

func (c *DailyCache) base() http.RoundTripper {
	if c.Base == nil {
		return http.DefaultTransport
	}
	return c.Base
}

func (c *DailyCache) file(key string) string {
	dir := c.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "folio-"+key)
}

func (c *DailyCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(c.file(key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores resp and leaves its body readable.
func (c *DailyCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	return os.WriteFile(c.file(key), content, 0o600)
}

// NewClient returns a client caching responses in dir for the day.
func NewClient(dir string) *http.Client {
	return &http.Client{Transport: &DailyCache{Dir: dir}}
}

// IsURL reports whether s is an http or https address rather than a file.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Get downloads the document at addr.
func Get(ctx context.Context, client *http.Client, addr string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot http GET %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Read returns the content of a local file or of a URL.
func Read(ctx context.Context, client *http.Client, source string) ([]byte, error) {
	if IsURL(source) {
		return Get(ctx, client, source)
	}
	return os.ReadFile(source)
}
