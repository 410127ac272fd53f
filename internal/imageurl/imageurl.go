// Package imageurl maps content records to image URLs and checks that they load.
package imageurl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	DefaultBaseURL     = "https://itimg.kr/809/탐정아카데미19th"
	DefaultPlaceholder = "https://placehold.co/400x600/1a1a1a/e6d5b8?text=NO+FILE"
)

var (
	ErrIDRequired      = errors.New("imageurl: id is required")
	ErrVariantRequired = errors.New("imageurl: variant must be >= 1")
)

// Resolver builds character portrait URLs of the form <base>/<id>/<variant>.png.
type Resolver struct {
	BaseURL     string
	Placeholder string
}

func New(base, placeholder string) Resolver {
	if strings.TrimSpace(base) == "" {
		base = DefaultBaseURL
	}
	if strings.TrimSpace(placeholder) == "" {
		placeholder = DefaultPlaceholder
	}
	return Resolver{BaseURL: strings.TrimRight(strings.TrimSpace(base), "/"), Placeholder: placeholder}
}

// URL is deterministic in (id, variant).
func (r Resolver) URL(id string, variant int) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrIDRequired
	}
	if variant < 1 {
		return "", ErrVariantRequired
	}
	base := strings.TrimRight(r.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return base + "/" + url.PathEscape(id) + "/" + strconv.Itoa(variant) + ".png", nil
}

// Prober checks whether an image URL loads. Results are cached per URL for the life of the
// prober since the assets are static.
type Prober struct {
	Client  *http.Client
	Timeout time.Duration

	mu    sync.Mutex
	cache map[string]error
}

func NewProber() *Prober {
	return &Prober{Client: http.DefaultClient, Timeout: 5 * time.Second}
}

// Probe issues a HEAD request and reports a non-2xx status or transport failure as an error.
func (p *Prober) Probe(ctx context.Context, u string) error {
	p.mu.Lock()
	if err, ok := p.cache[u]; ok {
		p.mu.Unlock()
		return err
	}
	p.mu.Unlock()

	err := p.head(ctx, u)
	if ctx.Err() != nil {
		// Cancelled probes say nothing about the asset.
		return err
	}

	p.mu.Lock()
	if p.cache == nil {
		p.cache = map[string]error{}
	}
	p.cache[u] = err
	p.mu.Unlock()
	return err
}

func (p *Prober) head(ctx context.Context, u string) error {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u, nil)
	if err != nil {
		return fmt.Errorf("probe %s: %w", u, err)
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("probe %s: %w", u, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("probe %s: status %d", u, resp.StatusCode)
	}
	return nil
}

// Resolve returns u when it loads, otherwise the placeholder together with the probe error.
func (r Resolver) Resolve(ctx context.Context, p *Prober, u string) (string, error) {
	if p == nil {
		return u, nil
	}
	if err := p.Probe(ctx, u); err != nil {
		ph := r.Placeholder
		if ph == "" {
			ph = DefaultPlaceholder
		}
		return ph, err
	}
	return u, nil
}

// Open hands u to the desktop's default viewer.
func Open(u string) error {
	u = strings.TrimSpace(u)
	if u == "" {
		return errors.New("empty url")
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", u)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", u)
	default:
		cmd = exec.Command("xdg-open", u)
	}
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Wait()
}
