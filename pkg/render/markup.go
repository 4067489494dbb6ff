package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-jdsl/pkg/tree"
)

// Option customises the HTML renderers.
type Option func(*config)

type config struct {
	doctype bool
	policy  *bluemonday.Policy
}

// WithDoctype prefixes the output with `<!DOCTYPE html>`.
func WithDoctype() Option {
	return func(cfg *config) {
		cfg.doctype = true
	}
}

// WithPolicy replaces the sanitizer policy used by the safe-html renderer.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

var (
	ugcPolicyOnce sync.Once
	ugcPolicy     *bluemonday.Policy
)

func defaultPolicy() *bluemonday.Policy {
	ugcPolicyOnce.Do(func() {
		ugcPolicy = bluemonday.UGCPolicy()
	})
	return ugcPolicy
}

// HTML serializes the tree with golang.org/x/net/html. With sanitize set,
// the markup is filtered through a bluemonday policy afterwards.
type HTML struct {
	name     string
	cfg      config
	sanitize bool
}

// NewHTML returns the plain HTML renderer.
func NewHTML(options ...Option) *HTML {
	return newHTML(NameHTML, false, options)
}

// NewSafeHTML returns an HTML renderer that sanitizes its output, using
// bluemonday's UGC policy unless WithPolicy is supplied.
func NewSafeHTML(options ...Option) *HTML {
	return newHTML(NameSafeHTML, true, options)
}

func newHTML(name string, sanitize bool, options []Option) *HTML {
	r := &HTML{name: name, sanitize: sanitize}
	for _, opt := range options {
		if opt != nil {
			opt(&r.cfg)
		}
	}
	return r
}

func (r *HTML) Name() string        { return r.name }
func (r *HTML) ContentType() string { return "text/html; charset=utf-8" }

func (r *HTML) Render(ctx context.Context, node *tree.Node) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tree.WriteHTML(&buf, node); err != nil {
		return nil, fmt.Errorf("render: %s: %w", r.name, err)
	}
	body := buf.Bytes()
	if r.sanitize {
		policy := r.cfg.policy
		if policy == nil {
			policy = defaultPolicy()
		}
		body = policy.SanitizeBytes(body)
	}
	if !r.cfg.doctype {
		return body, nil
	}
	return append([]byte("<!DOCTYPE html>\n"), body...), nil
}

// XML serializes the tree as XML.
type XML struct{}

// NewXML returns the XML renderer.
func NewXML() *XML { return &XML{} }

func (XML) Name() string        { return NameXML }
func (XML) ContentType() string { return "application/xml; charset=utf-8" }

func (XML) Render(ctx context.Context, node *tree.Node) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tree.WriteXML(&buf, node); err != nil {
		return nil, fmt.Errorf("render: xml: %w", err)
	}
	return buf.Bytes(), nil
}

// Text emits only the text content, comments excluded.
type Text struct{}

// NewText returns the plain-text renderer.
func NewText() *Text { return &Text{} }

func (Text) Name() string        { return NameText }
func (Text) ContentType() string { return "text/plain; charset=utf-8" }

func (Text) Render(ctx context.Context, node *tree.Node) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []byte(strings.TrimSpace(node.TextContent())), nil
}
