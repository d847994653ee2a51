package publishers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samvad-hq/samvad-news-digest/internal/logger"
)

// Builder creates a Publisher from a config entry.
type Builder func(ctx context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error)

// Builders maps a sink type onto its constructor. It is read-only once built.
type Builders map[string]Builder

// DefaultBuilders knows every sink type the publishers file accepts.
func DefaultBuilders() Builders {
	return Builders{
		TypeHTTP:      newHTTPPublisher,
		TypeSQS:       newSQSPublisher,
		TypeSNS:       newSNSPublisher,
		TypeGCPPubSub: newGCPPubSubPublisher,
	}
}

// Build constructs the publisher for a single entry.
func (b Builders) Build(ctx context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	typ := strings.ToLower(strings.TrimSpace(cfg.Type))
	if typ == "" {
		return nil, fmt.Errorf("publisher %q has no type configured", cfg.ID)
	}
	build, ok := b[typ]
	if !ok || build == nil {
		return nil, fmt.Errorf("no publisher registered for type %q", cfg.Type)
	}
	return build(ctx, cfg, log)
}

// BuildAll instantiates every entry in order.
// Publishers built before a failure are closed.
func (b Builders) BuildAll(ctx context.Context, cfgs []PublisherConfig, log logger.Logger) ([]Publisher, error) {
	pubs := make([]Publisher, 0, len(cfgs))
	for _, cfg := range cfgs {
		pub, err := b.Build(ctx, cfg, log)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("build publisher %q: %w", cfg.ID, err), closeAll(pubs))
		}
		pubs = append(pubs, pub)
	}
	return pubs, nil
}

// Load reads the publishers file and builds every enabled entry into a Fanout.
// An empty path yields an empty Fanout.
func Load(ctx context.Context, path string, log logger.Logger) (*Fanout, error) {
	if strings.TrimSpace(path) == "" {
		return NewFanout(nil), nil
	}
	cfgs, err := LoadConfigs(path)
	if err != nil {
		return nil, err
	}
	pubs, err := DefaultBuilders().BuildAll(ctx, Enabled(cfgs), log)
	if err != nil {
		return nil, err
	}
	logger.Ensure(log).InfoObj("publishers ready", "publishers", sinkNames(pubs))
	return NewFanout(pubs), nil
}

func sinkNames(pubs []Publisher) []string {
	names := make([]string, 0, len(pubs))
	for _, p := range pubs {
		names = append(names, p.Type()+":"+p.ID())
	}
	return names
}

func closeAll(pubs []Publisher) error {
	var errs []error
	for _, p := range pubs {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s publisher[%s]: %w", p.Type(), p.ID(), err))
			}
		}
	}
	return errors.Join(errs...)
}
