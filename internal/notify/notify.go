// Package notify delivers feed content to subscribers over their configured channels.
package notify

import (
	"context"
	"sync"

	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/just-nibble/git-digest/pkg/errcodes"
	"golang.org/x/time/rate"
)

// Sender delivers content over one channel kind. config is the channel
// configuration stored on the subscription.
type Sender interface {
	Send(ctx context.Context, content string, recipients []string, config map[string]interface{}) error
}

type SenderFunc func(ctx context.Context, content string, recipients []string, config map[string]interface{}) error

func (f SenderFunc) Send(ctx context.Context, content string, recipients []string, config map[string]interface{}) error {
	return f(ctx, content, recipients, config)
}

type registration struct {
	sender  Sender
	limiter *rate.Limiter
}

// Registry maps channel kinds to senders, each throttled by its own limiter.
type Registry struct {
	mu      sync.RWMutex
	senders map[domain.ChannelKind]registration
}

func NewRegistry() *Registry {
	return &Registry{senders: make(map[domain.ChannelKind]registration)}
}

// Register installs sender for kind. ratePerSec <= 0 disables throttling.
func (r *Registry) Register(kind domain.ChannelKind, sender Sender, ratePerSec float64) error {
	if !kind.Valid() {
		return errcodes.UnsupportedChannel(string(kind))
	}

	limit := rate.Inf
	burst := 1
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
		if ratePerSec > 1 {
			burst = int(ratePerSec)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.senders[kind] = registration{sender: sender, limiter: rate.NewLimiter(limit, burst)}
	return nil
}

func (r *Registry) lookup(kind domain.ChannelKind) (registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.senders[kind]
	return reg, ok
}

// Dispatch is the outcome of one (subscription, channel) delivery. Err is nil on success.
type Dispatch struct {
	SubscriptionID uint               `json:"subscription_id"`
	Channel        domain.ChannelKind `json:"channel"`
	Err            error              `json:"-"`
}

type Report struct {
	Dispatches []Dispatch
}

func (r Report) Succeeded() int {
	n := 0
	for _, d := range r.Dispatches {
		if d.Err == nil {
			n++
		}
	}
	return n
}

func (r Report) Failures() []Dispatch {
	failed := make([]Dispatch, 0)
	for _, d := range r.Dispatches {
		if d.Err != nil {
			failed = append(failed, d)
		}
	}
	return failed
}
