package notify

import (
	"context"
	"time"

	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/just-nibble/git-digest/pkg/errcodes"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Dispatcher struct {
	registry    *Registry
	concurrency int
	timeout     time.Duration
	log         zerolog.Logger
}

func NewDispatcher(registry *Registry, concurrency int, timeout time.Duration, log zerolog.Logger) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Dispatcher{registry: registry, concurrency: concurrency, timeout: timeout, log: log}
}

type delivery struct {
	subscription domain.Subscription
	channel      domain.ChannelConfig
}

// FanOut sends content to every channel of every subscription. Failures are
// recorded in the report and never stop other deliveries.
func (d *Dispatcher) FanOut(ctx context.Context, subscriptions []domain.Subscription, content string) Report {
	deliveries := make([]delivery, 0, len(subscriptions))
	for _, sub := range subscriptions {
		for _, ch := range sub.Channels {
			deliveries = append(deliveries, delivery{subscription: sub, channel: ch})
		}
	}

	dispatches := make([]Dispatch, len(deliveries))
	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, dl := range deliveries {
		g.Go(func() error {
			err := d.deliver(ctx, dl, content)
			dispatches[i] = Dispatch{SubscriptionID: dl.subscription.ID, Channel: dl.channel.Kind, Err: err}
			if err != nil {
				d.log.Warn().Err(err).
					Uint("subscription_id", dl.subscription.ID).
					Str("channel", string(dl.channel.Kind)).
					Msg("notification delivery failed")
			}
			return nil
		})
	}
	_ = g.Wait()

	return Report{Dispatches: dispatches}
}

func (d *Dispatcher) deliver(ctx context.Context, dl delivery, content string) error {
	if !dl.subscription.HasSingleTarget() {
		return errcodes.Validation("subscription %d must target exactly one of project or team", dl.subscription.ID)
	}

	if !dl.channel.Kind.Valid() {
		return errcodes.UnsupportedChannel(string(dl.channel.Kind))
	}
	reg, ok := d.registry.lookup(dl.channel.Kind)
	if !ok {
		return errcodes.ChannelNotConfigured(string(dl.channel.Kind))
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	if err := reg.limiter.Wait(ctx); err != nil {
		return errcodes.Upstream(err, "rate limiter wait for %s", dl.channel.Kind)
	}

	recipients := make([]string, 0, 1)
	if dl.subscription.User.Email != "" {
		recipients = append(recipients, dl.subscription.User.Email)
	}
	return reg.sender.Send(ctx, content, recipients, dl.channel.Config)
}
