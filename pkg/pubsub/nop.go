package pubsub

import "context"

// Nop is a PubSub that publishes nowhere and never delivers.
type Nop struct{}

func (Nop) Publish(context.Context, string, *Event) error { return nil }

func (Nop) Subscribe(ctx context.Context, _ string) (<-chan *Event, error) {
	ch := make(chan *Event)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (Nop) Unsubscribe(context.Context, string) error { return nil }

func (Nop) Close() error { return nil }
