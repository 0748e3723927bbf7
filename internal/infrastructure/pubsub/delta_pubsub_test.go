package pubsub

import (
	"context"
	"testing"
	"time"

	"shopmirror/internal/domain"

	"github.com/rs/zerolog"
)

func TestPublishReachesMatchingSubscriber(t *testing.T) {
	ps := NewDeltaPubSub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	channel := ps.Subscribe(ctx, &ChangeFilter{Entities: []string{"product"}})

	ps.Publish(&domain.ChangeEvent{Entity: "product", Kind: domain.ChangeCreated, ShopDomain: "acme.myshopify.com", ExternalID: "1"})

	select {
	case event := <-channel.Events:
		if event.ExternalID != "1" || event.Kind != domain.ChangeCreated {
			t.Errorf("unexpected event %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestPublishSkipsNonMatchingSubscriber(t *testing.T) {
	ps := NewDeltaPubSub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orders := ps.Subscribe(ctx, &ChangeFilter{Entities: []string{"order"}})
	otherShop := ps.Subscribe(ctx, &ChangeFilter{Shop: "other.myshopify.com"})

	ps.Publish(&domain.ChangeEvent{Entity: "product", Kind: domain.ChangeSynced, ShopDomain: "acme.myshopify.com", ExternalID: "1"})

	select {
	case event := <-orders.Events:
		t.Errorf("order subscriber received product event %+v", event)
	default:
	}
	select {
	case event := <-otherShop.Events:
		t.Errorf("other shop subscriber received foreign event %+v", event)
	default:
	}
}

func TestNilFilterReceivesEverything(t *testing.T) {
	ps := NewDeltaPubSub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	channel := ps.Subscribe(ctx, nil)

	ps.Publish(&domain.ChangeEvent{Entity: "collection", Kind: domain.ChangeSynced, ShopDomain: "acme.myshopify.com", ExternalID: "9"})

	select {
	case event := <-channel.Events:
		if event.Entity != "collection" {
			t.Errorf("unexpected event %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	ps := NewDeltaPubSub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	channel := ps.Subscribe(ctx, nil)
	ps.Unsubscribe(channel.ID)

	if _, open := <-channel.Events; open {
		t.Error("expected events channel to be closed")
	}

	// Publishing after unsubscribe must not panic.
	ps.Publish(&domain.ChangeEvent{Entity: "product", Kind: domain.ChangeSynced})
}
