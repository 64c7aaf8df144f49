package payment

import (
	"context"
	"errors"
	"testing"
)

type fakeProvider struct {
	enableErr   error
	sendErr     error
	enableCalls int
	sendCalls   int
	lastInvoice string
}

func (f *fakeProvider) Enable(ctx context.Context) error {
	f.enableCalls++
	return f.enableErr
}

func (f *fakeProvider) SendPayment(ctx context.Context, invoice string) error {
	f.sendCalls++
	f.lastInvoice = invoice
	return f.sendErr
}

func TestProviderChannelPays(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{}
	channel := NewProviderChannel(provider)
	if !channel.Available() {
		t.Fatal("expected channel with provider to be available")
	}

	confirmation, err := channel.Pay(context.Background(), "lnbc1invoice")
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if confirmation != ConfirmationConfirmed {
		t.Fatalf("expected confirmed payment, got %v", confirmation)
	}
	if provider.enableCalls != 1 || provider.sendCalls != 1 {
		t.Fatalf("expected enable then send, got enable=%d send=%d", provider.enableCalls, provider.sendCalls)
	}
	if provider.lastInvoice != "lnbc1invoice" {
		t.Fatalf("expected invoice forwarded, got %q", provider.lastInvoice)
	}
}

func TestProviderChannelToleratesEnableFailure(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{enableErr: errors.New("permission denied")}
	channel := NewProviderChannel(provider)

	confirmation, err := channel.Pay(context.Background(), "lnbc1invoice")
	if err != nil {
		t.Fatalf("pay despite enable failure: %v", err)
	}
	if confirmation != ConfirmationConfirmed {
		t.Fatalf("expected confirmed payment, got %v", confirmation)
	}
	if provider.sendCalls != 1 {
		t.Fatalf("expected send to run with the original provider, got %d calls", provider.sendCalls)
	}
}

func TestProviderChannelSurfacesSendFailure(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{sendErr: errors.New("payment failed")}
	channel := NewProviderChannel(provider)

	if _, err := channel.Pay(context.Background(), "lnbc1invoice"); err == nil {
		t.Fatal("expected send failure to surface")
	}
}

func TestProviderChannelWithoutProviderIsUnavailable(t *testing.T) {
	t.Parallel()

	if NewProviderChannel(nil).Available() {
		t.Fatal("expected channel without provider to be unavailable")
	}
}
