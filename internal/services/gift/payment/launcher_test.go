package payment

import (
	"context"
	"errors"
	"testing"
)

func TestLauncherChannelOpensLightningURI(t *testing.T) {
	t.Parallel()

	var opened string
	channel := NewLauncherChannel(WalletAppZeus)
	channel.open = func(url string) error {
		opened = url
		return nil
	}

	confirmation, err := channel.Pay(context.Background(), "lnbc1invoice")
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if confirmation != ConfirmationLaunched {
		t.Fatalf("expected launched outcome, got %v", confirmation)
	}
	if opened != "lightning:lnbc1invoice" {
		t.Fatalf("expected lightning uri, got %q", opened)
	}
}

func TestLauncherChannelAvailability(t *testing.T) {
	t.Parallel()

	if NewLauncherChannel(WalletAppNone).Available() {
		t.Fatal("expected none preference to be unavailable")
	}
	if NewLauncherChannel("").Available() {
		t.Fatal("expected empty preference to be unavailable")
	}
	if NewLauncherChannel("unknown-wallet").Available() {
		t.Fatal("expected unknown app to be unavailable")
	}
	if !NewLauncherChannel(WalletAppAlby).Available() {
		t.Fatal("expected known app to be available")
	}
}

func TestLauncherChannelSurfacesOpenFailure(t *testing.T) {
	t.Parallel()

	channel := NewLauncherChannel(WalletAppBreez)
	channel.open = func(url string) error { return errors.New("no handler registered") }

	if _, err := channel.Pay(context.Background(), "lnbc1invoice"); err == nil {
		t.Fatal("expected open failure to surface")
	}
}

func TestWalletAppInfoFor(t *testing.T) {
	t.Parallel()

	info, ok := WalletAppInfoFor(WalletAppPhoenix)
	if !ok {
		t.Fatal("expected phoenix to be known")
	}
	if info.Name != "Phoenix" {
		t.Fatalf("expected Phoenix, got %q", info.Name)
	}
	if _, ok := WalletAppInfoFor(WalletAppNone); ok {
		t.Fatal("expected none to be unknown")
	}
}
