package payment

import (
	"context"
	"fmt"

	"github.com/pkg/browser"
)

// WalletApp identifies an external wallet application preference.
type WalletApp string

// Known wallet application preferences.
const (
	WalletAppNone            WalletApp = "none"
	WalletAppAlby            WalletApp = "alby"
	WalletAppBreez           WalletApp = "breez"
	WalletAppZeus            WalletApp = "zeus"
	WalletAppPhoenix         WalletApp = "phoenix"
	WalletAppWalletOfSatoshi WalletApp = "wallet-of-satoshi"
)

// WalletAppInfo describes one supported external wallet application.
type WalletAppInfo struct {
	ID          WalletApp
	Name        string
	Description string
	Website     string
}

// WalletApps lists the supported external wallet applications.
var WalletApps = []WalletAppInfo{
	{ID: WalletAppAlby, Name: "Alby", Description: "Browser extension and mobile app", Website: "https://getalby.com"},
	{ID: WalletAppBreez, Name: "Breez", Description: "Mobile Lightning wallet", Website: "https://breez.technology"},
	{ID: WalletAppZeus, Name: "Zeus", Description: "Mobile Lightning wallet", Website: "https://zeusln.app"},
	{ID: WalletAppPhoenix, Name: "Phoenix", Description: "Mobile Lightning wallet", Website: "https://phoenix.acinq.co"},
	{ID: WalletAppWalletOfSatoshi, Name: "Wallet of Satoshi", Description: "Mobile Lightning wallet", Website: "https://www.walletofsatoshi.com"},
}

// WalletAppInfoFor returns the registry entry for a wallet app preference.
func WalletAppInfoFor(app WalletApp) (WalletAppInfo, bool) {
	if app == WalletAppNone {
		return WalletAppInfo{}, false
	}
	for _, info := range WalletApps {
		if info.ID == app {
			return info, true
		}
	}
	return WalletAppInfo{}, false
}

// LauncherChannel hands the invoice to an external wallet application via
// the lightning: URI protocol handler. A successful launch is not a
// confirmed payment; the external app's completion is unobservable here.
type LauncherChannel struct {
	app  WalletApp
	open func(url string) error
}

// NewLauncherChannel creates the launcher channel for a wallet app
// preference.
func NewLauncherChannel(app WalletApp) *LauncherChannel {
	return &LauncherChannel{app: app, open: browser.OpenURL}
}

// Name implements Channel.
func (c *LauncherChannel) Name() string { return "launcher" }

// Available implements Channel.
func (c *LauncherChannel) Available() bool {
	if c == nil || c.app == "" || c.app == WalletAppNone {
		return false
	}
	_, known := WalletAppInfoFor(c.app)
	return known
}

// Pay opens the invoice through the OS protocol handler.
func (c *LauncherChannel) Pay(ctx context.Context, invoice string) (Confirmation, error) {
	if !c.Available() {
		return 0, fmt.Errorf("no wallet app configured")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := c.open("lightning:" + invoice); err != nil {
		return 0, fmt.Errorf("open wallet app: %w", err)
	}
	return ConfirmationLaunched, nil
}
