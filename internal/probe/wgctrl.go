package probe

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.zx2c4.com/wireguard/wgctrl"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

// deviceReader is the part of *wgctrl.Client the probe needs.
type deviceReader interface {
	Device(name string) (*wgtypes.Device, error)
}

// WgctrlProbe reads the endpoint straight from the kernel (or a userspace
// implementation) through wgctrl instead of parsing `wg show`.
type WgctrlProbe struct {
	client deviceReader
	device string
}

// NewWgctrlProbe wraps an existing client. The caller owns and closes it.
func NewWgctrlProbe(client *wgctrl.Client, device string) *WgctrlProbe {
	return &WgctrlProbe{client: client, device: device}
}

// CurrentEndpoint implements Probe. It reports the first peer that has an endpoint.
// ctx is unused because wgctrl calls are non-blocking netlink round trips.
func (p *WgctrlProbe) CurrentEndpoint(_ context.Context) (string, bool, error) {
	dev, err := p.client.Device(p.device)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Tunnel is down.
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read device %s: %w", p.device, err)
	}

	for _, peer := range dev.Peers {
		if peer.Endpoint != nil && peer.Endpoint.IP != nil {
			return peer.Endpoint.IP.String(), true, nil
		}
	}
	return "", false, nil
}
