package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "nope.yaml"))
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), m.Get()); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
interval: 2m
tunnels: [/etc/wireguard/home.conf, /etc/wireguard/office.conf]
resolver:
  mode: direct
  nameserver: 9.9.9.9
verify:
  attempts: 3
  delay: 1s
remote:
  host: router.lan
  key_path: /root/.ssh/id_ed25519
  known_hosts: /etc/wg-ddns/known_hosts
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	m := NewManager(path)
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := DefaultConfig()
	want.Interval = Duration(2 * time.Minute)
	want.Tunnels = []string{"/etc/wireguard/home.conf", "/etc/wireguard/office.conf"}
	want.Resolver.Mode = ResolverDirect
	want.Resolver.Nameserver = "9.9.9.9"
	want.Verify = Verify{Attempts: 3, Delay: Duration(time.Second)}
	want.Remote.Host = "router.lan"
	want.Remote.KeyPath = "/root/.ssh/id_ed25519"
	want.Remote.KnownHosts = "/etc/wg-ddns/known_hosts"

	if diff := cmp.Diff(want, m.Get()); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"bad duration":  "interval: soon\n",
		"bad mode":      "probe: {mode: telepathy}\n",
		"bad network":   "resolver: {mode: system, network: ipx}\n",
		"remote noauth": "remote: {host: router.lan, user: root}\n",
		"wgctrl remote": "probe: {mode: wgctrl}\nremote: {host: router.lan, password: x}\n",
		"zero timeout":  "timeouts: {probe: 0s}\n",
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(data), 0600); err != nil {
				t.Fatal(err)
			}
			if err := NewManager(path).Load(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	m := NewManager(path)
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}
	if err := m.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "interval: 5s") {
		t.Errorf("durations should be written as strings:\n%s", data)
	}

	again := NewManager(path)
	if err := again.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if diff := cmp.Diff(m.Get(), again.Get()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateValidates(t *testing.T) {
	m := NewManager("")
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.Interval = 0
	if err := m.Update(cfg); err == nil {
		t.Error("expected validation error")
	}
}
