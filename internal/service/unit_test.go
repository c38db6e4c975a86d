package service

import (
	"strings"
	"testing"
	"time"
)

func TestUnit(t *testing.T) {
	unit, err := Unit(UnitOptions{
		Executable: "/usr/local/bin/wg-ddns",
		Tunnels:    []string{"/etc/wireguard/wg0.conf", "/etc/wireguard/home.conf"},
		Settings:   "/etc/wg-ddns/config.yaml",
	})
	if err != nil {
		t.Fatalf("Unit: %v", err)
	}

	for _, want := range []string{
		"ExecStart=/usr/local/bin/wg-ddns run -c /etc/wireguard/wg0.conf -c /etc/wireguard/home.conf --settings /etc/wg-ddns/config.yaml\n",
		"After=network-online.target wg-quick@wg0.service wg-quick@home.service\n",
		"(wg0, home)",
		"WantedBy=multi-user.target",
	} {
		if !strings.Contains(unit, want) {
			t.Errorf("unit missing %q:\n%s", want, unit)
		}
	}
}

func TestUnitRejectsBadInput(t *testing.T) {
	if _, err := Unit(UnitOptions{Executable: "wg-ddns", Tunnels: []string{"/etc/wireguard/wg0.conf"}}); err == nil {
		t.Error("expected error for relative executable")
	}
	if _, err := Unit(UnitOptions{Executable: "/usr/bin/wg-ddns"}); err == nil {
		t.Error("expected error without tunnels")
	}
}

func TestUnitPassesOverrides(t *testing.T) {
	unit, err := Unit(UnitOptions{
		Executable: "/usr/local/bin/wg-ddns",
		Tunnels:    []string{"/etc/wireguard/wg0.conf"},
		Interval:   2 * time.Minute,
		LogLevel:   "debug",
		DryRun:     true,
	})
	if err != nil {
		t.Fatalf("Unit: %v", err)
	}
	want := "ExecStart=/usr/local/bin/wg-ddns run -c /etc/wireguard/wg0.conf --interval 2m0s --log-level debug --dry-run\n"
	if !strings.Contains(unit, want) {
		t.Errorf("unit missing %q:\n%s", want, unit)
	}
}

func TestUnitQuotesArguments(t *testing.T) {
	unit, err := Unit(UnitOptions{
		Executable: "/opt/wg ddns/bin/wg-ddns",
		Tunnels:    []string{"/etc/wireguard/home office.conf"},
		Settings:   "/etc/wg-ddns/50%$HOME.yaml",
	})
	if err != nil {
		t.Fatalf("Unit: %v", err)
	}
	want := `ExecStart="/opt/wg ddns/bin/wg-ddns" run -c "/etc/wireguard/home office.conf" --settings /etc/wg-ddns/50%%$$HOME.yaml` + "\n"
	if !strings.Contains(unit, want) {
		t.Errorf("unit missing %q:\n%s", want, unit)
	}
}

func TestQuoteArg(t *testing.T) {
	tests := map[string]string{
		"wg0":      "wg0",
		"":         `""`,
		"a b":      `"a b"`,
		`say "hi"`: `"say \"hi\""`,
		`C:\wg`:    `"C:\\wg"`,
		"100%":     "100%%",
		";":        `";"`,
	}
	for in, want := range tests {
		if got := quoteArg(in); got != want {
			t.Errorf("quoteArg(%q) = %q, want %q", in, got, want)
		}
	}
}
