package core

import (
	"fmt"
	"strings"

	"github.com/user/wg-ddns/internal/config"
	"github.com/user/wg-ddns/internal/monitor"
)

// Status is a printable summary of one cycle.
type Status struct {
	Tunnel   string
	Domain   string
	Endpoint string
	Resolved string
	Drift    bool
	Error    string
}

func newStatus(t config.Tunnel, c monitor.Cycle) Status {
	st := Status{
		Tunnel: t.ID,
		Domain: t.Domain,
		Drift:  c.Drift,
	}
	if c.Current.OK {
		st.Endpoint = c.Current.Addr
	}
	if c.Resolved.OK {
		st.Resolved = c.Resolved.Addr
	}
	if c.Err != nil {
		st.Error = c.Err.Error()
	}
	return st
}

// String renders the status as one line for the check command.
func (s Status) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: domain=%s endpoint=%s resolved=%s",
		s.Tunnel, s.Domain, orNone(s.Endpoint), orNone(s.Resolved))
	switch {
	case s.Error != "":
		fmt.Fprintf(&b, " error=%q", s.Error)
	case s.Drift:
		b.WriteString(" drift=yes")
	case s.Endpoint != "" && s.Resolved != "":
		b.WriteString(" drift=no")
	default:
		b.WriteString(" drift=unknown")
	}
	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
