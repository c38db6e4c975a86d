package procutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/user/wg-ddns/internal/logger"
)

// SSHConfig describes the host that owns the tunnel.
type SSHConfig struct {
	Host     string
	Port     int
	User     string
	KeyPath  string
	Password string
	// KnownHosts is the OpenSSH known_hosts file the host key must appear in.
	// Empty means ~/.ssh/known_hosts.
	KnownHosts string
	// InsecureIgnoreHostKey accepts any host key.
	InsecureIgnoreHostKey bool
}

// SSHRunner runs commands on a remote host, one SSH connection per command.
type SSHRunner struct {
	addr   string
	config *ssh.ClientConfig
}

// NewSSHRunner loads the credentials and the known hosts file. Nothing is dialed
// until the first Run.
func NewSSHRunner(cfg SSHConfig) (*SSHRunner, error) {
	clientCfg, err := clientConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build SSH config: %w", err)
	}
	return &SSHRunner{
		addr:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		config: clientCfg,
	}, nil
}

// Run implements Runner.
func (r *SSHRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	line := CommandLine(name, args...)

	dialer := net.Dialer{Timeout: r.config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", r.addr)
	if err != nil {
		return Result{}, fmt.Errorf("failed to connect to SSH server %s: %w", r.addr, err)
	}

	// The handshake and the session both honor ctx by closing the connection.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c, chans, reqs, err := ssh.NewClientConn(conn, r.addr, r.config)
	if err != nil {
		conn.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, fmt.Errorf("%s: %w", line, ctxErr)
		}
		return Result{}, fmt.Errorf("failed to connect to SSH server %s: %w", r.addr, err)
	}
	client := ssh.NewClient(c, chans, reqs)
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return Result{}, fmt.Errorf("failed to create SSH session: %w", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	err = session.Run(line)
	res := Result{Output: stdout.Bytes(), Stderr: stderr.Bytes()}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("%s: %w", line, ctxErr)
	}

	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitStatus()
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("failed to run %s on %s: %w", line, r.addr, err)
	}
	return res, nil
}

func clientConfig(cfg SSHConfig) (*ssh.ClientConfig, error) {
	auth, err := authMethods(cfg.KeyPath, cfg.Password)
	if err != nil {
		return nil, err
	}
	hostKeys, err := hostKeyCallback(cfg.KnownHosts, cfg.InsecureIgnoreHostKey)
	if err != nil {
		return nil, err
	}
	return &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKeys,
		Timeout:         15 * time.Second,
	}, nil
}

// authMethods offers the key first, then the password.
func authMethods(keyPath, password string) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod
	if keyPath != "" {
		data, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read SSH key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse SSH key %s: %w", keyPath, err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if password != "" {
		methods = append(methods, ssh.Password(password))
	}
	if len(methods) == 0 {
		return nil, errors.New("remote host needs key_path or password")
	}
	return methods, nil
}

// DefaultKnownHosts returns ~/.ssh/known_hosts for the current user.
func DefaultKnownHosts() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".ssh", "known_hosts"), nil
}

func hostKeyCallback(knownHosts string, insecure bool) (ssh.HostKeyCallback, error) {
	if insecure {
		logger.Warning("SSH host key verification is disabled; any host answering on the remote address will receive credentials")
		return ssh.InsecureIgnoreHostKey(), nil
	}

	if knownHosts == "" {
		path, err := DefaultKnownHosts()
		if err != nil {
			return nil, err
		}
		knownHosts = path
	}
	cb, err := knownhosts.New(knownHosts)
	if err != nil {
		return nil, fmt.Errorf("failed to load known hosts %s: %w", knownHosts, err)
	}
	return cb, nil
}
