package transfer

import (
	"context"
	"fmt"
	"net"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const defaultSSHPort = 22

// SFTP moves files over an SSH connection. Host keys are checked against a
// known_hosts file.
type SFTP struct {
	conn   *ssh.Client
	client *sftp.Client
}

// dialSFTP connects with password authentication.
func dialSFTP(ctx context.Context, host, user, password string, o options) (*SFTP, error) {
	knownHostsFile := o.knownHosts
	if knownHostsFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locate known_hosts: %w", err)
		}
		knownHostsFile = filepath.Join(home, ".ssh", "known_hosts")
	}
	hostKeys, err := knownhosts.New(knownHostsFile)
	if err != nil {
		return nil, fmt.Errorf("load known_hosts: %w", err)
	}

	port := o.port
	if port == 0 {
		port = defaultSSHPort
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	dialer := net.Dialer{Timeout: o.timeout}
	raw, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	cc, chans, reqs, err := ssh.NewClientConn(raw, addr, &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.Password(password)},
		HostKeyCallback: hostKeys,
		Timeout:         o.timeout,
	})
	if err != nil {
		raw.Close()
		return nil, fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}
	conn := ssh.NewClient(cc, chans, reqs)

	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("start sftp on %s: %w", addr, err)
	}
	return &SFTP{conn: conn, client: client}, nil
}

func (s *SFTP) Get(_ context.Context, src, dst string) error {
	f, err := s.client.Open(src)
	if err != nil {
		return fmt.Errorf("sftp open %s: %w", src, err)
	}
	defer f.Close()

	mode := os.FileMode(0o644)
	if info, err := f.Stat(); err == nil {
		mode = info.Mode().Perm()
	}
	if err := copyTo(dst, f, mode); err != nil {
		return fmt.Errorf("sftp get %s: %w", src, err)
	}
	return nil
}

func (s *SFTP) Put(_ context.Context, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := s.client.MkdirAll(path.Dir(dst)); err != nil {
		return fmt.Errorf("sftp mkdir %s: %w", path.Dir(dst), err)
	}
	out, err := s.client.Create(dst)
	if err != nil {
		return fmt.Errorf("sftp create %s: %w", dst, err)
	}
	if _, err := out.ReadFrom(in); err != nil {
		out.Close()
		return fmt.Errorf("sftp put %s: %w", dst, err)
	}
	return out.Close()
}

func (s *SFTP) Close() error {
	s.client.Close()
	return s.conn.Close()
}
