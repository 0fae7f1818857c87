package transfer

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/jlaffaye/ftp"
)

const defaultFTPPort = 21

// FTP moves files over a logged-in FTP control connection.
type FTP struct {
	conn *ftp.ServerConn
}

func dialFTP(ctx context.Context, host, user, password string, o options) (*FTP, error) {
	port := o.port
	if port == 0 {
		port = defaultFTPPort
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(o.timeout))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	if err := conn.Login(user, password); err != nil {
		conn.Quit() //nolint:errcheck // already failing
		return nil, fmt.Errorf("ftp login to %s as %s: %w", addr, user, err)
	}
	return &FTP{conn: conn}, nil
}

func (f *FTP) Get(_ context.Context, src, dst string) error {
	resp, err := f.conn.Retr(src)
	if err != nil {
		return fmt.Errorf("ftp retr %s: %w", src, err)
	}
	defer resp.Close()

	if err := copyTo(dst, resp, 0o644); err != nil {
		return fmt.Errorf("ftp get %s: %w", src, err)
	}
	return nil
}

func (f *FTP) Put(_ context.Context, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := f.conn.Stor(dst, in); err != nil {
		return fmt.Errorf("ftp stor %s: %w", dst, err)
	}
	return nil
}

func (f *FTP) Close() error {
	return f.conn.Quit()
}
