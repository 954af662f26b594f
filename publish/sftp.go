package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/mwhited/robocatalog/config"
)

// SFTPTarget implements the Target interface for SFTP storage, for
// deployments that front a plain file server instead of object storage.
type SFTPTarget struct {
	host     string
	port     int
	username string
	password string
	keyFile  string
	basePath string
	baseURL  string
	timeout  time.Duration

	sshConn *ssh.Client
	client  *sftp.Client
}

// NewSFTPTarget creates an SFTP target from the publisher configuration.
// The connection is established lazily on first Store.
func NewSFTPTarget(cfg config.PublishConfig) (*SFTPTarget, error) {
	if cfg.SFTPHost == "" {
		return nil, fmt.Errorf("sftp: host is required")
	}
	if cfg.SFTPPassword == "" && cfg.SFTPKeyFile == "" {
		return nil, fmt.Errorf("sftp: either password or key file is required")
	}
	return &SFTPTarget{
		host:     cfg.SFTPHost,
		port:     cfg.SFTPPort,
		username: cfg.SFTPUser,
		password: cfg.SFTPPassword,
		keyFile:  cfg.SFTPKeyFile,
		basePath: strings.TrimRight(cfg.SFTPBasePath, "/"),
		baseURL:  strings.TrimRight(cfg.SFTPBaseURL, "/"),
		timeout:  30 * time.Second,
	}, nil
}

// Name returns the name of this target
func (t *SFTPTarget) Name() string {
	return "sftp"
}

// connect establishes the SSH session and SFTP client
func (t *SFTPTarget) connect() error {
	if t.client != nil {
		return nil
	}

	sshConfig := &ssh.ClientConfig{
		User:            t.username,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // Note: In production, use ssh.FixedHostKey() or ssh.KnownHosts()
		Timeout:         t.timeout,
	}

	if t.keyFile != "" {
		key, err := os.ReadFile(t.keyFile)
		if err != nil {
			return fmt.Errorf("sftp: failed to read private key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return fmt.Errorf("sftp: failed to parse private key: %w", err)
		}
		sshConfig.Auth = []ssh.AuthMethod{ssh.PublicKeys(signer)}
	} else {
		sshConfig.Auth = []ssh.AuthMethod{ssh.Password(t.password)}
	}

	addr := fmt.Sprintf("%s:%d", t.host, t.port)
	sshConn, err := ssh.Dial("tcp", addr, sshConfig)
	if err != nil {
		return fmt.Errorf("sftp: failed to connect to %s: %w", addr, err)
	}

	client, err := sftp.NewClient(sshConn)
	if err != nil {
		sshConn.Close()
		return fmt.Errorf("sftp: failed to create client: %w", err)
	}

	t.sshConn = sshConn
	t.client = client
	return nil
}

// Store uploads one object under basePath/key and returns its public
// URL (baseURL/key, or an sftp:// pseudo-URL when no base URL is set).
func (t *SFTPTarget) Store(ctx context.Context, key, contentType string, reader io.Reader, size int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := t.connect(); err != nil {
		return "", err
	}

	remotePath := path.Join(t.basePath, key)
	if err := t.client.MkdirAll(path.Dir(remotePath)); err != nil {
		return "", fmt.Errorf("sftp: failed to create directory %s: %w", path.Dir(remotePath), err)
	}

	remoteFile, err := t.client.Create(remotePath)
	if err != nil {
		return "", fmt.Errorf("sftp: failed to create %s: %w", remotePath, err)
	}
	defer remoteFile.Close()

	if _, err := io.Copy(remoteFile, reader); err != nil {
		return "", fmt.Errorf("sftp: failed to write %s: %w", remotePath, err)
	}

	if t.baseURL != "" {
		return t.baseURL + "/" + key, nil
	}
	return fmt.Sprintf("sftp://%s/%s", t.host, remotePath), nil
}

// Close releases the SFTP and SSH connections
func (t *SFTPTarget) Close() error {
	var firstErr error
	if t.client != nil {
		firstErr = t.client.Close()
		t.client = nil
	}
	if t.sshConn != nil {
		if err := t.sshConn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		t.sshConn = nil
	}
	return firstErr
}
