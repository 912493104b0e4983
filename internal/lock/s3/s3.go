// Package s3 implements the lock provider against S3-compatible object
// storage, one object per player holding the same single-line record the
// file backend uses. Instances sharing a bucket share the player pool.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"path"
	"strings"
	"syscall"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"pkt.systems/claimd/internal/identifier"
	"pkt.systems/claimd/lock"
	"pkt.systems/pslog"
)

func init() {
	lock.Register("s3", func(settings lock.Settings) (lock.Provider, error) {
		s := settings.S3
		return New(Config{
			Endpoint:        s.Endpoint,
			Region:          s.Region,
			Bucket:          s.Bucket,
			Prefix:          s.Prefix,
			AccessKeyID:     s.AccessKeyID,
			SecretAccessKey: s.SecretAccessKey,
			Insecure:        s.Insecure,
			ForcePathStyle:  s.ForcePathStyle,
			Logger:          settings.Logger,
		})
	})
}

// Config controls the behaviour of the S3 lock backend.
type Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
	Insecure        bool
	ForcePathStyle  bool
	Transport       http.RoundTripper
	Logger          pslog.Logger
}

// Provider implements lock.Provider over S3-compatible object storage.
type Provider struct {
	client *minio.Client
	cfg    Config
	logger pslog.Logger
}

// New constructs a Provider using the provided configuration. Credentials
// fall back to the usual environment/instance chain when no static pair is
// supplied.
func New(cfg Config) (*Provider, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket is required")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		if cfg.Region != "" {
			endpoint = fmt.Sprintf("s3.%s.amazonaws.com", cfg.Region)
		} else {
			endpoint = "s3.amazonaws.com"
		}
	}
	var creds *credentials.Credentials
	if cfg.AccessKeyID != "" || cfg.SecretAccessKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	} else {
		creds = credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvAWS{},
			&credentials.EnvMinio{},
			&credentials.FileAWSCredentials{},
			&credentials.IAM{},
		})
	}
	options := &minio.Options{
		Creds:  creds,
		Secure: !cfg.Insecure,
		Region: cfg.Region,
	}
	if cfg.Transport != nil {
		options.Transport = cfg.Transport
	}
	if cfg.ForcePathStyle {
		options.BucketLookup = minio.BucketLookupPath
	}
	client, err := minio.New(endpoint, options)
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	return &Provider{client: client, cfg: cfg, logger: logger}, nil
}

func (p *Provider) object(player string) string {
	return path.Join(p.cfg.Prefix, player+".txt")
}

// Check downloads the player's record object and classifies it with the
// shared record codec, so half-written and corrupt object bodies behave
// exactly like their file-backend counterparts.
func (p *Provider) Check(ctx context.Context, player string) (lock.CheckResult, error) {
	if err := identifier.Require(player); err != nil {
		return lock.CheckResult{}, err
	}
	object := p.object(player)
	obj, err := p.client.GetObject(ctx, p.cfg.Bucket, object, minio.GetObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return lock.Unclaimed(), nil
		}
		return lock.CheckResult{}, wrapError(err, "s3: get record")
	}
	defer obj.Close()
	data, err := io.ReadAll(io.LimitReader(obj, 1<<20))
	if err != nil {
		if isNotFound(err) {
			return lock.Unclaimed(), nil
		}
		return lock.CheckResult{}, wrapError(err, "s3: read record")
	}
	result, err := lock.ParseRecord(data)
	if err != nil {
		return lock.CheckResult{}, fmt.Errorf("s3: record %s: %w", object, err)
	}
	if result.Status == lock.StatusTransient {
		p.logger.Warn("half-written ownership record observed", "player", player, "object", object, "reason", result.Reason)
	}
	return result, nil
}

// Put uploads <owner>\n as the player's record object. Object stores make
// the write atomic on their own, but the record format stays identical so
// backends remain interchangeable.
func (p *Provider) Put(ctx context.Context, player, owner string) error {
	if err := identifier.Require(player); err != nil {
		return err
	}
	if err := identifier.Require(owner); err != nil {
		return err
	}
	object := p.object(player)
	payload := []byte(owner + "\n")
	_, err := p.client.PutObject(ctx, p.cfg.Bucket, object, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "text/plain",
	})
	if err != nil {
		return wrapError(err, "s3: put record")
	}
	p.logger.Debug("ownership record written", "player", player, "owner", owner, "object", object)
	return nil
}

// Close is a no-op; the minio client holds no resources worth tearing down.
func (p *Provider) Close() error { return nil }

func isNotFound(err error) bool {
	errResp := minio.ErrorResponse{}
	if errors.As(err, &errResp) {
		return errResp.StatusCode == http.StatusNotFound
	}
	return false
}

func wrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	retryable := isRetryable(err)
	if msg != "" {
		err = fmt.Errorf("%s: %w", msg, err)
	}
	if retryable {
		return lock.NewTransientError(err)
	}
	return err
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	errResp := minio.ErrorResponse{}
	if errors.As(err, &errResp) {
		switch errResp.StatusCode {
		case http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout,
			http.StatusTooManyRequests:
			return true
		}
		if strings.EqualFold(errResp.Code, "SlowDown") {
			return true
		}
	}
	return false
}
