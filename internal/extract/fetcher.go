package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/vvka-141/trackpipe/internal/retry"
	"github.com/vvka-141/trackpipe/pkg/trackpipe"
)

// Fetcher downloads an archive from an http(s):// or s3://bucket/key URL.
type Fetcher struct {
	client   *http.Client
	executor *retry.Executor

	// s3Downloader is created on first use unless injected.
	s3Downloader s3manageriface.DownloaderAPI
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient sets the client used for http and https URLs.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = client }
}

// WithS3Downloader sets the downloader used for s3 URLs. Without one, a
// downloader is built from the default AWS session on first use.
func WithS3Downloader(d s3manageriface.DownloaderAPI) FetcherOption {
	return func(f *Fetcher) { f.s3Downloader = d }
}

// WithRetry replaces the default download backoff.
func WithRetry(strategy trackpipe.BackoffStrategy) FetcherOption {
	return func(f *Fetcher) { f.executor = retry.NewExecutor(retry.NewHTTPErrorClassifier(), strategy) }
}

// NewFetcher creates a fetcher that retries transient download failures
// with exponential backoff, logging each retry as a warning.
func NewFetcher(logger trackpipe.Logger, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client: &http.Client{},
		executor: retry.NewExecutor(retry.NewHTTPErrorClassifier(),
			retry.NewExponentialBackoff(trackpipe.DefaultRetryMaxAttempts,
				retry.WithInitialDelay(time.Second),
				retry.WithMaxDelay(trackpipe.DefaultRetryMaxDelay),
			)),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.executor = f.executor.WithOnRetry(func(attempt int, err error, delay time.Duration) {
		logger.Warn("Download attempt %d failed, retrying in %v: %v", attempt+1, delay.Round(time.Millisecond), err)
	})
	return f
}

// Fetch stores the archive at rawURL as <outputDir>/downloaded.zip, creating
// outputDir if needed, and returns the archive path.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, outputDir string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: invalid archive URL: %w", trackpipe.ErrDownloadFailed, err)
	}

	var download func(ctx context.Context, out *os.File) error
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		download = func(ctx context.Context, out *os.File) error { return f.fetchHTTP(ctx, rawURL, out) }
	case "s3":
		bucket, key := u.Host, strings.TrimPrefix(u.Path, "/")
		if bucket == "" || key == "" {
			return "", fmt.Errorf("%w: s3 URL must be s3://bucket/key: %s", trackpipe.ErrDownloadFailed, rawURL)
		}
		download = func(ctx context.Context, out *os.File) error { return f.fetchS3(ctx, bucket, key, out) }
	default:
		return "", fmt.Errorf("%w: unsupported URL scheme %q", trackpipe.ErrDownloadFailed, u.Scheme)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", trackpipe.ErrDownloadFailed, err)
	}
	archive := filepath.Join(outputDir, trackpipe.ArchiveFileName)

	err = f.executor.Execute(ctx, func(ctx context.Context) error {
		out, err := os.Create(archive)
		if err != nil {
			return err
		}
		if err := download(ctx, out); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	})
	if err != nil {
		os.Remove(archive)
		return "", fmt.Errorf("%w: %w", trackpipe.ErrDownloadFailed, err)
	}
	return archive, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, rawURL string, out io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &retry.StatusError{StatusCode: resp.StatusCode}
	}

	_, err = io.CopyBuffer(out, resp.Body, make([]byte, trackpipe.DownloadChunkSize))
	return err
}

func (f *Fetcher) fetchS3(ctx context.Context, bucket, key string, out io.WriterAt) error {
	if f.s3Downloader == nil {
		sess, err := session.NewSessionWithOptions(session.Options{SharedConfigState: session.SharedConfigEnable})
		if err != nil {
			return fmt.Errorf("failed to create S3 session: %w", err)
		}
		f.s3Downloader = s3manager.NewDownloader(sess)
	}

	_, err := f.s3Downloader.DownloadWithContext(ctx, out, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: %s", &retry.StatusError{StatusCode: reqErr.StatusCode()}, reqErr.Message())
	}
	return err
}
