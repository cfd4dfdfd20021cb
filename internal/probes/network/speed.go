package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/felixgeelhaar/sysprobe/internal/scan"
	"github.com/felixgeelhaar/sysprobe/internal/version"
)

// Download throughput limits in megabits per second.
const (
	speedWarnMbps     = 5.0
	speedCriticalMbps = 1.0
)

// SpeedTest estimates download throughput by timing HTTP downloads.
type SpeedTest struct {
	scan.Base
	urls   []string
	client *http.Client
	now    func() time.Time
}

// NewSpeedTest creates the Speed Test probe.
func NewSpeedTest(urls []string, timeout time.Duration) *SpeedTest {
	return &SpeedTest{
		Base:   scan.NewBase("Speed Test", scan.CategoryNetwork).WithDescription("Download speed estimate"),
		urls:   append([]string(nil), urls...),
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}
}

// WithClient replaces the HTTP client.
func (s *SpeedTest) WithClient(client *http.Client) *SpeedTest {
	s.client = client
	return s
}

type download struct {
	url     string
	bytes   int64
	elapsed time.Duration
	err     error
}

// Execute implements scan.Probe.
func (s *SpeedTest) Execute(ctx context.Context) (*scan.Result, error) {
	if len(s.urls) == 0 {
		return nil, fmt.Errorf("no speed test URLs configured")
	}

	downloads := make([]download, 0, len(s.urls))
	for _, u := range s.urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		downloads = append(downloads, s.fetch(ctx, u))
	}

	var (
		totalBytes   int64
		totalElapsed time.Duration
		failed       int
		lastErr      error
		tests        = make([]map[string]any, 0, len(downloads))
	)
	for _, d := range downloads {
		entry := map[string]any{"url": d.url, "success": d.err == nil}
		if d.err != nil {
			failed++
			lastErr = d.err
			entry["error"] = d.err.Error()
		} else {
			totalBytes += d.bytes
			totalElapsed += d.elapsed
			entry["bytes"] = d.bytes
			entry["seconds"] = d.elapsed.Seconds()
		}
		tests = append(tests, entry)
	}
	if failed == len(downloads) {
		return nil, fmt.Errorf("all downloads failed: %w", lastErr)
	}

	mbps := throughputMbps(totalBytes, totalElapsed)
	res := s.NewResult().
		WithRaw("download_tests", tests).
		WithRaw("download_mbps", mbps)

	f := s.Finding(fmt.Sprintf("Download speed: %.1f Mbps", mbps),
		fmt.Sprintf("%s in %s", humanize.IBytes(uint64(totalBytes)), totalElapsed.Round(time.Millisecond)), gradeSpeed(mbps)).
		WithDetail("mbps", mbps)
	if mbps < speedWarnMbps {
		f = f.WithRecommendation("Run a full speed test and contact your provider if speeds stay low")
	}
	res.Add(f)

	if failed > 0 {
		res.Add(s.Finding(fmt.Sprintf("Download tests failed: %d", failed),
			lastErr.Error(), scan.SeverityWarning))
	}
	return res, nil
}

func (s *SpeedTest) fetch(ctx context.Context, url string) download {
	d := download{url: url}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		d.err = err
		return d
	}
	req.Header.Set("User-Agent", version.UserAgent())

	start := s.now()
	resp, err := s.client.Do(req)
	if err != nil {
		d.err = err
		return d
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		d.err = fmt.Errorf("%s: status %d", url, resp.StatusCode)
		return d
	}
	n, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		d.err = err
		return d
	}
	d.bytes = n
	d.elapsed = s.now().Sub(start)
	return d
}

func throughputMbps(bytes int64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(bytes) * 8 / 1e6 / elapsed.Seconds()
}

func gradeSpeed(mbps float64) scan.Severity {
	switch {
	case mbps < speedCriticalMbps:
		return scan.SeverityCritical
	case mbps < speedWarnMbps:
		return scan.SeverityWarning
	default:
		return scan.SeverityPass
	}
}
