package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vrcache/internal/config"
)

const userAgent = "vrcache/0.1.0"

// Service defines the push notification surface exposed to the archive.
type Service interface {
	NotifyWorldArchived(ctx context.Context, worldName, worldID string) error
	NotifyWorldFlagged(ctx context.Context, worldName, worldID string) error
	NotifyDiscoveryCompleted(ctx context.Context, archived, skipped int) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.NtfyTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyWorldArchived(ctx context.Context, worldName, worldID string) error {
	data := payload{
		title:   "vrcache - World Archived",
		message: fmt.Sprintf("Archived: %s (%s)", strings.TrimSpace(worldName), worldID),
		tags:    []string{"vrcache", "archive", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyWorldFlagged(ctx context.Context, worldName, worldID string) error {
	data := payload{
		title:   "vrcache - Review Needed",
		message: fmt.Sprintf("Stored without full confidence: %s (%s)\nManual review required", strings.TrimSpace(worldName), worldID),
		tags:    []string{"vrcache", "ambiguous", "review"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDiscoveryCompleted(ctx context.Context, archived, skipped int) error {
	data := payload{
		title:   "vrcache - Discovery Complete",
		message: fmt.Sprintf("Cache discovery finished: %d archived, %d skipped", archived, skipped),
		tags:    []string{"vrcache", "discovery", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "vrcache - Error",
		message:  builder.String(),
		tags:     []string{"vrcache", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "vrcache - Test",
		message:  "Notification system test",
		tags:     []string{"vrcache", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy returned %d", resp.StatusCode)
	}
	return nil
}

type noopService struct{}

func (noopService) NotifyWorldArchived(context.Context, string, string) error { return nil }

func (noopService) NotifyWorldFlagged(context.Context, string, string) error { return nil }

func (noopService) NotifyDiscoveryCompleted(context.Context, int, int) error { return nil }

func (noopService) NotifyError(context.Context, error, string) error { return nil }

func (noopService) TestNotification(context.Context) error { return nil }
