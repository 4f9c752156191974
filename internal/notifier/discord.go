package notifier

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aleister1102/fleetvoice/internal/config"
	"github.com/aleister1102/fleetvoice/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// DiscordNotifier posts alerts about aborted or exhausted refresh cycles to a
// Discord webhook. It observes refresh cycles and never blocks them: each
// alert is sent on its own goroutine under the configured timeout.
type DiscordNotifier struct {
	client             *resty.Client
	webhookURL         string
	notifyOnExhaustion bool
	timeout            time.Duration
	logger             zerolog.Logger
	wg                 sync.WaitGroup
}

// NewDiscordNotifier returns nil when no webhook is configured so callers can
// skip registering it.
func NewDiscordNotifier(cfg config.NotificationConfig, logger zerolog.Logger) *DiscordNotifier {
	if cfg.DiscordWebhookURL == "" {
		return nil
	}
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = time.Duration(config.DefaultNotificationTimeoutSecs) * time.Second
	}
	return &DiscordNotifier{
		client:             resty.New().SetTimeout(timeout),
		webhookURL:         cfg.DiscordWebhookURL,
		notifyOnExhaustion: cfg.NotifyOnExhaustion,
		timeout:            timeout,
		logger:             logger.With().Str("module", "DiscordNotifier").Logger(),
	}
}

func (dn *DiscordNotifier) LookupFinished(models.LookupResult) {}

// CycleFinished alerts on fatal cycles and, when enabled, on entities that
// every source failed to resolve.
func (dn *DiscordNotifier) CycleFinished(report models.RefreshReport) {
	payload, ok := dn.buildPayload(report)
	if !ok {
		return
	}
	dn.wg.Add(1)
	go func() {
		defer dn.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), dn.timeout)
		defer cancel()
		if err := dn.Send(ctx, payload); err != nil {
			dn.logger.Error().Err(err).Str("cycle_id", report.CycleID).Msg("Failed to send Discord notification")
			return
		}
		dn.logger.Info().Str("cycle_id", report.CycleID).Msg("Discord notification sent successfully")
	}()
}

// Send posts one payload to the webhook.
func (dn *DiscordNotifier) Send(ctx context.Context, payload MessagePayload) error {
	resp, err := dn.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(dn.webhookURL)
	if err != nil {
		return fmt.Errorf("posting to discord webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("discord webhook returned status %d", resp.StatusCode())
	}
	return nil
}

// Close waits for in-flight notifications.
func (dn *DiscordNotifier) Close() {
	dn.wg.Wait()
}

func (dn *DiscordNotifier) buildPayload(report models.RefreshReport) (MessagePayload, bool) {
	if report.Fatal != "" {
		embed := NewEmbedBuilder().
			WithTitle("Refresh cycle aborted").
			WithDescription(report.Fatal).
			WithColor(ErrorEmbedColor).
			WithTimestamp(finishedAt(report)).
			AddField("Mode", string(report.Mode), true).
			AddField("Entities", fmt.Sprintf("%d", len(report.Results)), true).
			WithFooter("cycle " + report.CycleID).
			Build()
		return MessagePayload{Username: webhookUsername, Embeds: []Embed{embed}}, true
	}

	if !dn.notifyOnExhaustion {
		return MessagePayload{}, false
	}
	var missing []string
	for _, res := range report.Results {
		if !res.IsFound() {
			missing = append(missing, fmt.Sprintf("%s: %s", res.EntityID, res.Outcome))
		}
	}
	if len(missing) == 0 {
		return MessagePayload{}, false
	}
	embed := NewEmbedBuilder().
		WithTitle("Entities not located").
		WithDescription(fmt.Sprintf("%d of %d entities could not be located in any source.", len(missing), len(report.Results))).
		WithColor(WarningEmbedColor).
		WithTimestamp(finishedAt(report)).
		AddField("Entities", strings.Join(missing, "\n"), false).
		WithFooter("cycle " + report.CycleID).
		Build()
	return MessagePayload{Username: webhookUsername, Embeds: []Embed{embed}}, true
}

func finishedAt(report models.RefreshReport) time.Time {
	if report.FinishedAt.IsZero() {
		return time.Now()
	}
	return report.FinishedAt
}
