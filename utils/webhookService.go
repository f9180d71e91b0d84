package utils

import (
	"context"
	"encoding/json"
	"time"

	"lms/config"
	"lms/database"
	"lms/models"

	"github.com/go-resty/resty/v2"
)

type webhookSettings struct {
	URL    string `json:"url"`
	Secret string `json:"secret"`
}

// SendWebhookEvent posts an event to the admin-configured webhook URL, read
// from the WEBHOOKS settings snapshot. No-op when unconfigured; failures are
// logged only.
func SendWebhookEvent(eventType string, payload map[string]interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var settings webhookSettings
	if !CacheGetJSON(ctx, "settings:WEBHOOKS", &settings) {
		var row models.SystemSetting
		if err := database.Database.Db.Where("category = ? AND is_deleted = ?", "WEBHOOKS", false).First(&row).Error; err != nil {
			return
		}
		if err := json.Unmarshal(row.Value, &settings); err != nil {
			config.Log.Warnw("Invalid WEBHOOKS settings blob", "error", err)
			return
		}
		CacheSetJSON(ctx, "settings:WEBHOOKS", settings, 0)
	}
	if settings.URL == "" {
		return
	}

	client := resty.New().SetTimeout(10 * time.Second)
	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Webhook-Secret", settings.Secret).
		SetBody(map[string]interface{}{
			"event":     eventType,
			"payload":   payload,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}).
		Post(settings.URL)
	if err != nil {
		config.Log.Warnw("Webhook delivery failed", "event", eventType, "error", err)
		return
	}
	if resp.StatusCode() >= 400 {
		config.Log.Warnw("Webhook endpoint returned error", "event", eventType, "status", resp.StatusCode())
	}
}
