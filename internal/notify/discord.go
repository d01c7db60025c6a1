package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/excoffierleonard/downdetector/internal/domain"
)

type Discord struct {
	Webhook   string
	MentionID string
	Client    *http.Client
}

func NewDiscord(webhook, mentionID string) *Discord {
	return &Discord{
		Webhook:   webhook,
		MentionID: mentionID,
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type discordPayload struct {
	Content string `json:"content"`
}

func (d *Discord) Notify(ctx context.Context, ev domain.Transition) error {
	if d == nil || d.Webhook == "" {
		return errors.New("discord disabled")
	}
	body, _ := json.Marshal(discordPayload{Content: d.content(ev)})
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, d.Webhook, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("discord non-2xx: %d", resp.StatusCode)
	}
	return nil
}

func (d *Discord) content(ev domain.Transition) string {
	var b strings.Builder
	if d.MentionID != "" {
		fmt.Fprintf(&b, "<@%s> ", d.MentionID)
	}
	if ev.Recovered() {
		fmt.Fprintf(&b, "🟢 Recovered: %s is UP again", ev.URL)
	} else {
		fmt.Fprintf(&b, "🔴 Alert: %s is DOWN!", ev.URL)
		if ev.Reason != "" {
			fmt.Fprintf(&b, " (%s)", ev.Reason)
		}
	}
	fmt.Fprintf(&b, " at %s", ev.OccurredAt.Format(time.RFC3339))
	return b.String()
}
