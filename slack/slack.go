package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"dietagent"
)

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	webhookURL string
	httpClient doer
}

func NewClient(webhookURL string, httpClient doer) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: httpClient,
	}
}

func (c *Client) PostMessage(ctx context.Context, channel string, message string) error {
	payload, err := json.Marshal(map[string]any{
		"channel": channel,
		"text":    message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to post message: %s", resp.Status)
	}

	return nil
}

// PostReport posts a readable summary of a diet report to the channel.
func (c *Client) PostReport(ctx context.Context, channel string, report *dietagent.DietReport) error {
	if report == nil {
		return fmt.Errorf("report is nil")
	}
	return c.PostMessage(ctx, channel, FormatReport(report))
}

// FormatReport renders a diet report as a Slack-friendly text summary.
func FormatReport(report *dietagent.DietReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*Diet Report* (%s)\n", report.GeneratedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Days planned: %d\n", len(report.MealPlan))
	fmt.Fprintf(&b, "Weekly cost: %.2f\n", report.TotalWeeklyCost)
	fmt.Fprintf(&b, "Shopping items: %d (%.2f)\n",
		report.ShoppingList.TotalItems, report.ShoppingList.TotalCost)
	fmt.Fprintf(&b, "Avg daily calories: %.0f, protein: %.0fg\n",
		report.NutritionalSummary.WeeklyAverages.Calories,
		report.NutritionalSummary.WeeklyAverages.Protein)

	if len(report.Recommendations) > 0 {
		b.WriteString("Recommendations:\n")
		for _, rec := range report.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
	}

	return b.String()
}
