package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocjay1/cashflow/internal/services"
)

// HandleNightlyTrigger refreshes every household in HOUSEHOLD_IDS and mails a digest
// to USER_EMAIL. A failing household is logged and does not stop the others.
func (d *Dependencies) HandleNightlyTrigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	households := householdIDs()
	if len(households) == 0 {
		slog.Warn("HOUSEHOLD_IDS environment variable is not set; nothing to refresh")
		w.WriteHeader(http.StatusOK)
		return
	}

	recipients := userEmails()
	slog.Info("starting nightly refresh", "households", len(households), "recipients", len(recipients))

	refreshed, failed := 0, 0
	for _, household := range households {
		result, err := d.refresh(ctx, household, time.Time{})
		if err != nil {
			slog.Error("nightly refresh failed", "household_id", household, "error", err)
			failed++
			continue
		}
		refreshed++

		if d.Email == nil || len(recipients) == 0 {
			continue
		}
		digest, err := d.buildDigest(ctx, household, result)
		if err != nil {
			slog.Error("failed to build digest", "household_id", household, "error", err)
			continue
		}
		if err := d.Email.SendDigestEmail(ctx, recipients, digest); err != nil {
			slog.Error("failed to send digest email", "household_id", household, "error", err)
		} else {
			slog.Info("digest email sent", "household_id", household, "alerts", len(digest.Alerts))
		}
	}

	slog.Info("nightly refresh complete", "refreshed", refreshed, "failed", failed)
	WriteJSON(w, http.StatusOK, map[string]int{"refreshed": refreshed, "failed": failed})
}

func (d *Dependencies) buildDigest(ctx context.Context, household string, result *RefreshResult) (services.Digest, error) {
	notifications, err := d.Database.ListNotifications(ctx, household)
	if err != nil {
		return services.Digest{}, err
	}

	digest := services.Digest{
		HouseholdID:         household,
		Month:               result.Month,
		Balance:             result.Snapshot.Balance,
		ProjectedBalance:    result.Snapshot.ProjectedBalance,
		EstimatedEndOfMonth: result.Projection.EstimatedEndOfMonth,
		RiskLevel:           string(result.Projection.RiskLevel),
	}
	for _, n := range notifications {
		if !n.IsActive() {
			continue
		}
		digest.Alerts = append(digest.Alerts, services.DigestAlert{
			EventType: n.EventType,
			Severity:  n.Severity,
			CtaTarget: n.CtaTarget,
		})
	}
	return digest, nil
}
