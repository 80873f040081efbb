package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"financeflow/internal/amqp"
	"financeflow/internal/budget"
	"financeflow/internal/core"
	"financeflow/internal/currency"
	"financeflow/internal/storage"
)

// Publisher hands events to the message broker.
type Publisher interface {
	Publish(ctx context.Context, msg *amqp.Message) error
}

// AlertService decides when budget spend warrants a notification and hands
// the notification off. Without a publisher alerts are stored directly.
type AlertService struct {
	store     storage.Store
	publisher Publisher
	threshold float64
	currency  currency.Code
	now       func() time.Time
}

func NewAlertService(store storage.Store, publisher Publisher, threshold float64, display currency.Code) *AlertService {
	if threshold <= 0 {
		threshold = budget.DefaultAlertPercent
	}
	return &AlertService{
		store:     store,
		publisher: publisher,
		threshold: threshold,
		currency:  display,
		now:       time.Now,
	}
}

// alertsEnabled reads the owner's preference. Owners without a profile get
// alerts.
func (s *AlertService) alertsEnabled(ctx context.Context, owner string) (bool, string, error) {
	p, err := s.store.GetProfile(ctx, owner)
	if errors.Is(err, core.ErrNotFound) {
		return true, "", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("get profile: %w", err)
	}
	return p.EmailAlertsEnabled, p.Email, nil
}

// CheckOwner evaluates every budget of owner for its current period and
// raises an alert for each one at or above the threshold. It returns the
// number of alerts raised.
func (s *AlertService) CheckOwner(ctx context.Context, owner string) (int, error) {
	enabled, email, err := s.alertsEnabled(ctx, owner)
	if err != nil {
		return 0, err
	}
	if !enabled {
		return 0, nil
	}

	budgets, err := s.store.ListBudgets(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("list budgets: %w", err)
	}
	if len(budgets) == 0 {
		return 0, nil
	}

	groups, err := spendByPeriod(ctx, s.store, owner, budgets, s.now(), s.currency)
	if err != nil {
		return 0, err
	}

	raised := 0
	for _, g := range groups {
		start := core.DateOf(g.Window.Start)
		for _, spend := range g.Spend {
			if !budget.Evaluate(spend, s.threshold).ShouldAlert {
				continue
			}
			if err := s.raise(ctx, owner, email, g.Period, start, budget.NewAlert(spend)); err != nil {
				return raised, err
			}
			raised++
		}
	}
	return raised, nil
}

func (s *AlertService) raise(ctx context.Context, owner, email string, period core.BudgetPeriod, start core.Date, a budget.Alert) error {
	if s.publisher != nil {
		msg := amqp.NewBudgetAlertMessage(owner, email, period, start, a)
		err := s.publisher.Publish(ctx, msg)
		if err == nil {
			return nil
		}
		slog.WarnContext(ctx, "Failed to publish budget alert, storing directly",
			"user_id", owner,
			"category", a.Category,
			"error", err)
	}
	_, err := s.Record(ctx, owner, start, a)
	return err
}

// Record stores a as a BudgetAlert. It returns false when an alert for the
// same owner, category and period already exists.
func (s *AlertService) Record(ctx context.Context, owner string, periodStart core.Date, a budget.Alert) (bool, error) {
	created, err := s.store.CreateAlert(ctx, core.BudgetAlert{
		Owner:       owner,
		Category:    a.Category,
		PeriodStart: periodStart,
		Percentage:  a.Percentage,
		Spent:       a.Spent,
		Limit:       a.Limit,
		Currency:    a.Currency,
	})
	if err != nil {
		return false, fmt.Errorf("store budget alert: %w", err)
	}
	if created {
		slog.InfoContext(ctx, "Budget alert recorded",
			"user_id", owner,
			"category", a.Category,
			"percentage", a.Percentage,
			"period_start", periodStart.String())
	}
	return created, nil
}

// ScanAll runs CheckOwner for every owner with a budget. One owner failing
// does not stop the others; all failures are returned joined.
func (s *AlertService) ScanAll(ctx context.Context) (int, error) {
	owners, err := s.store.ListBudgetOwners(ctx)
	if err != nil {
		return 0, fmt.Errorf("list budget owners: %w", err)
	}
	total := 0
	var errs []error
	for _, owner := range owners {
		n, err := s.CheckOwner(ctx, owner)
		total += n
		if err != nil {
			errs = append(errs, fmt.Errorf("owner %s: %w", owner, err))
		}
	}
	return total, errors.Join(errs...)
}

// List returns the stored alerts of owner.
func (s *AlertService) List(ctx context.Context, owner string) ([]core.BudgetAlert, error) {
	return s.store.ListAlerts(ctx, owner)
}
