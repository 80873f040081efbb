// Command seed fills the configured store with demo data for local runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"financeflow/internal/cli"
	"financeflow/internal/core"
	"financeflow/internal/currency"
	"financeflow/internal/services"
)

func main() {
	owners := flag.Int("owners", 3, "number of demo users")
	txns := flag.Int("transactions", 60, "transactions per user")
	seed := flag.Int64("seed", 0, "random seed (0 picks one)")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	be := cli.InitBackend(context.Background(), logger, cfg)
	defer func() {
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	svc := services.New(be.Store, nil, cli.ServiceOptions(cfg))
	f := gofakeit.New(*seed)
	ctx := context.Background()

	for i := 0; i < *owners; i++ {
		owner := fmt.Sprintf("demo-%d", i+1)
		if err := seedOwner(ctx, svc, f, owner, *txns, cfg.DisplayCurrency()); err != nil {
			logger.Error("Seeding failed", "user_id", owner, "error", err)
			os.Exit(1)
		}
		logger.Info("Seeded demo user", "user_id", owner, "transactions", *txns)
	}
}

func money(f *gofakeit.Faker, min, max float64) decimal.Decimal {
	return decimal.NewFromFloat(f.Price(min, max)).Round(2)
}

func seedOwner(ctx context.Context, svc *services.Services, f *gofakeit.Faker, owner string, n int, cur currency.Code) error {
	now := time.Now().UTC()
	day := func(offset int) core.Date { return core.DateOf(now.AddDate(0, 0, offset)) }

	if _, err := svc.Profiles.Save(ctx, core.Profile{
		ID:                 owner,
		Email:              f.Email(),
		FullName:           f.Name(),
		Username:           f.Username(),
		EmailAlertsEnabled: f.Bool(),
	}); err != nil {
		return fmt.Errorf("profile: %w", err)
	}

	for _, c := range []string{"Groceries", "Dining Out", "Utilities", "Bills"} {
		if _, err := svc.Transactions.CreateBudget(ctx, core.Budget{
			Owner:    owner,
			Category: c,
			Limit:    core.NewMoney(money(f, 200, 800), cur),
			Period:   core.PeriodMonthly,
		}); err != nil {
			return fmt.Errorf("budget %s: %w", c, err)
		}
	}

	for i := 0; i < n; i++ {
		t := core.Transaction{
			Owner:       owner,
			Type:        core.Expense,
			Category:    f.RandomString(core.ExpenseCategories),
			Description: f.ProductName(),
			Amount:      core.NewMoney(money(f, 3, 250), cur),
			Date:        day(-f.Number(0, 89)),
		}
		if i%10 == 0 {
			t.Type = core.Income
			t.Category = f.RandomString(core.IncomeCategories)
			t.Description = f.Company()
			t.Amount = core.NewMoney(money(f, 1500, 5000), cur)
		}
		if _, err := svc.Transactions.Create(ctx, t); err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
	}

	for _, name := range []string{"Rent", "Internet", "Phone"} {
		if _, err := svc.Bills.Create(ctx, core.Bill{
			Owner:        owner,
			Name:         name,
			Amount:       core.NewMoney(money(f, 30, 1200), cur),
			Category:     name,
			DueDate:      day(f.Number(1, 28)),
			Frequency:    core.Monthly,
			ReminderDays: 3,
		}); err != nil {
			return fmt.Errorf("bill %s: %w", name, err)
		}
	}

	l, err := svc.Loans.Create(ctx, core.Loan{
		Owner:           owner,
		Name:            f.Company() + " loan",
		Type:            core.LoanType(f.RandomString([]string{"personal_loan", "auto_loan", "education_loan"})),
		PrincipalAmount: money(f, 5000, 40000),
		InterestRate:    money(f, 4, 15),
		TenureMonths:    f.Number(12, 60),
		StartDate:       day(-120),
		DueDay:          f.Number(1, 28),
		Currency:        cur,
	})
	if err != nil {
		return fmt.Errorf("loan: %w", err)
	}
	for m := 3; m >= 1; m-- {
		if _, _, err := svc.Loans.RecordPayment(ctx, services.PaymentRequest{
			Owner:  owner,
			LoanID: l.ID,
			Amount: l.EMIAmount,
			Date:   day(-30 * m),
		}); err != nil {
			return fmt.Errorf("loan payment: %w", err)
		}
	}

	holdings := []core.AssetLiability{
		{Type: core.Asset, Name: "Savings", Category: "Cash", Value: core.NewMoney(money(f, 1000, 20000), cur)},
		{Type: core.Asset, Name: "Index fund", Category: "Investments", Value: core.NewMoney(money(f, 2000, 50000), cur)},
		{Type: core.Liability, Name: "Credit card", Category: "Debt", Value: core.NewMoney(money(f, 100, 3000), cur)},
	}
	for _, h := range holdings {
		h.Owner = owner
		h.Date = day(-f.Number(0, 180))
		if _, err := svc.Holdings.Create(ctx, h); err != nil {
			return fmt.Errorf("holding %s: %w", h.Name, err)
		}
	}

	if _, err := svc.Holdings.CreateAccount(ctx, core.Account{
		Owner:   owner,
		Name:    "Main checking",
		Type:    "checking",
		Balance: core.NewMoney(money(f, 500, 8000), cur),
	}); err != nil {
		return fmt.Errorf("account: %w", err)
	}
	return nil
}
