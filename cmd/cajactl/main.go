// cajactl is the operator console for the flows that need a human in the
// loop: manual invoice billing (with optional currency conversion),
// destructive un-billing, savings transfers and surplus capitalization.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	agreementStore "github.com/lucasblanco/caja/internal/agreement/store"
	"github.com/lucasblanco/caja/internal/balance"
	"github.com/lucasblanco/caja/internal/config"
	"github.com/lucasblanco/caja/internal/database"
	"github.com/lucasblanco/caja/internal/invoicing"
	"github.com/lucasblanco/caja/internal/ledger"
	ledgerStore "github.com/lucasblanco/caja/internal/ledger/store"
	"github.com/lucasblanco/caja/internal/period"
	"github.com/lucasblanco/caja/internal/savings"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D787"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
)

func printSuccess(format string, args ...any) {
	fmt.Printf("%s %s\n", successStyle.Render("✓"), fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("✗"), fmt.Sprintf(format, args...))
}

type app struct {
	ctx       context.Context
	ledger    *ledgerStore.Store
	agreement *agreementStore.Store
	invoicing *invoicing.Engine
	savings   *savings.Service
}

type billCmd struct {
	Agreement string `arg:"" help:"Agreement id."`
	Period    string `arg:"" optional:"" help:"Period to bill (YYYY-MM), defaults to the current month."`
}

func (c *billCmd) Run(a *app) error {
	p, err := resolvePeriod(c.Period)
	if err != nil {
		return err
	}

	ag, err := a.agreement.Get(a.ctx, c.Agreement)
	if err != nil {
		return err
	}

	if ag.Billed(p) {
		return fmt.Errorf("%s is already billed for %s", ag.Name, p)
	}

	var conv *invoicing.Conversion

	convertTo := other(ag.Currency)
	doConvert := false

	if err := huh.NewConfirm().
		Title(fmt.Sprintf("Bill %s for %s %s. Convert to %s?", ag.Name, ag.Amount, ag.Currency, convertTo)).
		Value(&doConvert).
		Run(); err != nil {
		return err
	}

	if doConvert {
		var rateInput string

		if err := huh.NewInput().
			Title(fmt.Sprintf("Exchange rate (ARS per USD) for %s -> %s", ag.Currency, convertTo)).
			Validate(validateRate).
			Value(&rateInput).
			Run(); err != nil {
			return err
		}

		rate, _ := decimal.NewFromString(rateInput)
		conv = &invoicing.Conversion{To: convertTo, Rate: rate}
	}

	tx, err := a.invoicing.Bill(a.ctx, ag, p, conv)
	if err != nil {
		return err
	}

	printSuccess("billed %s for %s: income %s (%s %s)", ag.Name, p, tx.ID, tx.Amount, tx.Currency)

	return nil
}

type unbillCmd struct {
	Agreement string `arg:"" help:"Agreement id."`
	Period    string `arg:"" help:"Billed period to revert (YYYY-MM)."`
}

func (c *unbillCmd) Run(a *app) error {
	p, err := period.Parse(c.Period)
	if err != nil {
		return err
	}

	ag, err := a.agreement.Get(a.ctx, c.Agreement)
	if err != nil {
		return err
	}

	confirmed := false

	if err := huh.NewConfirm().
		Title(fmt.Sprintf("Un-bill %s for %s? The linked income transaction will be deleted.", ag.Name, p)).
		Value(&confirmed).
		Run(); err != nil {
		return err
	}

	if !confirmed {
		return nil
	}

	if err := a.invoicing.Unbill(a.ctx, ag, p); err != nil {
		return err
	}

	printSuccess("reverted %s for %s", ag.Name, p)

	return nil
}

type transferCmd struct {
	Source string `arg:"" help:"Source saving entry id."`
}

func (c *transferCmd) Run(a *app) error {
	source, err := a.ledger.Get(a.ctx, c.Source)
	if err != nil {
		return err
	}

	if source.Type != ledger.TypeSaving {
		return fmt.Errorf("%s is not a saving entry", c.Source)
	}

	var destID, newBucket, amountInput string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Destination saving entry id (leave empty for a new bucket)").
				Value(&destID),
			huh.NewInput().
				Title("New bucket name (when no destination id)").
				Value(&newBucket),
			huh.NewInput().
				Title(fmt.Sprintf("Amount to move (up to %s %s)", source.Amount, source.Currency)).
				Validate(validateAmount).
				Value(&amountInput),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	amount, _ := decimal.NewFromString(amountInput)

	if err := a.savings.Transfer(a.ctx, savings.TransferParams{
		SourceID:      c.Source,
		DestinationID: destID,
		NewBucket:     newBucket,
		Amount:        amount,
	}); err != nil {
		return err
	}

	printSuccess("moved %s %s out of %s", amount, source.Currency, source.Category)

	return nil
}

type capitalizeCmd struct {
	Period string `arg:"" optional:"" help:"Month to capitalize (YYYY-MM), defaults to the current month."`
}

func (c *capitalizeCmd) Run(a *app) error {
	p, err := resolvePeriod(c.Period)
	if err != nil {
		return err
	}

	txs, err := a.ledger.List(a.ctx)
	if err != nil {
		return err
	}

	sug, ok := balance.SuggestCapitalization(txs, balance.MonthFilter(p))
	if !ok {
		fmt.Printf("no capitalizable surplus for %s\n", p)
		return nil
	}

	arsInput := sug.Amounts.Get(ledger.ARS).String()
	usdInput := sug.Amounts.Get(ledger.USD).String()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("ARS amount to capitalize").
				Validate(validateOptionalAmount).
				Value(&arsInput),
			huh.NewInput().
				Title("USD amount to capitalize").
				Validate(validateOptionalAmount).
				Value(&usdInput),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	ars, _ := decimal.NewFromString(arsInput)
	usd, _ := decimal.NewFromString(usdInput)

	amounts := balance.Amounts{ledger.ARS: ars, ledger.USD: usd}

	if err := a.savings.Capitalize(a.ctx, p, amounts); err != nil {
		return err
	}

	if amounts.IsZero() {
		fmt.Println("nothing to capitalize")
		return nil
	}

	printSuccess("capitalized surplus for %s (ARS %s, USD %s)", p, ars, usd)

	return nil
}

var cli struct {
	Bill       billCmd       `cmd:"" help:"Bill an agreement for a period, optionally converting currency."`
	Unbill     unbillCmd     `cmd:"" help:"Revert a billed period, deleting its income transaction."`
	Transfer   transferCmd   `cmd:"" help:"Move value between savings entries."`
	Capitalize capitalizeCmd `cmd:"" help:"Move a month's cash surplus into savings."`
}

func main() {
	_ = godotenv.Load()

	kctx := kong.Parse(&cli,
		kong.Name("cajactl"),
		kong.Description("Operator console for the cashflow ledger."),
	)

	cfg, err := config.Load()
	kctx.FatalIfErrorf(err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := database.New(ctx, cfg.Mongo.URI)
	kctx.FatalIfErrorf(err)

	defer func() { _ = client.Disconnect(context.Background()) }()

	db := client.Database(cfg.Mongo.Database)

	txStore := ledgerStore.New(db)
	agStore := agreementStore.New(db)

	a := &app{
		ctx:       ctx,
		ledger:    txStore,
		agreement: agStore,
		invoicing: invoicing.New(txStore, agStore),
		savings:   savings.NewService(txStore),
	}

	if err := kctx.Run(a); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}

func resolvePeriod(key string) (period.Period, error) {
	if key == "" {
		return period.Of(time.Now().UTC()), nil
	}

	return period.Parse(key)
}

func other(c ledger.Currency) ledger.Currency {
	if c == ledger.ARS {
		return ledger.USD
	}

	return ledger.ARS
}

func validateRate(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("not a number")
	}

	if !d.IsPositive() {
		return fmt.Errorf("rate must be positive")
	}

	return nil
}

func validateAmount(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("not a number")
	}

	if !d.IsPositive() {
		return fmt.Errorf("amount must be positive")
	}

	return nil
}

func validateOptionalAmount(s string) error {
	if s == "" || s == "0" {
		return nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("not a number")
	}

	if d.IsNegative() {
		return fmt.Errorf("amount cannot be negative")
	}

	return nil
}
