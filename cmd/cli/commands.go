package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/and161185/debtdesk/internal/format"
	"github.com/and161185/debtdesk/internal/model"
)

func withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// requireSession probes the server for the current user before any protected
// command runs, the CLI equivalent of a route guard.
func requireSession(a *app) model.User {
	ctx, cancel := withTimeout()
	defer cancel()
	u, err := a.auth.CurrentUser(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "not logged in; run `debtdesk login`")
		os.Exit(1)
	}
	return u
}

func mustDecimal(s, name string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		fail(fmt.Errorf("%s: bad amount %q", name, s))
	}
	return d
}

// ---- auth commands ----

func cmdRegister(a *app, args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	user := fs.String("u", "", "username")
	pass := fs.String("p", "", "password")
	_ = fs.Parse(args)

	ctx, cancel := withTimeout()
	defer cancel()
	u, err := a.auth.Register(ctx, model.Credentials{Username: *user, Password: *pass})
	if err != nil {
		fail(err)
	}
	if err := saveCookies(a.api.Cookies()); err != nil {
		fail(err)
	}
	printJSON(u)
}

func cmdLogin(a *app, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	user := fs.String("u", "", "username")
	pass := fs.String("p", "", "password")
	_ = fs.Parse(args)

	ctx, cancel := withTimeout()
	defer cancel()
	u, err := a.auth.Login(ctx, model.Credentials{Username: *user, Password: *pass})
	if err != nil {
		fail(err)
	}
	if err := saveCookies(a.api.Cookies()); err != nil {
		fail(err)
	}
	fmt.Printf("logged in as %s (id %d)\n", u.Username, u.ID)
}

func cmdLogout(a *app) {
	ctx, cancel := withTimeout()
	defer cancel()
	if err := a.auth.Logout(ctx); err != nil {
		fail(err)
	}
	dropCookies()
	fmt.Println("logged out")
}

func cmdWhoami(a *app) {
	printJSON(requireSession(a))
}

// ---- customer commands ----

func cmdCustomers(a *app, args []string) {
	fs := flag.NewFlagSet("customers", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	orderBy := fs.String("order-by", "createdAt", "sort field")
	dir := fs.String("dir", "asc", "asc|desc")
	search := fs.String("search", "", "search text")
	_ = fs.Parse(args)

	requireSession(a)
	ctx, cancel := withTimeout()
	defer cancel()
	res, err := a.customers.List(ctx, model.ListOptions{
		Page: *page, OrderBy: *orderBy, OrderDirection: *dir, Search: *search,
	})
	if err != nil {
		fail(err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCOMPANY\tPHONE\tSTATUS\tTOTAL DEBT\tSTART")
	for _, c := range res.Data {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.FullName, c.Company, c.PhoneNumber, c.PaymentStatus,
			format.Currency(c.TotalDebt, "RSD"), format.Date(c.StartDate))
	}
	_ = w.Flush()
	p := res.Pagination
	fmt.Printf("page %d/%d (%d customers)\n", p.Page, p.TotalPages, p.TotalItems)
}

func cmdCustomer(a *app, args []string) {
	fs := flag.NewFlagSet("customer", flag.ExitOnError)
	id := fs.Int64("id", 0, "customer id")
	_ = fs.Parse(args)

	requireSession(a)
	ctx, cancel := withTimeout()
	defer cancel()
	c, err := a.customers.Get(ctx, *id)
	if err != nil {
		fail(err)
	}
	payments, err := a.payments.ForCustomer(ctx, c.ID)
	if err != nil {
		fail(err)
	}

	printJSON(c)
	fmt.Printf("remaining debt: %s\n", format.Currency(format.RemainingDebt(c, payments), "RSD"))
	if len(payments) == 0 {
		fmt.Println("no payments")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tAMOUNT\tINSTALLMENT\tNOTES")
	for _, p := range payments {
		inst := "-"
		if p.InstallmentNumber != nil {
			inst = fmt.Sprintf("%d", *p.InstallmentNumber)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			p.ID, format.Date(p.PaymentDate), format.Currency(p.AmountPaid, "RSD"), inst, p.Notes)
	}
	_ = w.Flush()
}

func cmdAddCustomer(a *app, args []string) {
	fs := flag.NewFlagSet("add-customer", flag.ExitOnError)
	userID := fs.Int64("user", 0, "owning user id")
	name := fs.String("name", "", "full name")
	company := fs.String("company", "", "company")
	jmbg := fs.String("jmbg", "", "national id")
	phone := fs.String("phone", "", "phone number")
	installments := fs.Int("installments", 0, "number of installments")
	amount := fs.String("amount", "", "installment amount")
	debt := fs.String("debt", "", "total debt")
	status := fs.String("status", string(model.StatusUnpaid), "unpaid|inProgress|paid")
	start := fs.String("start", "", "contract start (YYYY-MM-DD)")
	end := fs.String("end", "", "contract end (YYYY-MM-DD, optional)")
	notes := fs.String("notes", "", "notes")
	_ = fs.Parse(args)

	me := requireSession(a)
	if *userID == 0 {
		*userID = me.ID
	}
	ctx, cancel := withTimeout()
	defer cancel()
	c, err := a.customers.Create(ctx, model.CreateCustomer{
		UserID:               *userID,
		FullName:             *name,
		Company:              *company,
		JMBG:                 *jmbg,
		PhoneNumber:          *phone,
		NumberOfInstallments: *installments,
		InstallmentAmount:    mustDecimal(*amount, "amount"),
		TotalDebt:            mustDecimal(*debt, "debt"),
		PaymentStatus:        model.PaymentStatus(*status),
		StartDate:            *start,
		EndDate:              *end,
		Notes:                *notes,
	})
	if err != nil {
		fail(err)
	}
	printJSON(c)
}

func cmdEditCustomer(a *app, args []string) {
	fs := flag.NewFlagSet("edit-customer", flag.ExitOnError)
	id := fs.Int64("id", 0, "customer id")
	name := fs.String("name", "", "full name")
	company := fs.String("company", "", "company")
	jmbg := fs.String("jmbg", "", "national id")
	phone := fs.String("phone", "", "phone number")
	installments := fs.Int("installments", 0, "number of installments")
	amount := fs.String("amount", "", "installment amount")
	debt := fs.String("debt", "", "total debt")
	status := fs.String("status", "", "unpaid|inProgress|paid")
	start := fs.String("start", "", "contract start")
	end := fs.String("end", "", "contract end")
	notes := fs.String("notes", "", "notes")
	_ = fs.Parse(args)

	// only flags the user actually set become part of the PATCH
	var in model.UpdateCustomer
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			in.FullName = name
		case "company":
			in.Company = company
		case "jmbg":
			in.JMBG = jmbg
		case "phone":
			in.PhoneNumber = phone
		case "installments":
			in.NumberOfInstallments = installments
		case "amount":
			d := mustDecimal(*amount, "amount")
			in.InstallmentAmount = &d
		case "debt":
			d := mustDecimal(*debt, "debt")
			in.TotalDebt = &d
		case "status":
			st := model.PaymentStatus(*status)
			in.PaymentStatus = &st
		case "start":
			in.StartDate = start
		case "end":
			in.EndDate = end
		case "notes":
			in.Notes = notes
		}
	})

	requireSession(a)
	ctx, cancel := withTimeout()
	defer cancel()
	c, err := a.customers.Update(ctx, *id, in)
	if err != nil {
		fail(err)
	}
	printJSON(c)
}

func cmdRmCustomer(a *app, args []string) {
	fs := flag.NewFlagSet("rm-customer", flag.ExitOnError)
	id := fs.Int64("id", 0, "customer id")
	_ = fs.Parse(args)

	requireSession(a)
	ctx, cancel := withTimeout()
	defer cancel()
	if err := a.customers.Delete(ctx, *id); err != nil {
		fail(err)
	}
	fmt.Println("deleted")
}

// ---- payment commands ----

func cmdPayments(a *app, args []string) {
	fs := flag.NewFlagSet("payments", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	orderBy := fs.String("order-by", "createdAt", "sort field")
	dir := fs.String("dir", "asc", "asc|desc")
	_ = fs.Parse(args)

	requireSession(a)
	ctx, cancel := withTimeout()
	defer cancel()
	res, err := a.payments.List(ctx, model.ListOptions{
		Page: *page, OrderBy: *orderBy, OrderDirection: *dir,
	})
	if err != nil {
		fail(err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCUSTOMER\tDATE\tAMOUNT\tNOTES")
	for _, p := range res.Data {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n",
			p.ID, p.CustomerID, format.Date(p.PaymentDate), format.Currency(p.AmountPaid, "RSD"), p.Notes)
	}
	_ = w.Flush()
	pg := res.Pagination
	fmt.Printf("page %d/%d (%d payments)\n", pg.Page, pg.TotalPages, pg.TotalItems)
}

func cmdAddPayment(a *app, args []string) {
	fs := flag.NewFlagSet("add-payment", flag.ExitOnError)
	customer := fs.Int64("customer", 0, "customer id")
	amount := fs.String("amount", "", "amount paid")
	date := fs.String("date", "", "payment date (YYYY-MM-DD)")
	installment := fs.Int("installment", 0, "installment number (optional)")
	notes := fs.String("notes", "", "notes")
	_ = fs.Parse(args)

	in := model.CreatePayment{
		AmountPaid:  mustDecimal(*amount, "amount"),
		PaymentDate: *date,
		Notes:       *notes,
	}
	if *installment > 0 {
		in.InstallmentNumber = installment
	}

	requireSession(a)
	ctx, cancel := withTimeout()
	defer cancel()
	p, err := a.payments.Create(ctx, *customer, in)
	if err != nil {
		fail(err)
	}
	printJSON(p)
}

func cmdEditPayment(a *app, args []string) {
	fs := flag.NewFlagSet("edit-payment", flag.ExitOnError)
	id := fs.Int64("id", 0, "payment id")
	amount := fs.String("amount", "", "amount paid")
	date := fs.String("date", "", "payment date")
	installment := fs.Int("installment", 0, "installment number")
	notes := fs.String("notes", "", "notes")
	_ = fs.Parse(args)

	var in model.UpdatePayment
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "amount":
			d := mustDecimal(*amount, "amount")
			in.AmountPaid = &d
		case "date":
			in.PaymentDate = date
		case "installment":
			in.InstallmentNumber = installment
		case "notes":
			in.Notes = notes
		}
	})

	requireSession(a)
	ctx, cancel := withTimeout()
	defer cancel()
	p, err := a.payments.Update(ctx, *id, in)
	if err != nil {
		fail(err)
	}
	printJSON(p)
}

func cmdRmPayment(a *app, args []string) {
	fs := flag.NewFlagSet("rm-payment", flag.ExitOnError)
	id := fs.Int64("id", 0, "payment id")
	_ = fs.Parse(args)

	requireSession(a)
	ctx, cancel := withTimeout()
	defer cancel()
	if err := a.payments.Delete(ctx, *id); err != nil {
		fail(err)
	}
	fmt.Println("deleted")
}

// ---- statistics ----

func cmdStats(a *app) {
	requireSession(a)
	ctx, cancel := withTimeout()
	defer cancel()
	stats, err := a.stats.Monthly(ctx)
	if err != nil {
		fail(err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MONTH\tEXPECTED\tINCOME\tREMAINING")
	for _, s := range stats {
		fmt.Fprintf(w, "%04d-%02d\t%s\t%s\t%s\n",
			s.Year, s.Month,
			format.Currency(s.ExpectedDebt, "RSD"),
			format.Currency(s.Income, "RSD"),
			format.Currency(s.RemainingDebt, "RSD"))
	}
	_ = w.Flush()
}
