// Command debtdesk is a CLI client for the debt-tracking API: customers,
// installment payments, monthly statistics.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/debtdesk/internal/cache"
	"github.com/and161185/debtdesk/internal/config"
	"github.com/and161185/debtdesk/internal/service"
	"github.com/and161185/debtdesk/internal/session"
	"github.com/and161185/debtdesk/internal/transport"
)

// ---- config/session persistence ----

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "debtdesk")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "debtdesk")
}

func cookiesPath() string { return filepath.Join(cfgDir(), "cookies.json") }

type storedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Expires time.Time `json:"expires"`
}

func saveCookies(cookies []*http.Cookie) error {
	_ = os.MkdirAll(cfgDir(), 0o700)
	out := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, storedCookie{Name: c.Name, Value: c.Value, Expires: c.Expires})
	}
	f, err := os.OpenFile(cookiesPath(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func loadCookies() ([]*http.Cookie, error) {
	b, err := os.ReadFile(cookiesPath())
	if err != nil {
		return nil, err
	}
	var stored []storedCookie
	if err := json.Unmarshal(b, &stored); err != nil {
		return nil, err
	}
	var out []*http.Cookie
	for _, c := range stored {
		if !c.Expires.IsZero() && time.Now().After(c.Expires) {
			continue
		}
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value, Expires: c.Expires})
	}
	if len(out) == 0 {
		return nil, errors.New("no valid session (login required)")
	}
	return out, nil
}

func dropCookies() { _ = os.Remove(cookiesPath()) }

// ---- app wiring ----

type app struct {
	cfg       config.Config
	log       *zap.Logger
	api       *transport.Client
	cache     *cache.Store
	session   *session.Store
	auth      *service.Auth
	customers *service.Customers
	payments  *service.Payments
	stats     *service.Stats
}

// newApp builds the whole dependency graph explicitly: config, transport,
// cache, session store, services. No package-level singletons.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	if os.Getenv("DEBTDESK_DEBUG") != "" {
		logger, _ = zap.NewDevelopment()
	}

	api, err := transport.New(cfg.APIURL, logger, transport.WithTimeout(cfg.Timeout))
	if err != nil {
		return nil, err
	}
	hadSession := false
	if cookies, err := loadCookies(); err == nil {
		api.SetCookies(cookies)
		hadSession = true
	}

	store := cache.New(cfg.CacheTTL, logger)
	sess := session.New()

	// the transport raises auth-expiry; what follows is this application's
	// notion of "go to the login page"
	api.OnAuthExpired(authExpiredHook(sess, &hadSession, os.Stderr))

	return &app{
		cfg:       cfg,
		log:       logger,
		api:       api,
		cache:     store,
		session:   sess,
		auth:      service.NewAuth(api, store, sess),
		customers: service.NewCustomers(api, store),
		payments:  service.NewPayments(api, store),
		stats:     service.NewStats(api, store),
	}, nil
}

// authExpiredHook clears session state on any 401. The expiry notice and
// cookie cleanup apply only while a stored session is in use: a 401 without
// one is not expiry (a rejected login, for one), so the hook stays quiet then.
func authExpiredHook(sess *session.Store, hadSession *bool, notify io.Writer) func() {
	return func() {
		sess.Clear()
		if !*hadSession {
			return
		}
		*hadSession = false
		dropCookies()
		fmt.Fprintln(notify, "session expired; run `debtdesk login`")
	}
}

// ---- utils ----

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, `debtdesk CLI (API: DEBTDESK_API_URL, default %s)
Usage:
  debtdesk <cmd> [flags]

Commands:
  version
  register      -u <username> -p <password>
  login         -u <username> -p <password>        (saves session)
  logout
  whoami
  customers     [-page N] [-order-by f] [-dir asc|desc] [-search s]
  customer      -id <id>                           (detail + payments)
  add-customer  -user -name -company -jmbg -phone -installments -amount -debt -start [...]
  edit-customer -id <id> [field flags]
  rm-customer   -id <id>
  payments      [-page N] [-order-by f] [-dir asc|desc]
  add-payment   -customer <id> -amount <n> -date <YYYY-MM-DD> [...]
  edit-payment  -id <id> [field flags]
  rm-payment    -id <id>
  stats
`, config.DefaultAPIURL)
	os.Exit(2)
}

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands.
func main() {
	if len(os.Args) < 2 {
		usage()
	}
	cmd, args := os.Args[1], os.Args[2:]

	if cmd == "version" {
		fmt.Printf("debtdesk %s (%s)\n", version, buildDate)
		return
	}

	a, err := newApp()
	if err != nil {
		fail(err)
	}
	defer func() { _ = a.log.Sync() }()

	switch cmd {
	case "register":
		cmdRegister(a, args)
	case "login":
		cmdLogin(a, args)
	case "logout":
		cmdLogout(a)
	case "whoami":
		cmdWhoami(a)
	case "customers":
		cmdCustomers(a, args)
	case "customer":
		cmdCustomer(a, args)
	case "add-customer":
		cmdAddCustomer(a, args)
	case "edit-customer":
		cmdEditCustomer(a, args)
	case "rm-customer":
		cmdRmCustomer(a, args)
	case "payments":
		cmdPayments(a, args)
	case "add-payment":
		cmdAddPayment(a, args)
	case "edit-payment":
		cmdEditPayment(a, args)
	case "rm-payment":
		cmdRmPayment(a, args)
	case "stats":
		cmdStats(a)
	default:
		usage()
	}
}
