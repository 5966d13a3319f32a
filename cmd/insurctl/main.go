// Command insurctl is a CLI client for the insurance inquiry service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc/status"

	"github.com/caffeinepub/insurance-inquiry/internal/authz"
	"github.com/caffeinepub/insurance-inquiry/internal/binding"
	"github.com/caffeinepub/insurance-inquiry/internal/cache"
	"github.com/caffeinepub/insurance-inquiry/internal/config"
	"github.com/caffeinepub/insurance-inquiry/internal/identity"
	"github.com/caffeinepub/insurance-inquiry/internal/inquiry"
	"github.com/caffeinepub/insurance-inquiry/internal/model"
	"github.com/caffeinepub/insurance-inquiry/internal/profilegate"
	"github.com/caffeinepub/insurance-inquiry/internal/query"
	"github.com/caffeinepub/insurance-inquiry/internal/remote"
	"github.com/caffeinepub/insurance-inquiry/internal/remote/rpc"
	"github.com/caffeinepub/insurance-inquiry/internal/session"
)

// ---- capability store ----

type capabilityFile struct {
	Principal   string    `json:"principal"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "insurctl")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "insurctl")
}

func capPath() string { return filepath.Join(cfgDir(), "capability.json") }

func saveCapability(cap model.Capability) error {
	_ = os.MkdirAll(cfgDir(), 0o700)
	f, err := os.Create(capPath())
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(capabilityFile{
		Principal:   cap.Principal,
		AccessToken: cap.AccessToken,
		ExpiresAt:   cap.ExpiresAt,
	})
}

func loadCapability() (model.Capability, bool) {
	b, err := os.ReadFile(capPath())
	if err != nil {
		return model.Capability{}, false
	}
	var cf capabilityFile
	if err := json.Unmarshal(b, &cf); err != nil {
		return model.Capability{}, false
	}
	if cf.AccessToken == "" || time.Now().After(cf.ExpiresAt) {
		return model.Capability{}, false
	}
	return model.Capability{Principal: cf.Principal, AccessToken: cf.AccessToken, ExpiresAt: cf.ExpiresAt}, true
}

func dropCapability() { _ = os.Remove(capPath()) }

// ---- app wiring ----

// app is the fully wired client core: session → binding → cache → consumers.
type app struct {
	sess  *session.Manager
	bind  *binding.Binding
	store *cache.Store
	q     *query.Queries
	guard *authz.Guard
	roles *authz.Deriver
	gate  *profilegate.Gate
	ctrl  *inquiry.Controller
}

func buildApp(cfg *config.Config, log *zap.Logger, username, password string) (*app, error) {
	gwOpts := rpc.Options{Addr: cfg.GatewayAddr, CACert: cfg.CACert, Insecure: cfg.Insecure, Logger: log}
	idOpts := rpc.Options{Addr: cfg.IdentityAddr, CACert: cfg.CACert, Insecure: cfg.Insecure, Logger: log}

	provider := identity.NewGRPCProvider(idOpts, username, password)
	sess := session.NewManager(provider)

	factory := func(cap *model.Capability) (remote.Client, error) {
		bearer := ""
		if cap != nil {
			bearer = cap.AccessToken
		}
		return rpc.NewClient(gwOpts, bearer)
	}
	bind, err := binding.New(factory, sess, log)
	if err != nil {
		return nil, err
	}

	store := cache.NewStore()
	q := query.New(sess, bind, store, log)
	roles := authz.NewDeriver(sess, q)

	return &app{
		sess:  sess,
		bind:  bind,
		store: store,
		q:     q,
		guard: authz.NewGuard(roles),
		roles: roles,
		gate:  profilegate.New(sess, q),
		ctrl:  inquiry.New(q),
	}, nil
}

// restore rehydrates a persisted capability, if any.
func (a *app) restore() {
	if cap, ok := loadCapability(); ok {
		_ = a.sess.Restore(cap)
	}
}

// requireProfile blocks authenticated actions until profile setup is done.
func (a *app) requireProfile(ctx context.Context) {
	required, err := a.gate.SetupRequired(ctx)
	if err != nil {
		fail(err)
	}
	if required {
		fmt.Fprintln(os.Stderr, "profile setup required: run `insurctl profile-save -name NAME -email EMAIL` first")
		os.Exit(1)
	}
}

// requireAdmin blocks non-admin access to the admin surface.
func (a *app) requireAdmin(ctx context.Context) {
	switch a.guard.Check(ctx) {
	case authz.DecisionGranted:
	case authz.DecisionLoginRequired:
		fmt.Fprintln(os.Stderr, "login required: run `insurctl login -u USER -p PASS`")
		os.Exit(1)
	case authz.DecisionPending:
		fmt.Fprintln(os.Stderr, "role check unavailable, try again")
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, "access denied: admin role required")
		os.Exit(1)
	}
}

// ---- utils ----

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(err error) {
	var se interface{ GRPCStatus() *status.Status }
	if errors.As(err, &se) {
		s := se.GRPCStatus()
		fmt.Fprintf(os.Stderr, "rpc error: code=%s msg=%s\n", s.Code(), s.Message())
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, `insurctl
Usage:
  insurctl <cmd> [args]

Commands:
  version
  login          -u <username> -p <password>        (saves capability)
  logout
  whoami
  profile
  profile-save   -name <name> -email <email>
  plans          [-type auto|home|life|health]
  submit         -type <type> -details <text>
  my
  inquiries      [-type <type>] [-status pending|inReview|resolved]   (admin)
  counts                                                              (admin)
  update-status  -id <inquiryId> -status <status>                     (admin)
  agents
  contact        -agent <agentId> -message <text>
  messages       [-agent <agentId>]                                   (admin)
  add-agent      -id <id> -name <name> [-phone P] [-email E] [-spec t1,t2]  (admin)
  add-plan       -id <id> -name <name> -type <type> [-premium N] [-coverage N] [-features f1,f2]  (admin)
  assign-role    -user <principal> -role admin|user|guest             (admin)

Config via env/.env: INSUR_GATEWAY_ADDR, INSUR_IDENTITY_ADDR, INSUR_CACERT,
INSUR_INSECURE, INSUR_USERNAME, INSUR_PASSWORD.
`)
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands over the wired client core.
func main() {
	_ = godotenv.Load()

	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	if cmd == "version" {
		fmt.Printf("insurctl %s (%s)\n", version, buildDate)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}

	log, _ := zap.NewProduction()
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd {

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		u := fs.String("u", cfg.Username, "username")
		p := fs.String("p", cfg.Password, "password")
		_ = fs.Parse(args)
		if *u == "" || *p == "" {
			fmt.Fprintln(os.Stderr, "need -u and -p")
			os.Exit(1)
		}
		a, err := buildApp(cfg, log, *u, *p)
		if err != nil {
			fail(err)
		}
		a.restore()
		// ForceLogin clears a restored capability and retries once
		cap, err := a.sess.ForceLogin(ctx)
		if err != nil {
			fail(err)
		}
		if err := saveCapability(cap); err != nil {
			fail(err)
		}
		fmt.Println(cap.Principal)

	case "logout":
		a, err := buildApp(cfg, log, "", "")
		if err != nil {
			fail(err)
		}
		a.restore()
		a.sess.Clear(ctx)
		dropCapability()
		fmt.Println("ok")

	case "whoami":
		a, err := buildApp(cfg, log, "", "")
		if err != nil {
			fail(err)
		}
		a.restore()
		cap, ok := a.sess.Capability()
		if !ok {
			fmt.Println("guest")
			return
		}
		role, err := a.roles.Resolve(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(map[string]string{"principal": cap.Principal, "role": string(role)})

	case "profile":
		a, err := buildApp(cfg, log, "", "")
		if err != nil {
			fail(err)
		}
		a.restore()
		view, err := a.q.CallerProfile(ctx)
		if err != nil {
			fail(err)
		}
		switch view.Status {
		case query.ProfilePresent:
			printJSON(view.Profile)
		case query.ProfileAbsent:
			fmt.Println("no profile (run profile-save)")
		default:
			fmt.Println("unknown (login first)")
		}

	case "profile-save":
		fs := flag.NewFlagSet("profile-save", flag.ExitOnError)
		name := fs.String("name", "", "display name")
		email := fs.String("email", "", "email")
		_ = fs.Parse(args)
		a, err := buildApp(cfg, log, "", "")
		if err != nil {
			fail(err)
		}
		a.restore()
		if err := a.gate.Complete(ctx, model.UserProfile{Name: *name, Email: *email}); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "plans":
		fs := flag.NewFlagSet("plans", flag.ExitOnError)
		typ := fs.String("type", "", "insurance type filter")
		_ = fs.Parse(args)
		a, err := buildApp(cfg, log, "", "")
		if err != nil {
			fail(err)
		}
		a.restore() // plans are guest-readable; restore only enriches
		var plans []model.InsurancePlan
		if *typ == "" {
			plans, err = a.q.AllPlans(ctx)
		} else {
			plans, err = a.q.PlansByType(ctx, model.InsuranceType(*typ))
		}
		if err != nil {
			fail(err)
		}
		printJSON(plans)

	case "submit":
		fs := flag.NewFlagSet("submit", flag.ExitOnError)
		typ := fs.String("type", "", "insurance type")
		details := fs.String("details", "", "inquiry details")
		_ = fs.Parse(args)
		a, err := buildApp(cfg, log, "", "")
		if err != nil {
			fail(err)
		}
		a.restore()
		a.requireProfile(ctx)
		id, err := a.ctrl.Submit(ctx, model.InsuranceType(*typ), *details)
		if err != nil {
			fail(err)
		}
		fmt.Println(id)

	case "my":
		a, err := buildApp(cfg, log, "", "")
		if err != nil {
			fail(err)
		}
		a.restore()
		a.requireProfile(ctx)
		list, err := a.ctrl.Mine(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(list)

	case "agents":
		a, err := buildApp(cfg, log, "", "")
		if err != nil {
			fail(err)
		}
		a.restore()
		list, err := a.q.Agents(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(list)

	case "contact":
		fs := flag.NewFlagSet("contact", flag.ExitOnError)
		agent := fs.String("agent", "", "agent id")
		msg := fs.String("message", "", "message text")
		_ = fs.Parse(args)
		a, err := buildApp(cfg, log, "", "")
		if err != nil {
			fail(err)
		}
		a.restore()
		a.requireProfile(ctx)
		id, err := a.q.SendMessage(ctx, *agent, *msg)
		if err != nil {
			fail(err)
		}
		fmt.Println(id)

	case "inquiries", "counts", "update-status", "messages", "add-agent", "add-plan", "assign-role":
		adminCmd(ctx, cfg, log, cmd, args)

	default:
		usage()
	}
}
