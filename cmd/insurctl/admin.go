package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/caffeinepub/insurance-inquiry/internal/config"
	"github.com/caffeinepub/insurance-inquiry/internal/inquiry"
	"github.com/caffeinepub/insurance-inquiry/internal/model"
)

// adminCmd handles the administrative surface. Every command passes the
// route guard first; the protected content never renders for guests or
// unresolved roles.
func adminCmd(ctx context.Context, cfg *config.Config, log *zap.Logger, cmd string, args []string) {
	a, err := buildApp(cfg, log, "", "")
	if err != nil {
		fail(err)
	}
	a.restore()
	a.requireAdmin(ctx)

	switch cmd {

	case "inquiries":
		fs := flag.NewFlagSet("inquiries", flag.ExitOnError)
		typ := fs.String("type", "", "insurance type filter")
		st := fs.String("status", "", "status filter")
		_ = fs.Parse(args)

		var f inquiry.Filter
		if *typ != "" {
			t, err := model.ParseInsuranceType(*typ)
			if err != nil {
				fail(err)
			}
			f.Type = &t
		}
		if *st != "" {
			s, err := model.ParseInquiryStatus(*st)
			if err != nil {
				fail(err)
			}
			f.Status = &s
		}
		list, err := a.ctrl.Filtered(ctx, f)
		if err != nil {
			fail(err)
		}
		printJSON(list)

	case "counts":
		counts, err := a.ctrl.Counts(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(map[string]int{
			"pending":  counts.Pending,
			"inReview": counts.InReview,
			"resolved": counts.Resolved,
			"total":    counts.Total(),
		})

	case "update-status":
		fs := flag.NewFlagSet("update-status", flag.ExitOnError)
		id := fs.String("id", "", "inquiry id")
		st := fs.String("status", "", "target status")
		_ = fs.Parse(args)
		if err := a.ctrl.UpdateStatus(ctx, *id, model.InquiryStatus(*st)); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "messages":
		fs := flag.NewFlagSet("messages", flag.ExitOnError)
		agent := fs.String("agent", "", "agent id filter")
		_ = fs.Parse(args)
		var list []model.ContactMessage
		var err error
		if *agent == "" {
			list, err = a.q.ContactMessages(ctx)
		} else {
			list, err = a.q.ContactMessagesForAgent(ctx, *agent)
		}
		if err != nil {
			fail(err)
		}
		printJSON(list)

	case "add-agent":
		fs := flag.NewFlagSet("add-agent", flag.ExitOnError)
		id := fs.String("id", "", "agent id")
		name := fs.String("name", "", "agent name")
		phone := fs.String("phone", "", "phone")
		email := fs.String("email", "", "email")
		spec := fs.String("spec", "", "comma-separated insurance types")
		_ = fs.Parse(args)

		agent := model.Agent{AgentID: *id, Name: *name, Phone: *phone, Email: *email}
		if *spec != "" {
			for _, s := range strings.Split(*spec, ",") {
				t, err := model.ParseInsuranceType(strings.TrimSpace(s))
				if err != nil {
					fail(err)
				}
				agent.Specialization = append(agent.Specialization, t)
			}
		}
		if err := a.q.AddAgent(ctx, agent); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "add-plan":
		fs := flag.NewFlagSet("add-plan", flag.ExitOnError)
		id := fs.String("id", "", "plan id")
		name := fs.String("name", "", "plan name")
		typ := fs.String("type", "", "insurance type")
		premium := fs.Int64("premium", 0, "premium")
		coverage := fs.Int64("coverage", 0, "coverage amount")
		features := fs.String("features", "", "comma-separated features")
		_ = fs.Parse(args)

		plan := model.InsurancePlan{
			PlanID:         *id,
			Name:           *name,
			InsuranceType:  model.InsuranceType(*typ),
			Premium:        *premium,
			CoverageAmount: *coverage,
		}
		if *features != "" {
			for _, f := range strings.Split(*features, ",") {
				plan.Features = append(plan.Features, strings.TrimSpace(f))
			}
		}
		if err := a.q.AddPlan(ctx, plan); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "assign-role":
		fs := flag.NewFlagSet("assign-role", flag.ExitOnError)
		user := fs.String("user", "", "principal")
		role := fs.String("role", "", "role (admin|user|guest)")
		_ = fs.Parse(args)
		if err := a.q.AssignRole(ctx, *user, model.Role(*role)); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	default:
		fmt.Fprintf(os.Stderr, "unknown admin command %q\n", cmd)
		os.Exit(2)
	}
}
