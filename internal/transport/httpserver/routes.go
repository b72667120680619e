package httpserver

import (
	"net/http"
	"time"

	"rep-ledger-go/internal/config"
	"rep-ledger-go/internal/transport/httpserver/handler"
	ledgermw "rep-ledger-go/internal/transport/httpserver/middleware"
	"rep-ledger-go/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, members ledgermw.MemberResolver, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(ledgermw.NewCORS(cfg.AllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		r.Post("/members", handlers.CreateMember)

		identity := ledgermw.NewIdentity(members, log)
		r.Group(func(r chi.Router) {
			r.Use(identity.Middleware)

			r.Post("/households", handlers.CreateHousehold)
			r.Get("/households/me", handlers.GetMyHousehold)
			r.Post("/households/join", handlers.JoinHousehold)
			r.Post("/households/leave", handlers.LeaveHousehold)
			r.Post("/households/me/invite-code", handlers.RegenerateInviteCode)
			r.Get("/households/me/members", handlers.ListMembers)
			r.Patch("/members/{id}/role", handlers.ChangeRole)
			r.Patch("/members/{id}/fixed-rent", handlers.SetFixedRent)

			r.Get("/templates", handlers.ListTemplates)
			r.Post("/templates", handlers.CreateTemplate)
			r.Patch("/templates/{id}", handlers.UpdateTemplate)

			r.Post("/charges/generate", handlers.GenerateCharges)
			r.Get("/charges", handlers.ListCharges)
			r.Post("/charges", handlers.CreateCharge)
			r.Post("/charges/{id}/pay", handlers.PayCharge)
			r.Post("/payments/allocate", handlers.Allocate)

			r.Post("/credits", handlers.IssueCredit)
			r.Post("/credits/redeem", handlers.RedeemCredits)

			r.Get("/cashbox", handlers.ListCashbox)
			r.Post("/cashbox", handlers.RecordCashboxEntry)

			r.Get("/dashboard", handlers.Dashboard)
			r.Get("/debtors", handlers.ListDebtors)
		})
	})

	return r
}
