package main

import (
	"github.com/go-chi/chi/v5"

	api "github.com/mind-engage/mindengage-academy/internal/api/http"
	"github.com/mind-engage/mindengage-academy/internal/rbac"
)

// mountAdminRoutes wires the governance APIs under /admin.
func mountAdminRoutes(pr chi.Router, s services) {
	pr.Route("/admin", func(r chi.Router) {
		// ---- Identity & Roles ----
		r.With(rbac.Require("admin:identity")).Patch("/users/{userID}/role", api.AdminUpdateUserRoleHandler(s.db))

		// ---- Commerce ----
		r.With(rbac.Require("coupon:create")).Get("/coupons", api.ListCouponsHandler(s.coupons))

		// ---- Compliance & Audit ----
		r.With(rbac.Require("admin:compliance")).Post("/pii/export", api.HandleAdminPIIExport(s.db))
		r.With(rbac.Require("admin:compliance")).Post("/pii/delete", api.HandleAdminPIIDelete(s.db))
		r.With(rbac.Require("admin:compliance")).Get("/audit", api.HandleAdminAuditSearch(s.events))
	})
}
