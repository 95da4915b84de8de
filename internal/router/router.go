package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-loan-system/internal/handler"
	"github.com/iliyamo/library-loan-system/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring systems to verify that the
	// service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterCatalog registers the public catalog browse endpoints and the
// staff-only catalog maintenance endpoints.  Browse routes carry no
// auth so guests can explore the catalog; an optional Redis response
// cache can be applied to them through the cache middleware.  All
// mutating routes require a valid token with a staff role.
func RegisterCatalog(e *echo.Echo, b *handler.BookHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	pub := e.Group("/book")
	if cache != nil {
		pub.Use(cache)
	}
	pub.GET("/titles", b.ListTitles)
	pub.GET("/titles/:id", b.GetTitle)
	pub.GET("/conditions", b.ListConditions)
	pub.GET("/categories", b.ListCategories)
	pub.GET("/publishers", b.ListPublishers)
	pub.GET("/shelves", b.ListShelves)

	staff := e.Group("/book")
	staff.Use(middleware.JWTAuth(jwtSecret))
	staff.Use(middleware.RequireRole("ADMIN", "LIBRARIAN"))
	staff.POST("/addcopy", b.AddCopy)
	staff.POST("/editcopy", b.EditCopyCondition)
	staff.POST("/save", b.SaveTitle)
	staff.POST("/uploadcopy", b.UploadCopies)
	staff.POST("/uploadtitle", b.UploadTitles)
	staff.DELETE("/delete", b.DeleteTitle)
}

// RegisterLoans registers the loan workflow endpoints.  Every loan
// operation is performed by staff on behalf of a reader, so the whole
// group sits behind JWT auth and the staff roles.
func RegisterLoans(e *echo.Echo, l *handler.LoanHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/loan-transactions")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN", "LIBRARIAN"))
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/borrow", l.Borrow)
	g.POST("/:id/renew", l.Renew)
	g.GET("/:id/renewal-status", l.RenewalStatus)
	g.POST("/return-book/process", l.ProcessReturn)
}

// RegisterReaders registers the membership endpoints (reader
// registration, card extension and cancellation, reader deletion).
func RegisterReaders(e *echo.Echo, r *handler.ReaderHandler, jwtSecret string) {
	g := e.Group("/reader")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN", "LIBRARIAN"))
	g.POST("/save", r.SaveReader)
	g.POST("/extend", r.ExtendCard)
	g.POST("/cancel", r.CancelCard)
	g.POST("/delete", r.DeleteReader)
}

// RegisterStaff registers staff administration plus the role and
// permission lookups used by the front end to shape its menus.
func RegisterStaff(e *echo.Echo, s *handler.StaffHandler, jwtSecret string) {
	auth := e.Group("")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/role", s.GetRole)
	auth.GET("/staff/permission", s.GetPermissions)

	admin := e.Group("/staff")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole("ADMIN"))
	admin.POST("/save", s.SaveStaff)
}

// RegisterCron registers the scheduler entry point.  Both verbs are
// mapped because hosted cron services differ in which one they send.
// The handler enforces the shared secret itself, and only in prod.
func RegisterCron(e *echo.Echo, cr *handler.CronHandler) {
	e.GET("/cron/update-overdue-loans", cr.UpdateOverdueLoans)
	e.POST("/cron/update-overdue-loans", cr.UpdateOverdueLoans)
}
