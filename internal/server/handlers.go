package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/addissystems/erp-dashboard/internal/dashboard"
	"github.com/addissystems/erp-dashboard/internal/odoo"
)

func (s *Server) registerRoutes() {
	if s.config.TemplateGlob != "" {
		s.router.GET("/", s.handleIndex)
	}
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/invoices", s.handleInvoices)
		api.GET("/journals", s.handleJournals)
		api.GET("/quotations/pending", s.handleQuotations)
		api.GET("/customers", s.handleCustomers)
		api.GET("/overshoot", s.handleOvershoot)
		api.GET("/reconciliation", s.handleReconciliation)
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"odoo_url": s.config.OdooURL,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "erp-dashboard",
		"time":    time.Now().Format(time.RFC3339),
	})
}

// snapshot returns fresh data, triggering a synchronous refresh when
// the cache is stale. Never nil.
func (s *Server) snapshot() *dashboard.Snapshot {
	s.store.EnsureFresh()
	if snap := s.store.Snapshot(); snap != nil {
		return snap
	}
	return &dashboard.Snapshot{}
}

func (s *Server) handleInvoices(c *gin.Context) {
	invoices := s.snapshot().Invoices
	if invoices == nil {
		invoices = []dashboard.IncompleteOrder{}
	}
	c.JSON(http.StatusOK, invoices)
}

func (s *Server) handleJournals(c *gin.Context) {
	journals := s.snapshot().Journals
	if journals == nil {
		journals = []dashboard.BankingEntry{}
	}
	c.JSON(http.StatusOK, journals)
}

func (s *Server) handleQuotations(c *gin.Context) {
	snap := s.snapshot()
	quotations := snap.Quotations
	if quotations == nil {
		quotations = []odoo.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"data": quotations})
}

func (s *Server) handleCustomers(c *gin.Context) {
	customers := s.snapshot().Customers
	if customers == nil {
		customers = []dashboard.Customer{}
	}
	c.JSON(http.StatusOK, customers)
}

func (s *Server) handleOvershoot(c *gin.Context) {
	overshoot := s.snapshot().Overshoot
	if overshoot == nil {
		overshoot = []dashboard.PartnerExposure{}
	}
	c.JSON(http.StatusOK, overshoot)
}

func (s *Server) handleReconciliation(c *gin.Context) {
	reconciliation := s.snapshot().Reconciliation
	if reconciliation == nil {
		reconciliation = []odoo.Record{}
	}
	c.JSON(http.StatusOK, reconciliation)
}
