package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"reservations-service/compliance"
	"reservations-service/models"
	"reservations-service/portfolio"
	"reservations-service/reconcile"
	"reservations-service/repository"
	"reservations-service/statement"
)

type EngineHandler struct {
	reconciler *reconcile.Reconciler
	engine     *compliance.Engine
	calc       *statement.Calculator
	aggregator *portfolio.Aggregator
	properties repository.Store[models.PropertyConfig]
}

func NewEngineHandler(
	reconciler *reconcile.Reconciler,
	engine *compliance.Engine,
	calc *statement.Calculator,
	aggregator *portfolio.Aggregator,
	properties repository.Store[models.PropertyConfig],
) *EngineHandler {
	return &EngineHandler{
		reconciler: reconciler,
		engine:     engine,
		calc:       calc,
		aggregator: aggregator,
		properties: properties,
	}
}

// HealthCheck returns a simple health status
func (h *EngineHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "reservations-service",
	})
}

// GetReservations reconciles reservations for one property and date window.
func (h *EngineHandler) GetReservations(c *gin.Context) {
	propertyID := c.Query("property_id")
	if propertyID == "" {
		c.String(http.StatusBadRequest, "property_id is required")
		return
	}
	startDate := c.DefaultQuery("start_date", reconcile.FullRangeStart)
	endDate := c.DefaultQuery("end_date", reconcile.FullRangeEnd)

	set := h.reconciler.Reconcile(c.Request.Context(), propertyID, startDate, endDate)
	c.IndentedJSON(http.StatusOK, set)
}

type statementRequest struct {
	PropertyID     string            `json:"property_id"`
	StartDate      string            `json:"start_date"`
	EndDate        string            `json:"end_date"`
	CommissionRate float64           `json:"commission_rate"`
	IsAdminOwned   bool              `json:"is_admin_owned"`
	Entries        []statement.Entry `json:"entries"`
}

// ComputeStatement builds an owner statement either from caller-supplied
// entries or from the property's reconciled reservations.
func (h *EngineHandler) ComputeStatement(c *gin.Context) {
	args := &statementRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /statement call: %v", err)
		return
	}

	entries := args.Entries
	if len(entries) == 0 {
		if args.PropertyID == "" {
			c.String(http.StatusBadRequest, "property_id or entries required")
			return
		}
		set := h.reconciler.Reconcile(c.Request.Context(), args.PropertyID, args.StartDate, args.EndDate)
		if set.Status != "ok" {
			c.String(http.StatusBadGateway, "reservation data unavailable")
			return
		}
		entries = statement.FromReservations(set.Reservations)
	}

	c.IndentedJSON(http.StatusOK, h.calc.Compute(entries, args.CommissionRate, args.IsAdminOwned))
}

type complianceRequest struct {
	PropertyID  string                 `json:"property_id"`
	Reservation map[string]interface{} `json:"reservation"`
}

func (h *EngineHandler) ValidateCompliance(c *gin.Context) {
	args := &complianceRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /compliance/validate call: %v", err)
		return
	}
	if args.PropertyID == "" {
		c.String(http.StatusBadRequest, "property_id is required")
		return
	}
	c.IndentedJSON(http.StatusOK, h.engine.Validate(c.Request.Context(), args.PropertyID, args.Reservation))
}

func (h *EngineHandler) SendCompliance(c *gin.Context) {
	args := &complianceRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /compliance/send call: %v", err)
		return
	}
	if args.PropertyID == "" {
		c.String(http.StatusBadRequest, "property_id is required")
		return
	}

	result := h.engine.Send(c.Request.Context(), args.PropertyID, args.Reservation)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	c.IndentedJSON(status, result)
}

func (h *EngineHandler) ComplianceDashboard(c *gin.Context) {
	propertyIDs := h.propertyIDs(c)
	if len(propertyIDs) == 0 {
		c.String(http.StatusBadRequest, "property_ids is required")
		return
	}
	c.IndentedJSON(http.StatusOK, h.engine.Dashboard(c.Request.Context(), propertyIDs))
}

func (h *EngineHandler) PortfolioOverview(c *gin.Context) {
	propertyIDs := h.propertyIDs(c)
	month := c.Query("month")
	if len(propertyIDs) == 0 || month == "" {
		c.String(http.StatusBadRequest, "property_ids and month are required")
		return
	}

	overview, err := h.aggregator.Overview(c.Request.Context(), propertyIDs, month)
	if err != nil {
		c.String(http.StatusBadRequest, fmt.Sprint(err))
		return
	}
	c.IndentedJSON(http.StatusOK, overview)
}

func (h *EngineHandler) PortfolioTrends(c *gin.Context) {
	propertyIDs := h.propertyIDs(c)
	months := splitParam(c.Query("months"))
	if len(propertyIDs) == 0 || len(months) == 0 {
		c.String(http.StatusBadRequest, "property_ids and months are required")
		return
	}

	trends, err := h.aggregator.Trends(c.Request.Context(), propertyIDs, months)
	if err != nil {
		c.String(http.StatusBadRequest, fmt.Sprint(err))
		return
	}
	c.IndentedJSON(http.StatusOK, trends)
}

// RegisterProperty stores the per-property billing settings used by
// statements and portfolio rollups.
func (h *EngineHandler) RegisterProperty(c *gin.Context) {
	cfg := &models.PropertyConfig{}
	if err := c.BindJSON(cfg); err != nil {
		log.Errorf("Failed to get the argument in /properties call: %v", err)
		return
	}
	if cfg.PropertyID == "" {
		c.String(http.StatusBadRequest, "property_id is required")
		return
	}
	if err := h.properties.Put(c.Request.Context(), cfg.PropertyID, *cfg); err != nil {
		log.Errorf("Error storing property config: %v", err)
		c.String(http.StatusInternalServerError, fmt.Sprint(err))
		return
	}
	c.Status(http.StatusOK)
}

func (h *EngineHandler) propertyIDs(c *gin.Context) []string {
	return splitParam(c.Query("property_ids"))
}

func splitParam(raw string) []string {
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
