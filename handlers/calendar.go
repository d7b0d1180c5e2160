package handlers

import (
	"fmt"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"reservations-service/provider"
)

// CalendarHandler forwards calendar reads and updates to the primary
// upstream system.
type CalendarHandler struct {
	primary provider.Client
}

func NewCalendarHandler(primary provider.Client) *CalendarHandler {
	return &CalendarHandler{primary: primary}
}

func (h *CalendarHandler) GetCalendar(c *gin.Context) {
	propertyID := c.Query("property_id")
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")
	if propertyID == "" || startDate == "" || endDate == "" {
		c.String(http.StatusBadRequest, "property_id, start_date and end_date are required")
		return
	}

	days, err := h.primary.GetCalendar(c.Request.Context(), propertyID, startDate, endDate)
	if err != nil {
		log.Errorf("Error getting calendar for property %s: %v", propertyID, err)
		c.String(http.StatusBadGateway, fmt.Sprint(err))
		return
	}
	c.IndentedJSON(http.StatusOK, days)
}

type calendarUpdateArgs struct {
	PropertyID  string   `json:"property_id"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Action      string   `json:"action"` // status, pricing, minimum_stay, maintenance, cleaning
	Status      string   `json:"status,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	MinimumStay *int     `json:"minimum_stay,omitempty"`
	Blocked     *bool    `json:"blocked,omitempty"`
}

func (h *CalendarHandler) UpdateCalendar(c *gin.Context) {
	args := &calendarUpdateArgs{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /calendar/update call: %v", err)
		return
	}
	if args.PropertyID == "" || args.StartDate == "" || args.EndDate == "" {
		c.String(http.StatusBadRequest, "property_id, start_date and end_date are required")
		return
	}

	ctx := c.Request.Context()
	var err error
	switch args.Action {
	case "status":
		err = h.primary.UpdateCalendar(ctx, args.PropertyID, args.StartDate, args.EndDate, args.Status)
	case "pricing":
		if args.Price == nil {
			c.String(http.StatusBadRequest, "price is required for pricing updates")
			return
		}
		err = h.primary.UpdatePricing(ctx, args.PropertyID, args.StartDate, args.EndDate, *args.Price)
	case "minimum_stay":
		if args.MinimumStay == nil {
			c.String(http.StatusBadRequest, "minimum_stay is required for minimum-stay updates")
			return
		}
		err = h.primary.UpdateMinimumStay(ctx, args.PropertyID, args.StartDate, args.EndDate, *args.MinimumStay)
	case "maintenance":
		err = h.primary.SetMaintenance(ctx, args.PropertyID, args.StartDate, args.EndDate, args.Blocked != nil && *args.Blocked)
	case "cleaning":
		err = h.primary.SetCleaning(ctx, args.PropertyID, args.StartDate, args.EndDate, args.Blocked != nil && *args.Blocked)
	default:
		c.String(http.StatusBadRequest, "unknown action %q", args.Action)
		return
	}
	if err != nil {
		log.Errorf("Calendar %s update failed for property %s: %v", args.Action, args.PropertyID, err)
		c.String(http.StatusBadGateway, fmt.Sprint(err))
		return
	}
	c.Status(http.StatusOK)
}
