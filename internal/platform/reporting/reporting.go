package reporting

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/moonlitpsych/bookability/internal/domain/network"
	"github.com/moonlitpsych/bookability/internal/platform/auth"
)

// MeasureDefinition defines a reporting measure with its SQL query.
type MeasureDefinition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	SQL         string   `json:"sql"`
	Parameters  []string `json:"parameters"`
}

// MeasureReport holds the results of evaluating a measure.
type MeasureReport struct {
	MeasureID   string                   `json:"measure_id"`
	MeasureName string                   `json:"measure_name"`
	GeneratedAt time.Time                `json:"generated_at"`
	Results     []map[string]interface{} `json:"results"`
	Parameters  map[string]string        `json:"parameters,omitempty"`
}

// PredefinedMeasures is the list of available coverage measures.
var PredefinedMeasures = []MeasureDefinition{
	{
		ID:          "relationship-count-by-status",
		Name:        "Relationship Count by Network Status",
		Description: "Number of provider-payer relationships grouped by network status",
		SQL:         `SELECT network_status, COUNT(*) AS total FROM provider_payer_relationship GROUP BY network_status ORDER BY total DESC`,
		Parameters:  []string{},
	},
	{
		ID:          "payer-count-by-type",
		Name:        "Payer Count by Type",
		Description: "Number of payers grouped by payer type",
		SQL:         `SELECT payer_type, COUNT(*) AS total FROM payer GROUP BY payer_type ORDER BY total DESC`,
		Parameters:  []string{},
	},
	{
		ID:          "supervised-load-by-attending",
		Name:        "Supervised Load by Attending",
		Description: "Number of supervised relationships carried by each billing provider",
		SQL: `SELECT p.first_name || ' ' || p.last_name AS attending, COUNT(*) AS supervised_relationships
			FROM provider_payer_relationship r
			JOIN provider p ON p.id = r.billing_provider_id
			WHERE r.network_status = 'supervised'
			GROUP BY p.id, p.first_name, p.last_name
			ORDER BY supervised_relationships DESC`,
		Parameters: []string{},
	},
	{
		ID:          "expiring-within-90-days",
		Name:        "Relationships Expiring Within 90 Days",
		Description: "Currently effective relationships whose expiration date falls in the next 90 days",
		SQL: `SELECT r.id, r.provider_id, r.payer_id, r.network_status, r.expiration_date
			FROM provider_payer_relationship r
			WHERE r.expiration_date IS NOT NULL
			  AND r.expiration_date >= CURRENT_DATE
			  AND r.expiration_date < CURRENT_DATE + INTERVAL '90 days'
			ORDER BY r.expiration_date`,
		Parameters: []string{},
	},
	{
		ID:          "bookable-provider-count",
		Name:        "Bookable Provider Count",
		Description: "Active providers flagged bookable, split by new-patient acceptance",
		SQL: `SELECT accepts_new_patients, COUNT(*) AS total
			FROM provider WHERE is_active AND is_bookable
			GROUP BY accepts_new_patients`,
		Parameters: []string{},
	},
}

// Handler provides HTTP handlers for the reporting API.
type Handler struct {
	pool *pgxpool.Pool
	net  *network.Service
}

// NewHandler creates a new reporting handler.
func NewHandler(pool *pgxpool.Pool, net *network.Service) *Handler {
	return &Handler{pool: pool, net: net}
}

// RegisterRoutes registers the reporting API routes.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	reportGroup := api.Group("/reports", auth.RequireRole("admin", "scheduler"))
	reportGroup.GET("/measures", h.ListMeasures)
	reportGroup.GET("/measures/:id/evaluate", h.EvaluateMeasure)
	reportGroup.GET("/coverage.csv", h.CoverageCSV)
}

// ListMeasures returns all available measure definitions.
func (h *Handler) ListMeasures(c echo.Context) error {
	return c.JSON(http.StatusOK, PredefinedMeasures)
}

// EvaluateMeasure executes a measure's SQL and returns the results.
func (h *Handler) EvaluateMeasure(c echo.Context) error {
	measureID := c.Param("id")

	measure := FindMeasure(measureID)
	if measure == nil {
		return echo.NewHTTPError(http.StatusNotFound, "measure not found")
	}

	params := map[string]string{}
	for _, p := range measure.Parameters {
		if v := c.QueryParam(p); v != "" {
			params[p] = v
		}
	}

	results, err := h.executeSQL(c.Request().Context(), measure.SQL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("query failed: %v", err))
	}

	report := MeasureReport{
		MeasureID:   measure.ID,
		MeasureName: measure.Name,
		GeneratedAt: time.Now(),
		Results:     results,
		Parameters:  params,
	}

	return c.JSON(http.StatusOK, report)
}

// CoverageCSV streams the resolved bookability list as CSV. The rows come
// from the same resolution pipeline the JSON endpoints use, so the export
// reflects exactly what schedulers see.
func (h *Handler) CoverageCSV(c echo.Context) error {
	var eval *network.Evaluation
	if raw := c.QueryParam("as_of"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid as_of date, expected YYYY-MM-DD")
		}
		eval = &network.Evaluation{Date: d, Mode: network.ModeAsOfServiceDate}
	}

	res, err := h.net.Bookable(c.Request().Context(), network.Scope{}, eval)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="coverage.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	return WriteCoverageCSV(c.Response(), res)
}

// WriteCoverageCSV writes the resolution's records in a fixed column order.
// The CLI export command shares this writer with the HTTP endpoint.
func WriteCoverageCSV(w io.Writer, res *network.Resolution) error {
	cw := csv.NewWriter(w)

	header := []string{
		"relationship_id", "provider_name", "payer_name", "via",
		"attending_name", "supervision_level", "requires_co_visit",
		"accepts_new_patients", "provider_is_active", "provider_is_bookable",
		"effective_date", "expiration_date",
		"bookable_from_date", "unsupervised_orphan",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, rec := range res.Records {
		row := []string{
			rec.RelationshipID.String(),
			rec.ProviderName,
			rec.PayerName,
			string(rec.Via),
			strValue(rec.AttendingName),
			levelValue(rec.SupervisionLevel),
			strconv.FormatBool(rec.RequiresCoVisit),
			strconv.FormatBool(rec.AcceptsNewPatients),
			strconv.FormatBool(rec.ProviderIsActive),
			strconv.FormatBool(rec.ProviderIsBookable),
			dateValue(rec.EffectiveDate),
			dateValue(rec.ExpirationDate),
			dateValue(rec.BookableFromDate),
			strconv.FormatBool(rec.UnsupervisedOrphan),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func levelValue(l *network.SupervisionLevel) string {
	if l == nil {
		return ""
	}
	return string(*l)
}

func dateValue(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// executeSQL runs a SQL query and returns results as a slice of maps.
func (h *Handler) executeSQL(ctx context.Context, sql string) ([]map[string]interface{}, error) {
	rows, err := h.pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	var results []map[string]interface{}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(fieldDescs))
		for i, fd := range fieldDescs {
			row[string(fd.Name)] = values[i]
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if results == nil {
		results = []map[string]interface{}{}
	}

	return results, nil
}

// FindMeasure looks up a measure by ID, useful for testing.
func FindMeasure(id string) *MeasureDefinition {
	for i := range PredefinedMeasures {
		if PredefinedMeasures[i].ID == id {
			return &PredefinedMeasures[i]
		}
	}
	return nil
}
