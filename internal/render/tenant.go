package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/fentz26/sailboard/internal/models"
)

// UnknownOrgType is shown when no product carries an org type.
const UnknownOrgType = "Unknown"

// IDNProduct returns the tenant's "idn" product, or nil.
func IDNProduct(t models.Tenant) *models.Product {
	for i := range t.Products {
		if t.Products[i].ProductName == "idn" {
			return &t.Products[i]
		}
	}
	return nil
}

// OrgType prefers the idn product's org type, then the first product's,
// then UnknownOrgType.
func OrgType(t models.Tenant) string {
	if p := IDNProduct(t); p != nil && p.OrgType != "" {
		return p.OrgType
	}
	if len(t.Products) > 0 && t.Products[0].OrgType != "" {
		return t.Products[0].OrgType
	}
	return UnknownOrgType
}

// Tenant writes the tenant summary and its product table.
func (r *Renderer) Tenant(t models.Tenant) error {
	w := r.w
	fmt.Fprintln(w, r.title(t.FullName))
	fmt.Fprintln(w)

	tenantField(w, "Tenant", t.Name)
	tenantField(w, "Org type", OrgType(t))
	tenantField(w, "ID", t.ID)
	tenantField(w, "Pod", t.Pod)
	tenantField(w, "Region", t.Region)
	if t.Description != "" {
		tenantField(w, "Description", t.Description)
	}
	if idn := IDNProduct(t); idn != nil {
		if users, ok := maxUsers(idn.Attributes["maxRegisteredUsers"]); ok {
			tenantField(w, "Max users", humanize.Comma(users))
		}
		if domain, ok := idn.Attributes["domain"].(string); ok && domain != "" {
			tenantField(w, "Domain", domain)
		}
	}
	tenantField(w, "Products", strconv.Itoa(len(t.Products)))

	if len(t.Products) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tORG TYPE\tSTATUS\tZONE\tAPI")
	for _, p := range t.Products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			strings.ToUpper(p.ProductName),
			orDash(p.OrgType),
			orDash(p.Status),
			orDash(p.Zone),
			orDash(stripScheme(p.APIURL)),
		)
	}
	return tw.Flush()
}

// History writes fetch records as a table, newest first as given.
func (r *Renderer) History(records []models.FetchRecord, now time.Time) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(r.w, "No fetches recorded")
		return err
	}

	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tACTION\tOUTCOME\tINPUTS\tDETAILS")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			humanize.RelTime(rec.Timestamp, now, "ago", "from now"),
			rec.Action,
			rec.Outcome,
			truncateID(rec.InputsHash),
			orDash(truncate(rec.Details, 60)),
		)
	}
	return tw.Flush()
}

func tenantField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%-13s%s\n", label+":", value)
}

func maxUsers(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if n <= 0 || math.IsNaN(n) {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), n > 0
	case int64:
		return n, n > 0
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		return parsed, err == nil && parsed > 0
	default:
		return 0, false
	}
}

func stripScheme(u string) string {
	u = strings.TrimPrefix(u, "https://")
	return strings.TrimPrefix(u, "http://")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
