// Package entity holds the fact rows and aggregate views transferred between
// layers. Monetary amounts are fixed-point decimals: two fractional digits for
// income and hours, four for contribution bases.
package entity

import "github.com/shopspring/decimal"

// IncomeFact is one gross annual income row per (worker, company, year),
// created from a modelo 190 or 10T page. First value wins; duplicates are
// ignored on insert.
type IncomeFact struct {
	WorkerID          string          `json:"worker_id"`
	Year              int             `json:"year"`
	WorkerName        string          `json:"worker_name"`
	PercepcionIntegra decimal.Decimal `json:"percepcion_integra"`
	CompanyID         string          `json:"company_id"`
	CompanyName       string          `json:"company_name"`
}

// ContributionFact is one social-security contribution base entry from an RNT
// page. Uniqueness covers the full tuple, so the same worker/period can hold
// several distinct entries (multi-company, re-uploads) while exact duplicates
// collapse.
type ContributionFact struct {
	WorkerID      string          `json:"worker_id"`
	Year          int             `json:"year"`
	Base          decimal.Decimal `json:"base_contingencias_comunes"`
	DiasCotizados int             `json:"dias_cotizados"`
	Periodo       string          `json:"periodo"` // first-of-month, "01-MM-YYYY"
	CompanyID     string          `json:"company_id"`
	CompanyName   string          `json:"company_name"`
}

// AgreementFact is the annual contractual working-hours ceiling from a
// collective agreement, one row per year.
type AgreementFact struct {
	Year  int             `json:"year"`
	Horas decimal.Decimal `json:"horas_convenio_anuales"`
}

// SocialChargeRate is a seeded statutory employer surcharge component. The sum
// of all percentages is the rate applied in the hourly-cost formula.
type SocialChargeRate struct {
	Concepto   string          `json:"concepto"`
	Porcentaje decimal.Decimal `json:"porcentaje"`
}

// ContributionPeriodSum aggregates contribution bases per worker and period
// for the workers view.
type ContributionPeriodSum struct {
	WorkerID string          `json:"worker_id"`
	Periodo  string          `json:"periodo"`
	Base     decimal.Decimal `json:"base_contingencias_comunes"`
}

// WorkerCost is the per-(worker, year) hourly-cost aggregate. When any of the
// three required inputs is absent, HourlyCost is nil and Missing names the
// document kinds still needed; a cost is never fabricated from partial data.
type WorkerCost struct {
	WorkerID   string           `json:"worker_id"`
	Year       int              `json:"year"`
	WorkerName string           `json:"worker_name"`
	Income     decimal.Decimal  `json:"percepcion_integra"`
	Base       *decimal.Decimal `json:"base_contingencias_comunes,omitempty"`
	Rate       decimal.Decimal  `json:"porcentaje"`
	Hours      *decimal.Decimal `json:"horas_convenio_anuales,omitempty"`
	HourlyCost *decimal.Decimal `json:"coste_hora,omitempty"`
	Missing    []string         `json:"missing,omitempty"`
}

// Complete reports whether the hourly cost could be computed.
func (w *WorkerCost) Complete() bool { return w.HourlyCost != nil }

// WorkersView is the aggregate consumed by the tabular display and handed to
// the chat assistant as context.
type WorkersView struct {
	Trabajadores         []IncomeFact            `json:"trabajadores"`
	ContingenciasComunes []ContributionPeriodSum `json:"contingencias_comunes"`
	CosteHora            []WorkerCost            `json:"coste_hora"`
}
