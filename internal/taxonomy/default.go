package taxonomy

import "github.com/dortega/finz/internal/domain"

// DefaultCategories is the built-in canonical category set. Deployments can
// extend it (and the alias map) through configuration, but the built-in set
// covers the cost structure the forecast engine was designed around.
func DefaultCategories() []domain.CanonicalCategory {
	return []domain.CanonicalCategory{
		{Code: "LABOR-ENG", Group: "labor", Label: "Engineering labor", Execution: domain.ExecutionRecurring, CostClass: domain.CostOperating, SourceRef: "payroll"},
		{Code: "LABOR-SDM", Group: "labor", Label: "Service delivery management", Execution: domain.ExecutionRecurring, CostClass: domain.CostOperating, SourceRef: "payroll"},
		{Code: "LABOR-PM", Group: "labor", Label: "Project management", Execution: domain.ExecutionRecurring, CostClass: domain.CostOperating, SourceRef: "payroll"},
		{Code: "TRAVEL-AIR", Group: "travel", Label: "Airfare", Execution: domain.ExecutionOneTime, CostClass: domain.CostOperating, SourceRef: "expenses"},
		{Code: "TRAVEL-STAY", Group: "travel", Label: "Lodging and per diem", Execution: domain.ExecutionOneTime, CostClass: domain.CostOperating, SourceRef: "expenses"},
		{Code: "SW-LIC", Group: "software", Label: "Software licenses", Execution: domain.ExecutionRecurring, CostClass: domain.CostOperating, SourceRef: "billing"},
		{Code: "SW-SUPPORT", Group: "software", Label: "Vendor support contracts", Execution: domain.ExecutionRecurring, CostClass: domain.CostOperating, SourceRef: "billing"},
		{Code: "HW-EQUIP", Group: "hardware", Label: "Equipment purchase", Execution: domain.ExecutionOneTime, CostClass: domain.CostCapital, SourceRef: "procurement"},
		{Code: "HW-SPARES", Group: "hardware", Label: "Spare parts", Execution: domain.ExecutionOneTime, CostClass: domain.CostCapital, SourceRef: "procurement"},
		{Code: "SUBCON-SVC", Group: "subcontract", Label: "Subcontracted services", Execution: domain.ExecutionRecurring, CostClass: domain.CostOperating, SourceRef: "billing"},
		{Code: "SERVICES-NOC", Group: "services", Label: "Shared NOC operations", Execution: domain.ExecutionRecurring, CostClass: domain.CostOperating, SourceRef: "billing"},
		{Code: "SERVICES-FIELD", Group: "services", Label: "Field services", Execution: domain.ExecutionRecurring, CostClass: domain.CostOperating, SourceRef: "billing"},
		{Code: "FREIGHT-IMPORT", Group: "freight", Label: "Import freight and customs", Execution: domain.ExecutionOneTime, CostClass: domain.CostOperating, SourceRef: "procurement"},
	}
}

// DefaultAliases maps the historical identifiers seen in legacy baselines
// and ingestion feeds. Several naming schemes coexist in old data: Spanish
// labels, snake_case feed columns, and free-form spreadsheet headers.
func DefaultAliases() map[string]string {
	return map[string]string{
		"MOD Ingenieros":     "LABOR-ENG",
		"mod_ingenieros":     "LABOR-ENG",
		"Ingenieria":         "LABOR-ENG",
		"MOD SDM":            "LABOR-SDM",
		"mod_sdm":            "LABOR-SDM",
		"Gestion Proyecto":   "LABOR-PM",
		"pm_labor":           "LABOR-PM",
		"Viajes":             "TRAVEL-AIR",
		"viaticos":           "TRAVEL-STAY",
		"Hospedaje":          "TRAVEL-STAY",
		"Licencias":          "SW-LIC",
		"licencias_sw":       "SW-LIC",
		"Soporte Fabricante": "SW-SUPPORT",
		"Equipos":            "HW-EQUIP",
		"hardware":           "HW-EQUIP",
		"Refacciones":        "HW-SPARES",
		"Subcontratos":       "SUBCON-SVC",
		"terceros":           "SUBCON-SVC",
		"NOC":                "SERVICES-NOC",
		"noc_compartido":     "SERVICES-NOC",
		"Servicios Campo":    "SERVICES-FIELD",
		"Fletes":             "FREIGHT-IMPORT",
		"importacion":        "FREIGHT-IMPORT",
	}
}

// DefaultCatalog builds the catalog from the built-in categories and
// aliases. The defaults are internally consistent, so construction cannot
// fail; a panic here means the built-in tables themselves are broken.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultCategories(), DefaultAliases())
	if err != nil {
		panic("taxonomy: built-in catalog is invalid: " + err.Error())
	}
	return c
}
