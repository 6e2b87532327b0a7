package domain

type BaselineStatus string

const (
	BaselineDraft     BaselineStatus = "draft"
	BaselineSubmitted BaselineStatus = "submitted"
	BaselineHandedOff BaselineStatus = "handed_off"
	BaselineAccepted  BaselineStatus = "accepted"
	BaselineRejected  BaselineStatus = "rejected"
)

type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectClosed   ProjectStatus = "closed"
	ProjectArchived ProjectStatus = "archived"
)

type ExecutionType string

const (
	ExecutionRecurring ExecutionType = "recurring"
	ExecutionOneTime   ExecutionType = "one_time"
)

type CostClass string

const (
	CostOperating CostClass = "operating"
	CostCapital   CostClass = "capital"
)

type AdjustmentType string

const (
	AdjustmentIncrease     AdjustmentType = "increase"
	AdjustmentDecrease     AdjustmentType = "decrease"
	AdjustmentReassignment AdjustmentType = "reassignment"
)

type DistributionPolicy string

const (
	DistributeSingleMonth   DistributionPolicy = "single_month"
	DistributeProRataFwd    DistributionPolicy = "pro_rata_forward"
	DistributeProRataAll    DistributionPolicy = "pro_rata_all"
)

type BudgetHealth string

const (
	HealthFavorable  BudgetHealth = "favorable"
	HealthOnTarget   BudgetHealth = "on_target"
	HealthAtRisk     BudgetHealth = "at_risk"
	HealthOverBudget BudgetHealth = "over_budget"
	HealthNoBudget   BudgetHealth = "no_budget"
)

type ActualSource string

const (
	SourcePayroll ActualSource = "payroll"
	SourceBilling ActualSource = "billing"
)

// ValidDistributionPolicies is the canonical set of accepted policy strings.
var ValidDistributionPolicies = map[string]bool{
	"single_month":     true,
	"pro_rata_forward": true,
	"pro_rata_all":     true,
}

// ValidAdjustmentTypes is the canonical set of accepted adjustment type strings.
var ValidAdjustmentTypes = map[string]bool{
	"increase": true, "decrease": true, "reassignment": true,
}
