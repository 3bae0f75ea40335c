package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldSuccess     = "success"
	FieldBackend     = "backend"
	FieldDebtID      = "debt_id"
	FieldDebtDesc    = "debt_description"
	FieldTxID        = "transaction_id"
	FieldTxType      = "transaction_type"
	FieldAmountCents = "amount_cents"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStore   = "store"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpUpdateSalaries  = "update_salaries"
	OpAddDebt         = "add_debt"
	OpRemoveDebt      = "remove_debt"
	OpToggleDebtPaid  = "toggle_debt_paid"
	OpDepositSavings  = "deposit_savings"
	OpWithdrawSavings = "withdraw_savings"
	OpLoad            = "load"
	OpSave            = "save"
	OpSync            = "sync"
	OpShutdown        = "shutdown"
	OpStartup         = "startup"
)
