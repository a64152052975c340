package intent

// OperationDescriptor binds a recognized intent name to the banking
// operation behind it. The table is built once at startup and never
// mutated afterwards.
type OperationDescriptor struct {
	Intent       string `json:"intent"`
	RequiresAuth bool   `json:"requires_auth"`
	APIEndpoint  string `json:"api_endpoint,omitempty"`
	Permission   string `json:"permission,omitempty"`
}

// Permissions that denote a financial mutation. Operations carrying one
// of these are never auto-executed, whatever the confidence.
var sensitivePermissions = map[string]bool{
	"write:transfer": true,
	"write:payment":  true,
	"write:card":     true,
	"write:dispute":  true,
	"write:fraud":    true,
}

func IsSensitivePermission(permission string) bool {
	return sensitivePermissions[permission]
}

type Table struct {
	ops       map[string]OperationDescriptor
	defaultOp OperationDescriptor
}

// NewTable copies the given descriptors into an immutable lookup keyed
// by intent name. Unknown intents resolve to a fail-closed default:
// auth required, no endpoint, no permission.
func NewTable(descriptors []OperationDescriptor) *Table {
	ops := make(map[string]OperationDescriptor, len(descriptors))
	for _, d := range descriptors {
		ops[d.Intent] = d
	}

	return &Table{
		ops:       ops,
		defaultOp: OperationDescriptor{RequiresAuth: true},
	}
}

// Lookup is total: missing intents get the default descriptor with the
// queried name filled in, never an error.
func (t *Table) Lookup(intentName string) (OperationDescriptor, bool) {
	if op, ok := t.ops[intentName]; ok {
		return op, true
	}

	op := t.defaultOp
	op.Intent = intentName
	return op, false
}

func (t *Table) Descriptors() []OperationDescriptor {
	descriptors := make([]OperationDescriptor, 0, len(t.ops))
	for _, op := range t.ops {
		descriptors = append(descriptors, op)
	}
	return descriptors
}

// DefaultTable covers the banking agent's intent inventory.
func DefaultTable() *Table {
	return NewTable([]OperationDescriptor{
		{Intent: "auth.login", RequiresAuth: false, APIEndpoint: "/api/auth/login"},
		{Intent: "account.balance", RequiresAuth: true, APIEndpoint: "/api/accounts/balance", Permission: "read:balance"},
		{Intent: "account.statement", RequiresAuth: true, APIEndpoint: "/api/accounts/statement", Permission: "read:statement"},
		{Intent: "transaction.history", RequiresAuth: true, APIEndpoint: "/api/transactions", Permission: "read:transactions"},
		{Intent: "payment.transfer", RequiresAuth: true, APIEndpoint: "/api/balance-transfers", Permission: "write:transfer"},
		{Intent: "payment.bill", RequiresAuth: true, APIEndpoint: "/api/payments/bill", Permission: "write:payment"},
		{Intent: "card.status", RequiresAuth: true, APIEndpoint: "/api/cards", Permission: "read:cards"},
		{Intent: "card.block", RequiresAuth: true, APIEndpoint: "/api/cards/block", Permission: "write:card"},
		{Intent: "dispute.create", RequiresAuth: true, APIEndpoint: "/api/disputes", Permission: "write:dispute"},
		{Intent: "fraud.report", RequiresAuth: true, APIEndpoint: "/api/fraud/report", Permission: "write:fraud"},
		{Intent: "general.greeting", RequiresAuth: false},
		{Intent: "general.help", RequiresAuth: false},
	})
}
