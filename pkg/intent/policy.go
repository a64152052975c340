package intent

type Action uint8

const (
	ActionClarify     Action = 0
	ActionConfirm     Action = 1
	ActionAutoExecute Action = 2
)

var actionMap = map[Action]string{
	ActionClarify:     "clarify",
	ActionConfirm:     "confirm",
	ActionAutoExecute: "auto_execute",
}

func (a Action) String() string {
	return actionMap[a]
}

// ConfidencePolicy holds the two thresholds that split confidence into
// three tiers. Boundaries are inclusive of the upper tier: exactly 0.8
// is high, exactly 0.6 is medium.
type ConfidencePolicy struct {
	High   float64 `json:"high"`
	Medium float64 `json:"medium"`
}

func DefaultConfidencePolicy() ConfidencePolicy {
	return ConfidencePolicy{High: 0.8, Medium: 0.6}
}

func (p ConfidencePolicy) Classify(confidence float64) Action {
	switch {
	case confidence >= p.High:
		return ActionAutoExecute
	case confidence >= p.Medium:
		return ActionConfirm
	default:
		return ActionClarify
	}
}
