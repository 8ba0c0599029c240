package questions

import "strings"

// Префиксы callback data кнопок модерации: approve_<id>, reject_<id>.
const (
	approvePrefix = "approve_"
	rejectPrefix  = "reject_"
)

// DecisionControls: кнопки «Принять» / «Отклонить» для вопроса.
func DecisionControls(questionID string) []Control {
	return []Control{
		{Text: "✅ Принять", Data: approvePrefix + questionID},
		{Text: "❌ Отклонить", Data: rejectPrefix + questionID},
	}
}

// ParseDecisionData разбирает callback data кнопки модерации.
func ParseDecisionData(data string) (Decision, string, bool) {
	var (
		decision Decision
		id       string
	)
	switch {
	case strings.HasPrefix(data, approvePrefix):
		decision, id = DecisionApprove, strings.TrimPrefix(data, approvePrefix)
	case strings.HasPrefix(data, rejectPrefix):
		decision, id = DecisionReject, strings.TrimPrefix(data, rejectPrefix)
	default:
		return "", "", false
	}
	if strings.TrimSpace(id) == "" {
		return "", "", false
	}
	return decision, id, true
}
