package offer

// Статусы предложения об обмене
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusWithdrawn = "withdrawn"
	StatusCompleted = "completed"
)

var transitions = map[string]map[string]struct{}{
	StatusPending: {
		StatusAccepted:  {},
		StatusRejected:  {},
		StatusWithdrawn: {},
	},
	StatusAccepted: {
		StatusCompleted: {},
	},
}

// CanTransition проверяет, допустим ли переход между статусами предложения
func CanTransition(from, to string) bool {
	next, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

// ValidStatus проверяет, что строка является известным статусом предложения
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusAccepted, StatusRejected, StatusWithdrawn, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal сообщает, является ли статус конечным
func IsTerminal(status string) bool {
	next, ok := transitions[status]
	return !ok || len(next) == 0
}
