package domain

//go:generate go tool stringer -type=StatusCode -trimprefix=Status

// StatusCode is the external numbering of order statuses. Its String form is the
// name of the matching order_status row.
type StatusCode int

const (
	StatusCompleted  StatusCode = 1
	StatusCreated    StatusCode = 2
	StatusFailed     StatusCode = 3
	StatusInProgress StatusCode = 4
)

var AllStatusCodes = []StatusCode{StatusCompleted, StatusCreated, StatusFailed, StatusInProgress}

func (c StatusCode) Valid() bool {
	return c >= StatusCompleted && c <= StatusInProgress
}

func ParseStatusCode(v int) (StatusCode, error) {
	c := StatusCode(v)
	if !c.Valid() {
		return 0, InvalidArgument("status", "invalid status code value: %d", v)
	}
	return c, nil
}
