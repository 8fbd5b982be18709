package cascade

import (
	"net/http"
)

// ReasonCode says why an identifier was not processed.
type ReasonCode string

const (
	ReasonInvalidFormat ReasonCode = "InvalidFormat"
	ReasonIsSelf        ReasonCode = "IsSelf"
	ReasonNotFound      ReasonCode = "NotFound"
	ReasonWrongRole     ReasonCode = "WrongRole"

	// ReasonNotDeleted marks a valid target whose batch failed in the store.
	ReasonNotDeleted ReasonCode = "NotDeleted"
)

// Rejection is one entry of invalidOrSkipped.
type Rejection struct {
	Identifier string     `json:"identifier"`
	Reason     ReasonCode `json:"reason"`
	Message    string     `json:"message"`
}

func invalidFormat(id string) Rejection {
	return Rejection{Identifier: id, Reason: ReasonInvalidFormat, Message: "Invalid email format"}
}

func isSelf(id string) Rejection {
	return Rejection{Identifier: id, Reason: ReasonIsSelf, Message: "Cannot delete your own account"}
}

func notFound(id string) Rejection {
	return Rejection{Identifier: id, Reason: ReasonNotFound, Message: "User not found"}
}

func wrongRole(id, actual string) Rejection {
	return Rejection{Identifier: id, Reason: ReasonWrongRole, Message: "WrongRole: " + actual}
}

func notDeleted(id string) Rejection {
	return Rejection{Identifier: id, Reason: ReasonNotDeleted, Message: "Deletion did not complete"}
}

// EntityStatus is the per-identifier state of a resolved entity.
type EntityStatus string

const (
	StatusValid         EntityStatus = "Valid"
	StatusNotFound      EntityStatus = "NotFound"
	StatusWrongRole     EntityStatus = "WrongRole"
	StatusIsSelf        EntityStatus = "IsSelf"
	StatusInvalidFormat EntityStatus = "InvalidFormat"
	StatusDuplicate     EntityStatus = "Duplicate"
)

// BatchResult is the details object of the response.
type BatchResult struct {
	BatchID                   string           `json:"batchId"`
	ValidProcessed            []string         `json:"validProcessed"`
	InvalidOrSkipped          []Rejection      `json:"invalidOrSkipped"`
	DeletedCountsByCategory   map[string]int64 `json:"deletedCountsByCategory"`
	RequestedCountsByCategory map[string]int64 `json:"requestedCountsByCategory"`
	PartiallyApplied          bool             `json:"partiallyApplied"`
	Transactional             bool             `json:"transactional"`
}

// Outcome is the terminal classification of a batch.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomePartial   Outcome = "partial"
	OutcomeBadInput  Outcome = "bad_input"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeForbidden Outcome = "forbidden"
	OutcomeFailed    Outcome = "failed"
)

// HTTPStatus maps the outcome to its response status.
func (o Outcome) HTTPStatus() int {
	switch o {
	case OutcomeSuccess:
		return http.StatusOK
	case OutcomePartial:
		return http.StatusMultiStatus
	case OutcomeBadInput:
		return http.StatusBadRequest
	case OutcomeNotFound:
		return http.StatusNotFound
	case OutcomeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Classify picks the outcome of a batch that got past normalization.
// A store error always wins. Otherwise no valid targets is NotFound, any
// skipped input makes the batch partial, and only a clean run is Success.
func Classify(res BatchResult, err error) Outcome {
	switch {
	case err != nil:
		return OutcomeFailed
	case len(res.ValidProcessed) == 0:
		return OutcomeNotFound
	case len(res.InvalidOrSkipped) > 0:
		return OutcomePartial
	default:
		return OutcomeSuccess
	}
}
