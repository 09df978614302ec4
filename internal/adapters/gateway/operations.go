package gateway

import "net/http"

// Family groups operations that share a URL template
type Family string

const (
	// FamilyTransaction - {base}/web/{cardAcceptorId}/{resource}/
	FamilyTransaction Family = "web"
	// FamilyToken - {base}/tokenstore/{cardAcceptorId}/{tokenName}/
	FamilyToken Family = "tokenstore"
)

// Operation describes one gateway call: where it goes, which verb it uses and
// which HTTP statuses carry a parseable result entity.
type Operation struct {
	Name            string
	Family          Family
	Resource        string
	Method          string
	SuccessStatuses []int
	// FailureMessage is the message of the ServerDeclinedError raised for any other status
	FailureMessage string
}

// IsSuccess reports whether status is one of the operation's success statuses
func (o Operation) IsSuccess(status int) bool {
	for _, s := range o.SuccessStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// A 403 on the transaction endpoints is a decline that still carries the result entity.
var (
	OpAuthorization = Operation{
		Name:            "authorization",
		Family:          FamilyTransaction,
		Resource:        "authorization",
		Method:          http.MethodPost,
		SuccessStatuses: []int{http.StatusOK, http.StatusForbidden},
		FailureMessage:  "authorization failed",
	}
	OpPayment = Operation{
		Name:            "payment",
		Family:          FamilyTransaction,
		Resource:        "payment",
		Method:          http.MethodPost,
		SuccessStatuses: []int{http.StatusOK, http.StatusForbidden},
		FailureMessage:  "payment failed",
	}
	OpRefund = Operation{
		Name:            "refund",
		Family:          FamilyTransaction,
		Resource:        "refund",
		Method:          http.MethodPost,
		SuccessStatuses: []int{http.StatusOK, http.StatusForbidden},
		FailureMessage:  "refund failed",
	}
	OpReversal = Operation{
		Name:            "reversal",
		Family:          FamilyTransaction,
		Resource:        "reversal",
		Method:          http.MethodPost,
		SuccessStatuses: []int{http.StatusOK, http.StatusForbidden},
		FailureMessage:  "reversal failed",
	}
	OpCancellation = Operation{
		Name:            "cancellation",
		Family:          FamilyTransaction,
		Resource:        "cancellation",
		Method:          http.MethodPost,
		SuccessStatuses: []int{http.StatusOK},
		FailureMessage:  "cancellation failed",
	}

	OpTokenCreate = Operation{
		Name:            "token_create",
		Family:          FamilyToken,
		Method:          http.MethodPut,
		SuccessStatuses: []int{http.StatusCreated},
		FailureMessage:  "error creating token",
	}
	OpTokenUpdate = Operation{
		Name:            "token_update",
		Family:          FamilyToken,
		Method:          http.MethodPost,
		SuccessStatuses: []int{http.StatusOK},
		FailureMessage:  "error updating token",
	}
	OpTokenRead = Operation{
		Name:            "token_read",
		Family:          FamilyToken,
		Method:          http.MethodGet,
		SuccessStatuses: []int{http.StatusOK},
		FailureMessage:  "error reading token",
	}
	OpTokenDelete = Operation{
		Name:            "token_delete",
		Family:          FamilyToken,
		Method:          http.MethodDelete,
		SuccessStatuses: []int{http.StatusOK},
		FailureMessage:  "error deleting token",
	}
)

// Operations lists every operation the gateway exposes
func Operations() []Operation {
	return []Operation{
		OpAuthorization, OpPayment, OpRefund, OpReversal, OpCancellation,
		OpTokenCreate, OpTokenUpdate, OpTokenRead, OpTokenDelete,
	}
}
