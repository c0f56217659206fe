// Package drugapi is the client for the remote drug-interaction API.
//
// The API serves one record per drug at GET {base}/id/{drugbankId}:
//
//	{
//	  "drugbankId": "DB00001",
//	  "name": "Lepirudin",
//	  "description": "...",
//	  "interactions": [
//	    {"targetId": "DB00002", "targetName": "Cetuximab", "description": "..."}
//	  ]
//	}
package drugapi

import (
	"errors"
	"fmt"
)

// DefaultBaseURL is the public interaction API endpoint.
const DefaultBaseURL = "http://druginteractions.azurewebsites.net/apiV1/drugs"

// Drug is a medication record and its outgoing interactions.
type Drug struct {
	ID           string        `json:"drugbankId"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Interactions []Interaction `json:"interactions"`
}

// Interaction is a directed clinical interaction from a source drug to TargetID.
type Interaction struct {
	TargetID    string `json:"targetId"`
	TargetName  string `json:"targetName"`
	Description string `json:"description"`
}

// ErrEmptyID is returned when Fetch is called without a drug id.
var ErrEmptyID = errors.New("drug id is empty")

// ErrorKind classifies a failed lookup.
type ErrorKind int

const (
	// KindNetwork means the request never completed.
	KindNetwork ErrorKind = iota
	// KindNotFound means the API answered with a non-2xx, non-5xx status.
	KindNotFound
	// KindServer means the API answered with a 5xx status.
	KindServer
	// KindMalformed means a 2xx body did not have the expected shape.
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network error"
	case KindNotFound:
		return "not found"
	case KindServer:
		return "server error"
	case KindMalformed:
		return "malformed response"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// FetchError is returned by Client.Fetch for every failed lookup.
// Status is the HTTP status code, or 0 when no response was received.
type FetchError struct {
	Kind   ErrorKind
	DrugID string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch %s: %s", e.DrugID, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

// Timeout reports whether the lookup failed because a deadline was hit.
func (e *FetchError) Timeout() bool {
	return e.Kind == KindNetwork && isTimeoutError(e.Err)
}

// IsNotFound reports whether err is a lookup the API answered with "not found".
func IsNotFound(err error) bool {
	return kindOf(err) == KindNotFound
}

// IsNetwork reports whether err is a lookup that never reached the API.
func IsNetwork(err error) bool {
	return kindOf(err) == KindNetwork
}

func kindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return -1
}

func isTimeoutError(err error) bool {
	type timeoutError interface {
		Timeout() bool
	}
	var te timeoutError
	return errors.As(err, &te) && te.Timeout()
}
