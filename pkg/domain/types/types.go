package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

type ReportID string

func (x ReportID) String() string {
	return string(x)
}

func NewReportID() ReportID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return ReportID(id.String())
}

func (x ReportID) Validate() error {
	if x == EmptyReportID {
		return goerr.New("empty report ID")
	}
	return nil
}

const (
	EmptyReportID ReportID = ""
)

type MessageID string

func (x MessageID) String() string {
	return string(x)
}

func NewMessageID() MessageID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return MessageID(id.String())
}

const (
	EmptyMessageID MessageID = ""
)

// IdentityID is the anonymous identity issued once per session. It is
// opaque and stable for the session's lifetime.
type IdentityID string

func (x IdentityID) String() string {
	return string(x)
}

func NewIdentityID() IdentityID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return IdentityID(id.String())
}

func (x IdentityID) Validate() error {
	if x == EmptyIdentityID {
		return goerr.New("empty identity ID")
	}
	if _, err := uuid.Parse(string(x)); err != nil {
		return goerr.Wrap(err, "invalid identity ID format", goerr.V("id", x))
	}
	return nil
}

const (
	EmptyIdentityID IdentityID = ""
)
