package report

import (
	"strings"
	"time"

	"github.com/joshua-hq/warroom/pkg/domain/model/errs"
	"github.com/joshua-hq/warroom/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Input is what a member submits from the meditation form. Validation
// happens here, before any enrichment round trip is started.
type Input struct {
	AuthorName string `json:"author_name"`
	VerseRef   string `json:"verse_ref"`
	Revelation string `json:"revelation"`
}

// Trim normalizes the input fields in place.
func (x *Input) Trim() {
	x.AuthorName = strings.TrimSpace(x.AuthorName)
	x.VerseRef = strings.TrimSpace(x.VerseRef)
	x.Revelation = strings.TrimSpace(x.Revelation)
}

func (x Input) Validate() error {
	if strings.TrimSpace(x.AuthorName) == "" {
		return goerr.New("author name is required", goerr.T(errs.TagValidation))
	}
	if strings.TrimSpace(x.VerseRef) == "" {
		return goerr.New("verse reference is required", goerr.T(errs.TagValidation))
	}
	if strings.TrimSpace(x.Revelation) == "" {
		return goerr.New("revelation text is required", goerr.T(errs.TagValidation))
	}
	return nil
}

// Feedback is the structured AI commentary attached to a report. Both
// fields are required; a report never carries a partial feedback.
type Feedback struct {
	Encouragement string `firestore:"encouragement" json:"encouragement"`
	Prayer        string `firestore:"prayer" json:"prayer"`
}

func (x Feedback) Validate() error {
	if x.Encouragement == "" {
		return goerr.New("feedback is missing encouragement", goerr.T(errs.TagEnrichment))
	}
	if x.Prayer == "" {
		return goerr.New("feedback is missing prayer", goerr.T(errs.TagEnrichment))
	}
	return nil
}

// Report is an enriched member reflection. Records are immutable after
// creation; ID and CreatedAt are assigned by the backing store.
type Report struct {
	ID         types.ReportID   `firestore:"-" json:"id"`
	AuthorID   types.IdentityID `firestore:"author_id" json:"author_id"`
	AuthorName string           `firestore:"author_name" json:"author_name"`
	VerseRef   string           `firestore:"verse_ref" json:"verse_ref"`
	Revelation string           `firestore:"revelation" json:"revelation"`
	Feedback   *Feedback        `firestore:"feedback" json:"feedback"`
	CreatedAt  time.Time        `firestore:"created_at,serverTimestamp" json:"created_at"`
}

// New builds a report ready for append. Requiring the feedback in the
// constructor is what keeps a half-written report unrepresentable.
func New(authorID types.IdentityID, in Input, fb *Feedback) *Report {
	in.Trim()
	return &Report{
		AuthorID:   authorID,
		AuthorName: in.AuthorName,
		VerseRef:   in.VerseRef,
		Revelation: in.Revelation,
		Feedback:   fb,
	}
}

func (x *Report) Validate() error {
	if err := x.AuthorID.Validate(); err != nil {
		return err
	}
	if err := (Input{AuthorName: x.AuthorName, VerseRef: x.VerseRef, Revelation: x.Revelation}).Validate(); err != nil {
		return err
	}
	if x.Feedback == nil {
		return goerr.Wrap(errs.ErrFeedbackIncomplete, "report has no feedback")
	}
	if err := x.Feedback.Validate(); err != nil {
		return goerr.Wrap(err, "report feedback is incomplete")
	}
	return nil
}
