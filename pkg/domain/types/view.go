package types

import "github.com/m-mizutani/goerr/v2"

// View selects which streams are mounted by the session controller.
type View string

const (
	ViewHome      View = "home"
	ViewMember    View = "member"
	ViewModerator View = "moderator"
)

var viewLabels = map[View]string{
	ViewHome:      "Home",
	ViewMember:    "Members",
	ViewModerator: "Moderator",
}

func (v View) String() string {
	return string(v)
}

func (v View) Label() string {
	return viewLabels[v]
}

func (v View) Validate() error {
	switch v {
	case ViewHome, ViewMember, ViewModerator:
		return nil
	}
	return goerr.New("invalid view", goerr.V("view", v))
}
