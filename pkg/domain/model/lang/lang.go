package lang

import "github.com/m-mizutani/goerr/v2"

type Lang string

const (
	French  Lang = "fr"
	English Lang = "en"

	Default Lang = French
)

func (l Lang) Name() string {
	switch l {
	case French:
		return "French"
	case English:
		return "English"
	default:
		return string(l)
	}
}

func (l Lang) Validate() error {
	if string(l) == "" {
		return goerr.New("language cannot be empty")
	}
	return nil
}

// FallbackSenderName is the display name used for chat messages when
// the member never set one.
func (l Lang) FallbackSenderName() string {
	if l == French {
		return "Soldat"
	}
	return "Soldier"
}
