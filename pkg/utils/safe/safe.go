package safe

import (
	"context"
	"io"

	"github.com/joshua-hq/warroom/pkg/utils/logging"
)

// Close closes c and logs the failure instead of returning it. For
// deferred closes where the error has nowhere to go.
func Close(ctx context.Context, c io.Closer) {
	if err := c.Close(); err != nil {
		logging.From(ctx).Warn("failed to close", logging.ErrAttr(err))
	}
}
