// pkg/ztp_cli/wrap.go

package ztp_cli

import (
	"context"

	cerr "github.com/cockroachdb/errors"
	"github.com/netbootworks/ztpctl/pkg/logger"
	"github.com/netbootworks/ztpctl/pkg/ztp_err"
	"github.com/netbootworks/ztpctl/pkg/ztp_io"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Wrap adapts a RuntimeContext-taking handler into a cobra RunE, adding
// panic recovery, telemetry, and outcome logging around every command.
func Wrap(fn func(rc *ztp_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		logger.InitFallback()

		rc := ztp_io.NewContext(context.Background(), cmd.Name())
		defer rc.End(&err)

		defer func() {
			if r := recover(); r != nil {
				err = cerr.AssertionFailedf("panic: %v", r)
				rc.Log.Error("Panic recovered", zap.Any("panic", r))
			}
		}()

		err = fn(rc, cmd, args)
		if err != nil && !ztp_err.IsExpectedUserError(err) {
			err = cerr.WithStack(err)
		}
		return err
	}
}
