package audit

import (
	"context"

	"github.com/weiawesome/wes-io-live/overlay-service/pkg/log"
)

// Audit actions for overlay-service.
const (
	ActionCreateAsset     = "asset.create"
	ActionUpdateAsset     = "asset.update"
	ActionAssetVisibility = "asset.visibility"
	ActionDeleteAsset     = "asset.delete"
	ActionAddAdmin        = "admin.add"
	ActionRemoveAdmin     = "admin.remove"
	ActionCreateScript    = "script.create"
	ActionUpdateScript    = "script.update"
	ActionDeleteScript    = "script.delete"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldTarget = "target"
)

// Log emits a structured audit entry for an action on a broadcaster's
// channel. target is the asset id, admin username, or script id acted on.
func Log(ctx context.Context, action, broadcaster, target, msg string) {
	l := log.Ctx(ctx)
	e := l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldBroadcaster, broadcaster)
	if target != "" {
		e = e.Str(FieldTarget, target)
	}
	e.Msg(msg)
}
