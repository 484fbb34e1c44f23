package audit

import (
	"context"

	"github.com/weiawesome/wes-estate/pkg/log"
)

// Audit actions.
const (
	ActionRegister        = "user.register"
	ActionLogin           = "user.login"
	ActionUpdateProfile   = "user.update"
	ActionChangePassword  = "user.password"
	ActionCreateProperty  = "property.create"
	ActionUpdateProperty  = "property.update"
	ActionDeleteProperty  = "property.delete"
	ActionAddFavorite     = "favorite.add"
	ActionRemoveFavorite  = "favorite.remove"
	ActionRecommend       = "recommendation.create"
	ActionDeleteRecommend = "recommendation.delete"
)

// Field constants for audit entries.
const (
	FieldAction   = "action"
	FieldTargetID = "target_id"
	FieldDetail   = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action, userID, targetID, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldTargetID, targetID).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action, userID, targetID, detail, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldTargetID, targetID).
		Str(FieldDetail, detail).
		Msg(msg)
}
