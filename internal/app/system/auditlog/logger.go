// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/agreeverse/internal/app/store/audit"
	"github.com/dalemusser/agreeverse/internal/app/system/ratelimit"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destination settings for a category.
const (
	DestAll = "all" // MongoDB + zap
	DestDB  = "db"  // MongoDB only
	DestLog = "log" // zap only
	DestOff = "off"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls sign-up, sign-in, sign-out and OAuth events.
	Auth string
	// Admin controls admin and coordinator CRUD on coordinators, farmers and crops.
	Admin string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// Actor identifies who performed an admin action.
type Actor struct {
	ID   primitive.ObjectID
	Role models.Role
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.Role != "" {
		fields = append(fields, zap.String("role", event.Role))
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()), zap.String("actor_role", event.ActorRole))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = DestAll
	}
	if setting == "" {
		setting = DestAll
	}
	if setting == DestOff {
		return
	}

	if setting == DestAll || setting == DestLog {
		l.logToZap(event)
	}

	if setting == DestAll || setting == DestDB {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func authEvent(r *http.Request, eventType string, role models.Role, userID *primitive.ObjectID) audit.Event {
	return audit.Event{
		Category:  audit.CategoryAuth,
		EventType: eventType,
		Role:      string(role),
		UserID:    userID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

// --- Authentication Events ---

// SignupSucceeded logs a new local account.
func (l *Logger) SignupSucceeded(ctx context.Context, r *http.Request, role models.Role, userID primitive.ObjectID) {
	e := authEvent(r, audit.EventSignup, role, &userID)
	e.Success = true
	e.Details = map[string]string{"auth_method": "password"}
	l.Log(ctx, e)
}

// LoginSuccess logs a successful sign-in.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, role models.Role, userID primitive.ObjectID, authMethod string) {
	e := authEvent(r, audit.EventLoginSuccess, role, &userID)
	e.Success = true
	e.Details = map[string]string{"auth_method": authMethod}
	l.Log(ctx, e)
}

// LoginFailedUserNotFound logs a sign-in for an unknown identifier.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, role models.Role, identifier string) {
	e := authEvent(r, audit.EventLoginFailedUserNotFound, role, nil)
	e.FailureReason = "user not found"
	e.Details = map[string]string{"identifier": identifier}
	l.Log(ctx, e)
}

// LoginFailedWrongPassword logs a password mismatch.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, role models.Role, userID primitive.ObjectID) {
	e := authEvent(r, audit.EventLoginFailedWrongPassword, role, &userID)
	e.FailureReason = "wrong password"
	l.Log(ctx, e)
}

// LoginFailedNoPassword logs a password sign-in against an OAuth-only account.
func (l *Logger) LoginFailedNoPassword(ctx context.Context, r *http.Request, role models.Role, userID primitive.ObjectID) {
	e := authEvent(r, audit.EventLoginFailedNoPassword, role, &userID)
	e.FailureReason = "no local password"
	l.Log(ctx, e)
}

// LoginFailedRateLimit logs a sign-in refused by the limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, role models.Role, identifier, limitType string) {
	e := authEvent(r, audit.EventLoginFailedRateLimit, role, nil)
	e.FailureReason = "rate limited"
	e.Details = map[string]string{"identifier": identifier, "limit": limitType}
	l.Log(ctx, e)
}

// Logout logs a sign-out. userID is nil when the caller had no valid token.
func (l *Logger) Logout(ctx context.Context, r *http.Request, role models.Role, userID *primitive.ObjectID) {
	e := authEvent(r, audit.EventLogout, role, userID)
	e.Success = true
	l.Log(ctx, e)
}

// OAuthAccountCreated logs an identity created through Google sign-in.
func (l *Logger) OAuthAccountCreated(ctx context.Context, r *http.Request, role models.Role, userID primitive.ObjectID, email string) {
	e := authEvent(r, audit.EventOAuthAccountCreated, role, &userID)
	e.Success = true
	e.Details = map[string]string{"auth_method": "google", "email": email}
	l.Log(ctx, e)
}

// OAuthRejected logs a Google sign-in that did not produce an account.
func (l *Logger) OAuthRejected(ctx context.Context, r *http.Request, role models.Role, email, reason string) {
	e := authEvent(r, audit.EventOAuthRejected, role, nil)
	e.FailureReason = reason
	if email != "" {
		e.Details = map[string]string{"email": email}
	}
	l.Log(ctx, e)
}

// --- Admin Events ---

func (l *Logger) adminEvent(ctx context.Context, r *http.Request, eventType string, actor Actor, role models.Role, targetID primitive.ObjectID, details map[string]string) {
	actorID := actor.ID
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		Role:      string(role),
		UserID:    &targetID,
		ActorID:   &actorID,
		ActorRole: string(actor.Role),
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   details,
	})
}

// CoordinatorCreated logs an admin adding a coordinator.
func (l *Logger) CoordinatorCreated(ctx context.Context, r *http.Request, actor Actor, coordinatorID primitive.ObjectID) {
	l.adminEvent(ctx, r, audit.EventCoordinatorCreated, actor, models.RoleCoordinator, coordinatorID, nil)
}

// CoordinatorUpdated logs an admin editing a coordinator.
func (l *Logger) CoordinatorUpdated(ctx context.Context, r *http.Request, actor Actor, coordinatorID primitive.ObjectID, passwordChanged bool) {
	l.adminEvent(ctx, r, audit.EventCoordinatorUpdated, actor, models.RoleCoordinator, coordinatorID,
		map[string]string{"password_changed": boolToString(passwordChanged)})
}

// CoordinatorDeleted logs a coordinator removal and how many farmers were detached.
func (l *Logger) CoordinatorDeleted(ctx context.Context, r *http.Request, actor Actor, coordinatorID primitive.ObjectID, detached int64) {
	l.adminEvent(ctx, r, audit.EventCoordinatorDeleted, actor, models.RoleCoordinator, coordinatorID,
		map[string]string{"farmers_detached": strconv.FormatInt(detached, 10)})
}

// FarmerCreated logs an admin or coordinator adding a farmer.
func (l *Logger) FarmerCreated(ctx context.Context, r *http.Request, actor Actor, farmerID primitive.ObjectID) {
	l.adminEvent(ctx, r, audit.EventFarmerCreated, actor, models.RoleFarmer, farmerID, nil)
}

// FarmerUpdated logs an edit to a farmer.
func (l *Logger) FarmerUpdated(ctx context.Context, r *http.Request, actor Actor, farmerID primitive.ObjectID) {
	l.adminEvent(ctx, r, audit.EventFarmerUpdated, actor, models.RoleFarmer, farmerID, nil)
}

// FarmerDeleted logs a farmer removal.
func (l *Logger) FarmerDeleted(ctx context.Context, r *http.Request, actor Actor, farmerID primitive.ObjectID) {
	l.adminEvent(ctx, r, audit.EventFarmerDeleted, actor, models.RoleFarmer, farmerID, nil)
}

// CropDeleted logs a crop removed by someone other than its farmer.
func (l *Logger) CropDeleted(ctx context.Context, r *http.Request, actor Actor, cropID primitive.ObjectID, title string) {
	l.adminEvent(ctx, r, audit.EventCropDeleted, actor, "", cropID, map[string]string{"title": title})
}

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
