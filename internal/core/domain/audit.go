package domain

import "time"

// AuditAction identifies what happened to an account.
type AuditAction string

const (
	AuditSignup         AuditAction = "signup"
	AuditBlocked        AuditAction = "blocked"
	AuditUnblocked      AuditAction = "unblocked"
	AuditDeleted        AuditAction = "deleted"
	AuditCreditConsumed AuditAction = "credit_consumed"
)

// AuditEntry records one account-affecting action for the audit trail.
// ActorID is the account that triggered the action (the admin for block,
// unblock and delete; the account itself for signup and credit consumption).
type AuditEntry struct {
	AccountID string      `bson:"account_id"`
	Action    AuditAction `bson:"action"`
	ActorID   string      `bson:"actor_id"`
	Detail    string      `bson:"detail,omitempty"`
	Timestamp time.Time   `bson:"timestamp"`
}
