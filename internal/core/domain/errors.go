package domain

import "errors"

// ============================================================================
// Content Errors
// ============================================================================

// Not found errors
var (
	ErrModNotFound          = errors.New("mod not found")
	ErrModVersionNotFound   = errors.New("mod version not found")
	ErrAddonNotFound        = errors.New("addon not found")
	ErrAddonVersionNotFound = errors.New("addon version not found")
	ErrLicenseNotFound      = errors.New("license not found")
	ErrSptVersionNotFound   = errors.New("spt version not found")
)

// Conflict errors
var (
	ErrModSlugConflict      = errors.New("a mod with this name already exists")
	ErrModVersionConflict   = errors.New("this version already exists for the mod")
	ErrAddonVersionConflict = errors.New("this version already exists for the addon")
	ErrSptVersionConflict   = errors.New("spt version already exists")
)

// Validation errors
var (
	ErrInvalidModName       = errors.New("mod name is required")
	ErrInvalidAddonName     = errors.New("addon name is required")
	ErrInvalidVersion       = errors.New("version must be a valid semantic version")
	ErrInvalidConstraint    = errors.New("constraint must be a valid semantic version constraint")
	ErrSelfDependency       = errors.New("a mod version cannot depend on its own mod")
	ErrAddonAlreadyDetached = errors.New("addon is already detached")
	ErrNotDeleted           = errors.New("resource is not deleted")
)

// ============================================================================
// User & Auth Errors
// ============================================================================

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("the email has already been taken")
	ErrInvalidCredentials = errors.New("these credentials do not match our records")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("this action is unauthorized")
	ErrInvalidToken       = errors.New("invalid token")
)

// ============================================================================
// Social Errors
// ============================================================================

var (
	ErrCommentNotFound      = errors.New("comment not found")
	ErrInvalidCommentBody   = errors.New("comment body is required")
	ErrInvalidCommentable   = errors.New("comments are not supported on this resource")
	ErrCannotPinReply       = errors.New("only top-level comments can be pinned")
	ErrReplyTargetMismatch  = errors.New("parent comment belongs to a different resource")
	ErrCannotFollowSelf     = errors.New("you cannot follow yourself")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrCannotMessageSelf    = errors.New("you cannot start a conversation with yourself")
	ErrInvalidMessage       = errors.New("message content is required")
	ErrNotificationNotFound = errors.New("notification not found")
)

// ============================================================================
// Moderation Errors
// ============================================================================

var (
	ErrReportNotFound      = errors.New("report not found")
	ErrDuplicateReport     = errors.New("you have already reported this content")
	ErrCannotReportSelf    = errors.New("you cannot report yourself")
	ErrInvalidReportReason = errors.New("invalid report reason")
	ErrInvalidReportable   = errors.New("this resource cannot be reported")
	ErrReportAlreadyClosed = errors.New("report has already been handled")
	ErrBanNotFound         = errors.New("user is not banned")
	ErrUserBanned          = errors.New("your account is banned")
	ErrCannotBanSelf       = errors.New("you cannot ban yourself")
	ErrCannotBanAdmin      = errors.New("administrators cannot be banned")
)
