package services

import (
	"context"
	"strings"
	"time"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
)

// maxCommentLength bounds the body of a single comment in runes.
const maxCommentLength = 10000

type CommentService struct {
	repo     ports.CommentRepository
	mods     ports.ModRepository
	addons   ports.AddonRepository
	users    ports.UserRepository
	bans     ports.BanRepository
	notifier Notifier
}

func NewCommentService(
	repo ports.CommentRepository,
	mods ports.ModRepository,
	addons ports.AddonRepository,
	users ports.UserRepository,
	bans ports.BanRepository,
	notifier Notifier,
) *CommentService {
	return &CommentService{
		repo:     repo,
		mods:     mods,
		addons:   addons,
		users:    users,
		bans:     bans,
		notifier: notifier,
	}
}

// commentTarget is the resolved owner side of a commentable resource.
type commentTarget struct {
	ownerID  *int64
	editable func(*domain.User) bool
}

type CreateCommentRequest struct {
	CommentableType domain.CommentableType
	CommentableID   int64
	ParentID        *int64
	Body            string
}

func (s *CommentService) Create(ctx context.Context, actor *domain.User, req CreateCommentRequest) (*domain.Comment, error) {
	if err := ensureActive(ctx, s.bans, actor); err != nil {
		return nil, err
	}

	body, err := cleanCommentBody(req.Body)
	if err != nil {
		return nil, err
	}

	target, err := s.target(ctx, actor, req.CommentableType, req.CommentableID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	comment := &domain.Comment{
		UserID:          actor.ID,
		CommentableType: req.CommentableType,
		CommentableID:   req.CommentableID,
		Body:            body,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var parent *domain.Comment
	if req.ParentID != nil {
		parent, err = s.repo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.CommentableType != req.CommentableType || parent.CommentableID != req.CommentableID {
			return nil, domain.ErrReplyTargetMismatch
		}
		if parent.IsDeleted() {
			return nil, domain.ErrCommentNotFound
		}

		comment.ParentID = &parent.ID
		rootID := parent.ID
		if parent.RootID != nil {
			rootID = *parent.RootID
		}
		comment.RootID = &rootID
	}

	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"comment_id":       comment.ID,
		"commentable_type": comment.CommentableType,
		"commentable_id":   comment.CommentableID,
		"author_id":        actor.ID,
		"author_name":      actor.Name,
	}
	if target.ownerID != nil && *target.ownerID != actor.ID {
		notify(ctx, s.notifier, *target.ownerID, domain.NotificationNewComment, data)
	}
	if parent != nil && parent.UserID != actor.ID && (target.ownerID == nil || parent.UserID != *target.ownerID) {
		notify(ctx, s.notifier, parent.UserID, domain.NotificationReply, data)
	}

	return comment, nil
}

// ListThreaded returns the root comments of a resource with their replies
// attached, pinned roots first. Deleted comments keep their place with an
// empty body.
func (s *CommentService) ListThreaded(ctx context.Context, viewer *domain.User, typ domain.CommentableType, id int64) ([]*domain.Comment, error) {
	if _, err := s.target(ctx, viewer, typ, id); err != nil {
		return nil, err
	}

	all, err := s.repo.ListByCommentable(ctx, typ, id)
	if err != nil {
		return nil, err
	}

	return BuildThreads(all), nil
}

func (s *CommentService) Update(ctx context.Context, actor *domain.User, id int64, body string) (*domain.Comment, error) {
	if err := ensureActive(ctx, s.bans, actor); err != nil {
		return nil, err
	}

	comment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.IsDeleted() {
		return nil, domain.ErrCommentNotFound
	}
	if comment.UserID != actor.ID {
		return nil, domain.ErrForbidden
	}

	cleaned, err := cleanCommentBody(body)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	comment.Body = cleaned
	comment.EditedAt = &now
	comment.UpdatedAt = now

	if err := s.repo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}

	comment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if comment.IsDeleted() {
		return domain.ErrCommentNotFound
	}
	if comment.UserID != actor.ID && !actor.IsModerator() {
		return domain.ErrForbidden
	}

	now := time.Now()
	comment.DeletedAt = &now
	comment.UpdatedAt = now
	return s.repo.Update(ctx, comment)
}

// SetPinned pins or unpins a root comment. The owner side of the resource
// (mod owner/authors) and moderators may pin.
func (s *CommentService) SetPinned(ctx context.Context, actor *domain.User, id int64, pinned bool) (*domain.Comment, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}

	comment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.IsDeleted() {
		return nil, domain.ErrCommentNotFound
	}
	if !comment.IsRoot() {
		return nil, domain.ErrCannotPinReply
	}

	target, err := s.target(ctx, actor, comment.CommentableType, comment.CommentableID)
	if err != nil {
		return nil, err
	}
	if !actor.IsModerator() && !target.editable(actor) {
		return nil, domain.ErrForbidden
	}

	if pinned {
		now := time.Now()
		comment.PinnedAt = &now
	} else {
		comment.PinnedAt = nil
	}

	if err := s.repo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) target(ctx context.Context, viewer *domain.User, typ domain.CommentableType, id int64) (*commentTarget, error) {
	now := time.Now()
	switch typ {
	case domain.CommentableMod:
		mod, err := s.mods.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if mod.DeletedAt != nil || !mod.IsVisibleTo(viewer, now) {
			return nil, domain.ErrModNotFound
		}
		return &commentTarget{ownerID: mod.OwnerID, editable: mod.CanBeEditedBy}, nil

	case domain.CommentableAddon:
		addon, err := s.addons.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if addon.DeletedAt != nil || !addon.IsVisibleTo(viewer, now) {
			return nil, domain.ErrAddonNotFound
		}
		return &commentTarget{ownerID: addon.OwnerID, editable: addon.CanBeEditedBy}, nil

	case domain.CommentableUser:
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return &commentTarget{
			ownerID:  &user.ID,
			editable: func(u *domain.User) bool { return u != nil && u.ID == user.ID },
		}, nil
	}
	return nil, domain.ErrInvalidCommentable
}

func cleanCommentBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", domain.ErrInvalidCommentBody
	}
	if runes := []rune(body); len(runes) > maxCommentLength {
		body = string(runes[:maxCommentLength])
	}
	return body, nil
}

// BuildThreads groups a flat, oldest-first comment list into root comments
// with their replies. Pinned roots sort first; deleted comments are blanked.
func BuildThreads(all []*domain.Comment) []*domain.Comment {
	byID := make(map[int64]*domain.Comment, len(all))
	for _, c := range all {
		c.Replies = nil
		if c.IsDeleted() {
			c.Body = ""
		}
		byID[c.ID] = c
	}

	var pinned, roots []*domain.Comment
	for _, c := range all {
		if c.IsRoot() {
			if c.PinnedAt != nil {
				pinned = append(pinned, c)
			} else {
				roots = append(roots, c)
			}
			continue
		}

		rootID := *c.ParentID
		if c.RootID != nil {
			rootID = *c.RootID
		}
		if root, ok := byID[rootID]; ok {
			root.Replies = append(root.Replies, c)
		}
	}

	return append(pinned, roots...)
}
