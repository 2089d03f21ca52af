package community

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/ninamcunha/amooora-backend/internal/app/domain/community"
	"github.com/ninamcunha/amooora-backend/internal/app/domain/identity"
	"github.com/ninamcunha/amooora-backend/internal/app/storage"
	"github.com/ninamcunha/amooora-backend/internal/errors"
)

// GetReplies assembles a post's two-level reply tree: top-level replies in
// creation order, each carrying its direct children in creation order.
// Grandchildren are not nested; a reply to a child lands under the same
// parent.
func (s *Service) GetReplies(ctx context.Context, postID string) ([]community.Reply, error) {
	if postID == "" {
		return nil, errors.Validation("post id is required")
	}

	parents, err := s.replies.ListTopLevelReplies(ctx, postID)
	if err != nil {
		return nil, errors.FetchFailed("list replies", err)
	}

	for i := range parents {
		children, err := s.replies.ListChildReplies(ctx, parents[i].ID)
		if err != nil {
			return nil, errors.FetchFailed("list child replies", err)
		}
		parents[i].Replies = children
	}
	return parents, nil
}

// AddReply creates a reply and bumps the post's reply counter. A failed
// counter bump is logged and swallowed: the reply exists, the cached count
// is simply stale until the next write.
func (s *Service) AddReply(ctx context.Context, ident identity.ActingIdentity, reply community.Reply) (community.Reply, error) {
	reply.Content = strings.TrimSpace(reply.Content)
	if reply.PostID == "" {
		return community.Reply{}, errors.Validation("post id is required")
	}
	if reply.Content == "" {
		return community.Reply{}, errors.Validation("content is required")
	}

	if ident.IsAuthenticated() {
		reply.UserID = ident.UserID()
	} else {
		reply.UserID = ""
		if reply.AuthorName == "" {
			reply.AuthorName = "Anônimo"
		}
	}

	if reply.ParentReplyID != "" {
		parent, err := s.replies.GetReply(ctx, reply.ParentReplyID)
		if err != nil {
			if stderrors.Is(err, storage.ErrNotFound) {
				return community.Reply{}, errors.Validation("parent reply not found")
			}
			return community.Reply{}, errors.FetchFailed("resolve parent reply", err)
		}
		if parent.PostID != reply.PostID {
			return community.Reply{}, errors.Validation("parent reply belongs to another post")
		}
		// Keep the tree two levels deep: replying to a child attaches
		// to its parent instead.
		if parent.ParentReplyID != "" {
			reply.ParentReplyID = parent.ParentReplyID
		}
	}

	created, err := s.replies.CreateReply(ctx, reply)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return community.Reply{}, errors.NotFound("post not found")
		}
		return community.Reply{}, errors.FetchFailed("create reply", err)
	}

	if err := s.posts.IncrementPostReplies(ctx, created.PostID); err != nil {
		s.log.WithError(err).WithField("post_id", created.PostID).Warn("reply counter increment failed")
		if s.metrics != nil {
			s.metrics.RecordBackendError("increment_replies")
		}
	}

	s.log.WithFields(map[string]any{"post_id": created.PostID, "reply_id": created.ID}).Info("reply created")
	return created, nil
}
