package community

import (
	"context"
	stderrors "errors"

	"github.com/ninamcunha/amooora-backend/internal/app/domain/identity"
	"github.com/ninamcunha/amooora-backend/internal/app/storage"
	"github.com/ninamcunha/amooora-backend/internal/errors"
)

// LikeState is the outcome of a like toggle.
type LikeState struct {
	Liked      bool
	LikesCount int
}

// ToggleLike flips the acting identity's like on a post and moves the
// shared counter accordingly. Authenticated likes are backed by a like row;
// anonymous likes live only on the device. Either way the counter is
// adjusted atomically and clamped at zero.
func (s *Service) ToggleLike(ctx context.Context, ident identity.ActingIdentity, postID string) (LikeState, error) {
	if postID == "" {
		return LikeState{}, errors.Validation("post id is required")
	}

	if ident.IsAuthenticated() {
		return s.toggleAuthenticated(ctx, ident.UserID(), postID)
	}
	return s.toggleAnonymous(ctx, ident.LocalID(), postID)
}

func (s *Service) toggleAuthenticated(ctx context.Context, userID, postID string) (LikeState, error) {
	liked, err := s.likes.HasLike(ctx, postID, userID)
	if err != nil {
		return LikeState{}, errors.FetchFailed("check like", err)
	}

	if liked {
		if err := s.likes.RemoveLike(ctx, postID, userID); err != nil {
			return LikeState{}, errors.FetchFailed("remove like", err)
		}
	} else {
		if err := s.likes.AddLike(ctx, postID, userID); err != nil {
			return LikeState{}, errors.FetchFailed("add like", err)
		}
	}

	count, err := s.adjustCount(ctx, postID, liked)
	if err != nil {
		// Put the like row back the way it was so a retry starts clean.
		rollback := s.likes.RemoveLike
		if liked {
			rollback = s.likes.AddLike
		}
		if rbErr := rollback(ctx, postID, userID); rbErr != nil {
			s.log.WithError(rbErr).WithField("post_id", postID).Warn("like rollback failed")
		}
		return LikeState{}, err
	}
	return LikeState{Liked: !liked, LikesCount: count}, nil
}

func (s *Service) toggleAnonymous(ctx context.Context, localID, postID string) (LikeState, error) {
	if s.device == nil {
		return LikeState{}, errors.Validation("anonymous likes are not enabled")
	}
	if localID == "" {
		return LikeState{}, errors.Validation("local id is required for anonymous likes")
	}

	liked, err := s.device.IsPostLiked(ctx, localID, postID)
	if err != nil {
		return LikeState{}, errors.Internal("read device like state", err)
	}
	if err := s.device.SetPostLiked(ctx, localID, postID, !liked); err != nil {
		return LikeState{}, errors.Internal("write device like state", err)
	}

	count, err := s.adjustCount(ctx, postID, liked)
	if err != nil {
		// Roll the device state back so a retry starts clean.
		if rbErr := s.device.SetPostLiked(ctx, localID, postID, liked); rbErr != nil {
			s.log.WithError(rbErr).WithField("post_id", postID).Warn("device like rollback failed")
		}
		return LikeState{}, err
	}
	return LikeState{Liked: !liked, LikesCount: count}, nil
}

func (s *Service) adjustCount(ctx context.Context, postID string, wasLiked bool) (int, error) {
	delta := 1
	if wasLiked {
		delta = -1
	}
	count, err := s.posts.AdjustPostLikes(ctx, postID, delta)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return 0, errors.NotFound("post not found")
		}
		return 0, errors.FetchFailed("adjust like counter", err)
	}
	return count, nil
}
