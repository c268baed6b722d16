package episode

import (
	apperrors "github.com/narwhalmedia/episodes/pkg/errors"
)

var (
	ErrNotFound = apperrors.NotFound("Episode.NotFound", "episode not found")

	ErrTitleRequired          = apperrors.Validation("Episode.TitleRequired", "title is required")
	ErrTitleTooLong           = apperrors.Validation("Episode.TitleNotExceed500Char", "title must not exceed 500 characters")
	ErrDescriptionTooLong     = apperrors.Validation("Episode.DescriptionNotExceed2000Char", "description must not exceed 2000 characters")
	ErrInvalidDuration        = apperrors.Validation("Episode.DurationMustBePositive", "duration must not be negative")
	ErrPublishDateInPast      = apperrors.Validation("Episode.PublishDateMustBeFuture", "publish date must be today or later")
	ErrLanguageRequired       = apperrors.Validation("Episode.LanguageRequired", "language is required")
	ErrBlobPathRequired       = apperrors.Validation("Episode.BlobPathRequired", "blob path is required")
	ErrBlobPathTooLong        = apperrors.Validation("Episode.BlobPathNotExceed1000Char", "blob path must not exceed 1000 characters")
	ErrInvalidBlobPath        = apperrors.Validation("Episode.BlobPathInvalid", "blob path must start with / and carry the format extension")
	ErrInvalidCategory        = apperrors.Validation("Episode.CategoryInvalid", "category is invalid")
	ErrInvalidFormat          = apperrors.Validation("Episode.FormatInvalid", "format must be mp3 or mp4")
	ErrInvalidSourceType      = apperrors.Validation("Episode.SourceTypeInvalid", "source type is invalid")
	ErrInvalidStatus          = apperrors.Validation("Episode.StatusInvalid", "status is invalid")
	ErrInvalidID              = apperrors.Validation("Episode.InvalidId", "episode id must be a positive integer")
	ErrCannotDeleteProcessing = apperrors.Validation("Episode.CannotDeleteProcessingEpisode", "cannot delete an episode while it is processing")
	ErrCannotUpdateProcessing = apperrors.Validation("Episode.CannotUpdateProcessingEpisode", "cannot update an episode while it is processing")
	ErrInvalidTransition      = apperrors.Validation("Episode.InvalidStatusTransition", "invalid status transition")
	ErrSameStatus             = apperrors.Validation("Episode.CantUpdateSameStatus", "episode already has this status")
	ErrCannotSetDeleting      = apperrors.Validation("Episode.CannotUpdateEpisodeToDeleting", "use deletion to move an episode to Deleting")

	ErrConcurrencyConflict = apperrors.Conflict("Episode.ConcurrencyConflict", "episode was modified by another writer")
)
