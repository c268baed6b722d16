package episode

import (
	"strings"
)

const (
	DefaultLanguage = "ar"

	MaxTitleLength       = 500
	MaxDescriptionLength = 2000
	MaxBlobPathLength    = 1000
)

// Category is the closed set of episode categories
type Category string

const (
	CategoryTechnology    Category = "Technology"
	CategoryCulture       Category = "Culture"
	CategoryHistory       Category = "History"
	CategoryScience       Category = "Science"
	CategoryPolitics      Category = "Politics"
	CategorySports        Category = "Sports"
	CategoryEntertainment Category = "Entertainment"
	CategoryEducation     Category = "Education"
	CategoryBusiness      Category = "Business"
	CategoryHealth        Category = "Health"
)

var categories = []Category{
	CategoryTechnology, CategoryCulture, CategoryHistory, CategoryScience, CategoryPolitics,
	CategorySports, CategoryEntertainment, CategoryEducation, CategoryBusiness, CategoryHealth,
}

// Categories returns every known category
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory parses a category name case-insensitively
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

// IsValid reports whether c is a known category
func (c Category) IsValid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }

// Format is the media container of an episode
type Format string

const (
	FormatAudio Format = "mp3"
	FormatVideo Format = "mp4"
)

// ParseFormat parses "mp3"/"mp4" case-insensitively
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(FormatAudio):
		return FormatAudio, nil
	case string(FormatVideo):
		return FormatVideo, nil
	default:
		return "", ErrInvalidFormat
	}
}

// IsValid reports whether f is mp3 or mp4
func (f Format) IsValid() bool {
	return f == FormatAudio || f == FormatVideo
}

// Extension returns the canonical file extension without the dot
func (f Format) Extension() string {
	return string(f)
}

// MimeType returns the content type uploads must carry
func (f Format) MimeType() string {
	switch f {
	case FormatAudio:
		return "audio/mpeg"
	case FormatVideo:
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}

// IsVideo reports whether the format is video
func (f Format) IsVideo() bool { return f == FormatVideo }

// IsAudio reports whether the format is audio
func (f Format) IsAudio() bool { return f == FormatAudio }

func (f Format) String() string { return string(f) }

// Status is the lifecycle state of an episode
type Status string

const (
	StatusPendingUpload Status = "PendingUpload"
	StatusProcessing    Status = "Processing"
	StatusReady         Status = "Ready"
	StatusDeleting      Status = "Deleting"
	StatusFailed        Status = "Failed"
)

// ParseStatus parses a status name case-insensitively
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, st := range []Status{StatusPendingUpload, StatusProcessing, StatusReady, StatusDeleting, StatusFailed} {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusPendingUpload, StatusProcessing, StatusReady, StatusDeleting, StatusFailed:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// SourceType tells where the media comes from
type SourceType string

const (
	SourceDirectUpload  SourceType = "DirectUpload"
	SourceYoutubeImport SourceType = "YoutubeImport"
	SourceRssImport     SourceType = "RssImport"
)

// ParseSourceType parses a source type name case-insensitively
func ParseSourceType(s string) (SourceType, error) {
	s = strings.TrimSpace(s)
	for _, st := range []SourceType{SourceDirectUpload, SourceYoutubeImport, SourceRssImport} {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", ErrInvalidSourceType
}

// IsImport reports whether the source is an external import
func (s SourceType) IsImport() bool {
	return s == SourceYoutubeImport || s == SourceRssImport
}

func (s SourceType) String() string { return string(s) }

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrTitleRequired
	}
	if len([]rune(title)) > MaxTitleLength {
		return "", ErrTitleTooLong
	}
	return title, nil
}

func validateDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if len([]rune(description)) > MaxDescriptionLength {
		return "", ErrDescriptionTooLong
	}
	return description, nil
}

func validateBlobPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrBlobPathRequired
	}
	if len([]rune(path)) > MaxBlobPathLength {
		return "", ErrBlobPathTooLong
	}
	return path, nil
}
