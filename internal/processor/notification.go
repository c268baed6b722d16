package processor

import (
	"encoding/json"
	"net/url"
	"strings"

	apperrors "github.com/narwhalmedia/episodes/pkg/errors"
)

// ErrInvalidNotification is returned for payloads that are neither an S3
// event notification nor a bare upload notification
var ErrInvalidNotification = apperrors.Validation("Processor.InvalidNotification", "notification payload is malformed")

// Upload is one object that landed in storage
type Upload struct {
	URI  string `json:"uri"`
	Size int64  `json:"size"`
}

type s3Notification struct {
	Records []struct {
		EventName string `json:"eventName"`
		S3        struct {
			Object struct {
				Key  string `json:"key"`
				Size int64  `json:"size"`
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

// DecodeNotification extracts the created objects from an S3 event
// notification or a bare {"uri","size"} document. Records other than
// ObjectCreated:* are dropped.
func DecodeNotification(data []byte) ([]Upload, error) {
	var s3 s3Notification
	if err := json.Unmarshal(data, &s3); err != nil {
		return nil, ErrInvalidNotification.WithMessage("decode notification: %v", err)
	}
	if len(s3.Records) > 0 {
		uploads := make([]Upload, 0, len(s3.Records))
		for _, r := range s3.Records {
			if !strings.HasPrefix(r.EventName, "ObjectCreated:") {
				continue
			}
			key, err := url.QueryUnescape(r.S3.Object.Key)
			if err != nil {
				key = r.S3.Object.Key
			}
			uploads = append(uploads, Upload{URI: key, Size: r.S3.Object.Size})
		}
		return uploads, nil
	}

	var upload Upload
	if err := json.Unmarshal(data, &upload); err != nil {
		return nil, ErrInvalidNotification.WithMessage("decode notification: %v", err)
	}
	if upload.URI == "" {
		return nil, ErrInvalidNotification.WithMessage("notification has no records and no uri")
	}
	return []Upload{upload}, nil
}

// objectPath returns the object path of uri without its leading slash.
// uri is either a full URL or a bare key.
func objectPath(uri string) string {
	uri = strings.TrimSpace(uri)
	if u, err := url.Parse(uri); err == nil && u.Scheme != "" {
		return strings.TrimPrefix(u.Path, "/")
	}
	return strings.TrimPrefix(uri, "/")
}
