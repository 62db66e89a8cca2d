package envelope

import (
	"encoding/json"
	"net/url"

	"transcode-worker/internal/logging"
)

// Notification is one object-created event unwrapped from a delivery batch.
// Key has been URL-decoded ('+' becomes a space, %XX sequences are expanded)
// so it matches the key as stored in the bucket.
type Notification struct {
	Bucket string
	Key    string
}

// s3Event mirrors the S3 event notification document carried inside each
// message body. Only the fields this worker reads are declared.
type s3Event struct {
	Records []s3Record `json:"Records"`
}

type s3Record struct {
	S3 struct {
		Bucket struct {
			Name string `json:"name"`
		} `json:"bucket"`
		Object struct {
			Key string `json:"key"`
		} `json:"object"`
	} `json:"s3"`
}

// Parse unwraps a batch of raw message bodies into a flat, ordered list of
// notifications. Messages that are not valid JSON or carry no Records array
// are logged and skipped; they never abort the batch. The result may be
// empty.
func Parse(bodies []string) []Notification {
	var notifications []Notification

	for _, body := range bodies {
		var event s3Event
		if err := json.Unmarshal([]byte(body), &event); err != nil {
			logging.Warn("Envelope: invalid JSON body, skipping message: %v", err)
			continue
		}
		if len(event.Records) == 0 {
			logging.Warn("Envelope: message has no Records array, skipping")
			continue
		}

		for _, rec := range event.Records {
			notifications = append(notifications, Notification{
				Bucket: rec.S3.Bucket.Name,
				Key:    decodeKey(rec.S3.Object.Key),
			})
		}
	}

	return notifications
}

// decodeKey reverses the URL encoding S3 applies to object keys in event
// notifications. QueryUnescape also maps '+' to space, which is how S3
// encodes spaces in keys. On malformed input the raw key is kept.
func decodeKey(raw string) string {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		logging.Warn("Envelope: could not decode object key %q: %v", raw, err)
		return raw
	}
	return decoded
}
