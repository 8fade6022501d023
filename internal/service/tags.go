package service

import (
	"encoding/json"

	"wikiadmin/internal/models"
)

// jsonTags encodes tags the way the json field serializer stores them, for
// map-based updates that bypass the serializer.
func jsonTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return string(raw), nil
}
