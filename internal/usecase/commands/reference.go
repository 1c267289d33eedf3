package commands

import (
	"strings"

	"github.com/google/uuid"
)

// The processor's externalReference field is capped at 100 characters, far
// too short for the serialized intent. The reference therefore carries only
// two UUIDs; the intent itself lives in pending_payment_metadata.
const (
	referenceUserPrefix = "user:"
	referenceMetaPrefix = "meta:"
	referenceSeparator  = ";"
)

func EncodeReference(userID, metadataID uuid.UUID) string {
	return referenceUserPrefix + userID.String() + referenceSeparator + referenceMetaPrefix + metadataID.String()
}

// ParseReference extracts the user and metadata ids from an external
// reference. A bare UUID is accepted as a legacy user-only reference.
func ParseReference(ref string) (userID *uuid.UUID, metadataID *uuid.UUID) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}

	for _, part := range strings.Split(ref, referenceSeparator) {
		switch {
		case strings.HasPrefix(part, referenceUserPrefix):
			if id, err := uuid.Parse(strings.TrimPrefix(part, referenceUserPrefix)); err == nil {
				userID = &id
			}
		case strings.HasPrefix(part, referenceMetaPrefix):
			if id, err := uuid.Parse(strings.TrimPrefix(part, referenceMetaPrefix)); err == nil {
				metadataID = &id
			}
		}
	}
	if userID != nil || metadataID != nil {
		return userID, metadataID
	}

	if id, err := uuid.Parse(ref); err == nil {
		return &id, nil
	}
	return nil, nil
}
