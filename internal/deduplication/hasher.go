package deduplication

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"dfchat/pkg/models"
)

// Hasher derives the redelivery key of a chat event. Two deliveries of the
// same event from the same connection hash alike.
type Hasher struct {
	algorithm string
}

func NewHasher(algorithm string) *Hasher {
	return &Hasher{algorithm: strings.ToLower(algorithm)}
}

func (h *Hasher) Key(event *models.ChatEvent) string {
	var builder strings.Builder
	builder.WriteString(event.Source)
	builder.WriteByte('|')
	builder.WriteString(event.ID)
	builder.WriteByte('|')
	builder.WriteString(string(event.Kind))

	input := []byte(builder.String())

	switch h.algorithm {
	case "md5":
		sum := md5.Sum(input)
		return hex.EncodeToString(sum[:])
	default:
		sum := sha256.Sum256(input)
		return hex.EncodeToString(sum[:])
	}
}
