package common

import (
	"github.com/google/uuid"
)

// GenerateID 生成帶前綴的 ID，例如 pool-xxxx
func GenerateID(prefix string) string {
	return prefix + "-" + uuid.New().String()
}
