package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// queryInt parses the named query parameter as an int, falling back to
// def when absent or malformed. Usecases clamp the final range.
func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
