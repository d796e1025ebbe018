package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// QueryPositiveInt 读取正整数查询参数，缺失或非法时返回默认值
func QueryPositiveInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
