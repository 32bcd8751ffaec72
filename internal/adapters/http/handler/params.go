package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/hrms-attendance/internal/core/apperr"
	"github.com/ogurasousui/hrms-attendance/internal/core/attendance"
)

func queryInt(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation(name, "must be an integer").WithValue(raw)
	}
	return v, nil
}

func paging(c *gin.Context) (skip, limit int, err error) {
	if skip, err = queryInt(c, "skip"); err != nil {
		return 0, 0, err
	}
	if limit, err = queryInt(c, "limit"); err != nil {
		return 0, 0, err
	}
	if c.Query("limit") != "" && limit < 1 {
		return 0, 0, apperr.Validation("limit", "must be between 1 and 100")
	}
	return skip, limit, nil
}

func parseDate(field, raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	t, err := time.Parse(attendance.DateLayout, trimmed)
	if err != nil {
		return time.Time{}, apperr.Validation(field, "must be a date in YYYY-MM-DD format").WithValue(trimmed)
	}
	return t, nil
}

func queryDate(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := parseDate(name, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
