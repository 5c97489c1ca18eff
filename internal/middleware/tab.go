package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-planner-api/internal/tab"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
	"github.com/noah-isme/study-planner-api/pkg/logger"
	"github.com/noah-isme/study-planner-api/pkg/response"
)

// ContextTabKey is the gin context key storing the calling tab id.
const ContextTabKey = "tab_id"

type tabLookup interface {
	Get(id string) (*tab.Tab, error)
}

// AttachTab makes writes issued with the X-Tab-ID header notify that tab
// before the response is written. Requests without the header behave like
// background writers. An unknown id is rejected so the client reopens its tab.
func AttachTab(tabs tabLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(logger.TabHeader)
		if id == "" {
			c.Next()
			return
		}
		t, err := tabs.Get(id)
		if err != nil {
			response.Error(c, appErrors.ErrTabNotFound)
			c.Abort()
			return
		}
		c.Set(ContextTabKey, id)
		c.Request = c.Request.WithContext(t.Attach(c.Request.Context()))
		c.Next()
	}
}
