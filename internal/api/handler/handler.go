package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/carmarket/internal/model"
	"github.com/d60-Lab/carmarket/internal/service"
	"github.com/d60-Lab/carmarket/pkg/response"
)

const sessionCookie = "sessionId"

// Handler 聚合全部 HTTP 处理器依赖
type Handler struct {
	auth      service.AuthService
	listings  service.ListingService
	favorites service.FavoriteService
	search    service.SearchService
	analytics service.AnalyticsService
	mirror    *service.MirrorService
	runner    *service.AsyncRunner
}

func New(
	auth service.AuthService,
	listings service.ListingService,
	favorites service.FavoriteService,
	search service.SearchService,
	analytics service.AnalyticsService,
	mirror *service.MirrorService,
	runner *service.AsyncRunner,
) *Handler {
	return &Handler{
		auth:      auth,
		listings:  listings,
		favorites: favorites,
		search:    search,
		analytics: analytics,
		mirror:    mirror,
		runner:    runner,
	}
}

// sessionToken 从 Cookie 或 Authorization: Bearer 取会话令牌
func sessionToken(c *gin.Context) string {
	if token, err := c.Cookie(sessionCookie); err == nil && token != "" {
		return token
	}
	authz := c.GetHeader("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimPrefix(authz, "Bearer ")
	}
	return ""
}

// currentSession 当前有效会话，未登录返回 nil。
func (h *Handler) currentSession(c *gin.Context) *model.Session {
	token := sessionToken(c)
	if token == "" {
		return nil
	}
	return h.auth.Session(c.Request.Context(), token)
}

// RequireAdmin 管理端路由守卫：必须登录且会话邮箱在管理员名单内。
func (h *Handler) RequireAdmin(adminEmails []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		allowed[email] = struct{}{}
	}
	return func(c *gin.Context) {
		session := h.currentSession(c)
		if session == nil {
			response.Unauthorized(c, "not logged in")
			c.Abort()
			return
		}
		if _, ok := allowed[session.Email]; !ok {
			response.Forbidden(c, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
