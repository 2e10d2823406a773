package router

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// Các prefix phiên bản API
type RoutePrefix struct {
	V1 string
}

// NewRoutePrefix trả về prefix mặc định
func NewRoutePrefix() RoutePrefix {
	return RoutePrefix{V1: "/api/v1"}
}

// Router quản lý việc đăng ký route theo nhóm prefix
type Router struct {
	app    *fiber.App
	groups map[string]fiber.Router
}

// NewRouter tạo Router cho app
func NewRouter(app *fiber.App) *Router {
	return &Router{app: app, groups: make(map[string]fiber.Router)}
}

// RegisterFunc là hàm đăng ký route của một domain
type RegisterFunc func(v1 fiber.Router, r *Router) error

// RegisterRouteWithMiddleware đăng ký route vào group prefix.
// Middleware gắn vào group bằng .Use() đúng một lần cho mỗi prefix, nên mọi route
// dùng chung prefix phải dùng chung bộ middleware (prefix khác cho route cần quyền khác, ví dụ /admin).
func (r *Router) RegisterRouteWithMiddleware(router fiber.Router, prefix string, method string, path string, middlewares []fiber.Handler, handler fiber.Handler) {
	routeGroup, ok := r.groups[prefix]
	if !ok {
		routeGroup = router.Group(prefix)
		for _, mw := range middlewares {
			routeGroup.Use(mw)
		}
		r.groups[prefix] = routeGroup
	}

	switch strings.ToUpper(method) {
	case fiber.MethodGet:
		routeGroup.Get(path, handler)
	case fiber.MethodPost:
		routeGroup.Post(path, handler)
	case fiber.MethodPut:
		routeGroup.Put(path, handler)
	case fiber.MethodPatch:
		routeGroup.Patch(path, handler)
	case fiber.MethodDelete:
		routeGroup.Delete(path, handler)
	default:
		panic(fmt.Sprintf("method không hỗ trợ: %s", method))
	}
}

// SetupRoutes tạo group /api/v1 và gọi các hàm đăng ký của từng domain
func SetupRoutes(app *fiber.App, regs ...RegisterFunc) error {
	prefix := NewRoutePrefix()
	v1 := app.Group(prefix.V1)
	r := NewRouter(app)
	for _, reg := range regs {
		if err := reg(v1, r); err != nil {
			return err
		}
	}
	return nil
}
