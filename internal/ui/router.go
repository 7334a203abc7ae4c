package ui

import (
	"strconv"
	"strings"

	"github.com/five82/shelf/internal/session"
)

// Route patterns.
const (
	routeLogin           = "/login"
	routeSignup          = "/signup"
	routeCatalog         = "/"
	routeNewBook         = "/books/new"
	routeBook            = "/books/:id"
	routeEditBook        = "/books/:id/edit"
	routeRecommendations = "/recommendations"
	routeDocuments       = "/documents"
	routeChat            = "/chat"
	routeAdminUsers      = "/admin/users"
)

// route is a resolved navigation target.
type route struct {
	pattern string
	path    string
	bookID  int64
}

func (r route) public() bool {
	return r.pattern == routeLogin || r.pattern == routeSignup
}

func (r route) superuserOnly() bool {
	return r.pattern == routeAdminUsers
}

// resolveRoute maps a path onto a known pattern. Unknown paths resolve to
// the catalog.
func resolveRoute(path string) route {
	clean := "/" + strings.Trim(strings.TrimSpace(path), "/")
	switch clean {
	case routeLogin, routeSignup, routeNewBook, routeRecommendations, routeDocuments, routeChat, routeAdminUsers:
		return route{pattern: clean, path: clean}
	case "/":
		return route{pattern: routeCatalog, path: "/"}
	}

	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")
	if len(parts) >= 2 && len(parts) <= 3 && parts[0] == "books" {
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err == nil && id > 0 {
			if len(parts) == 2 {
				return route{pattern: routeBook, path: clean, bookID: id}
			}
			if parts[2] == "edit" {
				return route{pattern: routeEditBook, path: clean, bookID: id}
			}
		}
	}
	return route{pattern: routeCatalog, path: "/"}
}

// gateRoute applies the access rules: every page except login and signup
// needs a session, and the user admin page needs a superuser.
func gateRoute(r route, snap session.Snapshot) route {
	if r.public() {
		return r
	}
	if !snap.IsAuthenticated() {
		return resolveRoute(routeLogin)
	}
	if r.superuserOnly() && !snap.IsSuperuser() {
		return resolveRoute(routeCatalog)
	}
	return r
}

func bookPath(id int64) string {
	return "/books/" + strconv.FormatInt(id, 10)
}

func editBookPath(id int64) string {
	return bookPath(id) + "/edit"
}

// newPage builds the page for a gated route.
func newPage(r route, d deps) page {
	switch r.pattern {
	case routeLogin:
		return newLoginPage(d)
	case routeSignup:
		return newSignupPage(d)
	case routeNewBook:
		return newBookFormPage(d, 0)
	case routeBook:
		return newDetailPage(d, r.bookID)
	case routeEditBook:
		return newBookFormPage(d, r.bookID)
	case routeRecommendations:
		return newRecommendationsPage(d)
	case routeDocuments:
		return newDocumentsPage(d)
	case routeChat:
		return newChatPage(d)
	case routeAdminUsers:
		return newAdminPage(d)
	default:
		return newCatalogPage(d)
	}
}
