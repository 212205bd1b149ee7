package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"maps"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/NGC6543/blogicum/auth"
	"github.com/NGC6543/blogicum/blog"
	"github.com/NGC6543/blogicum/discuss"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

//go:embed templates/*.gohtml
var templatesFS embed.FS

const defaultSiteTitle = "Blogicum"

type Handler struct {
	mux         *http.ServeMux
	handler     http.Handler
	tpl         *template.Template
	authSvc     *auth.Service
	blogSvc     *blog.Service
	discussSvc  *discuss.Service
	cookieStore *sessions.CookieStore
	sessionName string
}

var _ http.Handler = (*Handler)(nil)

func NewHandler(
	authSvc *auth.Service,
	blogSvc *blog.Service,
	discussSvc *discuss.Service,
	cookieStore *sessions.CookieStore,
	sessionName string,
	csrfAuthKeys []byte,
	csrfTrustedOrigins []string,
) (*Handler, error) {
	h := &Handler{
		authSvc:     authSvc,
		blogSvc:     blogSvc,
		discussSvc:  discussSvc,
		cookieStore: cookieStore,
		sessionName: sessionName,
	}

	tpl, err := template.New("").Funcs(h.funcs()).ParseFS(templatesFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	h.tpl = tpl

	h.mux = &http.ServeMux{}
	h.handler = h.mux

	h.registerRoutes()

	h.handler = h.authMiddleware(h.handler)

	csrfMiddleware := csrf.Protect(
		csrfAuthKeys,
		csrf.TrustedOrigins(csrfTrustedOrigins),
	)
	h.handler = csrfMiddleware(h.handler)

	h.handler = recoverMiddleware(h.handler)

	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

func (h *Handler) funcs() template.FuncMap {
	return template.FuncMap{
		"formatTime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 15:04")
		},
		"datetimeLocal": func(t time.Time) string {
			return t.Format(datetimeLocalLayout)
		},
		"add": func(a, b int) int {
			return a + b
		},
	}
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /{$}", h.HandleHomePage)

	h.mux.Handle("GET /register", h.GuestOnly(http.HandlerFunc(h.HandleRegisterPage)))
	h.mux.Handle("POST /register", h.GuestOnly(http.HandlerFunc(h.HandleRegister)))
	h.mux.Handle("GET /login", h.GuestOnly(http.HandlerFunc(h.HandleLoginPage)))
	h.mux.Handle("POST /login", h.GuestOnly(http.HandlerFunc(h.HandleLogin)))
	h.mux.Handle("POST /logout", h.AuthenticatedOnly(http.HandlerFunc(h.HandleLogout)))

	h.mux.HandleFunc("GET /category/{slug}", h.HandleCategoryPage)
	h.mux.HandleFunc("GET /profile/{username}", h.HandleProfilePage)
	h.mux.Handle("GET /profile-edit", h.AuthenticatedOnly(http.HandlerFunc(h.HandleEditProfilePage)))
	h.mux.Handle("POST /profile-edit", h.AuthenticatedOnly(http.HandlerFunc(h.HandleEditProfile)))

	h.mux.Handle("GET /create-post", h.AuthenticatedOnly(http.HandlerFunc(h.HandleCreatePostPage)))
	h.mux.Handle("POST /create-post", h.AuthenticatedOnly(http.HandlerFunc(h.HandleCreatePost)))
	h.mux.HandleFunc("GET /posts/{postId}", h.HandleViewPostPage)
	h.mux.Handle("GET /posts/{postId}/edit", h.AuthenticatedOnly(http.HandlerFunc(h.HandleEditPostPage)))
	h.mux.Handle("POST /posts/{postId}/edit", h.AuthenticatedOnly(http.HandlerFunc(h.HandleEditPost)))
	h.mux.Handle("POST /posts/{postId}/delete", h.AuthenticatedOnly(http.HandlerFunc(h.HandleDeletePost)))

	h.mux.Handle("POST /posts/{postId}/comment", h.AuthenticatedOnly(http.HandlerFunc(h.HandleAddComment)))
	h.mux.Handle(
		"GET /posts/{postId}/comments/{commentId}/edit",
		h.AuthenticatedOnly(http.HandlerFunc(h.HandleEditCommentPage)),
	)
	h.mux.Handle(
		"POST /posts/{postId}/comments/{commentId}/edit",
		h.AuthenticatedOnly(http.HandlerFunc(h.HandleEditComment)),
	)
	h.mux.Handle(
		"POST /posts/{postId}/comments/{commentId}/delete",
		h.AuthenticatedOnly(http.HandlerFunc(h.HandleDeleteComment)),
	)

	h.mux.Handle("GET /admin/categories", h.StaffOnly(http.HandlerFunc(h.HandleCategoriesAdminPage)))
	h.mux.Handle("POST /admin/categories", h.StaffOnly(http.HandlerFunc(h.HandleCreateCategory)))
	h.mux.Handle(
		"GET /admin/categories/{categoryId}/edit",
		h.StaffOnly(http.HandlerFunc(h.HandleEditCategoryPage)),
	)
	h.mux.Handle(
		"POST /admin/categories/{categoryId}/edit",
		h.StaffOnly(http.HandlerFunc(h.HandleEditCategory)),
	)
	h.mux.Handle(
		"POST /admin/categories/{categoryId}/publish",
		h.StaffOnly(http.HandlerFunc(h.HandleSetCategoryPublished)),
	)
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func(ctx context.Context) {
			if err := recover(); err != nil {
				slog.ErrorContext(ctx, "recovered from panic", "error", err, "stack", string(debug.Stack()))

				http.Error(w, "internal error occurred", http.StatusInternalServerError)
			}
		}(r.Context())

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request, name string, extraData map[string]any) {
	viewer := viewerFromRequest(r)

	data := map[string]any{
		"CurrentPath":     r.URL.Path,
		"Lang":            "en",
		"Dir":             "ltr",
		"IsAuthenticated": isAuthenticated(r),
		"IsStaff":         viewer.IsStaff,
		"CurrentUserID":   viewer.UserID,
		csrf.TemplateTag:  csrf.TemplateField(r),
	}

	maps.Copy(data, extraData)

	data["SiteTitle"] = defaultSiteTitle

	if extraData["SiteTitle"] != nil {
		data["SiteTitle"] = fmt.Sprintf("%s | %s", extraData["SiteTitle"], data["SiteTitle"])
	}

	err := h.tpl.ExecuteTemplate(w, name, data)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to render template", "name", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}
}

// serviceError translates the typed failures of the content services into
// HTTP statuses. Unknown errors are logged and reported as 500.
func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr       *blog.ValidationError
		forbiddenErr        *blog.ForbiddenError
		postNotFoundErr     *blog.PostNotFoundError
		categoryNotFoundErr *blog.CategoryNotFoundError
		categorySlugErr     *blog.CategoryBySlugNotFoundError
		categoryExistsErr   *blog.CategoryAlreadyExistsError
		commentNotFoundErr  *discuss.CommentNotFoundError
		userNotFoundErr     *auth.UserNotFoundError
		usernameNotFoundErr *auth.UserByUsernameNotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
	case errors.As(err, &forbiddenErr):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.As(err, &postNotFoundErr),
		errors.As(err, &categoryNotFoundErr),
		errors.As(err, &categorySlugErr),
		errors.As(err, &commentNotFoundErr),
		errors.As(err, &userNotFoundErr),
		errors.As(err, &usernameNotFoundErr):
		http.Error(w, "Not Found", http.StatusNotFound)
	case errors.As(err, &categoryExistsErr):
		http.Error(w, categoryExistsErr.Error(), http.StatusConflict)
	default:
		slog.ErrorContext(r.Context(), "unexpected service error", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func pageNumber(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}

	return page
}

type PostView struct {
	*blog.PostItem

	Author   *auth.User
	Category *blog.Category
}

type CommentView struct {
	*discuss.Comment

	Author *auth.User
}

func (h *Handler) postViews(ctx context.Context, items []*blog.PostItem) ([]*PostView, error) {
	authors := make(map[string]*auth.User)
	categories := make(map[string]*blog.Category)

	views := make([]*PostView, 0, len(items))

	for _, item := range items {
		author, ok := authors[item.AuthorID]
		if !ok {
			var err error

			author, err = h.authSvc.GetUser(ctx, item.AuthorID)
			if err != nil {
				return nil, fmt.Errorf("failed to get post author: %w", err)
			}

			authors[item.AuthorID] = author
		}

		view := &PostView{PostItem: item, Author: author}

		if item.CategoryID != nil {
			category, ok := categories[*item.CategoryID]
			if !ok {
				var err error

				category, err = h.categoryByID(ctx, *item.CategoryID)
				if err != nil {
					return nil, err
				}

				categories[*item.CategoryID] = category
			}

			view.Category = category
		}

		views = append(views, view)
	}

	return views, nil
}

// categoryByID resolves a category for display. A missing category renders
// as uncategorized instead of failing the page.
func (h *Handler) categoryByID(ctx context.Context, categoryID string) (*blog.Category, error) {
	category, err := h.blogSvc.GetCategory(ctx, categoryID)
	if err != nil {
		var notFoundErr *blog.CategoryNotFoundError
		if errors.As(err, &notFoundErr) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return category, nil
}

func (h *Handler) HandleHomePage(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromRequest(r)

	result, err := h.blogSvc.ListPosts(r.Context(), blog.AllFeed(), viewer, pageNumber(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list posts", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	views, err := h.postViews(r.Context(), result.Items)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to build post views", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	categories, err := h.blogSvc.ListCategories(r.Context(), viewer)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list categories", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	data := map[string]any{
		"Posts":      views,
		"Page":       result,
		"BasePath":   "/",
		"Categories": categories,
	}

	h.renderTemplate(w, r, "home-page.gohtml", data)
}

func (h *Handler) HandleCategoryPage(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	viewer := viewerFromRequest(r)

	category, err := h.blogSvc.GetCategoryBySlug(r.Context(), slug, viewer)
	if err != nil {
		h.serviceError(w, r, err)

		return
	}

	result, err := h.blogSvc.ListPosts(r.Context(), blog.ByCategory(slug), viewer, pageNumber(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list posts", "slug", slug, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	views, err := h.postViews(r.Context(), result.Items)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to build post views", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	data := map[string]any{
		"SiteTitle": category.Title,
		"Category":  category,
		"Posts":     views,
		"Page":      result,
		"BasePath":  "/category/" + slug,
	}

	h.renderTemplate(w, r, "category-page.gohtml", data)
}

func (h *Handler) HandleProfilePage(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	viewer := viewerFromRequest(r)

	profile, err := h.authSvc.GetUserByUsername(r.Context(), username)
	if err != nil {
		h.serviceError(w, r, err)

		return
	}

	result, err := h.blogSvc.ListPosts(r.Context(), blog.ByAuthor(profile.ID), viewer, pageNumber(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list posts", "username", username, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	views, err := h.postViews(r.Context(), result.Items)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to build post views", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	data := map[string]any{
		"SiteTitle":    profile.Username,
		"Profile":      profile,
		"IsOwnProfile": viewer.Is(profile.ID),
		"Posts":        views,
		"Page":         result,
		"BasePath":     "/profile/" + username,
	}

	h.renderTemplate(w, r, "profile-page.gohtml", data)
}

func (h *Handler) HandleEditProfilePage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"SiteTitle": "Edit Profile",
	}

	h.renderTemplate(w, r, "edit-profile-page.gohtml", data)
}

func (h *Handler) HandleEditProfile(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to parse form", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)

		return
	}

	viewer := viewerFromRequest(r)

	user, err := h.authSvc.UpdateProfile(r.Context(), viewer.UserID, r.FormValue("display_name"))
	if err != nil {
		h.serviceError(w, r, err)

		return
	}

	http.Redirect(w, r, "/profile/"+user.Username, http.StatusSeeOther)
}

func (h *Handler) HandleViewPostPage(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("postId")
	viewer := viewerFromRequest(r)

	post, err := h.blogSvc.GetPost(r.Context(), postID, viewer)
	if err != nil {
		h.serviceError(w, r, err)

		return
	}

	comments, err := h.discussSvc.ListComments(r.Context(), postID, viewer)
	if err != nil {
		h.serviceError(w, r, err)

		return
	}

	commentViews := make([]*CommentView, 0, len(comments))

	for _, comment := range comments {
		author, err := h.authSvc.GetUser(r.Context(), comment.AuthorID)
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to get comment author", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)

			return
		}

		commentViews = append(commentViews, &CommentView{Comment: comment, Author: author})
	}

	item := &blog.PostItem{Post: post, CommentCount: len(comments)}

	views, err := h.postViews(r.Context(), []*blog.PostItem{item})
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to build post view", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	data := map[string]any{
		"SiteTitle": post.Title,
		"Post":      views[0],
		"Comments":  commentViews,
		"CanEdit":   viewer.IsStaff || viewer.Is(post.AuthorID),
	}

	h.renderTemplate(w, r, "view-post-page.gohtml", data)
}

func (h *Handler) HandleCreatePostPage(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFromRequest(r)

	categories, err := h.blogSvc.ListCategories(r.Context(), viewer)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list categories", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	data := map[string]any{
		"SiteTitle":  "Create Post",
		"Categories": categories,
	}

	h.renderTemplate(w, r, "create-post-page.gohtml", data)
}

func (h *Handler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to parse form", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)

		return
	}

	publishedAt, err := parsePublishedAt(r.FormValue("published_at"))
	if err != nil {
		http.Error(w, "Invalid publication time", http.StatusBadRequest)

		return
	}

	post, err := h.blogSvc.CreatePost(r.Context(), viewerFromRequest(r), blog.CreatePostRequest{
		Title:       r.FormValue("title"),
		Body:        r.FormValue("body"),
		CategoryID:  formCategoryID(r),
		PublishedAt: publishedAt,
		IsPublished: r.FormValue("is_published") != "",
	})
	if err != nil {
		h.serviceError(w, r, err)

		return
	}

	http.Redirect(w, r, "/posts/"+post.ID, http.StatusSeeOther)
}

func (h *Handler) HandleEditPostPage(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("postId")
	viewer := viewerFromRequest(r)

	post, err := h.blogSvc.GetPost(r.Context(), postID, viewer)
	if err != nil {
		h.serviceError(w, r, err)

		return
	}

	if !viewer.IsStaff && !viewer.Is(post.AuthorID) {
		http.Redirect(w, r, "/posts/"+post.ID, http.StatusSeeOther)

		return
	}

	categories, err := h.blogSvc.ListCategories(r.Context(), viewer)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list categories", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	selectedCategoryID := ""
	if post.CategoryID != nil {
		selectedCategoryID = *post.CategoryID
	}

	data := map[string]any{
		"SiteTitle":          "Edit Post",
		"Post":               post,
		"Categories":         categories,
		"SelectedCategoryID": selectedCategoryID,
	}

	h.renderTemplate(w, r, "edit-post-page.gohtml", data)
}

func (h *Handler) HandleEditPost(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("postId")

	err := r.ParseForm()
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to parse form", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)

		return
	}

	publishedAt, err := parsePublishedAt(r.FormValue("published_at"))
	if err != nil {
		http.Error(w, "Invalid publication time", http.StatusBadRequest)

		return
	}

	post, err := h.blogSvc.UpdatePost(r.Context(), postID, viewerFromRequest(r), blog.UpdatePostRequest{
		Title:       r.FormValue("title"),
		Body:        r.FormValue("body"),
		CategoryID:  formCategoryID(r),
		PublishedAt: publishedAt,
		IsPublished: r.FormValue("is_published") != "",
	})
	if err != nil {
		h.serviceError(w, r, err)

		return
	}

	http.Redirect(w, r, "/posts/"+post.ID, http.StatusSeeOther)
}

func (h *Handler) HandleDeletePost(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("postId")

	err := h.blogSvc.DeletePost(r.Context(), postID, viewerFromRequest(r))
	if err != nil {
		h.serviceError(w, r, err)

		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("postId")

	err := r.ParseForm()
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to parse form", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)

		return
	}

	_, err = h.discussSvc.AddComment(r.Context(), postID, viewerFromRequest(r), r.FormValue("body"))
	if err != nil {
		h.serviceError(w, r, err)

		return
	}

	http.Redirect(w, r, "/posts/"+postID, http.StatusSeeOther)
}

func (h *Handler) HandleEditCommentPage(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("postId")
	commentID := r.PathValue("commentId")
	viewer := viewerFromRequest(r)

	comments, err := h.discussSvc.ListComments(r.Context(), postID, viewer)
	if err != nil {
		h.serviceError(w, r, err)

		return
	}

	var comment *discuss.Comment

	for _, c := range comments {
		if c.ID == commentID {
			comment = c

			break
		}
	}

	if comment == nil {
		http.Error(w, "Not Found", http.StatusNotFound)

		return
	}

	if !viewer.IsStaff && !viewer.Is(comment.AuthorID) {
		http.Redirect(w, r, "/posts/"+postID, http.StatusSeeOther)

		return
	}

	data := map[string]any{
		"SiteTitle": "Edit Comment",
		"PostID":    postID,
		"Comment":   comment,
	}

	h.renderTemplate(w, r, "edit-comment-page.gohtml", data)
}

func (h *Handler) HandleEditComment(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("postId")
	commentID := r.PathValue("commentId")

	err := r.ParseForm()
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to parse form", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)

		return
	}

	_, err = h.discussSvc.UpdateComment(r.Context(), commentID, viewerFromRequest(r), r.FormValue("body"))
	if err != nil {
		h.serviceError(w, r, err)

		return
	}

	http.Redirect(w, r, "/posts/"+postID, http.StatusSeeOther)
}

func (h *Handler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("postId")
	commentID := r.PathValue("commentId")

	err := h.discussSvc.DeleteComment(r.Context(), commentID, viewerFromRequest(r))
	if err != nil {
		h.serviceError(w, r, err)

		return
	}

	http.Redirect(w, r, "/posts/"+postID, http.StatusSeeOther)
}

func (h *Handler) HandleCategoriesAdminPage(w http.ResponseWriter, r *http.Request) {
	categories, err := h.blogSvc.ListCategories(r.Context(), viewerFromRequest(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list categories", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	data := map[string]any{
		"SiteTitle":  "Categories",
		"Categories": categories,
	}

	h.renderTemplate(w, r, "categories-admin-page.gohtml", data)
}

func (h *Handler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to parse form", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)

		return
	}

	_, err = h.blogSvc.CreateCategory(r.Context(), viewerFromRequest(r), blog.CreateCategoryRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Slug:        r.FormValue("slug"),
		IsPublished: r.FormValue("is_published") != "",
	})
	if err != nil {
		h.serviceError(w, r, err)

		return
	}

	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

func (h *Handler) HandleEditCategoryPage(w http.ResponseWriter, r *http.Request) {
	categoryID := r.PathValue("categoryId")

	category, err := h.blogSvc.GetCategory(r.Context(), categoryID)
	if err != nil {
		h.serviceError(w, r, err)

		return
	}

	data := map[string]any{
		"SiteTitle": "Edit Category",
		"Category":  category,
	}

	h.renderTemplate(w, r, "edit-category-page.gohtml", data)
}

func (h *Handler) HandleEditCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := r.PathValue("categoryId")

	err := r.ParseForm()
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to parse form", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)

		return
	}

	_, err = h.blogSvc.UpdateCategory(r.Context(), categoryID, viewerFromRequest(r), blog.UpdateCategoryRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Slug:        r.FormValue("slug"),
	})
	if err != nil {
		h.serviceError(w, r, err)

		return
	}

	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

func (h *Handler) HandleSetCategoryPublished(w http.ResponseWriter, r *http.Request) {
	categoryID := r.PathValue("categoryId")

	err := r.ParseForm()
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to parse form", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)

		return
	}

	published := r.FormValue("published") == "true"

	_, err = h.blogSvc.SetCategoryPublished(r.Context(), categoryID, viewerFromRequest(r), published)
	if err != nil {
		h.serviceError(w, r, err)

		return
	}

	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

func (h *Handler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"SiteTitle": "Register",
	}

	h.renderTemplate(w, r, "register-page.gohtml", data)
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to parse form", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)

		return
	}

	_, err = h.authSvc.Register(
		r.Context(),
		r.FormValue("username"),
		r.FormValue("password"),
		r.FormValue("display_name"),
	)
	if err != nil {
		var userAlreadyExistsErr *auth.UserAlreadyExistsError

		switch {
		case errors.As(err, &userAlreadyExistsErr):
			http.Error(w, "Username already exists", http.StatusConflict)
		case errors.Is(err, auth.ErrUsernameRequired), errors.Is(err, auth.ErrPasswordTooShort):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			slog.ErrorContext(r.Context(), "failed to register user", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}

		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"SiteTitle": "Login",
	}

	h.renderTemplate(w, r, "login-page.gohtml", data)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to parse form", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)

		return
	}

	session, err := h.authSvc.Login(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			http.Error(w, "Invalid username or password", http.StatusUnauthorized)
		default:
			slog.ErrorContext(r.Context(), "failed to login user", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}

		return
	}

	err = h.setSessionValue(w, r, sessionIDKey, session.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to set session ID", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	http.Redirect(w, r, sanitizeReturnToPath(r.FormValue("return_to")), http.StatusSeeOther)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := authSessionID(r)
	if ok {
		err := h.authSvc.Logout(r.Context(), sessionID)
		if err != nil {
			slog.ErrorContext(r.Context(), "error on logout", "sessionId", sessionID, "error", err)
			http.Error(w, "error on logout", http.StatusInternalServerError)

			return
		}
	}

	err := h.deleteSessionValue(w, r, sessionIDKey)
	if err != nil {
		slog.ErrorContext(r.Context(), "error on deleting session value", "key", sessionIDKey, "error", err)
		http.Error(w, "error on deleting session value", http.StatusInternalServerError)

		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func formCategoryID(r *http.Request) *string {
	categoryID := r.FormValue("category_id")
	if categoryID == "" {
		return nil
	}

	return &categoryID
}

const datetimeLocalLayout = "2006-01-02T15:04"

func parsePublishedAt(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	return time.ParseInLocation(datetimeLocalLayout, value, time.Local)
}
